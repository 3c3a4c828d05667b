package identity

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/joshua-takyi/rentinout/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserInfoAccessToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"email":"jane@example.com","email_verified":true,"name":"Jane"}`))
	}))
	defer srv.Close()

	g, err := NewGoogleVerifier(GoogleOptions{UserInfoURL: srv.URL})
	require.NoError(t, err)

	p, err := g.Verify(context.Background(), "good-token")
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", p.Email)
	assert.True(t, p.EmailVerified)

	_, err = g.Verify(context.Background(), "bad-token")
	assert.ErrorIs(t, err, models.ErrInvalidToken)
}

func TestUserInfoProviderFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	g, err := NewGoogleVerifier(GoogleOptions{UserInfoURL: srv.URL})
	require.NoError(t, err)

	_, err = g.Verify(context.Background(), "any")
	assert.ErrorIs(t, err, models.ErrUpstream)
}

func TestEmptyTokenRejected(t *testing.T) {
	g, err := NewGoogleVerifier(GoogleOptions{})
	require.NoError(t, err)
	_, err = g.Verify(context.Background(), "  ")
	assert.ErrorIs(t, err, models.ErrInvalidToken)
}

func TestIDTokenVerifiedAgainstKeys(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	g := &GoogleVerifier{
		clientID: "client-123",
		jwks: keyfunc.NewGiven(map[string]keyfunc.GivenKey{
			"kid-1": keyfunc.NewGivenRSA(&key.PublicKey, keyfunc.GivenKeyOptions{Algorithm: "RS256"}),
		}),
	}

	sign := func(aud, iss string) string {
		tok := jwt.NewWithClaims(jwt.SigningMethodRS256, idTokenClaims{
			Email:         "jane@example.com",
			EmailVerified: true,
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    iss,
				Audience:  jwt.ClaimStrings{aud},
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		})
		tok.Header["kid"] = "kid-1"
		s, err := tok.SignedString(key)
		require.NoError(t, err)
		return s
	}

	p, err := g.Verify(context.Background(), sign("client-123", "https://accounts.google.com"))
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", p.Email)

	_, err = g.Verify(context.Background(), sign("someone-else", "https://accounts.google.com"))
	assert.ErrorIs(t, err, models.ErrInvalidToken)

	_, err = g.Verify(context.Background(), sign("client-123", "https://evil.example.com"))
	assert.ErrorIs(t, err, models.ErrInvalidToken)
}
