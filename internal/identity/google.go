package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/joshua-takyi/rentinout/internal/models"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const DefaultUserInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"

var googleIssuers = map[string]bool{
	"accounts.google.com":         true,
	"https://accounts.google.com": true,
}

// Profile is what a provider vouches for about the token holder.
type Profile struct {
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
}

type Verifier interface {
	Verify(ctx context.Context, token string) (*Profile, error)
}

type GoogleOptions struct {
	ClientID     string
	ClientSecret string
	UserInfoURL  string
	JWKSURL      string
	HTTPClient   *http.Client
}

// GoogleVerifier accepts either a signed ID token, checked against the
// provider's published keys, or an access token, exchanged at the
// userinfo endpoint.
type GoogleVerifier struct {
	clientID    string
	userInfoURL string
	oauth       *oauth2.Config
	jwks        *keyfunc.JWKS
	httpClient  *http.Client
}

func NewGoogleVerifier(opts GoogleOptions) (*GoogleVerifier, error) {
	g := &GoogleVerifier{
		clientID:    opts.ClientID,
		userInfoURL: opts.UserInfoURL,
		httpClient:  opts.HTTPClient,
		oauth: &oauth2.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
	}
	if g.userInfoURL == "" {
		g.userInfoURL = DefaultUserInfoURL
	}

	if opts.JWKSURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		jwks, err := keyfunc.Get(opts.JWKSURL, keyfunc.Options{
			Ctx:               ctx,
			RefreshInterval:   time.Hour,
			RefreshUnknownKID: true,
			Client:            opts.HTTPClient,
		})
		if err != nil {
			return nil, fmt.Errorf("load google signing keys: %w", err)
		}
		g.jwks = jwks
	}
	return g, nil
}

// Close stops the background key refresh.
func (g *GoogleVerifier) Close() {
	if g.jwks != nil {
		g.jwks.EndBackground()
	}
}

func (g *GoogleVerifier) Verify(ctx context.Context, token string) (*Profile, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, models.ErrInvalidToken
	}
	if g.jwks != nil && strings.Count(token, ".") == 2 {
		return g.verifyIDToken(token)
	}
	return g.fetchUserInfo(ctx, token)
}

type idTokenClaims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
	jwt.RegisteredClaims
}

func (g *GoogleVerifier) verifyIDToken(raw string) (*Profile, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithExpirationRequired(),
	}
	if g.clientID != "" {
		opts = append(opts, jwt.WithAudience(g.clientID))
	}

	claims := &idTokenClaims{}
	tok, err := jwt.ParseWithClaims(raw, claims, g.jwks.Keyfunc, opts...)
	if err != nil || !tok.Valid {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidToken, err)
	}
	if !googleIssuers[claims.Issuer] {
		return nil, fmt.Errorf("%w: unexpected issuer %q", models.ErrInvalidToken, claims.Issuer)
	}
	if claims.Email == "" {
		return nil, fmt.Errorf("%w: token carries no email", models.ErrInvalidToken)
	}

	return &Profile{
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
		Name:          claims.Name,
		Picture:       claims.Picture,
	}, nil
}

type userInfo struct {
	Email         string `json:"email"`
	EmailVerified *bool  `json:"email_verified"`
	VerifiedEmail *bool  `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

func (g *GoogleVerifier) fetchUserInfo(ctx context.Context, accessToken string) (*Profile, error) {
	if g.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, g.httpClient)
	}
	client := g.oauth.Client(ctx, &oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.userInfoURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: userinfo request: %v", models.ErrUpstream, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusBadRequest:
		return nil, models.ErrInvalidToken
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: userinfo returned %d", models.ErrUpstream, resp.StatusCode)
	}

	var info userInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("%w: decode userinfo: %v", models.ErrUpstream, err)
	}
	if info.Email == "" {
		return nil, fmt.Errorf("%w: userinfo response carries no email", models.ErrUpstream)
	}

	verified := false
	if info.EmailVerified != nil {
		verified = *info.EmailVerified
	} else if info.VerifiedEmail != nil {
		verified = *info.VerifiedEmail
	}
	return &Profile{
		Email:         info.Email,
		EmailVerified: verified,
		Name:          info.Name,
		Picture:       info.Picture,
	}, nil
}
