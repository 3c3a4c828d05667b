package helpers

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/rentinout/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret-that-is-long", 15*time.Hour)

	token, err := issuer.CreateToken("64b7f0c2a1b2c3d4e5f60718", "admin")
	require.NoError(t, err)

	claims, err := issuer.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "64b7f0c2a1b2c3d4e5f60718", claims.UserID)
	assert.True(t, claims.IsAdmin())
	assert.WithinDuration(t, time.Now().Add(15*time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestParseTokenRejectsExpiredAndForeign(t *testing.T) {
	issuer := NewTokenIssuer("test-secret-that-is-long", time.Hour)
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := issuer.CreateToken("64b7f0c2a1b2c3d4e5f60718", "user")
	require.NoError(t, err)

	fresh := NewTokenIssuer("test-secret-that-is-long", time.Hour)
	_, err = fresh.ParseToken(expired)
	assert.True(t, errors.Is(err, models.ErrUnauthorized))

	other := NewTokenIssuer("another-secret-entirely", time.Hour)
	foreign, err := other.CreateToken("64b7f0c2a1b2c3d4e5f60718", "admin")
	require.NoError(t, err)
	_, err = fresh.ParseToken(foreign)
	assert.True(t, errors.Is(err, models.ErrUnauthorized))
}

func TestPasswordHashing(t *testing.T) {
	hashed, err := HashPassword("secret12")
	require.NoError(t, err)
	assert.NotEqual(t, "secret12", hashed)
	assert.True(t, CheckPassword(hashed, "secret12"))
	assert.False(t, CheckPassword(hashed, "secret13"))
}

func TestNewUniqueString(t *testing.T) {
	a := NewUniqueString("abc")
	b := NewUniqueString("abc")
	assert.True(t, strings.HasSuffix(a, "abc"))
	assert.NotEqual(t, a, b)
	assert.LessOrEqual(t, len(NewUniqueString("64b7f0c2a1b2c3d4e5f60718")), 72)
}

func TestParseObjectID(t *testing.T) {
	_, err := ParseObjectID("postID", "not-an-id")
	var verr *models.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "postID", verr.Fields[0].Field)

	id, err := ParseObjectID("postID", " 64b7f0c2a1b2c3d4e5f60718 ")
	require.NoError(t, err)
	assert.Equal(t, "64b7f0c2a1b2c3d4e5f60718", id.Hex())
}

func TestSplitCSV(t *testing.T) {
	assert.Equal(t, []string{"bikes", "tools"}, SplitCSV("bikes, ,tools,"))
	assert.Nil(t, SplitCSV(""))
}

func TestParseListQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name  string
		query string
		d     ListDefaults
		want  models.ListQuery
	}{
		{
			name:  "post defaults",
			query: "",
			d:     PostListDefaults,
			want:  models.ListQuery{Page: 1, PerPage: 15, Sort: "createdAt", Descending: true},
		},
		{
			name:  "per page is capped",
			query: "?perPage=100&page=2&sort=price&reverse=no",
			d:     PostListDefaults,
			want:  models.ListQuery{Page: 2, PerPage: 20, Sort: "price"},
		},
		{
			name:  "unknown sort falls back",
			query: "?sort=password&reverse=yes",
			d:     UserListDefaults,
			want:  models.ListQuery{Page: 1, PerPage: 10, Sort: "role", Descending: true},
		},
		{
			name:  "garbage numbers ignored",
			query: "?perPage=abc&page=-4",
			d:     CategoryListDefaults,
			want:  models.ListQuery{Page: 1, PerPage: 10, Sort: "name"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest("GET", "/x"+tt.query, nil)
			assert.Equal(t, tt.want, ParseListQuery(c, tt.d))
		})
	}
}
