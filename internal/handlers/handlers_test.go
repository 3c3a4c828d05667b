package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/rentinout/internal/config"
	"github.com/joshua-takyi/rentinout/internal/container"
	"github.com/joshua-takyi/rentinout/internal/helpers"
	"github.com/joshua-takyi/rentinout/internal/mailer"
	"github.com/joshua-takyi/rentinout/internal/metrics"
	"github.com/joshua-takyi/rentinout/internal/models"
	"github.com/joshua-takyi/rentinout/internal/models/mocks"
	"github.com/joshua-takyi/rentinout/internal/routes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const secret = "handler-test-secret-42"

func init() {
	gin.SetMode(gin.TestMode)
}

type store struct {
	*mocks.UserRepo
	*mocks.PostRepo
	*mocks.CategoryRepo
	*mocks.MessageRepo
	*mocks.TokenRepo
	mocks.Tx
}

type nopMail struct{}

func (nopMail) Dispatch(context.Context, mailer.Message) error { return nil }

type env struct {
	router http.Handler
	store  *store
	media  *mocks.MediaDeleter
	issuer *helpers.TokenIssuer
	super  primitive.ObjectID
}

func newEnv(t *testing.T) *env {
	t.Helper()
	s := &store{
		UserRepo:     &mocks.UserRepo{},
		PostRepo:     &mocks.PostRepo{},
		CategoryRepo: &mocks.CategoryRepo{},
		MessageRepo:  &mocks.MessageRepo{},
		TokenRepo:    &mocks.TokenRepo{},
	}
	media := &mocks.MediaDeleter{}
	super := primitive.NewObjectID()
	cfg := &config.Config{
		Environment:    "test",
		TokenSecret:    secret,
		TokenTTL:       time.Hour,
		SuperID:        super.Hex(),
		Domain:         "http://api.test",
		VerifyTTL:      6 * time.Hour,
		ResetTTL:       time.Hour,
		AllowedOrigins: []string{"http://localhost:3000"},
	}
	ct := container.NewContainer(container.Deps{
		Config:  cfg,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Store:   s,
		Media:   media,
		Mail:    nopMail{},
		Metrics: metrics.New(nil),
	})
	return &env{
		router: routes.SetupRoutes(ct),
		store:  s,
		media:  media,
		issuer: helpers.NewTokenIssuer(secret, time.Hour),
		super:  super,
	}
}

func (e *env) token(t *testing.T, id primitive.ObjectID, role string) string {
	t.Helper()
	tok, err := e.issuer.CreateToken(id.Hex(), role)
	require.NoError(t, err)
	return tok
}

func (e *env) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		buf = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("x-api-key", token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool                `json:"success"`
	Error   string              `json:"error"`
	Code    int                 `json:"code"`
	Details []models.FieldError `json:"details"`
	Data    json.RawMessage     `json:"data"`
	Page    int                 `json:"page"`
	Limit   int                 `json:"limit"`
	Total   int                 `json:"total"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var out envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestCreateCategoryThenDuplicate(t *testing.T) {
	e := newEnv(t)
	admin := primitive.NewObjectID()
	body := models.CategoryRequest{Name: "Electronics", URLName: "electronics", Info: "phones, laptops and more"}

	stored := &models.Category{}
	e.store.CategoryRepo.On("CreateCategory", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { *stored = *args.Get(1).(*models.Category) }).
		Return(stored, nil).Once()
	e.store.CategoryRepo.On("CreateCategory", mock.Anything, mock.Anything).Return(nil, models.ErrDuplicate).Once()

	w := e.do(http.MethodPost, "/categories", e.token(t, admin, models.RoleAdmin), body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var created models.Category
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &created))
	assert.Equal(t, admin, created.CreatorID)
	assert.Equal(t, admin, created.EditorID)

	w = e.do(http.MethodPost, "/categories", e.token(t, admin, models.RoleAdmin), body)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, 11000, decode(t, w).Code)
}

func TestListTotalsCountEveryMatch(t *testing.T) {
	e := newEnv(t)
	e.store.PostRepo.On("ListPosts", mock.Anything, models.PostFilter{}, mock.Anything).
		Return([]*models.PostView{{Post: &models.Post{ID: primitive.NewObjectID()}}, {Post: &models.Post{ID: primitive.NewObjectID()}}}, nil)
	e.store.PostRepo.On("CountPosts", mock.Anything, models.PostFilter{}).Return(int64(37), nil)
	e.store.CategoryRepo.On("ListCategories", mock.Anything, "ele", mock.Anything).
		Return([]*models.Category{{Name: "Electronics"}}, int64(12), nil)
	e.store.UserRepo.On("SearchUsers", mock.Anything, "jane", mock.Anything, e.super).
		Return([]*models.User{{ID: primitive.NewObjectID()}}, int64(21), nil)

	tests := []struct {
		path  string
		total int
	}{
		{"/posts?page=1&perPage=2", 37},
		{"/categories/search?s=ele", 12},
		{"/users/userSearch?s=jane", 21},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := e.do(http.MethodGet, tt.path, "", nil)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			assert.Equal(t, tt.total, decode(t, w).Total)
		})
	}
}

func TestCreateCategoryRequiresAdmin(t *testing.T) {
	e := newEnv(t)
	w := e.do(http.MethodPost, "/categories", e.token(t, primitive.NewObjectID(), models.RoleUser),
		models.CategoryRequest{Name: "Tools", URLName: "tools", Info: "hand tools"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Token is not admin")
	e.store.CategoryRepo.AssertNotCalled(t, "CreateCategory", mock.Anything, mock.Anything)
}

func TestCreatePostNegativePrice(t *testing.T) {
	e := newEnv(t)
	w := e.do(http.MethodPost, "/posts", e.token(t, primitive.NewObjectID(), models.RoleUser), map[string]interface{}{
		"title":        "Bike",
		"info":         "city bike",
		"price":        -5,
		"country":      "Israel",
		"city":         "Haifa",
		"category_url": "bikes",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	fields := []string{}
	for _, d := range decode(t, w).Details {
		fields = append(fields, d.Field)
	}
	assert.Contains(t, fields, "price")
	e.store.PostRepo.AssertNotCalled(t, "CreatePost", mock.Anything, mock.Anything)
}

func TestLikeTwice(t *testing.T) {
	e := newEnv(t)
	me := primitive.NewObjectID()
	post := &models.Post{ID: primitive.NewObjectID(), CreatorID: primitive.NewObjectID()}
	liked := *post
	liked.Likes = []primitive.ObjectID{me}

	p, u := e.store.PostRepo, e.store.UserRepo
	p.On("GetPostByID", mock.Anything, post.ID).Return(post, nil).Once()
	p.On("AddLike", mock.Anything, post.ID, me).Return(true, nil).Once()
	u.On("AddToWishList", mock.Anything, me, post.ID).Return(nil).Once()
	p.On("GetPostView", mock.Anything, post.ID).Return(&models.PostView{Post: &liked, Likes: []models.UserSummary{{ID: me}}}, nil).Once()
	p.On("GetPostByID", mock.Anything, post.ID).Return(&liked, nil).Once()
	p.On("RemoveLike", mock.Anything, post.ID, me).Return(true, nil).Once()
	u.On("RemoveFromWishList", mock.Anything, me, post.ID).Return(nil).Once()
	p.On("GetPostView", mock.Anything, post.ID).Return(&models.PostView{Post: post, Likes: []models.UserSummary{}}, nil).Once()

	tok := e.token(t, me, models.RoleUser)
	path := "/posts/likePost/" + post.ID.Hex()

	w := e.do(http.MethodPost, path, tok, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, string(decode(t, w).Data), me.Hex())

	w = e.do(http.MethodPost, path, tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, string(decode(t, w).Data), me.Hex())
}

func TestResetPasswordExpiredThenNotFound(t *testing.T) {
	e := newEnv(t)
	id := primitive.NewObjectID()
	hashed, err := helpers.HashPassword("code")
	require.NoError(t, err)

	tr := e.store.TokenRepo
	tr.On("GetToken", mock.Anything, models.TokenPasswordReset, id).
		Return(&models.TokenRecord{UserID: id, HashedCode: hashed, ExpiresAt: time.Now().Add(-time.Minute)}, nil).Once()
	tr.On("DeleteToken", mock.Anything, models.TokenPasswordReset, id).Return(nil).Once()
	tr.On("GetToken", mock.Anything, models.TokenPasswordReset, id).Return(nil, models.ErrNotFound)

	body := models.ResetPasswordRequest{UserID: id.Hex(), ResetString: "code", NewPassword: "fresh123"}
	w := e.do(http.MethodPost, "/users/resetPassword", "", body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = e.do(http.MethodPost, "/users/resetPassword", "", body)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "not found", decode(t, w).Error)
}

func TestSuperIdentityCannotBeToggled(t *testing.T) {
	e := newEnv(t)
	tok := e.token(t, primitive.NewObjectID(), models.RoleAdmin)

	for _, path := range []string{"/users/changeActive/", "/users/changeRole/"} {
		w := e.do(http.MethodPatch, path+e.super.Hex(), tok, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
	w := e.do(http.MethodDelete, "/users/"+e.super.Hex(), tok, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	e.store.UserRepo.AssertNotCalled(t, "UpdateUser", mock.Anything, mock.Anything, mock.Anything)
	e.store.UserRepo.AssertNotCalled(t, "DeleteUser", mock.Anything, mock.Anything)
}

func TestPasswordNeverReturned(t *testing.T) {
	e := newEnv(t)
	hashed, err := helpers.HashPassword("secret12")
	require.NoError(t, err)
	user := &models.User{
		ID:            primitive.NewObjectID(),
		Email:         "jane@example.com",
		Password:      hashed,
		Role:          models.RoleUser,
		EmailVerified: true,
	}
	e.store.UserRepo.On("GetUserByID", mock.Anything, user.ID).Return(user, nil)
	e.store.UserRepo.On("GetUserByEmail", mock.Anything, "jane@example.com").Return(user, nil)

	w := e.do(http.MethodGet, "/users/info/"+user.ID.Hex(), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "password\"")
	assert.NotContains(t, w.Body.String(), hashed)

	w = e.do(http.MethodPost, "/users/login", "", models.LoginRequest{Email: "jane@example.com", Password: "secret12"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), hashed)
	assert.Contains(t, w.Body.String(), "\"active\":true")
}

func TestLoginFailuresShareMessage(t *testing.T) {
	e := newEnv(t)
	hashed, err := helpers.HashPassword("secret12")
	require.NoError(t, err)
	e.store.UserRepo.On("GetUserByEmail", mock.Anything, "ghost@example.com").Return(nil, models.ErrNotFound)
	e.store.UserRepo.On("GetUserByEmail", mock.Anything, "jane@example.com").
		Return(&models.User{ID: primitive.NewObjectID(), Password: hashed, EmailVerified: true}, nil)

	unknown := e.do(http.MethodPost, "/users/login", "", models.LoginRequest{Email: "ghost@example.com", Password: "secret12"})
	wrong := e.do(http.MethodPost, "/users/login", "", models.LoginRequest{Email: "jane@example.com", Password: "nope1234"})

	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Equal(t, decode(t, unknown).Error, decode(t, wrong).Error)
}

func TestVerifyEmailExpiredRedirects(t *testing.T) {
	e := newEnv(t)
	id := primitive.NewObjectID()
	hashed, err := helpers.HashPassword("raw")
	require.NoError(t, err)
	e.store.TokenRepo.On("GetToken", mock.Anything, models.TokenVerification, id).
		Return(&models.TokenRecord{UserID: id, HashedCode: hashed, ExpiresAt: time.Now().Add(-time.Hour)}, nil)
	e.store.TokenRepo.On("DeleteToken", mock.Anything, models.TokenVerification, id).Return(nil)

	w := e.do(http.MethodGet, "/users/verify/"+id.Hex()+"/raw", "", nil)
	require.Equal(t, http.StatusFound, w.Code)

	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/users/verified", loc.Path)
	assert.Equal(t, "true", loc.Query().Get("error"))
	e.store.UserRepo.AssertNotCalled(t, "DeleteUser", mock.Anything, mock.Anything)
}

func TestMissingPostIs404(t *testing.T) {
	e := newEnv(t)
	id := primitive.NewObjectID()
	e.store.PostRepo.On("GetPostView", mock.Anything, id).Return(nil, models.ErrNotFound)

	w := e.do(http.MethodGet, "/posts/getPostByID/"+id.Hex(), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = e.do(http.MethodGet, "/posts/getPostByID/not-an-id", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateUserRejectsEmail(t *testing.T) {
	e := newEnv(t)
	me := primitive.NewObjectID()
	w := e.do(http.MethodPut, "/users/"+me.Hex(), e.token(t, me, models.RoleUser), map[string]string{"email": "new@example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	e.store.UserRepo.AssertNotCalled(t, "UpdateUser", mock.Anything, mock.Anything, mock.Anything)
}

func TestInternalErrorsAreRedacted(t *testing.T) {
	e := newEnv(t)
	e.store.PostRepo.On("CountPosts", mock.Anything, models.PostFilter{}).Return(int64(0), errors.New("connection reset by peer 10.0.0.7"))

	w := e.do(http.MethodGet, "/posts/count", "", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.False(t, strings.Contains(w.Body.String(), "10.0.0.7"))
}

func TestDeletePostReportsFailedImages(t *testing.T) {
	e := newEnv(t)
	me := primitive.NewObjectID()
	post := &models.Post{ID: primitive.NewObjectID(), CreatorID: me, Img: []models.Image{{ImgID: "gone"}}}
	e.store.PostRepo.On("GetPostByID", mock.Anything, post.ID).Return(post, nil)
	e.store.PostRepo.On("DeletePost", mock.Anything, post.ID).Return(nil)
	e.store.UserRepo.On("PurgeFromWishLists", mock.Anything, post.ID).Return(nil)
	e.media.On("DeleteImage", mock.Anything, "gone").Return(models.ErrUpstream)

	w := e.do(http.MethodDelete, "/posts/"+post.ID.Hex(), e.token(t, me, models.RoleUser), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(decode(t, w).Data), "gone")
}

func TestSocketRequiresToken(t *testing.T) {
	e := newEnv(t)
	w := e.do(http.MethodGet, "/ws", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = e.do(http.MethodGet, "/", "", nil)
	assert.Equal(t, "Socket ready", w.Body.String())
}
