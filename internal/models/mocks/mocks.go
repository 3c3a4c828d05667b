// Package mocks holds testify mocks of the repository interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/joshua-takyi/rentinout/internal/models"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Tx runs the transaction body inline.
type Tx struct{}

func (Tx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type UserRepo struct {
	mock.Mock
}

func (m *UserRepo) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepo) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepo) UpdateUser(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.User, error) {
	args := m.Called(ctx, id, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepo) DeleteUser(ctx context.Context, id primitive.ObjectID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *UserRepo) ListUsers(ctx context.Context, q models.ListQuery, exclude primitive.ObjectID) ([]*models.User, int64, error) {
	args := m.Called(ctx, q, exclude)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*models.User), args.Get(1).(int64), args.Error(2)
}

func (m *UserRepo) SearchUsers(ctx context.Context, term string, q models.ListQuery, exclude primitive.ObjectID) ([]*models.User, int64, error) {
	args := m.Called(ctx, term, q, exclude)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*models.User), args.Get(1).(int64), args.Error(2)
}

func (m *UserRepo) CountUsers(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *UserRepo) CountUsersCreatedBefore(ctx context.Context, t time.Time, exclude primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, t, exclude)
	return args.Get(0).(int64), args.Error(1)
}

func (m *UserRepo) SetRank(ctx context.Context, target, rater primitive.ObjectID, rank int) error {
	return m.Called(ctx, target, rater, rank).Error(0)
}

func (m *UserRepo) AddToWishList(ctx context.Context, userID, postID primitive.ObjectID) error {
	return m.Called(ctx, userID, postID).Error(0)
}

func (m *UserRepo) RemoveFromWishList(ctx context.Context, userID, postID primitive.ObjectID) error {
	return m.Called(ctx, userID, postID).Error(0)
}

func (m *UserRepo) PurgeFromWishLists(ctx context.Context, postID primitive.ObjectID) error {
	return m.Called(ctx, postID).Error(0)
}

func (m *UserRepo) LinkThread(ctx context.Context, userID, threadID primitive.ObjectID) error {
	return m.Called(ctx, userID, threadID).Error(0)
}

func (m *UserRepo) UnlinkThread(ctx context.Context, userID, threadID primitive.ObjectID) error {
	return m.Called(ctx, userID, threadID).Error(0)
}

type PostRepo struct {
	mock.Mock
}

func (m *PostRepo) CreatePost(ctx context.Context, post *models.Post) (*models.Post, error) {
	args := m.Called(ctx, post)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *PostRepo) GetPostByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *PostRepo) GetPostView(ctx context.Context, id primitive.ObjectID) (*models.PostView, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PostView), args.Error(1)
}

func (m *PostRepo) ListPosts(ctx context.Context, filter models.PostFilter, q models.ListQuery) ([]*models.PostView, error) {
	args := m.Called(ctx, filter, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PostView), args.Error(1)
}

func (m *PostRepo) UpdatePost(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.Post, error) {
	args := m.Called(ctx, id, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *PostRepo) DeletePost(ctx context.Context, id primitive.ObjectID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *PostRepo) CountPosts(ctx context.Context, filter models.PostFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *PostRepo) PostCategories(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *PostRepo) AddLike(ctx context.Context, postID, userID primitive.ObjectID) (bool, error) {
	args := m.Called(ctx, postID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *PostRepo) RemoveLike(ctx context.Context, postID, userID primitive.ObjectID) (bool, error) {
	args := m.Called(ctx, postID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *PostRepo) RemoveImage(ctx context.Context, postID primitive.ObjectID, imgID string) (bool, error) {
	args := m.Called(ctx, postID, imgID)
	return args.Bool(0), args.Error(1)
}

func (m *PostRepo) GetPostsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.PostView, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PostView), args.Error(1)
}

type CategoryRepo struct {
	mock.Mock
}

func (m *CategoryRepo) CreateCategory(ctx context.Context, category *models.Category) (*models.Category, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *CategoryRepo) UpdateCategory(ctx context.Context, id primitive.ObjectID, req *models.CategoryRequest, editor primitive.ObjectID) (*models.Category, error) {
	args := m.Called(ctx, id, req, editor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *CategoryRepo) DeleteCategory(ctx context.Context, id primitive.ObjectID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *CategoryRepo) ListCategories(ctx context.Context, term string, q models.ListQuery) ([]*models.Category, int64, error) {
	args := m.Called(ctx, term, q)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*models.Category), args.Get(1).(int64), args.Error(2)
}

func (m *CategoryRepo) CountCategories(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MessageRepo struct {
	mock.Mock
}

func (m *MessageRepo) ReserveSeq(ctx context.Context, meta *models.Thread, n int) (*models.Thread, error) {
	args := m.Called(ctx, meta, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Thread), args.Error(1)
}

func (m *MessageRepo) AppendMessages(ctx context.Context, threadID primitive.ObjectID, entries []models.ChatEntry) error {
	return m.Called(ctx, threadID, entries).Error(0)
}

func (m *MessageRepo) GetThreadByRoom(ctx context.Context, roomID string) (*models.Thread, error) {
	args := m.Called(ctx, roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Thread), args.Error(1)
}

func (m *MessageRepo) GetThreadByID(ctx context.Context, id primitive.ObjectID) (*models.Thread, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Thread), args.Error(1)
}

func (m *MessageRepo) GetThreadsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.Thread, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Thread), args.Error(1)
}

func (m *MessageRepo) RemoveMessage(ctx context.Context, roomID string, seq int64) (*models.Thread, error) {
	args := m.Called(ctx, roomID, seq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Thread), args.Error(1)
}

func (m *MessageRepo) DeleteThread(ctx context.Context, id primitive.ObjectID) error {
	return m.Called(ctx, id).Error(0)
}

type TokenRepo struct {
	mock.Mock
}

func (m *TokenRepo) ReplaceToken(ctx context.Context, kind models.TokenKind, record *models.TokenRecord) error {
	return m.Called(ctx, kind, record).Error(0)
}

func (m *TokenRepo) GetToken(ctx context.Context, kind models.TokenKind, userID primitive.ObjectID) (*models.TokenRecord, error) {
	args := m.Called(ctx, kind, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TokenRecord), args.Error(1)
}

func (m *TokenRepo) DeleteToken(ctx context.Context, kind models.TokenKind, userID primitive.ObjectID) error {
	return m.Called(ctx, kind, userID).Error(0)
}

// MediaDeleter records asset deletions.
type MediaDeleter struct {
	mock.Mock
}

func (m *MediaDeleter) DeleteImage(ctx context.Context, imgID string) error {
	return m.Called(ctx, imgID).Error(0)
}
