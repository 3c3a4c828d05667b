package services

import (
	"context"
	"time"

	"github.com/joshua-takyi/rentinout/internal/models"
	"github.com/joshua-takyi/rentinout/internal/policy"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	growthWindow   = 3 * 365 * 24 * time.Hour
	growthInterval = 4380 * time.Hour // half a year
)

type UserService struct {
	users  models.UserRepo
	posts  models.PostRepo
	policy *policy.Policy
	media  *MediaService
	now    func() time.Time
}

func NewUserService(users models.UserRepo, posts models.PostRepo, pol *policy.Policy, media *MediaService) *UserService {
	return &UserService{
		users:  users,
		posts:  posts,
		policy: pol,
		media:  media,
		now:    time.Now,
	}
}

func (us *UserService) GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, err := us.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Password = ""
	return user, nil
}

// GetSelf loads the caller's own account. Other ids are forbidden.
func (us *UserService) GetSelf(ctx context.Context, actor policy.Actor, id primitive.ObjectID) (*models.User, error) {
	if actor.ID != id {
		return nil, models.ErrForbidden
	}
	return us.GetUser(ctx, id)
}

// ListUsers never includes the super identity.
func (us *UserService) ListUsers(ctx context.Context, q models.ListQuery) ([]*models.User, int64, error) {
	return us.users.ListUsers(ctx, q, us.policy.SuperID())
}

func (us *UserService) SearchUsers(ctx context.Context, term string, q models.ListQuery) ([]*models.User, int64, error) {
	return us.users.SearchUsers(ctx, term, q, us.policy.SuperID())
}

func (us *UserService) CountUsers(ctx context.Context) (int64, error) {
	return us.users.CountUsers(ctx)
}

// UsersByDate returns the cumulative number of sign-ups at half-year steps
// over the last three years.
func (us *UserService) UsersByDate(ctx context.Context) ([]models.DateCount, error) {
	now := us.now().UTC()
	series := []models.DateCount{}
	for at := now.Add(-growthWindow); !at.After(now); at = at.Add(growthInterval) {
		n, err := us.users.CountUsersCreatedBefore(ctx, at, us.policy.SuperID())
		if err != nil {
			return nil, err
		}
		series = append(series, models.DateCount{Date: at, Count: n})
	}
	return series, nil
}

func (us *UserService) UpdateUser(ctx context.Context, actor policy.Actor, id primitive.ObjectID, req *models.UserUpdateRequest) (*models.User, error) {
	if err := us.policy.CanModifyAccount(actor, id); err != nil {
		return nil, err
	}
	if err := models.ValidateStruct(req); err != nil {
		return nil, err
	}
	fields := req.Fields()
	if len(fields) == 0 {
		return nil, models.NewValidationError("body", "required", "no editable fields supplied")
	}
	user, err := us.users.UpdateUser(ctx, id, fields)
	if err != nil {
		return nil, err
	}
	user.Password = ""
	return user, nil
}

// ChangeRole flips a user between user and admin.
func (us *UserService) ChangeRole(ctx context.Context, actor policy.Actor, id primitive.ObjectID) (*models.User, error) {
	if err := us.policy.CanChangeAccountState(actor, id); err != nil {
		return nil, err
	}
	user, err := us.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	role := models.RoleAdmin
	if user.IsAdmin() {
		role = models.RoleUser
	}
	return us.users.UpdateUser(ctx, id, bson.M{"role": role})
}

// ChangeActive toggles the admin suspension flag. Email verification is untouched.
func (us *UserService) ChangeActive(ctx context.Context, actor policy.Actor, id primitive.ObjectID) (*models.User, error) {
	if err := us.policy.CanChangeAccountState(actor, id); err != nil {
		return nil, err
	}
	user, err := us.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return us.users.UpdateUser(ctx, id, bson.M{"suspended": !user.Suspended})
}

func (us *UserService) RankUser(ctx context.Context, actor policy.Actor, target primitive.ObjectID, req *models.RankRequest) error {
	if err := models.ValidateStruct(req); err != nil {
		return err
	}
	if actor.ID == target {
		return models.NewValidationError("userID", "self", "you can't rank yourself")
	}
	return us.users.SetRank(ctx, target, actor.ID, req.Rank)
}

type RankSummary struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
	Mine    int     `json:"userRank"`
}

func (us *UserService) GetRank(ctx context.Context, target, rater primitive.ObjectID) (*RankSummary, error) {
	user, err := us.users.GetUserByID(ctx, target)
	if err != nil {
		return nil, err
	}
	avg, mine := user.AverageRank(rater)
	return &RankSummary{Average: avg, Count: len(user.Rank), Mine: mine}, nil
}

// WishList returns the caller's liked posts, most recently updated first.
func (us *UserService) WishList(ctx context.Context, actor policy.Actor) ([]*models.PostView, error) {
	user, err := us.users.GetUserByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	return us.posts.GetPostsByIDs(ctx, user.WishList)
}

func (us *UserService) SetProfileImage(ctx context.Context, actor policy.Actor, img *models.Image) (*models.User, error) {
	return us.setImage(ctx, actor, "profile_img", img)
}

func (us *UserService) SetBannerImage(ctx context.Context, actor policy.Actor, img *models.Image) (*models.User, error) {
	return us.setImage(ctx, actor, "cover_img", img)
}

func (us *UserService) setImage(ctx context.Context, actor policy.Actor, field string, img *models.Image) (*models.User, error) {
	if err := models.ValidateStruct(img); err != nil {
		return nil, err
	}
	user, err := us.users.UpdateUser(ctx, actor.ID, bson.M{field: *img})
	if err != nil {
		return nil, err
	}
	user.Password = ""
	return user, nil
}

// DeleteProfileImage removes the hosted asset and restores the default image.
func (us *UserService) DeleteProfileImage(ctx context.Context, actor policy.Actor) (*models.User, error) {
	return us.resetImage(ctx, actor, "profile_img", func(u *models.User) models.Image { return u.ProfileImg })
}

func (us *UserService) DeleteBannerImage(ctx context.Context, actor policy.Actor) (*models.User, error) {
	return us.resetImage(ctx, actor, "cover_img", func(u *models.User) models.Image { return u.CoverImg })
}

func (us *UserService) resetImage(ctx context.Context, actor policy.Actor, field string, current func(*models.User) models.Image) (*models.User, error) {
	user, err := us.users.GetUserByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if img := current(user); img.ImgID != "" {
		if err := us.media.DeleteImage(ctx, img.ImgID); err != nil {
			return nil, err
		}
	}
	updated, err := us.users.UpdateUser(ctx, actor.ID, bson.M{field: models.DefaultImage()})
	if err != nil {
		return nil, err
	}
	updated.Password = ""
	return updated, nil
}

func (us *UserService) DeleteUser(ctx context.Context, actor policy.Actor, id primitive.ObjectID) error {
	if err := us.policy.CanDeleteAccount(actor, id); err != nil {
		return err
	}
	return us.users.DeleteUser(ctx, id)
}
