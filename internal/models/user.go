package models

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	DefaultImageURL = "https://upload.wikimedia.org/wikipedia/commons/4/41/Blank_Earth_Banner.jpg"
)

type Image struct {
	URL   string `bson:"url" json:"url" validate:"required,url"`
	ImgID string `bson:"img_id" json:"img_id" validate:"required"`
}

func DefaultImage() Image {
	return Image{URL: DefaultImageURL}
}

type FullName struct {
	FirstName string `bson:"firstName" json:"firstName" validate:"required,min=2,max=25"`
	LastName  string `bson:"lastName" json:"lastName" validate:"required,min=2,max=25"`
}

type Rank struct {
	UserID primitive.ObjectID `bson:"user_id" json:"user_id"`
	Rank   int                `bson:"rank" json:"rank"`
}

type User struct {
	ID              primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	FullName        FullName             `bson:"fullName" json:"fullName"`
	Email           string               `bson:"email" json:"email"`
	Password        string               `bson:"password" json:"-"`
	PasswordChanged *time.Time           `bson:"password_changed,omitempty" json:"password_changed,omitempty"`
	Phone           string               `bson:"phone" json:"phone"`
	ProfileImg      Image                `bson:"profile_img" json:"profile_img"`
	CoverImg        Image                `bson:"cover_img" json:"cover_img"`
	Country         string               `bson:"country" json:"country"`
	City            string               `bson:"city" json:"city"`
	BirthDate       time.Time            `bson:"birthdate" json:"birthdate"`
	Role            string               `bson:"role" json:"role"`
	EmailVerified   bool                 `bson:"email_verified" json:"email_verified"`
	Suspended       bool                 `bson:"suspended" json:"suspended"`
	Rank            []Rank               `bson:"rank" json:"rank"`
	WishList        []primitive.ObjectID `bson:"wishList" json:"wishList"`
	Messages        []primitive.ObjectID `bson:"messages" json:"messages"`
	CreatedAt       time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// Active reports whether the account may sign in.
func (u *User) Active() bool {
	return u.EmailVerified && !u.Suspended
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u User) MarshalJSON() ([]byte, error) {
	type alias User
	return json.Marshal(struct {
		alias
		Active bool `json:"active"`
	}{alias(u), u.Active()})
}

func (u *User) BeforeCreate() {
	now := time.Now().UTC()
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	u.Email = NormalizeEmail(u.Email)
	if u.Role == "" {
		u.Role = RoleUser
	}
	if u.ProfileImg.URL == "" {
		u.ProfileImg = DefaultImage()
	}
	if u.CoverImg.URL == "" {
		u.CoverImg = DefaultImage()
	}
	if u.Rank == nil {
		u.Rank = []Rank{}
	}
	if u.WishList == nil {
		u.WishList = []primitive.ObjectID{}
	}
	if u.Messages == nil {
		u.Messages = []primitive.ObjectID{}
	}
	u.CreatedAt = now
	u.UpdatedAt = now
}

// AverageRank returns the mean of all ranks and the rank given by rater, 0 when absent.
func (u *User) AverageRank(rater primitive.ObjectID) (float64, int) {
	if len(u.Rank) == 0 {
		return 0, 0
	}
	var sum, mine int
	for _, r := range u.Rank {
		sum += r.Rank
		if r.UserID == rater {
			mine = r.Rank
		}
	}
	return float64(sum) / float64(len(u.Rank)), mine
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// UserSummary is the public projection embedded in posts and like lists.
type UserSummary struct {
	ID         primitive.ObjectID `bson:"_id" json:"_id"`
	FullName   FullName           `bson:"fullName" json:"fullName"`
	Email      string             `bson:"email" json:"email"`
	ProfileImg Image              `bson:"profile_img" json:"profile_img"`
	Country    string             `bson:"country" json:"country"`
	City       string             `bson:"city" json:"city"`
	Phone      string             `bson:"phone" json:"phone"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}

var UserSummaryProjection = bson.M{
	"_id":         1,
	"fullName":    1,
	"email":       1,
	"profile_img": 1,
	"country":     1,
	"city":        1,
	"phone":       1,
	"createdAt":   1,
}

type SignupRequest struct {
	FullName  FullName  `json:"fullName" validate:"required"`
	Email     string    `json:"email" validate:"required,email,max=99"`
	Password  string    `json:"password" validate:"required,min=2,max=25"`
	Phone     string    `json:"phone" validate:"required,min=8,max=15"`
	BirthDate time.Time `json:"birthdate" validate:"required"`
	Country   string    `json:"country" validate:"required,min=2,max=99"`
	City      string    `json:"city" validate:"required,min=2,max=99"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=99"`
	Password string `json:"password" validate:"required,min=2,max=25"`
}

type GoogleLoginRequest struct {
	Token string `json:"token" validate:"required"`
}

type EmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type PasswordResetRequest struct {
	Email       string `json:"email" validate:"required,email"`
	RedirectURL string `json:"redirectUrl" validate:"required,url"`
}

type ResetPasswordRequest struct {
	UserID      string `json:"userId" validate:"required"`
	ResetString string `json:"resetString" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=2,max=25"`
}

type ContactRequest struct {
	Phone     string `json:"phone" validate:"required,min=8,max=15"`
	FirstName string `json:"firstName" validate:"required,min=2,max=25"`
	LastName  string `json:"lastName" validate:"required,min=2,max=25"`
	Email     string `json:"email" validate:"required,email"`
	Message   string `json:"textarea" validate:"required,min=2,max=1500"`
}

// UserUpdateRequest carries the profile fields a user may change.
// Email and password are rejected by the handler before decoding into this type.
type UserUpdateRequest struct {
	FullName  *FullName  `json:"fullName,omitempty" validate:"omitempty"`
	Phone     *string    `json:"phone,omitempty" validate:"omitempty,min=8,max=15"`
	Country   *string    `json:"country,omitempty" validate:"omitempty,min=2,max=99"`
	City      *string    `json:"city,omitempty" validate:"omitempty,min=2,max=99"`
	BirthDate *time.Time `json:"birthdate,omitempty"`
}

func (r *UserUpdateRequest) Fields() bson.M {
	set := bson.M{}
	if r.FullName != nil {
		set["fullName"] = *r.FullName
	}
	if r.Phone != nil {
		set["phone"] = *r.Phone
	}
	if r.Country != nil {
		set["country"] = *r.Country
	}
	if r.City != nil {
		set["city"] = *r.City
	}
	if r.BirthDate != nil {
		set["birthdate"] = *r.BirthDate
	}
	return set
}

type RankRequest struct {
	Rank int `json:"rnk" validate:"required,min=1,max=5"`
}

// DateCount is one point of the cumulative sign-up series.
type DateCount struct {
	Date  time.Time `json:"date"`
	Count int64     `json:"count"`
}

type UserRepo interface {
	CreateUser(ctx context.Context, user *User) (*User, error)
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	UpdateUser(ctx context.Context, id primitive.ObjectID, fields bson.M) (*User, error)
	DeleteUser(ctx context.Context, id primitive.ObjectID) error
	ListUsers(ctx context.Context, q ListQuery, exclude primitive.ObjectID) ([]*User, int64, error)
	SearchUsers(ctx context.Context, term string, q ListQuery, exclude primitive.ObjectID) ([]*User, int64, error)
	CountUsers(ctx context.Context) (int64, error)
	CountUsersCreatedBefore(ctx context.Context, t time.Time, exclude primitive.ObjectID) (int64, error)
	SetRank(ctx context.Context, target, rater primitive.ObjectID, rank int) error
	AddToWishList(ctx context.Context, userID, postID primitive.ObjectID) error
	RemoveFromWishList(ctx context.Context, userID, postID primitive.ObjectID) error
	PurgeFromWishLists(ctx context.Context, postID primitive.ObjectID) error
	LinkThread(ctx context.Context, userID, threadID primitive.ObjectID) error
	UnlinkThread(ctx context.Context, userID, threadID primitive.ObjectID) error
}
