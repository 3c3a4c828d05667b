package models

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RangeLongTerm  = "long-term"
	RangeShortTerm = "short-term"

	TypeRent     = "rent"
	TypeExchange = "exchange"
	TypeDelivery = "delivery"

	DefaultCategoryURL = "skate"

	MinSearchPrice = 0
	MaxSearchPrice = 10000000
)

type Point struct {
	X float64 `bson:"x" json:"x"`
	Y float64 `bson:"y" json:"y"`
}

type Post struct {
	ID            primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Title         string               `bson:"title" json:"title"`
	Info          string               `bson:"info" json:"info"`
	Img           []Image              `bson:"img" json:"img"`
	Range         string               `bson:"range" json:"range"`
	CreatorID     primitive.ObjectID   `bson:"creator_id" json:"creator_id"`
	CategoryURL   string               `bson:"category_url" json:"category_url"`
	Price         float64              `bson:"price" json:"price"`
	Type          string               `bson:"type" json:"type"`
	CollectPoints []Point              `bson:"collect_points" json:"collect_points"`
	Active        bool                 `bson:"active" json:"active"`
	AvailableFrom *time.Time           `bson:"available_from,omitempty" json:"available_from,omitempty"`
	Country       string               `bson:"country" json:"country"`
	City          string               `bson:"city" json:"city"`
	Likes         []primitive.ObjectID `bson:"likes" json:"likes"`
	CreatedAt     time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time            `bson:"updatedAt" json:"updatedAt"`
}

func (p *Post) BeforeCreate() {
	now := time.Now().UTC()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if p.Range == "" {
		p.Range = RangeShortTerm
	}
	if p.Type == "" {
		p.Type = TypeRent
	}
	if p.CategoryURL == "" {
		p.CategoryURL = DefaultCategoryURL
	}
	if p.Img == nil {
		p.Img = []Image{}
	}
	if p.CollectPoints == nil {
		p.CollectPoints = []Point{}
	}
	if p.Likes == nil {
		p.Likes = []primitive.ObjectID{}
	}
	p.Active = true
	p.CreatedAt = now
	p.UpdatedAt = now
}

func (p *Post) LikedBy(userID primitive.ObjectID) bool {
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

func (p *Post) HasImage(imgID string) bool {
	for _, img := range p.Img {
		if img.ImgID == imgID {
			return true
		}
	}
	return false
}

// PostView is a post with its creator and likers resolved to public summaries.
type PostView struct {
	*Post
	Creator *UserSummary  `json:"creator_id"`
	Likes   []UserSummary `json:"likes"`
}

// NewPostView orders likers the same way the post stores them.
func NewPostView(p *Post, creator *UserSummary, likers []UserSummary) *PostView {
	byID := make(map[primitive.ObjectID]UserSummary, len(likers))
	for _, u := range likers {
		byID[u.ID] = u
	}
	likes := make([]UserSummary, 0, len(p.Likes))
	for _, id := range p.Likes {
		if u, ok := byID[id]; ok {
			likes = append(likes, u)
		}
	}
	return &PostView{Post: p, Creator: creator, Likes: likes}
}

type PostRequest struct {
	Title         string     `json:"title" validate:"required,min=2,max=50"`
	Info          string     `json:"info" validate:"required,min=2,max=1500"`
	Price         float64    `json:"price" validate:"required,min=1,max=10000000"`
	Country       string     `json:"country" validate:"required,min=2,max=50"`
	City          string     `json:"city" validate:"required,min=2,max=50"`
	CategoryURL   string     `json:"category_url" validate:"required,min=2,max=50"`
	Range         string     `json:"range" validate:"omitempty,oneof=long-term short-term"`
	Type          string     `json:"type" validate:"omitempty,oneof=rent exchange delivery"`
	AvailableFrom *time.Time `json:"available_from"`
	Img           []Image    `json:"img" validate:"omitempty,dive"`
	CollectPoints []Point    `json:"collect_points"`
}

func (r *PostRequest) ToPost(creator primitive.ObjectID) *Post {
	return &Post{
		Title:         r.Title,
		Info:          r.Info,
		Price:         r.Price,
		Country:       r.Country,
		City:          r.City,
		CategoryURL:   r.CategoryURL,
		Range:         r.Range,
		Type:          r.Type,
		AvailableFrom: r.AvailableFrom,
		Img:           r.Img,
		CollectPoints: r.CollectPoints,
		CreatorID:     creator,
	}
}

// PostUpdateRequest is a partial edit. The creator is never part of it.
type PostUpdateRequest struct {
	Title         *string    `json:"title,omitempty" validate:"omitempty,min=2,max=50"`
	Info          *string    `json:"info,omitempty" validate:"omitempty,min=2,max=1500"`
	Price         *float64   `json:"price,omitempty" validate:"omitempty,min=1,max=10000000"`
	Country       *string    `json:"country,omitempty" validate:"omitempty,min=2,max=50"`
	City          *string    `json:"city,omitempty" validate:"omitempty,min=2,max=50"`
	CategoryURL   *string    `json:"category_url,omitempty" validate:"omitempty,min=2,max=50"`
	Range         *string    `json:"range,omitempty" validate:"omitempty,oneof=long-term short-term"`
	Type          *string    `json:"type,omitempty" validate:"omitempty,oneof=rent exchange delivery"`
	AvailableFrom *time.Time `json:"available_from,omitempty"`
	Img           *[]Image   `json:"img,omitempty" validate:"omitempty,dive"`
	CollectPoints *[]Point   `json:"collect_points,omitempty"`
}

func (r *PostUpdateRequest) Fields() bson.M {
	set := bson.M{}
	if r.Title != nil {
		set["title"] = *r.Title
	}
	if r.Info != nil {
		set["info"] = *r.Info
	}
	if r.Price != nil {
		set["price"] = *r.Price
	}
	if r.Country != nil {
		set["country"] = *r.Country
	}
	if r.City != nil {
		set["city"] = *r.City
	}
	if r.CategoryURL != nil {
		set["category_url"] = *r.CategoryURL
	}
	if r.Range != nil {
		set["range"] = *r.Range
	}
	if r.Type != nil {
		set["type"] = *r.Type
	}
	if r.AvailableFrom != nil {
		set["available_from"] = *r.AvailableFrom
	}
	if r.Img != nil {
		set["img"] = *r.Img
	}
	if r.CollectPoints != nil {
		set["collect_points"] = *r.CollectPoints
	}
	return set
}

type RangeRequest struct {
	Range string `json:"range" validate:"required,oneof=long-term short-term"`
}

type ImageIDsRequest struct {
	Images []ImageRef `json:"images" validate:"required,min=1,dive"`
}

type ImageRef struct {
	ImgID string `json:"img_id" validate:"required"`
}

// PostFilter narrows list and search queries. Zero values mean no constraint.
type PostFilter struct {
	Title      string
	MinPrice   *float64
	MaxPrice   *float64
	Categories []string
	CreatorID  primitive.ObjectID
}

func (f PostFilter) Bson() bson.M {
	filter := bson.M{}
	if f.Title != "" {
		filter["title"] = primitive.Regex{Pattern: regexp.QuoteMeta(f.Title), Options: "i"}
	}
	if f.MinPrice != nil || f.MaxPrice != nil {
		price := bson.M{}
		if f.MinPrice != nil {
			price["$gte"] = *f.MinPrice
		}
		if f.MaxPrice != nil {
			price["$lt"] = *f.MaxPrice
		}
		filter["price"] = price
	}
	if len(f.Categories) > 0 {
		filter["category_url"] = bson.M{"$in": f.Categories}
	}
	if !f.CreatorID.IsZero() {
		filter["creator_id"] = f.CreatorID
	}
	return filter
}

type CategoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type PostRepo interface {
	CreatePost(ctx context.Context, post *Post) (*Post, error)
	GetPostByID(ctx context.Context, id primitive.ObjectID) (*Post, error)
	GetPostView(ctx context.Context, id primitive.ObjectID) (*PostView, error)
	ListPosts(ctx context.Context, filter PostFilter, q ListQuery) ([]*PostView, error)
	UpdatePost(ctx context.Context, id primitive.ObjectID, fields bson.M) (*Post, error)
	DeletePost(ctx context.Context, id primitive.ObjectID) error
	CountPosts(ctx context.Context, filter PostFilter) (int64, error)
	PostCategories(ctx context.Context) ([]string, error)
	AddLike(ctx context.Context, postID, userID primitive.ObjectID) (bool, error)
	RemoveLike(ctx context.Context, postID, userID primitive.ObjectID) (bool, error)
	RemoveImage(ctx context.Context, postID primitive.ObjectID, imgID string) (bool, error)
	GetPostsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*PostView, error)
}
