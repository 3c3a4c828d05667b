package models

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Category struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name      string             `bson:"name" json:"name"`
	URLName   string             `bson:"url_name" json:"url_name"`
	Info      string             `bson:"info" json:"info"`
	CreatorID primitive.ObjectID `bson:"creator_id" json:"creator_id"`
	EditorID  primitive.ObjectID `bson:"editor_id" json:"editor_id"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type CategoryRequest struct {
	Name    string `json:"name" validate:"required,min=2,max=99"`
	URLName string `json:"url_name" validate:"required,min=2,max=99"`
	Info    string `json:"info" validate:"required,min=2,max=500"`
}

type CategoryRepo interface {
	CreateCategory(ctx context.Context, category *Category) (*Category, error)
	UpdateCategory(ctx context.Context, id primitive.ObjectID, req *CategoryRequest, editor primitive.ObjectID) (*Category, error)
	DeleteCategory(ctx context.Context, id primitive.ObjectID) error
	ListCategories(ctx context.Context, term string, q ListQuery) ([]*Category, int64, error)
	CountCategories(ctx context.Context) (int64, error)
}

func (mdb *MongodbRepo) CreateCategory(ctx context.Context, category *Category) (*Category, error) {
	col, err := mdb.GetCollection(ctx, CategoryColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	now := time.Now().UTC()
	if category.ID.IsZero() {
		category.ID = primitive.NewObjectID()
	}
	category.CreatedAt = now
	category.UpdatedAt = now

	if _, err := col.InsertOne(ctx, category); err != nil {
		return nil, storeErr("error inserting category", err)
	}
	return category, nil
}

func (mdb *MongodbRepo) UpdateCategory(ctx context.Context, id primitive.ObjectID, req *CategoryRequest, editor primitive.ObjectID) (*Category, error) {
	col, err := mdb.GetCollection(ctx, CategoryColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	update := bson.M{"$set": bson.M{
		"name":      req.Name,
		"url_name":  req.URLName,
		"info":      req.Info,
		"editor_id": editor,
		"updatedAt": time.Now().UTC(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var category Category
	if err := col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&category); err != nil {
		return nil, storeErr("error updating category", err)
	}
	return &category, nil
}

func (mdb *MongodbRepo) DeleteCategory(ctx context.Context, id primitive.ObjectID) error {
	col, err := mdb.GetCollection(ctx, CategoryColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	res, err := col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return storeErr("error deleting category", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ListCategories matches term against name and url_name when it is set.
func (mdb *MongodbRepo) ListCategories(ctx context.Context, term string, q ListQuery) ([]*Category, int64, error) {
	col, err := mdb.GetCollection(ctx, CategoryColName)
	if err != nil {
		return nil, 0, fmt.Errorf("error getting collection: %v", err)
	}

	filter := bson.M{}
	if term != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"url_name": pattern},
		}
	}

	cursor, err := col.Find(ctx, filter, q.FindOptions())
	if err != nil {
		return nil, 0, fmt.Errorf("error finding categories: %w", err)
	}
	defer cursor.Close(ctx)

	categories := []*Category{}
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, 0, fmt.Errorf("error decoding categories: %w", err)
	}

	total, err := col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("error counting categories: %w", err)
	}
	return categories, total, nil
}

func (mdb *MongodbRepo) CountCategories(ctx context.Context) (int64, error) {
	col, err := mdb.GetCollection(ctx, CategoryColName)
	if err != nil {
		return 0, fmt.Errorf("error getting collection: %v", err)
	}
	return col.CountDocuments(ctx, bson.M{})
}
