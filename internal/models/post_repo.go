package models

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type postAgg struct {
	Post      `bson:",inline"`
	Creator   []UserSummary `bson:"creator"`
	LikeUsers []UserSummary `bson:"like_users"`
}

func (a *postAgg) view() *PostView {
	var creator *UserSummary
	if len(a.Creator) > 0 {
		creator = &a.Creator[0]
	}
	post := a.Post
	return NewPostView(&post, creator, a.LikeUsers)
}

// populateStages resolves creator_id and likes against the users collection.
func populateStages() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$lookup", Value: bson.M{
			"from": UserColName,
			"let":  bson.M{"creator": "$creator_id"},
			"pipeline": bson.A{
				bson.M{"$match": bson.M{"$expr": bson.M{"$eq": bson.A{"$_id", "$$creator"}}}},
				bson.M{"$project": UserSummaryProjection},
			},
			"as": "creator",
		}}},
		{{Key: "$lookup", Value: bson.M{
			"from": UserColName,
			"let":  bson.M{"likes": bson.M{"$ifNull": bson.A{"$likes", bson.A{}}}},
			"pipeline": bson.A{
				bson.M{"$match": bson.M{"$expr": bson.M{"$in": bson.A{"$_id", "$$likes"}}}},
				bson.M{"$project": UserSummaryProjection},
			},
			"as": "like_users",
		}}},
	}
}

func (mdb *MongodbRepo) CreatePost(ctx context.Context, post *Post) (*Post, error) {
	col, err := mdb.GetCollection(ctx, PostColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	post.BeforeCreate()
	if _, err := col.InsertOne(ctx, post); err != nil {
		return nil, storeErr("error inserting post", err)
	}
	return post, nil
}

func (mdb *MongodbRepo) GetPostByID(ctx context.Context, id primitive.ObjectID) (*Post, error) {
	col, err := mdb.GetCollection(ctx, PostColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	var post Post
	if err := col.FindOne(ctx, bson.M{"_id": id}).Decode(&post); err != nil {
		return nil, storeErr("error finding post", err)
	}
	return &post, nil
}

func (mdb *MongodbRepo) GetPostView(ctx context.Context, id primitive.ObjectID) (*PostView, error) {
	pipeline := append(mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"_id": id}}},
		{{Key: "$limit", Value: 1}},
	}, populateStages()...)

	views, err := mdb.aggregatePosts(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return nil, ErrNotFound
	}
	return views[0], nil
}

func (mdb *MongodbRepo) ListPosts(ctx context.Context, filter PostFilter, q ListQuery) ([]*PostView, error) {
	pipeline := append(mongo.Pipeline{
		{{Key: "$match", Value: filter.Bson()}},
		{{Key: "$sort", Value: q.SortDoc()}},
		{{Key: "$skip", Value: q.Skip()}},
		{{Key: "$limit", Value: int64(q.PerPage)}},
	}, populateStages()...)

	return mdb.aggregatePosts(ctx, pipeline)
}

// GetPostsByIDs returns the matching posts sorted by last update, newest first.
func (mdb *MongodbRepo) GetPostsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*PostView, error) {
	if len(ids) == 0 {
		return []*PostView{}, nil
	}
	pipeline := append(mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"_id": bson.M{"$in": ids}}}},
		{{Key: "$sort", Value: bson.D{{Key: "updatedAt", Value: -1}}}},
	}, populateStages()...)

	return mdb.aggregatePosts(ctx, pipeline)
}

func (mdb *MongodbRepo) aggregatePosts(ctx context.Context, pipeline mongo.Pipeline) ([]*PostView, error) {
	col, err := mdb.GetCollection(ctx, PostColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	cursor, err := col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("error aggregating posts: %w", err)
	}
	defer cursor.Close(ctx)

	views := []*PostView{}
	for cursor.Next(ctx) {
		var agg postAgg
		if err := cursor.Decode(&agg); err != nil {
			return nil, fmt.Errorf("error decoding post: %v", err)
		}
		views = append(views, agg.view())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %v", err)
	}
	return views, nil
}

func (mdb *MongodbRepo) UpdatePost(ctx context.Context, id primitive.ObjectID, fields bson.M) (*Post, error) {
	col, err := mdb.GetCollection(ctx, PostColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	set := bson.M{"updatedAt": time.Now().UTC()}
	for k, v := range fields {
		set[k] = v
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var post Post
	if err := col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&post); err != nil {
		return nil, storeErr("error updating post", err)
	}
	return &post, nil
}

func (mdb *MongodbRepo) DeletePost(ctx context.Context, id primitive.ObjectID) error {
	col, err := mdb.GetCollection(ctx, PostColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	res, err := col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return storeErr("error deleting post", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (mdb *MongodbRepo) CountPosts(ctx context.Context, filter PostFilter) (int64, error) {
	col, err := mdb.GetCollection(ctx, PostColName)
	if err != nil {
		return 0, fmt.Errorf("error getting collection: %v", err)
	}
	return col.CountDocuments(ctx, filter.Bson())
}

// PostCategories loads the category slug of every post.
func (mdb *MongodbRepo) PostCategories(ctx context.Context) ([]string, error) {
	col, err := mdb.GetCollection(ctx, PostColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	opts := options.Find().SetProjection(bson.M{"category_url": 1})
	cursor, err := col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("error finding posts: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		CategoryURL string `bson:"category_url"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("error decoding posts: %w", err)
	}

	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.CategoryURL)
	}
	return out, nil
}

// AddLike prepends userID to the likers. It reports false when the user already liked the post.
func (mdb *MongodbRepo) AddLike(ctx context.Context, postID, userID primitive.ObjectID) (bool, error) {
	update := bson.M{
		"$push": bson.M{"likes": bson.M{"$each": bson.A{userID}, "$position": 0}},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	return mdb.modifyPost(ctx, bson.M{"_id": postID, "likes": bson.M{"$ne": userID}}, update)
}

func (mdb *MongodbRepo) RemoveLike(ctx context.Context, postID, userID primitive.ObjectID) (bool, error) {
	update := bson.M{
		"$pull": bson.M{"likes": userID},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	return mdb.modifyPost(ctx, bson.M{"_id": postID, "likes": userID}, update)
}

func (mdb *MongodbRepo) RemoveImage(ctx context.Context, postID primitive.ObjectID, imgID string) (bool, error) {
	update := bson.M{
		"$pull": bson.M{"img": bson.M{"img_id": imgID}},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	return mdb.modifyPost(ctx, bson.M{"_id": postID, "img.img_id": imgID}, update)
}

func (mdb *MongodbRepo) modifyPost(ctx context.Context, filter, update bson.M) (bool, error) {
	col, err := mdb.GetCollection(ctx, PostColName)
	if err != nil {
		return false, fmt.Errorf("error getting collection: %v", err)
	}

	res, err := col.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("error updating post: %w", err)
	}
	return res.ModifiedCount > 0, nil
}
