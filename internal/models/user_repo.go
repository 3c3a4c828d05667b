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

func (mdb *MongodbRepo) CreateUser(ctx context.Context, user *User) (*User, error) {
	col, err := mdb.GetCollection(ctx, UserColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	user.BeforeCreate()
	if _, err := col.InsertOne(ctx, user); err != nil {
		return nil, storeErr("error inserting user", err)
	}
	return user, nil
}

func (mdb *MongodbRepo) GetUserByID(ctx context.Context, id primitive.ObjectID) (*User, error) {
	return mdb.findUser(ctx, bson.M{"_id": id})
}

func (mdb *MongodbRepo) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return mdb.findUser(ctx, bson.M{"email": NormalizeEmail(email)})
}

func (mdb *MongodbRepo) findUser(ctx context.Context, filter bson.M) (*User, error) {
	col, err := mdb.GetCollection(ctx, UserColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	var user User
	if err := col.FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, storeErr("error finding user", err)
	}
	return &user, nil
}

func (mdb *MongodbRepo) UpdateUser(ctx context.Context, id primitive.ObjectID, fields bson.M) (*User, error) {
	col, err := mdb.GetCollection(ctx, UserColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	set := bson.M{"updatedAt": time.Now().UTC()}
	for k, v := range fields {
		set[k] = v
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var user User
	if err := col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&user); err != nil {
		return nil, storeErr("error updating user", err)
	}
	return &user, nil
}

func (mdb *MongodbRepo) DeleteUser(ctx context.Context, id primitive.ObjectID) error {
	col, err := mdb.GetCollection(ctx, UserColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	res, err := col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return storeErr("error deleting user", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (mdb *MongodbRepo) ListUsers(ctx context.Context, q ListQuery, exclude primitive.ObjectID) ([]*User, int64, error) {
	return mdb.findUsers(ctx, excludeID(bson.M{}, exclude), q)
}

func (mdb *MongodbRepo) SearchUsers(ctx context.Context, term string, q ListQuery, exclude primitive.ObjectID) ([]*User, int64, error) {
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}
	filter := bson.M{
		"$or": bson.A{
			bson.M{"fullName.firstName": pattern},
			bson.M{"fullName.lastName": pattern},
			bson.M{"email": pattern},
			bson.M{"phone": pattern},
		},
	}
	return mdb.findUsers(ctx, excludeID(filter, exclude), q)
}

// findUsers returns one page of matches and the number of documents matching filter.
func (mdb *MongodbRepo) findUsers(ctx context.Context, filter bson.M, q ListQuery) ([]*User, int64, error) {
	col, err := mdb.GetCollection(ctx, UserColName)
	if err != nil {
		return nil, 0, fmt.Errorf("error getting collection: %v", err)
	}

	cursor, err := col.Find(ctx, filter, q.FindOptions())
	if err != nil {
		return nil, 0, fmt.Errorf("error finding users: %w", err)
	}
	defer cursor.Close(ctx)

	users := []*User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, 0, fmt.Errorf("error decoding users: %w", err)
	}

	total, err := col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("error counting users: %w", err)
	}
	return users, total, nil
}

func (mdb *MongodbRepo) CountUsers(ctx context.Context) (int64, error) {
	col, err := mdb.GetCollection(ctx, UserColName)
	if err != nil {
		return 0, fmt.Errorf("error getting collection: %v", err)
	}
	return col.CountDocuments(ctx, bson.M{})
}

func (mdb *MongodbRepo) CountUsersCreatedBefore(ctx context.Context, t time.Time, exclude primitive.ObjectID) (int64, error) {
	col, err := mdb.GetCollection(ctx, UserColName)
	if err != nil {
		return 0, fmt.Errorf("error getting collection: %v", err)
	}
	filter := excludeID(bson.M{"createdAt": bson.M{"$lte": t}}, exclude)
	return col.CountDocuments(ctx, filter)
}

// SetRank overrides the rater's existing entry or appends a new one.
func (mdb *MongodbRepo) SetRank(ctx context.Context, target, rater primitive.ObjectID, rank int) error {
	col, err := mdb.GetCollection(ctx, UserColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}
	now := time.Now().UTC()

	res, err := col.UpdateOne(ctx,
		bson.M{"_id": target, "rank.user_id": rater},
		bson.M{"$set": bson.M{"rank.$.rank": rank, "updatedAt": now}},
	)
	if err != nil {
		return fmt.Errorf("error updating rank: %w", err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	res, err = col.UpdateOne(ctx,
		bson.M{"_id": target, "rank.user_id": bson.M{"$ne": rater}},
		bson.M{
			"$push": bson.M{"rank": Rank{UserID: rater, Rank: rank}},
			"$set":  bson.M{"updatedAt": now},
		},
	)
	if err != nil {
		return fmt.Errorf("error adding rank: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AddToWishList puts postID at the front of the wishlist unless it is already there.
func (mdb *MongodbRepo) AddToWishList(ctx context.Context, userID, postID primitive.ObjectID) error {
	update := bson.M{
		"$push": bson.M{"wishList": bson.M{"$each": bson.A{postID}, "$position": 0}},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	return mdb.updateUserRefs(ctx, bson.M{"_id": userID, "wishList": bson.M{"$ne": postID}}, update, false)
}

func (mdb *MongodbRepo) RemoveFromWishList(ctx context.Context, userID, postID primitive.ObjectID) error {
	update := bson.M{
		"$pull": bson.M{"wishList": postID},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	return mdb.updateUserRefs(ctx, bson.M{"_id": userID}, update, false)
}

func (mdb *MongodbRepo) PurgeFromWishLists(ctx context.Context, postID primitive.ObjectID) error {
	return mdb.updateUserRefs(ctx, bson.M{"wishList": postID}, bson.M{"$pull": bson.M{"wishList": postID}}, true)
}

func (mdb *MongodbRepo) LinkThread(ctx context.Context, userID, threadID primitive.ObjectID) error {
	update := bson.M{"$addToSet": bson.M{"messages": threadID}}
	return mdb.updateUserRefs(ctx, bson.M{"_id": userID}, update, false)
}

func (mdb *MongodbRepo) UnlinkThread(ctx context.Context, userID, threadID primitive.ObjectID) error {
	update := bson.M{"$pull": bson.M{"messages": threadID}}
	return mdb.updateUserRefs(ctx, bson.M{"_id": userID}, update, false)
}

func (mdb *MongodbRepo) updateUserRefs(ctx context.Context, filter, update bson.M, many bool) error {
	col, err := mdb.GetCollection(ctx, UserColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	if many {
		_, err = col.UpdateMany(ctx, filter, update)
	} else {
		_, err = col.UpdateOne(ctx, filter, update)
	}
	if err != nil {
		return fmt.Errorf("error updating user references: %w", err)
	}
	return nil
}

func excludeID(filter bson.M, id primitive.ObjectID) bson.M {
	if !id.IsZero() {
		filter["_id"] = bson.M{"$ne": id}
	}
	return filter
}
