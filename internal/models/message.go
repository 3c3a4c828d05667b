package models

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ChatEntry struct {
	Seq       int64     `bson:"seq" json:"seq"`
	Sender    string    `bson:"sender" json:"sender"`
	UserName  string    `bson:"userName" json:"userName"`
	Message   string    `bson:"message" json:"message"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// Thread is a durable chat between a post creator and another user.
type Thread struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	RoomID    string             `bson:"roomID" json:"roomID"`
	OwnerName string             `bson:"ownerName" json:"ownerName"`
	OwnerImg  string             `bson:"ownerImg" json:"ownerImg"`
	UserName  string             `bson:"userName" json:"userName"`
	UserImg   string             `bson:"userImg" json:"userImg"`
	CreatorID primitive.ObjectID `bson:"creatorID" json:"creatorID"`
	UserID    primitive.ObjectID `bson:"userID" json:"userID"`
	Messages  []ChatEntry        `bson:"messagesArr" json:"messagesArr"`
	NextSeq   int64              `bson:"next_seq" json:"-"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (t *Thread) HasParticipant(id primitive.ObjectID) bool {
	return t.CreatorID == id || t.UserID == id
}

// SortEntries orders messages by sequence, which concurrent appends may interleave.
func (t *Thread) SortEntries() {
	sort.SliceStable(t.Messages, func(i, j int) bool {
		return t.Messages[i].Seq < t.Messages[j].Seq
	})
}

type ChatMessageInput struct {
	Sender   string `json:"sender" validate:"required"`
	UserName string `json:"userName" validate:"required,max=99"`
	Message  string `json:"message" validate:"required,min=1,max=2000"`
}

type ChatThreadInput struct {
	RoomID    string             `json:"roomID" validate:"required"`
	OwnerName string             `json:"ownerName" validate:"max=99"`
	OwnerImg  string             `json:"ownerImg"`
	UserName  string             `json:"userName" validate:"max=99"`
	UserImg   string             `json:"userImg"`
	Messages  []ChatMessageInput `json:"messagesArr" validate:"required,min=1,dive"`
}

// ChatUpdateRequest appends messagesArr to the room's thread, creating it on first use.
type ChatUpdateRequest struct {
	UserID     string          `json:"userID" validate:"required"`
	CreatorID  string          `json:"creatorID" validate:"required"`
	MessageObj ChatThreadInput `json:"messageObj" validate:"required"`
}

type MessageRepo interface {
	ReserveSeq(ctx context.Context, meta *Thread, n int) (*Thread, error)
	AppendMessages(ctx context.Context, threadID primitive.ObjectID, entries []ChatEntry) error
	GetThreadByRoom(ctx context.Context, roomID string) (*Thread, error)
	GetThreadByID(ctx context.Context, id primitive.ObjectID) (*Thread, error)
	GetThreadsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*Thread, error)
	RemoveMessage(ctx context.Context, roomID string, seq int64) (*Thread, error)
	DeleteThread(ctx context.Context, id primitive.ObjectID) error
}

// ReserveSeq upserts the thread for meta.RoomID and advances its counter by n.
// The returned thread carries the counter after the increment.
func (mdb *MongodbRepo) ReserveSeq(ctx context.Context, meta *Thread, n int) (*Thread, error) {
	col, err := mdb.GetCollection(ctx, MessageColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	now := time.Now().UTC()
	update := bson.M{
		"$inc": bson.M{"next_seq": int64(n)},
		"$set": bson.M{"updatedAt": now},
		"$setOnInsert": bson.M{
			"ownerName":   meta.OwnerName,
			"ownerImg":    meta.OwnerImg,
			"userName":    meta.UserName,
			"userImg":     meta.UserImg,
			"creatorID":   meta.CreatorID,
			"userID":      meta.UserID,
			"messagesArr": bson.A{},
			"createdAt":   now,
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After).
		SetProjection(bson.M{"messagesArr": 0})

	var thread Thread
	err = col.FindOneAndUpdate(ctx, bson.M{"roomID": meta.RoomID}, update, opts).Decode(&thread)
	if err != nil {
		return nil, storeErr("error upserting thread", err)
	}
	return &thread, nil
}

func (mdb *MongodbRepo) AppendMessages(ctx context.Context, threadID primitive.ObjectID, entries []ChatEntry) error {
	col, err := mdb.GetCollection(ctx, MessageColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	update := bson.M{
		"$push": bson.M{"messagesArr": bson.M{"$each": entries}},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	res, err := col.UpdateOne(ctx, bson.M{"_id": threadID}, update)
	if err != nil {
		return fmt.Errorf("error appending messages: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (mdb *MongodbRepo) GetThreadByRoom(ctx context.Context, roomID string) (*Thread, error) {
	return mdb.findThread(ctx, bson.M{"roomID": roomID})
}

func (mdb *MongodbRepo) GetThreadByID(ctx context.Context, id primitive.ObjectID) (*Thread, error) {
	return mdb.findThread(ctx, bson.M{"_id": id})
}

func (mdb *MongodbRepo) findThread(ctx context.Context, filter bson.M) (*Thread, error) {
	col, err := mdb.GetCollection(ctx, MessageColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	var thread Thread
	if err := col.FindOne(ctx, filter).Decode(&thread); err != nil {
		return nil, storeErr("error finding thread", err)
	}
	thread.SortEntries()
	return &thread, nil
}

// GetThreadsByIDs returns the threads sorted by last update, newest first.
func (mdb *MongodbRepo) GetThreadsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*Thread, error) {
	if len(ids) == 0 {
		return []*Thread{}, nil
	}
	col, err := mdb.GetCollection(ctx, MessageColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	cursor, err := col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, fmt.Errorf("error finding threads: %w", err)
	}
	defer cursor.Close(ctx)

	threads := []*Thread{}
	if err := cursor.All(ctx, &threads); err != nil {
		return nil, fmt.Errorf("error decoding threads: %w", err)
	}
	for _, t := range threads {
		t.SortEntries()
	}
	return threads, nil
}

// RemoveMessage pulls the entry with the given sequence and returns the thread after the change.
func (mdb *MongodbRepo) RemoveMessage(ctx context.Context, roomID string, seq int64) (*Thread, error) {
	col, err := mdb.GetCollection(ctx, MessageColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %v", err)
	}

	filter := bson.M{"roomID": roomID, "messagesArr.seq": seq}
	update := bson.M{
		"$pull": bson.M{"messagesArr": bson.M{"seq": seq}},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var thread Thread
	if err := col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&thread); err != nil {
		return nil, storeErr("error removing message", err)
	}
	thread.SortEntries()
	return &thread, nil
}

func (mdb *MongodbRepo) DeleteThread(ctx context.Context, id primitive.ObjectID) error {
	col, err := mdb.GetCollection(ctx, MessageColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %v", err)
	}

	res, err := col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return storeErr("error deleting thread", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
