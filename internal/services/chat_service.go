package services

import (
	"context"
	"errors"
	"time"

	"github.com/joshua-takyi/rentinout/internal/helpers"
	"github.com/joshua-takyi/rentinout/internal/models"
	"github.com/joshua-takyi/rentinout/internal/policy"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ChatService persists chat threads. Messages are appended under a
// per-thread sequence, never overwritten.
type ChatService struct {
	messages models.MessageRepo
	users    models.UserRepo
	tx       models.Transactor
	now      func() time.Time
}

func NewChatService(messages models.MessageRepo, users models.UserRepo, tx models.Transactor) *ChatService {
	return &ChatService{
		messages: messages,
		users:    users,
		tx:       tx,
		now:      time.Now,
	}
}

// Append stores the request's messages in the room's thread, creating the
// thread on first use, and makes sure both participants are linked to it.
func (cs *ChatService) Append(ctx context.Context, actor policy.Actor, req *models.ChatUpdateRequest) (*models.Thread, error) {
	if err := models.ValidateStruct(req); err != nil {
		return nil, err
	}
	userID, err := helpers.ParseObjectID("userID", req.UserID)
	if err != nil {
		return nil, err
	}
	creatorID, err := helpers.ParseObjectID("creatorID", req.CreatorID)
	if err != nil {
		return nil, err
	}
	room, err := policy.ParseRoomID(req.MessageObj.RoomID)
	if err != nil {
		return nil, err
	}
	if !room.Has(userID) || !room.Has(creatorID) || userID == creatorID {
		return nil, models.NewValidationError("roomID", "room", "roomID does not match the participants")
	}
	if !room.Has(actor.ID) {
		return nil, models.ErrForbidden
	}

	in := req.MessageObj
	meta := &models.Thread{
		RoomID:    in.RoomID,
		OwnerName: in.OwnerName,
		OwnerImg:  in.OwnerImg,
		UserName:  in.UserName,
		UserImg:   in.UserImg,
		CreatorID: creatorID,
		UserID:    userID,
	}

	var threadID primitive.ObjectID
	write := func(ctx context.Context) error {
		n := len(in.Messages)
		thread, err := cs.messages.ReserveSeq(ctx, meta, n)
		if err != nil {
			return err
		}
		threadID = thread.ID

		first := thread.NextSeq - int64(n) + 1
		now := cs.now().UTC()
		entries := make([]models.ChatEntry, 0, n)
		for i, m := range in.Messages {
			entries = append(entries, models.ChatEntry{
				Seq:       first + int64(i),
				Sender:    m.Sender,
				UserName:  m.UserName,
				Message:   m.Message,
				CreatedAt: now,
			})
		}
		if err := cs.messages.AppendMessages(ctx, thread.ID, entries); err != nil {
			return err
		}

		// $addToSet, so relinking on every append is a no-op once linked
		if err := cs.users.LinkThread(ctx, creatorID, thread.ID); err != nil {
			return err
		}
		return cs.users.LinkThread(ctx, userID, thread.ID)
	}

	err = cs.tx.WithTransaction(ctx, write)
	if errors.Is(err, models.ErrDuplicate) {
		// two first messages raced on the roomID upsert; the thread exists now
		err = cs.tx.WithTransaction(ctx, write)
	}
	if err != nil {
		return nil, err
	}
	return cs.messages.GetThreadByID(ctx, threadID)
}

func (cs *ChatService) GetThread(ctx context.Context, actor policy.Actor, roomID string) (*models.Thread, error) {
	thread, err := cs.messages.GetThreadByRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !thread.HasParticipant(actor.ID) {
		return nil, models.ErrForbidden
	}
	return thread, nil
}

// ListThreads returns the caller's linked threads, most recently updated first.
func (cs *ChatService) ListThreads(ctx context.Context, actor policy.Actor) ([]*models.Thread, error) {
	user, err := cs.users.GetUserByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	return cs.messages.GetThreadsByIDs(ctx, user.Messages)
}

// DeleteMessage removes one entry by its sequence number. A thread left
// empty is unlinked from both participants and deleted.
func (cs *ChatService) DeleteMessage(ctx context.Context, actor policy.Actor, roomID string, seq int64) (*models.Thread, error) {
	thread, err := cs.messages.GetThreadByRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !thread.HasParticipant(actor.ID) {
		return nil, models.ErrForbidden
	}

	var after *models.Thread
	err = cs.tx.WithTransaction(ctx, func(ctx context.Context) error {
		t, err := cs.messages.RemoveMessage(ctx, roomID, seq)
		if err != nil {
			return err
		}
		after = t
		if len(t.Messages) > 0 {
			return nil
		}
		return cs.dropThread(ctx, t)
	})
	if err != nil {
		return nil, err
	}
	return after, nil
}

func (cs *ChatService) DeleteThread(ctx context.Context, actor policy.Actor, threadID primitive.ObjectID) error {
	thread, err := cs.messages.GetThreadByID(ctx, threadID)
	if err != nil {
		return err
	}
	if !thread.HasParticipant(actor.ID) {
		return models.ErrForbidden
	}
	return cs.tx.WithTransaction(ctx, func(ctx context.Context) error {
		return cs.dropThread(ctx, thread)
	})
}

func (cs *ChatService) dropThread(ctx context.Context, thread *models.Thread) error {
	if err := cs.users.UnlinkThread(ctx, thread.CreatorID, thread.ID); err != nil {
		return err
	}
	if err := cs.users.UnlinkThread(ctx, thread.UserID, thread.ID); err != nil {
		return err
	}
	return cs.messages.DeleteThread(ctx, thread.ID)
}
