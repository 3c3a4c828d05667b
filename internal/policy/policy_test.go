package policy

import (
	"errors"
	"testing"

	"github.com/joshua-takyi/rentinout/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestSuperIdentityIsAlwaysProtected(t *testing.T) {
	super := primitive.NewObjectID()
	p := New(super.Hex())
	admin := Actor{ID: primitive.NewObjectID(), Role: models.RoleAdmin}
	self := Actor{ID: super, Role: models.RoleAdmin}

	for _, actor := range []Actor{admin, self} {
		assert.ErrorIs(t, p.CanChangeAccountState(actor, super), models.ErrProtectedIdentity)
		assert.ErrorIs(t, p.CanDeleteAccount(actor, super), models.ErrProtectedIdentity)
		assert.ErrorIs(t, p.CanChangePostState(actor, &models.Post{ID: primitive.NewObjectID(), CreatorID: super}), models.ErrProtectedIdentity)
		assert.ErrorIs(t, p.CanChangePostState(actor, &models.Post{ID: super}), models.ErrProtectedIdentity)
	}

	assert.NoError(t, p.CanChangeAccountState(admin, primitive.NewObjectID()))
}

func TestEmptySuperIDProtectsNothing(t *testing.T) {
	p := New("")
	assert.False(t, p.IsProtected(primitive.NilObjectID))
	assert.NoError(t, p.CanChangeAccountState(Actor{}, primitive.NewObjectID()))
}

func TestOwnership(t *testing.T) {
	p := New("")
	owner := Actor{ID: primitive.NewObjectID(), Role: models.RoleUser}
	stranger := Actor{ID: primitive.NewObjectID(), Role: models.RoleUser}
	admin := Actor{ID: primitive.NewObjectID(), Role: models.RoleAdmin}
	post := &models.Post{ID: primitive.NewObjectID(), CreatorID: owner.ID}

	assert.NoError(t, p.CanEditPost(owner, post))
	assert.NoError(t, p.CanEditPost(admin, post))
	assert.True(t, errors.Is(p.CanEditPost(stranger, post), models.ErrForbidden))

	assert.NoError(t, p.CanModifyAccount(owner, owner.ID))
	assert.NoError(t, p.CanModifyAccount(admin, owner.ID))
	assert.True(t, errors.Is(p.CanModifyAccount(stranger, owner.ID), models.ErrForbidden))
}

func TestRoomIDIsOrderIndependent(t *testing.T) {
	a, b, post := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()

	assert.Equal(t, RoomID(a, b, primitive.NilObjectID), RoomID(b, a, primitive.NilObjectID))
	withPost := RoomID(a, b, post)
	assert.Equal(t, withPost, RoomID(b, a, post))

	room, err := ParseRoomID(withPost)
	require.NoError(t, err)
	assert.True(t, room.Has(a))
	assert.True(t, room.Has(b))
	assert.Equal(t, post, room.PostID)
}

func TestCanJoin(t *testing.T) {
	a, b, c := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
	room := RoomID(a, b, c)

	assert.True(t, CanJoin(a.Hex(), room))
	assert.True(t, CanJoin(b.Hex(), room))
	assert.False(t, CanJoin(c.Hex(), room), "the post id is not a participant")
	assert.False(t, CanJoin("garbage", room))
	assert.False(t, CanJoin(a.Hex(), "some-guessed-room"))
	assert.False(t, CanJoin(a.Hex(), a.Hex()+"-"+a.Hex()))
}
