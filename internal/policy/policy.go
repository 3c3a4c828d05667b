// Package policy decides who may act on which account, post or chat room.
package policy

import (
	"fmt"

	"github.com/joshua-takyi/rentinout/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Actor is the authenticated caller.
type Actor struct {
	ID   primitive.ObjectID
	Role string
}

func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// Policy holds the single protected super identity.
type Policy struct {
	superID primitive.ObjectID
}

// New accepts an empty or malformed id, in which case no identity is protected.
func New(superID string) *Policy {
	id, err := primitive.ObjectIDFromHex(superID)
	if err != nil {
		id = primitive.NilObjectID
	}
	return &Policy{superID: id}
}

func (p *Policy) SuperID() primitive.ObjectID {
	return p.superID
}

func (p *Policy) IsProtected(id primitive.ObjectID) bool {
	return !p.superID.IsZero() && id == p.superID
}

// CanChangeAccountState guards role toggles, active toggles and deletion of a user.
func (p *Policy) CanChangeAccountState(actor Actor, target primitive.ObjectID) error {
	if p.IsProtected(target) {
		return models.ErrProtectedIdentity
	}
	return nil
}

// CanModifyAccount allows the account owner or an admin.
func (p *Policy) CanModifyAccount(actor Actor, target primitive.ObjectID) error {
	if actor.ID == target || actor.IsAdmin() {
		return nil
	}
	return fmt.Errorf("%w: not the account owner", models.ErrForbidden)
}

// CanDeleteAccount combines ownership with the super identity guard.
func (p *Policy) CanDeleteAccount(actor Actor, target primitive.ObjectID) error {
	if err := p.CanChangeAccountState(actor, target); err != nil {
		return err
	}
	return p.CanModifyAccount(actor, target)
}

// CanEditPost allows the post's creator or an admin.
func (p *Policy) CanEditPost(actor Actor, post *models.Post) error {
	if post.CreatorID == actor.ID || actor.IsAdmin() {
		return nil
	}
	return fmt.Errorf("%w: not the post owner", models.ErrForbidden)
}

// CanChangePostState guards range and active changes. A post is protected when
// its id or its creator is the super identity.
func (p *Policy) CanChangePostState(actor Actor, post *models.Post) error {
	if p.IsProtected(post.ID) || p.IsProtected(post.CreatorID) {
		return models.ErrProtectedIdentity
	}
	return nil
}
