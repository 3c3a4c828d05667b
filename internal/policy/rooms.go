package policy

import (
	"fmt"
	"strings"

	"github.com/joshua-takyi/rentinout/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const roomSep = "-"

// Room is a parsed chat room identifier.
type Room struct {
	A, B   primitive.ObjectID
	PostID primitive.ObjectID
}

func (r Room) Has(id primitive.ObjectID) bool {
	return !id.IsZero() && (r.A == id || r.B == id)
}

// RoomID derives the room for two participants, optionally scoped to a post.
// Participant order does not matter.
func RoomID(a, b, postID primitive.ObjectID) string {
	x, y := a.Hex(), b.Hex()
	if y < x {
		x, y = y, x
	}
	parts := []string{x, y}
	if !postID.IsZero() {
		parts = append(parts, postID.Hex())
	}
	return strings.Join(parts, roomSep)
}

func ParseRoomID(roomID string) (Room, error) {
	parts := strings.Split(roomID, roomSep)
	if len(parts) != 2 && len(parts) != 3 {
		return Room{}, models.NewValidationError("roomID", "room", "roomID must join two participant ids")
	}

	ids := make([]primitive.ObjectID, len(parts))
	for i, p := range parts {
		id, err := primitive.ObjectIDFromHex(p)
		if err != nil {
			return Room{}, models.NewValidationError("roomID", "room", fmt.Sprintf("roomID part %d is not an id", i+1))
		}
		ids[i] = id
	}
	if ids[0] == ids[1] || ids[1].Hex() < ids[0].Hex() {
		return Room{}, models.NewValidationError("roomID", "room", "roomID participants must be distinct and sorted")
	}

	room := Room{A: ids[0], B: ids[1]}
	if len(ids) == 3 {
		room.PostID = ids[2]
	}
	return room, nil
}

// CanJoin reports whether identity is one of the two participants of roomID.
func CanJoin(identity, roomID string) bool {
	id, err := primitive.ObjectIDFromHex(identity)
	if err != nil {
		return false
	}
	room, err := ParseRoomID(roomID)
	if err != nil {
		return false
	}
	return room.Has(id)
}
