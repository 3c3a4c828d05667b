package helpers

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/joshua-takyi/rentinout/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Claims is the payload carried in the x-api-key token.
type Claims struct {
	UserID string `json:"_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func (c *Claims) IsAdmin() bool {
	return c.Role == models.RoleAdmin
}

func (c *Claims) ObjectID() (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(c.UserID)
}
