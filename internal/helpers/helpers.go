package helpers

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/joshua-takyi/rentinout/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

const PasswordCost = 10

func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

func CheckPassword(hashed, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password)) == nil
}

// NewUniqueString returns the raw single-use string mailed to a user.
func NewUniqueString(userID string) string {
	return uuid.NewString() + userID
}

// ParseObjectID parses a path or body id, reporting bad input as a validation error on field.
func ParseObjectID(field, raw string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(raw))
	if err != nil {
		return primitive.NilObjectID, models.NewValidationError(field, "objectid", field+" must be a valid id")
	}
	return id, nil
}

// SplitCSV splits a comma separated query value, dropping blanks.
func SplitCSV(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
