package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/rentinout/internal/helpers"
	"github.com/joshua-takyi/rentinout/internal/middleware"
	"github.com/joshua-takyi/rentinout/internal/models"
	"github.com/joshua-takyi/rentinout/internal/policy"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// respondError maps the error taxonomy onto status codes. Unknown errors are
// attached to the context for ErrorHandler to log and never echoed.
func respondError(c *gin.Context, err error) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, models.ValidationResponse(verr))
	case errors.Is(err, models.ErrResetNotFound):
		c.JSON(http.StatusUnauthorized, models.ErrorResponse("not found"))
	case errors.Is(err, models.ErrInvalidCredentials),
		errors.Is(err, models.ErrNotActive),
		errors.Is(err, models.ErrInvalidToken),
		errors.Is(err, models.ErrProtectedIdentity),
		errors.Is(err, models.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, models.ErrorResponse(sentinelText(err)))
	case errors.Is(err, models.ErrForbidden):
		c.JSON(http.StatusUnauthorized, models.ErrorResponse(models.ErrForbidden.Error()))
	case errors.Is(err, models.ErrExpired):
		c.JSON(http.StatusForbidden, models.ErrorResponse(models.ErrExpired.Error()))
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse(models.ErrNotFound.Error()))
	case errors.Is(err, models.ErrDuplicate):
		c.JSON(http.StatusConflict, models.ConflictResponse(models.ErrDuplicate.Error()))
	case errors.Is(err, models.ErrUpstream):
		_ = c.Error(err)
		c.JSON(http.StatusBadGateway, models.ErrorResponse(models.ErrUpstream.Error()))
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse("internal server error"))
	}
}

// sentinelText returns the message of the first known sentinel in err's chain,
// dropping any wrapped detail.
func sentinelText(err error) string {
	for _, s := range []error{
		models.ErrInvalidCredentials,
		models.ErrNotActive,
		models.ErrInvalidToken,
		models.ErrProtectedIdentity,
		models.ErrUnauthorized,
	} {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "unauthorized"
}

// bindJSON decodes the body and answers 400 itself on failure.
func bindJSON(c *gin.Context, v interface{}) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		bindFailed(c)
		return false
	}
	return true
}

func bindFailed(c *gin.Context) {
	c.JSON(http.StatusBadRequest, models.ValidationResponse(
		models.NewValidationError("body", "json", "invalid request payload"),
	))
}

// actor reads the caller set by middleware.Auth.
func actor(c *gin.Context) (policy.Actor, bool) {
	v, ok := c.Get(middleware.ClaimsKey)
	if !ok {
		respondError(c, models.ErrUnauthorized)
		return policy.Actor{}, false
	}
	claims, ok := v.(*helpers.Claims)
	if !ok {
		respondError(c, models.ErrUnauthorized)
		return policy.Actor{}, false
	}
	id, err := claims.ObjectID()
	if err != nil {
		respondError(c, models.ErrUnauthorized)
		return policy.Actor{}, false
	}
	return policy.Actor{ID: id, Role: claims.Role}, true
}

// objectID parses a path parameter, answering 400 when malformed.
func objectID(c *gin.Context, param string) (primitive.ObjectID, bool) {
	id, err := helpers.ParseObjectID(param, strings.TrimSpace(c.Param(param)))
	if err != nil {
		respondError(c, err)
		return primitive.NilObjectID, false
	}
	return id, true
}
