package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/rentinout/internal/helpers"
	"github.com/joshua-takyi/rentinout/internal/models"
	"github.com/joshua-takyi/rentinout/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func ListUsers(us *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := helpers.ParseListQuery(c, helpers.UserListDefaults)
		users, total, err := us.ListUsers(c.Request.Context(), q)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.PaginatedResponse(users, q.Page, q.PerPage, int(total)))
	}
}

func SearchUsers(us *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := helpers.ParseListQuery(c, helpers.UserListDefaults)
		users, total, err := us.SearchUsers(c.Request.Context(), c.Query("s"), q)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.PaginatedResponse(users, q.Page, q.PerPage, int(total)))
	}
}

func CountUsers(us *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		n, err := us.CountUsers(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(gin.H{"count": n}, ""))
	}
}

func GetUserInfo(us *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := objectID(c, "id")
		if !ok {
			return
		}
		user, err := us.GetUser(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(user, ""))
	}
}

// GetUserInfoWithToken returns the caller's profile with a freshly issued token,
// so a role change takes effect without logging in again.
func GetUserInfoWithToken(us *services.UserService, as *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		me, ok := actor(c)
		if !ok {
			return
		}
		id, ok := objectID(c, "id")
		if !ok {
			return
		}

		user, err := us.GetSelf(c.Request.Context(), me, id)
		if err != nil {
			respondError(c, err)
			return
		}
		token, err := as.RefreshToken(user)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(services.Session{Token: token, User: user}, ""))
	}
}

func GetRank(us *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		target, ok := objectID(c, "userID")
		if !ok {
			return
		}
		// rankingUser is optional; an absent or bad id just yields userRank 0
		rater, _ := primitive.ObjectIDFromHex(c.Query("rankingUser"))

		summary, err := us.GetRank(c.Request.Context(), target, rater)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(summary, ""))
	}
}

func GetWishList(us *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		me, ok := actor(c)
		if !ok {
			return
		}
		posts, err := us.WishList(c.Request.Context(), me)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(posts, ""))
	}
}

func UsersByDate(us *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		series, err := us.UsersByDate(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(series, ""))
	}
}

func UpdateUser(us *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		me, ok := actor(c)
		if !ok {
			return
		}
		id, ok := objectID(c, "idEdit")
		if !ok {
			return
		}

		raw, err := c.GetRawData()
		if err != nil {
			bindFailed(c)
			return
		}
		var keys map[string]json.RawMessage
		if err := json.Unmarshal(raw, &keys); err != nil {
			bindFailed(c)
			return
		}
		for _, locked := range []string{"email", "password"} {
			if _, found := keys[locked]; found {
				respondError(c, models.NewValidationError(locked, "immutable", locked+" can't be changed here"))
				return
			}
		}
		var req models.UserUpdateRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			bindFailed(c)
			return
		}

		user, err := us.UpdateUser(c.Request.Context(), me, id, &req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(user, "user updated"))
	}
}

func ChangeRole(us *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		me, ok := actor(c)
		if !ok {
			return
		}
		id, ok := objectID(c, "userID")
		if !ok {
			return
		}
		user, err := us.ChangeRole(c.Request.Context(), me, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(user, "role changed to "+user.Role))
	}
}

func ChangeActive(us *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		me, ok := actor(c)
		if !ok {
			return
		}
		id, ok := objectID(c, "userID")
		if !ok {
			return
		}
		user, err := us.ChangeActive(c.Request.Context(), me, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(user, "user state changed"))
	}
}

func RankUser(us *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		me, ok := actor(c)
		if !ok {
			return
		}
		target, ok := objectID(c, "userID")
		if !ok {
			return
		}
		var req models.RankRequest
		if !bindJSON(c, &req) {
			return
		}
		if err := us.RankUser(c.Request.Context(), me, target, &req); err != nil {
			respondError(c, err)
			return
		}
		summary, err := us.GetRank(c.Request.Context(), target, me.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(summary, "rank saved"))
	}
}

func UploadProfileImage(us *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		me, ok := actor(c)
		if !ok {
			return
		}
		var img models.Image
		if !bindJSON(c, &img) {
			return
		}
		user, err := us.SetProfileImage(c.Request.Context(), me, &img)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(user, "profile image updated"))
	}
}

func UploadBannerImage(us *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		me, ok := actor(c)
		if !ok {
			return
		}
		var img models.Image
		if !bindJSON(c, &img) {
			return
		}
		user, err := us.SetBannerImage(c.Request.Context(), me, &img)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(user, "banner image updated"))
	}
}

func DeleteProfileImage(us *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		me, ok := actor(c)
		if !ok {
			return
		}
		user, err := us.DeleteProfileImage(c.Request.Context(), me)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(user, "profile image removed"))
	}
}

func DeleteBannerImage(us *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		me, ok := actor(c)
		if !ok {
			return
		}
		user, err := us.DeleteBannerImage(c.Request.Context(), me)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(user, "banner image removed"))
	}
}

func DeleteUser(us *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		me, ok := actor(c)
		if !ok {
			return
		}
		id, ok := objectID(c, "idDel")
		if !ok {
			return
		}
		if err := us.DeleteUser(c.Request.Context(), me, id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "user deleted"))
	}
}
