package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/rentinout/internal/helpers"
	"github.com/joshua-takyi/rentinout/internal/models"
	"github.com/joshua-takyi/rentinout/internal/services"
)

const topLikes = 3

func ListPosts(ps *services.PostService) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := helpers.ParseListQuery(c, helpers.PostListDefaults)
		res, err := ps.ListPosts(c.Request.Context(), q)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.PaginatedResponse(res.Posts, q.Page, q.PerPage, int(res.Count)))
	}
}

func GetPost(ps *services.PostService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := objectID(c, "postID")
		if !ok {
			return
		}
		post, err := ps.GetPost(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(post, ""))
	}
}

func CountPosts(ps *services.PostService) gin.HandlerFunc {
	return func(c *gin.Context) {
		n, err := ps.CountPosts(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(gin.H{"count": n}, ""))
	}
}

func CountMyPosts(ps *services.PostService) gin.HandlerFunc {
	return func(c *gin.Context) {
		me, ok := actor(c)
		if !ok {
			return
		}
		n, err := ps.CountMine(c.Request.Context(), me)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(gin.H{"count": n}, ""))
	}
}

func CountByCategory(ps *services.PostService) gin.HandlerFunc {
	return func(c *gin.Context) {
		counts, err := ps.CountByCategory(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(counts, ""))
	}
}

func UserPosts(ps *services.PostService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := objectID(c, "userID")
		if !ok {
			return
		}
		q := helpers.ParseListQuery(c, helpers.PostListDefaults)
		res, err := ps.UserPosts(c.Request.Context(), userID, q)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.PaginatedResponse(res.Posts, q.Page, q.PerPage, int(res.Count)))
	}
}

// SearchPosts reads searchQ, min, max and a comma separated categories list.
func SearchPosts(ps *services.PostService) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := models.PostFilter{
			Title:      strings.TrimSpace(c.Query("searchQ")),
			Categories: helpers.SplitCSV(c.Query("categories")),
		}
		for _, bound := range []struct {
			name string
			dst  **float64
		}{{"min", &filter.MinPrice}, {"max", &filter.MaxPrice}} {
			raw := c.Query(bound.name)
			if raw == "" {
				continue
			}
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				respondError(c, models.NewValidationError(bound.name, "number", bound.name+" must be a number"))
				return
			}
			*bound.dst = &v
		}

		q := helpers.ParseListQuery(c, helpers.PostListDefaults)
		res, err := ps.Search(c.Request.Context(), filter, q)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.PaginatedResponse(res.Posts, q.Page, q.PerPage, int(res.Count)))
	}
}

func CheckLikes(ps *services.PostService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := objectID(c, "postID")
		if !ok {
			return
		}
		summary, err := ps.CheckLikes(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(summary, ""))
	}
}

func TopThreeLikes(ps *services.PostService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := objectID(c, "postID")
		if !ok {
			return
		}
		likes, err := ps.TopLikes(c.Request.Context(), id, topLikes)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(likes, ""))
	}
}

func CreatePost(ps *services.PostService) gin.HandlerFunc {
	return func(c *gin.Context) {
		me, ok := actor(c)
		if !ok {
			return
		}
		var req models.PostRequest
		if !bindJSON(c, &req) {
			return
		}
		post, err := ps.CreatePost(c.Request.Context(), me, &req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(post, "post created"))
	}
}

func UpdatePost(ps *services.PostService) gin.HandlerFunc {
	return func(c *gin.Context) {
		me, ok := actor(c)
		if !ok {
			return
		}
		id, ok := objectID(c, "postID")
		if !ok {
			return
		}
		var req models.PostUpdateRequest
		if !bindJSON(c, &req) {
			return
		}
		post, err := ps.UpdatePost(c.Request.Context(), me, id, &req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(post, "post updated"))
	}
}

func ChangePostRange(ps *services.PostService) gin.HandlerFunc {
	return func(c *gin.Context) {
		me, ok := actor(c)
		if !ok {
			return
		}
		id, ok := objectID(c, "postID")
		if !ok {
			return
		}
		var req models.RangeRequest
		if !bindJSON(c, &req) {
			return
		}
		post, err := ps.ChangeRange(c.Request.Context(), me, id, &req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(post, "range changed"))
	}
}

func ChangePostActive(ps *services.PostService) gin.HandlerFunc {
	return func(c *gin.Context) {
		me, ok := actor(c)
		if !ok {
			return
		}
		id, ok := objectID(c, "postID")
		if !ok {
			return
		}
		post, err := ps.ChangeActive(c.Request.Context(), me, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(post, "post state changed"))
	}
}

// DeletePost reports success once the document is gone, listing any images
// the media host failed to remove.
func DeletePost(ps *services.PostService) gin.HandlerFunc {
	return func(c *gin.Context) {
		me, ok := actor(c)
		if !ok {
			return
		}
		id, ok := objectID(c, "postID")
		if !ok {
			return
		}
		res, err := ps.DeletePost(c.Request.Context(), me, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(res, "post deleted"))
	}
}

func LikePost(ps *services.PostService) gin.HandlerFunc {
	return func(c *gin.Context) {
		me, ok := actor(c)
		if !ok {
			return
		}
		id, ok := objectID(c, "postID")
		if !ok {
			return
		}
		res, err := ps.ToggleLike(c.Request.Context(), me, id)
		if err != nil {
			respondError(c, err)
			return
		}
		msg := "post unliked"
		if res.Liked {
			msg = "post liked"
		}
		c.JSON(http.StatusOK, models.SuccessResponse(res, msg))
	}
}

func DeletePostImage(ps *services.PostService) gin.HandlerFunc {
	return func(c *gin.Context) {
		me, ok := actor(c)
		if !ok {
			return
		}
		id, ok := objectID(c, "postID")
		if !ok {
			return
		}
		post, err := ps.DeleteImage(c.Request.Context(), me, id, c.Param("imgID"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(post, "image deleted"))
	}
}

func DiscardUploads(ps *services.PostService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ImageIDsRequest
		if !bindJSON(c, &req) {
			return
		}
		res, err := ps.DiscardUploads(c.Request.Context(), &req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(res, "uploads discarded"))
	}
}
