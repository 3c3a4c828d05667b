package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/rentinout/internal/helpers"
	"github.com/joshua-takyi/rentinout/internal/models"
	"github.com/joshua-takyi/rentinout/internal/services"
)

func ListCategories(cs *services.CategoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := helpers.ParseListQuery(c, helpers.CategoryListDefaults)
		categories, total, err := cs.ListCategories(c.Request.Context(), "", q)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.PaginatedResponse(categories, q.Page, q.PerPage, int(total)))
	}
}

func SearchCategories(cs *services.CategoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := helpers.ParseListQuery(c, helpers.CategoryListDefaults)
		categories, total, err := cs.ListCategories(c.Request.Context(), c.Query("s"), q)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.PaginatedResponse(categories, q.Page, q.PerPage, int(total)))
	}
}

func CountCategories(cs *services.CategoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		n, err := cs.CountCategories(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(gin.H{"count": n}, ""))
	}
}

func CreateCategory(cs *services.CategoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		me, ok := actor(c)
		if !ok {
			return
		}
		var req models.CategoryRequest
		if !bindJSON(c, &req) {
			return
		}
		category, err := cs.CreateCategory(c.Request.Context(), me, &req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(category, "category created"))
	}
}

func UpdateCategory(cs *services.CategoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		me, ok := actor(c)
		if !ok {
			return
		}
		id, ok := objectID(c, "idEdit")
		if !ok {
			return
		}
		var req models.CategoryRequest
		if !bindJSON(c, &req) {
			return
		}
		category, err := cs.UpdateCategory(c.Request.Context(), me, id, &req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(category, "category updated"))
	}
}

func DeleteCategory(cs *services.CategoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := objectID(c, "idDel")
		if !ok {
			return
		}
		if err := cs.DeleteCategory(c.Request.Context(), id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "category deleted"))
	}
}
