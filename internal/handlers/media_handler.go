package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/rentinout/internal/models"
	"github.com/joshua-takyi/rentinout/internal/services"
)

func DeleteMedia(ms *services.MediaService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ImageRef
		if !bindJSON(c, &req) {
			return
		}
		if err := ms.DeleteImage(c.Request.Context(), req.ImgID); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "image deleted"))
	}
}
