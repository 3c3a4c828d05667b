package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/rentinout/internal/models"
	"github.com/joshua-takyi/rentinout/internal/services"
)

func GetChat(cs *services.ChatService) gin.HandlerFunc {
	return func(c *gin.Context) {
		me, ok := actor(c)
		if !ok {
			return
		}
		thread, err := cs.GetThread(c.Request.Context(), me, c.Param("roomID"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(thread, ""))
	}
}

func GetAllChats(cs *services.ChatService) gin.HandlerFunc {
	return func(c *gin.Context) {
		me, ok := actor(c)
		if !ok {
			return
		}
		threads, err := cs.ListThreads(c.Request.Context(), me)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(threads, ""))
	}
}

// ChatUpdate persists messages already relayed over the socket.
func ChatUpdate(cs *services.ChatService) gin.HandlerFunc {
	return func(c *gin.Context) {
		me, ok := actor(c)
		if !ok {
			return
		}
		var req models.ChatUpdateRequest
		if !bindJSON(c, &req) {
			return
		}
		thread, err := cs.Append(c.Request.Context(), me, &req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(thread, "chat updated"))
	}
}

func DeleteChat(cs *services.ChatService) gin.HandlerFunc {
	return func(c *gin.Context) {
		me, ok := actor(c)
		if !ok {
			return
		}
		id, ok := objectID(c, "chatID")
		if !ok {
			return
		}
		if err := cs.DeleteThread(c.Request.Context(), me, id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "chat deleted"))
	}
}

// DeleteMessage takes the message's sequence number as msgID.
func DeleteMessage(cs *services.ChatService) gin.HandlerFunc {
	return func(c *gin.Context) {
		me, ok := actor(c)
		if !ok {
			return
		}
		seq, err := strconv.ParseInt(c.Param("msgID"), 10, 64)
		if err != nil || seq < 1 {
			respondError(c, models.NewValidationError("msgID", "seq", "msgID must be a positive message sequence"))
			return
		}
		thread, err := cs.DeleteMessage(c.Request.Context(), me, c.Param("roomID"), seq)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(thread, "message deleted"))
	}
}
