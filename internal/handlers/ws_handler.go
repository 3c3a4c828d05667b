package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/joshua-takyi/rentinout/internal/helpers"
	"github.com/joshua-takyi/rentinout/internal/middleware"
	"github.com/joshua-takyi/rentinout/internal/models"
	"github.com/joshua-takyi/rentinout/internal/realtime"
)

// NewUpgrader accepts browser connections from the allowed origins only.
// Requests without an Origin header come from non-browser clients and pass.
func NewUpgrader(origins []string) *websocket.Upgrader {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			_, ok := allowed[origin]
			return ok
		},
	}
}

// ServeWS authenticates before upgrading; the token may come from the query
// string since browsers cannot set headers on a socket handshake.
func ServeWS(hub *realtime.Hub, issuer *helpers.TokenIssuer, upgrader *websocket.Upgrader) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			token = c.GetHeader(middleware.TokenHeader)
		}
		if token == "" {
			respondError(c, models.ErrUnauthorized)
			return
		}
		claims, err := issuer.ParseToken(token)
		if err != nil {
			respondError(c, err)
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade has already written the error response
			return
		}
		hub.Serve(c.Request.Context(), conn, claims.UserID)
	}
}
