package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/yeremiapane/reservation-app/events"
	"github.com/yeremiapane/reservation-app/middlewares"
	"github.com/yeremiapane/reservation-app/utils"
)

type EventsController struct {
	Hub      *events.Hub
	upgrader websocket.Upgrader
}

// NewEventsController accepts websocket handshakes from allowedOrigins, or
// from anywhere when the list is empty or "*".
func NewEventsController(hub *events.Hub, allowedOrigins []string) *EventsController {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &EventsController{
		Hub: hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || len(allowed) == 0 || allowed["*"] || allowed[origin]
			},
		},
	}
}

// Subscribe upgrades to a websocket that streams reservation events until
// the client disconnects.
func (ec *EventsController) Subscribe(c *gin.Context) {
	ws, err := ec.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.ErrorLogger.Warnf("Websocket upgrade failed: %v", err)
		return
	}

	client := ec.Hub.Register(ws, middlewares.Role(c), middlewares.UserID(c))
	defer ec.Hub.Unregister(client)

	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}
}
