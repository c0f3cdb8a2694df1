package chat

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The API sits behind the mobile app; origin checks add nothing here.
		return true
	},
}

type inbound struct {
	Message string `json:"message"`
}

type outbound struct {
	Reply string    `json:"reply"`
	At    time.Time `json:"at"`
}

// SessionHandler upgrades the connection and answers each message with the
// scripted assistant. One goroutine per connection; the read loop ends when
// the client disconnects.
type SessionHandler struct {
	responder *Responder
}

func NewSessionHandler(responder *Responder) *SessionHandler {
	return &SessionHandler{responder: responder}
}

func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Failed to upgrade chat connection: %v", err)
		return
	}
	defer conn.Close()

	for {
		var msg inbound
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("Chat connection closed unexpectedly: %v", err)
			}
			return
		}

		reply := h.responder.Reply(msg.Message)
		if h.responder.enricher != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
			reply = h.responder.enricher.Enrich(ctx, msg.Message, reply)
			cancel()
		}

		if err := conn.WriteJSON(outbound{Reply: reply, At: time.Now()}); err != nil {
			log.Printf("Failed to write chat reply: %v", err)
			return
		}
	}
}
