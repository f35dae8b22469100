package websocket

import (
	"net/http"

	ws "github.com/coder/websocket"

	"github.com/dukerupert/fusionmeals/internal/auth"
)

// HandleWebSocket upgrades a session-authenticated request and runs it as a
// Hub client subscribed to that user's pantry events.
func HandleWebSocket(hub *Hub, originPatterns []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := auth.UserID(r.Context())
		if userID == "" {
			http.Error(w, `{"error":"User not authenticated"}`, http.StatusUnauthorized)
			return
		}

		conn, err := ws.Accept(w, r, &ws.AcceptOptions{
			OriginPatterns: originPatterns,
		})
		if err != nil {
			hub.logger.Warn("accept websocket", "error", err)
			return
		}
		defer conn.CloseNow()

		hub.logger.Debug("client connected", "user_id", userID)
		NewClient(hub, conn, userID).Run(r.Context())
	}
}
