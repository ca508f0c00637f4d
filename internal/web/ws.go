package web

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// handleWebsocket accepts one pointer message per frame and answers each
// with a pointerResponse or an apiError.
func handleWebsocket(svc CardService, logger Logger, upgrader *websocket.Upgrader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Errorf("web", "websocket upgrade: %v", err)
			return
		}
		defer conn.Close()

		id := uuid.NewString()
		logger.Infof("web", "websocket %s connected from %s", id, r.RemoteAddr)
		conn.SetReadLimit(maxPointerBody)

		for {
			typ, msg, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					logger.Errorf("web", "websocket %s: %v", id, err)
				}
				logger.Infof("web", "websocket %s closed", id)
				return
			}
			if typ != websocket.TextMessage {
				continue
			}
			res, _, apiErr := dispatchPointer(r.Context(), svc, msg)
			if apiErr.Error != "" {
				err = conn.WriteJSON(apiErr)
			} else {
				err = conn.WriteJSON(res)
			}
			if err != nil {
				logger.Errorf("web", "websocket %s write: %v", id, err)
				return
			}
		}
	}
}
