package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"nhooyr.io/websocket"

	"github.com/lybotics/stagequest/internal/engine"
)

// handleWSEvents streams the same events as handleEvents over a WebSocket.
// Messages from the client are ignored.
func handleWSEvents(logger *slog.Logger, eng *engine.Engine, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := eng.Resume(r.Context(), r.URL.Query().Get("token"))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid session token")
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			logger.Error("websocket accept failed", "error", err)
			return
		}
		defer conn.CloseNow()

		ch := broker.Subscribe(sess.Email)
		defer broker.Unsubscribe(sess.Email, ch)

		ctx := conn.CloseRead(r.Context())
		for {
			select {
			case <-ctx.Done():
				logger.Debug("websocket closed", "email", sess.Email)
				return
			case data := <-ch:
				wctx, cancel := context.WithTimeout(ctx, 5*time.Second)
				err := conn.Write(wctx, websocket.MessageText, data)
				cancel()
				if err != nil {
					logger.Debug("websocket write failed", "error", err)
					return
				}
			}
		}
	}
}
