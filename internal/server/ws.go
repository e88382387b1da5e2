package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/ziadkadry99/atlas/internal/session"
	"github.com/ziadkadry99/atlas/internal/stream"
)

func (s *Server) upgrader() *websocket.Upgrader {
	u := &websocket.Upgrader{}
	if s.cfg.AllowAll {
		u.CheckOrigin = func(r *http.Request) bool { return true }
	}
	return u
}

// handleWS runs one session for the lifetime of the connection. The session
// loop is the only writer; a reader goroutine decodes inbound control
// messages and ends the session when the client goes away.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader().Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	defer conn.Close()

	logger := s.logger.With("remote", r.RemoteAddr)
	opts := s.cfg.Session
	opts.Logger = logger
	opts.Metrics = s.metrics

	sess := session.New(stream.NewWebSocketSink(conn, s.cfg.WriteTimeout), opts)
	logger = logger.With("session", sess.ID)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	controls := make(chan stream.Control)
	go func() {
		defer close(controls)
		defer cancel()
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					logger.Debug("websocket read", "error", err)
				}
				return
			}
			c, err := stream.DecodeControl(msg)
			if err != nil {
				s.metrics.RecordControl("malformed")
				logger.Warn("ignoring control message", "error", err)
				continue
			}
			select {
			case controls <- c:
			case <-ctx.Done():
				return
			}
		}
	}()

	if err := sess.Run(ctx, controls); err != nil && !errors.Is(err, context.Canceled) {
		logger.Debug("session stopped", "error", err)
	}
}
