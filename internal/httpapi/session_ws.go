package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/lukasbauer/echojournal/internal/journal"
	"github.com/sirupsen/logrus"
)

const (
	wsWriteTimeout = 5 * time.Second
	wsMaxMessage   = 1 << 20
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsSender writes outbound session messages as JSON text frames. Writes are
// serialized because gorilla connections allow one concurrent writer.
type wsSender struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (s *wsSender) Send(m journal.Outbound) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return s.conn.WriteJSON(m)
}

func (r *Router) handleSession(w http.ResponseWriter, req *http.Request) {
	baseCtx, ok := r.sessions.Add()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "server is shutting down")
		return
	}
	defer r.sessions.Done()

	conn, err := upgrader.Upgrade(w, req, nil)
	if err != nil {
		r.logger.WithError(err).Warn("session upgrade failed")
		return
	}
	defer conn.Close()
	conn.SetReadLimit(wsMaxMessage)

	user := getAuthUser(req.Context())
	sessionID := uuid.NewString()
	logger := r.logger.WithFields(logrus.Fields{"session_id": sessionID, "owner": user.Owner})

	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	sess := journal.NewSession(journal.Config{
		SessionID:  sessionID,
		Owner:      user.Owner,
		Classifier: r.classifier,
		QueueSize:  r.cfg.QueueSize,
		Render:     r.cfg.Render,
		Entries:    r.entries,
		Events:     r.events,
		Recognizer: r.cfg.Recognizer,
		Logger:     r.logger,
	}, &wsSender{conn: conn})

	inbound := make(chan journal.Inbound, 16)
	go readInbound(ctx, conn, inbound, logger)

	sess.Run(ctx, inbound)
}

// readInbound decodes client frames until the connection fails or ctx ends.
// Text frames carry JSON messages; binary frames carry audio.
func readInbound(ctx context.Context, conn *websocket.Conn, inbound chan<- journal.Inbound, logger logrus.FieldLogger) {
	defer close(inbound)

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Info("session connection closed")
			} else if ctx.Err() == nil {
				logger.WithError(err).Warn("session read error")
			}
			return
		}

		var msg journal.Inbound
		switch msgType {
		case websocket.BinaryMessage:
			msg = journal.Inbound{Type: journal.MsgAudio, Audio: data}
		case websocket.TextMessage:
			if err := json.Unmarshal(data, &msg); err != nil {
				logger.WithError(err).Warn("failed to parse message")
				continue
			}
		default:
			continue
		}

		select {
		case inbound <- msg:
		case <-ctx.Done():
			return
		}
	}
}
