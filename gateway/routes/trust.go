package routes

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"nhooyr.io/websocket"

	"kleotrust/native/reputation"
)

const wsWriteTimeout = 10 * time.Second

// streamMessage is one websocket frame: the retained history on connect,
// then every ingested batch.
type streamMessage struct {
	Type   string                  `json:"type"`
	Events []reputation.TrustEvent `json:"events"`
}

func (h *handlers) ingestEvents(w http.ResponseWriter, r *http.Request) {
	var raw []reputation.RawTrustEvent
	if err := decodeJSON(w, r, &raw); err != nil {
		writeJSONError(w, http.StatusBadRequest, err)
		return
	}
	ingested, err := h.svc.IngestRaw(raw)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ingested": nonNil(ingested)})
}

func (h *handlers) recentEvents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"events": nonNil(h.svc.RecentEvents())})
}

func (h *handlers) distinctWallets(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeJSONError(w, http.StatusBadRequest, errors.New("limit must be a non-negative integer"))
			return
		}
		limit = parsed
	}
	wallets := h.svc.DistinctWallets(limit)
	if wallets == nil {
		wallets = []reputation.WalletTrustView{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"wallets": wallets})
}

func (h *handlers) streamEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: []string{"*"}})
	if err != nil {
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "stream closed")
	ctx := conn.CloseRead(r.Context())
	if err := h.streamTrustEvents(ctx, conn); err != nil {
		if status := websocket.CloseStatus(err); status == -1 && !errors.Is(err, context.Canceled) {
			h.logger.Warn("trust stream failed", "error", err)
			_ = conn.Close(websocket.StatusInternalError, "stream error")
		}
	}
}

func (h *handlers) streamTrustEvents(ctx context.Context, conn *websocket.Conn) error {
	backlog, updates, cancel := h.svc.Subscribe()
	defer cancel()

	if err := writeStreamMessage(ctx, conn, streamMessage{Type: "backlog", Events: nonNil(backlog)}); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case batch, ok := <-updates:
			if !ok {
				return nil
			}
			if err := writeStreamMessage(ctx, conn, streamMessage{Type: "batch", Events: batch}); err != nil {
				return err
			}
		}
	}
}

func writeStreamMessage(ctx context.Context, conn *websocket.Conn, msg streamMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	writeCtx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
	defer cancel()
	return conn.Write(writeCtx, websocket.MessageText, data)
}

func nonNil(events []reputation.TrustEvent) []reputation.TrustEvent {
	if events == nil {
		return []reputation.TrustEvent{}
	}
	return events
}
