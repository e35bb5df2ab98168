package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"wordmatch-service/internal/app"
	"wordmatch-service/internal/domain"
	"wordmatch-service/internal/geometry"
	"wordmatch-service/internal/lookup"
	"wordmatch-service/internal/score"
)

type WSHandler struct {
	service  *app.GameService
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.GameService, logger *zap.Logger) *WSHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WSHandler{
		service: service,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type pointerUpPayload struct {
	Target *domain.ItemRef `json:"target,omitempty"`
	Client *geometry.Point `json:"client,omitempty"`
}

type resultPayload struct {
	score.Report
	Links []domain.Link `json:"links"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and runs one game per
// connection. The game ends when the connection closes.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	setID := r.URL.Query().Get("setId")
	playerID := r.URL.Query().Get("playerId")
	if setID == "" || playerID == "" {
		http.Error(w, "missing setId or playerId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	started, err := h.service.Start(r.Context(), setID, playerID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	gameID := started.GameID
	defer h.service.End(r.Context(), gameID)

	updates, cancel, err := h.service.Subscribe(r.Context(), gameID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	// Only the writer goroutine touches conn for writes.
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.logger.Debug("ws write error", zap.String("game", gameID), zap.Error(err))
				return
			}
		}
	}()

	// Initial snapshot goes out as "started"; scenes follow every change.
	<-updates

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "scene", Payload: update}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	send <- outboundMessage[any]{Type: "started", Payload: started}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		if msg, ok := h.handle(r, gameID, inbound); ok {
			send <- msg
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

// handle applies one inbound message. Scene changes reach the client through
// the subscription; only direct replies are returned here.
func (h *WSHandler) handle(r *http.Request, gameID string, inbound inboundMessage) (outboundMessage[any], bool) {
	ctx := r.Context()
	fail := func(msg string) (outboundMessage[any], bool) {
		return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: msg}}, true
	}

	var err error
	switch inbound.Type {
	case "layout":
		var payload app.LayoutReport
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return fail("invalid layout payload")
		}
		_, err = h.service.ReportLayout(ctx, gameID, payload)
	case "pointerDown":
		var payload domain.ItemRef
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil || !payload.Side.Valid() {
			return fail("invalid pointerDown payload")
		}
		_, _, err = h.service.PointerDown(ctx, gameID, payload)
	case "pointerMove":
		var payload geometry.Point
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return fail("invalid pointerMove payload")
		}
		_, err = h.service.PointerMove(ctx, gameID, payload)
	case "pointerUp":
		var payload pointerUpPayload
		if len(inbound.Payload) > 0 {
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				return fail("invalid pointerUp payload")
			}
		}
		_, _, err = h.service.PointerUp(ctx, gameID, payload.Target, payload.Client)
	case "cancel":
		_, err = h.service.CancelGesture(ctx, gameID)
	case "check":
		report, cerr := h.service.Check(ctx, gameID)
		if cerr != nil {
			return fail(cerr.Error())
		}
		snap, _ := h.service.Snapshot(ctx, gameID)
		return outboundMessage[any]{Type: "result", Payload: resultPayload{Report: report, Links: snap.Links}}, true
	case "activate":
		var payload lookup.Record
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return fail("invalid activate payload")
		}
		_, err = h.service.Activate(ctx, gameID, payload)
	default:
		return fail("unsupported message type")
	}
	if err != nil {
		return fail(err.Error())
	}
	return outboundMessage[any]{}, false
}
