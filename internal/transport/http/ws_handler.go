package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"progressive-quiz/internal/app"
	"progressive-quiz/internal/domain"
)

type WSHandler struct {
	engine   *app.ProgressEngine
	session  *app.Session
	log      *zap.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(engine *app.ProgressEngine, session *app.Session, log *zap.Logger) *WSHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &WSHandler{
		engine:  engine,
		session: session,
		log:     log,
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

type initPayload struct {
	Username string `json:"username"`
}

// Level and Index are pointers so a missing field is rejected instead of reading as beginner/0.
type levelPayload struct {
	Level *domain.Level `json:"level"`
}

type questionPayload struct {
	Level *domain.Level `json:"level"`
	Index *int          `json:"index"`
}

type answerPayload struct {
	Level    *domain.Level `json:"level"`
	Index    *int          `json:"index"`
	Selected []int         `json:"selected"`
}

type advanceResult struct {
	domain.Advance
	Rating       *app.Rating `json:"rating,omitempty"`
	CorrectOutOf int         `json:"correctOutOf,omitempty"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and drives the progress engine.
// Every connection shares the handler's session and receives its dashboard updates.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	// Subscribe before the handshake completes so no update is missed.
	updates, cancel := h.session.Subscribe()
	defer cancel()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	log := h.log.With(zap.String("conn_id", uuid.NewString()))
	log.Debug("ws connected", zap.String("remote", r.RemoteAddr))
	defer log.Debug("ws disconnected")

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Debug("ws write error", zap.Error(err))
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "dashboard", Payload: update}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	if progress, err := h.engine.Progress(h.session); err == nil {
		send <- outboundMessage[any]{Type: "progress", Payload: progress}
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		reply, err := h.dispatch(r, inbound)
		if err != nil {
			log.Debug("ws request failed", zap.String("type", inbound.Type), zap.Error(err))
			send <- errorMessage(err)
			continue
		}
		send <- reply
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

var errUnsupported = errors.New("unsupported message type")

func (h *WSHandler) dispatch(r *http.Request, inbound inboundMessage) (outboundMessage[any], error) {
	ctx := r.Context()
	switch inbound.Type {
	case "init":
		var payload initPayload
		if err := decodePayload(inbound.Payload, &payload); err != nil {
			return outboundMessage[any]{}, err
		}
		progress, err := h.engine.Initialize(ctx, h.session, payload.Username)
		if err != nil {
			return outboundMessage[any]{}, err
		}
		return outboundMessage[any]{Type: "progress", Payload: progress}, nil

	case "select":
		var payload levelPayload
		if err := decodePayload(inbound.Payload, &payload); err != nil {
			return outboundMessage[any]{}, err
		}
		if payload.Level == nil {
			return outboundMessage[any]{}, errInvalidPayload
		}
		progress, err := h.engine.SelectLevel(ctx, h.session, *payload.Level)
		if err != nil {
			return outboundMessage[any]{}, err
		}
		return outboundMessage[any]{Type: "progress", Payload: progress}, nil

	case "question":
		var payload questionPayload
		if err := decodePayload(inbound.Payload, &payload); err != nil {
			return outboundMessage[any]{}, err
		}
		if payload.Level == nil || payload.Index == nil {
			return outboundMessage[any]{}, errInvalidPayload
		}
		level, index := *payload.Level, *payload.Index
		q, err := h.engine.Question(ctx, level, index)
		if err != nil {
			return outboundMessage[any]{}, err
		}
		return outboundMessage[any]{Type: "question", Payload: q.View(level, index)}, nil

	case "answer":
		var payload answerPayload
		if err := decodePayload(inbound.Payload, &payload); err != nil {
			return outboundMessage[any]{}, err
		}
		if payload.Level == nil || payload.Index == nil {
			return outboundMessage[any]{}, errInvalidPayload
		}
		result, err := h.engine.SubmitAnswer(ctx, h.session, *payload.Level, *payload.Index, payload.Selected)
		if err != nil {
			return outboundMessage[any]{}, err
		}
		return outboundMessage[any]{Type: "answerResult", Payload: result}, nil

	case "advance":
		decision, err := h.engine.AdvanceOrFinish(ctx, h.session)
		if err != nil {
			return outboundMessage[any]{}, err
		}
		out := advanceResult{Advance: decision}
		if decision.OverallComplete {
			progress, err := h.engine.Progress(h.session)
			if err != nil {
				return outboundMessage[any]{}, err
			}
			rating := app.RateScore(*decision.AverageScore, progress.Username)
			out.Rating = &rating
			out.CorrectOutOf = app.CorrectOutOf(*decision.AverageScore)
		}
		return outboundMessage[any]{Type: "advance", Payload: out}, nil

	case "dashboard":
		dashboard, err := h.engine.Dashboard(h.session)
		if err != nil {
			return outboundMessage[any]{}, err
		}
		return outboundMessage[any]{Type: "dashboard", Payload: dashboard}, nil

	case "reset":
		h.engine.Reset(ctx, h.session)
		return outboundMessage[any]{Type: "reset", Payload: struct{}{}}, nil

	default:
		return outboundMessage[any]{}, errUnsupported
	}
}

var errInvalidPayload = errors.New("invalid payload")

func decodePayload(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return errInvalidPayload
	}
	if err := json.Unmarshal(raw, v); err != nil {
		if errors.Is(err, domain.ErrUnknownLevel) {
			return err
		}
		return errInvalidPayload
	}
	return nil
}

func errorMessage(err error) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Code: errorCode(err), Message: err.Error()}}
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidUsername):
		return "invalid_username"
	case errors.Is(err, domain.ErrNoProgress):
		return "no_progress"
	case errors.Is(err, domain.ErrProgressExists):
		return "progress_exists"
	case errors.Is(err, domain.ErrUnknownLevel):
		return "unknown_level"
	case errors.Is(err, domain.ErrQuestionOutOfRange):
		return "question_out_of_range"
	case errors.Is(err, domain.ErrLevelLocked):
		return "level_locked"
	case errors.Is(err, errInvalidPayload):
		return "invalid_payload"
	case errors.Is(err, errUnsupported):
		return "unsupported"
	default:
		return "internal"
	}
}
