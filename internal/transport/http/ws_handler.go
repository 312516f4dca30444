package http

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"classical-music-quiz/internal/app"
	"classical-music-quiz/internal/domain"
	"classical-music-quiz/internal/playback"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type WSHandler struct {
	service  *app.QuizService
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

func NewWSHandler(service *app.QuizService, logger *zap.Logger) *WSHandler {
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

type continuePayload struct {
	Remaining    []int `json:"remaining"`
	CurrentScore int   `json:"currentScore"`
}

type answerPayload struct {
	SampleID int `json:"sampleId"`
}

type mediaPayload struct {
	Action string `json:"action"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and drives one player's game over the connection.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	playerID := r.URL.Query().Get("playerId")
	if playerID == "" {
		http.Error(w, "missing playerId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx := r.Context()
	log := h.logger.With(zap.String("player", playerID))
	log.Info("player connected")

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Warn("ws write error", zap.Error(err))
				return
			}
		}
	}()

	emit := func(msg outboundMessage[any]) {
		select {
		case send <- msg:
		case <-closeSignals:
		}
	}
	emitError := func(err error) {
		emit(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}})
	}

	// The media session belongs to this connection and lives as long as it does.
	media := playback.NewMediaSession(func(status playback.Status) {
		emit(outboundMessage[any]{Type: "playback", Payload: status})
	}, log)

	var (
		forwarders sync.WaitGroup
		cancelSub  func()
	)
	watch := func() {
		if cancelSub != nil {
			cancelSub()
			cancelSub = nil
		}
		updates, cancel, err := h.service.Subscribe(ctx, playerID)
		if err != nil {
			return
		}
		cancelSub = cancel
		forwarders.Add(1)
		go func() {
			defer forwarders.Done()
			for event := range updates {
				emit(eventMessage(event))
			}
		}()
	}
	reply := func(event domain.Event, err error) {
		if event.Type != "" {
			emit(eventMessage(event))
		}
		if err != nil {
			emitError(err)
		}
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "newGame":
			event, err := h.service.StartNewGame(ctx, playerID, media)
			reply(event, err)
			if started(event, err) {
				watch()
			}
		case "continueGame":
			var payload continuePayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				emitError(errInvalidPayload)
				continue
			}
			event, err := h.service.ContinueGame(ctx, playerID, payload.Remaining, payload.CurrentScore, media)
			reply(event, err)
			if started(event, err) {
				watch()
			}
		case "nextQuestion":
			reply(h.service.NextQuestion(ctx, playerID))
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				emitError(errInvalidPayload)
				continue
			}
			verdict, err := h.service.Answer(ctx, playerID, payload.SampleID)
			if err != nil {
				emitError(err)
				continue
			}
			emit(outboundMessage[any]{Type: "verdict", Payload: verdict})
		case "media":
			var payload mediaPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				emitError(errInvalidPayload)
				continue
			}
			if err := media.Handle(playback.Action(payload.Action)); err != nil {
				emitError(err)
			}
		case "scores":
			summary, err := h.service.Scores(ctx, playerID)
			if err != nil {
				emitError(err)
				continue
			}
			emit(outboundMessage[any]{Type: "scores", Payload: summary})
		default:
			emitError(errUnsupportedMessage)
		}
	}

	close(closeSignals)
	h.service.Detach(context.Background(), playerID, media)
	if cancelSub != nil {
		cancelSub()
	}
	media.Release()
	forwarders.Wait()
	close(send)
	<-writerDone
	log.Info("player disconnected")
}

// started reports whether a new or continued game replaced the player's session.
// A failure without an event never reached the session store.
func started(event domain.Event, err error) bool {
	return err == nil || event.Type != ""
}

func eventMessage(event domain.Event) outboundMessage[any] {
	switch event.Type {
	case domain.EventQuestion:
		return outboundMessage[any]{Type: "question", Payload: event.Question}
	case domain.EventGameOver:
		return outboundMessage[any]{Type: "gameOver", Payload: event.Result}
	default:
		return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: event.Error}}
	}
}
