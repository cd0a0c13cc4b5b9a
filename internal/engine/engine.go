// Package engine owns the conversation state machine: it classifies
// each inbound message against the user's session, mutates the session,
// and produces the outbound replies.
package engine

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"kapebot/internal/domain"
	"kapebot/internal/repository"
	"kapebot/internal/service"
	"kapebot/internal/transport"
)

// Engine drives one conversation turn per inbound message. Sessions
// are read, mutated and written exactly once per turn, and turns for
// the same user are serialized.
type Engine struct {
	sessions   repository.SessionStore
	greeted    repository.GreetedStore
	properties *service.PropertyService
	assistant  *service.Assistant
	sender     transport.Sender
	logger     *zap.Logger

	lockMu    sync.Mutex
	userLocks map[string]*sync.Mutex
}

// New creates an engine
func New(
	sessions repository.SessionStore,
	greeted repository.GreetedStore,
	properties *service.PropertyService,
	assistant *service.Assistant,
	sender transport.Sender,
	logger *zap.Logger,
) *Engine {
	return &Engine{
		sessions:   sessions,
		greeted:    greeted,
		properties: properties,
		assistant:  assistant,
		sender:     sender,
		logger:     logger,
		userLocks:  make(map[string]*sync.Mutex),
	}
}

// Handle processes one inbound message to completion, including all
// outbound sends. Messages from the same user are handled strictly in
// turn; other users are not blocked. Every turn ends with at least one
// reply, falling back to a generic apology on internal errors.
func (e *Engine) Handle(ctx context.Context, msg domain.InboundMessage) {
	unlock := e.lockUser(msg.SenderID)
	defer unlock()

	replies, err := e.processSafe(ctx, msg)
	if err != nil {
		e.logger.Error("turn failed",
			zap.String("user_id", msg.SenderID),
			zap.Error(err),
		)
		replies = []string{msgGenericError}
	}
	if len(replies) == 0 {
		replies = []string{msgGenericError}
	}

	for _, body := range replies {
		if err := e.sender.Send(ctx, msg.SenderID, body); err != nil {
			// Delivery is best-effort; a failed send must not take
			// down the turn.
			e.logger.Error("outbound send failed",
				zap.String("user_id", msg.SenderID),
				zap.Error(err),
			)
		}
	}
}

// processSafe converts a panicking transition into an error so the
// user still gets the apology instead of silence.
func (e *Engine) processSafe(ctx context.Context, msg domain.InboundMessage) (replies []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("turn panicked: %v", r)
		}
	}()
	return e.Process(ctx, msg)
}

// Process runs the state transition for one message and returns the
// replies to send, without sending them. Exposed so transitions are
// testable with no transport.
func (e *Engine) Process(ctx context.Context, msg domain.InboundMessage) ([]string, error) {
	t, err := e.newTurn(ctx, msg)
	if err != nil {
		return nil, err
	}

	for _, rule := range rules {
		if rule.matches(t) {
			e.logger.Info("turn classified",
				zap.String("user_id", t.userID),
				zap.String("rule", rule.name),
				zap.String("step", string(t.session.Step)),
			)
			return rule.run(ctx, e, t)
		}
	}

	// rules end with a catch-all; reaching here is a bug
	return []string{msgGenericError}, nil
}

// lockUser serializes turns per user id
func (e *Engine) lockUser(userID string) func() {
	e.lockMu.Lock()
	l, ok := e.userLocks[userID]
	if !ok {
		l = &sync.Mutex{}
		e.userLocks[userID] = l
	}
	e.lockMu.Unlock()

	l.Lock()
	return l.Unlock
}
