package state

import (
	"sync"

	"github.com/Growstale/RequestHandlerWebServer/core/logger"
	tghelpers "github.com/Growstale/RequestHandlerWebServer/core/telegram/helpers"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// State identifies a finite-state-machine step used in conversations.
type State string

const (
	// StateIdle indicates there is no active conversation.
	StateIdle State = "idle"
)

// Key identifies a conversation. The same user talking to the bot in a
// private chat and in a group chat holds two independent sessions.
type Key struct {
	UserID int64
	ChatID int64
}

// KeyFrom derives the session key from an incoming update.
func KeyFrom(c tele.Context) Key {
	var k Key
	if s := c.Sender(); s != nil {
		k.UserID = s.ID
	}
	if ch := c.Chat(); ch != nil {
		k.ChatID = ch.ID
	}
	return k
}

// Session stores the conversation state together with its typed payload.
type Session[T any] struct {
	State State
	Data  *T
}

// Manager orchestrates sessions and FSM state transitions for a single
// conversation flow. Handlers registered per state receive the text updates
// routed here while the conversation is in progress.
type Manager[T any] struct {
	mu       sync.RWMutex
	sessions map[Key]*Session[T]
	handlers map[State]tele.HandlerFunc
}

// NewManager constructs an in-memory session manager.
func NewManager[T any]() *Manager[T] {
	return &Manager[T]{
		sessions: make(map[Key]*Session[T]),
		handlers: make(map[State]tele.HandlerFunc),
	}
}

// Handle registers the handler invoked for text updates arriving in the given state.
func (m *Manager[T]) Handle(st State, h tele.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[st] = h
}

// Begin starts a fresh session in the given state with the provided payload,
// replacing any previous session under the same key.
func (m *Manager[T]) Begin(k Key, st State, data *T) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[k] = &Session[T]{State: st, Data: data}
}

// Get returns the active session, or nil when no conversation is in progress.
func (m *Manager[T]) Get(k Key) *Session[T] {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[k]
}

// SetState transitions an existing session to the given state. Missing
// sessions are ignored: a transition never resurrects a cancelled conversation.
func (m *Manager[T]) SetState(k Key, st State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sess, ok := m.sessions[k]; ok {
		sess.State = st
	}
}

// GetState returns the current state, or StateIdle if no session exists.
func (m *Manager[T]) GetState(k Key) State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if sess, ok := m.sessions[k]; ok {
		return sess.State
	}
	return StateIdle
}

// Clear removes the session entirely, discarding its payload.
func (m *Manager[T]) Clear(k Key) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, k)
}

// InProgress reports whether the conversation has an active non-idle state.
func (m *Manager[T]) InProgress(userID, chatID int64) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[Key{UserID: userID, ChatID: chatID}]
	return ok && sess.State != StateIdle
}

// ManagerHandler executes the handler registered for the current state, if any.
func (m *Manager[T]) ManagerHandler(c tele.Context) error {
	k := KeyFrom(c)
	current := m.GetState(k)
	ctx := tghelpers.BuildContext(c)
	logger.Debug(ctx, "tg", "fsm.manager",
		slog.String("status", "ok"),
		slog.Int64("user_id", k.UserID),
		slog.Int64("chat_id", k.ChatID),
		slog.String("state", string(current)),
	)

	m.mu.RLock()
	handler, ok := m.handlers[current]
	m.mu.RUnlock()
	if ok && handler != nil {
		return handler(c)
	}
	return nil
}
