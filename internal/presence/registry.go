// Package presence tracks which users currently hold a live WebSocket
// connection. The registry is the single source of truth for online state;
// the durable is_online column is a best-effort mirror for dashboards and is
// rebuilt from zero on restart.
package presence

import (
	"context"
	"sync"

	"github.com/Vinyl-Lilith/GreenGiant/internal/auth"
	"github.com/Vinyl-Lilith/GreenGiant/internal/bus"
	"github.com/Vinyl-Lilith/GreenGiant/internal/infrastructure/logging"
)

// OnlineUser is the public view of one online user, served by GET /presence.
type OnlineUser struct {
	ID       string    `json:"id"`
	Username string    `json:"username"`
	Role     auth.Role `json:"role"`
}

type entry struct {
	user *auth.User
	conn bus.Conn
}

// Registry maps user IDs to their current live connection.
//
// A user has at most one tracked connection; a second connect from the same
// account replaces the first (last connect wins) and the superseded
// connection is closed. A disconnect for a connection that is no longer the
// current one is a no-op, so reconnect storms cannot mark a freshly
// reconnected user offline.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry

	bus    bus.Bus
	users  auth.UserRepository
	logger *logging.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(b bus.Bus, users auth.UserRepository, logger *logging.Logger) *Registry {
	return &Registry{
		entries: make(map[string]*entry),
		bus:     b,
		users:   users,
		logger:  logger,
	}
}

// MarkOnline records a new live connection for the user.
//
// When the user was already online the previous connection is closed and
// replaced without publishing a transition (the user never went offline).
// A genuine offline-to-online transition publishes user_online and mirrors
// the flag to the durable store. The registry lock is released before the
// publish and the store write.
func (r *Registry) MarkOnline(ctx context.Context, user *auth.User, conn bus.Conn) {
	r.mu.Lock()
	prev, wasOnline := r.entries[user.ID]
	r.entries[user.ID] = &entry{user: user, conn: conn}
	r.mu.Unlock()

	if wasOnline {
		if prev.conn != conn {
			prev.conn.Close()
		}
		r.logger.Debug("presence connection replaced", "user_id", user.ID)
		return
	}

	r.logger.Info("user online", "user_id", user.ID, "username", user.Username)
	r.bus.Publish(bus.TopicUserOnline, OnlineUser{ID: user.ID, Username: user.Username, Role: user.Role})
	r.mirrorOnlineFlag(ctx, user.ID, true)
}

// MarkOffline removes the user's connection if conn is still the current one.
// Stale disconnects (the connection was already superseded) are a no-op.
func (r *Registry) MarkOffline(ctx context.Context, userID string, conn bus.Conn) {
	r.mu.Lock()
	cur, ok := r.entries[userID]
	if !ok || cur.conn != conn {
		r.mu.Unlock()
		return
	}
	user := cur.user
	delete(r.entries, userID)
	r.mu.Unlock()

	r.logger.Info("user offline", "user_id", userID, "username", user.Username)
	r.bus.Publish(bus.TopicUserOffline, OnlineUser{ID: userID, Username: user.Username, Role: user.Role})
	r.mirrorOnlineFlag(ctx, userID, false)
}

// IsOnline reports whether the user currently holds a live connection.
func (r *Registry) IsOnline(userID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.entries[userID]
	return ok
}

// ConnectionOf returns the user's current connection, if any.
func (r *Registry) ConnectionOf(userID string) (bus.Conn, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[userID]
	if !ok {
		return nil, false
	}
	return e.conn, true
}

// ConnectionsOf returns the connections of all online users with the role.
func (r *Registry) ConnectionsOf(role auth.Role) []bus.Conn {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []bus.Conn
	for _, e := range r.entries {
		if e.user.Role == role {
			out = append(out, e.conn)
		}
	}
	return out
}

// OnlineUsers returns a snapshot of everyone currently online.
func (r *Registry) OnlineUsers() []OnlineUser {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]OnlineUser, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, OnlineUser{ID: e.user.ID, Username: e.user.Username, Role: e.user.Role})
	}
	return out
}

// OnlineCount returns the number of online users.
func (r *Registry) OnlineCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// mirrorOnlineFlag updates the durable is_online column. Failures are logged
// and ignored; the registry stays authoritative.
func (r *Registry) mirrorOnlineFlag(ctx context.Context, userID string, online bool) {
	if r.users == nil {
		return
	}
	if err := r.users.SetOnline(ctx, userID, online); err != nil {
		r.logger.Warn("online flag mirror failed", "user_id", userID, "online", online, "error", err)
	}
}
