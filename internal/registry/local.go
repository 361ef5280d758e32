package registry

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/weiawesome/offershare/pkg/log"
)

const (
	presenceTimeout = 2 * time.Second
	presenceStripes = 64
)

// Local maps each user identity to at most one live connection in this process.
type Local struct {
	conns    map[string]Conn // userID -> conn
	presence Presence
	mu       sync.RWMutex

	// Presence writes for one user are serialised and always publish the
	// registration state read under the stripe lock.
	presenceMu [presenceStripes]sync.Mutex
}

func NewLocal(presence Presence) *Local {
	if presence == nil {
		presence = NopPresence{}
	}
	return &Local{
		conns:    make(map[string]Conn),
		presence: presence,
	}
}

// Register makes conn the live connection for userID. A connection it
// replaces is returned so the caller can close it; it is never closed here.
func (r *Local) Register(userID string, conn Conn) Conn {
	r.mu.Lock()
	prev := r.conns[userID]
	r.conns[userID] = conn
	r.mu.Unlock()

	l := log.L()
	if prev != nil && prev != conn {
		l.Info().Str(log.FieldUserID, userID).Str(log.FieldConnID, prev.ID()).Str("new_conn_id", conn.ID()).Msg("connection superseded")
	} else {
		prev = nil
		l.Debug().Str(log.FieldUserID, userID).Str(log.FieldConnID, conn.ID()).Msg("connection registered")
	}

	r.syncPresence(userID)
	return prev
}

// Lookup returns the live connection for userID.
func (r *Local) Lookup(userID string) (Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, ok := r.conns[userID]
	return conn, ok
}

// Unregister removes whatever connection userID holds. Safe when absent.
func (r *Local) Unregister(userID string) {
	r.mu.Lock()
	_, ok := r.conns[userID]
	delete(r.conns, userID)
	r.mu.Unlock()

	if ok {
		r.syncPresence(userID)
	}
}

// Release removes the mapping only while conn is still the one registered
// for userID, so a superseded connection closing late leaves its
// replacement in place.
func (r *Local) Release(userID string, conn Conn) bool {
	r.mu.Lock()
	current, ok := r.conns[userID]
	if !ok || current != conn {
		r.mu.Unlock()
		return false
	}
	delete(r.conns, userID)
	r.mu.Unlock()

	l := log.L()
	l.Debug().Str(log.FieldUserID, userID).Str(log.FieldConnID, conn.ID()).Msg("connection released")

	r.syncPresence(userID)
	return true
}

// Count returns the number of live connections.
func (r *Local) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// IsOnline reports whether userID is connected here or, via presence, elsewhere.
func (r *Local) IsOnline(ctx context.Context, userID string) (bool, error) {
	if _, ok := r.Lookup(userID); ok {
		return true, nil
	}
	return r.presence.IsOnline(ctx, userID)
}

// CloseAll empties the registry and closes every connection. Used at shutdown.
func (r *Local) CloseAll() {
	r.mu.Lock()
	conns := r.conns
	r.conns = make(map[string]Conn)
	r.mu.Unlock()

	for userID, conn := range conns {
		conn.Close()
		r.syncPresence(userID)
	}

	l := log.L()
	l.Info().Int("count", len(conns)).Msg("closed all connections")
}

// syncPresence publishes whether userID is registered here right now. A
// late call from a released connection therefore cannot clear presence for
// a connection registered after it.
func (r *Local) syncPresence(userID string) {
	m := &r.presenceMu[presenceStripe(userID)]
	m.Lock()
	defer m.Unlock()

	_, online := r.Lookup(userID)

	ctx, cancel := context.WithTimeout(context.Background(), presenceTimeout)
	defer cancel()

	var err error
	if online {
		err = r.presence.MarkOnline(ctx, userID)
	} else {
		err = r.presence.MarkOffline(ctx, userID)
	}
	if err != nil {
		l := log.L()
		l.Warn().Err(err).Str(log.FieldUserID, userID).Bool("online", online).Msg("presence update failed")
	}
}

func presenceStripe(userID string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return h.Sum32() % presenceStripes
}
