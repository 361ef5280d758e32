package registry

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	id     string
	closed atomic.Bool
}

func (c *fakeConn) ID() string { return c.id }

func (c *fakeConn) Send(interface{}) error {
	if c.closed.Load() {
		return ErrConnClosed
	}
	return nil
}

func (c *fakeConn) Close() { c.closed.Store(true) }

func TestLocal_RegisterLookup(t *testing.T) {
	// Given
	r := require.New(t)
	reg := NewLocal(nil)
	conn := &fakeConn{id: "c1"}

	// When
	prev := reg.Register("alice", conn)

	// Then
	r.Nil(prev)
	got, ok := reg.Lookup("alice")
	r.True(ok)
	r.Same(conn, got)
	r.Equal(1, reg.Count())

	_, ok = reg.Lookup("bob")
	r.False(ok)
}

func TestLocal_Supersession(t *testing.T) {
	// Given
	r := require.New(t)
	reg := NewLocal(nil)
	old := &fakeConn{id: "old"}
	newer := &fakeConn{id: "new"}
	reg.Register("alice", old)

	// When
	prev := reg.Register("alice", newer)

	// Then
	r.Same(old, prev)
	got, ok := reg.Lookup("alice")
	r.True(ok)
	r.Same(newer, got)
	r.Equal(1, reg.Count())

	// The superseded connection closing later must not evict its replacement.
	r.False(reg.Release("alice", old))
	got, ok = reg.Lookup("alice")
	r.True(ok)
	r.Same(newer, got)

	r.True(reg.Release("alice", newer))
	_, ok = reg.Lookup("alice")
	r.False(ok)
}

func TestLocal_RegisterSameConnTwice(t *testing.T) {
	r := require.New(t)
	reg := NewLocal(nil)
	conn := &fakeConn{id: "c1"}

	reg.Register("alice", conn)
	r.Nil(reg.Register("alice", conn))
}

func TestLocal_UnregisterIdempotent(t *testing.T) {
	r := require.New(t)
	reg := NewLocal(nil)
	reg.Register("alice", &fakeConn{id: "c1"})

	reg.Unregister("alice")
	reg.Unregister("alice")
	reg.Unregister("nobody")

	_, ok := reg.Lookup("alice")
	r.False(ok)
	r.Zero(reg.Count())
}

func TestLocal_CloseAll(t *testing.T) {
	r := require.New(t)
	reg := NewLocal(nil)
	a := &fakeConn{id: "a"}
	b := &fakeConn{id: "b"}
	reg.Register("alice", a)
	reg.Register("bob", b)

	reg.CloseAll()

	r.True(a.closed.Load())
	r.True(b.closed.Load())
	r.Zero(reg.Count())
}

type recordingPresence struct {
	NopPresence
	mu     sync.Mutex
	online map[string]bool
}

func (p *recordingPresence) MarkOnline(_ context.Context, userID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.online[userID] = true
	return nil
}

func (p *recordingPresence) MarkOffline(_ context.Context, userID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.online, userID)
	return nil
}

func (p *recordingPresence) IsOnline(_ context.Context, userID string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.online[userID], nil
}

func TestLocal_PresenceFollowsRegistration(t *testing.T) {
	// Given
	r := require.New(t)
	presence := &recordingPresence{online: map[string]bool{"remote": true}}
	reg := NewLocal(presence)
	ctx := context.Background()
	old := &fakeConn{id: "old"}
	newer := &fakeConn{id: "new"}

	// When
	reg.Register("alice", old)
	reg.Register("alice", newer)
	reg.Release("alice", old)

	// Then
	online, err := reg.IsOnline(ctx, "alice")
	r.NoError(err)
	r.True(online)
	r.True(presence.online["alice"], "stale release must not clear presence")

	online, err = reg.IsOnline(ctx, "remote")
	r.NoError(err)
	r.True(online)

	reg.Release("alice", newer)
	online, err = reg.IsOnline(ctx, "alice")
	r.NoError(err)
	r.False(online)
}

func TestLocal_ConcurrentAccess(t *testing.T) {
	r := require.New(t)
	reg := NewLocal(nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			user := fmt.Sprintf("user-%d", i%5)
			conn := &fakeConn{id: fmt.Sprintf("conn-%d", i)}
			if prev := reg.Register(user, conn); prev != nil {
				prev.Close()
			}
			reg.Lookup(user)
			reg.Release(user, conn)
		}(i)
	}
	wg.Wait()

	// Every final registration is released by its own goroutine.
	r.Equal(0, reg.Count())
}

// gatedPresence holds the first MarkOffline call until gate is closed.
type gatedPresence struct {
	*recordingPresence
	entered chan struct{}
	gate    chan struct{}
	once    sync.Once
}

func (p *gatedPresence) MarkOffline(ctx context.Context, userID string) error {
	first := false
	p.once.Do(func() { first = true })
	if first {
		close(p.entered)
		<-p.gate
	}
	return p.recordingPresence.MarkOffline(ctx, userID)
}

func TestLocal_LateReleaseDoesNotClearReconnectPresence(t *testing.T) {
	// Given alice is connected
	r := require.New(t)
	presence := &gatedPresence{
		recordingPresence: &recordingPresence{online: map[string]bool{}},
		entered:           make(chan struct{}),
		gate:              make(chan struct{}),
	}
	reg := NewLocal(presence)
	ctx := context.Background()
	old := &fakeConn{id: "old"}
	newer := &fakeConn{id: "new"}
	reg.Register("alice", old)

	// When the old connection's release stalls on the presence store
	released := make(chan bool)
	go func() { released <- reg.Release("alice", old) }()
	<-presence.entered

	// And alice reconnects meanwhile
	registered := make(chan struct{})
	go func() {
		reg.Register("alice", newer)
		close(registered)
	}()
	r.Eventually(func() bool {
		conn, ok := reg.Lookup("alice")
		return ok && conn == Conn(newer)
	}, time.Second, 5*time.Millisecond)

	close(presence.gate)
	r.True(<-released)
	<-registered

	// Then the reconnect stays visible to other instances
	online, err := presence.recordingPresence.IsOnline(ctx, "alice")
	r.NoError(err)
	r.True(online)
}
