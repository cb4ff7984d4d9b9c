package engine

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/emberchat/ember-server/internal/config"
	"github.com/emberchat/ember-server/internal/events"
	"github.com/emberchat/ember-server/internal/models"
)

type fakeTask struct {
	d       time.Duration
	fn      func()
	stopped bool
}

func (t *fakeTask) Stop() bool {
	was := t.stopped
	t.stopped = true
	return !was
}

type fakeScheduler struct {
	tasks []*fakeTask
}

func (s *fakeScheduler) Schedule(d time.Duration, fn func()) models.Stopper {
	t := &fakeTask{d: d, fn: fn}
	s.tasks = append(s.tasks, t)
	return t
}

// fireLast runs the most recently scheduled task unless it was cancelled.
func (s *fakeScheduler) fireLast() {
	t := s.tasks[len(s.tasks)-1]
	if !t.stopped {
		t.fn()
	}
}

type emitted struct {
	target  string
	isRoom  bool
	event   string
	payload any
}

type fakeEmitter struct {
	sent []emitted
}

func (f *fakeEmitter) ToConnection(connID, event string, payload any) {
	f.sent = append(f.sent, emitted{target: connID, event: event, payload: payload})
}

func (f *fakeEmitter) ToRoom(roomID, event string, payload any) {
	f.sent = append(f.sent, emitted{target: roomID, isRoom: true, event: event, payload: payload})
}

func (f *fakeEmitter) Join(connID, roomID string)  {}
func (f *fakeEmitter) Leave(connID, roomID string) {}

// to returns every event with the given name sent to a connection.
func (f *fakeEmitter) to(connID, event string) []emitted {
	var out []emitted
	for _, m := range f.sent {
		if !m.isRoom && m.target == connID && m.event == event {
			out = append(out, m)
		}
	}
	return out
}

// toRoom returns every event with the given name broadcast to a room.
func (f *fakeEmitter) toRoom(roomID, event string) []emitted {
	var out []emitted
	for _, m := range f.sent {
		if m.isRoom && m.target == roomID && m.event == event {
			out = append(out, m)
		}
	}
	return out
}

func newTestEngine(t *testing.T) (*Engine, *fakeEmitter, *fakeScheduler) {
	t.Helper()
	emit := &fakeEmitter{}
	sched := &fakeScheduler{}
	eng := New(config.Default(), emit, sched, zerolog.Nop())
	return eng, emit, sched
}

// pair connects a and b with the given identifiers, queues both and
// returns the session room id from the matched event.
func pair(t *testing.T, eng *Engine, emit *fakeEmitter, aIdent, bIdent string) string {
	t.Helper()
	eng.Connect("a")
	eng.Connect("b")
	eng.JoinQueue("a", aIdent, nil)
	eng.JoinQueue("b", bIdent, nil)

	matched := emit.to("a", events.Matched)
	require.Len(t, matched, 1)
	return matched[0].payload.(events.MatchedPayload).RoomID
}

func TestJoinQueueIdempotent(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	eng.Connect("a")

	eng.JoinQueue("a", "alice", nil)
	eng.JoinQueue("a", "alice", nil)

	queued, sessions := eng.Stats()
	require.Equal(t, 1, queued)
	require.Equal(t, 0, sessions)
}

func TestJoinQueueWhileInSessionIgnored(t *testing.T) {
	eng, emit, _ := newTestEngine(t)
	pair(t, eng, emit, "alice", "bob")

	eng.JoinQueue("a", "alice", nil)

	queued, sessions := eng.Stats()
	require.Equal(t, 0, queued)
	require.Equal(t, 1, sessions)
}

func TestBasicPairing(t *testing.T) {
	eng, emit, _ := newTestEngine(t)
	eng.Connect("x")
	eng.Connect("y")

	eng.JoinQueue("x", "xena", nil)
	eng.JoinQueue("y", "yuri", nil)

	forX := emit.to("x", events.Matched)
	forY := emit.to("y", events.Matched)
	require.Len(t, forX, 1)
	require.Len(t, forY, 1)

	px := forX[0].payload.(events.MatchedPayload)
	py := forY[0].payload.(events.MatchedPayload)
	require.Equal(t, px.RoomID, py.RoomID)
	require.Equal(t, "yuri", px.PartnerIdentifier)
	require.Equal(t, "xena", py.PartnerIdentifier)
	require.Equal(t, (3 * time.Minute).Milliseconds(), px.Duration)

	queued, sessions := eng.Stats()
	require.Equal(t, 0, queued)
	require.Equal(t, 1, sessions)
}

func TestBlockedPairingDeferred(t *testing.T) {
	tests := []struct {
		name       string
		aBlockList []string
		bBlockList []string
	}{
		{name: "requester blocks target", aBlockList: []string{"bob"}},
		{name: "target blocks requester", bBlockList: []string{"alice"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng, emit, _ := newTestEngine(t)
			eng.Connect("a")
			eng.Connect("b")

			eng.JoinQueue("a", "alice", tt.aBlockList)
			eng.JoinQueue("b", "bob", tt.bBlockList)

			require.Empty(t, emit.to("a", events.Matched))
			require.Empty(t, emit.to("b", events.Matched))
			queued, _ := eng.Stats()
			require.Equal(t, 2, queued)

			// A compatible third arrival pairs with the earliest
			// queued connection.
			eng.Connect("c")
			eng.JoinQueue("c", "carol", nil)

			require.Len(t, emit.to("a", events.Matched), 1)
			require.Len(t, emit.to("c", events.Matched), 1)
			require.Empty(t, emit.to("b", events.Matched))
			queued, sessions := eng.Stats()
			require.Equal(t, 1, queued)
			require.Equal(t, 1, sessions)
		})
	}
}

func TestLeaveQueue(t *testing.T) {
	eng, emit, _ := newTestEngine(t)
	eng.Connect("a")
	eng.Connect("b")
	eng.JoinQueue("a", "alice", nil)
	eng.LeaveQueue("a")
	eng.JoinQueue("b", "bob", nil)

	require.Empty(t, emit.to("b", events.Matched))
	queued, _ := eng.Stats()
	require.Equal(t, 1, queued)

	// Back to idle, so re-joining works.
	eng.JoinQueue("a", "alice", nil)
	require.Len(t, emit.to("a", events.Matched), 1)
}

func TestCreateSessionRequeuesSurvivor(t *testing.T) {
	eng, emit, _ := newTestEngine(t)
	eng.Connect("a")

	eng.mu.Lock()
	eng.createSessionLocked("a", "ghost")
	eng.mu.Unlock()

	require.Empty(t, emit.to("a", events.Matched))
	require.Equal(t, models.StatusQueued, eng.conns["a"].Status)
	queued, sessions := eng.Stats()
	require.Equal(t, 1, queued)
	require.Equal(t, 0, sessions)
}

func TestRegisterIdentifierLastWins(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	eng.Connect("a")
	eng.Connect("b")

	eng.RegisterIdentifier("a", "dup")
	eng.RegisterIdentifier("b", "dup")

	require.Equal(t, "b", eng.identifiers["dup"])

	// The loser's disconnect must not tear down the winner's mapping.
	eng.Disconnect("a", "transport closed")
	require.Equal(t, "b", eng.identifiers["dup"])
}
