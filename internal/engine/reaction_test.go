package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/emberchat/ember-server/internal/events"
	"github.com/emberchat/ember-server/internal/models"
)

// timeoutSession pairs a and b and expires the session, opening a
// reaction window.
func timeoutSession(t *testing.T, eng *Engine, emit *fakeEmitter, sched *fakeScheduler) {
	t.Helper()
	pair(t, eng, emit, "alice", "bob")
	sched.tasks[0].fn()
	require.Len(t, eng.windows, 1)
}

func TestReactionVeto(t *testing.T) {
	tests := []struct {
		name  string
		votes []struct {
			conn     string
			reaction models.Reaction
		}
	}{
		{
			name: "cross first",
			votes: []struct {
				conn     string
				reaction models.Reaction
			}{{"a", models.ReactionCross}},
		},
		{
			name: "flame then cross",
			votes: []struct {
				conn     string
				reaction models.Reaction
			}{{"a", models.ReactionFlame}, {"b", models.ReactionCross}},
		},
		{
			name: "cross then flame",
			votes: []struct {
				conn     string
				reaction models.Reaction
			}{{"b", models.ReactionCross}, {"a", models.ReactionFlame}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng, emit, sched := newTestEngine(t)
			timeoutSession(t, eng, emit, sched)

			for _, v := range tt.votes {
				eng.SendReaction(v.conn, v.reaction)
			}

			for _, conn := range []string{"a", "b"} {
				results := emit.to(conn, events.ReactionResult)
				require.Len(t, results, 1)
				require.Equal(t, models.ResultEnd, results[0].payload.(events.ReactionResultPayload).Result)
			}
			require.Empty(t, eng.windows)
		})
	}
}

func TestReactionMutualContinue(t *testing.T) {
	eng, emit, sched := newTestEngine(t)
	timeoutSession(t, eng, emit, sched)

	eng.SendReaction("a", models.ReactionFlame)
	require.Empty(t, emit.to("a", events.ReactionResult))

	eng.SendReaction("b", models.ReactionFlame)

	forA := emit.to("a", events.ReactionResult)
	forB := emit.to("b", events.ReactionResult)
	require.Len(t, forA, 1)
	require.Len(t, forB, 1)
	require.Equal(t, models.ResultContinue, forA[0].payload.(events.ReactionResultPayload).Result)
	require.Equal(t, "bob", forA[0].payload.(events.ReactionResultPayload).PartnerIdentifier)
	require.Equal(t, "alice", forB[0].payload.(events.ReactionResultPayload).PartnerIdentifier)
}

func TestReactionDeadlineForceEnd(t *testing.T) {
	eng, emit, sched := newTestEngine(t)
	timeoutSession(t, eng, emit, sched)

	// tasks[1] is the window deadline, armed when the session expired.
	sched.fireLast()

	results := emit.to("a", events.ReactionResult)
	require.Len(t, results, 1)
	require.Equal(t, models.ResultEnd, results[0].payload.(events.ReactionResultPayload).Result)
	require.Empty(t, eng.windows)
}

func TestReactionResolvedExactlyOnce(t *testing.T) {
	eng, emit, sched := newTestEngine(t)
	timeoutSession(t, eng, emit, sched)

	eng.SendReaction("a", models.ReactionFlame)
	eng.SendReaction("a", models.ReactionCross) // duplicate vote, ignored
	eng.SendReaction("b", models.ReactionFlame)

	// Race the deadline against the already-resolved window.
	sched.tasks[1].fn()
	eng.SendReaction("a", models.ReactionCross)

	forA := emit.to("a", events.ReactionResult)
	require.Len(t, forA, 1)
	require.Equal(t, models.ResultContinue, forA[0].payload.(events.ReactionResultPayload).Result)
}

func TestReactionDisconnectForceResolves(t *testing.T) {
	eng, emit, sched := newTestEngine(t)
	timeoutSession(t, eng, emit, sched)

	eng.Disconnect("a", "transport closed")

	results := emit.to("b", events.ReactionResult)
	require.Len(t, results, 1)
	require.Equal(t, models.ResultEnd, results[0].payload.(events.ReactionResultPayload).Result)
	require.Empty(t, eng.windows)
	require.Empty(t, eng.conns["b"].ReactionRoomID)
}

func TestReactionFromOutsiderIgnored(t *testing.T) {
	eng, emit, sched := newTestEngine(t)
	timeoutSession(t, eng, emit, sched)

	eng.Connect("z")
	eng.SendReaction("z", models.ReactionCross)

	require.Empty(t, emit.to("a", events.ReactionResult))
	require.Len(t, eng.windows, 1)
}
