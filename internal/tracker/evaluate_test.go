package tracker_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studystreak/internal/models"
)

// four members, target 2h: 3 at or above target meets the 75% quorum exactly.
func newQuorumFixture(t *testing.T) *fixture {
	t.Helper()
	f := newFixture(t)
	_, err := f.tracker.Register("alice", "secret")
	require.NoError(t, err)
	_, err = f.tracker.CreateGroup("alice", "algebra", 2)
	require.NoError(t, err)
	f.addMember(t, "alice", "algebra", "bob")
	f.addMember(t, "alice", "algebra", "carol")
	f.addMember(t, "alice", "algebra", "dave")
	return f
}

func TestStreakIncrementsWhenQuorumMet(t *testing.T) {
	f := newQuorumFixture(t)

	require.NoError(t, f.tracker.LogHours("alice", "algebra", 2))
	require.NoError(t, f.tracker.LogHours("bob", "algebra", 3))
	require.NoError(t, f.tracker.LogHours("carol", "algebra", 2))
	require.NoError(t, f.tracker.LogHours("dave", "algebra", 1))

	f.tracker.EvaluateDay()

	g, err := f.tracker.Dashboard("algebra")
	require.NoError(t, err)
	assert.Equal(t, 1, g.StreakCount, "met 3/4, required 3")
	require.NotNil(t, g.LastEvaluated)
	assert.Equal(t, startDate, *g.LastEvaluated)
}

func TestStreakResetsWhenQuorumMissed(t *testing.T) {
	f := newQuorumFixture(t)

	// day one: quorum met
	require.NoError(t, f.tracker.LogHours("alice", "algebra", 2))
	require.NoError(t, f.tracker.LogHours("bob", "algebra", 3))
	require.NoError(t, f.tracker.LogHours("carol", "algebra", 2))
	require.NoError(t, f.tracker.LogHours("dave", "algebra", 2))
	f.tracker.EvaluateDay()

	// day two: only 2 of 4 meet the target, required is still 3
	require.NoError(t, f.tracker.LogHours("alice", "algebra", 2))
	require.NoError(t, f.tracker.LogHours("bob", "algebra", 2))
	require.NoError(t, f.tracker.LogHours("carol", "algebra", 1))
	require.NoError(t, f.tracker.LogHours("dave", "algebra", 1))
	f.tracker.EvaluateDay()

	g, err := f.tracker.Dashboard("algebra")
	require.NoError(t, err)
	assert.Zero(t, g.StreakCount)
}

// The failure counter moves twice for a below-target log: once when the log
// lands and once more during the end-of-day evaluation.
func TestBelowTargetLogCountsTwice(t *testing.T) {
	f := newFixture(t)
	_, err := f.tracker.Register("alice", "secret")
	require.NoError(t, err)
	_, err = f.tracker.CreateGroup("alice", "algebra", 4)
	require.NoError(t, err)

	require.NoError(t, f.tracker.LogHours("alice", "algebra", 2))
	assert.Equal(t, 1, f.status(t, "alice", "algebra").ConsecutiveFailures)

	f.tracker.EvaluateDay()
	assert.Equal(t, 2, f.status(t, "alice", "algebra").ConsecutiveFailures)
}

func TestEvaluationIncrementsFailuresForSilentMembers(t *testing.T) {
	f := newQuorumFixture(t)

	// nobody logs at all
	f.tracker.EvaluateDay()

	g, err := f.tracker.Dashboard("algebra")
	require.NoError(t, err)
	assert.Zero(t, g.StreakCount)
	for _, member := range []string{"alice", "bob", "carol", "dave"} {
		assert.Equal(t, 1, f.status(t, member, "algebra").ConsecutiveFailures, member)
	}
}

func TestAutoRemovalAfterThreeFailures(t *testing.T) {
	f := newFixture(t)
	_, err := f.tracker.Register("alice", "secret")
	require.NoError(t, err)
	_, err = f.tracker.CreateGroup("alice", "algebra", 2)
	require.NoError(t, err)
	f.addMember(t, "alice", "algebra", "bob")

	// bob never logs; the admin keeps the group alive
	for day := 0; day < 2; day++ {
		require.NoError(t, f.tracker.LogHours("alice", "algebra", 2))
		f.tracker.EvaluateDay()
	}
	g, err := f.tracker.Dashboard("algebra")
	require.NoError(t, err)
	assert.Contains(t, g.Members, "bob")
	assert.Equal(t, 2, f.status(t, "bob", "algebra").ConsecutiveFailures)

	require.NoError(t, f.tracker.LogHours("alice", "algebra", 2))
	f.tracker.EvaluateDay()

	// roster and status are torn down together
	g, err = f.tracker.Dashboard("algebra")
	require.NoError(t, err)
	assert.NotContains(t, g.Members, "bob")
	bob, err := f.store.GetUser("bob")
	require.NoError(t, err)
	assert.False(t, bob.IsMemberOf("algebra"))
}

func TestEagerAdjustmentAcceleratesRemoval(t *testing.T) {
	f := newFixture(t)
	_, err := f.tracker.Register("alice", "secret")
	require.NoError(t, err)
	_, err = f.tracker.CreateGroup("alice", "algebra", 4)
	require.NoError(t, err)
	f.addMember(t, "alice", "algebra", "bob")

	// day one: bob logs below target (counter 1 at log time, 2 after
	// evaluation); day two: bob stays silent and hits the threshold.
	require.NoError(t, f.tracker.LogHours("alice", "algebra", 4))
	require.NoError(t, f.tracker.LogHours("bob", "algebra", 1))
	f.tracker.EvaluateDay()
	assert.Equal(t, 2, f.status(t, "bob", "algebra").ConsecutiveFailures)

	require.NoError(t, f.tracker.LogHours("alice", "algebra", 4))
	f.tracker.EvaluateDay()

	g, err := f.tracker.Dashboard("algebra")
	require.NoError(t, err)
	assert.NotContains(t, g.Members, "bob")
}

func TestMeetingTargetAtEvaluationClearsFailures(t *testing.T) {
	f := newFixture(t)
	_, err := f.tracker.Register("alice", "secret")
	require.NoError(t, err)
	_, err = f.tracker.CreateGroup("alice", "algebra", 2)
	require.NoError(t, err)

	f.tracker.EvaluateDay()
	assert.Equal(t, 1, f.status(t, "alice", "algebra").ConsecutiveFailures)

	require.NoError(t, f.tracker.LogHours("alice", "algebra", 3))
	assert.Zero(t, f.status(t, "alice", "algebra").ConsecutiveFailures)

	f.tracker.EvaluateDay()
	assert.Zero(t, f.status(t, "alice", "algebra").ConsecutiveFailures)
}

func TestEvaluationRemovesUnresolvableRosterEntries(t *testing.T) {
	f := newFixture(t)
	_, err := f.tracker.Register("alice", "secret")
	require.NoError(t, err)
	_, err = f.tracker.CreateGroup("alice", "algebra", 2)
	require.NoError(t, err)

	g, err := f.tracker.Dashboard("algebra")
	require.NoError(t, err)
	g.Members = append(g.Members, "ghost")

	require.NoError(t, f.tracker.LogHours("alice", "algebra", 2))
	f.tracker.EvaluateDay()

	g, err = f.tracker.Dashboard("algebra")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, g.Members)
}

func TestEvaluateDayAdvancesDateAndResets(t *testing.T) {
	f := newQuorumFixture(t)
	require.NoError(t, f.tracker.LogHours("alice", "algebra", 2))
	require.NoError(t, f.tracker.LogHours("bob", "algebra", 5))

	next := f.tracker.EvaluateDay()
	assert.Equal(t, startDate.AddDate(0, 0, 1), next)
	assert.Equal(t, next, f.tracker.Today())

	g, err := f.tracker.Dashboard("algebra")
	require.NoError(t, err)
	assert.Empty(t, g.TodayStudy)

	for _, member := range []string{"alice", "bob"} {
		s := f.status(t, member, "algebra")
		assert.False(t, s.HasLoggedToday, member)
		assert.Zero(t, s.TodayHours, member)
	}
}

func TestEvaluateDayWithEmptyGroup(t *testing.T) {
	f := newFixture(t)
	g := models.NewGroup("empty", "nobody", 2)
	g.Members = nil
	require.NoError(t, f.store.CreateGroup(g))

	f.tracker.EvaluateDay()

	got, err := f.tracker.Dashboard("empty")
	require.NoError(t, err)
	assert.Zero(t, got.StreakCount)
	assert.Nil(t, got.LastEvaluated)
}
