package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddJoinRequest(t *testing.T) {
	g := NewGroup("algebra", "alice", 2)
	g.AddMember("alice")

	require.NoError(t, g.AddJoinRequest("bob"))
	assert.Equal(t, []string{"bob"}, g.JoinRequests)

	err := g.AddJoinRequest("bob")
	require.Error(t, err)
	assert.True(t, IsKind(err, KindDuplicateRequest))

	err = g.AddJoinRequest("alice")
	require.Error(t, err)
	assert.True(t, IsKind(err, KindAlreadyMember))

	// a failed request leaves the queue untouched
	assert.Equal(t, []string{"bob"}, g.JoinRequests)
}

func TestApproveRequestIsIdempotent(t *testing.T) {
	g := NewGroup("algebra", "alice", 2)
	g.AddMember("alice")
	require.NoError(t, g.AddJoinRequest("bob"))

	g.ApproveRequest("bob")
	assert.Empty(t, g.JoinRequests)
	assert.Equal(t, []string{"alice", "bob"}, g.Members)

	g.ApproveRequest("bob")
	assert.Equal(t, []string{"alice", "bob"}, g.Members)
}

func TestRejectRequest(t *testing.T) {
	g := NewGroup("algebra", "alice", 2)
	require.NoError(t, g.AddJoinRequest("bob"))
	require.NoError(t, g.AddJoinRequest("carol"))

	g.RejectRequest("bob")
	assert.Equal(t, []string{"carol"}, g.JoinRequests)
	assert.False(t, g.HasMember("bob"))
}

func TestRemoveMember(t *testing.T) {
	g := NewGroup("algebra", "alice", 2)
	g.AddMember("alice")
	g.AddMember("bob")
	g.AddMember("carol")

	g.RemoveMember("bob")
	assert.Equal(t, []string{"alice", "carol"}, g.Members)

	g.RemoveMember("nobody")
	assert.Equal(t, []string{"alice", "carol"}, g.Members)
}

func TestRecordTodayStudySortsRoster(t *testing.T) {
	g := NewGroup("algebra", "alice", 2)
	g.AddMember("alice")
	g.AddMember("bob")
	g.AddMember("carol")

	g.RecordTodayStudy("alice", 2)
	g.RecordTodayStudy("bob", 5)
	g.RecordTodayStudy("carol", 3)

	assert.Equal(t, []string{"bob", "carol", "alice"}, g.Members)

	board := g.Leaderboard()
	require.Len(t, board, 3)
	assert.Equal(t, LeaderboardEntry{Username: "bob", Hours: 5}, board[0])
	assert.Equal(t, LeaderboardEntry{Username: "alice", Hours: 2}, board[2])
}

func TestRecordTodayStudyTiesKeepOrder(t *testing.T) {
	g := NewGroup("algebra", "alice", 2)
	g.AddMember("alice")
	g.AddMember("bob")
	g.AddMember("carol")

	g.RecordTodayStudy("alice", 3)
	g.RecordTodayStudy("bob", 3)
	g.RecordTodayStudy("carol", 3)

	assert.Equal(t, []string{"alice", "bob", "carol"}, g.Members)
}

func TestResetDailyFlags(t *testing.T) {
	today := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	yesterday := today.AddDate(0, 0, -1)

	u := NewUser("alice", "hash")
	u.JoinGroup("algebra")
	u.JoinGroup("physics")

	stale := u.GroupStatuses["algebra"]
	stale.HasLoggedToday = true
	stale.TodayHours = 4
	stale.ConsecutiveFailures = 2
	stale.LastLogDate = &yesterday

	fresh := u.GroupStatuses["physics"]
	fresh.HasLoggedToday = true
	fresh.TodayHours = 3
	fresh.LastLogDate = &today

	u.ResetDailyFlags(today)

	assert.False(t, stale.HasLoggedToday)
	assert.Zero(t, stale.TodayHours)
	assert.Equal(t, 2, stale.ConsecutiveFailures, "reset must not touch the failure counter")

	assert.True(t, fresh.HasLoggedToday, "a log for the current date survives the reset")
	assert.Equal(t, 3, fresh.TodayHours)
}

func TestLeaveGroup(t *testing.T) {
	u := NewUser("alice", "hash")
	u.JoinGroup("algebra")
	u.SetAdminFor("algebra", true)

	require.True(t, u.IsMemberOf("algebra"))
	require.True(t, u.IsAdminFor("algebra"))

	u.LeaveGroup("algebra")
	assert.False(t, u.IsMemberOf("algebra"))
	assert.False(t, u.IsAdminFor("algebra"))
}

func TestIsKind(t *testing.T) {
	err := Errorf(KindInvalidHours, "hours must be between 0 and 24")
	assert.True(t, IsKind(err, KindInvalidHours))
	assert.False(t, IsKind(err, KindNotFound))
	assert.False(t, IsKind(nil, KindNotFound))
	assert.EqualError(t, err, "hours must be between 0 and 24")
}
