package models

import (
	"sort"
	"time"
)

// User is one registered account. A user may belong to any number of groups;
// membership is tracked by the GroupStatuses entry for that group.
type User struct {
	Username      string                      `json:"username"`
	PasswordHash  string                      `json:"password_hash"`
	GroupAdmin    map[string]bool             `json:"group_admin"`
	GroupStatuses map[string]*UserGroupStatus `json:"group_statuses"`
}

func NewUser(username, passwordHash string) *User {
	return &User{
		Username:      username,
		PasswordHash:  passwordHash,
		GroupAdmin:    make(map[string]bool),
		GroupStatuses: make(map[string]*UserGroupStatus),
	}
}

// EnsureMaps re-initializes nil maps after a snapshot load.
func (u *User) EnsureMaps() {
	if u.GroupAdmin == nil {
		u.GroupAdmin = make(map[string]bool)
	}
	if u.GroupStatuses == nil {
		u.GroupStatuses = make(map[string]*UserGroupStatus)
	}
}

func (u *User) SetAdminFor(groupName string, isAdmin bool) {
	u.GroupAdmin[groupName] = isAdmin
}

func (u *User) IsAdminFor(groupName string) bool {
	return u.GroupAdmin[groupName]
}

// JoinGroup creates the membership status for groupName if it does not exist yet.
func (u *User) JoinGroup(groupName string) {
	if _, ok := u.GroupStatuses[groupName]; !ok {
		u.GroupStatuses[groupName] = NewUserGroupStatus(groupName)
	}
}

// LeaveGroup tears down the user's side of a membership.
func (u *User) LeaveGroup(groupName string) {
	delete(u.GroupAdmin, groupName)
	delete(u.GroupStatuses, groupName)
}

func (u *User) IsMemberOf(groupName string) bool {
	_, ok := u.GroupStatuses[groupName]
	return ok
}

// ResetDailyFlags clears the logged-today state of every status whose last log
// is older than today. Failure counters are left alone; only the logging
// operation and the evaluation pass adjust those.
func (u *User) ResetDailyFlags(today time.Time) {
	for _, s := range u.GroupStatuses {
		if s.LastLogDate == nil || s.LastLogDate.Before(today) {
			s.HasLoggedToday = false
			s.TodayHours = 0
		}
	}
}

// UserGroupStatus is the per-user record for a single group membership.
type UserGroupStatus struct {
	GroupName           string     `json:"group_name"`
	TodayHours          int        `json:"today_hours"`
	HasLoggedToday      bool       `json:"has_logged_today"`
	ConsecutiveFailures int        `json:"consecutive_failures"`
	LastLogDate         *time.Time `json:"last_log_date,omitempty"`
}

func NewUserGroupStatus(groupName string) *UserGroupStatus {
	return &UserGroupStatus{GroupName: groupName}
}

func (s *UserGroupStatus) IncrementFailures() {
	s.ConsecutiveFailures++
}

func (s *UserGroupStatus) ClearFailures() {
	s.ConsecutiveFailures = 0
}

// Group is one study group: the admin, its roster, pending join requests and
// streak state. TodayStudy is derived state for the leaderboard only; it is
// never persisted and is rebuilt empty on load and after every daily reset.
type Group struct {
	Name          string         `json:"name"`
	AdminUsername string         `json:"admin_username"`
	TargetHours   int            `json:"target_hours"`
	StreakCount   int            `json:"streak_count"`
	Members       []string       `json:"members"`
	JoinRequests  []string       `json:"join_requests"`
	LastEvaluated *time.Time     `json:"last_evaluated,omitempty"`
	TodayStudy    map[string]int `json:"-"`
}

func NewGroup(name, adminUsername string, targetHours int) *Group {
	return &Group{
		Name:          name,
		AdminUsername: adminUsername,
		TargetHours:   targetHours,
		Members:       []string{},
		JoinRequests:  []string{},
		TodayStudy:    make(map[string]int),
	}
}

// EnsureTransient re-initializes the derived leaderboard map after a snapshot load.
func (g *Group) EnsureTransient() {
	if g.TodayStudy == nil {
		g.TodayStudy = make(map[string]int)
	}
}

func (g *Group) HasMember(username string) bool {
	for _, m := range g.Members {
		if m == username {
			return true
		}
	}
	return false
}

func (g *Group) HasRequest(username string) bool {
	for _, r := range g.JoinRequests {
		if r == username {
			return true
		}
	}
	return false
}

// AddMember appends username to the roster; adding an existing member is a no-op.
func (g *Group) AddMember(username string) {
	if !g.HasMember(username) {
		g.Members = append(g.Members, username)
	}
}

func (g *Group) RemoveMember(username string) {
	for i, m := range g.Members {
		if m == username {
			g.Members = append(g.Members[:i], g.Members[i+1:]...)
			return
		}
	}
}

// AddJoinRequest queues username for admin approval. Members and already-queued
// users are refused so the queue stays disjoint from the roster.
func (g *Group) AddJoinRequest(username string) error {
	if g.HasRequest(username) {
		return Errorf(KindDuplicateRequest, "join request already pending for %s", username)
	}
	if g.HasMember(username) {
		return Errorf(KindAlreadyMember, "%s is already a member of %s", username, g.Name)
	}
	g.JoinRequests = append(g.JoinRequests, username)
	return nil
}

// ApproveRequest promotes a pending request to membership. The caller is
// responsible for creating the user's group status.
func (g *Group) ApproveRequest(username string) {
	g.removeRequest(username)
	g.AddMember(username)
}

func (g *Group) RejectRequest(username string) {
	g.removeRequest(username)
}

func (g *Group) removeRequest(username string) {
	for i, r := range g.JoinRequests {
		if r == username {
			g.JoinRequests = append(g.JoinRequests[:i], g.JoinRequests[i+1:]...)
			return
		}
	}
}

// RecordTodayStudy stores username's hours in the leaderboard map and re-sorts
// the roster by today's hours, highest first. The sort is stable so ties keep
// their prior relative order.
func (g *Group) RecordTodayStudy(username string, hours int) {
	g.EnsureTransient()
	g.TodayStudy[username] = hours
	sort.SliceStable(g.Members, func(i, j int) bool {
		return g.TodayStudy[g.Members[i]] > g.TodayStudy[g.Members[j]]
	})
}

// ResetTodayStudy discards the derived leaderboard state for a new day.
func (g *Group) ResetTodayStudy() {
	g.TodayStudy = make(map[string]int)
}

// LeaderboardEntry is one row of the today-leaderboard.
type LeaderboardEntry struct {
	Username string
	Hours    int
}

// Leaderboard returns today's standings. The roster is kept sorted by
// RecordTodayStudy, so roster order is leaderboard order.
func (g *Group) Leaderboard() []LeaderboardEntry {
	g.EnsureTransient()
	entries := make([]LeaderboardEntry, 0, len(g.Members))
	for _, m := range g.Members {
		entries = append(entries, LeaderboardEntry{Username: m, Hours: g.TodayStudy[m]})
	}
	return entries
}
