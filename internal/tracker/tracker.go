// Package tracker implements the study-commitment engine: accounts, group
// membership, daily hour logging and the end-of-day evaluation. Actor identity
// is assumed to be already authenticated by the invoking layer; every
// operation checks its own authorization.
package tracker

import (
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"studystreak/internal/activity"
	"studystreak/internal/clock"
	"studystreak/internal/models"
	"studystreak/internal/store"
)

// MaxHoursPerDay bounds a single daily log entry.
const MaxHoursPerDay = 24

type Tracker struct {
	store    *store.Store
	clock    *clock.SimClock
	activity *activity.Logger
	log      *zap.Logger
}

func New(st *store.Store, cl *clock.SimClock, act *activity.Logger, log *zap.Logger) *Tracker {
	return &Tracker{store: st, clock: cl, activity: act, log: log}
}

// Today exposes the current simulated date to the interactive layers.
func (t *Tracker) Today() time.Time {
	return t.clock.Today()
}

// Save persists all durable state. Failures are reported but not surfaced;
// the previous snapshot stays intact by construction.
func (t *Tracker) Save() {
	if err := t.store.SaveAll(); err != nil {
		t.log.Error("failed to save snapshots", zap.Error(err))
	}
}

// Register creates a new account with a bcrypt digest of the password.
func (t *Tracker) Register(username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := models.NewUser(username, string(hash))
	if err := t.store.CreateUser(u); err != nil {
		return nil, err
	}
	t.activity.Global(t.clock.Today(), "User registered: %s", username)
	t.log.Info("user registered", zap.String("username", username))
	return u, nil
}

// Login verifies the credentials and returns the account. The same error kind
// covers an unknown user and a wrong password.
func (t *Tracker) Login(username, password string) (*models.User, error) {
	u, err := t.store.GetUser(strings.TrimSpace(username))
	if err != nil {
		return nil, models.Errorf(models.KindInvalidCredential, "invalid username or password")
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, models.Errorf(models.KindInvalidCredential, "invalid username or password")
	}
	return u, nil
}

// Logout only leaves an audit trail; sessions are the interactive layer's concern.
func (t *Tracker) Logout(username string) {
	t.activity.Global(t.clock.Today(), "User logged out: %s", username)
}

// CreateGroup creates a group with the creator as its admin and first member.
func (t *Tracker) CreateGroup(creator, groupName string, targetHours int) (*models.Group, error) {
	u, err := t.store.GetUser(creator)
	if err != nil {
		return nil, err
	}
	g := models.NewGroup(groupName, creator, targetHours)
	if err := t.store.CreateGroup(g); err != nil {
		return nil, err
	}
	g.AddMember(creator)
	u.JoinGroup(groupName)
	u.SetAdminFor(groupName, true)
	t.activity.Group(t.clock.Today(), groupName,
		"Group created by %s with target hours: %d", creator, targetHours)
	t.log.Info("group created",
		zap.String("group", groupName), zap.String("admin", creator), zap.Int("target_hours", targetHours))
	return g, nil
}

// RequestJoin queues username for approval by the group admin.
func (t *Tracker) RequestJoin(username, groupName string) error {
	g, err := t.store.GetGroup(groupName)
	if err != nil {
		return err
	}
	if _, err := t.store.GetUser(username); err != nil {
		return err
	}
	if err := g.AddJoinRequest(username); err != nil {
		return err
	}
	t.activity.Group(t.clock.Today(), groupName, "Join request: %s", username)
	return nil
}

// PendingRequests lists the join queue; only the group admin may see it.
func (t *Tracker) PendingRequests(actor, groupName string) ([]string, error) {
	g, err := t.adminGroup(actor, groupName)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(g.JoinRequests))
	copy(out, g.JoinRequests)
	return out, nil
}

// Approve moves a pending request onto the roster and creates the member's
// group status. Admin-only. Approving an already-approved user is a no-op add.
func (t *Tracker) Approve(actor, groupName, candidate string) error {
	g, err := t.adminGroup(actor, groupName)
	if err != nil {
		return err
	}
	g.ApproveRequest(candidate)
	if u, err := t.store.GetUser(candidate); err == nil {
		u.JoinGroup(groupName)
	}
	t.activity.Group(t.clock.Today(), groupName, "Admin %s approved %s", actor, candidate)
	return nil
}

// Reject drops a pending request. Admin-only.
func (t *Tracker) Reject(actor, groupName, candidate string) error {
	g, err := t.adminGroup(actor, groupName)
	if err != nil {
		return err
	}
	g.RejectRequest(candidate)
	t.activity.Group(t.clock.Today(), groupName, "Admin %s rejected %s", actor, candidate)
	return nil
}

// RemoveMember removes a member from the roster and tears down their status.
// Admin-only; the admin cannot remove themself.
func (t *Tracker) RemoveMember(actor, groupName, member string) error {
	g, err := t.adminGroup(actor, groupName)
	if err != nil {
		return err
	}
	if member == g.AdminUsername {
		return models.Errorf(models.KindNotAdmin, "the group admin cannot be removed from %s", groupName)
	}
	if !g.HasMember(member) {
		return models.Errorf(models.KindNotMember, "%s is not a member of %s", member, groupName)
	}
	g.RemoveMember(member)
	if u, err := t.store.GetUser(member); err == nil {
		u.LeaveGroup(groupName)
	}
	t.activity.Group(t.clock.Today(), groupName, "Admin %s removed %s", actor, member)
	return nil
}

// LeaveGroup lets a member exit on their own. The admin cannot leave their group.
func (t *Tracker) LeaveGroup(username, groupName string) error {
	g, err := t.store.GetGroup(groupName)
	if err != nil {
		return err
	}
	u, err := t.store.GetUser(username)
	if err != nil {
		return err
	}
	if !u.IsMemberOf(groupName) {
		return models.Errorf(models.KindNotMember, "%s is not a member of %s", username, groupName)
	}
	if username == g.AdminUsername {
		return models.Errorf(models.KindNotAdmin, "the group admin cannot leave %s", groupName)
	}
	g.RemoveMember(username)
	u.LeaveGroup(groupName)
	t.activity.Group(t.clock.Today(), groupName, "%s left the group", username)
	return nil
}

// LogHours records the acting member's study hours for today. Hours are bounded
// to [0, MaxHoursPerDay] and a member may log once per simulated day per group.
// The failure counter is adjusted eagerly against the target; the end-of-day
// evaluation adjusts it again for members who missed.
func (t *Tracker) LogHours(username, groupName string, hours int) error {
	g, err := t.store.GetGroup(groupName)
	if err != nil {
		return err
	}
	u, err := t.store.GetUser(username)
	if err != nil {
		return err
	}
	s, ok := u.GroupStatuses[groupName]
	if !ok {
		return models.Errorf(models.KindNotMember, "%s is not a member of %s", username, groupName)
	}
	if hours < 0 || hours > MaxHoursPerDay {
		return models.Errorf(models.KindInvalidHours, "hours must be between 0 and %d", MaxHoursPerDay)
	}
	today := t.clock.Today()
	if s.LastLogDate != nil && clock.SameDay(*s.LastLogDate, today) {
		return models.Errorf(models.KindAlreadyLogged, "already logged today for %s", groupName)
	}

	logDate := today
	s.TodayHours = hours
	s.HasLoggedToday = true
	s.LastLogDate = &logDate
	if hours < g.TargetHours {
		s.IncrementFailures()
	} else {
		s.ClearFailures()
	}

	g.RecordTodayStudy(username, hours)
	t.activity.Group(today, groupName, "%s logged %d hours today.", username, hours)
	t.log.Debug("hours logged",
		zap.String("username", username), zap.String("group", groupName), zap.Int("hours", hours))
	return nil
}

// Statuses returns the user's per-group records, ordered by group name.
func (t *Tracker) Statuses(username string) ([]*models.UserGroupStatus, error) {
	u, err := t.store.GetUser(username)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(u.GroupStatuses))
	for name := range u.GroupStatuses {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]*models.UserGroupStatus, 0, len(names))
	for _, name := range names {
		out = append(out, u.GroupStatuses[name])
	}
	return out, nil
}

// Dashboard returns the group for read-only presentation.
func (t *Tracker) Dashboard(groupName string) (*models.Group, error) {
	return t.store.GetGroup(groupName)
}

// Groups lists every group.
func (t *Tracker) Groups() []*models.Group {
	return t.store.Groups()
}

func (t *Tracker) adminGroup(actor, groupName string) (*models.Group, error) {
	g, err := t.store.GetGroup(groupName)
	if err != nil {
		return nil, err
	}
	if g.AdminUsername != actor {
		return nil, models.Errorf(models.KindNotAdmin, "only the admin of %s may do this", groupName)
	}
	return g, nil
}
