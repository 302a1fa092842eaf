package tracker

import (
	"math"
	"time"

	"go.uber.org/zap"

	"studystreak/internal/models"
)

// maxConsecutiveFailures is the auto-removal threshold: a member whose failure
// counter reaches it is dropped from the group during evaluation.
const maxConsecutiveFailures = 3

// quorumFraction of the roster must meet the target for the streak to continue.
const quorumFraction = 0.75

// EvaluateDay runs the end-of-day pass: every group is evaluated against the
// current simulated date, then the date advances and all daily-transient state
// is reset for the new day. Returns the new current date.
func (t *Tracker) EvaluateDay() time.Time {
	day := t.clock.Today()
	for _, g := range t.store.Groups() {
		t.evaluateGroup(g, day)
	}
	next := t.clock.Advance()
	for _, g := range t.store.Groups() {
		g.ResetTodayStudy()
	}
	for _, u := range t.store.Users() {
		u.ResetDailyFlags(next)
	}
	t.log.Info("end of day evaluated",
		zap.Time("evaluated_date", day), zap.Time("new_date", next))
	return next
}

// evaluateGroup applies the quorum check, streak update and auto-removal for a
// single group. It never fails: a roster entry with no account behind it is
// removed silently.
func (t *Tracker) evaluateGroup(g *models.Group, day time.Time) {
	g.EnsureTransient()
	total := len(g.Members)
	if total == 0 {
		return
	}

	met := 0
	var toRemove []string
	// Iterate a snapshot of the roster; removal happens after the pass.
	roster := make([]string, len(g.Members))
	copy(roster, g.Members)
	for _, member := range roster {
		u, err := t.store.GetUser(member)
		if err != nil {
			toRemove = append(toRemove, member)
			t.log.Warn("roster entry without account, removing",
				zap.String("group", g.Name), zap.String("username", member))
			continue
		}
		s := u.GroupStatuses[g.Name]
		metToday := s != nil && s.HasLoggedToday && s.TodayHours >= g.TargetHours
		if metToday {
			met++
		}
		if s == nil {
			continue
		}
		if !metToday {
			s.IncrementFailures()
		}
		if s.ConsecutiveFailures >= maxConsecutiveFailures {
			toRemove = append(toRemove, member)
			t.activity.Group(day, g.Name,
				"Auto-removed user %s after %d consecutive failures.", member, s.ConsecutiveFailures)
		}
	}

	required := int(math.Ceil(quorumFraction * float64(total)))
	if met >= required {
		g.StreakCount++
		t.activity.Group(day, g.Name, "Streak incremented to %d (met %d/%d)", g.StreakCount, met, total)
	} else {
		g.StreakCount = 0
		t.activity.Group(day, g.Name, "Streak broken. Met %d/%d (required %d)", met, total, required)
	}

	for _, member := range toRemove {
		g.RemoveMember(member)
		if u, err := t.store.GetUser(member); err == nil {
			u.LeaveGroup(g.Name)
		}
	}
	evaluated := day
	g.LastEvaluated = &evaluated
}
