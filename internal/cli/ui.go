// Package cli is the interactive text menu. It only parses input and presents
// results; every rule lives in the tracker.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"studystreak/internal/models"
	"studystreak/internal/tracker"
)

type Mode int

const (
	ModeExit Mode = iota
	ModeLogin
	ModeRegister
	ModeEvaluate
)

type UI struct {
	tracker *tracker.Tracker
	in      *bufio.Reader
	out     io.Writer
}

func NewUI(tr *tracker.Tracker, in *bufio.Reader, out io.Writer) *UI {
	return &UI{tracker: tr, in: in, out: out}
}

// Run drives the top-level menu until the user exits.
func (ui *UI) Run() {
	fmt.Fprintln(ui.out, "=== Group Study Streak System ===")
	fmt.Fprintln(ui.out, "Simulated date:", ui.tracker.Today().Format("2006-01-02"))
	for {
		switch ui.selectMode() {
		case ModeLogin:
			ui.handleLogin()
		case ModeRegister:
			ui.handleRegister()
		case ModeEvaluate:
			ui.handleEvaluate()
		case ModeExit:
			ui.tracker.Save()
			fmt.Fprintln(ui.out, "Saved data. Exiting.")
			return
		}
	}
}

func (ui *UI) selectMode() Mode {
	fmt.Fprintln(ui.out, "\n1) Login")
	fmt.Fprintln(ui.out, "2) Register")
	fmt.Fprintln(ui.out, "3) Evaluate day for all groups (simulate end of day)")
	fmt.Fprintln(ui.out, "4) Exit")
	fmt.Fprint(ui.out, "Choose: ")
	switch strings.TrimSpace(ui.readLine()) {
	case "1":
		return ModeLogin
	case "2":
		return ModeRegister
	case "3":
		return ModeEvaluate
	default:
		return ModeExit
	}
}

func (ui *UI) handleRegister() {
	fmt.Fprint(ui.out, "Choose username: ")
	username := strings.TrimSpace(ui.readLine())
	fmt.Fprint(ui.out, "Choose password: ")
	password := ui.readLine()

	if _, err := ui.tracker.Register(username, password); err != nil {
		fmt.Fprintln(ui.out, "Error:", err)
		return
	}
	ui.tracker.Save()
	fmt.Fprintln(ui.out, "User registered. Please login.")
}

func (ui *UI) handleLogin() {
	fmt.Fprint(ui.out, "Username: ")
	username := strings.TrimSpace(ui.readLine())
	fmt.Fprint(ui.out, "Password: ")
	password := ui.readLine()

	u, err := ui.tracker.Login(username, password)
	if err != nil {
		fmt.Fprintln(ui.out, "Login failed:", err)
		return
	}
	fmt.Fprintf(ui.out, "Welcome, %s!\n", u.Username)
	ui.userMenu(u)
}

func (ui *UI) handleEvaluate() {
	fmt.Fprintln(ui.out, "Simulating end-of-day for", ui.tracker.Today().Format("2006-01-02"), "and evaluating all groups...")
	next := ui.tracker.EvaluateDay()
	ui.tracker.Save()
	fmt.Fprintln(ui.out, "Advanced simulated date to", next.Format("2006-01-02")+". Evaluation complete.")
}

func (ui *UI) userMenu(u *models.User) {
	for {
		fmt.Fprintf(ui.out, "\n--- Main Menu (Logged in as %s) ---\n", u.Username)
		fmt.Fprintln(ui.out, "1) Create group")
		fmt.Fprintln(ui.out, "2) Request to join group")
		fmt.Fprintln(ui.out, "3) Approve/reject requests (admin only)")
		fmt.Fprintln(ui.out, "4) Log study hours for a group")
		fmt.Fprintln(ui.out, "5) View group dashboard")
		fmt.Fprintln(ui.out, "6) View my group statuses")
		fmt.Fprintln(ui.out, "7) Leave a group")
		fmt.Fprintln(ui.out, "8) Logout")
		fmt.Fprint(ui.out, "Choose: ")
		switch strings.TrimSpace(ui.readLine()) {
		case "1":
			ui.createGroup(u)
		case "2":
			ui.requestJoin(u)
		case "3":
			ui.manageRequests(u)
		case "4":
			ui.logHours(u)
		case "5":
			ui.dashboard()
		case "6":
			ui.myStatuses(u)
		case "7":
			ui.leaveGroup(u)
		case "8":
			ui.tracker.Logout(u.Username)
			ui.tracker.Save()
			return
		default:
			fmt.Fprintln(ui.out, "Invalid option")
		}
	}
}

func (ui *UI) createGroup(u *models.User) {
	fmt.Fprint(ui.out, "Enter new group name: ")
	name := strings.TrimSpace(ui.readLine())
	target, ok := ui.readInt("Enter daily target hours (integer): ")
	if !ok {
		return
	}
	if _, err := ui.tracker.CreateGroup(u.Username, name, target); err != nil {
		fmt.Fprintln(ui.out, "Error:", err)
		return
	}
	ui.tracker.Save()
	fmt.Fprintln(ui.out, "Group created and you are admin.")
}

func (ui *UI) requestJoin(u *models.User) {
	fmt.Fprint(ui.out, "Enter group name to request join: ")
	name := strings.TrimSpace(ui.readLine())
	if err := ui.tracker.RequestJoin(u.Username, name); err != nil {
		fmt.Fprintln(ui.out, "Error:", err)
		return
	}
	ui.tracker.Save()
	fmt.Fprintln(ui.out, "Join request submitted.")
}

func (ui *UI) manageRequests(u *models.User) {
	fmt.Fprint(ui.out, "Enter group name to manage requests: ")
	name := strings.TrimSpace(ui.readLine())
	reqs, err := ui.tracker.PendingRequests(u.Username, name)
	if err != nil {
		fmt.Fprintln(ui.out, "Error:", err)
		return
	}
	if len(reqs) == 0 {
		fmt.Fprintln(ui.out, "No pending requests.")
		return
	}
	fmt.Fprintln(ui.out, "Pending requests:")
	for i, r := range reqs {
		fmt.Fprintf(ui.out, "%d) %s\n", i+1, r)
	}
	choice, ok := ui.readInt("Enter request number to handle (or 0 to cancel): ")
	if !ok || choice <= 0 || choice > len(reqs) {
		fmt.Fprintln(ui.out, "No action taken.")
		return
	}
	candidate := reqs[choice-1]
	fmt.Fprint(ui.out, "Approve (A) or Reject (R)? ")
	switch strings.ToUpper(strings.TrimSpace(ui.readLine())) {
	case "A":
		if err := ui.tracker.Approve(u.Username, name, candidate); err != nil {
			fmt.Fprintln(ui.out, "Error:", err)
			return
		}
		fmt.Fprintln(ui.out, "Approved.")
	default:
		if err := ui.tracker.Reject(u.Username, name, candidate); err != nil {
			fmt.Fprintln(ui.out, "Error:", err)
			return
		}
		fmt.Fprintln(ui.out, "Rejected.")
	}
	ui.tracker.Save()
}

func (ui *UI) logHours(u *models.User) {
	fmt.Fprint(ui.out, "Enter group name you want to log for: ")
	name := strings.TrimSpace(ui.readLine())
	hours, ok := ui.readInt(fmt.Sprintf("Enter hours studied today (integer, max %d): ", tracker.MaxHoursPerDay))
	if !ok {
		return
	}
	if err := ui.tracker.LogHours(u.Username, name, hours); err != nil {
		fmt.Fprintln(ui.out, "Error:", err)
		return
	}
	ui.tracker.Save()
	fmt.Fprintln(ui.out, "Logged. Current group leaderboard:")
	if g, err := ui.tracker.Dashboard(name); err == nil {
		ui.printLeaderboard(g)
	}
}

func (ui *UI) dashboard() {
	fmt.Fprint(ui.out, "Enter group name to view dashboard: ")
	name := strings.TrimSpace(ui.readLine())
	g, err := ui.tracker.Dashboard(name)
	if err != nil {
		fmt.Fprintln(ui.out, "Error:", err)
		return
	}
	fmt.Fprintf(ui.out, "\n=== Dashboard for group: %s ===\n", g.Name)
	fmt.Fprintln(ui.out, "Admin:", g.AdminUsername)
	fmt.Fprintln(ui.out, "Streak:", g.StreakCount)
	fmt.Fprintln(ui.out, "Target hours/day:", g.TargetHours)
	fmt.Fprintf(ui.out, "Members (%d): %s\n", len(g.Members), strings.Join(g.Members, ", "))
	fmt.Fprintln(ui.out, "\nLeaderboard (today):")
	ui.printLeaderboard(g)
	fmt.Fprintf(ui.out, "\nPending join requests: %v\n", g.JoinRequests)
}

func (ui *UI) myStatuses(u *models.User) {
	statuses, err := ui.tracker.Statuses(u.Username)
	if err != nil {
		fmt.Fprintln(ui.out, "Error:", err)
		return
	}
	if len(statuses) == 0 {
		fmt.Fprintln(ui.out, "You are not in any group.")
		return
	}
	fmt.Fprintln(ui.out, "Your group statuses:")
	for _, s := range statuses {
		lastLog := "never"
		if s.LastLogDate != nil {
			lastLog = s.LastLogDate.Format("2006-01-02")
		}
		fmt.Fprintf(ui.out, "Group: %s | LoggedToday: %v | TodayHours: %d | ConsecutiveFailures: %d | LastLogDate: %s\n",
			s.GroupName, s.HasLoggedToday, s.TodayHours, s.ConsecutiveFailures, lastLog)
	}
}

func (ui *UI) leaveGroup(u *models.User) {
	fmt.Fprint(ui.out, "Enter group name to leave: ")
	name := strings.TrimSpace(ui.readLine())
	if err := ui.tracker.LeaveGroup(u.Username, name); err != nil {
		fmt.Fprintln(ui.out, "Error:", err)
		return
	}
	ui.tracker.Save()
	fmt.Fprintln(ui.out, "You left the group.")
}

func (ui *UI) printLeaderboard(g *models.Group) {
	for i, e := range g.Leaderboard() {
		fmt.Fprintf(ui.out, "%d. %s - %d hrs\n", i+1, e.Username, e.Hours)
	}
}

func (ui *UI) readLine() string {
	s, _ := ui.in.ReadString('\n')
	return strings.TrimRight(s, "\r\n")
}

func (ui *UI) readInt(prompt string) (int, bool) {
	fmt.Fprint(ui.out, prompt)
	raw := strings.TrimSpace(ui.readLine())
	n, err := strconv.Atoi(raw)
	if err != nil {
		fmt.Fprintln(ui.out, "Invalid number:", raw)
		return 0, false
	}
	return n, true
}
