// Package handlers maps Telegram commands onto tracker operations. The
// handlers only parse arguments and present results; authorization and every
// domain rule stay in the tracker.
package handlers

import (
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"studystreak/internal/bot"
)

const helpText = `Commands:
/link <username> <password> - sign in as a registered account
/register <username> <password> - create an account
/logout - unlink this chat
/creategroup <group> <target-hours> - create a group (you become admin)
/join <group> - request to join a group
/requests <group> - list pending join requests (admin)
/approve <group> <username> - approve a join request (admin)
/reject <group> <username> - reject a join request (admin)
/log <group> <hours> - log study hours for today
/dashboard <group> - group streak, members and leaderboard
/status - your per-group statuses
/groups - list all groups
/evaluate - run end-of-day evaluation for all groups`

func HandleCommand(b *bot.Bot, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	args := strings.Fields(message.CommandArguments())

	switch message.Command() {
	case "start":
		b.SendMessage(chatID, "Welcome to the group study streak tracker.\n\n"+helpText)
	case "help":
		b.SendMessage(chatID, helpText)
	case "register":
		handleRegister(b, chatID, args)
	case "link":
		handleLink(b, chatID, args)
	case "logout":
		handleLogout(b, chatID)
	case "creategroup":
		handleCreateGroup(b, chatID, args)
	case "join":
		handleJoin(b, chatID, args)
	case "requests":
		handleRequests(b, chatID, args)
	case "approve":
		handleApprove(b, chatID, args)
	case "reject":
		handleReject(b, chatID, args)
	case "log":
		handleLog(b, chatID, args)
	case "dashboard":
		handleDashboard(b, chatID, args)
	case "status":
		handleStatus(b, chatID)
	case "groups":
		handleGroups(b, chatID)
	case "evaluate":
		handleEvaluate(b, chatID)
	default:
		b.SendMessage(chatID, "Unknown command. Use /help")
	}
}

func handleRegister(b *bot.Bot, chatID int64, args []string) {
	if len(args) != 2 {
		b.SendMessage(chatID, "Usage: /register <username> <password>")
		return
	}
	u, err := b.Tracker.Register(args[0], args[1])
	if err != nil {
		b.SendMessage(chatID, "Error: "+err.Error())
		return
	}
	b.Tracker.Save()
	b.Link(chatID, u.Username)
	b.SendMessage(chatID, fmt.Sprintf("Registered and signed in as %s.", u.Username))
}

func handleLink(b *bot.Bot, chatID int64, args []string) {
	if len(args) != 2 {
		b.SendMessage(chatID, "Usage: /link <username> <password>")
		return
	}
	u, err := b.Tracker.Login(args[0], args[1])
	if err != nil {
		b.SendMessage(chatID, "Error: "+err.Error())
		return
	}
	b.Link(chatID, u.Username)
	b.SendMessage(chatID, fmt.Sprintf("Signed in as %s.", u.Username))
}

func handleLogout(b *bot.Bot, chatID int64) {
	if username, ok := b.LinkedUser(chatID); ok {
		b.Tracker.Logout(username)
	}
	b.Unlink(chatID)
	b.SendMessage(chatID, "Signed out.")
}

func handleCreateGroup(b *bot.Bot, chatID int64, args []string) {
	username, ok := requireLink(b, chatID)
	if !ok {
		return
	}
	if len(args) != 2 {
		b.SendMessage(chatID, "Usage: /creategroup <group> <target-hours>")
		return
	}
	target, err := strconv.Atoi(args[1])
	if err != nil {
		b.SendMessage(chatID, "Target hours must be an integer.")
		return
	}
	g, err := b.Tracker.CreateGroup(username, args[0], target)
	if err != nil {
		b.SendMessage(chatID, "Error: "+err.Error())
		return
	}
	b.Tracker.Save()
	b.SendMessage(chatID, fmt.Sprintf("Group %s created, you are admin.", g.Name))
}

func handleJoin(b *bot.Bot, chatID int64, args []string) {
	username, ok := requireLink(b, chatID)
	if !ok {
		return
	}
	if len(args) != 1 {
		b.SendMessage(chatID, "Usage: /join <group>")
		return
	}
	if err := b.Tracker.RequestJoin(username, args[0]); err != nil {
		b.SendMessage(chatID, "Error: "+err.Error())
		return
	}
	b.Tracker.Save()
	b.SendMessage(chatID, "Join request submitted.")
}

func handleRequests(b *bot.Bot, chatID int64, args []string) {
	username, ok := requireLink(b, chatID)
	if !ok {
		return
	}
	if len(args) != 1 {
		b.SendMessage(chatID, "Usage: /requests <group>")
		return
	}
	reqs, err := b.Tracker.PendingRequests(username, args[0])
	if err != nil {
		b.SendMessage(chatID, "Error: "+err.Error())
		return
	}
	if len(reqs) == 0 {
		b.SendMessage(chatID, "No pending requests.")
		return
	}
	b.SendMessage(chatID, "Pending requests:\n"+strings.Join(reqs, "\n"))
}

func handleApprove(b *bot.Bot, chatID int64, args []string) {
	username, ok := requireLink(b, chatID)
	if !ok {
		return
	}
	if len(args) != 2 {
		b.SendMessage(chatID, "Usage: /approve <group> <username>")
		return
	}
	if err := b.Tracker.Approve(username, args[0], args[1]); err != nil {
		b.SendMessage(chatID, "Error: "+err.Error())
		return
	}
	b.Tracker.Save()
	b.SendMessage(chatID, fmt.Sprintf("Approved %s.", args[1]))
}

func handleReject(b *bot.Bot, chatID int64, args []string) {
	username, ok := requireLink(b, chatID)
	if !ok {
		return
	}
	if len(args) != 2 {
		b.SendMessage(chatID, "Usage: /reject <group> <username>")
		return
	}
	if err := b.Tracker.Reject(username, args[0], args[1]); err != nil {
		b.SendMessage(chatID, "Error: "+err.Error())
		return
	}
	b.Tracker.Save()
	b.SendMessage(chatID, fmt.Sprintf("Rejected %s.", args[1]))
}

func handleLog(b *bot.Bot, chatID int64, args []string) {
	username, ok := requireLink(b, chatID)
	if !ok {
		return
	}
	if len(args) != 2 {
		b.SendMessage(chatID, "Usage: /log <group> <hours>")
		return
	}
	hours, err := strconv.Atoi(args[1])
	if err != nil {
		b.SendMessage(chatID, "Hours must be an integer.")
		return
	}
	if err := b.Tracker.LogHours(username, args[0], hours); err != nil {
		b.SendMessage(chatID, "Error: "+err.Error())
		return
	}
	b.Tracker.Save()
	b.SendMessage(chatID, fmt.Sprintf("Logged %d hours for %s.", hours, args[0]))
}

func handleDashboard(b *bot.Bot, chatID int64, args []string) {
	if len(args) != 1 {
		b.SendMessage(chatID, "Usage: /dashboard <group>")
		return
	}
	g, err := b.Tracker.Dashboard(args[0])
	if err != nil {
		b.SendMessage(chatID, "Error: "+err.Error())
		return
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "*%s*\n", g.Name)
	fmt.Fprintf(&sb, "Admin: %s\n", g.AdminUsername)
	fmt.Fprintf(&sb, "Streak: %d\n", g.StreakCount)
	fmt.Fprintf(&sb, "Target hours/day: %d\n", g.TargetHours)
	fmt.Fprintf(&sb, "Members (%d): %s\n", len(g.Members), strings.Join(g.Members, ", "))
	fmt.Fprintf(&sb, "\nLeaderboard (today):\n")
	for i, e := range g.Leaderboard() {
		fmt.Fprintf(&sb, "%d. %s - %d hrs\n", i+1, e.Username, e.Hours)
	}
	b.SendMessageWithMarkdown(chatID, sb.String())
}

func handleStatus(b *bot.Bot, chatID int64) {
	username, ok := requireLink(b, chatID)
	if !ok {
		return
	}
	statuses, err := b.Tracker.Statuses(username)
	if err != nil {
		b.SendMessage(chatID, "Error: "+err.Error())
		return
	}
	if len(statuses) == 0 {
		b.SendMessage(chatID, "You are not in any group.")
		return
	}
	var sb strings.Builder
	for _, s := range statuses {
		lastLog := "never"
		if s.LastLogDate != nil {
			lastLog = s.LastLogDate.Format("2006-01-02")
		}
		fmt.Fprintf(&sb, "%s: logged today %v, %d hrs, %d consecutive failures, last log %s\n",
			s.GroupName, s.HasLoggedToday, s.TodayHours, s.ConsecutiveFailures, lastLog)
	}
	b.SendMessage(chatID, sb.String())
}

func handleGroups(b *bot.Bot, chatID int64) {
	groups := b.Tracker.Groups()
	if len(groups) == 0 {
		b.SendMessage(chatID, "No groups yet.")
		return
	}
	var sb strings.Builder
	for _, g := range groups {
		fmt.Fprintf(&sb, "%s (admin %s, %d members, streak %d)\n",
			g.Name, g.AdminUsername, len(g.Members), g.StreakCount)
	}
	b.SendMessage(chatID, sb.String())
}

func handleEvaluate(b *bot.Bot, chatID int64) {
	next := b.Tracker.EvaluateDay()
	b.Tracker.Save()
	b.SendMessage(chatID, "Evaluation complete. Simulated date is now "+next.Format("2006-01-02")+".")
	b.Log.Info("end of day triggered from telegram", zap.Int64("chat_id", chatID))
}

func requireLink(b *bot.Bot, chatID int64) (string, bool) {
	username, ok := b.LinkedUser(chatID)
	if !ok {
		b.SendMessage(chatID, "Sign in first: /link <username> <password>")
		return "", false
	}
	return username, true
}
