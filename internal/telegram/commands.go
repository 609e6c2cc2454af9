package telegram

import (
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"jarvis/internal/auth"
)

// handleCommand processes allowlist management commands. It reports false
// for commands the assistant itself should see.
func (b *Bot) handleCommand(msg *tgbotapi.Message) bool {
	switch msg.Command() {
	case "users", "pending", "allow", "remove":
	default:
		return false
	}

	if b.adminID == 0 || msg.From.ID != b.adminID {
		b.sendMessage(msg.Chat.ID, "This command is only available to the administrator.")
		return true
	}

	args := strings.Fields(msg.CommandArguments())
	switch msg.Command() {
	case "users":
		b.sendMessage(msg.Chat.ID, formatUsers("Allowed users:", "Allowlist is empty.", b.authSvc.List()))
	case "pending":
		b.sendMessage(msg.Chat.ID, formatUsers("Pending requests:", "No pending requests.", b.requests.List()))
	case "allow":
		if len(args) == 0 {
			b.sendMessage(msg.Chat.ID, "Usage: /allow <user_id> [username]")
			return true
		}
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			b.sendMessage(msg.Chat.ID, "Invalid user ID.")
			return true
		}
		user, requested, err := b.requests.Resolve(id)
		if err != nil {
			b.log.Warn("failed to drop access request", "user_id", id, "err", err)
		}
		if !requested {
			user = auth.User{ID: id}
		}
		if len(args) > 1 {
			user.Username = strings.TrimPrefix(args[1], "@")
		}
		if err := b.authSvc.Upsert(user); err != nil {
			b.log.Error("allowlist upsert failed", "user_id", id, "err", err)
			b.sendMessage(msg.Chat.ID, "Failed to update the allowlist.")
			return true
		}
		b.log.Info("user allowed", "user_id", id)
		b.sendMessage(msg.Chat.ID, fmt.Sprintf("User %d allowed.", id))
		if requested {
			b.sendMessage(id, "Access granted! Say hello to JARVIS.")
		}
	case "remove":
		if len(args) == 0 {
			b.sendMessage(msg.Chat.ID, "Usage: /remove <user_id>")
			return true
		}
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			b.sendMessage(msg.Chat.ID, "Invalid user ID.")
			return true
		}
		if err := b.authSvc.Remove(id); err != nil {
			b.log.Error("allowlist remove failed", "user_id", id, "err", err)
			b.sendMessage(msg.Chat.ID, "Failed to update the allowlist.")
			return true
		}
		b.log.Info("user removed", "user_id", id)
		b.sendMessage(msg.Chat.ID, fmt.Sprintf("User %d removed.", id))
	}
	return true
}

func formatUsers(title, empty string, users []auth.User) string {
	if len(users) == 0 {
		return empty
	}
	var bld strings.Builder
	bld.WriteString(title + "\n")
	for _, u := range users {
		if u.Username != "" {
			fmt.Fprintf(&bld, "- %d (@%s)\n", u.ID, u.Username)
		} else {
			fmt.Fprintf(&bld, "- %d\n", u.ID)
		}
	}
	return strings.TrimRight(bld.String(), "\n")
}
