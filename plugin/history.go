package plugin

import (
	"sort"
	"strings"

	"github.com/plugforge/deepseek/core"
	"github.com/plugforge/deepseek/logging"
)

const statusCompleted = "completed"

var historyLog = logging.New("history")

// ExtractCompleted converts completed history entries into chat messages.
// Entries with other statuses or blank content are dropped. Host roles map
// to chat roles: plugin replies become assistant messages, unknown roles
// fall back to user with a warning.
func ExtractCompleted(history []HistoryMessage) []core.Message {
	var completed []HistoryMessage
	for _, msg := range history {
		if msg.Status == statusCompleted {
			completed = append(completed, msg)
		}
	}

	historyLog.Debug().
		Int("completed", len(completed)).
		Int("total", len(history)).
		Msg("filtered history messages")

	return convertMessages(completed)
}

// RecentCompleted returns up to limit of the most recent completed entries,
// converted to chat messages in chronological order.
func RecentCompleted(history []HistoryMessage, limit int) []core.Message {
	if limit <= 0 {
		return nil
	}

	var completed []HistoryMessage
	for _, msg := range history {
		if msg.Status == statusCompleted {
			completed = append(completed, msg)
		}
	}

	sort.SliceStable(completed, func(i, j int) bool {
		return completed[i].CreatedAt < completed[j].CreatedAt
	})

	if len(completed) > limit {
		completed = completed[len(completed)-limit:]
	}

	return convertMessages(completed)
}

func convertMessages(entries []HistoryMessage) []core.Message {
	var messages []core.Message
	for _, entry := range entries {
		if strings.TrimSpace(entry.Content) == "" {
			continue
		}

		var role core.Role
		switch entry.Role {
		case "user":
			role = core.RoleUser
		case "plugin":
			role = core.RoleAssistant
		case "system":
			role = core.RoleSystem
		default:
			historyLog.Warn().
				Str("role", entry.Role).
				Msg("unknown role in history message, treating as user")
			role = core.RoleUser
		}

		messages = append(messages, core.Message{Role: role, Content: entry.Content})
	}
	return messages
}
