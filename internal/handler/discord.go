package handler

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/pkg/errors"

	"github.com/pancake-gg/qotd/internal/history"
)

// Fixed response templates for the setqotd interaction.
const (
	msgUnauthorized = "Hold up! You're not allowed to update the question of the day..."
	msgBadOptions   = "Invalid command usage, please provide a message!"
	msgNoQuestion   = "No question of the day is staged right now."
	msgHistoryOff   = "Question history is disabled on this bot."
)

// DiscordSession abstracts the discordgo.Session methods we need
type DiscordSession interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	ApplicationCommandBulkOverwrite(appID, guildID string, commands []*discordgo.ApplicationCommand, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
}

// DiscordClientWrapper implements core.DiscordClient using discordgo
type DiscordClientWrapper struct {
	session DiscordSession
}

// NewDiscordClientWrapper creates a wrapper around a discordgo session
func NewDiscordClientWrapper(session DiscordSession) *DiscordClientWrapper {
	return &DiscordClientWrapper{session: session}
}

func (c *DiscordClientWrapper) SendMessage(channelID, content string) error {
	_, err := c.session.ChannelMessageSend(channelID, content)
	return errors.Wrap(err, "sending message")
}

// BotInterface defines what the Handler needs from the bot
type BotInterface interface {
	SetQuestion(userID, username, text string) string
	CurrentQuestion() (string, bool)
}

// HistoryViewer reads back the question audit log
type HistoryViewer interface {
	Recent(n int) ([]history.Entry, error)
}

// Handler handles Discord events
type Handler struct {
	bot            BotInterface
	history        HistoryViewer // nil when history is disabled
	allowedUsers   []string
	startScheduler func()

	initOnce sync.Once
}

// NewHandler creates a new Handler. startScheduler is invoked exactly once,
// on the first ready event, after command registration.
func NewHandler(bot BotInterface, hist HistoryViewer, allowedUsers []string, startScheduler func()) *Handler {
	return &Handler{
		bot:            bot,
		history:        hist,
		allowedUsers:   allowedUsers,
		startScheduler: startScheduler,
	}
}

// OnReady registers the slash commands and starts the daily scheduler.
// Discord delivers a ready event on every gateway reconnect; everything
// here runs only for the first one.
func (h *Handler) OnReady(s DiscordSession, r *discordgo.Ready) {
	h.initOnce.Do(func() {
		slog.Info("initializing global slash commands")
		if _, err := s.ApplicationCommandBulkOverwrite(r.Application.ID, "", SlashCommands()); err != nil {
			// fire and forget: a failed registration leaves the old
			// command set in place, the bot still runs
			slog.Error("registering slash commands", "error", err)
		}

		h.startScheduler()
	})
}

// isUserAllowed checks if a user is in the allowed users list
func (h *Handler) isUserAllowed(userID string) bool {
	for _, allowedID := range h.allowedUsers {
		if allowedID == userID {
			return true
		}
	}
	return false
}

// getInteractionUser extracts user from interaction (guild or DM)
func getInteractionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Interaction.Member != nil {
		return i.Interaction.Member.User
	}
	return i.Interaction.User
}

func (h *Handler) respondEphemeral(s DiscordSession, i *discordgo.InteractionCreate, msg string) {
	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: msg,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	}); err != nil {
		slog.Error("responding to interaction", "error", err)
	}
}

// OnInteractionCreate handles slash commands
func (h *Handler) OnInteractionCreate(s DiscordSession, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	data, ok := i.Data.(discordgo.ApplicationCommandInteractionData)
	if !ok {
		return
	}

	user := getInteractionUser(i)
	if user == nil {
		slog.Error("interaction has no member or user", "command", data.Name)
		return
	}

	slog.Info("slash command", "name", data.Name, "user", user.Username)

	switch data.Name {
	case "setqotd":
		h.handleSetQOTD(s, i, data, user)
	case "qotd":
		h.handleShowQOTD(s, i, user)
	case "qotdhistory":
		h.handleQOTDHistory(s, i, user)
	}
}

func (h *Handler) handleSetQOTD(s DiscordSession, i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData, user *discordgo.User) {
	if !h.isUserAllowed(user.ID) {
		h.respondEphemeral(s, i, msgUnauthorized)
		slog.Info("unauthorized setqotd attempt", "user_id", user.ID, "username", user.Username)
		return
	}

	// the registered schema makes this unreachable, but don't trust the wire
	if len(data.Options) != 1 || data.Options[0].Type != discordgo.ApplicationCommandOptionString {
		h.respondEphemeral(s, i, msgBadOptions)
		slog.Info("setqotd with malformed options", "username", user.Username, "options", len(data.Options))
		return
	}

	stored := h.bot.SetQuestion(user.ID, user.Username, data.Options[0].StringValue())
	h.respondEphemeral(s, i, "Question of the day has been updated to:\n> \""+stored+"\"")
}

func (h *Handler) handleShowQOTD(s DiscordSession, i *discordgo.InteractionCreate, user *discordgo.User) {
	if !h.isUserAllowed(user.ID) {
		h.respondEphemeral(s, i, msgUnauthorized)
		slog.Info("unauthorized qotd attempt", "user_id", user.ID, "username", user.Username)
		return
	}

	question, ok := h.bot.CurrentQuestion()
	if !ok {
		h.respondEphemeral(s, i, msgNoQuestion)
		return
	}
	h.respondEphemeral(s, i, "Staged question of the day:\n> \""+question+"\"")
}

// historyViewLimit caps how many audit entries a history view shows.
const historyViewLimit = 10

func (h *Handler) handleQOTDHistory(s DiscordSession, i *discordgo.InteractionCreate, user *discordgo.User) {
	if !h.isUserAllowed(user.ID) {
		h.respondEphemeral(s, i, msgUnauthorized)
		slog.Info("unauthorized qotdhistory attempt", "user_id", user.ID, "username", user.Username)
		return
	}

	if h.history == nil {
		h.respondEphemeral(s, i, msgHistoryOff)
		return
	}

	entries, err := h.history.Recent(historyViewLimit)
	if err != nil {
		slog.Error("reading question history", "error", err)
		h.respondEphemeral(s, i, "Couldn't read the question history, check the logs.")
		return
	}
	if len(entries) == 0 {
		h.respondEphemeral(s, i, "No question of the day activity recorded yet.")
		return
	}

	var sb strings.Builder
	sb.WriteString("Recent question of the day activity:\n")
	for _, e := range entries {
		sb.WriteString(e.At.Format("Jan 2 15:04"))
		sb.WriteString(" ")
		sb.WriteString(e.Event)
		sb.WriteString(": \"")
		sb.WriteString(e.Question)
		sb.WriteString("\"\n")
	}
	h.respondEphemeral(s, i, sb.String())
}

// SlashCommands returns the slash commands to register
func SlashCommands() []*discordgo.ApplicationCommand {
	// hidden from everyone by default; server admins grant access via the
	// integration permission UI, and the handler gates execution besides
	var noDefaultAccess int64 = 0

	return []*discordgo.ApplicationCommand{
		{
			Name:                     "setqotd",
			Description:              "Set the next question of the day",
			DefaultMemberPermissions: &noDefaultAccess,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "message",
					Description: "The text message to send as question of the day, the bot will mention the role by itself",
					Required:    true,
				},
			},
		},
		{
			Name:                     "qotd",
			Description:              "Show the currently staged question of the day",
			DefaultMemberPermissions: &noDefaultAccess,
		},
		{
			Name:                     "qotdhistory",
			Description:              "Show recent question of the day activity",
			DefaultMemberPermissions: &noDefaultAccess,
		},
	}
}
