package core

import (
	"log/slog"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// maxPostLen bounds the formatted daily post (role mention + question).
const maxPostLen = 4000

// Audit event names passed to the Recorder.
const (
	EventStaged = "staged"
	EventPosted = "posted"
)

// Bot owns the pending question and turns commands and timer firings into
// Discord calls.
type Bot struct {
	store     Store
	discord   DiscordClient
	recorder  Recorder // may be nil
	channelID string
	roleID    string
}

// NewBot creates a bot posting to channelID and mentioning roleID.
// recorder may be nil to disable the audit log.
func NewBot(discord DiscordClient, recorder Recorder, channelID, roleID string) *Bot {
	return &Bot{
		discord:   discord,
		recorder:  recorder,
		channelID: channelID,
		roleID:    roleID,
	}
}

// SetQuestion stages text as the next question of the day, replacing any
// unsent one, and returns the text as stored. The text is truncated so the
// formatted post fits maxPostLen.
func (b *Bot) SetQuestion(userID, username, text string) string {
	if max := maxPostLen - len(b.mentionPrefix()); len(text) > max {
		// back up so the cut never splits a multi-byte rune
		cut := max
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}

	replaced := b.store.Set(text)
	b.record(EventStaged, userID, text)
	slog.Info("question staged", "user", username, "replaced", replaced)
	return text
}

// CurrentQuestion returns the staged question without clearing it.
func (b *Bot) CurrentQuestion() (string, bool) {
	return b.store.Peek()
}

// PostDaily sends the staged question to the configured channel, mentioning
// the configured role, then reports the send result. The question is
// cleared as soon as it is taken, before the send outcome is known: a
// question lost to a failed send stays lost. If nothing is staged the
// firing is skipped silently.
func (b *Bot) PostDaily() error {
	text, ok := b.store.Take()
	if !ok {
		slog.Info("no question staged, skipping daily post")
		return nil
	}

	err := b.discord.SendMessage(b.channelID, b.mentionPrefix()+text)
	b.record(EventPosted, "", text)
	return errors.Wrap(err, "posting question of the day")
}

func (b *Bot) mentionPrefix() string {
	return "<@&" + b.roleID + "> "
}

func (b *Bot) record(event, userID, question string) {
	if b.recorder == nil {
		return
	}
	if err := b.recorder.Record(event, userID, question); err != nil {
		slog.Error("recording history entry", "event", event, "error", err)
	}
}
