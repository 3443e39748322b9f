package core

// DiscordClient is the outbound surface the bot needs. Sends are best
// effort: the error is returned so callers can log it, but nothing retries.
type DiscordClient interface {
	SendMessage(channelID, content string) error
}

// Recorder persists question audit events. Implementations are best effort;
// a failed Record must never block command handling or posting.
type Recorder interface {
	Record(event, userID, question string) error
}
