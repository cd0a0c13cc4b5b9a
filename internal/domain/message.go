package domain

// InboundMessage is a user message as delivered by a channel webhook
type InboundMessage struct {
	Text        string
	SenderID    string
	DisplayName string
}
