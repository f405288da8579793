package domain

import "time"

type Participant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Conversation struct {
	ID            string        `json:"id"`
	Participants  []Participant `json:"participants"`
	ProductID     string        `json:"productId,omitempty"`
	LastMessage   string        `json:"lastMessage,omitempty"`
	LastMessageAt time.Time     `json:"lastMessageAt,omitempty"`
}

// Other returns the first participant that is not userID.
func (c Conversation) Other(userID string) Participant {
	for _, p := range c.Participants {
		if p.ID != userID {
			return p
		}
	}
	return Participant{}
}

type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	SenderID       string    `json:"senderId"`
	SenderName     string    `json:"senderName,omitempty"`
	Content        string    `json:"content"`
	SentAt         time.Time `json:"sentAt"`
}
