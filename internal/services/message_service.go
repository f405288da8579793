package services

import (
	"context"
	"errors"
	"time"

	"bazaar/internal/api"
	"bazaar/internal/domain"
	"bazaar/internal/poll"
	"bazaar/internal/validate"
)

// threadSource binds the conversation backend to one viewer's token.
type threadSource struct {
	api   ConversationBackend
	token string
}

func (s threadSource) Conversation(ctx context.Context, id string) (domain.Conversation, error) {
	return s.api.Get(ctx, s.token, id)
}

func (s threadSource) Messages(ctx context.Context, id string) ([]domain.Message, error) {
	return s.api.Messages(ctx, s.token, id)
}

func (s threadSource) Send(ctx context.Context, id, content string) (domain.Message, error) {
	return s.api.Send(ctx, s.token, id, content)
}

// Source returns a poll.Source that calls the backend with token.
func Source(b ConversationBackend, token string) poll.Source {
	return threadSource{api: b, token: token}
}

type MessageService struct {
	API      ConversationBackend
	Hub      *poll.Hub
	Interval time.Duration
}

func NewMessageService(b ConversationBackend, hub *poll.Hub, interval time.Duration) *MessageService {
	if interval <= 0 {
		interval = poll.DefaultInterval
	}
	return &MessageService{API: b, Hub: hub, Interval: interval}
}

func (s *MessageService) Conversations(ctx context.Context, v Viewer) ([]domain.Conversation, error) {
	if !v.LoggedIn() {
		return nil, ErrLoginRequired
	}
	return s.API.List(ctx, v.Token)
}

// Start opens (or resumes) a conversation with a seller, optionally about a
// product, and posts the first message when one is given.
func (s *MessageService) Start(ctx context.Context, v Viewer, participantID, productID, content string) (domain.Conversation, error) {
	if !v.LoggedIn() {
		return domain.Conversation{}, ErrLoginRequired
	}
	pid, ok := validate.ID(participantID)
	if !ok || pid == v.UserID() {
		return domain.Conversation{}, ErrInvalidID
	}
	req := api.StartConversation{ParticipantID: pid}
	if productID != "" {
		if req.ProductID, ok = validate.ID(productID); !ok {
			return domain.Conversation{}, ErrInvalidID
		}
	}
	if content != "" {
		text, err := poll.CheckContent(content)
		if err != nil {
			return domain.Conversation{}, err
		}
		req.Content = text
	}
	return s.API.Start(ctx, v.Token, req)
}

// Open acquires the shared polling thread for the viewer and conversation.
// The caller must invoke release when done with it.
func (s *MessageService) Open(v Viewer, conversationID string) (*poll.Thread, func(), error) {
	if !v.LoggedIn() {
		return nil, nil, ErrLoginRequired
	}
	id, ok := validate.ID(conversationID)
	if !ok {
		return nil, nil, ErrInvalidID
	}
	src := Source(s.API, v.Token)
	return s.Hub.Acquire(poll.Key(v.SID, id), func(ctx context.Context) (*poll.Thread, error) {
		return poll.Open(ctx, src, id, s.Interval)
	})
}

// Send posts through the open thread when there is one, so its view is
// refreshed right away; otherwise it calls the backend directly.
func (s *MessageService) Send(ctx context.Context, v Viewer, conversationID, content string) (domain.Message, error) {
	if !v.LoggedIn() {
		return domain.Message{}, ErrLoginRequired
	}
	id, ok := validate.ID(conversationID)
	if !ok {
		return domain.Message{}, ErrInvalidID
	}
	if th, ok := s.Hub.Lookup(poll.Key(v.SID, id)); ok {
		m, err := th.Send(ctx, content)
		if !errors.Is(err, poll.ErrClosed) {
			return m, err
		}
	}
	text, err := poll.CheckContent(content)
	if err != nil {
		return domain.Message{}, err
	}
	return s.API.Send(ctx, v.Token, id, text)
}
