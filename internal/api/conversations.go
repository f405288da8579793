package api

import (
	"context"
	"net/url"

	"bazaar/internal/domain"
)

type ConversationAPI struct{ c *Client }

type StartConversation struct {
	ParticipantID string `json:"participantId"`
	ProductID     string `json:"productId,omitempty"`
	Content       string `json:"content,omitempty"`
}

func (a *ConversationAPI) List(ctx context.Context, token string) ([]domain.Conversation, error) {
	var out []domain.Conversation
	err := a.c.do(ctx, "conversations", "GET", "/conversations", token, nil, &out)
	return out, err
}

func (a *ConversationAPI) Get(ctx context.Context, token, id string) (domain.Conversation, error) {
	var conv domain.Conversation
	err := a.c.do(ctx, "conversations", "GET", "/conversations/"+url.PathEscape(id), token, nil, &conv)
	return conv, err
}

func (a *ConversationAPI) Messages(ctx context.Context, token, id string) ([]domain.Message, error) {
	var out []domain.Message
	err := a.c.do(ctx, "conversations", "GET", "/conversations/"+url.PathEscape(id)+"/messages", token, nil, &out)
	return out, err
}

func (a *ConversationAPI) Send(ctx context.Context, token, id, content string) (domain.Message, error) {
	var m domain.Message
	err := a.c.do(ctx, "conversations", "POST", "/conversations/"+url.PathEscape(id)+"/messages", token,
		map[string]string{"content": content}, &m)
	return m, err
}

func (a *ConversationAPI) Start(ctx context.Context, token string, req StartConversation) (domain.Conversation, error) {
	var conv domain.Conversation
	err := a.c.do(ctx, "conversations", "POST", "/conversations", token, req, &conv)
	return conv, err
}
