package handlers

import (
	"bufio"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"

	"bazaar/internal/domain"
	applog "bazaar/internal/log"
	"bazaar/internal/poll"
	"bazaar/internal/services"
	"bazaar/internal/validate"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	// how long a rendered thread page keeps its poller alive while the
	// browser connects the event stream
	pageLinger = 15 * time.Second
	keepAlive  = 20 * time.Second
)

type MessageHandler struct {
	Messages *services.MessageService
}

func (h *MessageHandler) List(c *fiber.Ctx) error {
	v := viewerOf(c)
	convs, err := h.Messages.Conversations(c.UserContext(), v)
	if err != nil {
		return loadFailed(c, err, "Could not load conversations. Please retry.")
	}
	type row struct {
		domain.Conversation
		With domain.Participant
	}
	rows := make([]row, 0, len(convs))
	for _, cv := range convs {
		rows = append(rows, row{Conversation: cv, With: cv.Other(v.UserID())})
	}
	return render(c, "messages", fiber.Map{"Conversations": rows})
}

func (h *MessageHandler) Start(c *fiber.Ctx) error {
	v := viewerOf(c)
	back := localPath(c.FormValue("from"), "/messages")
	conv, err := h.Messages.Start(c.UserContext(), v, c.FormValue("participantId"), c.FormValue("productId"), c.FormValue("content"))
	if err != nil {
		return actionFailed(c, "messages.start", err, back, "Could not start the conversation.")
	}
	applog.Audit(c, "messages.start", map[string]any{"conversation": conv.ID})
	return c.Redirect("/messages/" + conv.ID)
}

// Thread renders the conversation from the poller's first fetch. A failure
// of that fetch is a full-page error with a retry link.
func (h *MessageHandler) Thread(c *fiber.Ctx) error {
	v := viewerOf(c)
	id := c.Params("id")
	th, release, err := h.Messages.Open(v, id)
	if err != nil {
		return loadFailed(c, err, "Could not load this conversation. Please retry.")
	}
	defer release()
	h.Messages.Hub.Retain(poll.Key(v.SID, id), pageLinger)

	snap := th.Snapshot()
	return render(c, "thread", fiber.Map{
		"Conversation": snap.Conversation,
		"With":         snap.Conversation.Other(v.UserID()),
		"Messages":     viewMessages(snap.Messages, v.UserID()),
		"MaxLen":       validate.MaxMessageLen,
	})
}

// Send posts a message. Script clients ask for JSON; plain form posts are
// redirected back to the thread.
func (h *MessageHandler) Send(c *fiber.Ctx) error {
	v := viewerOf(c)
	id := c.Params("id")
	wantsJSON := strings.Contains(c.Get(fiber.HeaderAccept), fiber.MIMEApplicationJSON)
	_, err := h.Messages.Send(c.UserContext(), v, id, c.FormValue("content"))
	if err != nil {
		if !wantsJSON {
			return actionFailed(c, "messages.send", err, "/messages/"+id, "Message not sent. Please try again.")
		}
		status := fiber.StatusBadGateway
		if isClientError(err) {
			status = fiber.StatusBadRequest
		} else {
			applog.Error(c, "messages.send.fail", err, nil)
		}
		return c.Status(status).JSON(fiber.Map{"error": messageFor(err, "Message not sent. Please try again.")})
	}
	applog.Info(c, "messages.send", map[string]any{"conversation": id})
	if wantsJSON {
		return c.JSON(fiber.Map{"ok": true})
	}
	return c.Redirect("/messages/" + id)
}

// Events streams the thread as server-sent events. The poller stays open
// exactly as long as this stream does.
func (h *MessageHandler) Events(c *fiber.Ctx) error {
	v := viewerOf(c)
	th, release, err := h.Messages.Open(v, c.Params("id"))
	if err != nil {
		return loadFailed(c, err, "Could not load this conversation.")
	}
	me := v.UserID()

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")
	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer release()
		updates, unsubscribe := th.Subscribe()
		defer unsubscribe()
		ping := time.NewTicker(keepAlive)
		defer ping.Stop()

		if writeSnapshot(w, th.Snapshot(), me) != nil {
			return
		}
		for {
			select {
			case <-updates:
				if writeSnapshot(w, th.Snapshot(), me) != nil {
					return
				}
			case <-ping.C:
				if _, err := w.WriteString(": ping\n\n"); err != nil {
					return
				}
				if w.Flush() != nil {
					return
				}
			case <-th.Done():
				return
			}
		}
	}))
	return nil
}

type messageView struct {
	ID     string    `json:"id"`
	Sender string    `json:"sender"`
	Mine   bool      `json:"mine"`
	Text   string    `json:"text"`
	SentAt time.Time `json:"sentAt"`
}

func viewMessages(msgs []domain.Message, me string) []messageView {
	out := make([]messageView, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, messageView{ID: m.ID, Sender: m.SenderName, Mine: m.SenderID == me, Text: m.Content, SentAt: m.SentAt})
	}
	return out
}

// writeSnapshot sends the whole message list as one event; the page
// replaces its list with it.
func writeSnapshot(w *bufio.Writer, s poll.Snapshot, me string) error {
	b, err := json.Marshal(viewMessages(s.Messages, me))
	if err != nil {
		return err
	}
	if _, err := w.WriteString("event: messages\ndata: "); err != nil {
		return err
	}
	if _, err := w.Write(b); err != nil {
		return err
	}
	if _, err := w.WriteString("\n\n"); err != nil {
		return err
	}
	return w.Flush()
}
