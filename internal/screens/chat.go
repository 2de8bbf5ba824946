// Package screens implements the view bindings: per-screen read-only
// projections of the store plus the action handlers that emit channel
// events, with optimistic local updates where the web client applies
// them. Screens never write across slices; cross-slice effects come
// back through channel events.
package screens

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"social-network-client/internal/channel"
	"social-network-client/internal/models"
	"social-network-client/internal/store"
	"social-network-client/internal/upload"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ChatScreen binds the chat slice: a friends list, one active
// conversation, and the message composer.
type ChatScreen struct {
	store    *store.Store
	ch       *channel.Channel
	uploader *upload.Uploader
	notifier Notifier

	active string // email of the active correspondent, form-local state
}

// NewChatScreen creates the chat screen binding.
func NewChatScreen(st *store.Store, ch *channel.Channel, uploader *upload.Uploader, notifier Notifier) *ChatScreen {
	return &ChatScreen{store: st, ch: ch, uploader: uploader, notifier: notifier}
}

// SelectConversation makes the friend with the given email the active
// correspondent and asks the server to push the conversation history.
func (c *ChatScreen) SelectConversation(email string) error {
	self, ok := c.store.Auth.User()
	if !ok {
		return fmt.Errorf("no signed-in user")
	}
	c.active = email
	return c.ch.Emit(channel.EventGetMessages, channel.MessagesRequest{
		Sender:   self.Email,
		Receiver: email,
	})
}

// Active returns the email of the active correspondent.
func (c *ChatScreen) Active() string { return c.active }

// Send sends a text message to the active correspondent. The message is
// added to the store optimistically; the server echo carrying the same
// id collapses into it.
func (c *ChatScreen) Send(text string) error {
	return c.send(models.ChatMessage{
		Message: text,
		Type:    models.TypeText,
	})
}

// SendMedia uploads the file first and sends a media message carrying
// the stored URL. If the upload fails the send is aborted and nothing is
// committed to the store.
func (c *ChatScreen) SendMedia(ctx context.Context, text, filename, mimeType string, file io.Reader) error {
	url, err := c.uploader.Upload(ctx, filename, file)
	if err != nil {
		c.notifier.Notify(NotifyError, err.Error())
		return err
	}
	return c.send(models.ChatMessage{
		Message: text,
		Type:    mediaTypeOf(mimeType),
		Media:   url,
	})
}

func (c *ChatScreen) send(msg models.ChatMessage) error {
	self, ok := c.store.Auth.User()
	if !ok {
		return fmt.Errorf("no signed-in user")
	}
	if c.active == "" {
		return fmt.Errorf("no active conversation")
	}

	msg.ID = uuid.New().String()
	msg.Sender = self.Email
	msg.Receiver = c.active
	msg.Timestamp = time.Now().UnixMilli()

	c.store.Chat.Add(msg)
	if err := c.ch.Emit(channel.EventSendMessage, msg); err != nil {
		return err
	}

	log.Debug().Str("receiver", msg.Receiver).Str("type", msg.Type).Msg("Message sent")
	return nil
}

// Render projects the active conversation: messages exchanged with the
// active correspondent, in chronological order.
func (c *ChatScreen) Render() []models.ChatMessage {
	self, ok := c.store.Auth.User()
	if !ok || c.active == "" {
		return nil
	}

	var out []models.ChatMessage
	for _, msg := range c.store.Chat.Messages() {
		if (msg.Sender == self.Email && msg.Receiver == c.active) ||
			(msg.Sender == c.active && msg.Receiver == self.Email) {
			out = append(out, msg)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp < out[j].Timestamp
	})
	return out
}

// Friends projects the conversation list from the signed-in user.
func (c *ChatScreen) Friends() []models.User {
	self, ok := c.store.Auth.User()
	if !ok {
		return nil
	}
	return self.Friends
}

// mediaTypeOf maps a MIME type to a message content type.
func mediaTypeOf(mimeType string) string {
	switch {
	case strings.Contains(mimeType, "image"):
		return models.TypeImage
	case strings.Contains(mimeType, "video"):
		return models.TypeVideo
	default:
		return models.TypeText
	}
}
