// The bot-platform boundary. Handlers and the watcher only ever talk to
// this interface; internal/telegram provides the real implementation and
// tests script a fake one.
package transport

import (
	"context"
	"strings"
)

// Button is one inline action attached to a message. Action carries an
// encoded action tag (see EncodeAction).
type Button struct {
	Label  string
	Action string
}

// Sender identifies the user behind an inbound event.
type Sender struct {
	UserID    string
	ChatID    int64
	FirstName string
	LastName  string
	Username  string
}

// File describes an inbound upload as declared by the platform.
type File struct {
	FileID  string
	MIME    string
	Size    int64
	Name    string
	IsPhoto bool
}

type Transport interface {
	SendText(ctx context.Context, chatID int64, text string, buttons ...Button) error
	EditMessageText(ctx context.Context, chatID int64, messageID int, text string, buttons ...Button) error
	EditMessageCaption(ctx context.Context, chatID int64, messageID int, caption string, buttons ...Button) error
	ForwardPhoto(ctx context.Context, chatID int64, fileID, caption string, buttons ...Button) (messageID int, err error)
	ForwardDocument(ctx context.Context, chatID int64, fileID, caption string, buttons ...Button) (messageID int, err error)
}

// Action tags are short delimiter-separated strings: the action kind plus
// up to two embedded identifiers. Decisions embed both the user id and the
// order id so they resolve without relying on message reply-threading.
const actionDelim = ":"

func EncodeAction(kind string, args ...string) string {
	return strings.Join(append([]string{kind}, args...), actionDelim)
}

func DecodeAction(tag string) (kind string, args []string) {
	parts := strings.Split(tag, actionDelim)
	return parts[0], parts[1:]
}
