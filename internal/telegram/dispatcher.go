package telegram

import (
	"context"
	"strconv"

	"go-cvbot-backend/internal/flow"
	"go-cvbot-backend/internal/i18n"
	"go-cvbot-backend/internal/review"
	"go-cvbot-backend/internal/session"
	"go-cvbot-backend/internal/transport"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Dispatcher converts raw updates into flow and review events. Updates are
// consumed one at a time, so session mutation never interleaves between
// handlers.
type Dispatcher struct {
	log          *zap.Logger
	bot          *Bot
	engine       *flow.Engine
	handoff      *review.Handoff
	reg          *session.Registry
	reviewChatID int64
}

func NewDispatcher(log *zap.Logger, bot *Bot, engine *flow.Engine, handoff *review.Handoff, reg *session.Registry, reviewChatID int64) *Dispatcher {
	return &Dispatcher{
		log:          log,
		bot:          bot,
		engine:       engine,
		handoff:      handoff,
		reg:          reg,
		reviewChatID: reviewChatID,
	}
}

// Run consumes the long-polling channel until the context is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	updates := d.bot.Updates()
	d.log.Info("dispatcher started", zap.String("bot", d.bot.Self()))

	for {
		select {
		case <-ctx.Done():
			d.log.Info("dispatcher stopped")
			return
		case update := <-updates:
			d.handle(ctx, update)
		}
	}
}

func (d *Dispatcher) handle(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		d.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		d.handleMessage(ctx, update.Message)
	}
}

func sender(from *tgbotapi.User, chatID int64) transport.Sender {
	return transport.Sender{
		UserID:    strconv.FormatInt(from.ID, 10),
		ChatID:    chatID,
		FirstName: from.FirstName,
		LastName:  from.LastName,
		Username:  from.UserName,
	}
}

func (d *Dispatcher) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	d.bot.AnswerCallback(cq.ID)
	if cq.Message == nil {
		return
	}

	from := sender(cq.From, cq.Message.Chat.ID)
	kind, args := transport.DecodeAction(cq.Data)

	var err error
	if kind == "approve" || kind == "reject" {
		msg := review.AdminMessage{
			ChatID:    cq.Message.Chat.ID,
			MessageID: cq.Message.MessageID,
			Caption:   cq.Message.Caption,
		}
		err = d.handoff.HandleDecision(ctx, from, kind, args, msg)
	} else {
		err = d.engine.HandleCallback(ctx, from, cq.Data)
	}

	if err != nil {
		d.log.Error("callback handling failed",
			zap.String("data", cq.Data), zap.String("user_id", from.UserID), zap.Error(err))
		d.replyGenericError(ctx, from)
	}
}

func (d *Dispatcher) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}
	from := sender(msg.From, msg.Chat.ID)

	// reviewer-channel text completes a pending rejection; everything else
	// from that surface is ignored
	if msg.Chat.ID == d.reviewChatID {
		if _, err := d.handoff.HandleReviewerText(ctx, from, msg.Text); err != nil {
			d.log.Error("reviewer text handling failed", zap.Error(err))
		}
		return
	}

	var err error
	switch {
	case msg.IsCommand():
		err = d.handleCommand(ctx, from, msg.Command())
	case len(msg.Photo) > 0:
		// the last entry is the highest resolution
		photo := msg.Photo[len(msg.Photo)-1]
		err = d.engine.HandleFile(ctx, from, transport.File{
			FileID:  photo.FileID,
			Size:    int64(photo.FileSize),
			IsPhoto: true,
		})
	case msg.Document != nil:
		err = d.engine.HandleFile(ctx, from, transport.File{
			FileID: msg.Document.FileID,
			MIME:   msg.Document.MimeType,
			Size:   int64(msg.Document.FileSize),
			Name:   msg.Document.FileName,
		})
	case msg.Text != "":
		err = d.engine.HandleText(ctx, from, msg.Text)
	}

	if err != nil {
		d.log.Error("message handling failed",
			zap.String("user_id", from.UserID), zap.Error(err))
		d.replyGenericError(ctx, from)
	}
}

func (d *Dispatcher) handleCommand(ctx context.Context, from transport.Sender, command string) error {
	switch command {
	case "start":
		return d.engine.HandleStart(ctx, from)
	case "cancel":
		return d.engine.HandleCancel(ctx, from)
	case "help":
		return d.engine.HandleHelp(ctx, from)
	}
	return d.engine.HandleHelp(ctx, from)
}

// replyGenericError surfaces a localized generic failure, never raw error text.
func (d *Dispatcher) replyGenericError(ctx context.Context, from transport.Sender) {
	locale := i18n.DefaultLocale
	if sess := d.reg.Get(from.UserID); sess != nil {
		locale = sess.Locale()
	}
	if err := d.bot.SendText(ctx, from.ChatID, i18n.T(locale, "error_generic")); err != nil {
		d.log.Error("error reply failed", zap.String("user_id", from.UserID), zap.Error(err))
	}
}
