package telegram

import (
	"context"
	"net/http"
	"time"

	"go-cvbot-backend/internal/transport"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sethvargo/go-retry"
)

// Bot implements transport.Transport over the Telegram Bot API.
type Bot struct {
	api *tgbotapi.BotAPI
}

// NewBot connects with bounded client timeouts, retrying the initial
// getMe call a few times before giving up.
func NewBot(ctx context.Context, token string) (*Bot, error) {
	client := &http.Client{Timeout: 30 * time.Second}

	var api *tgbotapi.BotAPI
	backoff := retry.WithMaxRetries(3, retry.NewConstant(5*time.Second))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		var err error
		api, err = tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, client)
		if err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &Bot{api: api}, nil
}

func (b *Bot) Self() string {
	return b.api.Self.UserName
}

// keyboard lays buttons out the way the flow expects: a binary choice on
// one row, anything longer one button per row.
func keyboard(buttons []transport.Button) *tgbotapi.InlineKeyboardMarkup {
	if len(buttons) == 0 {
		return nil
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	if len(buttons) == 2 {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(buttons[0].Label, buttons[0].Action),
			tgbotapi.NewInlineKeyboardButtonData(buttons[1].Label, buttons[1].Action),
		))
	} else {
		for _, btn := range buttons {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(btn.Label, btn.Action),
			))
		}
	}

	markup := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &markup
}

func (b *Bot) SendText(ctx context.Context, chatID int64, text string, buttons ...transport.Button) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if kb := keyboard(buttons); kb != nil {
		msg.ReplyMarkup = kb
	}
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) EditMessageText(ctx context.Context, chatID int64, messageID int, text string, buttons ...transport.Button) error {
	msg := tgbotapi.NewEditMessageText(chatID, messageID, text)
	msg.ReplyMarkup = keyboard(buttons)
	_, err := b.api.Send(msg)
	return err
}

// EditMessageCaption rewrites a media caption. Passing no buttons strips
// the inline keyboard, which is how decided admin messages lose their
// approve/reject controls.
func (b *Bot) EditMessageCaption(ctx context.Context, chatID int64, messageID int, caption string, buttons ...transport.Button) error {
	msg := tgbotapi.NewEditMessageCaption(chatID, messageID, caption)
	msg.ReplyMarkup = keyboard(buttons)
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) ForwardPhoto(ctx context.Context, chatID int64, fileID, caption string, buttons ...transport.Button) (int, error) {
	msg := tgbotapi.NewPhoto(chatID, tgbotapi.FileID(fileID))
	msg.Caption = caption
	if kb := keyboard(buttons); kb != nil {
		msg.ReplyMarkup = kb
	}
	sent, err := b.api.Send(msg)
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

func (b *Bot) ForwardDocument(ctx context.Context, chatID int64, fileID, caption string, buttons ...transport.Button) (int, error) {
	msg := tgbotapi.NewDocument(chatID, tgbotapi.FileID(fileID))
	msg.Caption = caption
	if kb := keyboard(buttons); kb != nil {
		msg.ReplyMarkup = kb
	}
	sent, err := b.api.Send(msg)
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

// AnswerCallback acknowledges a button press so the client stops its spinner.
func (b *Bot) AnswerCallback(callbackID string) {
	_, _ = b.api.Request(tgbotapi.NewCallback(callbackID, ""))
}

// Updates opens the long-polling update channel.
func (b *Bot) Updates() tgbotapi.UpdatesChannel {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 10
	return b.api.GetUpdatesChan(u)
}
