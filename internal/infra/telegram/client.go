// internal/infra/telegram/client.go
package telegram

import (
	"context"

	"absence_notifier/internal/domain/operator"

	"gopkg.in/telebot.v3"
)

// Sender is the subset of *telebot.Bot used for outbound messages.
type Sender interface {
	Send(to telebot.Recipient, what interface{}, opts ...interface{}) (*telebot.Message, error)
}

// TelebotAdapter posts operator notices to the admin chat.
type TelebotAdapter struct {
	bot         Sender
	adminChatID int64
}

var _ operator.Notifier = (*TelebotAdapter)(nil)

func NewTelebotAdapter(b Sender, adminChatID int64) *TelebotAdapter {
	return &TelebotAdapter{bot: b, adminChatID: adminChatID}
}

// Notify sends text to the admin. telebot has no context support, so ctx is
// only checked before sending.
func (tba *TelebotAdapter) Notify(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	recipient := &telebot.User{ID: tba.adminChatID}
	_, err := tba.bot.Send(recipient, text, &telebot.SendOptions{DisableWebPagePreview: true})
	return err
}
