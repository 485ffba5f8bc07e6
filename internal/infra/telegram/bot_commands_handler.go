// internal/infra/telegram/bot_commands_handler.go
package telegram

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const unauthorizedReply = "Sorry, this bot only answers the configured administrator."

func RegisterBotCommands(b *telebot.Bot, ops Operator, baseLogger *logrus.Entry) {
	h := &commandHandlers{ops: ops, logger: baseLogger.WithField("handler_group", "start_help")}
	b.Handle("/start", h.onStart)
	b.Handle("/help", h.onHelp)
}

type commandHandlers struct {
	ops    Operator
	logger *logrus.Entry
}

func (h *commandHandlers) onStart(c telebot.Context) error {
	senderID := c.Sender().ID
	logCtx := h.logger.WithField("command", "/start").WithField("sender_id", senderID)
	logCtx.Info("Processing /start command")

	if !h.ops.IsAdmin(senderID) {
		logCtx.Info("User is unknown")
		return c.Send(unauthorizedReply)
	}
	return c.Send(fmt.Sprintf("Hello, %s! I report the daily absence SMS runs here. Use /help for the command list.", c.Sender().FirstName))
}

func (h *commandHandlers) onHelp(c telebot.Context) error {
	senderID := c.Sender().ID
	logCtx := h.logger.WithField("command", "/help").WithField("sender_id", senderID)
	logCtx.Info("Processing /help command")

	if !h.ops.IsAdmin(senderID) {
		return c.Send(unauthorizedReply)
	}
	var helpText strings.Builder
	helpText.WriteString("Operator commands:\n\n")
	helpText.WriteString("`/status [YYYY-MM-DD]`\n - Show the reconciliation for a date (default today).\n\n")
	helpText.WriteString("`/run [YYYY-MM-DD] [force]`\n - Run the absence job. `force` replaces an existing reconciliation.\n\n")
	helpText.WriteString("`/help`\n - Show this message.")
	return c.Send(helpText.String(), &telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
}
