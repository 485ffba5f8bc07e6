package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"absence_notifier/internal/app"
	"absence_notifier/internal/domain/notification"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// maxFailedListed caps the failed recipients printed by /status.
const maxFailedListed = 20

// Operator is the admin surface the bot exposes.
type Operator interface {
	IsAdmin(senderID int64) bool
	Status(ctx context.Context, performingAdminID int64, date string) (*notification.Reconciliation, error)
	Trigger(ctx context.Context, performingAdminID int64, date string, force bool) (*app.RunSummary, error)
}

var _ Operator = (*app.OperatorService)(nil)

// RegisterAdminHandlers registers /status and /run. Each command runs under jobTimeout.
func RegisterAdminHandlers(ctx context.Context, b *telebot.Bot, ops Operator, jobTimeout time.Duration, baseLogger *logrus.Entry) {
	h := &adminHandlers{ctx: ctx, ops: ops, timeout: jobTimeout, logger: baseLogger}
	b.Handle("/status", h.onStatus)
	b.Handle("/run", h.onRun)
}

type adminHandlers struct {
	ctx     context.Context
	ops     Operator
	timeout time.Duration
	logger  *logrus.Entry
}

func (h *adminHandlers) onStatus(c telebot.Context) error {
	handlerLogger := h.logger.WithFields(logrus.Fields{
		"handler":   "/status",
		"sender_id": c.Sender().ID,
	})
	handlerLogger.Info("Command received")

	args := c.Args()
	if len(args) > 1 {
		return c.Send("Usage: /status [YYYY-MM-DD]")
	}
	var date string
	if len(args) == 1 {
		date = args[0]
	}

	ctx, cancel := context.WithTimeout(h.ctx, h.timeout)
	defer cancel()

	doc, err := h.ops.Status(ctx, c.Sender().ID, date)
	if err != nil {
		logWithError := handlerLogger.WithError(err)
		switch {
		case errors.Is(err, app.ErrAdminNotAuthorized):
			logWithError.Warn("Unauthorized access attempt")
			return c.Send(unauthorizedReply)
		case errors.Is(err, app.ErrInvalidDate):
			return c.Send("Date must be formatted YYYY-MM-DD.")
		case errors.Is(err, notification.ErrReconciliationNotFound):
			return c.Send("No reconciliation stored for that date yet.")
		default:
			logWithError.Error("Failed to load reconciliation")
			return c.Send(fmt.Sprintf("Could not load the reconciliation: %s", err.Error()))
		}
	}
	return c.Send(formatReconciliation(doc))
}

func (h *adminHandlers) onRun(c telebot.Context) error {
	handlerLogger := h.logger.WithFields(logrus.Fields{
		"handler":   "/run",
		"sender_id": c.Sender().ID,
	})
	handlerLogger.Info("Command received")

	if !h.ops.IsAdmin(c.Sender().ID) {
		handlerLogger.Warn("Unauthorized access attempt")
		return c.Send(unauthorizedReply)
	}

	var date string
	var force bool
	for _, arg := range c.Args() {
		switch {
		case strings.EqualFold(arg, "force"):
			force = true
		case date == "":
			date = arg
		default:
			return c.Send("Usage: /run [YYYY-MM-DD] [force]")
		}
	}

	if err := c.Send("Running the absence job..."); err != nil {
		handlerLogger.WithError(err).Warn("Failed to acknowledge /run")
	}

	ctx, cancel := context.WithTimeout(h.ctx, h.timeout)
	defer cancel()

	summary, err := h.ops.Trigger(ctx, c.Sender().ID, date, force)
	if errors.Is(err, app.ErrAdminNotAuthorized) {
		return c.Send(unauthorizedReply)
	}
	if err != nil {
		handlerLogger.WithError(err).Error("Run triggered from chat failed")
	}
	if summary == nil {
		return c.Send(fmt.Sprintf("Run failed: %v", err))
	}
	// The job posts its own outcome to this chat.
	return nil
}

func formatReconciliation(doc *notification.Reconciliation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Reconciliation %s\n", doc.Date)
	fmt.Fprintf(&b, "Total: %d, sent: %d, failed: %d\n", doc.TotalNotifications, doc.SuccessCount, doc.FailedCount)
	fmt.Fprintf(&b, "Last written: %s\n", doc.UpdatedAt.UTC().Format(time.RFC3339))

	failed := doc.FailedRecords()
	if len(failed) == 0 {
		return b.String()
	}
	b.WriteString("\nNot delivered:\n")
	for i, r := range failed {
		if i == maxFailedListed {
			fmt.Fprintf(&b, "... and %d more\n", len(failed)-maxFailedListed)
			break
		}
		fmt.Fprintf(&b, "%s %s (%s): %s\n", r.USN, r.Name, r.Section, r.Status)
	}
	return b.String()
}
