package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"absence_notifier/internal/domain/notification"
	"absence_notifier/internal/domain/sms"
	"absence_notifier/internal/infra/metrics"

	"github.com/sirupsen/logrus"
)

// templateDateLayout is dd/mm/yyyy, the format the SMS template expects.
const templateDateLayout = "02/01/2006"

// DispatchOutcome describes one batch send.
type DispatchOutcome struct {
	Sent           int
	Failed         int
	Unmatched      int // records the gateway returned no result for
	GatewayMessage string
	GatewaySummary string
}

// Dispatcher sends the day's candidates through the gateway in one batch and
// writes each result back onto the candidate at the same position.
type Dispatcher struct {
	gateway        sms.Gateway
	operatorPhones []string
	logger         *logrus.Entry
	now            func() time.Time
}

func NewDispatcher(gateway sms.Gateway, operatorPhones []string, logger *logrus.Entry) *Dispatcher {
	return &Dispatcher{
		gateway:        gateway,
		operatorPhones: operatorPhones,
		logger:         logger,
		now:            time.Now,
	}
}

// Dispatch mutates records in place to their terminal status. A gateway error
// leaves every record pending and is returned to the caller.
//
// Results are matched to records by index: the gateway echoes no correlation
// key. When the counts differ the surplus records stay pending.
func (d *Dispatcher) Dispatch(ctx context.Context, date time.Time, records []*notification.Record) (*DispatchOutcome, error) {
	if len(records) == 0 {
		return &DispatchOutcome{}, nil
	}

	dateStr := date.Format(templateDateLayout)
	recipients := make([]sms.Recipient, 0, len(records))
	for _, r := range records {
		recipients = append(recipients, sms.Recipient{
			Phone:        normalizePhone(r.Phone),
			TemplateVars: []string{strconv.Itoa(r.MissedCount()), dateStr},
		})
	}

	res, err := d.gateway.SendTemplate(ctx, recipients)
	if err != nil {
		return nil, fmt.Errorf("failed to send absence batch: %w", err)
	}

	outcome := &DispatchOutcome{GatewayMessage: res.Message, GatewaySummary: res.Summary}
	if len(res.Results) != len(records) {
		metrics.ResultMismatches.Inc()
		d.logger.WithFields(logrus.Fields{
			"recipients": len(records),
			"results":    len(res.Results),
		}).Warn("Gateway result count does not match recipient count")
	}

	sentAt := d.now().UTC()
	for i, r := range records {
		if i >= len(res.Results) {
			outcome.Unmatched++
			continue
		}
		applyResult(r, res.Results[i], sentAt)
		if r.Status.IsSent() {
			outcome.Sent++
		} else {
			outcome.Failed++
			d.logger.WithFields(logrus.Fields{"usn": r.USN, "status": r.Status}).Warn("Gateway rejected recipient")
		}
	}
	metrics.Notifications.WithLabelValues("sent").Add(float64(outcome.Sent))
	metrics.Notifications.WithLabelValues("failed").Add(float64(outcome.Failed))
	metrics.Notifications.WithLabelValues("pending").Add(float64(outcome.Unmatched))

	d.notifyOperators(ctx, dateStr, len(records), outcome)
	return outcome, nil
}

func applyResult(r *notification.Record, res sms.Result, sentAt time.Time) {
	switch {
	case res.Success:
		r.Status = notification.StatusSent
		at := sentAt
		r.SentAt = &at
	case res.Error != "":
		r.Status = notification.Status(res.Error)
	default:
		r.Status = notification.StatusFailed
	}
	r.GUID = res.GUID
}

// notifyOperators sends the summary text. Failures never affect the run.
func (d *Dispatcher) notifyOperators(ctx context.Context, dateStr string, total int, o *DispatchOutcome) {
	if len(d.operatorPhones) == 0 {
		return
	}
	text := fmt.Sprintf("Absence SMS %s: %d/%d sent, %d failed.", dateStr, o.Sent, total, o.Failed)
	if o.GatewaySummary != "" {
		text += " " + o.GatewaySummary
	}
	if _, err := d.gateway.SendText(ctx, d.operatorPhones, text); err != nil {
		d.logger.WithError(err).Warn("Failed to send operator summary SMS")
		return
	}
	d.logger.WithField("operators", len(d.operatorPhones)).Debug("Operator summary SMS sent")
}

// normalizePhone strips formatting characters, keeping digits and a leading '+'.
func normalizePhone(phone string) string {
	var b strings.Builder
	for i, c := range strings.TrimSpace(phone) {
		switch {
		case c >= '0' && c <= '9':
			b.WriteRune(c)
		case c == '+' && i == 0:
			b.WriteRune(c)
		}
	}
	return b.String()
}
