// Package notify delivers deadline reminders to their recipients.
package notify

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"github.com/linesmerrill/court-compliance-api/models"
	templates "github.com/linesmerrill/court-compliance-api/templates/html"
)

// Notifier sends one reminder for one deadline
type Notifier interface {
	Notify(ctx context.Context, reminder models.Reminder, deadline models.Deadline) error
}

func emailData(reminder models.Reminder, deadline models.Deadline) templates.ReminderEmailData {
	return templates.ReminderEmailData{
		CaseID:       deadline.CaseID,
		Description:  deadline.Description,
		RuleCitation: deadline.RuleCitation,
		DueDate:      deadline.DueDate.String(),
		DaysBefore:   deadline.DueDate.DaysSince(reminder.ScheduledFor),
		Jurisdiction: deadline.Computation.Jurisdiction,
		FilingCutoff: deadline.Computation.FilingCutoff,
		TimeZone:     deadline.Computation.TimeZone,
	}
}

// sender is the part of the SendGrid client the notifier uses
type sender interface {
	Send(email *sgmail.SGMailV3) (*sendgridResponse, error)
}

type sendgridResponse struct {
	StatusCode int
	Body       string
}

type sendgridClient struct {
	apiKey string
}

func (c sendgridClient) Send(email *sgmail.SGMailV3) (*sendgridResponse, error) {
	resp, err := sendgrid.NewSendClient(c.apiKey).Send(email)
	if err != nil {
		return nil, err
	}
	return &sendgridResponse{StatusCode: resp.StatusCode, Body: resp.Body}, nil
}

// EmailNotifier sends reminders through SendGrid
type EmailNotifier struct {
	from   *sgmail.Email
	client sender
}

// NewEmailNotifier returns a SendGrid-backed notifier sending as fromAddress
func NewEmailNotifier(apiKey, fromName, fromAddress string) *EmailNotifier {
	return &EmailNotifier{
		from:   sgmail.NewEmail(fromName, fromAddress),
		client: sendgridClient{apiKey: apiKey},
	}
}

// Notify emails the reminder's recipient. Recipients that are not email
// addresses are rejected.
func (n *EmailNotifier) Notify(_ context.Context, reminder models.Reminder, deadline models.Deadline) error {
	addr, err := mail.ParseAddress(reminder.Recipient)
	if err != nil {
		return fmt.Errorf("recipient %q is not an email address: %w", reminder.Recipient, err)
	}
	data := emailData(reminder, deadline)
	subject := templates.ReminderSubject(data)
	to := sgmail.NewEmail(addr.Name, addr.Address)
	message := sgmail.NewSingleEmail(n.from, subject, to, templates.RenderReminderText(data), templates.RenderReminderEmail(data))

	response, err := n.client.Send(message)
	if err != nil {
		zap.S().Errorw("failed to send reminder email", "error", err, "to", addr.Address, "reminder", reminder.ID)
		return err
	}
	if response.StatusCode >= 400 {
		zap.S().Errorw("sendgrid returned error status", "status", response.StatusCode, "body", response.Body, "to", addr.Address)
		return fmt.Errorf("sendgrid error: status %d", response.StatusCode)
	}
	zap.S().Infow("reminder email sent", "to", addr.Address, "subject", subject, "reminder", reminder.ID)
	return nil
}

// LogNotifier writes reminders to the log instead of delivering them. It is
// used when no mail provider is configured.
type LogNotifier struct {
	logger *zap.SugaredLogger
}

// NewLogNotifier returns a notifier that logs through logger
func NewLogNotifier(logger *zap.SugaredLogger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs the reminder
func (n *LogNotifier) Notify(_ context.Context, reminder models.Reminder, deadline models.Deadline) error {
	data := emailData(reminder, deadline)
	n.logger.Infow("deadline reminder",
		"to", reminder.Recipient,
		"subject", templates.ReminderSubject(data),
		"body", strings.TrimSpace(templates.RenderReminderText(data)),
		"reminder", reminder.ID)
	return nil
}
