package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"
	"github.com/ttahub/ttahub/internal/lifecycle"
	"github.com/ttahub/ttahub/internal/model"
)

// EmailSender is the part of the resend client the notifier uses.
type EmailSender interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// EmailService sends goal status notices. In development it only logs.
type EmailService struct {
	emails    EmailSender
	fromEmail string
	toEmail   string
	isDev     bool
	appURL    string
	appName   string
}

func NewEmailService(apiKey, fromEmail, toEmail, appURL, appName string, isDev bool) *EmailService {
	var emails EmailSender
	if apiKey != "" && !isDev {
		emails = resend.NewClient(apiKey).Emails
	}

	return &EmailService{
		emails:    emails,
		fromEmail: fromEmail,
		toEmail:   toEmail,
		isDev:     isDev,
		appURL:    appURL,
		appName:   appName,
	}
}

// GoalStatusChanged tells the configured recipient that a goal was closed
// or suspended.
func (s *EmailService) GoalStatusChanged(ctx context.Context, goal *model.Goal, grant *model.Grant) error {
	if s.toEmail == "" {
		return nil
	}

	number := model.GoalNumber(grant.RegionID, goal.ID)
	goalURL := fmt.Sprintf("%s/api/goals/%d", s.appURL, goal.ID)
	subject, body := goalStatusEmailTemplate(goalStatusEmail{
		GoalNumber: number,
		GoalName:   goal.Name,
		Grant:      grant.Number,
		Recipient:  grant.RecipientName,
		Status:     lifecycle.Status(goal.Status).Label(),
		Reason:     goal.CloseSuspendReason,
		Context:    goal.CloseSuspendContext,
		URL:        goalURL,
		AppName:    s.appName,
	})

	if s.isDev {
		slog.Info("email sent (dev mode)", "type", "goal_status", "to", s.toEmail, "subject", subject, "goal", number)
		return nil
	}

	if s.emails == nil {
		return fmt.Errorf("email service not configured (missing RESEND_API_KEY)")
	}

	params := &resend.SendEmailRequest{
		From:    s.fromEmail,
		To:      []string{s.toEmail},
		Subject: subject,
		Text:    body,
	}

	_, err := s.emails.SendWithContext(ctx, params)
	if err == nil {
		slog.Info("email sent", "type", "goal_status", "to", s.toEmail, "goal", number)
	}
	return err
}
