package service

import (
	"context"
	"errors"
	"testing"

	"github.com/resend/resend-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ttahub/ttahub/internal/model"
)

type fakeSender struct {
	sent []*resend.SendEmailRequest
	err  error
}

func (f *fakeSender) SendWithContext(_ context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, params)
	return &resend.SendEmailResponse{Id: "email-1"}, nil
}

func suspendedGoal() (*model.Goal, *model.Grant) {
	goal := &model.Goal{
		ID:                  42,
		Name:                "Improve attendance",
		Status:              "Suspended",
		CloseSuspendReason:  "Recipient request",
		CloseSuspendContext: "Paused for summer",
	}
	grant := &model.Grant{ID: 1, RegionID: 3, Number: "03CH0001", RecipientName: "Head Start North"}
	return goal, grant
}

func TestGoalStatusChanged_Sends(t *testing.T) {
	sender := &fakeSender{}
	s := NewEmailService("", "noreply@example.com", "specialist@example.com", "https://tta.example.com", "TTA Hub", false)
	s.emails = sender

	goal, grant := suspendedGoal()
	require.NoError(t, s.GoalStatusChanged(context.Background(), goal, grant))

	require.Len(t, sender.sent, 1)
	sent := sender.sent[0]
	assert.Equal(t, []string{"specialist@example.com"}, sent.To)
	assert.Equal(t, "Goal R3-G-42 is now Ceased/Suspended", sent.Subject)
	assert.Contains(t, sent.Text, "Reason: Recipient request")
	assert.Contains(t, sent.Text, "Context: Paused for summer")
	assert.Contains(t, sent.Text, "https://tta.example.com/api/goals/42")
}

func TestGoalStatusChanged_DevModeAndDisabled(t *testing.T) {
	goal, grant := suspendedGoal()

	dev := NewEmailService("key", "noreply@example.com", "specialist@example.com", "http://localhost", "TTA Hub", true)
	assert.NoError(t, dev.GoalStatusChanged(context.Background(), goal, grant))

	disabled := NewEmailService("key", "noreply@example.com", "", "http://localhost", "TTA Hub", false)
	assert.NoError(t, disabled.GoalStatusChanged(context.Background(), goal, grant))

	unconfigured := NewEmailService("", "noreply@example.com", "specialist@example.com", "http://localhost", "TTA Hub", false)
	assert.Error(t, unconfigured.GoalStatusChanged(context.Background(), goal, grant))
}

func TestGoalStatusChanged_SendError(t *testing.T) {
	s := NewEmailService("", "noreply@example.com", "specialist@example.com", "http://localhost", "TTA Hub", false)
	s.emails = &fakeSender{err: errors.New("rate limited")}

	goal, grant := suspendedGoal()
	assert.EqualError(t, s.GoalStatusChanged(context.Background(), goal, grant), "rate limited")
}
