package service

import (
	"fmt"
	"strings"
)

type goalStatusEmail struct {
	GoalNumber string
	GoalName   string
	Grant      string
	Recipient  string
	Status     string
	Reason     string
	Context    string
	URL        string
	AppName    string
}

func goalStatusEmailTemplate(e goalStatusEmail) (string, string) {
	subject := fmt.Sprintf("Goal %s is now %s", e.GoalNumber, e.Status)

	var b strings.Builder
	fmt.Fprintf(&b, "Goal %s for %s (grant %s) was marked %s.\n\n", e.GoalNumber, e.Recipient, e.Grant, e.Status)
	fmt.Fprintf(&b, "Goal: %s\n", e.GoalName)
	if e.Reason != "" {
		fmt.Fprintf(&b, "Reason: %s\n", e.Reason)
	}
	if e.Context != "" {
		fmt.Fprintf(&b, "Context: %s\n", e.Context)
	}
	fmt.Fprintf(&b, "\nView the goal: %s\n\nBest,\nThe %s Team", e.URL, e.AppName)

	return subject, b.String()
}
