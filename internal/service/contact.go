package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/Skotchmaster/gym_site/internal/events"
	"github.com/Skotchmaster/gym_site/internal/logging"
	"github.com/Skotchmaster/gym_site/internal/models"
)

const (
	maxSubjectLen = 300
	maxMessageLen = 5000
)

type ContactService struct {
	Repo     ContactRepo
	Notifier Notifier
	Events   events.Publisher
}

type ContactRequest struct {
	Name    string
	Email   string
	Subject string
	Message string
}

func (r ContactRequest) normalize() ContactRequest {
	return ContactRequest{
		Name:    strings.TrimSpace(r.Name),
		Email:   strings.TrimSpace(r.Email),
		Subject: strings.TrimSpace(r.Subject),
		Message: strings.TrimSpace(r.Message),
	}
}

func (r ContactRequest) validate() error {
	if r.Name == "" || r.Email == "" || r.Subject == "" || r.Message == "" {
		return validationErr("name, email, subject and message are required")
	}
	if err := validateName(r.Name); err != nil {
		return err
	}
	if err := validateEmail(r.Email); err != nil {
		return err
	}
	if utf8.RuneCountInString(r.Subject) > maxSubjectLen {
		return validationErr("subject must be at most %d characters", maxSubjectLen)
	}
	if utf8.RuneCountInString(r.Message) > maxMessageLen {
		return validationErr("message must be at most %d characters", maxMessageLen)
	}
	return nil
}

// Submit stores the message before notifying staff. A failed notification is
// logged and does not fail the submission.
func (s *ContactService) Submit(ctx context.Context, req ContactRequest) (*models.ContactMessage, error) {
	l := logging.FromContext(ctx).With("svc", "contact.submit")

	req = req.normalize()
	if err := req.validate(); err != nil {
		return nil, err
	}

	msg := &models.ContactMessage{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Message: req.Message,
	}
	if err := s.Repo.CreateContactMessage(ctx, msg); err != nil {
		l.Error("contact_submit_error", "status", 500, "reason", "db error", "error", err)
		return nil, fmt.Errorf("save contact message: %w", err)
	}

	if s.Notifier != nil {
		if err := s.Notifier.SendContactNotification(ctx, *msg); err != nil {
			l.Error("contact_notify_error", "reason", "cannot send notification email", "message_id", msg.ID, "error", err)
		}
	}

	events.Emit(ctx, s.Events, events.TopicContact, strconv.FormatUint(uint64(msg.ID), 10), map[string]any{
		"type":      "contact_submitted",
		"messageID": msg.ID,
	})
	return msg, nil
}

func (s *ContactService) List(ctx context.Context, offset, limit int) (int64, []models.ContactMessage, error) {
	return s.Repo.ListContactMessages(ctx, offset, limit)
}
