package notifications

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"hrportal/internal/platform/i18n"
)

type Mailer interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

type Service struct {
	store  StoreAPI
	Mailer Mailer
	From   string
}

// New builds the service. from is the sender address on outgoing mail.
func New(store StoreAPI, mailer Mailer, from string) *Service {
	return &Service{store: store, Mailer: mailer, From: from}
}

// Create stores the notification and then emails it best-effort.
func (s *Service) Create(ctx context.Context, userID, ntype, title, body string) error {
	n := Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      ntype,
		Title:     title,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.CreateNotification(ctx, n); err != nil {
		return err
	}

	if s.Mailer == nil {
		return nil
	}
	email, err := s.store.UserEmail(ctx, userID)
	if err != nil {
		slog.Warn("notification email lookup failed", "err", err)
		return nil
	}
	if email == "" {
		return nil
	}
	if err := s.Mailer.Send(ctx, s.From, email, title, body); err != nil {
		slog.Warn("notification email send failed", "err", err)
	}
	return nil
}

// Notify renders the "<type>_title" and "<type>_body" messages in the
// context's locale and creates the notification.
func (s *Service) Notify(ctx context.Context, userID, ntype string, data map[string]any) error {
	title := i18n.T(ctx, ntype+"_title", data)
	body := i18n.T(ctx, ntype+"_body", data)
	return s.Create(ctx, userID, ntype, title, body)
}

func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Notification, error) {
	return s.store.ListNotifications(ctx, userID, limit, offset)
}

func (s *Service) Count(ctx context.Context, userID string) (int, error) {
	return s.store.CountNotifications(ctx, userID)
}

func (s *Service) MarkRead(ctx context.Context, userID, notificationID string) error {
	return s.store.MarkRead(ctx, userID, notificationID)
}
