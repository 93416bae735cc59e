package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Skotchmaster/gym_site/internal/models"
)

var (
	ErrValidation         = errors.New("invalid input")
	ErrConflict           = errors.New("already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

func validationErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

type UserRepo interface {
	CreateUserIfNotExists(ctx context.Context, u *models.User) error
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	SaveUser(ctx context.Context, u *models.User) error
}

type ContentRepo interface {
	ListContent(ctx context.Context, typ string) ([]models.ContentRecord, error)
	UpsertSingleton(ctx context.Context, typ string, data models.JSON) (*models.ContentRecord, error)
	ReplaceCollection(ctx context.Context, typ string, items []models.JSON) ([]models.ContentRecord, error)
}

type ContactRepo interface {
	CreateContactMessage(ctx context.Context, m *models.ContactMessage) error
	ListContactMessages(ctx context.Context, offset, limit int) (int64, []models.ContactMessage, error)
}

type Notifier interface {
	SendContactNotification(ctx context.Context, msg models.ContactMessage) error
}

// Indexer receives the full record set of a content type after every save.
type Indexer interface {
	IndexType(ctx context.Context, typ string, records []models.ContentRecord) error
}
