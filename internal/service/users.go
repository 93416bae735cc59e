package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/gym_site/internal/events"
	"github.com/Skotchmaster/gym_site/internal/hash"
	"github.com/Skotchmaster/gym_site/internal/logging"
	"github.com/Skotchmaster/gym_site/internal/models"
	"github.com/Skotchmaster/gym_site/internal/repo"
	"github.com/Skotchmaster/gym_site/internal/tokens"
)

const (
	minPasswordLen = 6
	maxPasswordLen = 72
	maxNameLen     = 100

	AdminSubject = "admin"
)

var (
	checkPassword = hash.CheckPassword

	dummyHashOnce sync.Once
	dummyHash     string
)

// unknownUserHash is checked when no user matches, so a miss costs
// the same bcrypt work as a wrong password.
func unknownUserHash() string {
	dummyHashOnce.Do(func() {
		dummyHash, _ = hash.HashPassword("unknown-user-placeholder")
	})
	return dummyHash
}

type UserService struct {
	Repo              UserRepo
	Tokens            *tokens.Service
	AdminEmail        string
	AdminPasswordHash string
	Events            events.Publisher
}

type AuthResult struct {
	User  *models.User
	Token string
}

// UserPatch carries the fields of a partial update. Nil fields are left
// untouched.
type UserPatch struct {
	Name                     *string
	MembershipType           *models.MembershipType
	MembershipStatus         *models.MembershipStatus
	UpcomingClasses          *int
	PersonalTrainingSessions *int
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" {
		return validationErr("email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return validationErr("email is invalid")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLen {
		return validationErr("password must be at least %d characters", minPasswordLen)
	}
	if len(password) > maxPasswordLen {
		return validationErr("password must be at most %d bytes", maxPasswordLen)
	}
	return nil
}

func validateName(name string) error {
	if len([]rune(name)) > maxNameLen {
		return validationErr("name must be at most %d characters", maxNameLen)
	}
	return nil
}

func (s *UserService) Create(ctx context.Context, email, password, name string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "users.create")

	email = NormalizeEmail(email)
	name = strings.TrimSpace(name)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	if err := validateName(name); err != nil {
		return nil, err
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		l.Error("create_user_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	user := &models.User{
		ID:               uuid.NewString(),
		Email:            email,
		PasswordHash:     pwHash,
		Name:             name,
		MembershipType:   models.MembershipBasic,
		MembershipStatus: models.MembershipActive,
		CreatedAt:        time.Now().UTC(),
	}

	if err := s.Repo.CreateUserIfNotExists(ctx, user); err != nil {
		if errors.Is(err, repo.ErrUserAlreadyExist) {
			l.Warn("create_user_error", "status", 409, "reason", "user already exist")
			return nil, fmt.Errorf("%w: email is already registered", ErrConflict)
		}
		l.Error("create_user_error", "status", 500, "reason", "db error", "error", err)
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

func (s *UserService) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.Repo.FindUserByEmail(ctx, NormalizeEmail(email))
}

func (s *UserService) FindByID(ctx context.Context, id string) (*models.User, error) {
	return s.Repo.FindUserByID(ctx, id)
}

// Authenticate returns the user only when the password matches. Unknown
// emails and wrong passwords both yield (nil, nil).
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		checkPassword(unknownUserHash(), password)
		return nil, nil
	}
	if !checkPassword(user.PasswordHash, password) {
		return nil, nil
	}
	return user, nil
}

// Update applies the non-nil fields of p. A missing user yields (nil, nil).
func (s *UserService) Update(ctx context.Context, id string, p UserPatch) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "users.update", "user_id", id)

	if err := p.validate(); err != nil {
		return nil, err
	}

	user, err := s.Repo.FindUserByID(ctx, id)
	if err != nil {
		l.Error("update_user_error", "status", 500, "reason", "db error", "error", err)
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, nil
	}

	p.apply(user)

	if err := s.Repo.SaveUser(ctx, user); err != nil {
		l.Error("update_user_error", "status", 500, "reason", "db error", "error", err)
		return nil, fmt.Errorf("save user: %w", err)
	}

	events.Emit(ctx, s.Events, events.TopicUser, user.ID, map[string]any{
		"type":   "user_updated",
		"userID": user.ID,
	})
	return user, nil
}

func (p UserPatch) validate() error {
	if p.Name != nil {
		if err := validateName(strings.TrimSpace(*p.Name)); err != nil {
			return err
		}
	}
	if p.MembershipType != nil && !p.MembershipType.Valid() {
		return validationErr("membershipType must be one of Basic, Premium, Elite")
	}
	if p.MembershipStatus != nil && !p.MembershipStatus.Valid() {
		return validationErr("membershipStatus must be one of Active, Inactive, Expired")
	}
	if p.UpcomingClasses != nil && *p.UpcomingClasses < 0 {
		return validationErr("upcomingClasses cannot be negative")
	}
	if p.PersonalTrainingSessions != nil && *p.PersonalTrainingSessions < 0 {
		return validationErr("personalTrainingSessions cannot be negative")
	}
	return nil
}

func (p UserPatch) apply(u *models.User) {
	if p.Name != nil {
		u.Name = strings.TrimSpace(*p.Name)
	}
	if p.MembershipType != nil {
		u.MembershipType = *p.MembershipType
	}
	if p.MembershipStatus != nil {
		u.MembershipStatus = *p.MembershipStatus
	}
	if p.UpcomingClasses != nil {
		u.UpcomingClasses = *p.UpcomingClasses
	}
	if p.PersonalTrainingSessions != nil {
		u.PersonalTrainingSessions = *p.PersonalTrainingSessions
	}
}

func (s *UserService) isAdminEmail(email string) bool {
	admin := NormalizeEmail(s.AdminEmail)
	return admin != "" && admin == NormalizeEmail(email)
}

func (s *UserService) issue(u *models.User) (string, error) {
	return s.Tokens.Issue(u.ID, u.Email, s.isAdminEmail(u.Email))
}

func (s *UserService) Register(ctx context.Context, email, password, name string) (*AuthResult, error) {
	l := logging.FromContext(ctx).With("svc", "users.register")

	user, err := s.Create(ctx, email, password, name)
	if err != nil {
		return nil, err
	}

	token, err := s.issue(user)
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot issue token", "error", err)
		return nil, fmt.Errorf("issue token: %w", err)
	}

	events.Emit(ctx, s.Events, events.TopicUser, user.ID, map[string]any{
		"type":   "user_registered",
		"userID": user.ID,
		"email":  user.Email,
	})
	return &AuthResult{User: user, Token: token}, nil
}

func (s *UserService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	l := logging.FromContext(ctx).With("svc", "users.login")

	if NormalizeEmail(email) == "" || password == "" {
		return nil, validationErr("email and password are required")
	}

	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		l.Error("login_error", "status", 500, "reason", "db error", "error", err)
		return nil, err
	}
	if user == nil {
		l.Warn("login_failed", "status", 401, "reason", "invalid email or password")
		return nil, ErrInvalidCredentials
	}

	token, err := s.issue(user)
	if err != nil {
		l.Error("login_error", "status", 500, "reason", "cannot issue token", "error", err)
		return nil, fmt.Errorf("issue token: %w", err)
	}

	events.Emit(ctx, s.Events, events.TopicUser, user.ID, map[string]any{
		"type":   "user_logged_in",
		"userID": user.ID,
	})
	return &AuthResult{User: user, Token: token}, nil
}

// AdminLogin checks the configured admin identity. It is independent of the
// users table, so the admin works before any member has registered.
func (s *UserService) AdminLogin(ctx context.Context, email, password string) (string, error) {
	l := logging.FromContext(ctx).With("svc", "users.admin_login")

	if s.AdminEmail == "" || s.AdminPasswordHash == "" {
		l.Warn("admin_login_failed", "status", 401, "reason", "admin credentials not configured")
		return "", ErrInvalidCredentials
	}
	passwordOK := checkPassword(s.AdminPasswordHash, password)
	if !s.isAdminEmail(email) || !passwordOK {
		l.Warn("admin_login_failed", "status", 401, "reason", "invalid email or password")
		return "", ErrInvalidCredentials
	}

	token, err := s.Tokens.Issue(AdminSubject, NormalizeEmail(s.AdminEmail), true)
	if err != nil {
		l.Error("admin_login_error", "status", 500, "reason", "cannot issue token", "error", err)
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}
