package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/templui/passreset/internal/ctxkeys"
	"github.com/templui/passreset/internal/model"
	"github.com/templui/passreset/internal/repository"
	"github.com/templui/passreset/internal/validation"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailAlreadyExists    = errors.New("email already exists")
	ErrUsernameAlreadyExists = errors.New("username already exists")
	ErrInvalidEmail          = errors.New("invalid email address")
	ErrInvalidUsername       = errors.New("invalid username")
	ErrInvalidPassword       = errors.New("invalid password")
	ErrInvalidCredentials    = errors.New("invalid login credentials")
)

// AccountDirectory is the account store the reset flow reads and mutates.
// Implementations hash credentials; plaintext is never persisted or logged.
type AccountDirectory interface {
	FindByIdentifier(ctx context.Context, identifier string) (*model.User, error)
	SetCredential(ctx context.Context, userID, password string) error
}

type AccountService struct {
	userRepository repository.UserRepository
	bcryptCost     int
}

func NewAccountService(userRepository repository.UserRepository, bcryptCost int) *AccountService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AccountService{
		userRepository: userRepository,
		bcryptCost:     bcryptCost,
	}
}

// FindByIdentifier looks an account up by email when the identifier is
// email-shaped and by username otherwise.
func (s *AccountService) FindByIdentifier(ctx context.Context, identifier string) (*model.User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, ErrAccountNotFound
	}

	var (
		user *model.User
		err  error
	)
	if validation.IsEmailIdentifier(identifier) {
		user, err = s.userRepository.ByEmail(ctx, validation.NormalizeEmail(identifier))
	} else {
		user, err = s.userRepository.ByUsername(ctx, identifier)
	}
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

func (s *AccountService) SetCredential(ctx context.Context, userID, password string) error {
	hashedPassword, err := s.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	err = s.userRepository.UpdatePasswordHash(ctx, userID, hashedPassword)
	if err != nil {
		return fmt.Errorf("failed to set password: %w", err)
	}

	slog.Info("password updated", "user_id", userID)
	return nil
}

// Register creates an account. Used by the register endpoint and the
// operator CLI so the reset flow has accounts to work on.
func (s *AccountService) Register(ctx context.Context, email, username, password string) (*model.User, error) {
	email = validation.NormalizeEmail(email)
	username = strings.TrimSpace(username)

	err := validation.ValidateEmail(email)
	if err != nil {
		return nil, ErrInvalidEmail
	}

	err = validation.ValidateUsername(username)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidUsername, err)
	}

	err = validation.ValidatePassword(password)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPassword, err)
	}

	hashedPassword, err := s.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.New().String(),
		Email:        email,
		Username:     username,
		PasswordHash: hashedPassword,
		CreatedAt:    ctxkeys.Now(ctx).UTC(),
	}

	err = s.userRepository.Create(ctx, user)
	if errors.Is(err, repository.ErrDuplicateEmail) {
		return nil, ErrEmailAlreadyExists
	}
	if errors.Is(err, repository.ErrDuplicateUsername) {
		return nil, ErrUsernameAlreadyExists
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("user registered", "user_id", user.ID, "email", user.Email)
	return user, nil
}

// Authenticate reports whether password matches the account's stored hash.
func (s *AccountService) Authenticate(ctx context.Context, identifier, password string) (*model.User, error) {
	user, err := s.FindByIdentifier(ctx, identifier)
	if err != nil {
		return nil, err
	}

	err = s.ComparePassword(password, user.PasswordHash)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *AccountService) HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

func (s *AccountService) ComparePassword(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// Compile-time interface check.
var _ AccountDirectory = (*AccountService)(nil)
