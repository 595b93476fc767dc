package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/legalease-app/backend/internal/core/domain"
	"github.com/legalease-app/backend/internal/core/ports"
)

const (
	minUsernameLen = 3
	maxUsernameLen = 64
	minPasswordLen = 8
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

type AuthUseCase struct {
	users  ports.UserRepository
	tokens ports.TokenManager
}

func NewAuthUseCase(users ports.UserRepository, tokens ports.TokenManager) *AuthUseCase {
	return &AuthUseCase{users: users, tokens: tokens}
}

func (uc *AuthUseCase) Register(ctx context.Context, username, email, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if v := validateRegistration(username, email, password); v.HasErrors() {
		return nil, v
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (uc *AuthUseCase) Login(ctx context.Context, username, password string) (*domain.TokenPair, error) {
	user, err := uc.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if domain.IsKind(err, domain.ErrUserNotFound) {
			return nil, domain.WrapError(domain.ErrUnauthorized, "login", errors.New("unknown username"))
		}
		return nil, fmt.Errorf("fetch user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.WrapError(domain.ErrUnauthorized, "login", errors.New("password mismatch"))
	}

	pair, err := uc.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}
	return pair, nil
}

func (uc *AuthUseCase) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	userID, err := uc.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, domain.WrapError(domain.ErrUnauthorized, "refresh", err)
	}
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		if domain.IsKind(err, domain.ErrUserNotFound) {
			return nil, domain.WrapError(domain.ErrUnauthorized, "refresh", errors.New("user no longer exists"))
		}
		return nil, fmt.Errorf("fetch user: %w", err)
	}
	pair, err := uc.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}
	return pair, nil
}

func validateRegistration(username, email, password string) *domain.ValidationError {
	v := domain.NewValidationError()
	switch {
	case username == "":
		v.Add("username", "username is required")
	case len(username) < minUsernameLen:
		v.Add("username", fmt.Sprintf("username must be at least %d characters", minUsernameLen))
	case len(username) > maxUsernameLen:
		v.Add("username", fmt.Sprintf("username must be at most %d characters", maxUsernameLen))
	}
	if email != "" && !emailPattern.MatchString(email) {
		v.Add("email", "email is not valid")
	}
	if len(password) < minPasswordLen {
		v.Add("password", fmt.Sprintf("password must be at least %d characters", minPasswordLen))
	}
	return v
}
