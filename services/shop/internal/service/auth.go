package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"

	pkghash "github.com/Skotchmaster/storefront/pkg/hash"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/tokens"
	"github.com/Skotchmaster/storefront/services/shop/internal/events"
	"github.com/Skotchmaster/storefront/services/shop/internal/models"
	"github.com/Skotchmaster/storefront/services/shop/internal/repo"
)

type AuthService struct {
	Repo      *repo.GormRepo
	Events    events.Publisher
	JWTSecret []byte
	TokenTTL  time.Duration
}

type LoginResult struct {
	AccessToken string
	ExpiresAt   time.Time
	User        *models.User
}

func (s *AuthService) Register(ctx context.Context, username, password string) (*models.User, string, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, "", fmt.Errorf("username and password required: %w", ErrValidation)
	}

	if _, err := s.Repo.UserByUsername(ctx, username); err == nil {
		l.Warn("register_error", "status", 409, "reason", "user already exists")
		return nil, "", fmt.Errorf("user %q already exists: %w", username, ErrConflict)
	} else if !notFound(err) {
		return nil, "", err
	}

	pwHash, err := pkghash.HashPassword(password)
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, "", err
	}

	code, err := verificationCode()
	if err != nil {
		return nil, "", err
	}

	user := &models.User{
		Username:         username,
		PasswordHash:     pwHash,
		Role:             models.RoleCustomer,
		VerificationCode: code,
	}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		return nil, "", err
	}

	if err := s.Events.Publish(ctx, events.TopicUser, user.ID.String(), events.UserEvent{
		Type:             "user_registered",
		UserID:           user.ID.String(),
		Username:         user.Username,
		VerificationCode: code,
	}); err != nil {
		l.Warn("publish_error", "topic", events.TopicUser, "error", err)
	}

	l.Info("user_registered", "user_id", user.ID)
	return user, code, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login", "username", username)

	if username == "" || password == "" {
		return nil, fmt.Errorf("username and password required: %w", ErrValidation)
	}

	user, err := s.Repo.UserByUsername(ctx, username)
	if err != nil {
		if notFound(err) {
			l.Warn("login_failed", "status", 401, "reason", "unknown user")
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	if !pkghash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login_failed", "status", 401, "reason", "bad password")
		return nil, ErrUnauthorized
	}

	return s.issue(user)
}

// Verify checks the code sent at registration and returns a fresh token
// carrying the verified flag.
func (s *AuthService) Verify(ctx context.Context, userID uuid.UUID, code string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.verify", "user_id", userID)

	user, err := s.Repo.UserByID(ctx, userID)
	if err != nil {
		if notFound(err) {
			return nil, fmt.Errorf("user: %w", ErrNotFound)
		}
		return nil, err
	}

	if !user.Verified {
		if strings.TrimSpace(code) == "" || code != user.VerificationCode {
			l.Warn("verify_failed", "status", 422)
			return nil, fmt.Errorf("verification code mismatch: %w", ErrValidation)
		}
		if err := s.Repo.MarkVerified(ctx, user.ID); err != nil {
			return nil, err
		}
		user.Verified = true
		user.VerificationCode = ""

		if err := s.Events.Publish(ctx, events.TopicUser, user.ID.String(), events.UserEvent{
			Type:     "user_verified",
			UserID:   user.ID.String(),
			Username: user.Username,
		}); err != nil {
			l.Warn("publish_error", "topic", events.TopicUser, "error", err)
		}
	}

	return s.issue(user)
}

func (s *AuthService) issue(user *models.User) (*LoginResult, error) {
	ttl := s.TokenTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	exp := time.Now().Add(ttl)
	token, err := tokens.IssueAccessToken(s.JWTSecret, user.ID.String(), user.Username, user.Role, user.Verified, exp)
	if err != nil {
		return nil, err
	}
	return &LoginResult{AccessToken: token, ExpiresAt: exp, User: user}, nil
}

func verificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("verification code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
