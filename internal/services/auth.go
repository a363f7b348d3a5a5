package services

//go:generate mockgen -source=auth.go -destination=auth_mock.go -package=services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/sbilibin2017/gw-auth-manager/internal/jwt"
	"github.com/sbilibin2017/gw-auth-manager/internal/logger"
	"github.com/sbilibin2017/gw-auth-manager/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// Error variables
var (
	ErrCredentialsRequired = errors.New("username and password must be provided")
	ErrInvalidCredentials  = errors.New("invalid credentials")
)

// Failure reasons reported to the metrics recorder.
const (
	FailureMissingCredentials = "missing_credentials"
	FailureUnknownUser        = "unknown_user"
	FailureBadPassword        = "bad_password"
)

// bcrypt ignores everything past this many bytes of a password.
const maxPasswordBytes = 72

// UserReader defines read-only operations for users.
type UserReader interface {
	GetByUsername(ctx context.Context, username string) (*models.UserDB, error)
}

// TokenGenerator signs tokens for a subject.
type TokenGenerator interface {
	Generate(ctx context.Context, subject string, role models.Role, ttl time.Duration) (string, *jwt.Claims, error)
}

// RevokedTokenWriter stores revoked token ids until they would have expired.
type RevokedTokenWriter interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
}

// EventPublisher publishes token audit events.
type EventPublisher interface {
	Publish(ctx context.Context, event models.TokenEvent) error
}

// MetricsRecorder records issuance outcomes.
type MetricsRecorder interface {
	RecordTokenIssued(client string)
	RecordLoginFailure(reason string)
}

// TokenTTL holds the lifetime of tokens per client flavour.
type TokenTTL struct {
	API time.Duration
	CLI time.Duration
}

func (t TokenTTL) forClient(client models.TokenClient) time.Duration {
	if client == models.ClientCLI {
		return t.CLI
	}
	return t.API
}

// AuthService issues and revokes tokens.
type AuthService struct {
	reader    UserReader
	tokens    TokenGenerator
	revoked   RevokedTokenWriter
	publisher EventPublisher
	metrics   MetricsRecorder
	ttl       TokenTTL
}

// NewAuthService creates a new AuthService instance.
// publisher and metrics may be nil.
func NewAuthService(
	reader UserReader,
	tokens TokenGenerator,
	revoked RevokedTokenWriter,
	publisher EventPublisher,
	metrics MetricsRecorder,
	ttl TokenTTL,
) *AuthService {
	return &AuthService{
		reader:    reader,
		tokens:    tokens,
		revoked:   revoked,
		publisher: publisher,
		metrics:   metrics,
		ttl:       ttl,
	}
}

var (
	dummyHashOnce sync.Once
	dummyHash     []byte
)

// equalizeTiming spends a bcrypt comparison when the user does not exist,
// so unknown usernames cannot be told apart by response time.
func equalizeTiming(password string) {
	dummyHashOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)
	})
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}

// CreateToken authenticates a user and returns a signed token whose
// lifetime depends on the client flavour.
func (svc *AuthService) CreateToken(ctx context.Context, username, password string, client models.TokenClient) (string, error) {
	if username == "" || password == "" {
		svc.recordFailure(FailureMissingCredentials)
		return "", ErrCredentialsRequired
	}

	// PostgreSQL text cannot hold NUL, so no stored user can match.
	if strings.ContainsRune(username, 0) {
		equalizeTiming(password)
		svc.recordFailure(FailureUnknownUser)
		return "", ErrInvalidCredentials
	}

	user, err := svc.reader.GetByUsername(ctx, username)
	if err != nil {
		logger.Log.Errorw("failed to get user", "username", username, "err", err)
		return "", err
	}
	if user == nil {
		equalizeTiming(password)
		logger.Log.Infow("login attempt for unknown user", "username", username)
		svc.recordFailure(FailureUnknownUser)
		return "", ErrInvalidCredentials
	}

	if len(password) > maxPasswordBytes {
		logger.Log.Infow("invalid credentials", "username", username)
		svc.recordFailure(FailureBadPassword)
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		logger.Log.Infow("invalid credentials", "username", username)
		svc.recordFailure(FailureBadPassword)
		return "", ErrInvalidCredentials
	}

	token, claims, err := svc.tokens.Generate(ctx, user.Username, user.Role, svc.ttl.forClient(client))
	if err != nil {
		logger.Log.Errorw("failed to generate JWT", "username", username, "err", err)
		return "", err
	}

	if svc.metrics != nil {
		svc.metrics.RecordTokenIssued(string(client))
	}
	svc.publish(ctx, models.EventTokenIssued, claims, client)

	return token, nil
}

// Revoke invalidates a token for the rest of its lifetime.
func (svc *AuthService) Revoke(ctx context.Context, claims *jwt.Claims) error {
	if claims == nil || claims.ExpiresAt == nil {
		return jwt.ErrInvalidToken
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}

	if err := svc.revoked.Revoke(ctx, claims.ID, ttl); err != nil {
		logger.Log.Errorw("failed to revoke token", "jti", claims.ID, "err", err)
		return err
	}

	svc.publish(ctx, models.EventTokenRevoked, claims, "")
	return nil
}

func (svc *AuthService) recordFailure(reason string) {
	if svc.metrics != nil {
		svc.metrics.RecordLoginFailure(reason)
	}
}

// publish sends an audit event. Failures are logged and never returned.
func (svc *AuthService) publish(ctx context.Context, event string, claims *jwt.Claims, client models.TokenClient) {
	if svc.publisher == nil || claims == nil {
		return
	}

	ev := models.TokenEvent{
		Event:   event,
		TokenID: claims.ID,
		Subject: claims.Subject,
		Role:    claims.Role,
		Client:  client,
	}
	if claims.IssuedAt != nil {
		ev.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		ev.ExpiresAt = claims.ExpiresAt.Time
	}

	if err := svc.publisher.Publish(ctx, ev); err != nil {
		logger.Log.Warnw("failed to publish token event", "event", event, "jti", claims.ID, "err", err)
	}
}
