package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"

	"github.com/sbilibin2017/gw-auth-manager/internal/jwt"
	"github.com/sbilibin2017/gw-auth-manager/internal/models"
	"github.com/sbilibin2017/gw-auth-manager/internal/services"
)

var testTTL = services.TokenTTL{API: 24 * time.Hour, CLI: time.Hour}

func testClaims(subject string, role models.Role, ttl time.Duration) *jwt.Claims {
	now := time.Now()
	return &jwt.Claims{
		Role: role,
		RegisteredClaims: gojwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			IssuedAt:  gojwt.NewNumericDate(now),
			ExpiresAt: gojwt.NewNumericDate(now.Add(ttl)),
		},
	}
}

func TestAuthService_CreateToken(t *testing.T) {
	password := "secret"
	hashed, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	admin := &models.UserDB{UserID: uuid.New(), Username: "admin", Role: models.RoleAdmin, PasswordHash: string(hashed)}

	longPassword := strings.Repeat("a", 72)
	longHashed, _ := bcrypt.GenerateFromPassword([]byte(longPassword), bcrypt.MinCost)
	longUser := &models.UserDB{UserID: uuid.New(), Username: "long", Role: models.RoleUser, PasswordHash: string(longHashed)}

	tests := []struct {
		name        string
		username    string
		password    string
		client      models.TokenClient
		setup       func(r *services.MockUserReader, g *services.MockTokenGenerator, p *services.MockEventPublisher, m *services.MockMetricsRecorder)
		wantToken   string
		wantErr     error
		wantErrText string
	}{
		{
			name:     "api token",
			username: "admin",
			password: password,
			client:   models.ClientAPI,
			setup: func(r *services.MockUserReader, g *services.MockTokenGenerator, p *services.MockEventPublisher, m *services.MockMetricsRecorder) {
				claims := testClaims("admin", models.RoleAdmin, testTTL.API)
				r.EXPECT().GetByUsername(gomock.Any(), "admin").Return(admin, nil)
				g.EXPECT().Generate(gomock.Any(), "admin", models.RoleAdmin, testTTL.API).Return("api-token", claims, nil)
				m.EXPECT().RecordTokenIssued("api")
				p.EXPECT().Publish(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, ev models.TokenEvent) error {
					assert.Equal(t, models.EventTokenIssued, ev.Event)
					assert.Equal(t, claims.ID, ev.TokenID)
					assert.Equal(t, "admin", ev.Subject)
					assert.Equal(t, models.ClientAPI, ev.Client)
					return nil
				})
			},
			wantToken: "api-token",
		},
		{
			name:     "cli token uses cli expiration",
			username: "admin",
			password: password,
			client:   models.ClientCLI,
			setup: func(r *services.MockUserReader, g *services.MockTokenGenerator, p *services.MockEventPublisher, m *services.MockMetricsRecorder) {
				r.EXPECT().GetByUsername(gomock.Any(), "admin").Return(admin, nil)
				g.EXPECT().Generate(gomock.Any(), "admin", models.RoleAdmin, testTTL.CLI).
					Return("cli-token", testClaims("admin", models.RoleAdmin, testTTL.CLI), nil)
				m.EXPECT().RecordTokenIssued("cli")
				p.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)
			},
			wantToken: "cli-token",
		},
		{
			name:     "publish failure does not fail issuance",
			username: "admin",
			password: password,
			client:   models.ClientAPI,
			setup: func(r *services.MockUserReader, g *services.MockTokenGenerator, p *services.MockEventPublisher, m *services.MockMetricsRecorder) {
				r.EXPECT().GetByUsername(gomock.Any(), "admin").Return(admin, nil)
				g.EXPECT().Generate(gomock.Any(), "admin", models.RoleAdmin, testTTL.API).
					Return("api-token", testClaims("admin", models.RoleAdmin, testTTL.API), nil)
				m.EXPECT().RecordTokenIssued("api")
				p.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(errors.New("broker down"))
			},
			wantToken: "api-token",
		},
		{
			name:     "empty username",
			username: "",
			password: password,
			client:   models.ClientAPI,
			setup: func(r *services.MockUserReader, g *services.MockTokenGenerator, p *services.MockEventPublisher, m *services.MockMetricsRecorder) {
				m.EXPECT().RecordLoginFailure(services.FailureMissingCredentials)
			},
			wantErr: services.ErrCredentialsRequired,
		},
		{
			name:     "empty password",
			username: "admin",
			password: "",
			client:   models.ClientCLI,
			setup: func(r *services.MockUserReader, g *services.MockTokenGenerator, p *services.MockEventPublisher, m *services.MockMetricsRecorder) {
				m.EXPECT().RecordLoginFailure(services.FailureMissingCredentials)
			},
			wantErr: services.ErrCredentialsRequired,
		},
		{
			name:     "unknown user",
			username: "bob",
			password: password,
			client:   models.ClientAPI,
			setup: func(r *services.MockUserReader, g *services.MockTokenGenerator, p *services.MockEventPublisher, m *services.MockMetricsRecorder) {
				r.EXPECT().GetByUsername(gomock.Any(), "bob").Return(nil, nil)
				m.EXPECT().RecordLoginFailure(services.FailureUnknownUser)
			},
			wantErr: services.ErrInvalidCredentials,
		},
		{
			name:     "wrong password",
			username: "admin",
			password: "wrong",
			client:   models.ClientAPI,
			setup: func(r *services.MockUserReader, g *services.MockTokenGenerator, p *services.MockEventPublisher, m *services.MockMetricsRecorder) {
				r.EXPECT().GetByUsername(gomock.Any(), "admin").Return(admin, nil)
				m.EXPECT().RecordLoginFailure(services.FailureBadPassword)
			},
			wantErr: services.ErrInvalidCredentials,
		},
		{
			name:     "password longer than bcrypt input with matching prefix",
			username: "long",
			password: longPassword + "WRONG-SUFFIX",
			client:   models.ClientAPI,
			setup: func(r *services.MockUserReader, g *services.MockTokenGenerator, p *services.MockEventPublisher, m *services.MockMetricsRecorder) {
				r.EXPECT().GetByUsername(gomock.Any(), "long").Return(longUser, nil)
				m.EXPECT().RecordLoginFailure(services.FailureBadPassword)
			},
			wantErr: services.ErrInvalidCredentials,
		},
		{
			name:     "password of exactly bcrypt input size",
			username: "long",
			password: longPassword,
			client:   models.ClientCLI,
			setup: func(r *services.MockUserReader, g *services.MockTokenGenerator, p *services.MockEventPublisher, m *services.MockMetricsRecorder) {
				claims := testClaims("long", models.RoleUser, testTTL.CLI)
				r.EXPECT().GetByUsername(gomock.Any(), "long").Return(longUser, nil)
				g.EXPECT().Generate(gomock.Any(), "long", models.RoleUser, testTTL.CLI).Return("long-token", claims, nil)
				m.EXPECT().RecordTokenIssued("cli")
				p.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)
			},
			wantToken: "long-token",
		},
		{
			name:     "username with NUL is unknown without lookup",
			username: "a\x00b",
			password: password,
			client:   models.ClientAPI,
			setup: func(r *services.MockUserReader, g *services.MockTokenGenerator, p *services.MockEventPublisher, m *services.MockMetricsRecorder) {
				m.EXPECT().RecordLoginFailure(services.FailureUnknownUser)
			},
			wantErr: services.ErrInvalidCredentials,
		},
		{
			name:     "reader error",
			username: "admin",
			password: password,
			client:   models.ClientAPI,
			setup: func(r *services.MockUserReader, g *services.MockTokenGenerator, p *services.MockEventPublisher, m *services.MockMetricsRecorder) {
				r.EXPECT().GetByUsername(gomock.Any(), "admin").Return(nil, errors.New("db error"))
			},
			wantErrText: "db error",
		},
		{
			name:     "JWT generation error",
			username: "admin",
			password: password,
			client:   models.ClientAPI,
			setup: func(r *services.MockUserReader, g *services.MockTokenGenerator, p *services.MockEventPublisher, m *services.MockMetricsRecorder) {
				r.EXPECT().GetByUsername(gomock.Any(), "admin").Return(admin, nil)
				g.EXPECT().Generate(gomock.Any(), "admin", models.RoleAdmin, testTTL.API).Return("", nil, errors.New("jwt error"))
			},
			wantErrText: "jwt error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			reader := services.NewMockUserReader(ctrl)
			generator := services.NewMockTokenGenerator(ctrl)
			revoked := services.NewMockRevokedTokenWriter(ctrl)
			publisher := services.NewMockEventPublisher(ctrl)
			metrics := services.NewMockMetricsRecorder(ctrl)
			tt.setup(reader, generator, publisher, metrics)

			svc := services.NewAuthService(reader, generator, revoked, publisher, metrics, testTTL)

			token, err := svc.CreateToken(context.Background(), tt.username, tt.password, tt.client)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, token)
			case tt.wantErrText != "":
				assert.EqualError(t, err, tt.wantErrText)
				assert.Empty(t, token)
			default:
				assert.NoError(t, err)
				assert.Equal(t, tt.wantToken, token)
			}
		})
	}
}

func TestAuthService_CreateToken_NilCollaborators(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	hashed, _ := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	reader := services.NewMockUserReader(ctrl)
	generator := services.NewMockTokenGenerator(ctrl)

	reader.EXPECT().GetByUsername(gomock.Any(), "viewer").
		Return(&models.UserDB{Username: "viewer", Role: models.RoleViewer, PasswordHash: string(hashed)}, nil)
	generator.EXPECT().Generate(gomock.Any(), "viewer", models.RoleViewer, testTTL.API).
		Return("tok", testClaims("viewer", models.RoleViewer, testTTL.API), nil)

	svc := services.NewAuthService(reader, generator, nil, nil, nil, testTTL)
	token, err := svc.CreateToken(context.Background(), "viewer", "pw", models.ClientAPI)
	assert.NoError(t, err)
	assert.Equal(t, "tok", token)
}

func TestAuthService_Revoke(t *testing.T) {
	t.Run("stores jti for remaining lifetime", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		revoked := services.NewMockRevokedTokenWriter(ctrl)
		publisher := services.NewMockEventPublisher(ctrl)
		claims := testClaims("admin", models.RoleAdmin, time.Hour)

		revoked.EXPECT().Revoke(gomock.Any(), claims.ID, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, ttl time.Duration) error {
				assert.InDelta(t, time.Hour.Seconds(), ttl.Seconds(), 5)
				return nil
			})
		publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, ev models.TokenEvent) error {
			assert.Equal(t, models.EventTokenRevoked, ev.Event)
			assert.Equal(t, claims.ID, ev.TokenID)
			return nil
		})

		svc := services.NewAuthService(nil, nil, revoked, publisher, nil, testTTL)
		assert.NoError(t, svc.Revoke(context.Background(), claims))
	})

	t.Run("expired token is a no-op", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		revoked := services.NewMockRevokedTokenWriter(ctrl)
		svc := services.NewAuthService(nil, nil, revoked, nil, nil, testTTL)
		assert.NoError(t, svc.Revoke(context.Background(), testClaims("admin", models.RoleAdmin, -time.Minute)))
	})

	t.Run("store error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		revoked := services.NewMockRevokedTokenWriter(ctrl)
		revoked.EXPECT().Revoke(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("redis down"))

		svc := services.NewAuthService(nil, nil, revoked, nil, nil, testTTL)
		assert.EqualError(t, svc.Revoke(context.Background(), testClaims("admin", models.RoleAdmin, time.Hour)), "redis down")
	})

	t.Run("nil claims", func(t *testing.T) {
		svc := services.NewAuthService(nil, nil, nil, nil, nil, testTTL)
		assert.ErrorIs(t, svc.Revoke(context.Background(), nil), jwt.ErrInvalidToken)
	})
}
