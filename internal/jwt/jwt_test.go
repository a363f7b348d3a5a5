package jwt

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sbilibin2017/gw-auth-manager/internal/models"
)

func TestJWT_GenerateAndValidate(t *testing.T) {
	j := New(WithSecretKey("test-secret"), WithIssuer("gw-auth-manager"), WithAudience("api"))
	ctx := context.Background()

	token, claims, err := j.Generate(ctx, "admin", models.RoleAdmin, time.Minute)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.NotEmpty(t, claims.ID)

	err = j.Validate(ctx, token)
	assert.NoError(t, err)

	parsed, err := j.GetClaims(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "admin", parsed.Subject)
	assert.Equal(t, models.RoleAdmin, parsed.Role)
	assert.Equal(t, claims.ID, parsed.ID)
	assert.Equal(t, "gw-auth-manager", parsed.Issuer)
	assert.Equal(t, []string{"api"}, []string(parsed.Audience))
	assert.WithinDuration(t, time.Now().Add(time.Minute), parsed.ExpiresAt.Time, 2*time.Second)
}

func TestJWT_UniqueTokenIDs(t *testing.T) {
	j := New(WithSecretKey("test-secret"))
	ctx := context.Background()

	_, c1, err := j.Generate(ctx, "admin", models.RoleAdmin, time.Minute)
	require.NoError(t, err)
	_, c2, err := j.Generate(ctx, "admin", models.RoleAdmin, time.Minute)
	require.NoError(t, err)

	assert.NotEqual(t, c1.ID, c2.ID)
}

func TestJWT_ExpiredToken(t *testing.T) {
	j := New(WithSecretKey("test-secret"))
	ctx := context.Background()

	token, _, err := j.Generate(ctx, "admin", models.RoleAdmin, -time.Minute)
	require.NoError(t, err)

	err = j.Validate(ctx, token)
	assert.Error(t, err)

	claims, err := j.GetClaims(ctx, token)
	assert.Error(t, err)
	assert.Nil(t, claims)
}

func TestJWT_InvalidToken(t *testing.T) {
	j := New(WithSecretKey("secret"))
	ctx := context.Background()

	err := j.Validate(ctx, "invalid.token.string")
	assert.Error(t, err)

	claims, err := j.GetClaims(ctx, "invalid.token.string")
	assert.Error(t, err)
	assert.Nil(t, claims)
}

func TestJWT_Validate_WrongSecret(t *testing.T) {
	j1 := New(WithSecretKey("secret1"))
	j2 := New(WithSecretKey("secret2"))
	ctx := context.Background()

	token, _, err := j1.Generate(ctx, "admin", models.RoleAdmin, time.Minute)
	require.NoError(t, err)

	assert.Error(t, j2.Validate(ctx, token))
}

func TestJWT_Validate_WrongAudienceOrIssuer(t *testing.T) {
	ctx := context.Background()
	signer := New(WithSecretKey("s"), WithIssuer("a"), WithAudience("x"))

	token, _, err := signer.Generate(ctx, "admin", models.RoleAdmin, time.Minute)
	require.NoError(t, err)

	assert.Error(t, New(WithSecretKey("s"), WithIssuer("a"), WithAudience("y")).Validate(ctx, token))
	assert.Error(t, New(WithSecretKey("s"), WithIssuer("b"), WithAudience("x")).Validate(ctx, token))
	assert.NoError(t, New(WithSecretKey("s"), WithIssuer("a"), WithAudience("x")).Validate(ctx, token))
}

func TestJWT_GetTokenFromRequest(t *testing.T) {
	j := New()
	ctx := context.Background()

	tests := []struct {
		name          string
		header        string
		expectedToken string
		expectedErr   error
	}{
		{"ValidBearer", "Bearer mytoken123", "mytoken123", nil},
		{"LowercaseBearer", "bearer mytoken123", "mytoken123", nil},
		{"NoHeader", "", "", ErrMissingAuthHeader},
		{"InvalidFormat", "Token mytoken123", "", ErrInvalidAuthHeader},
		{"TooManyParts", "Bearer a b c", "", ErrInvalidAuthHeader},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequestWithContext(ctx, http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			token, err := j.GetTokenFromRequest(ctx, req)
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Empty(t, token)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedToken, token)
			}
		})
	}
}
