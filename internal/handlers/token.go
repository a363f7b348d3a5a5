package handlers

//go:generate mockgen -source=token.go -destination=token_mock.go -package=handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/sbilibin2017/gw-auth-manager/internal/logger"
	"github.com/sbilibin2017/gw-auth-manager/internal/models"
	"github.com/sbilibin2017/gw-auth-manager/internal/response"
	"github.com/sbilibin2017/gw-auth-manager/internal/services"
)

// TokenCreator defines the interface that the token service must implement.
type TokenCreator interface {
	CreateToken(ctx context.Context, username, password string, client models.TokenClient) (string, error)
}

// NewCreateTokenHandler returns an HTTP handler issuing tokens for the given client flavour.
// @Summary Create Token
// @Description Authenticate the user.
// @Tags SimpleAuthManagerLogin
// @Accept json
// @Produce json
// @Param body body models.LoginBody true "Credentials"
// @Success 201 {object} models.LoginResponse "Successful Response"
// @Failure 400 {object} models.HTTPExceptionResponse "Bad Request"
// @Failure 401 {object} models.HTTPExceptionResponse "Unauthorized"
// @Failure 422 {object} models.HTTPValidationError "Validation Error"
// @Router /auth/token [post]
// @Router /auth/token/cli [post]
func NewCreateTokenHandler(svc TokenCreator, client models.TokenClient) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, verrs := decodeLoginBody(r)
		if len(verrs) > 0 {
			response.JSON(w, http.StatusUnprocessableEntity, models.HTTPValidationError{Detail: verrs})
			return
		}

		token, err := svc.CreateToken(r.Context(), body.Username, body.Password, client)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrCredentialsRequired):
				response.HTTPException(w, http.StatusBadRequest, response.DetailCredentialsRequired)
			case errors.Is(err, services.ErrInvalidCredentials):
				response.HTTPException(w, http.StatusUnauthorized, response.DetailInvalidCredentials)
			default:
				logger.Log.Errorw("internal server error", "client", client, "err", err)
				response.HTTPException(w, http.StatusInternalServerError, response.DetailInternalError)
			}
			return
		}

		response.JSON(w, http.StatusCreated, models.LoginResponse{AccessToken: token})
	}
}
