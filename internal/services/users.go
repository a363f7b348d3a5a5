package services

//go:generate mockgen -source=users.go -destination=users_mock.go -package=services

import (
	"context"
	"errors"

	"github.com/abaxoth0/go-pwgen"
	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-auth-manager/internal/logger"
	"github.com/sbilibin2017/gw-auth-manager/internal/models"
	"golang.org/x/crypto/bcrypt"
)

const generatedPasswordLength = 16

// UserWriter defines write operations for users.
type UserWriter interface {
	Create(ctx context.Context, user models.UserDB) error
}

// PasswordStore persists the plaintext passwords handed out to configured users.
type PasswordStore interface {
	Load() (map[string]string, error)
	Save(passwords map[string]string) error
}

// UserSeeder makes sure every configured user exists in the store.
type UserSeeder struct {
	reader    UserReader
	writer    UserWriter
	passwords PasswordStore
	generate  func() (string, error)
}

// NewUserSeeder creates a new UserSeeder instance.
func NewUserSeeder(reader UserReader, writer UserWriter, passwords PasswordStore) *UserSeeder {
	return &UserSeeder{
		reader:    reader,
		writer:    writer,
		passwords: passwords,
		generate: func() (string, error) {
			return pwgen.Generate(generatedPasswordLength, pwgen.LOWER|pwgen.UPPER|pwgen.DIGITS)
		},
	}
}

// Seed creates the missing users. A user takes its password from the
// password store when one is recorded there, otherwise a new one is
// generated and written back. The generated passwords are returned.
func (s *UserSeeder) Seed(ctx context.Context, specs []models.UserSpec) (map[string]string, error) {
	known, err := s.passwords.Load()
	if err != nil {
		logger.Log.Errorw("failed to load passwords", "err", err)
		return nil, err
	}
	if known == nil {
		known = make(map[string]string)
	}

	generated := make(map[string]string)

	for _, spec := range specs {
		user, err := s.reader.GetByUsername(ctx, spec.Username)
		if err != nil {
			logger.Log.Errorw("failed to check user exists", "username", spec.Username, "err", err)
			return nil, err
		}
		if user != nil {
			if user.Role != spec.Role {
				logger.Log.Warnw("configured role differs from stored role",
					"username", spec.Username, "configured", spec.Role, "stored", user.Role)
			}
			continue
		}

		password, ok := known[spec.Username]
		if !ok || password == "" {
			if password, err = s.generate(); err != nil {
				logger.Log.Errorw("failed to generate password", "username", spec.Username, "err", err)
				return nil, err
			}
			generated[spec.Username] = password
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			logger.Log.Errorw("failed to hash password", "username", spec.Username, "err", err)
			return nil, err
		}

		err = s.writer.Create(ctx, models.UserDB{
			UserID:       uuid.New(),
			Username:     spec.Username,
			Role:         spec.Role,
			PasswordHash: string(hashedPassword),
		})
		switch {
		case errors.Is(err, models.ErrUserAlreadyExists):
			// Created concurrently by another instance.
			delete(generated, spec.Username)
			continue
		case err != nil:
			logger.Log.Errorw("failed to save user", "username", spec.Username, "err", err)
			return nil, err
		}

		logger.Log.Infow("user created", "username", spec.Username, "role", spec.Role)
	}

	if len(generated) == 0 {
		return generated, nil
	}

	for name, password := range generated {
		known[name] = password
	}
	if err := s.passwords.Save(known); err != nil {
		logger.Log.Errorw("failed to save passwords", "err", err)
		return nil, err
	}

	return generated, nil
}
