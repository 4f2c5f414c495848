package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"log/slog"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"github.com/Tortugo2120/Licorer-a-360/internal/domain"
	"github.com/Tortugo2120/Licorer-a-360/internal/repository"
	"github.com/Tortugo2120/Licorer-a-360/pkg/config"
	"github.com/Tortugo2120/Licorer-a-360/pkg/crypto"
	jwtpkg "github.com/Tortugo2120/Licorer-a-360/pkg/jwt"
)

// Externally observable failures. Token verification keeps distinct internal
// branches for diagnostics but callers only ever see ErrInvalidToken, so the
// response does not reveal which validation step rejected the credential.
var (
	ErrEmailTaken         = errors.New("correo ya registrado")
	ErrInvalidCredentials = errors.New("credenciales inválidas")
	ErrInvalidToken       = errors.New("no se pudo validar las credenciales")
	ErrMissingFields      = errors.New("nombres, apellidos, correo y contrasena son obligatorios")
)

// RegisterInput carries the registration payload.
type RegisterInput struct {
	Nombres    string
	Apellidos  string
	Correo     string
	Contrasena string
	DNI        string
}

// ProfileInput carries mutable profile fields. The stored credential is not
// updatable through this path.
type ProfileInput struct {
	Nombres   string
	Apellidos string
	Correo    string
	DNI       string
}

// Service handles credential verification, token issuance and token-based
// identity resolution.
type Service struct {
	users  repository.UserRepository
	logger *slog.Logger
	cfg    config.APIConfig
}

// New constructs a Service.
func New(users repository.UserRepository, logger *slog.Logger, cfg config.APIConfig) Service {
	return Service{users: users, logger: logger, cfg: cfg}
}

// Register creates an account with a hashed credential. A correo already in
// use yields ErrEmailTaken, whether caught by the pre-check or by the
// storage uniqueness constraint when two registrations race.
func (s Service) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	if strings.TrimSpace(input.Nombres) == "" || strings.TrimSpace(input.Apellidos) == "" ||
		strings.TrimSpace(input.Correo) == "" || input.Contrasena == "" {
		return nil, ErrMissingFields
	}
	if _, err := s.users.GetUserByEmail(ctx, input.Correo); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	hash, err := crypto.HashPassword(input.Contrasena)
	if err != nil {
		return nil, err
	}
	user := &domain.User{
		Nombres:       input.Nombres,
		Apellidos:     input.Apellidos,
		Correo:        input.Correo,
		PasswordHash:  hash,
		DNI:           input.DNI,
		FechaRegistro: time.Now().UTC(),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	s.logger.Info("user registered", "user_id", user.ID)
	return user, nil
}

// Login verifies credentials and mints an access token with the correo as
// subject. Unknown correo and wrong contrasena are indistinguishable.
func (s Service) Login(ctx context.Context, correo, contrasena string) (string, error) {
	user, err := s.users.GetUserByEmail(ctx, correo)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	if err := crypto.ComparePassword(user.PasswordHash, contrasena); err != nil {
		return "", ErrInvalidCredentials
	}
	token, err := jwtpkg.Generate(user.Correo, s.cfg.JWTSecret, s.cfg.AccessTokenTTL)
	if err != nil {
		return "", err
	}
	s.logger.Info("user logged in", "user_id", user.ID)
	return token, nil
}

// ListUsers returns every account.
func (s Service) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.users.ListUsers(ctx)
}

// UpdateProfile replaces profile fields on an existing account. A correo
// already owned by another account yields ErrEmailTaken.
func (s Service) UpdateProfile(ctx context.Context, id int64, input ProfileInput) (*domain.User, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Nombres) != "" {
		user.Nombres = input.Nombres
	}
	if strings.TrimSpace(input.Apellidos) != "" {
		user.Apellidos = input.Apellidos
	}
	if strings.TrimSpace(input.Correo) != "" {
		user.Correo = input.Correo
	}
	if strings.TrimSpace(input.DNI) != "" {
		user.DNI = input.DNI
	}
	if err := s.users.UpdateUserProfile(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return user, nil
}

// Authorize validates a bearer token and resolves it to the account it names.
func (s Service) Authorize(ctx context.Context, token string) (*domain.User, error) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return nil, ErrInvalidToken
	}
	claims, err := jwtpkg.Parse(trimmed, s.cfg.JWTSecret)
	if err != nil {
		switch {
		case errors.Is(err, jwtlib.ErrTokenExpired):
			s.logger.Warn("token rejected", "reason", "expired")
		case errors.Is(err, jwtlib.ErrTokenSignatureInvalid):
			s.logger.Warn("token rejected", "reason", "signature")
		case errors.Is(err, jwtlib.ErrTokenRequiredClaimMissing):
			s.logger.Warn("token rejected", "reason", "missing subject")
		default:
			s.logger.Warn("token rejected", "reason", "malformed", "error", err)
		}
		return nil, ErrInvalidToken
	}
	user, err := s.users.GetUserByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Deleted or renamed account; same external error as a bad token.
			s.logger.Warn("token rejected", "reason", "unknown subject")
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return user, nil
}
