package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"alertline/internal/config"
	"alertline/internal/domain"
	"alertline/pkg/e"
)

// UserStore is the account persistence surface.
type UserStore interface {
	Create(ctx context.Context, user *domain.User) error
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

type FacilityCreator interface {
	Create(ctx context.Context, facility *domain.Facility) error
}

type CacheInvalidator interface {
	Invalidate(ctx context.Context, kind domain.FacilityKind) error
}

type authService struct {
	users      UserStore
	facilities FacilityCreator
	cache      CacheInvalidator
	logger     *slog.Logger
	cfg        config.AuthConfig
}

func NewAuthService(
	users UserStore,
	facilities FacilityCreator,
	cache CacheInvalidator,
	logger *slog.Logger,
	cfg config.AuthConfig,
) AuthService {
	return &authService{
		users:      users,
		facilities: facilities,
		cache:      cache,
		logger:     logger,
		cfg:        cfg,
	}
}

func (s *authService) Register(ctx context.Context, req domain.RegisterRequest) (uuid.UUID, error) {
	const op = "service.Auth.Register"

	user, err := s.createUser(ctx, op, req.Username, req.Password, domain.RoleUser)
	if err != nil {
		return uuid.Nil, err
	}
	return user.ID, nil
}

// RegisterFacility creates the account and its facility record. The secret
// code gate is what keeps citizens from self-registering as responders.
func (s *authService) RegisterFacility(ctx context.Context, kind domain.FacilityKind, req domain.RegisterFacilityRequest) (uuid.UUID, error) {
	const op = "service.Auth.RegisterFacility"

	var role domain.Role
	var secret string
	switch kind {
	case domain.FacilityPolice:
		role, secret = domain.RolePolice, s.cfg.PoliceSecretCode
	case domain.FacilityHospital:
		role, secret = domain.RoleHospital, s.cfg.HospitalSecretCode
	default:
		return uuid.Nil, fmt.Errorf("%s: kind %q: %w", op, kind, e.ErrInvalidInput)
	}

	if req.SecretCode != secret {
		s.logger.Warn("facility registration with bad secret code",
			slog.String("op", op),
			slog.String("kind", string(kind)),
			slog.String("username", req.Username),
		)
		return uuid.Nil, fmt.Errorf("%s: %w", op, e.ErrUnauthorized)
	}

	user, err := s.createUser(ctx, op, req.Username, req.Password, role)
	if err != nil {
		return uuid.Nil, err
	}

	facility := &domain.Facility{
		UserID: user.ID,
		Kind:   kind,
		Name:   req.Name,
		Lat:    req.Lat,
		Lng:    req.Lng,
		Phone:  req.Phone,
	}
	if err := s.facilities.Create(ctx, facility); err != nil {
		return uuid.Nil, e.Wrap(op, err)
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, kind); err != nil {
			s.logger.Warn("facility cache invalidate failed", slog.Any("error", err))
		}
	}

	s.logger.Info("facility registered",
		slog.String("kind", string(kind)),
		slog.String("name", facility.Name),
	)

	return facility.ID, nil
}

func (s *authService) Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error) {
	const op = "service.Auth.Login"

	user, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return domain.LoginResponse{}, fmt.Errorf("%s: %w", op, e.ErrInvalidCredentials)
		}
		return domain.LoginResponse{}, e.Wrap(op, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return domain.LoginResponse{}, fmt.Errorf("%s: %w", op, e.ErrInvalidCredentials)
	}

	token, err := s.issueToken(user)
	if err != nil {
		return domain.LoginResponse{}, e.Wrap(op, err)
	}

	return domain.LoginResponse{Token: token, Role: user.Role}, nil
}

func (s *authService) createUser(ctx context.Context, op, username, password string, role domain.Role) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, e.ErrUniqueViolation) {
			return nil, fmt.Errorf("%s: username taken: %w", op, e.ErrConflict)
		}
		return nil, e.Wrap(op, err)
	}

	return user, nil
}

func (s *authService) issueToken(user *domain.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      user.ID.String(),
		"username": user.Username,
		"role":     string(user.Role),
		"iat":      now.Unix(),
		"exp":      now.Add(s.cfg.TokenTTL).Unix(),
	})
	return token.SignedString([]byte(s.cfg.JWTSecret))
}
