package user

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"bazaar-be/internal/apperr"
	"bazaar-be/internal/auth"
	"bazaar-be/internal/logger"
	"bazaar-be/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TokenIssuer interface {
	Issue(id auth.Identity) (string, error)
}

type Service interface {
	Register(ctx context.Context, in RegisterInput) (string, *User, error)
	Login(ctx context.Context, email, password string) (string, *User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, in UpdateProfileInput) (*User, error)
}

type service struct {
	repo   Repository
	tokens TokenIssuer
	now    func() time.Time
}

func NewService(repo Repository, tokens TokenIssuer) Service {
	return &service{repo: repo, tokens: tokens, now: time.Now}
}

func (s *service) Register(ctx context.Context, in RegisterInput) (string, *User, error) {
	log := logger.FromCtx(ctx).With(zap.String("layer", "service"), zap.String("method", "Register"))

	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Address = strings.TrimSpace(in.Address)
	if in.Role == "" {
		in.Role = RoleVendor
	}

	if err := validateRegister(in); err != nil {
		return "", nil, err
	}

	hashed, err := HashPassword(in.Password)
	if err != nil {
		log.Error("failed to hash password", zap.Error(err))
		return "", nil, apperr.Internal(err)
	}

	now := s.now().UTC()
	u := &User{
		ID:        uuid.New(),
		Name:      in.Name,
		Email:     in.Email,
		Password:  hashed,
		Role:      in.Role,
		Phone:     in.Phone,
		Address:   in.Address,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, ErrEmailExists) {
			return "", nil, ErrEmailExists
		}
		return "", nil, apperr.Internal(err)
	}

	token, err := s.issue(u)
	if err != nil {
		log.Error("failed to generate jwt", zap.String("user_id", u.ID.String()), zap.Error(err))
		return "", nil, apperr.Internal(err)
	}

	log.Info("user registered", zap.String("user_id", u.ID.String()), zap.String("role", string(u.Role)))
	return token, u, nil
}

func (s *service) Login(ctx context.Context, email, password string) (string, *User, error) {
	log := logger.FromCtx(ctx).With(zap.String("layer", "service"), zap.String("method", "Login"))

	email = normalizeEmail(email)
	if email == "" || password == "" {
		return "", nil, ErrCredentialsRequired
	}

	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, apperr.Internal(err)
	}

	if !u.IsActive {
		log.Info("login attempt on deactivated account", zap.String("user_id", u.ID.String()))
		return "", nil, ErrAccountDeactivated
	}

	if !CheckPasswordHash(password, u.Password) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.issue(u)
	if err != nil {
		log.Error("failed to generate jwt", zap.String("user_id", u.ID.String()), zap.Error(err))
		return "", nil, apperr.Internal(err)
	}

	log.Info("user logged in", zap.String("user_id", u.ID.String()))
	return token, u, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, apperr.Internal(err)
	}
	return u, nil
}

func (s *service) UpdateProfile(ctx context.Context, id uuid.UUID, in UpdateProfileInput) (*User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Address = strings.TrimSpace(in.Address)

	if in.Name == "" {
		return nil, ErrNameRequired
	}
	if err := validateContact(in.Name, in.Phone, in.Address); err != nil {
		return nil, err
	}

	u, err := s.repo.UpdateProfile(ctx, id, in)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, apperr.Internal(err)
	}
	return u, nil
}

func (s *service) issue(u *User) (string, error) {
	return s.tokens.Issue(auth.Identity{UserID: u.ID, Email: u.Email, Name: u.Name, Role: string(u.Role)})
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateRegister(in RegisterInput) error {
	if in.Name == "" {
		return ErrNameRequired
	}
	if addr, err := mail.ParseAddress(in.Email); err != nil || addr.Address != in.Email || !strings.Contains(in.Email, ".") {
		return ErrInvalidEmail
	}
	if len(in.Password) < MinPasswordLen {
		return ErrPasswordTooShort
	}
	if !in.Role.Valid() {
		return ErrInvalidRole
	}
	return validateContact(in.Name, in.Phone, in.Address)
}

func validateContact(name, phone, address string) error {
	switch {
	case utils.TooLong(name, MaxNameLength):
		return apperr.Validation("name cannot exceed 100 characters")
	case utils.TooLong(phone, MaxPhoneLength):
		return apperr.Validation("phone cannot exceed 15 characters")
	case utils.TooLong(address, MaxAddressLength):
		return apperr.Validation("address cannot exceed 500 characters")
	}
	return nil
}
