package identity

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/docease/docease/internal/platform/auth"
	"github.com/docease/docease/pkg/apperror"
)

type Service struct {
	users Repository
}

func NewService(users Repository) *Service {
	return &Service{users: users}
}

// RegisterInput carries the validated fields for a new registration.
type RegisterInput struct {
	Name        string
	Email       string
	Password    string
	Phone       string
	Role        string
	DateOfBirth *time.Time
	Gender      *string
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	if in.Name == "" {
		return nil, apperror.Validation("name is required")
	}
	if in.Email == "" || !strings.Contains(in.Email, "@") {
		return nil, apperror.Validation("a valid email is required")
	}
	if len(in.Password) < 6 {
		return nil, apperror.Validation("password must be at least 6 characters")
	}
	if in.Phone == "" {
		return nil, apperror.Validation("phone is required")
	}
	if in.Role == "" {
		in.Role = RolePatient
	}
	if !ValidRole(in.Role) {
		return nil, apperror.Validation("role must be patient or doctor")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, apperror.Internal("hash password", err)
	}

	u := &User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         in.Role,
		Phone:        in.Phone,
		DateOfBirth:  in.DateOfBirth,
		Gender:       in.Gender,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login verifies credentials. A missing user and a wrong password produce the
// same error so callers cannot probe which addresses are registered.
func (s *Service) Login(ctx context.Context, email, password string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if apperror.IsKind(err, apperror.KindNotFound) {
			return nil, apperror.Validation("invalid credentials")
		}
		return nil, err
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return nil, apperror.Validation("invalid credentials")
	}
	return u, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.users.GetByID(ctx, id)
}
