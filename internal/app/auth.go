package app

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog/log"

	"hotel_booking/internal/domain"
)

type SignInInput struct {
	Email    string `json:"email" validate:"required,loose_email"`
	Password string `json:"password" validate:"required,min=6"`
}

type SignUpInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,loose_email"`
	Password string `json:"password" validate:"required,min=6"`
}

type PasswordResetInput struct {
	Email string `json:"email" validate:"required,loose_email"`
}

// AuthService validates credentials input locally before calling the provider.
type AuthService struct {
	provider domain.SessionProvider
	store    domain.DocumentStore
}

func NewAuthService(p domain.SessionProvider, store domain.DocumentStore) *AuthService {
	return &AuthService{provider: p, store: store}
}

func (s *AuthService) SignIn(ctx context.Context, in SignInInput) (domain.SessionUser, error) {
	in.Email = strings.TrimSpace(in.Email)
	if err := check(in, messages{
		required: "Please enter both email and password",
		email:    "Please enter a valid email address",
		password: "Password must be at least 6 characters",
	}); err != nil {
		return domain.SessionUser{}, err
	}
	return s.provider.SignIn(ctx, in.Email, in.Password)
}

// SignUp creates the account, then stores the public user document.
// A failed user-document write does not undo the account.
func (s *AuthService) SignUp(ctx context.Context, in SignUpInput) (domain.SessionUser, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if err := check(in, messages{
		required: "All fields are required",
		email:    "Enter a valid email",
		password: "Password should be at least 6 characters",
	}); err != nil {
		return domain.SessionUser{}, err
	}
	u, err := s.provider.SignUp(ctx, in.Email, in.Password, in.Name)
	if err != nil {
		return domain.SessionUser{}, err
	}
	if _, err := s.store.Insert(ctx, domain.UsersCollection, u.ToDocument()); err != nil {
		log.Error().Err(err).Str("uid", u.ID).Msg("user document write failed")
	}
	return u, nil
}

func (s *AuthService) SendPasswordReset(ctx context.Context, in PasswordResetInput) error {
	in.Email = strings.TrimSpace(in.Email)
	if err := check(in, messages{
		required: "Please enter your email",
		email:    "Enter a valid email address",
	}); err != nil {
		return err
	}
	return s.provider.SendPasswordReset(ctx, in.Email)
}

func (s *AuthService) SignOut(ctx context.Context) error {
	return errors.Wrap(s.provider.SignOut(ctx), "sign out")
}
