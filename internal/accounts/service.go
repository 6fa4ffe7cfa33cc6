// Package accounts implements login, registration and the active-user directory.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jimdaga/gestor/internal/apperr"
	"github.com/jimdaga/gestor/internal/models"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const invalidCredentials = "Credenciales inválidas"

// LoginInput is the body of POST /auth/login
type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterInput is the body of POST /auth/register
type RegisterInput struct {
	Email    string  `json:"email" binding:"required,email,max=150"`
	Password string  `json:"password" binding:"required,min=8"`
	Role     string  `json:"rol" binding:"required,oneof=PM Colaborador Stakeholder"`
	Name     *string `json:"nombre" binding:"omitempty,max=150"`
}

// UserSummary is one entry of the user directory
type UserSummary struct {
	ID    uint   `json:"id_usuario"`
	Email string `json:"email"`
	Role  string `json:"rol"`
	Name  string `json:"nombre"`
}

// Service holds the accounts use cases
type Service struct {
	repo      Repository
	cost      int
	dummyHash []byte
}

// NewService creates a Service hashing passwords with bcrypt.DefaultCost
func NewService(repo Repository) (*Service, error) {
	return newService(repo, bcrypt.DefaultCost)
}

func newService(repo Repository, cost int) (*Service, error) {
	// Compared against when the account is missing so both failure paths cost the same
	dummy, err := bcrypt.GenerateFromPassword([]byte("gestor-dummy-password"), cost)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare dummy hash: %w", err)
	}
	return &Service{repo: repo, cost: cost, dummyHash: dummy}, nil
}

// Login returns the active user owning email if password matches its hash.
// Unknown, inactive and wrong-password attempts fail with the same error.
func (s *Service) Login(ctx context.Context, in LoginInput) (*models.User, error) {
	user, err := s.repo.FindActiveByEmail(ctx, strings.TrimSpace(in.Email))
	if err != nil {
		if !errors.Is(err, apperr.ErrNotFound) {
			return nil, err
		}
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(in.Password))
		return nil, apperr.Unauthorized(invalidCredentials)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, apperr.Unauthorized(invalidCredentials)
	}
	return user, nil
}

// Register creates an active account. Duplicate emails fail with Conflict
// whether or not the existing account is active.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	email := strings.TrimSpace(in.Email)
	exists, err := s.repo.EmailExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.Conflict("El correo ya está registrado")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: string(hash),
		Role:         in.Role,
		Active:       true,
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) != "" {
		name := strings.TrimSpace(*in.Name)
		user.Name = &name
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, user.ID)
}

// ListActive returns every active user with a display name filled in
func (s *Service) ListActive(ctx context.Context) ([]UserSummary, error) {
	users, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]UserSummary, 0, len(users))
	for _, u := range users {
		name := ""
		if u.Name != nil {
			name = strings.TrimSpace(*u.Name)
		}
		if name == "" {
			name = DisplayName(u.Email)
		}
		out = append(out, UserSummary{ID: u.ID, Email: u.Email, Role: u.Role, Name: name})
	}
	return out, nil
}

// IsActive reports whether id refers to an active user
func (s *Service) IsActive(ctx context.Context, id uint) (bool, error) {
	return s.repo.IsActive(ctx, id)
}

// DisplayName derives a friendly name from the local part of an email:
// "ana.maria_lopez@x.com" becomes "Ana Maria Lopez". Falls back to the
// raw email when nothing is left.
func DisplayName(email string) string {
	base := email
	if i := strings.Index(email, "@"); i >= 0 {
		base = email[:i]
	}
	base = strings.NewReplacer(".", " ", "_", " ").Replace(base)

	words := strings.Fields(base)
	if len(words) == 0 {
		return email
	}
	for i, w := range words {
		words[i] = capitalize(w)
	}
	return strings.Join(words, " ")
}

// capitalize upper-cases the first rune of w and lower-cases the rest, so
// "john-DOE" becomes "John-doe". Casers are stateful and not shared.
func capitalize(w string) string {
	_, size := utf8.DecodeRuneInString(w)
	return cases.Upper(language.Und).String(w[:size]) + cases.Lower(language.Und).String(w[size:])
}
