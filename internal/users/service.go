package users

import (
	"context"
	"regexp"
	"strings"

	"github.com/employee-portal/portal/backend/go-services/internal/models"
	"github.com/employee-portal/portal/backend/go-services/pkg/httperr"
)

// usernameRe limits usernames to letters, numbers, underscores and full stops.
var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9._]+$`)

// Service encapsulates credential business logic: validation, registration
// and authentication. Status codes follow the client contract: 403 for an
// unknown username, 401 for a wrong password, 409 for a duplicate, 400 for
// validation failures (with the offending field names).
type Service struct {
	repo     UserRepository
	hashCost int
}

func NewService(r UserRepository, hashCost int) *Service {
	return &Service{repo: r, hashCost: hashCost}
}

// Validate checks the username and password rules shared by registration.
func Validate(username, password string) error {
	if username == "" || !usernameRe.MatchString(strings.TrimSpace(username)) {
		return httperr.BadRequest("Invalid Username. Username can only contain [Letters, Numbers, underscores, full stop]", "username")
	}
	if len(username) < 3 || len(username) > 20 {
		return httperr.BadRequest("Invalid Username. Username length must be in the range [3-20]", "username")
	}
	if password == "" {
		return httperr.BadRequest("Invalid Password", "password")
	}
	if !isStrongPassword(password) {
		return httperr.BadRequest("Weak password. Password must contain [ Capital, Lowercase, Number, Symbol ]", "password")
	}
	return nil
}

// Register validates the pair, rejects duplicates and stores the credential
// with a bcrypt hash.
func (s *Service) Register(ctx context.Context, username, password string) (*models.User, error) {
	if err := Validate(username, password); err != nil {
		return nil, err
	}

	exists, err := s.repo.Exists(ctx, username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, httperr.Conflict("User already exists. Please Login")
	}

	hash, err := HashPassword(password, s.hashCost)
	if err != nil {
		return nil, err
	}

	return s.repo.Create(ctx, &models.User{Username: username, PasswordHash: hash})
}

// Authenticate resolves the username and checks the password.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	u, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, httperr.Forbidden("Invalid Username")
	}

	ok, err := CheckPassword(password, u.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, httperr.Unauthorized("Invalid Password")
	}
	return u, nil
}

// FindByUsername exposes credential lookup for refresh-token verification.
func (s *Service) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.repo.FindByUsername(ctx, username)
}
