package service

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"devconnector/internal/auth"
	"devconnector/internal/models"
	"devconnector/internal/observability"
	"devconnector/internal/repository"
	"devconnector/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// TokenIssuer signs tokens for authenticated users.
type TokenIssuer interface {
	Issue(user *models.User) (string, error)
}

// TokenRevoker records logged-out tokens until they expire.
type TokenRevoker interface {
	Enabled() bool
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
}

type UserService struct {
	users    repository.UserRepository
	tokens   TokenIssuer
	revoker  TokenRevoker
	hashCost int
}

type RegisterInput struct {
	Name      string `json:"name" form:"name"`
	Email     string `json:"email" form:"email"`
	Password  string `json:"password" form:"password"`
	Password2 string `json:"password2" form:"password2"`
}

type LoginInput struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// LoginResult is returned on successful login. Token already carries the
// "Bearer " prefix.
type LoginResult struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
}

func NewUserService(users repository.UserRepository, tokens TokenIssuer, revoker TokenRevoker) *UserService {
	return &UserService{
		users:    users,
		tokens:   tokens,
		revoker:  revoker,
		hashCost: bcrypt.DefaultCost,
	}
}

// WithHashCost overrides the bcrypt cost; tests use bcrypt.MinCost.
func (s *UserService) WithHashCost(cost int) *UserService {
	s.hashCost = cost
	return s
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// GravatarURL returns the avatar URL for email: 200px, pg rated, mystery-man fallback.
func GravatarURL(email string) string {
	sum := md5.Sum([]byte(normalizeEmail(email)))
	return fmt.Sprintf("//www.gravatar.com/avatar/%s?s=200&r=pg&d=mm", hex.EncodeToString(sum[:]))
}

func (in RegisterInput) validate() error {
	const (
		minNameLen     = 2
		maxNameLen     = 30
		minPasswordLen = 6
		maxPasswordLen = 30
	)

	var f validation.Fields
	f.Required("name", in.Name, "Name field is required")
	f.Length("name", in.Name, minNameLen, maxNameLen, "Name must be between 2 and 30 characters")
	f.Required("email", in.Email, "Email field is required")
	f.Email("email", strings.TrimSpace(in.Email), "Email is invalid")
	f.Required("password", in.Password, "Password field is required")
	f.Length("password", in.Password, minPasswordLen, maxPasswordLen, "Password must be at least 6 characters")
	f.Required("password2", in.Password2, "Confirm Password field is required")
	if !f.Has("password2") {
		f.Check(in.Password == in.Password2, "password2", "Passwords must match")
	}
	return f.Err()
}

func (in LoginInput) validate() error {
	var f validation.Fields
	f.Required("email", in.Email, "Email field is required")
	f.Email("email", strings.TrimSpace(in.Email), "Email is invalid")
	f.Required("password", in.Password, "Password field is required")
	return f.Err()
}

// Register creates an account with a bcrypt password hash and a Gravatar avatar.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if err := in.validate(); err != nil {
		observability.RecordAuthEvent("register", "invalid")
		return nil, err
	}

	email := normalizeEmail(in.Email)
	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		observability.RecordAuthEvent("register", "conflict")
		return nil, models.NewConflictError("email", "Email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Name:     strings.TrimSpace(in.Name),
		Email:    email,
		Password: string(hash),
		Avatar:   GravatarURL(email),
	}
	// A concurrent registration can still win the race; the unique index
	// turns that into the same conflict.
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	observability.RecordAuthEvent("register", "success")
	return user, nil
}

// Login checks credentials and issues a bearer token.
func (s *UserService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	if err := in.validate(); err != nil {
		observability.RecordAuthEvent("login", "invalid")
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, normalizeEmail(in.Email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		observability.RecordAuthEvent("login", "unknown_email")
		return nil, models.NewFieldNotFoundError("email", "User not found")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		observability.RecordAuthEvent("login", "bad_password")
		return nil, models.NewInvalidCredentialsError("password", "Password incorrect")
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	observability.RecordAuthEvent("login", "success")
	return &LoginResult{Success: true, Token: auth.BearerPrefix + token}, nil
}

// Current returns the account behind an authenticated request.
func (s *UserService) Current(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if models.HasCode(err, models.CodeNotFound) {
			// The account was deleted after the token was issued.
			return nil, models.NewUnauthorizedError("Unauthorized")
		}
		return nil, err
	}
	return user, nil
}

// Logout revokes the presented token for the rest of its lifetime.
func (s *UserService) Logout(ctx context.Context, id *auth.Identity) error {
	if s.revoker == nil || !s.revoker.Enabled() {
		return models.NewUnavailableError("Logout is unavailable", nil)
	}
	if err := s.revoker.Revoke(ctx, id.TokenID, id.ExpiresAt); err != nil {
		return models.NewUnavailableError("Logout is unavailable", err)
	}
	observability.RecordAuthEvent("logout", "success")
	return nil
}
