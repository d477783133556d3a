package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/xid"

	"github.com/sakif/kanban-board/internal/apperror"
	"github.com/sakif/kanban-board/internal/auth"
	"github.com/sakif/kanban-board/internal/model"
	"github.com/sakif/kanban-board/internal/repository"
	"github.com/sakif/kanban-board/internal/session"
)

// invalidCredentials is shared by every login failure so responses never
// reveal whether the email exists.
const invalidCredentials = "Invalid email or password"

// AuthService handles signup, login and session lifecycle.
//
//	AuthHandler (HTTP) → AuthService → repository.Store (users)
//	                                 ↘ session.Store (tokens)
type AuthService struct {
	store     repository.Store
	sessions  session.Store
	passwords *auth.PasswordService
	validate  *validator.Validate
	logger    *slog.Logger
}

func NewAuthService(
	store repository.Store,
	sessions session.Store,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		store:     store,
		sessions:  sessions,
		passwords: passwords,
		validate:  newValidator(),
		logger:    logger,
	}
}

// AuthResult bundles the signed-in user and their new session token.
type AuthResult struct {
	Token string           `json:"token"`
	User  model.PublicUser `json:"user"`
}

type SignupInput struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Signup registers a user and signs them in. Emails are unique
// case-insensitively; a duplicate yields a conflict and nothing is written.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := s.validate.Struct(in); err != nil {
		return nil, validationError(err)
	}

	hash, err := s.passwords.Hash(in.Password)
	if errors.Is(err, apperror.ErrValidation) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("service/auth: hashing password: %w", err)
	}

	user := model.User{
		ID:           xid.New().String(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
	}
	err = s.store.Update(ctx, func(doc *model.Document) error {
		if _, exists := doc.UserByEmail(user.Email); exists {
			return apperror.Conflict("Email already registered")
		}
		doc.Users = append(doc.Users, user)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user signed up", slog.String("userID", user.ID))
	return s.startSession(ctx, user)
}

// Login checks credentials and issues a new session token. Users without a
// password (seeded members, GitHub sign-ins) can never log in this way.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := s.validate.Struct(in); err != nil {
		return nil, validationError(err)
	}

	doc, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/auth: loading users: %w", err)
	}

	user, ok := doc.UserByEmail(in.Email)
	if !ok {
		return nil, apperror.Unauthorized(invalidCredentials)
	}
	if err := s.passwords.Verify(user.PasswordHash, in.Password); err != nil {
		if !errors.Is(err, auth.ErrInvalidPassword) {
			return nil, fmt.Errorf("service/auth: verifying password: %w", err)
		}
		s.logger.Warn("login failed", slog.String("userID", user.ID))
		return nil, apperror.Unauthorized(invalidCredentials)
	}

	return s.startSession(ctx, *user)
}

// Logout revokes token. Unknown tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if err := s.sessions.Revoke(ctx, token); err != nil {
		return fmt.Errorf("service/auth: revoking session: %w", err)
	}
	return nil
}

// Me returns the authenticated user. A session whose user has disappeared
// from the store is treated as unauthenticated.
func (s *AuthService) Me(ctx context.Context, userID string) (model.PublicUser, error) {
	doc, err := s.store.Load(ctx)
	if err != nil {
		return model.PublicUser{}, fmt.Errorf("service/auth: loading users: %w", err)
	}
	user, ok := doc.UserByID(userID)
	if !ok {
		return model.PublicUser{}, apperror.Unauthorized("Unauthorized")
	}
	return user.Public(), nil
}

// Users lists every board member without credentials.
func (s *AuthService) Users(ctx context.Context) ([]model.PublicUser, error) {
	doc, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("service/auth: loading users: %w", err)
	}
	return model.PublicUsers(doc.Users), nil
}

// LoginWithGitHub signs in the board user linked to the GitHub account.
//
// Accounts are matched on the GitHub user ID. On first sign-in a password-less
// board user with the same email (a seeded team member) is claimed and
// linked; an email that belongs to a password account, or to another GitHub
// account, is a conflict. Otherwise a new password-less user is created.
func (s *AuthService) LoginWithGitHub(ctx context.Context, gh *auth.GitHubUser) (*AuthResult, error) {
	if gh == nil {
		return nil, fmt.Errorf("service/auth: GitHub user must not be nil")
	}

	email := gh.AccountEmail()
	var user model.User
	created, linked := false, false
	err := s.store.Update(ctx, func(doc *model.Document) error {
		if existing, ok := doc.UserByGitHubID(gh.ID); ok {
			user = *existing
			return nil
		}
		if existing, ok := doc.UserByEmail(email); ok {
			if existing.PasswordHash != "" || existing.GitHubID != 0 {
				return apperror.Conflict("Email already registered; log in with your password")
			}
			existing.GitHubID = gh.ID
			user = *existing
			linked = true
			return nil
		}
		user = model.User{ID: xid.New().String(), Name: gh.DisplayName(), Email: email, GitHubID: gh.ID}
		doc.Users = append(doc.Users, user)
		created = true
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("service/auth: upserting GitHub user %d: %w", gh.ID, err)
	}

	s.logger.Info("user authenticated via GitHub",
		slog.String("userID", user.ID),
		slog.String("login", gh.Login),
		slog.Bool("created", created),
		slog.Bool("linked", linked),
	)
	return s.startSession(ctx, user)
}

func (s *AuthService) startSession(ctx context.Context, user model.User) (*AuthResult, error) {
	token, err := s.sessions.Issue(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: issuing session for user %s: %w", user.ID, err)
	}
	return &AuthResult{Token: token, User: user.Public()}, nil
}
