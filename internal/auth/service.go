// Package auth implements email/password accounts and signed session tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/crypto/bcrypt"

	"tarvee/internal/metrics"
	"tarvee/internal/model"
	"tarvee/internal/repository"
	"tarvee/internal/validation"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("the email address is already in use by another account")
	ErrUnauthenticated    = errors.New("not signed in")
)

// Session is a freshly issued sign-in.
type Session struct {
	Token     string         `json:"-"`
	ExpiresAt time.Time      `json:"expiresAt"`
	User      model.Identity `json:"user"`
}

// Service is the authentication boundary used by the HTTP layer.
type Service interface {
	SignUp(ctx context.Context, email, password string) (*Session, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context, token string) error
	Current(ctx context.Context, token string) (*model.Identity, error)
}

// Options tune a Service.
type Options struct {
	BcryptCost   int
	UserCacheTTL time.Duration
	Logger       *slog.Logger
	Metrics      metrics.Recorder
}

type service struct {
	users     repository.UserRepository
	tokens    *TokenIssuer
	revoked   RevocationStore
	validate  *validation.Validator
	userCache *gocache.Cache
	cost      int
	// dummyHash is checked against when the email is unknown.
	dummyHash []byte
	compare   func(hash, password []byte) error
	log       *slog.Logger
	metrics   metrics.Recorder
}

// NewService wires the account repository, token issuer and revocation store.
func NewService(users repository.UserRepository, tokens *TokenIssuer, revoked RevocationStore, opts Options) Service {
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	if opts.UserCacheTTL <= 0 {
		opts.UserCacheTTL = 5 * time.Minute
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.Nop{}
	}
	// Same cost as stored hashes so an unknown email takes as long as a wrong password.
	dummy, err := bcrypt.GenerateFromPassword([]byte("tarvee-unknown-account"), opts.BcryptCost)
	if err != nil {
		dummy, _ = bcrypt.GenerateFromPassword([]byte("tarvee-unknown-account"), bcrypt.DefaultCost)
	}
	return &service{
		users:     users,
		tokens:    tokens,
		revoked:   revoked,
		validate:  validation.New(),
		userCache: gocache.New(opts.UserCacheTTL, 2*opts.UserCacheTTL),
		cost:      opts.BcryptCost,
		dummyHash: dummy,
		compare:   bcrypt.CompareHashAndPassword,
		log:       opts.Logger.With(slog.String("component", "auth")),
		metrics:   opts.Metrics,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *service) SignUp(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	if err := s.validate.Struct(validation.SignUpForm{Email: email, Password: password}); err != nil {
		s.metrics.AuthEvent("signup", "invalid")
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u, err := s.users.Create(ctx, &model.User{Email: email, PasswordHash: string(hash)})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			s.metrics.AuthEvent("signup", "failure")
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.metrics.AuthEvent("signup", "success")
	s.log.Info("user_signed_up", slog.String("user_id", u.ID))
	return s.startSession(u)
}

func (s *service) SignIn(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	if err := s.validate.Struct(validation.LoginForm{Email: email, Password: password}); err != nil {
		s.metrics.AuthEvent("signin", "invalid")
		return nil, err
	}

	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			_ = s.compare(s.dummyHash, []byte(password))
			s.metrics.AuthEvent("signin", "failure")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if err := s.compare([]byte(u.PasswordHash), []byte(password)); err != nil {
		s.metrics.AuthEvent("signin", "failure")
		return nil, ErrInvalidCredentials
	}

	s.metrics.AuthEvent("signin", "success")
	s.log.Info("user_signed_in", slog.String("user_id", u.ID))
	return s.startSession(u)
}

func (s *service) startSession(u *model.User) (*Session, error) {
	token, claims, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, err
	}
	s.userCache.SetDefault(u.ID, u)
	return &Session{Token: token, ExpiresAt: claims.ExpiresAt.Time, User: u.Identity()}, nil
}

// SignOut revokes token. An unparsable or expired token is already unusable
// and signs out successfully.
func (s *service) SignOut(ctx context.Context, token string) error {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil
	}
	if err := s.revoked.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	s.metrics.AuthEvent("signout", "success")
	s.log.Info("user_signed_out", slog.String("user_id", claims.Subject))
	return nil
}

func (s *service) Current(ctx context.Context, token string) (*model.Identity, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return nil, ErrUnauthenticated
	}

	u, err := s.lookupUser(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}
	id := u.Identity()
	return &id, nil
}

func (s *service) lookupUser(ctx context.Context, id string) (*model.User, error) {
	if cached, found := s.userCache.Get(id); found {
		if u, ok := cached.(*model.User); ok {
			return u, nil
		}
	}
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.userCache.SetDefault(id, u)
	return u, nil
}
