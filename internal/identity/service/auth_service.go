package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"campus-dispatch/internal/identity/domain"
	"campus-dispatch/internal/security"
)

// Sentinel errors for the auth service; the handler maps them to HTTP codes.
var (
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrAccountDisabled        = errors.New("operator account disabled")
	ErrInvalidEmail           = errors.New("invalid email address")
	ErrWeakPassword           = errors.New("password must be at least 10 characters")
	ErrInvalidRole            = errors.New("unknown operator role")
)

// AuthResult holds the outcome of Login: a bearer token and its expiry.
type AuthResult struct {
	AccessToken string
	ExpiresAt   time.Time
	OperatorID  string
	Role        domain.Role
}

// OperatorRepo is the minimal operator repository needed by the auth service.
type OperatorRepo interface {
	GetByEmail(ctx context.Context, email string) (*domain.Operator, error)
	Create(ctx context.Context, o *domain.Operator) error
}

// AuthService implements operator register and password login.
type AuthService struct {
	repo   OperatorRepo
	hasher *security.Hasher
	tokens *security.TokenProvider
}

// NewAuthService returns an AuthService with the given dependencies.
func NewAuthService(repo OperatorRepo, hasher *security.Hasher, tokens *security.TokenProvider) *AuthService {
	return &AuthService{repo: repo, hasher: hasher, tokens: tokens}
}

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Register creates an operator account with the given role. Returns the
// stored operator without the password hash.
func (s *AuthService) Register(ctx context.Context, email, password, name string, role domain.Role) (*domain.Operator, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if !emailRe.MatchString(email) {
		return nil, ErrInvalidEmail
	}
	if len(password) < 10 {
		return nil, ErrWeakPassword
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailAlreadyRegistered
	}

	hashed, err := s.hasher.Hash([]byte(password))
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	op := &domain.Operator{
		ID:           uuid.New().String(),
		Email:        email,
		Name:         strings.TrimSpace(name),
		Role:         role,
		PasswordHash: hashed,
		Status:       domain.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := op.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, op); err != nil {
		return nil, err
	}
	out := *op
	out.PasswordHash = ""
	return &out, nil
}

// Login verifies credentials and issues an access token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	op, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if op == nil {
		return nil, ErrInvalidCredentials
	}
	if op.Status != domain.StatusActive {
		return nil, ErrAccountDisabled
	}
	if err := s.hasher.Compare(op.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	token, expiresAt, err := s.tokens.IssueAccess(op.ID, string(op.Role))
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		OperatorID:  op.ID,
		Role:        op.Role,
	}, nil
}
