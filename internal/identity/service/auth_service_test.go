package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"campus-dispatch/internal/identity/domain"
	"campus-dispatch/internal/security"
)

type fakeOperatorRepo struct {
	byEmail map[string]*domain.Operator
}

func newFakeOperatorRepo() *fakeOperatorRepo {
	return &fakeOperatorRepo{byEmail: make(map[string]*domain.Operator)}
}

func (f *fakeOperatorRepo) GetByEmail(ctx context.Context, email string) (*domain.Operator, error) {
	return f.byEmail[email], nil
}

func (f *fakeOperatorRepo) Create(ctx context.Context, o *domain.Operator) error {
	f.byEmail[o.Email] = o
	return nil
}

var _ OperatorRepo = (*fakeOperatorRepo)(nil)

func newTestService() (*AuthService, *fakeOperatorRepo) {
	repo := newFakeOperatorRepo()
	hasher := security.NewHasher(4)
	tokens := security.NewTokenProvider([]byte("test-secret-at-least-32-bytes-long"), "campus-dispatch", "campus-dispatch-api", 15*time.Minute)
	return NewAuthService(repo, hasher, tokens), repo
}

func TestRegisterAndLogin(t *testing.T) {
	s, _ := newTestService()
	ctx := context.Background()

	op, err := s.Register(ctx, "Dispatcher@Campus.EDU", "long-enough-pass", "Dispatcher One", domain.RoleOperator)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if op.Email != "dispatcher@campus.edu" {
		t.Errorf("email = %q, want lowercased", op.Email)
	}
	if op.PasswordHash != "" {
		t.Error("Register leaked the password hash")
	}

	res, err := s.Login(ctx, "dispatcher@campus.edu", "long-enough-pass")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.AccessToken == "" || res.OperatorID != op.ID || res.Role != domain.RoleOperator {
		t.Errorf("Login result = %+v", res)
	}
}

func TestRegister_Validation(t *testing.T) {
	s, _ := newTestService()
	ctx := context.Background()

	if _, err := s.Register(ctx, "not-an-email", "long-enough-pass", "x", domain.RoleOperator); !errors.Is(err, ErrInvalidEmail) {
		t.Errorf("bad email err = %v, want ErrInvalidEmail", err)
	}
	if _, err := s.Register(ctx, "a@b.edu", "short", "x", domain.RoleOperator); !errors.Is(err, ErrWeakPassword) {
		t.Errorf("short password err = %v, want ErrWeakPassword", err)
	}
	if _, err := s.Register(ctx, "a@b.edu", "long-enough-pass", "x", "superuser"); !errors.Is(err, ErrInvalidRole) {
		t.Errorf("bad role err = %v, want ErrInvalidRole", err)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	s, _ := newTestService()
	ctx := context.Background()
	if _, err := s.Register(ctx, "a@b.edu", "long-enough-pass", "x", domain.RoleOperator); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := s.Register(ctx, "a@b.edu", "long-enough-pass", "x", domain.RoleOperator); !errors.Is(err, ErrEmailAlreadyRegistered) {
		t.Errorf("duplicate err = %v, want ErrEmailAlreadyRegistered", err)
	}
}

func TestLogin_Failures(t *testing.T) {
	s, repo := newTestService()
	ctx := context.Background()
	s.Register(ctx, "a@b.edu", "long-enough-pass", "x", domain.RoleModerator)

	if _, err := s.Login(ctx, "missing@b.edu", "whatever"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email err = %v, want ErrInvalidCredentials", err)
	}
	if _, err := s.Login(ctx, "a@b.edu", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password err = %v, want ErrInvalidCredentials", err)
	}

	repo.byEmail["a@b.edu"].Status = domain.StatusDisabled
	if _, err := s.Login(ctx, "a@b.edu", "long-enough-pass"); !errors.Is(err, ErrAccountDisabled) {
		t.Errorf("disabled account err = %v, want ErrAccountDisabled", err)
	}
}
