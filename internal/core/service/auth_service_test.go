package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/bandstand/onboarding-api/internal/core/domain"
	"github.com/bandstand/onboarding-api/internal/core/security"
)

type stubAuthRepo struct {
	mu     sync.Mutex
	users  map[string]*domain.User
	nextID int
	err    error
}

func newStubAuthRepo() *stubAuthRepo {
	return &stubAuthRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubAuthRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	r.nextID++
	copy := cloneUser(user)
	copy.ID = fmt.Sprintf("%024x", r.nextID)
	r.users[copy.ID] = copy
	return cloneUser(copy), nil
}

func (r *stubAuthRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (r *stubAuthRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return cloneUser(u), nil
}

func (r *stubAuthRepo) UpdateRole(_ context.Context, id string, role domain.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	u.Role = role
	return nil
}

func (r *stubAuthRepo) UpdateProfile(_ context.Context, id string, update domain.ProfileUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	if update.Name != nil {
		u.Profile.Name = *update.Name
	}
	if update.Location != nil {
		u.Profile.Location = *update.Location
	}
	if update.Bio != nil {
		u.Profile.Bio = *update.Bio
	}
	return nil
}

func (r *stubAuthRepo) Count(_ context.Context, role *domain.Role) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, u := range r.users {
		if role == nil || u.Role == *role {
			n++
		}
	}
	return n, nil
}

// inlineHasher runs bcrypt on the calling goroutine.
type inlineHasher struct {
	h *security.BcryptHasher
}

func (i inlineHasher) Hash(_ context.Context, secret string) (string, error) {
	return i.h.Hash(secret)
}

func (i inlineHasher) Verify(_ context.Context, secret, hash string) bool {
	return i.h.Verify(secret, hash)
}

func newTestAuthService(t *testing.T, repo *stubAuthRepo) (*AuthService, *security.TokenCodec) {
	t.Helper()
	bc, err := security.NewBcryptHasher(security.MinCost)
	if err != nil {
		t.Fatalf("hasher: %v", err)
	}
	cfg, err := security.NewTokenConfig("test-signing-key-0123456789abcdef", "HS256", time.Hour)
	if err != nil {
		t.Fatalf("token config: %v", err)
	}
	codec := security.NewTokenCodec(cfg)
	return NewAuthService(repo, inlineHasher{h: bc}, codec, cfg.TTL(), zerolog.Nop()), codec
}

func TestAuthService_Register_Success(t *testing.T) {
	repo := newStubAuthRepo()
	svc, _ := newTestAuthService(t, repo)

	user, err := svc.Register(context.Background(), "  Alice@Example.com ", "pass123")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.ID == "" {
		t.Fatalf("expected generated id")
	}
	if user.Email != "alice@example.com" {
		t.Fatalf("expected normalised email, got %q", user.Email)
	}
	if user.PasswordHash == "pass123" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("pass123")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if user.Role != domain.RoleUser {
		t.Fatalf("expected default role user, got %s", user.Role)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	svc, _ := newTestAuthService(t, newStubAuthRepo())

	if _, err := svc.Register(context.Background(), "", "pass"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Register(context.Background(), "bob@example.com", ""); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for empty password, got %v", err)
	}
	if _, err := svc.Register(context.Background(), "bob@example.com", strings.Repeat("é", 40)); err != domain.ErrPasswordTooLong {
		t.Fatalf("expected ErrPasswordTooLong for 80-byte password, got %v", err)
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	svc, _ := newTestAuthService(t, newStubAuthRepo())

	_, _ = svc.Register(context.Background(), "bob@example.com", "pass")
	if _, err := svc.Register(context.Background(), "BOB@example.com", "pass2"); err != domain.ErrUserExists {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthService_Register_RepoFailure(t *testing.T) {
	repo := newStubAuthRepo()
	repo.err = errors.New("mongo down")
	svc, _ := newTestAuthService(t, repo)

	_, err := svc.Register(context.Background(), "bob@example.com", "pass")
	if err == nil || errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected wrapped repo error, got %v", err)
	}
}

func TestAuthService_RegisterLoginDecode(t *testing.T) {
	repo := newStubAuthRepo()
	svc, codec := newTestAuthService(t, repo)
	ctx := context.Background()

	user, err := svc.Register(ctx, "a@b.com", "Secret123")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	res, err := svc.Login(ctx, "a@b.com", "Secret123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if res.AccessToken == "" || res.TokenType != "bearer" {
		t.Fatalf("unexpected login result: %+v", res)
	}
	if res.ExpiresIn != time.Hour {
		t.Fatalf("expected expires_in of 1h, got %s", res.ExpiresIn)
	}

	p, err := codec.Decode(res.AccessToken)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Role != domain.RoleUser {
		t.Fatalf("expected role user, got %s", p.Role)
	}
	if p.SubjectID != user.ID {
		t.Fatalf("expected subject %s, got %s", user.ID, p.SubjectID)
	}
}

func TestAuthService_Login_InvalidPassword(t *testing.T) {
	svc, _ := newTestAuthService(t, newStubAuthRepo())

	_, _ = svc.Register(context.Background(), "dave@example.com", "goodpass")
	if _, err := svc.Login(context.Background(), "dave@example.com", "badpass"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	svc, _ := newTestAuthService(t, newStubAuthRepo())

	if _, err := svc.Login(context.Background(), "ghost@example.com", "pass"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Profile(t *testing.T) {
	repo := newStubAuthRepo()
	svc, _ := newTestAuthService(t, repo)
	ctx := context.Background()

	user, err := svc.Register(ctx, "carol@example.com", "s3cret")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	p := domain.Principal{SubjectID: user.ID, Role: user.Role}

	got, err := svc.Profile(ctx, p)
	if err != nil || got.Email != "carol@example.com" {
		t.Fatalf("unexpected profile: %+v %v", got, err)
	}

	if _, err := svc.Profile(ctx, domain.Principal{SubjectID: "gone", Role: domain.RoleUser}); err != domain.ErrAccountNotFound {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestAuthService_UpdateProfile(t *testing.T) {
	repo := newStubAuthRepo()
	svc, _ := newTestAuthService(t, repo)
	ctx := context.Background()

	user, _ := svc.Register(ctx, "erin@example.com", "s3cret")
	p := domain.Principal{SubjectID: user.ID, Role: user.Role}

	if _, err := svc.UpdateProfile(ctx, p, domain.ProfileUpdate{}); err != domain.ErrNoProfileFields {
		t.Fatalf("expected ErrNoProfileFields, got %v", err)
	}

	name, location := "Erin", "Lisbon"
	got, err := svc.UpdateProfile(ctx, p, domain.ProfileUpdate{Name: &name, Location: &location})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Profile.Name != "Erin" || got.Profile.Location != "Lisbon" || got.Profile.Bio != "" {
		t.Fatalf("unexpected profile: %+v", got.Profile)
	}
	if got.Role != domain.RoleUser {
		t.Fatalf("role must not change, got %s", got.Role)
	}

	ghost := domain.Principal{SubjectID: "gone", Role: domain.RoleUser}
	if _, err := svc.UpdateProfile(ctx, ghost, domain.ProfileUpdate{Name: &name}); err != domain.ErrAccountNotFound {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}
