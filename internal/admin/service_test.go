package admin

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/YogeshJat8965/SwastikMotorsUjjain-sub001/internal/common/config"
	"gorm.io/gorm"
)

type fakeStore struct {
	mu     sync.Mutex
	admins map[string]*Admin
}

func newFakeStore() *fakeStore {
	return &fakeStore{admins: make(map[string]*Admin)}
}

func (f *fakeStore) Create(_ context.Context, a *Admin) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *a
	f.admins[a.ID] = &cp
	return nil
}

func (f *fakeStore) Save(_ context.Context, a *Admin) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *a
	f.admins[a.ID] = &cp
	return nil
}

func (f *fakeStore) FindByUsername(_ context.Context, username string) (*Admin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.admins {
		if a.Username == username {
			cp := *a
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeStore) FindByID(_ context.Context, id string) (*Admin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.admins[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeStore) List(_ context.Context, _, _ int) ([]Admin, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Admin
	for _, a := range f.admins {
		out = append(out, *a)
	}
	return out, int64(len(out)), nil
}

func (f *fakeStore) Count(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.admins)), nil
}

func testAuthCfg() config.AuthConfig {
	return config.AuthConfig{
		Enabled:   true,
		JWTSecret: "test-secret",
		Issuer:    "marketplace-test",
		TTLHours:  1,
	}
}

func TestLoginIssuesToken(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, testAuthCfg())
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateInput{Username: "owner", Password: "secret123"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	res, err := svc.Login(ctx, "owner", "secret123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if res.AccessToken == "" {
		t.Fatal("expected a signed access token")
	}
	if res.Admin.LastLoginAt == nil {
		t.Fatal("last login timestamp not recorded")
	}
}

// 用户名不存在与口令错误必须返回同一个错误，避免账号枚举。
func TestLoginRejectsBadCredentialsUniformly(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, testAuthCfg())
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateInput{Username: "owner", Password: "secret123"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	_, errWrongPass := svc.Login(ctx, "owner", "nope")
	_, errNoUser := svc.Login(ctx, "ghost", "nope")
	if !errors.Is(errWrongPass, ErrInvalidCredentials) || !errors.Is(errNoUser, ErrInvalidCredentials) {
		t.Fatalf("both paths must return ErrInvalidCredentials, got %v / %v", errWrongPass, errNoUser)
	}
}

func TestLoginDisabledAccount(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, testAuthCfg())
	ctx := context.Background()

	a, err := svc.Create(ctx, CreateInput{Username: "owner", Password: "secret123"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := svc.SetDisabled(ctx, a.ID, true); err != nil {
		t.Fatalf("disable failed: %v", err)
	}
	if _, err := svc.Login(ctx, "owner", "secret123"); !errors.Is(err, ErrAccountDisabled) {
		t.Fatalf("expected ErrAccountDisabled, got %v", err)
	}
}

func TestCreateRejectsDuplicateUsername(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, testAuthCfg())
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateInput{Username: "owner", Password: "a"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := svc.Create(ctx, CreateInput{Username: "owner", Password: "b"}); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestEnsureBootstrapIsIdempotent(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, testAuthCfg())
	ctx := context.Background()

	if err := svc.EnsureBootstrap(ctx, "owner", "secret123"); err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}
	if err := svc.EnsureBootstrap(ctx, "owner", "secret123"); err != nil {
		t.Fatalf("second bootstrap must be a no-op: %v", err)
	}
	n, _ := store.Count(ctx)
	if n != 1 {
		t.Fatalf("expected exactly one admin, got %d", n)
	}
	// 空凭据视为未配置，不创建
	empty := newFakeStore()
	svc2 := NewService(empty, testAuthCfg())
	if err := svc2.EnsureBootstrap(ctx, "", ""); err != nil {
		t.Fatalf("empty bootstrap must be a no-op: %v", err)
	}
	if n, _ := empty.Count(ctx); n != 0 {
		t.Fatalf("no admin should be created without credentials, got %d", n)
	}
}
