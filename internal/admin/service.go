package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/YogeshJat8965/SwastikMotorsUjjain-sub001/internal/common/auth"
	"github.com/YogeshJat8965/SwastikMotorsUjjain-sub001/internal/common/config"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account disabled")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrAdminNotFound      = errors.New("admin not found")
)

// Store 后台账号存储抽象；*Repo 为生产实现。
type Store interface {
	Create(ctx context.Context, a *Admin) error
	Save(ctx context.Context, a *Admin) error
	FindByUsername(ctx context.Context, username string) (*Admin, error)
	FindByID(ctx context.Context, id string) (*Admin, error)
	List(ctx context.Context, offset, limit int) ([]Admin, int64, error)
	Count(ctx context.Context) (int64, error)
}

var _ Store = (*Repo)(nil)

type Service struct {
	store   Store
	authCfg config.AuthConfig
}

func NewService(store Store, authCfg config.AuthConfig) *Service {
	return &Service{store: store, authCfg: authCfg}
}

// LoginResult 登录成功后的令牌信息。
type LoginResult struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	Admin       *Admin    `json:"admin"`
}

// Login 校验口令并签发后台访问令牌。
// 用户名不存在和口令错误返回同一个错误，不让调用方探测账号。
func (s *Service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	a, err := s.store.FindByUsername(ctx, username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !VerifyPassword(password, a.PasswordSalt, a.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	if a.Disabled {
		return nil, ErrAccountDisabled
	}

	ttl := time.Duration(s.authCfg.TTLHours) * time.Hour
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	token, exp, err := auth.GenerateAccessToken(s.authCfg, a.ID, a.RolesSlice(), ttl)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	now := time.Now().UTC()
	a.LastLoginAt = &now
	if err := s.store.Save(ctx, a); err != nil {
		return nil, err
	}
	return &LoginResult{AccessToken: token, ExpiresAt: exp, Admin: a}, nil
}

// CreateInput 新建后台账号的入参。
type CreateInput struct {
	Username    string
	Password    string
	DisplayName string
	Email       string
	Roles       []string
}

// Create 新建后台账号；角色缺省为 admin。
func (s *Service) Create(ctx context.Context, in CreateInput) (*Admin, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" {
		return nil, ErrInvalidCredentials
	}

	if _, err := s.store.FindByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	salt, err := GenerateSaltHex()
	if err != nil {
		return nil, err
	}
	hash, err := HashPassword(in.Password, salt)
	if err != nil {
		return nil, err
	}

	roles := in.Roles
	if len(roles) == 0 {
		roles = []string{"admin"}
	}
	a := &Admin{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		PasswordSalt: salt,
		DisplayName:  strings.TrimSpace(in.DisplayName),
		Email:        strings.TrimSpace(in.Email),
		Roles:        RolesJoin(roles),
	}
	if err := s.store.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Admin, error) {
	a, err := s.store.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAdminNotFound
	}
	return a, err
}

func (s *Service) List(ctx context.Context, offset, limit int) ([]Admin, int64, error) {
	return s.store.List(ctx, offset, limit)
}

// SetDisabled 启停账号。
func (s *Service) SetDisabled(ctx context.Context, id string, disabled bool) (*Admin, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	a.Disabled = disabled
	if err := s.store.Save(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// EnsureBootstrap 账号表为空时创建初始管理员，幂等。
// 凭据来自部署配置；空配置视为不需要初始化。
func (s *Service) EnsureBootstrap(ctx context.Context, username, password string) error {
	if strings.TrimSpace(username) == "" || password == "" {
		return nil
	}
	n, err := s.store.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	_, err = s.Create(ctx, CreateInput{
		Username: username,
		Password: password,
		Roles:    []string{"admin"},
	})
	if errors.Is(err, ErrUsernameTaken) {
		return nil
	}
	return err
}
