// Package session 基于签名 JWT Cookie 的登录会话，支持通过 Redis 服务端吊销
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vidshare/pkg/utils"
)

var (
	ErrNoSession = errors.New("no session")
	ErrRevoked   = errors.New("session has been revoked")
)

// Session 当前登录用户
type Session struct {
	UserID    int64
	Username  string
	TokenID   string
	ExpiresAt time.Time
}

// Revoker 已吊销会话的存储
type Revoker interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Manager 签发、解析、吊销会话
type Manager struct {
	secret     []byte
	issuer     string
	ttl        time.Duration
	cookieName string
	secure     bool
	revoker    Revoker
}

// Options Manager 配置
type Options struct {
	Secret     string
	Issuer     string
	TTL        time.Duration
	CookieName string
	Secure     bool
	// Revoker 为 nil 时注销只清除 Cookie
	Revoker Revoker
}

func NewManager(opts Options) *Manager {
	return &Manager{
		secret:     []byte(opts.Secret),
		issuer:     opts.Issuer,
		ttl:        opts.TTL,
		cookieName: opts.CookieName,
		secure:     opts.Secure,
		revoker:    opts.Revoker,
	}
}

func (m *Manager) CookieName() string { return m.cookieName }

func (m *Manager) Secure() bool { return m.secure }

func (m *Manager) TTL() time.Duration { return m.ttl }

// Issue 为用户签发会话，返回 Cookie 值
func (m *Manager) Issue(userID int64, username string) (string, *Session, error) {
	token, claims, err := utils.GenerateToken(m.secret, m.issuer, m.ttl, userID, username)
	if err != nil {
		return "", nil, fmt.Errorf("issue session: %w", err)
	}
	return token, &Session{
		UserID:    claims.UserID,
		Username:  claims.Username,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Parse 校验 Cookie 值并检查吊销名单
func (m *Manager) Parse(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrNoSession
	}
	claims, err := utils.ParseToken(m.secret, token)
	if err != nil {
		return nil, err
	}

	if m.revoker != nil {
		revoked, err := m.revoker.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("check session revocation: %w", err)
		}
		if revoked {
			return nil, ErrRevoked
		}
	}

	s := &Session{
		UserID:   claims.UserID,
		Username: claims.Username,
		TokenID:  claims.ID,
	}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
	}
	return s, nil
}

// Revoke 吊销会话直到其自然过期
func (m *Manager) Revoke(ctx context.Context, s *Session) error {
	if m.revoker == nil || s == nil || s.TokenID == "" {
		return nil
	}
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	return m.revoker.Revoke(ctx, s.TokenID, ttl)
}
