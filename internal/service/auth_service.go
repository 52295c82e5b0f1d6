package service

import (
	"context"
	"errors"
	"strings"

	"vidshare/internal/api/dto"
	"vidshare/internal/model"
	"vidshare/internal/repository"
	"vidshare/internal/session"
	"vidshare/pkg/logger"
	"vidshare/pkg/utils"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrFieldsRequired    = errors.New("All fields are required.")
	ErrInvalidEmail      = errors.New("Invalid email format.")
	ErrInvalidUsername   = errors.New("Username must be 3-50 characters and alphanumeric.")
	ErrPasswordTooShort  = errors.New("Password must be at least 6 characters long.")
	ErrUserExists        = errors.New("Username or email already exists.")
	ErrInvalidCredential = errors.New("Invalid credentials.")
	ErrUserNotFound      = errors.New("User not found.")
)

const minPasswordLength = 6

// MsgTryAgainLater 内部错误时展示给用户的提示
const MsgTryAgainLater = "Something went wrong. Please try again later."

type AuthService struct {
	userRepo *repository.UserRepository
	sessions *session.Manager
	validate *validator.Validate
}

func NewAuthService(userRepo *repository.UserRepository, sessions *session.Manager) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		sessions: sessions,
		validate: validator.New(),
	}
}

// Signup 注册：按固定顺序校验，返回第一个失败项
func (s *AuthService) Signup(ctx context.Context, req *dto.SignupForm) (*model.User, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)

	if username == "" || email == "" || req.Password == "" {
		return nil, ErrFieldsRequired
	}
	if err := s.validate.Var(email, "email"); err != nil {
		return nil, ErrInvalidEmail
	}
	if err := s.validate.Var(username, "alphanum,min=3,max=50"); err != nil {
		return nil, ErrInvalidUsername
	}
	if len(req.Password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	exists, err := s.userRepo.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUserExists
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username: username,
		Email:    email,
		Password: hashedPassword,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// 并发注册同名用户时由唯一索引兜底
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUserExists
		}
		return nil, err
	}

	logger.Info("User registered", zap.Int64("user_id", user.ID), zap.String("username", user.Username))
	return user, nil
}

// Login 校验用户名密码并签发会话；用户不存在与密码错误返回同一错误
func (s *AuthService) Login(ctx context.Context, req *dto.LoginForm) (string, *session.Session, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return "", nil, ErrInvalidCredential
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrInvalidCredential
		}
		return "", nil, err
	}

	if !utils.VerifyPassword(req.Password, user.Password) {
		return "", nil, ErrInvalidCredential
	}

	return s.sessions.Issue(user.ID, user.Username)
}

// Logout 吊销会话
func (s *AuthService) Logout(ctx context.Context, sess *session.Session) error {
	return s.sessions.Revoke(ctx, sess)
}
