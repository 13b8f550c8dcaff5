package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"sweetshop/constants"
	"sweetshop/dto"
	"sweetshop/models"
	"sweetshop/repositories"
)

type IAuthService interface {
	Register(ctx context.Context, input dto.RegisterInput) (*models.User, error)
	Login(ctx context.Context, email string, password string) (*models.User, error)
	IssueToken(user *models.User) (string, error)
	VerifyToken(ctx context.Context, tokenString string) (*TokenClaims, error)
	GetUserFromToken(ctx context.Context, tokenString string) (*models.User, error)
	Logout(ctx context.Context, tokenString string) error
	EnsureAdmin(ctx context.Context, name string, email string, password string) error
}

type AuthService struct {
	repository      repositories.IAuthRepository
	tokenRepository repositories.ITokenRepository
	tokens          *TokenManager
	logger          *zap.Logger
	bcryptCost      int
}

func NewAuthService(
	repository repositories.IAuthRepository,
	tokenRepository repositories.ITokenRepository,
	tokens *TokenManager,
	logger *zap.Logger,
) IAuthService {
	return &AuthService{
		repository:      repository,
		tokenRepository: tokenRepository,
		tokens:          tokens,
		logger:          logger,
		bcryptCost:      bcrypt.DefaultCost,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Register(ctx context.Context, input dto.RegisterInput) (*models.User, error) {
	email := normalizeEmail(input.Email)

	// bcrypt は 72 バイトまでしか扱えない
	if len(input.Password) < 6 || len(input.Password) > 72 {
		return nil, newValidationError("password must be between 6 and 72 characters")
	}

	role := input.Role
	if role == "" {
		role = constants.RoleUser
	}

	exists, err := s.repository.EmailExists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, ErrDuplicateAccount
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Name:     strings.TrimSpace(input.Name),
		Email:    email,
		Password: string(hashedPassword),
		Role:     role,
	}
	if err := validateEntity(user); err != nil {
		return nil, err
	}

	if err := s.repository.CreateUser(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateAccount
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID), zap.String("role", user.Role))
	return user, nil
}

// Login メールアドレス未登録とパスワード不一致は区別しない
func (s *AuthService) Login(ctx context.Context, email string, password string) (*models.User, error) {
	foundUser, err := s.repository.FindUser(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(foundUser.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return foundUser, nil
}

func (s *AuthService) IssueToken(user *models.User) (string, error) {
	return s.tokens.Issue(user.ID, user.Role)
}

func (s *AuthService) VerifyToken(ctx context.Context, tokenString string) (*TokenClaims, error) {
	claims, err := s.tokens.Verify(tokenString)
	if err != nil {
		return nil, err
	}

	// トークンがブラックリストに含まれているかチェック
	isBlacklisted, err := s.tokenRepository.IsTokenBlacklisted(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("check blacklist: %w", err)
	}
	if isBlacklisted {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// GetUserFromToken ロールはトークンではなく DB の最新値を使う
func (s *AuthService) GetUserFromToken(ctx context.Context, tokenString string) (*models.User, error) {
	claims, err := s.VerifyToken(ctx, tokenString)
	if err != nil {
		return nil, err
	}

	user, err := s.repository.FindUserByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

func (s *AuthService) Logout(ctx context.Context, tokenString string) error {
	claims, err := s.tokens.Verify(tokenString)
	if err != nil {
		return err
	}

	if err := s.tokenRepository.AddBlacklistedToken(ctx, claims.ID, claims.ExpiresAt.Unix()); err != nil {
		return fmt.Errorf("blacklist token: %w", err)
	}
	if err := s.tokenRepository.CleanExpiredTokens(ctx); err != nil {
		s.logger.Warn("failed to clean expired tokens", zap.Error(err))
	}
	return nil
}

// EnsureAdmin 起動時に管理者アカウントが無ければ作成する
func (s *AuthService) EnsureAdmin(ctx context.Context, name string, email string, password string) error {
	existing, err := s.repository.FindUser(ctx, normalizeEmail(email))
	if err == nil {
		if !existing.IsAdmin() {
			s.logger.Warn("bootstrap admin email belongs to a non-admin account", zap.String("user_id", existing.ID))
		}
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("check admin: %w", err)
	}

	_, err = s.Register(ctx, dto.RegisterInput{
		Name:     name,
		Email:    email,
		Password: password,
		Role:     constants.RoleAdmin,
	})
	if err != nil && !errors.Is(err, ErrDuplicateAccount) {
		return fmt.Errorf("create admin: %w", err)
	}
	return nil
}
