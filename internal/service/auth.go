package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/avc/accshop/internal/domain"
	"github.com/avc/accshop/internal/utils/jwt"
	"github.com/avc/accshop/internal/utils/password"
	"go.uber.org/zap"
)

// AuthService аутентифицирует администраторов магазина.
// Самостоятельной регистрации нет: учетная запись создается
// при старте приложения из конфигурации (EnsureAdmin).
type AuthService struct {
	adminRepo      domain.AdminRepository
	passwordHasher password.Hasher
	jwtManager     *jwt.Manager
	logger         *zap.Logger
}

// NewAuthService создает новый AuthService
func NewAuthService(
	adminRepo domain.AdminRepository,
	passwordHasher password.Hasher,
	jwtManager *jwt.Manager,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		adminRepo:      adminRepo,
		passwordHasher: passwordHasher,
		jwtManager:     jwtManager,
		logger:         logger,
	}
}

// Login аутентифицирует администратора и возвращает JWT токен
func (s *AuthService) Login(ctx context.Context, login, adminPassword string) (string, error) {
	if login == "" || adminPassword == "" {
		return "", ErrInvalidInput
	}

	admin, err := s.adminRepo.GetAdminByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, domain.ErrAdminNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("auth service: failed to get admin %q: %w", login, err)
	}

	if err := s.passwordHasher.Check(admin.PasswordHash, adminPassword); err != nil {
		return "", ErrInvalidCredentials
	}

	token, err := s.jwtManager.Generate(admin.ID)
	if err != nil {
		return "", fmt.Errorf("auth service: failed to generate token for admin %d: %w", admin.ID, err)
	}

	return token, nil
}

// EnsureAdmin создает стартовую учетную запись администратора,
// если она еще не существует
func (s *AuthService) EnsureAdmin(ctx context.Context, login, adminPassword string) error {
	if login == "" || adminPassword == "" {
		return ErrInvalidInput
	}

	hash, err := s.passwordHasher.Hash(adminPassword)
	if err != nil {
		return fmt.Errorf("auth service: failed to hash password for admin %q: %w", login, err)
	}

	_, err = s.adminRepo.CreateAdmin(ctx, login, hash)
	if err != nil {
		if errors.Is(err, domain.ErrAdminExists) {
			return nil
		}
		return fmt.Errorf("auth service: failed to create admin %q: %w", login, err)
	}

	s.logger.Info("bootstrap admin created", zap.String("login", login))
	return nil
}
