package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"farmershub/internal/app/hub/entity"
	"farmershub/internal/app/hub/repository"
	"farmershub/internal/app/hub/util"
	"farmershub/pkg/logger"
	"farmershub/pkg/metrics"

	"github.com/google/uuid"
)

// AuthService обрабатывает бизнес-логику аутентификации.
// Сессия хранится в Redis, токен привязывает клиента к сессии:
// удаление сессии инвалидирует еще действующий токен.
type AuthService struct {
	userRepo     repository.UserRepository
	sessionRepo  repository.SessionRepository
	tokenManager *util.TokenManager
	validator    *util.InputValidator

	// Подписчики на события аутентификации.
	// Явные каналы вместо глобальной шины событий.
	mu          sync.RWMutex
	subscribers map[chan entity.AuthEvent]struct{}
}

// NewAuthService создает новый сервис аутентификации
func NewAuthService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	tokenManager *util.TokenManager,
	validator *util.InputValidator,
) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		sessionRepo:  sessionRepo,
		tokenManager: tokenManager,
		validator:    validator,
		subscribers:  make(map[chan entity.AuthEvent]struct{}),
	}
}

// Register регистрирует нового пользователя
// Валидация формы выполняется до любых обращений к базе
func (s *AuthService) Register(ctx context.Context, req *entity.RegisterRequest) (*entity.AuthResponse, error) {
	form, fieldErrors := s.validator.ValidateSignUpForm(util.SignUpForm{
		Username: req.Username,
		Password: req.Password,
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
	})
	if len(fieldErrors) > 0 {
		return nil, &ValidationError{Fields: fieldErrors}
	}

	// Проверяем, свободно ли имя пользователя
	existing, err := s.userRepo.GetByUsername(ctx, form.Username)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, ErrUserExists
	}

	passwordHash, err := util.HashPassword(form.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entity.User{
		ID:           uuid.New(),
		Username:     form.Username,
		FullName:     form.FullName,
		PasswordHash: passwordHash,
		Role:         "user",
		IsActive:     true,
		CreatedAt:    time.Now(),
	}
	if form.Email != "" {
		user.Email = &form.Email
	}
	if form.Phone != "" {
		user.Phone = &form.Phone
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	metrics.AuthRegistrations.Inc()
	logger.Info().Str("username", user.Username).Msg("user registered")

	return s.openSession(ctx, user)
}

// Login выполняет вход пользователя
func (s *AuthService) Login(ctx context.Context, req *entity.LoginRequest) (*entity.AuthResponse, error) {
	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			metrics.AuthLogins.WithLabelValues("failed").Inc()
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !util.CheckPassword(req.Password, user.PasswordHash) {
		metrics.AuthLogins.WithLabelValues("failed").Inc()
		return nil, ErrInvalidCredentials
	}

	// Деактивированные аккаунты не допускаются ко входу
	if !user.IsActive {
		metrics.AuthLogins.WithLabelValues("failed").Inc()
		return nil, ErrAccountInactive
	}

	resp, err := s.openSession(ctx, user)
	if err != nil {
		return nil, err
	}

	metrics.AuthLogins.WithLabelValues("success").Inc()
	logger.Info().Str("username", user.Username).Msg("user logged in")

	return resp, nil
}

// Logout завершает сессию пользователя
// Отсутствующая сессия не считается ошибкой
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	sessionUser, err := s.sessionRepo.Get(ctx, sessionID)
	if err != nil && !errors.Is(err, repository.ErrSessionNotFound) {
		return fmt.Errorf("failed to get session: %w", err)
	}

	if err := s.sessionRepo.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	if sessionUser != nil {
		s.notify(entity.AuthEvent{
			Type:      entity.AuthEventLogout,
			User:      sessionUser,
			Timestamp: time.Now(),
		})
		logger.Info().Str("username", sessionUser.Username).Msg("user logged out")
	}

	return nil
}

// GetCurrentUser возвращает пользователя по активной сессии
func (s *AuthService) GetCurrentUser(ctx context.Context, sessionID string) (*entity.SessionUser, error) {
	sessionUser, err := s.sessionRepo.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return sessionUser, nil
}

// MigrateLegacySessions переносит сессии старых форматов в текущий.
// Вызывается один раз при старте приложения.
func (s *AuthService) MigrateLegacySessions(ctx context.Context) (int, error) {
	migrated, err := s.sessionRepo.MigrateLegacySessions(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to migrate legacy sessions: %w", err)
	}

	if migrated > 0 {
		logger.Info().Int("count", migrated).Msg("legacy sessions migrated")
	}

	return migrated, nil
}

// Subscribe подписывает на события входа и выхода.
// Канал буферизован, медленный подписчик теряет события, но не блокирует вход.
func (s *AuthService) Subscribe() chan entity.AuthEvent {
	ch := make(chan entity.AuthEvent, 16)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()

	return ch
}

// Unsubscribe отписывает канал и закрывает его
func (s *AuthService) Unsubscribe(ch chan entity.AuthEvent) {
	s.mu.Lock()
	if _, ok := s.subscribers[ch]; ok {
		delete(s.subscribers, ch)
		close(ch)
	}
	s.mu.Unlock()
}

// openSession создает сессию в Redis и выпускает токен, привязанный к ней
func (s *AuthService) openSession(ctx context.Context, user *entity.User) (*entity.AuthResponse, error) {
	sessionID, err := util.GenerateSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session id: %w", err)
	}

	sessionUser := &entity.SessionUser{
		ID:       user.ID,
		Username: user.Username,
		FullName: user.FullName,
		Phone:    user.Phone,
		Email:    user.Email,
		Role:     user.Role,
		StoredAt: time.Now(),
	}

	if err := s.sessionRepo.Save(ctx, sessionID, sessionUser); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	token, err := s.tokenManager.GenerateToken(sessionID, user.ID, user.Username, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	s.notify(entity.AuthEvent{
		Type:      entity.AuthEventLogin,
		User:      sessionUser,
		Timestamp: time.Now(),
	})

	return &entity.AuthResponse{
		Success: true,
		User:    sessionUser,
		Token:   token,
	}, nil
}

// notify рассылает событие подписчикам без блокировки
func (s *AuthService) notify(event entity.AuthEvent) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for ch := range s.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}
