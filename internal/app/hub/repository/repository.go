package repository

import (
	"context"
	"errors"

	"farmershub/internal/app/hub/entity"

	"github.com/google/uuid"
)

var (
	// Стандартные ошибки репозитория для обработки в service layer
	ErrReviewNotFound  = errors.New("review not found")
	ErrDuplicateReview = errors.New("review already exists for this user and listing")
	ErrUserNotFound    = errors.New("user not found")
	ErrUserExists      = errors.New("user with this username already exists")
	ErrSessionNotFound = errors.New("session not found")
)

// UserRepository определяет методы для работы с таблицей verified_users
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
}

// ReviewRepository определяет доступ к удалённому хранилищу отзывов:
// читающие процедуры и операции над таблицей reviews
type ReviewRepository interface {
	FetchRatingSummary(ctx context.Context, listingID uuid.UUID) (*entity.RatingSummary, error)
	FetchReviewPage(ctx context.Context, listingID uuid.UUID, limit, offset int, sortBy entity.SortOrder) ([]entity.ReviewWithAuthor, error)
	FetchUserReview(ctx context.Context, userID, listingID uuid.UUID) (*entity.ReviewWithAuthor, error)
	FetchAll(ctx context.Context, limit, offset int) ([]entity.ReviewWithAuthor, error)
	Create(ctx context.Context, review *entity.Review) error
	GetOwner(ctx context.Context, reviewID uuid.UUID) (*entity.ReviewOwner, error)
	Update(ctx context.Context, reviewID uuid.UUID, rating int, comment *string) (*entity.Review, error)
	Delete(ctx context.Context, reviewID uuid.UUID) error
}

// SessionRepository определяет хранилище пользовательских сессий
type SessionRepository interface {
	Save(ctx context.Context, token string, user *entity.SessionUser) error
	Get(ctx context.Context, token string) (*entity.SessionUser, error)
	Delete(ctx context.Context, token string) error
	MigrateLegacySessions(ctx context.Context) (int, error)
}
