package service

import (
	"context"

	"farmershub/internal/app/hub/entity"

	"github.com/google/uuid"
)

// AuthServiceInterface определяет операции аутентификации
type AuthServiceInterface interface {
	Register(ctx context.Context, req *entity.RegisterRequest) (*entity.AuthResponse, error)
	Login(ctx context.Context, req *entity.LoginRequest) (*entity.AuthResponse, error)
	Logout(ctx context.Context, sessionID string) error
	GetCurrentUser(ctx context.Context, sessionID string) (*entity.SessionUser, error)
	MigrateLegacySessions(ctx context.Context) (int, error)
}

// RatingServiceInterface определяет читающие операции над отзывами.
// Чтения деградируют до нулевых значений и не возвращают ошибок наружу.
type RatingServiceInterface interface {
	GetRatingSummary(ctx context.Context, listingID uuid.UUID) *entity.RatingSummary
	GetReviews(ctx context.Context, listingID uuid.UUID, limit, offset int, sortBy entity.SortOrder) *entity.ReviewPageResponse
	GetUserReview(ctx context.Context, userID, listingID uuid.UUID) *entity.ReviewWithAuthor
	GetAllReviews(ctx context.Context, limit, offset int) []entity.ReviewWithAuthor
	InvalidateListing(listingID uuid.UUID)
}

// RatingInvalidator - узкий интерфейс сброса кеша рейтинга после мутаций
type RatingInvalidator interface {
	InvalidateListing(listingID uuid.UUID)
}

// ReviewServiceInterface определяет мутации отзывов
type ReviewServiceInterface interface {
	SubmitReview(ctx context.Context, user *entity.SessionUser, req *entity.SubmitReviewRequest) (*entity.Review, error)
	UpdateReview(ctx context.Context, user *entity.SessionUser, reviewID uuid.UUID, req *entity.UpdateReviewRequest) (*entity.Review, error)
	DeleteReview(ctx context.Context, user *entity.SessionUser, reviewID uuid.UUID) error
	AdminDeleteReview(ctx context.Context, reviewID, listingID uuid.UUID) error
}
