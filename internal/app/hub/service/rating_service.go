package service

import (
	"context"
	"errors"

	"farmershub/internal/app/hub/cache"
	"farmershub/internal/app/hub/entity"
	"farmershub/internal/app/hub/repository"
	"farmershub/pkg/logger"
	"farmershub/pkg/metrics"

	"github.com/google/uuid"
)

const serviceName = "farmers-hub"

// Значения пагинации по умолчанию для страницы отзывов
const (
	defaultReviewLimit   = 10
	defaultAdminPageSize = 50
)

// RatingService отвечает за чтение рейтингов и отзывов.
// Сводка рейтинга кешируется с коротким TTL, страницы отзывов и
// отзыв пользователя читаются напрямую. Любой отказ хранилища
// деградирует до нулевых значений: витрина не должна падать из-за отзывов.
type RatingService struct {
	reviewRepo repository.ReviewRepository
	summaries  *cache.TTLCache[uuid.UUID, *entity.RatingSummary]
}

// NewRatingService создает новый сервис чтения рейтингов
func NewRatingService(
	reviewRepo repository.ReviewRepository,
	summaries *cache.TTLCache[uuid.UUID, *entity.RatingSummary],
) *RatingService {
	return &RatingService{
		reviewRepo: reviewRepo,
		summaries:  summaries,
	}
}

// GetRatingSummary возвращает сводку рейтинга объявления.
// Сначала проверяется кеш; результат неудачного похода в хранилище
// не кешируется, чтобы следующий запрос повторил попытку.
func (s *RatingService) GetRatingSummary(ctx context.Context, listingID uuid.UUID) *entity.RatingSummary {
	if summary, ok := s.summaries.Get(listingID); ok {
		metrics.RecordCacheHit(serviceName)
		return summary
	}
	metrics.RecordCacheMiss(serviceName)

	summary, err := s.reviewRepo.FetchRatingSummary(ctx, listingID)
	if err != nil {
		logger.Error().Err(err).Str("listing_id", listingID.String()).Msg("failed to fetch rating summary")
		return entity.EmptyRatingSummary(listingID)
	}
	if summary == nil {
		// Объявление без отзывов: это валидный результат, его можно кешировать
		summary = entity.EmptyRatingSummary(listingID)
	}

	s.summaries.Put(listingID, summary)

	return summary
}

// GetReviews возвращает страницу отзывов по объявлению.
// Неподдерживаемые параметры заменяются значениями по умолчанию.
func (s *RatingService) GetReviews(ctx context.Context, listingID uuid.UUID, limit, offset int, sortBy entity.SortOrder) *entity.ReviewPageResponse {
	if limit <= 0 {
		limit = defaultReviewLimit
	}
	if offset < 0 {
		offset = 0
	}
	if !sortBy.Valid() {
		sortBy = entity.SortNewest
	}

	page := &entity.ReviewPageResponse{
		Reviews: []entity.ReviewWithAuthor{},
		Limit:   limit,
		Offset:  offset,
		SortBy:  sortBy,
	}

	reviews, err := s.reviewRepo.FetchReviewPage(ctx, listingID, limit, offset, sortBy)
	if err != nil {
		logger.Error().Err(err).Str("listing_id", listingID.String()).Msg("failed to fetch reviews")
		return page
	}

	page.Reviews = reviews
	// Общее число отзывов объявления, не размер страницы.
	// Берется из сводки рейтинга, обычно это попадание в кеш.
	page.Total = s.GetRatingSummary(ctx, listingID).TotalReviews

	return page
}

// GetUserReview возвращает отзыв пользователя на объявление, если он есть.
// Результат не кешируется: пользователь должен сразу видеть свои изменения.
func (s *RatingService) GetUserReview(ctx context.Context, userID, listingID uuid.UUID) *entity.ReviewWithAuthor {
	review, err := s.reviewRepo.FetchUserReview(ctx, userID, listingID)
	if err != nil {
		if !errors.Is(err, repository.ErrReviewNotFound) {
			logger.Error().Err(err).Str("listing_id", listingID.String()).Msg("failed to fetch user review")
		}
		return nil
	}

	return review
}

// GetAllReviews возвращает отзывы по всем объявлениям для панели администратора
func (s *RatingService) GetAllReviews(ctx context.Context, limit, offset int) []entity.ReviewWithAuthor {
	if limit <= 0 {
		limit = defaultAdminPageSize
	}
	if offset < 0 {
		offset = 0
	}

	reviews, err := s.reviewRepo.FetchAll(ctx, limit, offset)
	if err != nil {
		logger.Error().Err(err).Msg("failed to fetch all reviews")
		return []entity.ReviewWithAuthor{}
	}

	return reviews
}

// InvalidateListing сбрасывает кешированную сводку рейтинга объявления.
// Вызывается после каждой успешной мутации отзыва.
func (s *RatingService) InvalidateListing(listingID uuid.UUID) {
	s.summaries.Invalidate(listingID)
	metrics.RecordCacheInvalidation(serviceName)
}
