package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"farmershub/internal/app/hub/config"
	"farmershub/internal/app/hub/entity"
	"farmershub/internal/app/hub/infrastructure"
	"farmershub/internal/app/hub/repository"
	"farmershub/internal/app/hub/util"
	"farmershub/pkg/logger"
	"farmershub/pkg/metrics"

	"github.com/google/uuid"
)

// ReviewService обрабатывает мутации отзывов.
// Порядок операции фиксированный: валидация входа, затем проверка
// владения, затем изменение, затем сброс кеша и событие в Kafka.
// Проверка владения и изменение - два отдельных запроса, между ними
// отзыв может исчезнуть; это обрабатывается как обычный not found.
type ReviewService struct {
	reviewRepo    repository.ReviewRepository
	invalidator   RatingInvalidator
	kafkaProducer infrastructure.MessagePublisher
	validator     *util.InputValidator

	commentMinLength int
	commentMaxLength int
}

// NewReviewService создает новый сервис мутаций отзывов
func NewReviewService(
	reviewRepo repository.ReviewRepository,
	invalidator RatingInvalidator,
	kafkaProducer infrastructure.MessagePublisher,
	validator *util.InputValidator,
	cfg config.ReviewsConfig,
) *ReviewService {
	return &ReviewService{
		reviewRepo:       reviewRepo,
		invalidator:      invalidator,
		kafkaProducer:    kafkaProducer,
		validator:        validator,
		commentMinLength: cfg.CommentMinLength,
		commentMaxLength: cfg.CommentMaxLength,
	}
}

// SubmitReview создает новый отзыв
// Валидация выполняется до любых обращений к хранилищу
func (s *ReviewService) SubmitReview(ctx context.Context, user *entity.SessionUser, req *entity.SubmitReviewRequest) (*entity.Review, error) {
	listingID, err := uuid.Parse(req.ListingID)
	if err != nil {
		metrics.ReviewMutations.WithLabelValues("submit", "failed").Inc()
		return nil, ErrInvalidListingID
	}

	comment, err := s.validateReviewInput(req.Rating, req.Comment)
	if err != nil {
		metrics.ReviewMutations.WithLabelValues("submit", "failed").Inc()
		return nil, err
	}

	review := &entity.Review{
		ListingID: listingID,
		UserID:    user.ID,
		Rating:    req.Rating,
		Comment:   comment,
	}

	if err := s.reviewRepo.Create(ctx, review); err != nil {
		metrics.ReviewMutations.WithLabelValues("submit", "failed").Inc()
		if errors.Is(err, repository.ErrDuplicateReview) {
			return nil, ErrDuplicateReview
		}
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	metrics.ReviewMutations.WithLabelValues("submit", "success").Inc()
	s.invalidator.InvalidateListing(listingID)
	s.publishReviewEvent(ctx, "REVIEW_CREATED", review.ID, listingID, user.ID, review.Rating)

	return review, nil
}

// UpdateReview обновляет отзыв с проверкой владения
func (s *ReviewService) UpdateReview(ctx context.Context, user *entity.SessionUser, reviewID uuid.UUID, req *entity.UpdateReviewRequest) (*entity.Review, error) {
	comment, err := s.validateReviewInput(req.Rating, req.Comment)
	if err != nil {
		metrics.ReviewMutations.WithLabelValues("update", "failed").Inc()
		return nil, err
	}

	owner, err := s.getOwner(ctx, reviewID, "update")
	if err != nil {
		return nil, err
	}

	if owner.UserID != user.ID {
		metrics.ReviewMutations.WithLabelValues("update", "failed").Inc()
		return nil, ErrNotReviewOwner
	}

	updated, err := s.reviewRepo.Update(ctx, reviewID, req.Rating, comment)
	if err != nil {
		metrics.ReviewMutations.WithLabelValues("update", "failed").Inc()
		if errors.Is(err, repository.ErrReviewNotFound) {
			// Отзыв исчез между проверкой владения и изменением
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to update review: %w", err)
	}

	metrics.ReviewMutations.WithLabelValues("update", "success").Inc()
	s.invalidator.InvalidateListing(owner.ListingID)
	s.publishReviewEvent(ctx, "REVIEW_UPDATED", reviewID, owner.ListingID, user.ID, req.Rating)

	return updated, nil
}

// DeleteReview удаляет отзыв с проверкой владения
func (s *ReviewService) DeleteReview(ctx context.Context, user *entity.SessionUser, reviewID uuid.UUID) error {
	owner, err := s.getOwner(ctx, reviewID, "delete")
	if err != nil {
		return err
	}

	if owner.UserID != user.ID {
		metrics.ReviewMutations.WithLabelValues("delete", "failed").Inc()
		return ErrNotReviewOwner
	}

	if err := s.reviewRepo.Delete(ctx, reviewID); err != nil {
		metrics.ReviewMutations.WithLabelValues("delete", "failed").Inc()
		if errors.Is(err, repository.ErrReviewNotFound) {
			return ErrReviewNotFound
		}
		return fmt.Errorf("failed to delete review: %w", err)
	}

	metrics.ReviewMutations.WithLabelValues("delete", "success").Inc()
	s.invalidator.InvalidateListing(owner.ListingID)
	s.publishReviewEvent(ctx, "REVIEW_DELETED", reviewID, owner.ListingID, user.ID, 0)

	return nil
}

// AdminDeleteReview удаляет любой отзыв без проверки владения.
// Идентификатор объявления для сброса кеша передает вызывающая сторона.
func (s *ReviewService) AdminDeleteReview(ctx context.Context, reviewID, listingID uuid.UUID) error {
	if err := s.reviewRepo.Delete(ctx, reviewID); err != nil {
		metrics.ReviewMutations.WithLabelValues("admin_delete", "failed").Inc()
		if errors.Is(err, repository.ErrReviewNotFound) {
			return ErrReviewNotFound
		}
		return fmt.Errorf("failed to delete review: %w", err)
	}

	metrics.ReviewMutations.WithLabelValues("admin_delete", "success").Inc()
	s.invalidator.InvalidateListing(listingID)
	s.publishReviewEvent(ctx, "REVIEW_DELETED", reviewID, listingID, uuid.Nil, 0)

	return nil
}

// validateReviewInput проверяет рейтинг и комментарий.
// Комментарий санитизируется; пустой после очистки комментарий отбрасывается.
func (s *ReviewService) validateReviewInput(rating int, comment *string) (*string, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}

	if comment == nil {
		return nil, nil
	}

	cleaned := s.validator.Sanitize(*comment)
	if cleaned == "" {
		return nil, nil
	}

	// Границы считаются в символах: комментарии бывают арабскими
	length := utf8.RuneCountInString(cleaned)
	if s.commentMinLength > 0 && length < s.commentMinLength {
		return nil, ErrCommentTooShort
	}
	if length > s.commentMaxLength {
		return nil, ErrCommentTooLong
	}

	return &cleaned, nil
}

// getOwner получает срез владения отзывом перед мутацией
func (s *ReviewService) getOwner(ctx context.Context, reviewID uuid.UUID, operation string) (*entity.ReviewOwner, error) {
	owner, err := s.reviewRepo.GetOwner(ctx, reviewID)
	if err != nil {
		metrics.ReviewMutations.WithLabelValues(operation, "failed").Inc()
		if errors.Is(err, repository.ErrReviewNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to get review owner: %w", err)
	}

	return owner, nil
}

// publishReviewEvent отправляет событие об отзыве в Kafka
// Проблемы с Kafka не прерывают операцию: отзыв уже изменен
func (s *ReviewService) publishReviewEvent(ctx context.Context, eventType string, reviewID, listingID, userID uuid.UUID, rating int) {
	event := entity.ReviewEvent{
		EventType: eventType,
		ReviewID:  reviewID.String(),
		ListingID: listingID.String(),
		UserID:    userID.String(),
		Rating:    rating,
		Timestamp: time.Now(),
	}

	eventData, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Str("event_type", eventType).Msg("failed to marshal review event")
		return
	}

	if err := s.kafkaProducer.PublishMessage(ctx, event.ReviewID, eventData); err != nil {
		logger.Error().Err(err).Str("event_type", eventType).Msg("failed to publish review event")
	}
}
