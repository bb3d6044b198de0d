package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"farmershub/internal/app/hub/entity"
	"farmershub/pkg/metrics"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const serviceName = "farmers-hub"

// Код PostgreSQL для нарушения ограничения уникальности
const pgUniqueViolation = "23505"

type reviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository создает новый репозиторий отзывов.
// Читающие вызовы идут через SQL-процедуры хранилища, мутации - через таблицу reviews.
func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

// ratingSummaryRow - строка результата процедуры get_listing_rating_summary
type ratingSummaryRow struct {
	ListingID        uuid.UUID `gorm:"column:listing_id"`
	AverageRating    float64   `gorm:"column:average_rating"`
	TotalReviews     int       `gorm:"column:total_reviews"`
	RatingPercentage float64   `gorm:"column:rating_percentage"`
	StarsBreakdown   []byte    `gorm:"column:stars_breakdown"`
}

// reviewRow - строка результата читающих процедур по отзывам
type reviewRow struct {
	ID        uuid.UUID `gorm:"column:id"`
	ListingID uuid.UUID `gorm:"column:listing_id"`
	UserID    uuid.UUID `gorm:"column:user_id"`
	Rating    int       `gorm:"column:rating"`
	Comment   *string   `gorm:"column:comment"`
	IsEdited  bool      `gorm:"column:is_edited"`
	CreatedAt time.Time `gorm:"column:created_at"`
	Username  string    `gorm:"column:username"`
	FullName  string    `gorm:"column:full_name"`
}

func (row *reviewRow) toEntity() entity.ReviewWithAuthor {
	return entity.ReviewWithAuthor{
		Review: entity.Review{
			ID:        row.ID,
			ListingID: row.ListingID,
			UserID:    row.UserID,
			Rating:    row.Rating,
			Comment:   row.Comment,
			IsEdited:  row.IsEdited,
			CreatedAt: row.CreatedAt,
		},
		Username: row.Username,
		FullName: row.FullName,
	}
}

// FetchRatingSummary вызывает процедуру агрегации рейтинга.
// Возвращает nil без ошибки, если по объявлению нет ни одного отзыва.
func (r *reviewRepository) FetchRatingSummary(ctx context.Context, listingID uuid.UUID) (*entity.RatingSummary, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, "get_listing_rating_summary")
	defer timer.ObserveDuration()

	var row ratingSummaryRow
	result := r.db.WithContext(ctx).
		Raw("SELECT listing_id, average_rating, total_reviews, rating_percentage, stars_breakdown FROM get_listing_rating_summary(?)", listingID).
		Scan(&row)

	if result.Error != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, fmt.Errorf("failed to fetch rating summary: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return nil, nil
	}

	breakdown, err := parseStarsBreakdown(row.StarsBreakdown)
	if err != nil {
		return nil, fmt.Errorf("failed to parse stars breakdown: %w", err)
	}

	return &entity.RatingSummary{
		ListingID:        row.ListingID,
		AverageRating:    row.AverageRating,
		TotalReviews:     row.TotalReviews,
		RatingPercentage: row.RatingPercentage,
		StarsBreakdown:   breakdown,
	}, nil
}

// FetchReviewPage вызывает процедуру постраничной выборки отзывов.
// Сортировка применяется на стороне хранилища.
func (r *reviewRepository) FetchReviewPage(ctx context.Context, listingID uuid.UUID, limit, offset int, sortBy entity.SortOrder) ([]entity.ReviewWithAuthor, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, "get_listing_reviews")
	defer timer.ObserveDuration()

	var rows []reviewRow
	result := r.db.WithContext(ctx).
		Raw("SELECT * FROM get_listing_reviews(?, ?, ?, ?)", listingID, limit, offset, string(sortBy)).
		Scan(&rows)

	if result.Error != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, fmt.Errorf("failed to fetch review page: %w", result.Error)
	}

	reviews := make([]entity.ReviewWithAuthor, 0, len(rows))
	for i := range rows {
		reviews = append(reviews, rows[i].toEntity())
	}

	return reviews, nil
}

// FetchUserReview возвращает отзыв конкретного пользователя на объявление
func (r *reviewRepository) FetchUserReview(ctx context.Context, userID, listingID uuid.UUID) (*entity.ReviewWithAuthor, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, "get_user_review_for_listing")
	defer timer.ObserveDuration()

	var rows []reviewRow
	result := r.db.WithContext(ctx).
		Raw("SELECT * FROM get_user_review_for_listing(?, ?)", userID, listingID).
		Scan(&rows)

	if result.Error != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, fmt.Errorf("failed to fetch user review: %w", result.Error)
	}

	if len(rows) == 0 {
		return nil, ErrReviewNotFound
	}

	review := rows[0].toEntity()
	return &review, nil
}

// FetchAll возвращает отзывы по всем объявлениям, новые первыми.
// Используется админской модерацией.
func (r *reviewRepository) FetchAll(ctx context.Context, limit, offset int) ([]entity.ReviewWithAuthor, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, "reviews")
	defer timer.ObserveDuration()

	var rows []reviewRow
	result := r.db.WithContext(ctx).
		Table("reviews AS r").
		Select("r.id, r.listing_id, r.user_id, r.rating, r.comment, r.is_edited, r.created_at, u.username, u.full_name").
		Joins("JOIN verified_users u ON u.id = r.user_id").
		Order("r.created_at DESC").
		Limit(limit).
		Offset(offset).
		Scan(&rows)

	if result.Error != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, fmt.Errorf("failed to fetch reviews: %w", result.Error)
	}

	reviews := make([]entity.ReviewWithAuthor, 0, len(rows))
	for i := range rows {
		reviews = append(reviews, rows[i].toEntity())
	}

	return reviews, nil
}

// Create создает новый отзыв. ID и created_at назначает хранилище.
// Нарушение уникальности (user_id, listing_id) транслируется в ErrDuplicateReview.
func (r *reviewRepository) Create(ctx context.Context, review *entity.Review) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpInsert, "reviews")
	defer timer.ObserveDuration()

	result := r.db.WithContext(ctx).Create(review)
	if result.Error != nil {
		var pgErr *pgconn.PgError
		if errors.As(result.Error, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrDuplicateReview
		}
		metrics.RecordDbError(serviceName, metrics.DbOpInsert)
		return fmt.Errorf("failed to create review: %w", result.Error)
	}

	return nil
}

// GetOwner возвращает user_id и listing_id отзыва для проверки владения
func (r *reviewRepository) GetOwner(ctx context.Context, reviewID uuid.UUID) (*entity.ReviewOwner, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, "reviews")
	defer timer.ObserveDuration()

	var owner entity.ReviewOwner
	result := r.db.WithContext(ctx).
		Table("reviews").
		Select("user_id, listing_id").
		Where("id = ?", reviewID).
		Take(&owner)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, fmt.Errorf("failed to get review owner: %w", result.Error)
	}

	return &owner, nil
}

// Update обновляет оценку и комментарий, помечая отзыв как отредактированный.
// Отзыв мог исчезнуть между проверкой владения и обновлением - тогда ErrReviewNotFound.
func (r *reviewRepository) Update(ctx context.Context, reviewID uuid.UUID, rating int, comment *string) (*entity.Review, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpUpdate, "reviews")
	defer timer.ObserveDuration()

	result := r.db.WithContext(ctx).
		Model(&entity.Review{}).
		Where("id = ?", reviewID).
		Updates(map[string]interface{}{
			"rating":    rating,
			"comment":   comment,
			"is_edited": true,
		})

	if result.Error != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpUpdate)
		return nil, fmt.Errorf("failed to update review: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return nil, ErrReviewNotFound
	}

	var review entity.Review
	if err := r.db.WithContext(ctx).Take(&review, "id = ?", reviewID).Error; err != nil {
		return nil, fmt.Errorf("failed to load updated review: %w", err)
	}

	return &review, nil
}

// Delete удаляет отзыв
func (r *reviewRepository) Delete(ctx context.Context, reviewID uuid.UUID) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpDelete, "reviews")
	defer timer.ObserveDuration()

	result := r.db.WithContext(ctx).Delete(&entity.Review{}, "id = ?", reviewID)
	if result.Error != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpDelete)
		return fmt.Errorf("failed to delete review: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrReviewNotFound
	}

	return nil
}

// parseStarsBreakdown разбирает JSONB-разбивку звезд из процедуры.
// Хранилище отдает ключи строками ("1".."5").
func parseStarsBreakdown(data []byte) (map[int]int, error) {
	breakdown := map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}
	if len(data) == 0 {
		return breakdown, nil
	}

	var raw map[string]int
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	for key, count := range raw {
		star, err := strconv.Atoi(key)
		if err != nil || star < 1 || star > 5 {
			continue
		}
		breakdown[star] = count
	}

	return breakdown, nil
}
