package entity

import (
	"time"

	"github.com/google/uuid"
)

// User - запись пользователя из таблицы verified_users
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	FullName     string    `json:"full_name"`
	Phone        *string   `json:"phone,omitempty"`
	Email        *string   `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"` // user или admin
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// SessionUser - нормализованный снимок пользователя, хранимый в сессии
type SessionUser struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	FullName string    `json:"full_name"`
	Phone    *string   `json:"phone,omitempty"`
	Email    *string   `json:"email,omitempty"`
	Role     string    `json:"role"`
	StoredAt time.Time `json:"stored_at"`
}

// IsAdmin проверяет, имеет ли пользователь права администратора
func (u *SessionUser) IsAdmin() bool {
	return u.Role == "admin"
}

// Review - отзыв пользователя на объявление
// Уникальность пары (user_id, listing_id) обеспечивается ограничением в БД
type Review struct {
	ID        uuid.UUID `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	ListingID uuid.UUID `json:"listing_id" gorm:"type:uuid;not null"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null"`
	Rating    int       `json:"rating" gorm:"not null"`
	Comment   *string   `json:"comment,omitempty"`
	IsEdited  bool      `json:"is_edited" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (Review) TableName() string {
	return "reviews"
}

// ReviewOwner - срез отзыва для проверки владения перед изменением
type ReviewOwner struct {
	UserID    uuid.UUID `gorm:"column:user_id"`
	ListingID uuid.UUID `gorm:"column:listing_id"`
}

// ReviewWithAuthor - отзыв с данными автора, как его возвращают читающие процедуры
type ReviewWithAuthor struct {
	Review
	Username string `json:"username"`
	FullName string `json:"full_name"`
}

// RatingSummary - агрегированная сводка рейтинга объявления
// Не хранится локально, вычисляется процедурой get_listing_rating_summary
type RatingSummary struct {
	ListingID        uuid.UUID   `json:"listing_id"`
	AverageRating    float64     `json:"average_rating"`
	TotalReviews     int         `json:"total_reviews"`
	RatingPercentage float64     `json:"rating_percentage"`
	StarsBreakdown   map[int]int `json:"stars_breakdown"`
}

// EmptyRatingSummary возвращает сводку для объявления без отзывов.
// Инвариант: при total_reviews == 0 средний рейтинг и разбивка нулевые.
func EmptyRatingSummary(listingID uuid.UUID) *RatingSummary {
	return &RatingSummary{
		ListingID:        listingID,
		AverageRating:    0,
		TotalReviews:     0,
		RatingPercentage: 0,
		StarsBreakdown:   map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0},
	}
}

// SortOrder - порядок сортировки страницы отзывов
type SortOrder string

const (
	SortNewest  SortOrder = "newest"
	SortHighest SortOrder = "highest"
	SortLowest  SortOrder = "lowest"
)

// Valid проверяет, что порядок сортировки один из поддерживаемых
func (s SortOrder) Valid() bool {
	switch s {
	case SortNewest, SortHighest, SortLowest:
		return true
	}
	return false
}

// ReviewEvent - событие об изменении отзыва для Kafka
type ReviewEvent struct {
	EventType string    `json:"event_type"` // REVIEW_CREATED, REVIEW_UPDATED, REVIEW_DELETED
	ReviewID  string    `json:"review_id"`
	ListingID string    `json:"listing_id"`
	UserID    string    `json:"user_id"`
	Rating    int       `json:"rating,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// AuthEventType - тип события изменения состояния аутентификации
type AuthEventType string

const (
	AuthEventLogin  AuthEventType = "login"
	AuthEventLogout AuthEventType = "logout"
)

// AuthEvent - событие изменения состояния аутентификации.
// Доставляется подписчикам через явный канал вместо глобальной шины событий.
type AuthEvent struct {
	Type      AuthEventType `json:"type"`
	User      *SessionUser  `json:"user,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}
