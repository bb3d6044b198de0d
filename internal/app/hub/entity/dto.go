package entity

// RegisterRequest - запрос на регистрацию пользователя
type RegisterRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	FullName string `json:"full_name" validate:"required"`
	Email    string `json:"email" validate:"omitempty"`
	Phone    string `json:"phone" validate:"omitempty"`
}

// LoginRequest - запрос на вход
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse - ответ на успешную аутентификацию
type AuthResponse struct {
	Success bool         `json:"success"`
	User    *SessionUser `json:"user,omitempty"`
	Token   string       `json:"token,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// SubmitReviewRequest - запрос на создание отзыва
type SubmitReviewRequest struct {
	ListingID string  `json:"listing_id" validate:"required,uuid"`
	Rating    int     `json:"rating" validate:"required"`
	Comment   *string `json:"comment" validate:"omitempty"`
}

// UpdateReviewRequest - запрос на обновление отзыва
type UpdateReviewRequest struct {
	Rating  int     `json:"rating" validate:"required"`
	Comment *string `json:"comment" validate:"omitempty"`
}

// MutationResponse - единый конверт ответа для всех мутаций.
// Читающие эндпоинты возвращают данные напрямую и никогда не отдают этот конверт.
type MutationResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ReviewPageResponse - страница отзывов по объявлению
type ReviewPageResponse struct {
	Reviews []ReviewWithAuthor `json:"reviews"`
	Total   int                `json:"total"`
	Limit   int                `json:"limit"`
	Offset  int                `json:"offset"`
	SortBy  SortOrder          `json:"sort_by"`
}
