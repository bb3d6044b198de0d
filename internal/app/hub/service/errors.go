package service

import "errors"

var (
	// Ошибки бизнес-логики для обработки в handlers.
	// Каждая ошибка соответствует своей категории: валидация входных данных,
	// права доступа, дубликат, отсутствие записи, отказ внешнего сервиса.
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountInactive    = errors.New("account is deactivated")
	ErrUserExists         = errors.New("user with this username already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrSessionNotFound    = errors.New("session not found or expired")

	ErrInvalidRating    = errors.New("rating must be between 1 and 5")
	ErrInvalidListingID = errors.New("invalid listing id")
	ErrCommentTooShort  = errors.New("comment is too short")
	ErrCommentTooLong   = errors.New("comment is too long")
	ErrDuplicateReview  = errors.New("you have already reviewed this product")
	ErrReviewNotFound   = errors.New("review not found")
	ErrNotReviewOwner   = errors.New("you can only modify your own reviews")
	ErrReviewService    = errors.New("review service is temporarily unavailable")
)

// ValidationError - ошибка валидации формы с сообщениями по полям.
// Проверка выполняется до любых обращений к внешним сервисам.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	for _, msg := range e.Fields {
		return msg
	}
	return "validation failed"
}

// IsValidationError проверяет, относится ли ошибка к категории валидации
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve) ||
		errors.Is(err, ErrInvalidRating) ||
		errors.Is(err, ErrInvalidListingID) ||
		errors.Is(err, ErrCommentTooShort) ||
		errors.Is(err, ErrCommentTooLong)
}
