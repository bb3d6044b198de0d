package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"farmershub/internal/app/hub/entity"
	"farmershub/internal/app/hub/render"
	"farmershub/internal/app/hub/service"
)

// ReviewHandler обслуживает чтения рейтингов и мутации отзывов.
// Чтения возвращают данные напрямую и деградируют до нулевых значений,
// мутации всегда отвечают конвертом MutationResponse.
type ReviewHandler struct {
	ratingService service.RatingServiceInterface
	reviewService service.ReviewServiceInterface
	validator     *validator.Validate
}

func NewReviewHandler(ratingService service.RatingServiceInterface, reviewService service.ReviewServiceInterface) *ReviewHandler {
	return &ReviewHandler{
		ratingService: ratingService,
		reviewService: reviewService,
		validator:     validator.New(),
	}
}

// GetRating возвращает сводку рейтинга объявления.
// Некорректный идентификатор не считается ошибкой: витрина получает
// нулевую сводку и продолжает работать.
func (h *ReviewHandler) GetRating(c *gin.Context) {
	listingID, err := uuid.Parse(c.Param("listing_id"))
	if err != nil {
		c.JSON(http.StatusOK, entity.EmptyRatingSummary(uuid.Nil))
		return
	}

	c.JSON(http.StatusOK, h.ratingService.GetRatingSummary(c.Request.Context(), listingID))
}

// GetRatingDisplay возвращает сводку рейтинга как готовый HTML-фрагмент
func (h *ReviewHandler) GetRatingDisplay(c *gin.Context) {
	listingID, err := uuid.Parse(c.Param("listing_id"))
	if err != nil {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(render.FormatSummary(nil)))
		return
	}

	summary := h.ratingService.GetRatingSummary(c.Request.Context(), listingID)
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(render.FormatSummary(summary)))
}

// renderedReviewPage - страница отзывов с готовыми HTML-карточками
type renderedReviewPage struct {
	entity.ReviewPageResponse
	Rendered []string `json:"rendered"`
}

// GetReviews возвращает страницу отзывов по объявлению.
// С параметром rendered=true к странице добавляются готовые HTML-карточки.
func (h *ReviewHandler) GetReviews(c *gin.Context) {
	listingID, err := uuid.Parse(c.Param("listing_id"))
	if err != nil {
		c.JSON(http.StatusOK, &entity.ReviewPageResponse{
			Reviews: []entity.ReviewWithAuthor{},
			Limit:   10,
			SortBy:  entity.SortNewest,
		})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	sortBy := entity.SortOrder(c.DefaultQuery("sort_by", string(entity.SortNewest)))

	page := h.ratingService.GetReviews(c.Request.Context(), listingID, limit, offset, sortBy)

	if c.Query("rendered") != "true" {
		c.JSON(http.StatusOK, page)
		return
	}

	// Эндпоинт публичный: пользователь в контексте есть только при наличии сессии
	user, _ := currentUser(c)
	cards := make([]string, 0, len(page.Reviews))
	for i := range page.Reviews {
		isOwn := user != nil && page.Reviews[i].UserID == user.ID
		cards = append(cards, render.FormatReviewCard(&page.Reviews[i], isOwn))
	}

	c.JSON(http.StatusOK, renderedReviewPage{
		ReviewPageResponse: *page,
		Rendered:           cards,
	})
}

// GetMyReview возвращает отзыв текущего пользователя на объявление.
// Отсутствие отзыва - обычный результат, возвращается null.
func (h *ReviewHandler) GetMyReview(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "Unauthorized",
			"message": "Unauthorized",
		})
		return
	}

	listingID, err := uuid.Parse(c.Param("listing_id"))
	if err != nil {
		c.JSON(http.StatusOK, nil)
		return
	}

	c.JSON(http.StatusOK, h.ratingService.GetUserReview(c.Request.Context(), user.ID, listingID))
}

// SubmitReview создает новый отзыв
func (h *ReviewHandler) SubmitReview(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, entity.MutationResponse{
			Success: false,
			Error:   "Unauthorized",
		})
		return
	}

	var req entity.SubmitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, entity.MutationResponse{
			Success: false,
			Error:   "Invalid request body",
		})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, entity.MutationResponse{
			Success: false,
			Error:   formatValidationError(err),
		})
		return
	}

	review, err := h.reviewService.SubmitReview(c.Request.Context(), user, &req)
	if err != nil {
		h.mutationError(c, err)
		return
	}

	c.JSON(http.StatusCreated, entity.MutationResponse{
		Success: true,
		Data:    review,
	})
}

// UpdateReview обновляет отзыв текущего пользователя
func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, entity.MutationResponse{
			Success: false,
			Error:   "Unauthorized",
		})
		return
	}

	reviewID, err := uuid.Parse(c.Param("review_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, entity.MutationResponse{
			Success: false,
			Error:   "Invalid review id",
		})
		return
	}

	var req entity.UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, entity.MutationResponse{
			Success: false,
			Error:   "Invalid request body",
		})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, entity.MutationResponse{
			Success: false,
			Error:   formatValidationError(err),
		})
		return
	}

	review, err := h.reviewService.UpdateReview(c.Request.Context(), user, reviewID, &req)
	if err != nil {
		h.mutationError(c, err)
		return
	}

	c.JSON(http.StatusOK, entity.MutationResponse{
		Success: true,
		Data:    review,
	})
}

// DeleteReview удаляет отзыв текущего пользователя
func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, entity.MutationResponse{
			Success: false,
			Error:   "Unauthorized",
		})
		return
	}

	reviewID, err := uuid.Parse(c.Param("review_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, entity.MutationResponse{
			Success: false,
			Error:   "Invalid review id",
		})
		return
	}

	if err := h.reviewService.DeleteReview(c.Request.Context(), user, reviewID); err != nil {
		h.mutationError(c, err)
		return
	}

	c.JSON(http.StatusOK, entity.MutationResponse{Success: true})
}

// GetAllReviews возвращает отзывы по всем объявлениям для панели администратора
func (h *ReviewHandler) GetAllReviews(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	c.JSON(http.StatusOK, h.ratingService.GetAllReviews(c.Request.Context(), limit, offset))
}

// AdminDeleteReview удаляет любой отзыв без проверки владения.
// Идентификатор объявления обязателен: по нему сбрасывается кеш рейтинга.
func (h *ReviewHandler) AdminDeleteReview(c *gin.Context) {
	reviewID, err := uuid.Parse(c.Param("review_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, entity.MutationResponse{
			Success: false,
			Error:   "Invalid review id",
		})
		return
	}

	listingID, err := uuid.Parse(c.Query("listing_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, entity.MutationResponse{
			Success: false,
			Error:   "Invalid listing id",
		})
		return
	}

	if err := h.reviewService.AdminDeleteReview(c.Request.Context(), reviewID, listingID); err != nil {
		h.mutationError(c, err)
		return
	}

	c.JSON(http.StatusOK, entity.MutationResponse{Success: true})
}

// mutationError сопоставляет ошибку бизнес-логики со статусом ответа
func (h *ReviewHandler) mutationError(c *gin.Context, err error) {
	switch {
	case service.IsValidationError(err):
		c.JSON(http.StatusBadRequest, entity.MutationResponse{
			Success: false,
			Error:   err.Error(),
		})
	case errors.Is(err, service.ErrNotReviewOwner):
		c.JSON(http.StatusForbidden, entity.MutationResponse{
			Success: false,
			Error:   "You can only modify your own reviews",
		})
	case errors.Is(err, service.ErrDuplicateReview):
		c.JSON(http.StatusConflict, entity.MutationResponse{
			Success: false,
			Error:   "You have already reviewed this product",
		})
	case errors.Is(err, service.ErrReviewNotFound):
		c.JSON(http.StatusNotFound, entity.MutationResponse{
			Success: false,
			Error:   "Review not found",
		})
	default:
		c.JSON(http.StatusInternalServerError, entity.MutationResponse{
			Success: false,
			Error:   "Review service is temporarily unavailable",
		})
	}
}

// formatValidationError превращает первую ошибку структурной валидации
// в короткое сообщение для клиента
func formatValidationError(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, fieldError := range validationErrors {
			return fieldError.Field() + " is " + fieldError.Tag()
		}
	}
	return "Validation failed"
}
