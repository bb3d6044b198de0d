package render

import (
	"fmt"
	"html"
	"math"
	"strings"

	"farmershub/internal/app/hub/entity"
)

// StarKind - вид одной звезды в отображении рейтинга
type StarKind string

const (
	StarFull  StarKind = "full"
	StarHalf  StarKind = "half"
	StarEmpty StarKind = "empty"
)

// Star - одна из пяти звезд отображения рейтинга.
// Index - позиция 1..5 для обработки кликов в интерактивном режиме, иначе 0.
type Star struct {
	Kind  StarKind
	Index int
}

// Пороги половинной звезды: дробная часть рейтинга в [0.3, 0.8)
// отображается половиной звезды. Константы дизайна, менять нельзя -
// от них зависит видимое округление.
const (
	halfStarLow  = 0.3
	halfStarHigh = 0.8
)

// StarGlyphs раскладывает рейтинг в ровно пять звезд: полные, затем
// не более одной половинной, затем пустые
func StarGlyphs(rating float64, interactive bool) []Star {
	fullStars := int(math.Floor(rating))
	frac := rating - math.Floor(rating)
	hasHalf := frac >= halfStarLow && frac < halfStarHigh
	emptyStars := 5 - fullStars
	if hasHalf {
		emptyStars--
	}

	stars := make([]Star, 0, 5)
	index := func(i int) int {
		if interactive {
			return i
		}
		return 0
	}

	for i := 0; i < fullStars; i++ {
		stars = append(stars, Star{Kind: StarFull, Index: index(len(stars) + 1)})
	}
	if hasHalf {
		stars = append(stars, Star{Kind: StarHalf, Index: index(len(stars) + 1)})
	}
	for i := 0; i < emptyStars; i++ {
		stars = append(stars, Star{Kind: StarEmpty, Index: index(len(stars) + 1)})
	}

	return stars
}

// EscapeText экранирует текст для безопасной вставки в разметку
func EscapeText(s string) string {
	return html.EscapeString(s)
}

// StarsHTML отрисовывает звезды рейтинга в HTML-фрагмент
func StarsHTML(rating float64, interactive bool) string {
	var b strings.Builder
	b.WriteString(`<span class="stars-container">`)

	for _, star := range StarGlyphs(rating, interactive) {
		switch star.Kind {
		case StarFull:
			writeStar(&b, "star-full", "★", star.Index)
		case StarHalf:
			writeStar(&b, "star-half", "⯪", star.Index)
		case StarEmpty:
			writeStar(&b, "star-empty", "☆", star.Index)
		}
	}

	b.WriteString(`</span>`)
	return b.String()
}

func writeStar(b *strings.Builder, class, glyph string, index int) {
	if index > 0 {
		fmt.Fprintf(b, `<span class="star %s" data-rating="%d">%s</span>`, class, index, glyph)
	} else {
		fmt.Fprintf(b, `<span class="star %s">%s</span>`, class, glyph)
	}
}

// FormatSummary отрисовывает сводку рейтинга для карточки товара.
// Процент округляется до целого только для отображения.
func FormatSummary(summary *entity.RatingSummary) string {
	if summary == nil || summary.TotalReviews == 0 {
		return `<div class="rating-display no-reviews">` +
			StarsHTML(0, false) +
			`<span class="rating-text">No reviews yet</span>` +
			`</div>`
	}

	percentage := int(math.Round(summary.RatingPercentage))

	return fmt.Sprintf(
		`<div class="rating-display">%s<span class="rating-text">%.1f <span class="rating-percentage">(%d%%)</span></span></div>`,
		StarsHTML(summary.AverageRating, false),
		summary.AverageRating,
		percentage,
	)
}

// FormatReviewCard отрисовывает карточку одного отзыва.
// Имя автора и комментарий экранируются, собственный отзыв получает кнопки действий.
func FormatReviewCard(review *entity.ReviewWithAuthor, isOwn bool) string {
	name := review.FullName
	if name == "" {
		name = review.Username
	}

	date := review.CreatedAt.Format("Jan 2, 2006")

	editedBadge := ""
	if review.IsEdited {
		editedBadge = `<span class="edited-badge" title="This review was edited">Edited</span>`
	}

	comment := ""
	if review.Comment != nil && *review.Comment != "" {
		comment = fmt.Sprintf(`<div class="review-comment">%s</div>`, EscapeText(*review.Comment))
	}

	actions := ""
	if isOwn {
		actions = fmt.Sprintf(
			`<div class="review-actions">`+
				`<button class="btn-review-edit" data-review-id="%s" data-listing-id="%s" title="Edit your review">Edit</button>`+
				`<button class="btn-review-delete" data-review-id="%s" title="Delete your review">Delete</button>`+
				`</div>`,
			review.ID, review.ListingID, review.ID,
		)
	}

	return fmt.Sprintf(
		`<div class="review-card" data-review-id="%s">`+
			`<div class="review-header">`+
			`<div class="review-user"><span class="review-username">%s</span>%s</div>`+
			`<div class="review-meta">%s<span class="review-date">%s</span></div>`+
			`</div>%s%s</div>`,
		review.ID,
		EscapeText(name),
		editedBadge,
		StarsHTML(float64(review.Rating), false),
		date,
		comment,
		actions,
	)
}
