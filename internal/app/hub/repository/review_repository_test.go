package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"farmershub/internal/app/hub/entity"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// ReviewRepositoryTestSuite тестовый suite для PostgreSQL repository
type ReviewRepositoryTestSuite struct {
	suite.Suite
	db    *gorm.DB
	mock  sqlmock.Sqlmock
	repo  ReviewRepository
	sqlDB *sql.DB
}

func TestReviewRepositorySuite(t *testing.T) {
	suite.Run(t, new(ReviewRepositoryTestSuite))
}

func (s *ReviewRepositoryTestSuite) SetupTest() {
	var err error
	s.sqlDB, s.mock, err = sqlmock.New()
	require.NoError(s.T(), err)

	dialector := postgres.New(postgres.Config{
		Conn:       s.sqlDB,
		DriverName: "postgres",
	})

	s.db, err = gorm.Open(dialector, &gorm.Config{})
	require.NoError(s.T(), err)

	s.repo = NewReviewRepository(s.db)
}

func (s *ReviewRepositoryTestSuite) TearDownTest() {
	s.sqlDB.Close()
}

// ===================== FetchRatingSummary Tests =====================

func (s *ReviewRepositoryTestSuite) TestFetchRatingSummary_Success() {
	ctx := context.Background()
	listingID := uuid.New()

	rows := sqlmock.NewRows([]string{"listing_id", "average_rating", "total_reviews", "rating_percentage", "stars_breakdown"}).
		AddRow(listingID, 4.4, 5, 88.0, []byte(`{"5": 3, "4": 1, "3": 1}`))

	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT listing_id, average_rating, total_reviews, rating_percentage, stars_breakdown FROM get_listing_rating_summary($1)`)).
		WithArgs(listingID).
		WillReturnRows(rows)

	summary, err := s.repo.FetchRatingSummary(ctx, listingID)

	s.NoError(err)
	s.NotNil(summary)
	s.Equal(4.4, summary.AverageRating)
	s.Equal(5, summary.TotalReviews)
	s.Equal(88.0, summary.RatingPercentage)
	// Отсутствующие звезды заполняются нулями
	s.Equal(map[int]int{5: 3, 4: 1, 3: 1, 2: 0, 1: 0}, summary.StarsBreakdown)

	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *ReviewRepositoryTestSuite) TestFetchRatingSummary_NoReviews() {
	ctx := context.Background()
	listingID := uuid.New()

	rows := sqlmock.NewRows([]string{"listing_id", "average_rating", "total_reviews", "rating_percentage", "stars_breakdown"})

	s.mock.ExpectQuery(regexp.QuoteMeta(`FROM get_listing_rating_summary($1)`)).
		WithArgs(listingID).
		WillReturnRows(rows)

	summary, err := s.repo.FetchRatingSummary(ctx, listingID)

	s.NoError(err)
	s.Nil(summary)

	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *ReviewRepositoryTestSuite) TestFetchRatingSummary_DBError() {
	ctx := context.Background()
	listingID := uuid.New()

	s.mock.ExpectQuery(regexp.QuoteMeta(`FROM get_listing_rating_summary($1)`)).
		WithArgs(listingID).
		WillReturnError(sql.ErrConnDone)

	summary, err := s.repo.FetchRatingSummary(ctx, listingID)

	s.Error(err)
	s.Nil(summary)
	s.Contains(err.Error(), "failed to fetch rating summary")

	s.NoError(s.mock.ExpectationsWereMet())
}

// ===================== FetchReviewPage Tests =====================

func (s *ReviewRepositoryTestSuite) TestFetchReviewPage_Success() {
	ctx := context.Background()
	listingID := uuid.New()
	createdAt := time.Now()

	rows := sqlmock.NewRows([]string{"id", "listing_id", "user_id", "rating", "comment", "is_edited", "created_at", "username", "full_name"}).
		AddRow(uuid.New(), listingID, uuid.New(), 5, "Fresh and tasty", false, createdAt, "farmer_ali", "Ali Hassan").
		AddRow(uuid.New(), listingID, uuid.New(), 3, nil, true, createdAt, "buyer_omar", "Omar Said")

	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM get_listing_reviews($1, $2, $3, $4)`)).
		WithArgs(listingID, 10, 0, "newest").
		WillReturnRows(rows)

	reviews, err := s.repo.FetchReviewPage(ctx, listingID, 10, 0, entity.SortNewest)

	s.NoError(err)
	s.Len(reviews, 2)
	s.Equal("farmer_ali", reviews[0].Username)
	s.NotNil(reviews[0].Comment)
	s.Nil(reviews[1].Comment)
	s.True(reviews[1].IsEdited)

	s.NoError(s.mock.ExpectationsWereMet())
}

// ===================== FetchUserReview Tests =====================

func (s *ReviewRepositoryTestSuite) TestFetchUserReview_Success() {
	ctx := context.Background()
	userID := uuid.New()
	listingID := uuid.New()

	rows := sqlmock.NewRows([]string{"id", "listing_id", "user_id", "rating", "comment", "is_edited", "created_at", "username", "full_name"}).
		AddRow(uuid.New(), listingID, userID, 4, "Good", false, time.Now(), "farmer_ali", "Ali Hassan")

	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM get_user_review_for_listing($1, $2)`)).
		WithArgs(userID, listingID).
		WillReturnRows(rows)

	review, err := s.repo.FetchUserReview(ctx, userID, listingID)

	s.NoError(err)
	s.NotNil(review)
	s.Equal(userID, review.UserID)

	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *ReviewRepositoryTestSuite) TestFetchUserReview_NotFound() {
	ctx := context.Background()
	userID := uuid.New()
	listingID := uuid.New()

	rows := sqlmock.NewRows([]string{"id", "listing_id", "user_id", "rating", "comment", "is_edited", "created_at", "username", "full_name"})

	s.mock.ExpectQuery(regexp.QuoteMeta(`FROM get_user_review_for_listing($1, $2)`)).
		WithArgs(userID, listingID).
		WillReturnRows(rows)

	review, err := s.repo.FetchUserReview(ctx, userID, listingID)

	s.ErrorIs(err, ErrReviewNotFound)
	s.Nil(review)

	s.NoError(s.mock.ExpectationsWereMet())
}

// ===================== Create Tests =====================

func (s *ReviewRepositoryTestSuite) TestCreate_DuplicateReview() {
	ctx := context.Background()

	review := &entity.Review{
		ListingID: uuid.New(),
		UserID:    uuid.New(),
		Rating:    5,
	}

	s.mock.ExpectBegin()
	s.mock.ExpectQuery(`INSERT INTO "reviews"`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "reviews_user_id_listing_id_key"})
	s.mock.ExpectRollback()

	err := s.repo.Create(ctx, review)

	s.ErrorIs(err, ErrDuplicateReview)

	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *ReviewRepositoryTestSuite) TestCreate_DBError() {
	ctx := context.Background()

	review := &entity.Review{
		ListingID: uuid.New(),
		UserID:    uuid.New(),
		Rating:    4,
	}

	s.mock.ExpectBegin()
	s.mock.ExpectQuery(`INSERT INTO "reviews"`).
		WillReturnError(sql.ErrConnDone)
	s.mock.ExpectRollback()

	err := s.repo.Create(ctx, review)

	s.Error(err)
	s.NotErrorIs(err, ErrDuplicateReview)
	s.Contains(err.Error(), "failed to create review")

	s.NoError(s.mock.ExpectationsWereMet())
}

// ===================== GetOwner Tests =====================

func (s *ReviewRepositoryTestSuite) TestGetOwner_Success() {
	ctx := context.Background()
	reviewID := uuid.New()
	userID := uuid.New()
	listingID := uuid.New()

	rows := sqlmock.NewRows([]string{"user_id", "listing_id"}).
		AddRow(userID, listingID)

	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT user_id, listing_id FROM "reviews" WHERE id =`)).
		WillReturnRows(rows)

	owner, err := s.repo.GetOwner(ctx, reviewID)

	s.NoError(err)
	s.Equal(userID, owner.UserID)
	s.Equal(listingID, owner.ListingID)

	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *ReviewRepositoryTestSuite) TestGetOwner_NotFound() {
	ctx := context.Background()
	reviewID := uuid.New()

	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT user_id, listing_id FROM "reviews" WHERE id =`)).
		WillReturnError(gorm.ErrRecordNotFound)

	owner, err := s.repo.GetOwner(ctx, reviewID)

	s.ErrorIs(err, ErrReviewNotFound)
	s.Nil(owner)

	s.NoError(s.mock.ExpectationsWereMet())
}

// ===================== Update Tests =====================

func (s *ReviewRepositoryTestSuite) TestUpdate_RowVanished() {
	ctx := context.Background()
	reviewID := uuid.New()

	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta(`UPDATE "reviews" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 0)) // 0 rows affected
	s.mock.ExpectCommit()

	review, err := s.repo.Update(ctx, reviewID, 3, nil)

	s.ErrorIs(err, ErrReviewNotFound)
	s.Nil(review)

	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *ReviewRepositoryTestSuite) TestUpdate_Success() {
	ctx := context.Background()
	reviewID := uuid.New()
	listingID := uuid.New()
	userID := uuid.New()

	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta(`UPDATE "reviews" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectCommit()

	reloaded := sqlmock.NewRows([]string{"id", "listing_id", "user_id", "rating", "comment", "is_edited", "created_at"}).
		AddRow(reviewID, listingID, userID, 3, nil, true, time.Now())

	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "reviews" WHERE id =`)).
		WillReturnRows(reloaded)

	review, err := s.repo.Update(ctx, reviewID, 3, nil)

	s.NoError(err)
	s.NotNil(review)
	s.True(review.IsEdited)
	s.Equal(3, review.Rating)

	s.NoError(s.mock.ExpectationsWereMet())
}

// ===================== Delete Tests =====================

func (s *ReviewRepositoryTestSuite) TestDelete_Success() {
	ctx := context.Background()
	reviewID := uuid.New()

	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "reviews" WHERE id =`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	s.mock.ExpectCommit()

	s.NoError(s.repo.Delete(ctx, reviewID))
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *ReviewRepositoryTestSuite) TestDelete_NotFound() {
	ctx := context.Background()
	reviewID := uuid.New()

	s.mock.ExpectBegin()
	s.mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "reviews" WHERE id =`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	s.mock.ExpectCommit()

	s.ErrorIs(s.repo.Delete(ctx, reviewID), ErrReviewNotFound)
	s.NoError(s.mock.ExpectationsWereMet())
}

// ===================== parseStarsBreakdown Tests =====================

func TestParseStarsBreakdown(t *testing.T) {
	breakdown, err := parseStarsBreakdown([]byte(`{"5": 3, "4": 1, "1": 2}`))
	require.NoError(t, err)
	assert.Equal(t, map[int]int{5: 3, 4: 1, 3: 0, 2: 0, 1: 2}, breakdown)

	// Пустая разбивка дает нулевую форму
	breakdown, err = parseStarsBreakdown(nil)
	require.NoError(t, err)
	assert.Equal(t, map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}, breakdown)

	// Ключи вне диапазона 1..5 игнорируются
	breakdown, err = parseStarsBreakdown([]byte(`{"7": 9, "5": 1}`))
	require.NoError(t, err)
	assert.Equal(t, 1, breakdown[5])

	_, err = parseStarsBreakdown([]byte(`not-json`))
	assert.Error(t, err)
}
