package handler

import (
	"context"
	"io"
	"os"
	"testing"

	"farmershub/internal/app/hub/entity"
	"farmershub/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

func TestMain(m *testing.M) {
	logger.InitWithWriter("test", "disabled", io.Discard)
	os.Exit(m.Run())
}

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, req *entity.RegisterRequest) (*entity.AuthResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.AuthResponse), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, req *entity.LoginRequest) (*entity.AuthResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.AuthResponse), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func (m *MockAuthService) GetCurrentUser(ctx context.Context, sessionID string) (*entity.SessionUser, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.SessionUser), args.Error(1)
}

func (m *MockAuthService) MigrateLegacySessions(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type MockRatingService struct {
	mock.Mock
}

func (m *MockRatingService) GetRatingSummary(ctx context.Context, listingID uuid.UUID) *entity.RatingSummary {
	args := m.Called(ctx, listingID)
	return args.Get(0).(*entity.RatingSummary)
}

func (m *MockRatingService) GetReviews(ctx context.Context, listingID uuid.UUID, limit, offset int, sortBy entity.SortOrder) *entity.ReviewPageResponse {
	args := m.Called(ctx, listingID, limit, offset, sortBy)
	return args.Get(0).(*entity.ReviewPageResponse)
}

func (m *MockRatingService) GetUserReview(ctx context.Context, userID, listingID uuid.UUID) *entity.ReviewWithAuthor {
	args := m.Called(ctx, userID, listingID)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*entity.ReviewWithAuthor)
}

func (m *MockRatingService) GetAllReviews(ctx context.Context, limit, offset int) []entity.ReviewWithAuthor {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]entity.ReviewWithAuthor)
}

func (m *MockRatingService) InvalidateListing(listingID uuid.UUID) {
	m.Called(listingID)
}

type MockReviewService struct {
	mock.Mock
}

func (m *MockReviewService) SubmitReview(ctx context.Context, user *entity.SessionUser, req *entity.SubmitReviewRequest) (*entity.Review, error) {
	args := m.Called(ctx, user, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Review), args.Error(1)
}

func (m *MockReviewService) UpdateReview(ctx context.Context, user *entity.SessionUser, reviewID uuid.UUID, req *entity.UpdateReviewRequest) (*entity.Review, error) {
	args := m.Called(ctx, user, reviewID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Review), args.Error(1)
}

func (m *MockReviewService) DeleteReview(ctx context.Context, user *entity.SessionUser, reviewID uuid.UUID) error {
	args := m.Called(ctx, user, reviewID)
	return args.Error(0)
}

func (m *MockReviewService) AdminDeleteReview(ctx context.Context, reviewID, listingID uuid.UUID) error {
	args := m.Called(ctx, reviewID, listingID)
	return args.Error(0)
}
