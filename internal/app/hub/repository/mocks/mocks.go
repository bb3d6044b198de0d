package mocks

import (
	"context"

	"farmershub/internal/app/hub/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockReviewRepository мок для ReviewRepository
type MockReviewRepository struct {
	mock.Mock
}

func (m *MockReviewRepository) FetchRatingSummary(ctx context.Context, listingID uuid.UUID) (*entity.RatingSummary, error) {
	args := m.Called(ctx, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.RatingSummary), args.Error(1)
}

func (m *MockReviewRepository) FetchReviewPage(ctx context.Context, listingID uuid.UUID, limit, offset int, sortBy entity.SortOrder) ([]entity.ReviewWithAuthor, error) {
	args := m.Called(ctx, listingID, limit, offset, sortBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.ReviewWithAuthor), args.Error(1)
}

func (m *MockReviewRepository) FetchUserReview(ctx context.Context, userID, listingID uuid.UUID) (*entity.ReviewWithAuthor, error) {
	args := m.Called(ctx, userID, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ReviewWithAuthor), args.Error(1)
}

func (m *MockReviewRepository) FetchAll(ctx context.Context, limit, offset int) ([]entity.ReviewWithAuthor, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.ReviewWithAuthor), args.Error(1)
}

func (m *MockReviewRepository) Create(ctx context.Context, review *entity.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *MockReviewRepository) GetOwner(ctx context.Context, reviewID uuid.UUID) (*entity.ReviewOwner, error) {
	args := m.Called(ctx, reviewID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ReviewOwner), args.Error(1)
}

func (m *MockReviewRepository) Update(ctx context.Context, reviewID uuid.UUID, rating int, comment *string) (*entity.Review, error) {
	args := m.Called(ctx, reviewID, rating, comment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Review), args.Error(1)
}

func (m *MockReviewRepository) Delete(ctx context.Context, reviewID uuid.UUID) error {
	args := m.Called(ctx, reviewID)
	return args.Error(0)
}

// MockUserRepository мок для UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *entity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

// MockSessionRepository мок для SessionRepository
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Save(ctx context.Context, token string, user *entity.SessionUser) error {
	args := m.Called(ctx, token, user)
	return args.Error(0)
}

func (m *MockSessionRepository) Get(ctx context.Context, token string) (*entity.SessionUser, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.SessionUser), args.Error(1)
}

func (m *MockSessionRepository) Delete(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockSessionRepository) MigrateLegacySessions(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// MockMessagePublisher мок для Kafka MessagePublisher
type MockMessagePublisher struct {
	mock.Mock
	Messages [][]byte
}

func (m *MockMessagePublisher) PublishMessage(ctx context.Context, key string, value []byte) error {
	m.Messages = append(m.Messages, value)
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockMessagePublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}
