package handlers_test

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"

	"github.com/AndreiCalugar/FertiHub/internal/api/middleware"
	"github.com/AndreiCalugar/FertiHub/internal/models"
)

// MockEngagementService mocks services.IEngagementService.
type MockEngagementService struct {
	mock.Mock
}

func (m *MockEngagementService) RunFollowUpPass(ctx context.Context) (*models.FollowUpPassResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FollowUpPassResult), args.Error(1)
}

func (m *MockEngagementService) FollowUpInquiry(ctx context.Context, inquiryID, userID string, supplierIDs []string) (*models.FollowUpBatchResult, error) {
	args := m.Called(ctx, inquiryID, userID, supplierIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FollowUpBatchResult), args.Error(1)
}

func (m *MockEngagementService) SendInquiryEmails(ctx context.Context, inquiryID, userID string) (*models.FollowUpBatchResult, error) {
	args := m.Called(ctx, inquiryID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FollowUpBatchResult), args.Error(1)
}

func (m *MockEngagementService) CheckCompletion(ctx context.Context, inquiryID, userID string) (*models.CompletionResult, error) {
	args := m.Called(ctx, inquiryID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CompletionResult), args.Error(1)
}

func (m *MockEngagementService) RunDeadlineReminderPass(ctx context.Context) (*models.DeadlineReminderResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DeadlineReminderResult), args.Error(1)
}

// asUser injects an authenticated user ID the way the auth middleware would.
func asUser(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextKeyUserID, userID)
		c.Next()
	}
}
