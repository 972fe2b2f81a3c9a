package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"kidquest-server/internal/service"
)

// MockAIClient is a mock type for the AIClient type
type MockAIClient struct {
	mock.Mock
}

// GenerateText provides a mock function with given fields: ctx, userID, prompt, params
func (_m *MockAIClient) GenerateText(ctx context.Context, userID string, prompt string, params service.GenerationParams) (string, service.UsageInfo, error) {
	ret := _m.Called(ctx, userID, prompt, params)

	var r0 string
	if rf, ok := ret.Get(0).(func(context.Context, string, string, service.GenerationParams) string); ok {
		r0 = rf(ctx, userID, prompt, params)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(string)
		}
	}

	var r1 service.UsageInfo
	if ret.Get(1) != nil {
		r1 = ret.Get(1).(service.UsageInfo)
	}

	var r2 error
	if rf, ok := ret.Get(2).(func(context.Context, string, string, service.GenerationParams) error); ok {
		r2 = rf(ctx, userID, prompt, params)
	} else {
		r2 = ret.Error(2)
	}

	return r0, r1, r2
}

// NewMockAIClient creates a new instance of MockAIClient. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewMockAIClient(t interface {
	mock.TestingT
	Helper()
}) *MockAIClient {
	m := &MockAIClient{}
	m.Mock.Test(t)
	t.Helper()
	return m
}

var _ service.AIClient = (*MockAIClient)(nil)
