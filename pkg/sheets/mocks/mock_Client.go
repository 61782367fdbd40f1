// Package mocks provides test doubles for the sheets client.
package mocks

import (
	"context"

	mock "github.com/stretchr/testify/mock"

	sheets "github.com/sells-group/towerdash/pkg/sheets"
)

// MockClient is a mock type for the Client interface.
type MockClient struct {
	mock.Mock
}

// GetValues provides a mock function with given fields: ctx, rawURL
func (_m *MockClient) GetValues(ctx context.Context, rawURL string) (*sheets.ValuesResponse, error) {
	ret := _m.Called(ctx, rawURL)

	if len(ret) == 0 {
		panic("no return value specified for GetValues")
	}

	var r0 *sheets.ValuesResponse
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string) (*sheets.ValuesResponse, error)); ok {
		return rf(ctx, rawURL)
	}
	if rf, ok := ret.Get(0).(func(context.Context, string) *sheets.ValuesResponse); ok {
		r0 = rf(ctx, rawURL)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*sheets.ValuesResponse)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, string) error); ok {
		r1 = rf(ctx, rawURL)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewMockClient creates a new instance of MockClient. It also registers a
// testing interface on the mock and a cleanup function to assert the mocks
// expectations.
func NewMockClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockClient {
	m := &MockClient{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
