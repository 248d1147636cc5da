package service

import (
	domainservice "usersvc/internal/domain/service"

	"github.com/stretchr/testify/mock"
)

// MockTokenService is a testify mock with a typed expecter API.
type MockTokenService struct {
	mock.Mock
}

type MockTokenService_Expecter struct {
	mock *mock.Mock
}

func (_m *MockTokenService) EXPECT() *MockTokenService_Expecter {
	return &MockTokenService_Expecter{mock: &_m.Mock}
}

// GenerateAccessToken provides a mock function for the interface method.
func (_m *MockTokenService) GenerateAccessToken(userID uint64, username string) (string, error) {
	ret := _m.Called(userID, username)

	if len(ret) == 0 {
		panic("no return value specified for GenerateAccessToken")
	}

	if rf, ok := ret.Get(0).(func(uint64, string) (string, error)); ok {
		return rf(userID, username)
	}

	r0, _ := ret.Get(0).(string)

	return r0, ret.Error(1)
}

// MockTokenService_GenerateAccessToken_Call wraps mock.Call with typed helpers.
type MockTokenService_GenerateAccessToken_Call struct {
	*mock.Call
}

func (_e *MockTokenService_Expecter) GenerateAccessToken(userID interface{}, username interface{}) *MockTokenService_GenerateAccessToken_Call {
	return &MockTokenService_GenerateAccessToken_Call{Call: _e.mock.On("GenerateAccessToken", userID, username)}
}

func (_c *MockTokenService_GenerateAccessToken_Call) Run(run func(userID uint64, username string)) *MockTokenService_GenerateAccessToken_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(uint64), args[1].(string))
	})

	return _c
}

func (_c *MockTokenService_GenerateAccessToken_Call) Return(_a0 string, _a1 error) *MockTokenService_GenerateAccessToken_Call {
	_c.Call.Return(_a0, _a1)

	return _c
}

func (_c *MockTokenService_GenerateAccessToken_Call) RunAndReturn(run func(uint64, string) (string, error)) *MockTokenService_GenerateAccessToken_Call {
	_c.Call.Return(run)

	return _c
}

// ValidateToken provides a mock function for the interface method.
func (_m *MockTokenService) ValidateToken(tokenString string) (*domainservice.Claims, error) {
	ret := _m.Called(tokenString)

	if len(ret) == 0 {
		panic("no return value specified for ValidateToken")
	}

	if rf, ok := ret.Get(0).(func(string) (*domainservice.Claims, error)); ok {
		return rf(tokenString)
	}

	r0, _ := ret.Get(0).(*domainservice.Claims)

	return r0, ret.Error(1)
}

// MockTokenService_ValidateToken_Call wraps mock.Call with typed helpers.
type MockTokenService_ValidateToken_Call struct {
	*mock.Call
}

func (_e *MockTokenService_Expecter) ValidateToken(tokenString interface{}) *MockTokenService_ValidateToken_Call {
	return &MockTokenService_ValidateToken_Call{Call: _e.mock.On("ValidateToken", tokenString)}
}

func (_c *MockTokenService_ValidateToken_Call) Run(run func(tokenString string)) *MockTokenService_ValidateToken_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(string))
	})

	return _c
}

func (_c *MockTokenService_ValidateToken_Call) Return(_a0 *domainservice.Claims, _a1 error) *MockTokenService_ValidateToken_Call {
	_c.Call.Return(_a0, _a1)

	return _c
}

func (_c *MockTokenService_ValidateToken_Call) RunAndReturn(run func(string) (*domainservice.Claims, error)) *MockTokenService_ValidateToken_Call {
	_c.Call.Return(run)

	return _c
}

// NewMockTokenService registers a cleanup that asserts every expectation was met.
func NewMockTokenService(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockTokenService {
	m := &MockTokenService{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
