package repository

import (
	domainrepo "usersvc/internal/domain/repository"

	"github.com/stretchr/testify/mock"
)

// MockRepositoryFactory is a testify mock with a typed expecter API.
type MockRepositoryFactory struct {
	mock.Mock
}

type MockRepositoryFactory_Expecter struct {
	mock *mock.Mock
}

func (_m *MockRepositoryFactory) EXPECT() *MockRepositoryFactory_Expecter {
	return &MockRepositoryFactory_Expecter{mock: &_m.Mock}
}

// UserRepo provides a mock function for the interface method.
func (_m *MockRepositoryFactory) UserRepo() domainrepo.UserRepository {
	ret := _m.Called()

	if len(ret) == 0 {
		panic("no return value specified for UserRepo")
	}

	if rf, ok := ret.Get(0).(func() domainrepo.UserRepository); ok {
		return rf()
	}

	r0, _ := ret.Get(0).(domainrepo.UserRepository)

	return r0
}

// MockRepositoryFactory_UserRepo_Call wraps mock.Call with typed helpers.
type MockRepositoryFactory_UserRepo_Call struct {
	*mock.Call
}

func (_e *MockRepositoryFactory_Expecter) UserRepo() *MockRepositoryFactory_UserRepo_Call {
	return &MockRepositoryFactory_UserRepo_Call{Call: _e.mock.On("UserRepo")}
}

func (_c *MockRepositoryFactory_UserRepo_Call) Run(run func()) *MockRepositoryFactory_UserRepo_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run()
	})

	return _c
}

func (_c *MockRepositoryFactory_UserRepo_Call) Return(_a0 domainrepo.UserRepository) *MockRepositoryFactory_UserRepo_Call {
	_c.Call.Return(_a0)

	return _c
}

func (_c *MockRepositoryFactory_UserRepo_Call) RunAndReturn(run func() domainrepo.UserRepository) *MockRepositoryFactory_UserRepo_Call {
	_c.Call.Return(run)

	return _c
}

// NewMockRepositoryFactory registers a cleanup that asserts every expectation was met.
func NewMockRepositoryFactory(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockRepositoryFactory {
	m := &MockRepositoryFactory{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
