package repository

import (
	"context"

	"usersvc/internal/domain/entity"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a testify mock with a typed expecter API.
type MockUserRepository struct {
	mock.Mock
}

type MockUserRepository_Expecter struct {
	mock *mock.Mock
}

func (_m *MockUserRepository) EXPECT() *MockUserRepository_Expecter {
	return &MockUserRepository_Expecter{mock: &_m.Mock}
}

// FindByID provides a mock function for the interface method.
func (_m *MockUserRepository) FindByID(ctx context.Context, id uint64) (*entity.User, error) {
	ret := _m.Called(ctx, id)

	if len(ret) == 0 {
		panic("no return value specified for FindByID")
	}

	if rf, ok := ret.Get(0).(func(context.Context, uint64) (*entity.User, error)); ok {
		return rf(ctx, id)
	}

	r0, _ := ret.Get(0).(*entity.User)

	return r0, ret.Error(1)
}

// MockUserRepository_FindByID_Call wraps mock.Call with typed helpers.
type MockUserRepository_FindByID_Call struct {
	*mock.Call
}

func (_e *MockUserRepository_Expecter) FindByID(ctx interface{}, id interface{}) *MockUserRepository_FindByID_Call {
	return &MockUserRepository_FindByID_Call{Call: _e.mock.On("FindByID", ctx, id)}
}

func (_c *MockUserRepository_FindByID_Call) Run(run func(ctx context.Context, id uint64)) *MockUserRepository_FindByID_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(context.Context), args[1].(uint64))
	})

	return _c
}

func (_c *MockUserRepository_FindByID_Call) Return(_a0 *entity.User, _a1 error) *MockUserRepository_FindByID_Call {
	_c.Call.Return(_a0, _a1)

	return _c
}

func (_c *MockUserRepository_FindByID_Call) RunAndReturn(run func(context.Context, uint64) (*entity.User, error)) *MockUserRepository_FindByID_Call {
	_c.Call.Return(run)

	return _c
}

// FindByUsername provides a mock function for the interface method.
func (_m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	ret := _m.Called(ctx, username)

	if len(ret) == 0 {
		panic("no return value specified for FindByUsername")
	}

	if rf, ok := ret.Get(0).(func(context.Context, string) (*entity.User, error)); ok {
		return rf(ctx, username)
	}

	r0, _ := ret.Get(0).(*entity.User)

	return r0, ret.Error(1)
}

// MockUserRepository_FindByUsername_Call wraps mock.Call with typed helpers.
type MockUserRepository_FindByUsername_Call struct {
	*mock.Call
}

func (_e *MockUserRepository_Expecter) FindByUsername(ctx interface{}, username interface{}) *MockUserRepository_FindByUsername_Call {
	return &MockUserRepository_FindByUsername_Call{Call: _e.mock.On("FindByUsername", ctx, username)}
}

func (_c *MockUserRepository_FindByUsername_Call) Run(run func(ctx context.Context, username string)) *MockUserRepository_FindByUsername_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(context.Context), args[1].(string))
	})

	return _c
}

func (_c *MockUserRepository_FindByUsername_Call) Return(_a0 *entity.User, _a1 error) *MockUserRepository_FindByUsername_Call {
	_c.Call.Return(_a0, _a1)

	return _c
}

func (_c *MockUserRepository_FindByUsername_Call) RunAndReturn(run func(context.Context, string) (*entity.User, error)) *MockUserRepository_FindByUsername_Call {
	_c.Call.Return(run)

	return _c
}

// FindAll provides a mock function for the interface method.
func (_m *MockUserRepository) FindAll(ctx context.Context) ([]*entity.User, error) {
	ret := _m.Called(ctx)

	if len(ret) == 0 {
		panic("no return value specified for FindAll")
	}

	if rf, ok := ret.Get(0).(func(context.Context) ([]*entity.User, error)); ok {
		return rf(ctx)
	}

	r0, _ := ret.Get(0).([]*entity.User)

	return r0, ret.Error(1)
}

// MockUserRepository_FindAll_Call wraps mock.Call with typed helpers.
type MockUserRepository_FindAll_Call struct {
	*mock.Call
}

func (_e *MockUserRepository_Expecter) FindAll(ctx interface{}) *MockUserRepository_FindAll_Call {
	return &MockUserRepository_FindAll_Call{Call: _e.mock.On("FindAll", ctx)}
}

func (_c *MockUserRepository_FindAll_Call) Run(run func(ctx context.Context)) *MockUserRepository_FindAll_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(context.Context))
	})

	return _c
}

func (_c *MockUserRepository_FindAll_Call) Return(_a0 []*entity.User, _a1 error) *MockUserRepository_FindAll_Call {
	_c.Call.Return(_a0, _a1)

	return _c
}

func (_c *MockUserRepository_FindAll_Call) RunAndReturn(run func(context.Context) ([]*entity.User, error)) *MockUserRepository_FindAll_Call {
	_c.Call.Return(run)

	return _c
}

// Create provides a mock function for the interface method.
func (_m *MockUserRepository) Create(ctx context.Context, user *entity.User) error {
	ret := _m.Called(ctx, user)

	if len(ret) == 0 {
		panic("no return value specified for Create")
	}

	if rf, ok := ret.Get(0).(func(context.Context, *entity.User) error); ok {
		return rf(ctx, user)
	}

	return ret.Error(0)
}

// MockUserRepository_Create_Call wraps mock.Call with typed helpers.
type MockUserRepository_Create_Call struct {
	*mock.Call
}

func (_e *MockUserRepository_Expecter) Create(ctx interface{}, user interface{}) *MockUserRepository_Create_Call {
	return &MockUserRepository_Create_Call{Call: _e.mock.On("Create", ctx, user)}
}

func (_c *MockUserRepository_Create_Call) Run(run func(ctx context.Context, user *entity.User)) *MockUserRepository_Create_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(context.Context), args[1].(*entity.User))
	})

	return _c
}

func (_c *MockUserRepository_Create_Call) Return(_a0 error) *MockUserRepository_Create_Call {
	_c.Call.Return(_a0)

	return _c
}

func (_c *MockUserRepository_Create_Call) RunAndReturn(run func(context.Context, *entity.User) error) *MockUserRepository_Create_Call {
	_c.Call.Return(run)

	return _c
}

// Update provides a mock function for the interface method.
func (_m *MockUserRepository) Update(ctx context.Context, user *entity.User) error {
	ret := _m.Called(ctx, user)

	if len(ret) == 0 {
		panic("no return value specified for Update")
	}

	if rf, ok := ret.Get(0).(func(context.Context, *entity.User) error); ok {
		return rf(ctx, user)
	}

	return ret.Error(0)
}

// MockUserRepository_Update_Call wraps mock.Call with typed helpers.
type MockUserRepository_Update_Call struct {
	*mock.Call
}

func (_e *MockUserRepository_Expecter) Update(ctx interface{}, user interface{}) *MockUserRepository_Update_Call {
	return &MockUserRepository_Update_Call{Call: _e.mock.On("Update", ctx, user)}
}

func (_c *MockUserRepository_Update_Call) Run(run func(ctx context.Context, user *entity.User)) *MockUserRepository_Update_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(context.Context), args[1].(*entity.User))
	})

	return _c
}

func (_c *MockUserRepository_Update_Call) Return(_a0 error) *MockUserRepository_Update_Call {
	_c.Call.Return(_a0)

	return _c
}

func (_c *MockUserRepository_Update_Call) RunAndReturn(run func(context.Context, *entity.User) error) *MockUserRepository_Update_Call {
	_c.Call.Return(run)

	return _c
}

// DeleteByID provides a mock function for the interface method.
func (_m *MockUserRepository) DeleteByID(ctx context.Context, id uint64) error {
	ret := _m.Called(ctx, id)

	if len(ret) == 0 {
		panic("no return value specified for DeleteByID")
	}

	if rf, ok := ret.Get(0).(func(context.Context, uint64) error); ok {
		return rf(ctx, id)
	}

	return ret.Error(0)
}

// MockUserRepository_DeleteByID_Call wraps mock.Call with typed helpers.
type MockUserRepository_DeleteByID_Call struct {
	*mock.Call
}

func (_e *MockUserRepository_Expecter) DeleteByID(ctx interface{}, id interface{}) *MockUserRepository_DeleteByID_Call {
	return &MockUserRepository_DeleteByID_Call{Call: _e.mock.On("DeleteByID", ctx, id)}
}

func (_c *MockUserRepository_DeleteByID_Call) Run(run func(ctx context.Context, id uint64)) *MockUserRepository_DeleteByID_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(context.Context), args[1].(uint64))
	})

	return _c
}

func (_c *MockUserRepository_DeleteByID_Call) Return(_a0 error) *MockUserRepository_DeleteByID_Call {
	_c.Call.Return(_a0)

	return _c
}

func (_c *MockUserRepository_DeleteByID_Call) RunAndReturn(run func(context.Context, uint64) error) *MockUserRepository_DeleteByID_Call {
	_c.Call.Return(run)

	return _c
}

// DeleteAll provides a mock function for the interface method.
func (_m *MockUserRepository) DeleteAll(ctx context.Context) error {
	ret := _m.Called(ctx)

	if len(ret) == 0 {
		panic("no return value specified for DeleteAll")
	}

	if rf, ok := ret.Get(0).(func(context.Context) error); ok {
		return rf(ctx)
	}

	return ret.Error(0)
}

// MockUserRepository_DeleteAll_Call wraps mock.Call with typed helpers.
type MockUserRepository_DeleteAll_Call struct {
	*mock.Call
}

func (_e *MockUserRepository_Expecter) DeleteAll(ctx interface{}) *MockUserRepository_DeleteAll_Call {
	return &MockUserRepository_DeleteAll_Call{Call: _e.mock.On("DeleteAll", ctx)}
}

func (_c *MockUserRepository_DeleteAll_Call) Run(run func(ctx context.Context)) *MockUserRepository_DeleteAll_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(context.Context))
	})

	return _c
}

func (_c *MockUserRepository_DeleteAll_Call) Return(_a0 error) *MockUserRepository_DeleteAll_Call {
	_c.Call.Return(_a0)

	return _c
}

func (_c *MockUserRepository_DeleteAll_Call) RunAndReturn(run func(context.Context) error) *MockUserRepository_DeleteAll_Call {
	_c.Call.Return(run)

	return _c
}

// NewMockUserRepository registers a cleanup that asserts every expectation was met.
func NewMockUserRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockUserRepository {
	m := &MockUserRepository{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
