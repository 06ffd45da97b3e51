package usecases_test

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/mock"
	"scholarship-fund.backend/internal/domain/entities"
)

// Mock UnitOfWork
type MockUnitOfWork struct {
	mock.Mock
}

func (m *MockUnitOfWork) Do(ctx context.Context, f func(context.Context) error) error {
	m.Called(ctx, f)
	return f(ctx)
}

func (m *MockUnitOfWork) Savepoint(ctx context.Context, f func(context.Context) error) error {
	m.Called(ctx, f)
	return f(ctx)
}

func (m *MockUnitOfWork) Snapshot(ctx context.Context, f func(context.Context) error) error {
	m.Called(ctx, f)
	return f(ctx)
}

func (m *MockUnitOfWork) WithLock(ctx context.Context) context.Context {
	args := m.Called(ctx)
	return args.Get(0).(context.Context) // Return mocked context
}

// Mock RegistryStateRepository
type MockRegistryStateRepository struct {
	mock.Mock
}

func (m *MockRegistryStateRepository) Get(ctx context.Context) (*entities.RegistryState, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.RegistryState).Clone(), args.Error(1)
}

func (m *MockRegistryStateRepository) Create(ctx context.Context, state *entities.RegistryState) error {
	args := m.Called(ctx, state)
	return args.Error(0)
}

func (m *MockRegistryStateRepository) Update(ctx context.Context, state *entities.RegistryState) error {
	args := m.Called(ctx, state)
	return args.Error(0)
}

// Mock StudentRepository
type MockStudentRepository struct {
	mock.Mock
}

func (m *MockStudentRepository) GetByAddress(ctx context.Context, address common.Address) (*entities.Student, error) {
	args := m.Called(ctx, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Student).Clone(), args.Error(1)
}

func (m *MockStudentRepository) Upsert(ctx context.Context, student *entities.Student) error {
	args := m.Called(ctx, student)
	return args.Error(0)
}

func (m *MockStudentRepository) Delete(ctx context.Context, address common.Address) error {
	args := m.Called(ctx, address)
	return args.Error(0)
}

func (m *MockStudentRepository) List(ctx context.Context, offset, limit int64) ([]*entities.Student, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Student), args.Error(1)
}

func (m *MockStudentRepository) ListAll(ctx context.Context) ([]*entities.Student, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Student), args.Error(1)
}

func (m *MockStudentRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// Mock FundEventRepository
type MockFundEventRepository struct {
	mock.Mock
}

func (m *MockFundEventRepository) Create(ctx context.Context, event *entities.FundEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockFundEventRepository) List(ctx context.Context, filter entities.FundEventFilter, offset, limit int) ([]*entities.FundEvent, int64, error) {
	args := m.Called(ctx, filter, offset, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*entities.FundEvent), args.Get(1).(int64), args.Error(2)
}

// Mock Transferer
type MockTransferer struct {
	mock.Mock
}

func (m *MockTransferer) Transfer(ctx context.Context, to common.Address, amount *big.Int) error {
	args := m.Called(ctx, to, amount)
	return args.Error(0)
}

// recordingPublisher keeps every published batch
type recordingPublisher struct {
	mu      sync.Mutex
	batches [][]*entities.FundEvent
	err     error
}

func (p *recordingPublisher) Publish(_ context.Context, events []*entities.FundEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.batches = append(p.batches, events)
	return p.err
}

func (p *recordingPublisher) types() []entities.FundEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []entities.FundEventType
	for _, b := range p.batches {
		for _, e := range b {
			out = append(out, e.Type)
		}
	}
	return out
}
