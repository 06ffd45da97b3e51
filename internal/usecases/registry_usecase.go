package usecases

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"

	"scholarship-fund.backend/internal/domain/entities"
	domainerrors "scholarship-fund.backend/internal/domain/errors"
	"scholarship-fund.backend/internal/domain/repositories"
	"scholarship-fund.backend/pkg/logger"
	"scholarship-fund.backend/pkg/metrics"
	"scholarship-fund.backend/pkg/utils"
)

// Registry operation names, used for logs and metrics
const (
	OpAddStudent          = "addStudent"
	OpBulkAddStudents     = "bulkAddStudents"
	OpUpdateStudentAmount = "updateStudentAmount"
	OpRemoveStudent       = "removeStudent"
	OpDepositFunds        = "depositFunds"
	OpWithdrawFunds       = "withdrawFunds"
	OpClaimScholarship    = "claimScholarship"
	OpPause               = "pause"
	OpUnpause             = "unpause"
	OpTransferOwnership   = "transferOwnership"
	OpInitialize          = "initialize"
)

// Transferer moves value out of the registry into an external account
type Transferer interface {
	Transfer(ctx context.Context, to common.Address, amount *big.Int) error
}

// EventPublisher receives events after their call has committed
type EventPublisher interface {
	Publish(ctx context.Context, events []*entities.FundEvent) error
}

type callFrameKey struct{}

// callFrame is the state of the call currently holding the registry.
// Nested calls made through its context run inside it.
type callFrame struct {
	state           *entities.RegistryState
	events          []*entities.FundEvent
	stateDirty      bool
	studentsChanged bool
}

func (f *callFrame) emit(e *entities.FundEvent) {
	f.events = append(f.events, e)
}

func frameFrom(ctx context.Context) (*callFrame, bool) {
	f, ok := ctx.Value(callFrameKey{}).(*callFrame)
	return f, ok
}

// RegistryUsecase is the scholarship registry state machine. Every mutating
// call runs alone: a process mutex plus a row lock on the registry row.
type RegistryUsecase struct {
	mu          sync.Mutex
	uow         repositories.UnitOfWork
	stateRepo   repositories.RegistryStateRepository
	studentRepo repositories.StudentRepository
	eventRepo   repositories.FundEventRepository
	transferer  Transferer
	publisher   EventPublisher
	metrics     *metrics.Metrics
	now         func() time.Time
}

// NewRegistryUsecase creates the registry usecase. publisher and m may be nil.
func NewRegistryUsecase(
	uow repositories.UnitOfWork,
	stateRepo repositories.RegistryStateRepository,
	studentRepo repositories.StudentRepository,
	eventRepo repositories.FundEventRepository,
	transferer Transferer,
	publisher EventPublisher,
	m *metrics.Metrics,
) *RegistryUsecase {
	return &RegistryUsecase{
		uow:         uow,
		stateRepo:   stateRepo,
		studentRepo: studentRepo,
		eventRepo:   eventRepo,
		transferer:  transferer,
		publisher:   publisher,
		metrics:     m,
		now:         time.Now,
	}
}

// EnsureInitialized creates the registry row with owner on first start.
// An existing registry keeps its current owner.
func (u *RegistryUsecase) EnsureInitialized(ctx context.Context, owner common.Address) (*entities.RegistryState, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	var out *entities.RegistryState
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		state, err := u.stateRepo.Get(u.uow.WithLock(txCtx))
		if err == nil {
			out = state
			return nil
		}
		if !errors.Is(err, domainerrors.ErrNotFound) {
			return err
		}
		if owner == (common.Address{}) {
			return domainerrors.NewError("registry owner address is not configured", domainerrors.ErrInvalidInput)
		}
		state = &entities.RegistryState{Owner: owner, Balance: new(big.Int)}
		if err := u.stateRepo.Create(txCtx, state); err != nil {
			return err
		}
		out = state
		logger.Info(ctx, "Registry created", zap.String("owner", owner.Hex()))
		return nil
	})
	u.metrics.ObserveCall(OpInitialize, err)
	if err != nil {
		return nil, err
	}
	u.metrics.SetBalance(out.Balance)
	if n, err := u.studentRepo.Count(ctx); err == nil {
		u.metrics.SetStudentCount(n)
	}
	return out.Clone(), nil
}

// execute runs fn as one serialized, atomic registry call. A call made from
// inside a running call (through its context) joins it.
func (u *RegistryUsecase) execute(ctx context.Context, op string, caller common.Address, fn func(ctx context.Context, f *callFrame) error) error {
	if f, ok := frameFrom(ctx); ok {
		err := u.runNested(ctx, f, fn)
		u.metrics.ObserveCall(op, err)
		u.logCall(ctx, op, caller, err, true)
		return err
	}

	frame, err := u.apply(ctx, fn)
	u.metrics.ObserveCall(op, err)
	u.logCall(ctx, op, caller, err, false)
	if err != nil {
		return err
	}

	// runs after the registry lock is released
	u.afterCommit(ctx, frame)
	return nil
}

// apply holds the registry lock for the duration of one transaction
func (u *RegistryUsecase) apply(ctx context.Context, fn func(ctx context.Context, f *callFrame) error) (*callFrame, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	var frame *callFrame
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		state, err := u.stateRepo.Get(u.uow.WithLock(txCtx))
		if errors.Is(err, domainerrors.ErrNotFound) {
			return domainerrors.NewError("registry is not initialized", err)
		}
		if err != nil {
			return err
		}
		frame = &callFrame{state: state}
		if err := fn(context.WithValue(txCtx, callFrameKey{}, frame), frame); err != nil {
			return err
		}
		if frame.stateDirty {
			if err := u.stateRepo.Update(txCtx, frame.state); err != nil {
				return err
			}
		}
		createdAt := u.now().UTC()
		for _, e := range frame.events {
			e.CreatedAt = createdAt
			if err := u.eventRepo.Create(txCtx, e); err != nil {
				return err
			}
		}
		return nil
	})
	return frame, err
}

// runNested runs fn inside the running call under a savepoint. When fn fails
// its writes are rolled back and the frame is restored, so the outer call
// continues from exactly the state it had before.
func (u *RegistryUsecase) runNested(ctx context.Context, f *callFrame, fn func(ctx context.Context, f *callFrame) error) error {
	state := f.state.Clone()
	emitted := len(f.events)
	stateDirty, studentsChanged := f.stateDirty, f.studentsChanged

	err := u.uow.Savepoint(ctx, func(spCtx context.Context) error {
		return fn(spCtx, f)
	})
	if err != nil {
		*f.state = *state
		f.events = f.events[:emitted]
		f.stateDirty, f.studentsChanged = stateDirty, studentsChanged
	}
	return err
}

func (u *RegistryUsecase) afterCommit(ctx context.Context, frame *callFrame) {
	if frame.stateDirty {
		u.metrics.SetBalance(frame.state.Balance)
	}
	if frame.studentsChanged {
		if n, err := u.studentRepo.Count(ctx); err == nil {
			u.metrics.SetStudentCount(n)
		}
	}
	if len(frame.events) == 0 || u.publisher == nil {
		return
	}
	// events are already durable; a failed publish is logged, never surfaced
	if err := u.publisher.Publish(context.WithoutCancel(ctx), frame.events); err != nil {
		logger.Warn(ctx, "Registry events not published", zap.Int("count", len(frame.events)), zap.Error(err))
	}
}

func (u *RegistryUsecase) logCall(ctx context.Context, op string, caller common.Address, err error, nested bool) {
	fields := []zap.Field{zap.String("op", op), zap.String("caller", caller.Hex())}
	if nested {
		fields = append(fields, zap.Bool("nested", true))
	}
	if err == nil {
		logger.Info(ctx, "Registry call applied", fields...)
		return
	}
	fields = append(fields, zap.Error(err))
	if domainerrors.FromError(err).Status >= 500 {
		logger.Error(ctx, "Registry call failed", fields...)
		return
	}
	logger.Warn(ctx, "Registry call rejected", fields...)
}

func requireOwner(f *callFrame, caller common.Address) error {
	if caller != f.state.Owner {
		return domainerrors.ErrCallerNotOwner
	}
	return nil
}

func validAmount(v *big.Int) error {
	if v == nil || v.Sign() < 0 {
		return domainerrors.NewError("amount must be a non-negative integer", domainerrors.ErrInvalidInput)
	}
	if !utils.InRange(v) {
		return domainerrors.NewError(utils.ErrAmountTooLarge.Error(), domainerrors.ErrInvalidInput)
	}
	return nil
}

// register adds or overwrites one record. Overwrites keep their position and
// reset the claim flag; new addresses append to the registration order.
func (u *RegistryUsecase) register(ctx context.Context, f *callFrame, name string, address common.Address, amount *big.Int) (*entities.Student, error) {
	existing, err := u.studentRepo.GetByAddress(ctx, address)
	if err != nil && !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}

	student := &entities.Student{
		Name:          name,
		WalletAddress: address,
		Amount:        new(big.Int).Set(amount),
		IsRegistered:  true,
	}
	if existing != nil {
		student.Position = existing.Position
		student.CreatedAt = existing.CreatedAt
	} else {
		student.Position = f.state.NextPosition
		f.state.NextPosition++
		f.stateDirty = true
	}
	if err := u.studentRepo.Upsert(ctx, student); err != nil {
		return nil, err
	}
	f.studentsChanged = true
	f.emit(&entities.FundEvent{
		Type:    entities.EventStudentAdded,
		Address: address,
		Name:    name,
		Amount:  new(big.Int).Set(amount),
	})
	return student, nil
}

// AddStudent registers or overwrites a student. Owner only.
func (u *RegistryUsecase) AddStudent(ctx context.Context, caller common.Address, name string, address common.Address, amount *big.Int) (*entities.Student, error) {
	var out *entities.Student
	err := u.execute(ctx, OpAddStudent, caller, func(ctx context.Context, f *callFrame) error {
		if err := requireOwner(f, caller); err != nil {
			return err
		}
		if err := validAmount(amount); err != nil {
			return err
		}
		s, err := u.register(ctx, f, name, address, amount)
		out = s
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// BulkAddStudents registers each index as AddStudent would, all or nothing. Owner only.
func (u *RegistryUsecase) BulkAddStudents(ctx context.Context, caller common.Address, names []string, addresses []common.Address, amounts []*big.Int) ([]*entities.Student, error) {
	var out []*entities.Student
	err := u.execute(ctx, OpBulkAddStudents, caller, func(ctx context.Context, f *callFrame) error {
		if err := requireOwner(f, caller); err != nil {
			return err
		}
		if len(names) != len(addresses) || len(addresses) != len(amounts) {
			return domainerrors.NewError("names, addresses and amounts must have the same length", domainerrors.ErrInvalidInput)
		}
		for _, a := range amounts {
			if err := validAmount(a); err != nil {
				return err
			}
		}
		out = make([]*entities.Student, 0, len(addresses))
		for i := range addresses {
			s, err := u.register(ctx, f, names[i], addresses[i], amounts[i])
			if err != nil {
				return err
			}
			out = append(out, s)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateStudentAmount changes a registered student's allocation. Owner only.
func (u *RegistryUsecase) UpdateStudentAmount(ctx context.Context, caller common.Address, address common.Address, amount *big.Int) (*entities.Student, error) {
	var out *entities.Student
	err := u.execute(ctx, OpUpdateStudentAmount, caller, func(ctx context.Context, f *callFrame) error {
		if err := requireOwner(f, caller); err != nil {
			return err
		}
		student, err := u.registeredStudent(ctx, address)
		if err != nil {
			return err
		}
		if err := validAmount(amount); err != nil {
			return err
		}
		student.Amount = new(big.Int).Set(amount)
		if err := u.studentRepo.Upsert(ctx, student); err != nil {
			return err
		}
		f.emit(&entities.FundEvent{
			Type:    entities.EventAmountUpdated,
			Address: address,
			Amount:  new(big.Int).Set(amount),
		})
		out = student
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RemoveStudent deletes a registered student's record. Owner only.
func (u *RegistryUsecase) RemoveStudent(ctx context.Context, caller common.Address, address common.Address) error {
	return u.execute(ctx, OpRemoveStudent, caller, func(ctx context.Context, f *callFrame) error {
		if err := requireOwner(f, caller); err != nil {
			return err
		}
		if _, err := u.registeredStudent(ctx, address); err != nil {
			return err
		}
		if err := u.studentRepo.Delete(ctx, address); err != nil {
			return err
		}
		f.studentsChanged = true
		f.emit(&entities.FundEvent{Type: entities.EventStudentRemoved, Address: address})
		return nil
	})
}

// DepositFunds adds value to the pooled balance. Open to anyone, including while paused.
func (u *RegistryUsecase) DepositFunds(ctx context.Context, caller common.Address, amount *big.Int, txHash string) (*big.Int, error) {
	var balance *big.Int
	err := u.execute(ctx, OpDepositFunds, caller, func(ctx context.Context, f *callFrame) error {
		if err := validAmount(amount); err != nil {
			return err
		}
		next := new(big.Int).Add(f.state.Balance, amount)
		if !utils.InRange(next) {
			return domainerrors.NewError("deposit would push the balance past the uint256 range", domainerrors.ErrInvalidInput)
		}
		f.state.Balance = next
		f.stateDirty = true
		e := &entities.FundEvent{
			Type:    entities.EventFundDeposited,
			Address: caller,
			Amount:  new(big.Int).Set(amount),
		}
		if txHash != "" {
			e.TxHash = null.StringFrom(txHash)
		}
		f.emit(e)
		balance = new(big.Int).Set(f.state.Balance)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return balance, nil
}

// WithdrawFunds sends the whole pooled balance to the owner. A zero balance
// still succeeds and reports a zero withdrawal.
func (u *RegistryUsecase) WithdrawFunds(ctx context.Context, caller common.Address) (*big.Int, error) {
	var amount *big.Int
	err := u.execute(ctx, OpWithdrawFunds, caller, func(ctx context.Context, f *callFrame) error {
		if err := requireOwner(f, caller); err != nil {
			return err
		}
		amount = new(big.Int).Set(f.state.Balance)
		owner := f.state.Owner
		f.state.Balance = new(big.Int)
		f.stateDirty = true

		if err := u.transferer.Transfer(ctx, owner, amount); err != nil {
			return err
		}
		f.emit(&entities.FundEvent{
			Type:    entities.EventWithdrawalMade,
			Address: owner,
			Amount:  new(big.Int).Set(amount),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return amount, nil
}

// ClaimScholarship pays the caller their allocation once. The record is
// marked claimed and the balance debited before the transfer runs, so a
// transfer hook that claims again sees AlreadyClaimed.
func (u *RegistryUsecase) ClaimScholarship(ctx context.Context, caller common.Address) (*entities.Student, error) {
	var out *entities.Student
	err := u.execute(ctx, OpClaimScholarship, caller, func(ctx context.Context, f *callFrame) error {
		if f.state.Paused {
			return domainerrors.ErrPaused
		}
		student, err := u.registeredStudent(ctx, caller)
		if err != nil {
			return err
		}
		if student.HasClaimed {
			return domainerrors.ErrAlreadyClaimed
		}
		if f.state.Balance.Cmp(student.Amount) < 0 {
			return domainerrors.ErrInsufficientFunds
		}

		amount := new(big.Int).Set(student.Amount)
		student.HasClaimed = true
		student.ClaimedAt = null.TimeFrom(u.now().UTC())
		if err := u.studentRepo.Upsert(ctx, student); err != nil {
			return err
		}
		f.state.Balance = new(big.Int).Sub(f.state.Balance, amount)
		f.stateDirty = true

		if err := u.transferer.Transfer(ctx, caller, amount); err != nil {
			return err
		}
		f.emit(&entities.FundEvent{
			Type:    entities.EventScholarshipClaimed,
			Address: caller,
			Amount:  amount,
		})
		out = student
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Pause blocks claims. Owner only; pausing a paused registry is rejected.
func (u *RegistryUsecase) Pause(ctx context.Context, caller common.Address) error {
	return u.execute(ctx, OpPause, caller, func(ctx context.Context, f *callFrame) error {
		if err := requireOwner(f, caller); err != nil {
			return err
		}
		if f.state.Paused {
			return domainerrors.ErrPaused
		}
		f.state.Paused = true
		f.stateDirty = true
		f.emit(&entities.FundEvent{Type: entities.EventPaused, Address: caller})
		return nil
	})
}

// Unpause lifts the claim block. Owner only; unpausing an active registry is rejected.
func (u *RegistryUsecase) Unpause(ctx context.Context, caller common.Address) error {
	return u.execute(ctx, OpUnpause, caller, func(ctx context.Context, f *callFrame) error {
		if err := requireOwner(f, caller); err != nil {
			return err
		}
		if !f.state.Paused {
			return domainerrors.ErrNotPaused
		}
		f.state.Paused = false
		f.stateDirty = true
		f.emit(&entities.FundEvent{Type: entities.EventUnpaused, Address: caller})
		return nil
	})
}

// TransferOwnership hands the owner role to newOwner. Owner only.
func (u *RegistryUsecase) TransferOwnership(ctx context.Context, caller common.Address, newOwner common.Address) error {
	return u.execute(ctx, OpTransferOwnership, caller, func(ctx context.Context, f *callFrame) error {
		if err := requireOwner(f, caller); err != nil {
			return err
		}
		if newOwner == (common.Address{}) {
			return domainerrors.NewError("new owner is the zero address", domainerrors.ErrInvalidInput)
		}
		previous := f.state.Owner
		f.state.Owner = newOwner
		f.stateDirty = true
		f.emit(&entities.FundEvent{
			Type:         entities.EventOwnershipTransferred,
			Address:      previous,
			Counterparty: newOwner,
		})
		return nil
	})
}

func (u *RegistryUsecase) registeredStudent(ctx context.Context, address common.Address) (*entities.Student, error) {
	s, err := u.studentRepo.GetByAddress(ctx, address)
	if errors.Is(err, domainerrors.ErrNotFound) {
		return nil, domainerrors.ErrNotRegistered
	}
	return s, err
}

// currentState reads the registry as the running call sees it, or the committed row
func (u *RegistryUsecase) currentState(ctx context.Context) (*entities.RegistryState, error) {
	if f, ok := frameFrom(ctx); ok {
		return f.state.Clone(), nil
	}
	return u.stateRepo.Get(ctx)
}

// GetStudent returns the record for address, or an unregistered placeholder
func (u *RegistryUsecase) GetStudent(ctx context.Context, address common.Address) (*entities.Student, error) {
	s, err := u.studentRepo.GetByAddress(ctx, address)
	if errors.Is(err, domainerrors.ErrNotFound) {
		return entities.UnregisteredStudent(address), nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetStudents returns up to limit records starting at offset in registration
// order. Total and items come from the same snapshot.
func (u *RegistryUsecase) GetStudents(ctx context.Context, offset, limit int64) (*entities.StudentPage, error) {
	if offset < 0 || limit < 0 {
		return nil, domainerrors.NewError("offset and limit must not be negative", domainerrors.ErrInvalidInput)
	}
	var (
		total int64
		items = []*entities.Student{}
	)
	err := u.uow.Snapshot(ctx, func(ctx context.Context) error {
		var err error
		if total, err = u.studentRepo.Count(ctx); err != nil {
			return err
		}
		start, end := utils.ClampWindow(total, offset, limit)
		if end > start {
			items, err = u.studentRepo.List(ctx, start, end-start)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return &entities.StudentPage{Items: items, Offset: offset, Limit: limit, Total: total}, nil
}

// GetAllStudents returns every registered record in registration order
func (u *RegistryUsecase) GetAllStudents(ctx context.Context) ([]*entities.Student, error) {
	return u.studentRepo.ListAll(ctx)
}

// GetContractBalance returns the pooled balance
func (u *RegistryUsecase) GetContractBalance(ctx context.Context) (*big.Int, error) {
	state, err := u.currentState(ctx)
	if err != nil {
		return nil, err
	}
	return state.Balance, nil
}

// Owner returns the current owner
func (u *RegistryUsecase) Owner(ctx context.Context) (common.Address, error) {
	state, err := u.currentState(ctx)
	if err != nil {
		return common.Address{}, err
	}
	return state.Owner, nil
}

// Paused reports whether claims are blocked
func (u *RegistryUsecase) Paused(ctx context.Context) (bool, error) {
	state, err := u.currentState(ctx)
	if err != nil {
		return false, err
	}
	return state.Paused, nil
}

// Summary returns owner, pause flag, balance and student count together
func (u *RegistryUsecase) Summary(ctx context.Context) (*entities.RegistrySummary, error) {
	state, err := u.currentState(ctx)
	if err != nil {
		return nil, err
	}
	n, err := u.studentRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &entities.RegistrySummary{
		Owner:        state.Owner,
		Paused:       state.Paused,
		Balance:      state.Balance,
		StudentCount: n,
	}, nil
}
