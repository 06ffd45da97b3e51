package repositories

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"scholarship-fund.backend/internal/domain/entities"
)

// StudentRepository stores registered students in registration order
type StudentRepository interface {
	GetByAddress(ctx context.Context, address common.Address) (*entities.Student, error)
	Upsert(ctx context.Context, student *entities.Student) error
	Delete(ctx context.Context, address common.Address) error
	List(ctx context.Context, offset, limit int64) ([]*entities.Student, error)
	ListAll(ctx context.Context) ([]*entities.Student, error)
	Count(ctx context.Context) (int64, error)
}
