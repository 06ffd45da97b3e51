package repositories

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"scholarship-fund.backend/internal/domain/entities"
	domainerrors "scholarship-fund.backend/internal/domain/errors"
	"scholarship-fund.backend/internal/infrastructure/models"
)

// StudentRepository implements student data operations
type StudentRepository struct {
	db *gorm.DB
}

// NewStudentRepository creates a new student repository
func NewStudentRepository(db *gorm.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// GetByAddress returns the registered student or ErrNotFound
func (r *StudentRepository) GetByAddress(ctx context.Context, address common.Address) (*entities.Student, error) {
	var m models.Student
	if err := GetDB(ctx, r.db).Where("wallet_address = ?", address.Hex()).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m)
}

// Upsert inserts the student or overwrites the row keyed by its address
func (r *StudentRepository) Upsert(ctx context.Context, student *entities.Student) error {
	m := &models.Student{
		WalletAddress: student.WalletAddress.Hex(),
		Name:          student.Name,
		Amount:        entities.AmountString(student.Amount),
		HasClaimed:    student.HasClaimed,
		Position:      student.Position,
		ClaimedAt:     student.ClaimedAt,
		CreatedAt:     student.CreatedAt,
		UpdatedAt:     student.UpdatedAt,
	}
	return GetDB(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "wallet_address"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "amount", "has_claimed", "position", "claimed_at", "updated_at"}),
	}).Create(m).Error
}

// Delete removes the student row; ErrNotFound when nothing was deleted
func (r *StudentRepository) Delete(ctx context.Context, address common.Address) error {
	result := GetDB(ctx, r.db).Where("wallet_address = ?", address.Hex()).Delete(&models.Student{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// List returns up to limit students starting at offset in registration order
func (r *StudentRepository) List(ctx context.Context, offset, limit int64) ([]*entities.Student, error) {
	if limit <= 0 {
		return []*entities.Student{}, nil
	}
	var ms []models.Student
	if err := GetDB(ctx, r.db).
		Order("position ASC").
		Offset(int(offset)).
		Limit(int(limit)).
		Find(&ms).Error; err != nil {
		return nil, err
	}
	return r.toEntities(ms)
}

// ListAll returns every student in registration order
func (r *StudentRepository) ListAll(ctx context.Context) ([]*entities.Student, error) {
	var ms []models.Student
	if err := GetDB(ctx, r.db).Order("position ASC").Find(&ms).Error; err != nil {
		return nil, err
	}
	return r.toEntities(ms)
}

// Count returns the number of registered students
func (r *StudentRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := GetDB(ctx, r.db).Model(&models.Student{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *StudentRepository) toEntities(ms []models.Student) ([]*entities.Student, error) {
	out := make([]*entities.Student, 0, len(ms))
	for i := range ms {
		s, err := r.toEntity(&ms[i])
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *StudentRepository) toEntity(m *models.Student) (*entities.Student, error) {
	amount, ok := new(big.Int).SetString(m.Amount, 10)
	if !ok {
		return nil, fmt.Errorf("student %s: corrupt amount %q", m.WalletAddress, m.Amount)
	}
	return &entities.Student{
		Name:          m.Name,
		WalletAddress: common.HexToAddress(m.WalletAddress),
		Amount:        amount,
		HasClaimed:    m.HasClaimed,
		IsRegistered:  true,
		Position:      m.Position,
		ClaimedAt:     m.ClaimedAt,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}, nil
}
