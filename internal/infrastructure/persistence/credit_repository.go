package persistence

import (
	"context"
	"errors"

	"github.com/finoffice/backend/internal/domain/credit"
	"github.com/finoffice/backend/internal/domain/shared"
	"github.com/finoffice/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCreditRepository implements credit.Repository using GORM. The credit
// row and its installment rows are loaded and saved as one aggregate.
type GormCreditRepository struct {
	db *gorm.DB
}

// NewGormCreditRepository creates a new GormCreditRepository
func NewGormCreditRepository(db *gorm.DB) *GormCreditRepository {
	return &GormCreditRepository{db: db}
}

// FindByID loads a credit with its full schedule, locking the credit row.
// Installment rows are protected transitively: all installment writes go
// through the aggregate, so the root lock is sufficient.
func (r *GormCreditRepository) FindByID(ctx context.Context, id uuid.UUID) (*credit.Credit, error) {
	var model models.CreditModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Installments", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence asc")
		}).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindSweepable returns credits in ACTIVE or OVERDUE status, ordered by id
func (r *GormCreditRepository) FindSweepable(ctx context.Context) ([]credit.Credit, error) {
	var found []models.CreditModel
	if err := r.db.WithContext(ctx).
		Where("status IN ?", []string{
			credit.StatusActive.String(),
			credit.StatusOverdue.String(),
		}).
		Preload("Installments", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence asc")
		}).
		Order("id asc").
		Find(&found).Error; err != nil {
		return nil, err
	}
	credits := make([]credit.Credit, len(found))
	for i := range found {
		credits[i] = *found[i].ToDomain()
	}
	return credits, nil
}

// Save persists the credit aggregate, installments included
func (r *GormCreditRepository) Save(ctx context.Context, c *credit.Credit) error {
	var model models.CreditModel
	model.FromDomain(c)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		installments := model.Installments
		model.Installments = nil
		if err := tx.Save(&model).Error; err != nil {
			return err
		}
		for i := range installments {
			if err := tx.Save(&installments[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

var _ credit.Repository = (*GormCreditRepository)(nil)
