package persistence

import (
	"context"
	"errors"

	"github.com/finoffice/backend/internal/domain/shared"
	"github.com/finoffice/backend/internal/domain/treasury"
	"github.com/finoffice/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormBankAccountRepository implements treasury.BankAccountRepository using GORM
type GormBankAccountRepository struct {
	db *gorm.DB
}

// NewGormBankAccountRepository creates a new GormBankAccountRepository
func NewGormBankAccountRepository(db *gorm.DB) *GormBankAccountRepository {
	return &GormBankAccountRepository{db: db}
}

// FindByID loads a bank account by ID, locking its row for the transaction
func (r *GormBankAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*treasury.BankAccount, error) {
	var model models.BankAccountModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns every bank account ordered by id
func (r *GormBankAccountRepository) FindAll(ctx context.Context) ([]treasury.BankAccount, error) {
	var found []models.BankAccountModel
	if err := r.db.WithContext(ctx).Order("id asc").Find(&found).Error; err != nil {
		return nil, err
	}
	accounts := make([]treasury.BankAccount, len(found))
	for i := range found {
		accounts[i] = *found[i].ToDomain()
	}
	return accounts, nil
}

// Save persists the bank account aggregate
func (r *GormBankAccountRepository) Save(ctx context.Context, a *treasury.BankAccount) error {
	var model models.BankAccountModel
	model.FromDomain(a)
	return r.db.WithContext(ctx).Save(&model).Error
}

// GormTransactionRepository implements treasury.TransactionRepository using GORM
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewGormTransactionRepository creates a new GormTransactionRepository
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// FindByAccount returns the full bank ledger of an account ordered by date
func (r *GormTransactionRepository) FindByAccount(ctx context.Context, accountID uuid.UUID) ([]treasury.Transaction, error) {
	var found []models.TransactionModel
	if err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("date asc, id asc").
		Find(&found).Error; err != nil {
		return nil, err
	}
	transactions := make([]treasury.Transaction, len(found))
	for i := range found {
		transactions[i] = found[i].ToDomain()
	}
	return transactions, nil
}

// Save persists a bank ledger entry
func (r *GormTransactionRepository) Save(ctx context.Context, t *treasury.Transaction) error {
	var model models.TransactionModel
	model.FromDomain(*t)
	return r.db.WithContext(ctx).Save(&model).Error
}

// GormCashRegisterRepository implements treasury.CashRegisterRepository using GORM
type GormCashRegisterRepository struct {
	db *gorm.DB
}

// NewGormCashRegisterRepository creates a new GormCashRegisterRepository
func NewGormCashRegisterRepository(db *gorm.DB) *GormCashRegisterRepository {
	return &GormCashRegisterRepository{db: db}
}

// FindByID loads a cash register by ID, locking its row for the transaction
func (r *GormCashRegisterRepository) FindByID(ctx context.Context, id uuid.UUID) (*treasury.CashRegister, error) {
	var model models.CashRegisterModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns every cash register ordered by id
func (r *GormCashRegisterRepository) FindAll(ctx context.Context) ([]treasury.CashRegister, error) {
	var found []models.CashRegisterModel
	if err := r.db.WithContext(ctx).Order("id asc").Find(&found).Error; err != nil {
		return nil, err
	}
	registers := make([]treasury.CashRegister, len(found))
	for i := range found {
		registers[i] = *found[i].ToDomain()
	}
	return registers, nil
}

// Save persists the cash register aggregate
func (r *GormCashRegisterRepository) Save(ctx context.Context, reg *treasury.CashRegister) error {
	var model models.CashRegisterModel
	model.FromDomain(reg)
	return r.db.WithContext(ctx).Save(&model).Error
}

// GormCashMovementRepository implements treasury.CashMovementRepository using GORM
type GormCashMovementRepository struct {
	db *gorm.DB
}

// NewGormCashMovementRepository creates a new GormCashMovementRepository
func NewGormCashMovementRepository(db *gorm.DB) *GormCashMovementRepository {
	return &GormCashMovementRepository{db: db}
}

// FindByRegister returns the full cash ledger of a register ordered by date,
// cancelled movements included. Balance replay skips them itself.
func (r *GormCashMovementRepository) FindByRegister(ctx context.Context, registerID uuid.UUID) ([]treasury.CashMovement, error) {
	var found []models.CashMovementModel
	if err := r.db.WithContext(ctx).
		Where("register_id = ?", registerID).
		Order("date asc, id asc").
		Find(&found).Error; err != nil {
		return nil, err
	}
	movements := make([]treasury.CashMovement, len(found))
	for i := range found {
		movements[i] = found[i].ToDomain()
	}
	return movements, nil
}

// Save persists a cash ledger entry
func (r *GormCashMovementRepository) Save(ctx context.Context, m *treasury.CashMovement) error {
	var model models.CashMovementModel
	model.FromDomain(*m)
	return r.db.WithContext(ctx).Save(&model).Error
}

// GormBalanceAdjustmentRepository implements treasury.BalanceAdjustmentRepository using GORM
type GormBalanceAdjustmentRepository struct {
	db *gorm.DB
}

// NewGormBalanceAdjustmentRepository creates a new GormBalanceAdjustmentRepository
func NewGormBalanceAdjustmentRepository(db *gorm.DB) *GormBalanceAdjustmentRepository {
	return &GormBalanceAdjustmentRepository{db: db}
}

// Save appends an adjustment record to the audit trail
func (r *GormBalanceAdjustmentRepository) Save(ctx context.Context, adj *treasury.BalanceAdjustment) error {
	var model models.BalanceAdjustmentModel
	model.FromDomain(adj)
	return r.db.WithContext(ctx).Create(&model).Error
}

// FindByAccount returns the adjustment history of one account, newest first
func (r *GormBalanceAdjustmentRepository) FindByAccount(ctx context.Context, accountID uuid.UUID) ([]treasury.BalanceAdjustment, error) {
	var found []models.BalanceAdjustmentModel
	if err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("recorded_at desc").
		Find(&found).Error; err != nil {
		return nil, err
	}
	adjustments := make([]treasury.BalanceAdjustment, len(found))
	for i := range found {
		adjustments[i] = *found[i].ToDomain()
	}
	return adjustments, nil
}

// Interface guards
var (
	_ treasury.BankAccountRepository       = (*GormBankAccountRepository)(nil)
	_ treasury.TransactionRepository       = (*GormTransactionRepository)(nil)
	_ treasury.CashRegisterRepository      = (*GormCashRegisterRepository)(nil)
	_ treasury.CashMovementRepository      = (*GormCashMovementRepository)(nil)
	_ treasury.BalanceAdjustmentRepository = (*GormBalanceAdjustmentRepository)(nil)
)
