package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/finoffice/backend/internal/domain/billing"
	"github.com/finoffice/backend/internal/domain/shared"
	"github.com/finoffice/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormInvoiceRepository implements billing.InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByID loads an invoice by ID, locking its row for the transaction.
// The lock serializes interactive payment recording against the batch pass.
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	var model models.InvoiceModel
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

// FindOpen returns invoices in SENT, PARTIAL or OVERDUE status, ordered by id
func (r *GormInvoiceRepository) FindOpen(ctx context.Context) ([]billing.Invoice, error) {
	var found []models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Where("status IN ?", []string{
			billing.InvoiceStatusSent.String(),
			billing.InvoiceStatusPartial.String(),
			billing.InvoiceStatusOverdue.String(),
		}).
		Order("id asc").
		Find(&found).Error; err != nil {
		return nil, err
	}
	return toDomainInvoices(found), nil
}

// Save persists the invoice aggregate
func (r *GormInvoiceRepository) Save(ctx context.Context, inv *billing.Invoice) error {
	var model models.InvoiceModel
	model.FromDomain(inv)
	return r.db.WithContext(ctx).Save(&model).Error
}

func toDomainInvoices(found []models.InvoiceModel) []billing.Invoice {
	invoices := make([]billing.Invoice, len(found))
	for i := range found {
		invoices[i] = *found[i].ToDomain()
	}
	return invoices
}

// GormQuoteRepository implements billing.QuoteRepository using GORM
type GormQuoteRepository struct {
	db *gorm.DB
}

// NewGormQuoteRepository creates a new GormQuoteRepository
func NewGormQuoteRepository(db *gorm.DB) *GormQuoteRepository {
	return &GormQuoteRepository{db: db}
}

// FindByID loads a quote by ID, locking its row for the transaction
func (r *GormQuoteRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Quote, error) {
	var model models.QuoteModel
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

// FindExpirable returns non-terminal quotes whose validity date precedes the
// given time, ordered by id
func (r *GormQuoteRepository) FindExpirable(ctx context.Context, before time.Time) ([]billing.Quote, error) {
	var found []models.QuoteModel
	if err := r.db.WithContext(ctx).
		Where("status IN ? AND validity_date < ?", []string{
			billing.QuoteStatusDraft.String(),
			billing.QuoteStatusSent.String(),
		}, before).
		Order("id asc").
		Find(&found).Error; err != nil {
		return nil, err
	}
	quotes := make([]billing.Quote, len(found))
	for i := range found {
		quotes[i] = *found[i].ToDomain()
	}
	return quotes, nil
}

// Save persists the quote aggregate
func (r *GormQuoteRepository) Save(ctx context.Context, q *billing.Quote) error {
	var model models.QuoteModel
	model.FromDomain(q)
	return r.db.WithContext(ctx).Save(&model).Error
}

// GormWorkOrderRepository implements billing.WorkOrderRepository using GORM
type GormWorkOrderRepository struct {
	db *gorm.DB
}

// NewGormWorkOrderRepository creates a new GormWorkOrderRepository
func NewGormWorkOrderRepository(db *gorm.DB) *GormWorkOrderRepository {
	return &GormWorkOrderRepository{db: db}
}

// FindByID loads a work order by ID, locking its row for the transaction
func (r *GormWorkOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.WorkOrder, error) {
	var model models.WorkOrderModel
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

// FindActive returns work orders in IN_PROGRESS or OVERDUE status, ordered by id
func (r *GormWorkOrderRepository) FindActive(ctx context.Context) ([]billing.WorkOrder, error) {
	var found []models.WorkOrderModel
	if err := r.db.WithContext(ctx).
		Where("status IN ?", []string{
			billing.WorkOrderStatusInProgress.String(),
			billing.WorkOrderStatusOverdue.String(),
		}).
		Order("id asc").
		Find(&found).Error; err != nil {
		return nil, err
	}
	orders := make([]billing.WorkOrder, len(found))
	for i := range found {
		orders[i] = *found[i].ToDomain()
	}
	return orders, nil
}

// Save persists the work order aggregate
func (r *GormWorkOrderRepository) Save(ctx context.Context, wo *billing.WorkOrder) error {
	var model models.WorkOrderModel
	model.FromDomain(wo)
	return r.db.WithContext(ctx).Save(&model).Error
}

// GormCreditNoteRepository implements billing.CreditNoteRepository using GORM
type GormCreditNoteRepository struct {
	db *gorm.DB
}

// NewGormCreditNoteRepository creates a new GormCreditNoteRepository
func NewGormCreditNoteRepository(db *gorm.DB) *GormCreditNoteRepository {
	return &GormCreditNoteRepository{db: db}
}

// FindByID loads a credit note by ID, locking its row for the transaction
func (r *GormCreditNoteRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.CreditNote, error) {
	var model models.CreditNoteModel
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

// Save persists the credit note aggregate
func (r *GormCreditNoteRepository) Save(ctx context.Context, cn *billing.CreditNote) error {
	var model models.CreditNoteModel
	model.FromDomain(cn)
	return r.db.WithContext(ctx).Save(&model).Error
}

// Interface guards
var (
	_ billing.InvoiceRepository    = (*GormInvoiceRepository)(nil)
	_ billing.QuoteRepository      = (*GormQuoteRepository)(nil)
	_ billing.WorkOrderRepository  = (*GormWorkOrderRepository)(nil)
	_ billing.CreditNoteRepository = (*GormCreditNoteRepository)(nil)
)
