package models

import (
	"time"

	"github.com/finoffice/backend/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceModel is the persistence model for the Invoice aggregate root.
type InvoiceModel struct {
	AggregateModel
	InvoiceNumber  string                 `gorm:"type:varchar(50);not null;uniqueIndex"`
	CustomerID     uuid.UUID              `gorm:"type:uuid;not null;index"`
	CustomerName   string                 `gorm:"type:varchar(200);not null"`
	Total          decimal.Decimal        `gorm:"type:decimal(18,4);not null"`
	AmountPaid     decimal.Decimal        `gorm:"type:decimal(18,4);not null"`
	DueDate        *time.Time             `gorm:"index"`
	Status         billing.InvoiceStatus  `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	PaymentRecords billing.PaymentRecords `gorm:"type:jsonb;default:'[]'"`
	PaidAt         *time.Time
	CancelledAt    *time.Time
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice entity.
func (m *InvoiceModel) ToDomain() *billing.Invoice {
	return &billing.Invoice{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		InvoiceNumber:     m.InvoiceNumber,
		CustomerID:        m.CustomerID,
		CustomerName:      m.CustomerName,
		Total:             m.Total,
		AmountPaid:        m.AmountPaid,
		DueDate:           m.DueDate,
		Status:            m.Status,
		PaymentRecords:    m.PaymentRecords,
		PaidAt:            m.PaidAt,
		CancelledAt:       m.CancelledAt,
	}
}

// FromDomain populates the persistence model from a domain Invoice entity.
func (m *InvoiceModel) FromDomain(inv *billing.Invoice) {
	m.FromDomainAggregateRoot(inv.BaseAggregateRoot)
	m.InvoiceNumber = inv.InvoiceNumber
	m.CustomerID = inv.CustomerID
	m.CustomerName = inv.CustomerName
	m.Total = inv.Total
	m.AmountPaid = inv.AmountPaid
	m.DueDate = inv.DueDate
	m.Status = inv.Status
	m.PaymentRecords = inv.PaymentRecords
	m.PaidAt = inv.PaidAt
	m.CancelledAt = inv.CancelledAt
}

// QuoteModel is the persistence model for the Quote aggregate root.
type QuoteModel struct {
	AggregateModel
	QuoteNumber  string              `gorm:"type:varchar(50);not null;uniqueIndex"`
	CustomerID   uuid.UUID           `gorm:"type:uuid;not null;index"`
	CustomerName string              `gorm:"type:varchar(200);not null"`
	Total        decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	ValidityDate time.Time           `gorm:"not null;index"`
	Status       billing.QuoteStatus `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	AcceptedAt   *time.Time
	RejectedAt   *time.Time
	ExpiredAt    *time.Time
	ConvertedAt  *time.Time
}

// TableName returns the table name for GORM
func (QuoteModel) TableName() string {
	return "quotes"
}

// ToDomain converts the persistence model to a domain Quote entity.
func (m *QuoteModel) ToDomain() *billing.Quote {
	return &billing.Quote{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		QuoteNumber:       m.QuoteNumber,
		CustomerID:        m.CustomerID,
		CustomerName:      m.CustomerName,
		Total:             m.Total,
		ValidityDate:      m.ValidityDate,
		Status:            m.Status,
		AcceptedAt:        m.AcceptedAt,
		RejectedAt:        m.RejectedAt,
		ExpiredAt:         m.ExpiredAt,
		ConvertedAt:       m.ConvertedAt,
	}
}

// FromDomain populates the persistence model from a domain Quote entity.
func (m *QuoteModel) FromDomain(q *billing.Quote) {
	m.FromDomainAggregateRoot(q.BaseAggregateRoot)
	m.QuoteNumber = q.QuoteNumber
	m.CustomerID = q.CustomerID
	m.CustomerName = q.CustomerName
	m.Total = q.Total
	m.ValidityDate = q.ValidityDate
	m.Status = q.Status
	m.AcceptedAt = q.AcceptedAt
	m.RejectedAt = q.RejectedAt
	m.ExpiredAt = q.ExpiredAt
	m.ConvertedAt = q.ConvertedAt
}

// WorkOrderModel is the persistence model for the WorkOrder aggregate root.
// Lines are embedded as JSONB, mirroring invoice payment records.
type WorkOrderModel struct {
	AggregateModel
	OrderNumber  string                  `gorm:"type:varchar(50);not null;uniqueIndex"`
	CustomerID   uuid.UUID               `gorm:"type:uuid;not null;index"`
	CustomerName string                  `gorm:"type:varchar(200);not null"`
	Status       billing.WorkOrderStatus `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	Lines        billing.WorkOrderLines  `gorm:"type:jsonb;default:'[]'"`
	CompletedAt  *time.Time
}

// TableName returns the table name for GORM
func (WorkOrderModel) TableName() string {
	return "work_orders"
}

// ToDomain converts the persistence model to a domain WorkOrder entity.
func (m *WorkOrderModel) ToDomain() *billing.WorkOrder {
	return &billing.WorkOrder{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		OrderNumber:       m.OrderNumber,
		CustomerID:        m.CustomerID,
		CustomerName:      m.CustomerName,
		Status:            m.Status,
		Lines:             m.Lines,
		CompletedAt:       m.CompletedAt,
	}
}

// FromDomain populates the persistence model from a domain WorkOrder entity.
func (m *WorkOrderModel) FromDomain(wo *billing.WorkOrder) {
	m.FromDomainAggregateRoot(wo.BaseAggregateRoot)
	m.OrderNumber = wo.OrderNumber
	m.CustomerID = wo.CustomerID
	m.CustomerName = wo.CustomerName
	m.Status = wo.Status
	m.Lines = wo.Lines
	m.CompletedAt = wo.CompletedAt
}

// CreditNoteModel is the persistence model for the CreditNote aggregate root.
type CreditNoteModel struct {
	AggregateModel
	CreditNoteNumber string                   `gorm:"type:varchar(50);not null;uniqueIndex"`
	Total            decimal.Decimal          `gorm:"type:decimal(18,4);not null"`
	Remaining        decimal.Decimal          `gorm:"type:decimal(18,4);not null"`
	Status           billing.CreditNoteStatus `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	ValidatedAt      *time.Time
	CompensatedAt    *time.Time
}

// TableName returns the table name for GORM
func (CreditNoteModel) TableName() string {
	return "credit_notes"
}

// ToDomain converts the persistence model to a domain CreditNote entity.
func (m *CreditNoteModel) ToDomain() *billing.CreditNote {
	return &billing.CreditNote{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		CreditNoteNumber:  m.CreditNoteNumber,
		Total:             m.Total,
		Remaining:         m.Remaining,
		Status:            m.Status,
		ValidatedAt:       m.ValidatedAt,
		CompensatedAt:     m.CompensatedAt,
	}
}

// FromDomain populates the persistence model from a domain CreditNote entity.
func (m *CreditNoteModel) FromDomain(cn *billing.CreditNote) {
	m.FromDomainAggregateRoot(cn.BaseAggregateRoot)
	m.CreditNoteNumber = cn.CreditNoteNumber
	m.Total = cn.Total
	m.Remaining = cn.Remaining
	m.Status = cn.Status
	m.ValidatedAt = cn.ValidatedAt
	m.CompensatedAt = cn.CompensatedAt
}
