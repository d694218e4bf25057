package reconciliation

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/finoffice/backend/internal/domain/billing"
	"github.com/finoffice/backend/internal/domain/credit"
	"github.com/finoffice/backend/internal/domain/shared"
	"github.com/finoffice/backend/internal/domain/treasury"
)

// memRepos is the in-memory TransactionalRepositories used by the service
// tests. Reads hand out copies, so mutations only stick through Save, the
// same contract the row-locked gorm repositories give the services.
type memRepos struct {
	invoices    map[uuid.UUID]billing.Invoice
	quotes      map[uuid.UUID]billing.Quote
	workOrders  map[uuid.UUID]billing.WorkOrder
	creditNotes map[uuid.UUID]billing.CreditNote
	credits     map[uuid.UUID]credit.Credit
	accounts    map[uuid.UUID]treasury.BankAccount
	registers   map[uuid.UUID]treasury.CashRegister
	txns        map[uuid.UUID][]treasury.Transaction
	movements   map[uuid.UUID][]treasury.CashMovement
	adjustments []treasury.BalanceAdjustment

	// failInvoiceSave, when set, makes Save on that invoice fail
	failInvoiceSave map[uuid.UUID]error
}

func newMemRepos() *memRepos {
	return &memRepos{
		invoices:        make(map[uuid.UUID]billing.Invoice),
		quotes:          make(map[uuid.UUID]billing.Quote),
		workOrders:      make(map[uuid.UUID]billing.WorkOrder),
		creditNotes:     make(map[uuid.UUID]billing.CreditNote),
		credits:         make(map[uuid.UUID]credit.Credit),
		accounts:        make(map[uuid.UUID]treasury.BankAccount),
		registers:       make(map[uuid.UUID]treasury.CashRegister),
		txns:            make(map[uuid.UUID][]treasury.Transaction),
		movements:       make(map[uuid.UUID][]treasury.CashMovement),
		failInvoiceSave: make(map[uuid.UUID]error),
	}
}

func (m *memRepos) scope() *NoOpTransactionScope {
	return &NoOpTransactionScope{Repos: m}
}

func (m *memRepos) InvoiceRepo() billing.InvoiceRepository                   { return &memInvoiceRepo{m} }
func (m *memRepos) QuoteRepo() billing.QuoteRepository                       { return &memQuoteRepo{m} }
func (m *memRepos) WorkOrderRepo() billing.WorkOrderRepository               { return &memWorkOrderRepo{m} }
func (m *memRepos) CreditNoteRepo() billing.CreditNoteRepository             { return &memCreditNoteRepo{m} }
func (m *memRepos) CreditRepo() credit.Repository                            { return &memCreditRepo{m} }
func (m *memRepos) BankAccountRepo() treasury.BankAccountRepository          { return &memBankAccountRepo{m} }
func (m *memRepos) CashRegisterRepo() treasury.CashRegisterRepository        { return &memCashRegisterRepo{m} }
func (m *memRepos) TransactionRepo() treasury.TransactionRepository          { return &memTransactionRepo{m} }
func (m *memRepos) CashMovementRepo() treasury.CashMovementRepository        { return &memCashMovementRepo{m} }
func (m *memRepos) BalanceAdjustmentRepo() treasury.BalanceAdjustmentRepository {
	return &memBalanceAdjustmentRepo{m}
}

func sortedIDs[T any](in map[uuid.UUID]T) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(in))
	for id := range in {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}

type memInvoiceRepo struct{ m *memRepos }

func (r *memInvoiceRepo) FindByID(_ context.Context, id uuid.UUID) (*billing.Invoice, error) {
	inv, ok := r.m.invoices[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &inv, nil
}

func (r *memInvoiceRepo) FindOpen(_ context.Context) ([]billing.Invoice, error) {
	var out []billing.Invoice
	for _, id := range sortedIDs(r.m.invoices) {
		if r.m.invoices[id].Status.IsOpen() {
			out = append(out, r.m.invoices[id])
		}
	}
	return out, nil
}

func (r *memInvoiceRepo) Save(_ context.Context, inv *billing.Invoice) error {
	if err, ok := r.m.failInvoiceSave[inv.ID]; ok {
		return err
	}
	r.m.invoices[inv.ID] = *inv
	return nil
}

type memQuoteRepo struct{ m *memRepos }

func (r *memQuoteRepo) FindByID(_ context.Context, id uuid.UUID) (*billing.Quote, error) {
	q, ok := r.m.quotes[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &q, nil
}

func (r *memQuoteRepo) FindExpirable(_ context.Context, before time.Time) ([]billing.Quote, error) {
	var out []billing.Quote
	for _, id := range sortedIDs(r.m.quotes) {
		q := r.m.quotes[id]
		if !q.Status.IsTerminal() && q.ValidityDate.Before(before) {
			out = append(out, q)
		}
	}
	return out, nil
}

func (r *memQuoteRepo) Save(_ context.Context, q *billing.Quote) error {
	r.m.quotes[q.ID] = *q
	return nil
}

type memWorkOrderRepo struct{ m *memRepos }

func (r *memWorkOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*billing.WorkOrder, error) {
	wo, ok := r.m.workOrders[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &wo, nil
}

func (r *memWorkOrderRepo) FindActive(_ context.Context) ([]billing.WorkOrder, error) {
	var out []billing.WorkOrder
	for _, id := range sortedIDs(r.m.workOrders) {
		wo := r.m.workOrders[id]
		if wo.Status == billing.WorkOrderStatusInProgress || wo.Status == billing.WorkOrderStatusOverdue {
			out = append(out, wo)
		}
	}
	return out, nil
}

func (r *memWorkOrderRepo) Save(_ context.Context, wo *billing.WorkOrder) error {
	r.m.workOrders[wo.ID] = *wo
	return nil
}

type memCreditNoteRepo struct{ m *memRepos }

func (r *memCreditNoteRepo) FindByID(_ context.Context, id uuid.UUID) (*billing.CreditNote, error) {
	cn, ok := r.m.creditNotes[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &cn, nil
}

func (r *memCreditNoteRepo) Save(_ context.Context, cn *billing.CreditNote) error {
	r.m.creditNotes[cn.ID] = *cn
	return nil
}

type memCreditRepo struct{ m *memRepos }

func (r *memCreditRepo) FindByID(_ context.Context, id uuid.UUID) (*credit.Credit, error) {
	c, ok := r.m.credits[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	c.Installments = append([]credit.Installment(nil), c.Installments...)
	return &c, nil
}

func (r *memCreditRepo) FindSweepable(_ context.Context) ([]credit.Credit, error) {
	var out []credit.Credit
	for _, id := range sortedIDs(r.m.credits) {
		c := r.m.credits[id]
		if c.Status == credit.StatusActive || c.Status == credit.StatusOverdue {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *memCreditRepo) Save(_ context.Context, c *credit.Credit) error {
	stored := *c
	stored.Installments = append([]credit.Installment(nil), c.Installments...)
	r.m.credits[c.ID] = stored
	return nil
}

type memBankAccountRepo struct{ m *memRepos }

func (r *memBankAccountRepo) FindByID(_ context.Context, id uuid.UUID) (*treasury.BankAccount, error) {
	a, ok := r.m.accounts[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &a, nil
}

func (r *memBankAccountRepo) FindAll(_ context.Context) ([]treasury.BankAccount, error) {
	var out []treasury.BankAccount
	for _, id := range sortedIDs(r.m.accounts) {
		out = append(out, r.m.accounts[id])
	}
	return out, nil
}

func (r *memBankAccountRepo) Save(_ context.Context, a *treasury.BankAccount) error {
	r.m.accounts[a.ID] = *a
	return nil
}

type memCashRegisterRepo struct{ m *memRepos }

func (r *memCashRegisterRepo) FindByID(_ context.Context, id uuid.UUID) (*treasury.CashRegister, error) {
	reg, ok := r.m.registers[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &reg, nil
}

func (r *memCashRegisterRepo) FindAll(_ context.Context) ([]treasury.CashRegister, error) {
	var out []treasury.CashRegister
	for _, id := range sortedIDs(r.m.registers) {
		out = append(out, r.m.registers[id])
	}
	return out, nil
}

func (r *memCashRegisterRepo) Save(_ context.Context, reg *treasury.CashRegister) error {
	r.m.registers[reg.ID] = *reg
	return nil
}

type memTransactionRepo struct{ m *memRepos }

func (r *memTransactionRepo) FindByAccount(_ context.Context, accountID uuid.UUID) ([]treasury.Transaction, error) {
	return append([]treasury.Transaction(nil), r.m.txns[accountID]...), nil
}

func (r *memTransactionRepo) Save(_ context.Context, t *treasury.Transaction) error {
	r.m.txns[t.AccountID] = append(r.m.txns[t.AccountID], *t)
	return nil
}

type memCashMovementRepo struct{ m *memRepos }

func (r *memCashMovementRepo) FindByRegister(_ context.Context, registerID uuid.UUID) ([]treasury.CashMovement, error) {
	return append([]treasury.CashMovement(nil), r.m.movements[registerID]...), nil
}

func (r *memCashMovementRepo) Save(_ context.Context, mv *treasury.CashMovement) error {
	r.m.movements[mv.RegisterID] = append(r.m.movements[mv.RegisterID], *mv)
	return nil
}

type memBalanceAdjustmentRepo struct{ m *memRepos }

func (r *memBalanceAdjustmentRepo) Save(_ context.Context, adj *treasury.BalanceAdjustment) error {
	r.m.adjustments = append(r.m.adjustments, *adj)
	return nil
}

func (r *memBalanceAdjustmentRepo) FindByAccount(_ context.Context, accountID uuid.UUID) ([]treasury.BalanceAdjustment, error) {
	var out []treasury.BalanceAdjustment
	for _, adj := range r.m.adjustments {
		if adj.AccountID == accountID {
			out = append(out, adj)
		}
	}
	return out, nil
}

// memIdempotencyStore is a map-backed IdempotencyStore with failure injection
type memIdempotencyStore struct {
	mu   sync.Mutex
	seen map[string]bool
	err  error
}

func newMemIdempotencyStore() *memIdempotencyStore {
	return &memIdempotencyStore{seen: make(map[string]bool)}
}

func (s *memIdempotencyStore) MarkProcessed(_ context.Context, key string, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	if s.seen[key] {
		return false, nil
	}
	s.seen[key] = true
	return true, nil
}

func (s *memIdempotencyStore) IsProcessed(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seen[key], nil
}

func (s *memIdempotencyStore) Close() error { return nil }

// collectingSink records every delivered notification
type collectingSink struct {
	mu            sync.Mutex
	notifications []shared.Notification
}

func (s *collectingSink) Notify(_ context.Context, n shared.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = append(s.notifications, n)
	return nil
}

func (s *collectingSink) byType(eventType string) []shared.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []shared.Notification
	for _, n := range s.notifications {
		if n.EventType == eventType {
			out = append(out, n)
		}
	}
	return out
}

func (s *collectingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.notifications)
}

// collectingBus records every published domain event
type collectingBus struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (b *collectingBus) Publish(_ context.Context, events ...shared.DomainEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, events...)
	return nil
}

func (b *collectingBus) eventTypes() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []string
	for _, e := range b.events {
		out = append(out, e.EventType())
	}
	return out
}

// testNotifier builds a Notifier over a fresh store and the given sink
func testNotifier(sink shared.NotificationSink, store shared.IdempotencyStore) *Notifier {
	return NewNotifier(sink, store, shared.DefaultIdempotencyConfig(), zap.NewNop())
}
