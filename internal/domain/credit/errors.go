package credit

import (
	"fmt"

	"github.com/finoffice/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// OutOfSequenceError is returned when a payment targets an installment other
// than the next payable one. Installments must be settled in ascending
// sequence order; the rejected payment leaves all installment states unchanged.
type OutOfSequenceError struct {
	*shared.DomainError
	CreditID  uuid.UUID
	Requested int
	Expected  int
}

// Unwrap exposes the embedded domain error so shared.IsValidationError
// classifies out-of-sequence payments as rejected input, not retried.
func (e *OutOfSequenceError) Unwrap() error {
	return e.DomainError
}

// NewOutOfSequenceError creates an OutOfSequenceError for the given slots
func NewOutOfSequenceError(creditID uuid.UUID, requested, expected int) *OutOfSequenceError {
	return &OutOfSequenceError{
		DomainError: shared.NewDomainError("OUT_OF_SEQUENCE",
			fmt.Sprintf("Installment %d cannot be paid before installment %d", requested, expected)),
		CreditID:  creditID,
		Requested: requested,
		Expected:  expected,
	}
}
