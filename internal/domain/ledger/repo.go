package ledger

import (
	"context"
	"errors"
)

// ErrCorruptLedger is returned when persisted ledger state cannot be
// decoded. The ledger refuses to treat unreadable state as empty.
var ErrCorruptLedger = errors.New("ledger state is corrupt")

// Repository loads and stores the two ledger collections. Reads always
// reflect the latest successful Write.
type Repository interface {
	Patients(ctx context.Context) (*PatientIndex, error)
	Prescriptions(ctx context.Context) ([]*Prescription, error)
	// Write persists both collections together.
	Write(ctx context.Context, patients *PatientIndex, prescriptions []*Prescription) error
}
