package ledger

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rxdesk/rxdesk/internal/platform/kv"
)

// Keys of the two top-level documents in the key/value store.
const (
	PatientsKey      = "patients"
	PrescriptionsKey = "prescriptions"
)

type kvRepo struct {
	store kv.Store
}

// NewKVRepo persists the ledger as two JSON documents in store: an object of
// patients keyed by id and an array of prescriptions in creation order.
func NewKVRepo(store kv.Store) Repository {
	return &kvRepo{store: store}
}

func (r *kvRepo) Patients(ctx context.Context) (*PatientIndex, error) {
	raw, ok, err := r.store.Get(ctx, PatientsKey)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", PatientsKey, err)
	}
	idx := NewPatientIndex()
	if !ok {
		return idx, nil
	}
	if err := json.Unmarshal([]byte(raw), idx); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptLedger, PatientsKey, err)
	}
	return idx, nil
}

func (r *kvRepo) Prescriptions(ctx context.Context) ([]*Prescription, error) {
	raw, ok, err := r.store.Get(ctx, PrescriptionsKey)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", PrescriptionsKey, err)
	}
	if !ok {
		return []*Prescription{}, nil
	}
	var out []*Prescription
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptLedger, PrescriptionsKey, err)
	}
	for i, p := range out {
		if p == nil {
			return nil, fmt.Errorf("%w: %s[%d] is null", ErrCorruptLedger, PrescriptionsKey, i)
		}
	}
	if out == nil {
		out = []*Prescription{}
	}
	return out, nil
}

func (r *kvRepo) Write(ctx context.Context, patients *PatientIndex, prescriptions []*Prescription) error {
	pj, err := json.Marshal(patients)
	if err != nil {
		return fmt.Errorf("encode %s: %w", PatientsKey, err)
	}
	rj, err := json.Marshal(prescriptions)
	if err != nil {
		return fmt.Errorf("encode %s: %w", PrescriptionsKey, err)
	}
	err = r.store.SetMany(ctx, []kv.Entry{
		{Key: PatientsKey, Value: string(pj)},
		{Key: PrescriptionsKey, Value: string(rj)},
	})
	if err != nil {
		return fmt.Errorf("write ledger: %w", err)
	}
	return nil
}
