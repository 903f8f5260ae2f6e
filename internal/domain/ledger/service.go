package ledger

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

type Service struct {
	repo Repository
	now  func() time.Time
	// mu serializes Save's read-modify-write within this process.
	mu sync.Mutex
}

type Option func(*Service)

// WithClock replaces time.Now as the source of ids and timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{repo: repo, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save upserts the patient snapshot under its normalized id and appends a new
// prescription. Input is not validated here; callers decide what a complete
// form is. Both collections are written together or not at all.
func (s *Service) Save(ctx context.Context, in PrescriptionInput) (*Prescription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	patients, err := s.repo.Patients(ctx)
	if err != nil {
		return nil, err
	}
	prescriptions, err := s.repo.Prescriptions(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC().Truncate(time.Millisecond)
	patientID := NormalizePatientID(in.PatientData.Name)

	patients.Put(patientID, &Patient{
		ID:          patientID,
		PatientData: in.PatientData,
		LastVisit:   now,
	})

	medicines := make([]Medicine, len(in.Medicines))
	copy(medicines, in.Medicines)

	rx := &Prescription{
		ID:          nextID(now, prescriptions),
		PatientID:   patientID,
		PatientData: in.PatientData,
		Diagnosis:   in.Diagnosis,
		Medicines:   medicines,
		Timestamp:   now,
	}

	if err := s.repo.Write(ctx, patients, append(prescriptions, rx)); err != nil {
		return nil, err
	}
	return rx, nil
}

// nextID is now in milliseconds, or one past the largest existing id when
// the clock has not moved past it.
func nextID(now time.Time, existing []*Prescription) int64 {
	id := now.UnixMilli()
	for _, p := range existing {
		if p.ID >= id {
			id = p.ID + 1
		}
	}
	return id
}

// AllPatients returns every patient in the order ids were first saved.
func (s *Service) AllPatients(ctx context.Context) ([]*Patient, error) {
	patients, err := s.repo.Patients(ctx)
	if err != nil {
		return nil, err
	}
	return patients.Values(), nil
}

// SearchPatients filters AllPatients by a case-insensitive substring of the
// patient name. An empty term matches everyone.
func (s *Service) SearchPatients(ctx context.Context, term string) ([]*Patient, error) {
	all, err := s.AllPatients(ctx)
	if err != nil {
		return nil, err
	}
	if term == "" {
		return all, nil
	}
	term = strings.ToLower(term)
	out := make([]*Patient, 0, len(all))
	for _, p := range all {
		if strings.Contains(strings.ToLower(p.Name), term) {
			out = append(out, p)
		}
	}
	return out, nil
}

// PatientHistory returns the patient's prescriptions, most recent first.
// Equal timestamps keep creation order.
func (s *Service) PatientHistory(ctx context.Context, patientID string) ([]*Prescription, error) {
	all, err := s.repo.Prescriptions(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*Prescription, 0)
	for _, p := range all {
		if p.PatientID == patientID {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out, nil
}

// Prescriptions returns the whole ledger in creation order.
func (s *Service) Prescriptions(ctx context.Context) ([]*Prescription, error) {
	return s.repo.Prescriptions(ctx)
}
