package ledger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// TimeLayout is how timestamps are written: UTC with exactly three
// fractional digits, e.g. 2026-10-17T09:30:00.000Z.
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

func formatTime(t time.Time) string { return t.UTC().Format(TimeLayout) }

// Age is kept as text. The form submits it as a string but API clients may
// send a JSON number, so both are accepted on input.
type Age string

func (a *Age) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*a = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("age: %w", err)
		}
		*a = Age(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("age must be a string or number: %w", err)
	}
	*a = Age(n.String())
	return nil
}

// PatientData is the patient section of the prescription form.
type PatientData struct {
	Name     string `json:"name"`
	Age      Age    `json:"age"`
	Gender   string `json:"gender"`
	Date     string `json:"date"`
	Symptoms string `json:"symptoms"`
}

// Patient is the latest snapshot submitted for one normalized patient id.
// Two different people whose names normalize to the same id share a record.
type Patient struct {
	ID string `json:"id"`
	PatientData
	LastVisit time.Time `json:"lastVisit"`
}

func (p Patient) MarshalJSON() ([]byte, error) {
	type plain Patient
	return json.Marshal(struct {
		plain
		LastVisit string `json:"lastVisit"`
	}{plain(p), formatTime(p.LastVisit)})
}

// Medicine is one line of a prescription.
type Medicine struct {
	Name        string `json:"name"`
	Dosage      string `json:"dosage"`
	Frequency   string `json:"frequency"`
	Duration    string `json:"duration"`
	Instruction string `json:"instruction"`
	Type        string `json:"type,omitempty"`
}

// PrescriptionInput is what a "Save & Print" submits.
type PrescriptionInput struct {
	PatientData PatientData `json:"patientData"`
	Diagnosis   string      `json:"diagnosis"`
	Medicines   []Medicine  `json:"medicines"`
}

// Prescription is an immutable ledger entry. ID is the creation time in Unix
// milliseconds, bumped when needed so ids strictly increase.
type Prescription struct {
	ID          int64       `json:"id"`
	PatientID   string      `json:"patientId"`
	PatientData PatientData `json:"patientData"`
	Diagnosis   string      `json:"diagnosis"`
	Medicines   []Medicine  `json:"medicines"`
	Timestamp   time.Time   `json:"timestamp"`
}

func (rx Prescription) MarshalJSON() ([]byte, error) {
	type plain Prescription
	return json.Marshal(struct {
		plain
		Timestamp string `json:"timestamp"`
	}{plain(rx), formatTime(rx.Timestamp)})
}

// PatientIndex is the persisted "patients" object. It keeps keys in first
// insertion order, which is the order the object is written and read back.
type PatientIndex struct {
	order []string
	byID  map[string]*Patient
}

func NewPatientIndex() *PatientIndex {
	return &PatientIndex{byID: make(map[string]*Patient)}
}

// Put replaces the record for id. A new id is appended to the order; an
// existing id keeps its position.
func (idx *PatientIndex) Put(id string, p *Patient) {
	if idx.byID == nil {
		idx.byID = make(map[string]*Patient)
	}
	if _, ok := idx.byID[id]; !ok {
		idx.order = append(idx.order, id)
	}
	idx.byID[id] = p
}

func (idx *PatientIndex) Get(id string) (*Patient, bool) {
	p, ok := idx.byID[id]
	return p, ok
}

func (idx *PatientIndex) Len() int { return len(idx.order) }

// Values returns the records in key order.
func (idx *PatientIndex) Values() []*Patient {
	out := make([]*Patient, 0, len(idx.order))
	for _, id := range idx.order {
		out = append(out, idx.byID[id])
	}
	return out
}

func (idx *PatientIndex) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, id := range idx.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(id)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(idx.byID[id])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object token by token so key order survives.
// A JSON null decodes to an empty index.
func (idx *PatientIndex) UnmarshalJSON(b []byte) error {
	*idx = PatientIndex{byID: make(map[string]*Patient)}

	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("patients: expected object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("patients: expected key, got %v", tok)
		}
		var p Patient
		if err := dec.Decode(&p); err != nil {
			return fmt.Errorf("patients[%q]: %w", key, err)
		}
		idx.Put(key, &p)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}
