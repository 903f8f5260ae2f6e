package analytics

import (
	"context"
	"sort"

	"github.com/rxdesk/rxdesk/internal/domain/ledger"
)

// TopN is how many entries each trend list holds.
const TopN = 5

// Source is the read side of the ledger.
type Source interface {
	Prescriptions(ctx context.Context) ([]*ledger.Prescription, error)
}

// CountEntry is one row of a trend list.
type CountEntry struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Summary is the dashboard aggregate over every stored prescription.
type Summary struct {
	TotalPrescriptions int          `json:"totalPrescriptions"`
	DiseaseTrends      []CountEntry `json:"diseaseTrends"`
	TopMedicines       []CountEntry `json:"topMedicines"`
}

type Service struct {
	src Source
}

func NewService(src Source) *Service {
	return &Service{src: src}
}

// Summary counts diagnoses and medicine names across the whole ledger.
// Empty diagnoses and empty medicine names are skipped. Nothing is cached.
func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	all, err := s.src.Prescriptions(ctx)
	if err != nil {
		return nil, err
	}

	diseases := newCounter()
	medicines := newCounter()
	for _, rx := range all {
		diseases.add(rx.Diagnosis)
		for _, m := range rx.Medicines {
			medicines.add(m.Name)
		}
	}

	return &Summary{
		TotalPrescriptions: len(all),
		DiseaseTrends:      diseases.top(TopN),
		TopMedicines:       medicines.top(TopN),
	}, nil
}

// counter tallies names and remembers the order each was first seen, which
// breaks ties in top.
type counter struct {
	entries []CountEntry
	index   map[string]int
}

func newCounter() *counter {
	return &counter{index: make(map[string]int)}
}

func (c *counter) add(name string) {
	if name == "" {
		return
	}
	if i, ok := c.index[name]; ok {
		c.entries[i].Count++
		return
	}
	c.index[name] = len(c.entries)
	c.entries = append(c.entries, CountEntry{Name: name, Count: 1})
}

func (c *counter) top(n int) []CountEntry {
	out := make([]CountEntry, len(c.entries))
	copy(out, c.entries)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
