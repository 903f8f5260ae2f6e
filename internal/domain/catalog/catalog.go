package catalog

// Medicine is a catalog entry offered by the prescription form.
type Medicine struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Type          string `json:"type"`
	DefaultDosage string `json:"defaultDosage"`
}

// Catalog is the static reference data behind the form's pickers.
type Catalog struct {
	Medicines    []Medicine `json:"medicines"`
	Diseases     []string   `json:"diseases"`
	Frequencies  []string   `json:"frequencies"`
	Durations    []string   `json:"durations"`
	Instructions []string   `json:"instructions"`
}

var medicines = []Medicine{
	{ID: "m1", Name: "Paracetamol", Type: "Tablet", DefaultDosage: "500mg"},
	{ID: "m2", Name: "Amoxicillin", Type: "Capsule", DefaultDosage: "500mg"},
	{ID: "m3", Name: "Ibuprofen", Type: "Tablet", DefaultDosage: "400mg"},
	{ID: "m4", Name: "Cetirizine", Type: "Tablet", DefaultDosage: "10mg"},
	{ID: "m5", Name: "Azithromycin", Type: "Tablet", DefaultDosage: "500mg"},
	{ID: "m6", Name: "Metformin", Type: "Tablet", DefaultDosage: "500mg"},
	{ID: "m7", Name: "Atorvastatin", Type: "Tablet", DefaultDosage: "10mg"},
	{ID: "m8", Name: "Pantoprazole", Type: "Tablet", DefaultDosage: "40mg"},
	{ID: "m9", Name: "Vitamin D3", Type: "Sachet", DefaultDosage: "60k IU"},
	{ID: "m10", Name: "Cough Syrup", Type: "Syrup", DefaultDosage: "10ml"},
}

var diseases = []string{
	"Viral Fever",
	"Common Cold / Flu",
	"Typhoid",
	"Malaria",
	"Diabetes Type 2",
	"Hypertension",
	"Gastroenteritis",
	"Migraine",
	"Bronchitis",
	"Allergic Rhinitis",
}

var (
	frequencies  = []string{"1-0-1", "1-0-0", "0-0-1", "1-1-1", "SOS", "0-1-0"}
	durations    = []string{"3 days", "5 days", "7 days", "10 days", "15 days", "1 month"}
	instructions = []string{"After food", "Before food", "With food", "Before sleep"}
)

// Get returns a fresh copy so callers cannot mutate the package data.
func Get() *Catalog {
	return &Catalog{
		Medicines:    append([]Medicine(nil), medicines...),
		Diseases:     append([]string(nil), diseases...),
		Frequencies:  append([]string(nil), frequencies...),
		Durations:    append([]string(nil), durations...),
		Instructions: append([]string(nil), instructions...),
	}
}

// FindMedicine looks a catalog medicine up by name, case-sensitively.
func FindMedicine(name string) (Medicine, bool) {
	for _, m := range medicines {
		if m.Name == name {
			return m, true
		}
	}
	return Medicine{}, false
}
