package ledger

import "testing"

func TestNormalizePatientID(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"John Doe", "john_doe"},
		{"john doe", "john_doe"},
		{"John  Doe", "john_doe"},
		{"John\tDoe", "john_doe"},
		{"MEERA", "meera"},
		{" Ann", "_ann"},
		{"Ann ", "ann_"},
		{"", ""},
		{"Ravi \n Kumar", "ravi_kumar"},
	}
	for _, tt := range tests {
		if got := NormalizePatientID(tt.in); got != tt.want {
			t.Errorf("NormalizePatientID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizePatientID_Idempotent(t *testing.T) {
	for _, name := range []string{"John Doe", "  a  b  ", "Dr. X"} {
		once := NormalizePatientID(name)
		if twice := NormalizePatientID(once); twice != once {
			t.Errorf("not idempotent for %q: %q then %q", name, once, twice)
		}
	}
}
