package styles

import "testing"

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"Aerodynamic", 20, "Aerodynamic"},
		{"Aerodynamic", 8, "Aerod..."},
		{"Aerodynamic", 3, "Aer"},
		{"Aerodynamic", 0, ""},
		{"Motörhead", 7, "Motö..."},
	}
	for _, tt := range tests {
		if got := Truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}
