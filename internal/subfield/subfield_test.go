package subfield

import "testing"

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Map
	}{
		{
			name: "unit separator",
			raw:  "\x1fAИванов\x1fBИ.О.",
			want: Map{"A": "Иванов", "B": "И.О."},
		},
		{
			name: "caret",
			raw:  "^AПетров^BП.П.",
			want: Map{"A": "Петров", "B": "П.П."},
		},
		{
			name: "mixed delimiters and padding",
			raw:  "  ^A  Сидоров \x1f B С.С.  ",
			want: Map{"A": "Сидоров", "B": "С.С."},
		},
		{
			name: "last occurrence wins",
			raw:  "^AFirst^ASecond",
			want: Map{"A": "Second"},
		},
		{
			name: "lowercase code",
			raw:  "^aИванов",
			want: Map{"A": "Иванов"},
		},
		{
			name: "code only",
			raw:  "^A^BИ.",
			want: Map{"A": "", "B": "И."},
		},
		{
			name: "empty",
			raw:  "",
			want: Map{},
		},
		{
			name: "only delimiters",
			raw:  "^^\x1f ^",
			want: Map{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decode(tt.raw)
			if len(got) != len(tt.want) {
				t.Fatalf("Decode(%q) = %v, want %v", tt.raw, got, tt.want)
			}
			for code, value := range tt.want {
				if got[code] != value {
					t.Errorf("Decode(%q)[%q] = %q, want %q", tt.raw, code, got[code], value)
				}
			}
		})
	}
}

func TestMapAccessors(t *testing.T) {
	m := Decode("^AИванов")
	if m.Get("A") != "Иванов" {
		t.Errorf("expected subfield A, got %v", m)
	}
	if _, ok := m["B"]; ok {
		t.Error("expected no subfield B")
	}
	if m.Get("B") != "" {
		t.Errorf("Get of absent subfield = %q, want empty", m.Get("B"))
	}
}
