package user

import "testing"

func TestSplitDisplayName(t *testing.T) {
	tests := []struct {
		in          string
		wantName    string
		wantSurname string
	}{
		{in: "", wantName: "", wantSurname: ""},
		{in: "   ", wantName: "", wantSurname: ""},
		{in: "Ana", wantName: "Ana", wantSurname: ""},
		{in: "Ana Pérez", wantName: "Ana", wantSurname: "Pérez"},
		{in: "Ana Pérez García", wantName: "Ana", wantSurname: "Pérez García"},
		{in: "María José Pérez García", wantName: "María José", wantSurname: "Pérez García"},
		{in: "  Juan   Carlos  de la Vega ", wantName: "Juan Carlos", wantSurname: "de la Vega"},
	}

	for _, tt := range tests {
		name, surname := SplitDisplayName(tt.in)
		if name != tt.wantName || surname != tt.wantSurname {
			t.Errorf("SplitDisplayName(%q) = (%q, %q), expected (%q, %q)",
				tt.in, name, surname, tt.wantName, tt.wantSurname)
		}
	}
}

func TestNew(t *testing.T) {
	p := New("u1", "Ana Pérez", "ana@example.com", "https://example.com/a.png")
	if p.Saved == nil || len(p.Saved) != 0 {
		t.Errorf("expected empty saved list, got %v", p.Saved)
	}
	if p.FullName() != "Ana Pérez" {
		t.Errorf("expected full name %q, got %q", "Ana Pérez", p.FullName())
	}

	if got := (Profile{Surname: "Pérez"}).FullName(); got != "Pérez" {
		t.Errorf("expected trimmed full name, got %q", got)
	}
}
