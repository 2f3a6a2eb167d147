package recipe

import (
	"errors"
	"testing"
)

func TestDraftNormalize(t *testing.T) {
	tests := []struct {
		name     string
		draft    Draft
		wantErr  error
		validate func(*testing.T, Draft)
	}{
		{
			name: "cleans up input",
			draft: Draft{
				Name:        "  Tortilla ",
				Description: " De patatas ",
				Duration:    20,
				Steps:       []string{" Pelar ", "", "   ", "Freír"},
				Ingredients: []Ingredient{
					{Name: " Patata ", Quantity: " 3 "},
					{Name: "  ", Quantity: "1"},
					{Name: "Huevo", Quantity: "4", Type: " fresco "},
				},
				Tags: []string{" cena", "cena ", "", "rápida"},
			},
			validate: func(t *testing.T, d Draft) {
				if d.Name != "Tortilla" || d.Description != "De patatas" {
					t.Errorf("expected trimmed text, got %q / %q", d.Name, d.Description)
				}
				if len(d.Steps) != 2 || d.Steps[0] != "Pelar" || d.Steps[1] != "Freír" {
					t.Errorf("unexpected steps %q", d.Steps)
				}
				if len(d.Ingredients) != 2 {
					t.Fatalf("expected 2 ingredients, got %d", len(d.Ingredients))
				}
				if d.Ingredients[0].Name != "Patata" || d.Ingredients[0].Quantity != "3" {
					t.Errorf("unexpected ingredient %+v", d.Ingredients[0])
				}
				if d.Ingredients[1].Type != "fresco" {
					t.Errorf("expected trimmed type, got %q", d.Ingredients[1].Type)
				}
				if len(d.Tags) != 2 || d.Tags[0] != "cena" || d.Tags[1] != "rápida" {
					t.Errorf("unexpected tags %q", d.Tags)
				}
			},
		},
		{
			name:    "missing name",
			draft:   Draft{Name: "  ", Duration: 10, Steps: []string{"a"}},
			wantErr: ErrEmptyName,
		},
		{
			name:    "non-positive duration",
			draft:   Draft{Name: "Sopa", Duration: 0, Steps: []string{"a"}},
			wantErr: ErrInvalidDuration,
		},
		{
			name:    "only blank steps",
			draft:   Draft{Name: "Sopa", Duration: 10, Steps: []string{" ", ""}},
			wantErr: ErrNoSteps,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.draft.Normalize()
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.validate != nil {
				tt.validate(t, got)
			}
		})
	}
}

func TestAddTag(t *testing.T) {
	tags := AddTag(nil, " vegano ")
	tags = AddTag(tags, "vegano")
	tags = AddTag(tags, "")
	tags = AddTag(tags, "postre")
	if len(tags) != 2 || tags[0] != "vegano" || tags[1] != "postre" {
		t.Errorf("unexpected tags %q", tags)
	}
}
