package password

import (
	"errors"
	"strings"
	"testing"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		email    string
		wantErrs []error
	}{
		{name: "strong", password: "Gr4nd-Tortilla!Paella", email: "cook@example.com"},
		{name: "too short", password: "Ab1!", wantErrs: []error{ErrTooShort}},
		{name: "too long", password: strings.Repeat("Ab1!", 40), wantErrs: []error{ErrTooLong}},
		{name: "missing classes", password: "alllowercaseletters", wantErrs: []error{ErrNoUppercase, ErrNoDigit, ErrNoSpecial}},
		{name: "contains email", password: "Maria-Cocina-2025!", email: "maria@example.com", wantErrs: []error{ErrContainsEmail}},
		{name: "weak", password: "Aaaaaaaaa1!", wantErrs: []error{ErrTooWeak}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password, tt.email)
			if len(tt.wantErrs) == 0 {
				if err != nil {
					t.Fatalf("ValidatePassword() error = %v", err)
				}
				return
			}
			for _, want := range tt.wantErrs {
				if !errors.Is(err, want) {
					t.Errorf("ValidatePassword() error = %v, want it to include %v", err, want)
				}
			}
		})
	}
}
