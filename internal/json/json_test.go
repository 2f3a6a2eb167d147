package json

import (
	"errors"
	"strings"
	"testing"

	"github.com/goccy/go-json"
)

type payload struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    payload
		wantErr bool
	}{
		{name: "single object", input: `{"name":"Tortilla","score":4}`, want: payload{Name: "Tortilla", Score: 4}},
		{name: "trailing whitespace", input: "{\"name\":\"a\"}\n", want: payload{Name: "a"}},
		{name: "trailing object", input: `{"name":"a"}{"name":"b"}`, wantErr: true},
		{name: "malformed", input: `{"name":`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got payload
			err := DecodeJSON(&got, json.NewDecoder(strings.NewReader(tt.input)))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeJSON() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("DecodeJSON() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDecodeJSONTrailingData(t *testing.T) {
	var got payload
	err := DecodeJSON(&got, json.NewDecoder(strings.NewReader(`{"name":"a"} 1`)))
	if !errors.Is(err, ErrTrailingData) {
		t.Errorf("expected ErrTrailingData, got %v", err)
	}
}

func TestDecodeStrictUnknownField(t *testing.T) {
	var got payload
	if err := DecodeStrict(&got, strings.NewReader(`{"name":"a","extra":true}`)); err == nil {
		t.Error("expected unknown field error")
	}
}
