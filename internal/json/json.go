// Package json contains utilities for handling JSON.
package json

import (
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-json"
)

var ErrTrailingData = errors.New("unexpected data after JSON object")

// DecodeJSON decodes a single JSON value, rejecting trailing tokens.
func DecodeJSON(dst any, decoder *json.Decoder) error {
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("decoding json: %w", err)
	}

	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return ErrTrailingData
	}
	return nil
}

// DecodeStrict decodes a request body into dst, rejecting unknown fields.
func DecodeStrict(dst any, r io.Reader) error {
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	return DecodeJSON(dst, decoder)
}
