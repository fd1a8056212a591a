// Package validation checks inbound documents against JSON schemas.
package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Schema is a compiled JSON schema, safe for concurrent use.
type Schema struct {
	schema *gojsonschema.Schema
}

func Compile(schemaJSON string) (*Schema, error) {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	return &Schema{schema: s}, nil
}

// MustCompile panics on an invalid schema. Use it for package-level schemas.
func MustCompile(schemaJSON string) *Schema {
	s, err := Compile(schemaJSON)
	if err != nil {
		panic(err)
	}
	return s
}

// Validate checks a Go value such as a decoded map.
func (s *Schema) Validate(document interface{}) *ValidationResult {
	return s.validate(gojsonschema.NewGoLoader(document))
}

// ValidateJSON checks raw JSON bytes. Malformed JSON is reported as a
// single INVALID_JSON error.
func (s *Schema) ValidateJSON(raw []byte) *ValidationResult {
	return s.validate(gojsonschema.NewBytesLoader(raw))
}

func (s *Schema) validate(loader gojsonschema.JSONLoader) *ValidationResult {
	result, err := s.schema.Validate(loader)
	if err != nil {
		return &ValidationResult{
			Valid: false,
			Errors: []ValidationError{{
				Field:   "(root)",
				Message: err.Error(),
				Code:    "INVALID_JSON",
			}},
		}
	}

	errors := make([]ValidationError, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		field := desc.Field()
		if desc.Type() == "required" {
			if p, ok := desc.Details()["property"].(string); ok {
				field = p
			}
		}
		errors = append(errors, ValidationError{
			Field:   field,
			Message: desc.Description(),
			Code:    strings.ToUpper(desc.Type()),
		})
	}

	return &ValidationResult{
		Valid:  result.Valid(),
		Errors: errors,
	}
}

// GetErrorMessages returns "field: message" strings.
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

// HasErrors reports whether field has at least one error.
func (vr *ValidationResult) HasErrors(field string) bool {
	for _, err := range vr.Errors {
		if err.Field == field {
			return true
		}
	}
	return false
}
