package api

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed predict_request.schema.json
var predictRequestSchema []byte

// Validator validates request documents against a JSON Schema.
type Validator struct {
	schema *gojsonschema.Schema
}

// NewValidator compiles schemaData.
func NewValidator(schemaData []byte) (*Validator, error) {
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaData))
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Validator{schema: s}, nil
}

// Validate checks a decoded document.
func (v *Validator) Validate(doc map[string]interface{}) error {
	result, err := v.schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return fmt.Errorf("validation failed: %s", strings.Join(msgs, "; "))
	}
	return nil
}

// ValidateBytes checks raw JSON.
func (v *Validator) ValidateBytes(data []byte) error {
	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return v.Validate(doc)
}

// mustPredictValidator compiles the embedded request schema.
func mustPredictValidator() *Validator {
	v, err := NewValidator(predictRequestSchema)
	if err != nil {
		panic(err)
	}
	return v
}
