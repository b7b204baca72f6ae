package evaluation

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/Vijaykv5/Intereractive-GD/internal/model"
)

//go:embed evaluation.schema.json
var schemaJSON string

// Validator checks LLM output against the evaluation schema.
type Validator struct {
	schema *gojsonschema.Schema
}

func NewValidator() (*Validator, error) {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("compile evaluation schema: %w", err)
	}
	return &Validator{schema: s}, nil
}

// Parse strips Markdown fences from raw, checks it is JSON, validates it and
// decodes it. Every schema violation is reported, each with its field path.
func (v *Validator) Parse(raw string) (*model.Evaluation, error) {
	body := []byte(StripFences(raw))
	if !json.Valid(body) {
		var discard interface{}
		err := json.Unmarshal(body, &discard)
		return nil, &model.EvaluationFormatError{Kind: model.KindInvalidJSON, Err: err}
	}

	result, err := v.schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return nil, &model.EvaluationFormatError{Kind: model.KindInvalidJSON, Err: err}
	}
	if !result.Valid() {
		return nil, &model.EvaluationFormatError{Kind: model.KindInvalidStructure, Violations: violations(result.Errors())}
	}

	var ev model.Evaluation
	if err := json.Unmarshal(body, &ev); err != nil {
		return nil, &model.EvaluationFormatError{Kind: model.KindInvalidJSON, Err: err}
	}
	return &ev, nil
}

func violations(errs []gojsonschema.ResultError) []model.Violation {
	out := make([]model.Violation, 0, len(errs))
	seen := make(map[string]bool, len(errs))
	for _, e := range errs {
		field := e.Field()
		// required errors are reported on the parent object
		if e.Type() == "required" {
			if prop, ok := e.Details()["property"].(string); ok {
				if field == gojsonschema.STRING_ROOT_SCHEMA_PROPERTY {
					field = prop
				} else {
					field = field + "." + prop
				}
			}
		}
		key := field + "\x00" + e.Description()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, model.Violation{Field: field, Message: e.Description()})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return out
}

// StripFences removes a surrounding ``` or ```json fence.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
