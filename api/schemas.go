package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/qri-io/jsonschema"
)

// Request payloads are validated against compiled JSON Schemas before they
// are decoded, so malformed input never reaches the store or the evaluator.
// Note that match_type is a free-form string here: unknown values are
// persisted as-is and resolve to exact only at evaluation time.

var questionItemProps = `{
	"question": {"type": "string", "minLength": 1},
	"answer": {"type": "string", "minLength": 1},
	"match_type": {"type": "string"},
	"order_num": {"type": "integer"}
}`

var (
	signinSchema = mustSchema(`{
		"type": "object",
		"required": ["password"],
		"properties": {"password": {"type": "string", "minLength": 1}}
	}`)

	challengeSchema = mustSchema(`{
		"type": "object",
		"required": ["slug", "name", "flag"],
		"properties": {
			"slug": {"type": "string", "minLength": 1},
			"name": {"type": "string", "minLength": 1},
			"description": {"type": "string"},
			"flag": {"type": "string", "minLength": 1},
			"passing_score": {"type": "integer", "minimum": 0},
			"is_active": {"type": "boolean"}
		}
	}`)

	questionSchema = mustSchema(fmt.Sprintf(`{
		"type": "object",
		"required": ["question", "answer"],
		"properties": %s
	}`, questionItemProps))

	bulkSaveSchema = mustSchema(fmt.Sprintf(`{
		"type": "object",
		"required": ["questions"],
		"properties": {
			"questions": {
				"type": "array",
				"items": {
					"type": "object",
					"required": ["question", "answer"],
					"properties": %s
				}
			}
		}
	}`, questionItemProps))

	checkSchema = mustSchema(`{
		"type": "object",
		"required": ["answers"],
		"properties": {
			"answers": {"type": "object", "additionalProperties": {"type": "string"}}
		}
	}`)

	previewSchema = mustSchema(`{
		"type": "object",
		"properties": {"markdown": {"type": "string"}}
	}`)
)

func mustSchema(src string) *jsonschema.Schema {
	rs := &jsonschema.Schema{}
	if err := json.Unmarshal([]byte(src), rs); err != nil {
		panic(fmt.Sprintf("compile payload schema: %v", err))
	}
	return rs
}

// validatePayload checks body against the schema and returns the first
// violation, if any, as a caller-facing error.
func validatePayload(ctx context.Context, rs *jsonschema.Schema, body []byte) error {
	keyErrs, err := rs.ValidateBytes(ctx, body)
	if err != nil {
		return fmt.Errorf("invalid json")
	}
	if len(keyErrs) > 0 {
		ke := keyErrs[0]
		return fmt.Errorf("%s: %s", ke.PropertyPath, ke.Message)
	}
	return nil
}
