// Package schema validates externally supplied documents against
// embedded CUE definitions before they reach the parsers.
//
// Commentary validation is advisory (the binder already degrades
// everything to warnings); moments artifact validation is strict
// because a bad artifact silently gates visibility wrong.
package schema

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	cuejson "cuelang.org/go/encoding/json"
	"gopkg.in/yaml.v3"
)

//go:embed commentary.cue
var commentarySchema string

//go:embed moments.cue
var momentsSchema string

// ValidateCommentary checks a commentary document (JSON or YAML)
// against the embedded schema. Violations come back as warnings, one
// per CUE error, matching the binder's warnings-not-errors taxonomy.
func ValidateCommentary(data []byte) []string {
	ctx := cuecontext.New()

	schemaVal := ctx.CompileString(commentarySchema).LookupPath(cue.ParsePath("#Document"))
	if err := schemaVal.Err(); err != nil {
		return []string{fmt.Sprintf("commentary schema: %v", err)}
	}

	docVal, err := buildDoc(ctx, data)
	if err != nil {
		return []string{fmt.Sprintf("commentary document: %v", err)}
	}

	return validationWarnings(schemaVal.Unify(docVal))
}

// ValidateMoments checks a moments artifact (JSON) against the
// embedded schema. Any violation is an error.
func ValidateMoments(data []byte) error {
	ctx := cuecontext.New()

	schemaVal := ctx.CompileString(momentsSchema).LookupPath(cue.ParsePath("#Artifact"))
	if err := schemaVal.Err(); err != nil {
		return fmt.Errorf("moments schema: %w", err)
	}

	docVal, err := buildDoc(ctx, data)
	if err != nil {
		return fmt.Errorf("moments artifact: %w", err)
	}

	if err := schemaVal.Unify(docVal).Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("moments artifact: %w", err)
	}
	return nil
}

// buildDoc converts a JSON or YAML document into a CUE value. Going
// through the CUE JSON extractor keeps integers integral; encoding
// decoded Go values directly would turn them into floats.
func buildDoc(ctx *cue.Context, data []byte) (cue.Value, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return cue.Value{}, fmt.Errorf("parse: %w", err)
	}

	jsonBytes, err := json.Marshal(raw)
	if err != nil {
		return cue.Value{}, fmt.Errorf("normalize: %w", err)
	}

	expr, err := cuejson.Extract("document", jsonBytes)
	if err != nil {
		return cue.Value{}, fmt.Errorf("extract: %w", err)
	}

	val := ctx.BuildExpr(expr)
	if err := val.Err(); err != nil {
		return cue.Value{}, err
	}
	return val, nil
}

// validationWarnings flattens every CUE error into its own warning line.
func validationWarnings(v cue.Value) []string {
	err := v.Validate(cue.Concrete(true))
	if err == nil {
		return nil
	}

	var warns []string
	for _, e := range errors.Errors(err) {
		warns = append(warns, e.Error())
	}
	return warns
}
