package config

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/githubnext/ifcheck/internal/mapper"
	"github.com/githubnext/ifcheck/pkg/console"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed schemas/config_schema.json
var configSchema string

const schemaURL = "https://ifcheck.local/config_schema.json"

var printer = message.NewPrinter(language.English)

// SchemaViolation is a single schema failure located in the config source
type SchemaViolation struct {
	InstancePath string
	Message      string
	Span         mapper.Span
}

// SchemaError reports every violation found in a config file
type SchemaError struct {
	File       string
	Source     []string
	Violations []SchemaViolation
}

func (e *SchemaError) Error() string {
	var b strings.Builder
	for i, v := range e.Violations {
		if i > 0 {
			b.WriteString("\n")
		}
		var context []string
		if v.Span.Line >= 1 && v.Span.Line <= len(e.Source) {
			context = []string{e.Source[v.Span.Line-1]}
		}
		b.WriteString(strings.TrimRight(console.FormatError(console.CompilerError{
			Position: console.ErrorPosition{
				File:   e.File,
				Line:   v.Span.Line,
				Column: v.Span.Column,
				Length: v.Span.Length,
			},
			Type:    "error",
			Message: v.Message,
			Context: context,
			Hint:    "Check the configuration against the documented keys: open, close, branches, strict-branches, comment-order",
		}), "\n"))
	}
	return b.String()
}

// validateWithSchema validates the decoded YAML document against the embedded
// schema. Violations are located in source using the YAML AST.
func validateWithSchema(document any, source []byte, filePath string) error {
	compiler := jsonschema.NewCompiler()

	var schemaDoc any
	if err := json.Unmarshal([]byte(configSchema), &schemaDoc); err != nil {
		return fmt.Errorf("failed to parse config schema: %w", err)
	}
	if err := compiler.AddResource(schemaURL, schemaDoc); err != nil {
		return fmt.Errorf("failed to add config schema resource: %w", err)
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return fmt.Errorf("failed to compile config schema: %w", err)
	}

	if document == nil {
		document = map[string]any{}
	}

	// Round-trip through JSON so YAML integer and map types match what the validator expects
	documentJSON, err := json.Marshal(document)
	if err != nil {
		return fmt.Errorf("failed to marshal config for validation: %w", err)
	}
	var normalized any
	if err := json.Unmarshal(documentJSON, &normalized); err != nil {
		return fmt.Errorf("failed to unmarshal config for validation: %w", err)
	}

	err = schema.Validate(normalized)
	if err == nil {
		return nil
	}

	var validationErr *jsonschema.ValidationError
	if !errors.As(err, &validationErr) {
		return fmt.Errorf("config validation failed: %w", err)
	}

	schemaErr := &SchemaError{
		File:   filePath,
		Source: strings.Split(string(source), "\n"),
	}
	for _, leaf := range leafCauses(validationErr) {
		instancePath := toJSONPointer(leaf.InstanceLocation)
		span, locateErr := mapper.Locate(source, instancePath, errorMeta(leaf))
		if locateErr != nil {
			span = mapper.Span{Line: 1, Column: 1}
		}
		schemaErr.Violations = append(schemaErr.Violations, SchemaViolation{
			InstancePath: instancePath,
			Message:      describe(leaf, instancePath),
			Span:         span,
		})
	}
	return schemaErr
}

// leafCauses flattens the validation error tree into its most specific failures
func leafCauses(err *jsonschema.ValidationError) []*jsonschema.ValidationError {
	if len(err.Causes) == 0 {
		return []*jsonschema.ValidationError{err}
	}
	var leaves []*jsonschema.ValidationError
	for _, cause := range err.Causes {
		leaves = append(leaves, leafCauses(cause)...)
	}
	return leaves
}

func errorMeta(err *jsonschema.ValidationError) mapper.ErrorMeta {
	switch k := err.ErrorKind.(type) {
	case *kind.AdditionalProperties:
		meta := mapper.ErrorMeta{Kind: "additionalProperties"}
		if len(k.Properties) > 0 {
			meta.Property = k.Properties[0]
		}
		return meta
	case *kind.Required:
		meta := mapper.ErrorMeta{Kind: "required"}
		if len(k.Missing) > 0 {
			meta.Property = k.Missing[0]
		}
		return meta
	default:
		return mapper.ErrorMeta{Kind: "value"}
	}
}

func describe(err *jsonschema.ValidationError, instancePath string) string {
	msg := err.ErrorKind.LocalizedString(printer)
	if instancePath == "" {
		return msg
	}
	return fmt.Sprintf("'%s': %s", strings.TrimPrefix(instancePath, "/"), msg)
}

func toJSONPointer(location []string) string {
	var b strings.Builder
	for _, part := range location {
		part = strings.ReplaceAll(part, "~", "~0")
		part = strings.ReplaceAll(part, "/", "~1")
		b.WriteString("/")
		b.WriteString(part)
	}
	return b.String()
}
