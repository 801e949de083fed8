package validation

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// Schema names, one per request body shape.
const (
	SchemaTeam          = "team"
	SchemaApplication   = "application"
	SchemaTurnoverEntry = "turnover_entry"
	SchemaScorecard     = "scorecard_entry"
	SchemaLink          = "link"
)

// ErrInvalidInput is returned when a body is not valid JSON or violates its schema.
var ErrInvalidInput = errors.New("invalid input")

// DefaultCacheSize covers every embedded schema.
const DefaultCacheSize = 16

// Validator checks request bodies against embedded JSON schemas before
// they are decoded into Go types. Compiled schemas are cached.
type Validator struct {
	cache *lru.Cache[string, *jsonschema.Schema]
}

// NewValidator creates a validator caching up to cacheSize compiled schemas.
func NewValidator(cacheSize int) (*Validator, error) {
	cache, err := lru.New[string, *jsonschema.Schema](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create schema cache: %w", err)
	}
	return &Validator{cache: cache}, nil
}

// Decode validates body against the named schema and unmarshals it into dst.
func (v *Validator) Decode(name string, body []byte, dst any) error {
	schema, err := v.schema(name)
	if err != nil {
		return err
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: malformed JSON: %v", ErrInvalidInput, err)
	}
	if err := schema.Validate(inst); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidInput, formatValidationError(err))
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

func (v *Validator) schema(name string) (*jsonschema.Schema, error) {
	if s, ok := v.cache.Get(name); ok {
		return s, nil
	}
	s, err := compileSchema(name)
	if err != nil {
		return nil, err
	}
	v.cache.Add(name, s)
	return s, nil
}

func compileSchema(name string) (*jsonschema.Schema, error) {
	raw, err := schemaFS.ReadFile("schemas/" + name + ".json")
	if err != nil {
		return nil, fmt.Errorf("unknown schema %q: %w", name, err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse schema %s: %w", name, err)
	}

	compiler := jsonschema.NewCompiler()
	compiler.DefaultDraft(jsonschema.Draft7)

	url := "https://ensemble.local/schemas/" + name + ".json"
	if err := compiler.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("add schema %s: %w", name, err)
	}
	schema, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}
	return schema, nil
}

const maxMessageRunes = 300

// formatValidationError reports the first failing location as a JSON path
// followed by the library's description, e.g. "at '$.month': ...".
func formatValidationError(err error) string {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err.Error()
	}

	leaf := ve
	for len(leaf.Causes) > 0 {
		leaf = leaf.Causes[0]
	}

	path := "$"
	if len(leaf.InstanceLocation) > 0 {
		path = "$." + strings.Join(leaf.InstanceLocation, ".")
	}

	msg := strings.Join(strings.Fields(ve.Error()), " ")
	if runes := []rune(msg); len(runes) > maxMessageRunes {
		msg = string(runes[:maxMessageRunes]) + "... (truncated)"
	}
	return fmt.Sprintf("at '%s': %s", path, msg)
}
