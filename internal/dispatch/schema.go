package dispatch

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// schemaCache memoizes compiled input schemas keyed by schema text, so
// repeat dispatches skip recompilation and a registry reload invalidates
// nothing that did not change.
type schemaCache struct {
	mu       sync.Mutex
	compiled map[string]*jsonschema.Schema
}

func newSchemaCache() *schemaCache {
	return &schemaCache{compiled: make(map[string]*jsonschema.Schema)}
}

func (c *schemaCache) get(schema json.RawMessage) (*jsonschema.Schema, error) {
	key := string(schema)

	c.mu.Lock()
	cached, ok := c.compiled[key]
	c.mu.Unlock()
	if ok {
		return cached, nil
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schema))
	if err != nil {
		return nil, fmt.Errorf("unmarshaling input schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("input.schema.json", doc); err != nil {
		return nil, fmt.Errorf("adding schema resource: %w", err)
	}
	compiled, err := compiler.Compile("input.schema.json")
	if err != nil {
		return nil, fmt.Errorf("compiling input schema: %w", err)
	}

	c.mu.Lock()
	c.compiled[key] = compiled
	c.mu.Unlock()
	return compiled, nil
}

// validate checks a payload against an executable's declared input
// schema, returning a compact single-line description of every leaf
// issue found.
func (c *schemaCache) validate(schema, payload json.RawMessage) error {
	compiled, err := c.get(schema)
	if err != nil {
		return err
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("parsing payload: %w", err)
	}

	err = compiled.Validate(inst)
	if err == nil {
		return nil
	}

	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err
	}
	issues := schemaIssues(ve)
	if len(issues) == 0 {
		return errors.New(ve.Error())
	}
	return errors.New(strings.Join(issues, "; "))
}

// schemaIssues walks the validation error tree and renders its leaves.
func schemaIssues(ve *jsonschema.ValidationError) []string {
	if len(ve.Causes) == 0 {
		if ve.ErrorKind == nil {
			return nil
		}
		path := "/" + strings.Join(ve.InstanceLocation, "/")
		return []string{fmt.Sprintf("at %q: %s", path, ve.ErrorKind.LocalizedString(printer))}
	}

	var issues []string
	for _, cause := range ve.Causes {
		issues = append(issues, schemaIssues(cause)...)
	}
	return issues
}
