package mcp

import (
	"fmt"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/sorinirimies/mobiledevice-mcp-zed-extension/mobiledevice/definitions"
)

// compileSchema turns a tool's input schema into a validator. Compiled
// once per tool at registry construction.
func compileSchema(toolName string, schema InputSchema) (*jsonschema.Schema, error) {
	raw, err := sonic.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("marshal schema for %s: %w", toolName, err)
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft7
	url := toolName + ".schema.json"
	if err := compiler.AddResource(url, strings.NewReader(string(raw))); err != nil {
		return nil, fmt.Errorf("add schema for %s: %w", toolName, err)
	}

	compiled, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema for %s: %w", toolName, err)
	}
	return compiled, nil
}

// validateArgs checks tool arguments against the compiled schema,
// folding schema violations into the validation error kind.
func validateArgs(schema *jsonschema.Schema, args map[string]any) error {
	if args == nil {
		args = map[string]any{}
	}
	if err := schema.Validate(args); err != nil {
		return definitions.Validationf("invalid arguments: %v", err)
	}
	return nil
}
