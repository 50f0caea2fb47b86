package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/platinummonkey/cip116/pkg/validation"
)

// ErrInvalidValue is returned when the value does not satisfy its type
var ErrInvalidValue = errors.New("value is invalid")

type validateOptions struct {
	sourceFlags
	era      string
	typeName string
	file     string
	format   string
}

func newValidateCommand() *Command {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)

	var opts validateOptions
	fs.StringVar(&opts.era, "era", "", "Era of the type (required)")
	fs.StringVar(&opts.typeName, "type", "", "Type name, e.g. Address (required)")
	fs.StringVar(&opts.file, "file", "", "JSON file to validate (default: stdin)")
	fs.StringVar(&opts.dir, "dir", "", "Directory containing era documents (default: embedded)")
	fs.StringVar(&opts.erasFile, "eras", "", "YAML file mapping eras to document names")
	fs.StringVar(&opts.format, "format", "text", "Output format: text, json")
	fs.StringVar(&opts.logLevel, "log-level", "warn", "Log level")

	return &Command{
		Name:        "validate",
		Description: "Validate a JSON value against one ledger type",
		Flags:       fs,
		Run: func(args []string) error {
			if err := fs.Parse(args); err != nil {
				return err
			}
			return runValidate(context.Background(), opts)
		},
	}
}

func runValidate(ctx context.Context, opts validateOptions) error {
	if opts.typeName == "" {
		return fmt.Errorf("-type is required")
	}

	data, err := readInput(opts.file)
	if err != nil {
		return err
	}

	store, err := opts.loadStore(ctx)
	if err != nil {
		return fmt.Errorf("failed to load schemas: %w", err)
	}
	era, err := requireEra(store, opts.era)
	if err != nil {
		return err
	}

	registry, err := validation.NewRegistry(store, validation.WithLogger(opts.logger()))
	if err != nil {
		return err
	}
	validator, err := registry.ValidatorForType(ctx, era, opts.typeName)
	if err != nil {
		return err
	}

	result, err := validator.ValidateJSON(data)
	if err != nil {
		return err
	}

	if opts.format == "json" {
		encoder := json.NewEncoder(stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(result); err != nil {
			return err
		}
	} else if result.Valid {
		fmt.Fprintf(stdout, "✓ valid %s (%s)\n", opts.typeName, era)
	} else {
		fmt.Fprintf(stdout, "✗ invalid %s (%s)\n", opts.typeName, era)
		for _, v := range result.Violations {
			fmt.Fprintf(stdout, "  %s\n", v)
		}
	}

	if !result.Valid {
		return ErrInvalidValue
	}
	return nil
}

func readInput(file string) ([]byte, error) {
	if file == "" || file == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", file, err)
	}
	return data, nil
}
