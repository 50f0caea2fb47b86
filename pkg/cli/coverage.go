package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/platinummonkey/cip116/pkg/validation"
)

// ErrCoverageFailed is returned when a fixture disagrees with its schema
var ErrCoverageFailed = errors.New("fixture coverage failed")

type coverageOptions struct {
	sourceFlags
	era      string
	fixtures string
	format   string
	strict   bool
}

func newCoverageCommand() *Command {
	fs := flag.NewFlagSet("coverage", flag.ContinueOnError)

	var opts coverageOptions
	fs.StringVar(&opts.era, "era", "", "Era to test (required)")
	fs.StringVar(&opts.fixtures, "fixtures", "", "Directory of <Type>.json fixture files (required)")
	fs.StringVar(&opts.dir, "dir", "", "Directory containing era documents (default: embedded)")
	fs.StringVar(&opts.erasFile, "eras", "", "YAML file mapping eras to document names")
	fs.StringVar(&opts.format, "format", "text", "Output format: text, json")
	fs.BoolVar(&opts.strict, "strict", false, "Fail when a type has no fixtures")
	fs.StringVar(&opts.logLevel, "log-level", "warn", "Log level")

	return &Command{
		Name:        "coverage",
		Description: "Run fixture values against their types and report coverage",
		Flags:       fs,
		Run: func(args []string) error {
			if err := fs.Parse(args); err != nil {
				return err
			}
			return runCoverage(context.Background(), opts)
		},
	}
}

func runCoverage(ctx context.Context, opts coverageOptions) error {
	if opts.fixtures == "" {
		return fmt.Errorf("-fixtures is required")
	}

	fixtures, err := validation.LoadFixtures(os.DirFS(opts.fixtures))
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
	report, err := registry.Coverage(ctx, era, fixtures)
	if err != nil {
		return err
	}

	if opts.format == "json" {
		encoder := json.NewEncoder(stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(report); err != nil {
			return err
		}
	} else {
		coverageOutputText(report)
	}

	if len(report.Failures) > 0 || len(report.Unknown) > 0 {
		return ErrCoverageFailed
	}
	if opts.strict && !report.Passed() {
		return fmt.Errorf("%w: %d types without fixtures", ErrCoverageFailed, len(report.Uncovered))
	}
	return nil
}

func coverageOutputText(report validation.CoverageReport) {
	pct := 0.0
	if report.Total > 0 {
		pct = 100 * float64(report.Covered) / float64(report.Total)
	}
	fmt.Fprintf(stdout, "%s: %d/%d types covered (%.1f%%)\n", report.Era, report.Covered, report.Total, pct)

	for _, f := range report.Failures {
		want := "invalid"
		if f.Expected {
			want = "valid"
		}
		fmt.Fprintf(stdout, "  FAIL %s[%d] expected %s: %s", f.Type, f.Index, want, f.Value)
		if f.Detail != "" {
			fmt.Fprintf(stdout, " (%s)", f.Detail)
		}
		fmt.Fprintln(stdout)
	}
	for _, name := range report.Unknown {
		fmt.Fprintf(stdout, "  unknown type in fixtures: %s\n", name)
	}
	if len(report.Uncovered) > 0 {
		fmt.Fprintf(stdout, "  uncovered: %d types\n", len(report.Uncovered))
	}
}
