package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/platinummonkey/cip116/pkg/governance"
	"github.com/platinummonkey/cip116/pkg/schema"
	"github.com/platinummonkey/cip116/pkg/validation"
)

// ErrCheckFailed is returned when any era has an error-severity finding
var ErrCheckFailed = errors.New("schema check failed")

// watchDebounce coalesces bursts of editor writes into one run
const watchDebounce = 200 * time.Millisecond

type checkOptions struct {
	sourceFlags
	era        string
	configFile string
	format     string
	watch      bool
	rulesOnly  bool
	initConfig bool
}

// checkResult is the outcome for one era
type checkResult struct {
	Era          schema.Era        `json:"era"`
	File         string            `json:"file"`
	Passed       bool              `json:"passed"`
	Governance   governance.Report `json:"governance"`
	MetaSchema   validation.Result `json:"meta_schema"`
	CompileError string            `json:"compile_error,omitempty"`
}

func newCheckCommand() *Command {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)

	var opts checkOptions
	fs.StringVar(&opts.era, "era", "", "Era to check (default: all)")
	fs.StringVar(&opts.dir, "dir", "", "Directory containing era documents (default: embedded)")
	fs.StringVar(&opts.erasFile, "eras", "", "YAML file mapping eras to document names")
	fs.StringVar(&opts.configFile, "config", "", "Path to governance config file (cip116-governance.yaml)")
	fs.StringVar(&opts.format, "format", "text", "Output format: text, json, github")
	fs.BoolVar(&opts.watch, "watch", false, "Re-run when files under -dir change")
	fs.BoolVar(&opts.rulesOnly, "rules", false, "List available rules and exit")
	fs.BoolVar(&opts.initConfig, "init-config", false, "Write the default governance config into -dir and exit")
	fs.StringVar(&opts.logLevel, "log-level", "warn", "Log level")

	return &Command{
		Name:        "check",
		Description: "Run governance and meta-schema checks on era documents",
		Flags:       fs,
		Run: func(args []string) error {
			if err := fs.Parse(args); err != nil {
				return err
			}
			if opts.initConfig {
				return initGovernanceConfig(opts.dir)
			}
			if opts.watch {
				ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
				defer stop()
				return watchCheck(ctx, opts)
			}
			return runCheck(context.Background(), opts)
		},
	}
}

func loadGovernanceConfig(opts checkOptions) (*governance.Config, error) {
	switch {
	case opts.configFile != "":
		return governance.LoadConfig(opts.configFile)
	case opts.dir != "":
		return governance.LoadConfigFromDir(opts.dir)
	default:
		return governance.DefaultConfig(), nil
	}
}

// initGovernanceConfig writes the default config as the first of
// governance.ConfigFileNames, refusing to overwrite an existing file.
func initGovernanceConfig(dir string) error {
	if dir == "" {
		dir = "."
	}
	path := filepath.Join(dir, governance.ConfigFileNames[0])
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	if err := governance.SaveConfig(governance.DefaultConfig(), path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	fmt.Fprintf(stdout, "wrote %s\n", path)
	return nil
}

func runCheck(ctx context.Context, opts checkOptions) error {
	cfg, err := loadGovernanceConfig(opts)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger := opts.logger()
	engine := governance.NewEngine(cfg, governance.WithLogger(logger))

	if opts.rulesOnly {
		return listRules(engine, cfg)
	}

	store, err := opts.loadStore(ctx)
	if err != nil {
		return fmt.Errorf("failed to load schemas: %w", err)
	}
	eras, err := selectEras(store, opts.era)
	if err != nil {
		return err
	}
	registry, err := validation.NewRegistry(store, validation.WithLogger(logger))
	if err != nil {
		return err
	}

	results := make([]checkResult, 0, len(eras))
	for _, era := range eras {
		res, err := checkEra(ctx, engine, registry, era)
		if err != nil {
			return err
		}
		results = append(results, res)
	}

	switch opts.format {
	case "json":
		err = checkOutputJSON(results)
	case "github":
		checkOutputGitHub(results)
	default:
		checkOutputText(results)
	}
	if err != nil {
		return err
	}

	for _, res := range results {
		if !res.Passed {
			return ErrCheckFailed
		}
	}
	return nil
}

func checkEra(ctx context.Context, engine *governance.Engine, registry *validation.Registry, era schema.Era) (checkResult, error) {
	doc, err := registry.Store().Document(era)
	if err != nil {
		return checkResult{}, err
	}

	res := checkResult{Era: era, File: doc.Name()}
	res.Governance = engine.Check(doc)
	res.MetaSchema, err = registry.CheckMetaSchema(era)
	if err != nil {
		return checkResult{}, err
	}
	if res.MetaSchema.Valid {
		// compile errors only add noise when the document is not even a schema
		if err := registry.CompileAll(ctx, era); err != nil {
			res.CompileError = err.Error()
		}
	}
	res.Passed = res.Governance.Passed() && res.MetaSchema.Valid && res.CompileError == ""
	return res, nil
}

func checkOutputText(results []checkResult) {
	for _, res := range results {
		status := "ok"
		if !res.Passed {
			status = "FAILED"
		}
		fmt.Fprintf(stdout, "%s (%s): %s\n", res.Era, res.File, status)

		for _, v := range res.Governance.Violations {
			fmt.Fprintf(stdout, "  [%s] %s: %s\n", v.Severity, v.Rule, v.Message)
		}
		for _, v := range res.MetaSchema.Violations {
			fmt.Fprintf(stdout, "  [error] meta-schema: %s\n", v)
		}
		if res.CompileError != "" {
			fmt.Fprintf(stdout, "  [error] compile: %s\n", res.CompileError)
		}

		s := res.Governance.Summary
		fmt.Fprintf(stdout, "  %d violations (%d errors, %d warnings, %d infos)\n",
			s.Total, s.Errors, s.Warnings, s.Infos)
	}
}

func checkOutputJSON(results []checkResult) error {
	encoder := json.NewEncoder(stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(results)
}

func checkOutputGitHub(results []checkResult) {
	// ::error file={name}::{message}
	for _, res := range results {
		for _, v := range res.Governance.Violations {
			level := "error"
			switch v.Severity {
			case governance.SeverityWarning:
				level = "warning"
			case governance.SeverityInfo:
				level = "notice"
			}
			fmt.Fprintf(stdout, "::%s file=%s::[%s] %s\n", level, res.File, v.Rule, v.Message)
		}
		for _, v := range res.MetaSchema.Violations {
			fmt.Fprintf(stdout, "::error file=%s::[meta-schema] %s\n", res.File, v)
		}
		if res.CompileError != "" {
			fmt.Fprintf(stdout, "::error file=%s::[compile] %s\n", res.File, res.CompileError)
		}
	}
}

func listRules(engine *governance.Engine, cfg *governance.Config) error {
	rules := engine.Registry().GetAllRules()
	fmt.Fprintf(stdout, "Available governance rules (%d):\n\n", len(rules))
	for _, rule := range rules {
		state := "enabled"
		if !cfg.RuleEnabled(rule.Name()) {
			state = "disabled"
		}
		fmt.Fprintf(stdout, "  - %-25s [%s, %s, %s]\n    %s\n",
			rule.Name(),
			cfg.SeverityFor(rule.Name(), rule.Severity()),
			rule.Category(),
			state,
			rule.Description(),
		)
	}
	return nil
}

// watchCheck runs the check, then again after every change under opts.dir
// until ctx is done. Failures are reported, not returned.
func watchCheck(ctx context.Context, opts checkOptions) error {
	if opts.dir == "" {
		return fmt.Errorf("-watch requires -dir")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(opts.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", opts.dir, err)
	}

	logger := opts.logger()
	rerun := func() {
		if err := runCheck(ctx, opts); err != nil {
			fmt.Fprintf(stdout, "check: %v\n", err)
		}
		fmt.Fprintf(stdout, "watching %s for changes...\n", opts.dir)
	}
	rerun()

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevantChange(ev) {
				continue
			}
			logger.WithField("file", ev.Name).Debug("Change detected")
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				timer.Reset(watchDebounce)
			}
			fire = timer.C
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.WithError(err).Warn("Watcher error")
		case <-fire:
			fire = nil
			rerun()
		}
	}
}

func relevantChange(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}
	switch strings.ToLower(filepath.Ext(ev.Name)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}
