package cli

import (
	"context"
	"flag"
	"fmt"
)

func newTypesCommand() *Command {
	fs := flag.NewFlagSet("types", flag.ContinueOnError)

	var (
		opts sourceFlags
		era  string
	)
	fs.StringVar(&era, "era", "", "Era to list (default: all)")
	fs.StringVar(&opts.dir, "dir", "", "Directory containing era documents (default: embedded)")
	fs.StringVar(&opts.erasFile, "eras", "", "YAML file mapping eras to document names")
	fs.StringVar(&opts.logLevel, "log-level", "warn", "Log level")

	return &Command{
		Name:        "types",
		Description: "List the types defined for an era",
		Flags:       fs,
		Run: func(args []string) error {
			if err := fs.Parse(args); err != nil {
				return err
			}
			return runTypes(context.Background(), opts, era)
		},
	}
}

func runTypes(ctx context.Context, opts sourceFlags, era string) error {
	store, err := opts.loadStore(ctx)
	if err != nil {
		return fmt.Errorf("failed to load schemas: %w", err)
	}
	eras, err := selectEras(store, era)
	if err != nil {
		return err
	}

	for _, e := range eras {
		names, err := store.Definitions(e)
		if err != nil {
			return err
		}
		if len(eras) > 1 {
			fmt.Fprintf(stdout, "# %s\n", e)
		}
		for _, name := range names {
			fmt.Fprintln(stdout, name)
		}
	}
	return nil
}
