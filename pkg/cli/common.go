package cli

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/cip116/pkg/config"
	"github.com/platinummonkey/cip116/pkg/observability"
	"github.com/platinummonkey/cip116/pkg/schema"
	"github.com/platinummonkey/cip116/pkg/storage"
)

// sourceFlags are shared by every command that reads era documents
type sourceFlags struct {
	dir      string
	erasFile string
	logLevel string
}

func (f *sourceFlags) logger() *logrus.Logger {
	return observability.NewLogger(observability.ParseLogLevel(f.logLevel), stderr)
}

// loadStore reads the era documents from dir, or the embedded copies when
// dir is empty
func (f *sourceFlags) loadStore(ctx context.Context) (*schema.Store, error) {
	logger := f.logger()
	if f.dir == "" && f.erasFile == "" {
		return schema.LoadEmbedded(ctx)
	}

	var source schema.Source = schema.Embedded()
	if f.dir != "" {
		fsSource, err := storage.NewFileSystemSource(f.dir)
		if err != nil {
			return nil, err
		}
		source = fsSource
	}

	loader := schema.NewLoader(source, logger, nil)
	if f.erasFile != "" {
		eras, err := config.LoadEras(f.erasFile)
		if err != nil {
			return nil, err
		}
		loader.Eras = eras
	}
	return loader.Load(ctx)
}

// selectEras resolves the -era flag; empty means every loaded era
func selectEras(store *schema.Store, era string) ([]schema.Era, error) {
	if era == "" {
		return store.Eras(), nil
	}
	e, err := store.ParseEra(era)
	if err != nil {
		return nil, err
	}
	return []schema.Era{e}, nil
}

func requireEra(store *schema.Store, era string) (schema.Era, error) {
	if era == "" {
		return "", fmt.Errorf("-era is required")
	}
	eras, err := selectEras(store, era)
	if err != nil {
		return "", err
	}
	return eras[0], nil
}
