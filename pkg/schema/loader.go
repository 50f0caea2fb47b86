package schema

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/platinummonkey/cip116/pkg/observability"
)

// Source fetches raw schema documents by file name
type Source interface {
	// Name identifies the backend in logs and metrics
	Name() string
	Fetch(ctx context.Context, file string) ([]byte, error)
}

// Loader fetches and parses one document per era from a Source
type Loader struct {
	Source  Source
	Eras    map[Era]string
	Logger  logrus.FieldLogger
	Metrics *observability.Metrics
}

// NewLoader returns a loader for every published era
func NewLoader(source Source, logger logrus.FieldLogger, metrics *observability.Metrics) *Loader {
	return &Loader{
		Source:  source,
		Eras:    DefaultEras(),
		Logger:  logger,
		Metrics: metrics,
	}
}

// Load fetches all eras concurrently. Any failure aborts the whole load.
func (l *Loader) Load(ctx context.Context) (*Store, error) {
	if l.Source == nil {
		return nil, fmt.Errorf("schema loader has no source")
	}
	logger := l.Logger
	if logger == nil {
		logger = observability.NewNopLogger()
	}

	eras := make([]Era, 0, len(l.Eras))
	for era := range l.Eras {
		eras = append(eras, era)
	}

	docs := make([]*Document, len(eras))
	g, gctx := errgroup.WithContext(ctx)
	for i, era := range eras {
		i, era := i, era
		g.Go(func() error {
			doc, err := l.loadOne(gctx, era, l.Eras[era])
			if err != nil {
				return err
			}
			docs[i] = doc
			logger.WithFields(logrus.Fields{
				"era":         era,
				"file":        doc.Name(),
				"source":      l.Source.Name(),
				"definitions": doc.Definitions().Len(),
			}).Debug("Loaded schema document")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return NewStore(docs...)
}

func (l *Loader) loadOne(ctx context.Context, era Era, file string) (doc *Document, err error) {
	ctx, span := observability.Tracer().Start(ctx, "schema.Load")
	span.SetAttributes(
		attribute.String("schema.era", string(era)),
		attribute.String("schema.file", file),
		attribute.String("schema.source", l.Source.Name()),
	)
	start := time.Now()
	defer func() {
		defs := 0
		if doc != nil {
			defs = doc.Definitions().Len()
		}
		l.Metrics.RecordSchemaLoad(l.Source.Name(), string(era), defs, err, time.Since(start))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	data, err := l.Source.Fetch(ctx, file)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s for era %s: %w", file, era, err)
	}
	return Parse(era, file, data)
}
