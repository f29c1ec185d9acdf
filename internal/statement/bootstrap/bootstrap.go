// Package bootstrap assembles asset stores and render services from config.
// The HTTP server and statementctl share it.
package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"statement-pdf/internal/config"
	"statement-pdf/internal/statement/application"
	statement "statement-pdf/internal/statement/domain"
	"statement-pdf/internal/statement/infrastructure/assets"
	"statement-pdf/internal/statement/infrastructure/pdf"
	"statement-pdf/internal/statement/infrastructure/postgres"
	"statement-pdf/internal/statement/infrastructure/redis"
	"statement-pdf/internal/statement/infrastructure/xlsx"
	"statement-pdf/internal/statement/layout"
	"statement-pdf/internal/statement/templates"
)

// AssetWriter stores uploaded assets.
type AssetWriter interface {
	Put(ctx context.Context, key string, data []byte) error
}

// Assets is the assembled asset chain.
type Assets struct {
	Store statement.AssetStore
	// Writer is nil when no writable source is configured.
	Writer  AssetWriter
	Sources []string

	closers []func() error
}

// Close releases clients opened for the chain.
func (a *Assets) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// BuildAssets stacks the configured sources in lookup order: directory,
// redis, postgres, generated letterheads. db may be nil.
func BuildAssets(cfg config.AssetsConfig, db *sql.DB, logger *zap.Logger) (*Assets, error) {
	var (
		sources []source
		closers []func() error
	)
	if cfg.Dir != "" {
		dir, err := assets.NewDirStore(cfg.Dir)
		if err != nil {
			return nil, fmt.Errorf("assets dir: %w", err)
		}
		sources = append(sources, source{Source: assets.Source{Name: "dir", Store: dir}})
	}
	if cfg.RedisURL != "" {
		client, err := redis.Dial(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("assets redis: %w", err)
		}
		closers = append(closers, client.Close)
		store, err := redis.NewAssetStore(client, cfg.RedisPrefix, cfg.RedisTTL)
		if err != nil {
			_ = client.Close()
			return nil, err
		}
		sources = append(sources, source{Source: assets.Source{Name: "redis", Store: store}, writer: store})
	}
	if db != nil {
		repo := postgres.NewAssetRepository(db)
		sources = append(sources, source{Source: assets.Source{Name: "postgres", Store: repo}, writer: repo})
	}
	if cfg.Letterhead {
		sources = append(sources, source{Source: assets.Source{Name: "letterhead", Store: assets.NewLetterheadStore(nil)}})
	}

	out, err := assemble(sources, cfg.Cache, logger)
	if err != nil {
		for _, c := range closers {
			_ = c()
		}
		return nil, err
	}
	out.closers = closers
	return out, nil
}

// source is a chain entry, writable when writer is set.
type source struct {
	assets.Source
	writer AssetWriter
}

func assemble(sources []source, cache bool, logger *zap.Logger) (*Assets, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	out := &Assets{}
	chainSources := make([]assets.Source, 0, len(sources))
	var writers multiWriter
	for _, src := range sources {
		chainSources = append(chainSources, src.Source)
		out.Sources = append(out.Sources, src.Name)
		if src.writer != nil {
			writers = append(writers, namedWriter{name: src.Name, AssetWriter: src.writer})
		}
	}
	chain, err := assets.NewChainStore(chainSources...)
	if err != nil {
		return nil, err
	}
	out.Store = chain
	if len(writers) > 0 {
		out.Writer = writers
	}

	if cache {
		cached, err := assets.NewCachedStore(chain)
		if err != nil {
			return nil, err
		}
		out.Store = cached
		if out.Writer != nil {
			out.Writer = forgettingWriter{next: out.Writer, cache: cached}
		}
	}
	logger.Info("asset chain ready", zap.Strings("sources", out.Sources), zap.Bool("cache", cache), zap.Int("writable", len(writers)))
	return out, nil
}

type namedWriter struct {
	name string
	AssetWriter
}

// multiWriter stores an upload in every writable source so no source earlier
// in the lookup order keeps serving an older copy. The deepest source is
// written first.
type multiWriter []namedWriter

func (m multiWriter) Put(ctx context.Context, key string, data []byte) error {
	for i := len(m) - 1; i >= 0; i-- {
		if err := m[i].Put(ctx, key, data); err != nil {
			return fmt.Errorf("asset source %s: %w", m[i].name, err)
		}
	}
	return nil
}

// forgettingWriter drops the cached copy of a key once it is overwritten.
type forgettingWriter struct {
	next  AssetWriter
	cache *assets.CachedStore
}

func (w forgettingWriter) Put(ctx context.Context, key string, data []byte) error {
	if err := w.next.Put(ctx, key, data); err != nil {
		return err
	}
	w.cache.Forget(key)
	return nil
}

// Services holds one render service per output format.
type Services struct {
	PDF    *application.RenderService
	XLSX   *application.RenderService
	Layout *application.RenderService

	recorder *layout.Recorder
}

// All returns the services in a stable order.
func (s Services) All() []*application.RenderService {
	return []*application.RenderService{s.PDF, s.XLSX, s.Layout}
}

// ByFormat returns the service for format, or nil.
func (s Services) ByFormat(format string) *application.RenderService {
	for _, svc := range s.All() {
		if svc.Format() == format {
			return svc
		}
	}
	return nil
}

// BuildServices wires the default template registry to the pdf, xlsx and
// layout sinks with the configured page geometry and styles.
func BuildServices(cfg config.Config, store statement.AssetStore, opts ...application.Option) (Services, error) {
	opts = append([]application.Option{
		application.WithGeometry(cfg.Geometry()),
		application.WithStyles(cfg.StyleTable()),
	}, opts...)
	registry := templates.Default()

	pdfSvc, err := application.NewRenderService(registry, pdf.NewSink(), store, opts...)
	if err != nil {
		return Services{}, fmt.Errorf("pdf service: %w", err)
	}
	xlsxSvc, err := application.NewRenderService(registry, xlsx.NewSink(), store, opts...)
	if err != nil {
		return Services{}, fmt.Errorf("xlsx service: %w", err)
	}
	// Recordings hold statement data, so the recorder only hands them back
	// from Close.
	recorder := &layout.Recorder{Limit: layout.KeepNone}
	layoutSvc, err := application.NewRenderService(registry, recorder, store, opts...)
	if err != nil {
		return Services{}, fmt.Errorf("layout service: %w", err)
	}
	return Services{PDF: pdfSvc, XLSX: xlsxSvc, Layout: layoutSvc, recorder: recorder}, nil
}
