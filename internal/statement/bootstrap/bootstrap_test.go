package bootstrap

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"statement-pdf/internal/config"
	"statement-pdf/internal/statement/application"
	statement "statement-pdf/internal/statement/domain"
	"statement-pdf/internal/statement/infrastructure/assets"
	"statement-pdf/internal/statement/infrastructure/redis"
	"statement-pdf/internal/statement/style"
)

func TestBuildAssetsLetterheadOnly(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	built, err := BuildAssets(config.AssetsConfig{Letterhead: true, Cache: true}, nil, zap.New(core))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer built.Close()
	if built.Writer != nil {
		t.Fatalf("letterhead chain should be read-only")
	}
	if strings.Join(built.Sources, ",") != "letterhead" {
		t.Fatalf("sources = %v", built.Sources)
	}
	data, err := built.Store.Fetch(context.Background(), "sbi")
	if err != nil || !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Fatalf("fetch sbi: %v", err)
	}
	if _, err := built.Store.Fetch(context.Background(), "pnb"); !errors.Is(err, statement.ErrAssetNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if logs.FilterMessage("asset chain ready").Len() != 1 {
		t.Fatalf("expected ready log")
	}
}

func TestBuildAssetsDirFirst(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "sbi.png"), []byte("custom"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	built, err := BuildAssets(config.AssetsConfig{Dir: dir, Letterhead: true}, nil, nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if strings.Join(built.Sources, ",") != "dir,letterhead" {
		t.Fatalf("sources = %v", built.Sources)
	}
	data, err := built.Store.Fetch(context.Background(), "sbi")
	if err != nil || string(data) != "custom" {
		t.Fatalf("expected dir asset, got %q %v", data, err)
	}
	if _, err := built.Store.Fetch(context.Background(), "hdfc"); err != nil {
		t.Fatalf("expected letterhead fallback: %v", err)
	}
}

func TestBuildAssetsNoSources(t *testing.T) {
	if _, err := BuildAssets(config.AssetsConfig{}, nil, nil); err == nil {
		t.Fatalf("expected error without sources")
	}
}

func TestForgettingWriter(t *testing.T) {
	mem := assets.NewMemoryStore(map[string][]byte{"sbi": []byte("old")})
	cached, err := assets.NewCachedStore(mem)
	if err != nil {
		t.Fatalf("cached: %v", err)
	}
	ctx := context.Background()
	if data, _ := cached.Fetch(ctx, "sbi"); string(data) != "old" {
		t.Fatalf("unexpected %q", data)
	}
	w := forgettingWriter{next: mem, cache: cached}
	if err := w.Put(ctx, "sbi", []byte("new")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if data, _ := cached.Fetch(ctx, "sbi"); string(data) != "new" {
		t.Fatalf("cache not invalidated, got %q", data)
	}
}

type fakeRedis struct {
	values map[string]string
}

func (f *fakeRedis) Get(_ context.Context, key string) *goredis.StringCmd {
	v, ok := f.values[key]
	if !ok {
		return goredis.NewStringResult("", goredis.Nil)
	}
	return goredis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value interface{}, _ time.Duration) *goredis.StatusCmd {
	f.values[key] = string(value.([]byte))
	return goredis.NewStatusResult("OK", nil)
}

// fakeRepo stands in for the postgres asset table.
type fakeRepo struct {
	rows   map[string][]byte
	puts   []string
	putErr error
}

func (f *fakeRepo) Fetch(_ context.Context, key string) ([]byte, error) {
	data, ok := f.rows[key]
	if !ok {
		return nil, &statement.AssetNotFoundError{Key: key}
	}
	return data, nil
}

func (f *fakeRepo) Put(_ context.Context, key string, data []byte) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.puts = append(f.puts, key)
	f.rows[key] = data
	return nil
}

func redisAndRepo(t *testing.T, client *fakeRedis, repo *fakeRepo) []source {
	t.Helper()
	store, err := redis.NewAssetStore(client, "asset:", time.Hour)
	if err != nil {
		t.Fatalf("redis store: %v", err)
	}
	return []source{
		{Source: assets.Source{Name: "redis", Store: store}, writer: store},
		{Source: assets.Source{Name: "postgres", Store: repo}, writer: repo},
		{Source: assets.Source{Name: "letterhead", Store: assets.NewLetterheadStore(nil)}},
	}
}

func TestUploadReachesEveryWritableSource(t *testing.T) {
	client := &fakeRedis{values: map[string]string{"asset:sbi": "stale"}}
	repo := &fakeRepo{rows: map[string][]byte{"sbi": []byte("stale")}}
	built, err := assemble(redisAndRepo(t, client, repo), true, nil)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	ctx := context.Background()
	if data, _ := built.Store.Fetch(ctx, "sbi"); string(data) != "stale" {
		t.Fatalf("unexpected %q", data)
	}

	if err := built.Writer.Put(ctx, "sbi", []byte("uploaded")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if client.values["asset:sbi"] != "uploaded" {
		t.Fatalf("redis kept %q", client.values["asset:sbi"])
	}
	if string(repo.rows["sbi"]) != "uploaded" || len(repo.puts) != 1 {
		t.Fatalf("repo rows = %q puts = %v", repo.rows["sbi"], repo.puts)
	}
	data, err := built.Store.Fetch(ctx, "sbi")
	if err != nil || string(data) != "uploaded" {
		t.Fatalf("fetch after upload = %q %v", data, err)
	}
}

func TestUploadStopsWhenDurableWriteFails(t *testing.T) {
	client := &fakeRedis{values: map[string]string{}}
	repo := &fakeRepo{rows: map[string][]byte{}, putErr: errors.New("connection reset")}
	built, err := assemble(redisAndRepo(t, client, repo), false, nil)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	err = built.Writer.Put(context.Background(), "hdfc", []byte("x"))
	if err == nil || !strings.Contains(err.Error(), "postgres") {
		t.Fatalf("expected postgres error, got %v", err)
	}
	if _, ok := client.values["asset:hdfc"]; ok {
		t.Fatalf("redis should not hold an asset the repo rejected")
	}
}

func TestBuildServices(t *testing.T) {
	cfg := config.Config{
		Page: config.PageConfig{Size: "A4", Orientation: "P", Unit: "pt", Margin: 36},
	}
	store := assets.NewLetterheadStore(nil)
	services, err := BuildServices(cfg, store)
	if err != nil {
		t.Fatalf("build services: %v", err)
	}
	formats := make([]string, 0, 3)
	for _, svc := range services.All() {
		formats = append(formats, svc.Format())
	}
	if strings.Join(formats, ",") != "pdf,xlsx,layout" {
		t.Fatalf("formats = %v", formats)
	}
	if services.ByFormat("xlsx") != services.XLSX || services.ByFormat("csv") != nil {
		t.Fatalf("unexpected ByFormat lookup")
	}
	if len(services.PDF.Templates()) != 3 {
		t.Fatalf("templates = %v", services.PDF.Templates())
	}
}

func TestLayoutServiceKeepsNoRecordings(t *testing.T) {
	cfg := config.Config{
		Page: config.PageConfig{Size: "A4", Orientation: "P", Unit: "pt", Margin: 36},
	}
	services, err := BuildServices(cfg, assets.NewLetterheadStore(nil))
	if err != nil {
		t.Fatalf("build services: %v", err)
	}
	stmt := &statement.Statement{
		Meta:    statement.StatementMeta{Template: statement.TemplateSBI, GeneratedAt: "2025-08-05T09:30:00Z", StatementPeriodStart: "2025-08-01", StatementPeriodEnd: "2025-08-31"},
		Details: statement.AccountHolderDetails{Name: "Jane Doe", AccountNumber: "123456789012"},
	}
	for i := 0; i < 3; i++ {
		out, err := services.Layout.Render(context.Background(), stmt)
		if err != nil {
			t.Fatalf("render: %v", err)
		}
		if !strings.Contains(string(out), "Jane Doe") {
			t.Fatalf("layout output missing holder name")
		}
	}
	if n := len(services.recorder.Sessions()); n != 0 {
		t.Fatalf("expected no retained recordings, got %d", n)
	}
}

func TestBuildServicesRejectsBadStyles(t *testing.T) {
	cfg := config.Config{
		Page: config.PageConfig{Size: "A4", Orientation: "P", Unit: "pt", Margin: 36},
	}
	partial := style.Table{style.RoleTitle: {Family: "Helvetica", Size: 12}}
	if _, err := BuildServices(cfg, assets.NewLetterheadStore(nil), application.WithStyles(partial)); err == nil {
		t.Fatalf("expected style validation error")
	}
}

