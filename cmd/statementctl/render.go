package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"statement-pdf/internal/config"
	"statement-pdf/internal/statement/bootstrap"
	statement "statement-pdf/internal/statement/domain"
)

type renderOptions struct {
	in         string
	out        string
	format     string
	template   string
	assetsDir  string
	letterhead bool
	timeout    time.Duration
}

// newRenderCmd builds "render", or "layout" when fixedFormat is "layout".
func newRenderCmd(root *rootOptions, fixedFormat string) *cobra.Command {
	opts := &renderOptions{format: "pdf", letterhead: true, timeout: 30 * time.Second}
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a statement JSON file",
		Example: `  statementctl render --in statement.json --out statement.pdf
  statementctl render --in - --format xlsx > statement.xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, root, opts)
		},
	}
	if fixedFormat != "" {
		cmd.Use = fixedFormat
		cmd.Short = "Dump the layout instructions of a statement as JSON"
		cmd.Example = "  statementctl layout --in statement.json"
		opts.format = fixedFormat
	} else {
		cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: pdf, xlsx or layout")
	}
	cmd.Flags().StringVarP(&opts.in, "in", "i", "-", "statement JSON file, - for stdin")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "-", "output file, - for stdout")
	cmd.Flags().StringVarP(&opts.template, "template", "t", "", "override meta.template")
	cmd.Flags().StringVar(&opts.assetsDir, "assets", "", "directory with <bank>.png logos")
	cmd.Flags().BoolVar(&opts.letterhead, "letterhead", opts.letterhead, "fall back to generated letterheads for missing logos")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", opts.timeout, "render timeout")
	return cmd
}

func runRender(cmd *cobra.Command, root *rootOptions, opts *renderOptions) error {
	logger := root.logger()
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Read()
	if err != nil {
		return err
	}
	if opts.assetsDir != "" {
		cfg.Assets.Dir = opts.assetsDir
	}
	if cmd.Flags().Changed("letterhead") || !hasAssetSource(cfg.Assets) {
		cfg.Assets.Letterhead = opts.letterhead
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	var db *sql.DB
	if cfg.Assets.DatabaseURL != "" {
		db, err = sql.Open("pgx", cfg.Assets.DatabaseURL)
		if err != nil {
			return fmt.Errorf("open db: %w", err)
		}
		defer db.Close()
	}
	chain, err := bootstrap.BuildAssets(cfg.Assets, db, logger)
	if err != nil {
		return err
	}
	defer chain.Close()
	services, err := bootstrap.BuildServices(cfg, chain.Store)
	if err != nil {
		return err
	}
	svc := services.ByFormat(strings.ToLower(opts.format))
	if svc == nil {
		return fmt.Errorf("unsupported format %q", opts.format)
	}

	stmt, err := readStatement(cmd.InOrStdin(), opts.in)
	if err != nil {
		return err
	}
	if opts.template != "" {
		stmt.Meta.Template = statement.BankTemplate(strings.ToUpper(opts.template))
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}
	start := time.Now()
	data, err := svc.Render(ctx, stmt)
	if err != nil {
		return err
	}
	logger.Info("statement rendered",
		zap.String("template", stmt.Meta.Template.String()),
		zap.String("format", svc.Format()),
		zap.Int("bytes", len(data)),
		zap.Duration("duration", time.Since(start)),
	)
	return writeOutput(cmd.OutOrStdout(), opts.out, data)
}

func hasAssetSource(cfg config.AssetsConfig) bool {
	return cfg.Dir != "" || cfg.RedisURL != "" || cfg.DatabaseURL != "" || cfg.Letterhead
}

func readStatement(stdin io.Reader, path string) (*statement.Statement, error) {
	var r io.Reader = stdin
	if path != "-" && path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	var stmt statement.Statement
	if err := json.NewDecoder(r).Decode(&stmt); err != nil {
		return nil, fmt.Errorf("decode statement: %w", err)
	}
	return &stmt, nil
}

func writeOutput(stdout io.Writer, path string, data []byte) error {
	if path == "-" || path == "" {
		_, err := stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
