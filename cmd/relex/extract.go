package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peter-xbs/FSM/pgstore"
	"github.com/peter-xbs/FSM/pipeline"
	"github.com/peter-xbs/FSM/types"
	"github.com/spf13/cobra"
)

type extractOptions struct {
	configDir string
	format    string
	pgDSN     string
	tid       string
	plain     bool
}

func newExtractCmd() *cobra.Command {
	opts := extractOptions{}
	cmd := &cobra.Command{
		Use:   "extract <file.conll>",
		Short: "Extract relations from a CoNLL document",
		Long:  `Runs every configuration of the config directory over the document. Use "-" to read from stdin.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), args[0], opts)
		},
	}
	cmd.Flags().StringVar(&opts.configDir, "config", envOr("RELEX_CONFIG_PATH", "configs"), "Directory with extraction configurations")
	cmd.Flags().StringVar(&opts.format, "format", "json", "Output format: json, yaml or markdown")
	cmd.Flags().StringVar(&opts.pgDSN, "pg-dsn", os.Getenv("RELEX_PG_DSN"), "Store relations in PostgreSQL when set")
	cmd.Flags().StringVar(&opts.tid, "tid", "", "Document id, defaults to the file name")
	cmd.Flags().BoolVar(&opts.plain, "plain", false, "Print markdown without terminal styling")
	return cmd
}

func runExtract(ctx context.Context, stdin io.Reader, out io.Writer, path string, opts extractOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	render, err := rendererFor(opts.format, opts.plain)
	if err != nil {
		return err
	}

	text, err := readDocument(stdin, path)
	if err != nil {
		return err
	}
	cfgs, err := types.LoadConfigurations(opts.configDir)
	if err != nil {
		return fmt.Errorf("failed to load configurations: %w", err)
	}
	ppln, err := pipeline.RelationExtraction(pipeline.RelationExtractionParams{Configurations: cfgs})
	if err != nil {
		return err
	}

	tid := opts.tid
	if tid == "" {
		tid = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	result := <-ppln(pipeline.Request{Tid: tid, Text: text})

	responses := make(map[string]types.RelationResponse)
	if err := json.Unmarshal([]byte(result), &responses); err != nil {
		return fmt.Errorf("unexpected pipeline result: %w", err)
	}

	if opts.pgDSN != "" {
		store, err := pgstore.Open(ctx, opts.pgDSN)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.SaveRelationships(ctx, tid, responses); err != nil {
			return fmt.Errorf("failed to store relations: %w", err)
		}
	}

	return render(out, responses)
}

func readDocument(stdin io.Reader, path string) (string, error) {
	if path == "-" {
		buf, err := io.ReadAll(stdin)
		return string(buf), err
	}
	buf, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(buf), nil
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
