package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"secure-rag/internal/helper"
	"secure-rag/internal/indexer"
	"secure-rag/internal/models"
	"secure-rag/internal/parser"
)

var (
	ingestDryRun bool
	ingestReset  bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Chunk the data directory and configured tables into the vector database",
	Long: `Reads every document under <data_dir>/<tier>/ and every configured table,
splits them into chunks tagged with their access tier and upserts them by id.
Running it again on unchanged sources leaves the index unchanged.`,
	Args: cobra.NoArgs,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestDryRun, "dry-run", false, "print the chunks, do not save to the vector database")
	ingestCmd.Flags().BoolVar(&ingestReset, "reset", false, "delete the collection before ingesting")
	rootCmd.AddCommand(ingestCmd)
}

func tableSources() []parser.TableSource {
	tables := make([]parser.TableSource, len(cfg.Tables))
	for i, t := range cfg.Tables {
		tables[i] = parser.TableSource{
			Path:        t.Path,
			AccessTier:  models.ParseAccessTier(t.AccessTier),
			TextColumns: t.TextColumns,
			IDColumn:    t.IDColumn,
			Sheet:       t.Sheet,
		}
	}
	return tables
}

func runIngest(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	sources, err := parser.Discover(cfg.DataDir)
	if err != nil {
		return err
	}

	res, err := parser.NewPipeline(cfg.Chunking).Run(ctx, sources, tableSources())
	if err != nil {
		return fmt.Errorf("ingestion aborted: %w", err)
	}
	log.Info().
		Int("documents", len(sources)).
		Int("tables", len(cfg.Tables)).
		Int("chunks", len(res.Chunks)).
		Int("skipped", len(res.Skipped)).
		Msg("Parsed content")

	if ingestDryRun {
		helper.PrettyPrint(indexer.Documents(res.Chunks))
		return nil
	}

	vdb, err := openVectorDB(ctx, cfg)
	if err != nil {
		return err
	}
	if ingestReset {
		if err := vdb.DeleteCollection(); err != nil {
			return err
		}
	}

	n, err := indexer.NewWriter(vdb, cfg.VectorDB.BatchSize).Write(ctx, res.Chunks)
	if err != nil {
		return fmt.Errorf("error adding content to vector database: %w", err)
	}
	cmd.Printf("Indexed %d chunks (%d sources skipped)\n", n, len(res.Skipped))

	if cfg.VectorDB.InMemory {
		return vdb.Export(ctx)
	}
	return nil
}
