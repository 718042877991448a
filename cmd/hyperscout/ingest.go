package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hyperscout/hyperscout/config"
	"github.com/hyperscout/hyperscout/internal/ingest"
)

func ingestCMD() *cobra.Command {
	var cfgPath string
	var batchSize int
	var ing = &cobra.Command{
		Use:   "ingest [file]",
		Short: "Ingest a mentions JSON file into the vector index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig(cfgPath)

			embedder, store, _, err := buildDeps(cfg)
			if err != nil {
				return err
			}

			stored, err := ingest.NewIngestor(embedder, store).Run(cmd.Context(), args[0], batchSize)
			if err != nil {
				return err
			}
			fmt.Printf("stored %d chunks from %s\n", stored, args[0])
			return nil
		},
	}
	ing.Flags().IntVar(&batchSize, "batch-size", 100, "embedding batch size")
	ing.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")

	return ing
}
