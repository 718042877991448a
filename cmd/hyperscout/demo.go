package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hyperscout/hyperscout/config"
)

var demoCLIQueries = []string{
	"What are people saying about HyperLiquid's vaults?",
	"Any influencer tweets about HyperLiquid recently?",
	"HYPE token price sentiment analysis",
}

func demoCMD() *cobra.Command {
	var cfgPath string
	var demo = &cobra.Command{
		Use:   "demo",
		Short: "Run a few canned searches against the index",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig(cfgPath)

			_, _, pipeline, err := buildDeps(cfg)
			if err != nil {
				return err
			}

			for _, q := range demoCLIQueries {
				start := time.Now()
				docs, err := pipeline.Search(cmd.Context(), q, 5)
				if err != nil {
					fmt.Printf("query: %s\n  error: %v\n\n", q, err)
					continue
				}
				printResults(q, docs, time.Since(start))
				fmt.Println("----")
			}
			return nil
		},
	}
	demo.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")

	return demo
}
