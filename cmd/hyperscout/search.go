package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hyperscout/hyperscout/config"
	"github.com/hyperscout/hyperscout/internal/search"
)

func searchCMD() *cobra.Command {
	var cfgPath string
	var topK int
	var cmdSearch = &cobra.Command{
		Use:   "search [query]",
		Short: "Search HyperLiquid mentions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig(cfgPath)

			_, _, pipeline, err := buildDeps(cfg)
			if err != nil {
				return err
			}

			start := time.Now()
			docs, err := pipeline.Search(cmd.Context(), args[0], topK)
			if err != nil {
				return err
			}
			printResults(args[0], docs, time.Since(start))
			return nil
		},
	}
	cmdSearch.Flags().IntVar(&topK, "top-k", 15, "number of results (1-50)")
	cmdSearch.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")

	return cmdSearch
}

func printResults(query string, docs []search.ScoredDocument, took time.Duration) {
	fmt.Printf("query: %s (%d results, %.2fs)\n\n", query, len(docs), took.Seconds())
	now := time.Now()
	for i, d := range docs {
		fmt.Printf("%2d. [%.3f] %s\n", i+1, d.HybridScore, d.Title)
		fmt.Printf("    source: %s (%s)", d.SourceName, d.ChannelType)
		if days := search.DaysAgo(d.PublishedAt, now); days >= 0 {
			fmt.Printf("  %d days ago", days)
		}
		fmt.Println()
		fmt.Printf("    relevance=%.3f recency=%.3f importance=%.3f\n", d.RelevanceScore, d.RecencyScore, d.ImportanceScore)
		if d.URL != "" {
			fmt.Printf("    %s\n", d.URL)
		}
		fmt.Println()
	}

	s := search.AnalyzeSentiment(docs)
	fmt.Printf("sentiment: %s (%d positive / %d negative / %d neutral)\n",
		s.Overall, s.Positive, s.Negative, s.Neutral)
}
