package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/genoskip/genoskip/internal/analyze"
	"github.com/genoskip/genoskip/internal/output"
	"github.com/genoskip/genoskip/internal/provider"
)

func newAnalyzeCmd() *cobra.Command {
	var (
		outputFile string
		species    string
		workers    int
		noCache    bool
	)

	cmd := &cobra.Command{
		Use:   "analyze <variant>...",
		Short: "Report exon-skipping therapies for one or more variants",
		Example: `  genoskip analyze "ENST00000357033.9:c.6439del"
  genoskip analyze -o report.tsv "NM_004006.3:c.100_200del"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger()
			if err != nil {
				return fmt.Errorf("building logger: %w", err)
			}
			defer logger.Sync()

			client := provider.NewClient(provider.WithLogger(logger))

			cacheOpts := []provider.CacheOption{provider.WithCacheLogger(logger)}
			if !noCache {
				store, err := openPayloadStore()
				if err != nil {
					logger.Warn("persistent cache unavailable, continuing without it", zap.Error(err))
				} else {
					defer store.Close()
					cacheOpts = append(cacheOpts, provider.WithStore(store))
				}
			}
			fetcher := provider.NewCachingFetcher(client, cacheOpts...)

			analyzer := analyze.New(fetcher,
				analyze.WithLogger(logger),
				analyze.WithWorkers(workers),
				analyze.WithSpecies(species),
			)

			out := os.Stdout
			if outputFile != "" {
				out, err = os.Create(outputFile)
				if err != nil {
					return fmt.Errorf("creating output file: %w", err)
				}
				defer out.Close()
			}
			tw := output.NewTabWriter(out)
			if err := tw.WriteHeader(); err != nil {
				return fmt.Errorf("writing header: %w", err)
			}

			for _, expr := range args {
				results, err := analyzer.Analyze(cmd.Context(), expr)
				if err != nil {
					return err
				}
				for i := range results {
					if err := tw.Write(&results[i]); err != nil {
						return fmt.Errorf("writing results for %s: %w", expr, err)
					}
				}
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&species, "species", "human", "species for transcript lookups")
	cmd.Flags().IntVar(&workers, "workers", 0, "comparison workers (0 = number of CPUs)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the persistent payload cache")
	viper.BindPFlag("species", cmd.Flags().Lookup("species"))
	viper.BindPFlag("cache.disabled", cmd.Flags().Lookup("no-cache"))

	return cmd
}

// openPayloadStore opens the DuckDB payload cache under the configured
// cache directory (default ~/.cache/genoskip).
func openPayloadStore() (*provider.Store, error) {
	dir := viper.GetString("cache.dir")
	if dir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			return nil, fmt.Errorf("cannot determine cache directory: %w", err)
		}
		dir = filepath.Join(base, "genoskip")
	}
	return provider.OpenStore(filepath.Join(dir, "payloads.db"))
}
