package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/go-hindi-bpe/internal/corpus"
)

func newFetchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch",
		Short: "Download or resume the raw Hindi corpus",
		RunE: func(cmd *cobra.Command, _ []string) error {
			size, err := corpus.Fetch(cmd.Context(), corpus.FetchOptions{
				URL:      activeCfg.Corpus.URL,
				DestPath: activeCfg.Corpus.RawPath,
				MaxBytes: activeCfg.Corpus.MaxBytes,
				Progress: os.Stderr,
			})
			if err != nil {
				return fmt.Errorf("fetch corpus: %w", err)
			}

			logger.Info().Str("path", activeCfg.Corpus.RawPath).
				Int64("bytes", size).
				Msg("corpus ready")

			return nil
		},
	}
}
