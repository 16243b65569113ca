package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/example/go-hindi-bpe/internal/pipeline"
	"github.com/example/go-hindi-bpe/internal/tokenizer"
)

func newEvalCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "eval",
		Short: "Recompute the compression ratio of a saved tokenizer",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfgPath := filepath.Join(activeCfg.Output.Dir, activeCfg.Output.EncoderConfigName)
			tok, err := tokenizer.Load(cfgPath)
			if err != nil {
				return err
			}

			prePath := filepath.Join(activeCfg.Output.Dir, activeCfg.Output.PreprocessedName)
			report, err := pipeline.CompressionRatio(tok, prePath)
			if err != nil {
				return err
			}

			fmt.Fprintf(os.Stdout, "Compression Ratio: %.2f\n", report.Ratio)
			if report.Meets(activeCfg.Eval.CompressionThreshold) {
				fmt.Fprintln(os.Stdout, "Success: compression ratio meets the requirement!")
			} else {
				fmt.Fprintf(os.Stdout,
					"Warning: compression ratio is below the required threshold of %.1f!\n",
					activeCfg.Eval.CompressionThreshold)
			}

			return nil
		},
	}
}
