package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/go-hindi-bpe/internal/config"
	"github.com/example/go-hindi-bpe/internal/pipeline"
	"github.com/example/go-hindi-bpe/internal/tokenizer"
)

// smokeSentence is round-tripped through the freshly trained tokenizer when
// the smoke test is enabled; digits and the danda exercise every
// normalization rule.
const smokeSentence = "नमस्ते भारत! यह १२३ एक परीक्षण वाक्य है।"

func newTrainCmd() *cobra.Command {
	var smokeTest bool

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Run the full pipeline: fetch, preprocess, train, evaluate",
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := pipelineOptions(activeCfg)
			if smokeTest {
				opts.SmokeTestText = smokeSentence
			}

			result, err := pipeline.New(opts, tokenizer.BPETrainer{}, logger).
				Run(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(os.Stdout, "Compression Ratio: %.2f\n", result.Report.Ratio)
			fmt.Fprintf(os.Stdout, "Tokenizer config: %s\n", result.EncoderConfigPath)

			return nil
		},
	}

	cmd.Flags().BoolVar(&smokeTest, "smoke-test", true, "Round-trip a sample sentence after training")

	return cmd
}

func pipelineOptions(cfg config.Config) pipeline.Options {
	return pipeline.Options{
		CorpusURL:            cfg.Corpus.URL,
		RawCorpusPath:        cfg.Corpus.RawPath,
		MaxCorpusBytes:       cfg.Corpus.MaxBytes,
		Download:             cfg.Corpus.Download,
		SampleSize:           cfg.Sample.Size,
		MaxScanLines:         cfg.Sample.MaxLines,
		OutputDir:            cfg.Output.Dir,
		PreprocessedName:     cfg.Output.PreprocessedName,
		VocabPrefix:          cfg.Output.VocabPrefix,
		EncoderConfigName:    cfg.Output.EncoderConfigName,
		VocabSize:            cfg.Tokenizer.VocabSize,
		MinFrequency:         cfg.Tokenizer.MinFrequency,
		SpecialTokens:        cfg.Tokenizer.SpecialTokens,
		CompressionThreshold: cfg.Eval.CompressionThreshold,
		Progress:             os.Stderr,
	}
}
