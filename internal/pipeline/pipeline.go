// Package pipeline orchestrates the full tokenizer training run: corpus
// acquisition, sampling, normalization, BPE training, artifact persistence
// and compression evaluation.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/example/go-hindi-bpe/internal/corpus"
	"github.com/example/go-hindi-bpe/internal/text"
	"github.com/example/go-hindi-bpe/internal/tokenizer"
)

// ErrMissingInput is returned when the raw corpus is absent locally and no
// download path is available. This is fatal for the run.
var ErrMissingInput = errors.New("raw corpus not found and not downloadable")

// Options configure a training run. Zero-valued limits mean unlimited.
type Options struct {
	// Corpus acquisition.
	CorpusURL      string
	RawCorpusPath  string
	MaxCorpusBytes int64
	Download       bool

	// Sampling bounds.
	SampleSize   int
	MaxScanLines int

	// Output layout.
	OutputDir         string
	PreprocessedName  string
	VocabPrefix       string
	EncoderConfigName string

	// Trainer parameters.
	VocabSize     int
	MinFrequency  int
	SpecialTokens []string

	// Evaluation.
	CompressionThreshold float64

	// SmokeTestText, when non-empty, is normalized, encoded and decoded
	// after training as a round-trip check for manual inspection.
	SmokeTestText string

	// Client and Progress are forwarded to the corpus fetcher.
	Client   *http.Client
	Progress io.Writer
}

// Result of a completed training run.
type Result struct {
	Tokenizer         tokenizer.Tokenizer
	Report            CompressionReport
	Lines             int
	PreprocessedPath  string
	EncoderConfigPath string
}

// Pipeline runs the stages strictly in sequence, failing fast without
// rollback; a failed run leaves any partial corpus download in place for a
// future resume.
type Pipeline struct {
	opts    Options
	trainer tokenizer.Trainer
	log     zerolog.Logger
}

// New builds a Pipeline around the given trainer.
func New(opts Options, trainer tokenizer.Trainer, log zerolog.Logger) *Pipeline {
	return &Pipeline{opts: opts, trainer: trainer, log: log}
}

// Run executes the full pipeline and returns the trained tokenizer together
// with its compression report.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	if err := os.MkdirAll(p.opts.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	if err := p.ensureCorpus(ctx); err != nil {
		return nil, err
	}

	p.log.Info().Str("path", p.opts.RawCorpusPath).
		Int("sample_size", p.opts.SampleSize).
		Int("max_lines", p.opts.MaxScanLines).
		Msg("sampling corpus")

	lines, err := corpus.SampleLines(p.opts.RawCorpusPath, corpus.SampleOptions{
		SampleSize: p.opts.SampleSize,
		MaxLines:   p.opts.MaxScanLines,
	})
	if err != nil {
		return nil, fmt.Errorf("sample corpus: %w", err)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("corpus %s contains no usable lines", p.opts.RawCorpusPath)
	}

	p.log.Info().Int("lines", len(lines)).Msg("normalizing corpus")
	cleaned := text.NormalizeLines(lines)

	prePath := filepath.Join(p.opts.OutputDir, p.opts.PreprocessedName)
	if err := os.WriteFile(prePath, []byte(strings.Join(cleaned, "\n")), 0o644); err != nil {
		return nil, fmt.Errorf("write preprocessed corpus: %w", err)
	}

	p.log.Info().Int("vocab_size", p.opts.VocabSize).
		Int("min_frequency", p.opts.MinFrequency).
		Msg("training bpe tokenizer")

	trained, err := p.trainer.Train([]string{prePath}, tokenizer.TrainOptions{
		VocabSize:     p.opts.VocabSize,
		MinFrequency:  p.opts.MinFrequency,
		SpecialTokens: p.opts.SpecialTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("train tokenizer: %w", err)
	}

	if err := trained.SaveModel(p.opts.OutputDir, p.opts.VocabPrefix); err != nil {
		return nil, fmt.Errorf("persist vocabulary: %w", err)
	}

	cfgPath := filepath.Join(p.opts.OutputDir, p.opts.EncoderConfigName)
	if err := trained.SaveConfig(cfgPath); err != nil {
		return nil, fmt.Errorf("persist encoder config: %w", err)
	}
	p.log.Info().Str("dir", p.opts.OutputDir).
		Int("vocab", trained.VocabSize()).
		Msg("tokenizer artifacts written")

	report, err := CompressionRatio(trained, prePath)
	if err != nil {
		return nil, fmt.Errorf("evaluate compression: %w", err)
	}

	if report.Meets(p.opts.CompressionThreshold) {
		p.log.Info().Float64("ratio", report.Ratio).
			Float64("threshold", p.opts.CompressionThreshold).
			Msg("compression ratio meets requirement")
	} else {
		p.log.Warn().Float64("ratio", report.Ratio).
			Float64("threshold", p.opts.CompressionThreshold).
			Msg("compression ratio below required threshold")
	}

	if p.opts.SmokeTestText != "" {
		if err := p.smokeTest(trained); err != nil {
			return nil, err
		}
	}

	return &Result{
		Tokenizer:         trained,
		Report:            report,
		Lines:             len(lines),
		PreprocessedPath:  prePath,
		EncoderConfigPath: cfgPath,
	}, nil
}

// ensureCorpus makes sure the raw corpus file is usable, downloading or
// resuming it when allowed. A local file at or above the size cap skips the
// network entirely.
func (p *Pipeline) ensureCorpus(ctx context.Context) error {
	fi, err := os.Stat(p.opts.RawCorpusPath)
	exists := err == nil

	if exists && fi.Size() >= p.opts.MaxCorpusBytes {
		p.log.Info().Str("path", p.opts.RawCorpusPath).
			Int64("bytes", fi.Size()).
			Msg("local corpus sufficient, skipping download")
		return nil
	}

	downloadable := p.opts.Download && p.opts.CorpusURL != ""
	if !downloadable {
		if exists {
			p.log.Info().Str("path", p.opts.RawCorpusPath).
				Int64("bytes", fi.Size()).
				Msg("using local corpus as-is")
			return nil
		}
		return fmt.Errorf("%w: %s", ErrMissingInput, p.opts.RawCorpusPath)
	}

	p.log.Info().Str("url", p.opts.CorpusURL).
		Int64("max_bytes", p.opts.MaxCorpusBytes).
		Msg("fetching corpus")

	size, err := corpus.Fetch(ctx, corpus.FetchOptions{
		URL:      p.opts.CorpusURL,
		DestPath: p.opts.RawCorpusPath,
		MaxBytes: p.opts.MaxCorpusBytes,
		Client:   p.opts.Client,
		Progress: p.opts.Progress,
	})
	if err != nil {
		return fmt.Errorf("fetch corpus: %w", err)
	}

	p.log.Info().Int64("bytes", size).Msg("corpus ready")

	return nil
}

// smokeTest round-trips a fixed sentence through the freshly trained
// tokenizer and logs both forms for manual inspection.
func (p *Pipeline) smokeTest(codec tokenizer.Codec) error {
	sample := text.Normalize(p.opts.SmokeTestText)

	enc, err := codec.Encode(sample)
	if err != nil {
		return fmt.Errorf("smoke test encode: %w", err)
	}

	decoded, err := codec.Decode(enc.IDs)
	if err != nil {
		return fmt.Errorf("smoke test decode: %w", err)
	}

	p.log.Info().Str("input", sample).
		Strs("tokens", enc.Tokens).
		Ints("ids", enc.IDs).
		Str("decoded", decoded).
		Msg("round-trip smoke test")

	return nil
}
