package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/go-hindi-bpe/internal/tokenizer"
)

// fakeTokenizer splits on whitespace and records every persistence call.
type fakeTokenizer struct {
	modelDir    string
	modelPrefix string
	configPath  string
	decoded     int
}

func (f *fakeTokenizer) Encode(text string) (tokenizer.Encoding, error) {
	words := strings.Fields(text)
	enc := tokenizer.Encoding{
		IDs:    make([]int, len(words)),
		Tokens: words,
	}
	for i := range words {
		enc.IDs[i] = i
	}

	return enc, nil
}

func (f *fakeTokenizer) Decode(ids []int) (string, error) {
	f.decoded++
	return fmt.Sprintf("<%d ids>", len(ids)), nil
}

func (f *fakeTokenizer) SaveModel(dir, prefix string) error {
	f.modelDir, f.modelPrefix = dir, prefix
	return nil
}

func (f *fakeTokenizer) SaveConfig(path string) error {
	f.configPath = path
	return os.WriteFile(path, []byte("{}"), 0o644)
}

func (f *fakeTokenizer) VocabSize() int { return 42 }

// fakeTrainer hands out a fakeTokenizer and records the corpus it saw.
type fakeTrainer struct {
	tok        *fakeTokenizer
	paths      []string
	opts       tokenizer.TrainOptions
	err        error
	trainCalls int
}

func (f *fakeTrainer) Train(paths []string, opts tokenizer.TrainOptions) (tokenizer.Tokenizer, error) {
	f.trainCalls++
	f.paths, f.opts = paths, opts
	if f.err != nil {
		return nil, f.err
	}

	return f.tok, nil
}

func testOptions(t *testing.T) Options {
	t.Helper()

	dir := t.TempDir()

	return Options{
		RawCorpusPath:        filepath.Join(dir, "raw_hindi_dataset.txt"),
		MaxCorpusBytes:       1 << 20,
		OutputDir:            filepath.Join(dir, "output"),
		PreprocessedName:     "preprocessed_hindi.txt",
		VocabPrefix:          "hindi_vocab",
		EncoderConfigName:    "hindi_encoder.json",
		VocabSize:            4500,
		MinFrequency:         2,
		SpecialTokens:        []string{"<pad>", "<unk>", "<s>", "</s>"},
		CompressionThreshold: 3.2,
	}
}

func writeRawCorpus(t *testing.T, path string, lines []string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644))
}

func TestPipeline_RunWithLocalCorpus(t *testing.T) {
	opts := testOptions(t)
	writeRawCorpus(t, opts.RawCorpusPath, []string{
		"नमस्ते भारत! यह 123 एक परीक्षण वाक्य है।",
		"",
		"दूसरा वाक्य यहाँ है।",
	})

	trainer := &fakeTrainer{tok: &fakeTokenizer{}}
	result, err := New(opts, trainer, zerolog.Nop()).Run(context.Background())
	require.NoError(t, err)

	// Preprocessed corpus is written normalized, in source order.
	data, err := os.ReadFile(result.PreprocessedPath)
	require.NoError(t, err)
	assert.Equal(t,
		"नमस्ते भारत! यह एक परीक्षण वाक्य है.\nदूसरा वाक्य यहाँ है.",
		string(data))

	// The trainer was pointed at the preprocessed corpus with the
	// configured parameters.
	assert.Equal(t, []string{result.PreprocessedPath}, trainer.paths)
	assert.Equal(t, 4500, trainer.opts.VocabSize)
	assert.Equal(t, 2, trainer.opts.MinFrequency)
	assert.Equal(t, opts.SpecialTokens, trainer.opts.SpecialTokens)

	// Both artifacts were persisted under the output directory.
	assert.Equal(t, opts.OutputDir, trainer.tok.modelDir)
	assert.Equal(t, "hindi_vocab", trainer.tok.modelPrefix)
	assert.Equal(t, filepath.Join(opts.OutputDir, "hindi_encoder.json"), trainer.tok.configPath)

	assert.Equal(t, 2, result.Lines)
	assert.Greater(t, result.Report.Ratio, 0.0)
}

func TestPipeline_MissingInputIsFatal(t *testing.T) {
	opts := testOptions(t) // no raw corpus on disk, download disabled

	_, err := New(opts, &fakeTrainer{tok: &fakeTokenizer{}}, zerolog.Nop()).
		Run(context.Background())

	require.ErrorIs(t, err, ErrMissingInput)
}

func TestPipeline_TrainerFailurePropagates(t *testing.T) {
	opts := testOptions(t)
	writeRawCorpus(t, opts.RawCorpusPath, []string{"नमस्ते भारत"})

	trainer := &fakeTrainer{err: fmt.Errorf("merge table exploded")}
	_, err := New(opts, trainer, zerolog.Nop()).Run(context.Background())

	require.ErrorContains(t, err, "train tokenizer")
}

func TestPipeline_SufficientLocalCorpusSkipsDownload(t *testing.T) {
	opts := testOptions(t)
	opts.Download = true
	// Unroutable URL: the test fails if the pipeline ever dials it.
	opts.CorpusURL = "http://127.0.0.1:1/corpus.txt"
	opts.MaxCorpusBytes = 8

	writeRawCorpus(t, opts.RawCorpusPath, []string{"नमस्ते भारत यह वाक्य है"})

	trainer := &fakeTrainer{tok: &fakeTokenizer{}}
	_, err := New(opts, trainer, zerolog.Nop()).Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, trainer.trainCalls)
}

func TestPipeline_DownloadsMissingCorpus(t *testing.T) {
	content := "नमस्ते भारत।\nदूसरा वाक्य।\n"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(content))
	}))
	defer srv.Close()

	opts := testOptions(t)
	opts.Download = true
	opts.CorpusURL = srv.URL

	trainer := &fakeTrainer{tok: &fakeTokenizer{}}
	result, err := New(opts, trainer, zerolog.Nop()).Run(context.Background())
	require.NoError(t, err)

	raw, err := os.ReadFile(opts.RawCorpusPath)
	require.NoError(t, err)
	assert.Equal(t, content, string(raw))
	assert.Equal(t, 2, result.Lines)
}

func TestPipeline_SamplingLimitsApply(t *testing.T) {
	opts := testOptions(t)
	opts.SampleSize = 2

	writeRawCorpus(t, opts.RawCorpusPath, []string{
		"पहला वाक्य", "दूसरा वाक्य", "तीसरा वाक्य", "चौथा वाक्य",
	})

	trainer := &fakeTrainer{tok: &fakeTokenizer{}}
	result, err := New(opts, trainer, zerolog.Nop()).Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, result.Lines)
}

func TestPipeline_SmokeTestRoundTrips(t *testing.T) {
	opts := testOptions(t)
	opts.SmokeTestText = "नमस्ते भारत! यह 123 एक परीक्षण वाक्य है।"

	writeRawCorpus(t, opts.RawCorpusPath, []string{"नमस्ते भारत"})

	tok := &fakeTokenizer{}
	_, err := New(opts, &fakeTrainer{tok: tok}, zerolog.Nop()).Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, tok.decoded, "smoke test should decode exactly once")
}

func TestPipeline_EmptyCorpusFails(t *testing.T) {
	opts := testOptions(t)
	writeRawCorpus(t, opts.RawCorpusPath, []string{"", "   ", "\t"})

	_, err := New(opts, &fakeTrainer{tok: &fakeTokenizer{}}, zerolog.Nop()).
		Run(context.Background())

	require.ErrorContains(t, err, "no usable lines")
}
