package tokenizer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tk "github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/model/bpe"
	"github.com/sugarme/tokenizer/pretokenizer"
	"github.com/sugarme/tokenizer/pretrained"
)

// unkToken stands in for symbols that never made it into the vocabulary.
const unkToken = "<unk>"

// BPETrainer trains byte-pair-encoding tokenizers via sugarme/tokenizer.
type BPETrainer struct{}

// Train learns BPE merges from the given corpus files. Input is split on
// whitespace and punctuation before merge learning; the merge algorithm
// itself belongs entirely to the library. The library writes its own
// word-count and merge progress to stdout while training, regardless of
// the trainer's progress flag.
func (BPETrainer) Train(paths []string, opts TrainOptions) (Tokenizer, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("at least one corpus file is required")
	}
	if opts.VocabSize <= 0 {
		return nil, fmt.Errorf("vocab size must be positive, got %d", opts.VocabSize)
	}

	builder := bpe.NewBpeBuilder()
	builder.UnkToken(unkToken)
	model, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("init bpe model: %w", err)
	}

	t := tk.NewTokenizer(model)
	t.WithPreTokenizer(pretokenizer.NewBertPreTokenizer())

	specials := make([]tk.AddedToken, 0, len(opts.SpecialTokens))
	for _, s := range opts.SpecialTokens {
		specials = append(specials, tk.NewAddedToken(s, true))
	}

	trainerBuilder := bpe.NewBPETrainerBuilder()
	trainerBuilder.VocabSize(opts.VocabSize)
	trainerBuilder.MinFrequency(opts.MinFrequency)
	trainerBuilder.SpecialTokens(specials)
	trainerBuilder.ShowProgress(false)
	trainer := trainerBuilder.Build()

	if err := t.Train(trainer, paths); err != nil {
		return nil, fmt.Errorf("train bpe tokenizer: %w", err)
	}

	return &bpeTokenizer{t: t, specials: opts.SpecialTokens}, nil
}

// Load reloads a tokenizer previously persisted with SaveConfig.
func Load(path string) (Tokenizer, error) {
	t, err := pretrained.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("load tokenizer config: %w", err)
	}

	return &bpeTokenizer{t: t}, nil
}

// bpeTokenizer adapts the library tokenizer to the package interfaces.
type bpeTokenizer struct {
	t        *tk.Tokenizer
	specials []string
}

func (b *bpeTokenizer) Encode(text string) (Encoding, error) {
	enc, err := b.t.Encode(tk.NewSingleEncodeInput(tk.NewInputSequence(text)), false)
	if err != nil {
		return Encoding{}, fmt.Errorf("encode: %w", err)
	}

	return Encoding{IDs: enc.GetIds(), Tokens: enc.GetTokens()}, nil
}

func (b *bpeTokenizer) Decode(ids []int) (string, error) {
	return b.t.Decode(ids, true), nil
}

func (b *bpeTokenizer) SaveModel(dir, prefix string) error {
	if err := b.t.GetModel().Save(dir, prefix); err != nil {
		return fmt.Errorf("save vocab and merges: %w", err)
	}

	return nil
}

// SaveConfig writes the full encoder configuration as a tokenizer.json
// document that Load understands. The library's own Tokenizer.Save is an
// unimplemented stub in v0.2.2, so the document is assembled here from the
// model's vocab and merges export.
func (b *bpeTokenizer) SaveConfig(path string) error {
	tmp, err := os.MkdirTemp("", "bpe-export")
	if err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	defer os.RemoveAll(tmp)

	if err := b.t.GetModel().Save(tmp, "export"); err != nil {
		return fmt.Errorf("export vocab and merges: %w", err)
	}

	vocab, err := readVocabExport(tmp)
	if err != nil {
		return err
	}
	merges, err := readMergesExport(tmp)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(encoderConfig(vocab, merges, b.specials), "", "  ")
	if err != nil {
		return fmt.Errorf("encode tokenizer config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write tokenizer config: %w", err)
	}

	return nil
}

func (b *bpeTokenizer) VocabSize() int {
	return b.t.GetVocabSize(true)
}

// readVocabExport parses the token-to-id map the model export wrote.
func readVocabExport(dir string) (map[string]int, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*vocab.json"))
	if err != nil || len(matches) == 0 {
		return nil, fmt.Errorf("vocab export not found in %s", dir)
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		return nil, fmt.Errorf("read vocab export: %w", err)
	}

	vocab := make(map[string]int)
	if err := json.Unmarshal(data, &vocab); err != nil {
		return nil, fmt.Errorf("decode vocab export: %w", err)
	}

	return vocab, nil
}

// readMergesExport returns the merge rules in rank order, skipping the
// version header and blank lines.
func readMergesExport(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*merges.txt"))
	if err != nil || len(matches) == 0 {
		return nil, fmt.Errorf("merges export not found in %s", dir)
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		return nil, fmt.Errorf("read merges export: %w", err)
	}

	merges := []string{}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		merges = append(merges, line)
	}

	return merges, nil
}

// encoderConfig lays out the tokenizer.json schema: BPE model section plus
// the pre-tokenizer and added-token sections the encode path needs.
func encoderConfig(vocab map[string]int, merges []string, specials []string) map[string]interface{} {
	added := []map[string]interface{}{}
	for _, tok := range specials {
		id, ok := vocab[tok]
		if !ok {
			continue
		}
		added = append(added, map[string]interface{}{
			"id":          id,
			"content":     tok,
			"single_word": false,
			"lstrip":      false,
			"rstrip":      false,
			"normalized":  false,
			"special":     true,
		})
	}

	return map[string]interface{}{
		"version":        "1.0",
		"truncation":     nil,
		"padding":        nil,
		"added_tokens":   added,
		"normalizer":     nil,
		"pre_tokenizer":  map[string]interface{}{"type": "BertPreTokenizer"},
		"post_processor": nil,
		"decoder":        nil,
		"model": map[string]interface{}{
			"type":                      "BPE",
			"dropout":                   nil,
			"unk_token":                 unkToken,
			"continuing_subword_prefix": nil,
			"end_of_word_suffix":        nil,
			"fuse_unk":                  false,
			"vocab":                     vocab,
			"merges":                    merges,
		},
	}
}
