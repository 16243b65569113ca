// Package tokenizer wraps the external subword tokenizer library behind a
// narrow train/save/load/encode/decode surface so the training pipeline
// never depends on a specific implementation.
package tokenizer

// Encoding is the result of tokenizing a single line of text.
type Encoding struct {
	IDs    []int
	Tokens []string
}

// Codec encodes text into token ids and decodes ids back into text.
type Codec interface {
	Encode(text string) (Encoding, error)
	Decode(ids []int) (string, error)
}

// Tokenizer is a trained subword tokenizer that can persist itself.
type Tokenizer interface {
	Codec

	// SaveModel writes the vocabulary and merges files under dir using the
	// given filename prefix.
	SaveModel(dir, prefix string) error

	// SaveConfig writes the full, self-describing encoder configuration.
	// A tokenizer saved this way is reloadable with Load.
	SaveConfig(path string) error

	// VocabSize reports the trained vocabulary size including special tokens.
	VocabSize() int
}

// TrainOptions configure a training run.
type TrainOptions struct {
	// VocabSize is the target vocabulary size.
	VocabSize int
	// MinFrequency is the minimum pair frequency required for a merge.
	MinFrequency int
	// SpecialTokens are reserved vocabulary entries guaranteed a slot
	// regardless of corpus frequency.
	SpecialTokens []string
}

// Trainer trains a tokenizer from corpus files.
type Trainer interface {
	Train(paths []string, opts TrainOptions) (Tokenizer, error)
}
