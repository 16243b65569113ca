// Package config holds the runtime configuration for the tokenizer
// pipeline. Precedence: flags > environment > config file > defaults.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Corpus    CorpusConfig    `mapstructure:"corpus"`
	Sample    SampleConfig    `mapstructure:"sample"`
	Tokenizer TokenizerConfig `mapstructure:"tokenizer"`
	Output    OutputConfig    `mapstructure:"output"`
	Eval      EvalConfig      `mapstructure:"eval"`
	LogLevel  string          `mapstructure:"log_level"`
}

type CorpusConfig struct {
	URL      string `mapstructure:"url"`
	RawPath  string `mapstructure:"raw_path"`
	MaxBytes int64  `mapstructure:"max_bytes"`
	Download bool   `mapstructure:"download"`
}

type SampleConfig struct {
	Size     int `mapstructure:"size"`
	MaxLines int `mapstructure:"max_lines"`
}

type TokenizerConfig struct {
	VocabSize     int      `mapstructure:"vocab_size"`
	MinFrequency  int      `mapstructure:"min_frequency"`
	SpecialTokens []string `mapstructure:"special_tokens"`
}

type OutputConfig struct {
	Dir               string `mapstructure:"dir"`
	PreprocessedName  string `mapstructure:"preprocessed_name"`
	VocabPrefix       string `mapstructure:"vocab_prefix"`
	EncoderConfigName string `mapstructure:"encoder_config_name"`
}

type EvalConfig struct {
	CompressionThreshold float64 `mapstructure:"compression_threshold"`
}

type LoadOptions struct {
	Cmd        flagBinder
	ConfigFile string
	Defaults   Config
}

type flagBinder interface {
	Flags() *pflag.FlagSet
}

func DefaultConfig() Config {
	return Config{
		Corpus: CorpusConfig{
			URL:      "https://storage.googleapis.com/ai4b-public-nlu-nlg/text-corpora/hi/raw_hindi_dataset.txt",
			RawPath:  "raw_hindi_dataset.txt",
			MaxBytes: 100 << 20,
			Download: true,
		},
		Sample: SampleConfig{
			Size:     200_000,
			MaxLines: 0,
		},
		Tokenizer: TokenizerConfig{
			// Kept below the 5000 vocabulary ceiling.
			VocabSize:     4500,
			MinFrequency:  2,
			SpecialTokens: []string{"<pad>", "<unk>", "<s>", "</s>"},
		},
		Output: OutputConfig{
			Dir:               "output",
			PreprocessedName:  "preprocessed_hindi.txt",
			VocabPrefix:       "hindi_vocab",
			EncoderConfigName: "hindi_encoder.json",
		},
		Eval: EvalConfig{
			CompressionThreshold: 3.2,
		},
		LogLevel: "info",
	}
}

func RegisterFlags(fs *pflag.FlagSet, defaults Config) {
	fs.String("corpus-url", defaults.Corpus.URL, "Remote corpus URL (plain UTF-8 text)")
	fs.String("corpus-raw-path", defaults.Corpus.RawPath, "Local path of the raw corpus file")
	fs.Int64("corpus-max-bytes", defaults.Corpus.MaxBytes, "Byte ceiling for the raw corpus download")
	fs.Bool("corpus-download", defaults.Corpus.Download, "Download/resume the corpus when the local copy is insufficient")
	fs.Int("sample-size", defaults.Sample.Size, "Maximum number of corpus lines to sample (0 = unlimited)")
	fs.Int("sample-max-lines", defaults.Sample.MaxLines, "Maximum number of source lines to scan (0 = unlimited)")
	fs.Int("tokenizer-vocab-size", defaults.Tokenizer.VocabSize, "Target BPE vocabulary size")
	fs.Int("tokenizer-min-frequency", defaults.Tokenizer.MinFrequency, "Minimum pair frequency for a merge")
	fs.StringSlice("tokenizer-special-tokens", defaults.Tokenizer.SpecialTokens, "Reserved special tokens")
	fs.String("output-dir", defaults.Output.Dir, "Directory for pipeline artifacts")
	fs.String("output-preprocessed-name", defaults.Output.PreprocessedName, "Filename of the preprocessed corpus")
	fs.String("output-vocab-prefix", defaults.Output.VocabPrefix, "Filename prefix of the vocab/merges files")
	fs.String("output-encoder-config-name", defaults.Output.EncoderConfigName, "Filename of the full encoder config")
	fs.Float64("eval-compression-threshold", defaults.Eval.CompressionThreshold, "Required characters-per-token ratio")
	fs.String("log-level", defaults.LogLevel, "Log level (debug|info|warn|error)")
}

func Load(opts LoadOptions) (Config, error) {
	v := viper.New()

	setDefaults(v, opts.Defaults)
	if opts.Cmd != nil {
		if err := v.BindPFlags(opts.Cmd.Flags()); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	v.SetEnvPrefix("HINDIBPE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("hindibpe")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	// Aliases must be registered after the config file is read: viper
	// migrates any value held under the alias onto the canonical key at
	// registration time, and registering earlier makes file values under
	// the nested keys resolve to the (unset) flag key instead.
	registerAliases(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("corpus.url", c.Corpus.URL)
	v.SetDefault("corpus.raw_path", c.Corpus.RawPath)
	v.SetDefault("corpus.max_bytes", c.Corpus.MaxBytes)
	v.SetDefault("corpus.download", c.Corpus.Download)
	v.SetDefault("sample.size", c.Sample.Size)
	v.SetDefault("sample.max_lines", c.Sample.MaxLines)
	v.SetDefault("tokenizer.vocab_size", c.Tokenizer.VocabSize)
	v.SetDefault("tokenizer.min_frequency", c.Tokenizer.MinFrequency)
	v.SetDefault("tokenizer.special_tokens", c.Tokenizer.SpecialTokens)
	v.SetDefault("output.dir", c.Output.Dir)
	v.SetDefault("output.preprocessed_name", c.Output.PreprocessedName)
	v.SetDefault("output.vocab_prefix", c.Output.VocabPrefix)
	v.SetDefault("output.encoder_config_name", c.Output.EncoderConfigName)
	v.SetDefault("eval.compression_threshold", c.Eval.CompressionThreshold)
	v.SetDefault("log_level", c.LogLevel)
}

func registerAliases(v *viper.Viper) {
	v.RegisterAlias("corpus.url", "corpus-url")
	v.RegisterAlias("corpus.raw_path", "corpus-raw-path")
	v.RegisterAlias("corpus.max_bytes", "corpus-max-bytes")
	v.RegisterAlias("corpus.download", "corpus-download")
	v.RegisterAlias("sample.size", "sample-size")
	v.RegisterAlias("sample.max_lines", "sample-max-lines")
	v.RegisterAlias("tokenizer.vocab_size", "tokenizer-vocab-size")
	v.RegisterAlias("tokenizer.min_frequency", "tokenizer-min-frequency")
	v.RegisterAlias("tokenizer.special_tokens", "tokenizer-special-tokens")
	v.RegisterAlias("output.dir", "output-dir")
	v.RegisterAlias("output.preprocessed_name", "output-preprocessed-name")
	v.RegisterAlias("output.vocab_prefix", "output-vocab-prefix")
	v.RegisterAlias("output.encoder_config_name", "output-encoder-config-name")
	v.RegisterAlias("eval.compression_threshold", "eval-compression-threshold")
	v.RegisterAlias("log_level", "log-level")
}
