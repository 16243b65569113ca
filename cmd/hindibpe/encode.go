package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/go-hindi-bpe/internal/text"
	"github.com/example/go-hindi-bpe/internal/tokenizer"
)

func newEncodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "encode [text...]",
		Short: "Normalize and encode text with a saved tokenizer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			cfgPath := filepath.Join(activeCfg.Output.Dir, activeCfg.Output.EncoderConfigName)
			tok, err := tokenizer.Load(cfgPath)
			if err != nil {
				return err
			}

			input := text.Normalize(strings.Join(args, " "))
			if input == "" {
				return fmt.Errorf("nothing left to encode after normalization")
			}

			enc, err := tok.Encode(input)
			if err != nil {
				return err
			}

			decoded, err := tok.Decode(enc.IDs)
			if err != nil {
				return err
			}

			fmt.Fprintf(os.Stdout, "normalized: %s\n", input)
			fmt.Fprintf(os.Stdout, "tokens:     %v\n", enc.Tokens)
			fmt.Fprintf(os.Stdout, "ids:        %v\n", enc.IDs)
			fmt.Fprintf(os.Stdout, "decoded:    %s\n", decoded)

			return nil
		},
	}
}
