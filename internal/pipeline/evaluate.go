package pipeline

import (
	"bufio"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/example/go-hindi-bpe/internal/tokenizer"
)

// evalMaxLineBytes mirrors the sampler's tolerance for long corpus lines.
const evalMaxLineBytes = 1 << 20

// CompressionReport summarizes tokenizer efficiency over a corpus: the mean
// number of characters represented per emitted token.
type CompressionReport struct {
	Ratio       float64
	TotalChars  int
	TotalTokens int
}

// Meets reports whether the measured ratio reaches threshold.
func (r CompressionReport) Meets(threshold float64) bool {
	return r.Ratio >= threshold
}

// CompressionRatio encodes every line of the corpus at path independently
// and returns total characters divided by total tokens. A corpus that
// yields no tokens at all is an error.
func CompressionRatio(codec tokenizer.Codec, path string) (CompressionReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return CompressionReport{}, fmt.Errorf("open corpus: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), evalMaxLineBytes)

	var report CompressionReport
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}

		report.TotalChars += utf8.RuneCountInString(line)

		enc, err := codec.Encode(line)
		if err != nil {
			return CompressionReport{}, fmt.Errorf("encode line: %w", err)
		}
		report.TotalTokens += len(enc.Tokens)
	}
	if err := sc.Err(); err != nil {
		return CompressionReport{}, fmt.Errorf("scan corpus: %w", err)
	}

	if report.TotalTokens == 0 {
		return CompressionReport{}, fmt.Errorf("corpus %s produced no tokens", path)
	}

	report.Ratio = float64(report.TotalChars) / float64(report.TotalTokens)

	return report, nil
}
