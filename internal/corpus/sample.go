package corpus

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// maxLineBytes tolerates corpus lines well beyond bufio's default token
// size; raw web-scraped corpora routinely contain very long lines.
const maxLineBytes = 1 << 20

// SampleOptions bound a sampling pass. Zero values mean unlimited.
type SampleOptions struct {
	// SampleSize is the maximum number of lines collected.
	SampleSize int
	// MaxLines is the maximum number of source lines scanned.
	MaxLines int
}

// SampleLines scans the file at path line by line and collects trimmed,
// non-empty lines in source order. Scanning stops after MaxLines source
// lines; collection stops once SampleSize lines are gathered. No line is
// ever split or merged.
func SampleLines(path string, opts SampleOptions) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open corpus: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)

	var lines []string
	scanned := 0

	for {
		if opts.MaxLines > 0 && scanned >= opts.MaxLines {
			break
		}
		if !sc.Scan() {
			break
		}
		scanned++

		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		lines = append(lines, line)
		if opts.SampleSize > 0 && len(lines) >= opts.SampleSize {
			break
		}
	}

	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan corpus: %w", err)
	}

	return lines, nil
}
