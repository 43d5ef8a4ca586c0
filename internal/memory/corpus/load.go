package corpus

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrEmptyCorpus is returned when no entry survives cleaning.
var ErrEmptyCorpus = errors.New("no messages found after cleaning")

// messageColumn is the CSV header holding chat text.
const messageColumn = "Message"

// LoadMessages reads corpus entries from path and cleans them. A .csv file
// is read from its "Message" column; anything else is one entry per line.
// At most max entries are kept (max <= 0 means no limit).
func LoadMessages(path string, max int) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open corpus: %w", err)
	}
	defer f.Close()

	var raw []string
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		raw, err = readCSVColumn(f, messageColumn)
	} else {
		raw, err = readLines(f)
	}
	if err != nil {
		return nil, err
	}

	msgs := CleanMessages(raw, max)
	if len(msgs) == 0 {
		return nil, ErrEmptyCorpus
	}
	return msgs, nil
}

// CleanMessages lower-cases and trims entries, dropping empty ones and chat
// commands or bot output (leading "!", "%" or "[").
func CleanMessages(raw []string, max int) []string {
	var out []string
	for _, m := range raw {
		if m == "" || strings.HasPrefix(m, "!") || strings.HasPrefix(m, "%") || strings.HasPrefix(m, "[") {
			continue
		}
		m = strings.TrimSpace(strings.ToLower(m))
		if m == "" {
			continue
		}
		out = append(out, m)
		if max > 0 && len(out) == max {
			break
		}
	}
	return out
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read corpus: %w", err)
	}
	return lines, nil
}

func readCSVColumn(r io.Reader, column string) ([]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read corpus header: %w", err)
	}
	col := -1
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), column) {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("corpus csv has no %q column", column)
	}

	var out []string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read corpus row: %w", err)
		}
		if col < len(rec) {
			out = append(out, rec[col])
		}
	}
	return out, nil
}
