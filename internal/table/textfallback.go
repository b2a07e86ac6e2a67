package table

import (
	"regexp"
	"strings"

	"github.com/fleetdesk/booking-intake/internal/fieldmap"
)

// columnSplitRe breaks a degraded OCR line into columns on the delimiters
// that survive table flattening: tabs, runs of two or more spaces, pipes.
var columnSplitRe = regexp.MustCompile(`\t+| {2,}|\s*\|\s*`)

// CountIndicators counts multi-record indicator tokens ("Cab 1", "Car 2",
// ...) in flattened text.
func CountIndicators(text string) int {
	return len(recordIndexRe.FindAllString(text, -1))
}

// minRecoveryIndicators gates the degraded-text fallback: below this the
// text is treated as ordinary free text, not a flattened table.
const minRecoveryIndicators = 3

// ShouldRecover reports whether the degraded-text fallback applies: the
// upstream extraction produced zero tables and the raw text still carries
// enough multi-record indicators to suggest a flattened table.
func ShouldRecover(text string, tableCount int) bool {
	return tableCount == 0 && CountIndicators(text) >= minRecoveryIndicators
}

// TextRecovery rebuilds table structure from flat OCR lines. Best effort
// only: it never fails loudly, it returns nil when no structure is found.
type TextRecovery struct {
	mapper *fieldmap.Mapper
}

func NewTextRecovery(mapper *fieldmap.Mapper) *TextRecovery {
	if mapper == nil {
		mapper = fieldmap.New()
	}
	return &TextRecovery{mapper: mapper}
}

// FromText synthesizes a Table from raw lines. The header is the first line
// carrying at least two indicator tokens; following lines are matched to
// field labels and their values accumulated until the next label starts.
func (tr *TextRecovery) FromText(lines []string) *Table {
	headerIdx := -1
	var headers []string
	for i, line := range lines {
		if len(recordIndexRe.FindAllString(line, -1)) >= 2 {
			headers = splitColumns(line)
			if len(headers) >= 2 {
				headerIdx = i
				break
			}
		}
	}
	if headerIdx < 0 {
		return nil
	}

	var rows [][]string
	var current []string
	for _, line := range lines[headerIdx+1:] {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		cols := splitColumns(line)
		if len(cols) == 0 {
			continue
		}
		if _, ok := tr.mapper.Map(cols[0]); ok {
			if current != nil {
				rows = append(rows, current)
			}
			current = cols
			continue
		}
		// continuation line: extend the row in progress
		if current != nil {
			current = appendValues(current, cols)
		}
	}
	if current != nil {
		rows = append(rows, current)
	}
	if len(rows) == 0 {
		return nil
	}

	t := New(headers, rows)
	return &t
}

func splitColumns(line string) []string {
	parts := columnSplitRe.Split(strings.TrimSpace(line), -1)
	out := parts[:0]
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// appendValues folds continuation columns into the first empty slots of the
// row, appending past the end when none are left.
func appendValues(row, cols []string) []string {
	for _, c := range cols {
		placed := false
		for i := 1; i < len(row); i++ {
			if strings.TrimSpace(row[i]) == "" {
				row[i] = c
				placed = true
				break
			}
		}
		if !placed {
			row = append(row, c)
		}
	}
	return row
}
