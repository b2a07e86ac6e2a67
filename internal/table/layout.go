package table

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/fleetdesk/booking-intake/internal/fieldmap"
)

// Scores is the per-layout score breakdown, kept alongside the decision so
// the heuristic priority stays visible and testable.
type Scores struct {
	Horizontal int `json:"horizontal"`
	Vertical   int `json:"vertical"`
	Form       int `json:"form"`
}

// Layout is a classification decision. Fallback is set when no layout
// reached the minimum score and the vertical default was applied.
// HeaderRow is set when the table has no explicit header slice but its
// first row reads like one; reconstruction skips that row.
type Layout struct {
	Kind             Kind   `json:"kind"`
	EstimatedRecords int    `json:"estimated_records"`
	Scores           Scores `json:"scores"`
	Fallback         bool   `json:"fallback"`
	HeaderRow        bool   `json:"header_row,omitempty"`
}

// minLayoutScore is the acceptance threshold; below it the vertical default
// applies.
const minLayoutScore = 3

// recordIndexRe matches "record index" headers such as "Cab 1", "Car-2",
// "Booking 3".
var recordIndexRe = regexp.MustCompile(`(?i)\b(cab|car|vehicle|booking|guest|trip)\s*-?\s*\d+\b`)

var (
	phoneShapedRe = regexp.MustCompile(`\d[\d\s\-+()]{6,}\d`)
	dateShapedRe  = regexp.MustCompile(`(?i)\b\d{1,4}[-/.]\d{1,2}[-/.]\d{1,4}\b|\b\d{1,2}\s*(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)`)
	timeShapedRe  = regexp.MustCompile(`\b\d{1,2}[:.]\d{2}\b`)
)

// Classifier scores the three layout hypotheses and picks the highest,
// breaking ties toward vertical as the more common layout in this domain.
type Classifier struct {
	mapper *fieldmap.Mapper
}

func NewClassifier(mapper *fieldmap.Mapper) *Classifier {
	if mapper == nil {
		mapper = fieldmap.New()
	}
	return &Classifier{mapper: mapper}
}

// Classify scores the table and returns the winning layout with a record
// count estimate. It never fails; an unrecognized layout degrades to the
// vertical default with Fallback set.
func (c *Classifier) Classify(t Table) Layout {
	scores := Scores{
		Horizontal: c.horizontalScore(t),
		Vertical:   c.verticalScore(t),
		Form:       c.formScore(t),
	}

	kind := KindVerticalMulti
	best := scores.Vertical
	if scores.Horizontal > best {
		kind, best = KindHorizontalMulti, scores.Horizontal
	}
	if scores.Form > best {
		kind, best = KindFormKV, scores.Form
	}

	headerRow := len(t.Headers) == 0 && t.RowCount() > 0 && c.headerLikeRow(t.Rows[0])

	if best < minLayoutScore {
		return Layout{
			Kind:             KindVerticalMulti,
			EstimatedRecords: c.fallbackRecordCount(t, headerRow),
			Scores:           scores,
			Fallback:         true,
			HeaderRow:        headerRow,
		}
	}

	return Layout{
		Kind:             kind,
		EstimatedRecords: c.estimateRecords(t, kind, headerRow),
		Scores:           scores,
		HeaderRow:        headerRow,
	}
}

// horizontalScore counts non-first record-index columns (doubled when at
// least two, a strong signal) plus a bonus when the first column reads like
// field labels.
func (c *Classifier) horizontalScore(t Table) int {
	headers := t.Headers
	if len(headers) == 0 && len(t.Rows) > 0 {
		headers = t.Rows[0]
	}
	if len(headers) < 2 {
		return 0
	}

	indexCols := 0
	for _, h := range headers[1:] {
		if recordIndexRe.MatchString(h) {
			indexCols++
		}
	}
	score := indexCols
	if indexCols >= 2 {
		score *= 2
	}

	labelCells := 0
	for _, row := range t.Rows {
		if len(row) == 0 {
			continue
		}
		if c.labelLike(row[0]) {
			labelCells++
		}
	}
	if labelCells >= 3 {
		score += 2
	}
	return score
}

// verticalScore counts header cells matching known field labels (doubled
// when at least three) plus a bonus for a leading sequential-integer column.
func (c *Classifier) verticalScore(t Table) int {
	matches := 0
	for _, h := range t.Headers {
		if c.labelLike(h) {
			matches++
		}
	}
	score := matches
	if matches >= 3 {
		score *= 2
	}
	if c.hasSequentialIndex(t) {
		score += 2
	}
	return score
}

// formScore accepts only two-column tables whose first column is entirely
// label-like; the score scales with row count so small forms still clear the
// threshold.
func (c *Classifier) formScore(t Table) int {
	if t.ColumnCount() != 2 || len(t.Headers) > 0 || len(t.Rows) == 0 {
		return 0
	}
	for _, row := range t.Rows {
		if strings.TrimSpace(row[0]) == "" || !c.labelLike(row[0]) {
			return 0
		}
	}
	return len(t.Rows) + 2
}

func (c *Classifier) estimateRecords(t Table, kind Kind, headerRow bool) int {
	switch kind {
	case KindHorizontalMulti:
		n := t.ColumnCount() - 1
		if n < 1 {
			n = 1
		}
		return n
	case KindFormKV:
		return 1
	default:
		n := t.RowCount()
		if headerRow {
			n--
		}
		if n < 1 {
			n = 1
		}
		return n
	}
}

func (c *Classifier) fallbackRecordCount(t Table, headerRow bool) int {
	n := t.RowCount()
	if headerRow {
		n--
	}
	if n < 1 {
		n = 1
	}
	return n
}

// headerLikeRow holds when label-shaped cells outnumber data-shaped ones and
// there are at least two of them.
func (c *Classifier) headerLikeRow(row []string) bool {
	labelLike, dataLike := 0, 0
	for _, cell := range row {
		if strings.TrimSpace(cell) == "" {
			continue
		}
		if c.labelLike(cell) {
			labelLike++
		} else if dataShaped(cell) {
			dataLike++
		}
	}
	return labelLike > dataLike && labelLike >= 2
}

// labelLike means the cell resolves through the field mapper and does not
// look like a data value itself.
func (c *Classifier) labelLike(cell string) bool {
	cell = strings.TrimSpace(cell)
	if cell == "" || dataShaped(cell) {
		return false
	}
	_, ok := c.mapper.Map(cell)
	return ok
}

func dataShaped(cell string) bool {
	s := strings.TrimSpace(cell)
	if s == "" {
		return false
	}
	if strings.Contains(s, "@") {
		return true
	}
	return phoneShapedRe.MatchString(s) || dateShapedRe.MatchString(s) || timeShapedRe.MatchString(s)
}

func (c *Classifier) hasSequentialIndex(t Table) bool {
	if len(t.Rows) < 2 {
		return false
	}
	for i, row := range t.Rows {
		if len(row) == 0 {
			return false
		}
		n, err := strconv.Atoi(strings.TrimSpace(row[0]))
		if err != nil || n != i+1 {
			return false
		}
	}
	return true
}
