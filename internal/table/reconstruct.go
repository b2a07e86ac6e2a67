package table

import (
	"strings"

	"github.com/fleetdesk/booking-intake/constants"
	"github.com/fleetdesk/booking-intake/internal/booking"
	"github.com/fleetdesk/booking-intake/internal/fieldmap"
)

// Reconstructor rebuilds booking records from a classified table.
type Reconstructor struct {
	mapper *fieldmap.Mapper
}

func NewReconstructor(mapper *fieldmap.Mapper) *Reconstructor {
	if mapper == nil {
		mapper = fieldmap.New()
	}
	return &Reconstructor{mapper: mapper}
}

// FromTable rebuilds records according to the classified layout. Records
// that end up with no populated field are discarded silently.
func (r *Reconstructor) FromTable(t Table, layout Layout) []booking.Record {
	var recs []booking.Record
	switch layout.Kind {
	case KindHorizontalMulti:
		recs = r.horizontal(t)
	case KindFormKV:
		recs = r.formKV(t)
	default:
		recs = r.vertical(t, layout.HeaderRow)
	}
	return booking.DropNonViable(recs)
}

// horizontal treats each non-label column as one record. The first non-empty
// cell of every row is the field label; the cell under the record's column is
// that field's value.
func (r *Reconstructor) horizontal(t Table) []booking.Record {
	width := t.ColumnCount()
	if width < 2 {
		return nil
	}
	recs := make([]booking.Record, width-1)
	for i := range recs {
		recs[i].Method = "table_horizontal"
	}

	for _, row := range t.Rows {
		label, labelCol := firstNonEmpty(row)
		if label == "" {
			continue
		}
		field, ok := r.mapper.Map(label)
		if !ok {
			continue
		}
		for col := labelCol + 1; col < len(row) && col < width; col++ {
			v := row[col]
			if IsNoise(v) {
				continue
			}
			recs[col-1].Set(field, v)
		}
	}
	return recs
}

// vertical builds the header-to-field index once, then applies it per data
// row. A table without explicit headers uses its first row only when the
// classifier judged that row header-like; promoting a data row would both
// lose its values and index fields off accidental matches.
func (r *Reconstructor) vertical(t Table, headerRow bool) []booking.Record {
	headers := t.Headers
	rows := t.Rows
	if len(headers) == 0 {
		if !headerRow || len(rows) == 0 {
			return nil
		}
		headers = rows[0]
		rows = rows[1:]
	}

	index := make(map[int]constants.Field, len(headers))
	for col, h := range headers {
		if field, ok := r.mapper.Map(h); ok {
			index[col] = field
		}
	}
	if len(index) == 0 {
		return nil
	}

	recs := make([]booking.Record, 0, len(rows))
	for _, row := range rows {
		rec := booking.Record{Method: "table_vertical"}
		for col, field := range index {
			if col >= len(row) || IsNoise(row[col]) {
				continue
			}
			rec.Set(field, row[col])
		}
		recs = append(recs, rec)
	}
	return recs
}

// formKV collapses a two-column label/value table into exactly one record.
func (r *Reconstructor) formKV(t Table) []booking.Record {
	rec := booking.Record{Method: "form_kv"}
	for _, row := range t.Rows {
		if len(row) < 2 {
			continue
		}
		field, ok := r.mapper.Map(row[0])
		if !ok {
			continue
		}
		if IsNoise(row[1]) {
			continue
		}
		rec.Set(field, row[1])
	}
	return []booking.Record{rec}
}

func firstNonEmpty(row []string) (string, int) {
	for i, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return cell, i
		}
	}
	return "", -1
}
