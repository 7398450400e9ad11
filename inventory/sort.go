package inventory

import (
	"math"
	"sort"
)

// rowBandTolerance is how far, in inches, a shape's top may sit from a
// row's anchor top and still read as part of the same row.
const rowBandTolerance = 0.5

// sortReadingOrder arranges records into approximate human reading
// order: primary sort by (top, left), then a banding pass that groups
// near-equal tops into rows and re-sorts each row left to right. The
// sorts are stable, so exact ties keep their incoming relative order.
func sortReadingOrder(records []*ShapeRecord) []*ShapeRecord {
	sorted := make([]*ShapeRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Top != sorted[j].Top {
			return sorted[i].Top < sorted[j].Top
		}
		return sorted[i].Left < sorted[j].Left
	})

	var rows [][]*ShapeRecord
	for _, rec := range sorted {
		if len(rows) > 0 {
			row := rows[len(rows)-1]
			if math.Abs(rec.Top-row[0].Top) <= rowBandTolerance {
				rows[len(rows)-1] = append(row, rec)
				continue
			}
		}
		rows = append(rows, []*ShapeRecord{rec})
	}

	out := sorted[:0]
	for _, row := range rows {
		sort.SliceStable(row, func(i, j int) bool {
			return row[i].Left < row[j].Left
		})
		out = append(out, row...)
	}
	return out
}
