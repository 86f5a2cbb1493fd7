package mocap

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ndiInvalidValue is the magic value the NDI Tool Tracker export writes for
// a coordinate it could not measure. Cleaning maps it to the (0,0,0)
// sentinel along with empty and non-numeric cells.
const ndiInvalidValue = -3.697314e28

// DefaultMetadataColumns is the number of leading metadata columns in an
// NDI Tool Tracker CSV export (timestamps, tool status, quaternions and
// other per-tool bookkeeping preceding the raw marker coordinates).
const DefaultMetadataColumns = 42

// CleanConfig controls raw capture cleaning.
type CleanConfig struct {
	MetadataColumns int // Leading columns to discard
}

// DefaultCleanConfig returns the cleaning configuration for NDI Tool
// Tracker exports.
func DefaultCleanConfig() CleanConfig {
	return CleanConfig{MetadataColumns: DefaultMetadataColumns}
}

// CleanCapture reads a raw tracker CSV export and produces per-frame raw
// points. The export is ragged (rows vary in width) and mixes metadata with
// data, so cleaning:
//
//   - pads every row to the widest row observed,
//   - drops the leading metadata columns,
//   - keeps only columns whose every data cell is numeric or empty,
//   - drops the header row,
//   - maps empty, unparseable and device-invalid cells to 0, and
//   - groups the survivors into complete (x, y, z) triples; a trailing
//     partial triple is discarded.
//
// The 0 value doubles as the "no detection" sentinel downstream.
func CleanCapture(r io.Reader, cfg CleanConfig) ([]RawFrame, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("clean: read capture: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("clean: capture has %d rows, need a header and at least one data row", len(rows))
	}

	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	if width <= cfg.MetadataColumns {
		return nil, fmt.Errorf("clean: capture has %d columns, all consumed by the %d metadata columns", width, cfg.MetadataColumns)
	}

	// Column selection looks at data rows only; the header row frequently
	// repeats tool names in otherwise numeric columns.
	numeric := make([]int, 0, width-cfg.MetadataColumns)
	for col := cfg.MetadataColumns; col < width; col++ {
		ok := true
		for _, row := range rows[1:] {
			cell := cellAt(row, col)
			if cell == "" {
				continue
			}
			if _, err := strconv.ParseFloat(cell, 64); err != nil {
				ok = false
				break
			}
		}
		if ok {
			numeric = append(numeric, col)
		}
	}
	if len(numeric) < CoordsPerMarker {
		return nil, fmt.Errorf("clean: only %d numeric columns after metadata, need at least %d", len(numeric), CoordsPerMarker)
	}

	points := len(numeric) / CoordsPerMarker
	frames := make([]RawFrame, 0, len(rows)-1)
	for _, row := range rows[1:] {
		frame := make(RawFrame, points)
		for p := 0; p < points; p++ {
			frame[p] = Point3{
				X: cleanCell(cellAt(row, numeric[p*CoordsPerMarker+0])),
				Y: cleanCell(cellAt(row, numeric[p*CoordsPerMarker+1])),
				Z: cleanCell(cellAt(row, numeric[p*CoordsPerMarker+2])),
			}
		}
		frames = append(frames, frame)
	}

	return frames, nil
}

// cellAt returns the trimmed cell at col, or "" when the ragged row is too
// short.
func cellAt(row []string, col int) string {
	if col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

// cleanCell parses a data cell, mapping empty, unparseable and
// device-invalid values to the 0 sentinel.
func cleanCell(cell string) float64 {
	if cell == "" {
		return 0
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil || v == ndiInvalidValue {
		return 0
	}
	return v
}
