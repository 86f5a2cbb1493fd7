package mocap

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// coordinateHeader builds the x1,y1,z1,x2,y2,z2,... column header for the
// given marker count.
func coordinateHeader(markers int) []string {
	header := make([]string, 0, markers*CoordsPerMarker)
	for m := 1; m <= markers; m++ {
		header = append(header,
			fmt.Sprintf("x%d", m),
			fmt.Sprintf("y%d", m),
			fmt.Sprintf("z%d", m))
	}
	return header
}

// WriteTrackCSV writes a labelled or resampled track as CSV with the
// standard coordinate header.
func WriteTrackCSV(w io.Writer, track Track) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(coordinateHeader(track.Markers())); err != nil {
		return fmt.Errorf("write track header: %w", err)
	}

	row := make([]string, track.Columns())
	for i := 0; i < track.Len(); i++ {
		frame := track.Frame(i)
		for m, p := range frame {
			row[m*CoordsPerMarker+0] = formatCoord(p.X)
			row[m*CoordsPerMarker+1] = formatCoord(p.Y)
			row[m*CoordsPerMarker+2] = formatCoord(p.Z)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write track row %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteRawFramesCSV writes cleaned raw frames as CSV. All frames must have
// the same point count (CleanCapture guarantees that).
func WriteRawFramesCSV(w io.Writer, frames []RawFrame) error {
	if len(frames) == 0 {
		return fmt.Errorf("write frames: no frames")
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(coordinateHeader(len(frames[0]))); err != nil {
		return fmt.Errorf("write frames header: %w", err)
	}

	row := make([]string, len(frames[0])*CoordsPerMarker)
	for i, frame := range frames {
		for m, p := range frame {
			row[m*CoordsPerMarker+0] = formatCoord(p.X)
			row[m*CoordsPerMarker+1] = formatCoord(p.Y)
			row[m*CoordsPerMarker+2] = formatCoord(p.Z)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write frame row %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadTrackCSV loads a track previously written by WriteTrackCSV. Used by
// the resample-only path and the plotting tool.
func ReadTrackCSV(r io.Reader) (Track, error) {
	cr := csv.NewReader(r)
	rows, err := cr.ReadAll()
	if err != nil {
		return Track{}, fmt.Errorf("read track: %w", err)
	}
	if len(rows) < 2 {
		return Track{}, fmt.Errorf("read track: %d rows, need a header and at least one frame", len(rows))
	}

	cols := len(rows[0])
	if cols == 0 || cols%CoordsPerMarker != 0 {
		return Track{}, fmt.Errorf("read track: %d columns, want a multiple of %d", cols, CoordsPerMarker)
	}
	markers := cols / CoordsPerMarker

	frames := make([]LabelledFrame, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if len(row) != cols {
			return Track{}, fmt.Errorf("read track: row %d has %d columns, want %d", i, len(row), cols)
		}
		frame := make(LabelledFrame, markers)
		for m := 0; m < markers; m++ {
			x, err := strconv.ParseFloat(row[m*CoordsPerMarker+0], 64)
			if err != nil {
				return Track{}, fmt.Errorf("read track: row %d marker %d: %w", i, m+1, err)
			}
			y, err := strconv.ParseFloat(row[m*CoordsPerMarker+1], 64)
			if err != nil {
				return Track{}, fmt.Errorf("read track: row %d marker %d: %w", i, m+1, err)
			}
			z, err := strconv.ParseFloat(row[m*CoordsPerMarker+2], 64)
			if err != nil {
				return Track{}, fmt.Errorf("read track: row %d marker %d: %w", i, m+1, err)
			}
			frame[m] = Point3{X: x, Y: y, Z: z}
		}
		frames = append(frames, frame)
	}

	return NewTrack(frames, markers), nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
