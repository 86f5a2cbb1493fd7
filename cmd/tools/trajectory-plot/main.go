// Command trajectory-plot renders a labelled or interpolated track CSV as
// 2D projection PNGs and an interactive 3D HTML chart, and optionally
// writes the normalized marker-pair direction vectors.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/kinetic-data/motion.report/internal/fsutil"
	"github.com/kinetic-data/motion.report/internal/mocap"
	"github.com/kinetic-data/motion.report/internal/monitoring"
)

var (
	input      = flag.String("input", "", "Labelled or interpolated track CSV")
	outDir     = flag.String("out-dir", "plots", "Output directory")
	renderPNG  = flag.Bool("png", true, "Render XY and XZ projection PNGs")
	renderHTML = flag.Bool("html", true, "Render an interactive 3D HTML chart")
	vectorPair = flag.String("vectors", "", "Write normalized pair vectors for two markers, e.g. 1,2")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		log.Fatalf("trajectory-plot: %v", err)
	}
}

func run() error {
	if *input == "" {
		return fmt.Errorf("-input is required")
	}

	f, err := os.Open(*input)
	if err != nil {
		return fmt.Errorf("open track: %w", err)
	}
	defer f.Close()

	track, err := mocap.ReadTrackCSV(f)
	if err != nil {
		return err
	}
	if err := fsutil.EnsureDir(*outDir); err != nil {
		return err
	}

	base := strings.TrimSuffix(filepath.Base(*input), filepath.Ext(*input))

	if *renderPNG {
		if err := saveProjection(track, filepath.Join(*outDir, base+"_xy.png"), "X (mm)", "Y (mm)", projectXY); err != nil {
			return err
		}
		if err := saveProjection(track, filepath.Join(*outDir, base+"_xz.png"), "X (mm)", "Z (mm)", projectXZ); err != nil {
			return err
		}
	}

	if *renderHTML {
		if err := saveLine3D(track, filepath.Join(*outDir, base+"_3d.html"), base); err != nil {
			return err
		}
	}

	if *vectorPair != "" {
		if err := saveVectors(track, *vectorPair, filepath.Join(*outDir, base+"_vectors.csv")); err != nil {
			return err
		}
	}
	return nil
}

func projectXY(p mocap.Point3) (float64, float64) { return p.X, p.Y }
func projectXZ(p mocap.Point3) (float64, float64) { return p.X, p.Z }

func saveProjection(track mocap.Track, path, xLabel, yLabel string, project func(mocap.Point3) (float64, float64)) error {
	p := plot.New()
	p.Title.Text = "Marker trajectories"
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel

	args := make([]interface{}, 0, 2*track.Markers())
	for m := 1; m <= track.Markers(); m++ {
		pts := make(plotter.XYs, track.Len())
		for i := 0; i < track.Len(); i++ {
			x, y := project(track.Position(i, m))
			pts[i].X = x
			pts[i].Y = y
		}
		args = append(args, fmt.Sprintf("marker %d", m), pts)
	}
	if err := plotutil.AddLines(p, args...); err != nil {
		return fmt.Errorf("add trajectory lines: %w", err)
	}

	if err := p.Save(10*vg.Inch, 8*vg.Inch, path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	monitoring.Logf("wrote %s", path)
	return nil
}

func saveLine3D(track mocap.Track, path, title string) error {
	line := charts.NewLine3D()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "Marker trajectories",
			Width:     "900px",
			Height:    "900px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Marker trajectories",
			Subtitle: fmt.Sprintf("%s: %d frames, %d markers", title, track.Len(), track.Markers()),
		}),
	)

	for m := 1; m <= track.Markers(); m++ {
		data := make([]opts.Chart3DData, track.Len())
		for i := 0; i < track.Len(); i++ {
			p := track.Position(i, m)
			data[i] = opts.Chart3DData{Value: []interface{}{p.X, p.Y, p.Z}}
		}
		line.AddSeries(fmt.Sprintf("marker %d", m), data)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if err := line.Render(f); err != nil {
		return fmt.Errorf("render %s: %w", path, err)
	}
	monitoring.Logf("wrote %s", path)
	return nil
}

func saveVectors(track mocap.Track, pair, path string) error {
	from, to, ok := strings.Cut(pair, ",")
	if !ok {
		return fmt.Errorf("invalid -vectors %q, want from,to", pair)
	}
	fromID, err := strconv.Atoi(strings.TrimSpace(from))
	if err != nil {
		return fmt.Errorf("invalid -vectors marker %q", from)
	}
	toID, err := strconv.Atoi(strings.TrimSpace(to))
	if err != nil {
		return fmt.Errorf("invalid -vectors marker %q", to)
	}

	vectors, err := mocap.PairVectors(track, fromID, toID)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write([]string{"vx", "vy", "vz"}); err != nil {
		return fmt.Errorf("write vector header: %w", err)
	}
	for _, v := range vectors {
		row := []string{
			strconv.FormatFloat(v.X, 'f', 6, 64),
			strconv.FormatFloat(v.Y, 'f', 6, 64),
			strconv.FormatFloat(v.Z, 'f', 6, 64),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write vector row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	monitoring.Logf("wrote %s", path)
	return nil
}
