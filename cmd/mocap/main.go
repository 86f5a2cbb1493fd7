// Command mocap runs the capture pipeline over one raw tracker export:
// clean the CSV, resolve marker identities, resample to the target rate,
// write the stage CSVs and record the run in the run database.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/kinetic-data/motion.report/internal/config"
	"github.com/kinetic-data/motion.report/internal/fsutil"
	"github.com/kinetic-data/motion.report/internal/mocap"
	"github.com/kinetic-data/motion.report/internal/monitoring"
)

var (
	input        = flag.String("input", "", "Raw capture CSV to process (default: latest CSV in the raw directory)")
	rawDir       = flag.String("raw-dir", "", "Directory holding raw capture CSVs")
	outDir       = flag.String("out-dir", "", "Directory for clean/labelled/interpolated outputs")
	configPath   = flag.String("config", "", "JSON config file (partial configs allowed)")
	dbPath       = flag.String("db", "", "Run database path (empty string with no config falls back to the default)")
	matching     = flag.String("matching", "", "Matching policy: first-candidate or optimal")
	resampleOnly = flag.Bool("resample-only", false, "Treat -input as an already labelled CSV and only resample it")
	noStore      = flag.Bool("no-store", false, "Skip recording the run in the database")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		log.Fatalf("mocap: %v", err)
	}
}

func run() error {
	cfg := config.Empty()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	// Flags override the config file.
	raw := cfg.GetRawDir()
	if *rawDir != "" {
		raw = *rawDir
	}
	out := cfg.GetOutDir()
	if *outDir != "" {
		out = *outDir
	}
	policy := cfg.GetMatching()
	if *matching != "" {
		policy = *matching
	}
	db := cfg.GetDBPath()
	if *dbPath != "" {
		db = *dbPath
	}

	source := *input
	if source == "" {
		latest, err := fsutil.LatestCSV(raw)
		if err != nil {
			return err
		}
		source = latest
	}
	monitoring.Logf("processing %s", source)

	trackerCfg := mocap.TrackerConfig{
		MarkerCount:         cfg.GetMarkerCount(),
		MaxPositionChangeMM: cfg.GetMaxPositionChangeMM(),
		Strategy:            mocap.StrategyByName(policy),
	}
	resampleCfg := mocap.ResampleConfig{
		OriginRateHz: cfg.GetOriginRateHz(),
		TargetRateHz: cfg.GetTargetRateHz(),
	}

	if *resampleOnly {
		return resampleLabelled(source, out, resampleCfg)
	}

	var store *mocap.RunStore
	if !*noStore {
		s, err := mocap.NewRunStore(db)
		if err != nil {
			return err
		}
		defer s.Close()
		store = s
	}

	return processCapture(source, out, cfg, trackerCfg, resampleCfg, store)
}

func processCapture(source, out string, cfg *config.PipelineConfig, trackerCfg mocap.TrackerConfig, resampleCfg mocap.ResampleConfig, store *mocap.RunStore) error {
	f, err := os.Open(source)
	if err != nil {
		return fmt.Errorf("open capture: %w", err)
	}
	defer f.Close()

	frames, err := mocap.CleanCapture(f, mocap.CleanConfig{MetadataColumns: cfg.GetMetadataColumns()})
	if err != nil {
		return err
	}
	monitoring.Logf("cleaned %d frames, %d raw points per frame", len(frames), pointsPerFrame(frames))

	var runID string
	if store != nil {
		runID, err = store.CreateRun(mocap.RunRecord{
			SourceFile:          source,
			MarkerCount:         trackerCfg.MarkerCount,
			MaxPositionChangeMM: trackerCfg.MaxPositionChangeMM,
			OriginRateHz:        resampleCfg.OriginRateHz,
			TargetRateHz:        resampleCfg.TargetRateHz,
			Matching:            trackerCfg.Strategy.Name(),
			RawFrames:           len(frames),
		})
		if err != nil {
			return err
		}
	}

	pipeline, err := mocap.NewPipeline(trackerCfg, resampleCfg)
	if err != nil {
		return err
	}

	result, err := pipeline.Run(frames)
	if err != nil {
		if store != nil {
			if ferr := store.FailRun(runID, err); ferr != nil {
				monitoring.Logf("record failure: %v", ferr)
			}
		}
		return err
	}

	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	if err := writeStage(out, "clean", base+"_clean.csv", func(w *os.File) error {
		return mocap.WriteRawFramesCSV(w, frames)
	}); err != nil {
		return err
	}
	if err := writeStage(out, "labelled", base+"_labelled.csv", func(w *os.File) error {
		return mocap.WriteTrackCSV(w, result.Labelled)
	}); err != nil {
		return err
	}
	if err := writeStage(out, "interpolated", base+"_interpolated.csv", func(w *os.File) error {
		return mocap.WriteTrackCSV(w, result.Resampled)
	}); err != nil {
		return err
	}

	if store != nil {
		if err := store.InsertTrack(runID, "labelled", result.Labelled); err != nil {
			return err
		}
		if err := store.InsertTrack(runID, "resampled", result.Resampled); err != nil {
			return err
		}
		if err := store.CompleteRun(runID, result.Labelled.Len(), result.Resampled.Len()); err != nil {
			return err
		}
		monitoring.Logf("recorded run %s", runID)
	}
	return nil
}

func resampleLabelled(source, out string, resampleCfg mocap.ResampleConfig) error {
	f, err := os.Open(source)
	if err != nil {
		return fmt.Errorf("open labelled track: %w", err)
	}
	defer f.Close()

	track, err := mocap.ReadTrackCSV(f)
	if err != nil {
		return err
	}

	resampler, err := mocap.NewResampler(resampleCfg)
	if err != nil {
		return err
	}
	result, err := resampler.Resample(track)
	if err != nil {
		return err
	}
	for _, risk := range result.Risks {
		monitoring.Logf("resample advisory: %s", risk)
	}

	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	base = strings.TrimSuffix(base, "_labelled")
	return writeStage(out, "interpolated", base+"_interpolated.csv", func(w *os.File) error {
		return mocap.WriteTrackCSV(w, result.Track)
	})
}

func writeStage(outDir, stage, name string, write func(*os.File) error) error {
	dir := filepath.Join(outDir, stage)
	if err := fsutil.EnsureDir(dir); err != nil {
		return err
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	monitoring.Logf("wrote %s", path)
	return nil
}

func pointsPerFrame(frames []mocap.RawFrame) int {
	if len(frames) == 0 {
		return 0
	}
	return len(frames[0])
}
