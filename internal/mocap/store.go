package mocap

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Run status values recorded in the runs table.
const (
	RunStatusStarted   = "started"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// RunStore persists pipeline runs and their tracks to sqlite. Failed runs
// are recorded too, with the failure reason, so a capture batch can be
// audited afterwards; only successful runs carry track points.
type RunStore struct {
	db *sql.DB
}

// NewRunStore opens (creating if needed) the run database at path.
func NewRunStore(path string) (*RunStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open run store: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			run_id                  TEXT PRIMARY KEY,
			source_file             TEXT,
			marker_count            INTEGER,
			max_position_change_mm  DOUBLE,
			origin_rate_hz          DOUBLE,
			target_rate_hz          DOUBLE,
			matching                TEXT,
			raw_frames              INTEGER,
			labelled_frames         INTEGER,
			resampled_frames        INTEGER,
			status                  TEXT,
			error                   TEXT,
			created_at              TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE IF NOT EXISTS track_points (
			run_id      TEXT,
			stage       TEXT,
			frame_idx   INTEGER,
			marker_idx  INTEGER,
			x           DOUBLE,
			y           DOUBLE,
			z           DOUBLE,
			FOREIGN KEY(run_id) REFERENCES runs(run_id)
		);
		CREATE INDEX IF NOT EXISTS idx_track_points_run
			ON track_points(run_id, stage, frame_idx);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create run store schema: %w", err)
	}

	return &RunStore{db: db}, nil
}

// Close closes the underlying database.
func (s *RunStore) Close() error { return s.db.Close() }

// RunRecord describes one pipeline run.
type RunRecord struct {
	RunID               string
	SourceFile          string
	MarkerCount         int
	MaxPositionChangeMM float64
	OriginRateHz        float64
	TargetRateHz        float64
	Matching            string
	RawFrames           int
	LabelledFrames      int
	ResampledFrames     int
	Status              string
	Error               string
}

// CreateRun inserts a new run in the started state and returns its ID.
func (s *RunStore) CreateRun(rec RunRecord) (string, error) {
	runID := uuid.New().String()
	_, err := s.db.Exec(`
		INSERT INTO runs (
			run_id, source_file, marker_count, max_position_change_mm,
			origin_rate_hz, target_rate_hz, matching, raw_frames,
			labelled_frames, resampled_frames, status, error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0, 0, ?, '')`,
		runID, rec.SourceFile, rec.MarkerCount, rec.MaxPositionChangeMM,
		rec.OriginRateHz, rec.TargetRateHz, rec.Matching, rec.RawFrames,
		RunStatusStarted,
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return runID, nil
}

// CompleteRun marks a run as completed with its stage frame counts.
func (s *RunStore) CompleteRun(runID string, labelledFrames, resampledFrames int) error {
	_, err := s.db.Exec(`
		UPDATE runs SET status = ?, labelled_frames = ?, resampled_frames = ?
		WHERE run_id = ?`,
		RunStatusCompleted, labelledFrames, resampledFrames, runID,
	)
	if err != nil {
		return fmt.Errorf("complete run %s: %w", runID, err)
	}
	return nil
}

// FailRun marks a run as failed with the failure reason.
func (s *RunStore) FailRun(runID string, cause error) error {
	_, err := s.db.Exec(`
		UPDATE runs SET status = ?, error = ? WHERE run_id = ?`,
		RunStatusFailed, cause.Error(), runID,
	)
	if err != nil {
		return fmt.Errorf("fail run %s: %w", runID, err)
	}
	return nil
}

// GetRun returns the recorded run row.
func (s *RunStore) GetRun(runID string) (*RunRecord, error) {
	rec := &RunRecord{}
	err := s.db.QueryRow(`
		SELECT run_id, source_file, marker_count, max_position_change_mm,
			origin_rate_hz, target_rate_hz, matching, raw_frames,
			labelled_frames, resampled_frames, status, error
		FROM runs WHERE run_id = ?`, runID,
	).Scan(
		&rec.RunID, &rec.SourceFile, &rec.MarkerCount, &rec.MaxPositionChangeMM,
		&rec.OriginRateHz, &rec.TargetRateHz, &rec.Matching, &rec.RawFrames,
		&rec.LabelledFrames, &rec.ResampledFrames, &rec.Status, &rec.Error,
	)
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", runID, err)
	}
	return rec, nil
}

// InsertTrack stores every point of a track under the given stage
// ("labelled" or "resampled") in one transaction.
func (s *RunStore) InsertTrack(runID, stage string, track Track) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("insert track: begin: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO track_points (run_id, stage, frame_idx, marker_idx, x, y, z)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("insert track: prepare: %w", err)
	}
	defer stmt.Close()

	for i := 0; i < track.Len(); i++ {
		for m, p := range track.Frame(i) {
			if _, err := stmt.Exec(runID, stage, i, m+1, p.X, p.Y, p.Z); err != nil {
				tx.Rollback()
				return fmt.Errorf("insert track point frame %d marker %d: %w", i, m+1, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert track: commit: %w", err)
	}
	return nil
}

// GetTrack reloads a stored track stage.
func (s *RunStore) GetTrack(runID, stage string) (Track, error) {
	run, err := s.GetRun(runID)
	if err != nil {
		return Track{}, err
	}

	rows, err := s.db.Query(`
		SELECT frame_idx, marker_idx, x, y, z FROM track_points
		WHERE run_id = ? AND stage = ?
		ORDER BY frame_idx, marker_idx`, runID, stage)
	if err != nil {
		return Track{}, fmt.Errorf("get track %s/%s: %w", runID, stage, err)
	}
	defer rows.Close()

	var frames []LabelledFrame
	for rows.Next() {
		var frameIdx, markerIdx int
		var x, y, z float64
		if err := rows.Scan(&frameIdx, &markerIdx, &x, &y, &z); err != nil {
			return Track{}, fmt.Errorf("get track %s/%s: scan: %w", runID, stage, err)
		}
		for frameIdx >= len(frames) {
			frames = append(frames, make(LabelledFrame, run.MarkerCount))
		}
		if markerIdx < 1 || markerIdx > run.MarkerCount {
			return Track{}, fmt.Errorf("get track %s/%s: marker index %d out of range", runID, stage, markerIdx)
		}
		frames[frameIdx][markerIdx-1] = Point3{X: x, Y: y, Z: z}
	}
	if err := rows.Err(); err != nil {
		return Track{}, fmt.Errorf("get track %s/%s: %w", runID, stage, err)
	}

	return NewTrack(frames, run.MarkerCount), nil
}
