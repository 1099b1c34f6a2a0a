// Package store persists track snapshots to a SQLite database so a track's
// history survives past the live session, for offline review or replay.
// It mirrors the ambient persistence idiom used elsewhere in this codebase:
// database/sql over modernc.org/sqlite, schema managed by golang-migrate.
package store

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/cuas-radar/tracker/internal/tracker/logging"
	"github.com/cuas-radar/tracker/internal/tracker/track"
	"github.com/cuas-radar/tracker/internal/tracker/wire"

	_ "modernc.org/sqlite"
)

const logModule = "store"

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store wraps a SQLite connection holding the track-snapshot history.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the SQLite database at path and applies
// all pending migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: failed to open %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: failed to ping %s: %w", path, err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("store: failed to load embedded migrations: %w", err)
	}

	driver, err := sqlite.WithInstance(s.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("store: failed to create sqlite migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("store: failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("store: migration failed: %w", err)
	}
	return nil
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// InsertSnapshot persists one track's current merged state at timestampUs.
func (s *Store) InsertSnapshot(t *track.Track, timestampUs uint64) error {
	u := wire.FromTrack(t, timestampUs)

	_, err := s.db.Exec(`
		INSERT INTO track_snapshots
			(track_id, timestamp_us, status, classification, x, y, z, vx, vy, vz,
			 range_m, range_rate, quality, hit_count, miss_count, age)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.TrackID, u.TimestampUs, u.Status, u.Classification,
		u.X, u.Y, u.Z, u.Vx, u.Vy, u.Vz,
		u.Range, u.RangeRate, u.TrackQuality, u.HitCount, u.MissCount, u.Age,
	)
	if err != nil {
		return fmt.Errorf("store: failed to insert snapshot for track %d: %w", u.TrackID, err)
	}

	_, err = s.db.Exec(`
		INSERT INTO track_lifecycle (track_id, initiation_time_us, last_update_time_us, last_status, deleted)
		VALUES (?, ?, ?, ?, 0)
		ON CONFLICT(track_id) DO UPDATE SET
			last_update_time_us = excluded.last_update_time_us,
			last_status = excluded.last_status,
			deleted = excluded.deleted`,
		u.TrackID, t.InitiationTimeUs, timestampUs, u.Status,
	)
	if err != nil {
		return fmt.Errorf("store: failed to upsert lifecycle for track %d: %w", u.TrackID, err)
	}
	return nil
}

// InsertSnapshots persists every live track's state in a single transaction,
// the shape a processing cycle actually produces them in.
func (s *Store) InsertSnapshots(tracks []*track.Track, timestampUs uint64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("store: failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, t := range tracks {
		u := wire.FromTrack(t, timestampUs)
		if _, err := tx.Exec(`
			INSERT INTO track_snapshots
				(track_id, timestamp_us, status, classification, x, y, z, vx, vy, vz,
				 range_m, range_rate, quality, hit_count, miss_count, age)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			u.TrackID, u.TimestampUs, u.Status, u.Classification,
			u.X, u.Y, u.Z, u.Vx, u.Vy, u.Vz,
			u.Range, u.RangeRate, u.TrackQuality, u.HitCount, u.MissCount, u.Age,
		); err != nil {
			return fmt.Errorf("store: failed to insert snapshot for track %d: %w", u.TrackID, err)
		}
		if _, err := tx.Exec(`
			INSERT INTO track_lifecycle (track_id, initiation_time_us, last_update_time_us, last_status, deleted)
			VALUES (?, ?, ?, ?, 0)
			ON CONFLICT(track_id) DO UPDATE SET
				last_update_time_us = excluded.last_update_time_us,
				last_status = excluded.last_status,
				deleted = excluded.deleted`,
			u.TrackID, t.InitiationTimeUs, timestampUs, u.Status,
		); err != nil {
			return fmt.Errorf("store: failed to upsert lifecycle for track %d: %w", u.TrackID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: failed to commit snapshot batch: %w", err)
	}
	return nil
}

// MarkDeleted records that trackID left the live set at timestampUs.
func (s *Store) MarkDeleted(trackID uint32, timestampUs uint64) error {
	_, err := s.db.Exec(`
		UPDATE track_lifecycle SET deleted = 1, last_update_time_us = ?
		WHERE track_id = ?`, timestampUs, trackID)
	if err != nil {
		logging.Warn(logModule, "failed to mark track %d deleted: %v", trackID, err)
		return fmt.Errorf("store: failed to mark track %d deleted: %w", trackID, err)
	}
	return nil
}

// Transition is one row of a track's lifecycle-status history, the
// canonical record written by the log extractor from a replayed binary log.
type Transition struct {
	TrackID        uint32
	TimestampUs    uint64
	FromStatus     uint32
	ToStatus       uint32
	Classification uint32
}

// InsertTransition records one lifecycle-status change for trackID.
func (s *Store) InsertTransition(tr Transition) error {
	_, err := s.db.Exec(`
		INSERT INTO track_transitions (track_id, timestamp_us, from_status, to_status, classification)
		VALUES (?, ?, ?, ?, ?)`,
		tr.TrackID, tr.TimestampUs, tr.FromStatus, tr.ToStatus, tr.Classification,
	)
	if err != nil {
		return fmt.Errorf("store: failed to insert transition for track %d: %w", tr.TrackID, err)
	}
	return nil
}

// Transitions returns every recorded lifecycle transition for trackID,
// ordered by time.
func (s *Store) Transitions(trackID uint32) ([]Transition, error) {
	rows, err := s.db.Query(`
		SELECT track_id, timestamp_us, from_status, to_status, classification
		FROM track_transitions
		WHERE track_id = ?
		ORDER BY timestamp_us ASC`, trackID)
	if err != nil {
		return nil, fmt.Errorf("store: failed to query transitions for track %d: %w", trackID, err)
	}
	defer rows.Close()

	var out []Transition
	for rows.Next() {
		var tr Transition
		if err := rows.Scan(&tr.TrackID, &tr.TimestampUs, &tr.FromStatus, &tr.ToStatus, &tr.Classification); err != nil {
			return nil, fmt.Errorf("store: failed to scan transition row: %w", err)
		}
		out = append(out, tr)
	}
	return out, rows.Err()
}

// Snapshot is one row of a track's recorded history.
type Snapshot struct {
	TrackID        uint32
	TimestampUs    uint64
	Status         uint32
	Classification uint32
	X, Y, Z        float64
	Vx, Vy, Vz     float64
	Range          float64
	RangeRate      float64
	Quality        float64
	HitCount       uint32
	MissCount      uint32
	Age            uint32
}

// History returns every recorded snapshot for trackID, ordered by time.
func (s *Store) History(trackID uint32) ([]Snapshot, error) {
	rows, err := s.db.Query(`
		SELECT track_id, timestamp_us, status, classification, x, y, z, vx, vy, vz,
		       range_m, range_rate, quality, hit_count, miss_count, age
		FROM track_snapshots
		WHERE track_id = ?
		ORDER BY timestamp_us ASC`, trackID)
	if err != nil {
		return nil, fmt.Errorf("store: failed to query history for track %d: %w", trackID, err)
	}
	defer rows.Close()
	return scanSnapshots(rows)
}

// InRange returns every snapshot recorded within [startUs, endUs], across all
// tracks, ordered by time.
func (s *Store) InRange(startUs, endUs uint64) ([]Snapshot, error) {
	rows, err := s.db.Query(`
		SELECT track_id, timestamp_us, status, classification, x, y, z, vx, vy, vz,
		       range_m, range_rate, quality, hit_count, miss_count, age
		FROM track_snapshots
		WHERE timestamp_us BETWEEN ? AND ?
		ORDER BY timestamp_us ASC`, startUs, endUs)
	if err != nil {
		return nil, fmt.Errorf("store: failed to query range [%d,%d]: %w", startUs, endUs, err)
	}
	defer rows.Close()
	return scanSnapshots(rows)
}

// ActiveTrackIDs returns the track IDs that have not been marked deleted.
func (s *Store) ActiveTrackIDs() ([]uint32, error) {
	rows, err := s.db.Query(`SELECT track_id FROM track_lifecycle WHERE deleted = 0 ORDER BY track_id ASC`)
	if err != nil {
		return nil, fmt.Errorf("store: failed to query active tracks: %w", err)
	}
	defer rows.Close()

	var ids []uint32
	for rows.Next() {
		var id uint32
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("store: failed to scan active track id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanSnapshots(rows *sql.Rows) ([]Snapshot, error) {
	var out []Snapshot
	for rows.Next() {
		var sn Snapshot
		if err := rows.Scan(
			&sn.TrackID, &sn.TimestampUs, &sn.Status, &sn.Classification,
			&sn.X, &sn.Y, &sn.Z, &sn.Vx, &sn.Vy, &sn.Vz,
			&sn.Range, &sn.RangeRate, &sn.Quality, &sn.HitCount, &sn.MissCount, &sn.Age,
		); err != nil {
			return nil, fmt.Errorf("store: failed to scan snapshot row: %w", err)
		}
		out = append(out, sn)
	}
	return out, rows.Err()
}
