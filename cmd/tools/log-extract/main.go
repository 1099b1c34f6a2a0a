// Command log-extract reads a completed binary replay log and writes one
// row per track lifecycle transition (initiated/confirmed/coasting/deleted,
// with timestamp and terminal state) into a SQLite historical track store.
// It is write-only: nothing it produces is ever read back into a running
// tracker's live track set.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/cuas-radar/tracker/internal/tracker/binlog"
	"github.com/cuas-radar/tracker/internal/tracker/store"
	"github.com/cuas-radar/tracker/internal/tracker/wire"
)

func main() {
	var logPath string
	var dbPath string
	flag.StringVar(&logPath, "log", "", "path to a binary replay log produced by the tracker")
	flag.StringVar(&dbPath, "db", "tracks.db", "path to the SQLite historical track store")
	flag.Parse()

	if logPath == "" {
		log.Fatal("log-extract: -log is required")
	}

	f, err := os.Open(logPath)
	if err != nil {
		log.Fatalf("log-extract: failed to open %s: %v", logPath, err)
	}
	defer f.Close()

	s, err := store.Open(dbPath)
	if err != nil {
		log.Fatalf("log-extract: failed to open store %s: %v", dbPath, err)
	}
	defer s.Close()

	n, err := extract(f, s)
	if err != nil {
		log.Fatalf("log-extract: %v", err)
	}
	fmt.Printf("log-extract: wrote %d lifecycle transitions from %s to %s\n", n, logPath, dbPath)
}

// extract streams every RecordSent track table in r, and for each track
// whose status differs from its last-seen status, writes a transition row.
func extract(r io.Reader, s *store.Store) (int, error) {
	reader := binlog.NewReader(r)
	lastStatus := make(map[uint32]uint32)
	transitions := 0

	for {
		h, err := reader.ReadHeader()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return transitions, fmt.Errorf("failed to read record header: %w", err)
		}

		payload, err := reader.ReadPayload(h)
		if err != nil {
			return transitions, fmt.Errorf("failed to read record payload: %w", err)
		}

		if binlog.RecordType(h.RecordType) != binlog.RecordSent {
			continue
		}

		_, updates, err := wire.DecodeTrackTable(payload)
		if err != nil {
			log.Printf("log-extract: skipping malformed track table at t=%d: %v", h.TimestampUs, err)
			continue
		}

		for _, u := range updates {
			prev, seen := lastStatus[u.TrackID]
			if seen && prev == u.Status {
				continue
			}
			from := prev
			if !seen {
				from = u.Status
			}
			if err := s.InsertTransition(store.Transition{
				TrackID: u.TrackID, TimestampUs: u.TimestampUs,
				FromStatus: from, ToStatus: u.Status, Classification: u.Classification,
			}); err != nil {
				return transitions, fmt.Errorf("failed to write transition for track %d: %w", u.TrackID, err)
			}
			lastStatus[u.TrackID] = u.Status
			transitions++
		}
	}
	return transitions, nil
}
