// Package telemetry records snowflake spawn and removal events and exports
// them as CSV for offline inspection of the emission cadence.
package telemetry

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/stat"

	"github.com/decker502/snowfall/pkg/components"
	"github.com/decker502/snowfall/pkg/ecs"
)

// Journal event kinds.
const (
	EventSpawn  = "spawn"
	EventRemove = "remove"
)

// SpawnRecord is one row of the journal.
type SpawnRecord struct {
	Event         string  `csv:"event"`
	Entity        uint64  `csv:"entity"`
	AtMs          int64   `csv:"at_ms"`
	Variant       string  `csv:"variant"`
	StartX        float64 `csv:"start_x"`
	Scale         float64 `csv:"scale"`
	Opacity       float64 `csv:"opacity"`
	Rotation      float64 `csv:"rotation"`
	Drift         float64 `csv:"drift"`
	RotationExtra float64 `csv:"rotation_extra"`
	LifetimeMs    int64   `csv:"lifetime_ms"`
	AgeMs         int64   `csv:"age_ms"` // 仅 remove 行：实际存在时间
	Fade          bool    `csv:"fade"`
}

// Summary aggregates the spawn records.
type Summary struct {
	Spawned        int
	Removed        int
	Live           int
	MeanLifetime   float64 // seconds
	StdDevLifetime float64
	MeanScale      float64
	MeanOpacity    float64
	MeanAge        float64 // seconds, over removed snowflakes
}

// SpawnJournal implements systems.SnowflakeObserver.
//
// Records are kept in memory; when opened on a file, Flush streams the rows
// appended since the previous flush, writing the header once.
type SpawnJournal struct {
	records []SpawnRecord
	live    map[ecs.EntityID]struct{}

	out           io.WriteCloser
	flushed       int
	headerWritten bool
}

// NewSpawnJournal creates an in-memory journal.
func NewSpawnJournal() *SpawnJournal {
	return &SpawnJournal{live: make(map[ecs.EntityID]struct{})}
}

// OpenSpawnJournal creates a journal streaming to a CSV file at path.
// Returns nil if path is empty (journal disabled).
func OpenSpawnJournal(path string) (*SpawnJournal, error) {
	if path == "" {
		return nil, nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating journal directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating journal: %w", err)
	}
	j := NewSpawnJournal()
	j.out = f
	return j, nil
}

// SnowflakeSpawned records a spawn event.
func (j *SpawnJournal) SnowflakeSpawned(id ecs.EntityID, flake *components.SnowflakeComponent, at time.Duration) {
	if j == nil {
		return
	}
	j.live[id] = struct{}{}
	j.records = append(j.records, newRecord(EventSpawn, id, flake, at))
}

// SnowflakeRemoved records a removal event.
func (j *SpawnJournal) SnowflakeRemoved(id ecs.EntityID, flake *components.SnowflakeComponent, at time.Duration) {
	if j == nil {
		return
	}
	delete(j.live, id)
	j.records = append(j.records, newRecord(EventRemove, id, flake, at))
}

func newRecord(event string, id ecs.EntityID, flake *components.SnowflakeComponent, at time.Duration) SpawnRecord {
	r := SpawnRecord{
		Event:  event,
		Entity: uint64(id),
		AtMs:   at.Milliseconds(),
	}
	if flake != nil {
		r.Variant = flake.Variant.String()
		r.StartX = flake.StartX
		r.Scale = flake.Scale
		r.Opacity = flake.Opacity
		r.Rotation = flake.StartRotation
		r.Drift = flake.Drift
		r.RotationExtra = flake.RotationExtra
		r.LifetimeMs = flake.Lifetime.Milliseconds()
		r.Fade = flake.Fading
		if event == EventRemove {
			r.AgeMs = flake.Age.Milliseconds()
		}
	}
	return r
}

// Records returns a copy of all recorded rows.
func (j *SpawnJournal) Records() []SpawnRecord {
	if j == nil {
		return nil
	}
	out := make([]SpawnRecord, len(j.records))
	copy(out, j.records)
	return out
}

// WriteCSV writes every record, with a header row, to w.
func (j *SpawnJournal) WriteCSV(w io.Writer) error {
	if j == nil {
		return nil
	}
	records := j.records
	if records == nil {
		records = []SpawnRecord{}
	}
	if err := gocsv.Marshal(records, w); err != nil {
		return fmt.Errorf("writing journal: %w", err)
	}
	return nil
}

// Flush writes the rows recorded since the last flush to the journal file.
func (j *SpawnJournal) Flush() error {
	if j == nil || j.out == nil || j.flushed == len(j.records) {
		return nil
	}
	pending := j.records[j.flushed:]

	if !j.headerWritten {
		if err := gocsv.Marshal(pending, j.out); err != nil {
			return fmt.Errorf("writing journal: %w", err)
		}
		j.headerWritten = true
	} else {
		if err := gocsv.MarshalWithoutHeaders(pending, j.out); err != nil {
			return fmt.Errorf("writing journal: %w", err)
		}
	}
	j.flushed = len(j.records)
	return nil
}

// Close flushes and closes the journal file.
func (j *SpawnJournal) Close() error {
	if j == nil || j.out == nil {
		return nil
	}
	err := j.Flush()
	if cerr := j.out.Close(); err == nil {
		err = cerr
	}
	j.out = nil
	return err
}

// Summary computes aggregate statistics over the spawn events.
func (j *SpawnJournal) Summary() Summary {
	if j == nil {
		return Summary{}
	}
	var s Summary
	var lifetimes, scales, opacities, ages []float64
	for _, r := range j.records {
		switch r.Event {
		case EventSpawn:
			s.Spawned++
			lifetimes = append(lifetimes, float64(r.LifetimeMs)/1000)
			scales = append(scales, r.Scale)
			opacities = append(opacities, r.Opacity)
		case EventRemove:
			s.Removed++
			ages = append(ages, float64(r.AgeMs)/1000)
		}
	}
	s.Live = len(j.live)

	if len(lifetimes) > 0 {
		s.MeanScale = stat.Mean(scales, nil)
		s.MeanOpacity = stat.Mean(opacities, nil)
	}
	if len(ages) > 0 {
		s.MeanAge = stat.Mean(ages, nil)
	}
	if len(lifetimes) > 1 {
		s.MeanLifetime, s.StdDevLifetime = stat.MeanStdDev(lifetimes, nil)
	} else if len(lifetimes) == 1 {
		s.MeanLifetime = lifetimes[0]
	}
	return s
}

func (s Summary) String() string {
	return fmt.Sprintf("spawned=%d removed=%d live=%d lifetime=%.2fs±%.2f age=%.2fs scale=%.2f opacity=%.2f",
		s.Spawned, s.Removed, s.Live, s.MeanLifetime, s.StdDevLifetime, s.MeanAge, s.MeanScale, s.MeanOpacity)
}
