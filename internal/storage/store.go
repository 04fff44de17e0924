package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/spirograph/internal/linkage"
)

var (
	ErrNotFound  = errors.New("storage: run not found")
	ErrAmbiguous = errors.New("storage: run reference matches more than one run")
)

const (
	metaExt  = ".json"
	traceExt = ".trace.csv"
)

// Store keeps run sidecars next to the videos in one output directory:
// <base>.json holds metadata and <base>.trace.csv the endpoint trace.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Video     string             `json:"video"`
	Preset    string             `json:"preset,omitempty"`
	Seed      int64              `json:"seed"`
	Width     int                `json:"width"`
	Height    int                `json:"height"`
	FPS       int                `json:"fps"`
	Origin    linkage.Point      `json:"origin"`
	Rounding  string             `json:"rounding"`
	MaxFrames int                `json:"max_frames"`
	Frames    int                `json:"frames"`
	Resets    int                `json:"resets"`
	Reason    string             `json:"reason"`
	Patterns  []linkage.Chain    `json:"patterns"`
	Metrics   map[string]float64 `json:"metrics"`
	Timestamp time.Time          `json:"timestamp"`
	Elapsed   time.Duration      `json:"elapsed_ns"`
}

// Base is the video path without its extension.
func (m *RunMetadata) Base() string {
	return strings.TrimSuffix(m.Video, filepath.Ext(m.Video))
}

type TracePoint struct {
	Frame   int
	Pattern int
	X, Y    int
	Drawn   bool
}

// Save writes both sidecars for meta.Video and returns the run id, assigning a
// new one when meta.ID is empty.
func (s *Store) Save(meta *RunMetadata, trace []TracePoint) (string, error) {
	if meta.Video == "" {
		return "", fmt.Errorf("storage: run has no video path")
	}
	if meta.ID == "" {
		meta.ID = uuid.NewString()
	}
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}

	if err := os.MkdirAll(s.baseDir, 0755); err != nil {
		return "", err
	}
	base := filepath.Join(s.baseDir, filepath.Base(meta.Base()))
	if err := writeJSON(base+metaExt, meta); err != nil {
		return "", err
	}
	if err := writeTrace(base+traceExt, trace); err != nil {
		return "", err
	}
	return meta.ID, nil
}

func writeJSON(path string, meta *RunMetadata) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return err
	}
	return f.Close()
}

func writeTrace(path string, trace []TracePoint) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"frame", "pattern", "x", "y", "drawn"}); err != nil {
		return err
	}
	for _, p := range trace {
		row := []string{
			strconv.Itoa(p.Frame),
			strconv.Itoa(p.Pattern),
			strconv.Itoa(p.X),
			strconv.Itoa(p.Y),
			strconv.FormatBool(p.Drawn),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

// List returns every run in the directory, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != metaExt {
			continue
		}

		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name()))
		if err != nil {
			continue
		}

		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil || meta.ID == "" {
			continue
		}

		runs = append(runs, meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

// Load finds a run by id, unique id prefix or video base name.
func (s *Store) Load(ref string) (*RunMetadata, error) {
	runs, err := s.List()
	if err != nil {
		return nil, err
	}

	var found []RunMetadata
	for _, r := range runs {
		if r.ID == ref || filepath.Base(r.Base()) == ref {
			return &r, nil
		}
		if strings.HasPrefix(r.ID, ref) {
			found = append(found, r)
		}
	}

	switch len(found) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
	case 1:
		return &found[0], nil
	}
	return nil, fmt.Errorf("%w: %s", ErrAmbiguous, ref)
}

func (s *Store) LoadTrace(meta *RunMetadata) ([]TracePoint, error) {
	path := filepath.Join(s.baseDir, filepath.Base(meta.Base())+traceExt)
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(records) < 2 {
		return []TracePoint{}, nil
	}

	trace := make([]TracePoint, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) < 4 {
			continue
		}

		var p TracePoint
		var errs [4]error
		p.Frame, errs[0] = strconv.Atoi(record[0])
		p.Pattern, errs[1] = strconv.Atoi(record[1])
		p.X, errs[2] = strconv.Atoi(record[2])
		p.Y, errs[3] = strconv.Atoi(record[3])
		if err := errors.Join(errs[:]...); err != nil {
			return nil, fmt.Errorf("trace row %d: %w", len(trace)+1, err)
		}
		if len(record) > 4 {
			p.Drawn, _ = strconv.ParseBool(record[4])
		}
		trace = append(trace, p)
	}

	return trace, nil
}
