package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/san-kum/springsim/internal/sim"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	metadataFile = "metadata.json"
	framesFile   = "frames.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID          string             `json:"id"`
	Scene       string             `json:"scene"`
	Timestamp   time.Time          `json:"timestamp"`
	Seed        int64              `json:"seed"`
	Dt          float64            `json:"dt"`
	Duration    float64            `json:"duration"`
	RecordEvery int                `json:"record_every"`
	Integrator  string             `json:"integrator"`
	Bodies      []string           `json:"bodies"`
	Springs     int                `json:"springs"`
	Steps       int                `json:"steps"`
	EnergyDrift float64            `json:"energy_drift"`
	Metrics     map[string]float64 `json:"metrics"`
}

// BodyIndex returns the position of a named body in each frame.
func (m *RunMetadata) BodyIndex(name string) (int, bool) {
	for i, b := range m.Bodies {
		if b == name {
			return i, true
		}
	}
	return 0, false
}

// SampleDt is the time between recorded frames.
func (m *RunMetadata) SampleDt() float64 {
	if m.RecordEvery < 1 {
		return m.Dt
	}
	return m.Dt * float64(m.RecordEvery)
}

// Save writes metadata.json and frames.csv under a new run directory.
// bodies names each body in world order.
func (s *Store) Save(scene string, cfg sim.Config, integrator string, bodies []string, result *sim.Result) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", scene, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	springs := 0
	if len(result.Frames) > 0 {
		springs = len(result.Frames[0].Stretch)
	}

	meta := RunMetadata{
		ID:          runID,
		Scene:       scene,
		Timestamp:   now,
		Seed:        cfg.Seed,
		Dt:          cfg.Dt,
		Duration:    cfg.Duration,
		RecordEvery: max(cfg.RecordEvery, 1),
		Integrator:  integrator,
		Bodies:      bodies,
		Springs:     springs,
		Steps:       result.StepsTaken,
		EnergyDrift: result.EnergyDrift,
		Metrics:     result.Metrics,
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, framesFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := WriteFramesCSV(csvFile, bodies, result.Frames); err != nil {
		return "", err
	}
	return runID, nil
}

// WriteFramesCSV writes one row per frame: time, then x and y of every
// body, then the stretch ratio of every spring.
func WriteFramesCSV(out io.Writer, bodies []string, frames []sim.Frame) error {
	w := csv.NewWriter(out)

	header := []string{"time"}
	for _, name := range bodies {
		header = append(header, name+".x", name+".y")
	}
	if len(frames) > 0 {
		for i := range frames[0].Stretch {
			header = append(header, fmt.Sprintf("stretch.%d", i))
		}
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, f := range frames {
		row := []string{formatFloat(f.Time)}
		for i := range bodies {
			var p r3.Vec
			if i < len(f.Positions) {
				p = f.Positions[i]
			}
			row = append(row, formatFloat(p.X), formatFloat(p.Y))
		}
		for _, s := range f.Stretch {
			row = append(row, formatFloat(s))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }

// List returns every readable run, newest first.
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
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadFrames reads frames.csv back. Body columns are recognised by their
// ".x"/".y" suffix; everything after them is a stretch ratio.
func (s *Store) LoadFrames(runID string) ([]sim.Frame, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, framesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	if len(records) < 2 {
		return []sim.Frame{}, nil
	}

	nb := 0
	for _, col := range records[0][1:] {
		if strings.HasSuffix(col, ".x") {
			nb++
		}
	}

	frames := make([]sim.Frame, 0, len(records)-1)
	for _, record := range records[1:] {
		vals := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("run %s: %w", runID, err)
			}
			vals[j] = v
		}
		if len(vals) < 1+2*nb {
			continue
		}

		f := sim.Frame{
			Time:      vals[0],
			Positions: make([]r3.Vec, nb),
			Stretch:   append([]float64(nil), vals[1+2*nb:]...),
		}
		for i := 0; i < nb; i++ {
			f.Positions[i] = r3.Vec{X: vals[1+2*i], Y: vals[2+2*i]}
		}
		frames = append(frames, f)
	}

	return frames, nil
}

// LoadResult rebuilds enough of a sim.Result to reuse Series and Times.
func (s *Store) LoadResult(runID string) (*RunMetadata, *sim.Result, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	frames, err := s.LoadFrames(runID)
	if err != nil {
		return nil, nil, err
	}
	return meta, &sim.Result{
		Frames:      frames,
		Metrics:     meta.Metrics,
		EnergyDrift: meta.EnergyDrift,
		StepsTaken:  meta.Steps,
	}, nil
}
