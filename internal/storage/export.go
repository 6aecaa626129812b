package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/springsim/internal/sim"
)

type ExportData struct {
	Scene       string             `json:"scene"`
	Integrator  string             `json:"integrator"`
	Dt          float64            `json:"dt"`
	Duration    float64            `json:"duration"`
	Steps       int                `json:"steps"`
	Bodies      []string           `json:"bodies"`
	Times       []float64          `json:"times"`
	Positions   [][][2]float64     `json:"positions"`
	Stretch     [][]float64        `json:"stretch"`
	EnergyDrift float64            `json:"energy_drift"`
	Metrics     map[string]float64 `json:"metrics"`
}

func NewExportData(meta *RunMetadata, result *sim.Result) ExportData {
	data := ExportData{
		Scene:       meta.Scene,
		Integrator:  meta.Integrator,
		Dt:          meta.Dt,
		Duration:    meta.Duration,
		Steps:       result.StepsTaken,
		Bodies:      meta.Bodies,
		Times:       result.Times(),
		Positions:   make([][][2]float64, len(result.Frames)),
		Stretch:     make([][]float64, len(result.Frames)),
		EnergyDrift: result.EnergyDrift,
		Metrics:     result.Metrics,
	}

	for i, f := range result.Frames {
		data.Positions[i] = make([][2]float64, len(f.Positions))
		for j, p := range f.Positions {
			data.Positions[i][j] = [2]float64{p.X, p.Y}
		}
		data.Stretch[i] = f.Stretch
	}
	return data
}

func ExportJSON(path string, meta *RunMetadata, result *sim.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return WriteJSON(file, meta, result)
}

// WriteJSON is ExportJSON to an arbitrary writer, e.g. os.Stdout.
func WriteJSON(w io.Writer, meta *RunMetadata, result *sim.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewExportData(meta, result))
}

func ExportCSV(path string, meta *RunMetadata, result *sim.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return WriteFramesCSV(file, meta.Bodies, result.Frames)
}
