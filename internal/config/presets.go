package config

import "sort"

var Presets = map[string]*Config{
	// four masses and a wall; mass m1 is nudged left after two seconds
	"quartet": {
		Name: "quartet", Dt: 0.01, Duration: 32.0, RecordEvery: 1,
		Masses: []MassConfig{
			{Name: "m1", Mass: 3, Position: Vec2{-1, 0}},
			{Name: "m2", Mass: 1.5, Position: Vec2{1, 0}},
			{Name: "m3", Mass: 10, Position: Vec2{2, 0}},
			{Name: "m4", Mass: 2, Position: Vec2{0, 1}},
		},
		Walls: []WallConfig{
			{Name: "wall", Height: 0.5, Position: Vec2{3, 0}},
		},
		Springs: []SpringConfig{
			{K: 2.0, Start: "m1", End: "m2", Coils: 16, Height: 0.25},
			{K: 0.5, Start: "m2", End: "m3", Coils: 4, Height: 0.25},
			{K: 0.125, Start: "m3", End: "wall", Coils: 2, Height: 0.25},
			{K: 1, Start: "m2", End: "m4", Coils: 8, Height: 0.25},
		},
		Kicks: []KickConfig{
			{Body: "m1", At: 2, Velocity: Vec2{-0.25, 0}},
		},
	},
	"pair": {
		Name: "pair", Dt: 0.1, Duration: 20.0, RecordEvery: 1,
		Masses: []MassConfig{
			{Name: "a", Mass: 3, Position: Vec2{-1, 0}},
			{Name: "b", Mass: 1.5, Position: Vec2{1, 0}},
		},
		Springs: []SpringConfig{
			{K: 2.0, Start: "a", End: "b", Coils: 8, Height: 0.25},
		},
		Kicks: []KickConfig{
			{Body: "b", At: 0.1, Velocity: Vec2{-0.25, 0}},
		},
	},
	"chain": {
		Name: "chain", Dt: 0.01, Duration: 20.0, RecordEvery: 1,
		Masses: []MassConfig{
			{Name: "m1", Mass: 1, Position: Vec2{-1, 0}},
			{Name: "m2", Mass: 1, Position: Vec2{0, 0}},
			{Name: "m3", Mass: 1, Position: Vec2{1, 0}},
		},
		Walls: []WallConfig{
			{Name: "left", Height: 0.5, Position: Vec2{-2, 0}},
			{Name: "right", Height: 0.5, Position: Vec2{2, 0}},
		},
		Springs: []SpringConfig{
			{K: 1, Start: "left", End: "m1", Coils: 4, Height: 0.2},
			{K: 1, Start: "m1", End: "m2", Coils: 4, Height: 0.2},
			{K: 1, Start: "m2", End: "m3", Coils: 4, Height: 0.2},
			{K: 1, Start: "m3", End: "right", Coils: 4, Height: 0.2},
		},
		Kicks: []KickConfig{
			{Body: "m1", At: 0, Velocity: Vec2{0.5, 0}},
		},
	},
}

// GetPreset returns a copy of the named scene, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
