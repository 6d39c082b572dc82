package project

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"pointpath/internal/graph"
)

// field decodes m[key] into dst. It reports false when the key is absent or
// null, leaving dst untouched.
func field[T any](m map[string]json.RawMessage, key string, dst *T) (bool, error) {
	raw, ok := m[key]
	if !ok || string(raw) == "null" {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("%w: field %q: %v", ErrMalformedSnapshot, key, err)
	}
	return true, nil
}

func decodePoint(index int, m map[string]json.RawMessage) (PointRecord, error) {
	r := PointRecord{Connection: graph.Unassigned}
	var missing []string

	for _, f := range []struct {
		key string
		dst interface{}
	}{
		{"id", &r.ID},
		{"x", &r.X},
		{"y", &r.Y},
		{"locked", &r.Locked},
	} {
		raw, ok := m[f.key]
		if !ok || string(raw) == "null" {
			missing = append(missing, f.key)
			continue
		}
		if err := json.Unmarshal(raw, f.dst); err != nil {
			return r, fmt.Errorf("%w: point %d field %q: %v", ErrMalformedSnapshot, index, f.key, err)
		}
	}

	// An explicit null is "no neighbour"; only an absent key is defaulted.
	for _, f := range []struct {
		key string
		dst **int
	}{
		{"next", &r.Next},
		{"prev", &r.Prev},
	} {
		if _, ok := m[f.key]; !ok {
			missing = append(missing, f.key)
			continue
		}
		if _, err := field(m, f.key, f.dst); err != nil {
			return r, err
		}
	}

	if _, err := field(m, "connection", &r.Connection); err != nil {
		return r, err
	}

	if len(missing) > 0 {
		graph.Logger().Warn("point field missing, using default", "index", index, "fields", missing)
	}
	return r, nil
}

// Decode reads a snapshot. Missing point fields and missing top-level
// settings are defaulted with a warning; a missing points array is an error.
func Decode(r io.Reader) (Snapshot, error) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}

	var rawPoints []map[string]json.RawMessage
	ok, err := field(raw, "points", &rawPoints)
	if err != nil {
		return Snapshot{}, err
	}
	if !ok {
		return Snapshot{}, fmt.Errorf("%w: no points", ErrMalformedSnapshot)
	}

	snap := Snapshot{
		Points:       make([]PointRecord, 0, len(rawPoints)),
		Origin:       graph.Center,
		PointDensity: DefaultPointDensity,
	}
	for i, m := range rawPoints {
		p, err := decodePoint(i, m)
		if err != nil {
			return Snapshot{}, err
		}
		snap.Points = append(snap.Points, p)
	}

	if _, err := field(raw, "project_id", &snap.ProjectID); err != nil {
		return Snapshot{}, err
	}
	if ok, err := field(raw, "origin", &snap.Origin); err != nil {
		return Snapshot{}, err
	} else if !ok {
		graph.Logger().Warn("origin missing, using default", "origin", graph.Center)
	}
	if !snap.Origin.Valid() {
		return Snapshot{}, fmt.Errorf("%w: origin %d", ErrMalformedSnapshot, int(snap.Origin))
	}
	if ok, err := field(raw, "point_density", &snap.PointDensity); err != nil {
		return Snapshot{}, err
	} else if !ok {
		graph.Logger().Warn("point_density missing, using default", "point_density", DefaultPointDensity)
	}
	if ok, err := field(raw, "image_path", &snap.ImagePath); err != nil {
		return Snapshot{}, err
	} else if !ok {
		graph.Logger().Warn("image_path missing, using default")
	}
	if _, err := field(raw, "image_width", &snap.ImageWidth); err != nil {
		return Snapshot{}, err
	}
	if _, err := field(raw, "image_height", &snap.ImageHeight); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

func Encode(w io.Writer, snap Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

// Save writes the snapshot to path through a temporary file in the same
// directory.
func Save(path string, snap Snapshot) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".pointpath-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := Encode(tmp, snap); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return err
	}
	graph.Logger().Info("project saved", "path", path, "points", len(snap.Points))
	return nil
}

func Load(path string) (Snapshot, error) {
	file, err := os.Open(path)
	if err != nil {
		return Snapshot{}, err
	}
	defer file.Close()
	return Decode(file)
}
