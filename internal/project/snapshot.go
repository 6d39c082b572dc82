// Package project stores a point graph and its image metadata as a JSON
// snapshot keyed by point id, and rebuilds the exact topology on load.
package project

import (
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"pointpath/internal/graph"
)

// DefaultPointDensity is used when a snapshot does not say.
const DefaultPointDensity = 10

var ErrMalformedSnapshot = errors.New("project: malformed snapshot")

type Snapshot struct {
	ProjectID    string        `json:"project_id"`
	Points       []PointRecord `json:"points"`
	Origin       graph.Origin  `json:"origin"`
	PointDensity float64       `json:"point_density"`
	ImagePath    string        `json:"image_path"`
	ImageWidth   int           `json:"image_width"`
	ImageHeight  int           `json:"image_height"`
}

// PointRecord is one stored point. Next and Prev are point ids, nil for no
// neighbour.
type PointRecord struct {
	ID         int     `json:"id"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Locked     bool    `json:"locked"`
	Next       *int    `json:"next"`
	Prev       *int    `json:"prev"`
	Connection int     `json:"connection"`
}

// Meta is the non-graph part of a project.
type Meta struct {
	ProjectID    string
	Origin       graph.Origin
	PointDensity float64
	ImagePath    string
	ImageSize    graph.Size
}

func linkRef(id int, ok bool) *int {
	if !ok {
		return nil
	}
	return &id
}

// Serialize captures g in collection order. A project id is minted when meta
// has none.
func Serialize(g *graph.Graph, meta Meta) Snapshot {
	if meta.ProjectID == "" {
		meta.ProjectID = uuid.NewString()
	}
	snap := Snapshot{
		ProjectID:    meta.ProjectID,
		Points:       make([]PointRecord, 0, g.Len()),
		Origin:       meta.Origin,
		PointDensity: meta.PointDensity,
		ImagePath:    meta.ImagePath,
		ImageWidth:   int(meta.ImageSize.W),
		ImageHeight:  int(meta.ImageSize.H),
	}
	for _, p := range g.Points() {
		snap.Points = append(snap.Points, PointRecord{
			ID:         p.ID,
			X:          p.X,
			Y:          p.Y,
			Locked:     p.Locked,
			Next:       linkRef(p.Next()),
			Prev:       linkRef(p.Prev()),
			Connection: p.Conn,
		})
	}
	return snap
}

// Deserialize rebuilds the graph. Every next/prev id must name exactly one
// stored point. Points with a non-positive id, or repeating an id already
// seen, get a fresh id as long as nothing refers to them.
func Deserialize(snap Snapshot) (*graph.Graph, Meta, error) {
	count := make(map[int]int, len(snap.Points))
	maxID := 0
	for _, r := range snap.Points {
		count[r.ID]++
		if r.ID > maxID {
			maxID = r.ID
		}
	}

	referenced := make(map[int]bool)
	for i, r := range snap.Points {
		for _, ref := range []*int{r.Next, r.Prev} {
			if ref == nil {
				continue
			}
			switch {
			case *ref <= 0 || count[*ref] == 0:
				return nil, Meta{}, fmt.Errorf("%w: point %d (index %d) refers to missing id %d", ErrMalformedSnapshot, r.ID, i, *ref)
			case count[*ref] > 1:
				return nil, Meta{}, fmt.Errorf("%w: reference to duplicated id %d", ErrMalformedSnapshot, *ref)
			}
			referenced[*ref] = true
		}
	}

	seen := make(map[int]bool, len(snap.Points))
	points := make([]*graph.Point, 0, len(snap.Points))
	var renamed []int
	for _, r := range snap.Points {
		id := r.ID
		if id <= 0 || seen[id] {
			maxID++
			renamed = append(renamed, id)
			id = maxID
		}
		seen[id] = true

		next, prev := graph.NoLink, graph.NoLink
		if r.Next != nil {
			next = *r.Next
		}
		if r.Prev != nil {
			prev = *r.Prev
		}
		points = append(points, graph.Restore(id, r.X, r.Y, r.Locked, r.Connection, next, prev))
	}
	if len(renamed) > 0 {
		sort.Ints(renamed)
		graph.Logger().Warn("assigned fresh ids to unreferenced points", "old_ids", renamed)
	}

	g := graph.New()
	if err := g.Adopt(points); err != nil {
		return nil, Meta{}, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}

	meta := Meta{
		ProjectID:    snap.ProjectID,
		Origin:       snap.Origin,
		PointDensity: snap.PointDensity,
		ImagePath:    snap.ImagePath,
		ImageSize:    graph.Size{W: float64(snap.ImageWidth), H: float64(snap.ImageHeight)},
	}
	graph.Logger().Info("project loaded", "project_id", meta.ProjectID, "points", g.Len())
	return g, meta, nil
}
