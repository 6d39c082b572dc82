package graph

import "fmt"

type Reason int

const (
	ReasonIsolated Reason = iota
	ReasonAsymmetric
	ReasonDangling
	ReasonSelfLink
	ReasonBranch
	ReasonDisconnected
)

func (r Reason) String() string {
	switch r {
	case ReasonIsolated:
		return "isolated"
	case ReasonAsymmetric:
		return "asymmetric"
	case ReasonDangling:
		return "dangling"
	case ReasonSelfLink:
		return "self-link"
	case ReasonBranch:
		return "branch"
	case ReasonDisconnected:
		return "disconnected"
	default:
		return fmt.Sprintf("Reason(%d)", int(r))
	}
}

// Violation names one structural problem at one point.
type Violation struct {
	ID     int
	Reason Reason
}

func (v Violation) String() string {
	return fmt.Sprintf("point %d: %s", v.ID, v.Reason)
}

// Validate reports the structural problems of the path. It does not modify
// the graph. Results follow collection order and each (point, reason) pair is
// reported once. When the linked points form more than one piece, the first
// point of every piece after the first is reported as disconnected.
func Validate(g *Graph) []Violation {
	detached := pieceStarts(g)

	nextClaims := make(map[int]int)
	prevClaims := make(map[int]int)
	for _, p := range g.points {
		if p.next != NoLink {
			nextClaims[p.next]++
		}
		if p.prev != NoLink {
			prevClaims[p.prev]++
		}
	}

	var out []Violation
	for _, p := range g.points {
		found := make(map[Reason]bool)
		report := func(r Reason) {
			if !found[r] {
				found[r] = true
				out = append(out, Violation{ID: p.ID, Reason: r})
			}
		}

		if p.next == NoLink && p.prev == NoLink {
			if len(g.points) > 1 {
				report(ReasonIsolated)
			}
			continue
		}
		if p.next == p.ID || p.prev == p.ID {
			report(ReasonSelfLink)
		}
		if p.next != NoLink && p.next != p.ID {
			if q := g.Get(p.next); q == nil {
				report(ReasonDangling)
			} else if q.prev != p.ID {
				report(ReasonAsymmetric)
			}
		}
		if p.prev != NoLink && p.prev != p.ID {
			if q := g.Get(p.prev); q == nil {
				report(ReasonDangling)
			} else if q.next != p.ID {
				report(ReasonAsymmetric)
			}
		}
		if (p.next != NoLink && nextClaims[p.next] > 1) || (p.prev != NoLink && prevClaims[p.prev] > 1) {
			report(ReasonBranch)
		}
		if detached[p.ID] {
			report(ReasonDisconnected)
		}
	}
	return out
}

// pieceStarts groups linked points into connected pieces, following links in
// both directions, and returns the first point in collection order of every
// piece but the first. Links to missing points are ignored.
func pieceStarts(g *Graph) map[int]bool {
	parent := make(map[int]int)
	var find func(int) int
	find = func(id int) int {
		for parent[id] != id {
			parent[id] = parent[parent[id]]
			id = parent[id]
		}
		return id
	}
	union := func(a, b int) {
		if ra, rb := find(a), find(b); ra != rb {
			parent[rb] = ra
		}
	}

	for _, p := range g.points {
		if p.next != NoLink || p.prev != NoLink {
			parent[p.ID] = p.ID
		}
	}
	for _, p := range g.points {
		for _, q := range []int{p.next, p.prev} {
			if _, ok := parent[q]; ok && q != p.ID {
				union(p.ID, q)
			}
		}
	}

	seen := make(map[int]bool)
	starts := make(map[int]bool)
	for _, p := range g.points {
		if _, ok := parent[p.ID]; !ok {
			continue
		}
		root := find(p.ID)
		if seen[root] {
			continue
		}
		if len(seen) > 0 {
			starts[p.ID] = true
		}
		seen[root] = true
	}
	return starts
}
