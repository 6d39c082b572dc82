package extract

import (
	"fmt"
	"image"
	"time"

	"golang.org/x/sync/errgroup"

	"pointpath/internal/graph"
)

type Config struct {
	Extractor     Extractor
	MinSeparation float64
}

// Result is a finished point set: deduplicated and linked into one chain,
// in chain order.
type Result struct {
	Points    []*graph.Point
	Raw       int
	Kept      int
	ImageSize graph.Size
	Elapsed   time.Duration
}

// Run executes extract, deduplicate and build in order on the calling
// goroutine.
func Run(img image.Image, cfg Config) (Result, error) {
	ex := cfg.Extractor
	if ex == nil {
		ex = DefaultEdgeExtractor()
	}
	log := graph.Logger()
	start := time.Now()
	b := img.Bounds()
	res := Result{ImageSize: graph.Size{W: float64(b.Dx()), H: float64(b.Dy())}}

	coords, err := ex.Extract(img)
	if err != nil {
		return res, fmt.Errorf("extract: %w", err)
	}
	res.Raw = len(coords)
	log.Debug("stage done", "stage", "extract", "points", res.Raw, "elapsed", time.Since(start))

	points := make([]*graph.Point, len(coords))
	for i, c := range coords {
		points[i] = graph.Restore(i+1, c.X, c.Y, false, graph.Unassigned, graph.NoLink, graph.NoLink)
	}

	t := time.Now()
	points = graph.Deduplicate(points, cfg.MinSeparation)
	res.Kept = len(points)
	log.Debug("stage done", "stage", "deduplicate", "points", res.Kept, "elapsed", time.Since(t))

	t = time.Now()
	res.Points = graph.BuildNearestNeighbor(points)
	log.Debug("stage done", "stage", "build", "points", len(res.Points), "elapsed", time.Since(t))

	res.Elapsed = time.Since(start)
	log.Info("extraction finished", "raw", res.Raw, "kept", res.Kept, "elapsed", res.Elapsed)
	return res, nil
}

// Job is a pipeline running on its own goroutine. Its points must not be
// touched until Wait returns.
type Job struct {
	group  errgroup.Group
	result Result
}

// Start runs the pipeline in the background. The image must not be modified
// until the job is joined.
func Start(img image.Image, cfg Config) *Job {
	j := &Job{}
	j.group.Go(func() error {
		res, err := Run(img, cfg)
		j.result = res
		return err
	})
	return j
}

// Wait joins the worker and returns its result.
func (j *Job) Wait() (Result, error) {
	err := j.group.Wait()
	return j.result, err
}
