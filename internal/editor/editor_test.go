package editor

import (
	"errors"
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/jbeda/geom"

	"pointpath/internal/extract"
	"pointpath/internal/graph"
)

func newEditor(t *testing.T, coords ...[2]float64) *Editor {
	t.Helper()
	e := New(DefaultConfig())
	e.NewProject()
	e.SetImage("img.png", graph.Size{W: 1200, H: 800})
	for _, c := range coords {
		if _, err := e.AddPoint(c[0], c[1]); err != nil {
			t.Fatal(err)
		}
	}
	return e
}

func travel(e *Editor) []int {
	var out []int
	for _, p := range e.TravelOrder() {
		out = append(out, p.ID)
	}
	return out
}

func sameInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestUninitialized(t *testing.T) {
	e := New(DefaultConfig())
	if _, err := e.AddPoint(1, 1); !errors.Is(err, ErrUninitialized) {
		t.Errorf("AddPoint err = %v", err)
	}
	if _, err := e.Undo(); !errors.Is(err, ErrUninitialized) {
		t.Errorf("Undo err = %v", err)
	}
	if _, err := e.PathCode(); !errors.Is(err, ErrUninitialized) {
		t.Errorf("PathCode err = %v", err)
	}

	e.NewProject()
	e.AddPoint(1, 1)
	e.AddPoint(2, 2)
	if _, err := e.PathCode(); !errors.Is(err, ErrUninitialized) {
		t.Errorf("PathCode without image err = %v", err)
	}
}

func TestPathCode(t *testing.T) {
	e := newEditor(t, [2]float64{600, 400}, [2]float64{650, 400})
	if _, err := e.PathCode(); err != nil {
		t.Fatal(err)
	}
	if err := e.RecalcPath(); err != nil {
		t.Fatal(err)
	}
	got, err := e.PathCode()
	if err != nil {
		t.Fatal(err)
	}
	if want := "G1 X0. Y0.\nG1 X50. Y0.\n"; got != want {
		t.Errorf("PathCode = %q, want %q", got, want)
	}

	e.SetOrigin(graph.TopLeft)
	if _, err := e.PathCode(); err == nil {
		t.Error("expected error for top-left origin")
	}

	single := newEditor(t, [2]float64{1, 1})
	if _, err := single.PathCode(); !errors.Is(err, ErrTooFewPoints) {
		t.Errorf("err = %v", err)
	}
}

func TestInsertRemoveUndo(t *testing.T) {
	e := newEditor(t, [2]float64{0, 0}, [2]float64{10, 0}, [2]float64{20, 0})
	e.RecalcPath()

	p, err := e.InsertAfter(1, 5, 5)
	if err != nil {
		t.Fatal(err)
	}
	if got := travel(e); !sameInts(got, []int{1, p.ID, 2, 3}) {
		t.Errorf("after insert %v", got)
	}

	if err := e.RemovePoint(2); err != nil {
		t.Fatal(err)
	}
	if got := travel(e); !sameInts(got, []int{1, p.ID, 3}) {
		t.Errorf("after remove %v", got)
	}

	e.Undo()
	if got := travel(e); !sameInts(got, []int{1, p.ID, 2, 3}) {
		t.Errorf("after undo remove %v", got)
	}
	e.Undo()
	if got := travel(e); !sameInts(got, []int{1, 2, 3}) {
		t.Errorf("after undo insert %v", got)
	}
	e.Redo()
	if got := travel(e); !sameInts(got, []int{1, p.ID, 2, 3}) {
		t.Errorf("after redo insert %v", got)
	}
}

func TestRemoveLocked(t *testing.T) {
	e := newEditor(t, [2]float64{0, 0}, [2]float64{10, 0})
	if locked, _ := e.ToggleLock(1); !locked {
		t.Fatal("not locked")
	}
	if err := e.RemovePoint(1); !errors.Is(err, graph.ErrPointLocked) {
		t.Errorf("err = %v", err)
	}
	e.Undo()
	if e.Graph().Get(1).Locked {
		t.Error("undo did not unlock")
	}
	e.Redo()
	if !e.Graph().Get(1).Locked {
		t.Error("redo did not lock")
	}
}

func TestDrag(t *testing.T) {
	e := newEditor(t, [2]float64{100, 100}, [2]float64{200, 200})

	if _, ok := e.StartDrag(150, 150); ok {
		t.Fatal("grabbed empty space")
	}
	p, ok := e.StartDrag(101, 99)
	if !ok || p.ID != 1 {
		t.Fatalf("StartDrag = %v, %v", p, ok)
	}
	e.DragTo(111, 109)
	e.DragTo(121, 119)
	e.EndDrag()
	want := geom.Coord{X: 120, Y: 120}
	if got := e.Graph().Get(1).Position(); got != want {
		t.Fatalf("dragged to %v, want %v", got, want)
	}

	// One drag is one undo step; redo restores the dragged-to position.
	e.Undo()
	if got := e.Graph().Get(1).Position(); got != (geom.Coord{X: 100, Y: 100}) {
		t.Errorf("after undo %v", got)
	}
	e.Redo()
	if got := e.Graph().Get(1).Position(); got != want {
		t.Errorf("after redo %v, want %v", got, want)
	}

	e.StartDrag(120, 120)
	e.DragTo(300, 300)
	e.CancelDrag()
	if got := e.Graph().Get(1).Position(); got != want {
		t.Errorf("cancelled drag left point at %v", got)
	}
}

func TestToggleValidation(t *testing.T) {
	e := newEditor(t, [2]float64{0, 0}, [2]float64{10, 0}, [2]float64{20, 0})
	shown, err := e.ToggleValidation()
	if err != nil || !shown {
		t.Fatalf("ToggleValidation = %v, %v", shown, err)
	}
	if got := len(e.ValidationErrors()); got != 3 {
		t.Errorf("violations = %d, want 3 isolated", got)
	}
	if shown, _ := e.ToggleValidation(); shown || e.ValidationErrors() != nil {
		t.Error("second toggle did not clear")
	}

	e.ToggleValidation()
	e.RecalcPath()
	if shown, _ := e.ToggleValidation(); !shown {
		t.Error("toggle after an edit should revalidate")
	}
	if len(e.ValidationErrors()) != 0 || len(e.Highlighted()) != 0 {
		t.Errorf("violations after build = %v", e.ValidationErrors())
	}
}

func TestConnections(t *testing.T) {
	e := newEditor(t, [2]float64{0, 0}, [2]float64{10, 0}, [2]float64{20, 0})
	e.RecalcPath()
	e.AssignConnection(3)
	e.AssignConnection(1)
	e.AssignConnection(2)
	if e.ConnectionCounter() != 3 {
		t.Errorf("counter = %d", e.ConnectionCounter())
	}
	e.RelinkByConnection()
	if got := travel(e); !sameInts(got, []int{3, 1, 2}) {
		t.Errorf("travel = %v", got)
	}
	e.ClearConnections()
	if e.ConnectionCounter() != 0 {
		t.Errorf("counter after clear = %d", e.ConnectionCounter())
	}
}

func TestBounds(t *testing.T) {
	e := newEditor(t, [2]float64{0, 0}, [2]float64{100, 0})
	if _, ok := e.RefreshBounds(); ok {
		t.Error("bounds with two points")
	}
	e.AddPoint(50, 25)
	if _, ok := e.Bounds(); ok {
		t.Error("bounds changed before refresh")
	}
	r, ok := e.RefreshBounds()
	if !ok || r != (graph.Rect{W: 100, H: 25}) {
		t.Errorf("bounds = %v, %v", r, ok)
	}
	in, _ := e.BoundsInches()
	if in != (graph.Rect{W: 2, H: 0.5}) {
		t.Errorf("inches = %v", in)
	}
}

func TestMachinePosition(t *testing.T) {
	e := newEditor(t)
	got, err := e.MachinePosition(650, 300)
	if err != nil {
		t.Fatal(err)
	}
	if got != (geom.Coord{X: 50, Y: -100}) {
		t.Errorf("MachinePosition = %v", got)
	}
	if _, err := New(DefaultConfig()).MachinePosition(0, 0); !errors.Is(err, ErrUninitialized) {
		t.Errorf("err = %v", err)
	}
}

func TestSaveLoad(t *testing.T) {
	e := newEditor(t, [2]float64{0, 0}, [2]float64{10, 0}, [2]float64{20, 5})
	e.RecalcPath()
	e.ToggleLock(2)
	e.SetPointDensity(4)
	path := filepath.Join(t.TempDir(), "p.json")
	if err := e.Save(path); err != nil {
		t.Fatal(err)
	}
	id := e.Meta().ProjectID
	if id == "" {
		t.Fatal("no project id")
	}
	if err := e.Save(path); err != nil || e.Meta().ProjectID != id {
		t.Errorf("project id changed on second save")
	}

	f := New(DefaultConfig())
	if err := f.Load(path); err != nil {
		t.Fatal(err)
	}
	if !sameInts(travel(f), travel(e)) {
		t.Errorf("loaded order %v, want %v", travel(f), travel(e))
	}
	if !f.Graph().Get(2).Locked || f.Config().PointDensity != 4 || f.ImageSize() != (graph.Size{W: 1200, H: 800}) {
		t.Error("state lost on load")
	}
	if f.CanUndo() {
		t.Error("history survived load")
	}
	if _, ok := f.Bounds(); !ok {
		t.Error("bounds not refreshed on load")
	}
}

func TestAdoptExtraction(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 60, 60))
	for y := 0; y < 60; y++ {
		for x := 0; x < 60; x++ {
			if x >= 20 && x < 40 && y >= 20 && y < 40 {
				img.SetGray(x, y, color.Gray{Y: 0})
			} else {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	res, err := extract.Start(img, extract.Config{MinSeparation: 4}).Wait()
	if err != nil {
		t.Fatal(err)
	}

	e := New(DefaultConfig())
	if err := e.Adopt(res); err != nil {
		t.Fatal(err)
	}
	if e.ImageSize() != (graph.Size{W: 60, H: 60}) {
		t.Errorf("image size = %v", e.ImageSize())
	}
	if len(e.Path()) != res.Kept {
		t.Errorf("path has %d points, want %d", len(e.Path()), res.Kept)
	}
	if _, err := e.PathCode(); err != nil {
		t.Errorf("PathCode: %v", err)
	}
	e.SetPointDensity(4)
	n, err := e.Clean()
	if err != nil || n != 0 {
		t.Errorf("Clean after extraction = %d, %v", n, err)
	}
}

func TestCleanKeepsOneChain(t *testing.T) {
	e := newEditor(t, [2]float64{0, 0}, [2]float64{10, 0}, [2]float64{10.5, 0}, [2]float64{20, 0}, [2]float64{30, 0})
	if err := e.RecalcPath(); err != nil {
		t.Fatal(err)
	}
	e.SetPointDensity(2)
	n, err := e.Clean()
	if err != nil || n != 1 {
		t.Fatalf("Clean = %d, %v", n, err)
	}
	if heads := e.Graph().Heads(); len(heads) != 1 {
		t.Errorf("%d chains after clean", len(heads))
	}
	if got := travel(e); !sameInts(got, []int{1, 2, 4, 5}) {
		t.Errorf("travel = %v", got)
	}
	if v, _ := e.Validate(); len(v) != 0 {
		t.Errorf("Validate = %v", v)
	}
}

func TestPathCodeSingleConnection(t *testing.T) {
	e := newEditor(t, [2]float64{0, 0}, [2]float64{10, 0}, [2]float64{20, 0}, [2]float64{30, 0})
	e.AssignConnection(3)
	if err := e.RelinkByConnection(); err != nil {
		t.Fatal(err)
	}
	if got := travel(e); !sameInts(got, []int{3}) {
		t.Errorf("travel = %v, want the one assigned point", got)
	}
	if _, err := e.PathCode(); !errors.Is(err, ErrTooFewPoints) {
		t.Errorf("PathCode err = %v", err)
	}
}

func TestBreakAndUnlink(t *testing.T) {
	e := newEditor(t, [2]float64{0, 0}, [2]float64{10, 0}, [2]float64{20, 0}, [2]float64{30, 0})
	e.RecalcPath()

	if err := e.BreakAfter(2); err != nil {
		t.Fatal(err)
	}
	v, _ := e.Validate()
	if len(v) != 1 || v[0] != (graph.Violation{ID: 3, Reason: graph.ReasonDisconnected}) {
		t.Errorf("Validate = %v, want 3 disconnected", v)
	}
	if err := e.BreakAfter(99); !errors.Is(err, graph.ErrPointNotFound) {
		t.Errorf("BreakAfter missing point err = %v", err)
	}

	if err := e.Unlink(); err != nil {
		t.Fatal(err)
	}
	if len(e.Graph().Heads()) != 0 {
		t.Error("links left after Unlink")
	}
	if ok, err := e.RevertBulk(); err != nil || !ok {
		t.Fatalf("RevertBulk = %v, %v", ok, err)
	}
	if heads := e.Graph().Heads(); len(heads) != 2 {
		t.Errorf("heads after revert = %d, want 2", len(heads))
	}
}

func TestRevertBulk(t *testing.T) {
	e := newEditor(t, [2]float64{0, 0}, [2]float64{10, 0}, [2]float64{10.5, 0}, [2]float64{20, 0})
	if e.CanRevert() {
		t.Error("revert possible before any whole-path operation")
	}
	e.RecalcPath()
	e.SetPointDensity(2)
	if n, _ := e.Clean(); n != 1 {
		t.Fatalf("Clean removed %d", n)
	}

	if ok, err := e.RevertBulk(); err != nil || !ok {
		t.Fatalf("RevertBulk = %v, %v", ok, err)
	}
	if got := travel(e); !sameInts(got, []int{1, 2, 3, 4}) {
		t.Errorf("travel after revert = %v", got)
	}
	if ok, _ := e.RevertBulk(); ok {
		t.Error("second revert restored again")
	}

	// Any later edit makes the copy stale.
	e.RecalcPath()
	if err := e.MovePoint(1, 1, 1); err != nil {
		t.Fatal(err)
	}
	if ok, _ := e.RevertBulk(); ok {
		t.Error("revert undid an edit made after the rebuild")
	}
	if _, err := New(DefaultConfig()).RevertBulk(); !errors.Is(err, ErrUninitialized) {
		t.Errorf("err = %v", err)
	}
}

func TestCanUndoRedo(t *testing.T) {
	e := newEditor(t)
	if e.CanUndo() || e.CanRedo() {
		t.Error("empty history")
	}
	e.AddPoint(1, 1)
	if !e.CanUndo() || e.CanRedo() {
		t.Error("after add")
	}
	e.Undo()
	if !e.CanRedo() {
		t.Error("redo not offered after undo")
	}
}
