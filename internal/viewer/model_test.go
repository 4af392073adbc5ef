package viewer

import (
	"image"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/aacsoares/product-damage-detection-ui/internal/hub"
	"github.com/aacsoares/product-damage-detection-ui/internal/session"
	"github.com/aacsoares/product-damage-detection-ui/internal/vision"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	m, err := New("http://localhost:8080", "", zerolog.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return m
}

// withResults returns a model whose session already holds a finished
// upload with the given predictions.
func withResults(t *testing.T, predictions ...vision.Prediction) Model {
	t.Helper()
	m := newTestModel(t)
	st := m.State()
	token := st.BeginUpload(session.Image{Name: "box.jpg", NaturalWidth: 640, NaturalHeight: 480})
	if !st.CompleteUpload(token, predictions) {
		t.Fatal("CompleteUpload() rejected a fresh token")
	}
	return m
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	got, ok := next.(Model)
	if !ok {
		t.Fatalf("Update() returned %T", next)
	}
	return got
}

func TestHoverTraversesDisplayOrder(t *testing.T) {
	// Original order: scratch (index 0), dent (index 1). Confidence
	// sort displays dent first, so hover starts at original index 1.
	m := withResults(t,
		vision.Prediction{TagName: "scratch", Probability: 0.55},
		vision.Prediction{TagName: "dent", Probability: 0.92},
	)
	st := m.State()

	m = update(t, m, keyRune('j'))
	if st.Hovered != 1 {
		t.Fatalf("Hovered = %d after first j, want 1", st.Hovered)
	}

	m = update(t, m, keyRune('j'))
	if st.Hovered != 0 {
		t.Fatalf("Hovered = %d after second j, want 0", st.Hovered)
	}

	// Clamped at the bottom of the list.
	m = update(t, m, keyRune('j'))
	if st.Hovered != 0 {
		t.Fatalf("Hovered = %d after third j, want clamp at 0", st.Hovered)
	}

	m = update(t, m, keyRune('k'))
	if st.Hovered != 1 {
		t.Fatalf("Hovered = %d after k, want 1", st.Hovered)
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if st.Hovered != session.None {
		t.Fatalf("Hovered = %d after esc, want cleared", st.Hovered)
	}
}

func TestSelectTogglesHoveredRow(t *testing.T) {
	m := withResults(t,
		vision.Prediction{TagName: "dent", Probability: 0.92},
		vision.Prediction{TagName: "scratch", Probability: 0.55},
	)
	st := m.State()

	// Enter with nothing hovered does nothing.
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if st.Selected != session.None {
		t.Fatalf("Selected = %d without hover, want none", st.Selected)
	}

	m = update(t, m, keyRune('j'))
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if st.Selected != 0 {
		t.Fatalf("Selected = %d, want 0", st.Selected)
	}

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if st.Selected != session.None {
		t.Fatalf("Selected = %d after second enter, want toggled off", st.Selected)
	}
}

func TestSortKeysKeepSelection(t *testing.T) {
	m := withResults(t,
		vision.Prediction{TagName: "scratch", Probability: 0.55},
		vision.Prediction{TagName: "dent", Probability: 0.92},
	)
	st := m.State()
	st.ToggleSelect(0)

	m = update(t, m, keyRune('n'))
	if st.Sort != session.SortByName {
		t.Fatalf("Sort = %v after n, want name", st.Sort)
	}
	if st.Selected != 0 {
		t.Fatalf("Selected = %d after sort change, want 0", st.Selected)
	}

	m = update(t, m, keyRune('c'))
	if st.Sort != session.SortByConfidence {
		t.Fatalf("Sort = %v after c, want confidence", st.Sort)
	}
	if st.Selected != 0 {
		t.Fatalf("Selected = %d after sort change, want 0", st.Selected)
	}
}

func TestViewToggleKey(t *testing.T) {
	m := withResults(t, vision.Prediction{TagName: "dent", Probability: 0.92})
	st := m.State()

	m = update(t, m, keyRune('v'))
	if st.View != session.ViewGrid {
		t.Fatalf("View = %v after v, want grid", st.View)
	}
	m = update(t, m, keyRune('v'))
	if st.View != session.ViewList {
		t.Fatalf("View = %v after second v, want list", st.View)
	}
}

func TestUnsupportedFileNeverUploads(t *testing.T) {
	m := newTestModel(t)

	next, cmd := m.Update(openFileMsg{path: "photo.gif"})
	m = next.(Model)
	st := m.State()

	if cmd != nil {
		t.Error("rejected file still produced an upload command")
	}
	if st.Loading {
		t.Error("rejected file entered the loading state")
	}
	if st.Err != "Unsupported file type: use .png, .jpg or .jpeg" {
		t.Errorf("Err = %q", st.Err)
	}
}

func TestSupportedFileStartsUpload(t *testing.T) {
	m := newTestModel(t)

	next, cmd := m.Update(openFileMsg{path: "testdata/box.jpg"})
	m = next.(Model)
	st := m.State()

	if cmd == nil {
		t.Error("accepted file produced no command")
	}
	if !st.Loading {
		t.Error("accepted file did not enter the loading state")
	}
	if st.Image.Name != "box.jpg" {
		t.Errorf("Image.Name = %q, want %q", st.Image.Name, "box.jpg")
	}
}

func TestStalePredictionDiscarded(t *testing.T) {
	m := newTestModel(t)
	st := m.State()

	stale := st.BeginUpload(session.Image{Name: "first.jpg"})
	st.BeginUpload(session.Image{Name: "second.jpg"})

	m = update(t, m, predictMsg{
		token:       stale,
		predictions: []vision.Prediction{{TagName: "dent", Probability: 0.92}},
	})

	if !st.Loading {
		t.Error("stale prediction cleared Loading for the pending upload")
	}
	if len(st.Predictions) != 0 {
		t.Errorf("stale prediction installed results: %+v", st.Predictions)
	}

	m = update(t, m, predictMsg{token: stale, err: errFake})
	if st.Err != "" {
		t.Errorf("stale failure set Err = %q", st.Err)
	}
}

func TestPredictFailureShowsGenericMessage(t *testing.T) {
	m := newTestModel(t)
	st := m.State()
	token := st.BeginUpload(session.Image{Name: "box.jpg"})

	m = update(t, m, predictMsg{token: token, err: errFake})

	if st.Loading {
		t.Error("Loading still set after a failed prediction")
	}
	if st.Err != "Prediction failed" {
		t.Errorf("Err = %q, want %q", st.Err, "Prediction failed")
	}
}

func TestPreviewSetsNaturalSize(t *testing.T) {
	m := newTestModel(t)
	st := m.State()
	token := st.BeginUpload(session.Image{Name: "box.jpg"})

	img := image.NewRGBA(image.Rect(0, 0, 320, 240))
	m = update(t, m, previewMsg{token: token, img: img})

	if st.Image.NaturalWidth != 320 || st.Image.NaturalHeight != 240 {
		t.Errorf("natural size = %dx%d, want 320x240",
			st.Image.NaturalWidth, st.Image.NaturalHeight)
	}
	if m.img == nil {
		t.Error("decoded preview was not installed")
	}
}

func TestStalePreviewDiscarded(t *testing.T) {
	m := newTestModel(t)
	st := m.State()

	stale := st.BeginUpload(session.Image{Name: "first.jpg"})
	st.BeginUpload(session.Image{Name: "second.jpg"})

	img := image.NewRGBA(image.Rect(0, 0, 320, 240))
	m = update(t, m, previewMsg{token: stale, img: img})

	if st.Image.NaturalWidth != 0 {
		t.Errorf("stale preview set natural width = %d", st.Image.NaturalWidth)
	}
	if m.img != nil {
		t.Error("stale preview installed an image")
	}
}

func TestFeedEventAppliedWhenIdle(t *testing.T) {
	m := withResults(t, vision.Prediction{TagName: "dent", Probability: 0.92})
	st := m.State()

	m = update(t, m, feedEventMsg{event: hub.ResultEvent{
		Filename:      "other.jpg",
		NaturalWidth:  800,
		NaturalHeight: 600,
		Predictions: []vision.Prediction{
			{TagName: "crack", Probability: 0.7},
			{TagName: "no_damage", Probability: 0.3},
		},
	}})

	if st.Image.Name != "other.jpg" {
		t.Fatalf("Image.Name = %q, want other.jpg", st.Image.Name)
	}
	// The broadcast payload is filtered like any other result.
	if len(st.Predictions) != 1 || st.Predictions[0].TagName != "crack" {
		t.Errorf("Predictions = %+v, want only crack", st.Predictions)
	}
	if m.img != nil {
		t.Error("feed result carries no pixels but an image was kept")
	}
}

func TestFeedEventSkippedWhileLoading(t *testing.T) {
	m := newTestModel(t)
	st := m.State()
	st.BeginUpload(session.Image{Name: "mine.jpg"})

	m = update(t, m, feedEventMsg{event: hub.ResultEvent{
		Filename:    "other.jpg",
		Predictions: []vision.Prediction{{TagName: "crack", Probability: 0.7}},
	}})

	if st.Image.Name != "mine.jpg" {
		t.Errorf("Image.Name = %q, feed event interrupted an upload", st.Image.Name)
	}
	if !st.Loading {
		t.Error("feed event cleared Loading for a pending upload")
	}
}

func TestFeedEchoOfOwnUploadSkipped(t *testing.T) {
	m := withResults(t, vision.Prediction{TagName: "dent", Probability: 0.92})
	st := m.State()
	st.Hover(0)
	st.ToggleSelect(0)

	m = update(t, m, feedEventMsg{event: hub.ResultEvent{
		Filename:    "box.jpg", // same file this viewer just uploaded
		Predictions: []vision.Prediction{{TagName: "dent", Probability: 0.92}},
	}})

	if st.Hovered != 0 || st.Selected != 0 {
		t.Error("feed echo dropped the hover or selection")
	}
}

func TestFeedClosureSchedulesReconnect(t *testing.T) {
	m := newTestModel(t)

	next, cmd := m.Update(feedClosedMsg{err: errFake})
	m = next.(Model)
	if cmd == nil {
		t.Fatal("no reconnect scheduled after the feed closed")
	}
	if m.conn != nil {
		t.Error("closed connection was not cleared")
	}

	if _, cmd = m.Update(feedRetryMsg{}); cmd == nil {
		t.Error("retry produced no dial command")
	}
}

func TestSnapshotWithNothingToSave(t *testing.T) {
	// Results but no decoded pixels (a live-feed situation).
	m := withResults(t, vision.Prediction{TagName: "dent", Probability: 0.92})

	next, cmd := m.Update(keyRune('s'))
	m = next.(Model)

	if cmd != nil {
		t.Error("snapshot command produced without an image")
	}
	if m.note != "nothing to snapshot" {
		t.Errorf("note = %q, want %q", m.note, "nothing to snapshot")
	}
}

func TestViewRendersBeforeWindowSize(t *testing.T) {
	m := withResults(t, vision.Prediction{TagName: "dent", Probability: 0.92})

	out := m.View()
	if out == "" {
		t.Fatal("View() returned an empty frame")
	}
	if !strings.Contains(out, "dent") {
		t.Error("View() does not list the detection")
	}
}

func TestViewShowsError(t *testing.T) {
	m := newTestModel(t)
	m.State().Reject("Unsupported file type: use .png, .jpg or .jpeg")

	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	if out := m.View(); !strings.Contains(out, "Unsupported file type") {
		t.Error("View() does not surface the validation error")
	}
}

var errFake = errTest("boom")

type errTest string

func (e errTest) Error() string { return string(e) }
