// Package session holds the per-page interaction state for one
// displayed photo: the filtered prediction list, upload lifecycle, and
// the hover/select/sort/view-mode machine. It is independent of any
// rendering surface so the transitions can be tested directly.
package session

import (
	"sort"
	"strings"

	"github.com/aacsoares/product-damage-detection-ui/internal/vision"
)

// SortMode selects the ordering of the displayed prediction list.
type SortMode int

const (
	SortByConfidence SortMode = iota
	SortByName
)

// ViewMode selects the presentation density of the prediction panel.
// It never affects interaction state.
type ViewMode int

const (
	ViewList ViewMode = iota
	ViewGrid
)

// Emphasis is the visual tier of one row or overlay. Exactly one
// applies at a time; selected beats hovered.
type Emphasis int

const (
	EmphasisDefault Emphasis = iota
	EmphasisHovered
	EmphasisSelected
)

// None marks the absence of a hovered or selected index.
const None = -1

// Image identifies the currently displayed photo. Natural dimensions
// are zero until the image has been decoded.
type Image struct {
	Name          string
	NaturalWidth  int
	NaturalHeight int
}

// State is the whole interaction state for one session. There is a
// single logical writer (the UI event loop), so no locking. Hovered
// and Selected index the ORIGINAL prediction array, never the sorted
// view, so overlay rendering stays consistent regardless of sort
// order.
type State struct {
	Image       Image
	Predictions []vision.Prediction
	Loading     bool
	Err         string
	Hovered     int
	Selected    int
	Sort        SortMode
	View        ViewMode

	// token fences overlapping uploads: only the response belonging
	// to the most recent BeginUpload is ever applied.
	token uint64
}

// New returns an empty session with nothing hovered or selected.
func New() *State {
	return &State{Hovered: None, Selected: None}
}

// BeginUpload starts a new upload. The previous error and predictions
// are dropped immediately so stale boxes never show over the new
// image, and hover/select are cleared since their indices refer to
// data that no longer exists. The returned token must be passed to
// CompleteUpload or FailUpload.
func (s *State) BeginUpload(img Image) uint64 {
	s.token++
	s.Image = img
	s.Predictions = nil
	s.Err = ""
	s.Loading = true
	s.Hovered = None
	s.Selected = None
	return s.token
}

// SetNaturalSize records the decoded image dimensions once they are
// known; reports whether they were applied (false for a stale token).
func (s *State) SetNaturalSize(token uint64, width, height int) bool {
	if token != s.token {
		return false
	}
	s.Image.NaturalWidth = width
	s.Image.NaturalHeight = height
	return true
}

// CompleteUpload installs the response for the upload identified by
// token, keeping only predictions strictly above the display
// threshold. A response for a superseded upload is discarded; the
// return value reports whether the state changed.
func (s *State) CompleteUpload(token uint64, predictions []vision.Prediction) bool {
	if token != s.token {
		return false
	}
	s.Predictions = vision.Filter(predictions)
	s.Loading = false
	s.Err = ""
	return true
}

// FailUpload records a failed upload with a user-facing message.
// Predictions stay empty and loading is cleared. Stale tokens are
// discarded just like completions.
func (s *State) FailUpload(token uint64, message string) bool {
	if token != s.token {
		return false
	}
	s.Predictions = nil
	s.Loading = false
	s.Err = message
	return true
}

// Reject records a client-side validation failure. Prior results are
// dropped first, so error and success states from different uploads
// never coexist. The token advances so responses still in flight for
// an earlier upload cannot replace the error. No upload is started and
// loading is never entered.
func (s *State) Reject(message string) {
	s.token++
	s.Predictions = nil
	s.Loading = false
	s.Hovered = None
	s.Selected = None
	s.Err = message
}

// Hover marks original index i as hovered; out-of-range means
// pointer-leave.
func (s *State) Hover(i int) {
	if i < 0 || i >= len(s.Predictions) {
		s.Hovered = None
		return
	}
	s.Hovered = i
}

// Unhover clears the hovered index.
func (s *State) Unhover() {
	s.Hovered = None
}

// ToggleSelect selects original index i, or clears the selection when
// i is already selected. At most one index is selected at a time. The
// list panel and the image overlay share this state, so toggling the
// same logical prediction on either surface yields identical results.
func (s *State) ToggleSelect(i int) {
	if i < 0 || i >= len(s.Predictions) {
		return
	}
	if s.Selected == i {
		s.Selected = None
		return
	}
	s.Selected = i
}

// SetSortMode reorders the displayed list only; hovered and selected
// indices are untouched.
func (s *State) SetSortMode(m SortMode) {
	s.Sort = m
}

// SetViewMode changes presentation density only; no state reset.
func (s *State) SetViewMode(m ViewMode) {
	s.View = m
}

// ToggleViewMode flips between list and grid.
func (s *State) ToggleViewMode() {
	if s.View == ViewList {
		s.View = ViewGrid
	} else {
		s.View = ViewList
	}
}

// EmphasisFor returns the single visual tier for original index i:
// selected when i is the selection, otherwise hovered when i is
// hovered, otherwise default.
func (s *State) EmphasisFor(i int) Emphasis {
	if i == s.Selected {
		return EmphasisSelected
	}
	if i == s.Hovered {
		return EmphasisHovered
	}
	return EmphasisDefault
}

// SortedIndices returns the display order as a permutation of indices
// into the original prediction array. The predictions themselves are
// never reordered. Sorting is stable: ties keep their original
// relative order, so repeated re-sorting reproduces the same result.
func (s *State) SortedIndices() []int {
	order := make([]int, len(s.Predictions))
	for i := range order {
		order[i] = i
	}

	switch s.Sort {
	case SortByName:
		sort.SliceStable(order, func(a, b int) bool {
			na := strings.ToLower(s.Predictions[order[a]].TagName)
			nb := strings.ToLower(s.Predictions[order[b]].TagName)
			return na < nb
		})
	default:
		sort.SliceStable(order, func(a, b int) bool {
			return s.Predictions[order[a]].Probability > s.Predictions[order[b]].Probability
		})
	}
	return order
}

// DisplayedRow returns the position of original index i within the
// current display order, or -1 when i is not displayed.
func (s *State) DisplayedRow(i int) int {
	for row, idx := range s.SortedIndices() {
		if idx == i {
			return row
		}
	}
	return -1
}
