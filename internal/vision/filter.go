package vision

import (
	"path/filepath"
	"strings"
)

// DisplayThreshold is the minimum probability a prediction must exceed
// (strictly) to be displayed. Predictions at or below it are discarded
// before they ever reach session state.
const DisplayThreshold = 0.5

// Tier buckets a probability for presentation only (badge and box
// color). Boundaries are inclusive on the lower bound, exclusive on
// the upper.
type Tier int

const (
	TierLow Tier = iota
	TierMedium
	TierHigh
)

// TierFor classifies a probability: high >= 0.8, medium >= 0.6, low
// otherwise. Callers only pass probabilities above DisplayThreshold.
func TierFor(probability float64) Tier {
	switch {
	case probability >= 0.8:
		return TierHigh
	case probability >= 0.6:
		return TierMedium
	default:
		return TierLow
	}
}

func (t Tier) String() string {
	switch t {
	case TierHigh:
		return "high"
	case TierMedium:
		return "medium"
	default:
		return "low"
	}
}

// Filter returns the predictions with probability strictly above
// DisplayThreshold, preserving order. The input slice is not modified.
func Filter(predictions []Prediction) []Prediction {
	kept := make([]Prediction, 0, len(predictions))
	for _, p := range predictions {
		if p.Probability > DisplayThreshold {
			kept = append(kept, p)
		}
	}
	return kept
}

// SupportedFile reports whether the filename carries an accepted image
// extension (.png, .jpg or .jpeg, case-insensitive). Anything else is
// rejected before an upload is attempted.
func SupportedFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png", ".jpg", ".jpeg":
		return true
	}
	return false
}
