package vision

// BoundingBox locates one detected region as fractions of the image
// dimensions in [0,1], origin at the top-left corner. Values are
// backend-trusted: left+width and top+height are expected to stay
// within [0,1] but are not enforced here.
type BoundingBox struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Prediction is one classified region with a confidence score.
// Identity is positional: the index in the received array is the
// addressable key, since TagID is not guaranteed unique.
type Prediction struct {
	TagID       string      `json:"tagId"`
	TagName     string      `json:"tagName"`
	Probability float64     `json:"probability"`
	BoundingBox BoundingBox `json:"boundingBox"`
}

// PredictionBatch is the inner payload of a backend response.
type PredictionBatch struct {
	ID          string       `json:"id"`
	Project     string       `json:"project"`
	Iteration   string       `json:"iteration"`
	Predictions []Prediction `json:"predictions"`
}

// PredictResponse is the full backend payload relayed to clients.
// Only the nested prediction array is consumed for display.
type PredictResponse struct {
	Success     bool            `json:"success"`
	Filename    string          `json:"filename"`
	Predictions PredictionBatch `json:"predictions"`
}
