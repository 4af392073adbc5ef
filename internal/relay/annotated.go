package relay

import (
	"bytes"
	"image"
	"image/png"

	"github.com/aacsoares/product-damage-detection-ui/internal/annotate"
	"github.com/aacsoares/product-damage-detection-ui/internal/vision"
)

// encodeAnnotated burns the predictions into a copy of img and returns
// it as PNG bytes.
func encodeAnnotated(img image.Image, predictions []vision.Prediction) ([]byte, error) {
	rendered := annotate.Render(img, predictions)

	var buf bytes.Buffer
	if err := png.Encode(&buf, rendered); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
