// Package relay implements the pass-through prediction endpoint: it
// forwards multipart uploads to the inference backend unmodified and
// re-emits the backend's response. Backend failure detail is logged
// here but never forwarded; clients only ever see a generic error
// shape.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/aacsoares/product-damage-detection-ui/internal/hub"
	"github.com/aacsoares/product-damage-detection-ui/internal/vision"

	_ "image/jpeg"
	_ "image/png"
)

// backendPredictPath is the fixed sub-path for file-based prediction
// on the inference backend.
const backendPredictPath = "/predict/image"

// Handler relays uploads to the inference backend.
type Handler struct {
	backendURL string
	client     *http.Client
	hub        *hub.Hub // nil disables the live feed
}

// NewHandler creates a relay handler for the backend at backendURL. A
// nil http.Client gets a default with a 30s timeout.
func NewHandler(backendURL string, client *http.Client, h *hub.Hub) *Handler {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Handler{
		backendURL: strings.TrimRight(backendURL, "/"),
		client:     client,
		hub:        h,
	}
}

// backendResponse is the raw result of one forwarded request.
type backendResponse struct {
	status      int
	contentType string
	body        []byte
}

// Predict implements POST /api/predict.
//
// Contract:
//   - missing or unreadable "file" field -> 400 {"error":"No file uploaded"}
//   - backend unreachable or non-2xx    -> 500 {"error":"Backend error"}
//   - backend 2xx with JSON body        -> 200, backend body verbatim
//   - backend 2xx with non-JSON body    -> backend status and body verbatim
func (h *Handler) Predict(c *gin.Context) {
	filename, payload, ok := readUpload(c)
	if !ok {
		return
	}

	resp, ok := h.forwardOrFail(c, filename, payload)
	if !ok {
		return
	}

	if isJSON(resp.contentType) {
		c.Data(http.StatusOK, resp.contentType, resp.body)
		h.publish(filename, payload, resp.body)
		return
	}
	c.Data(resp.status, resp.contentType, resp.body)
}

// Annotate implements POST /api/annotate: same upload and forwarding
// as Predict, but instead of relaying the JSON it burns the filtered
// detections into the uploaded image and responds with a PNG.
func (h *Handler) Annotate(c *gin.Context) {
	filename, payload, ok := readUpload(c)
	if !ok {
		return
	}

	img, _, err := image.Decode(bytes.NewReader(payload))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid image"})
		return
	}

	resp, ok := h.forwardOrFail(c, filename, payload)
	if !ok {
		return
	}

	var parsed vision.PredictResponse
	if !isJSON(resp.contentType) || json.Unmarshal(resp.body, &parsed) != nil {
		log.Warn().Str("contentType", resp.contentType).Msg("backend response is not a prediction payload")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Backend error"})
		return
	}

	rendered, err := encodeAnnotated(img, vision.Filter(parsed.Predictions.Predictions))
	if err != nil {
		log.Error().Err(err).Msg("encode annotated image")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Backend error"})
		return
	}
	c.Data(http.StatusOK, "image/png", rendered)
}

// Health implements GET /healthz.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// readUpload pulls the "file" field out of the multipart form. On
// failure it writes the 400 error shape and returns ok=false.
func readUpload(c *gin.Context) (string, []byte, bool) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return "", nil, false
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return "", nil, false
	}
	defer file.Close()

	payload, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return "", nil, false
	}
	return fileHeader.Filename, payload, true
}

// forwardOrFail relays the upload to the backend. Transport failures
// and backend non-success both collapse into the generic 500 shape;
// the distinguishing detail goes to the log only.
func (h *Handler) forwardOrFail(c *gin.Context, filename string, payload []byte) (backendResponse, bool) {
	resp, err := h.forward(c.Request.Context(), filename, payload)
	if err != nil {
		log.Error().Err(err).Str("file", filename).Msg("backend request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Backend error"})
		return backendResponse{}, false
	}

	if resp.status < 200 || resp.status >= 300 {
		log.Warn().Int("status", resp.status).Str("file", filename).
			Str("body", string(resp.body)).Msg("backend returned non-success")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Backend error"})
		return backendResponse{}, false
	}
	return resp, true
}

// forward re-wraps the upload as a fresh multipart request to the
// backend's prediction path and returns the raw response.
func (h *Handler) forward(ctx context.Context, filename string, payload []byte) (backendResponse, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return backendResponse{}, err
	}
	if _, err = io.Copy(part, bytes.NewReader(payload)); err != nil {
		return backendResponse{}, err
	}
	if err = writer.Close(); err != nil {
		return backendResponse{}, err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, h.backendURL+backendPredictPath, body)
	if err != nil {
		return backendResponse{}, err
	}
	request.Header.Set("Content-Type", writer.FormDataContentType())

	response, err := h.client.Do(request)
	if err != nil {
		return backendResponse{}, err
	}
	defer response.Body.Close()

	respBody, err := io.ReadAll(response.Body)
	if err != nil {
		return backendResponse{}, err
	}

	return backendResponse{
		status:      response.StatusCode,
		contentType: response.Header.Get("Content-Type"),
		body:        respBody,
	}, nil
}

// publish decodes a copy of the relayed payload and pushes it to live
// viewers. The verbatim response to the uploader is unaffected by any
// failure here.
func (h *Handler) publish(filename string, upload, response []byte) {
	if h.hub == nil {
		return
	}

	var parsed vision.PredictResponse
	if err := json.Unmarshal(response, &parsed); err != nil {
		log.Warn().Err(err).Msg("backend JSON does not match prediction schema, skipping broadcast")
		return
	}

	width, height := 0, 0
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(upload)); err == nil {
		width, height = cfg.Width, cfg.Height
	}

	h.hub.Broadcast(hub.ResultEvent{
		Filename:      filename,
		NaturalWidth:  width,
		NaturalHeight: height,
		Predictions:   parsed.Predictions.Predictions,
	})
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json"
}
