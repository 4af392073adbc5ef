// Package viewer is the terminal front end: it uploads a photo
// through the relay, renders the returned detections over the image,
// and drives the hover/select/sort/view-mode interactions.
package viewer

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/disintegration/imaging"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/aacsoares/product-damage-detection-ui/internal/annotate"
	"github.com/aacsoares/product-damage-detection-ui/internal/hub"
	"github.com/aacsoares/product-damage-detection-ui/internal/session"
	"github.com/aacsoares/product-damage-detection-ui/internal/vision"
)

// Messages delivered through the bubbletea loop.
type (
	// openFileMsg asks the model to start uploading a photo.
	openFileMsg struct{ path string }

	// previewMsg carries the locally decoded photo for display while
	// the prediction round trip is still in flight.
	previewMsg struct {
		token uint64
		img   image.Image
		err   error
	}

	// predictMsg carries the relay's answer for one upload token.
	predictMsg struct {
		token       uint64
		predictions []vision.Prediction
		err         error
	}

	feedConnectedMsg struct{ conn *websocket.Conn }
	feedEventMsg     struct{ event hub.ResultEvent }
	feedClosedMsg    struct{ err error }
	feedRetryMsg     struct{}

	snapshotSavedMsg struct {
		path string
		err  error
	}
)

// Model is the top-level bubbletea model for the detection viewer.
type Model struct {
	serverURL string
	client    *vision.Client
	state     *session.State
	keys      KeyMap
	theme     Theme
	logger    zerolog.Logger

	// Decoded current photo; nil before the first upload and for
	// live-feed results (which carry no pixels).
	img image.Image

	// Terminal dimensions (set by WindowSizeMsg).
	width  int
	height int

	// File-path prompt, active after the open key.
	pathInput textinput.Model
	prompting bool

	conn *websocket.Conn
	note string

	startFile string
}

// New creates a viewer talking to the relay at serverURL. When
// startFile is non-empty it is uploaded immediately on startup.
func New(serverURL, startFile string, logger zerolog.Logger) (Model, error) {
	client, err := vision.NewClient(serverURL, nil)
	if err != nil {
		return Model{}, fmt.Errorf("create relay client: %w", err)
	}

	input := textinput.New()
	input.Placeholder = "path/to/photo.jpg"
	input.CharLimit = 512

	return Model{
		serverURL: serverURL,
		client:    client,
		state:     session.New(),
		keys:      defaultKeyMap(),
		theme:     defaultTheme(),
		logger:    logger,
		pathInput: input,
		startFile: startFile,
	}, nil
}

// State exposes the session state for tests.
func (m Model) State() *session.State {
	return m.state
}

// Init implements tea.Model: connect the live feed and, when a start
// file was given, kick off its upload.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{connectFeed(m.serverURL)}
	if m.startFile != "" {
		path := m.startFile
		cmds = append(cmds, func() tea.Msg { return openFileMsg{path: path} })
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = message.Width, message.Height
		m.pathInput.Width = message.Width - 10
		return m, nil

	case tea.KeyMsg:
		if m.prompting {
			return m.updatePrompt(message)
		}
		return m.updateKeys(message)

	case openFileMsg:
		cmd := m.submitUpload(message.path)
		return m, cmd

	case previewMsg:
		if message.err != nil {
			m.logger.Warn().Err(message.err).Msg("preview decode failed")
			return m, nil
		}
		bounds := message.img.Bounds()
		if m.state.SetNaturalSize(message.token, bounds.Dx(), bounds.Dy()) {
			// Replacing the previous image releases it; geometry is
			// recomputed on the next render now that the natural size
			// is known.
			m.img = message.img
		}
		return m, nil

	case predictMsg:
		if message.err != nil {
			m.logger.Error().Err(message.err).Msg("prediction request failed")
			m.state.FailUpload(message.token, "Prediction failed")
			return m, nil
		}
		m.state.CompleteUpload(message.token, message.predictions)
		return m, nil

	case feedConnectedMsg:
		m.conn = message.conn
		m.note = "live feed connected"
		return m, listenFeed(message.conn)

	case feedEventMsg:
		m.applyFeedEvent(message.event)
		return m, listenFeed(m.conn)

	case feedClosedMsg:
		if message.err != nil {
			m.logger.Warn().Err(message.err).Msg("live feed closed")
		}
		m.conn = nil
		m.note = "live feed disconnected"
		return m, reconnectFeed()

	case feedRetryMsg:
		return m, connectFeed(m.serverURL)

	case snapshotSavedMsg:
		if message.err != nil {
			m.note = "snapshot failed: " + message.err.Error()
		} else {
			m.note = "saved " + message.path
		}
		return m, nil
	}

	return m, nil
}

func (m Model) updateKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(message, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(message, m.keys.Down):
		m.moveHover(1)

	case key.Matches(message, m.keys.Up):
		m.moveHover(-1)

	case key.Matches(message, m.keys.ClearHover):
		m.state.Unhover()

	case key.Matches(message, m.keys.Select):
		if m.state.Hovered != session.None {
			m.state.ToggleSelect(m.state.Hovered)
		}

	case key.Matches(message, m.keys.SortConfidence):
		m.state.SetSortMode(session.SortByConfidence)

	case key.Matches(message, m.keys.SortName):
		m.state.SetSortMode(session.SortByName)

	case key.Matches(message, m.keys.ViewToggle):
		m.state.ToggleViewMode()

	case key.Matches(message, m.keys.Open):
		m.prompting = true
		m.pathInput.SetValue("")
		m.pathInput.Focus()

	case key.Matches(message, m.keys.Snapshot):
		cmd := m.saveSnapshot()
		return m, cmd
	}
	return m, nil
}

func (m Model) updatePrompt(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch message.String() {
	case "esc":
		m.prompting = false
		m.pathInput.Blur()
		return m, nil
	case "enter":
		path := strings.TrimSpace(m.pathInput.Value())
		m.prompting = false
		m.pathInput.Blur()
		if path == "" {
			return m, nil
		}
		cmd := m.submitUpload(path)
		return m, cmd
	}

	var cmd tea.Cmd
	m.pathInput, cmd = m.pathInput.Update(message)
	return m, cmd
}

// submitUpload resets prior error/result state, validates the file
// type, and starts the preview decode and prediction round trip. An
// unsupported extension never reaches the network and never enters
// the loading state.
func (m *Model) submitUpload(path string) tea.Cmd {
	name := filepath.Base(path)
	if !vision.SupportedFile(name) {
		m.state.Reject("Unsupported file type: use .png, .jpg or .jpeg")
		m.img = nil
		return nil
	}

	token := m.state.BeginUpload(session.Image{Name: name})
	m.img = nil
	m.note = ""

	return tea.Batch(decodePreview(path, token), m.predict(path, name, token))
}

// moveHover moves the hover cursor through the DISPLAYED (sorted)
// order while storing the original-array index, mirroring a pointer
// moving across list rows.
func (m *Model) moveHover(delta int) {
	order := m.state.SortedIndices()
	if len(order) == 0 {
		return
	}

	row := m.state.DisplayedRow(m.state.Hovered)
	if row == -1 {
		if delta >= 0 {
			row = 0
		} else {
			row = len(order) - 1
		}
	} else {
		row += delta
		if row < 0 {
			row = 0
		}
		if row >= len(order) {
			row = len(order) - 1
		}
	}
	m.state.Hover(order[row])
}

// applyFeedEvent installs a result broadcast by the relay for someone
// else's upload. The echo of this viewer's own upload is skipped: the
// HTTP response already delivered it, and reapplying would drop the
// hover/selection.
func (m *Model) applyFeedEvent(event hub.ResultEvent) {
	if m.state.Loading || event.Filename == m.state.Image.Name {
		return
	}

	token := m.state.BeginUpload(session.Image{
		Name:          event.Filename,
		NaturalWidth:  event.NaturalWidth,
		NaturalHeight: event.NaturalHeight,
	})
	m.state.CompleteUpload(token, event.Predictions)
	m.img = nil
	m.note = "live result: " + event.Filename
}

func decodePreview(path string, token uint64) tea.Cmd {
	return func() tea.Msg {
		img, err := imaging.Open(path)
		return previewMsg{token: token, img: img, err: err}
	}
}

func (m *Model) predict(path, name string, token uint64) tea.Cmd {
	client := m.client
	logger := m.logger
	return func() tea.Msg {
		file, err := os.Open(path)
		if err != nil {
			return predictMsg{token: token, err: err}
		}
		defer file.Close()

		resp, err := client.Predict(context.Background(), name, file)
		if err != nil {
			return predictMsg{token: token, err: err}
		}

		logger.Info().Str("file", name).
			Int("predictions", len(resp.Predictions.Predictions)).
			Msg("prediction received")
		return predictMsg{token: token, predictions: resp.Predictions.Predictions}
	}
}

// saveSnapshot writes an annotated copy of the current photo next to
// the working directory.
func (m *Model) saveSnapshot() tea.Cmd {
	if m.img == nil || len(m.state.Predictions) == 0 {
		m.note = "nothing to snapshot"
		return nil
	}

	img := m.img
	predictions := m.state.Predictions
	name := m.state.Image.Name
	return func() tea.Msg {
		rendered := annotate.Render(img, predictions)
		base := strings.TrimSuffix(name, filepath.Ext(name))
		path := base + ".annotated.png"
		if err := imaging.Save(rendered, path); err != nil {
			return snapshotSavedMsg{err: err}
		}
		return snapshotSavedMsg{path: path}
	}
}
