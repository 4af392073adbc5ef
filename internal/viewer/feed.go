package viewer

import (
	"fmt"
	"net/url"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gorilla/websocket"

	"github.com/aacsoares/product-damage-detection-ui/internal/hub"
)

// reconnectDelay spaces redial attempts after the feed drops, so a
// relay restart does not turn into a dial loop.
const reconnectDelay = 5 * time.Second

// connectFeed dials the relay's live result feed.
func connectFeed(serverURL string) tea.Cmd {
	return func() tea.Msg {
		wsURL, err := feedURL(serverURL)
		if err != nil {
			return feedClosedMsg{err: err}
		}

		conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
		if err != nil {
			return feedClosedMsg{err: err}
		}
		return feedConnectedMsg{conn: conn}
	}
}

// reconnectFeed schedules the next dial attempt after a dropped feed.
func reconnectFeed() tea.Cmd {
	return tea.Tick(reconnectDelay, func(time.Time) tea.Msg {
		return feedRetryMsg{}
	})
}

// listenFeed blocks on the next feed event. The model chains a new
// listen command after each delivered event.
func listenFeed(conn *websocket.Conn) tea.Cmd {
	if conn == nil {
		return nil
	}
	return func() tea.Msg {
		var event hub.ResultEvent
		if err := conn.ReadJSON(&event); err != nil {
			return feedClosedMsg{err: err}
		}
		return feedEventMsg{event: event}
	}
}

// feedURL converts the relay base URL to its websocket feed address.
func feedURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid server url: %w", err)
	}

	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	return u.JoinPath("/api/view").String(), nil
}
