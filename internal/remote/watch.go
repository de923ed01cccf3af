package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/pfassina/scribe/internal/note"
)

const reconnectDelay = 5 * time.Second

// Change event types pushed by the authority.
const (
	EventCreated       = "note_created"
	EventUpdated       = "note_updated"
	EventDeleted       = "note_deleted"
	EventFolderChanged = "folder_changed"
)

// Event is one change notification from the authority's feed.
type Event struct {
	Type string         `json:"type"`
	Note *note.Location `json:"note,omitempty"`
}

// WatchPath is the websocket endpoint of the change feed.
const WatchPath = "/ws"

// Watch subscribes to the authority's change feed and calls onEvent for
// every message until ctx is cancelled. Dropped connections are redialed,
// at most once per reconnect delay.
func (c *Client) Watch(ctx context.Context, onEvent func(Event)) error {
	return c.watch(ctx, rate.NewLimiter(rate.Every(reconnectDelay), 1), onEvent)
}

func (c *Client) watch(ctx context.Context, limiter *rate.Limiter, onEvent func(Event)) error {
	for {
		if err := limiter.Wait(ctx); err != nil {
			return ctx.Err()
		}
		err := c.watchOnce(ctx, onEvent)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.Warn("change feed lost, reconnecting", "err", err, "delay", reconnectDelay)
	}
}

func (c *Client) watchURL() string {
	u := *c.base
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path += WatchPath
	return u.String()
}

func (c *Client) watchOnce(ctx context.Context, onEvent func(Event)) error {
	header := http.Header{}
	if c.token != "" {
		header.Set(TokenHeader, c.token)
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.watchURL(), header)
	if err != nil {
		return err
	}
	defer conn.Close()

	c.log.Info("change feed connected", "url", c.watchURL())

	// Unblock ReadMessage when the caller gives up.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return errors.New("closed by server")
			}
			return err
		}

		var ev Event
		if err := json.Unmarshal(raw, &ev); err != nil {
			c.log.Debug("skipping change event", "err", err)
			continue
		}
		onEvent(ev)
	}
}
