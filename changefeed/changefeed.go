// Package changefeed streams htmlguard.Change events to connected
// websocket clients, grounded on the same upgrade-and-push loop
// go-pages' dev-mode live-reload handler uses for pushed re-renders.
package changefeed

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/htmlguard/htmlguard"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// wireChange is the JSON shape pushed to subscribers for every
// htmlguard.Change.
type wireChange struct {
	Kind      string `json:"kind"`
	Element   string `json:"element,omitempty"`
	Attribute string `json:"attribute,omitempty"`
	Detail    string `json:"detail,omitempty"`
}

// Feed is a htmlguard.ChangeListener that fans every change out to its
// currently connected websocket subscribers. Construct one with NewFeed;
// the zero value has no subscriber map and no logger and is not ready to
// use. Feed is safe for concurrent use by multiple sanitize calls and
// multiple subscribers.
type Feed struct {
	logger *slog.Logger

	mu   sync.Mutex
	subs map[*subscriber]struct{}
}

type subscriber struct {
	conn *websocket.Conn
	send chan wireChange
}

// NewFeed constructs a Feed. A nil logger falls back to slog.Default().
func NewFeed(logger *slog.Logger) *Feed {
	if logger == nil {
		logger = slog.Default()
	}
	return &Feed{logger: logger, subs: make(map[*subscriber]struct{})}
}

// OnChange implements htmlguard.ChangeListener, ignoring ctx: changefeed
// broadcasts to every connected subscriber rather than routing per-caller.
func (f *Feed) OnChange(_ any, c htmlguard.Change) {
	wc := wireChange{Kind: c.Kind.String(), Element: c.Element, Attribute: c.Attribute, Detail: c.Detail}

	f.mu.Lock()
	defer f.mu.Unlock()
	for s := range f.subs {
		select {
		case s.send <- wc:
		default:
			f.logger.Warn("changefeed: subscriber too slow, dropping change event")
		}
	}
}

// ServeHTTP upgrades the request to a websocket and streams every
// subsequent Change to it as newline-delimited JSON objects until the
// connection closes.
func (f *Feed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.logger.Warn("changefeed: upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	s := &subscriber{conn: conn, send: make(chan wireChange, 64)}
	f.addSubscriber(s)
	defer f.removeSubscriber(s)

	// A subscriber never sends anything meaningful; reading is only here to
	// notice the client going away (mirrors the teacher's read-goroutine
	// pattern for detecting a closed websocket).
	closed := make(chan struct{})
	go func() {
		for {
			if _, _, err := conn.NextReader(); err != nil {
				close(closed)
				return
			}
		}
	}()

	for {
		select {
		case wc := <-s.send:
			if err := f.writeOne(conn, wc); err != nil {
				return
			}
		case <-closed:
			return
		}
	}
}

func (f *Feed) writeOne(conn *websocket.Conn, wc wireChange) error {
	wtr, err := conn.NextWriter(websocket.TextMessage)
	if err != nil {
		return err
	}
	if err := json.NewEncoder(wtr).Encode(wc); err != nil {
		wtr.Close()
		return err
	}
	return wtr.Close()
}

func (f *Feed) addSubscriber(s *subscriber) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subs[s] = struct{}{}
}

func (f *Feed) removeSubscriber(s *subscriber) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.subs, s)
}
