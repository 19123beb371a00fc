package events

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/nathoo/spellcore/types"
)

const writeWait = 2 * time.Second

type wireEvent struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data,omitempty"`
}

type observer struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

// Broadcaster streams notifications as JSON text frames to every
// connected websocket observer. Observers are read-only; whatever they
// send is discarded.
type Broadcaster struct {
	log      *zap.Logger
	upgrader websocket.Upgrader

	mu        sync.Mutex
	observers map[*observer]struct{}
}

// NewBroadcaster returns a hub with no observers.
func NewBroadcaster(log *zap.Logger) *Broadcaster {
	if log == nil {
		log = zap.NewNop()
	}
	return &Broadcaster{
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		observers: map[*observer]struct{}{},
	}
}

// ServeHTTP upgrades the request and registers the connection.
func (b *Broadcaster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		b.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	obs := &observer{conn: conn}
	b.mu.Lock()
	b.observers[obs] = struct{}{}
	b.mu.Unlock()
	b.log.Info("observer connected", zap.String("remote", r.RemoteAddr))

	go b.readLoop(obs)
}

func (b *Broadcaster) readLoop(obs *observer) {
	defer b.drop(obs)
	for {
		if _, _, err := obs.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (b *Broadcaster) drop(obs *observer) {
	b.mu.Lock()
	_, ok := b.observers[obs]
	delete(b.observers, obs)
	b.mu.Unlock()
	if ok {
		obs.conn.Close()
	}
}

// Observers is the number of connected observers.
func (b *Broadcaster) Observers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.observers)
}

// Emit sends the event to every observer. A failed write disconnects
// that observer.
func (b *Broadcaster) Emit(e types.Event) {
	data, err := json.Marshal(wireEvent{Type: e.Type, Data: e.Data})
	if err != nil {
		b.log.Error("failed to marshal event", zap.String("event", e.Type), zap.Error(err))
		return
	}

	b.mu.Lock()
	subs := make([]*observer, 0, len(b.observers))
	for obs := range b.observers {
		subs = append(subs, obs)
	}
	b.mu.Unlock()

	for _, obs := range subs {
		obs.mu.Lock()
		obs.conn.SetWriteDeadline(time.Now().Add(writeWait))
		err := obs.conn.WriteMessage(websocket.TextMessage, data)
		obs.mu.Unlock()
		if err != nil {
			b.log.Debug("observer write failed", zap.Error(err))
			b.drop(obs)
		}
	}
}

// Close disconnects every observer.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	subs := make([]*observer, 0, len(b.observers))
	for obs := range b.observers {
		subs = append(subs, obs)
	}
	b.observers = map[*observer]struct{}{}
	b.mu.Unlock()
	for _, obs := range subs {
		obs.mu.Lock()
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "shutdown")
		obs.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		obs.mu.Unlock()
		obs.conn.Close()
	}
}
