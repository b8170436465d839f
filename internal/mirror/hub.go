// Package mirror republishes rendered clock frames to remote viewers over
// HTTP and websockets.
package mirror

import (
	"sync"
	"time"

	"github.com/messerjon/TetrisClock/internal/anim"
	"github.com/messerjon/TetrisClock/internal/buildinfo"
	"github.com/messerjon/TetrisClock/internal/clocksync"

	"github.com/vmihailenco/msgpack/v5"
)

// Cell is the wire form of anim.Cell.
type Cell struct {
	Slot  int8  `json:"slot" msgpack:"s"`
	Col   uint8 `json:"col" msgpack:"c"`
	Row   uint8 `json:"row" msgpack:"r"`
	Color uint8 `json:"color" msgpack:"k"`
	Kind  uint8 `json:"kind" msgpack:"t"`
}

// Frame is the wire form of one rendered frame.
type Frame struct {
	Seq      uint64    `json:"seq" msgpack:"seq"`
	Time     time.Time `json:"time" msgpack:"time"`
	Cells    []Cell    `json:"cells" msgpack:"cells"`
	Colon    bool      `json:"colon" msgpack:"colon"`
	Meridiem string    `json:"meridiem,omitempty" msgpack:"meridiem,omitempty"`
	Degraded bool      `json:"degraded" msgpack:"degraded"`
}

// Status is the clock state served on /api/status.
type Status struct {
	Build   buildinfo.Info     `json:"build" msgpack:"build"`
	Display string             `json:"display" msgpack:"display"`
	Digits  [anim.Slots]int    `json:"digits" msgpack:"digits"`
	Local   time.Time          `json:"local" msgpack:"local"`
	Frames  uint64             `json:"frames" msgpack:"frames"`
	Sync    clocksync.Snapshot `json:"sync" msgpack:"sync"`
	Viewers int                `json:"viewers" msgpack:"viewers"`
	Dropped uint64             `json:"dropped" msgpack:"dropped"`
}

// subscriberBuffer is how many frames a slow viewer may lag before frames
// are dropped for it.
const subscriberBuffer = 4

// Hub keeps the latest frame and fans it out to subscribers. Publish never
// blocks the render loop.
type Hub struct {
	mu      sync.RWMutex
	frame   Frame
	encoded []byte
	status  Status
	subs    map[chan []byte]struct{}
	dropped uint64
}

func NewHub() *Hub {
	return &Hub{subs: make(map[chan []byte]struct{})}
}

// Publish records fr and st as the latest state and queues the encoded
// frame for every subscriber that has room.
func (h *Hub) Publish(fr anim.Frame, local time.Time, st Status) error {
	wire := Frame{
		Seq:      fr.Seq,
		Time:     local,
		Cells:    make([]Cell, len(fr.Cells)),
		Colon:    fr.Colon,
		Meridiem: fr.Meridiem.String(),
		Degraded: fr.Degraded,
	}
	for i, c := range fr.Cells {
		wire.Cells[i] = Cell{
			Slot:  int8(c.Slot),
			Col:   uint8(c.Col),
			Row:   uint8(c.Row),
			Color: c.Color,
			Kind:  uint8(c.Kind),
		}
	}
	b, err := msgpack.Marshal(&wire)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.frame = wire
	h.encoded = b
	h.status = st
	for ch := range h.subs {
		select {
		case ch <- b:
		default:
			h.dropped++
		}
	}
	return nil
}

// Subscribe registers a viewer. The returned cancel func must be called
// once the viewer goes away.
func (h *Hub) Subscribe() (<-chan []byte, func()) {
	ch := make(chan []byte, subscriberBuffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	if h.encoded != nil {
		ch <- h.encoded
	}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
		})
	}
}

// Latest returns the last published frame and its msgpack encoding. ok is
// false until the first Publish.
func (h *Hub) Latest() (Frame, []byte, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.frame, h.encoded, h.encoded != nil
}

// Status returns the last published status with live viewer counters.
func (h *Hub) Status() Status {
	h.mu.RLock()
	defer h.mu.RUnlock()
	st := h.status
	st.Viewers = len(h.subs)
	st.Dropped = h.dropped
	return st
}
