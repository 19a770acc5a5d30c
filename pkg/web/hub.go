/*-
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package web

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/carverauto/pemfcradar/pkg/dashboard"
	"github.com/carverauto/pemfcradar/pkg/logger"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufferSize = 16
)

// Message is one frame pushed to dashboard subscribers.
type Message struct {
	Type      string              `json:"type"`
	DeviceID  int64               `json:"deviceId"`
	Timestamp time.Time           `json:"timestamp"`
	Data      *dashboard.Snapshot `json:"data,omitempty"`
}

type subscriber struct {
	id       string
	deviceID int64
	conn     *websocket.Conn
	send     chan []byte
	once     sync.Once
}

func (s *subscriber) close() {
	s.once.Do(func() { close(s.send) })
}

// Hub fans dashboard snapshots out to the websocket subscribers of each
// device.
type Hub struct {
	log      logger.Logger
	upgrader websocket.Upgrader

	mu     sync.RWMutex
	subs   map[int64]map[string]*subscriber
	closed bool
}

func NewHub(log logger.Logger) *Hub {
	return &Hub{
		log: logger.OrNop(log).With("component", "ws-hub"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		subs: make(map[int64]map[string]*subscriber),
	}
}

// Broadcast pushes snap to every subscriber of deviceID. Subscribers whose
// buffer is full skip this snapshot.
func (h *Hub) Broadcast(deviceID int64, snap *dashboard.Snapshot) {
	payload, err := encode(deviceID, snap)
	if err != nil {
		h.log.Errorf("Failed to encode snapshot for device %d: %v", deviceID, err)

		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, sub := range h.subs[deviceID] {
		select {
		case sub.send <- payload:
		default:
			h.log.Warnf("Subscriber %s of device %d is slow, dropping snapshot", sub.id, deviceID)
		}
	}
}

// Subscribers reports the number of live subscribers of deviceID.
func (h *Hub) Subscribers(deviceID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.subs[deviceID])
}

// Serve upgrades the request and streams snapshots of deviceID until the
// peer goes away or the hub is closed. initial, when set, is sent first.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, deviceID int64, initial *dashboard.Snapshot) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	sub := &subscriber{
		id:       uuid.New().String(),
		deviceID: deviceID,
		conn:     conn,
		send:     make(chan []byte, sendBufferSize),
	}

	if !h.add(sub) {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"), time.Now().Add(writeWait))

		return conn.Close()
	}

	h.log.Infof("Subscriber %s attached to device %d", sub.id, deviceID)

	if initial != nil {
		if payload, err := encode(deviceID, initial); err == nil {
			h.deliver(sub, payload)
		}
	}

	done := make(chan struct{})

	go func() {
		defer close(done)

		h.writePump(sub)
	}()

	h.readPump(sub)
	h.remove(sub)
	<-done

	h.log.Infof("Subscriber %s detached from device %d", sub.id, deviceID)

	return nil
}

// Close disconnects every subscriber and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true

	for id, subs := range h.subs {
		for _, sub := range subs {
			sub.close()
		}

		delete(h.subs, id)
	}
}

func (h *Hub) add(sub *subscriber) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false
	}

	if h.subs[sub.deviceID] == nil {
		h.subs[sub.deviceID] = make(map[string]*subscriber)
	}

	h.subs[sub.deviceID][sub.id] = sub

	return true
}

// deliver enqueues payload for one subscriber still registered with the hub.
func (h *Hub) deliver(sub *subscriber, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if _, ok := h.subs[sub.deviceID][sub.id]; !ok {
		return
	}

	select {
	case sub.send <- payload:
	default:
	}
}

func (h *Hub) remove(sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if subs, ok := h.subs[sub.deviceID]; ok {
		delete(subs, sub.id)

		if len(subs) == 0 {
			delete(h.subs, sub.deviceID)
		}
	}

	sub.close()
}

// readPump only services control frames; the page never sends data.
func (h *Hub) readPump(sub *subscriber) {
	sub.conn.SetReadLimit(maxMessageSize)
	_ = sub.conn.SetReadDeadline(time.Now().Add(pongWait))
	sub.conn.SetPongHandler(func(string) error {
		return sub.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Warnf("Subscriber %s read error: %v", sub.id, err)
			}

			return
		}
	}
}

func (h *Hub) writePump(sub *subscriber) {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		if err := sub.conn.Close(); err != nil {
			h.log.Debugf("Closing subscriber %s: %v", sub.id, err)
		}
	}()

	for {
		select {
		case payload, ok := <-sub.send:
			_ = sub.conn.SetWriteDeadline(time.Now().Add(writeWait))

			if !ok {
				_ = sub.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))

				return
			}

			if err := sub.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				h.log.Warnf("Subscriber %s write failed: %v", sub.id, err)

				return
			}
		case <-ticker.C:
			_ = sub.conn.SetWriteDeadline(time.Now().Add(writeWait))

			if err := sub.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func encode(deviceID int64, snap *dashboard.Snapshot) ([]byte, error) {
	return json.Marshal(Message{
		Type:      "snapshot",
		DeviceID:  deviceID,
		Timestamp: time.Now(),
		Data:      snap,
	})
}
