package hub

import (
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Event types pushed to subscribers.
const (
	EventMessageCreated = "message.created"
	EventMessageUpdated = "message.updated"
	EventMessageDeleted = "message.deleted"
	EventUserBanned     = "user.banned"
	EventUserUnbanned   = "user.unbanned"
	EventUserPromoted   = "user.promoted"
	EventUserDemoted    = "user.demoted"
	EventChannelCreated = "channel.created"
	EventChannelDeleted = "channel.deleted"
	EventRoomDeleted    = "room.deleted"
)

// Event represents a real-time event to be sent to clients.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Client is the outbound queue of one subscriber (an SSE or WebSocket stream).
type Client chan []byte

// NewClient returns a client with a small buffer so that bursts do not drop events.
func NewClient() Client {
	return make(Client, 16)
}

// RoomTopic is the topic of messages posted directly in a room and of its
// moderation events.
func RoomTopic(roomID uint) string {
	return fmt.Sprintf("room:%d", roomID)
}

// ChannelTopic is the topic of messages posted in a channel.
func ChannelTopic(channelID uint) string {
	return fmt.Sprintf("channel:%d", channelID)
}

// Hub manages all topics and their clients.
type Hub struct {
	topics map[string]map[Client]bool
	mu     sync.RWMutex
}

// GlobalHub is the singleton instance of our Hub.
var GlobalHub = NewHub()

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		topics: make(map[string]map[Client]bool),
	}
}

// Subscribe adds a new client to a topic.
func (h *Hub) Subscribe(topic string, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.topics[topic]; !ok {
		h.topics[topic] = make(map[Client]bool)
	}
	h.topics[topic][client] = true
}

// Unsubscribe removes a client from a topic and closes it.
func (h *Hub) Unsubscribe(topic string, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.topics[topic]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			close(client) // Signals the stream handler to stop.
			if len(clients) == 0 {
				delete(h.topics, topic)
			}
		}
	}
}

// Subscribers returns the number of clients listening on a topic.
func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}

// Broadcast sends an event to all clients of a topic.
func (h *Hub) Broadcast(topic string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients, ok := h.topics[topic]
	if !ok {
		return
	}

	messageBytes, err := json.Marshal(event)
	if err != nil {
		zap.L().Warn("hub: marshal event", zap.String("type", event.Type), zap.Error(err))
		return
	}

	for client := range clients {
		// Non-blocking so a slow client cannot stall the publisher.
		select {
		case client <- messageBytes:
		default:
			zap.L().Debug("hub: dropped event for slow client", zap.String("topic", topic))
		}
	}
}
