package sse

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
)

type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type RequestCreatedEvent struct {
	RequestID   uuid.UUID `json:"request_id"`
	TeamID      uuid.UUID `json:"team_id"`
	RequesterID uuid.UUID `json:"requester_id"`
}

type RequestResolvedEvent struct {
	RequestID  uuid.UUID `json:"request_id"`
	TeamID     uuid.UUID `json:"team_id"`
	Status     string    `json:"status"`
	ResolvedBy uuid.UUID `json:"resolved_by"`
}

type MemberLeftEvent struct {
	TeamID uuid.UUID `json:"team_id"`
	UserID uuid.UUID `json:"user_id"`
}

type TeamDeletedEvent struct {
	TeamID  uuid.UUID `json:"team_id"`
	EventID uuid.UUID `json:"event_id"`
}

type Client struct {
	ID     string
	UserID uuid.UUID
	Teams  map[uuid.UUID]bool
	Send   chan []byte
}

type Hub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan *TeamMessage
	mu         sync.RWMutex
}

type TeamMessage struct {
	TeamID uuid.UUID
	Event  Event
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *TeamMessage, 256),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID]; ok {
				delete(h.clients, client.ID)
				close(client.Send)
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			data, _ := json.Marshal(msg.Event)
			for _, client := range h.clients {
				if client.Teams[msg.TeamID] {
					select {
					case client.Send <- data:
					default:
						// Client buffer full, skip
					}
				}
			}
			h.mu.RUnlock()
		}
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

func (h *Hub) SubscribeToTeam(clientID string, teamID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if client, ok := h.clients[clientID]; ok {
		client.Teams[teamID] = true
	}
}

func (h *Hub) UnsubscribeFromTeam(clientID string, teamID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if client, ok := h.clients[clientID]; ok {
		delete(client.Teams, teamID)
	}
}

func (h *Hub) BroadcastRequestCreated(teamID, requestID, requesterID uuid.UUID) {
	h.broadcast <- &TeamMessage{
		TeamID: teamID,
		Event: Event{
			Type: "request_created",
			Data: RequestCreatedEvent{
				RequestID:   requestID,
				TeamID:      teamID,
				RequesterID: requesterID,
			},
		},
	}
}

func (h *Hub) BroadcastRequestResolved(teamID, requestID, resolvedBy uuid.UUID, status string) {
	h.broadcast <- &TeamMessage{
		TeamID: teamID,
		Event: Event{
			Type: "request_resolved",
			Data: RequestResolvedEvent{
				RequestID:  requestID,
				TeamID:     teamID,
				Status:     status,
				ResolvedBy: resolvedBy,
			},
		},
	}
}

func (h *Hub) BroadcastMemberLeft(teamID, userID uuid.UUID) {
	h.broadcast <- &TeamMessage{
		TeamID: teamID,
		Event: Event{
			Type: "member_left",
			Data: MemberLeftEvent{
				TeamID: teamID,
				UserID: userID,
			},
		},
	}
}

func (h *Hub) BroadcastTeamDeleted(teamID, eventID uuid.UUID) {
	h.broadcast <- &TeamMessage{
		TeamID: teamID,
		Event: Event{
			Type: "team_deleted",
			Data: TeamDeletedEvent{
				TeamID:  teamID,
				EventID: eventID,
			},
		},
	}
}
