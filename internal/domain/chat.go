package domain

import "time"

// Session represents a chat thread. Its ID doubles as the thread identifier
// for the segment cache.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Message represents a chat message
type Message struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Role      string    `json:"role"` // user, assistant
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatRequest is the request to send a chat message
type ChatRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Message   string `json:"message" binding:"required"`
	Context   string `json:"context,omitempty"`
}

// ChatResponse is the response from a chat message
type ChatResponse struct {
	SessionID string   `json:"session_id"`
	Answer    string   `json:"answer"`
	Caveats   []string `json:"caveats,omitempty"`
	Status    string   `json:"status"`
}

// Stats holds service-level counters for the admin dashboard
type Stats struct {
	TotalChats     int    `json:"total_chats"`
	TotalTopics    int    `json:"total_topics"`
	MappingVersion string `json:"mapping_version"`
}
