package websocket

import (
	"net/url"
	"strings"
	"time"

	"github.com/coder/websocket"

	"github.com/conneroisu/collegedash/internal/navigation"
)

// Client represents a WebSocket client connection
type Client struct {
	conn         *websocket.Conn
	session      string
	send         chan []byte
	lastActivity time.Time
}

// UpdateMessage represents a message sent to the browser
type UpdateMessage struct {
	Type      string    `json:"type"`
	From      string    `json:"from,omitempty"`
	To        string    `json:"to,omitempty"`
	Cause     string    `json:"cause,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Message types
const (
	MessageNavigated     = "navigated"
	MessageAliasesReload = "aliases_reloaded"
)

// NavigationMessage converts a router event for the browser.
func NavigationMessage(event navigation.Event) UpdateMessage {
	return UpdateMessage{
		Type:      MessageNavigated,
		From:      event.From,
		To:        event.To,
		Cause:     event.Cause.String(),
		Timestamp: event.Timestamp,
	}
}

// OriginValidator interface for WebSocket origin validation
type OriginValidator interface {
	IsAllowedOrigin(origin string) bool
}

// AllowList accepts origins that exactly match one of its entries, compared
// case-insensitively on scheme and host.
type AllowList []string

// IsAllowedOrigin implements OriginValidator. Requests without an Origin
// header come from non-browser clients and are allowed.
func (a AllowList) IsAllowedOrigin(origin string) bool {
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return false
	}
	for _, allowed := range a {
		if strings.EqualFold(strings.TrimRight(allowed, "/"), u.Scheme+"://"+u.Host) {
			return true
		}
	}
	return false
}
