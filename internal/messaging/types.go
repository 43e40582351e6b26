package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
)

// SendOptions tunes a single outbound message
type SendOptions struct {
	// DelayMessage asks the provider to wait 1-15 seconds before delivery.
	// Other values are not sent.
	DelayMessage int
	// Mentions are digits-only phone numbers tagged in the message
	Mentions []string
}

// SendResult is the provider's acknowledgement of a message
type SendResult struct {
	ZaapID    string          `json:"zaapId,omitempty"`
	MessageID string          `json:"messageId,omitempty"`
	ID        string          `json:"id,omitempty"`
	Raw       json.RawMessage `json:"-"`
}

// Sender delivers text to a phone number or group id
type Sender interface {
	Send(ctx context.Context, destination, text string, opts SendOptions) (SendResult, error)
}

// ParticipantSource lists the phone numbers of a group's members
type ParticipantSource interface {
	GroupParticipants(ctx context.Context, groupID string) ([]string, error)
}

// Observer is notified of every delivery attempt. Implementations must be
// safe for concurrent use.
type Observer interface {
	MessageSent(ctx context.Context, group string)
	MessageFailed(ctx context.Context, group string)
}

// Destination is a named group id taken from configuration
type Destination struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// DestinationsFromMap turns a name -> id map into destinations sorted by name
func DestinationsFromMap(groups map[string]string) []Destination {
	out := make([]Destination, 0, len(groups))
	for name, id := range groups {
		out = append(out, Destination{Name: name, ID: id})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// MessageResult reports one message sent to one destination. Order is the
// 1-based position of the message in the outbound list.
type MessageResult struct {
	Order      int         `json:"order"`
	OK         bool        `json:"ok"`
	StatusCode int         `json:"status_code,omitempty"`
	Error      string      `json:"error,omitempty"`
	Response   *SendResult `json:"response,omitempty"`
}

// GroupResult collects the outcome of every message for one destination
type GroupResult struct {
	Group        string          `json:"group"`
	Mentioned    bool            `json:"mentioned"`
	MentionCount int             `json:"mention_count"`
	Warning      string          `json:"warning,omitempty"`
	Results      []MessageResult `json:"results"`
}

// Failed counts the messages that were not delivered
func (g GroupResult) Failed() int {
	n := 0
	for _, r := range g.Results {
		if !r.OK {
			n++
		}
	}
	return n
}

// HTTPError is a non-2xx answer from the provider
type HTTPError struct {
	StatusCode int
	Body       string
}

// Error implements the error interface
func (e *HTTPError) Error() string {
	return fmt.Sprintf("z-api returned %d: %s", e.StatusCode, e.Body)
}
