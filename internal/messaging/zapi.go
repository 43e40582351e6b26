package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// DefaultZAPIBaseURL is the public Z-API endpoint
const DefaultZAPIBaseURL = "https://api.z-api.io"

// maxErrorBody caps how much of a failed response is kept in errors
const maxErrorBody = 2048

// ZAPIConfig holds the Z-API instance credentials
type ZAPIConfig struct {
	BaseURL       string
	InstanceID    string
	InstanceToken string
	ClientToken   string
	Timeout       time.Duration
}

// ZAPIClient talks to a Z-API WhatsApp instance over HTTPS
type ZAPIClient struct {
	cfg    ZAPIConfig
	client *http.Client
	logger *slog.Logger
}

// NewZAPIClient validates the credentials and builds a client
func NewZAPIClient(cfg ZAPIConfig, logger *slog.Logger) (*ZAPIClient, error) {
	if cfg.InstanceID == "" || cfg.InstanceToken == "" || cfg.ClientToken == "" {
		return nil, fmt.Errorf("z-api instance id, instance token and client token are required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultZAPIBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ZAPIClient{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger.With(slog.String("component", "zapi_client")),
	}, nil
}

type sendTextPayload struct {
	Phone        string   `json:"phone"`
	Message      string   `json:"message"`
	Mentioned    []string `json:"mentioned,omitempty"`
	DelayMessage int      `json:"delayMessage,omitempty"`
}

// Send posts a text message to a phone number or group id
func (c *ZAPIClient) Send(ctx context.Context, destination, text string, opts SendOptions) (SendResult, error) {
	payload := sendTextPayload{Phone: destination, Message: text}
	if len(opts.Mentions) > 0 {
		payload.Mentioned = opts.Mentions
	}
	if opts.DelayMessage >= 1 && opts.DelayMessage <= 15 {
		payload.DelayMessage = opts.DelayMessage
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return SendResult{}, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("send-text"), bytes.NewReader(body))
	if err != nil {
		return SendResult{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	raw, err := c.do(req)
	if err != nil {
		return SendResult{}, err
	}

	var result SendResult
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &result); err != nil {
			return SendResult{}, fmt.Errorf("decode response: %w", err)
		}
	}
	result.Raw = raw

	c.logger.DebugContext(ctx, "message sent",
		slog.Int("length", len(text)),
		slog.Int("mentions", len(payload.Mentioned)),
		slog.String("message_id", result.MessageID))
	return result, nil
}

// GroupParticipants fetches group metadata and returns its members' phones
func (c *ZAPIClient) GroupParticipants(ctx context.Context, groupID string) ([]string, error) {
	u := c.endpoint("group-metadata") + "?" + url.Values{"phone": {groupID}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	raw, err := c.do(req)
	if err != nil {
		return nil, err
	}
	return ExtractParticipants(raw)
}

func (c *ZAPIClient) endpoint(action string) string {
	return fmt.Sprintf("%s/instances/%s/token/%s/%s",
		c.cfg.BaseURL, url.PathEscape(c.cfg.InstanceID), url.PathEscape(c.cfg.InstanceToken), action)
}

func (c *ZAPIClient) do(req *http.Request) ([]byte, error) {
	req.Header.Set("Client-Token", c.cfg.ClientToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

var nonDigits = regexp.MustCompile(`\D`)

// ExtractParticipants reads the member phones from a group-metadata
// document. Members are listed under "participants" or
// "group.participants", as objects with a "phone" field or bare strings.
// The result is digits-only with duplicates removed, in document order.
func ExtractParticipants(raw []byte) ([]string, error) {
	var doc struct {
		Participants []json.RawMessage `json:"participants"`
		Group        struct {
			Participants []json.RawMessage `json:"participants"`
		} `json:"group"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode group metadata: %w", err)
	}

	entries := doc.Participants
	if len(entries) == 0 {
		entries = doc.Group.Participants
	}

	seen := make(map[string]bool, len(entries))
	phones := make([]string, 0, len(entries))
	for _, entry := range entries {
		phone := nonDigits.ReplaceAllString(participantPhone(entry), "")
		if phone == "" || seen[phone] {
			continue
		}
		seen[phone] = true
		phones = append(phones, phone)
	}
	return phones, nil
}

func participantPhone(entry json.RawMessage) string {
	var s string
	if err := json.Unmarshal(entry, &s); err == nil {
		return s
	}

	var obj struct {
		Phone json.RawMessage `json:"phone"`
	}
	if err := json.Unmarshal(entry, &obj); err != nil || len(obj.Phone) == 0 {
		return ""
	}
	if err := json.Unmarshal(obj.Phone, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(obj.Phone, &n); err == nil {
		return n.String()
	}
	return ""
}
