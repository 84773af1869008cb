package speech

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// apiKeyDocument stores the learner-entered voice API key. It sits next to
// the progress and session documents but is a preference, not state: the
// update-install flow must never clear it.
const apiKeyDocument = "pref:voice_api_key"

const defaultAPIURL = "https://api.voicerss.org/v1/speech"

// Documents is the persistence surface for the API key preference
type Documents interface {
	Get(key string, out interface{}) (bool, error)
	Put(key string, value interface{}) error
	Delete(key string) error
}

// Client fetches pronunciation audio for a word from a hosted
// text-to-speech API. The feature is optional: without a stored key the
// client reports itself disabled and the caller skips audio entirely.
type Client struct {
	docs   Documents
	apiURL string
	client *http.Client
}

// New creates a speech client over the given documents
func New(docs Documents) *Client {
	return &Client{
		docs:   docs,
		apiURL: defaultAPIURL,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

// APIKey returns the stored key, or "" when none has been entered
func (c *Client) APIKey() string {
	var key string
	found, err := c.docs.Get(apiKeyDocument, &key)
	if err != nil || !found {
		return ""
	}
	return key
}

// SetAPIKey stores the learner-entered key
func (c *Client) SetAPIKey(key string) error {
	if err := c.docs.Put(apiKeyDocument, key); err != nil {
		return fmt.Errorf("failed to store voice API key: %v", err)
	}
	return nil
}

// Enabled reports whether a key is configured
func (c *Client) Enabled() bool {
	return c.APIKey() != ""
}

// speechRequest is the API request payload
type speechRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Voice    string `json:"voice"`
}

// speechResponse is the API response payload
type speechResponse struct {
	Audio string `json:"audio"` // base64-encoded audio
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Pronounce fetches spoken audio for the given text
func (c *Client) Pronounce(ctx context.Context, text string) ([]byte, error) {
	key := c.APIKey()
	if key == "" {
		return nil, fmt.Errorf("voice API key is not set")
	}

	payload, err := json.Marshal(speechRequest{
		Text:     text,
		Language: "en-us",
		Voice:    "default",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode speech request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build speech request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+key)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call speech API: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read speech response: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("speech API returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed speechResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode speech response: %v", err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("speech API error: %s", parsed.Error.Message)
	}

	audio, err := base64.StdEncoding.DecodeString(parsed.Audio)
	if err != nil {
		return nil, fmt.Errorf("failed to decode audio payload: %v", err)
	}
	return audio, nil
}
