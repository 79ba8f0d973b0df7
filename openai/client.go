package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sync"

	"github.com/psalmlegal/psalm"
)

// Interface compliance check.
var _ psalm.Transport = (*Client)(nil)

// Client is the live transport. Each SendChat call closes over a fresh
// cancellation handle; Abort cancels the most recent call only, so a
// stale abort never touches a new request.
type Client struct {
	settings   psalm.Settings
	httpClient *http.Client

	mu     sync.Mutex
	cancel context.CancelFunc
}

// Option configures a [Client].
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a live client from connection settings.
func New(settings psalm.Settings, opts ...Option) *Client {
	c := &Client{
		settings:   settings,
		httpClient: http.DefaultClient,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// UpdateSettings replaces the connection settings for subsequent calls.
func (c *Client) UpdateSettings(settings psalm.Settings) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.settings = settings
}

func (c *Client) currentSettings() psalm.Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settings
}

// Abort requests cancellation of the current SendChat stream.
func (c *Client) Abort() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
	}
}

// SendChat issues a completions request and returns the token stream.
// With req.Stream false it performs one round trip and yields the full
// text as a single fragment.
func (c *Client) SendChat(ctx context.Context, req psalm.ChatRequest) (psalm.Stream, error) {
	settings := c.currentSettings()

	callCtx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.cancel = cancel
	c.mu.Unlock()

	body, err := json.Marshal(buildRequestBody(settings, req))
	if err != nil {
		cancel()
		return nil, fmt.Errorf("openai: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(callCtx, http.MethodPost, settings.BaseURL+completionsPath, bytes.NewReader(body))
	if err != nil {
		cancel()
		return nil, fmt.Errorf("openai: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+settings.APIKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		cancel()
		if callCtx.Err() != nil {
			return nil, psalm.ErrAborted
		}
		return nil, fmt.Errorf("openai: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		cancel()
		return nil, &psalm.StatusError{Code: resp.StatusCode}
	}

	if !req.Stream {
		defer resp.Body.Close()
		defer cancel()
		var cr completionResponse
		if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
			return nil, fmt.Errorf("openai: decode response: %w", err)
		}
		var content string
		if len(cr.Choices) > 0 {
			content = cr.Choices[0].Message.Content
		}
		return &singleStream{content: content}, nil
	}

	return newStream(callCtx, cancel, resp.Body), nil
}

func buildRequestBody(settings psalm.Settings, req psalm.ChatRequest) apiRequest {
	out := apiRequest{
		Model:        settings.Model,
		Messages:     make([]apiMessage, len(req.Messages)),
		Temperature:  settings.Temperature,
		MaxTokens:    settings.MaxTokens,
		Stream:       req.Stream,
		Jurisdiction: req.Jurisdiction,
		Attachments:  make([]apiAttachment, len(req.Attachments)),
	}
	for i, m := range req.Messages {
		out.Messages[i] = apiMessage{Role: string(m.Role), Content: m.Content}
	}
	for i, a := range req.Attachments {
		out.Attachments[i] = apiAttachment(a)
	}
	return out
}

// Health probes {base}/health and falls back to the base URL. Any
// failure on both means unreachable.
func (c *Client) Health(ctx context.Context) (psalm.Health, error) {
	settings := c.currentSettings()
	for _, url := range []string{settings.BaseURL + healthPath, settings.BaseURL} {
		h, err := c.probe(ctx, settings, url)
		if err == nil {
			return h, nil
		}
	}
	return psalm.Health{OK: false}, nil
}

func (c *Client) probe(ctx context.Context, settings psalm.Settings, url string) (psalm.Health, error) {
	ctx, cancel := context.WithTimeout(ctx, settings.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return psalm.Health{}, err
	}
	req.Header.Set("Authorization", "Bearer "+settings.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return psalm.Health{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return psalm.Health{}, &psalm.StatusError{Code: resp.StatusCode}
	}

	h := psalm.Health{OK: true, Capabilities: []psalm.Capability{psalm.CapabilityChat}}
	var hr healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&hr); err == nil && len(hr.Capabilities) > 0 {
		h.Capabilities = h.Capabilities[:0]
		for _, cap := range hr.Capabilities {
			h.Capabilities = append(h.Capabilities, psalm.Capability(cap))
		}
	}
	return h, nil
}

// UploadFile sends a multipart upload and returns the provider's handle.
func (c *Client) UploadFile(ctx context.Context, name, mime string, size int64, r io.Reader) (psalm.UploadRef, error) {
	if err := psalm.ValidateUpload(name, mime, size); err != nil {
		return psalm.UploadRef{}, err
	}
	settings := c.currentSettings()

	ctx, cancel := context.WithTimeout(ctx, settings.Timeout)
	defer cancel()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", name)
	if err != nil {
		return psalm.UploadRef{}, fmt.Errorf("openai: %w", err)
	}
	if _, err := io.Copy(fw, r); err != nil {
		return psalm.UploadRef{}, fmt.Errorf("openai: %w", err)
	}
	if err := mw.Close(); err != nil {
		return psalm.UploadRef{}, fmt.Errorf("openai: %w", err)
	}

	var fr fileResponse
	if err := c.postForm(ctx, settings, settings.BaseURL+filesPath, mw.FormDataContentType(), &buf, &fr); err != nil {
		return psalm.UploadRef{}, err
	}

	ref := psalm.UploadRef{ID: fr.ID, Name: fr.Name, Mime: fr.Mime, Size: fr.Size}
	// The provider may omit echo fields; fall back to what we sent.
	if ref.Name == "" {
		ref.Name = name
	}
	if ref.Mime == "" {
		ref.Mime = mime
	}
	if ref.Size == 0 {
		ref.Size = size
	}
	return ref, nil
}

// TranscribeAudio sends a multipart transcription request and returns
// the recognized text.
func (c *Client) TranscribeAudio(ctx context.Context, name string, r io.Reader) (string, error) {
	settings := c.currentSettings()

	ctx, cancel := context.WithTimeout(ctx, settings.Timeout)
	defer cancel()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", name)
	if err != nil {
		return "", fmt.Errorf("openai: %w", err)
	}
	if _, err := io.Copy(fw, r); err != nil {
		return "", fmt.Errorf("openai: %w", err)
	}
	if err := mw.WriteField("model", transcriptionModel); err != nil {
		return "", fmt.Errorf("openai: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("openai: %w", err)
	}

	var tr transcriptionResponse
	if err := c.postForm(ctx, settings, settings.BaseURL+transcriptionsPath, mw.FormDataContentType(), &buf, &tr); err != nil {
		return "", err
	}
	return tr.Text, nil
}

func (c *Client) postForm(ctx context.Context, settings psalm.Settings, url, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return fmt.Errorf("openai: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+settings.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("openai: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &psalm.StatusError{Code: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("openai: decode response: %w", err)
	}
	return nil
}
