// Package devserver implements a local stand-in for the chat provider.
// It speaks the same wire contract as the live backend: SSE chat
// completions, a health probe, file uploads and audio transcription. It
// exists for development and for exercising the live client end to end.
package devserver

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const chatResponse = `I'm a mock AI legal assistant. This is a demonstration response that would normally come from your configured AI provider.

For production use, you'll need to:
1. Set up your API endpoint in Admin Settings
2. Configure your AI provider (OpenAI, Anthropic, etc.)
3. Add proper authentication

This mock response is streaming character by character to demonstrate the real-time functionality.`

const completionResponse = "This is a mock response. Please configure your AI provider in Admin Settings."

const transcriptionResponse = "This is a mock transcription. Please configure your speech-to-text service in Admin Settings to enable real audio transcription."

// Server serves the provider API on a net/http handler.
type Server struct {
	logger *slog.Logger

	// TickInterval is the delay between streamed SSE chunks.
	TickInterval time.Duration
	// Model reported in completion chunks when the request names none.
	Model string
}

// New returns a Server with development defaults.
func New(logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		logger:       logger,
		TickInterval: 30 * time.Millisecond,
		Model:        "gpt-4",
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/chat/completions", s.handleChat)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /v1/files", s.handleFiles)
	mux.HandleFunc("POST /v1/audio/transcriptions", s.handleTranscriptions)
	return mux
}

// ListenAndServe serves the handler on addr until the listener fails.
func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("dev server listening", "addr", addr)
	return http.ListenAndServe(addr, s.Handler())
}

type chatRequest struct {
	Model  string `json:"model"`
	Stream bool   `json:"stream"`
}

type chunkChoice struct {
	Index        int            `json:"index"`
	Delta        map[string]any `json:"delta"`
	FinishReason *string        `json:"finish_reason"`
}

type chunk struct {
	ID      string        `json:"id"`
	Object  string        `json:"object"`
	Created int64         `json:"created"`
	Model   string        `json:"model"`
	Choices []chunkChoice `json:"choices"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	model := req.Model
	if model == "" {
		model = s.Model
	}

	if !req.Stream {
		writeJSON(w, http.StatusOK, map[string]any{
			"id":      "mock-" + uuid.NewString(),
			"object":  "chat.completion",
			"created": time.Now().Unix(),
			"model":   model,
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": completionResponse},
				"finish_reason": "stop",
			}},
			"usage": map[string]int{"prompt_tokens": 0, "completion_tokens": 0, "total_tokens": 0},
		})
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	id := "mock-" + uuid.NewString()
	ctx := r.Context()
	for _, ch := range chatResponse {
		select {
		case <-ctx.Done():
			return
		case <-time.After(s.TickInterval):
		}
		s.writeChunk(w, chunk{
			ID:      id,
			Object:  "chat.completion.chunk",
			Created: time.Now().Unix(),
			Model:   model,
			Choices: []chunkChoice{{Delta: map[string]any{"content": string(ch)}}},
		})
		flusher.Flush()
	}

	stop := "stop"
	s.writeChunk(w, chunk{
		ID:      id,
		Object:  "chat.completion.chunk",
		Created: time.Now().Unix(),
		Model:   model,
		Choices: []chunkChoice{{Delta: map[string]any{}, FinishReason: &stop}},
	})
	fmt.Fprint(w, "data: [DONE]\n\n")
	flusher.Flush()
}

func (s *Server) writeChunk(w http.ResponseWriter, c chunk) {
	data, err := json.Marshal(c)
	if err != nil {
		s.logger.Error("marshal chunk", "error", err)
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", data)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":           true,
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
		"capabilities": []string{"chat", "files", "voice"},
		"version":      "1.0.0",
	})
}

func (s *Server) handleFiles(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	writeJSON(w, http.StatusOK, map[string]any{
		"id":         "file-" + uuid.NewString(),
		"name":       header.Filename,
		"mime":       header.Header.Get("Content-Type"),
		"size":       header.Size,
		"created_at": time.Now().UTC().Format(time.RFC3339),
		"purpose":    "assistants",
	})
}

func (s *Server) handleTranscriptions(w http.ResponseWriter, r *http.Request) {
	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No audio file provided")
		return
	}
	defer file.Close()

	writeJSON(w, http.StatusOK, map[string]string{"text": transcriptionResponse})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
