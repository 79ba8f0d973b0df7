// Package openai implements [psalm.Transport] for an OpenAI-compatible
// chat completions endpoint. Streaming responses are parsed as
// newline-delimited SSE frames; malformed frames are dropped without
// failing the stream.
package openai

const (
	completionsPath    = "/v1/chat/completions"
	filesPath          = "/v1/files"
	transcriptionsPath = "/v1/audio/transcriptions"
	healthPath         = "/health"

	doneSentinel       = "[DONE]"
	dataPrefix         = "data: "
	transcriptionModel = "whisper-1"
)

// apiRequest is the JSON body sent to the completions endpoint.
type apiRequest struct {
	Model        string          `json:"model"`
	Messages     []apiMessage    `json:"messages"`
	Temperature  float64         `json:"temperature"`
	MaxTokens    int             `json:"max_tokens"`
	Stream       bool            `json:"stream"`
	Jurisdiction string          `json:"jurisdiction,omitempty"`
	Attachments  []apiAttachment `json:"attachments"`
}

// apiMessage carries role and content only; auxiliary message fields
// never travel over the wire.
type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type apiAttachment struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Mime string `json:"mime"`
	Size int64  `json:"size"`
}

// sseChunk is the envelope of a streaming data frame.
type sseChunk struct {
	Choices []sseChoice `json:"choices"`
}

type sseChoice struct {
	Delta        sseDelta `json:"delta"`
	FinishReason *string  `json:"finish_reason"`
}

type sseDelta struct {
	Content string `json:"content"`
}

// completionResponse is the non-streaming response body.
type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type healthResponse struct {
	Capabilities []string `json:"capabilities"`
}

type fileResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Mime string `json:"mime"`
	Size int64  `json:"size"`
}

type transcriptionResponse struct {
	Text string `json:"text"`
}
