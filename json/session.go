package json

import (
	"time"

	"github.com/psalmlegal/psalm"
)

// sessionDTO is the JSON representation of a Session.
type sessionDTO struct {
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	Messages       []messageDTO   `json:"messages"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
	Jurisdiction   string         `json:"jurisdiction,omitempty"`
	SystemPrompt   string         `json:"systemPrompt,omitempty"`
	PrefillContent string         `json:"prefillContent,omitempty"`
	Attachments    []uploadRefDTO `json:"attachments,omitempty"`
}

type messageDTO struct {
	ID          string        `json:"id"`
	Role        string        `json:"role"`
	Content     string        `json:"content"`
	Timestamp   time.Time     `json:"timestamp"`
	Citations   []citationDTO `json:"citations,omitempty"`
	IsStreaming bool          `json:"isStreaming,omitempty"`
}

type citationDTO struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	URL     string `json:"url,omitempty"`
	FileID  string `json:"fileId,omitempty"`
	Snippet string `json:"snippet,omitempty"`
	Excerpt string `json:"excerpt"`
}

type uploadRefDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Mime string `json:"mime"`
	Size int64  `json:"size"`
}

func marshalSession(s psalm.Session) sessionDTO {
	dto := sessionDTO{
		ID:             s.ID,
		Title:          s.Title,
		Messages:       make([]messageDTO, len(s.Messages)),
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
		Jurisdiction:   s.Jurisdiction,
		SystemPrompt:   s.SystemPrompt,
		PrefillContent: s.PrefillContent,
	}
	for i, m := range s.Messages {
		dto.Messages[i] = marshalMessage(m)
	}
	for _, a := range s.Attachments {
		dto.Attachments = append(dto.Attachments, uploadRefDTO(a))
	}
	return dto
}

func unmarshalSession(dto sessionDTO) psalm.Session {
	s := psalm.Session{
		ID:             dto.ID,
		Title:          dto.Title,
		Messages:       make([]psalm.Message, len(dto.Messages)),
		CreatedAt:      dto.CreatedAt,
		UpdatedAt:      dto.UpdatedAt,
		Jurisdiction:   dto.Jurisdiction,
		SystemPrompt:   dto.SystemPrompt,
		PrefillContent: dto.PrefillContent,
	}
	for i, m := range dto.Messages {
		s.Messages[i] = unmarshalMessage(m)
	}
	for _, a := range dto.Attachments {
		s.Attachments = append(s.Attachments, psalm.UploadRef(a))
	}
	return s
}

func marshalMessage(m psalm.Message) messageDTO {
	dto := messageDTO{
		ID:          m.ID,
		Role:        string(m.Role),
		Content:     m.Content,
		Timestamp:   m.Timestamp,
		IsStreaming: m.IsStreaming,
	}
	for _, c := range m.Citations {
		dto.Citations = append(dto.Citations, citationDTO(c))
	}
	return dto
}

func unmarshalMessage(dto messageDTO) psalm.Message {
	m := psalm.Message{
		ID:          dto.ID,
		Role:        psalm.Role(dto.Role),
		Content:     dto.Content,
		Timestamp:   dto.Timestamp,
		IsStreaming: dto.IsStreaming,
	}
	for _, c := range dto.Citations {
		m.Citations = append(m.Citations, psalm.Citation(c))
	}
	return m
}
