package anthropic

// Wire types for the Anthropic Messages API. The shapes here must match the
// backend exactly: system blocks with optional cache_control, alternating
// role/content messages, and a content array response.

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CacheControl marks a request block as reusable by the backend's prompt
// cache. The cache is content-keyed, so identical blocks across calls are
// only processed once.
type CacheControl struct {
	Type string `json:"type"` // "ephemeral"
}

type SystemBlock struct {
	Type         string        `json:"type"` // "text"
	Text         string        `json:"text"`
	CacheControl *CacheControl `json:"cache_control,omitempty"`
}

type MessagesRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens"`
	System    []SystemBlock `json:"system"`
	Messages  []Message     `json:"messages"`
}

type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Usage counters are read for observability only, never for control flow.
type Usage struct {
	InputTokens              int `json:"input_tokens"`
	OutputTokens             int `json:"output_tokens"`
	CacheCreationInputTokens int `json:"cache_creation_input_tokens"`
	CacheReadInputTokens     int `json:"cache_read_input_tokens"`
}

type MessagesResponse struct {
	ID      string         `json:"id"`
	Model   string         `json:"model"`
	Content []ContentBlock `json:"content"`
	Usage   Usage          `json:"usage"`
}
