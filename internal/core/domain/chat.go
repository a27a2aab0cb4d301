package domain

// ChatMessage is one turn of a conversation, client-supplied.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Message   string        `json:"message"`
	History   []ChatMessage `json:"conversation_history,omitempty"`
	SessionID string        `json:"session_id,omitempty"`
}

type ChatResponse struct {
	Response  string `json:"response"`
	SessionID string `json:"session_id"`
}

// WebResult is a live web search hit used to enrich answers when the
// knowledge base has nothing relevant.
type WebResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
	Source  string `json:"source"`
}
