package ports

import "context"

// Message is one turn of LLM chat context.
type Message struct {
	Role    string
	Content string
}

// CompletionRequest is a synchronous completion call against the LLM port.
type CompletionRequest struct {
	Model        string
	SystemPrompt string
	Messages     []Message
	// MaxTokens bounds the generated response; zero lets the provider pick
	// its own default.
	MaxTokens int
}

// StreamChunk is one incremental piece of a streamed completion.
type StreamChunk struct {
	Delta string
	Done  bool
}

// CompletionResponse is the result of a synchronous completion call.
type CompletionResponse struct {
	Text  string
	Model string
}

// LLM is the synchronous-completion port consumed by every Orchestrator
// stage that needs decomposition, per-subquestion answering, integration, or
// repair. Implementations must apply their own rate limiting; the
// Orchestrator never re-throttles.
type LLM interface {
	// Complete performs one synchronous completion call.
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)

	// Stream performs a completion call, invoking onChunk for each
	// incremental piece as it arrives. The final invocation has Done=true.
	// Implementations that cannot stream may call onChunk once with the
	// full text and Done=true.
	Stream(ctx context.Context, req CompletionRequest, onChunk func(StreamChunk) error) (CompletionResponse, error)
}

// Passage is one ranked retrieval result.
type Passage struct {
	Title      string
	Content    string
	URL        string
	Confidence float64
}

// Retriever is the vector-search + metadata-lookup + reranking port. Empty
// results are a valid outcome (low corpus confidence), not an error.
type Retriever interface {
	Retrieve(ctx context.Context, query string) ([]Passage, error)
}

// WebSearchResult is one ranked web-search hit.
type WebSearchResult struct {
	Title   string
	URL     string
	Snippet string
}

// WebSearcher backs the rag path's fallback when corpus confidence is low.
type WebSearcher interface {
	Search(ctx context.Context, query string) ([]WebSearchResult, error)
}
