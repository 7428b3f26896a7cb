// Package retriever provides ports.Retriever implementations. The corpus
// search system itself is an external collaborator; this package only
// offers a deterministic-shape stub for development plus a thin HTTP
// client for a real search endpoint.
package retriever

import (
	"context"
	"fmt"
	"strings"

	loremgen "github.com/bozaro/golorem"

	"policyrelay/internal/domain/ports"
)

// Stub returns lorem-ipsum passages with descending synthetic confidence,
// standing in for a real corpus search in development and tests. A query
// containing "empty" returns zero passages, exercising the low-confidence
// fallback path.
type Stub struct {
	generator *loremgen.Lorem
}

// NewStub constructs the stub retriever.
func NewStub() *Stub {
	return &Stub{generator: loremgen.New()}
}

var _ ports.Retriever = (*Stub)(nil)

func (s *Stub) Retrieve(ctx context.Context, query string) ([]ports.Passage, error) {
	if query == "" {
		return nil, fmt.Errorf("empty query")
	}
	if strings.Contains(query, "empty") {
		return nil, nil
	}

	passages := make([]ports.Passage, 0, 3)
	confidence := 0.9
	for i := 0; i < 3; i++ {
		passages = append(passages, ports.Passage{
			Title:      s.generator.Sentence(3, 6),
			Content:    s.generator.Paragraph(2, 4),
			URL:        fmt.Sprintf("https://policy.example.org/doc/%d", i+1),
			Confidence: confidence,
		})
		confidence -= 0.25
	}
	return passages, nil
}
