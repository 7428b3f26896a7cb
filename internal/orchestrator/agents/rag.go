package agents

import (
	"context"
	"fmt"
	"strings"

	"policyrelay/internal/domain/models"
	"policyrelay/internal/domain/ports"
	"policyrelay/internal/resilience"
)

// lowConfidenceThreshold is the corpus-confidence floor below which the rag
// path falls back to web search.
const lowConfidenceThreshold = 0.4

// RAG answers a subquestion from the document corpus, falling back to web
// search when corpus confidence is low.
type RAG struct {
	Retriever  ports.Retriever
	LLM        ports.LLM
	WebSearch  ports.WebSearcher // nil disables the fallback
	Model      string
}

var _ Agent = (*RAG)(nil)

func (a *RAG) Resolve(ctx context.Context, sq models.Subquestion) (SubAnswer, error) {
	var passages []ports.Passage
	var notes []string

	err := resilience.Do(ctx, func() error {
		var retrieveErr error
		passages, retrieveErr = a.Retriever.Retrieve(ctx, sq.Text)
		return retrieveErr
	})
	if err != nil {
		notes = append(notes, fmt.Sprintf("retrieval failed for %q, continuing with empty evidence", sq.Text))
		passages = nil
	} else if len(passages) == 0 {
		notes = append(notes, "empty evidence from corpus search")
	}

	if lowConfidence(passages) && a.WebSearch != nil {
		results, err := a.WebSearch.Search(ctx, sq.Text)
		if err == nil && len(results) > 0 {
			notes = append(notes, "corpus confidence low, augmented with web search")
			for _, r := range results {
				passages = append(passages, ports.Passage{Title: r.Title, Content: r.Snippet, URL: r.URL, Confidence: lowConfidenceThreshold})
			}
		}
	}

	resp, err := a.answer(ctx, sq, passages)
	if err != nil {
		return SubAnswer{
			SubquestionID: sq.ID,
			Text:          "could not retrieve an answer for this part of the question",
			ThinkingNotes: append(notes, fmt.Sprintf("llm failed after retries: %v", err)),
		}, nil
	}

	sources := make([]models.SourceRef, 0, len(passages))
	for _, p := range passages {
		sources = append(sources, models.SourceRef{Title: p.Title, URL: p.URL, Confidence: p.Confidence})
	}

	return SubAnswer{SubquestionID: sq.ID, Text: resp.Text, Sources: sources, ThinkingNotes: notes}, nil
}

func (a *RAG) answer(ctx context.Context, sq models.Subquestion, passages []ports.Passage) (ports.CompletionResponse, error) {
	var resp ports.CompletionResponse
	err := resilience.Do(ctx, func() error {
		var callErr error
		resp, callErr = a.LLM.Complete(ctx, ports.CompletionRequest{
			Model:        a.Model,
			SystemPrompt: "Answer the subquestion using only the provided passages. Be concise and cite nothing directly; citations are attached separately.",
			Messages: []ports.Message{
				{Role: "user", Content: buildContext(sq.Text, passages)},
			},
		})
		return callErr
	})
	return resp, err
}

func buildContext(question string, passages []ports.Passage) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Question: %s\n\nPassages:\n", question)
	if len(passages) == 0 {
		b.WriteString("(no passages retrieved)\n")
	}
	for i, p := range passages {
		fmt.Fprintf(&b, "%d. %s: %s\n", i+1, p.Title, p.Content)
	}
	return b.String()
}

func lowConfidence(passages []ports.Passage) bool {
	if len(passages) == 0 {
		return true
	}
	best := 0.0
	for _, p := range passages {
		if p.Confidence > best {
			best = p.Confidence
		}
	}
	return best < lowConfidenceThreshold
}
