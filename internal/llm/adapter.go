// Package llm adapts github.com/haowjy/meridian-llm-go providers to the
// ports.LLM interface. Only plain text blocks are ever sent or read back;
// this module has no use for tool-call or thinking blocks.
package llm

import (
	"context"
	"fmt"
	"strings"

	libllm "github.com/haowjy/meridian-llm-go"
	"github.com/haowjy/meridian-llm-go/providers/anthropic"
	"github.com/haowjy/meridian-llm-go/providers/lorem"

	"policyrelay/internal/domain/ports"
)

// Adapter wraps a single library provider and implements ports.LLM.
type Adapter struct {
	provider libllm.Provider
}

// NewAdapter wraps an already-constructed library provider.
func NewAdapter(provider libllm.Provider) *Adapter {
	return &Adapter{provider: provider}
}

// NewFromConfig resolves a provider name into a concrete library provider,
// mirroring the factory switch used elsewhere in the ecosystem for
// anthropic/lorem selection.
func NewFromConfig(providerName, apiKey string) (*Adapter, error) {
	switch providerName {
	case "anthropic":
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY not set")
		}
		p, err := anthropic.NewProvider(apiKey)
		if err != nil {
			return nil, fmt.Errorf("create anthropic provider: %w", err)
		}
		return NewAdapter(p), nil
	case "lorem":
		return NewAdapter(lorem.NewProvider()), nil
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", providerName)
	}
}

var _ ports.LLM = (*Adapter)(nil)

func toLibraryRequest(req ports.CompletionRequest) *libllm.GenerateRequest {
	messages := make([]libllm.Message, len(req.Messages))
	for i, m := range req.Messages {
		content := m.Content
		messages[i] = libllm.Message{
			Role:   m.Role,
			Blocks: []*libllm.Block{{BlockType: "text", TextContent: &content}},
		}
	}

	params := &libllm.RequestParams{}
	if req.SystemPrompt != "" {
		system := req.SystemPrompt
		params.System = &system
	}
	if req.MaxTokens > 0 {
		maxTokens := req.MaxTokens
		params.MaxTokens = &maxTokens
	}

	return &libllm.GenerateRequest{Messages: messages, Model: req.Model, Params: params}
}

func textFromBlocks(blocks []*libllm.Block) string {
	var b strings.Builder
	for _, blk := range blocks {
		if blk.TextContent != nil {
			b.WriteString(*blk.TextContent)
		}
	}
	return b.String()
}

func (a *Adapter) Complete(ctx context.Context, req ports.CompletionRequest) (ports.CompletionResponse, error) {
	resp, err := a.provider.GenerateResponse(ctx, toLibraryRequest(req))
	if err != nil {
		return ports.CompletionResponse{}, err
	}
	return ports.CompletionResponse{Text: textFromBlocks(resp.Blocks), Model: resp.Model}, nil
}

func (a *Adapter) Stream(ctx context.Context, req ports.CompletionRequest, onChunk func(ports.StreamChunk) error) (ports.CompletionResponse, error) {
	events, err := a.provider.StreamResponse(ctx, toLibraryRequest(req))
	if err != nil {
		return ports.CompletionResponse{}, err
	}

	var full strings.Builder
	final := ports.CompletionResponse{Model: req.Model}
	for event := range events {
		if event.Error != nil {
			return ports.CompletionResponse{}, event.Error
		}
		if event.Delta != nil && event.Delta.TextDelta != nil {
			full.WriteString(*event.Delta.TextDelta)
			if err := onChunk(ports.StreamChunk{Delta: *event.Delta.TextDelta}); err != nil {
				return ports.CompletionResponse{}, err
			}
		}
		if event.Metadata != nil {
			final = ports.CompletionResponse{Text: full.String(), Model: event.Metadata.Model}
		}
	}

	if err := onChunk(ports.StreamChunk{Done: true}); err != nil {
		return ports.CompletionResponse{}, err
	}
	if final.Text == "" {
		final.Text = full.String()
	}
	return final, nil
}
