// Package generation turns user requests into topic graphs and lessons
// through an LLM provider bound to the requesting user's credential.
package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/learnify/learnify/internal/apperrors"
	"github.com/learnify/learnify/internal/llm"
)

// Generator produces structured content for the lifecycle manager.
type Generator interface {
	// GenerateGraph proposes a topic graph. Structural checks (cycles,
	// dangling edges) are left to the caller.
	GenerateGraph(ctx context.Context, apiKey string, input GraphInput) (*GraphPayload, error)

	// GenerateLesson writes the lesson for a single topic.
	GenerateLesson(ctx context.Context, apiKey string, input LessonInput) (*LessonPayload, error)
}

// LLMGenerator implements Generator using an llm.Source.
type LLMGenerator struct {
	source llm.Source
	config Config
}

// New creates a new LLMGenerator.
func New(source llm.Source, cfg Config) *LLMGenerator {
	return &LLMGenerator{source: source, config: cfg}
}

// GenerateGraph implements Generator.
func (g *LLMGenerator) GenerateGraph(ctx context.Context, apiKey string, input GraphInput) (*GraphPayload, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeTopicGraph)

	req := llm.Request{
		System:      graphSystemPrompt,
		Messages:    llm.UserPrompt(buildGraphUserMessage(input, g.config.MaxSourceRunes)),
		Schema:      GraphSchema,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	}

	var out GraphPayload
	if err := g.generate(ctx, apiKey, req, &out); err != nil {
		return nil, fmt.Errorf("graph generation: %w", err)
	}
	if err := out.validate(); err != nil {
		return nil, err
	}
	return &out, nil
}

// GenerateLesson implements Generator.
func (g *LLMGenerator) GenerateLesson(ctx context.Context, apiKey string, input LessonInput) (*LessonPayload, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeLesson)

	req := llm.Request{
		System:      lessonSystemPrompt,
		Messages:    llm.UserPrompt(buildLessonUserMessage(input)),
		Schema:      LessonSchema,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	}

	var out LessonPayload
	if err := g.generate(ctx, apiKey, req, &out); err != nil {
		return nil, fmt.Errorf("lesson generation: %w", err)
	}
	if err := out.validate(); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *LLMGenerator) generate(ctx context.Context, apiKey string, req llm.Request, out any) error {
	provider, err := g.source.ForKey(ctx, apiKey)
	if err != nil {
		return err
	}
	resp, err := provider.Generate(ctx, req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(resp.Content, out); err != nil {
		return fmt.Errorf("%w: parse response: %v", apperrors.ErrMalformedResponse, err)
	}
	return nil
}

// validate checks the fields the schema cannot express.
func (p *GraphPayload) validate() error {
	for i, n := range p.Nodes {
		if strings.TrimSpace(n.Label) == "" {
			return fmt.Errorf("%w: node %d (%q) has no label", apperrors.ErrMalformedResponse, i, n.ID)
		}
	}
	return nil
}

func (p *LessonPayload) validate() error {
	if strings.TrimSpace(p.Overview) == "" {
		return fmt.Errorf("%w: lesson has no overview", apperrors.ErrMalformedResponse)
	}
	for i, q := range p.Quiz {
		if q.AnswerIndex < 0 || q.AnswerIndex >= len(q.Options) {
			return fmt.Errorf("%w: quiz question %d answer index %d out of range", apperrors.ErrMalformedResponse, i, q.AnswerIndex)
		}
	}
	return nil
}
