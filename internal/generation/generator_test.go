package generation

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/learnify/learnify/internal/apperrors"
	"github.com/learnify/learnify/internal/llm"
)

func validGraphJSON() json.RawMessage {
	return json.RawMessage(`{
		"title": "Linear Algebra",
		"description": "Vectors, matrices and linear maps.",
		"nodes": [
			{"id": "t1", "label": "Vectors", "type": "concept"},
			{"id": "t2", "label": "Matrices"},
			{"id": "t3", "label": "Linear maps", "description": "Functions that preserve addition"}
		],
		"edges": [
			{"source": "t1", "target": "t2"},
			{"source": "t2", "target": "t3", "label": "builds on"}
		]
	}`)
}

func validLessonJSON() json.RawMessage {
	return json.RawMessage(`{
		"overview": "Vectors are arrows with magnitude and direction.",
		"sections": [{"title": "Definition", "content": "A vector is..."}],
		"flashcards": [{"front": "What is a vector?", "back": "A magnitude and a direction."}],
		"quiz": [{"question": "Which is a vector?", "options": ["5 kg", "5 m north"], "answer_index": 1}],
		"diagrams": [{"title": "Vector addition", "mermaid": "graph LR; A-->B"}]
	}`)
}

// keySource records the key it was asked for.
type keySource struct {
	provider llm.Provider
	keys     []string
	err      error
}

func (s *keySource) ForKey(_ context.Context, apiKey string) (llm.Provider, error) {
	s.keys = append(s.keys, apiKey)
	return s.provider, s.err
}

func TestGenerateGraph(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: validGraphJSON()})
	src := &keySource{provider: mock}
	g := New(src, DefaultConfig())

	out, err := g.GenerateGraph(context.Background(), "user-key", GraphInput{TopicDeclaration: "Linear algebra"})
	if err != nil {
		t.Fatalf("GenerateGraph: %v", err)
	}
	if out.Title != "Linear Algebra" || len(out.Nodes) != 3 || len(out.Edges) != 2 {
		t.Errorf("unexpected payload: %+v", out)
	}
	if out.Nodes[0].Type != "concept" || out.Nodes[1].Type != "" {
		t.Errorf("node types = %q, %q", out.Nodes[0].Type, out.Nodes[1].Type)
	}
	if len(src.keys) != 1 || src.keys[0] != "user-key" {
		t.Errorf("provider built for keys %v, want [user-key]", src.keys)
	}

	req := mock.Calls()[0].Request
	if req.Schema != GraphSchema {
		t.Error("expected GraphSchema on the request")
	}
	if !strings.Contains(req.Messages[0].Content, "Subject: Linear algebra") {
		t.Errorf("prompt missing declaration:\n%s", req.Messages[0].Content)
	}
}

func TestGenerateGraph_EdgesOptional(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{"title": "Solo", "nodes": [{"id": "a", "label": "Only topic"}]}`),
	})
	out, err := New(&keySource{provider: mock}, DefaultConfig()).GenerateGraph(context.Background(), "k", GraphInput{TopicDeclaration: "x"})
	if err != nil {
		t.Fatalf("GenerateGraph: %v", err)
	}
	if len(out.Edges) != 0 {
		t.Errorf("expected no edges, got %v", out.Edges)
	}
}

func TestGenerateGraph_Malformed(t *testing.T) {
	tests := map[string]string{
		"not json":    `nope`,
		"empty label": `{"title": "x", "nodes": [{"id": "a", "label": " "}]}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(body)})
			_, err := New(&keySource{provider: mock}, DefaultConfig()).GenerateGraph(context.Background(), "k", GraphInput{TopicDeclaration: "x"})
			if !errors.Is(err, apperrors.ErrMalformedResponse) {
				t.Fatalf("got %v, want ErrMalformedResponse", err)
			}
		})
	}
}

func TestGenerateGraph_ProviderErrorPassesThrough(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrRateLimit{Err: errors.New("429")}})
	_, err := New(&keySource{provider: mock}, DefaultConfig()).GenerateGraph(context.Background(), "k", GraphInput{TopicDeclaration: "x"})
	var rl *llm.ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("got %v, want *llm.ErrRateLimit in chain", err)
	}
}

func TestGenerateGraph_SourceError(t *testing.T) {
	boom := errors.New("no provider")
	_, err := New(&keySource{err: boom}, DefaultConfig()).GenerateGraph(context.Background(), "k", GraphInput{TopicDeclaration: "x"})
	if !errors.Is(err, boom) {
		t.Fatalf("got %v, want source error", err)
	}
}

func TestGenerateLesson(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: validLessonJSON()})
	g := New(&keySource{provider: mock}, DefaultConfig())

	out, err := g.GenerateLesson(context.Background(), "k", LessonInput{
		SubjectTitle:           "Linear Algebra",
		TopicTitle:             "Vectors",
		CompletedPrerequisites: []string{"Arithmetic"},
		Profile:                &Profile{Occupation: "Nurse", LearningStyle: "visual"},
	})
	if err != nil {
		t.Fatalf("GenerateLesson: %v", err)
	}
	if out.Overview == "" || len(out.Sections) != 1 || len(out.Flashcards) != 1 || len(out.Diagrams) != 1 {
		t.Errorf("unexpected lesson: %+v", out)
	}
	if out.Quiz[0].AnswerIndex != 1 {
		t.Errorf("answer index = %d, want 1", out.Quiz[0].AnswerIndex)
	}

	req := mock.Calls()[0].Request
	if req.Schema != LessonSchema {
		t.Error("expected LessonSchema on the request")
	}
	for _, want := range []string{"Subject: Linear Algebra", "Topic: Vectors", "- Arithmetic", "Occupation: Nurse", "Learning style: visual"} {
		if !strings.Contains(req.Messages[0].Content, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestGenerateLesson_Malformed(t *testing.T) {
	tests := map[string]string{
		"no overview":         `{"sections": []}`,
		"answer out of range": `{"overview": "x", "quiz": [{"question": "q", "options": ["a", "b"], "answer_index": 2}]}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(body)})
			_, err := New(&keySource{provider: mock}, DefaultConfig()).GenerateLesson(context.Background(), "k", LessonInput{TopicTitle: "t"})
			if !errors.Is(err, apperrors.ErrMalformedResponse) {
				t.Fatalf("got %v, want ErrMalformedResponse", err)
			}
		})
	}
}

func TestLessonPayload_OptionalFieldsOmitted(t *testing.T) {
	b, err := json.Marshal(LessonPayload{Overview: "only"})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"overview":"only"}` {
		t.Errorf("got %s", b)
	}
}
