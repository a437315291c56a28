package lifecycle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnify/learnify/internal/apperrors"
	"github.com/learnify/learnify/internal/generation"
	"github.com/learnify/learnify/internal/llm"
	"github.com/learnify/learnify/internal/store"
	"github.com/learnify/learnify/internal/topicgraph"
)

// keyRecorder captures the API key handed to the generator.
type keyRecorder struct {
	inner generation.Generator
	key   *string
}

func (k keyRecorder) GenerateGraph(ctx context.Context, apiKey string, in generation.GraphInput) (*generation.GraphPayload, error) {
	*k.key = apiKey
	return k.inner.GenerateGraph(ctx, apiKey, in)
}

func (k keyRecorder) GenerateLesson(ctx context.Context, apiKey string, in generation.LessonInput) (*generation.LessonPayload, error) {
	*k.key = apiKey
	return k.inner.GenerateLesson(ctx, apiKey, in)
}

func algebraGraphJSON() json.RawMessage {
	return json.RawMessage(`{
		"title": "Algebra",
		"description": "Solving equations.",
		"nodes": [
			{"id": "A", "label": "Variables"},
			{"id": "B", "label": "Linear equations"}
		],
		"edges": [{"source": "A", "target": "B"}]
	}`)
}

func topicByTitle(t *testing.T, g *SubjectGraph, title string) store.Topic {
	t.Helper()
	for _, tp := range g.Topics {
		if tp.Title == title {
			return tp
		}
	}
	t.Fatalf("no topic titled %q", title)
	return store.Topic{}
}

func TestAlgebraScenario(t *testing.T) {
	f := newFixture(t)
	f.withKey(alice)

	f.mock.AddResponse(llm.MockResponse{Content: algebraGraphJSON()})
	g, err := f.m.GenerateSubjectGraph(f.ctx, alice, GraphRequest{TopicDeclaration: "Algebra"})
	require.NoError(t, err)
	a := topicByTitle(t, g, "Variables").ID
	b := topicByTitle(t, g, "Linear equations").ID

	assert.Equal(t, topicgraph.StatusAvailable, f.status(a))
	assert.Equal(t, topicgraph.StatusLocked, f.status(b))

	f.mock.AddResponse(llm.MockResponse{Content: lessonJSON("About variables")})
	content, err := f.m.GenerateTopicContent(f.ctx, alice, a)
	require.NoError(t, err)
	assert.Equal(t, topicgraph.StatusGenerated, content.Status)
	assert.Equal(t, topicgraph.StatusGenerated, f.status(a))

	unlocked, err := f.m.CompleteTopic(f.ctx, alice, a)
	require.NoError(t, err)
	assert.Equal(t, []string{b}, unlocked)
	assert.Equal(t, topicgraph.StatusCompleted, f.status(a))
	assert.Equal(t, topicgraph.StatusAvailable, f.status(b))

	f.mock.AddResponse(llm.MockResponse{Content: lessonJSON("About equations")})
	_, err = f.m.GenerateTopicContent(f.ctx, alice, b)
	require.NoError(t, err)
	assert.Equal(t, topicgraph.StatusGenerated, f.status(b))

	// The lesson prompt for B mentions its completed prerequisite.
	lastCall, ok := f.mock.LastCall()
	require.True(t, ok)
	assert.Contains(t, lastCall.Prompt(), "- Variables")
	assert.Equal(t, alice, lastCall.UserID)
	assert.Equal(t, "lesson", lastCall.Purpose)

	_, err = f.m.CompleteTopic(f.ctx, alice, b)
	require.NoError(t, err)
	assert.Equal(t, topicgraph.StatusCompleted, f.status(b))
}

func TestGenerateSubjectGraph_InitialStatusesAndLayout(t *testing.T) {
	f := newFixture(t)
	f.withKey(alice)
	f.mock.AddResponse(llm.MockResponse{Content: json.RawMessage(`{
		"title": "Diamond",
		"nodes": [
			{"id": "r", "label": "Root"},
			{"id": "x", "label": "Left"},
			{"id": "y", "label": "Right"},
			{"id": "z", "label": "Join"},
			{"id": "solo", "label": "Solo"}
		],
		"edges": [
			{"source": "r", "target": "x"},
			{"source": "r", "target": "y"},
			{"source": "x", "target": "z", "label": "needs"},
			{"source": "y", "target": "z"},
			{"source": "y", "target": "z"}
		]
	}`)})

	g, err := f.m.GenerateSubjectGraph(f.ctx, alice, GraphRequest{TopicDeclaration: "diamond", IsPublic: true})
	require.NoError(t, err)
	assert.Equal(t, "Diamond", g.Subject.Title)
	assert.True(t, g.Subject.IsPublic)
	assert.Len(t, g.Topics, 5)
	assert.Len(t, g.Edges, 4, "duplicate edges collapse")

	want := map[string]struct {
		status topicgraph.Status
		level  int
	}{
		"Root":  {topicgraph.StatusAvailable, 0},
		"Solo":  {topicgraph.StatusAvailable, 0},
		"Left":  {topicgraph.StatusLocked, 1},
		"Right": {topicgraph.StatusLocked, 1},
		"Join":  {topicgraph.StatusLocked, 2},
	}
	for title, w := range want {
		tp := topicByTitle(t, g, title)
		stored, err := f.store.Repos().Topics.Get(f.ctx, tp.ID)
		require.NoError(t, err)
		assert.Equal(t, w.status, stored.Status, title)
		assert.Equal(t, w.level, stored.Level, title)
		assert.Equal(t, float64(w.level)*DefaultConfig().SpacingY, stored.PositionY, title)
	}

	edges, err := f.store.Repos().Edges.ListBySubject(f.ctx, g.Subject.ID)
	require.NoError(t, err)
	assert.Len(t, edges, 4)
}

func TestGenerateSubjectGraph_ValidationRollsBack(t *testing.T) {
	tests := map[string]string{
		"dangling edge": `{"title": "x", "nodes": [{"id": "a", "label": "A"}], "edges": [{"source": "a", "target": "ghost"}]}`,
		"no nodes":      `{"title": "x", "nodes": []}`,
		"duplicate ids": `{"title": "x", "nodes": [{"id": "a", "label": "A"}, {"id": "a", "label": "B"}]}`,
		"self loop":     `{"title": "x", "nodes": [{"id": "a", "label": "A"}], "edges": [{"source": "a", "target": "a"}]}`,
		"cycle":         `{"title": "x", "nodes": [{"id": "a", "label": "A"}, {"id": "b", "label": "B"}], "edges": [{"source": "a", "target": "b"}, {"source": "b", "target": "a"}]}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			f.withKey(alice)
			f.mock.AddResponse(llm.MockResponse{Content: json.RawMessage(body)})

			_, err := f.m.GenerateSubjectGraph(f.ctx, alice, GraphRequest{TopicDeclaration: "x"})
			assert.ErrorIs(t, err, apperrors.ErrValidation)
			assert.Zero(t, f.count("subjects"))
			assert.Zero(t, f.count("topics"))
			assert.Zero(t, f.count("topic_edges"))
		})
	}
}

func TestGenerateSubjectGraph_OverlongLabels(t *testing.T) {
	long := strings.Repeat("x", store.MaxTitleLen+1)
	tests := map[string]string{
		"topic label":   fmt.Sprintf(`{"title": "x", "nodes": [{"id": "a", "label": %q}]}`, long),
		"edge label":    fmt.Sprintf(`{"title": "x", "nodes": [{"id": "a", "label": "A"}, {"id": "b", "label": "B"}], "edges": [{"source": "a", "target": "b", "label": %q}]}`, long),
		"subject title": fmt.Sprintf(`{"title": %q, "nodes": [{"id": "a", "label": "A"}]}`, long),
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			f.withKey(alice)
			f.mock.AddResponse(llm.MockResponse{Content: json.RawMessage(body)})

			_, err := f.m.GenerateSubjectGraph(f.ctx, alice, GraphRequest{TopicDeclaration: "x"})
			assert.ErrorIs(t, err, apperrors.ErrValidation)
			assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
			assert.Zero(t, f.count("subjects"))
			assert.Zero(t, f.count("topics"))
		})
	}
}

func TestGenerateSubjectGraph_LongDeclarationTitleIsClipped(t *testing.T) {
	f := newFixture(t)
	f.withKey(alice)
	f.mock.AddResponse(llm.MockResponse{Content: json.RawMessage(`{"title": "", "nodes": [{"id": "a", "label": "A"}]}`)})

	declaration := strings.Repeat("é", store.MaxTitleLen+40)
	g, err := f.m.GenerateSubjectGraph(f.ctx, alice, GraphRequest{TopicDeclaration: declaration})
	require.NoError(t, err)
	assert.Equal(t, store.MaxTitleLen, len([]rune(g.Subject.Title)))
	assert.True(t, strings.HasPrefix(declaration, g.Subject.Title))
}

func TestGenerateSubjectGraph_RequestValidation(t *testing.T) {
	f := newFixture(t)
	f.withKey(alice)

	for _, req := range []GraphRequest{
		{},
		{TopicDeclaration: "  "},
		{TopicDeclaration: "Algebra", SourceMaterial: "some notes"},
	} {
		_, err := f.m.GenerateSubjectGraph(f.ctx, alice, req)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	}
	assert.Zero(t, f.mock.CallCount())
}

func TestGenerateSubjectGraph_FromSourceMaterial(t *testing.T) {
	f := newFixture(t)
	f.withKey(alice)
	f.mock.AddResponse(llm.MockResponse{Content: algebraGraphJSON()})

	_, err := f.m.GenerateSubjectGraph(f.ctx, alice, GraphRequest{SourceMaterial: "Chapter 1: variables."})
	require.NoError(t, err)
	calls := f.mock.Calls()
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].Prompt(), "Chapter 1: variables.")
	assert.Equal(t, "topic-graph", calls[0].Purpose)
	assert.Equal(t, 1, f.count("subjects"))
}

func TestGenerateSubjectGraph_APIKeyMissing(t *testing.T) {
	f := newFixture(t)
	_, err := f.m.GenerateSubjectGraph(f.ctx, alice, GraphRequest{TopicDeclaration: "Algebra"})
	assert.ErrorIs(t, err, apperrors.ErrAPIKeyMissing)
	assert.Zero(t, f.mock.CallCount())
}

func TestGenerateTopicContent_APIKeyMissing(t *testing.T) {
	f := newFixture(t)
	f.seed("s1", alice, map[string]topicgraph.Status{"t": topicgraph.StatusAvailable})

	_, err := f.m.GenerateTopicContent(f.ctx, alice, "t")
	assert.ErrorIs(t, err, apperrors.ErrAPIKeyMissing)

	// A profile without a key behaves the same.
	_, err = f.m.UpdateProfile(f.ctx, alice, ProfileUpdate{Occupation: "Student"})
	require.NoError(t, err)
	_, err = f.m.GenerateTopicContent(f.ctx, alice, "t")
	assert.ErrorIs(t, err, apperrors.ErrAPIKeyMissing)

	assert.Zero(t, f.count("topic_contents"))
	assert.Equal(t, topicgraph.StatusAvailable, f.status("t"))
	assert.Zero(t, f.mock.CallCount())
}

func TestGenerateTopicContent_UpstreamFailures(t *testing.T) {
	tests := []struct {
		name string
		resp llm.MockResponse
		want error
	}{
		{"rate limit", llm.MockResponse{Err: &llm.ErrRateLimit{Err: errors.New("429 quota")}}, apperrors.ErrUpstreamQuotaExceeded},
		{"auth", llm.MockResponse{Err: &llm.ErrAuth{StatusCode: 401, Err: errors.New("bad key")}}, apperrors.ErrUpstreamQuotaExceeded},
		{"schema", llm.MockResponse{Err: &llm.ErrInvalidResponse{Err: errors.New("missing overview")}}, apperrors.ErrMalformedResponse},
		{"truncated", llm.MockResponse{Err: &llm.ErrMaxTokensExceeded{}}, apperrors.ErrMalformedResponse},
		{"cut off", llm.MockResponse{Content: json.RawMessage(`{"overview": "Vari`), Truncated: true}, apperrors.ErrMalformedResponse},
		{"unparseable", llm.MockResponse{Content: json.RawMessage(`{"overview": `)}, apperrors.ErrMalformedResponse},
		{"empty lesson", llm.MockResponse{Content: json.RawMessage(`{"overview": ""}`)}, apperrors.ErrMalformedResponse},
		{"unavailable", llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("502")}}, apperrors.ErrUpstream},
		{"rejected", llm.MockResponse{Err: &llm.ErrRequestRejected{StatusCode: 400, Err: errors.New("bad key")}}, apperrors.ErrUpstream},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.withKey(alice)
			f.seed("s1", alice, map[string]topicgraph.Status{"t": topicgraph.StatusAvailable})
			f.mock.AddResponse(tt.resp)

			_, err := f.m.GenerateTopicContent(f.ctx, alice, "t")
			assert.ErrorIs(t, err, tt.want)
			assert.NotContains(t, err.Error(), "bad key", "upstream text stays out of the error")
			assert.Zero(t, f.count("topic_contents"))
			assert.Equal(t, topicgraph.StatusAvailable, f.status("t"))
		})
	}
}

func TestGenerateTopicContent_Timeout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GenerationTimeout = 20 * time.Millisecond
	f := newFixtureWith(t, blockingProvider{}, cfg)
	f.withKey(alice)
	f.seed("s1", alice, map[string]topicgraph.Status{"t": topicgraph.StatusAvailable})

	start := time.Now()
	_, err := f.m.GenerateTopicContent(f.ctx, alice, "t")
	assert.ErrorIs(t, err, apperrors.ErrUpstreamTimeout)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Zero(t, f.count("topic_contents"))
}

func TestGenerateTopicContent_CallerCancels(t *testing.T) {
	f := newFixtureWith(t, blockingProvider{}, DefaultConfig())
	f.withKey(alice)
	f.seed("s1", alice, map[string]topicgraph.Status{"t": topicgraph.StatusAvailable})

	ctx, cancel := context.WithCancel(f.ctx)
	defer cancel()
	time.AfterFunc(20*time.Millisecond, cancel)

	_, err := f.m.GenerateTopicContent(ctx, alice, "t")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, apperrors.KindCanceled, apperrors.KindOf(err))
	assert.Zero(t, f.count("topic_contents"))
	assert.Equal(t, topicgraph.StatusAvailable, f.status("t"))
}

func TestGenerateTopicContent_LockedTopic(t *testing.T) {
	f := newFixture(t)
	f.withKey(alice)
	f.seed("s1", alice, map[string]topicgraph.Status{
		"p": topicgraph.StatusAvailable,
		"t": topicgraph.StatusLocked,
	}, [2]string{"p", "t"})

	_, err := f.m.GenerateTopicContent(f.ctx, alice, "t")
	assert.ErrorIs(t, err, apperrors.ErrTopicLocked)
	assert.Zero(t, f.mock.CallCount())
}

func TestGenerateTopicContent_PersonalizesPrompt(t *testing.T) {
	f := newFixture(t)
	f.withKey(alice)
	_, err := f.m.UpdateProfile(f.ctx, alice, ProfileUpdate{Occupation: "Nurse", LearningStyle: "visual"})
	require.NoError(t, err)
	f.seed("s1", alice, map[string]topicgraph.Status{"t": topicgraph.StatusAvailable})

	f.mock.AddResponse(llm.MockResponse{Content: lessonJSON("Dosage maths")})
	_, err = f.m.GenerateTopicContent(f.ctx, alice, "t")
	require.NoError(t, err)

	call, ok := f.mock.LastCall()
	require.True(t, ok)
	assert.Contains(t, call.Prompt(), "Occupation: Nurse")
	assert.Contains(t, call.Prompt(), "Learning style: visual")
	assert.Same(t, generation.LessonSchema, call.Request.Schema)
}

func TestGenerateTopicContent_LockedTopicWithoutKey(t *testing.T) {
	f := newFixture(t)
	f.seed("s1", alice, map[string]topicgraph.Status{
		"a": topicgraph.StatusAvailable,
		"b": topicgraph.StatusLocked,
	}, [2]string{"a", "b"})

	_, err := f.m.GenerateTopicContent(f.ctx, alice, "b")
	assert.ErrorIs(t, err, apperrors.ErrAPIKeyMissing)
	assert.Equal(t, apperrors.KindAPIKeyMissing, apperrors.KindOf(err))
	assert.Zero(t, f.count("topic_contents"))
	assert.Equal(t, topicgraph.StatusLocked, f.status("b"))
	assert.Zero(t, f.mock.CallCount())
}

func TestGenerateTopicContent_RegenerationKeepsStatus(t *testing.T) {
	f := newFixture(t)
	f.withKey(alice)
	f.seed("s1", alice, map[string]topicgraph.Status{"t": topicgraph.StatusCompleted})

	f.mock.AddResponse(llm.MockResponse{Content: lessonJSON("first")})
	f.mock.AddResponse(llm.MockResponse{Content: lessonJSON("second")})

	_, err := f.m.GenerateTopicContent(f.ctx, alice, "t")
	require.NoError(t, err)
	out, err := f.m.GenerateTopicContent(f.ctx, alice, "t")
	require.NoError(t, err)
	assert.Equal(t, topicgraph.StatusCompleted, out.Status)

	stored, err := f.m.GetTopicContent(f.ctx, alice, "t")
	require.NoError(t, err)
	assert.Equal(t, "second", stored.Lesson.Overview)
	assert.Equal(t, 1, f.count("topic_contents"))
}

func TestGenerateTopicContent_ForeignTopic(t *testing.T) {
	f := newFixture(t)
	f.withKey(alice)
	f.seed("s1", bob, map[string]topicgraph.Status{"t": topicgraph.StatusAvailable})

	_, err := f.m.GenerateTopicContent(f.ctx, alice, "t")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestGenerateTopicContent_UsesDecryptedKey(t *testing.T) {
	f := newFixture(t)
	f.withKey(alice)
	f.seed("s1", alice, map[string]topicgraph.Status{"t": topicgraph.StatusAvailable})

	var seen string
	f.m.gen = keyRecorder{inner: f.m.gen, key: &seen}
	f.mock.AddResponse(llm.MockResponse{Content: lessonJSON("x")})

	_, err := f.m.GenerateTopicContent(f.ctx, alice, "t")
	require.NoError(t, err)
	assert.Equal(t, "sk-test-key", seen)
}
