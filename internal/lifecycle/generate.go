package lifecycle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/learnify/learnify/internal/apperrors"
	"github.com/learnify/learnify/internal/generation"
	"github.com/learnify/learnify/internal/llm"
	"github.com/learnify/learnify/internal/store"
	"github.com/learnify/learnify/internal/topicgraph"
)

// GenerateTopicContent generates the lesson for a topic with the user's own
// credential and stores it. An AVAILABLE topic becomes GENERATED; GENERATED
// and COMPLETED topics keep their status and get their content replaced.
// A missing credential is reported before anything else; LOCKED topics are
// rejected after that.
//
// The generator runs outside any transaction, bounded by
// Config.GenerationTimeout. The content write happens afterwards.
func (m *Manager) GenerateTopicContent(ctx context.Context, userID, topicID string) (*TopicContent, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	r := m.store.Repos()
	topic, subject, err := ownedTopic(ctx, r, userID, topicID)
	if err != nil {
		return nil, err
	}
	profile, apiKey, err := m.credential(ctx, r, userID)
	if err != nil {
		return nil, err
	}
	if topic.Status == topicgraph.StatusLocked {
		return nil, fmt.Errorf("topic %s: %w", topicID, apperrors.ErrTopicLocked)
	}

	prereqs, err := completedPrerequisites(ctx, r, topic)
	if err != nil {
		return nil, err
	}

	input := generation.LessonInput{
		SubjectTitle:           subject.Title,
		TopicTitle:             topic.Title,
		TopicDescription:       topic.Description,
		CompletedPrerequisites: prereqs,
		Profile:                toGenerationProfile(profile),
	}

	start := time.Now()
	gctx, cancel := context.WithTimeout(llm.WithUser(ctx, userID), m.cfg.GenerationTimeout)
	lesson, err := m.gen.GenerateLesson(gctx, apiKey, input)
	cancel()
	if err != nil {
		return nil, m.classify(gctx, llm.PurposeLesson, err)
	}

	raw, err := json.Marshal(lesson)
	if err != nil {
		return nil, fmt.Errorf("encode lesson: %w", err)
	}

	var out *TopicContent
	err = m.store.WithTx(ctx, func(r store.Repos) error {
		// The topic may have changed while the generator was running.
		current, err := r.Topics.Get(ctx, topicID)
		if err != nil {
			return err
		}
		if current.Status == topicgraph.StatusLocked {
			return fmt.Errorf("topic %s: %w", topicID, apperrors.ErrTopicLocked)
		}
		if err := r.Contents.Upsert(ctx, topicID, string(raw)); err != nil {
			return err
		}
		status := current.Status
		if status == topicgraph.StatusAvailable {
			status = topicgraph.StatusGenerated
			if err := r.Topics.SetStatus(ctx, status, topicID); err != nil {
				return err
			}
		}
		out = &TopicContent{TopicID: topicID, Status: status, Lesson: lesson, UpdatedAt: time.Now().UTC()}
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.logger.Info("topic content generated",
		"user_id", userID,
		"topic_id", topicID,
		"status", string(out.Status),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

// GenerateSubjectGraph asks the generator for a topic graph and persists it
// as a new subject. Nodes without prerequisites start AVAILABLE, the rest
// LOCKED. Nothing is stored unless the whole graph is valid.
func (m *Manager) GenerateSubjectGraph(ctx context.Context, userID string, req GraphRequest) (*SubjectGraph, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	declaration := strings.TrimSpace(req.TopicDeclaration)
	source := strings.TrimSpace(req.SourceMaterial)
	if (declaration == "") == (source == "") {
		return nil, fmt.Errorf("exactly one of topic declaration and source material is required: %w", apperrors.ErrValidation)
	}

	profile, apiKey, err := m.credential(ctx, m.store.Repos(), userID)
	if err != nil {
		return nil, err
	}

	input := generation.GraphInput{
		TopicDeclaration: declaration,
		SourceMaterial:   source,
		Profile:          toGenerationProfile(profile),
	}

	gctx, cancel := context.WithTimeout(llm.WithUser(ctx, userID), m.cfg.GenerationTimeout)
	payload, err := m.gen.GenerateGraph(gctx, apiKey, input)
	cancel()
	if err != nil {
		return nil, m.classify(gctx, llm.PurposeTopicGraph, err)
	}

	graph, err := m.buildSubjectGraph(userID, declaration, req.IsPublic, payload)
	if err != nil {
		return nil, err
	}

	err = m.store.WithTx(ctx, func(r store.Repos) error {
		if err := r.Subjects.Create(ctx, &graph.Subject); err != nil {
			return err
		}
		for i := range graph.Topics {
			if err := r.Topics.Create(ctx, &graph.Topics[i]); err != nil {
				return err
			}
		}
		for i := range graph.Edges {
			if err := r.Edges.Create(ctx, &graph.Edges[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.logger.Info("subject generated",
		"user_id", userID,
		"subject_id", graph.Subject.ID,
		"topics", len(graph.Topics),
		"edges", len(graph.Edges),
	)
	return graph, nil
}

// buildSubjectGraph validates a generated payload and turns it into rows
// with fresh IDs, initial statuses, levels and a layered layout.
func (m *Manager) buildSubjectGraph(userID, declaration string, public bool, p *generation.GraphPayload) (*SubjectGraph, error) {
	nodeIDs := make([]string, len(p.Nodes))
	nodes := make([]topicgraph.Node, len(p.Nodes))
	for i, n := range p.Nodes {
		nodeIDs[i] = n.ID
		nodes[i] = topicgraph.Node{ID: n.ID}
	}
	var edges []topicgraph.Edge
	seen := make(map[topicgraph.Edge]bool, len(p.Edges))
	for _, e := range p.Edges {
		edge := topicgraph.Edge{Parent: e.Source, Child: e.Target}
		if seen[edge] {
			continue
		}
		seen[edge] = true
		edges = append(edges, edge)
	}

	if err := topicgraph.Validate(nodeIDs, edges); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	if err := checkTitle("subject title", p.Title); err != nil {
		return nil, err
	}
	for _, n := range p.Nodes {
		if err := checkTitle("topic "+n.ID+" label", n.Label); err != nil {
			return nil, err
		}
	}
	for _, e := range p.Edges {
		if err := checkTitle("edge "+e.Source+" -> "+e.Target+" label", e.Label); err != nil {
			return nil, err
		}
	}

	g := topicgraph.New(nodes, edges)
	levels := g.Levels()
	positions := g.Layout(m.cfg.SpacingX, m.cfg.SpacingY)

	title := strings.TrimSpace(p.Title)
	if title == "" {
		title = clip(declaration, store.MaxTitleLen)
	}
	if title == "" {
		title = "Untitled subject"
	}

	out := &SubjectGraph{
		Subject: store.Subject{
			ID:          uuid.NewString(),
			OwnerID:     userID,
			Title:       title,
			Description: strings.TrimSpace(p.Description),
			IsPublic:    public,
			CreatedAt:   time.Now().UTC(),
		},
	}

	ids := make(map[string]string, len(p.Nodes))
	for _, n := range p.Nodes {
		ids[n.ID] = uuid.NewString()
		pos := positions[n.ID]
		out.Topics = append(out.Topics, store.Topic{
			ID:          ids[n.ID],
			SubjectID:   out.Subject.ID,
			Title:       strings.TrimSpace(n.Label),
			Description: strings.TrimSpace(n.Description),
			Level:       levels[n.ID],
			Status:      topicgraph.InitialStatus(g.InDegree(n.ID)),
			PositionX:   pos.X,
			PositionY:   pos.Y,
		})
	}
	labels := make(map[topicgraph.Edge]string, len(p.Edges))
	for _, e := range p.Edges {
		edge := topicgraph.Edge{Parent: e.Source, Child: e.Target}
		if _, ok := labels[edge]; !ok {
			labels[edge] = e.Label
		}
	}
	for _, e := range edges {
		out.Edges = append(out.Edges, store.TopicEdge{
			ParentID:  ids[e.Parent],
			ChildID:   ids[e.Child],
			SubjectID: out.Subject.ID,
			Label:     labels[e],
		})
	}
	return out, nil
}

// credential loads the user's profile and decrypts their generation key.
func (m *Manager) credential(ctx context.Context, r store.Repos, userID string) (*store.Profile, string, error) {
	profile, err := r.Profiles.Get(ctx, userID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, "", fmt.Errorf("user %s has no profile: %w", userID, apperrors.ErrAPIKeyMissing)
	}
	if err != nil {
		return nil, "", err
	}
	if !profile.HasAPIKey() {
		return nil, "", fmt.Errorf("user %s: %w", userID, apperrors.ErrAPIKeyMissing)
	}
	key, err := m.cipher.Decrypt(profile.EncryptedAPIKey)
	if err != nil {
		return nil, "", fmt.Errorf("decrypt api key: %w", err)
	}
	return profile, key, nil
}

// classify maps a generator failure to an error kind. The upstream message
// is kept for logs only.
func (m *Manager) classify(ctx context.Context, purpose string, err error) error {
	var (
		rateLimit *llm.ErrRateLimit
		auth      *llm.ErrAuth
		invalid   *llm.ErrInvalidResponse
		truncated *llm.ErrMaxTokensExceeded
		kind      error
	)
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
		kind = apperrors.ErrUpstreamTimeout
	case errors.As(err, &rateLimit), errors.As(err, &auth):
		kind = apperrors.ErrUpstreamQuotaExceeded
	case errors.As(err, &invalid), errors.As(err, &truncated), errors.Is(err, apperrors.ErrMalformedResponse):
		kind = apperrors.ErrMalformedResponse
	case errors.Is(err, context.Canceled), errors.Is(ctx.Err(), context.Canceled):
		m.logger.Info("generation canceled", "purpose", purpose)
		return fmt.Errorf("%s generation canceled: %w", purpose, context.Canceled)
	default:
		kind = apperrors.ErrUpstream
	}

	m.logger.Warn("generation failed", "purpose", purpose, "kind", string(apperrors.KindOf(kind)), "error", err.Error())
	return fmt.Errorf("%s generation: %w", purpose, kind)
}

// completedPrerequisites returns the titles of the topic's COMPLETED parents.
func completedPrerequisites(ctx context.Context, r store.Repos, topic *store.Topic) ([]string, error) {
	g, topics, _, err := loadGraph(ctx, r, topic.SubjectID)
	if err != nil {
		return nil, err
	}
	titles := make(map[string]string, len(topics))
	for _, t := range topics {
		titles[t.ID] = t.Title
	}
	var out []string
	for _, id := range g.Parents(topic.ID) {
		if n, _ := g.Node(id); n.Status == topicgraph.StatusCompleted {
			out = append(out, titles[id])
		}
	}
	return out, nil
}

func toGenerationProfile(p *store.Profile) *generation.Profile {
	if p == nil {
		return nil
	}
	return &generation.Profile{
		FullName:         p.FullName,
		Occupation:       p.Occupation,
		EducationLevel:   p.EducationLevel,
		LearningStyle:    p.LearningStyle,
		LearningSchedule: p.LearningSchedule,
	}
}
