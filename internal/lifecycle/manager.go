// Package lifecycle implements the topic lifecycle: the state machine that
// moves topics from LOCKED through AVAILABLE and GENERATED to COMPLETED, and
// the generation calls that populate subjects and lessons.
package lifecycle

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/learnify/learnify/internal/apperrors"
	"github.com/learnify/learnify/internal/generation"
	"github.com/learnify/learnify/internal/logging"
	"github.com/learnify/learnify/internal/store"
	"github.com/learnify/learnify/internal/topicgraph"
)

// Config holds lifecycle settings.
type Config struct {
	// GenerationTimeout bounds a single call to the generator.
	GenerationTimeout time.Duration

	// Layout spacing for generated graphs.
	SpacingX float64
	SpacingY float64
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		GenerationTimeout: 60 * time.Second,
		SpacingX:          240,
		SpacingY:          160,
	}
}

// Cipher seals the per-user generation credential.
type Cipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(encrypted string) (string, error)
}

// Manager owns topic state transitions. All collaborators are injected.
type Manager struct {
	store  store.Transactor
	gen    generation.Generator
	cipher Cipher
	logger *logging.Logger
	cfg    Config
}

// NewManager creates a Manager.
func NewManager(st store.Transactor, gen generation.Generator, cipher Cipher, logger *logging.Logger, cfg Config) *Manager {
	if logger == nil {
		logger = logging.Nop()
	}
	if cfg.GenerationTimeout <= 0 {
		cfg.GenerationTimeout = DefaultConfig().GenerationTimeout
	}
	return &Manager{store: st, gen: gen, cipher: cipher, logger: logger, cfg: cfg}
}

func requireUser(userID string) error {
	if userID == "" {
		return fmt.Errorf("no acting user: %w", apperrors.ErrUnauthorized)
	}
	return nil
}

// ownedSubject loads a subject owned by userID. Subjects of other users
// report NotFound so their existence is not leaked.
func ownedSubject(ctx context.Context, r store.Repos, userID, subjectID string) (*store.Subject, error) {
	s, err := r.Subjects.Get(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	if s.OwnerID != userID {
		return nil, fmt.Errorf("subject %s: %w", subjectID, apperrors.ErrNotFound)
	}
	return s, nil
}

// readableSubject loads a subject visible to userID: their own, or any
// public subject. userID may be empty for anonymous reads.
func readableSubject(ctx context.Context, r store.Repos, userID, subjectID string) (*store.Subject, error) {
	s, err := r.Subjects.Get(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	if s.IsPublic || (userID != "" && s.OwnerID == userID) {
		return s, nil
	}
	return nil, fmt.Errorf("subject %s: %w", subjectID, apperrors.ErrNotFound)
}

// ownedTopic loads a topic whose subject is owned by userID.
func ownedTopic(ctx context.Context, r store.Repos, userID, topicID string) (*store.Topic, *store.Subject, error) {
	t, err := r.Topics.Get(ctx, topicID)
	if err != nil {
		return nil, nil, err
	}
	s, err := r.Subjects.Get(ctx, t.SubjectID)
	if err != nil {
		return nil, nil, err
	}
	if s.OwnerID != userID {
		return nil, nil, fmt.Errorf("topic %s: %w", topicID, apperrors.ErrNotFound)
	}
	return t, s, nil
}

// loadGraph builds the prerequisite graph of a subject from storage.
func loadGraph(ctx context.Context, r store.Repos, subjectID string) (*topicgraph.Graph, []store.Topic, []store.TopicEdge, error) {
	topics, err := r.Topics.ListBySubject(ctx, subjectID)
	if err != nil {
		return nil, nil, nil, err
	}
	edges, err := r.Edges.ListBySubject(ctx, subjectID)
	if err != nil {
		return nil, nil, nil, err
	}

	nodes := make([]topicgraph.Node, len(topics))
	for i, t := range topics {
		nodes[i] = topicgraph.Node{ID: t.ID, Status: t.Status}
	}
	links := make([]topicgraph.Edge, len(edges))
	for i, e := range edges {
		links[i] = topicgraph.Edge{Parent: e.ParentID, Child: e.ChildID}
	}
	return topicgraph.New(nodes, links), topics, edges, nil
}

// checkTitle rejects titles and labels longer than the store holds.
func checkTitle(what, s string) error {
	if n := utf8.RuneCountInString(strings.TrimSpace(s)); n > store.MaxTitleLen {
		return fmt.Errorf("%s is %d characters, at most %d allowed: %w", what, n, store.MaxTitleLen, apperrors.ErrValidation)
	}
	return nil
}

// clip shortens s to at most n characters.
func clip(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:n]))
}
