package store

import (
	"context"
	"time"

	"github.com/learnify/learnify/internal/topicgraph"
)

// Subject is a learner-owned container of topics.
type Subject struct {
	ID          string    `sql:"id" json:"id"`
	OwnerID     string    `sql:"owner_id" json:"owner_id"`
	Title       string    `sql:"title" json:"title"`
	Description string    `sql:"description" json:"description"`
	IsPublic    bool      `sql:"is_public" json:"is_public"`
	CreatedAt   time.Time `sql:"created_at" json:"created_at"`
}

// Topic is one node of a subject's prerequisite graph.
type Topic struct {
	ID          string            `sql:"id" json:"id"`
	SubjectID   string            `sql:"subject_id" json:"subject_id"`
	Title       string            `sql:"title" json:"title"`
	Description string            `sql:"description" json:"description"`
	Level       int               `sql:"level" json:"level"`
	Status      topicgraph.Status `sql:"status" json:"status"`
	PositionX   float64           `sql:"position_x" json:"position_x"`
	PositionY   float64           `sql:"position_y" json:"position_y"`
	CreatedAt   time.Time         `sql:"created_at" json:"created_at"`
	UpdatedAt   time.Time         `sql:"updated_at" json:"updated_at"`
}

// TopicEdge is a prerequisite link between two topics of the same subject.
type TopicEdge struct {
	ParentID  string `sql:"parent_topic_id" json:"parent_topic_id"`
	ChildID   string `sql:"child_topic_id" json:"child_topic_id"`
	SubjectID string `sql:"subject_id" json:"subject_id"`
	Label     string `sql:"label" json:"label,omitempty"`
}

// TopicContent holds the generated lesson for a topic as raw JSON.
type TopicContent struct {
	TopicID     string    `sql:"topic_id"`
	ContentJSON string    `sql:"content_json"`
	CreatedAt   time.Time `sql:"created_at"`
	UpdatedAt   time.Time `sql:"updated_at"`
}

// Profile holds a user's learning preferences and their encrypted
// generative-AI credential.
type Profile struct {
	UserID           string    `sql:"user_id" json:"user_id"`
	FullName         string    `sql:"full_name" json:"full_name"`
	Occupation       string    `sql:"occupation" json:"occupation"`
	EducationLevel   string    `sql:"education_level" json:"education_level"`
	LearningStyle    string    `sql:"learning_style" json:"learning_style"`
	LearningSchedule string    `sql:"learning_schedule" json:"learning_schedule"`
	EncryptedAPIKey  string    `sql:"encrypted_api_key" json:"-"`
	UpdatedAt        time.Time `sql:"updated_at" json:"updated_at"`
}

// HasAPIKey reports whether a credential is stored.
func (p *Profile) HasAPIKey() bool {
	return p != nil && p.EncryptedAPIKey != ""
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	UserID       string
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEvent is a stored LLM request event.
type LLMRequestEvent struct {
	ID           int64     `sql:"id"`
	Timestamp    time.Time `sql:"timestamp"`
	UserID       string    `sql:"user_id"`
	Provider     string    `sql:"provider"`
	Model        string    `sql:"model"`
	Purpose      string    `sql:"purpose"`
	InputTokens  int       `sql:"input_tokens"`
	OutputTokens int       `sql:"output_tokens"`
	LatencyMs    int64     `sql:"latency_ms"`
	Success      bool      `sql:"success"`
	ErrorMessage string    `sql:"error_message"`
	RequestBody  string    `sql:"request_body"`
	ResponseBody string    `sql:"response_body"`
}

// LLMUsage aggregates LLM request events per model, and per user for
// LLMUsageByUser.
type LLMUsage struct {
	UserID       string `sql:"user_id"`
	Model        string `sql:"model"`
	Requests     int    `sql:"requests"`
	Failures     int    `sql:"failures"`
	InputTokens  int    `sql:"input_tokens"`
	OutputTokens int    `sql:"output_tokens"`
	LatencyMs    int64  `sql:"latency_ms"`
}

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	UserID string    // only events for this user when set
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// SubjectRepo manages subjects.
type SubjectRepo interface {
	Create(ctx context.Context, s *Subject) error
	// Get returns apperrors.ErrNotFound when the subject does not exist.
	Get(ctx context.Context, id string) (*Subject, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Subject, error)
	ListPublic(ctx context.Context, limit int) ([]Subject, error)
	SetPublic(ctx context.Context, id string, public bool) error
	// Delete removes the subject; topics, edges and content cascade.
	Delete(ctx context.Context, id string) error
}

// TopicRepo manages topics.
type TopicRepo interface {
	Create(ctx context.Context, t *Topic) error
	// Get returns apperrors.ErrNotFound when the topic does not exist.
	Get(ctx context.Context, id string) (*Topic, error)
	ListBySubject(ctx context.Context, subjectID string) ([]Topic, error)
	// SetStatus moves every listed topic to status.
	SetStatus(ctx context.Context, status topicgraph.Status, ids ...string) error
	SetPosition(ctx context.Context, id string, x, y float64) error
}

// EdgeRepo manages prerequisite edges.
type EdgeRepo interface {
	Create(ctx context.Context, e *TopicEdge) error
	Exists(ctx context.Context, parentID, childID string) (bool, error)
	// Delete returns apperrors.ErrNotFound when the edge does not exist.
	Delete(ctx context.Context, parentID, childID string) error
	ListBySubject(ctx context.Context, subjectID string) ([]TopicEdge, error)
}

// ContentRepo manages generated topic content.
type ContentRepo interface {
	// Upsert writes content for a topic, replacing any previous version.
	Upsert(ctx context.Context, topicID, contentJSON string) error
	// Get returns apperrors.ErrNotFound when no content has been generated.
	Get(ctx context.Context, topicID string) (*TopicContent, error)
}

// ProfileRepo manages learner profiles.
type ProfileRepo interface {
	// Get returns apperrors.ErrNotFound when the user has no profile yet.
	Get(ctx context.Context, userID string) (*Profile, error)
	Upsert(ctx context.Context, p *Profile) error
}

// EventRepo provides append and query access to LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error
	// QueryLLMRequests returns events newest first.
	QueryLLMRequests(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error)
	// GetLLMRequest returns apperrors.ErrNotFound for an unknown ID.
	GetLLMRequest(ctx context.Context, id int64) (*LLMRequestEvent, error)
	// LLMUsageByModel aggregates token usage per model.
	LLMUsageByModel(ctx context.Context, opts QueryOpts) ([]LLMUsage, error)
	// LLMUsageByUser aggregates token usage per user and model.
	LLMUsageByUser(ctx context.Context, opts QueryOpts) ([]LLMUsage, error)
}

// Repos bundles every repository bound to one connection or transaction.
type Repos struct {
	Subjects SubjectRepo
	Topics   TopicRepo
	Edges    EdgeRepo
	Contents ContentRepo
	Profiles ProfileRepo
	Events   EventRepo
}

// Transactor gives access to repositories, optionally inside a transaction.
type Transactor interface {
	Repos() Repos
	WithTx(ctx context.Context, fn func(Repos) error) error
}

func newRepos(c conn) Repos {
	return Repos{
		Subjects: &subjectRepo{conn: c},
		Topics:   &topicRepo{conn: c},
		Edges:    &edgeRepo{conn: c},
		Contents: &contentRepo{conn: c},
		Profiles: &profileRepo{conn: c},
		Events:   &eventRepo{conn: c},
	}
}
