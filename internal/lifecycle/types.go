package lifecycle

import (
	"time"

	"github.com/learnify/learnify/internal/generation"
	"github.com/learnify/learnify/internal/store"
	"github.com/learnify/learnify/internal/topicgraph"
)

// SubjectGraph is a subject with its full topic graph.
type SubjectGraph struct {
	Subject store.Subject     `json:"subject"`
	Topics  []store.Topic     `json:"topics"`
	Edges   []store.TopicEdge `json:"edges"`
}

// TopicContent is the generated lesson of a topic.
type TopicContent struct {
	TopicID   string                    `json:"topic_id"`
	Status    topicgraph.Status         `json:"status"`
	Lesson    *generation.LessonPayload `json:"lesson"`
	UpdatedAt time.Time                 `json:"updated_at"`
}

// GraphRequest asks for a generated subject. Exactly one of
// TopicDeclaration and SourceMaterial must be set.
type GraphRequest struct {
	TopicDeclaration string `json:"topic_declaration"`
	SourceMaterial   string `json:"source_material"`
	IsPublic         bool   `json:"is_public"`
}

// ProfileUpdate replaces a user's learning preferences.
type ProfileUpdate struct {
	FullName         string `json:"full_name"`
	Occupation       string `json:"occupation"`
	EducationLevel   string `json:"education_level"`
	LearningStyle    string `json:"learning_style"`
	LearningSchedule string `json:"learning_schedule"`
}
