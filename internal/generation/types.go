package generation

// Profile carries the learner preferences used to personalise prompts.
type Profile struct {
	FullName         string
	Occupation       string
	EducationLevel   string
	LearningStyle    string
	LearningSchedule string
}

// GraphInput asks for a topic graph. Exactly one of TopicDeclaration and
// SourceMaterial is expected to be set.
type GraphInput struct {
	TopicDeclaration string
	SourceMaterial   string
	Profile          *Profile
}

// GraphPayload is the topic graph returned by the generator.
type GraphPayload struct {
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Nodes       []GraphNode `json:"nodes"`
	Edges       []GraphEdge `json:"edges,omitempty"`
}

// GraphNode is one proposed topic. ID is only meaningful within the payload.
type GraphNode struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type,omitempty"`
}

// GraphEdge links Source (prerequisite) to Target.
type GraphEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Label  string `json:"label,omitempty"`
}

// LessonInput describes the topic a lesson is generated for.
type LessonInput struct {
	SubjectTitle           string
	TopicTitle             string
	TopicDescription       string
	CompletedPrerequisites []string
	Profile                *Profile
}

// LessonPayload is the generated lesson stored as topic content.
type LessonPayload struct {
	Overview             string         `json:"overview"`
	Sections             []Section      `json:"sections,omitempty"`
	Flashcards           []Flashcard    `json:"flashcards,omitempty"`
	Quiz                 []QuizQuestion `json:"quiz,omitempty"`
	Diagrams             []Diagram      `json:"diagrams,omitempty"`
	PracticeCode         string         `json:"practice_code,omitempty"`
	RealWorldApplication string         `json:"real_world_application,omitempty"`
	CommonMistakes       []string       `json:"common_mistakes,omitempty"`
}

type Section struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Code    string `json:"code,omitempty"`
}

type Flashcard struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

type QuizQuestion struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	AnswerIndex int      `json:"answer_index"`
	Explanation string   `json:"explanation,omitempty"`
}

// Diagram is a Mermaid source block rendered by clients.
type Diagram struct {
	Title   string `json:"title"`
	Mermaid string `json:"mermaid"`
}
