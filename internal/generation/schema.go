package generation

import "github.com/learnify/learnify/internal/llm"

// GraphSchema defines the JSON schema for topic graph generation.
var GraphSchema = &llm.Schema{
	Name:        "topic-graph",
	Description: "A directed graph of study topics where edges point from prerequisite to dependent topic",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title": map[string]any{
				"type":        "string",
				"description": "Short title of the subject (2-8 words)",
			},
			"description": map[string]any{
				"type":        "string",
				"description": "One or two sentences describing the subject",
			},
			"nodes": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id": map[string]any{
							"type":        "string",
							"description": "Identifier unique within this graph, e.g. t1",
						},
						"label": map[string]any{
							"type":        "string",
							"description": "Topic title",
						},
						"description": map[string]any{
							"type":        "string",
							"description": "What the topic covers (1-2 sentences)",
						},
						"type": map[string]any{
							"type": "string",
							"enum": []any{"concept", "skill", "practice", "project"},
						},
					},
					"required":             []any{"id", "label"},
					"additionalProperties": false,
				},
			},
			"edges": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"source": map[string]any{
							"type":        "string",
							"description": "ID of the prerequisite topic",
						},
						"target": map[string]any{
							"type":        "string",
							"description": "ID of the topic that depends on source",
						},
						"label": map[string]any{
							"type": "string",
						},
					},
					"required":             []any{"source", "target"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"title", "nodes"},
		"additionalProperties": false,
	},
}

// LessonSchema defines the JSON schema for topic lessons.
var LessonSchema = &llm.Schema{
	Name:        "topic-lesson",
	Description: "A lesson for one topic with sections, flashcards and a short quiz",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"overview": map[string]any{
				"type":        "string",
				"description": "Introduction to the topic (one paragraph)",
			},
			"sections": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"title":   map[string]any{"type": "string"},
						"content": map[string]any{"type": "string", "description": "Markdown body"},
						"code":    map[string]any{"type": "string", "description": "Optional code sample"},
					},
					"required":             []any{"title", "content"},
					"additionalProperties": false,
				},
			},
			"flashcards": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"front": map[string]any{"type": "string"},
						"back":  map[string]any{"type": "string"},
					},
					"required":             []any{"front", "back"},
					"additionalProperties": false,
				},
			},
			"quiz": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"question": map[string]any{"type": "string"},
						"options": map[string]any{
							"type":     "array",
							"items":    map[string]any{"type": "string"},
							"minItems": 2,
						},
						"answer_index": map[string]any{"type": "integer", "minimum": 0},
						"explanation":  map[string]any{"type": "string"},
					},
					"required":             []any{"question", "options", "answer_index"},
					"additionalProperties": false,
				},
			},
			"diagrams": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"title":   map[string]any{"type": "string"},
						"mermaid": map[string]any{"type": "string", "description": "Mermaid diagram source"},
					},
					"required":             []any{"title", "mermaid"},
					"additionalProperties": false,
				},
			},
			"practice_code": map[string]any{
				"type":        "string",
				"description": "Optional exercise, only for programming topics",
			},
			"real_world_application": map[string]any{
				"type": "string",
			},
			"common_mistakes": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
		"required":             []any{"overview"},
		"additionalProperties": false,
	},
}
