package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// textSize pushes string columns past the varchar limit so PostgreSQL
// stores them as text. SQLite ignores the size.
const textSize = 10<<20 + 1

// MaxTitleLen is the longest subject title, topic title or edge label, in
// characters, the tables hold.
const MaxTitleLen = 512

var (
	// SubjectsColumns holds the columns for the "subjects" table.
	SubjectsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Size: 36},
		{Name: "owner_id", Type: field.TypeString, Size: 128},
		{Name: "title", Type: field.TypeString, Size: MaxTitleLen},
		{Name: "description", Type: field.TypeString, Size: textSize, Default: ""},
		{Name: "is_public", Type: field.TypeBool, Default: false},
		{Name: "created_at", Type: field.TypeTime},
	}
	// SubjectsTable holds the schema information for the "subjects" table.
	SubjectsTable = &schema.Table{
		Name:       "subjects",
		Columns:    SubjectsColumns,
		PrimaryKey: []*schema.Column{SubjectsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "subject_owner_id", Unique: false, Columns: []*schema.Column{SubjectsColumns[1]}},
			{Name: "subject_is_public", Unique: false, Columns: []*schema.Column{SubjectsColumns[4]}},
		},
	}

	// TopicsColumns holds the columns for the "topics" table.
	TopicsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Size: 36},
		{Name: "subject_id", Type: field.TypeString, Size: 36},
		{Name: "title", Type: field.TypeString, Size: MaxTitleLen},
		{Name: "description", Type: field.TypeString, Size: textSize, Default: ""},
		{Name: "level", Type: field.TypeInt, Default: 0},
		{Name: "status", Type: field.TypeString, Size: 16},
		{Name: "position_x", Type: field.TypeFloat64, Default: 0},
		{Name: "position_y", Type: field.TypeFloat64, Default: 0},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// TopicsTable holds the schema information for the "topics" table.
	TopicsTable = &schema.Table{
		Name:       "topics",
		Columns:    TopicsColumns,
		PrimaryKey: []*schema.Column{TopicsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "topics_subjects_topics",
				Columns:    []*schema.Column{TopicsColumns[1]},
				RefColumns: []*schema.Column{SubjectsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{Name: "topic_subject_id", Unique: false, Columns: []*schema.Column{TopicsColumns[1]}},
		},
	}

	// TopicEdgesColumns holds the columns for the "topic_edges" table.
	TopicEdgesColumns = []*schema.Column{
		{Name: "parent_topic_id", Type: field.TypeString, Size: 36},
		{Name: "child_topic_id", Type: field.TypeString, Size: 36},
		{Name: "subject_id", Type: field.TypeString, Size: 36},
		{Name: "label", Type: field.TypeString, Size: MaxTitleLen, Default: ""},
	}
	// TopicEdgesTable holds the schema information for the "topic_edges" table.
	TopicEdgesTable = &schema.Table{
		Name:       "topic_edges",
		Columns:    TopicEdgesColumns,
		PrimaryKey: []*schema.Column{TopicEdgesColumns[0], TopicEdgesColumns[1]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "topic_edges_topics_parent",
				Columns:    []*schema.Column{TopicEdgesColumns[0]},
				RefColumns: []*schema.Column{TopicsColumns[0]},
				OnDelete:   schema.Cascade,
			},
			{
				Symbol:     "topic_edges_topics_child",
				Columns:    []*schema.Column{TopicEdgesColumns[1]},
				RefColumns: []*schema.Column{TopicsColumns[0]},
				OnDelete:   schema.Cascade,
			},
			{
				Symbol:     "topic_edges_subjects_edges",
				Columns:    []*schema.Column{TopicEdgesColumns[2]},
				RefColumns: []*schema.Column{SubjectsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{Name: "topicedge_subject_id", Unique: false, Columns: []*schema.Column{TopicEdgesColumns[2]}},
			{Name: "topicedge_child_topic_id", Unique: false, Columns: []*schema.Column{TopicEdgesColumns[1]}},
		},
	}

	// TopicContentsColumns holds the columns for the "topic_contents" table.
	TopicContentsColumns = []*schema.Column{
		{Name: "topic_id", Type: field.TypeString, Size: 36},
		{Name: "content_json", Type: field.TypeString, Size: textSize},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// TopicContentsTable holds the schema information for the "topic_contents" table.
	TopicContentsTable = &schema.Table{
		Name:       "topic_contents",
		Columns:    TopicContentsColumns,
		PrimaryKey: []*schema.Column{TopicContentsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "topic_contents_topics_content",
				Columns:    []*schema.Column{TopicContentsColumns[0]},
				RefColumns: []*schema.Column{TopicsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
	}

	// ProfilesColumns holds the columns for the "profiles" table.
	ProfilesColumns = []*schema.Column{
		{Name: "user_id", Type: field.TypeString, Size: 128},
		{Name: "full_name", Type: field.TypeString, Size: 256, Default: ""},
		{Name: "occupation", Type: field.TypeString, Size: 256, Default: ""},
		{Name: "education_level", Type: field.TypeString, Size: 128, Default: ""},
		{Name: "learning_style", Type: field.TypeString, Size: 128, Default: ""},
		{Name: "learning_schedule", Type: field.TypeString, Size: 128, Default: ""},
		{Name: "encrypted_api_key", Type: field.TypeString, Size: textSize, Default: ""},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// ProfilesTable holds the schema information for the "profiles" table.
	ProfilesTable = &schema.Table{
		Name:       "profiles",
		Columns:    ProfilesColumns,
		PrimaryKey: []*schema.Column{ProfilesColumns[0]},
	}

	// LlmRequestEventsColumns holds the columns for the "llm_request_events" table.
	LlmRequestEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "user_id", Type: field.TypeString, Size: 128, Default: ""},
		{Name: "provider", Type: field.TypeString, Size: 64},
		{Name: "model", Type: field.TypeString, Size: 128},
		{Name: "purpose", Type: field.TypeString, Size: 64},
		{Name: "input_tokens", Type: field.TypeInt, Default: 0},
		{Name: "output_tokens", Type: field.TypeInt, Default: 0},
		{Name: "latency_ms", Type: field.TypeInt64, Default: 0},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Size: textSize, Default: ""},
		{Name: "request_body", Type: field.TypeString, Size: textSize, Default: ""},
		{Name: "response_body", Type: field.TypeString, Size: textSize, Default: ""},
	}
	// LlmRequestEventsTable holds the schema information for the "llm_request_events" table.
	LlmRequestEventsTable = &schema.Table{
		Name:       "llm_request_events",
		Columns:    LlmRequestEventsColumns,
		PrimaryKey: []*schema.Column{LlmRequestEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "llmrequestevent_user_id", Unique: false, Columns: []*schema.Column{LlmRequestEventsColumns[2]}},
			{Name: "llmrequestevent_timestamp", Unique: false, Columns: []*schema.Column{LlmRequestEventsColumns[1]}},
		},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		SubjectsTable,
		TopicsTable,
		TopicEdgesTable,
		TopicContentsTable,
		ProfilesTable,
		LlmRequestEventsTable,
	}
)

func init() {
	TopicsTable.ForeignKeys[0].RefTable = SubjectsTable
	TopicEdgesTable.ForeignKeys[0].RefTable = TopicsTable
	TopicEdgesTable.ForeignKeys[1].RefTable = TopicsTable
	TopicEdgesTable.ForeignKeys[2].RefTable = SubjectsTable
	TopicContentsTable.ForeignKeys[0].RefTable = TopicsTable
}
