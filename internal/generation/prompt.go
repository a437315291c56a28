package generation

import (
	"fmt"
	"strings"
)

const graphSystemPrompt = `You are a curriculum designer. You break a subject down into a small graph of study topics ordered by prerequisites, so a learner can work through them one at a time.`

func buildGraphUserMessage(input GraphInput, maxSourceRunes int) string {
	var b strings.Builder

	if input.SourceMaterial != "" {
		source, truncated := truncateRunes(input.SourceMaterial, maxSourceRunes)
		b.WriteString("Build the topic graph from this source material:\n\n")
		b.WriteString("<source>\n")
		b.WriteString(source)
		if truncated {
			b.WriteString("\n[source truncated]")
		}
		b.WriteString("\n</source>\n")
	} else {
		fmt.Fprintf(&b, "Subject: %s\n", strings.TrimSpace(input.TopicDeclaration))
	}

	writeProfile(&b, input.Profile)

	b.WriteString(`
Instructions:
1. Produce between 5 and 15 topics. Give each a short unique id (t1, t2, ...), a title as label and a one-sentence description.
2. Add an edge from source to target when source must be learned before target.
3. The graph must not contain cycles. A topic must never be its own prerequisite.
4. Every edge must reference ids from the nodes list.
5. Start with foundational topics that have no prerequisites.`)

	return b.String()
}

const lessonSystemPrompt = `You are a patient, precise teacher. You write a self-contained lesson for one topic of a larger subject, pitched at the learner described below.`

func buildLessonUserMessage(input LessonInput) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Subject: %s\n", input.SubjectTitle)
	fmt.Fprintf(&b, "Topic: %s\n", input.TopicTitle)
	if input.TopicDescription != "" {
		fmt.Fprintf(&b, "Topic description: %s\n", input.TopicDescription)
	}

	b.WriteString("\nAlready completed prerequisites:\n")
	if len(input.CompletedPrerequisites) == 0 {
		b.WriteString("None\n")
	} else {
		for _, title := range input.CompletedPrerequisites {
			fmt.Fprintf(&b, "- %s\n", title)
		}
	}

	writeProfile(&b, input.Profile)

	b.WriteString(`
Instructions:
1. Write a one-paragraph overview.
2. Split the lesson into 3-6 sections with markdown content. Add code only where the topic is about programming.
3. Add 5-10 flashcards and a quiz of 3-5 multiple-choice questions with the index of the correct option.
4. Add a Mermaid diagram when a picture helps.
5. Build on the completed prerequisites instead of re-teaching them.
6. List common mistakes and a real-world application.`)

	return b.String()
}

func writeProfile(b *strings.Builder, p *Profile) {
	if p == nil {
		return
	}
	fields := []struct{ label, value string }{
		{"Occupation", p.Occupation},
		{"Education level", p.EducationLevel},
		{"Learning style", p.LearningStyle},
		{"Learning schedule", p.LearningSchedule},
	}
	var lines []string
	for _, f := range fields {
		if v := strings.TrimSpace(f.value); v != "" {
			lines = append(lines, fmt.Sprintf("- %s: %s", f.label, v))
		}
	}
	if len(lines) == 0 {
		return
	}
	b.WriteString("\nLearner profile:\n")
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n")
}

// truncateRunes cuts s to at most max runes. max <= 0 means no limit.
func truncateRunes(s string, max int) (string, bool) {
	if max <= 0 {
		return s, false
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i], true
		}
		n++
	}
	return s, false
}
