package cmd

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/learnify/learnify/internal/lifecycle"
	"github.com/learnify/learnify/internal/store"
	"github.com/learnify/learnify/internal/topicgraph"
	"github.com/learnify/learnify/internal/ui/theme"
)

func printSubjects(w io.Writer, subjects []store.Subject) {
	if len(subjects) == 0 {
		fmt.Fprintln(w, "No subjects yet.")
		return
	}

	fmt.Fprintf(w, "%-36s  %-32s  %-7s  %s\n", "ID", "Title", "Public", "Created")
	fmt.Fprintln(w, theme.Divider(96))
	for _, s := range subjects {
		public := ""
		if s.IsPublic {
			public = "yes"
		}
		fmt.Fprintf(w, "%-36s  %-32s  %-7s  %s\n",
			s.ID, truncate(s.Title, 32), public, s.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
}

func printGraph(w io.Writer, g *lifecycle.SubjectGraph) {
	fmt.Fprintln(w, theme.Title.Render(g.Subject.Title))
	if g.Subject.Description != "" {
		fmt.Fprintln(w, theme.Subtitle.Render(g.Subject.Description))
	}
	fmt.Fprintln(w, theme.Hint.Render(g.Subject.ID))
	fmt.Fprintln(w)

	if len(g.Topics) == 0 {
		fmt.Fprintln(w, "No topics yet.")
		return
	}

	titles := make(map[string]string, len(g.Topics))
	for _, t := range g.Topics {
		titles[t.ID] = t.Title
	}
	parents := make(map[string][]string)
	for _, e := range g.Edges {
		parents[e.ChildID] = append(parents[e.ChildID], titles[e.ParentID])
	}

	topics := slices.Clone(g.Topics)
	slices.SortFunc(topics, func(a, b store.Topic) int {
		return cmp.Or(cmp.Compare(a.Level, b.Level), cmp.Compare(a.Title, b.Title))
	})

	done := 0
	for _, t := range topics {
		line := fmt.Sprintf("%s  L%-2d %s", theme.PadRight(theme.StatusBadge(t.Status), 14), t.Level, t.Title)
		if ps := parents[t.ID]; len(ps) > 0 {
			slices.Sort(ps)
			line += theme.Hint.Render("  after " + strings.Join(ps, ", "))
		}
		fmt.Fprintln(w, line)
		fmt.Fprintln(w, "    "+theme.Hint.Render(t.ID))
		if t.Status == topicgraph.StatusCompleted {
			done++
		}
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%d of %d topics completed\n", done, len(topics))
}

func printLesson(w io.Writer, c *lifecycle.TopicContent) {
	fmt.Fprintln(w, theme.StatusBadge(c.Status))
	if c.Lesson == nil {
		fmt.Fprintln(w, "No lesson content.")
		return
	}
	l := c.Lesson

	fmt.Fprintln(w, theme.Card.Render(l.Overview))
	for _, s := range l.Sections {
		fmt.Fprintln(w)
		fmt.Fprintln(w, theme.Title.Render(s.Title))
		fmt.Fprintln(w, s.Content)
		if s.Code != "" {
			fmt.Fprintln(w, theme.Card.Render(s.Code))
		}
	}
	if l.RealWorldApplication != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, theme.Title.Render("In the real world"))
		fmt.Fprintln(w, l.RealWorldApplication)
	}
	if len(l.CommonMistakes) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, theme.Title.Render("Common mistakes"))
		for _, m := range l.CommonMistakes {
			fmt.Fprintln(w, "  • "+m)
		}
	}
	if len(l.Flashcards) > 0 || len(l.Quiz) > 0 || len(l.Diagrams) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, theme.Hint.Render(fmt.Sprintf("%d flashcards, %d quiz questions, %d diagrams",
			len(l.Flashcards), len(l.Quiz), len(l.Diagrams))))
	}
}

func printUnlocked(w io.Writer, ids []string) {
	if len(ids) == 0 {
		fmt.Fprintln(w, "No topics unlocked.")
		return
	}
	fmt.Fprintf(w, "Unlocked %d topic(s):\n", len(ids))
	for _, id := range ids {
		fmt.Fprintln(w, "  "+id)
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}
