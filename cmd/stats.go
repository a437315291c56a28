package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/learnify/learnify/internal/topicgraph"
	"github.com/learnify/learnify/internal/ui/theme"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show learning progress per subject",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		user := actingUser(cmd)
		subjects, err := a.mgr.ListSubjects(ctx, user)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if len(subjects) == 0 {
			fmt.Fprintln(w, "No subjects yet.")
			return nil
		}

		statuses := topicgraph.AllStatuses()
		fmt.Fprintf(w, "%-32s", "Subject")
		for _, st := range statuses {
			fmt.Fprintf(w, "  %10s", st.Label())
		}
		fmt.Fprintf(w, "  %8s\n", "Progress")
		fmt.Fprintln(w, theme.Divider(32+12*len(statuses)+10))

		for _, s := range subjects {
			g, err := a.mgr.GetSubjectGraph(ctx, user, s.ID)
			if err != nil {
				return err
			}
			counts := make(map[topicgraph.Status]int, len(statuses))
			for _, t := range g.Topics {
				counts[t.Status]++
			}

			fmt.Fprintf(w, "%-32s", truncate(s.Title, 32))
			for _, st := range statuses {
				fmt.Fprintf(w, "  %10d", counts[st])
			}
			progress := "-"
			if n := len(g.Topics); n > 0 {
				progress = fmt.Sprintf("%d%%", counts[topicgraph.StatusCompleted]*100/n)
			}
			fmt.Fprintf(w, "  %8s\n", progress)
		}
		return nil
	},
}
