package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var topicCmd = &cobra.Command{
	Use:   "topic",
	Short: "Generate lessons and move topics through their lifecycle",
}

var topicAddCmd = &cobra.Command{
	Use:   "add <subject-id> <title>",
	Short: "Add a topic to a subject",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		description, _ := cmd.Flags().GetString("description")
		t, err := a.mgr.AddTopic(cmd.Context(), actingUser(cmd), args[0], args[1], description)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added topic %s (%s)\n", t.Title, t.ID)
		return nil
	},
}

var topicGenerateCmd = &cobra.Command{
	Use:   "generate <topic-id>",
	Short: "Generate the lesson for an unlocked topic",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		content, err := a.mgr.GenerateTopicContent(cmd.Context(), actingUser(cmd), args[0])
		if err != nil {
			return err
		}
		printLesson(cmd.OutOrStdout(), content)
		return nil
	},
}

var topicContentCmd = &cobra.Command{
	Use:   "content <topic-id>",
	Short: "Show the generated lesson of a topic",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		content, err := a.mgr.GetTopicContent(cmd.Context(), actingUser(cmd), args[0])
		if err != nil {
			return err
		}
		printLesson(cmd.OutOrStdout(), content)
		return nil
	},
}

var topicCompleteCmd = &cobra.Command{
	Use:   "complete <topic-id>",
	Short: "Mark a topic completed and unlock its dependents",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		ids, err := a.mgr.CompleteTopic(cmd.Context(), actingUser(cmd), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Completed.")
		printUnlocked(cmd.OutOrStdout(), ids)
		return nil
	},
}

var topicLinkCmd = &cobra.Command{
	Use:   "link <parent-id> <child-id>",
	Short: "Make parent a prerequisite of child",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.mgr.LinkTopics(cmd.Context(), actingUser(cmd), args[0], args[1]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Linked.")
		return nil
	},
}

var topicUnlinkCmd = &cobra.Command{
	Use:   "unlink <parent-id> <child-id>",
	Short: "Remove a prerequisite link",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		ids, err := a.mgr.UnlinkTopics(cmd.Context(), actingUser(cmd), args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Unlinked.")
		printUnlocked(cmd.OutOrStdout(), ids)
		return nil
	},
}

var topicUnlockCmd = &cobra.Command{
	Use:   "unlock <subject-id>",
	Short: "Unlock every topic whose prerequisites are completed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		ids, err := a.mgr.UnlockReachableTopics(cmd.Context(), actingUser(cmd), args[0])
		if err != nil {
			return err
		}
		printUnlocked(cmd.OutOrStdout(), ids)
		return nil
	},
}

func init() {
	topicAddCmd.Flags().StringP("description", "d", "", "Topic description")

	topicCmd.AddCommand(topicAddCmd)
	topicCmd.AddCommand(topicGenerateCmd)
	topicCmd.AddCommand(topicContentCmd)
	topicCmd.AddCommand(topicCompleteCmd)
	topicCmd.AddCommand(topicLinkCmd)
	topicCmd.AddCommand(topicUnlinkCmd)
	topicCmd.AddCommand(topicUnlockCmd)
}
