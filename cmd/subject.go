package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/learnify/learnify/internal/lifecycle"
	"github.com/learnify/learnify/internal/store"
)

var subjectCmd = &cobra.Command{
	Use:   "subject",
	Short: "Create, generate and browse subjects",
}

var subjectCreateCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Create an empty subject",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		description, _ := cmd.Flags().GetString("description")
		public, _ := cmd.Flags().GetBool("public")
		s, err := a.mgr.CreateSubject(cmd.Context(), actingUser(cmd), args[0], description, public)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created subject %s (%s)\n", s.Title, s.ID)
		return nil
	},
}

var subjectGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a subject graph from a topic or source material",
	RunE: func(cmd *cobra.Command, args []string) error {
		topic, _ := cmd.Flags().GetString("topic")
		sourcePath, _ := cmd.Flags().GetString("source")
		public, _ := cmd.Flags().GetBool("public")

		req := lifecycle.GraphRequest{TopicDeclaration: topic, IsPublic: public}
		if sourcePath != "" {
			b, err := os.ReadFile(sourcePath)
			if err != nil {
				return fmt.Errorf("read source material: %w", err)
			}
			req.SourceMaterial = string(b)
		}

		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		g, err := a.mgr.GenerateSubjectGraph(cmd.Context(), actingUser(cmd), req)
		if err != nil {
			return err
		}
		printGraph(cmd.OutOrStdout(), g)
		return nil
	},
}

var subjectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your subjects (or public ones)",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		public, _ := cmd.Flags().GetBool("public")
		limit, _ := cmd.Flags().GetInt("limit")

		var subjects []store.Subject
		if public {
			subjects, err = a.mgr.ListPublicSubjects(cmd.Context(), limit)
		} else {
			subjects, err = a.mgr.ListSubjects(cmd.Context(), actingUser(cmd))
		}
		if err != nil {
			return err
		}
		printSubjects(cmd.OutOrStdout(), subjects)
		return nil
	},
}

var subjectShowCmd = &cobra.Command{
	Use:   "show <subject-id>",
	Short: "Show a subject's topic graph",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		g, err := a.mgr.GetSubjectGraph(cmd.Context(), actingUser(cmd), args[0])
		if err != nil {
			return err
		}
		printGraph(cmd.OutOrStdout(), g)
		return nil
	},
}

var subjectDeleteCmd = &cobra.Command{
	Use:   "delete <subject-id>",
	Short: "Delete a subject with all its topics",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.mgr.DeleteSubject(cmd.Context(), actingUser(cmd), args[0]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Deleted.")
		return nil
	},
}

var subjectPublishCmd = &cobra.Command{
	Use:   "publish <subject-id>",
	Short: "Make a subject public (or private with --private)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		private, _ := cmd.Flags().GetBool("private")
		if err := a.mgr.SetSubjectVisibility(cmd.Context(), actingUser(cmd), args[0], !private); err != nil {
			return err
		}
		if private {
			fmt.Fprintln(cmd.OutOrStdout(), "Subject is now private.")
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "Subject is now public.")
		}
		return nil
	},
}

func init() {
	subjectCreateCmd.Flags().StringP("description", "d", "", "Subject description")
	subjectCreateCmd.Flags().Bool("public", false, "Share the subject publicly")

	subjectGenerateCmd.Flags().StringP("topic", "t", "", "What you want to learn")
	subjectGenerateCmd.Flags().StringP("source", "s", "", "Path to a text file with source material")
	subjectGenerateCmd.Flags().Bool("public", false, "Share the subject publicly")
	subjectGenerateCmd.MarkFlagsMutuallyExclusive("topic", "source")
	subjectGenerateCmd.MarkFlagsOneRequired("topic", "source")

	subjectListCmd.Flags().Bool("public", false, "List public subjects of all users")
	subjectListCmd.Flags().IntP("limit", "n", 50, "Maximum public subjects to show")

	subjectPublishCmd.Flags().Bool("private", false, "Make the subject private instead")

	subjectCmd.AddCommand(subjectCreateCmd)
	subjectCmd.AddCommand(subjectGenerateCmd)
	subjectCmd.AddCommand(subjectListCmd)
	subjectCmd.AddCommand(subjectShowCmd)
	subjectCmd.AddCommand(subjectDeleteCmd)
	subjectCmd.AddCommand(subjectPublishCmd)
}
