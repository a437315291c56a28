package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/learnify/learnify/internal/lifecycle"
	"github.com/learnify/learnify/internal/ui/theme"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage your learner profile and API key",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show your learner profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		p, err := a.mgr.GetProfile(cmd.Context(), actingUser(cmd))
		if err != nil {
			return err
		}
		key := "not set"
		if p.HasAPIKey() {
			key = "stored (encrypted)"
		}
		w := cmd.OutOrStdout()
		fmt.Fprintln(w, theme.Title.Render("Profile "+actingUser(cmd)))
		fmt.Fprintln(w, theme.Field("Name", orDash(p.FullName)))
		fmt.Fprintln(w, theme.Field("Occupation", orDash(p.Occupation)))
		fmt.Fprintln(w, theme.Field("Education", orDash(p.EducationLevel)))
		fmt.Fprintln(w, theme.Field("Style", orDash(p.LearningStyle)))
		fmt.Fprintln(w, theme.Field("Schedule", orDash(p.LearningSchedule)))
		fmt.Fprintln(w, theme.Field("API key", key))
		return nil
	},
}

var profileSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update your learning preferences",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		user := actingUser(cmd)
		current, err := a.mgr.GetProfile(ctx, user)
		if err != nil {
			return err
		}

		u := lifecycle.ProfileUpdate{
			FullName:         current.FullName,
			Occupation:       current.Occupation,
			EducationLevel:   current.EducationLevel,
			LearningStyle:    current.LearningStyle,
			LearningSchedule: current.LearningSchedule,
		}
		flagInto := func(name string, dst *string) {
			if cmd.Flags().Changed(name) {
				*dst, _ = cmd.Flags().GetString(name)
			}
		}
		flagInto("name", &u.FullName)
		flagInto("occupation", &u.Occupation)
		flagInto("education", &u.EducationLevel)
		flagInto("style", &u.LearningStyle)
		flagInto("schedule", &u.LearningSchedule)

		if _, err := a.mgr.UpdateProfile(ctx, user, u); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Profile updated.")
		return nil
	},
}

var profileSetKeyCmd = &cobra.Command{
	Use:   "set-key",
	Short: "Store your generative-AI API key (read from stdin)",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		remove, _ := cmd.Flags().GetBool("clear")
		if remove {
			if err := a.mgr.ClearAPIKey(cmd.Context(), actingUser(cmd)); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "API key removed.")
			return nil
		}

		key := os.Getenv("LEARNIFY_API_KEY")
		if key == "" {
			fmt.Fprint(cmd.ErrOrStderr(), "API key: ")
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("read API key: %w", err)
			}
			key = strings.TrimSpace(line)
		}
		if err := a.mgr.SetAPIKey(cmd.Context(), actingUser(cmd), key); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "API key stored.")
		return nil
	},
}

func orDash(s string) string {
	if s == "" {
		return theme.Hint.Render("-")
	}
	return s
}

func init() {
	profileSetCmd.Flags().String("name", "", "Full name")
	profileSetCmd.Flags().String("occupation", "", "Occupation")
	profileSetCmd.Flags().String("education", "", "Education level")
	profileSetCmd.Flags().String("style", "", "Preferred learning style")
	profileSetCmd.Flags().String("schedule", "", "Learning schedule")

	profileSetKeyCmd.Flags().Bool("clear", false, "Remove the stored key")

	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileSetCmd)
	profileCmd.AddCommand(profileSetKeyCmd)
}
