package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/learnify/learnify/internal/llm"
	"github.com/learnify/learnify/internal/store"
	"github.com/learnify/learnify/internal/ui/theme"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect LLM request/response events",
}

// eventOpts builds query options from the shared filter flags.
func eventOpts(cmd *cobra.Command) store.QueryOpts {
	var opts store.QueryOpts
	if all, _ := cmd.Flags().GetBool("all"); !all {
		opts.UserID = actingUser(cmd)
	}
	if since, _ := cmd.Flags().GetDuration("since"); since > 0 {
		opts.From = time.Now().Add(-since)
	}
	return opts
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent LLM events",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		opts := eventOpts(cmd)
		if purpose == "" {
			opts.Limit = limit
		}
		events, err := s.EventRepo().QueryLLMRequests(cmd.Context(), opts)
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}

		w := cmd.OutOrStdout()
		if len(events) == 0 {
			fmt.Fprintln(w, "No LLM events found.")
			return nil
		}

		// Header.
		fmt.Fprintf(w, "%-5s  %-19s  %-12s  %-12s  %-28s  %-6s  %-6s  %-7s  %s\n",
			"ID", "Timestamp", "User", "Purpose", "Model", "In", "Out", "Ms", "OK")
		fmt.Fprintln(w, theme.Divider(112))

		shown := 0
		for _, e := range events {
			if purpose != "" && e.Purpose != purpose {
				continue
			}
			if limit > 0 && shown >= limit {
				break
			}
			shown++
			ok := theme.Completed.Render("✓")
			if !e.Success {
				ok = theme.Failure.Render("✗")
			}
			fmt.Fprintf(w, "%-5d  %-19s  %-12s  %-12s  %-28s  %-6d  %-6d  %-7d  %s\n",
				e.ID,
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				truncate(e.UserID, 12),
				truncate(e.Purpose, 12),
				truncate(e.Model, 28),
				e.InputTokens,
				e.OutputTokens,
				e.LatencyMs,
				ok,
			)
		}
		return nil
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "View full request/response for an LLM event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		e, err := s.EventRepo().GetLLMRequest(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("get event: %w", err)
		}

		w := cmd.OutOrStdout()
		sep := theme.Divider(60)

		fmt.Fprintf(w, "ID:        %d\n", e.ID)
		fmt.Fprintf(w, "Time:      %s\n", e.Timestamp.Local().Format("2006-01-02 15:04:05"))
		fmt.Fprintf(w, "User:      %s\n", e.UserID)
		fmt.Fprintf(w, "Provider:  %s\n", e.Provider)
		fmt.Fprintf(w, "Model:     %s\n", e.Model)
		fmt.Fprintf(w, "Purpose:   %s\n", e.Purpose)
		fmt.Fprintf(w, "Tokens:    %d in / %d out\n", e.InputTokens, e.OutputTokens)
		fmt.Fprintf(w, "Latency:   %dms\n", e.LatencyMs)
		fmt.Fprintf(w, "Success:   %v\n", e.Success)
		if e.ErrorMessage != "" {
			fmt.Fprintf(w, "Error:     %s\n", e.ErrorMessage)
		}

		for _, part := range []struct{ title, body string }{
			{"REQUEST", e.RequestBody},
			{"RESPONSE", e.ResponseBody},
		} {
			fmt.Fprintln(w)
			fmt.Fprintln(w, sep)
			fmt.Fprintln(w, part.title)
			fmt.Fprintln(w, sep)
			if part.body != "" {
				fmt.Fprintln(w, part.body)
			} else {
				fmt.Fprintln(w, "(not captured)")
			}
		}
		return nil
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregated LLM token usage and estimated cost",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		if byUser, _ := cmd.Flags().GetBool("by-user"); byUser {
			usage, err := s.EventRepo().LLMUsageByUser(cmd.Context(), eventOpts(cmd))
			if err != nil {
				return fmt.Errorf("query usage: %w", err)
			}
			printUserCosts(cmd.OutOrStdout(), usage)
			return nil
		}

		usage, err := s.EventRepo().LLMUsageByModel(cmd.Context(), eventOpts(cmd))
		if err != nil {
			return fmt.Errorf("query usage: %w", err)
		}

		w := cmd.OutOrStdout()
		if len(usage) == 0 {
			fmt.Fprintln(w, "No LLM usage recorded yet.")
			return nil
		}

		fmt.Fprintln(w, theme.Title.Render("Estimated Cost (USD)"))
		fmt.Fprintln(w, theme.Divider(88))
		fmt.Fprintf(w, "%-32s  %6s  %6s  %10s  %10s  %8s  %10s\n",
			"Model", "Calls", "Failed", "Input", "Output", "Avg Ms", "Cost")
		fmt.Fprintln(w, theme.Divider(88))

		var totalCost float64
		var totalCalls, totalIn, totalOut int
		var unknownModels []string
		for _, mu := range usage {
			totalCalls += mu.Requests
			totalIn += mu.InputTokens
			totalOut += mu.OutputTokens

			var avg int64
			if mu.Requests > 0 {
				avg = mu.LatencyMs / int64(mu.Requests)
			}
			cost := "?"
			if mc := llm.LookupCost(mu.Model); mc != nil {
				c := mc.Cost(mu.InputTokens, mu.OutputTokens)
				totalCost += c
				cost = formatCost(c)
			} else {
				unknownModels = append(unknownModels, mu.Model)
			}
			fmt.Fprintf(w, "%-32s  %6d  %6d  %10d  %10d  %8d  %10s\n",
				truncate(mu.Model, 32), mu.Requests, mu.Failures, mu.InputTokens, mu.OutputTokens, avg, cost)
		}

		fmt.Fprintln(w, theme.Divider(88))
		label := "TOTAL"
		if len(unknownModels) > 0 {
			label = "TOTAL (partial)"
		}
		fmt.Fprintf(w, "%-32s  %6d  %6s  %10d  %10d  %8s  %10s\n",
			label, totalCalls, "", totalIn, totalOut, "", formatCost(totalCost))

		if len(unknownModels) > 0 {
			fmt.Fprintf(w, "\nPricing unavailable for: %s\n", strings.Join(unknownModels, ", "))
		}
		return nil
	},
}

// userCost is one user's LLM spend across models.
type userCost struct {
	userID   string
	calls    int
	tokens   int
	cost     float64
	unpriced bool
}

// printUserCosts sums per-model usage rows into one line per user.
func printUserCosts(w io.Writer, usage []store.LLMUsage) {
	if len(usage) == 0 {
		fmt.Fprintln(w, "No LLM usage recorded yet.")
		return
	}

	var users []*userCost
	byID := make(map[string]*userCost)
	for _, u := range usage {
		uc, ok := byID[u.UserID]
		if !ok {
			uc = &userCost{userID: u.UserID}
			byID[u.UserID] = uc
			users = append(users, uc)
		}
		uc.calls += u.Requests
		uc.tokens += u.InputTokens + u.OutputTokens
		if mc := llm.LookupCost(u.Model); mc != nil {
			uc.cost += mc.Cost(u.InputTokens, u.OutputTokens)
		} else {
			uc.unpriced = true
		}
	}

	fmt.Fprintln(w, theme.Title.Render("Estimated Cost per User (USD)"))
	fmt.Fprintln(w, theme.Divider(64))
	fmt.Fprintf(w, "%-28s  %6s  %12s  %12s\n", "User", "Calls", "Tokens", "Cost")
	fmt.Fprintln(w, theme.Divider(64))
	for _, uc := range users {
		cost := formatCost(uc.cost)
		if uc.unpriced {
			cost += "+"
		}
		name := uc.userID
		if name == "" {
			name = "(none)"
		}
		fmt.Fprintf(w, "%-28s  %6d  %12d  %12s\n", truncate(name, 28), uc.calls, uc.tokens, cost)
	}
	fmt.Fprintln(w, theme.Divider(64))
	fmt.Fprintln(w, theme.Hint.Render("+ includes models without a known price"))
}

func init() {
	llmStatsCmd.Flags().Bool("by-user", false, "Break the estimated cost down per user")
	for _, c := range []*cobra.Command{llmListCmd, llmStatsCmd} {
		c.Flags().Bool("all", false, "Include events of every user")
		c.Flags().Duration("since", 0, "Only events newer than this (e.g. 24h)")
	}
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of events to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Filter by purpose (topic-graph, lesson)")

	llmCmd.AddCommand(llmListCmd)
	llmCmd.AddCommand(llmViewCmd)
	llmCmd.AddCommand(llmStatsCmd)
}
