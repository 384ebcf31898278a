package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/tallyflow/tally/internal/cli"
	"github.com/tallyflow/tally/internal/model"
)

func goalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "goal",
		Short: "Manage savings goals",
		Long: `Savings goals accumulate deposits toward a target amount. Deposits are
tracked separately from the ledger and never create entries. A goal that
reaches its target is marked complete once; later deposits keep counting
but the completion timestamp never moves.`,
	}
	cmd.AddCommand(goalAddCmd())
	cmd.AddCommand(goalListCmd())
	cmd.AddCommand(goalDepositCmd())
	cmd.AddCommand(goalCompleteCmd())
	cmd.AddCommand(goalDeleteCmd())
	return cmd
}

func goalAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a savings goal",
		Args:  cobra.ExactArgs(1),
		RunE:  runGoalAdd,
	}
	cmd.Flags().StringP("target", "t", "", "target amount (required)")
	cmd.Flags().String("deadline", "", "optional deadline as YYYY-MM-DD")
	_ = cmd.MarkFlagRequired("target")
	return cmd
}

func runGoalAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	targetFlag, _ := cmd.Flags().GetString("target")
	target, err := parseAmount(targetFlag)
	if err != nil {
		return err
	}

	var deadline *time.Time
	if deadlineFlag, _ := cmd.Flags().GetString("deadline"); deadlineFlag != "" {
		d, parseErr := parseDate(deadlineFlag)
		if parseErr != nil {
			return parseErr
		}
		deadline = &d
	}

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("failed to close storage", "error", closeErr)
		}
	}()

	id, err := store.CreateGoal(ctx, &model.Goal{
		Title:        args[0],
		TargetAmount: target,
		Deadline:     deadline,
	})
	if err != nil {
		return err
	}
	fmt.Println(cli.FormatSuccess(fmt.Sprintf("%s Created goal %q (%s)", cli.GoalIcon, args[0], id))) //nolint:forbidigo // User-facing output
	return nil
}

func goalListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List goals with progress",
		RunE:  runGoalList,
	}
}

func runGoalList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("failed to close storage", "error", closeErr)
		}
	}()

	goals, err := store.GetGoals(ctx)
	if err != nil {
		return err
	}
	if len(goals) == 0 {
		fmt.Println(cli.InfoStyle.Render("No goals yet. Use 'tally goal add' to create one.")) //nolint:forbidigo // User-facing output
		return nil
	}

	fmt.Println(cli.FormatTitle(fmt.Sprintf("%s Goals", cli.GoalIcon))) //nolint:forbidigo // User-facing output
	fmt.Println()                                                      //nolint:forbidigo // User-facing output

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
		cli.HeaderStyle.Render("ID"),
		cli.HeaderStyle.Render("Title"),
		cli.HeaderStyle.Render("Saved"),
		cli.HeaderStyle.Render("Target"),
		cli.HeaderStyle.Render("Progress"),
		cli.HeaderStyle.Render("Deadline"))
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
		strings.Repeat("─", 36), strings.Repeat("─", 18), strings.Repeat("─", 10),
		strings.Repeat("─", 10), strings.Repeat("─", 8), strings.Repeat("─", 10))
	for i := range goals {
		goal := &goals[i]
		progress := goal.Progress().StringFixed(0) + "%"
		if goal.Completed {
			progress = cli.SuccessStyle.Render(progress + " " + cli.SuccessIcon)
		}
		deadline := "-"
		if goal.Deadline != nil {
			deadline = goal.Deadline.Format(dateLayout)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			goal.ID, goal.Title, formatAmount(goal.CurrentAmount),
			formatAmount(goal.TargetAmount), progress, deadline)
	}
	if flushErr := w.Flush(); flushErr != nil {
		slog.Error("failed to flush table writer", "error", flushErr)
	}
	return nil
}

func goalDepositCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deposit <goal-id>",
		Short: "Deposit toward a goal",
		Args:  cobra.ExactArgs(1),
		RunE:  runGoalDeposit,
	}
	cmd.Flags().StringP("amount", "a", "", "deposit amount (required)")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func runGoalDeposit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	amountFlag, _ := cmd.Flags().GetString("amount")
	amount, err := parseAmount(amountFlag)
	if err != nil {
		return err
	}

	eng, store, err := initEngine(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("failed to close storage", "error", closeErr)
		}
	}()

	goal, err := eng.Deposit(ctx, args[0], amount)
	if err != nil {
		return err
	}

	message := fmt.Sprintf("Deposited %s into %q (%s of %s)",
		formatAmount(amount), goal.Title,
		formatAmount(goal.CurrentAmount), formatAmount(goal.TargetAmount))
	fmt.Println(cli.FormatSuccess(message)) //nolint:forbidigo // User-facing output
	if goal.Completed {
		fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("%s Goal reached!", cli.GoalIcon))) //nolint:forbidigo // User-facing output
	}
	return nil
}

func goalCompleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "complete <goal-id>",
		Short: "Mark a goal as reached",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			eng, store, err := initEngine(ctx)
			if err != nil {
				return err
			}
			defer func() {
				if closeErr := store.Close(); closeErr != nil {
					slog.Error("failed to close storage", "error", closeErr)
				}
			}()

			goal, err := eng.MarkGoalComplete(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Goal %q marked complete", goal.Title))) //nolint:forbidigo // User-facing output
			return nil
		},
	}
}

func goalDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <goal-id>",
		Short: "Delete a goal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer func() {
				if closeErr := store.Close(); closeErr != nil {
					slog.Error("failed to close storage", "error", closeErr)
				}
			}()

			if err := store.DeleteGoal(ctx, args[0]); err != nil {
				return err
			}
			fmt.Println(cli.FormatSuccess("Goal deleted")) //nolint:forbidigo // User-facing output
			return nil
		},
	}
}
