package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"unimeal-backend-go/internal/calc"
	"unimeal-backend-go/internal/viewmodel"
)

func newBudgetCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Show the monthly budget",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.run(cmd, func(ctx context.Context, deps viewmodel.Deps) error {
				page := viewmodel.NewBudgetPage(deps, app.uid)
				page.Start(ctx)
				defer page.Close()
				if err := settle(ctx, page); err != nil {
					return err
				}
				fmt.Fprint(app.Out, renderBudget(app.renderer(deps), page.State()))
				return nil
			})
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <amount>",
		Short: "Set the monthly limit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.run(cmd, func(ctx context.Context, deps viewmodel.Deps) error {
				page := viewmodel.NewBudgetPage(deps, app.uid)
				page.Start(ctx)
				defer page.Close()
				if err := page.SaveLimit(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(app.Out, "Monthly limit set to %s.\n", page.State().LimitLabel)
				return nil
			})
		},
	})
	return cmd
}

func renderBudget(r Renderer, s viewmodel.BudgetState) string {
	tone := calc.ToneOK
	if s.BudgetStatus != nil {
		tone = s.BudgetStatus.Tone
	}
	out := fmt.Sprintf("  Monthly limit  %s\n  Spent          %s\n  Remaining      %s\n",
		s.LimitLabel, s.SpentLabel, r.Tone(tone, s.RemainingLabel))
	if s.StatusMessage != "" {
		out += "  " + r.Tone(tone, s.StatusMessage) + "\n"
	}
	if s.Error != "" {
		out += "  " + r.Error(s.Error) + "\n"
	}
	return out
}
