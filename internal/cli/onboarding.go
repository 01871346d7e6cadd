package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"unimeal-backend-go/internal/calc"
	"unimeal-backend-go/internal/viewmodel"
)

func newOnboardingCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "onboarding",
		Short: "Show getting-started progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.run(cmd, func(ctx context.Context, deps viewmodel.Deps) error {
				dash := viewmodel.NewDashboard(deps, app.uid)
				dash.Start(ctx)
				defer dash.Close()
				if err := settle(ctx, dash); err != nil {
					return err
				}
				s := dash.State().Onboarding
				r := app.renderer(deps)
				fmt.Fprintf(app.Out, "  %s Set a monthly budget\n", check(r, s.Steps.HasBudget))
				fmt.Fprintf(app.Out, "  %s Add an ingredient\n", check(r, s.Steps.HasIngredients))
				fmt.Fprintf(app.Out, "  %s Plan a meal\n", check(r, s.Steps.HasMeals))
				if s.Completed != nil && *s.Completed {
					fmt.Fprintln(app.Out, "  Onboarding complete.")
				}
				return nil
			})
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "skip",
		Short: "Hide the getting-started checklist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.run(cmd, func(ctx context.Context, deps viewmodel.Deps) error {
				dash := viewmodel.NewDashboard(deps, app.uid)
				if err := dash.SkipOnboarding(ctx); err != nil {
					return err
				}
				fmt.Fprintln(app.Out, "Onboarding skipped.")
				return nil
			})
		},
	})
	return cmd
}

func check(r Renderer, done bool) string {
	if done {
		return r.Tone(calc.ToneOK, "[x]")
	}
	return r.Muted("[ ]")
}
