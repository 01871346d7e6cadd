package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"unimeal-backend-go/internal/calc"
	"unimeal-backend-go/internal/viewmodel"
)

func newSummaryCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show budget, expiring ingredients, suggestions and upcoming meals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSummary(cmd, app)
		},
	}
}

func runSummary(cmd *cobra.Command, app *App) error {
	return app.run(cmd, func(ctx context.Context, deps viewmodel.Deps) error {
		dash := viewmodel.NewDashboard(deps, app.uid)
		dash.Start(ctx)
		defer dash.Close()
		if err := settle(ctx, dash); err != nil {
			return err
		}
		fmt.Fprint(app.Out, renderSummary(app.renderer(deps), dash.State()))
		return nil
	})
}

func renderSummary(r Renderer, s viewmodel.DashboardState) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(r.Title("UNIMEAL"))
	b.WriteString("\n\n")

	if s.Error != "" {
		b.WriteString("  " + r.Error(s.Error) + "\n\n")
	}

	tone := calc.ToneOK
	if s.BudgetStatus != nil {
		tone = s.BudgetStatus.Tone
	}
	b.WriteString("  " + r.Header("Budget") + "\n")
	fmt.Fprintf(&b, "  Monthly limit  %s\n", s.LimitLabel)
	fmt.Fprintf(&b, "  Spent          %s\n", s.SpentLabel)
	fmt.Fprintf(&b, "  Remaining      %s\n", r.Tone(tone, s.RemainingLabel))
	if s.BudgetWarning != "" {
		b.WriteString("  " + r.Tone(tone, s.BudgetWarning) + "\n")
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "  %s  %d ingredients, %d meals planned\n\n", r.Header("Pantry"), s.IngredientCount, s.MealCount)

	b.WriteString("  " + r.Header(fmt.Sprintf("Expiring soon (%d)", s.ExpiringSoonCount)) + "\n")
	if len(s.ExpiringPreview) == 0 {
		b.WriteString("  " + r.Muted("Nothing expiring soon.") + "\n")
	}
	for _, ing := range s.ExpiringPreview {
		fmt.Fprintf(&b, "  - %s %s\n", ing.Name, r.Warn(ing.ExpiryLabel))
	}
	b.WriteString("\n")

	if len(s.Suggestions) > 0 {
		b.WriteString("  " + r.Header("Suggestions") + "\n")
		for _, dish := range s.Suggestions {
			fmt.Fprintf(&b, "  - %s\n", dish)
		}
		b.WriteString("\n")
	}

	b.WriteString("  " + r.Header("Upcoming meals") + "\n")
	if len(s.UpcomingMeals) == 0 {
		b.WriteString("  " + r.Muted("No meals planned yet.") + "\n")
	}
	for _, m := range s.UpcomingMeals {
		fmt.Fprintf(&b, "  %-10s %s\n", m.WeekdayLabel, m.Name)
	}

	if s.Onboarding.ShowOverlay {
		b.WriteString("\n  " + r.Muted("Getting started: set a budget, add an ingredient and plan a meal. Run `unimeal onboarding skip` to hide this.") + "\n")
	}
	b.WriteString("\n")
	return b.String()
}
