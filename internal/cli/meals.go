package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"unimeal-backend-go/internal/models"
	"unimeal-backend-go/internal/prefs"
	"unimeal-backend-go/internal/viewmodel"
)

func newMealsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "meals",
		Short: "Plan meals by weekday",
	}
	cmd.AddCommand(
		newMealsListCmd(app),
		newMealsAddCmd(app),
		newMealsRmCmd(app),
		newMealsExportCmd(app),
		newTemplatesCmd(app),
	)
	return cmd
}

// startMeals opens a settled meals page filtered to weekday.
func startMeals(ctx context.Context, deps viewmodel.Deps, uid, weekday string) (*viewmodel.MealsPage, error) {
	page := viewmodel.NewMealsPage(deps, uid)
	page.Start(ctx)
	if err := page.SetWeekdayFilter(models.Weekday(weekday)); err != nil {
		page.Close()
		return nil, err
	}
	if err := settle(ctx, page); err != nil {
		page.Close()
		return nil, err
	}
	return page, nil
}

func newMealsListCmd(app *App) *cobra.Command {
	var weekday string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List planned meals, newest first or as a week grid",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.run(cmd, func(ctx context.Context, deps viewmodel.Deps) error {
				page, err := startMeals(ctx, deps, app.uid, weekday)
				if err != nil {
					return err
				}
				defer page.Close()
				fmt.Fprint(app.Out, renderMeals(app.renderer(deps), page.State()))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&weekday, "weekday", "w", "", "Only show one weekday")
	return cmd
}

func renderMeals(r Renderer, s viewmodel.MealsState) string {
	if s.Error != "" {
		return "  " + r.Error(s.Error) + "\n"
	}
	if len(s.Meals) == 0 {
		return "  " + r.Muted("No meals planned.") + "\n"
	}

	if s.ViewMode == prefs.ViewWeek {
		var b strings.Builder
		for _, col := range viewmodel.WeekGridOf(s.Meals) {
			b.WriteString("  " + r.Header(col.Label) + "\n")
			if len(col.Meals) == 0 {
				b.WriteString("    " + r.Muted("-") + "\n")
			}
			for _, m := range col.Meals {
				fmt.Fprintf(&b, "    %s %s\n", m.Name, r.Muted(m.ID))
			}
		}
		return b.String()
	}

	rows := make([][]string, 0, len(s.Meals))
	for _, m := range s.Meals {
		rows = append(rows, []string{m.ID, m.Name, m.WeekdayLabel})
	}
	return r.Table([]string{"ID", "Meal", "Day"}, rows)
}

func newMealsAddCmd(app *App) *cobra.Command {
	var weekday string
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Plan a meal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.run(cmd, func(ctx context.Context, deps viewmodel.Deps) error {
				page := viewmodel.NewMealsPage(deps, app.uid)
				id, err := page.Add(ctx, models.MealForm{Name: args[0], Weekday: weekday})
				if err != nil {
					return err
				}
				fmt.Fprintf(app.Out, "Planned %s (%s).\n", args[0], id)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&weekday, "weekday", "w", string(models.Monday), "Day to plan the meal for")
	return cmd
}

func newMealsRmCmd(app *App) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a planned meal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.run(cmd, func(ctx context.Context, deps viewmodel.Deps) error {
				page := viewmodel.NewMealsPage(deps, app.uid)
				if err := page.Delete(ctx, args[0], app.confirmer(yes)); err != nil {
					return err
				}
				fmt.Fprintln(app.Out, "Meal deleted.")
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Delete without asking")
	return cmd
}

func newMealsExportCmd(app *App) *cobra.Command {
	var weekday, dir string
	var copyText bool
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print the meal plan as text",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.run(cmd, func(ctx context.Context, deps viewmodel.Deps) error {
				page, err := startMeals(ctx, deps, app.uid, weekday)
				if err != nil {
					return err
				}
				defer page.Close()

				switch {
				case copyText:
					if err := page.CopyExport(ctx, app.Clipboard); err != nil {
						return err
					}
					fmt.Fprintln(app.Out, "Meal plan copied to the clipboard.")
				case dir != "":
					name, text := page.DownloadExport(app.now())
					path := filepath.Join(dir, name)
					if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
						return fmt.Errorf("writing export: %w", err)
					}
					fmt.Fprintf(app.Out, "Meal plan saved to %s.\n", path)
				default:
					if text := page.ExportText(); text != "" {
						fmt.Fprint(app.Out, text)
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&weekday, "weekday", "w", "", "Only export one weekday")
	cmd.Flags().BoolVar(&copyText, "copy", false, "Copy the export to the clipboard")
	cmd.Flags().StringVar(&dir, "download", "", "Write the export into this directory")
	cmd.MarkFlagsMutuallyExclusive("copy", "download")
	return cmd
}

func newTemplatesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Reusable meals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.run(cmd, func(ctx context.Context, deps viewmodel.Deps) error {
				page, err := startMeals(ctx, deps, app.uid, "")
				if err != nil {
					return err
				}
				defer page.Close()
				s := page.State()
				r := app.renderer(deps)
				if s.TemplatesError != "" {
					fmt.Fprintln(app.Out, "  "+r.Error(s.TemplatesError))
					return nil
				}
				if len(s.Templates) == 0 {
					fmt.Fprintln(app.Out, "  "+r.Muted("No templates saved."))
					return nil
				}
				rows := make([][]string, 0, len(s.Templates))
				for _, t := range s.Templates {
					rows = append(rows, []string{t.ID, t.Name, t.WeekdayLabel})
				}
				fmt.Fprint(app.Out, r.Table([]string{"ID", "Template", "Default day"}, rows))
				return nil
			})
		},
	}

	var weekday string
	save := &cobra.Command{
		Use:   "save <name>",
		Short: "Save a meal template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.run(cmd, func(ctx context.Context, deps viewmodel.Deps) error {
				page := viewmodel.NewMealsPage(deps, app.uid)
				id, err := page.SaveTemplate(ctx, models.MealForm{Name: args[0], Weekday: weekday})
				if err != nil {
					return err
				}
				fmt.Fprintf(app.Out, "Template saved (%s).\n", id)
				return nil
			})
		},
	}
	save.Flags().StringVarP(&weekday, "weekday", "w", "", "Default weekday")

	use := &cobra.Command{
		Use:   "use <id>",
		Short: "Plan a meal from a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.run(cmd, func(ctx context.Context, deps viewmodel.Deps) error {
				page, err := startMeals(ctx, deps, app.uid, "")
				if err != nil {
					return err
				}
				defer page.Close()
				id, err := page.AddFromTemplate(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(app.Out, "Planned meal from template (%s).\n", id)
				return nil
			})
		},
	}

	var yes bool
	rm := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.run(cmd, func(ctx context.Context, deps viewmodel.Deps) error {
				page := viewmodel.NewMealsPage(deps, app.uid)
				if err := page.DeleteTemplate(ctx, args[0], app.confirmer(yes)); err != nil {
					return err
				}
				fmt.Fprintln(app.Out, "Template deleted.")
				return nil
			})
		},
	}
	rm.Flags().BoolVarP(&yes, "yes", "y", false, "Delete without asking")

	cmd.AddCommand(save, use, rm)
	return cmd
}
