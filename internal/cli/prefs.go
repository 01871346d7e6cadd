package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"unimeal-backend-go/internal/prefs"
	"unimeal-backend-go/internal/viewmodel"
)

func newPrefsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show or change display preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.run(cmd, func(_ context.Context, deps viewmodel.Deps) error {
				p, err := deps.Prefs.Get(app.uid)
				if err != nil {
					return err
				}
				fmt.Fprintf(app.Out, "view-mode = %s\ntheme     = %s\n", p.ViewMode, p.Theme)
				return nil
			})
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:       "view-mode <list|week>",
		Short:     "Choose how meals list is laid out",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{string(prefs.ViewList), string(prefs.ViewWeek)},
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.run(cmd, func(ctx context.Context, deps viewmodel.Deps) error {
				page := viewmodel.NewMealsPage(deps, app.uid)
				if err := page.SetViewMode(prefs.ViewMode(args[0])); err != nil {
					return err
				}
				fmt.Fprintf(app.Out, "Meals view set to %s.\n", args[0])
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:       "theme <light|dark>",
		Short:     "Choose the colour theme",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{string(prefs.ThemeLight), string(prefs.ThemeDark)},
		RunE: func(cmd *cobra.Command, args []string) error {
			theme, err := prefs.ParseTheme(args[0])
			if err != nil {
				return err
			}
			return app.run(cmd, func(_ context.Context, deps viewmodel.Deps) error {
				if err := deps.Prefs.Update(app.uid, func(p *prefs.Preferences) { p.Theme = theme }); err != nil {
					return err
				}
				fmt.Fprintf(app.Out, "Theme set to %s.\n", theme)
				return nil
			})
		},
	})
	return cmd
}
