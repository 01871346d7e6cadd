package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"unimeal-backend-go/internal/models"
	"unimeal-backend-go/internal/viewmodel"
)

func newIngredientsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "ingredients",
		Aliases: []string{"ing"},
		Short:   "Manage pantry ingredients",
	}
	cmd.AddCommand(newIngredientsListCmd(app), newIngredientsAddCmd(app), newIngredientsRmCmd(app))
	return cmd
}

func newIngredientsListCmd(app *App) *cobra.Command {
	var filter viewmodel.IngredientFilter
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List ingredients sorted by expiry date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.run(cmd, func(ctx context.Context, deps viewmodel.Deps) error {
				page := viewmodel.NewIngredientsPage(deps, app.uid)
				page.Start(ctx)
				defer page.Close()
				if err := settle(ctx, page); err != nil {
					return err
				}
				fmt.Fprint(app.Out, renderIngredients(app.renderer(deps), page.View(filter)))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&filter.Query, "search", "s", "", "Only show names containing this text")
	cmd.Flags().BoolVar(&filter.ExpiringOnly, "expiring", false, "Only show ingredients expiring soon")
	return cmd
}

func renderIngredients(r Renderer, s viewmodel.IngredientsState) string {
	if s.Error != "" {
		return "  " + r.Error(s.Error) + "\n"
	}
	if len(s.Items) == 0 {
		if s.Total == 0 {
			return "  " + r.Muted("No ingredients yet.") + "\n"
		}
		return "  " + r.Muted("No ingredients match the filter.") + "\n"
	}
	rows := make([][]string, 0, len(s.Items))
	for _, ing := range s.Items {
		expiry := ing.ExpiryLabel
		if ing.ExpiringSoon {
			expiry = r.Warn(expiry)
		}
		rows = append(rows, []string{
			ing.ID,
			ing.Name,
			strconv.FormatFloat(ing.Quantity, 'f', -1, 64) + " " + string(ing.Unit),
			ing.PriceLabel,
			expiry,
		})
	}
	out := r.Table([]string{"ID", "Name", "Quantity", "Price", "Expires"}, rows)
	out += fmt.Sprintf("\n  %d of %d shown, %d expiring soon\n", len(s.Items), s.Total, s.ExpiringSoonCount)
	return out
}

func newIngredientsAddCmd(app *App) *cobra.Command {
	var form models.IngredientForm
	var qty, price string
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add an ingredient",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			form.Name = args[0]
			form.Quantity = models.FormValue(qty)
			form.Price = models.FormValue(price)
			return app.run(cmd, func(ctx context.Context, deps viewmodel.Deps) error {
				page := viewmodel.NewIngredientsPage(deps, app.uid)
				id, err := page.Add(ctx, form)
				if err != nil {
					return err
				}
				fmt.Fprintf(app.Out, "Added %s (%s).\n", form.Name, id)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&qty, "qty", "q", "1", "Quantity")
	cmd.Flags().StringVarP(&form.Unit, "unit", "u", string(models.UnitPieces), "Unit: kg, g, L, mL, pieces or pack")
	cmd.Flags().StringVarP(&price, "price", "p", "", "Price paid in euros")
	cmd.Flags().StringVarP(&form.ExpiryDate, "expires", "e", "", "Expiry date (YYYY-MM-DD)")
	return cmd
}

func newIngredientsRmCmd(app *App) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete an ingredient",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.run(cmd, func(ctx context.Context, deps viewmodel.Deps) error {
				page := viewmodel.NewIngredientsPage(deps, app.uid)
				if err := page.Delete(ctx, args[0], app.confirmer(yes)); err != nil {
					return err
				}
				fmt.Fprintln(app.Out, "Ingredient deleted.")
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Delete without asking")
	return cmd
}
