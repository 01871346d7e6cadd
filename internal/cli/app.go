// Package cli implements the unimeal command line client. Every command
// drives the same view models the HTTP API serves.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/huh"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"unimeal-backend-go/internal/apperrors"
	"unimeal-backend-go/internal/config"
	"unimeal-backend-go/internal/db"
	"unimeal-backend-go/internal/prefs"
	"unimeal-backend-go/internal/viewmodel"
)

// OpenFunc opens the view model dependencies. The returned func releases them.
type OpenFunc func(ctx context.Context, verbose bool) (viewmodel.Deps, func() error, error)

// App is the state shared by all commands.
type App struct {
	Out       io.Writer
	Err       io.Writer
	Open      OpenFunc
	Confirmer viewmodel.Confirmer
	Clipboard viewmodel.Clipboard
	Now       func() time.Time
	Timeout   time.Duration

	uid     string
	verbose bool
}

// Execute runs the CLI against the configured store.
func Execute() {
	app := &App{
		Out:       os.Stdout,
		Err:       os.Stderr,
		Open:      OpenFromConfig,
		Confirmer: HuhConfirmer{},
		Clipboard: SystemClipboard{},
	}
	if err := NewRootCmd(app).Execute(); err != nil {
		var r reportedError
		if !errors.As(err, &r) {
			// Usage errors from cobra are not printed by the commands.
			fmt.Fprintln(app.Err, "Error:", err)
		}
		os.Exit(1)
	}
}

// reportedError marks an error already shown to the user.
type reportedError struct{ err error }

func (r reportedError) Error() string { return r.err.Error() }
func (r reportedError) Unwrap() error { return r.err }

// NewRootCmd builds the command tree for app.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "unimeal",
		Short:         "Student meal planner",
		Long:          "Track ingredients, plan meals by weekday and keep an eye on the monthly budget.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSummary(cmd, app)
		},
	}
	root.SetOut(app.Out)
	root.SetErr(app.Err)

	root.PersistentFlags().StringVar(&app.uid, "uid", os.Getenv("UNIMEAL_UID"), "User id to act as (env UNIMEAL_UID)")
	root.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "Log store activity to stderr")

	root.AddCommand(
		newSummaryCmd(app),
		newBudgetCmd(app),
		newIngredientsCmd(app),
		newMealsCmd(app),
		newPrefsCmd(app),
		newOnboardingCmd(app),
	)
	return root
}

// run opens the store for one command and closes it afterwards.
func (a *App) run(cmd *cobra.Command, fn func(ctx context.Context, deps viewmodel.Deps) error) error {
	if a.uid == "" {
		return a.fail(errors.New("no user selected: pass --uid or set UNIMEAL_UID"))
	}
	timeout := a.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	deps, closeFn, err := a.Open(ctx, a.verbose)
	if err != nil {
		return a.fail(fmt.Errorf("opening store: %w", err))
	}
	defer func() { _ = closeFn() }()
	if a.Now != nil {
		deps.Now = a.Now
	}
	return a.fail(fn(ctx, deps))
}

// fail prints err for the user and returns it so the exit code is non-zero.
func (a *App) fail(err error) error {
	if err == nil {
		return nil
	}
	fmt.Fprintln(a.Err, NewRenderer(prefs.ThemeLight).Error("Error: "+userMessage(err)))
	return reportedError{err: err}
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a *App) renderer(deps viewmodel.Deps) Renderer {
	theme := prefs.ThemeLight
	if deps.Prefs != nil {
		if p, err := deps.Prefs.Get(a.uid); err == nil {
			theme = p.Theme
		}
	}
	return NewRenderer(theme)
}

// userMessage prefers the message a page attached to err.
func userMessage(err error) string {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	if errors.Is(err, apperrors.ErrConfirmationRequired) {
		return "Cancelled."
	}
	return err.Error()
}

type settler interface {
	Settled(ctx context.Context) error
}

// settle waits for the first snapshot of page.
func settle(ctx context.Context, page settler) error {
	if err := page.Settled(ctx); err != nil {
		return fmt.Errorf("waiting for data: %w", err)
	}
	return nil
}

// OpenFromConfig opens the store selected by the environment, the same way
// the server does, with preferences kept in a TOML file.
func OpenFromConfig(ctx context.Context, verbose bool) (viewmodel.Deps, func() error, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "Warning: Error loading .env file:", err)
	}

	logger := zap.NewNop()
	if verbose {
		if l, err := zap.NewDevelopment(); err == nil {
			logger = l
		}
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return viewmodel.Deps{}, nil, err
	}

	var fb *db.FirebaseClients
	if cfg.StoreDriver == config.DriverFirestore {
		if fb, err = db.InitFirebase(ctx, cfg, logger); err != nil {
			return viewmodel.Deps{}, nil, err
		}
	}
	store, err := db.OpenStore(ctx, cfg, fb, logger)
	if err != nil {
		_ = fb.Close()
		return viewmodel.Deps{}, nil, err
	}

	prefPath := cfg.PreferencesPath
	if prefPath == "" {
		prefPath = prefs.DefaultPath()
	}
	deps := viewmodel.Deps{
		Repos:      db.NewRepositories(store, logger),
		Prefs:      prefs.NewFileStore(prefPath),
		Thresholds: cfg.Thresholds,
		Logger:     logger,
	}
	closeFn := func() error {
		_ = logger.Sync()
		return store.Close()
	}
	return deps, closeFn, nil
}

// HuhConfirmer asks on the terminal.
type HuhConfirmer struct{}

// Confirm shows a yes/no prompt.
func (HuhConfirmer) Confirm(ctx context.Context, prompt string) (bool, error) {
	var ok bool
	err := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(prompt).
			Affirmative("Delete").
			Negative("Cancel").
			Value(&ok),
	)).RunWithContext(ctx)
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return ok, nil
}

// SystemClipboard writes to the OS clipboard.
type SystemClipboard struct{}

// WriteText copies text.
func (SystemClipboard) WriteText(_ context.Context, text string) error {
	if clipboard.Unsupported {
		return errors.New("clipboard is not available on this system")
	}
	return clipboard.WriteAll(text)
}

// confirmer skips the prompt when the user passed --yes.
func (a *App) confirmer(yes bool) viewmodel.Confirmer {
	if yes {
		return viewmodel.AlwaysConfirm
	}
	return a.Confirmer
}
