// Package cli implements zpersona's command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/zarlcorp/core/pkg/zfilesystem"
	"github.com/zarlcorp/core/pkg/zstore"
	"golang.org/x/term"

	"github.com/zarlcorp/zpersona/internal/batch"
	"github.com/zarlcorp/zpersona/internal/config"
	"github.com/zarlcorp/zpersona/internal/geo"
	"github.com/zarlcorp/zpersona/internal/history"
	"github.com/zarlcorp/zpersona/internal/logging"
	"github.com/zarlcorp/zpersona/internal/mail"
	"github.com/zarlcorp/zpersona/internal/randomuser"
)

// App carries the state shared by every command: resolved configuration,
// the logger and the output streams.
type App struct {
	Version string
	Stdout  io.Writer
	Stderr  io.Writer

	// RunTUI starts the interactive interface when no subcommand is given.
	// Without it the root command prints help.
	RunTUI func(ctx context.Context, a *App) error

	// Password reads a store password. Nil prompts on the terminal.
	Password func(prompt string) (string, error)

	cfgFile string
	cfg     *config.Config
	log     *slog.Logger
	now     func() time.Time
}

// New returns an App writing to the process streams.
func New(version string) *App {
	return &App{
		Version: version,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		log:     logging.Discard(),
		now:     time.Now,
	}
}

// Config returns the loaded configuration. It is nil until a command has
// started.
func (a *App) Config() *config.Config { return a.cfg }

// Logger returns the configured logger.
func (a *App) Logger() *slog.Logger { return a.log }

// Execute runs the command tree with args, which excludes the program name.
func (a *App) Execute(ctx context.Context, args []string) error {
	if args == nil {
		// cobra reads os.Args for a nil slice
		args = []string{}
	}
	root := a.Command()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// Command builds the root command.
func (a *App) Command() *cobra.Command {
	root := &cobra.Command{
		Use:   "zpersona",
		Short: "zpersona generates synthetic identities for testing",
		Long: `zpersona generates synthetic identities (name, phone, national ID,
birthday, blood type, occupation, education, credit card and a nearby
address) for filling in test forms and seeding test data.

Run without a command to start the interactive interface.`,
		PersistentPreRunE: a.setup,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.RunTUI == nil {
				return cmd.Help()
			}
			return a.RunTUI(cmd.Context(), a)
		},
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(a.Stdout)
	root.SetErr(a.Stderr)
	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default $XDG_CONFIG_HOME/zpersona/config.yaml)")

	root.AddCommand(
		a.versionCmd(),
		a.countriesCmd(),
		a.identityCmd(),
		a.batchCmd(),
		a.emailCmd(),
		a.inboxCmd(),
		a.listCmd(),
		a.starCmd(),
		a.forgetCmd(),
		a.clearCmd(),
		a.exportCmd(),
	)
	return root
}

func (a *App) setup(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return err
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFormat, a.Stderr)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.log = log
	return nil
}

func (a *App) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		// version needs no configuration
		PersistentPreRun: func(*cobra.Command, []string) {},
		Run: func(*cobra.Command, []string) {
			fmt.Fprintf(a.Stdout, "zpersona %s\n", a.Version)
		},
	}
}

// Engine builds a batch engine from the configuration. Offline mode leaves
// out the network providers so every record comes from local data.
func (a *App) Engine() *batch.Engine {
	opts := []batch.Option{
		batch.WithLogger(a.log),
		batch.WithDelay(a.cfg.BatchDelay),
		batch.WithEmailSource(mail.NewGenerator(nil)),
	}
	if !a.cfg.Offline {
		users := randomuser.NewClient(randomuser.Config{
			BaseURL: a.cfg.RandomUserURL,
			Timeout: a.cfg.HTTPTimeout,
		})
		addresses := geo.NewClient(geo.Config{
			EchoURL:    a.cfg.IPEchoURL,
			GeoIPURL:   a.cfg.GeoIPURL,
			GeocodeURL: a.cfg.GeocodeURL,
			UserAgent:  a.cfg.GeocodeUserAgent,
			Timeout:    a.cfg.HTTPTimeout,
		}, geo.WithLogger(a.log))
		opts = append(opts, batch.WithUserProvider(users), batch.WithAddressProvider(addresses))
	}
	return batch.New(opts...)
}

func (a *App) mailClient() *mail.Client {
	return mail.NewClient(mail.Config{
		BaseURL:   a.cfg.MailAPIURL,
		EventsURL: a.cfg.MailEventsURL,
		Timeout:   a.cfg.HTTPTimeout,
	}, mail.WithLogger(a.log))
}

// ReadPassword prompts for a password on w and reads it without echo.
func ReadPassword(prompt string, w io.Writer) (string, error) {
	fmt.Fprint(w, prompt)
	b, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(w)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(b), nil
}

// ReadNewPassword prompts for a new password with confirmation.
func ReadNewPassword(w io.Writer) (string, error) {
	pass, err := ReadPassword("master password: ", w)
	if err != nil {
		return "", err
	}
	if pass == "" {
		return "", errors.New("password must not be empty")
	}
	confirm, err := ReadPassword("confirm password: ", w)
	if err != nil {
		return "", err
	}
	if pass != confirm {
		return "", errors.New("passwords do not match")
	}
	return pass, nil
}

// IsFirstRun checks whether the store in dir has been initialized.
func IsFirstRun(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, "salt"))
	return err != nil
}

func (a *App) storePassword(firstRun bool) (string, error) {
	if a.cfg.StorePassword != "" {
		return a.cfg.StorePassword, nil
	}
	if a.Password != nil {
		return a.Password("master password: ")
	}
	if firstRun {
		return ReadNewPassword(a.Stderr)
	}
	return ReadPassword("master password: ", a.Stderr)
}

// OpenHistory unlocks the encrypted history in the data directory. The
// returned func closes the underlying store.
func (a *App) OpenHistory() (*history.History, func(), error) {
	dir := a.cfg.DataDir
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, nil, fmt.Errorf("create data dir: %w", err)
	}

	pass, err := a.storePassword(IsFirstRun(dir))
	if err != nil {
		return nil, nil, err
	}

	s, err := zstore.Open(zfilesystem.NewOSFileSystem(dir), []byte(pass))
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}

	h, err := history.Open(s)
	if err != nil {
		s.Close()
		return nil, nil, err
	}
	return h, func() { s.Close() }, nil
}
