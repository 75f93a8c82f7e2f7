package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/kerbaras/novelshelf/pkg/api"
	"github.com/kerbaras/novelshelf/pkg/app"
	"github.com/kerbaras/novelshelf/pkg/config"
	"github.com/kerbaras/novelshelf/pkg/logging"
	"github.com/kerbaras/novelshelf/pkg/services"
	"github.com/spf13/cobra"
)

var (
	cfg       *config.Config
	ctrl      *services.Controller
	logCloser io.Closer

	flagAPIURL       string
	flagScraperURL   string
	flagSchedulerURL string
	flagLogLevel     string
)

var rootCmd = &cobra.Command{
	Use:           "novelshelf",
	Short:         "A terminal bookshelf for web novels",
	Long:          "Browse, read and discuss web novels, and run translation and scraping jobs, from a TUI or the command line",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return teardown()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Launch TUI by default
		return app.NewApp(ctrl).Run()
	},
}

func init() {
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := setup(); err != nil {
			return err
		}
		// The TUI restores the session itself so it can render the cached
		// profile first.
		if cmd == rootCmd {
			return nil
		}
		err := ctrl.Session.Restore(cmd.Context())
		switch {
		case api.IsUnauthorized(err):
			fmt.Fprintln(os.Stderr, "⚠️  Saved session expired. Run 'novelshelf login' again.")
		case err != nil:
			return err
		}
		if ctrl.Session.Offline() {
			fmt.Fprintln(os.Stderr, "⚠️  Backend unreachable, working offline.")
		}
		return nil
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagAPIURL, "api-url", "", "Main backend URL (overrides NOVELSHELF_API_URL)")
	pf.StringVar(&flagScraperURL, "scraper-url", "", "Scraper service URL (overrides NOVELSHELF_SCRAPER_URL)")
	pf.StringVar(&flagSchedulerURL, "scheduler-url", "", "Scheduler service URL (overrides NOVELSHELF_SCHEDULER_URL)")
	pf.StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn or error")

	rootCmd.AddCommand(loginCmd, signupCmd, logoutCmd, whoamiCmd)
	rootCmd.AddCommand(listCmd, showCmd, readCmd, editCmd, exportCmd, clearCacheCmd)
	rootCmd.AddCommand(commentsCmd)
	rootCmd.AddCommand(jobsCmd)
	rootCmd.AddCommand(watchlistCmd)
	rootCmd.AddCommand(usersCmd, glossaryCmd)
}

func setup() error {
	cfg = config.Load()
	if flagAPIURL != "" {
		cfg.APIURL = flagAPIURL
	}
	if flagScraperURL != "" {
		cfg.ScraperURL = flagScraperURL
	}
	if flagSchedulerURL != "" {
		cfg.SchedulerURL = flagSchedulerURL
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}

	logger, closer, err := logging.Open(cfg.LogPath(), cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠️  Logging disabled: %v\n", err)
		logger = logging.Discard()
	} else {
		logCloser = closer
	}

	ctrl, err = services.NewController(cfg, logger)
	if err != nil {
		return err
	}
	return nil
}

func teardown() error {
	var err error
	if ctrl != nil {
		err = ctrl.Close()
		ctrl = nil
	}
	if logCloser != nil {
		logCloser.Close()
		logCloser = nil
	}
	return err
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		teardown()
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}
