package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/teleview/teleview/internal/config"
	"github.com/teleview/teleview/internal/database"
	"github.com/teleview/teleview/internal/favorites"
	"github.com/teleview/teleview/internal/playback"
	"github.com/teleview/teleview/internal/player"
	"github.com/teleview/teleview/internal/player/ffplay"
	"github.com/teleview/teleview/internal/player/mpv"
	"github.com/teleview/teleview/internal/progress"
	"github.com/teleview/teleview/internal/screenstate"
	"github.com/teleview/teleview/internal/session"
	"github.com/teleview/teleview/internal/tui"
	"github.com/teleview/teleview/internal/xtream"
	"gorm.io/gorm"
)

var (
	// Version information (set via ldflags during build)
	version = "dev"
	commit  = "none"
	date    = "unknown"

	cfgFile  string
	logLevel string

	cfg     *config.Config
	db      *gorm.DB
	reloads = make(chan struct{}, 1)
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "teleview",
	Short: "An IPTV client for Xtream-codes portals",
	Long: `teleview is a terminal IPTV client for Xtream-codes compatible
portals: live TV with programme guide, movies and series with watch
progress, remote-control style navigation, and playback through mpv
and ffplay.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "path" || (cmd.Parent() != nil && cmd.Parent().Name() == "config") {
			return nil
		}

		if err := config.InitializeDirs(); err != nil {
			return fmt.Errorf("failed to initialize directories: %w", err)
		}

		var err error
		var v *viper.Viper
		cfg, v, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if logLevel != "" {
			cfg.Logging.Level = logLevel
		}

		if _, err := config.InitLogger(&cfg.Logging); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		db, err = database.Open(&database.Config{Path: cfg.Database.Path, WALMode: true})
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}

		config.Watch(v, func(fresh *config.Config) {
			*cfg = *fresh
			select {
			case reloads <- struct{}{}:
			default:
			}
		})
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		engine := playback.NewEngine(
			func() (player.Backend, error) { return ffplay.New() },
			func() (player.Backend, error) { return mpv.New() },
			progress.NewService(db),
		)
		engine.SetPlayerDefaults(player.Options{
			Volume:     cfg.Player.Volume,
			Fullscreen: cfg.Player.Fullscreen,
			UserAgent:  cfg.Player.UserAgent,
		})
		defer engine.Stop()

		return tui.Start(tui.Deps{
			Config:   cfg,
			Reloads:  reloads,
			DB:       db,
			Session:  session.NewStore(db),
			Engine:   engine,
			Progress: progress.NewService(db),
			Favorite: favorites.NewService(db),
			States:   screenstate.NewStore(db),
		})
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("teleview version %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		fmt.Printf("Portal URL: %s\n", cfg.Portal.URL)
		fmt.Printf("Grid: %dx%d\n", cfg.UI.GridColumns, cfg.UI.GridRows)
		fmt.Printf("EPG enabled: %t (refresh %s)\n", cfg.EPG.Enabled, cfg.EPG.RefreshTTL)
		fmt.Printf("Log level: %s\n", cfg.Logging.Level)
		fmt.Printf("Database: %s\n", cfg.Database.Path)
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Display configuration file path",
	Run: func(cmd *cobra.Command, args []string) {
		if cfgFile != "" {
			fmt.Println(cfgFile)
			return
		}
		fmt.Println(filepath.Join(config.ConfigDir(), "config.yaml"))
	},
}

// loginCmd probes the portal credentials from the config (or flags)
// and stores the session, so the TUI starts signed in.
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate against the portal and store the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		portalURL, _ := cmd.Flags().GetString("portal")
		username, _ := cmd.Flags().GetString("username")
		password, _ := cmd.Flags().GetString("password")
		if portalURL == "" {
			portalURL = cfg.Portal.URL
		}
		if username == "" {
			username = cfg.Portal.Username
		}
		if password == "" {
			password = cfg.Portal.Password
		}
		if portalURL == "" || username == "" || password == "" {
			return fmt.Errorf("portal, username and password are required (flags or config)")
		}

		client := xtream.NewClient(xtream.Credentials{
			BaseURL: portalURL, Username: username, Password: password,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		account, err := client.Authenticate(ctx)
		if err != nil {
			return fmt.Errorf("authentication failed: %w", err)
		}

		status := session.StatusActive
		switch account.Status {
		case xtream.AccountPending:
			status = session.StatusPending
		case xtream.AccountExpired:
			status = session.StatusExpired
		case xtream.AccountBanned:
			return fmt.Errorf("account is banned")
		}

		store := session.NewStore(db)
		sess, _ := store.Load()
		sess.Username = username
		sess.Password = password
		sess.Token = password
		sess.PortalURL = portalURL
		sess.Status = status
		if err := store.Save(sess); err != nil {
			return fmt.Errorf("failed to store session: %w", err)
		}

		slog.Info("session stored", "username", username, "status", status)
		fmt.Printf("Signed in as %s (%s)\n", account.Username, account.Status)
		if !account.ExpiresAt.IsZero() {
			fmt.Printf("Subscription expires: %s\n", account.ExpiresAt.Format("2006-01-02"))
		}
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := session.NewStore(db).Clear(); err != nil {
			return err
		}
		if err := screenstate.NewStore(db).Clear(); err != nil {
			return err
		}
		fmt.Println("Signed out.")
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	loginCmd.Flags().String("portal", "", "portal base URL")
	loginCmd.Flags().String("username", "", "portal username")
	loginCmd.Flags().String("password", "", "portal password")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
}
