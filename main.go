package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/danielhkuo/sowgen/auth"
	"github.com/danielhkuo/sowgen/cliparse"
	"github.com/danielhkuo/sowgen/db"
	"github.com/danielhkuo/sowgen/llm"
	"github.com/danielhkuo/sowgen/middleware"
	"github.com/danielhkuo/sowgen/router"
)

var rootCmd = &cobra.Command{
	Use:   "sowgen",
	Short: "Adaptive project interviews and Scope of Work generation",
	Long: `sowgen runs an API that interviews clients about a construction project
and turns their answers and uploaded documents into a Scope of Work.`,
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve [flags]",
	Short: "Start the API server",
	// Flags are parsed by cliparse so env fallbacks stay in one place.
	DisableFlagParsing: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(args)
	},
}

var (
	tokenUser string
	tokenType string
	tokenTTL  time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token signed with AUTH_SECRET",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cliparse.LoadEnv(); err != nil {
			return err
		}
		secret := os.Getenv("AUTH_SECRET")
		if secret == "" {
			return errors.New("AUTH_SECRET required")
		}

		token, err := auth.IssueToken(auth.Identity{UserID: tokenUser, UserType: tokenType}, secret, tokenTTL, time.Now())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenUser, "user", "", "User id to embed in the token")
	tokenCmd.Flags().StringVar(&tokenType, "type", "client", "User type to embed in the token")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "Token lifetime")
	tokenCmd.MarkFlagRequired("user")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(tokenCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serve(args []string) error {
	// Parse configuration
	cfg, err := cliparse.ParseFlags(args)
	if err != nil {
		return fmt.Errorf("error parsing flags: %w", err)
	}

	slog.SetDefault(newLogger(cfg.LogFormat, cfg.LogLevel))

	// Connect to the database
	dbConn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer dbConn.Close()

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		return fmt.Errorf("schema creation failed: %w", err)
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	model, err := llm.New(cfg)
	if err != nil {
		return err
	}

	// Create router
	mux, queue, err := router.NewRouter(dbConn, cfg, model)
	if err != nil {
		return err
	}

	// Create server
	server := http.Server{
		Handler: middleware.CORS(mux),
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		server.Close()
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port, "model_provider", cfg.ModelProvider, "workers", cfg.Workers)
	err = server.ListenAndServe()

	// Let in-flight generations finish before the database closes
	queue.Close()

	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
		return err
	}
	slog.Info("Server closed", "error", err)
	return nil
}

func newLogger(format, level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
