package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"html-analyzer/internal/analyzer"
	"html-analyzer/internal/config"
	"html-analyzer/internal/dictionary"
	"html-analyzer/internal/logger"
	"html-analyzer/internal/web"
)

func main() {
	cfg := config.Load()

	rootCmd := newRootCmd(cfg)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "html-analyzer",
		Short: "Analyze the structure of a web page",
		Long: `html-analyzer fetches a single HTML page and reports its document type,
title, heading counts, internal and external links, and whether it has a login form.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return cfg.Validate()
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format: json, text")
	rootCmd.PersistentFlags().StringVar(&cfg.DictionarySource, "dictionaries", cfg.DictionarySource, "Dictionary source: embedded, dir, redis")
	rootCmd.PersistentFlags().StringVar(&cfg.DictionaryDir, "dictionary-dir", cfg.DictionaryDir, "Directory holding <name>.txt word lists")
	rootCmd.PersistentFlags().StringVar(&cfg.RedisURL, "redis-url", cfg.RedisURL, "Redis URL for the redis dictionary source")

	rootCmd.AddCommand(newServeCmd(cfg), newAnalyzeCmd(cfg), newDictionariesCmd(cfg))
	return rootCmd
}

func newServeCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web front end",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.Init(os.Stdout, cfg.Level(), cfg.LogFormat)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			store, closeStore, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			server := &http.Server{
				Addr:         ":" + cfg.ServerPort,
				Handler:      web.NewRouter(analyzer.New(log, store), log),
				ReadTimeout:  5 * time.Second,
				WriteTimeout: 130 * time.Second,
				IdleTimeout:  120 * time.Second,
			}

			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				server.Shutdown(shutdownCtx)
			}()

			log.Info("Server starting...", "addr", server.Addr, "dictionaries", cfg.DictionarySource)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("Server failed to start", "error", err)
				return err
			}
			log.Info("Server stopped")
			return nil
		},
	}

	cmd.Flags().StringVarP(&cfg.ServerPort, "port", "p", cfg.ServerPort, "Port to listen on")
	return cmd
}

func newAnalyzeCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <url>",
		Short: "Analyze one page and print the result as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.Init(os.Stderr, cfg.Level(), cfg.LogFormat)
			ctx := cmd.Context()

			store, closeStore, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			result := analyzer.New(log, store).AnalyzePage(ctx, args[0])

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(result); err != nil {
				return fmt.Errorf("encode result: %w", err)
			}

			if !result.Succeeded {
				return fmt.Errorf("analysis failed: %s", result.Failure.Description())
			}
			return nil
		},
	}
}

func newDictionariesCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dictionaries",
		Short: "Manage the login detection word lists",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "seed",
		Short: "Copy the built-in word lists into Redis",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.Init(os.Stderr, cfg.Level(), cfg.LogFormat)
			ctx := cmd.Context()

			store, err := dictionary.NewRedisStore(ctx, cfg.RedisURL, cfg.RedisKeyPrefix)
			if err != nil {
				return err
			}
			defer store.Close()

			for _, name := range dictionary.Names() {
				words, err := dictionary.Embedded(ctx, name)
				if err != nil {
					return err
				}
				if err := store.Seed(ctx, name, words); err != nil {
					return err
				}
				log.Info("Seeded dictionary", slog.String("name", name), slog.Int("words", len(words)))
			}
			return nil
		},
	})

	return cmd
}

// openStore builds the configured dictionary store. The returned func releases it.
func openStore(ctx context.Context, cfg *config.Config) (dictionary.Store, func(), error) {
	switch cfg.DictionarySource {
	case config.DictionaryDir:
		return dictionary.NewDirStore(cfg.DictionaryDir), func() {}, nil
	case config.DictionaryRedis:
		store, err := dictionary.NewRedisStore(ctx, cfg.RedisURL, cfg.RedisKeyPrefix)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil
	default:
		return dictionary.NewEmbeddedStore(), func() {}, nil
	}
}
