package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"

	"github.com/ayush/bloglist/internal/auth"
	"github.com/ayush/bloglist/internal/config"
	"github.com/ayush/bloglist/internal/logutil"
	"github.com/ayush/bloglist/internal/server"
	"github.com/ayush/bloglist/internal/store"
)

func main() {
	// A missing .env is fine; the real environment still applies.
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "bloglist",
		Usage: "Blog list REST API",
		Commands: []*cli.Command{
			serveCmd(),
			hashCmd(),
		},
	}
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Error().Err(err).Msg("Application failed")
		os.Exit(1)
	}
}

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the HTTP API",
		Action: func(c *cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return run(c.Context, cfg)
		},
	}
}

func hashCmd() *cli.Command {
	return &cli.Command{
		Name:      "hash",
		Usage:     "Print a bcrypt hash, e.g. for DUMMY_BCRYPT_HASH",
		ArgsUsage: "<password>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("expected exactly one password argument", 2)
			}
			cfg, err := config.LoadHashing()
			if err != nil {
				return err
			}
			h, err := bcrypt.GenerateFromPassword([]byte(c.Args().First()), cfg.BcryptRounds)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, string(h))
			return nil
		},
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	logger := logutil.New(cfg.LogLevel, cfg.LogFormat)
	ctx = logutil.WithLogger(ctx, logger)

	// ── MongoDB ──────────────────────────────────────────────
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.DatabaseURI()))
	if err != nil {
		return fmt.Errorf("mongo connect: %w", err)
	}
	defer mongoClient.Disconnect(context.Background())
	if err := mongoClient.Ping(ctx, nil); err != nil {
		return fmt.Errorf("mongo ping: %w", err)
	}
	mongoStore := store.NewMongoStore(mongoClient.Database(cfg.MongoDB))
	if err := mongoStore.Migrate(ctx); err != nil {
		return fmt.Errorf("mongo migrate: %w", err)
	}
	logger.Info().Str("db", cfg.MongoDB).Bool("test", cfg.IsTest()).Msg("Connected to MongoDB")

	// ── Auth ─────────────────────────────────────────────────
	passwords, err := auth.NewPasswords(cfg.BcryptRounds, cfg.DummyHash)
	if err != nil {
		return err
	}
	tokens, err := auth.NewTokens(cfg.Secret)
	if err != nil {
		return err
	}

	deps := server.Deps{
		Store:       mongoStore,
		Passwords:   passwords,
		Tokens:      tokens,
		Logger:      logger,
		CORSOrigins: cfg.CORSOrigins,
	}

	// ── Redis (optional) ─────────────────────────────────────
	if cfg.CacheEnabled() {
		rdb, err := store.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			return fmt.Errorf("redis connect: %w", err)
		}
		defer rdb.Close()
		deps.Cache = store.NewBlogListCache(rdb, cfg.CacheTTL)
		logger.Info().Str("addr", cfg.RedisAddr).Dur("ttl", cfg.CacheTTL).Msg("Blog list cache enabled")
	}

	return server.Serve(ctx, ":"+cfg.Port, server.NewRouter(deps))
}
