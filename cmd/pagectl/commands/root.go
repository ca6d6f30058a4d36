// Package commands implements the pagectl command line.
package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/nrfta/keyset-paging/content"
	"github.com/nrfta/keyset-paging/internal/config"
)

// ServiceFactory opens the content service described by cfg. The returned
// close function releases its connections.
type ServiceFactory func(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*content.Service, func(context.Context) error, error)

// Option configures the root command.
type Option func(*app)

// WithServiceFactory replaces the MongoDB-backed service, e.g. with an
// in-memory one.
func WithServiceFactory(factory ServiceFactory) Option {
	return func(a *app) {
		a.factory = factory
	}
}

type app struct {
	configPath string
	factory    ServiceFactory
}

// NewRootCmd creates the root command
func NewRootCmd(opts ...Option) *cobra.Command {
	a := &app{factory: mongoService}
	for _, opt := range opts {
		opt(a)
	}

	rootCmd := &cobra.Command{
		Use:           "pagectl",
		Short:         "Page through the posts, replies and profiles of the content database",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default ./pagectl.yaml)")
	flags.String("mongo-uri", "", "MongoDB connection string")
	flags.String("database", "", "MongoDB database name")
	flags.Duration("timeout", 0, "timeout of the whole command")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("log-format", "", "log format (text, json)")

	rootCmd.AddCommand(
		a.newPostsCommand(),
		a.newRepliesCommand(),
		a.newProfilesCommand(),
	)

	return rootCmd
}

// run loads the configuration, opens the service and prints the connection
// returned by page as JSON.
func (a *app) run(cmd *cobra.Command, page func(ctx context.Context, svc *content.Service) (any, error)) error {
	cfg, err := config.Load(a.configPath, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := cfg.Logger.New(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Mongo.Timeout)
	defer cancel()

	svc, closeFn, err := a.factory(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeFn(context.Background()); err != nil {
			logger.WithError(err).Warn("failed to close content service")
		}
	}()

	conn, err := page(ctx, svc)
	if err != nil {
		return err
	}

	return writeJSON(cmd.OutOrStdout(), conn)
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write connection: %w", err)
	}
	return nil
}

func mongoService(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*content.Service, func(context.Context) error, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"database": cfg.Mongo.Database,
	}).Debug("connected to MongoDB")

	svc := content.NewMongoService(client.Database(cfg.Mongo.Database),
		content.WithPageConfig(cfg.Paging.PageConfig()),
		content.WithLogger(logger),
	)
	return svc, client.Disconnect, nil
}
