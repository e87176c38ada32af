package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"eventapi/audit"
	"eventapi/config"
	"eventapi/db"
	"eventapi/geocoding"
	"eventapi/middlewares"
	"eventapi/models"
	"eventapi/routes"
	"eventapi/services"
	"eventapi/utils"
)

var serverAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the HTTP server. Configuration comes from the environment (and the
--env-file, if present). SIGINT/SIGTERM trigger a graceful shutdown.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

func runServer() error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if serverAddr != "" {
		cfg.Server.Addr = serverAddr
	}

	logger := config.NewLogger(cfg.Logging)
	logger.Info().Str("addr", cfg.Server.Addr).Msg("starting event api")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sqldb, err := db.Open(ctx, db.Config{
		URL:          cfg.Database.URL,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
	})
	if err != nil {
		return err
	}
	defer sqldb.Close()
	if err := db.CreateTables(ctx, sqldb); err != nil {
		return err
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		// cache, quota and geocode cache degrade to pass-through
		logger.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unreachable")
	}

	recorder, closeMongo, err := openAuditLog(ctx, cfg.Mongo, logger)
	if err != nil {
		return err
	}
	defer closeMongo()

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}
	engine, stop := newEngine(cfg, logger, sqldb, rdb, recorder)
	defer stop()
	server.Handler = engine

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)

	return serve(server, logger, signals)
}

func newEngine(cfg config.Config, logger zerolog.Logger, sqldb *sqlx.DB, rdb *redis.Client, recorder audit.Recorder) (*gin.Engine, func()) {
	tokens := utils.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry)

	nominatim := geocoding.NewNominatimClient(cfg.Geocoding.BaseURL, cfg.Geocoding.Email)
	geocoder := geocoding.NewService(nominatim, geocoding.NewRedisCache(rdb, cfg.Geocoding.CacheTTL), logger)

	events := models.NewSQLEventRepository(sqldb)
	locations := services.NewLocationService(models.NewSQLLocationRepository(sqldb), geocoder, logger)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(
		gin.Recovery(),
		middlewares.RequestLogger(logger),
		middlewares.Metrics(),
		middlewares.CORS(cfg.CORS.AllowedOrigins, logger),
	)

	stop := routes.RegisterRoutes(engine, routes.Deps{
		Users:        services.NewUserService(models.NewSQLUserRepository(sqldb), tokens, recorder, logger),
		Events:       services.NewEventService(events, locations, recorder, logger),
		Participants: services.NewParticipantService(events, models.NewSQLParticipantRepository(sqldb), recorder, logger),
		Locations:    locations,

		Tokens:      tokens,
		Redis:       rdb,
		Invalidator: utils.NewCacheInvalidator(rdb),

		CacheTTL:        cfg.Cache.ResponseTTL,
		QuotaDailyLimit: cfg.Cache.QuotaDailyLimit,

		Health: sqldb.PingContext,
		Logger: logger,
	})
	return engine, stop
}

// openAuditLog connects to Mongo when MONGO_URI is set; otherwise activity is
// not recorded.
func openAuditLog(ctx context.Context, cfg config.MongoConfig, logger zerolog.Logger) (audit.Recorder, func(), error) {
	if cfg.URI == "" {
		logger.Info().Msg("MONGO_URI not set; activity log disabled")
		return audit.Nop{}, func() {}, nil
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	recorder := audit.NewMongoRecorder(client.Database(cfg.Database).Collection("activity"))
	if err := recorder.EnsureIndexes(ctx); err != nil {
		logger.Warn().Err(err).Msg("activity log indexes not created")
	}
	return recorder, func() { _ = client.Disconnect(context.Background()) }, nil
}

// serve runs the server until a signal arrives, then drains it. A listen
// failure is returned so the process exits non-zero.
func serve(server *http.Server, logger zerolog.Logger, signals <-chan os.Signal) error {
	errCh := make(chan error, 1)
	go func() { errCh <- server.ListenAndServe() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		logger.Error().Err(err).Msg("http server error")
		return fmt.Errorf("http server: %w", err)
	case sig := <-signals:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
