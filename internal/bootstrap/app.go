package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"study-backend/internal/documents"
	"study-backend/internal/llm"
	"study-backend/internal/llm/gemini"
	"study-backend/internal/llm/openai"
	"study-backend/internal/shared/config"
	"study-backend/internal/shared/lock"
	"study-backend/internal/shared/server"
	"study-backend/internal/shared/server/middleware"
	"study-backend/internal/shared/storage/db"
	"study-backend/internal/shared/storage/object"
	localstore "study-backend/internal/shared/storage/object/local"
	miniostore "study-backend/internal/shared/storage/object/minio"
	s3store "study-backend/internal/shared/storage/object/s3"
	"study-backend/internal/shared/telemetry"
	"study-backend/internal/study"
)

// App holds shared dependencies and the wired router.
type App struct {
	Config           config.Config
	Router           *gin.Engine
	DB               *sql.DB
	Mongo            *mongo.Client
	Redis            *redis.Client
	Store            object.ObjectStore
	Provider         llm.Provider
	DocumentsRepo    documents.Repo
	DocumentsService *documents.Service
	StudyService     *study.Service
	DocumentsHandler *documents.Handler
	StudyHandler     *study.Handler

	closers []func(context.Context) error
}

// Build prepares every dependency and registers routes.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	app := &App{Config: cfg}

	if err := app.buildDocumentStore(ctx); err != nil {
		app.Close(ctx)
		return nil, err
	}

	store, err := buildObjectStore(ctx, cfg)
	if err != nil {
		app.Close(ctx)
		return nil, err
	}
	app.Store = store

	locker := app.buildLocker()

	provider, err := app.buildProvider(ctx)
	if err != nil {
		app.Close(ctx)
		return nil, err
	}
	app.Provider = provider

	app.DocumentsService = &documents.Service{
		Repo:              app.DocumentsRepo,
		Store:             app.Store,
		MaxUploadBytes:    cfg.MaxUploadBytes,
		AllowedMediaTypes: cfg.AllowedMediaTypes,
		MinTextLength:     cfg.MinTextLength,
	}
	client := llm.NewClient(provider, cfg.LLMModels)
	app.StudyService = study.NewService(app.DocumentsService, app.DocumentsRepo, client, locker)

	app.DocumentsHandler = documents.NewHandler(app.DocumentsService)
	app.StudyHandler = study.NewHandler(app.StudyService)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:    cfg,
		Handlers:  []server.RouteRegistrar{app.DocumentsHandler, app.StudyHandler},
		RateLimit: middleware.NewRateLimiter(nil),
	})

	telemetry.Info("bootstrap.ready", map[string]any{
		"document_store": cfg.DocumentStore,
		"object_store":   cfg.ObjectStoreType,
		"provider":       provider.Name(),
		"models":         strings.Join(client.Models(), ","),
		"redis_lock":     app.Redis != nil,
	})
	return app, nil
}

// Close releases connections opened by Build, newest first.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) onClose(fn func(context.Context) error) {
	a.closers = append(a.closers, fn)
}

func (a *App) buildDocumentStore(ctx context.Context) error {
	cfg := a.Config
	switch cfg.DocumentStore {
	case "postgres":
		sqlDB, err := db.Open(ctx, cfg.DatabaseURL, db.ServerOptions().WithPool(cfg.DBPool))
		if err != nil {
			if isDevLike(cfg.Env) {
				telemetry.Warn("bootstrap.db_unavailable", map[string]any{"error": err})
				a.DocumentsRepo = documents.NewMemoryRepo()
				return nil
			}
			return err
		}
		a.onClose(func(context.Context) error { return sqlDB.Close() })
		a.DB = sqlDB
		a.DocumentsRepo = &documents.PGRepo{DB: sqlDB}
	case "mongo":
		if strings.TrimSpace(cfg.MongoURI) == "" {
			return errors.New("DOCUMENT_STORE=mongo requires MONGODB_URI")
		}
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return fmt.Errorf("connect mongo: %w", err)
		}
		a.onClose(client.Disconnect)
		if err := client.Ping(ctx, nil); err != nil {
			return fmt.Errorf("ping mongo: %w", err)
		}
		a.Mongo = client
		a.DocumentsRepo = documents.NewMongoRepo(client.Database(cfg.MongoDatabase).Collection(cfg.MongoCollection))
		telemetry.Info("mongo.connected", map[string]any{"database": cfg.MongoDatabase, "collection": cfg.MongoCollection})
	default:
		a.DocumentsRepo = documents.NewMemoryRepo()
	}
	return nil
}

func buildObjectStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, errors.New("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	case "minio":
		return miniostore.New(ctx, miniostore.Options{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		})
	case "local":
		return localstore.New(cfg.LocalStoreDir), nil
	default:
		return nil, nil
	}
}

func (a *App) buildLocker() lock.Locker {
	if strings.TrimSpace(a.Config.RedisAddr) == "" {
		return lock.NewKeyed()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     a.Config.RedisAddr,
		Password: a.Config.RedisPassword,
	})
	a.onClose(func(context.Context) error { return client.Close() })
	a.Redis = client
	return lock.NewRedis(client, a.Config.LockTTL)
}

// buildProvider picks the configured provider. A missing key is not fatal:
// uploads keep working and generation reports the provider as unconfigured.
func (a *App) buildProvider(ctx context.Context) (llm.Provider, error) {
	switch a.Config.LLMProvider {
	case "openai":
		client, err := openai.NewClient(a.Config.OpenAIAPIKey)
		if errors.Is(err, llm.ErrNotConfigured) {
			telemetry.Warn("bootstrap.provider_not_configured", map[string]any{"provider": "openai"})
			return llm.PlaceholderProvider{}, nil
		}
		return client, err
	case "gemini", "":
		provider, err := gemini.NewProvider(ctx, a.Config.GeminiAPIKey)
		if errors.Is(err, llm.ErrNotConfigured) {
			telemetry.Warn("bootstrap.provider_not_configured", map[string]any{"provider": "gemini"})
			return llm.PlaceholderProvider{}, nil
		}
		if err != nil {
			return nil, err
		}
		a.onClose(func(context.Context) error { return provider.Close() })
		return provider, nil
	default:
		return nil, fmt.Errorf("unknown LLM_PROVIDER %q", a.Config.LLMProvider)
	}
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
