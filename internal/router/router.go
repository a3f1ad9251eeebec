package router

import (
	"context"
	"fmt"
	"log"

	"github.com/anonto42/cinetrack/backend/internal/handlers"
	"github.com/anonto42/cinetrack/backend/internal/logging"
	"github.com/anonto42/cinetrack/backend/internal/models"
	"github.com/anonto42/cinetrack/backend/internal/push"
	"github.com/anonto42/cinetrack/backend/internal/repositories"
	"github.com/anonto42/cinetrack/backend/internal/repositories/memory"
	"github.com/anonto42/cinetrack/backend/internal/services"
	"github.com/anonto42/cinetrack/backend/pkg/config"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"
	"google.golang.org/api/option"
	"gorm.io/gorm"
)

// Stores groups the repositories the API runs on.
type Stores struct {
	Users         repositories.UserRepository
	Follows       repositories.FollowRepository
	Notifications repositories.NotificationRepository
	Devices       repositories.DeviceTokenRepository
	// Graph writes a follow edge together with its notification.
	Graph repositories.GraphTx
	// Movies is nil when no movie list backend is configured.
	Movies repositories.MovieListRepository
}

// PostgresStores migrates the schema and returns the SQL-backed repositories.
// Movie lists come from mongoDB when it is non-nil.
func PostgresStores(pgdb *gorm.DB, mongoDB *mongo.Database) (Stores, error) {
	err := pgdb.AutoMigrate(
		&models.User{},
		&models.Follow{},
		&models.Notification{},
		&models.DeviceToken{},
	)
	if err != nil {
		return Stores{}, fmt.Errorf("auto migrate models: %w", err)
	}
	log.Println("PostgreSQL auto-migrations completed for all models.")

	stores := Stores{
		Users:         repositories.NewPostgresUserRepository(pgdb),
		Follows:       repositories.NewPostgresFollowRepository(pgdb),
		Notifications: repositories.NewPostgresNotificationRepository(pgdb),
		Devices:       repositories.NewDeviceTokenRepository(pgdb),
		Graph:         repositories.NewPostgresGraphTx(pgdb),
	}
	if mongoDB != nil {
		stores.Movies = repositories.NewMongoMovieListRepository(mongoDB)
		log.Println("Movie lists served from MongoDB.")
	}
	return stores, nil
}

// MemoryStores returns in-memory repositories seeded with a few demo users.
func MemoryStores() Stores {
	users := memory.NewUserStore(
		models.User{ID: 1, Username: "alice", Email: "alice@example.com"},
		models.User{ID: 2, Username: "bob", Email: "bob@example.com"},
		models.User{ID: 3, Username: "carol", Email: "carol@example.com", IsPrivate: true},
		models.User{ID: 4, Username: "dave", Email: "dave@example.com"},
	)
	movies := memory.NewMovieStore()
	movies.Put(1,
		models.UserMovie{UserID: 1, MovieID: 603, Title: "The Matrix", IsFavorite: true, IsWatched: true},
		models.UserMovie{UserID: 1, MovieID: 27205, Title: "Inception", IsWatched: true},
	)
	movies.Put(3, models.UserMovie{UserID: 3, MovieID: 496243, Title: "Parasite", IsFavorite: true})
	log.Println("Using in-memory stores with demo users alice, bob, carol (private) and dave.")

	follows := memory.NewFollowStore()
	notifications := memory.NewNotificationStore()
	return Stores{
		Users:         users,
		Follows:       follows,
		Notifications: notifications,
		Devices:       memory.NewDeviceStore(),
		Graph:         memory.NewGraphTx(follows, notifications),
		Movies:        movies,
	}
}

// PushQueue is a push.Queue whose workers can be started and stopped.
type PushQueue interface {
	push.Queue
	Run(ctx context.Context)
	Stop()
}

type workerPoolQueue struct{ *push.WorkerPool }

func (q workerPoolQueue) Run(ctx context.Context) { q.Start(ctx) }

type pubSubQueue struct {
	*push.PubSubQueue
	log logging.Logger
}

func (q pubSubQueue) Run(ctx context.Context) {
	go func() {
		if err := q.Start(ctx); err != nil {
			q.log.Error(ctx, "pubsub receiver stopped", "error", err)
		}
	}()
}

// NewPushQueue builds the queue selected by cfg.QueueMode around a fanout of
// sender over the stored device tokens.
func NewPushQueue(ctx context.Context, cfg *config.Config, devices repositories.DeviceTokenRepository, sender push.Sender, logger logging.Logger) (PushQueue, error) {
	fanout := push.NewFanout(devices, sender, logger)

	switch cfg.QueueMode {
	case "pubsub":
		var opts []option.ClientOption
		if cfg.FirebaseCredentialsPath != "" {
			opts = append(opts, option.WithCredentialsFile(cfg.FirebaseCredentialsPath))
		}
		q, err := push.NewPubSubQueue(ctx, cfg.GCPProjectID, cfg.PubSubTopic, cfg.PubSubSubscription, fanout.Deliver, logger, opts...)
		if err != nil {
			return nil, err
		}
		log.Printf("Push jobs published to Pub/Sub topic %s.", cfg.PubSubTopic)
		return pubSubQueue{PubSubQueue: q, log: logger}, nil
	default:
		log.Printf("Push jobs handled by %d in-process workers.", cfg.PushWorkers)
		return workerPoolQueue{push.NewWorkerPool(cfg.PushWorkers, cfg.PushQueueSize, fanout.Deliver, logger)}, nil
	}
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, stores Stores, auth echo.MiddlewareFunc, queue push.Queue, logger logging.Logger) {
	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Services ---
	dispatcher := services.NewNotificationDispatcher(stores.Notifications, queue, logger)
	followService := services.NewFollowService(stores.Follows, stores.Users, stores.Movies, stores.Graph, dispatcher, logger)

	// --- Protected routes ---
	api := e.Group("/api/v1")
	api.Use(auth)
	log.Println("Authentication middleware applied to /api/v1 group.")

	// User profile and search routes
	userHandler := handlers.NewUserHandler(followService)
	userHandler.RegisterProfileRoutes(api)
	log.Println("User profile routes configured.")

	// Follow routes
	followHandler := handlers.NewFollowHandler(followService)
	followHandler.RegisterFollowRoutes(api)
	log.Println("Follow routes configured.")

	// Notification routes
	notificationHandler := handlers.NewNotificationHandler(stores.Notifications)
	notificationHandler.RegisterNotificationRoutes(api)
	log.Println("Notification routes configured.")

	// Device routes
	deviceHandler := handlers.NewDeviceTokenHandler(stores.Devices)
	deviceHandler.RegisterDeviceRoutes(api)
	log.Println("Device routes configured.")

	log.Println("All routes configured.")
}
