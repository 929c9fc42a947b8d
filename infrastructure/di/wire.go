//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"schoolride-backend/application/commands/bus"
	"schoolride-backend/application/ports"
	querybus "schoolride-backend/application/queries/bus"
	"schoolride-backend/application/services"
	"schoolride-backend/infrastructure/config"
	"schoolride-backend/infrastructure/metrics"
	"schoolride-backend/pkg/auth"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	Logger       *zap.Logger
	MongoClient  *mongo.Client
	StudentRepo  ports.StudentRepository
	PersonRepo   ports.PersonRepository
	Mirror       ports.MirrorStore
	Publisher    ports.EventPublisher
	Geocoder     ports.Geocoder
	Cache        ports.Cache
	Metrics      metrics.Recorder
	JWTValidator *auth.JWTValidator
	MirrorSync   *services.MirrorSyncService
	CommandBus   *bus.CommandBus
	QueryBus     *querybus.QueryBus
}

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideEventBridgeClient,
	ProvideCloudWatchClient,
	ProvideMongoClient,
	ProvideMongoDatabase,
	ProvideStudentRepository,
	ProvidePersonRepository,
	ProvideTableClient,
	ProvideMirrorStore,
	ProvideEventPublisher,
	ProvideGeocoder,
	ProvideJWTValidator,
	ProvideStudentValidator,
	ProvideInMemoryCache,
	ProvideMetricsRecorder,
	ProvideHookManager,
	ProvideMirrorSyncService,
	ProvideCommandBus,
	ProvideQueryBus,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // Wire will replace this
}
