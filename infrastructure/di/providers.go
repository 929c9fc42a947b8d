package di

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"schoolride-backend/application/commands"
	"schoolride-backend/application/commands/bus"
	"schoolride-backend/application/ports"
	"schoolride-backend/application/queries"
	querybus "schoolride-backend/application/queries/bus"
	"schoolride-backend/application/services"
	"schoolride-backend/domain/core/entities"
	"schoolride-backend/domain/core/validators"
	"schoolride-backend/domain/core/valueobjects"
	"schoolride-backend/infrastructure/config"
	"schoolride-backend/infrastructure/geocode"
	"schoolride-backend/infrastructure/messaging/eventbridge"
	"schoolride-backend/infrastructure/metrics"
	dynamostore "schoolride-backend/infrastructure/persistence/dynamodb"
	"schoolride-backend/infrastructure/persistence/mongodb"
	"schoolride-backend/pkg/auth"
	"schoolride-backend/pkg/extensions"
	"schoolride-backend/pkg/observability"
)

// Cached query results live this long before expiring
const queryCacheTTLSeconds = 30

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	if level, err := zapcore.ParseLevel(cfg.LogLevel); err == nil {
		zapCfg.Level = zap.NewAtomicLevelAt(level)
	}

	return zapCfg.Build()
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
	if err != nil {
		return aws.Config{}, err
	}
	if cfg.EnableTracing {
		observability.InstrumentAWS(&awsCfg)
	}
	return awsCfg, nil
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideCloudWatchClient creates a CloudWatch client
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

// ProvideMetricsRecorder creates the metrics recorder
func ProvideMetricsRecorder(client *awscloudwatch.Client, cfg *config.Config, logger *zap.Logger) metrics.Recorder {
	if !cfg.EnableMetrics {
		return metrics.NopRecorder{}
	}
	return metrics.NewCloudWatchRecorder(client, logger)
}

// ProvideHookManager creates the hook manager and registers the
// metrics hooks that instrument command and query processing
func ProvideHookManager(recorder metrics.Recorder) *extensions.HookManager {
	hooks := extensions.NewHookManager()

	hooks.Register(extensions.HookAfterCommand, func(ctx context.Context, data extensions.HookData) error {
		recorder.Count("CommandProcessed", 1, metrics.Dimension("Operation", data.Operation))
		recorder.Timing("CommandLatency", data.Duration, metrics.Dimension("Operation", data.Operation))
		return nil
	})
	hooks.Register(extensions.HookCommandFailed, func(ctx context.Context, data extensions.HookData) error {
		recorder.Count("CommandFailed", 1, metrics.Dimension("Operation", data.Operation))
		return nil
	})
	hooks.Register(extensions.HookAfterQuery, func(ctx context.Context, data extensions.HookData) error {
		recorder.Timing("QueryLatency", data.Duration, metrics.Dimension("Operation", data.Operation))
		return nil
	})
	hooks.Register(extensions.HookQueryFailed, func(ctx context.Context, data extensions.HookData) error {
		recorder.Count("QueryFailed", 1, metrics.Dimension("Operation", data.Operation))
		return nil
	})

	return hooks
}

// ProvideMirrorSyncService creates the mirror sync service
func ProvideMirrorSyncService(students ports.StudentRepository, mirror ports.MirrorStore, logger *zap.Logger) *services.MirrorSyncService {
	return services.NewMirrorSyncService(students, mirror, logger)
}

// ProvideMongoClient connects to the primary store
func ProvideMongoClient(ctx context.Context, cfg *config.Config) (*mongo.Client, error) {
	return mongodb.NewClient(ctx, cfg.MongoURI)
}

// ProvideMongoDatabase selects the configured database
func ProvideMongoDatabase(client *mongo.Client, cfg *config.Config) *mongo.Database {
	return client.Database(cfg.MongoDatabase)
}

// ProvideStudentRepository creates the student repository on MongoDB
func ProvideStudentRepository(db *mongo.Database, logger *zap.Logger) ports.StudentRepository {
	return mongodb.NewStudentRepository(db, logger)
}

// ProvidePersonRepository creates the person repository on MongoDB
func ProvidePersonRepository(db *mongo.Database, logger *zap.Logger) ports.PersonRepository {
	return mongodb.NewPersonRepository(db, logger)
}

// ProvideTableClient creates the DynamoDB table client for the mirror
func ProvideTableClient(client *awsdynamodb.Client, cfg *config.Config) *dynamostore.TableClient {
	return dynamostore.NewTableClient(client, cfg.DynamoDBTable)
}

// ProvideMirrorStore creates the secondary write-through store.
// With ENABLE_MIRROR off, writes go only to the primary.
func ProvideMirrorStore(table *dynamostore.TableClient, cfg *config.Config, logger *zap.Logger) ports.MirrorStore {
	if !cfg.EnableMirror {
		return nopMirrorStore{}
	}
	return dynamostore.NewMirror(table, logger)
}

type nopMirrorStore struct{}

func (nopMirrorStore) MirrorStudent(ctx context.Context, student *entities.Student) error { return nil }

func (nopMirrorStore) MirrorPerson(ctx context.Context, person *entities.Person) error { return nil }

func (nopMirrorStore) RemoveStudent(ctx context.Context, schoolID string, id valueobjects.PersonID) error {
	return nil
}

func (nopMirrorStore) RemovePerson(ctx context.Context, id valueobjects.PersonID) error { return nil }

func (nopMirrorStore) ListMirroredStudents(ctx context.Context, schoolID string) ([]ports.MirroredStudent, error) {
	return nil, nil
}

func (nopMirrorStore) MirroredStudents(ctx context.Context, schoolID string, studentIDs []string) ([]ports.MirroredStudent, error) {
	return nil, nil
}

// ProvideEventPublisher creates the domain event publisher
func ProvideEventPublisher(client *awseventbridge.Client, cfg *config.Config, logger *zap.Logger) ports.EventPublisher {
	return eventbridge.NewPublisher(client, cfg.EventBusName, logger)
}

// ProvideGeocoder creates the geocoding client. Without an API key,
// addresses are stored without coordinates.
func ProvideGeocoder(cfg *config.Config, logger *zap.Logger) ports.Geocoder {
	if cfg.HereMapsAPIKey == "" {
		return geocode.NopGeocoder{}
	}
	return geocode.NewHereClient(cfg.HereMapsAPIKey, logger)
}

// ProvideJWTValidator creates the bearer token validator. Development
// falls back to a fixed secret so the API can run without setup.
func ProvideJWTValidator(cfg *config.Config, logger *zap.Logger) (*auth.JWTValidator, error) {
	secret := cfg.JWTSecret
	if secret == "" {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("JWT_SECRET is required in production")
		}
		logger.Warn("JWT_SECRET not set, using insecure development secret")
		secret = "dev-secret"
	}
	return auth.NewJWTValidator(auth.JWTConfig{
		SigningMethod: "HS256",
		SecretKey:     secret,
		Issuer:        cfg.JWTIssuer,
	})
}

// ProvideStudentValidator creates the cross-field student validator
func ProvideStudentValidator() *validators.StudentValidator {
	return validators.NewStudentValidator()
}

// ProvideInMemoryCache creates a simple in-memory cache
// In production, this would be Redis or similar
func ProvideInMemoryCache() ports.Cache {
	return NewInMemoryCache()
}

// CommandHandlerAdapter adapts specific command handlers to the generic interface
type CommandHandlerAdapter struct {
	name    string
	hooks   *extensions.HookManager
	handler func(context.Context, bus.Command) error
}

func (a *CommandHandlerAdapter) Handle(ctx context.Context, cmd bus.Command) error {
	data := extensions.HookData{
		MessageType: fmt.Sprintf("%T", cmd),
		Operation:   a.name,
	}
	if a.hooks != nil {
		if err := a.hooks.Execute(ctx, extensions.HookBeforeCommand, data); err != nil {
			return err
		}
	}

	start := time.Now()
	err := a.handler(ctx, cmd)
	data.Duration = time.Since(start)

	if a.hooks != nil {
		if err != nil {
			data.Err = err
			a.hooks.ExecuteAsync(ctx, extensions.HookCommandFailed, data)
		} else {
			a.hooks.ExecuteAsync(ctx, extensions.HookAfterCommand, data)
		}
	}
	return err
}

// ProvideCommandBus creates a command bus with registered handlers
func ProvideCommandBus(
	students ports.StudentRepository,
	persons ports.PersonRepository,
	mirror ports.MirrorStore,
	publisher ports.EventPublisher,
	geocoder ports.Geocoder,
	validator *validators.StudentValidator,
	cache ports.Cache,
	hooks *extensions.HookManager,
	logger *zap.Logger,
) *bus.CommandBus {
	commandBus := bus.NewCommandBus()

	// Register CreateStudentCommand handler
	createStudentHandler := commands.NewCreateStudentHandler(students, mirror, publisher, geocoder, validator, cache, logger)
	commandBus.Register(commands.CreateStudentCommand{}, &CommandHandlerAdapter{
		name:    "CreateStudent",
		hooks:   hooks,
		handler: func(ctx context.Context, cmd bus.Command) error {
			createCmd, ok := cmd.(commands.CreateStudentCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			_, err := createStudentHandler.Handle(ctx, createCmd)
			return err
		},
	})

	// Register UpdateStudentCommand handler
	updateStudentHandler := commands.NewUpdateStudentHandler(students, mirror, publisher, geocoder, validator, cache, logger)
	commandBus.Register(commands.UpdateStudentCommand{}, &CommandHandlerAdapter{
		name:    "UpdateStudent",
		hooks:   hooks,
		handler: func(ctx context.Context, cmd bus.Command) error {
			updateCmd, ok := cmd.(commands.UpdateStudentCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			_, err := updateStudentHandler.Handle(ctx, updateCmd)
			return err
		},
	})

	// Register DeleteStudentCommand handler
	deleteStudentHandler := commands.NewDeleteStudentHandler(students, mirror, publisher, cache, logger)
	commandBus.Register(commands.DeleteStudentCommand{}, &CommandHandlerAdapter{
		name:    "DeleteStudent",
		hooks:   hooks,
		handler: func(ctx context.Context, cmd bus.Command) error {
			deleteCmd, ok := cmd.(commands.DeleteStudentCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			return deleteStudentHandler.Handle(ctx, deleteCmd)
		},
	})

	// Register CreatePersonCommand handler
	createPersonHandler := commands.NewCreatePersonHandler(persons, mirror, publisher, geocoder, cache, logger)
	commandBus.Register(commands.CreatePersonCommand{}, &CommandHandlerAdapter{
		name:    "CreatePerson",
		hooks:   hooks,
		handler: func(ctx context.Context, cmd bus.Command) error {
			createCmd, ok := cmd.(commands.CreatePersonCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			_, err := createPersonHandler.Handle(ctx, createCmd)
			return err
		},
	})

	// Register UpdatePersonCommand handler
	updatePersonHandler := commands.NewUpdatePersonHandler(persons, mirror, publisher, geocoder, cache, logger)
	commandBus.Register(commands.UpdatePersonCommand{}, &CommandHandlerAdapter{
		name:    "UpdatePerson",
		hooks:   hooks,
		handler: func(ctx context.Context, cmd bus.Command) error {
			updateCmd, ok := cmd.(commands.UpdatePersonCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			_, err := updatePersonHandler.Handle(ctx, updateCmd)
			return err
		},
	})

	// Register DeletePersonCommand handler
	deletePersonHandler := commands.NewDeletePersonHandler(persons, mirror, publisher, cache, logger)
	commandBus.Register(commands.DeletePersonCommand{}, &CommandHandlerAdapter{
		name:    "DeletePerson",
		hooks:   hooks,
		handler: func(ctx context.Context, cmd bus.Command) error {
			deleteCmd, ok := cmd.(commands.DeletePersonCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			return deletePersonHandler.Handle(ctx, deleteCmd)
		},
	})

	return commandBus
}

// QueryHandlerAdapter adapts specific query handlers to the generic interface
type QueryHandlerAdapter struct {
	name    string
	hooks   *extensions.HookManager
	handler func(context.Context, querybus.Query) (interface{}, error)
}

func (a *QueryHandlerAdapter) Handle(ctx context.Context, query querybus.Query) (interface{}, error) {
	data := extensions.HookData{
		MessageType: fmt.Sprintf("%T", query),
		Operation:   a.name,
	}
	if a.hooks != nil {
		if err := a.hooks.Execute(ctx, extensions.HookBeforeQuery, data); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	result, err := a.handler(ctx, query)
	data.Duration = time.Since(start)

	if a.hooks != nil {
		if err != nil {
			data.Err = err
			a.hooks.ExecuteAsync(ctx, extensions.HookQueryFailed, data)
		} else {
			a.hooks.ExecuteAsync(ctx, extensions.HookAfterQuery, data)
		}
	}
	return result, err
}

// ProvideQueryBus creates a query bus with registered handlers
func ProvideQueryBus(
	students ports.StudentRepository,
	persons ports.PersonRepository,
	cache ports.Cache,
	hooks *extensions.HookManager,
	logger *zap.Logger,
) *querybus.QueryBus {
	queryBus := querybus.NewQueryBus()
	caching := querybus.NewCachingMiddleware(cache, queryCacheTTLSeconds)

	// Register GetStudentQuery handler
	getStudentHandler := queries.NewGetStudentHandler(students)
	queryBus.Register(queries.GetStudentQuery{}, caching.Wrap(&QueryHandlerAdapter{
		name:    "GetStudent",
		hooks:   hooks,
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			getQuery, ok := query.(queries.GetStudentQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return getStudentHandler.Handle(ctx, getQuery)
		},
	}))

	// Register ListStudentsQuery handler
	listStudentsHandler := queries.NewListStudentsHandler(students)
	queryBus.Register(queries.ListStudentsQuery{}, &QueryHandlerAdapter{
		name:    "ListStudents",
		hooks:   hooks,
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			listQuery, ok := query.(queries.ListStudentsQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return listStudentsHandler.Handle(ctx, listQuery)
		},
	})

	// Register GetPersonQuery handler
	getPersonHandler := queries.NewGetPersonHandler(persons)
	queryBus.Register(queries.GetPersonQuery{}, caching.Wrap(&QueryHandlerAdapter{
		name:    "GetPerson",
		hooks:   hooks,
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			getQuery, ok := query.(queries.GetPersonQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return getPersonHandler.Handle(ctx, getQuery)
		},
	}))

	// Register ListPersonsQuery handler
	listPersonsHandler := queries.NewListPersonsHandler(persons)
	queryBus.Register(queries.ListPersonsQuery{}, &QueryHandlerAdapter{
		name:    "ListPersons",
		hooks:   hooks,
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			listQuery, ok := query.(queries.ListPersonsQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return listPersonsHandler.Handle(ctx, listQuery)
		},
	})

	return queryBus
}
