package mongodb

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"schoolride-backend/application/ports"
	"schoolride-backend/domain/core/entities"
	"schoolride-backend/domain/core/valueobjects"
	apperrors "schoolride-backend/pkg/errors"
)

// PersonRepository implements ports.PersonRepository on MongoDB
type PersonRepository struct {
	collection *mongo.Collection
	logger     *zap.Logger
}

// NewPersonRepository creates a person repository on the given database
func NewPersonRepository(db *mongo.Database, logger *zap.Logger) *PersonRepository {
	return &PersonRepository{
		collection: db.Collection(PersonsCollection),
		logger:     logger,
	}
}

// Save persists a person, replacing any existing document with the same ID
func (r *PersonRepository) Save(ctx context.Context, person *entities.Person) error {
	doc := newPersonDoc(person)

	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts); err != nil {
		return apperrors.NewDatabaseError("save person", err)
	}

	return nil
}

// GetByID retrieves a person by ID; returns nil when absent
func (r *PersonRepository) GetByID(ctx context.Context, id valueobjects.PersonID) (*entities.Person, error) {
	var doc personDoc
	err := r.collection.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, apperrors.NewDatabaseError("get person", err)
	}

	return doc.toEntity()
}

// List retrieves a page of persons matching the filter, newest first
func (r *PersonRepository) List(ctx context.Context, filter ports.PersonFilter) ([]*entities.Person, int, error) {
	query := bson.M{}
	if filter.Status != "" {
		query["status"] = filter.Status
	}

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, apperrors.NewDatabaseError("count persons", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(filter.Offset)).
		SetLimit(int64(filter.Limit))

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, apperrors.NewDatabaseError("list persons", err)
	}
	defer cursor.Close(ctx)

	persons := make([]*entities.Person, 0)
	for cursor.Next(ctx) {
		var doc personDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, 0, apperrors.NewDatabaseError("decode person", err)
		}

		person, err := doc.toEntity()
		if err != nil {
			r.logger.Warn("Skipping malformed person document",
				zap.String("id", doc.ID),
				zap.Error(err),
			)
			continue
		}
		persons = append(persons, person)
	}
	if err := cursor.Err(); err != nil {
		return nil, 0, apperrors.NewDatabaseError("iterate persons", err)
	}

	return persons, int(total), nil
}

// Delete removes a person by ID
func (r *PersonRepository) Delete(ctx context.Context, id valueobjects.PersonID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return apperrors.NewDatabaseError("delete person", err)
	}
	if result.DeletedCount == 0 {
		return apperrors.NewNotFoundError("person " + id.String())
	}

	return nil
}
