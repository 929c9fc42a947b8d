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

// StudentRepository implements ports.StudentRepository on MongoDB
type StudentRepository struct {
	collection *mongo.Collection
	logger     *zap.Logger
}

// NewStudentRepository creates a student repository on the given database
func NewStudentRepository(db *mongo.Database, logger *zap.Logger) *StudentRepository {
	return &StudentRepository{
		collection: db.Collection(StudentsCollection),
		logger:     logger,
	}
}

// Save persists a student, replacing any existing document with the same ID
func (r *StudentRepository) Save(ctx context.Context, student *entities.Student) error {
	doc := newStudentDoc(student)

	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts); err != nil {
		return apperrors.NewDatabaseError("save student", err)
	}

	return nil
}

// GetByID retrieves a student by ID; returns nil when absent
func (r *StudentRepository) GetByID(ctx context.Context, id valueobjects.PersonID) (*entities.Student, error) {
	var doc studentDoc
	err := r.collection.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, apperrors.NewDatabaseError("get student", err)
	}

	return doc.toEntity()
}

// List retrieves a page of students matching the filter, newest first
func (r *StudentRepository) List(ctx context.Context, filter ports.StudentFilter) ([]*entities.Student, int, error) {
	query := bson.M{}
	if filter.SchoolID != "" {
		query["school_id"] = filter.SchoolID
	}
	if filter.Grade != "" {
		query["grade"] = filter.Grade
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, apperrors.NewDatabaseError("count students", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(filter.Offset)).
		SetLimit(int64(filter.Limit))

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, apperrors.NewDatabaseError("list students", err)
	}
	defer cursor.Close(ctx)

	students := make([]*entities.Student, 0)
	for cursor.Next(ctx) {
		var doc studentDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, 0, apperrors.NewDatabaseError("decode student", err)
		}

		student, err := doc.toEntity()
		if err != nil {
			// Skip malformed documents rather than failing the whole page
			r.logger.Warn("Skipping malformed student document",
				zap.String("id", doc.ID),
				zap.Error(err),
			)
			continue
		}
		students = append(students, student)
	}
	if err := cursor.Err(); err != nil {
		return nil, 0, apperrors.NewDatabaseError("iterate students", err)
	}

	return students, int(total), nil
}

// Delete removes a student by ID
func (r *StudentRepository) Delete(ctx context.Context, id valueobjects.PersonID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return apperrors.NewDatabaseError("delete student", err)
	}
	if result.DeletedCount == 0 {
		return apperrors.NewNotFoundError("student " + id.String())
	}

	return nil
}
