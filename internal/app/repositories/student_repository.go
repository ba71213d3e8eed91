package repositories

import (
	"context"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mgc/inscriptions/internal/app/models"
	"github.com/mgc/inscriptions/internal/pkg/apperrors"
	"github.com/mgc/inscriptions/internal/pkg/logger"
)

// duplicateCandidateLimit caps the number of records returned by an advisory
// duplicate check.
const duplicateCandidateLimit = 5

// StudentRepository handles student document operations
type StudentRepository struct {
	collection *mongo.Collection
}

// NewStudentRepository creates a new StudentRepository
func NewStudentRepository(db *mongo.Database) *StudentRepository {
	return &StudentRepository{
		collection: db.Collection("students"),
	}
}

// Insert stores a new student document. A unique-index violation on
// readableId is reported as apperrors.ErrDuplicateTicketID so the caller can
// regenerate the ID.
func (r *StudentRepository) Insert(ctx context.Context, student *models.Student) error {
	res, err := r.collection.InsertOne(ctx, student)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.ErrDuplicateTicketID
		}
		logger.Error().Err(err).Msg("Error inserting student document")
		return fmt.Errorf("error inserting student: %w", err)
	}

	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		student.ID = oid
	}
	return nil
}

// FindDuplicates returns up to five documents matching either the exact
// phone number or a case-insensitive name pattern. Criteria left empty are
// not part of the query; callers must supply at least one.
func (r *StudentRepository) FindDuplicates(ctx context.Context, nomComplet, telephone string) ([]*models.Student, error) {
	or := bson.A{}
	if telephone != "" {
		or = append(or, bson.M{"telephone": telephone})
	}
	if nomComplet != "" {
		or = append(or, bson.M{"nomComplet": bson.M{
			"$regex":   regexp.QuoteMeta(nomComplet),
			"$options": "i",
		}})
	}
	if len(or) == 0 {
		return nil, nil
	}

	opts := options.Find().SetLimit(duplicateCandidateLimit)
	cursor, err := r.collection.Find(ctx, bson.M{"$or": or}, opts)
	if err != nil {
		logger.Error().Err(err).Msg("Error querying duplicate candidates")
		return nil, fmt.Errorf("error querying duplicates: %w", err)
	}
	defer cursor.Close(ctx)

	var candidates []*models.Student
	if err := cursor.All(ctx, &candidates); err != nil {
		return nil, fmt.Errorf("error decoding duplicate candidates: %w", err)
	}
	return candidates, nil
}

// FindAll returns every student document, newest first.
func (r *StudentRepository) FindAll(ctx context.Context) ([]*models.Student, error) {
	opts := options.Find().SetSort(bson.D{{Key: "dateAjout", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing student documents")
		return nil, fmt.Errorf("error listing students: %w", err)
	}
	defer cursor.Close(ctx)

	students := []*models.Student{}
	if err := cursor.All(ctx, &students); err != nil {
		return nil, fmt.Errorf("error decoding students: %w", err)
	}
	return students, nil
}
