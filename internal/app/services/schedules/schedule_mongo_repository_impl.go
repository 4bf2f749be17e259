package schedules

import (
	"context"
	"mediconnect-service/internal/app/contracts"
	"mediconnect-service/internal/app/models"
	"mediconnect-service/internal/pkg/constvars"
	"mediconnect-service/internal/pkg/exceptions"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ScheduleMongoRepository struct {
	Templates  *mongo.Collection
	Exceptions *mongo.Collection
}

func NewScheduleMongoRepository(db *mongo.Client, dbName string) contracts.ScheduleRepository {
	return &ScheduleMongoRepository{
		Templates:  db.Database(dbName).Collection(constvars.MongoCollectionScheduleTemplates),
		Exceptions: db.Database(dbName).Collection(constvars.MongoCollectionScheduleExceptions),
	}
}

func (r *ScheduleMongoRepository) FindTemplateByUserAndDay(ctx context.Context, userID string, dayOfWeek int) (*models.ScheduleTemplate, error) {
	var template models.ScheduleTemplate
	filter := bson.M{"userId": userID, "dayOfWeek": dayOfWeek}
	err := r.Templates.FindOne(ctx, filter).Decode(&template)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	return &template, nil
}

func (r *ScheduleMongoRepository) FindTemplateByID(ctx context.Context, templateID string) (*models.ScheduleTemplate, error) {
	var template models.ScheduleTemplate
	objectID, err := primitive.ObjectIDFromHex(templateID)
	if err != nil {
		return nil, exceptions.ErrMongoDBNotObjectID(err)
	}
	err = r.Templates.FindOne(ctx, bson.M{"_id": objectID}).Decode(&template)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	return &template, nil
}

func (r *ScheduleMongoRepository) FindTemplatesByUserID(ctx context.Context, userID string) ([]models.ScheduleTemplate, error) {
	cursor, err := r.Templates.Find(ctx, bson.M{"userId": userID})
	if err != nil {
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	defer cursor.Close(ctx)

	var templates []models.ScheduleTemplate
	if err := cursor.All(ctx, &templates); err != nil {
		return nil, exceptions.ErrMongoDBIterateDocuments(err)
	}
	return templates, nil
}

func (r *ScheduleMongoRepository) CreateTemplate(ctx context.Context, template *models.ScheduleTemplate) (string, error) {
	template.CreatedAt = time.Now()
	template.UpdatedAt = time.Now()
	result, err := r.Templates.InsertOne(ctx, template)
	if err != nil {
		return "", exceptions.ErrMongoDBInsertDocument(err)
	}
	return result.InsertedID.(primitive.ObjectID).Hex(), nil
}

func (r *ScheduleMongoRepository) UpdateTemplate(ctx context.Context, template *models.ScheduleTemplate) error {
	objectID, err := primitive.ObjectIDFromHex(template.ID)
	if err != nil {
		return exceptions.ErrMongoDBNotObjectID(err)
	}
	template.UpdatedAt = time.Now()
	update := bson.M{"$set": bson.M{
		"isActive":        template.IsActive,
		"opensAt":         template.OpensAt,
		"closesAt":        template.ClosesAt,
		"timeBlocks":      template.TimeBlocks,
		"hasSyncedBreaks": template.HasSyncedBreaks,
		"lastSyncUpdate":  template.LastSyncUpdate,
		"updatedAt":       template.UpdatedAt,
	}}
	_, err = r.Templates.UpdateOne(ctx, bson.M{"_id": objectID}, update, options.Update().SetUpsert(false))
	if err != nil {
		return exceptions.ErrMongoDBUpdateDocument(err)
	}
	return nil
}

func (r *ScheduleMongoRepository) FindExceptionByUserAndDate(ctx context.Context, userID, date string) (*models.ScheduleException, error) {
	var exception models.ScheduleException
	filter := bson.M{"userId": userID, "date": date}
	err := r.Exceptions.FindOne(ctx, filter).Decode(&exception)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	return &exception, nil
}

func (r *ScheduleMongoRepository) FindExceptionByID(ctx context.Context, exceptionID string) (*models.ScheduleException, error) {
	var exception models.ScheduleException
	objectID, err := primitive.ObjectIDFromHex(exceptionID)
	if err != nil {
		return nil, exceptions.ErrMongoDBNotObjectID(err)
	}
	err = r.Exceptions.FindOne(ctx, bson.M{"_id": objectID}).Decode(&exception)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	return &exception, nil
}

func (r *ScheduleMongoRepository) FindExceptionsByUserFromDate(ctx context.Context, userID, fromDate string) ([]models.ScheduleException, error) {
	filter := bson.M{"userId": userID, "date": bson.M{"$gte": fromDate}}
	opts := options.Find().SetSort(bson.M{"date": 1})
	cursor, err := r.Exceptions.Find(ctx, filter, opts)
	if err != nil {
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	defer cursor.Close(ctx)

	var results []models.ScheduleException
	if err := cursor.All(ctx, &results); err != nil {
		return nil, exceptions.ErrMongoDBIterateDocuments(err)
	}
	return results, nil
}

func (r *ScheduleMongoRepository) FindExceptionsWithoutSource(ctx context.Context, userID string) ([]models.ScheduleException, error) {
	filter := bson.M{
		"userId": userID,
		"$or": []bson.M{
			{"syncSource": bson.M{"$exists": false}},
			{"syncSource": ""},
			{"syncSource": models.SyncSourceManual},
		},
	}
	cursor, err := r.Exceptions.Find(ctx, filter)
	if err != nil {
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	defer cursor.Close(ctx)

	var results []models.ScheduleException
	if err := cursor.All(ctx, &results); err != nil {
		return nil, exceptions.ErrMongoDBIterateDocuments(err)
	}
	return results, nil
}

func (r *ScheduleMongoRepository) CreateException(ctx context.Context, exception *models.ScheduleException) (string, error) {
	exception.CreatedAt = time.Now()
	exception.UpdatedAt = time.Now()
	result, err := r.Exceptions.InsertOne(ctx, exception)
	if err != nil {
		return "", exceptions.ErrMongoDBInsertDocument(err)
	}
	return result.InsertedID.(primitive.ObjectID).Hex(), nil
}

func (r *ScheduleMongoRepository) UpdateException(ctx context.Context, exception *models.ScheduleException) error {
	objectID, err := primitive.ObjectIDFromHex(exception.ID)
	if err != nil {
		return exceptions.ErrMongoDBNotObjectID(err)
	}
	exception.UpdatedAt = time.Now()
	update := bson.M{"$set": bson.M{
		"isWorkingDay":       exception.IsWorkingDay,
		"opensAt":            exception.OpensAt,
		"closesAt":           exception.ClosesAt,
		"timeBlocks":         exception.TimeBlocks,
		"reason":             exception.Reason,
		"syncSource":         exception.SyncSource,
		"externalCalendarId": exception.ExternalCalendarID,
		"isSynced":           exception.IsSynced,
		"syncConnectionId":   exception.SyncConnectionID,
		"existedBeforeSync":  exception.ExistedBeforeSync,
		"updatedAt":          exception.UpdatedAt,
	}}
	_, err = r.Exceptions.UpdateOne(ctx, bson.M{"_id": objectID}, update, options.Update().SetUpsert(false))
	if err != nil {
		return exceptions.ErrMongoDBUpdateDocument(err)
	}
	return nil
}

func (r *ScheduleMongoRepository) DeleteExceptionByID(ctx context.Context, exceptionID string) error {
	objectID, err := primitive.ObjectIDFromHex(exceptionID)
	if err != nil {
		return exceptions.ErrMongoDBNotObjectID(err)
	}
	_, err = r.Exceptions.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return exceptions.ErrMongoDBDeleteDocument(err)
	}
	return nil
}
