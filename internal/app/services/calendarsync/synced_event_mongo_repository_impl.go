package calendarsync

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

type SyncedEventMongoRepository struct {
	Collection *mongo.Collection
}

func NewSyncedEventMongoRepository(db *mongo.Client, dbName string) contracts.SyncedEventRepository {
	return &SyncedEventMongoRepository{
		Collection: db.Database(dbName).Collection(constvars.MongoCollectionSyncedEvents),
	}
}

func (r *SyncedEventMongoRepository) FindByExternalAndLocal(ctx context.Context, userID, externalEventID, localEventID string) (*models.SyncedEvent, error) {
	var event models.SyncedEvent
	filter := bson.M{
		"userId":          userID,
		"externalEventId": externalEventID,
		"localEventId":    localEventID,
	}
	err := r.Collection.FindOne(ctx, filter).Decode(&event)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	return &event, nil
}

func (r *SyncedEventMongoRepository) FindByUserAndExternalID(ctx context.Context, userID, externalEventID string) (*models.SyncedEvent, error) {
	var event models.SyncedEvent
	filter := bson.M{"userId": userID, "externalEventId": externalEventID}
	err := r.Collection.FindOne(ctx, filter).Decode(&event)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	return &event, nil
}

func (r *SyncedEventMongoRepository) FindByConnection(ctx context.Context, userID, connectionID string) ([]models.SyncedEvent, error) {
	filter := bson.M{"userId": userID, "connectionId": connectionID}
	return r.findAll(ctx, filter, nil)
}

func (r *SyncedEventMongoRepository) FindByConnectionAndDirection(ctx context.Context, userID, connectionID string, direction models.SyncDirection) ([]models.SyncedEvent, error) {
	filter := bson.M{
		"userId":        userID,
		"connectionId":  connectionID,
		"syncDirection": direction,
	}
	return r.findAll(ctx, filter, nil)
}

func (r *SyncedEventMongoRepository) FindCompletedByConnection(ctx context.Context, userID, connectionID string) ([]models.SyncedEvent, error) {
	filter := bson.M{
		"userId":       userID,
		"connectionId": connectionID,
		"syncStatus":   models.SyncStatusCompleted,
	}
	return r.findAll(ctx, filter, nil)
}

func (r *SyncedEventMongoRepository) FindRecentByUserID(ctx context.Context, userID string, limit int) ([]models.SyncedEvent, error) {
	filter := bson.M{"userId": userID}
	opts := options.Find().SetSort(bson.M{"lastSyncedAt": -1}).SetLimit(int64(limit))
	return r.findAll(ctx, filter, opts)
}

func (r *SyncedEventMongoRepository) CreateSyncedEvent(ctx context.Context, event *models.SyncedEvent) (string, error) {
	event.CreatedAt = time.Now()
	event.UpdatedAt = time.Now()
	result, err := r.Collection.InsertOne(ctx, event)
	if err != nil {
		return "", exceptions.ErrMongoDBInsertDocument(err)
	}
	return result.InsertedID.(primitive.ObjectID).Hex(), nil
}

func (r *SyncedEventMongoRepository) UpdateSyncedEvent(ctx context.Context, event *models.SyncedEvent) error {
	objectID, err := primitive.ObjectIDFromHex(event.ID)
	if err != nil {
		return exceptions.ErrMongoDBNotObjectID(err)
	}
	event.UpdatedAt = time.Now()
	update := bson.M{"$set": bson.M{
		"localEventId":     event.LocalEventID,
		"localEventType":   event.LocalEventType,
		"syncStatus":       event.SyncStatus,
		"recurringGroupId": event.RecurringGroupID,
		"classification":   event.Classification,
		"eventTitle":       event.EventTitle,
		"eventDate":        event.EventDate,
		"lastSyncedAt":     event.LastSyncedAt,
		"updatedAt":        event.UpdatedAt,
	}}
	_, err = r.Collection.UpdateOne(ctx, bson.M{"_id": objectID}, update, options.Update().SetUpsert(false))
	if err != nil {
		return exceptions.ErrMongoDBUpdateDocument(err)
	}
	return nil
}

func (r *SyncedEventMongoRepository) DeleteByID(ctx context.Context, syncedEventID string) error {
	objectID, err := primitive.ObjectIDFromHex(syncedEventID)
	if err != nil {
		return exceptions.ErrMongoDBNotObjectID(err)
	}
	_, err = r.Collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return exceptions.ErrMongoDBDeleteDocument(err)
	}
	return nil
}

func (r *SyncedEventMongoRepository) findAll(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.SyncedEvent, error) {
	var cursor *mongo.Cursor
	var err error
	if opts != nil {
		cursor, err = r.Collection.Find(ctx, filter, opts)
	} else {
		cursor, err = r.Collection.Find(ctx, filter)
	}
	if err != nil {
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	defer cursor.Close(ctx)

	var events []models.SyncedEvent
	if err := cursor.All(ctx, &events); err != nil {
		return nil, exceptions.ErrMongoDBIterateDocuments(err)
	}
	return events, nil
}
