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

type ConnectionMongoRepository struct {
	Collection *mongo.Collection
}

func NewConnectionMongoRepository(db *mongo.Client, dbName string) contracts.CalendarConnectionRepository {
	return &ConnectionMongoRepository{
		Collection: db.Database(dbName).Collection(constvars.MongoCollectionCalendarConnections),
	}
}

func (r *ConnectionMongoRepository) FindActiveByUserID(ctx context.Context, userID string) (*models.CalendarConnection, error) {
	var connection models.CalendarConnection
	filter := bson.M{"userId": userID, "isActive": true}
	err := r.Collection.FindOne(ctx, filter).Decode(&connection)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	return &connection, nil
}

func (r *ConnectionMongoRepository) FindByID(ctx context.Context, connectionID string) (*models.CalendarConnection, error) {
	var connection models.CalendarConnection
	objectID, err := primitive.ObjectIDFromHex(connectionID)
	if err != nil {
		return nil, exceptions.ErrMongoDBNotObjectID(err)
	}
	err = r.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&connection)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	return &connection, nil
}

func (r *ConnectionMongoRepository) FindByUserAndProvider(ctx context.Context, userID string, provider models.SyncProvider) (*models.CalendarConnection, error) {
	var connection models.CalendarConnection
	filter := bson.M{"userId": userID, "provider": provider}
	err := r.Collection.FindOne(ctx, filter).Decode(&connection)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	return &connection, nil
}

func (r *ConnectionMongoRepository) FindAllActive(ctx context.Context) ([]models.CalendarConnection, error) {
	cursor, err := r.Collection.Find(ctx, bson.M{"isActive": true})
	if err != nil {
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	defer cursor.Close(ctx)

	var connections []models.CalendarConnection
	if err := cursor.All(ctx, &connections); err != nil {
		return nil, exceptions.ErrMongoDBIterateDocuments(err)
	}
	return connections, nil
}

func (r *ConnectionMongoRepository) CreateConnection(ctx context.Context, connection *models.CalendarConnection) (string, error) {
	connection.CreatedAt = time.Now()
	connection.UpdatedAt = time.Now()
	result, err := r.Collection.InsertOne(ctx, connection)
	if err != nil {
		return "", exceptions.ErrMongoDBInsertDocument(err)
	}
	return result.InsertedID.(primitive.ObjectID).Hex(), nil
}

func (r *ConnectionMongoRepository) UpdateConnection(ctx context.Context, connection *models.CalendarConnection) error {
	objectID, err := primitive.ObjectIDFromHex(connection.ID)
	if err != nil {
		return exceptions.ErrMongoDBNotObjectID(err)
	}
	connection.UpdatedAt = time.Now()
	update := bson.M{"$set": bson.M{
		"calendarEmail":  connection.CalendarEmail,
		"accessToken":    connection.AccessToken,
		"refreshToken":   connection.RefreshToken,
		"tokenExpiry":    connection.TokenExpiry,
		"isActive":       connection.IsActive,
		"syncSettings":   connection.SyncSettings,
		"lastSyncAt":     connection.LastSyncAt,
		"lastSyncStatus": connection.LastSyncStatus,
		"lastSyncError":  connection.LastSyncError,
		"syncCount":      connection.SyncCount,
		"updatedAt":      connection.UpdatedAt,
	}}
	_, err = r.Collection.UpdateOne(ctx, bson.M{"_id": objectID}, update, options.Update().SetUpsert(false))
	if err != nil {
		return exceptions.ErrMongoDBUpdateDocument(err)
	}
	return nil
}
