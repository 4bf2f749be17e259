package notifier

import (
	"context"
	"mediconnect-service/internal/app/config"
	"mediconnect-service/internal/app/contracts"
	"mediconnect-service/internal/app/models"
	"mediconnect-service/internal/pkg/constvars"
	"mediconnect-service/internal/pkg/exceptions"
	"sync"
	"time"

	"github.com/goccy/go-json"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// SyncCompletedMessage is the payload published when a sync pass
// finishes for a user who opted into notifications.
type SyncCompletedMessage struct {
	UserID         string `json:"user_id"`
	ConnectionID   string `json:"connection_id"`
	Provider       string `json:"provider"`
	EventsSynced   int    `json:"events_synced"`
	ConflictsFound int    `json:"conflicts_found"`
	ErrorCount     int    `json:"error_count"`
	CompletedAt    string `json:"completed_at"`
}

type syncNotifier struct {
	ch        *amqp.Channel
	log       *zap.Logger
	queueName string
	mu        sync.Mutex
}

func NewSyncNotifier(conn *amqp.Connection, internalConfig *config.InternalConfig, logger *zap.Logger) (contracts.SyncNotifier, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}

	queueName := internalConfig.App.RabbitMQNotificationQueue
	_, err = ch.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // autoDelete
		false,     // exclusive
		false,     // noWait
		nil,       // args
	)
	if err != nil {
		return nil, err
	}

	return &syncNotifier{
		ch:        ch,
		log:       logger,
		queueName: queueName,
	}, nil
}

func (n *syncNotifier) PublishSyncCompleted(ctx context.Context, connection *models.CalendarConnection, result *models.SyncResult) error {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	n.log.Info("syncNotifier.PublishSyncCompleted called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingConnectionIDKey, connection.ID),
	)

	message := SyncCompletedMessage{
		UserID:         connection.UserID,
		ConnectionID:   connection.ID,
		Provider:       string(connection.Provider),
		EventsSynced:   result.EventsSynced(),
		ConflictsFound: len(result.Conflicts),
		ErrorCount:     len(result.Errors),
		CompletedAt:    time.Now().UTC().Format(time.RFC3339),
	}
	body, err := json.Marshal(message)
	if err != nil {
		return exceptions.ErrCannotMarshalJSON(err)
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	msg := amqp.Publishing{
		ContentType:  constvars.MIMEApplicationJSON,
		Body:         body,
		DeliveryMode: amqp.Persistent,
	}
	if err := n.ch.PublishWithContext(ctx, "", n.queueName, false, false, msg); err != nil {
		n.log.Error("syncNotifier.PublishSyncCompleted error publishing message",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return exceptions.ErrRabbitMQPublishMessage(err, n.queueName)
	}
	return nil
}
