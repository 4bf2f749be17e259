package contracts

import (
	"context"
	"mediconnect-service/internal/app/models"
)

// ScheduleRepository is the store accessor for weekly templates and
// dated exceptions.
type ScheduleRepository interface {
	FindTemplateByUserAndDay(ctx context.Context, userID string, dayOfWeek int) (*models.ScheduleTemplate, error)
	FindTemplateByID(ctx context.Context, templateID string) (*models.ScheduleTemplate, error)
	FindTemplatesByUserID(ctx context.Context, userID string) ([]models.ScheduleTemplate, error)
	CreateTemplate(ctx context.Context, template *models.ScheduleTemplate) (string, error)
	UpdateTemplate(ctx context.Context, template *models.ScheduleTemplate) error

	FindExceptionByUserAndDate(ctx context.Context, userID, date string) (*models.ScheduleException, error)
	FindExceptionByID(ctx context.Context, exceptionID string) (*models.ScheduleException, error)
	FindExceptionsByUserFromDate(ctx context.Context, userID, fromDate string) ([]models.ScheduleException, error)
	FindExceptionsWithoutSource(ctx context.Context, userID string) ([]models.ScheduleException, error)
	CreateException(ctx context.Context, exception *models.ScheduleException) (string, error)
	UpdateException(ctx context.Context, exception *models.ScheduleException) error
	DeleteExceptionByID(ctx context.Context, exceptionID string) error
}
