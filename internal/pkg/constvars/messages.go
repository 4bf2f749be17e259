package constvars

// Client-facing messages
const (
	ErrClientCannotProcessRequest          = "We cannot process your request, please try again"
	ErrClientSomethingWrongWithApplication = "Something went wrong with the application, please try again later"
	ErrClientNotAuthorized                 = "You are not authorized to perform this action"
	ErrClientServerLongRespond             = "The server took too long to respond, please try again"
	ErrClientCalendarNotConnected          = "No active calendar connection was found"
	ErrClientCalendarAuthExpired           = "Your calendar connection has expired, please reconnect your calendar"
	ErrClientCalendarRateLimited           = "The calendar provider is busy, synchronization will retry shortly"
	ErrClientSyncAlreadyRunning            = "A synchronization is already in progress for this calendar"
	ErrClientUnknownResolutionType         = "The conflict resolution type is not recognized"
)

// Developer-facing messages
const (
	ErrDevValidationFailed           = "Request validation failed"
	ErrDevCannotParseJSON            = "Failed to parse JSON payload"
	ErrDevCannotParseTime            = "Failed to parse time value"
	ErrDevCannotParseDate            = "Failed to parse date value"
	ErrDevCannotMarshalJSON          = "Failed to marshal JSON payload"
	ErrDevServerDeadlineExceeded     = "Server deadline exceeded while processing request"
	ErrDevURLParamIDValidationFailed = "URL parameter %s failed validation"
	ErrDevMissingUserIdentity        = "Request is missing the forwarded user identity header"

	ErrDevDBFailedToFindDocument    = "MongoDB failed to find document"
	ErrDevDBFailedToInsertDocument  = "MongoDB failed to insert document"
	ErrDevDBFailedToUpdateDocument  = "MongoDB failed to update document"
	ErrDevDBFailedToDeleteDocument  = "MongoDB failed to delete document"
	ErrDevDBFailedToIterateDocument = "MongoDB failed to iterate documents"
	ErrDevDBStringNotObjectID       = "Provided string is not a valid ObjectID"

	ErrDevRedisGetData        = "Redis failed to get data"
	ErrDevRedisSetData        = "Redis failed to set data"
	ErrDevRedisDeleteData     = "Redis failed to delete data"
	ErrDevRedisUnlock         = "Redis failed to release lock"
	ErrDevRabbitMQPublish     = "RabbitMQ failed to publish message to queue %s"
	ErrDevCreateHTTPRequest   = "Failed to create HTTP request"
	ErrDevSendHTTPRequest     = "Failed to send HTTP request"
	ErrDevDecodeProviderBody  = "Failed to decode provider response body"
	ErrDevProviderAuthExpired = "Provider rejected credentials: token expired or revoked"
	ErrDevProviderRateLimited = "Provider rate limit reached"
	ErrDevProviderTransport   = "Provider call failed at transport level"
	ErrDevProviderBadStatus   = "Provider returned unexpected status %d"
	ErrDevMalformedEvent      = "External event %s could not be parsed"
	ErrDevTokenRefreshFailed  = "Provider token refresh failed"
	ErrDevConnectionNotFound  = "Calendar connection not found or inactive"
	ErrDevSyncLockNotAcquired = "Sync pass skipped: lock held by an in-flight pass"
)

// Success messages
const (
	SyncSuccessMessage              = "Calendar synchronized successfully"
	SyncStatusSuccessMessage        = "Calendar connection status fetched successfully"
	SyncHistorySuccessMessage       = "Synchronization history fetched successfully"
	SyncSettingsUpdatedMessage      = "Synchronization settings updated successfully"
	ConflictsResolvedMessage        = "Conflicts resolved successfully"
	EventsClassifiedMessage         = "Recurrent events classified successfully"
	CalendarDisconnectedMessage     = "Calendar disconnected successfully"
	PreExistingTrackedMessage       = "Pre-existing schedule entries tracked successfully"
	ResponseUnknown                 = "unknown"
	ResponseSyncAlreadyInProgress   = "sync already in progress"
	ResponseSyncCompletedWithIssues = "sync completed with skipped events"
)
