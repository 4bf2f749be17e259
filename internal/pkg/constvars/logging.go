package constvars

const (
	LoggingRequestIDKey    = "request_id"
	LoggingUserIDKey       = "user_id"
	LoggingConnectionIDKey = "connection_id"
	LoggingProviderKey     = "provider"
	LoggingEventIDKey      = "external_event_id"
	LoggingGroupIDKey      = "recurring_group_id"
	LoggingDayOfWeekKey    = "day_of_week"
	LoggingDateKey         = "date"
	LoggingCountKey        = "count"
	LoggingDataKey         = "data"
	LoggingRequestKey      = "request"
	LoggingResponseKey     = "response"

	LoggingMethodKey     = "method"
	LoggingEndpointKey   = "endpoint"
	LoggingRemoteAddrKey = "remote_addr"
	LoggingUserAgentKey  = "user_agent"
	LoggingQueryKey      = "query"
	LoggingStatusCodeKey = "status_code"
	LoggingDurationKey   = "duration"
	LoggingSuccessKey    = "success"

	LoggingRedisKey              = "redis_key"
	LoggingLockValueKey          = "lock_value"
	LoggingLockStoredValueKey    = "stored_value"
	LoggingLockExpectedValueKey  = "expected_value"
	LoggingLockExpirationTimeKey = "expiration"
)

// Context keys carrying per-request identity.
const (
	CONTEXT_REQUEST_ID_KEY           = "requestID"
	CONTEXT_IS_CLIENT_REQUEST_ID_KEY = "isClientRequestID"
	CONTEXT_USER_ID_KEY              = "userID"
)
