package config

type (
	InternalConfig struct {
		App    App
		Google Google
		Apple  Apple
		Sync   Sync
	}
	App struct {
		Name                      string
		Env                       string
		Port                      string
		Version                   string
		Address                   string
		Timezone                  string
		EndpointPrefix            string
		MaxRequests               int
		ShutdownTimeout           int
		RabbitMQNotificationQueue string
	}
	Google struct {
		ClientID     string
		ClientSecret string
		TokenURL     string
		CalendarURL  string
	}
	Apple struct {
		CalDAVBaseURL string
	}
	Sync struct {
		IntervalInMinutes   int
		HorizonInDays       int
		WriteBackByDefault  bool
		ProviderMaxRPS      int
		ProviderTimeoutSecs int
	}
)
