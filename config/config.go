package config

type AppConfig struct {
	APIPort            string `env:"PORT,required" envDefault:"11333"`
	APIKey             string `env:"API_KEY,required"`
	RabbitMQURL        string `env:"RABBITMQ_URL"`
	ClientsDir         string `env:"CLIENTS_DIR" envDefault:"clients/active"`
	AdminFallbackEmail string `env:"ADMIN_FALLBACK_EMAIL" envDefault:"admin@example.com"`
}

type IdentificationConfig struct {
	ConfidenceThreshold float64 `env:"IDENTIFICATION_CONFIDENCE_THRESHOLD" envDefault:"0.6"`
	SimilarityThreshold float64 `env:"DOMAIN_SIMILARITY_THRESHOLD" envDefault:"0.7"`
}

type CronConfig struct {
	RefreshClientsSchedule string `env:"CRON_REFRESH_CLIENTS_SCHEDULE" envDefault:"0 */10 * * * *"`
}
