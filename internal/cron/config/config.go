package cron_config

type Config struct {
	// Heartbeat check, every minute
	CronScheduleHeartbeat string `env:"CRON_SCHEDULE_HEARTBEAT" envDefault:"0 * * * * *"`
	// Client configuration refresh, every 10 minutes
	CronScheduleRefreshClients string `env:"CRON_SCHEDULE_REFRESH_CLIENTS" envDefault:"0 */10 * * * *"`
}
