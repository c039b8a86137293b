// Package config manages application configuration for the Reginald API.
//
// The config package loads and validates configuration from environment variables.
// All configuration is centralized here to provide a single source of truth.
//
// # Configuration Loading
//
// Configuration is loaded from environment variables, with a .env file in the
// working directory applied first when present:
//
//	cfg, err := config.Load()
//
// # Configuration Groups
//
// Configuration is organized into logical groups:
//
//   - ServerConfig: HTTP server settings (port, timeouts)
//   - DatabaseConfig: SurrealDB connection settings
//   - SlackConfig: workspace bot token and primary channel
//   - TasksConfig: scheduled publishing and reminder settings
//   - GoogleConfig: Google Calendar OAuth credentials
//   - ForecastConfig: weather lookup coordinates
//
// # Environment Variables
//
// Key environment variables:
//
//	SERVER_PORT        - HTTP server port (default: 8080)
//	DB_HOST            - SurrealDB host
//	DB_PORT            - SurrealDB port
//	DB_NAMESPACE       - Database namespace
//	DB_DATABASE        - Database name
//	SLACK_BOT_TOKEN    - Workspace bot token
//	SLACK_CHANNEL_ID   - Channel for recurring announcements
//	CRON_SECRET        - Bearer token guarding the task endpoints
//	DEFAULT_EVENT_TIME - Start time for recurring events (HH:MM)
//
// # Default Values
//
// Sensible defaults are provided for development:
//
//	func getEnv(key, defaultValue string) string {
//	    if value := os.Getenv(key); value != "" {
//	        return value
//	    }
//	    return defaultValue
//	}
package config
