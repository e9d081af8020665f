package util

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

// GetEnvWithDefault returns the value of an environment variable or a default value if not set
func GetEnvWithDefault(envVar, defaultValue string) string {
	if value := os.Getenv(envVar); value != "" {
		return value
	}
	return defaultValue
}

// GetEnvIntWithDefault returns the value of an environment variable as int or a default value if not set
func GetEnvIntWithDefault(envVar string, defaultValue int) int {
	if value := os.Getenv(envVar); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// AddConnectionFlags registers the standard connection flags on cmd, bound to config
func AddConnectionFlags(cmd *cobra.Command, config *ConnectionConfig) {
	cmd.Flags().StringVar(&config.Host, "host", "localhost", "Database server host (env: PGHOST)")
	cmd.Flags().IntVar(&config.Port, "port", 5432, "Database server port (env: PGPORT)")
	cmd.Flags().StringVar(&config.Database, "db", "", "Database name (required) (env: PGDATABASE)")
	cmd.Flags().StringVar(&config.User, "user", "", "Database user name (required) (env: PGUSER)")
	cmd.Flags().StringVar(&config.Password, "password", "", "Database password (optional, can also use PGPASSWORD env var)")
	cmd.Flags().StringVar(&config.SSLMode, "sslmode", "", "SSL mode (env: PGSSLMODE)")
	cmd.Flags().StringVar(&config.ApplicationName, "application-name", "pgdelta", "Application name for database connection (visible in pg_stat_activity) (env: PGAPPNAME)")
}

// PreRunEWithConnection creates a PreRunE function that fills connection parameters
// from PG* environment variables when the corresponding flags weren't explicitly set,
// then validates that a database and user are known.
func PreRunEWithConnection(config *ConnectionConfig) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		stringFromEnv := func(flag, envVar string, target *string) {
			if cmd.Flags().Changed(flag) {
				return
			}
			if value := GetEnvWithDefault(envVar, ""); value != "" {
				*target = value
			}
		}

		stringFromEnv("db", "PGDATABASE", &config.Database)
		stringFromEnv("user", "PGUSER", &config.User)
		stringFromEnv("host", "PGHOST", &config.Host)
		stringFromEnv("password", "PGPASSWORD", &config.Password)
		stringFromEnv("sslmode", "PGSSLMODE", &config.SSLMode)
		stringFromEnv("application-name", "PGAPPNAME", &config.ApplicationName)
		if !cmd.Flags().Changed("port") {
			if port := GetEnvIntWithDefault("PGPORT", 0); port != 0 {
				config.Port = port
			}
		}

		if config.Database == "" {
			return fmt.Errorf("database name is required (use --db flag or PGDATABASE environment variable)")
		}
		if config.User == "" {
			return fmt.Errorf("database user is required (use --user flag or PGUSER environment variable)")
		}

		return nil
	}
}
