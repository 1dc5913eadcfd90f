// conf/defaults.go default values for settings
package conf

import (
	"time"

	"github.com/spf13/viper"
)

// Default values shared with the embedded config.yaml
const (
	DefaultBaseURL   = "https://api.potterdb.com/v1"
	DefaultTimeout   = 10 * time.Second
	DefaultCacheTTL  = 24 * time.Hour
	DefaultStoreType = "sqlite"
	DefaultUserAgent = "HogwartsHeroes"
)

// setDefaultConfig registers default values for every configuration key.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("api.baseurl", DefaultBaseURL)
	viper.SetDefault("api.timeout", DefaultTimeout)
	viper.SetDefault("api.ratelimit", 0)
	viper.SetDefault("api.useragent", DefaultUserAgent)

	viper.SetDefault("cache.ttl", DefaultCacheTTL)

	viper.SetDefault("store.type", DefaultStoreType)
	viper.SetDefault("store.sqlite.path", "hogwarts.db")
	viper.SetDefault("store.mysql.host", "localhost")
	viper.SetDefault("store.mysql.port", "3306")
	viper.SetDefault("store.mysql.username", "hogwarts")
	viper.SetDefault("store.mysql.password", "")
	viper.SetDefault("store.mysql.database", "hogwarts")

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.timezone", "Local")
	viper.SetDefault("log.file.enabled", false)
	viper.SetDefault("log.file.path", "logs/hogwarts.log")
	viper.SetDefault("log.file.level", "info")
	viper.SetDefault("log.accesslog", "")

	viper.SetDefault("webserver.enabled", true)
	viper.SetDefault("webserver.port", "8080")

	viper.SetDefault("sentry.enabled", false)
	viper.SetDefault("sentry.dsn", "")

	viper.SetDefault("quiz.path", "")
}
