package config

import (
	"github.com/spf13/viper"

	"github.com/modguard/modguard/logging/logger"
)

// Logger logger config struct
type Logger = logger.Config

func getLoggerConfig(v *viper.Viper) *Logger {
	c := &Logger{
		Level:      v.GetInt("logger.level"),
		Format:     v.GetString("logger.format"),
		Output:     v.GetString("logger.output"),
		OutputFile: v.GetString("logger.output_file"),
		IndexName:  v.GetString("app_name") + "_log",
	}

	c.Elasticsearch.Addresses = v.GetStringSlice("data.elasticsearch.addresses")
	c.Elasticsearch.Username = v.GetString("data.elasticsearch.username")
	c.Elasticsearch.Password = v.GetString("data.elasticsearch.password")
	c.Meilisearch.Host = v.GetString("data.meilisearch.host")
	c.Meilisearch.APIKey = v.GetString("data.meilisearch.api_key")

	return c
}
