package config

import (
	"github.com/spf13/viper"

	dc "github.com/modguard/modguard/data/config"
)

// Data groups connection settings for the optional external endpoints.
type Data struct {
	Elasticsearch *dc.Elasticsearch
	Meilisearch   *dc.Meilisearch
	Redis         *dc.Redis
}

func getDataConfig(v *viper.Viper) *Data {
	return &Data{
		Elasticsearch: &dc.Elasticsearch{
			Addresses: v.GetStringSlice("data.elasticsearch.addresses"),
			Username:  v.GetString("data.elasticsearch.username"),
			Password:  v.GetString("data.elasticsearch.password"),
		},
		Meilisearch: &dc.Meilisearch{
			Host:   v.GetString("data.meilisearch.host"),
			APIKey: v.GetString("data.meilisearch.api_key"),
		},
		Redis: &dc.Redis{
			Addr:     v.GetString("data.redis.addr"),
			Username: v.GetString("data.redis.username"),
			Password: v.GetString("data.redis.password"),
			Db:       v.GetInt("data.redis.db"),
		},
	}
}
