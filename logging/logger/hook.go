package logger

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"
)

// MeiliSearch and Elasticsearch log hooks

type MeiliSearchHook struct {
	client interface {
		IndexDocuments(index string, document any, primaryKey ...string) error
	}
	index string
}

func (h *MeiliSearchHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *MeiliSearchHook) Fire(entry *logrus.Entry) error {
	jsonData, err := json.Marshal(entry.Data)
	if err != nil {
		return err
	}
	return h.client.IndexDocuments(h.index, jsonData)
}

type ElasticSearchHook struct {
	client interface {
		IndexDocument(ctx context.Context, indexName string, documentID string, document any) error
	}
	index string
}

func (h *ElasticSearchHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *ElasticSearchHook) Fire(entry *logrus.Entry) error {
	return h.client.IndexDocument(context.Background(), h.index, entry.Time.Format(time.RFC3339Nano), entry.Data)
}

// AddMeiliSearchHook adds MeiliSearch hook to logrus
func (l *Logger) AddMeiliSearchHook() {
	if l.meiliClient != nil {
		hook := &MeiliSearchHook{
			client: l.meiliClient,
			index:  l.indexName,
		}
		if !l.hookExists(hook) {
			l.AddHook(hook)
		}
	}
}

// AddElasticSearchHook adds Elasticsearch hook to logrus
func (l *Logger) AddElasticSearchHook() {
	if l.esClient != nil {
		hook := &ElasticSearchHook{
			client: l.esClient,
			index:  l.indexName,
		}
		if !l.hookExists(hook) {
			l.AddHook(hook)
		}
	}
}

// hookExists checks if hook already exists
func (l *Logger) hookExists(hook logrus.Hook) bool {
	for _, hooks := range l.Hooks {
		for _, existingHook := range hooks {
			if existingHook == hook {
				return true
			}
		}
	}
	return false
}
