package meili

import (
	"errors"

	"github.com/meilisearch/meilisearch-go"
)

// Client Meilisearch client
type Client struct {
	client meilisearch.ServiceManager
}

// NewMeilisearch new Meilisearch client
func NewMeilisearch(host, apiKey string) *Client {
	if host == "" {
		return &Client{client: nil}
	}
	ms := meilisearch.New(host, meilisearch.WithAPIKey(apiKey))
	return &Client{client: ms}
}

// IndexDocuments index document to Meilisearch
func (c *Client) IndexDocuments(index string, document any, primaryKey ...string) error {
	if c == nil || c.client == nil {
		return errors.New("meilisearch client is nil")
	}
	_, err := c.client.Index(index).AddDocuments(document, primaryKey...)
	return err
}

// Search search from Meilisearch
func (c *Client) Search(index, query string, options *meilisearch.SearchRequest) (*meilisearch.SearchResponse, error) {
	if c == nil || c.client == nil {
		return nil, errors.New("meilisearch client is nil")
	}
	return c.client.Index(index).Search(query, options)
}

// DeleteDocuments delete document from Meilisearch
func (c *Client) DeleteDocuments(index, documentID string) error {
	if c == nil || c.client == nil {
		return errors.New("meilisearch client is nil")
	}
	_, err := c.client.Index(index).DeleteDocument(documentID)
	return err
}

// GetClient get Meilisearch client
func (c *Client) GetClient() meilisearch.ServiceManager {
	return c.client
}
