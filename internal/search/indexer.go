// Package search maintains the application search index. Indexing is best
// effort: callers log failures and continue.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"hospital-onboarding/internal/common/logger"
	"hospital-onboarding/internal/models"
)

var ErrSearchQueryFailed = errors.New("SEARCH_QUERY_FAILED")

// Indexer writes application snapshots to Elasticsearch and serves search
// requests against them.
type Indexer struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewIndexer(client *elasticsearch.Client, index string, log logger.Logger) *Indexer {
	return &Indexer{
		client: client,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"component": "search-indexer"}),
	}
}

// document is the indexed projection of an application.
type document struct {
	ID                string   `json:"id"`
	ApplicationNumber string   `json:"applicationNumber"`
	HospitalName      string   `json:"hospitalName"`
	FacilityType      string   `json:"facilityType"`
	OwnerEmail        string   `json:"ownerEmail"`
	City              string   `json:"city"`
	State             string   `json:"state"`
	Status            string   `json:"status"`
	Stage             string   `json:"stage"`
	ServicesOffered   []string `json:"servicesOffered"`
	BedCapacity       int      `json:"bedCapacity"`
}

// IndexApplication upserts the application's snapshot into the index.
func (ix *Indexer) IndexApplication(ctx context.Context, app *models.Application) error {
	doc := document{
		ID:                app.ID,
		ApplicationNumber: app.ApplicationNumber,
		HospitalName:      app.HospitalName,
		FacilityType:      app.FacilityType,
		OwnerEmail:        app.OwnerEmail,
		City:              app.City,
		State:             app.State,
		Status:            string(app.Status),
		Stage:             string(app.Stage),
		ServicesOffered:   app.ServicesOffered,
		BedCapacity:       app.BedCapacity,
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      ix.index,
		DocumentID: app.ID,
		Body:       bytes.NewReader(body),
		Refresh:    "false",
	}

	res, err := req.Do(ctx, ix.client)
	if err != nil {
		return fmt.Errorf("index request: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index request failed: %s", res.Status())
	}
	return nil
}

// Query is a search over indexed applications.
type Query struct {
	Keywords string
	Status   string
	State    string
	From     int
	Size     int
}

// Hit is one search result.
type Hit struct {
	Score  float64                `json:"score"`
	Source map[string]interface{} `json:"source"`
}

// Result is a page of search hits.
type Result struct {
	TotalHits int64 `json:"totalHits"`
	Hits      []Hit `json:"hits"`
}

// Search runs a keyword query with optional status and state filters.
func (ix *Indexer) Search(ctx context.Context, q Query) (*Result, error) {
	if q.Size <= 0 || q.Size > 100 {
		q.Size = 20
	}

	mustClauses := []interface{}{}
	filterClauses := []interface{}{}

	if q.Keywords != "" {
		mustClauses = append(mustClauses, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  q.Keywords,
				"fields": []string{"hospitalName^3", "applicationNumber^2", "city", "state", "servicesOffered"},
				"type":   "best_fields",
			},
		})
	}
	if q.Status != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"status": q.Status},
		})
	}
	if q.State != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"state": q.State},
		})
	}

	boolQuery := map[string]interface{}{}
	if len(mustClauses) > 0 {
		boolQuery["must"] = mustClauses
	} else {
		boolQuery["must"] = []interface{}{map[string]interface{}{"match_all": map[string]interface{}{}}}
	}
	if len(filterClauses) > 0 {
		boolQuery["filter"] = filterClauses
	}

	queryBody := map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
	}

	body, err := json.Marshal(queryBody)
	if err != nil {
		return nil, fmt.Errorf("marshal query: %w", err)
	}

	req := esapi.SearchRequest{
		Index: []string{ix.index},
		Body:  bytes.NewReader(body),
		From:  &q.From,
		Size:  &q.Size,
	}

	res, err := req.Do(ctx, ix.client)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchQueryFailed, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("%w: %s", ErrSearchQueryFailed, res.Status())
	}

	return parseSearchResponse(res.Body)
}

func parseSearchResponse(r io.Reader) (*Result, error) {
	var raw struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Score  float64                `json:"_score"`
				Source map[string]interface{} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}

	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	result := &Result{TotalHits: raw.Hits.Total.Value}
	for _, h := range raw.Hits.Hits {
		result.Hits = append(result.Hits, Hit{Score: h.Score, Source: h.Source})
	}
	return result, nil
}
