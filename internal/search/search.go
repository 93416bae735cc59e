package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/elastic/go-elasticsearch/v9/esapi"

	"github.com/Skotchmaster/gym_site/internal/logging"
	"github.com/Skotchmaster/gym_site/internal/models"
)

var ErrDisabled = errors.New("search is not configured")

type Config struct {
	URL      string
	User     string
	Password string
	Index    string
}

type Client struct {
	es    *elasticsearch.Client
	index string
}

type Hit struct {
	Type      string          `json:"type"`
	ContentID uint            `json:"contentId"`
	Score     float64         `json:"score"`
	Data      json.RawMessage `json:"data"`
}

type document struct {
	Type      string          `json:"type"`
	ContentID uint            `json:"contentId"`
	Text      string          `json:"text"`
	Data      json.RawMessage `json:"data"`
}

const indexMapping = `{
  "mappings": {
    "properties": {
      "type":      {"type": "keyword"},
      "contentId": {"type": "long"},
      "text":      {"type": "text"},
      "data":      {"type": "object", "enabled": false}
    }
  }
}`

// NewClient returns ErrDisabled when no URL is configured.
func NewClient(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, ErrDisabled
	}

	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.User,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client: %w", err)
	}

	return &Client{es: es, index: cfg.Index}, nil
}

// EnsureIndex creates the index with its mapping when it does not exist yet.
func (c *Client) EnsureIndex(ctx context.Context) error {
	l := logging.FromContext(ctx).With("svc", "search.ensure_index", "index", c.index)

	res, err := c.es.Indices.Exists([]string{c.index}, c.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("index exists: %w", err)
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}

	res, err = c.es.Indices.Create(c.index,
		c.es.Indices.Create.WithContext(ctx),
		c.es.Indices.Create.WithBody(strings.NewReader(indexMapping)),
	)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("create index", res)
	}

	l.Info("search_index_created")
	return nil
}

// IndexType replaces every indexed document of typ with records.
func (c *Client) IndexType(ctx context.Context, typ string, records []models.ContentRecord) error {
	if err := c.deleteType(ctx, typ); err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, rec := range records {
		meta := map[string]any{"index": map[string]any{"_id": documentID(typ, rec.ID)}}
		doc := document{
			Type:      typ,
			ContentID: rec.ID,
			Text:      flattenText(rec.Data),
			Data:      json.RawMessage(rec.Data),
		}
		if err := enc.Encode(meta); err != nil {
			return fmt.Errorf("encode bulk meta: %w", err)
		}
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode bulk doc: %w", err)
		}
	}

	res, err := c.es.Bulk(&buf,
		c.es.Bulk.WithContext(ctx),
		c.es.Bulk.WithIndex(c.index),
		c.es.Bulk.WithRefresh("true"),
	)
	if err != nil {
		return fmt.Errorf("bulk index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("bulk index", res)
	}

	var bulk struct {
		Errors bool `json:"errors"`
	}
	if err := json.NewDecoder(res.Body).Decode(&bulk); err != nil {
		return fmt.Errorf("decode bulk response: %w", err)
	}
	if bulk.Errors {
		return fmt.Errorf("bulk index: some documents of %q were rejected", typ)
	}
	return nil
}

func (c *Client) deleteType(ctx context.Context, typ string) error {
	body, err := json.Marshal(map[string]any{
		"query": map[string]any{"term": map[string]any{"type": typ}},
	})
	if err != nil {
		return err
	}

	res, err := c.es.DeleteByQuery([]string{c.index}, bytes.NewReader(body),
		c.es.DeleteByQuery.WithContext(ctx),
		c.es.DeleteByQuery.WithConflicts("proceed"),
		c.es.DeleteByQuery.WithRefresh(true),
	)
	if err != nil {
		return fmt.Errorf("delete by query: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusNotFound {
		return nil
	}
	if res.IsError() {
		return responseError("delete by query", res)
	}
	return nil
}

func (c *Client) Search(ctx context.Context, query string, from, size int) (int64, []Hit, error) {
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"text", "type^2"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("encode search: %w", err)
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(c.index),
		c.es.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusNotFound {
		return 0, []Hit{}, nil
	}
	if res.IsError() {
		return 0, nil, responseError("search", res)
	}

	var r struct {
		Hits struct {
			Total struct{ Value int64 } `json:"total"`
			Hits  []struct {
				Score  float64  `json:"_score"`
				Source document `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("decode search: %w", err)
	}

	hits := make([]Hit, len(r.Hits.Hits))
	for i, h := range r.Hits.Hits {
		hits[i] = Hit{
			Type:      h.Source.Type,
			ContentID: h.Source.ContentID,
			Score:     h.Score,
			Data:      h.Source.Data,
		}
	}
	return r.Hits.Total.Value, hits, nil
}

func documentID(typ string, id uint) string {
	return typ + "-" + strconv.FormatUint(uint64(id), 10)
}

func responseError(op string, res *esapi.Response) error {
	body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
	return fmt.Errorf("%s: elasticsearch %s: %s", op, res.Status(), bytes.TrimSpace(body))
}

// flattenText joins every string value of a JSON payload, in key order, so
// the payload can be matched as free text.
func flattenText(raw []byte) string {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return ""
	}
	var parts []string
	collectStrings(v, &parts)
	return strings.Join(parts, " ")
}

func collectStrings(v any, parts *[]string) {
	switch t := v.(type) {
	case string:
		if s := strings.TrimSpace(t); s != "" {
			*parts = append(*parts, s)
		}
	case []any:
		for _, el := range t {
			collectStrings(el, parts)
		}
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			collectStrings(t[k], parts)
		}
	}
}
