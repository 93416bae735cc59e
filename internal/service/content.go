package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Skotchmaster/gym_site/internal/events"
	"github.com/Skotchmaster/gym_site/internal/logging"
	"github.com/Skotchmaster/gym_site/internal/models"
)

var contentTypeRe = regexp.MustCompile(`^[a-z][a-z0-9_-]{0,63}$`)

type ContentService struct {
	Repo       ContentRepo
	Singletons map[string]bool
	Events     events.Publisher
	Index      Indexer
}

func NewContentService(r ContentRepo, singletonTypes []string, pub events.Publisher, idx Indexer) *ContentService {
	singletons := make(map[string]bool, len(singletonTypes))
	for _, t := range singletonTypes {
		if t = strings.TrimSpace(t); t != "" {
			singletons[t] = true
		}
	}
	return &ContentService{Repo: r, Singletons: singletons, Events: pub, Index: idx}
}

func (s *ContentService) IsSingleton(typ string) bool {
	return s.Singletons[typ]
}

func ValidateContentType(typ string) error {
	if !contentTypeRe.MatchString(typ) {
		return validationErr("content type must match %s", contentTypeRe.String())
	}
	return nil
}

// Get returns the caller-facing shape of typ: one object for singleton types
// ({} when nothing is stored) and an array for collection types.
func (s *ContentService) Get(ctx context.Context, typ string) (json.RawMessage, error) {
	if err := ValidateContentType(typ); err != nil {
		return nil, err
	}
	records, err := s.Repo.ListContent(ctx, typ)
	if err != nil {
		return nil, fmt.Errorf("list content %q: %w", typ, err)
	}
	return s.shape(typ, records)
}

// GetAll maps every stored type to its Get shape.
func (s *ContentService) GetAll(ctx context.Context) (map[string]json.RawMessage, error) {
	records, err := s.Repo.ListContent(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list content: %w", err)
	}

	byType := make(map[string][]models.ContentRecord)
	for _, rec := range records {
		byType[rec.Type] = append(byType[rec.Type], rec)
	}

	out := make(map[string]json.RawMessage, len(byType))
	for typ, recs := range byType {
		shaped, err := s.shape(typ, recs)
		if err != nil {
			return nil, err
		}
		out[typ] = shaped
	}
	return out, nil
}

// Save replaces the stored content of typ with payload and returns the new
// Get shape.
func (s *ContentService) Save(ctx context.Context, typ string, payload json.RawMessage) (json.RawMessage, error) {
	l := logging.FromContext(ctx).With("svc", "content.save", "type", typ)

	if err := ValidateContentType(typ); err != nil {
		return nil, err
	}

	var records []models.ContentRecord
	if s.IsSingleton(typ) {
		obj, err := normalizeObject(payload)
		if err != nil {
			return nil, validationErr("%s payload must be a JSON object", typ)
		}
		rec, err := s.Repo.UpsertSingleton(ctx, typ, obj)
		if err != nil {
			l.Error("save_content_error", "status", 500, "reason", "db error", "error", err)
			return nil, fmt.Errorf("save content %q: %w", typ, err)
		}
		records = []models.ContentRecord{*rec}
	} else {
		items, err := normalizeArray(payload)
		if err != nil {
			return nil, validationErr("%s payload must be a JSON array of objects", typ)
		}
		if len(items) == 0 {
			l.Warn("content_type_cleared", "reason", "empty collection saved")
		}
		records, err = s.Repo.ReplaceCollection(ctx, typ, items)
		if err != nil {
			l.Error("save_content_error", "status", 500, "reason", "db error", "error", err)
			return nil, fmt.Errorf("save content %q: %w", typ, err)
		}
	}

	l.Info("content_saved", "records", len(records))
	events.Emit(ctx, s.Events, events.TopicContent, typ, map[string]any{
		"type":        "content_saved",
		"contentType": typ,
		"records":     len(records),
	})

	if s.Index != nil {
		if err := s.Index.IndexType(ctx, typ, records); err != nil {
			l.Error("search_index_error", "reason", "cannot reindex content type", "error", err)
		}
	}

	return s.shape(typ, records)
}

func (s *ContentService) shape(typ string, records []models.ContentRecord) (json.RawMessage, error) {
	if s.IsSingleton(typ) {
		if len(records) == 0 {
			return json.RawMessage(`{}`), nil
		}
		return withID(records[0])
	}

	items := make([]json.RawMessage, 0, len(records))
	for _, rec := range records {
		item, err := withID(rec)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return json.Marshal(items)
}

// withID merges the record id into its payload. The stored id always wins
// over an "id" key inside the payload.
func withID(rec models.ContentRecord) (json.RawMessage, error) {
	obj := map[string]json.RawMessage{}
	if len(rec.Data) > 0 {
		if err := json.Unmarshal(rec.Data, &obj); err != nil {
			return nil, fmt.Errorf("content %d: stored payload is not an object: %w", rec.ID, err)
		}
		if obj == nil {
			obj = map[string]json.RawMessage{}
		}
	}
	obj["id"] = json.RawMessage(strconv.FormatUint(uint64(rec.ID), 10))
	return json.Marshal(obj)
}

func isJSONObject(raw []byte) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '{'
}

// normalizeObject drops a client supplied "id", which belongs to the store.
func normalizeObject(raw []byte) (models.JSON, error) {
	if !isJSONObject(raw) {
		return nil, fmt.Errorf("not a JSON object")
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, err
	}
	delete(obj, "id")
	out, err := json.Marshal(obj)
	if err != nil {
		return nil, err
	}
	return models.JSON(out), nil
}

func normalizeArray(raw []byte) ([]models.JSON, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, fmt.Errorf("not a JSON array")
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, err
	}
	items := make([]models.JSON, 0, len(elems))
	for i, el := range elems {
		obj, err := normalizeObject(el)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		items = append(items, obj)
	}
	return items, nil
}
