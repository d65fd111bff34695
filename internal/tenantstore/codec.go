package tenantstore

import (
	"encoding/json"
	"time"
)

// EncodeDocument converts a domain value into a storable document via its
// JSON form. The id and timestamp fields are stripped since the store owns
// them.
func EncodeDocument(v any) (Document, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	delete(doc, "id")
	delete(doc, "created_at")
	delete(doc, "updated_at")
	return doc, nil
}

// DecodeDocument populates a domain value from a stored document. Timestamp
// values are normalized to RFC 3339 strings first so both store strategies
// decode identically.
func DecodeDocument(doc Document, v any) error {
	normalized := make(Document, len(doc))
	for k, val := range doc {
		if t, ok := val.(time.Time); ok {
			normalized[k] = t.Format(time.RFC3339Nano)
			continue
		}
		normalized[k] = val
	}
	raw, err := json.Marshal(normalized)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}
