package common

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// Content types accepted by the moderation pipeline.
const (
	ContentTypeText  = "text"
	ContentTypeImage = "image"
	ContentTypeVideo = "video"
)

// Moderation dispositions.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Sentinel errors shared across services. The HTTP layer maps these onto
// status codes; everything else wraps them with context.
var (
	ErrNotFound           = errors.New("not found")
	ErrMissingContent     = errors.New("missing required content field")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrInvalidContentType = errors.New("invalid content type")
	ErrUnknownCategory    = errors.New("unknown category")
	ErrSchemaVersion      = errors.New("unsupported artifact schema version")
)

// JSONMap stores arbitrary JSON objects in a single database column.
type JSONMap map[string]any

// Value implements driver.Valuer for JSONMap.
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner for JSONMap.
func (m *JSONMap) Scan(value any) error {
	if value == nil {
		*m = nil
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into JSONMap", value)
	}

	return json.Unmarshal(data, m)
}
