package storage

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/villaops/villaops/src/aisdk"
)

// ToolCallsJSON stores an assistant message's tool-call batch as a JSON array
// column. NULL and empty mean no calls.
type ToolCallsJSON []aisdk.ToolCall

// Scan implements the sql.Scanner interface for ToolCallsJSON
func (t *ToolCallsJSON) Scan(value interface{}) error {
	if value == nil {
		*t = nil
		return nil
	}

	switch v := value.(type) {
	case string:
		if v == "" || v == "[]" {
			*t = nil
			return nil
		}
		return json.Unmarshal([]byte(v), t)
	case []byte:
		if len(v) == 0 || string(v) == "[]" {
			*t = nil
			return nil
		}
		return json.Unmarshal(v, t)
	default:
		return fmt.Errorf("cannot scan type %T into ToolCallsJSON", value)
	}
}

// Value implements the driver.Valuer interface for ToolCallsJSON
func (t ToolCallsJSON) Value() (driver.Value, error) {
	if len(t) == 0 {
		return nil, nil
	}
	b, err := json.Marshal([]aisdk.ToolCall(t))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}
