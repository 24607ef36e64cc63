package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Size is an entry of the admin-managed size list.
type Size struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Value     string    `json:"value" db:"value"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// SizeRefs is a list of size references as sent by clients: either size
// IDs or raw size values, as strings or numbers. The product service
// normalises them to IDs before storing.
type SizeRefs []string

func (s *SizeRefs) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*s = nil
		return nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("sizes must be an array: %w", err)
	}

	out := make(SizeRefs, 0, len(raw))
	for _, item := range raw {
		item = bytes.TrimSpace(item)
		if len(item) > 0 && item[0] == '"' {
			var v string
			if err := json.Unmarshal(item, &v); err != nil {
				return err
			}
			out = append(out, v)
			continue
		}

		var n float64
		if err := json.Unmarshal(item, &n); err != nil {
			return fmt.Errorf("invalid size reference %s", string(item))
		}
		out = append(out, strconv.FormatFloat(n, 'f', -1, 64))
	}

	*s = out
	return nil
}
