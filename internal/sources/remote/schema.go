package remote

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/MrSnakeDoc/quill/internal/domain"
)

// Envelope is the wrapped response shape: { "articles": [...] }.
// A bare array is accepted as well.
type Envelope struct {
	Articles []*Record `json:"articles"`
}

// Record is one article as served by the endpoint. Fields are loose:
// ids may be numbers, tags may be a comma separated string.
type Record struct {
	ID        FlexibleID   `json:"id"`
	Title     string       `json:"title"`
	Author    string       `json:"author"`
	Category  string       `json:"category"`
	Content   string       `json:"content"`
	Excerpt   string       `json:"excerpt"`
	Image     string       `json:"image"`
	Tags      FlexibleTags `json:"tags"`
	Date      string       `json:"date"`
	ReadTime  int          `json:"readTime"`
	CreatedAt string       `json:"createdAt"`
	UpdatedAt string       `json:"updatedAt"`
}

// FlexibleID accepts a JSON string or number.
// Example: 42 -> "42", "abc" -> "abc", null -> ""
type FlexibleID string

func (id *FlexibleID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = FlexibleID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	if i, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
		*id = FlexibleID(strconv.FormatInt(i, 10))
		return nil
	}
	*id = FlexibleID(n.String())
	return nil
}

// FlexibleTags accepts a JSON array of strings or a comma separated string.
type FlexibleTags []string

func (t *FlexibleTags) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = nil
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = domain.SplitTags(s)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("tags must be a list or a string: %w", err)
	}
	*t = list
	return nil
}

// decode accepts either a bare array of records or an Envelope.
func decode(data []byte) ([]*Record, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("empty response")
	}

	if data[0] == '[' {
		var records []*Record
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("failed to parse articles array: %w", err)
		}
		return records, nil
	}

	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to parse articles payload: %w", err)
	}
	return env.Articles, nil
}
