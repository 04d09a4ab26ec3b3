package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// JSON is a custom type for schemaless JSON columns
type JSON map[string]interface{}

// Implement the driver.Valuer interface for JSON type
func (j JSON) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Implement the sql.Scanner interface for JSON type
func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	case nil:
		*j = nil
		return nil
	default:
		return errors.New("type assertion to []byte failed")
	}

	if len(bytes) == 0 {
		*j = nil
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// Clone returns an independent copy of the map.
func (j JSON) Clone() JSON {
	if j == nil {
		return nil
	}
	out := make(JSON, len(j))
	for k, v := range j {
		out[k] = v
	}
	return out
}

// CanvasSize is the fixed canvas dimension of a template, expressed as
// "WIDTHxHEIGHT". Only the enumerated values are accepted on create.
type CanvasSize string

const (
	CanvasSizeSquare    CanvasSize = "1080x1080"
	CanvasSizeStory     CanvasSize = "1080x1920"
	CanvasSizeLandscape CanvasSize = "1920x1080"
	CanvasSizeBanner    CanvasSize = "1200x628"
)

// SupportedCanvasSizes lists every size accepted by CreateTemplate.
var SupportedCanvasSizes = []CanvasSize{
	CanvasSizeSquare,
	CanvasSizeStory,
	CanvasSizeLandscape,
	CanvasSizeBanner,
}

// ParseCanvasSize validates a size string against the supported set.
func ParseCanvasSize(s string) (CanvasSize, error) {
	for _, size := range SupportedCanvasSizes {
		if string(size) == s {
			return size, nil
		}
	}
	return "", &ValidationError{
		Field:  "size",
		Reason: fmt.Sprintf("unsupported canvas size %q, supported values: %s", s, canvasSizeList()),
	}
}

// Dimensions parses the size string into width and height in pixels.
// Every supported value parses into two positive integers.
func (s CanvasSize) Dimensions() (width, height int) {
	parts := strings.SplitN(string(s), "x", 2)
	if len(parts) != 2 {
		return 0, 0
	}
	width, _ = strconv.Atoi(parts[0])
	height, _ = strconv.Atoi(parts[1])
	return width, height
}

func canvasSizeList() string {
	values := make([]string, len(SupportedCanvasSizes))
	for i, size := range SupportedCanvasSizes {
		values[i] = string(size)
	}
	return strings.Join(values, ", ")
}
