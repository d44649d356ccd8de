package repository

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

type jsonColumn[T any] struct {
	dst *T
}

// ScanJSON returns a sql.Scanner decoding a JSON or JSONB column into dst.
// NULL leaves dst unchanged.
func ScanJSON[T any](dst *T) sql.Scanner {
	return jsonColumn[T]{dst: dst}
}

func (c jsonColumn[T]) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, c.dst)
	case string:
		return json.Unmarshal([]byte(v), c.dst)
	default:
		return fmt.Errorf("scan json: unsupported source type %T", src)
	}
}

type jsonValue struct {
	v any
}

// JSON wraps v as a query argument encoded as JSON text.
func JSON(v any) driver.Valuer {
	return jsonValue{v: v}
}

func (j jsonValue) Value() (driver.Value, error) {
	data, err := json.Marshal(j.v)
	if err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}
	return string(data), nil
}
