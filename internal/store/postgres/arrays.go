package postgres

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Capabilities are kept in a jsonb column. These adapters move a string
// slice through database/sql without pulling in an array codec.

type jsonStrings struct {
	dest *[]string
}

func (a jsonStrings) Scan(src any) error {
	if src == nil {
		*a.dest = nil
		return nil
	}
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into string slice", src)
	}
	return json.Unmarshal(raw, a.dest)
}

type jsonStringsValue []string

func (v jsonStringsValue) Value() (driver.Value, error) {
	if v == nil {
		return "[]", nil
	}
	raw, err := json.Marshal([]string(v))
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}
