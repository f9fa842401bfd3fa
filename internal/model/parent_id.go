package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
)

// ParentID references the folder a file lives in. The wire format keeps
// the JSON number 0 for root-level files and a string id otherwise, in
// both directions. The database stores the literal "0" for root.
type ParentID string

const RootParentID ParentID = "0"

func (p ParentID) IsRoot() bool {
	return p == "" || p == RootParentID
}

func (p ParentID) String() string {
	if p == "" {
		return string(RootParentID)
	}
	return string(p)
}

func (p ParentID) MarshalJSON() ([]byte, error) {
	if p.IsRoot() {
		return []byte("0"), nil
	}
	return json.Marshal(string(p))
}

func (p *ParentID) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] != '"' {
		var n int64
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*p = ParentID(strconv.FormatInt(n, 10))
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		s = string(RootParentID)
	}
	*p = ParentID(s)
	return nil
}

func (p ParentID) Value() (driver.Value, error) {
	return p.String(), nil
}

func (p *ParentID) Scan(src any) error {
	switch v := src.(type) {
	case string:
		*p = ParentID(v)
	case []byte:
		*p = ParentID(v)
	case int64:
		*p = ParentID(strconv.FormatInt(v, 10))
	default:
		return fmt.Errorf("cannot scan %T into ParentID", src)
	}
	return nil
}
