package model

import (
    "database/sql/driver"
    "encoding/json"
    "fmt"
)

// StringList is a JSON array column (product images, sizes, tour highlights).
type StringList []string

func (l StringList) Value() (driver.Value, error) {
    if l == nil {
        return []byte("[]"), nil
    }
    return json.Marshal(l)
}

func (l *StringList) Scan(src any) error {
    return scanJSON(src, l)
}

// scanJSON decodes a JSON column into dst.  NULL leaves dst untouched.
func scanJSON(src any, dst any) error {
    switch v := src.(type) {
    case nil:
        return nil
    case []byte:
        if len(v) == 0 {
            return nil
        }
        return json.Unmarshal(v, dst)
    case string:
        if v == "" {
            return nil
        }
        return json.Unmarshal([]byte(v), dst)
    default:
        return fmt.Errorf("unsupported JSON column type %T", src)
    }
}
