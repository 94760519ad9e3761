package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StringList - список строк (e-mail участников и т.п.), хранимый как JSON-массив.
type StringList []string

// Value реализует driver.Valuer. nil сохраняется как пустой массив.
func (l StringList) Value() (driver.Value, error) {
	return jsonValue(l, l == nil)
}

// Scan реализует sql.Scanner.
func (l *StringList) Scan(src any) error {
	*l = StringList{}
	return jsonScan(src, l)
}

// Destination - одно направление поездки.
type Destination struct {
	Name      string   `json:"name"`
	Country   string   `json:"country,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// Destinations - список направлений, хранимый как JSON-массив.
type Destinations []Destination

// Value реализует driver.Valuer.
func (d Destinations) Value() (driver.Value, error) {
	return jsonValue(d, d == nil)
}

// Scan реализует sql.Scanner.
func (d *Destinations) Scan(src any) error {
	*d = Destinations{}
	return jsonScan(src, d)
}

func jsonValue(v any, empty bool) (driver.Value, error) {
	if empty {
		return "[]", nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации списка: %w", err)
	}
	return string(b), nil
}

func jsonScan(src any, dest any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("неподдерживаемый тип для JSON-списка: %T", src)
	}
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("ошибка разбора JSON-списка: %w", err)
	}
	return nil
}
