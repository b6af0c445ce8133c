package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// SaleStatus represents the lifecycle state of a sale
type SaleStatus string

const (
	SaleStatusPending   SaleStatus = "pending"
	SaleStatusCompleted SaleStatus = "completed"
	SaleStatusCancelled SaleStatus = "cancelled"
	SaleStatusRefunded  SaleStatus = "refunded"
)

// ParseSaleStatus converts a raw value into a SaleStatus
func ParseSaleStatus(s string) (SaleStatus, error) {
	status := SaleStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid sale status %q", s)
	}
	return status, nil
}

func (s SaleStatus) IsValid() bool {
	switch s {
	case SaleStatusPending, SaleStatusCompleted, SaleStatusCancelled, SaleStatusRefunded:
		return true
	}
	return false
}

// HoldsStock reports whether a sale in this status keeps its items out of inventory.
func (s SaleStatus) HoldsStock() bool {
	return s == SaleStatusPending || s == SaleStatusCompleted
}

func (s SaleStatus) String() string {
	return string(s)
}

func (s SaleStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(s))
}

func (s *SaleStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	*s = SaleStatus(str)
	return nil
}

func (s SaleStatus) Value() (driver.Value, error) {
	return string(s), nil
}

func (s *SaleStatus) Scan(value interface{}) error {
	if value == nil {
		*s = SaleStatusCompleted
		return nil
	}
	switch v := value.(type) {
	case string:
		*s = SaleStatus(v)
	case []byte:
		*s = SaleStatus(string(v))
	}
	return nil
}
