package repository

import (
	"encoding/json"
	"time"

	"github.com/amirhossein-jamali/payment-processor/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Nested snapshots are stored as JSON text columns. These records fix their wire shape
// independently of the entity types.

type customerRecord struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Document string `json:"document,omitempty"`
	Address  string `json:"address,omitempty"`
}

type itemRecord struct {
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

type deliveryRecord struct {
	TrackingNumber        string                        `json:"tracking_number,omitempty"`
	Carrier               string                        `json:"carrier,omitempty"`
	EstimatedDeliveryDate *time.Time                    `json:"estimated_delivery_date,omitempty"`
	ActualDeliveryDate    *time.Time                    `json:"actual_delivery_date,omitempty"`
	Attempts              []entity.DeliveryAttempt      `json:"attempts,omitempty"`
	History               []entity.DeliveryHistoryEntry `json:"history,omitempty"`
	Satisfaction          *entity.CustomerSatisfaction  `json:"satisfaction,omitempty"`
}

func encodeJSON(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func decodeJSON(raw string, v any) error {
	if raw == "" {
		return nil
	}
	return json.Unmarshal([]byte(raw), v)
}

func encodeCustomer(c entity.Customer) (string, error) {
	if c == (entity.Customer{}) {
		return "", nil
	}
	return encodeJSON(customerRecord(c))
}

func decodeCustomer(raw string) (entity.Customer, error) {
	var rec customerRecord
	if err := decodeJSON(raw, &rec); err != nil {
		return entity.Customer{}, err
	}
	return entity.Customer(rec), nil
}

func encodeItems(items []entity.Item) (string, error) {
	if len(items) == 0 {
		return "", nil
	}
	recs := make([]itemRecord, len(items))
	for i, item := range items {
		recs[i] = itemRecord(item)
	}
	return encodeJSON(recs)
}

func decodeItems(raw string) ([]entity.Item, error) {
	var recs []itemRecord
	if err := decodeJSON(raw, &recs); err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, nil
	}
	items := make([]entity.Item, len(recs))
	for i, rec := range recs {
		items[i] = entity.Item(rec)
	}
	return items, nil
}

func encodeSecurity(s entity.SecurityInformation) (string, error) {
	if s == (entity.SecurityInformation{}) {
		return "", nil
	}
	return encodeJSON(s)
}

func decodeSecurity(raw string) (entity.SecurityInformation, error) {
	var s entity.SecurityInformation
	err := decodeJSON(raw, &s)
	return s, err
}

func encodeDelivery(d entity.DeliveryState) (string, error) {
	rec := deliveryRecord{
		TrackingNumber:        d.TrackingNumber,
		Carrier:               d.Carrier,
		EstimatedDeliveryDate: d.EstimatedDeliveryDate,
		ActualDeliveryDate:    d.ActualDeliveryDate,
		Attempts:              d.Attempts,
		History:               d.History,
		Satisfaction:          d.Satisfaction,
	}
	return encodeJSON(rec)
}

func decodeDelivery(status, raw string) (entity.DeliveryState, error) {
	var rec deliveryRecord
	if err := decodeJSON(raw, &rec); err != nil {
		return entity.DeliveryState{}, err
	}
	return entity.DeliveryState{
		Status:                entity.DeliveryStatus(status),
		TrackingNumber:        rec.TrackingNumber,
		Carrier:               rec.Carrier,
		EstimatedDeliveryDate: rec.EstimatedDeliveryDate,
		ActualDeliveryDate:    rec.ActualDeliveryDate,
		Attempts:              rec.Attempts,
		History:               rec.History,
		Satisfaction:          rec.Satisfaction,
	}, nil
}
