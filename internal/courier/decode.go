package courier

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/agamariel/storefront/internal/models"
)

// shapeDecoder извлекает из ответа объект {summary, <courier>...}.
// ok=false означает, что ответ не в этом формате.
type shapeDecoder struct {
	name   string
	decode func(body []byte) (map[string]json.RawMessage, bool)
}

// Известные форматы ответа, от нового к старому.
var shapeDecoders = []shapeDecoder{
	{name: "data.courierData", decode: decodeNestedCourierData},
	{name: "data", decode: decodeDataObject},
	{name: "top-level", decode: decodeTopLevel},
}

func decodeNestedCourierData(body []byte) (map[string]json.RawMessage, bool) {
	var envelope struct {
		Data struct {
			CourierData map[string]json.RawMessage `json:"courierData"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, false
	}
	return envelope.Data.CourierData, hasSummary(envelope.Data.CourierData)
}

func decodeDataObject(body []byte) (map[string]json.RawMessage, bool) {
	var envelope struct {
		Data map[string]json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, false
	}
	return envelope.Data, hasSummary(envelope.Data)
}

func decodeTopLevel(body []byte) (map[string]json.RawMessage, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, false
	}
	return fields, hasSummary(fields)
}

func hasSummary(fields map[string]json.RawMessage) bool {
	raw, ok := fields["summary"]
	if !ok {
		return false
	}
	_, ok = parseStats(raw)
	return ok
}

// rawStats запись статистики в ответе сервиса.
type rawStats struct {
	Name            string   `json:"name"`
	TotalParcel     *float64 `json:"total_parcel"`
	SuccessParcel   float64  `json:"success_parcel"`
	CancelledParcel float64  `json:"cancelled_parcel"`
	SuccessRatio    *float64 `json:"success_ratio"`
}

func parseStats(raw json.RawMessage) (models.CourierStats, bool) {
	var rs rawStats
	if err := json.Unmarshal(raw, &rs); err != nil || rs.TotalParcel == nil {
		return models.CourierStats{}, false
	}

	stats := models.CourierStats{
		Name:             rs.Name,
		TotalParcels:     int(*rs.TotalParcel),
		SuccessParcels:   int(rs.SuccessParcel),
		CancelledParcels: int(rs.CancelledParcel),
	}
	switch {
	case rs.SuccessRatio != nil:
		stats.SuccessRatio = *rs.SuccessRatio
	case stats.TotalParcels > 0:
		stats.SuccessRatio = math.Round(float64(stats.SuccessParcels)/float64(stats.TotalParcels)*10000) / 100
	}
	return stats, true
}

// Decode приводит ответ сервиса к единому виду. Неизвестный формат даёт ErrUnavailable.
func Decode(body []byte) (*models.CourierReputationSnapshot, error) {
	for _, d := range shapeDecoders {
		fields, ok := d.decode(body)
		if !ok {
			continue
		}
		return buildSnapshot(fields), nil
	}
	return nil, fmt.Errorf("%w: unrecognized response shape", ErrUnavailable)
}

func buildSnapshot(fields map[string]json.RawMessage) *models.CourierReputationSnapshot {
	summary, _ := parseStats(fields["summary"])
	if summary.Name == "" {
		summary.Name = "summary"
	}

	couriers := make(map[string]models.CourierStats, len(fields))
	for key, raw := range fields {
		if key == "summary" {
			continue
		}
		stats, ok := parseStats(raw)
		if !ok {
			continue
		}
		if stats.Name == "" {
			stats.Name = key
		}
		couriers[strings.ToLower(key)] = stats
	}

	return &models.CourierReputationSnapshot{
		Summary:  summary,
		Couriers: couriers,
	}
}
