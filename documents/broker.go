package documents

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"time"
)

// BrokerConfig holds the fixed shipper fields the clearance service
// expects on every row.
type BrokerConfig struct {
	ShipperName    string
	ShipperAddress string
	CarrierCode    string
}

var brokerHeader = []string{
	"shipper_name", "shipper_address",
	"consignee_name", "consignee_street", "consignee_city", "consignee_state", "consignee_zip",
	"sku", "description", "hts_code", "fda_code", "origin",
	"quantity", "value_usd", "arrival_date", "carrier_code",
}

// RenderBrokerCSV writes the customs-broker upload file: one row per
// line item carrying an FDA code. Items without one stay in the PDFs
// but are excluded here.
func RenderBrokerCSV(doc Document, cfg BrokerConfig) ([]byte, error) {
	var out bytes.Buffer
	writer := csv.NewWriter(&out)

	if err := writer.Write(brokerHeader); err != nil {
		return nil, err
	}

	consignee := ParseAddressBlock(doc.Consignee)
	arrival := EstimatedArrival(doc.Date).Format("2006-01-02")
	carrier := cfg.CarrierCode
	if doc.CarrierCode != "" {
		carrier = doc.CarrierCode
	}

	for _, item := range doc.Items {
		if item.FDACode == "" {
			continue
		}
		record := []string{
			cfg.ShipperName, cfg.ShipperAddress,
			consignee.Name, consignee.Street, consignee.City, consignee.State, consignee.Zip,
			item.SKU, item.Description, item.HTSCode, item.FDACode, item.Origin,
			strconv.FormatInt(item.Quantity, 10),
			item.TransferTotal.StringFixed(2),
			arrival, carrier,
		}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// EstimatedArrival computes the next-business-day arrival estimate
// used for pre-filing: Friday shipments land Monday, Saturday
// shipments Monday, anything else the next day.
func EstimatedArrival(shipDate time.Time) time.Time {
	switch shipDate.Weekday() {
	case time.Friday:
		return shipDate.AddDate(0, 0, 3)
	case time.Saturday:
		return shipDate.AddDate(0, 0, 2)
	default:
		return shipDate.AddDate(0, 0, 1)
	}
}
