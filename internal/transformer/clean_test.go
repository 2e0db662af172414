package transformer

import (
	"testing"

	"flightdw/internal/schema"
)

// rowFrom builds a pooled Row aligned to schema.InputColumns from a sparse
// field map; absent fields stay nil.
func rowFrom(fields map[string]string) *Row {
	r := GetRow(len(schema.InputColumns))
	for i, c := range schema.InputColumns {
		if v, ok := fields[c]; ok {
			r.V[i] = v
		}
	}
	return r
}

func newTestCleaner(t *testing.T) *Cleaner {
	t.Helper()
	c, err := NewCleaner(schema.InputColumns, nil)
	if err != nil {
		t.Fatalf("NewCleaner: %v", err)
	}
	return c
}

func TestCleanFullRecord(t *testing.T) {
	c := newTestCleaner(t)

	r := rowFrom(map[string]string{
		"record_id":             "421",
		"airline_code":          " ib ",
		"airline_name":          "IBERIA AIRLINES",
		"origin_airport":        "mad",
		"destination_airport":   "gua",
		"passenger_id":          "p-001",
		"passenger_gender":      "Femenino",
		"passenger_age":         "34",
		"passenger_nationality": "gt",
		"departure_datetime":    "22/02/2026 08:00",
		"booking_datetime":      "2026-01-15",
		"ticket_price":          "950,75",
		"ticket_price_usd_est":  "123,45",
		"duration_min":          "135",
		"delay_min":             "10.0",
		"bags_total":            "2",
		"bags_checked":          "1",
		"seat":                  "12A",
		"flight_number":         "IB6341",
		"cabin_class":           "economy",
		"status":                "On Time",
		"payment_method":        "card",
		"currency":              "eur",
	})
	defer r.Free()

	rec, ok := c.Clean(r)
	if !ok {
		t.Fatalf("record rejected")
	}

	if rec.RecordID != 421 {
		t.Errorf("RecordID = %d", rec.RecordID)
	}
	if rec.AirlineCode != "IB" || rec.AirlineName != "Iberia Airlines" {
		t.Errorf("airline = %q %q", rec.AirlineCode, rec.AirlineName)
	}
	if rec.Origin != "MAD" || rec.Destination != "GUA" {
		t.Errorf("route = %q -> %q", rec.Origin, rec.Destination)
	}
	if rec.Gender != "F" || rec.Nationality != "GT" {
		t.Errorf("passenger = %q %q", rec.Gender, rec.Nationality)
	}
	if rec.Age == nil || *rec.Age != 34 {
		t.Errorf("Age = %v", rec.Age)
	}
	if rec.DateKey != 20260222 {
		t.Errorf("DateKey = %d", rec.DateKey)
	}
	if rec.Booking == nil {
		t.Errorf("Booking = nil")
	}
	if rec.Price != 950.75 || rec.PriceUSD != 123.45 {
		t.Errorf("prices = %v %v", rec.Price, rec.PriceUSD)
	}
	if rec.DurationMin == nil || *rec.DurationMin != 135 {
		t.Errorf("DurationMin = %v", rec.DurationMin)
	}
	if rec.DelayMin != 10 || rec.BagsTotal != 2 || rec.BagsChecked != 1 {
		t.Errorf("ints = %d %d %d", rec.DelayMin, rec.BagsTotal, rec.BagsChecked)
	}
	// aircraft_type and sales_channel were missing: defaulted before any
	// dedup happens downstream.
	if rec.AircraftType != Unknown || rec.SalesChannel != Unknown {
		t.Errorf("defaults = %q %q", rec.AircraftType, rec.SalesChannel)
	}
	if rec.CabinClass != "ECONOMY" || rec.Status != "ON TIME" || rec.Currency != "EUR" {
		t.Errorf("categoricals = %q %q %q", rec.CabinClass, rec.Status, rec.Currency)
	}
}

func TestCleanRejectsMissingDeparture(t *testing.T) {
	c := newTestCleaner(t)

	r := rowFrom(map[string]string{"record_id": "1"})
	defer r.Free()

	if _, ok := c.Clean(r); ok {
		t.Fatalf("row without departure date must be rejected")
	}
	st := c.Stats()
	if st.RowsRead != 1 || st.DateRejected != 1 || st.BadDates != 0 {
		t.Fatalf("stats = %+v", st)
	}
}

func TestCleanRejectsUnparseableDeparture(t *testing.T) {
	var logged int
	logf := func(string, ...any) { logged++ }
	c, err := NewCleaner(schema.InputColumns, logf)
	if err != nil {
		t.Fatalf("NewCleaner: %v", err)
	}

	r := rowFrom(map[string]string{
		"record_id":          "2",
		"departure_datetime": "sometime soon",
	})
	defer r.Free()

	if _, ok := c.Clean(r); ok {
		t.Fatalf("unparseable departure must reject the row")
	}
	st := c.Stats()
	if st.DateRejected != 1 || st.BadDates != 1 {
		t.Fatalf("stats = %+v", st)
	}
	if logged == 0 {
		t.Fatalf("expected a warning log for the bad literal")
	}
}

func TestCleanDefaultsOnSparseRow(t *testing.T) {
	c := newTestCleaner(t)

	r := rowFrom(map[string]string{
		"departure_datetime": "2026-02-22",
		"ticket_price":       "no-price",
	})
	defer r.Free()

	rec, ok := c.Clean(r)
	if !ok {
		t.Fatalf("row with a valid departure must survive")
	}
	if rec.Price != 0.0 || rec.PriceUSD != 0.0 {
		t.Errorf("prices = %v %v", rec.Price, rec.PriceUSD)
	}
	if rec.Gender != Unknown {
		t.Errorf("Gender = %q", rec.Gender)
	}
	if rec.Currency != "USD" || rec.Nationality != "XX" {
		t.Errorf("defaults = %q %q", rec.Currency, rec.Nationality)
	}
	if rec.Age != nil || rec.DurationMin != nil {
		t.Errorf("nullable numerics should stay nil")
	}
	if rec.DelayMin != 0 || rec.BagsTotal != 0 || rec.BagsChecked != 0 {
		t.Errorf("zero defaults = %d %d %d", rec.DelayMin, rec.BagsTotal, rec.BagsChecked)
	}
	if rec.PassengerUUID != "" || rec.AirlineCode != "" {
		t.Errorf("missing keys should stay empty")
	}
	if rec.Booking != nil {
		t.Errorf("Booking should be nil")
	}
}

func TestNewCleanerRequiresAllColumns(t *testing.T) {
	if _, err := NewCleaner([]string{"record_id"}, nil); err == nil {
		t.Fatalf("expected error for missing columns")
	}
}
