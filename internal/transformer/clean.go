package transformer

import (
	"fmt"
	"strconv"
	"strings"

	"flightdw/internal/schema"
)

// CleanStats counts what happened during the cleaning stage.
type CleanStats struct {
	RowsRead     int
	DateRejected int // rows dropped for an unusable departure date
	BadDates     int // departure/booking literals that matched no layout
}

// Cleaner converts raw positional rows into CleanRecords.
//
// A row survives cleaning iff its departure date parses; everything else
// degrades to a documented default and the row proceeds.
type Cleaner struct {
	idx   map[string]int
	logf  func(format string, v ...any)
	stats CleanStats
}

// NewCleaner builds a Cleaner for rows aligned to columns. The column list
// must contain every canonical input field.
func NewCleaner(columns []string, logf func(format string, v ...any)) (*Cleaner, error) {
	idx := make(map[string]int, len(columns))
	for i, c := range columns {
		idx[c] = i
	}
	for _, c := range schema.InputColumns {
		if _, ok := idx[c]; !ok {
			return nil, fmt.Errorf("cleaner: missing input column %q", c)
		}
	}
	if logf == nil {
		logf = func(string, ...any) {}
	}
	return &Cleaner{idx: idx, logf: logf}, nil
}

func (c *Cleaner) at(r *Row, column string) any { return r.V[c.idx[column]] }

// Clean normalizes one row. ok is false when the row is rejected (departure
// date missing or unparseable); rejected rows are counted, not errors.
func (c *Cleaner) Clean(r *Row) (schema.CleanRecord, bool) {
	c.stats.RowsRead++

	departure, err := Timestamp(c.at(r, "departure_datetime"))
	if err != nil {
		c.stats.BadDates++
		c.logf("stage=clean line=%d %v", r.Line, err)
	}
	if departure == nil {
		c.stats.DateRejected++
		return schema.CleanRecord{}, false
	}

	booking, err := Timestamp(c.at(r, "booking_datetime"))
	if err != nil {
		c.stats.BadDates++
		c.logf("stage=clean line=%d booking %v", r.Line, err)
	}

	rec := schema.CleanRecord{
		RecordID: intOr(c.at(r, "record_id"), 0),

		AirlineCode: Category(c.at(r, "airline_code"), ""),
		AirlineName: DisplayName(c.at(r, "airline_name")),
		Origin:      Category(c.at(r, "origin_airport"), ""),
		Destination: Category(c.at(r, "destination_airport"), ""),

		PassengerUUID: trimmed(c.at(r, "passenger_id")),
		Gender:        Gender(c.at(r, "passenger_gender")),
		Age:           floatOrNil(c.at(r, "passenger_age")),
		Nationality:   Category(c.at(r, "passenger_nationality"), DefaultNationality),

		FlightNumber:  trimmed(c.at(r, "flight_number")),
		AircraftType:  Category(c.at(r, "aircraft_type"), Unknown),
		CabinClass:    Category(c.at(r, "cabin_class"), Unknown),
		Status:        Category(c.at(r, "status"), Unknown),
		SalesChannel:  Category(c.at(r, "sales_channel"), Unknown),
		PaymentMethod: Category(c.at(r, "payment_method"), Unknown),
		Currency:      Category(c.at(r, "currency"), DefaultCurrency),

		Seat: trimmed(c.at(r, "seat")),

		Departure: *departure,
		Booking:   booking,
		DateKey:   DateKey(*departure),

		Price:       Price(c.at(r, "ticket_price")),
		PriceUSD:    Price(c.at(r, "ticket_price_usd_est")),
		DurationMin: floatOrNil(c.at(r, "duration_min")),
		DelayMin:    intOr(c.at(r, "delay_min"), 0),
		BagsTotal:   intOr(c.at(r, "bags_total"), 0),
		BagsChecked: intOr(c.at(r, "bags_checked"), 0),
	}
	return rec, true
}

// Stats returns the counters accumulated so far.
func (c *Cleaner) Stats() CleanStats { return c.stats }

func trimmed(v any) string {
	s, ok := stringValue(v)
	if !ok {
		return ""
	}
	return s
}

// floatOrNil parses a numeric field, keeping null for missing or
// unparseable input.
func floatOrNil(v any) *float64 {
	s, ok := stringValue(v)
	if !ok {
		return nil
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		return nil
	}
	return &f
}

// intOr parses an integer field, truncating decimal inputs; missing or
// unparseable input yields def.
func intOr(v any, def int64) int64 {
	f := floatOrNil(v)
	if f == nil {
		return def
	}
	return int64(*f)
}
