// Package schema fixes the shape of the flight warehouse: the canonical
// input columns, the typed record flowing between pipeline stages, the
// dimension and fact row types, and the table specs the storage backends
// create from.
package schema

import "time"

// InputColumns is the canonical field order every parsed row is aligned to.
// The CSV header is mapped onto these names; positions here are the indices
// used by the cleaning stage.
var InputColumns = []string{
	"record_id",
	"airline_code",
	"airline_name",
	"origin_airport",
	"destination_airport",
	"passenger_id",
	"passenger_gender",
	"passenger_age",
	"passenger_nationality",
	"departure_datetime",
	"booking_datetime",
	"ticket_price",
	"ticket_price_usd_est",
	"duration_min",
	"delay_min",
	"bags_total",
	"bags_checked",
	"seat",
	"flight_number",
	"aircraft_type",
	"cabin_class",
	"status",
	"sales_channel",
	"payment_method",
	"currency",
}

// CleanRecord is one booking after normalization. String fields use "" for
// null; numeric fields that may legitimately be absent are pointers.
//
// Invariant: Departure is always set and DateKey is always non-zero. Rows
// whose departure date cannot be parsed never become CleanRecords.
type CleanRecord struct {
	RecordID int64

	AirlineCode string
	AirlineName string
	Origin      string
	Destination string

	PassengerUUID string
	Gender        string
	Age           *float64
	Nationality   string

	FlightNumber  string
	AircraftType  string
	CabinClass    string
	Status        string
	SalesChannel  string
	PaymentMethod string
	Currency      string

	Seat string

	Departure time.Time
	Booking   *time.Time
	DateKey   int64

	Price       float64 // original currency
	PriceUSD    float64
	DurationMin *float64
	DelayMin    int64
	BagsTotal   int64
	BagsChecked int64
}

// DateDim is one row of dim_date. DateKey (YYYYMMDD) is both natural and
// surrogate key.
type DateDim struct {
	DateKey     int64
	Date        time.Time
	Year        int
	Quarter     int
	Month       int
	MonthName   string
	ISOWeek     int
	Day         int
	WeekdayName string
}

// AirlineDim is one row of dim_airline; Code is the natural key.
type AirlineDim struct {
	Code string
	Name string
}

// AirportDim is one row of dim_airport; Code is the natural key.
type AirportDim struct {
	Code string
}

// PassengerDim is one row of dim_passenger; UUID is the natural key.
type PassengerDim struct {
	UUID        string
	Gender      string
	Age         *float64
	Nationality string
}

// FlightTypeDim is one row of dim_flight_type: the deduplicated tuple of
// flight-descriptive attributes.
type FlightTypeDim struct {
	FlightNumber  string
	AircraftType  string
	CabinClass    string
	Status        string
	SalesChannel  string
	PaymentMethod string
	Currency      string
}

// FactRow is one loaded booking event. All five foreign keys are non-null by
// construction: assembly drops any record it cannot fully resolve.
type FactRow struct {
	DateKey       int64
	AirlineID     int64
	OriginID      int64
	DestinationID int64
	PassengerID   int64
	FlightTypeID  int64

	RecordID int64
	Seat     string

	PriceUSD    float64
	DurationMin *float64
	DelayMin    int64
	BagsTotal   int64
	BagsChecked int64
}
