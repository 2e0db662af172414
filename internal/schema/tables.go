package schema

import "flightdw/internal/storage"

// Warehouse table and column names. The reload order in the engine follows
// the order of Tables().
const (
	TableDate       = "dim_date"
	TableAirline    = "dim_airline"
	TableAirport    = "dim_airport"
	TablePassenger  = "dim_passenger"
	TableFlightType = "dim_flight_type"
	TableFact       = "fact_flight"
)

// Surrogate id columns read back by the key resolver.
const (
	ColAirlineID    = "airline_id"
	ColAirportID    = "airport_id"
	ColPassengerID  = "passenger_id"
	ColFlightTypeID = "flight_type_id"
)

// Insert column lists, aligned with the row builders in internal/warehouse.
var (
	DateColumns = []string{
		"date_key", "full_date", "year", "quarter", "month",
		"month_name", "iso_week", "day_of_month", "weekday_name",
	}
	AirlineColumns   = []string{"airline_code", "airline_name"}
	AirportColumns   = []string{"airport_code"}
	PassengerColumns = []string{"passenger_uuid", "gender", "age", "nationality"}
	FlightTypeColumns = []string{
		"flight_number", "aircraft_type", "cabin_class", "status",
		"sales_channel", "payment_method", "currency",
	}
	FactColumns = []string{
		"date_key", "airline_id", "origin_airport_id", "destination_airport_id",
		"passenger_id", "flight_type_id", "record_id", "seat",
		"price_usd", "duration_min", "delay_min", "bags_total", "bags_checked",
	}

	// FlightTypeKeyColumns is the natural join key for flight-type
	// resolution. Aircraft type is deliberately absent: two tuples differing
	// only by aircraft type share a join key, and the resolver breaks the
	// tie by smallest surrogate id.
	FlightTypeKeyColumns = []string{
		"flight_number", "cabin_class", "status",
		"sales_channel", "payment_method", "currency",
	}
)

// Tables returns the warehouse DDL specs in reload order: the five
// dimensions first, the fact table last.
func Tables() []storage.TableSpec {
	return []storage.TableSpec{
		{
			Name: TableDate,
			Columns: []storage.ColumnSpec{
				{Name: "date_key", Type: "bigint", NotNull: true},
				{Name: "full_date", Type: "date", NotNull: true},
				{Name: "year", Type: "int", NotNull: true},
				{Name: "quarter", Type: "int", NotNull: true},
				{Name: "month", Type: "int", NotNull: true},
				{Name: "month_name", Type: "text", NotNull: true},
				{Name: "iso_week", Type: "int", NotNull: true},
				{Name: "day_of_month", Type: "int", NotNull: true},
				{Name: "weekday_name", Type: "text", NotNull: true},
			},
			Unique: [][]string{{"date_key"}},
		},
		{
			Name:       TableAirline,
			PrimaryKey: &storage.PrimaryKeySpec{Name: ColAirlineID},
			Columns: []storage.ColumnSpec{
				{Name: "airline_code", Type: "text", NotNull: true},
				{Name: "airline_name", Type: "text"},
			},
			Unique: [][]string{{"airline_code"}},
		},
		{
			Name:       TableAirport,
			PrimaryKey: &storage.PrimaryKeySpec{Name: ColAirportID},
			Columns: []storage.ColumnSpec{
				{Name: "airport_code", Type: "text", NotNull: true},
			},
			Unique: [][]string{{"airport_code"}},
		},
		{
			Name:       TablePassenger,
			PrimaryKey: &storage.PrimaryKeySpec{Name: ColPassengerID},
			Columns: []storage.ColumnSpec{
				{Name: "passenger_uuid", Type: "text", NotNull: true},
				{Name: "gender", Type: "text"},
				{Name: "age", Type: "float"},
				{Name: "nationality", Type: "text"},
			},
			Unique: [][]string{{"passenger_uuid"}},
		},
		{
			Name:       TableFlightType,
			PrimaryKey: &storage.PrimaryKeySpec{Name: ColFlightTypeID},
			Columns: []storage.ColumnSpec{
				{Name: "flight_number", Type: "text"},
				{Name: "aircraft_type", Type: "text"},
				{Name: "cabin_class", Type: "text"},
				{Name: "status", Type: "text"},
				{Name: "sales_channel", Type: "text"},
				{Name: "payment_method", Type: "text"},
				{Name: "currency", Type: "text"},
			},
		},
		{
			Name:       TableFact,
			PrimaryKey: &storage.PrimaryKeySpec{Name: "fact_id"},
			Columns: []storage.ColumnSpec{
				{Name: "date_key", Type: "bigint", NotNull: true},
				{Name: "airline_id", Type: "bigint", NotNull: true},
				{Name: "origin_airport_id", Type: "bigint", NotNull: true},
				{Name: "destination_airport_id", Type: "bigint", NotNull: true},
				{Name: "passenger_id", Type: "bigint", NotNull: true},
				{Name: "flight_type_id", Type: "bigint", NotNull: true},
				{Name: "record_id", Type: "bigint"},
				{Name: "seat", Type: "text"},
				{Name: "price_usd", Type: "float", NotNull: true},
				{Name: "duration_min", Type: "float"},
				{Name: "delay_min", Type: "bigint", NotNull: true},
				{Name: "bags_total", Type: "bigint", NotNull: true},
				{Name: "bags_checked", Type: "bigint", NotNull: true},
			},
		},
	}
}
