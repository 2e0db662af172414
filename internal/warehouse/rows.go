package warehouse

import "flightdw/internal/schema"

// Positional row builders for the storage layer. Each list is aligned with
// the matching column list in internal/schema. Dates are bound as
// "2006-01-02" strings, which every supported dialect accepts for DATE
// columns.

const dateLayout = "2006-01-02"

func dateRows(dims []schema.DateDim) [][]any {
	out := make([][]any, len(dims))
	for i, d := range dims {
		out[i] = []any{
			d.DateKey, d.Date.Format(dateLayout), d.Year, d.Quarter, d.Month,
			d.MonthName, d.ISOWeek, d.Day, d.WeekdayName,
		}
	}
	return out
}

func airlineRows(dims []schema.AirlineDim) [][]any {
	out := make([][]any, len(dims))
	for i, d := range dims {
		out[i] = []any{d.Code, nullIfEmpty(d.Name)}
	}
	return out
}

func airportRows(dims []schema.AirportDim) [][]any {
	out := make([][]any, len(dims))
	for i, d := range dims {
		out[i] = []any{d.Code}
	}
	return out
}

func passengerRows(dims []schema.PassengerDim) [][]any {
	out := make([][]any, len(dims))
	for i, d := range dims {
		out[i] = []any{d.UUID, d.Gender, nullIfNilFloat(d.Age), d.Nationality}
	}
	return out
}

func flightTypeRows(dims []schema.FlightTypeDim) [][]any {
	out := make([][]any, len(dims))
	for i, d := range dims {
		out[i] = []any{
			d.FlightNumber, d.AircraftType, d.CabinClass, d.Status,
			d.SalesChannel, d.PaymentMethod, d.Currency,
		}
	}
	return out
}

func factRows(facts []schema.FactRow) [][]any {
	out := make([][]any, len(facts))
	for i, f := range facts {
		out[i] = []any{
			f.DateKey, f.AirlineID, f.OriginID, f.DestinationID,
			f.PassengerID, f.FlightTypeID, f.RecordID, nullIfEmpty(f.Seat),
			f.PriceUSD, nullIfNilFloat(f.DurationMin), f.DelayMin,
			f.BagsTotal, f.BagsChecked,
		}
	}
	return out
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullIfNilFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}
