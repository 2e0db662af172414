// Package warehouse implements the star-schema reload: dimension derivation,
// surrogate key resolution, fact assembly and the single-transaction
// truncate-and-append load.
package warehouse

import (
	"flightdw/internal/schema"
	"flightdw/internal/storage"
)

// Dimensions holds the row sets derived from one cleaned record set.
type Dimensions struct {
	Dates       []schema.DateDim
	Airlines    []schema.AirlineDim
	Airports    []schema.AirportDim
	Passengers  []schema.PassengerDim
	FlightTypes []schema.FlightTypeDim

	AirlinesDropped   int // records with no airline code
	PassengersDropped int // records with no passenger identifier
}

// BuildDimensions derives every dimension from the cleaned record set.
//
// Tie-break rule everywhere: first occurrence in input order wins. Rows are
// walked in slice order and the first attribute set seen under a natural key
// is the one kept; later conflicting values are ignored.
func BuildDimensions(recs []schema.CleanRecord) Dimensions {
	var d Dimensions

	seenDate := map[int64]bool{}
	seenAirline := map[string]bool{}
	seenPassenger := map[string]bool{}
	seenFlightType := map[string]bool{}

	for i := range recs {
		r := &recs[i]

		if !seenDate[r.DateKey] {
			seenDate[r.DateKey] = true
			d.Dates = append(d.Dates, dateDimFor(r))
		}

		if r.AirlineCode == "" {
			d.AirlinesDropped++
		} else if !seenAirline[r.AirlineCode] {
			seenAirline[r.AirlineCode] = true
			d.Airlines = append(d.Airlines, schema.AirlineDim{Code: r.AirlineCode, Name: r.AirlineName})
		}

		if r.PassengerUUID == "" {
			d.PassengersDropped++
		} else if !seenPassenger[r.PassengerUUID] {
			seenPassenger[r.PassengerUUID] = true
			d.Passengers = append(d.Passengers, schema.PassengerDim{
				UUID:        r.PassengerUUID,
				Gender:      r.Gender,
				Age:         r.Age,
				Nationality: r.Nationality,
			})
		}

		ftKey := storage.CompositeKey(
			r.FlightNumber, r.AircraftType, r.CabinClass, r.Status,
			r.SalesChannel, r.PaymentMethod, r.Currency,
		)
		if !seenFlightType[ftKey] {
			seenFlightType[ftKey] = true
			d.FlightTypes = append(d.FlightTypes, schema.FlightTypeDim{
				FlightNumber:  r.FlightNumber,
				AircraftType:  r.AircraftType,
				CabinClass:    r.CabinClass,
				Status:        r.Status,
				SalesChannel:  r.SalesChannel,
				PaymentMethod: r.PaymentMethod,
				Currency:      r.Currency,
			})
		}
	}

	// Airports are the union of origin and destination codes: all origins
	// first, then all destinations, deduplicated in that order.
	seenAirport := map[string]bool{}
	for i := range recs {
		if c := recs[i].Origin; c != "" && !seenAirport[c] {
			seenAirport[c] = true
			d.Airports = append(d.Airports, schema.AirportDim{Code: c})
		}
	}
	for i := range recs {
		if c := recs[i].Destination; c != "" && !seenAirport[c] {
			seenAirport[c] = true
			d.Airports = append(d.Airports, schema.AirportDim{Code: c})
		}
	}

	return d
}

func dateDimFor(r *schema.CleanRecord) schema.DateDim {
	t := r.Departure
	_, week := t.ISOWeek()
	return schema.DateDim{
		DateKey:     r.DateKey,
		Date:        t,
		Year:        t.Year(),
		Quarter:     (int(t.Month())-1)/3 + 1,
		Month:       int(t.Month()),
		MonthName:   t.Month().String(),
		ISOWeek:     week,
		Day:         t.Day(),
		WeekdayName: t.Weekday().String(),
	}
}
