package warehouse

import "flightdw/internal/schema"

// AssembleFacts builds the final fact row set from resolved records.
//
// The foreign-key completeness filter is a hard boundary: a record missing
// any of its five dimension keys is dropped in full, never inserted with a
// null key. dropped reports how many records fell to the filter.
func AssembleFacts(resolved []ResolvedRecord) (facts []schema.FactRow, dropped int) {
	facts = make([]schema.FactRow, 0, len(resolved))

	for i := range resolved {
		rr := &resolved[i]
		if rr.AirlineID == nil || rr.OriginID == nil || rr.DestinationID == nil ||
			rr.PassengerID == nil || rr.FlightTypeID == nil {
			dropped++
			continue
		}

		r := rr.Record
		facts = append(facts, schema.FactRow{
			DateKey:       r.DateKey,
			AirlineID:     *rr.AirlineID,
			OriginID:      *rr.OriginID,
			DestinationID: *rr.DestinationID,
			PassengerID:   *rr.PassengerID,
			FlightTypeID:  *rr.FlightTypeID,

			RecordID: r.RecordID,
			Seat:     r.Seat,

			PriceUSD:    r.PriceUSD,
			DurationMin: r.DurationMin,
			DelayMin:    r.DelayMin,
			BagsTotal:   r.BagsTotal,
			BagsChecked: r.BagsChecked,
		})
	}
	return facts, dropped
}
