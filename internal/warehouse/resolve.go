package warehouse

import (
	"flightdw/internal/schema"
	"flightdw/internal/storage"
)

// DimensionKeys are the (natural key -> surrogate id) maps re-read from the
// store after the dimensions have been written in the current transaction.
// The date dimension needs no map: its date key is its surrogate key.
type DimensionKeys struct {
	Airlines    map[string]int64
	Airports    map[string]int64
	Passengers  map[string]int64
	FlightTypes map[string]int64
}

// keyMap folds persisted key rows into a lookup map.
//
// Natural keys are unique by construction, but if duplicates ever leak
// through, the row with the smallest surrogate id wins so resolution stays
// deterministic and never fans a record out into multiple facts.
func keyMap(rows []storage.KeyRow) map[string]int64 {
	out := make(map[string]int64, len(rows))
	for _, kr := range rows {
		k := storage.CompositeKey(kr.Key...)
		if k == "" {
			continue
		}
		if id, ok := out[k]; !ok || kr.ID < id {
			out[k] = kr.ID
		}
	}
	return out
}

// ResolvedRecord is a cleaned record with surrogate foreign keys attached.
// A nil id means the left join found no dimension row for that natural key.
type ResolvedRecord struct {
	Record *schema.CleanRecord

	AirlineID     *int64
	OriginID      *int64
	DestinationID *int64
	PassengerID   *int64
	FlightTypeID  *int64
}

// ResolveKeys left-joins every cleaned record against the persisted
// dimension keys. Records are never dropped here; unmatched keys stay nil
// and the fact assembler decides their fate.
func ResolveKeys(recs []schema.CleanRecord, keys DimensionKeys) []ResolvedRecord {
	out := make([]ResolvedRecord, len(recs))
	for i := range recs {
		r := &recs[i]
		out[i] = ResolvedRecord{
			Record:        r,
			AirlineID:     lookup(keys.Airlines, r.AirlineCode),
			OriginID:      lookup(keys.Airports, r.Origin),
			DestinationID: lookup(keys.Airports, r.Destination),
			PassengerID:   lookup(keys.Passengers, r.PassengerUUID),
			FlightTypeID:  lookup(keys.FlightTypes, flightTypeJoinKey(r)),
		}
	}
	return out
}

// flightTypeJoinKey builds the six-column natural key used to resolve
// flight-type ids. Aircraft type is not part of the join key; see
// schema.FlightTypeKeyColumns.
func flightTypeJoinKey(r *schema.CleanRecord) string {
	return storage.CompositeKey(
		r.FlightNumber, r.CabinClass, r.Status,
		r.SalesChannel, r.PaymentMethod, r.Currency,
	)
}

func lookup(m map[string]int64, key string) *int64 {
	if key == "" {
		return nil
	}
	if id, ok := m[key]; ok {
		v := id
		return &v
	}
	return nil
}
