package warehouse

import (
	"testing"

	"flightdw/internal/schema"
)

func resolvedRecord(r *schema.CleanRecord) ResolvedRecord {
	id := func(v int64) *int64 { return &v }
	return ResolvedRecord{
		Record:        r,
		AirlineID:     id(1),
		OriginID:      id(2),
		DestinationID: id(3),
		PassengerID:   id(4),
		FlightTypeID:  id(5),
	}
}

func TestAssembleFacts(t *testing.T) {
	r := testRecord(7)
	dur := 95.0
	r.DurationMin = &dur
	r.DelayMin = 12
	r.BagsTotal = 2
	r.BagsChecked = 1

	facts, dropped := AssembleFacts([]ResolvedRecord{resolvedRecord(&r)})
	if dropped != 0 {
		t.Fatalf("dropped = %d", dropped)
	}
	if len(facts) != 1 {
		t.Fatalf("got %d facts", len(facts))
	}

	f := facts[0]
	if f.DateKey != 20260222 || f.AirlineID != 1 || f.OriginID != 2 ||
		f.DestinationID != 3 || f.PassengerID != 4 || f.FlightTypeID != 5 {
		t.Errorf("keys = %+v", f)
	}
	if f.RecordID != 7 || f.Seat != "14C" || f.PriceUSD != 420.50 {
		t.Errorf("attributes = %+v", f)
	}
	if f.DurationMin == nil || *f.DurationMin != 95.0 {
		t.Errorf("duration = %v", f.DurationMin)
	}
	if f.DelayMin != 12 || f.BagsTotal != 2 || f.BagsChecked != 1 {
		t.Errorf("measures = %+v", f)
	}
}

func TestAssembleFactsDropsIncompleteKeys(t *testing.T) {
	r := testRecord(1)

	fields := []func(*ResolvedRecord){
		func(rr *ResolvedRecord) { rr.AirlineID = nil },
		func(rr *ResolvedRecord) { rr.OriginID = nil },
		func(rr *ResolvedRecord) { rr.DestinationID = nil },
		func(rr *ResolvedRecord) { rr.PassengerID = nil },
		func(rr *ResolvedRecord) { rr.FlightTypeID = nil },
	}
	for i, clear := range fields {
		rr := resolvedRecord(&r)
		clear(&rr)
		facts, dropped := AssembleFacts([]ResolvedRecord{rr})
		if len(facts) != 0 || dropped != 1 {
			t.Errorf("case %d: facts = %d dropped = %d, want 0/1", i, len(facts), dropped)
		}
	}

	// A full record alongside an incomplete one survives.
	full := resolvedRecord(&r)
	broken := resolvedRecord(&r)
	broken.FlightTypeID = nil
	facts, dropped := AssembleFacts([]ResolvedRecord{broken, full})
	if len(facts) != 1 || dropped != 1 {
		t.Fatalf("facts = %d dropped = %d, want 1/1", len(facts), dropped)
	}
}
