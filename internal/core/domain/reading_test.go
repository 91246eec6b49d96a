package domain

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestReading_JSONSelectsPayloadVariant(t *testing.T) {
	in := Reading{
		ID:      "r1",
		OwnerID: "c1",
		Type:    ReadingHoroscope,
		Title:   "Leo today",
		Payload: HoroscopePayload{},
	}
	raw, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var out Reading
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := out.Payload.(HoroscopePayload); !ok {
		t.Fatalf("payload type = %T", out.Payload)
	}
	if out.OwnerID != "c1" || out.Title != "Leo today" {
		t.Fatalf("fields lost: %+v", out)
	}
}

func TestDecodePayload(t *testing.T) {
	p, err := DecodePayload(ReadingTarot, nil)
	if err != nil || p != nil {
		t.Fatalf("empty payload: %v %v", p, err)
	}
	if _, err := DecodePayload("runes", json.RawMessage(`{}`)); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestReading_CloneDetachesPayloadSlices(t *testing.T) {
	chart := Reading{
		Type: ReadingBirthChart,
		Payload: BirthChartPayload{Chart: Chart{
			SunSign: "Leo",
			Planets: []PlanetPosition{{Name: "Sun", Sign: "Leo", Deg: 12.5}},
			Houses:  []House{{Number: 1, Sign: "Aries", Deg: 3}},
		}},
	}
	c := chart.Clone()
	c.Payload.(BirthChartPayload).Chart.Planets[0].Sign = "Virgo"
	c.Payload.(BirthChartPayload).Chart.Houses[0].Number = 7

	orig := chart.Payload.(BirthChartPayload).Chart
	if orig.Planets[0].Sign != "Leo" || orig.Houses[0].Number != 1 {
		t.Fatalf("clone shares chart slices: %+v", orig)
	}

	tarot := Reading{Type: ReadingTarot, Payload: &TarotPayload{
		Cards: []TarotCard{{Name: "The Moon", Keywords: []string{"dreams"}}},
	}}
	tc := tarot.Clone()
	tc.Payload.(*TarotPayload).Cards[0].Keywords[0] = "fear"
	if tarot.Payload.(*TarotPayload).Cards[0].Keywords[0] != "dreams" {
		t.Fatal("clone shares card keywords")
	}

	if (Reading{}).Clone().Payload != nil {
		t.Fatal("nil payload must stay nil")
	}
}
