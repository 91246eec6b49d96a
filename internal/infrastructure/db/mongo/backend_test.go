package mongo

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/aayus49/spiritual-wellness/internal/core/domain"
	"github.com/aayus49/spiritual-wellness/internal/core/ports"
)

func TestToFilter_MapsIDToObjectKey(t *testing.T) {
	f := toFilter(ports.Filter{"id": "apt_1", "clientId": "c1"})
	if f["_id"] != "apt_1" {
		t.Fatalf("_id = %v", f["_id"])
	}
	if _, ok := f["id"]; ok {
		t.Fatal("id must not be passed through")
	}
	if f["clientId"] != "c1" {
		t.Fatalf("clientId = %v", f["clientId"])
	}
}

func TestToFilter_EmptySelectsAll(t *testing.T) {
	if f := toFilter(nil); len(f) != 0 {
		t.Fatalf("expected empty filter, got %v", f)
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	rec := ports.Record{
		"id":       "p1",
		"userId":   "p1",
		"verified": true,
		"priceGBP": 45.5,
		"services": []any{map[string]any{"id": "svc_A", "durationMin": float64(30)}},
	}
	raw, err := bson.Marshal(toDocument(rec.ID(), rec))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	got, err := fromDocument(raw)
	if err != nil {
		t.Fatalf("fromDocument: %v", err)
	}
	if got.ID() != "p1" {
		t.Fatalf("id = %q", got.ID())
	}
	if _, ok := got["_id"]; ok {
		t.Fatal("_id must be renamed to id")
	}
	if got["verified"] != true {
		t.Fatalf("verified = %v", got["verified"])
	}
	if got["priceGBP"] != 45.5 {
		t.Fatalf("priceGBP = %v", got["priceGBP"])
	}
	services, ok := got["services"].([]any)
	if !ok || len(services) != 1 {
		t.Fatalf("services = %#v", got["services"])
	}
	svc := services[0].(map[string]any)
	if svc["id"] != "svc_A" || svc["durationMin"] != float64(30) {
		t.Fatalf("service = %#v", svc)
	}
}

func TestConfig_ClientOptionsDefaults(t *testing.T) {
	opts := Config{URI: "mongodb://localhost:27017", Database: "wellness"}.clientOptions()
	if opts.AppName == nil || *opts.AppName != appName {
		t.Fatalf("expected app name %q, got %v", appName, opts.AppName)
	}
	if opts.MaxPoolSize == nil || *opts.MaxPoolSize != defaultPoolSize {
		t.Fatalf("expected pool size %d, got %v", defaultPoolSize, opts.MaxPoolSize)
	}
	if opts.ServerSelectionTimeout == nil || *opts.ServerSelectionTimeout != defaultTimeout {
		t.Fatalf("expected selection timeout %s, got %v", defaultTimeout, opts.ServerSelectionTimeout)
	}
}

func tarotReading() domain.Reading {
	return domain.Reading{
		ID:        "rdg_1",
		OwnerID:   "c1",
		Type:      domain.ReadingTarot,
		Title:     "Three cards",
		Summary:   "Past, present, future",
		CreatedAt: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
		Payload: domain.TarotPayload{
			Spread: "three-card",
			Cards: []domain.TarotCard{
				{ID: "major_17", Name: "The Star", Position: "Future", UprightText: "Hope", ReversedText: "Despair", Keywords: []string{"hope", "renewal"}},
				{ID: "major_18", Name: "The Moon", Position: "Present", Reversed: true, Keywords: []string{"dreams"}},
			},
			Description: "A hopeful spread",
		},
	}
}

func birthChartReading() domain.Reading {
	return domain.Reading{
		ID:        "rdg_2",
		OwnerID:   "c1",
		Type:      domain.ReadingBirthChart,
		Title:     "My chart",
		CreatedAt: time.Date(2025, 3, 2, 18, 30, 0, 0, time.UTC),
		Payload: domain.BirthChartPayload{
			Input: domain.BirthInput{
				DateISO:   "1990-08-14",
				TimeLabel: "06:45",
				Place:     domain.Place{Label: "London, UK", Lat: 51.5074, Lon: -0.1278},
			},
			Chart: domain.Chart{
				SunSign: "Leo",
				AscDeg:  123.25,
				MCDeg:   31,
				Planets: []domain.PlanetPosition{{Name: "Sun", Sign: "Leo", Deg: 21.5}, {Name: "Moon", Sign: "Pisces", Deg: 3}},
				Houses:  []domain.House{{Number: 1, Sign: "Leo", Deg: 123.25}, {Number: 10, Sign: "Taurus", Deg: 31}},
			},
		},
	}
}

// readingRecord encodes r the way the store hands records to a backend.
func readingRecord(t *testing.T, r domain.Reading) ports.Record {
	t.Helper()
	raw, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal reading: %v", err)
	}
	var rec ports.Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		t.Fatalf("unmarshal record: %v", err)
	}
	return rec
}

// decodeReading decodes a backend record the way the store reads it back.
func decodeReading(t *testing.T, rec ports.Record) domain.Reading {
	t.Helper()
	raw, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal record: %v", err)
	}
	var r domain.Reading
	if err := json.Unmarshal(raw, &r); err != nil {
		t.Fatalf("decode reading: %v", err)
	}
	return r
}

func TestDocumentRoundTrip_ReadingPayloads(t *testing.T) {
	for _, want := range []domain.Reading{tarotReading(), birthChartReading()} {
		t.Run(string(want.Type), func(t *testing.T) {
			rec := readingRecord(t, want)
			raw, err := bson.Marshal(toDocument(rec.ID(), rec))
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			back, err := fromDocument(raw)
			if err != nil {
				t.Fatalf("fromDocument: %v", err)
			}

			got := decodeReading(t, back)
			if !reflect.DeepEqual(got, want) {
				t.Fatalf("reading changed in transit:\n got %#v\nwant %#v", got, want)
			}
		})
	}
}
