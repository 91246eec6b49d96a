package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// ReadingType selects the payload variant carried by a Reading.
type ReadingType string

const (
	ReadingTarot      ReadingType = "tarot"
	ReadingHoroscope  ReadingType = "horoscope"
	ReadingBirthChart ReadingType = "birthchart"
)

func ParseReadingType(s string) (ReadingType, bool) {
	switch ReadingType(s) {
	case ReadingTarot, ReadingHoroscope, ReadingBirthChart:
		return ReadingType(s), true
	default:
		return "", false
	}
}

// Payload is the display data produced by the chart and deck collaborators.
// The store never inspects it beyond matching its Kind to the reading type.
type Payload interface {
	Kind() ReadingType
}

// TarotCard is one drawn card in spread order.
type TarotCard struct {
	ID           string   `json:"id,omitempty"`
	Name         string   `json:"name"`
	Position     string   `json:"position"`
	Reversed     bool     `json:"reversed"`
	UprightText  string   `json:"uprightText"`
	ReversedText string   `json:"reversedText"`
	Keywords     []string `json:"keywords"`
	Image        string   `json:"img,omitempty"`
}

type TarotPayload struct {
	Spread      string      `json:"spread,omitempty"`
	Cards       []TarotCard `json:"cards"`
	Description string      `json:"description,omitempty"`
}

func (TarotPayload) Kind() ReadingType { return ReadingTarot }

type HoroscopeContent struct {
	Overall     string `json:"overall"`
	Love        string `json:"love"`
	Career      string `json:"career"`
	LuckyNumber int    `json:"luckyNumber"`
	LuckyColor  string `json:"luckyColor"`
}

type HoroscopePayload struct {
	Sign    string           `json:"sign"`
	Date    string           `json:"date"`
	Content HoroscopeContent `json:"content"`
}

func (HoroscopePayload) Kind() ReadingType { return ReadingHoroscope }

// Place is the geocoding collaborator's answer for a free-text location.
type Place struct {
	Label string  `json:"label"`
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
}

type BirthInput struct {
	DateISO   string `json:"dateISO"`
	TimeLabel string `json:"timeLabel"`
	Place     Place  `json:"place"`
}

type PlanetPosition struct {
	Name string  `json:"name"`
	Sign string  `json:"sign"`
	Deg  float64 `json:"deg"`
}

type House struct {
	Number int     `json:"number"`
	Sign   string  `json:"sign"`
	Deg    float64 `json:"deg"`
}

type Chart struct {
	SunSign string           `json:"sunSign"`
	AscDeg  float64          `json:"ascDeg"`
	MCDeg   float64          `json:"mcDeg"`
	Planets []PlanetPosition `json:"planets"`
	Houses  []House          `json:"houses"`
}

type BirthChartPayload struct {
	Input BirthInput `json:"input"`
	Chart Chart      `json:"chart"`
}

func (BirthChartPayload) Kind() ReadingType { return ReadingBirthChart }

// Reading is an immutable saved result. It is created once and only ever deleted.
type Reading struct {
	ID        string      `json:"id"`
	OwnerID   string      `json:"ownerId"`
	Type      ReadingType `json:"type"`
	Title     string      `json:"title"`
	Summary   string      `json:"summary"`
	Payload   Payload     `json:"payload"`
	CreatedAt time.Time   `json:"createdAt"`
}

// Clone returns a copy of r whose payload shares no slices with r.
func (r Reading) Clone() Reading {
	r.Payload = clonePayload(r.Payload)
	return r
}

func clonePayload(p Payload) Payload {
	switch v := p.(type) {
	case TarotPayload:
		return v.clone()
	case *TarotPayload:
		if v == nil {
			return v
		}
		c := v.clone()
		return &c
	case BirthChartPayload:
		return v.clone()
	case *BirthChartPayload:
		if v == nil {
			return v
		}
		c := v.clone()
		return &c
	case *HoroscopePayload:
		if v == nil {
			return v
		}
		c := *v
		return &c
	}
	// HoroscopePayload holds no references.
	return p
}

func (p TarotPayload) clone() TarotPayload {
	if p.Cards != nil {
		cards := make([]TarotCard, len(p.Cards))
		for i, c := range p.Cards {
			if c.Keywords != nil {
				c.Keywords = append([]string(nil), c.Keywords...)
			}
			cards[i] = c
		}
		p.Cards = cards
	}
	return p
}

func (p BirthChartPayload) clone() BirthChartPayload {
	if p.Chart.Planets != nil {
		p.Chart.Planets = append([]PlanetPosition(nil), p.Chart.Planets...)
	}
	if p.Chart.Houses != nil {
		p.Chart.Houses = append([]House(nil), p.Chart.Houses...)
	}
	return p
}

// UnmarshalJSON decodes the payload variant selected by the type field.
func (r *Reading) UnmarshalJSON(data []byte) error {
	type alias Reading
	var raw struct {
		alias
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = Reading(raw.alias)
	p, err := DecodePayload(r.Type, raw.Payload)
	if err != nil {
		return err
	}
	r.Payload = p
	return nil
}

// DecodePayload decodes raw into the variant for t. Empty or null input yields nil.
func DecodePayload(t ReadingType, raw json.RawMessage) (Payload, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var (
		p   Payload
		err error
	)
	switch t {
	case ReadingTarot:
		var v TarotPayload
		err = json.Unmarshal(raw, &v)
		p = v
	case ReadingHoroscope:
		var v HoroscopePayload
		err = json.Unmarshal(raw, &v)
		p = v
	case ReadingBirthChart:
		var v BirthChartPayload
		err = json.Unmarshal(raw, &v)
		p = v
	default:
		return nil, fmt.Errorf("%w: unknown reading type %q", ErrInvalidInput, t)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", t, err)
	}
	return p, nil
}
