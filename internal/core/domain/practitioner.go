package domain

import (
	"strings"
	"time"
)

const (
	DefaultServicePriceGBP = 40
	DefaultServiceDuration = 30
	DefaultPractitionerBio = "New practitioner profile pending admin approval."
)

// Service is a bookable offering owned by one practitioner.
type Service struct {
	ID          string  `json:"id" validate:"required"`
	Title       string  `json:"title" validate:"required"`
	Type        string  `json:"type"`
	Description string  `json:"description,omitempty"`
	DurationMin int     `json:"durationMin" validate:"gt=0"`
	PriceGBP    float64 `json:"priceGBP" validate:"gte=0"`
}

// PractitionerProfile is listed in the public directory iff Verified.
// PriceGBP is a display summary taken from the first service.
type PractitionerProfile struct {
	UserID      string    `json:"userId"`
	Name        string    `json:"name"`
	Email       string    `json:"email,omitempty"`
	Bio         string    `json:"bio"`
	Specialties []string  `json:"specialties"`
	Verified    bool      `json:"verified"`
	Services    []Service `json:"services"`
	PriceGBP    float64   `json:"priceGBP"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty"`
}

// NewPractitionerProfile builds the unverified profile created at signup.
// It always carries one default service so booking is never empty.
func NewPractitionerProfile(userID, name, email string, now time.Time) PractitionerProfile {
	return PractitionerProfile{
		UserID:      userID,
		Name:        name,
		Email:       email,
		Bio:         DefaultPractitionerBio,
		Specialties: []string{"Astrology"},
		Verified:    false,
		Services:    []Service{DefaultService(userID, DefaultServicePriceGBP)},
		PriceGBP:    DefaultServicePriceGBP,
		UpdatedAt:   now,
	}
}

func DefaultService(userID string, price float64) Service {
	return Service{
		ID:          "svc_" + userID + "_1",
		Type:        "General",
		Title:       "Initial Consultation",
		Description: "A first session to understand your needs and provide guidance.",
		DurationMin: DefaultServiceDuration,
		PriceGBP:    price,
	}
}

// Service looks up a service by id.
func (p PractitionerProfile) Service(id string) (Service, bool) {
	for _, s := range p.Services {
		if s.ID == id {
			return s, true
		}
	}
	return Service{}, false
}

// SummaryPrice is the denormalized price shown in the directory.
func SummaryPrice(services []Service) float64 {
	if len(services) == 0 {
		return 0
	}
	return services[0].PriceGBP
}

// Matches reports whether term occurs case-insensitively in the name or any
// specialty. An empty term matches everything.
func (p PractitionerProfile) Matches(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	if strings.Contains(strings.ToLower(p.Name), term) {
		return true
	}
	for _, s := range p.Specialties {
		if strings.Contains(strings.ToLower(s), term) {
			return true
		}
	}
	return false
}

// Clone returns a copy that shares no slices with p.
func (p PractitionerProfile) Clone() PractitionerProfile {
	c := p
	c.Specialties = append([]string(nil), p.Specialties...)
	c.Services = append([]Service(nil), p.Services...)
	return c
}
