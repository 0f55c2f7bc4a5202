package appointment

import (
	"strings"
)

type InstallationType string

const (
	TypeMeasurement  InstallationType = "measurement"
	TypeInstallation InstallationType = "installation"
	TypeRepair       InstallationType = "repair"
	TypeConsultation InstallationType = "consultation"
)

func (t InstallationType) IsValid() bool {
	switch t {
	case TypeMeasurement, TypeInstallation, TypeRepair, TypeConsultation:
		return true
	default:
		return false
	}
}

func ParseInstallationType(s string) (InstallationType, error) {
	t := InstallationType(strings.TrimSpace(s))
	if !t.IsValid() {
		return "", ErrInvalidInstallationType
	}
	return t, nil
}

type Address struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

func NewAddress(line1, line2, city, state, postalCode, country string) (Address, error) {
	a := Address{
		Line1:      strings.TrimSpace(line1),
		Line2:      strings.TrimSpace(line2),
		City:       strings.TrimSpace(city),
		State:      strings.TrimSpace(state),
		PostalCode: strings.TrimSpace(postalCode),
		Country:    strings.TrimSpace(country),
	}
	if a.Line1 == "" || a.City == "" || a.State == "" || a.PostalCode == "" {
		return Address{}, ErrInvalidAddress
	}
	if a.Country == "" {
		a.Country = "US"
	}
	return a, nil
}

// Region is the state/province used for service-area coverage.
func (a Address) Region() string {
	return a.State
}

// Details is the customer-supplied description of the job.
type Details struct {
	InstallationType    InstallationType
	ProductTypes        []string
	RoomCount           int
	WindowCount         int
	SpecialRequirements string
	Address             Address
	AccessInstructions  string
	ParkingInstructions string
	ContactPhone        string
	AlternativeContact  string
}

func (d Details) Validate() error {
	if !d.InstallationType.IsValid() {
		return ErrInvalidInstallationType
	}
	if d.RoomCount < 0 || d.WindowCount < 0 {
		return ErrInvalidCount
	}
	if strings.TrimSpace(d.ContactPhone) == "" {
		return ErrContactRequired
	}
	if d.Address.Line1 == "" || d.Address.State == "" {
		return ErrInvalidAddress
	}
	return nil
}

type Money struct {
	cents int64
}

func NewMoney(cents int64) (Money, error) {
	if cents < 0 {
		return Money{}, ErrNegativePrice
	}
	return Money{cents: cents}, nil
}

func MoneyFromCents(cents int64) Money {
	return Money{cents: cents}
}

func (m Money) Cents() int64 {
	return m.cents
}

func (m Money) Add(other Money) Money {
	return Money{cents: m.cents + other.cents}
}

// PriceBreakdown is the fee composition stored with an appointment.
type PriceBreakdown struct {
	Base        Money
	Labor       Money
	PremiumTime Money
	Travel      Money
}

func (p PriceBreakdown) Total() Money {
	return p.Base.Add(p.Labor).Add(p.PremiumTime).Add(p.Travel)
}
