package model

const (
	ServiceBoarding     = "boarding"
	ServiceHouseSitting = "house_sitting"
	ServiceDropIn       = "drop_in"
	ServiceDogWalking   = "dog_walking"
	ServiceDayCare      = "day_care"
)

var ServiceTypes = []string{ServiceBoarding, ServiceHouseSitting, ServiceDropIn, ServiceDogWalking, ServiceDayCare}

// IsServiceType reports whether key, already normalised, names a known service.
func IsServiceType(key string) bool {
	for _, t := range ServiceTypes {
		if t == key {
			return true
		}
	}
	return false
}

type ServiceOffer struct {
	Active      bool     `json:"active" bson:"active"`
	Label       string   `json:"label" bson:"label"`
	DailyPrice  float64  `json:"daily_price" bson:"daily_price"`
	WeeklyPrice float64  `json:"weekly_price,omitempty" bson:"weekly_price,omitempty"`
	Options     []string `json:"options,omitempty" bson:"options,omitempty"`
}

// SitterSummary is the public card of a sitter used by search and booking.
type SitterSummary struct {
	ID        string                  `json:"id" bson:"_id"`
	Name      string                  `json:"name" bson:"name"`
	Locality  string                  `json:"locality" bson:"locality"`
	Latitude  *float64                `json:"latitude,omitempty" bson:"latitude,omitempty"`
	Longitude *float64                `json:"longitude,omitempty" bson:"longitude,omitempty"`
	Services  map[string]ServiceOffer `json:"services" bson:"services"`
	AnimalIDs []string                `json:"animal_ids" bson:"animal_ids"`
	Options   []string                `json:"options,omitempty" bson:"options,omitempty"`
}

func (s *SitterSummary) HasLocation() bool {
	return s.Latitude != nil && s.Longitude != nil
}

// ActiveService returns the offer for serviceType if the sitter currently provides it.
func (s *SitterSummary) ActiveService(serviceType string) (ServiceOffer, bool) {
	offer, ok := s.Services[serviceType]
	if !ok || !offer.Active {
		return ServiceOffer{}, false
	}
	return offer, true
}

type SitterResult struct {
	SitterSummary
	DistanceKm *float64 `json:"distance_km,omitempty"`
}

type SearchQuery struct {
	Latitude    *float64 `validate:"omitempty,latitude"`
	Longitude   *float64 `validate:"omitempty,longitude"`
	Location    string   `validate:"omitempty,max=200"`
	Locality    string   `validate:"omitempty,max=100"`
	RadiusKm    float64  `validate:"gte=0,lte=500"`
	ServiceType string   `validate:"omitempty,max=50,service_type"`
	AnimalID    string   `validate:"omitempty,max=50"`
	Option      string   `validate:"omitempty,max=50"`
	Page        int      `validate:"gte=1"`
}

func (q SearchQuery) HasReference() bool {
	return q.Latitude != nil && q.Longitude != nil
}
