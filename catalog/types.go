package catalog

import (
	"strings"
	"time"
)

// ServiceType describes one bookable service. Prices are rupiah;
// EstimatedDuration is minutes.
type ServiceType struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Description       string `json:"description"`
	BasePrice         int64  `json:"basePrice"`
	EstimatedDuration int    `json:"estimatedDuration"`
}

// VehicleCategory splits the fleet into the two categories the platform
// services.
type VehicleCategory string

const (
	VehicleCar        VehicleCategory = "car"
	VehicleMotorcycle VehicleCategory = "motorcycle"
)

// ParseVehicleCategory validates a raw category string.
func ParseVehicleCategory(raw string) (VehicleCategory, error) {
	switch VehicleCategory(strings.ToLower(strings.TrimSpace(raw))) {
	case VehicleCar:
		return VehicleCar, nil
	case VehicleMotorcycle:
		return VehicleMotorcycle, nil
	default:
		return "", ErrVehicleCategoryUnknown
	}
}

// VehicleType identifies a customer's vehicle.
type VehicleType struct {
	ID       string          `json:"id"`
	Brand    string          `json:"brand"`
	Model    string          `json:"model"`
	Year     int             `json:"year"`
	Category VehicleCategory `json:"type"`
}

// RequestKind distinguishes the two ways a customer asks for service: a
// technician dispatched to them, or a booked slot at a workshop.
type RequestKind string

const (
	KindCallTechnician RequestKind = "call_technician"
	KindBookService    RequestKind = "book_service"
)

// ParseRequestKind validates a raw kind string.
func ParseRequestKind(raw string) (RequestKind, error) {
	switch RequestKind(strings.ToLower(strings.TrimSpace(raw))) {
	case KindCallTechnician:
		return KindCallTechnician, nil
	case KindBookService:
		return KindBookService, nil
	default:
		return "", ErrKindUnknown
	}
}

// RequestStatus is a service request's position in its lifecycle.
type RequestStatus string

const (
	StatusPending    RequestStatus = "pending"
	StatusAccepted   RequestStatus = "accepted"
	StatusOnWay      RequestStatus = "on_way"
	StatusInProgress RequestStatus = "in_progress"
	StatusCompleted  RequestStatus = "completed"
	StatusCancelled  RequestStatus = "cancelled"
)

// ParseRequestStatus validates a raw status string.
func ParseRequestStatus(raw string) (RequestStatus, error) {
	switch s := RequestStatus(strings.ToLower(strings.TrimSpace(raw))); s {
	case StatusPending, StatusAccepted, StatusOnWay, StatusInProgress,
		StatusCompleted, StatusCancelled:
		return s, nil
	default:
		return "", ErrStatusUnknown
	}
}

// Terminal reports whether the status ends the request lifecycle.
func (s RequestStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Location is a street address with coordinates.
type Location struct {
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// GeoPoint is a bare coordinate pair, used where no address accompanies
// the position.
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ServiceRequest is a customer's ask for service. WorkshopID and
// TechnicianID are filled in as the platform assigns the request;
// FinalPrice is set on completion.
type ServiceRequest struct {
	ID             string        `json:"id"`
	CustomerID     string        `json:"customerId"`
	Kind           RequestKind   `json:"type"`
	Vehicle        VehicleType   `json:"vehicleType"`
	Services       []ServiceType `json:"services"`
	Problems       []string      `json:"problems"`
	Description    string        `json:"description"`
	Location       Location      `json:"location"`
	ScheduledAt    time.Time     `json:"scheduledDate,omitzero"`
	Status         RequestStatus `json:"status"`
	WorkshopID     string        `json:"workshopId,omitempty"`
	TechnicianID   string        `json:"technicianId,omitempty"`
	EstimatedPrice int64         `json:"estimatedPrice"`
	FinalPrice     int64         `json:"finalPrice,omitempty"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

// Validate reports whether the request satisfies the structural
// invariants: identifiers present, a known kind and status, at least one
// service selected, and timestamps set.
func (r *ServiceRequest) Validate() error {
	if r == nil {
		return ErrRequestInvalid
	}
	if r.ID == "" || r.CustomerID == "" {
		return ErrRequestInvalid
	}
	if _, err := ParseRequestKind(string(r.Kind)); err != nil {
		return err
	}
	if _, err := ParseRequestStatus(string(r.Status)); err != nil {
		return err
	}
	if len(r.Services) == 0 {
		return ErrRequestInvalid
	}
	if r.CreatedAt.IsZero() || r.UpdatedAt.IsZero() {
		return ErrRequestInvalid
	}
	return nil
}

// Workshop is a partner workshop as listed to customers. Distance and
// EstimatedDuration are relative to the searching customer and only set
// on search results.
type Workshop struct {
	ID                string            `json:"id"`
	Name              string            `json:"name"`
	Address           string            `json:"address"`
	Location          GeoPoint          `json:"location"`
	Rating            float64           `json:"rating"`
	ReviewCount       int               `json:"reviewCount"`
	OperatingHours    map[string]string `json:"operatingHours"`
	Services          []string          `json:"services"`
	Technicians       []Technician      `json:"technicians"`
	Distance          float64           `json:"distance,omitempty"`
	EstimatedDuration int               `json:"estimatedDuration,omitempty"`
	Photos            []string          `json:"photos,omitempty"`
}

// Technician is a workshop technician as listed to customers.
type Technician struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Rating            float64  `json:"rating"`
	CompletedServices int      `json:"completedServices"`
	Specialties       []string `json:"specialties"`
	ProfilePhoto      string   `json:"profilePhoto,omitempty"`
	Available         bool     `json:"isAvailable"`
}

// PriceEstimation breaks an estimated price into its components. All
// amounts are rupiah.
type PriceEstimation struct {
	ServicePrice int64  `json:"servicePrice"`
	PartsPrice   int64  `json:"partsPrice"`
	PlatformFee  int64  `json:"platformFee"`
	Tax          int64  `json:"tax"`
	Discount     int64  `json:"discount"`
	Total        int64  `json:"total"`
	PromoCode    string `json:"promoCode,omitempty"`
}

// Validate checks that no component is negative and that Total reconciles
// with the components.
func (p PriceEstimation) Validate() error {
	if p.ServicePrice < 0 || p.PartsPrice < 0 || p.PlatformFee < 0 ||
		p.Tax < 0 || p.Discount < 0 {
		return ErrEstimationInvalid
	}
	if p.Total != p.ServicePrice+p.PartsPrice+p.PlatformFee+p.Tax-p.Discount {
		return ErrEstimationInvalid
	}
	return nil
}
