package entities

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AppartmentKind string

const (
	KindChambre    AppartmentKind = "chambre"
	KindStudio     AppartmentKind = "studio"
	KindT1         AppartmentKind = "t1"
	KindT1Bis      AppartmentKind = "t1bis"
	KindT2         AppartmentKind = "t2"
	KindT3EtPlus   AppartmentKind = "t3etplus"
	KindColocation AppartmentKind = "colocation"
	KindAutre      AppartmentKind = "autre"
)

// DisplayAppartmentKind maps kinds to their user-facing French labels.
var DisplayAppartmentKind = map[AppartmentKind]string{
	KindChambre:    "Chambre",
	KindStudio:     "Studio",
	KindT1:         "T1",
	KindT1Bis:      "T1 bis",
	KindT2:         "T2",
	KindT3EtPlus:   "T3 et plus",
	KindColocation: "Colocation",
	KindAutre:      "Autre",
}

type PublicTransportType string

const (
	TransportBus          PublicTransportType = "bus"
	TransportBHNF         PublicTransportType = "bhnf" // high-frequency bus lines (Lineo)
	TransportMetro        PublicTransportType = "metro"
	TransportTram         PublicTransportType = "tram"
	TransportTelepherique PublicTransportType = "telepherique"
	TransportTAD          PublicTransportType = "tad"
)

var DisplayPublicTransportType = map[PublicTransportType]string{
	TransportBus:          "bus",
	TransportBHNF:         "tram-bus",
	TransportMetro:        "métro",
	TransportTram:         "tramway",
	TransportTelepherique: "téléphérique",
	TransportTAD:          "TAD",
}

// Appartment is a housing listing. Latitude/longitude are nil when the
// address was never geocoded (or the legacy coordinates were aberrant).
// The amenity flags are ternary: nil means "not known", not "absent".
type Appartment struct {
	ID          string         `gorm:"primaryKey;size:36" json:"id"`
	Number      int            `gorm:"uniqueIndex" json:"number"` // legacy sequence number
	OwnerID     string         `gorm:"index;size:36" json:"owner_id"`
	Owner       User           `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Rent        float64        `json:"rent"`
	Charges     float64        `json:"charges"`
	Deposit     float64        `json:"deposit"`
	Surface     float64        `json:"surface"`
	Kind        AppartmentKind `gorm:"size:20;index" json:"kind"`
	RoomsCount  int            `json:"roomsCount"`
	Address     string         `gorm:"size:512" json:"address"`
	Latitude    *float64       `json:"latitude"`
	Longitude   *float64       `json:"longitude"`
	Description string         `gorm:"type:text" json:"description"` // sanitized HTML

	HasFurniture      *bool `json:"hasFurniture"`
	HasParking        *bool `json:"hasParking"`
	HasBicycleParking *bool `json:"hasBicycleParking"`
	HasFiberInternet  *bool `json:"hasFiberInternet"`
	HasElevator       *bool `json:"hasElevator"`

	Approved            bool `gorm:"default:false;index" json:"approved"`
	Archived            bool `gorm:"default:false;index" json:"archived"`
	ImportedFromOldSite bool `gorm:"default:false" json:"importedFromOldSite"`

	AvailableAt time.Time `json:"availableAt"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	Photos             []Photo                  `gorm:"foreignKey:AppartmentID" json:"photos,omitempty"`
	NearbyStations     []PublicTransportStation `gorm:"foreignKey:AppartmentID" json:"nearbyStations,omitempty"`
	Reports            []Report                 `gorm:"foreignKey:AppartmentID" json:"reports,omitempty"`
	Likes              []AppartmentLike         `gorm:"foreignKey:AppartmentID" json:"-"`
	TravelTimeToSchool *TravelTimeToSchool      `gorm:"foreignKey:AppartmentID" json:"travelTimeToSchool,omitempty"`
}

func (a *Appartment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// Title renders the short human description used in emails and headings,
// e.g. "T2 de 40m² à 600€/mois".
func (a Appartment) Title() string {
	label := DisplayAppartmentKind[a.Kind]
	if a.Kind == KindAutre {
		label = "Bien"
	}
	return fmt.Sprintf("%s de %gm² à %g€/mois", label, a.Surface, a.Rent+a.Charges)
}

// AccessibleBy reports whether the listing may be shown to the given
// user. Unapproved or archived listings stay visible to their owner and
// to administrators.
func (a Appartment) AccessibleBy(user *User) bool {
	if a.Approved && !a.Archived {
		return true
	}
	if user == nil {
		return false
	}
	return user.ID == a.OwnerID || user.Admin
}

// Photo references an uploaded or imported image. Hash is nil when the
// legacy source file was missing at import time.
type Photo struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	AppartmentID string    `gorm:"index;size:36" json:"appartment_id"`
	Filename     string    `gorm:"size:512" json:"filename"`
	ContentType  string    `gorm:"size:100" json:"contentType"`
	Position     int       `json:"position"`
	Hash         *string   `gorm:"size:64" json:"hash"`
	CreatedAt    time.Time `json:"created_at"`
}

func (p *Photo) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// PublicTransportStation is a per-listing snapshot of a nearby stop.
// Stations are not shared between listings.
type PublicTransportStation struct {
	ID           string              `gorm:"primaryKey;size:36" json:"id"`
	AppartmentID string              `gorm:"index;size:36" json:"appartment_id"`
	Name         string              `gorm:"size:255" json:"name"`
	Line         string              `gorm:"size:50" json:"line"`
	Type         PublicTransportType `gorm:"size:20" json:"type"`
	Color        string              `gorm:"size:10" json:"color"`
	Latitude     float64             `json:"latitude"`
	Longitude    float64             `json:"longitude"`
}

func (s *PublicTransportStation) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// TravelTimeToSchool holds commute durations in minutes; nil when the
// route has not been computed yet.
type TravelTimeToSchool struct {
	ID                string `gorm:"primaryKey;size:36" json:"id"`
	AppartmentID      string `gorm:"uniqueIndex;size:36" json:"appartment_id"`
	ByFoot            *int   `json:"byFoot"`
	ByBike            *int   `json:"byBike"`
	ByPublicTransport *int   `json:"byPublicTransport"`
}

func (t *TravelTimeToSchool) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// AppartmentLike marks a listing as saved by a user; likers are
// notified when an archived listing comes back online.
type AppartmentLike struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	AppartmentID string    `gorm:"index;size:36" json:"appartment_id"`
	UserID       string    `gorm:"index;size:36" json:"user_id"`
	User         User      `gorm:"foreignKey:UserID" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

func (l *AppartmentLike) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

func (Appartment) TableName() string {
	return "appartments"
}

func (Photo) TableName() string {
	return "photos"
}

func (PublicTransportStation) TableName() string {
	return "public_transport_stations"
}

func (TravelTimeToSchool) TableName() string {
	return "travel_times_to_school"
}

func (AppartmentLike) TableName() string {
	return "appartment_likes"
}
