// Package legacy parses the predecessor site's database dumps: loosely
// typed JSON rows whose numbers, booleans and dates are all strings.
package legacy

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ewen-lbh/loca7/internal/entities"
)

// Listing is one row of the legacy "logements" table, kept verbatim.
// Nullable columns are pointers; everything else arrives as a string.
type Listing struct {
	ID               string  `json:"id"`
	UpdatedAt        string  `json:"date_maj"`
	Kind             string  `json:"typel"` // ch|st|co|t1|t1b|t2|t3p|au
	Surface          *string `json:"surface"`
	Rent             string  `json:"loyer"`
	Charges          *string `json:"montant_charges"`
	Deposit          *string `json:"montant_caution"`
	HasParking       *string `json:"place_parking"` // "0"|"1"|null
	AvailableAt      string  `json:"free_date"`
	HasFurniture     *string `json:"meuble"` // "0"|"1"|null
	Address          string  `json:"adresse"`
	Latitude         *string `json:"latitude"`
	Longitude        *string `json:"longitude"`
	Description      string  `json:"description"` // BBCode
	ContactLastName  string  `json:"contact_nom"`
	ContactFirstName string  `json:"contact_prenom"`
	ContactEmail     string  `json:"contact_mail"`
	ContactPhone     string  `json:"contact_tel"`
	ContactMobile    string  `json:"contact_port"`
	PublishedAt      string  `json:"pub_date"`
	Status           string  `json:"statut"` // "0"|"1"|"2"|"3"
	ObsoleteCount    string  `json:"nb_obsolete"`
	OwnerUUID        string  `json:"uuid_proprietaire"`
}

// PhotoRef is one row of the legacy "photos" table: a listing id and a
// file path relative to the dump directory.
type PhotoRef struct {
	ID        string `json:"id"`
	ListingID string `json:"logement_id"`
	Path      string `json:"photo"`
}

// tableDump is the phpMyAdmin-style export envelope: an array of
// sections, one of which has type "table" and carries the rows.
type tableDump struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// LoadTableDump reads a legacy JSON export and decodes the rows of its
// "table" section into rows.
func LoadTableDump(path string, rows any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read legacy dump %s: %w", path, err)
	}

	var sections []tableDump
	if err := json.Unmarshal(raw, &sections); err != nil {
		return fmt.Errorf("failed to parse legacy dump %s: %w", path, err)
	}

	for _, section := range sections {
		if section.Type == "table" {
			if err := json.Unmarshal(section.Data, rows); err != nil {
				return fmt.Errorf("failed to parse table data in %s: %w", path, err)
			}
			return nil
		}
	}

	return fmt.Errorf("no table section in legacy dump %s", path)
}

// OptionalNumber coerces a stringified nullable numeric column.
// Nil passes through; malformed values are an error, signaling a
// corrupted export rather than silently producing garbage.
func OptionalNumber(s *string) (*float64, error) {
	if s == nil {
		return nil, nil
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(*s), 64)
	if err != nil {
		return nil, fmt.Errorf("malformed numeric value %q", *s)
	}
	return &n, nil
}

// OptionalBool coerces a stringified nullable boolean column ("0"/"1").
func OptionalBool(s *string) *bool {
	if s == nil {
		return nil
	}
	b := *s == "1"
	return &b
}

// Status maps the legacy 4-way status code onto the (archived,
// approved) pair of the new schema. Codes outside the table mean the
// export is corrupted and abort the import.
//
//	0 published  -> live
//	1 archived   -> approved but hidden
//	2 pending    -> awaiting moderation
//	3 deleted    -> treated as archived
func Status(code string) (archived bool, approved bool, err error) {
	switch code {
	case "0":
		return false, true, nil
	case "1":
		return true, true, nil
	case "2":
		return false, false, nil
	case "3":
		return true, true, nil
	default:
		return false, false, fmt.Errorf("unknown legacy status code %q", code)
	}
}

// KindMap translates legacy category codes to domain kinds. "au" is the
// catch-all, eligible for the text-based override in DetectKind.
var KindMap = map[string]entities.AppartmentKind{
	"ch":  entities.KindChambre,
	"st":  entities.KindStudio,
	"co":  entities.KindColocation,
	"t1":  entities.KindT1,
	"t1b": entities.KindT1Bis,
	"t2":  entities.KindT2,
	"t3p": entities.KindT3EtPlus,
	"au":  entities.KindAutre,
}

// dateLayouts are tried in order when parsing legacy datetime strings.
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02",
}

// ParseDate parses a legacy datetime string.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("malformed legacy date %q", s)
}
