package importer

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/ewen-lbh/loca7/internal/bbcode"
	"github.com/ewen-lbh/loca7/internal/entities"
	"github.com/ewen-lbh/loca7/internal/geo"
	"github.com/ewen-lbh/loca7/internal/legacy"
	"github.com/ewen-lbh/loca7/internal/photos"
)

const obsoleteReportMessage = "L'annonce est obsolète (importé depuis l'ancien site)"

// ListingBuilder turns raw legacy rows into ready-to-persist listings
// with their nested photos, stations and reports.
type ListingBuilder struct {
	// Stops is the transit dataset used for the per-listing station
	// snapshot.
	Stops []geo.Stop
	// DataDir is the legacy dump directory; photo paths are relative
	// to it.
	DataDir string
	// GhostID authors the synthetic obsolete reports.
	GhostID string
}

// Build assembles the new-schema listing for one legacy row. ownerID is
// the already-created owner account. Any malformed required field makes
// the whole row an error; the import aborts rather than persist garbage.
func (b ListingBuilder) Build(row legacy.Listing, photoRefs []legacy.PhotoRef, ownerID string) (entities.Appartment, error) {
	rent, err := strconv.ParseFloat(row.Rent, 64)
	if err != nil {
		return entities.Appartment{}, fmt.Errorf("listing #%s: malformed rent %q", row.ID, row.Rent)
	}
	number, err := strconv.Atoi(row.ID)
	if err != nil {
		return entities.Appartment{}, fmt.Errorf("listing #%s: malformed id", row.ID)
	}

	charges, err := legacy.OptionalNumber(row.Charges)
	if err != nil {
		return entities.Appartment{}, fmt.Errorf("listing #%s: %w", row.ID, err)
	}
	deposit, err := legacy.OptionalNumber(row.Deposit)
	if err != nil {
		return entities.Appartment{}, fmt.Errorf("listing #%s: %w", row.ID, err)
	}
	surface, err := legacy.OptionalNumber(row.Surface)
	if err != nil {
		return entities.Appartment{}, fmt.Errorf("listing #%s: %w", row.ID, err)
	}

	archived, approved, err := legacy.Status(row.Status)
	if err != nil {
		return entities.Appartment{}, fmt.Errorf("listing #%s: %w", row.ID, err)
	}

	availableAt, err := legacy.ParseDate(row.AvailableAt)
	if err != nil {
		return entities.Appartment{}, fmt.Errorf("listing #%s: %w", row.ID, err)
	}
	createdAt, err := legacy.ParseDate(row.PublishedAt)
	if err != nil {
		return entities.Appartment{}, fmt.Errorf("listing #%s: %w", row.ID, err)
	}
	updatedAt, err := legacy.ParseDate(row.UpdatedAt)
	if err != nil {
		return entities.Appartment{}, fmt.Errorf("listing #%s: %w", row.ID, err)
	}

	kind, ok := legacy.KindMap[row.Kind]
	if !ok {
		kind = entities.KindAutre
	}
	if detected, found := legacy.DetectKind(row.Kind, row.Description); found {
		kind = detected
	}

	latitude, err := legacy.OptionalNumber(row.Latitude)
	if err != nil {
		return entities.Appartment{}, fmt.Errorf("listing #%s: %w", row.ID, err)
	}
	longitude, err := legacy.OptionalNumber(row.Longitude)
	if err != nil {
		return entities.Appartment{}, fmt.Errorf("listing #%s: %w", row.ID, err)
	}
	latitude, longitude = geo.ValidateCoordinates(latitude, longitude)

	appartment := entities.Appartment{
		Number:      number,
		OwnerID:     ownerID,
		Rent:        rent,
		Charges:     orZero(charges),
		Deposit:     orZero(deposit),
		Surface:     orZero(surface),
		Kind:        kind,
		RoomsCount:  legacy.RoomsCount(row.Description),
		Address:     row.Address,
		Description: renderDescription(row.Description),

		HasFurniture:      legacy.OptionalBool(row.HasFurniture),
		HasParking:        legacy.OptionalBool(row.HasParking),
		HasBicycleParking: legacy.DetectBicycleParking(row.Description),
		HasFiberInternet:  legacy.DetectFiberInternet(row.Description),
		HasElevator:       legacy.DetectElevator(row.Description),

		Approved:            approved,
		Archived:            archived,
		ImportedFromOldSite: true,

		AvailableAt: availableAt,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,

		TravelTimeToSchool: &entities.TravelTimeToSchool{},
	}

	// The legacy schema stores the pair inverted; kept as-is so the
	// data matches what the rest of the old ecosystem expects.
	appartment.Latitude = longitude
	appartment.Longitude = latitude

	if latitude != nil && longitude != nil {
		location := geo.Point{Latitude: *latitude, Longitude: *longitude}
		appartment.NearbyStations = geo.NearbyStations(location, b.Stops)
	}

	appartment.Photos = b.buildPhotos(row, photoRefs)

	for i := 0; i < obsoleteCount(row); i++ {
		appartment.Reports = append(appartment.Reports, entities.Report{
			AuthorID:  b.GhostID,
			Reason:    entities.ReportReasonObsolete,
			Message:   obsoleteReportMessage,
			CreatedAt: updatedAt,
		})
	}

	return appartment, nil
}

// buildPhotos creates the photo records for a listing: position follows
// the order of appearance in the legacy photos table, the hash is nil
// when the source file has gone missing.
func (b ListingBuilder) buildPhotos(row legacy.Listing, photoRefs []legacy.PhotoRef) []entities.Photo {
	var result []entities.Photo
	position := 0
	for _, ref := range photoRefs {
		if ref.ListingID != row.ID {
			continue
		}
		result = append(result, entities.Photo{
			Filename:    filepath.Base(ref.Path),
			ContentType: "image/jpeg",
			Position:    position,
			Hash:        photos.Checksum(filepath.Join(b.DataDir, ref.Path)),
		})
		position++
	}
	return result
}

// renderDescription runs the whole content pipeline: BBCode to HTML
// with bare URLs linked, lines wrapped into a single paragraph, and
// finally an allowlist sanitization pass.
func renderDescription(description string) string {
	return bbcode.Sanitize(bbcode.Paragraphize(bbcode.ToHTML(description)))
}

// obsoleteCount parses the legacy obsolete-report counter, treating a
// malformed value as zero.
func obsoleteCount(row legacy.Listing) int {
	n, err := strconv.Atoi(row.ObsoleteCount)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func orZero(n *float64) float64 {
	if n == nil {
		return 0
	}
	return *n
}
