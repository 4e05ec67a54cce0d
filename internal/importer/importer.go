// Package importer migrates the predecessor site's data dumps into the
// current schema: owners become accounts, listings get sanitized
// descriptions, geocoded station snapshots and re-encoded photos.
package importer

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/ewen-lbh/loca7/internal/database"
	"github.com/ewen-lbh/loca7/internal/database/appartments"
	"github.com/ewen-lbh/loca7/internal/database/users"
	"github.com/ewen-lbh/loca7/internal/entities"
	"github.com/ewen-lbh/loca7/internal/geo"
	"github.com/ewen-lbh/loca7/internal/legacy"
	"github.com/ewen-lbh/loca7/internal/photos"
)

// preservedTables survive the destructive reset: accounts and session
// state are kept, everything else is truncated. Pending email and
// password tokens are not preserved: deleting their non-admin owners
// afterwards would trip foreign key enforcement.
var preservedTables = map[string]bool{
	"users":    true,
	"sessions": true,
}

// Options configures one import run.
type Options struct {
	// DataDir holds the legacy dumps (logements.json, photos.json) and
	// the photo upload tree.
	DataDir string
	// StopsPath is the static transit stop dataset.
	StopsPath string
	// PhotosDir is recreated empty and receives the materialized files.
	PhotosDir string
	// SummaryPath receives the created-users JSON report.
	SummaryPath string
	// MaxPhotoWidth and PhotoQuality parametrize re-encoding.
	MaxPhotoWidth int
	PhotoQuality  int
	// DryRun stops after parsing and resolution, before any write.
	DryRun bool
	// Verbose logs per-listing progress.
	Verbose bool
}

// Summary reports what an import run did.
type Summary struct {
	Users    int `json:"users"`
	Listings int `json:"listings"`
	Photos   int `json:"photos"`
}

// Importer runs the one-shot legacy migration.
type Importer struct {
	db          *database.Database
	users       *users.Repository
	appartments *appartments.Repository
	opts        Options
}

// New creates an importer over an open database.
func New(db *database.Database, opts Options) *Importer {
	return &Importer{
		db:          db,
		users:       users.NewRepository(db.DB),
		appartments: appartments.NewRepository(db.DB),
		opts:        opts,
	}
}

// Run executes the whole migration. It is destructive: every
// non-account table is emptied first. Failures during listing creation
// abort the run, leaving whatever was committed so far.
func (im *Importer) Run() (*Summary, error) {
	listings, photoRefs, err := im.loadDumps()
	if err != nil {
		return nil, err
	}

	stops, err := geo.LoadStops(im.opts.StopsPath)
	if err != nil {
		return nil, err
	}

	keys, groups := GroupByOwner(listings)

	if im.opts.DryRun {
		log.Printf("dry run: would create %d users for %d listings (%d photo records)",
			len(keys), len(listings), len(photoRefs))
		return &Summary{Users: len(keys), Listings: len(listings), Photos: len(photoRefs)}, nil
	}

	if err := im.reset(); err != nil {
		return nil, err
	}

	ghost, err := im.createGhost()
	if err != nil {
		return nil, err
	}

	builder := ListingBuilder{
		Stops:   stops,
		DataDir: im.opts.DataDir,
		GhostID: ghost.ID,
	}

	summary := &Summary{}
	createdUsers := make(map[string]*entities.User, len(keys))
	var createdListings []*entities.Appartment

	for _, key := range keys {
		group := groups[key]
		owner, err := im.createOwner(key, group[0])
		if err != nil {
			return nil, fmt.Errorf("failed to create user %s: %w", key, err)
		}
		createdUsers[owner.ID] = owner
		summary.Users++

		for _, row := range group {
			appartment, err := builder.Build(row, photoRefs, owner.ID)
			if err != nil {
				return nil, err
			}
			if err := im.appartments.Create(&appartment); err != nil {
				return nil, fmt.Errorf("failed to create listing #%s: %w", row.ID, err)
			}
			if im.opts.Verbose {
				log.Printf("created listing %s (#%d) for %s", appartment.Address, appartment.Number, owner.Email)
			}
			summary.Listings++
			summary.Photos += len(appartment.Photos)
			createdListings = append(createdListings, &appartment)
		}
	}

	if err := im.materialize(createdListings, photoRefs); err != nil {
		return nil, err
	}

	if err := im.writeUserReport(createdUsers); err != nil {
		return nil, err
	}

	log.Printf("created %d users, %d listings, and %d photos",
		summary.Users, summary.Listings, summary.Photos)
	return summary, nil
}

func (im *Importer) loadDumps() ([]legacy.Listing, []legacy.PhotoRef, error) {
	var listings []legacy.Listing
	if err := legacy.LoadTableDump(filepath.Join(im.opts.DataDir, "logements.json"), &listings); err != nil {
		return nil, nil, err
	}
	var photoRefs []legacy.PhotoRef
	if err := legacy.LoadTableDump(filepath.Join(im.opts.DataDir, "photos.json"), &photoRefs); err != nil {
		return nil, nil, err
	}
	return listings, photoRefs, nil
}

// reset empties every non-preserved table, removes non-admin accounts
// and recreates the photo output directory. Per-table truncation
// failures are logged and skipped: old deployments may carry tables
// this schema no longer knows about.
func (im *Importer) reset() error {
	tables, err := im.db.ListTables()
	if err != nil {
		return err
	}

	if err := im.db.SetForeignKeyChecks(false); err != nil {
		return err
	}
	for _, table := range tables {
		if preservedTables[table] || strings.HasPrefix(table, "backlite") {
			continue
		}
		if err := im.db.Truncate(table); err != nil {
			log.Printf("skipping table %s: %v", table, err)
		}
	}
	if err := im.db.SetForeignKeyChecks(true); err != nil {
		return err
	}

	if err := im.users.DeleteNonAdmins(); err != nil {
		return err
	}
	if err := im.splitAdminNames(); err != nil {
		return err
	}

	if err := os.RemoveAll(im.opts.PhotosDir); err != nil {
		return fmt.Errorf("failed to clear photos directory: %w", err)
	}
	if err := os.MkdirAll(im.opts.PhotosDir, 0o755); err != nil {
		return fmt.Errorf("failed to recreate photos directory: %w", err)
	}
	return nil
}

// splitAdminNames migrates admin accounts created before the schema
// had separate name fields: a first name holding "First Last" with an
// empty last name gets split.
func (im *Importer) splitAdminNames() error {
	admins, err := im.users.ListAdmins()
	if err != nil {
		return err
	}
	for _, admin := range admins {
		if admin.LastName != "" || !strings.Contains(admin.FirstName, " ") {
			continue
		}
		first, rest, _ := strings.Cut(admin.FirstName, " ")
		admin.FirstName = first
		admin.LastName = rest
		if err := im.users.Update(&admin); err != nil {
			return err
		}
	}
	return nil
}

func (im *Importer) createGhost() (*entities.User, error) {
	ghost := &entities.User{
		FirstName: "Ghost",
		Email:     "ghost@" + ghostEmailDomain,
	}
	if err := im.users.Create(ghost); err != nil {
		return nil, fmt.Errorf("failed to create ghost user: %w", err)
	}
	return ghost, nil
}

// createOwner builds the account for one owner group from its first
// listing's contact fields.
func (im *Importer) createOwner(email string, first legacy.Listing) (*entities.User, error) {
	agency := AgencyFromEmail(email)
	owner := &entities.User{
		Email:         email,
		FirstName:     PreventAllUppercase(strings.TrimSpace(first.ContactFirstName)),
		LastName:      PreventAllUppercase(strings.TrimSpace(first.ContactLastName)),
		Phone:         ContactPhone(first),
		AgencyName:    agency.Name,
		AgencyWebsite: agency.Website,
	}
	if err := im.users.Create(owner); err != nil {
		return nil, err
	}
	return owner, nil
}

// materialize is phase two of photo handling: now that records exist
// and carry generated ids, write the resized files. Missing sources are
// logged and skipped, the record stays (hash nil, no file).
func (im *Importer) materialize(listings []*entities.Appartment, photoRefs []legacy.PhotoRef) error {
	processor := photos.Processor{
		Dir:      im.opts.PhotosDir,
		MaxWidth: im.opts.MaxPhotoWidth,
		Quality:  im.opts.PhotoQuality,
	}

	sources := make(map[string]string, len(photoRefs))
	for _, ref := range photoRefs {
		sources[ref.ListingID+"/"+filepath.Base(ref.Path)] = filepath.Join(im.opts.DataDir, ref.Path)
	}

	for _, listing := range listings {
		legacyID := fmt.Sprintf("%d", listing.Number)
		for _, photo := range listing.Photos {
			source, ok := sources[legacyID+"/"+photo.Filename]
			if !ok {
				continue
			}
			if _, err := os.Stat(source); err != nil {
				log.Printf("skipping photo %s: source %s missing", photo.ID, source)
				continue
			}
			if err := processor.Materialize(photo, source); err != nil {
				return err
			}
		}
	}
	return nil
}

func (im *Importer) writeUserReport(created map[string]*entities.User) error {
	raw, err := json.MarshalIndent(created, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(im.opts.SummaryPath, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write user report: %w", err)
	}
	return nil
}
