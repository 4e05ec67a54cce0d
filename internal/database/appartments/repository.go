// Package appartments provides database operations for housing
// listings and their nested photos, stations, reports and likes.
package appartments

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/ewen-lbh/loca7/internal/entities"
)

// SearchCriteria narrows the public listing search. Nil pointers mean
// "no constraint"; amenity filters are ternary like the flags they
// match against.
type SearchCriteria struct {
	MaxRent      *float64
	MinSurface   *float64
	MinRooms     *int
	Kinds        []entities.AppartmentKind
	HasFurniture *bool
	HasParking   *bool
}

// Repository handles all listing database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new appartments repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a listing and its nested children in one transaction.
func (r *Repository) Create(appartment *entities.Appartment) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(appartment).Error
	})
}

// Update saves changes to an existing listing.
func (r *Repository) Update(appartment *entities.Appartment) error {
	return r.db.Save(appartment).Error
}

func (r *Repository) preloaded() *gorm.DB {
	return r.db.
		Preload("Photos", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("NearbyStations").
		Preload("Reports").
		Preload("TravelTimeToSchool").
		Preload("Owner")
}

// GetByID retrieves a listing with all its children.
func (r *Repository) GetByID(id string) (*entities.Appartment, error) {
	var appartment entities.Appartment
	err := r.preloaded().First(&appartment, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &appartment, nil
}

// GetByNumber retrieves a listing by its legacy sequence number, kept
// so old bookmarked URLs keep working.
func (r *Repository) GetByNumber(number int) (*entities.Appartment, error) {
	var appartment entities.Appartment
	err := r.preloaded().First(&appartment, "number = ?", number).Error
	if err != nil {
		return nil, err
	}
	return &appartment, nil
}

// Search returns approved, non-archived listings matching the criteria,
// most recently updated first.
func (r *Repository) Search(criteria SearchCriteria) ([]entities.Appartment, error) {
	query := r.preloaded().
		Where("approved = ? AND archived = ?", true, false).
		Order("updated_at DESC")

	if criteria.MaxRent != nil {
		query = query.Where("rent + charges <= ?", *criteria.MaxRent)
	}
	if criteria.MinSurface != nil {
		query = query.Where("surface >= ?", *criteria.MinSurface)
	}
	if criteria.MinRooms != nil {
		query = query.Where("rooms_count >= ?", *criteria.MinRooms)
	}
	if len(criteria.Kinds) > 0 {
		query = query.Where("kind IN ?", criteria.Kinds)
	}
	if criteria.HasFurniture != nil {
		query = query.Where("has_furniture = ?", *criteria.HasFurniture)
	}
	if criteria.HasParking != nil {
		query = query.Where("has_parking = ?", *criteria.HasParking)
	}

	var results []entities.Appartment
	err := query.Find(&results).Error
	return results, err
}

// ListByOwner returns every listing of one owner, archived included.
func (r *Repository) ListByOwner(ownerID string) ([]entities.Appartment, error) {
	var results []entities.Appartment
	err := r.preloaded().Where("owner_id = ?", ownerID).Order("updated_at DESC").Find(&results).Error
	return results, err
}

// ListPendingApproval returns listings awaiting moderation.
func (r *Repository) ListPendingApproval() ([]entities.Appartment, error) {
	var results []entities.Appartment
	err := r.preloaded().
		Where("approved = ? AND archived = ?", false, false).
		Order("created_at ASC").
		Find(&results).Error
	return results, err
}

// SetArchived flips the archived flag.
func (r *Repository) SetArchived(id string, archived bool) error {
	return r.setFlag(id, "archived", archived)
}

// SetApproved flips the approved flag.
func (r *Repository) SetApproved(id string, approved bool) error {
	return r.setFlag(id, "approved", approved)
}

func (r *Repository) setFlag(id, column string, value bool) error {
	result := r.db.Model(&entities.Appartment{}).Where("id = ?", id).Update(column, value)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CreateReport files a complaint against a listing.
func (r *Repository) CreateReport(report *entities.Report) error {
	return r.db.Create(report).Error
}

// Like marks a listing as saved by a user. Liking twice is a no-op.
func (r *Repository) Like(appartmentID, userID string) error {
	var existing entities.AppartmentLike
	err := r.db.Where("appartment_id = ? AND user_id = ?", appartmentID, userID).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return r.db.Create(&entities.AppartmentLike{AppartmentID: appartmentID, UserID: userID}).Error
}

// Unlike removes a saved-listing mark.
func (r *Repository) Unlike(appartmentID, userID string) error {
	return r.db.
		Where("appartment_id = ? AND user_id = ?", appartmentID, userID).
		Delete(&entities.AppartmentLike{}).Error
}

// Likers returns the users who saved the listing.
func (r *Repository) Likers(appartmentID string) ([]entities.User, error) {
	var users []entities.User
	err := r.db.
		Joins("JOIN appartment_likes ON appartment_likes.user_id = users.id").
		Where("appartment_likes.appartment_id = ?", appartmentID).
		Find(&users).Error
	return users, err
}

// ListStale returns live listings whose last update is older than the
// cutoff, used by the scheduled auto-archiver.
func (r *Repository) ListStale(cutoff time.Time) ([]entities.Appartment, error) {
	var results []entities.Appartment
	err := r.preloaded().
		Where("approved = ? AND archived = ? AND updated_at < ?", true, false, cutoff).
		Find(&results).Error
	return results, err
}
