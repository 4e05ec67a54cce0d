package appartments

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ewen-lbh/loca7/internal/entities"
)

func setupTestDB(t *testing.T) (*Repository, func()) {
	dbPath := "./test_appartments_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&entities.User{},
		&entities.Appartment{},
		&entities.Photo{},
		&entities.PublicTransportStation{},
		&entities.TravelTimeToSchool{},
		&entities.AppartmentLike{},
		&entities.Report{},
	)
	require.NoError(t, err)

	repo := NewRepository(db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return repo, cleanup
}

func ptr[T any](v T) *T { return &v }

func liveListing(number int) *entities.Appartment {
	return &entities.Appartment{
		Number:    number,
		Rent:      500,
		Charges:   50,
		Surface:   30,
		Kind:      entities.KindT1,
		Approved:  true,
		Archived:  false,
		UpdatedAt: time.Now(),
	}
}

func TestRepository_CreateWithChildren(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	appartment := liveListing(1)
	appartment.Photos = []entities.Photo{
		{Filename: "b.jpg", Position: 1},
		{Filename: "a.jpg", Position: 0},
	}
	appartment.NearbyStations = []entities.PublicTransportStation{
		{Name: "Camichel", Line: "B", Type: entities.TransportMetro},
	}
	appartment.TravelTimeToSchool = &entities.TravelTimeToSchool{}

	require.NoError(t, repo.Create(appartment))
	require.NotEmpty(t, appartment.ID)

	found, err := repo.GetByID(appartment.ID)

	require.NoError(t, err)
	require.Len(t, found.Photos, 2)
	assert.Equal(t, "a.jpg", found.Photos[0].Filename) // ordered by position
	require.Len(t, found.NearbyStations, 1)
	require.NotNil(t, found.TravelTimeToSchool)
	assert.Nil(t, found.TravelTimeToSchool.ByFoot)
}

func TestRepository_GetByNumber(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	appartment := liveListing(42)
	require.NoError(t, repo.Create(appartment))

	found, err := repo.GetByNumber(42)

	require.NoError(t, err)
	assert.Equal(t, appartment.ID, found.ID)

	_, err = repo.GetByNumber(999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepository_Search(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	cheap := liveListing(1)
	cheap.Rent, cheap.Charges = 400, 20
	require.NoError(t, repo.Create(cheap))

	expensive := liveListing(2)
	expensive.Rent, expensive.Charges = 900, 100
	require.NoError(t, repo.Create(expensive))

	pending := liveListing(3)
	pending.Approved = false
	require.NoError(t, repo.Create(pending))

	archived := liveListing(4)
	archived.Archived = true
	require.NoError(t, repo.Create(archived))

	t.Run("only live listings", func(t *testing.T) {
		results, err := repo.Search(SearchCriteria{})
		require.NoError(t, err)
		assert.Len(t, results, 2)
	})

	t.Run("max rent includes charges", func(t *testing.T) {
		results, err := repo.Search(SearchCriteria{MaxRent: ptr(500.0)})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, cheap.ID, results[0].ID)
	})

	t.Run("kind filter", func(t *testing.T) {
		results, err := repo.Search(SearchCriteria{Kinds: []entities.AppartmentKind{entities.KindT2}})
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}

func TestRepository_SearchAmenityFilters(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	furnished := liveListing(1)
	furnished.HasFurniture = ptr(true)
	require.NoError(t, repo.Create(furnished))

	unknown := liveListing(2)
	require.NoError(t, repo.Create(unknown))

	results, err := repo.Search(SearchCriteria{HasFurniture: ptr(true)})

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, furnished.ID, results[0].ID)
}

func TestRepository_ApprovalAndArchival(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	appartment := liveListing(1)
	appartment.Approved = false
	require.NoError(t, repo.Create(appartment))

	pending, err := repo.ListPendingApproval()
	require.NoError(t, err)
	require.Len(t, pending, 1)

	require.NoError(t, repo.SetApproved(appartment.ID, true))
	require.NoError(t, repo.SetArchived(appartment.ID, true))

	found, err := repo.GetByID(appartment.ID)
	require.NoError(t, err)
	assert.True(t, found.Approved)
	assert.True(t, found.Archived)

	t.Run("unknown id fails", func(t *testing.T) {
		assert.ErrorIs(t, repo.SetApproved("nope", true), gorm.ErrRecordNotFound)
	})
}

func TestRepository_Likes(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	appartment := liveListing(1)
	require.NoError(t, repo.Create(appartment))

	user := entities.User{Email: "fan@example.com"}
	require.NoError(t, repo.db.Create(&user).Error)

	require.NoError(t, repo.Like(appartment.ID, user.ID))
	require.NoError(t, repo.Like(appartment.ID, user.ID)) // idempotent

	likers, err := repo.Likers(appartment.ID)
	require.NoError(t, err)
	require.Len(t, likers, 1)
	assert.Equal(t, "fan@example.com", likers[0].Email)

	require.NoError(t, repo.Unlike(appartment.ID, user.ID))
	likers, err = repo.Likers(appartment.ID)
	require.NoError(t, err)
	assert.Empty(t, likers)
}

func TestRepository_ListStale(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	old := liveListing(1)
	old.UpdatedAt = time.Now().Add(-100 * 24 * time.Hour)
	require.NoError(t, repo.Create(old))

	fresh := liveListing(2)
	require.NoError(t, repo.Create(fresh))

	stale, err := repo.ListStale(time.Now().Add(-90 * 24 * time.Hour))

	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, old.ID, stale[0].ID)
}
