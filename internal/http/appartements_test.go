package http

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ewen-lbh/loca7/internal/entities"
)

func seedListing(t *testing.T, st *serverTest, ownerID string, number int, mutate func(*entities.Appartment)) *entities.Appartment {
	t.Helper()
	appartment := &entities.Appartment{
		Number:   number,
		OwnerID:  ownerID,
		Rent:     500,
		Charges:  50,
		Surface:  30,
		Kind:     entities.KindT1,
		Address:  "2 rue Charles Camichel, Toulouse",
		Approved: true,
	}
	if mutate != nil {
		mutate(appartment)
	}
	require.NoError(t, st.appartments.Create(appartment))
	return appartment
}

type searchResponse struct {
	Appartements []entities.Appartment `json:"appartements"`
	Count        int                   `json:"count"`
}

func decodeSearch(t *testing.T, body []byte) searchResponse {
	t.Helper()
	var response searchResponse
	require.NoError(t, json.Unmarshal(body, &response))
	return response
}

func TestAppartementsController_Search(t *testing.T) {
	st, cleanup := setupServerTest(t)
	defer cleanup()

	owner := st.createUser(t, "owner@example.com", "s3cret-enough", false)
	seedListing(t, st, owner.ID, 1, nil)
	seedListing(t, st, owner.ID, 2, func(a *entities.Appartment) {
		a.Rent = 800
		a.Kind = entities.KindT2
		a.Surface = 55
	})
	seedListing(t, st, owner.ID, 3, func(a *entities.Appartment) { a.Approved = false })
	seedListing(t, st, owner.ID, 4, func(a *entities.Appartment) { a.Archived = true })

	t.Run("returns only live listings", func(t *testing.T) {
		w := st.do(t, http.MethodGet, "/appartements", nil, nil)
		require.Equal(t, http.StatusOK, w.Code)

		response := decodeSearch(t, w.Body.Bytes())
		assert.Equal(t, 2, response.Count)
	})

	t.Run("max rent includes charges", func(t *testing.T) {
		// Listing 1 costs 550 all-in, listing 2 costs 850.
		w := st.do(t, http.MethodGet, "/appartements?loyer_max=600", nil, nil)
		require.Equal(t, http.StatusOK, w.Code)

		response := decodeSearch(t, w.Body.Bytes())
		require.Equal(t, 1, response.Count)
		assert.Equal(t, 1, response.Appartements[0].Number)
	})

	t.Run("filters by kind", func(t *testing.T) {
		w := st.do(t, http.MethodGet, "/appartements?type=t2", nil, nil)
		require.Equal(t, http.StatusOK, w.Code)

		response := decodeSearch(t, w.Body.Bytes())
		require.Equal(t, 1, response.Count)
		assert.Equal(t, entities.KindT2, response.Appartements[0].Kind)
	})

	t.Run("rejects unknown kinds", func(t *testing.T) {
		w := st.do(t, http.MethodGet, "/appartements?type=castle", nil, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects malformed numbers", func(t *testing.T) {
		w := st.do(t, http.MethodGet, "/appartements?loyer_max=abc", nil, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAppartementsController_Show(t *testing.T) {
	st, cleanup := setupServerTest(t)
	defer cleanup()

	owner := st.createUser(t, "owner@example.com", "s3cret-enough", false)
	st.createUser(t, "admin@example.com", "admin-password", true)
	live := seedListing(t, st, owner.ID, 10, nil)
	pending := seedListing(t, st, owner.ID, 11, func(a *entities.Appartment) { a.Approved = false })

	t.Run("anyone sees a live listing", func(t *testing.T) {
		w := st.do(t, http.MethodGet, "/appartements/"+live.ID, nil, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("legacy numeric links keep working", func(t *testing.T) {
		w := st.do(t, http.MethodGet, "/appartements/10", nil, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var shown entities.Appartment
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &shown))
		assert.Equal(t, live.ID, shown.ID)
	})

	t.Run("pending listing looks missing to strangers", func(t *testing.T) {
		w := st.do(t, http.MethodGet, "/appartements/"+pending.ID, nil, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("pending listing is visible to its owner", func(t *testing.T) {
		cookies := st.login(t, "owner@example.com", "s3cret-enough")
		w := st.do(t, http.MethodGet, "/appartements/"+pending.ID, nil, cookies)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("pending listing is visible to admins", func(t *testing.T) {
		cookies := st.login(t, "admin@example.com", "admin-password")
		w := st.do(t, http.MethodGet, "/appartements/"+pending.ID, nil, cookies)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("unknown id is a 404", func(t *testing.T) {
		w := st.do(t, http.MethodGet, "/appartements/does-not-exist", nil, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestAppartementsController_ArchiveAndPublish(t *testing.T) {
	st, cleanup := setupServerTest(t)
	defer cleanup()

	owner := st.createUser(t, "owner@example.com", "s3cret-enough", false)
	stranger := st.createUser(t, "stranger@example.com", "s3cret-enough", false)
	st.createUser(t, "admin@example.com", "admin-password", true)
	_ = stranger

	listing := seedListing(t, st, owner.ID, 20, nil)

	t.Run("archiving requires a session", func(t *testing.T) {
		w := st.do(t, http.MethodPost, "/appartements/"+listing.ID+"/archiver", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("strangers cannot archive", func(t *testing.T) {
		cookies := st.login(t, "stranger@example.com", "s3cret-enough")
		w := st.do(t, http.MethodPost, "/appartements/"+listing.ID+"/archiver", nil, cookies)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("owner archives own listing", func(t *testing.T) {
		cookies := st.login(t, "owner@example.com", "s3cret-enough")
		w := st.do(t, http.MethodPost, "/appartements/"+listing.ID+"/archiver", nil, cookies)
		require.Equal(t, http.StatusOK, w.Code)

		refreshed, err := st.appartments.GetByID(listing.ID)
		require.NoError(t, err)
		assert.True(t, refreshed.Archived)
	})

	t.Run("owner republishing keeps approval state", func(t *testing.T) {
		require.NoError(t, st.appartments.SetApproved(listing.ID, false))

		cookies := st.login(t, "owner@example.com", "s3cret-enough")
		w := st.do(t, http.MethodPost, "/appartements/"+listing.ID+"/publier", nil, cookies)
		require.Equal(t, http.StatusOK, w.Code)

		refreshed, err := st.appartments.GetByID(listing.ID)
		require.NoError(t, err)
		assert.False(t, refreshed.Archived)
		assert.False(t, refreshed.Approved, "owner publish must not bypass moderation")
	})

	t.Run("admin publishing approves directly", func(t *testing.T) {
		require.NoError(t, st.appartments.SetArchived(listing.ID, true))

		cookies := st.login(t, "admin@example.com", "admin-password")
		w := st.do(t, http.MethodPost, "/appartements/"+listing.ID+"/publier", nil, cookies)
		require.Equal(t, http.StatusOK, w.Code)

		refreshed, err := st.appartments.GetByID(listing.ID)
		require.NoError(t, err)
		assert.False(t, refreshed.Archived)
		assert.True(t, refreshed.Approved)
	})
}

func TestAppartementsController_Approve(t *testing.T) {
	st, cleanup := setupServerTest(t)
	defer cleanup()

	owner := st.createUser(t, "owner@example.com", "s3cret-enough", false)
	st.createUser(t, "admin@example.com", "admin-password", true)
	pending := seedListing(t, st, owner.ID, 30, func(a *entities.Appartment) { a.Approved = false })

	t.Run("owners cannot approve their own listing", func(t *testing.T) {
		cookies := st.login(t, "owner@example.com", "s3cret-enough")
		w := st.do(t, http.MethodPost, "/appartements/"+pending.ID+"/approuver", nil, cookies)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("admins approve", func(t *testing.T) {
		cookies := st.login(t, "admin@example.com", "admin-password")
		w := st.do(t, http.MethodPost, "/appartements/"+pending.ID+"/approuver", nil, cookies)
		require.Equal(t, http.StatusOK, w.Code)

		refreshed, err := st.appartments.GetByID(pending.ID)
		require.NoError(t, err)
		assert.True(t, refreshed.Approved)
	})
}

func TestAppartementsController_Report(t *testing.T) {
	st, cleanup := setupServerTest(t)
	defer cleanup()

	owner := st.createUser(t, "owner@example.com", "s3cret-enough", false)
	reporter := st.createUser(t, "reporter@example.com", "s3cret-enough", false)
	listing := seedListing(t, st, owner.ID, 40, nil)

	t.Run("requires a session", func(t *testing.T) {
		w := st.do(t, http.MethodPost, "/appartements/"+listing.ID+"/signaler", gin.H{
			"reason": "obsolete",
		}, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("files a report", func(t *testing.T) {
		cookies := st.login(t, "reporter@example.com", "s3cret-enough")
		w := st.do(t, http.MethodPost, "/appartements/"+listing.ID+"/signaler", gin.H{
			"reason":  "obsolete",
			"message": "Déjà loué depuis mars.",
		}, cookies)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		refreshed, err := st.appartments.GetByID(listing.ID)
		require.NoError(t, err)
		require.Len(t, refreshed.Reports, 1)
		assert.Equal(t, entities.ReportReasonObsolete, refreshed.Reports[0].Reason)
		assert.Equal(t, reporter.ID, refreshed.Reports[0].AuthorID)
	})

	t.Run("rejects unknown reasons", func(t *testing.T) {
		cookies := st.login(t, "reporter@example.com", "s3cret-enough")
		w := st.do(t, http.MethodPost, "/appartements/"+listing.ID+"/signaler", gin.H{
			"reason": "ugly",
		}, cookies)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAppartementsController_Likes(t *testing.T) {
	st, cleanup := setupServerTest(t)
	defer cleanup()

	owner := st.createUser(t, "owner@example.com", "s3cret-enough", false)
	fan := st.createUser(t, "fan@example.com", "s3cret-enough", false)
	listing := seedListing(t, st, owner.ID, 50, nil)

	cookies := st.login(t, "fan@example.com", "s3cret-enough")

	w := st.do(t, http.MethodPost, "/appartements/"+listing.ID+"/aimer", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)

	likers, err := st.appartments.Likers(listing.ID)
	require.NoError(t, err)
	require.Len(t, likers, 1)
	assert.Equal(t, fan.Email, likers[0].Email)

	w = st.do(t, http.MethodDelete, "/appartements/"+listing.ID+"/aimer", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)

	likers, err = st.appartments.Likers(listing.ID)
	require.NoError(t, err)
	assert.Empty(t, likers)
}

func TestAppartementsController_Mine(t *testing.T) {
	st, cleanup := setupServerTest(t)
	defer cleanup()

	owner := st.createUser(t, "owner@example.com", "s3cret-enough", false)
	other := st.createUser(t, "other@example.com", "s3cret-enough", false)
	seedListing(t, st, owner.ID, 60, nil)
	seedListing(t, st, owner.ID, 61, func(a *entities.Appartment) { a.Archived = true })
	seedListing(t, st, other.ID, 62, nil)

	cookies := st.login(t, "owner@example.com", "s3cret-enough")
	w := st.do(t, http.MethodGet, "/mes-annonces", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)

	response := decodeSearch(t, w.Body.Bytes())
	assert.Equal(t, 2, response.Count, "archived listings stay visible to their owner")
}

func TestAppartementsController_PendingApproval(t *testing.T) {
	st, cleanup := setupServerTest(t)
	defer cleanup()

	owner := st.createUser(t, "owner@example.com", "s3cret-enough", false)
	st.createUser(t, "admin@example.com", "admin-password", true)
	seedListing(t, st, owner.ID, 70, nil)
	seedListing(t, st, owner.ID, 71, func(a *entities.Appartment) { a.Approved = false })

	cookies := st.login(t, "admin@example.com", "admin-password")
	w := st.do(t, http.MethodGet, "/admin/annonces", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)

	response := decodeSearch(t, w.Body.Bytes())
	require.Equal(t, 1, response.Count)
	assert.Equal(t, 71, response.Appartements[0].Number)
}
