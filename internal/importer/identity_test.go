package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ewen-lbh/loca7/internal/legacy"
)

func TestFixEmailTypos(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"proprio@gmail.com", "proprio@gmail.com"},
		{"proprio@glail.com", "proprio@gmail.com"},
		{"proprio@0range.fr", "proprio@orange.fr"},
		{"proprio@9ibline.fr", "proprio@9online.fr"},
		{"proprio@9online.fr", "proprio@9online.fr"},
		{"proprio@free.fr", "proprio@free.fr"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, FixEmailTypos(tt.input))
		})
	}
}

func TestGhostEmail(t *testing.T) {
	email := GhostEmail("Jean-Pierre", "DUPRÉ", "a1b2c3")

	assert.Equal(t, "ghost-jean-pierre-dupre-a1b2c3@loca7.fr", email)
	assert.True(t, IsGhostEmail(email))

	t.Run("deterministic", func(t *testing.T) {
		assert.Equal(t, email, GhostEmail("Jean-Pierre", "DUPRÉ", "a1b2c3"))
	})

	t.Run("missing names still produce an address", func(t *testing.T) {
		email := GhostEmail("", "", "xyz")
		assert.Equal(t, "ghost-xyz@loca7.fr", email)
		assert.True(t, IsGhostEmail(email))
	})
}

func TestIsGhostEmail(t *testing.T) {
	assert.True(t, IsGhostEmail("ghost@loca7.fr"))
	assert.False(t, IsGhostEmail("jean.dupont@gmail.com"))
	assert.False(t, IsGhostEmail("ghost-impersonator@gmail.com"))
}

func TestOwnerKey(t *testing.T) {
	t.Run("normalizes the contact email", func(t *testing.T) {
		key := OwnerKey(legacy.Listing{ContactEmail: "  Jean.Dupont@GLAIL.COM "})
		assert.Equal(t, "jean.dupont@gmail.com", key)
	})

	t.Run("falls back to a ghost address", func(t *testing.T) {
		key := OwnerKey(legacy.Listing{
			ContactFirstName: "Marie",
			ContactLastName:  "Curie",
			OwnerUUID:        "u-42",
		})
		assert.Equal(t, "ghost-marie-curie-u-42@loca7.fr", key)
	})
}

func TestGroupByOwner(t *testing.T) {
	listings := []legacy.Listing{
		{ID: "1", ContactEmail: "b@example.com"},
		{ID: "2", ContactEmail: "a@example.com"},
		{ID: "3", ContactEmail: "B@example.com "},
	}

	keys, groups := GroupByOwner(listings)

	require.Equal(t, []string{"a@example.com", "b@example.com"}, keys)
	assert.Len(t, groups["b@example.com"], 2)
	assert.Len(t, groups["a@example.com"], 1)
}

func TestPreventAllUppercase(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"all caps", "DUPONT", "Dupont"},
		{"all caps with hyphen", "JEAN-PIERRE", "Jean Pierre"},
		{"mixed case untouched", "McGregor", "McGregor"},
		{"already title case", "Dupont", "Dupont"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, PreventAllUppercase(tt.input))
		})
	}
}

func TestAgencyFromEmail(t *testing.T) {
	agency := AgencyFromEmail("contact@eraimmo.fr")
	assert.Equal(t, "ERA", agency.Name)
	assert.Equal(t, "era-immobilier-midi-pyrenees.fr", agency.Website)

	t.Run("private owners have no agency", func(t *testing.T) {
		assert.Zero(t, AgencyFromEmail("jean@gmail.com"))
	})

	t.Run("malformed email", func(t *testing.T) {
		assert.Zero(t, AgencyFromEmail("not-an-email"))
	})
}

func TestContactPhone(t *testing.T) {
	assert.Equal(t, "0612345678", ContactPhone(legacy.Listing{
		ContactMobile: " 0612345678 ",
		ContactPhone:  "0561234567",
	}))
	assert.Equal(t, "0561234567", ContactPhone(legacy.Listing{
		ContactPhone: "0561234567",
	}))
}
