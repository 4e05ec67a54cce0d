package mailer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ewen-lbh/loca7/internal/config"
)

func setupTemplates(t *testing.T) *Mailer {
	t.Helper()
	dir := t.TempDir()

	layout := `<html><head><title>{{.Title}}</title></head><body>%content%</body></html>`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "_layout.html"), []byte(layout), 0o644))

	welcome := `<p>Bonjour {{.Name}}, votre annonce {{.ListingTitle}} est en ligne.</p>`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "announcement-published.html"), []byte(welcome), 0o644))

	return New(config.Mail{TemplatesDir: dir})
}

func TestRender(t *testing.T) {
	m := setupTemplates(t)

	body, err := m.render("announcement-published", "Annonce en ligne", map[string]any{
		"Name":         "Jean",
		"ListingTitle": "T2 de 40m² à 600€/mois",
	})

	require.NoError(t, err)
	assert.Contains(t, body, "<title>Annonce en ligne</title>")
	assert.Contains(t, body, "Bonjour Jean")
	assert.Contains(t, body, "T2 de 40m² à 600€/mois")
}

func TestRender_UnknownTemplate(t *testing.T) {
	m := setupTemplates(t)

	_, err := m.render("does-not-exist", "t", nil)

	require.Error(t, err)
}

func TestRenderString(t *testing.T) {
	subject, err := renderString("Votre annonce {{.Title}} expire bientôt", map[string]any{
		"Title": "Studio",
	})

	require.NoError(t, err)
	assert.Equal(t, "Votre annonce Studio expire bientôt", subject)
}
