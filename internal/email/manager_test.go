package email

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saas-foundation/saas-foundation/internal/config"
)

func TestUnconfiguredManager(t *testing.T) {
	m := NewManager(config.SMTP{})

	assert.False(t, m.Configured())
	assert.ErrorIs(t, m.Send("someone@example.com", "hi", "<p>hi</p>"), ErrNotConfigured)
}

func TestRenderTemplate(t *testing.T) {
	dir := t.TempDir()
	template := filepath.Join(dir, "reset_password.html")
	require.NoError(t, os.WriteFile(template, []byte("<p>Hello {{.Username}}</p>"), 0o600))

	m := NewManager(config.SMTP{TemplateDir: dir})

	body, err := m.Render("reset_password", map[string]string{"Username": "alice"})
	require.NoError(t, err)
	assert.Equal(t, "<p>Hello alice</p>", body)

	_, err = m.Render("missing", nil)
	assert.Error(t, err)
}

func TestRenderWithoutTemplateDir(t *testing.T) {
	m := NewManager(config.SMTP{})

	_, err := m.Render("reset_password", nil)
	assert.Error(t, err)
}

func TestSendTemplateUnconfigured(t *testing.T) {
	dir := t.TempDir()
	template := filepath.Join(dir, "welcome.html")
	require.NoError(t, os.WriteFile(template, []byte("<p>Welcome</p>"), 0o600))

	m := NewManager(config.SMTP{TemplateDir: dir})

	err := m.SendTemplate("someone@example.com", "welcome", "welcome", nil)
	assert.ErrorIs(t, err, ErrNotConfigured)
}
