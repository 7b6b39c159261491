package rulewatcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asila/asila/internal/domain/entities"
	"github.com/asila/asila/internal/domain/usecases"
)

const rulesYAML = `
departments:
  - department: electricity
    keywords: ["power", "outage"]
tenants:
  electricity: custom-electricity-tenant
default_tenant: custom-default
`

func writeRules(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFile_OverridesGivenFields(t *testing.T) {
	path := writeRules(t, t.TempDir(), rulesYAML)

	rules, err := LoadFile(path)
	require.NoError(t, err)

	require.Len(t, rules.Departments, 1)
	assert.Equal(t, entities.DepartmentElectricity, rules.Departments[0].Department)
	assert.Equal(t, "custom-electricity-tenant", rules.TenantByDepartment[entities.DepartmentElectricity])
	assert.Equal(t, "custom-default", rules.DefaultTenantID)

	// Fields absent from the file keep their defaults.
	assert.Equal(t, usecases.DefaultRules().ForbiddenPhrases, rules.ForbiddenPhrases)
	assert.Equal(t, usecases.DefaultRules().RefusalMessage, rules.RefusalMessage)
}

func TestLoadFile_MissingFile(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadFile_InvalidYAML(t *testing.T) {
	path := writeRules(t, t.TempDir(), "departments: [unclosed")
	_, err := LoadFile(path)
	assert.Error(t, err)
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := writeRules(t, dir, rulesYAML)

	source := usecases.NewRuleSource(nil)
	watcher, err := New(path, source)
	require.NoError(t, err)
	defer watcher.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	go watcher.Watch(ctx)

	time.Sleep(100 * time.Millisecond)
	updated := rulesYAML + `refusal_message: "Updated refusal."` + "\n"
	require.NoError(t, os.WriteFile(path, []byte(updated), 0644))

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if source.Rules().RefusalMessage == "Updated refusal." {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("rules were not reloaded after file write")
}

func TestWatcher_KeepsOldRulesOnBadFile(t *testing.T) {
	dir := t.TempDir()
	path := writeRules(t, dir, rulesYAML)

	seed, err := LoadFile(path)
	require.NoError(t, err)
	source := usecases.NewRuleSource(seed)

	watcher, err := New(path, source)
	require.NoError(t, err)
	defer watcher.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	go watcher.Watch(ctx)

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("departments: [unclosed"), 0644))
	time.Sleep(300 * time.Millisecond)

	assert.Equal(t, "custom-default", source.Rules().DefaultTenantID)
}
