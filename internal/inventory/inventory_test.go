package inventory

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sshfan/internal/hostdir"
)

func TestMergeRegistersEntriesInOrder(t *testing.T) {
	dir := hostdir.New()

	err := Merge(strings.NewReader(`
hosts:
  - alias: web_1
    user: deploy
  - alias: web_2
    user: deploy
  - alias: bastion
`), dir)
	require.NoError(t, err)

	assert.Equal(t, []string{"web_1", "web_2"}, dir.Resolve("web"))

	user, ok := dir.UserFor("web_1")
	require.True(t, ok)
	assert.Equal(t, "deploy", user)

	// Entries without a user behave like Host lines without a User line.
	_, ok = dir.UserFor("bastion")
	assert.False(t, ok)
}

func TestMergeIntoExistingDirectory(t *testing.T) {
	dir := hostdir.New()
	dir.Parse(strings.NewReader(`
Host alpha
	User u1
`))

	err := Merge(strings.NewReader(`
hosts:
  - alias: beta
    user: u2
`), dir)
	require.NoError(t, err)

	assert.Equal(t, 2, dir.Len())
	user, _ := dir.UserFor("beta")
	assert.Equal(t, "u2", user)
}

func TestMergeRejectsEntryWithoutAlias(t *testing.T) {
	err := Merge(strings.NewReader(`
hosts:
  - user: nobody
`), hostdir.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "without alias")
}

func TestMergeRejectsMalformedYAML(t *testing.T) {
	err := Merge(strings.NewReader("hosts: [whoops"), hostdir.New())
	require.Error(t, err)
}

func TestMergeFileMissing(t *testing.T) {
	err := MergeFile(filepath.Join(t.TempDir(), "nope.yaml"), hostdir.New())
	require.Error(t, err)
}

func TestMergeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
hosts:
  - alias: db_1
    user: postgres
`), 0o600))

	dir := hostdir.New()
	require.NoError(t, MergeFile(path, dir))

	user, ok := dir.UserFor("db_1")
	require.True(t, ok)
	assert.Equal(t, "postgres", user)
}
