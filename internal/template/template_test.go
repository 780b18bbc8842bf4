package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsTemplate(t *testing.T) {
	assert.True(t, IsTemplate("echo {{.Host}}"))
	assert.False(t, IsTemplate("echo plain"))
	assert.False(t, IsTemplate("echo {{unclosed"))
}

func TestExpandHostAndUser(t *testing.T) {
	out, err := Expand("scp backup.tgz {{.User}}@{{.Host}}:/tmp", Context{Host: "web_1", User: "deploy"})
	require.NoError(t, err)
	assert.Equal(t, "scp backup.tgz deploy@web_1:/tmp", out)
}

func TestExpandFuncs(t *testing.T) {
	out, err := Expand("echo {{upper .Host}} {{lower .User}} {{title .Host}}", Context{Host: "web", User: "DEPLOY"})
	require.NoError(t, err)
	assert.Equal(t, "echo WEB deploy Web", out)
}

func TestExpandParseError(t *testing.T) {
	_, err := Expand("echo {{.Host", Context{Host: "web"})
	require.Error(t, err)
}

func TestExpandUnknownField(t *testing.T) {
	_, err := Expand("echo {{.Port}}", Context{Host: "web"})
	require.Error(t, err)
}
