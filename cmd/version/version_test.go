package version

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCmdText(t *testing.T) {
	var out bytes.Buffer
	cmd := NewVersionCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Core Version: vunknown")
	assert.Contains(t, out.String(), "Platform: ")
}

func TestVersionCmdJSON(t *testing.T) {
	var out bytes.Buffer
	cmd := NewVersionCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--json"})

	require.NoError(t, cmd.Execute())

	var versions Versions
	require.NoError(t, json.Unmarshal(out.Bytes(), &versions))
	assert.Equal(t, CoreVersion, versions.Version)
	assert.NotEqual(t, "unknown", versions.GolangVersion)
}
