package version

import (
	"encoding/json"
	"regexp"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersion_IsSemverOrDev(t *testing.T) {
	require.NotEmpty(t, Version)

	if Version == "dev" {
		return
	}
	assert.Regexp(t, regexp.MustCompile(`^\d+\.\d+\.\d+(-[a-zA-Z0-9.]+)?$`), Version)
}

func TestString_ContainsAllBuildInfo(t *testing.T) {
	banner := String()

	assert.Contains(t, banner, "cosim")
	assert.Contains(t, banner, Version)
	assert.Contains(t, banner, "commit")
	assert.Contains(t, banner, "go")
}

func TestShort_ReturnsBareVersion(t *testing.T) {
	assert.Equal(t, Version, Short())
}

func TestGetInfo_MirrorsPackageState(t *testing.T) {
	info := GetInfo()

	assert.Equal(t, Version, info.Version)
	assert.Equal(t, Commit, info.Commit)
	assert.Equal(t, Date, info.Date)
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, runtime.GOOS, info.OS)
	assert.Equal(t, runtime.GOARCH, info.Arch)
}

func TestGetInfo_MarshalsWithSnakeCaseKeys(t *testing.T) {
	data, err := json.Marshal(GetInfo())
	require.NoError(t, err)

	var parsed map[string]string
	require.NoError(t, json.Unmarshal(data, &parsed))

	for _, key := range []string{"version", "commit", "date", "go_version", "os", "arch"} {
		assert.Contains(t, parsed, key)
	}
}
