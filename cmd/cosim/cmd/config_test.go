package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metehan777/cosine-similarity-aio/internal/config"
)

func TestConfigInitCmd_CreatesFile(t *testing.T) {
	// Given: a home directory without a user config
	isolateEnv(t)

	// When: running config init
	out, err := runRoot(t, "", "config", "init")

	// Then: the template is written under ~/.config/cosim
	require.NoError(t, err)
	assert.Contains(t, out, "Created user configuration")
	assert.Contains(t, out, "cosim config show")

	data, readErr := os.ReadFile(config.GetUserConfigPath())
	require.NoError(t, readErr)
	assert.Contains(t, string(data), "cosim user configuration")
}

func TestConfigInitCmd_SecondRunWithoutForce(t *testing.T) {
	isolateEnv(t)
	_, err := runRoot(t, "", "config", "init")
	require.NoError(t, err)

	out, err := runRoot(t, "", "config", "init")

	require.NoError(t, err)
	assert.Contains(t, out, "User configuration already exists")
	assert.Contains(t, out, "Use --force to upgrade")
}

func TestConfigInitCmd_ForceUpgrades(t *testing.T) {
	// Given: an existing config from the template, which leaves the
	// download timeout and picker section to their defaults
	isolateEnv(t)
	_, err := runRoot(t, "", "config", "init")
	require.NoError(t, err)

	// When: re-running init with --force
	out, err := runRoot(t, "", "config", "init", "--force")

	// Then: the config is backed up and the absent fields are filled in
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration upgraded")
	assert.Contains(t, out, "Backup:")
	assert.Contains(t, out, "New options added with defaults:")
	assert.Contains(t, out, "embedder.model_download_timeout")
	assert.Contains(t, out, "picker.height")

	backups, globErr := filepath.Glob(config.GetUserConfigPath() + ".bak.*")
	require.NoError(t, globErr)
	assert.Len(t, backups, 1)
}

func TestConfigPathCmd(t *testing.T) {
	isolateEnv(t)

	out, err := runRoot(t, "", "config", "path")

	require.NoError(t, err)
	assert.Equal(t, config.GetUserConfigPath()+"\n", out)
}

func TestConfigShowCmd_Defaults(t *testing.T) {
	isolateEnv(t)

	out, err := runRoot(t, "", "config", "show", "--source", "defaults")

	require.NoError(t, err)
	assert.Contains(t, out, "Configuration source: defaults (hardcoded)")
	assert.Contains(t, out, "embedder:")
	assert.Contains(t, out, "timeout_secs: 60")
	assert.Contains(t, out, "picker:")
}

func TestConfigShowCmd_JSON(t *testing.T) {
	isolateEnv(t)

	out, err := runRoot(t, "", "config", "show", "--source", "defaults", "--json")

	require.NoError(t, err)
	var cfg config.Config
	require.NoError(t, json.Unmarshal([]byte(out), &cfg))
	assert.Equal(t, 1, cfg.Version)
	assert.Equal(t, 60, cfg.Embedder.TimeoutSecs)
}

func TestConfigShowCmd_Merged(t *testing.T) {
	// Given: an env override on top of the defaults
	isolateEnv(t)
	t.Setenv("COSIM_EMBEDDER", "static")

	// When: showing the merged view
	out, err := runRoot(t, "", "config", "show")

	// Then: the env layer wins
	require.NoError(t, err)
	assert.Contains(t, out, "merged (defaults + user + project + env)")
	assert.Contains(t, out, "provider: static")
}

func TestConfigShowCmd_UserMissing(t *testing.T) {
	isolateEnv(t)

	out, err := runRoot(t, "", "config", "show", "--source", "user")

	require.NoError(t, err)
	assert.Contains(t, out, "No user configuration file found")
	assert.Contains(t, out, "Run 'cosim config init' to create one")
}

func TestConfigShowCmd_UserAfterInit(t *testing.T) {
	isolateEnv(t)
	_, err := runRoot(t, "", "config", "init")
	require.NoError(t, err)

	out, err := runRoot(t, "", "config", "show", "--source", "user")

	require.NoError(t, err)
	assert.Contains(t, out, "Configuration source: user (")
	assert.Contains(t, out, "level: info")
}

func TestConfigShowCmd_ProjectMissing(t *testing.T) {
	isolateEnv(t)

	out, err := runRoot(t, "", "config", "show", "--source", "project")

	require.NoError(t, err)
	assert.Contains(t, out, "No project configuration file found")
}

func TestConfigShowCmd_InvalidSource(t *testing.T) {
	isolateEnv(t)

	_, err := runRoot(t, "", "config", "show", "--source", "bogus")

	require.Error(t, err)
	assert.EqualError(t, err, "invalid source: bogus (use: merged, user, project, defaults)")
}

func TestConfigInitCmd_ProjectCreatesFile(t *testing.T) {
	// Given: a working directory without a project config
	isolateEnv(t)
	t.Chdir(t.TempDir())

	// When: running config init --project
	out, err := runRoot(t, "", "config", "init", "--project")

	// Then: .cosim.yaml is written from the template
	require.NoError(t, err)
	assert.Contains(t, out, "Created project configuration")

	wd, err := os.Getwd()
	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join(wd, ".cosim.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "cosim project configuration")

	// And: config show picks it up as the project source
	out, err = runRoot(t, "", "config", "show", "--source", "project")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration source: project (")
	assert.Contains(t, out, "height: 15")
}

func TestConfigInitCmd_ProjectPreservesExisting(t *testing.T) {
	// Given: a customized project config
	isolateEnv(t)
	t.Chdir(t.TempDir())
	_, err := runRoot(t, "", "config", "init", "--project")
	require.NoError(t, err)

	wd, err := os.Getwd()
	require.NoError(t, err)
	yamlPath := filepath.Join(wd, ".cosim.yaml")
	custom := []byte("version: 1\npicker:\n  height: 30\n")
	require.NoError(t, os.WriteFile(yamlPath, custom, 0o644))

	// When: running init --project again without --force
	out, err := runRoot(t, "", "config", "init", "--project")

	// Then: the customized file is untouched
	require.NoError(t, err)
	assert.Contains(t, out, "Project configuration already exists")
	assert.Contains(t, out, "Use --force to replace it with the template")
	data, err := os.ReadFile(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, custom, data)

	// When: running with --force
	out, err = runRoot(t, "", "config", "init", "--project", "--force")

	// Then: the template replaces it
	require.NoError(t, err)
	assert.Contains(t, out, "Created project configuration")
	data, err = os.ReadFile(yamlPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "cosim project configuration")
}

func TestConfigInitCmd_ProjectYmlVariantSkipped(t *testing.T) {
	// Given: an existing .cosim.yml under the other extension
	isolateEnv(t)
	t.Chdir(t.TempDir())

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(wd, ".cosim.yml"), []byte("version: 1\n"), 0o644))

	// When: running config init --project
	out, err := runRoot(t, "", "config", "init", "--project")

	// Then: no .cosim.yaml is written next to it
	require.NoError(t, err)
	assert.Contains(t, out, "Existing .cosim.yml found, skipping template")
	_, statErr := os.Stat(filepath.Join(wd, ".cosim.yaml"))
	assert.True(t, os.IsNotExist(statErr))
}
