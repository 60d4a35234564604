package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cosimerrors "github.com/metehan777/cosine-similarity-aio/internal/errors"
)

// isolateEnv points HOME and every COSIM_* override at test-controlled
// values so command runs cannot touch real machine state.
func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("COSIM_EMBEDDER", "")
	t.Setenv("COSIM_OLLAMA_HOST", "")
	t.Setenv("COSIM_LOG_LEVEL", "")
	t.Setenv("COSIM_LOG_FILE", "")
}

// runRoot executes the root command with the given args and stdin.
func runRoot(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return buf.String(), err
}

func TestRootCmd_ShowsHelp(t *testing.T) {
	// Given: a root command

	// When: executing with --help
	out, err := runRoot(t, "", "--help")

	// Then: usage lists the scoring flags under their canonical names
	require.NoError(t, err)
	assert.Contains(t, out, "cosim")
	assert.Contains(t, out, "--query")
	assert.Contains(t, out, "--text_file")
	assert.Contains(t, out, "--text")
	assert.Contains(t, out, "--select_file")
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	rootCmd := NewRootCmd()

	for _, name := range []string{"version", "doctor", "setup", "config", "logs"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := rootCmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestRootCmd_VersionFlag(t *testing.T) {
	out, err := runRoot(t, "", "--version")

	require.NoError(t, err)
	assert.Contains(t, out, "cosim version")
}

func TestRootCmd_ScoresIdenticalStrings(t *testing.T) {
	// Given: offline embeddings and an identical query and text
	isolateEnv(t)
	t.Setenv("COSIM_EMBEDDER", "static")

	// When: scoring
	out, err := runRoot(t, "", "--query", "cat", "--text", "cat")

	// Then: the run succeeds and reports a perfect score to 4 decimals
	require.NoError(t, err)
	assert.Contains(t, out, "Calculating similarity (this might take a moment)...")
	assert.Contains(t, out, "\nCosine Similarity between query and text: 1.0000\n")
	assert.Contains(t, out, "Interpretation: Very high similarity")
}

func TestRootCmd_DashedFlagSpelling(t *testing.T) {
	// Given: a text file and the dashed spelling of --text_file
	isolateEnv(t)
	t.Setenv("COSIM_EMBEDDER", "static")
	path := filepath.Join(t.TempDir(), "text.txt")
	require.NoError(t, os.WriteFile(path, []byte("the quick brown fox"), 0o644))

	// When: scoring with --text-file
	out, err := runRoot(t, "", "--query", "a fast fox", "--text-file", path)

	// Then: the dashed name resolves to the same flag and the run scores
	require.NoError(t, err)
	assert.Contains(t, out, "Cosine Similarity between query and text:")
	assert.Contains(t, out, "Interpretation:")
}

func TestRootCmd_TextFileMissing(t *testing.T) {
	isolateEnv(t)

	_, err := runRoot(t, "", "--query", "q", "--text_file", "/no/such/cosim-test.txt")

	require.Error(t, err)
	assert.Equal(t, "Error: File '/no/such/cosim-test.txt' not found.", cosimerrors.UserMessage(err))
}

func TestRootCmd_EmptyInlineText(t *testing.T) {
	// An explicitly empty --text is a fatal precondition failure, not a
	// reason to fall through to the picker.
	isolateEnv(t)

	out, err := runRoot(t, "", "--query", "q", "--text", "")

	require.Error(t, err)
	assert.Equal(t, "Error: No text provided.", cosimerrors.UserMessage(err))
	assert.NotContains(t, out, "Opening file dialog")
}

func TestRootCmd_QueryPrompted(t *testing.T) {
	// Given: no --query flag, a query waiting on stdin
	isolateEnv(t)
	t.Setenv("COSIM_EMBEDDER", "static")

	// When: running with only the text source
	out, err := runRoot(t, "the target query\n", "--text", "the target query")

	// Then: the prompt appears and the run scores
	require.NoError(t, err)
	assert.Contains(t, out, "Enter the target query: ")
	assert.Contains(t, out, "Cosine Similarity between query and text: 1.0000")
}

func TestRootCmd_EmptyQueryAfterPrompt(t *testing.T) {
	isolateEnv(t)

	_, err := runRoot(t, "\n", "--text", "some text")

	require.Error(t, err)
	assert.Equal(t, "Error: No query provided.", cosimerrors.UserMessage(err))
}

func TestRootCmd_DeclineManualEntry(t *testing.T) {
	// Given: no text source; the picker cannot run without a terminal,
	// and the user answers n to the manual-entry offer
	isolateEnv(t)

	// When: running
	out, err := runRoot(t, "n\n", "--query", "q")

	// Then: declining ends the run cleanly without a score
	require.NoError(t, err)
	assert.Contains(t, out, "Opening file dialog to select a text file...")
	assert.Contains(t, out, "No file selected or file is empty.")
	assert.Contains(t, out, "Do you want to enter text manually instead? (y/n): ")
	assert.NotContains(t, out, "Cosine Similarity")
}

func TestRootCmd_ManualEntryScores(t *testing.T) {
	// Given: the user accepts manual entry and pastes text to EOF
	isolateEnv(t)
	t.Setenv("COSIM_EMBEDDER", "static")

	// When: running with a matching query
	out, err := runRoot(t, "y\npasted comparison text", "--query", "pasted comparison text")

	// Then: the pasted text scores against the query
	require.NoError(t, err)
	assert.Contains(t, out, "Please paste text below (Ctrl+D or Ctrl+Z to finish):")
	assert.Contains(t, out, "Cosine Similarity between query and text: 1.0000")
}

func TestRootCmd_EmbeddingFailureDegradesToZero(t *testing.T) {
	// Given: the default Ollama provider pointed at a dead port
	isolateEnv(t)
	t.Setenv("COSIM_OLLAMA_HOST", "http://localhost:1")

	// When: scoring
	out, err := runRoot(t, "", "--query", "q", "--text", "some text")

	// Then: the failure is absorbed and the run completes with 0.0
	require.NoError(t, err)
	assert.Contains(t, out, "Error during embedding calculation:")
	assert.Contains(t, out, "Cosine Similarity between query and text: 0.0000")
	assert.Contains(t, out, "Interpretation: Very low similarity")
}

func TestRootCmd_RejectsPositionalArgs(t *testing.T) {
	isolateEnv(t)

	_, err := runRoot(t, "", "extra")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")
}
