package lifecycle

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// PromptChoice is the user's pick from the interactive setup prompt.
type PromptChoice int

const (
	// ChoiceShowInstall shows installation instructions.
	ChoiceShowInstall PromptChoice = iota + 1
	// ChoiceStaticMode falls back to offline hash embeddings.
	ChoiceStaticMode
	// ChoiceCancel cancels the operation.
	ChoiceCancel
)

// IsTTY reports whether stdin is a terminal. Setup only prompts
// interactively; piped runs get the auto behavior.
func IsTTY() bool {
	fi, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

// readChoice prints the trailing prompt, reads one line and returns it
// trimmed, substituting fallback for an empty answer.
func readChoice(w io.Writer, r io.Reader, fallback string) (string, error) {
	fmt.Fprint(w, "Choice [1]: ")

	answer, err := bufio.NewReader(r).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		answer = fallback
	}
	return answer, nil
}

// printMenu writes a prompt header and its numbered options, framed by
// blank lines the way setup output expects.
func printMenu(w io.Writer, header string, options ...string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, header)
	fmt.Fprintln(w)
	for _, opt := range options {
		fmt.Fprintln(w, "  "+opt)
	}
	fmt.Fprintln(w)
}

// PromptNoEmbedder asks what to do when Ollama is not installed.
func PromptNoEmbedder(w io.Writer, r io.Reader) (PromptChoice, error) {
	printMenu(w, "Ollama is required for similarity scoring but not installed.",
		"[1] Show install instructions (then retry)",
		"[2] Use offline hash embeddings (lower quality, no download)",
		"[3] Cancel")

	answer, err := readChoice(w, r, "1")
	if err != nil {
		return ChoiceCancel, err
	}

	switch answer {
	case "1":
		return ChoiceShowInstall, nil
	case "2":
		return ChoiceStaticMode, nil
	case "3":
		return ChoiceCancel, nil
	default:
		return ChoiceCancel, fmt.Errorf("invalid choice: %s", answer)
	}
}

// ShowInstallInstructions prints platform-specific install guidance.
func ShowInstallInstructions(w io.Writer) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, InstallInstructions())
	fmt.Fprintln(w)
}

// PromptModelNotFound asks whether to pull a missing model now.
func PromptModelNotFound(w io.Writer, r io.Reader, model string) (bool, error) {
	printMenu(w, fmt.Sprintf("Embedding model '%s' is not installed.", model),
		"[1] Pull model now (recommended)",
		"[2] Cancel")

	answer, err := readChoice(w, r, "1")
	if err != nil {
		return false, err
	}
	return answer == "1", nil
}
