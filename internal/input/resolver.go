// Package input resolves the query and the comparison text for a scoring
// run. Both follow a fallback chain: command-line flags first, then
// interactive acquisition (prompt, file picker, manual paste). Each chain
// either produces a non-empty string or ends the run with a coded error.
package input

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	cosimerrors "github.com/metehan777/cosine-similarity-aio/internal/errors"
	"github.com/metehan777/cosine-similarity-aio/internal/output"
)

// ErrDeclined reports that the user turned down the manual-entry fallback.
// Callers exit cleanly on it; declining is not an error condition.
var ErrDeclined = errors.New("manual text entry declined")

// Request carries the text-source flags of a run. The Set fields record
// whether a flag appeared on the command line at all, so an explicitly
// empty value is distinguishable from an absent one.
type Request struct {
	Query       string
	TextFile    string
	TextFileSet bool
	Text        string
	TextSet     bool
	SelectFile  bool
}

// Resolver walks the fallback chains using the given prompter and picker.
type Resolver struct {
	out    *output.Writer
	prompt *Prompter
	picker FilePicker
}

// NewResolver creates a resolver. The picker may be nil, in which case the
// picker stage behaves as if the user cancelled it.
func NewResolver(out *output.Writer, prompt *Prompter, picker FilePicker) *Resolver {
	return &Resolver{out: out, prompt: prompt, picker: picker}
}

// ResolveQuery returns the target query. A non-blank --query value wins;
// otherwise the user is prompted for one line. A query that is still blank
// after trimming is a fatal precondition failure.
func (r *Resolver) ResolveQuery(req Request) (string, error) {
	query := req.Query
	if strings.TrimSpace(query) == "" {
		line, err := r.prompt.ReadLine("Enter the target query: ")
		if err != nil {
			slog.Debug("query_prompt_failed", "error", err)
			return "", cosimerrors.QueryEmpty()
		}
		query = line
	}
	if strings.TrimSpace(query) == "" {
		return "", cosimerrors.QueryEmpty()
	}
	return query, nil
}

// ResolveText returns the comparison text. Source precedence is
// --text_file, then --text, then the interactive picker chain. The picker
// chain runs when --select_file is given or when no text source was set.
// Whatever the source, text that is blank after trimming is fatal.
func (r *Resolver) ResolveText(ctx context.Context, req Request) (string, error) {
	var text string

	switch {
	case req.TextFileSet:
		content, err := r.readTextFile(req.TextFile)
		if err != nil {
			return "", err
		}
		text = content
	case req.TextSet:
		text = req.Text
	default:
		slog.Debug("picker_chain_started", "explicit", req.SelectFile)
		content, err := r.pickOrPaste(ctx)
		if err != nil {
			return "", err
		}
		text = content
	}

	if strings.TrimSpace(text) == "" {
		return "", cosimerrors.TextEmpty()
	}
	return text, nil
}

// readTextFile loads the --text_file source. A missing file is reported
// with the path the user gave; other read failures carry the reason.
func (r *Resolver) readTextFile(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", cosimerrors.FileNotFound(path, err)
		}
		return "", cosimerrors.New(cosimerrors.ErrCodeFileRead,
			fmt.Sprintf("File '%s' could not be read: %v", path, err), err).
			WithDetail("path", path)
	}
	return string(content), nil
}

// pickOrPaste runs the interactive chain: file picker, then the
// manual-paste offer. Only an exactly empty result re-prompts; a picked
// file holding nothing but whitespace flows on to the final blank check.
func (r *Resolver) pickOrPaste(ctx context.Context) (string, error) {
	r.out.Plain("Opening file dialog to select a text file...")

	text := r.pickFile(ctx)
	if text != "" {
		return text, nil
	}

	r.out.Plain("No file selected or file is empty.")
	yes, err := r.prompt.YesNo("Do you want to enter text manually instead? (y/n): ")
	if err != nil {
		// EOF on the y/n prompt counts as declining.
		slog.Debug("manual_entry_prompt_failed", "error", err)
		return "", ErrDeclined
	}
	if !yes {
		return "", ErrDeclined
	}

	r.out.Plain("Please paste text below (Ctrl+D or Ctrl+Z to finish):")
	pasted, err := r.prompt.ReadAll()
	if err != nil {
		slog.Debug("manual_entry_read_failed", "error", err)
		return "", cosimerrors.TextEmpty()
	}
	return pasted, nil
}

// pickFile runs the picker and reads the selected file. Cancellation, a
// missing terminal, and read failures all collapse to an empty result so
// the caller falls through to the manual-entry offer.
func (r *Resolver) pickFile(ctx context.Context) string {
	if r.picker == nil {
		return ""
	}

	path, err := r.picker.Pick(ctx)
	if err != nil {
		slog.Debug("file_picker_unavailable", "error", err)
		return ""
	}
	if path == "" {
		return ""
	}

	content, err := os.ReadFile(path)
	if err != nil {
		r.out.Plainf("Error reading file: %v", err)
		return ""
	}

	slog.Debug("file_picked", "path", path, "bytes", len(content))
	return string(content)
}
