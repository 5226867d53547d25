// Package editor implements the EditDriver: applying a decoded manifest
// to an opc.Store in two phases (comments, then changes), rebuilding the
// RunIndex before every operation so each find/anchor is resolved against
// the document as it stands after prior edits.
package editor

import (
	"fmt"
	"strings"
	"time"

	"github.com/beevik/etree"

	"github.com/vortex/docxreview/internal/manifestio"
	"github.com/vortex/docxreview/pkg/comments"
	"github.com/vortex/docxreview/pkg/docmodel"
	"github.com/vortex/docxreview/pkg/match"
	"github.com/vortex/docxreview/pkg/opc"
	"github.com/vortex/docxreview/pkg/oxml"
	"github.com/vortex/docxreview/pkg/runindex"
	"github.com/vortex/docxreview/pkg/splicer"
)

// defaultAuthor is used when no CLI flag, manifest field, or
// DOCXREVIEW_AUTHOR environment default supplies one.
const defaultAuthor = "Reviewer"

// Options configures a Run.
type Options struct {
	// CLIAuthor, if non-empty, wins over the manifest's author field.
	CLIAuthor string
	// ConfigAuthor, if non-empty, is used when neither CLIAuthor nor the
	// manifest supply one.
	ConfigAuthor string
	// DryRun performs match resolution and reports outcomes but neither
	// emits markup nor mutates store.
	DryRun bool
	// Now is the timestamp attached to every emitted revision/comment. It
	// is a field (not time.Now()) so a caller can make a run's output
	// deterministic.
	Now time.Time
}

// Run applies m to store per Options, returning a ProcessingResult. It
// never returns a Go error for per-operation failures; those are recorded
// in the result's Results list, per the driver's error-handling contract.
func Run(store *opc.Store, m *manifestio.Manifest, opts Options) docmodel.ProcessingResult {
	author := coalesce(opts.CLIAuthor, m.Author, opts.ConfigAuthor, defaultAuthor)
	result := docmodel.ProcessingResult{Author: author, Success: true}

	body := store.Body()
	sp := splicer.New(oxml.MaxRevisionID(store.DocumentRoot(), commentsRootOrNil(store)))

	var cw *comments.Writer
	if !opts.DryRun {
		cw = comments.New(commentsRootOrNil(store))
	}

	// Comments phase: zero-width markers, evaluated before any w:del
	// shifts the visible-text projection.
	for i, c := range m.Comments {
		result.CommentsAttempted++
		res := applyComment(cw, store, body, c, i, author, opts)
		if res.Success {
			result.CommentsSucceeded++
		} else {
			result.Success = false
		}
		result.Results = append(result.Results, res)
	}

	// Changes phase.
	for i, c := range m.Changes {
		result.ChangesAttempted++
		res := applyChange(sp, body, c, i, author, opts)
		if res.Success {
			result.ChangesSucceeded++
		} else {
			result.Success = false
		}
		result.Results = append(result.Results, res)
	}

	return result
}

func applyComment(cw *comments.Writer, store *opc.Store, body *etree.Element, c manifestio.Comment, index int, author string, opts Options) docmodel.Result {
	res := docmodel.Result{Index: index, Type: "comment"}
	if c.Anchor == "" {
		res.Message = "comment requires \"anchor\""
		return res
	}
	ix := runindex.Build(body)
	rng, ok := match.Find(ix, c.Anchor)
	if !ok {
		res.Message = "anchor not found: " + quote(c.Anchor)
		return res
	}
	if opts.DryRun {
		res.Success = true
		res.Message = "would anchor comment on " + quote(c.Anchor)
		return res
	}
	if _, err := cw.Add(ix, rng, store.CommentsRoot(), author, c.Text, opts.Now); err != nil {
		res.Message = err.Error()
		return res
	}
	res.Success = true
	res.Message = "comment added"
	return res
}

func applyChange(sp *splicer.Splicer, body *etree.Element, c manifestio.Change, index int, author string, opts Options) docmodel.Result {
	kind := strings.ToLower(c.Type)
	res := docmodel.Result{Index: index, Type: kind}

	needle, err := requiredField(kind, c)
	if err != nil {
		res.Message = err.Error()
		return res
	}

	ix := runindex.Build(body)
	rng, ok := match.Find(ix, needle)
	if !ok {
		res.Message = "not found: " + quote(needle)
		return res
	}

	if opts.DryRun {
		res.Success = true
		res.Message = "would apply " + kind + " at " + quote(needle)
		return res
	}

	switch kind {
	case "replace":
		err = sp.Replace(ix, rng, c.Replace, author, opts.Now)
	case "delete":
		err = sp.Delete(ix, rng, author, opts.Now)
	case "insert_after":
		err = sp.InsertAfter(ix, rng, c.Text, author, opts.Now)
	case "insert_before":
		err = sp.InsertBefore(ix, rng, c.Text, author, opts.Now)
	}
	if err != nil {
		res.Message = err.Error()
		return res
	}
	res.Success = true
	res.Message = kind + " applied"
	return res
}

// requiredField validates a change entry against the field its kind
// requires and returns the text to match against. A manifest entry with
// a missing type, an unrecognized type, or a missing required field is a
// per-operation failure, never a decode-time error: it is reported here
// as a failed Result so the rest of the manifest still applies.
func requiredField(kind string, c manifestio.Change) (string, error) {
	switch kind {
	case "replace", "delete":
		if c.Find == "" {
			return "", fmt.Errorf("%s requires \"find\"", kind)
		}
		return c.Find, nil
	case "insert_after", "insert_before":
		if c.Anchor == "" {
			return "", fmt.Errorf("%s requires \"anchor\"", kind)
		}
		return c.Anchor, nil
	case "":
		return "", fmt.Errorf("missing \"type\"")
	default:
		return "", fmt.Errorf("unknown change type %q", c.Type)
	}
}

func commentsRootOrNil(store *opc.Store) *etree.Element {
	if !store.HasComments() {
		return nil
	}
	return store.CommentsRoot()
}

func coalesce(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func quote(s string) string {
	return "\"" + s + "\""
}
