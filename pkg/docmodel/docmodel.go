// Package docmodel holds the in-memory document model shared by Extractor,
// Differ, and TextConv: paragraphs, runs and their tracked-change variants,
// tables, images, comments, and package metadata, plus the JSON-shaped
// output types for the read/diff/processing-result interfaces.
package docmodel

import "time"

// RunProperties records formatting attributes. Bold, Italic, Underline,
// and Strikethrough are tri-state: nil means absent (inherit from style),
// true means explicitly on, false means explicitly off.
type RunProperties struct {
	Bold          *bool
	Italic        *bool
	Underline     *bool
	Strikethrough *bool
	FontAscii     string
	FontHighAnsi  string
	FontCs        string
	Size          string // half-points, preserved verbatim
	Color         string // hex, no leading '#'
	Highlight     string
}

// FontName resolves the three font slots: Ascii wins, else HighAnsi, else
// ComplexScript.
func (p RunProperties) FontName() string {
	switch {
	case p.FontAscii != "":
		return p.FontAscii
	case p.FontHighAnsi != "":
		return p.FontHighAnsi
	default:
		return p.FontCs
	}
}

// InlineChild is the tagged-variant sum type for a Paragraph's children:
// Run, DeletedRun, InsertedRun, MoveFromRun, MoveToRun, CommentRangeStart,
// CommentRangeEnd, CommentReference, or Hyperlink. Consumers type-switch
// on it.
type InlineChild interface {
	inlineChild()
}

// Run is a leaf unit of text and formatting.
type Run struct {
	Text  string
	Props RunProperties
}

func (Run) inlineChild() {}

// DeletedRun is a tracked deletion.
type DeletedRun struct {
	Text   string
	Props  RunProperties
	Author string
	Date   time.Time
	ID     int
}

func (DeletedRun) inlineChild() {}

// InsertedRun is a tracked insertion.
type InsertedRun struct {
	Text   string
	Props  RunProperties
	Author string
	Date   time.Time
	ID     int
}

func (InsertedRun) inlineChild() {}

// MoveFromRun is semantically equivalent to DeletedRun for differencing
// and extraction.
type MoveFromRun struct {
	Text   string
	Props  RunProperties
	Author string
	Date   time.Time
	ID     int
}

func (MoveFromRun) inlineChild() {}

// MoveToRun is semantically equivalent to InsertedRun for differencing
// and extraction.
type MoveToRun struct {
	Text   string
	Props  RunProperties
	Author string
	Date   time.Time
	ID     int
}

func (MoveToRun) inlineChild() {}

// CommentRangeStart is a zero-width marker keyed by comment ID.
type CommentRangeStart struct{ ID int }

func (CommentRangeStart) inlineChild() {}

// CommentRangeEnd is a zero-width marker keyed by comment ID.
type CommentRangeEnd struct{ ID int }

func (CommentRangeEnd) inlineChild() {}

// CommentReference is a zero-width marker keyed by comment ID.
type CommentReference struct{ ID int }

func (CommentReference) inlineChild() {}

// Hyperlink is a run-carrying container with a target URL. It is treated
// as a Run for visible-text and revision purposes; its Runs are reported
// separately so a reviewer can see which text is a link.
type Hyperlink struct {
	Target string
	Runs   []Run
}

func (Hyperlink) inlineChild() {}

// Paragraph is an ordered sequence of inline children plus an optional
// style identifier and numbering (list) properties.
type Paragraph struct {
	Style          string
	Children       []InlineChild
	NumberingLevel *int
	NumberingID    *string
}

// Table is rows x columns; only cell text is compared by the differ.
type Table struct {
	Rows  [][]Cell
	Index int // paragraph index immediately preceding the table, for reporting
}

// Cell is a list of paragraphs, though only its concatenated text matters
// for diffing.
type Cell struct {
	Paragraphs []Paragraph
}

// Image carries a relationship identifier, filename, media type, byte
// length, and the SHA-256 of its payload.
type Image struct {
	RelID     string
	FileName  string
	MediaType string
	Bytes     int
	SHA256    string
}

// HeaderFooter is header/footer text plus its scope.
type HeaderFooter struct {
	Kind  string // "header" or "footer"
	Scope string // "default", "first", "even"
	Text  string
}

// Note is a footnote or endnote body.
type Note struct {
	ID   string
	Text string
}

// Comment is identified by a string ID unique within the document.
type Comment struct {
	ID             string
	Author         string
	Date           time.Time
	Text           string
	AnchorText     string
	ParagraphIndex int
}

// PackageMetadata holds core and extended document properties.
type PackageMetadata struct {
	Title           string
	Author          string
	LastModifiedBy  string
	Created         time.Time
	Modified        time.Time
	Revision        int
	WordCount       int
	ParagraphCount  int
	Application     string
	Company         string
}

// --- Output-facing (JSON) shapes ---

// TrackedChangeOut is a flattened tracked-change entry for read output.
// Type is "insert" or "delete"; MoveFromRun/MoveToRun are reported as
// "delete"/"insert" respectively, matching their differencing semantics.
type TrackedChangeOut struct {
	Type   string    `json:"type"`
	Text   string    `json:"text"`
	Author string    `json:"author"`
	Date   time.Time `json:"date"`
	ID     int       `json:"id"`
}

// ParagraphOut is one paragraph entry in read output.
type ParagraphOut struct {
	Index          int                `json:"index"`
	Style          string             `json:"style,omitempty"`
	Text           string             `json:"text"`
	TrackedChanges []TrackedChangeOut `json:"tracked_changes"`
}

// CommentOut is one comment entry in read output.
type CommentOut struct {
	ID             string    `json:"id"`
	Author         string    `json:"author"`
	Date           time.Time `json:"date"`
	AnchorText     string    `json:"anchor_text"`
	Text           string    `json:"text"`
	ParagraphIndex int       `json:"paragraph_index"`
}

// MetadataOut mirrors PackageMetadata with JSON tags.
type MetadataOut struct {
	Title          string    `json:"title,omitempty"`
	Author         string    `json:"author,omitempty"`
	LastModifiedBy string    `json:"last_modified_by,omitempty"`
	Created        time.Time `json:"created,omitzero"`
	Modified       time.Time `json:"modified,omitzero"`
	Revision       int       `json:"revision"`
	WordCount      int       `json:"word_count"`
	ParagraphCount int       `json:"paragraph_count"`
	Application    string    `json:"application,omitempty"`
	Company        string    `json:"company,omitempty"`
}

// ReadSummary summarizes a read-model's tracked changes and comments.
type ReadSummary struct {
	TotalTrackedChanges int      `json:"total_tracked_changes"`
	Insertions          int      `json:"insertions"`
	Deletions           int      `json:"deletions"`
	TotalComments       int      `json:"total_comments"`
	ChangeAuthors       []string `json:"change_authors"`
	CommentAuthors      []string `json:"comment_authors"`
}

// TableOut is one table entry in read output.
type TableOut struct {
	Index          int        `json:"index"`
	Rows           int        `json:"rows"`
	Cols           int        `json:"cols"`
	Cells          [][]string `json:"cells"`
	ParagraphIndex int        `json:"paragraph_index"`
}

// ImageOut mirrors Image with JSON tags.
type ImageOut struct {
	RelID     string `json:"rel_id"`
	FileName  string `json:"file_name"`
	MediaType string `json:"media_type"`
	Bytes     int    `json:"bytes"`
	SHA256    string `json:"sha256"`
}

// HeaderFooterOut mirrors HeaderFooter with JSON tags.
type HeaderFooterOut struct {
	Kind  string `json:"kind"`
	Scope string `json:"scope"`
	Text  string `json:"text"`
}

// NoteOut mirrors Note with JSON tags.
type NoteOut struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// ReadResult is the top-level `read` mode output.
type ReadResult struct {
	File           string            `json:"file"`
	Paragraphs     []ParagraphOut    `json:"paragraphs"`
	Comments       []CommentOut      `json:"comments"`
	Metadata       MetadataOut       `json:"metadata"`
	Summary        ReadSummary       `json:"summary"`
	Tables         []TableOut        `json:"tables,omitempty"`
	Images         []ImageOut        `json:"images,omitempty"`
	HeadersFooters []HeaderFooterOut `json:"headers_footers,omitempty"`
	Footnotes      []NoteOut         `json:"footnotes,omitempty"`
	Endnotes       []NoteOut         `json:"endnotes,omitempty"`
}

// MetadataFieldChange is one differing metadata field.
type MetadataFieldChange struct {
	Field string `json:"field"`
	Old   string `json:"old"`
	New   string `json:"new"`
}

// WordChange is one word-level diff entry.
type WordChange struct {
	Type     string `json:"type"` // "add", "delete", "replace"
	Old      string `json:"old,omitempty"`
	New      string `json:"new,omitempty"`
	Position int    `json:"position"`
}

// FormattingChange is one differing formatting attribute for a word.
type FormattingChange struct {
	Word      string `json:"word"`
	Attribute string `json:"attribute"`
	Old       string `json:"old"`
	New       string `json:"new"`
}

// StyleChange records a paragraph style identifier change.
type StyleChange struct {
	Old string `json:"old"`
	New string `json:"new"`
}

// ParagraphModification is a matched old/new paragraph pair with changes.
type ParagraphModification struct {
	OldIndex          int                `json:"old_index"`
	NewIndex          int                `json:"new_index"`
	OldText           string             `json:"old_text"`
	NewText           string             `json:"new_text"`
	StyleChange       *StyleChange       `json:"style_change,omitempty"`
	FormattingChanges []FormattingChange `json:"formatting_changes,omitempty"`
	WordChanges       []WordChange       `json:"word_changes,omitempty"`
}

// CommentDiffEntry is one comment-diff result, keyed by author+anchor.
type CommentDiffEntry struct {
	Author     string `json:"author"`
	AnchorText string `json:"anchor_text"`
	OldText    string `json:"old_text,omitempty"`
	NewText    string `json:"new_text,omitempty"`
}

// TrackedChangeDiffEntry is one tracked-change-diff result, keyed by
// type+text+author.
type TrackedChangeDiffEntry struct {
	Type   string `json:"type"`
	Text   string `json:"text"`
	Author string `json:"author"`
}

// DiffSummary summarizes a diff; Identical is the authoritative equality
// signal.
type DiffSummary struct {
	MetadataChanges   int  `json:"metadata_changes"`
	ParagraphsAdded   int  `json:"paragraphs_added"`
	ParagraphsDeleted int  `json:"paragraphs_deleted"`
	ParagraphsChanged int  `json:"paragraphs_modified"`
	CommentsAdded     int  `json:"comments_added"`
	CommentsDeleted   int  `json:"comments_deleted"`
	CommentsChanged   int  `json:"comments_modified"`
	TrackedAdded      int  `json:"tracked_changes_added"`
	TrackedDeleted    int  `json:"tracked_changes_deleted"`
	Identical         bool `json:"identical"`
}

// ParagraphsDiff bundles the paragraph-alignment outcome.
type ParagraphsDiff struct {
	Added    []string                 `json:"added"`
	Deleted  []string                 `json:"deleted"`
	Modified []ParagraphModification  `json:"modified"`
}

// CommentsDiff bundles the comment-diff outcome.
type CommentsDiff struct {
	Added    []CommentOut       `json:"added"`
	Deleted  []CommentOut       `json:"deleted"`
	Modified []CommentDiffEntry `json:"modified"`
}

// TrackedChangesDiff bundles the tracked-change-diff outcome.
type TrackedChangesDiff struct {
	Added   []TrackedChangeDiffEntry `json:"added"`
	Deleted []TrackedChangeDiffEntry `json:"deleted"`
}

// MetadataDiff bundles the metadata-diff outcome.
type MetadataDiff struct {
	Changes []MetadataFieldChange `json:"changes"`
}

// DiffResult is the top-level `diff` mode output.
type DiffResult struct {
	OldFile       string             `json:"old_file"`
	NewFile       string             `json:"new_file"`
	Metadata      MetadataDiff       `json:"metadata"`
	Paragraphs    ParagraphsDiff     `json:"paragraphs"`
	Comments      CommentsDiff       `json:"comments"`
	TrackedChanges TrackedChangesDiff `json:"tracked_changes"`
	Summary       DiffSummary        `json:"summary"`
}

// Result is one manifest entry's outcome.
type Result struct {
	Index   int    `json:"index"`
	Type    string `json:"type"`
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ProcessingResult is the top-level `edit` mode output.
type ProcessingResult struct {
	Input             string   `json:"input"`
	Output            string   `json:"output"`
	Author            string   `json:"author"`
	ChangesAttempted  int      `json:"changes_attempted"`
	ChangesSucceeded  int      `json:"changes_succeeded"`
	CommentsAttempted int      `json:"comments_attempted"`
	CommentsSucceeded int      `json:"comments_succeeded"`
	Results           []Result `json:"results"`
	Success           bool     `json:"success"`
}
