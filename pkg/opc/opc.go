// Package opc provides uniform access to the named XML parts of a .docx
// Office Open XML package (PartStore in the component design), hiding the
// zip container and the relationship graph from the rest of the tool.
//
// Unlike a general-purpose OPC implementation that models every part type
// for authoring, this package keeps exactly two parts structured — the
// main document part and the comments part — and carries every other zip
// entry through as an untouched blob.
package opc

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/beevik/etree"
)

const (
	contentTypesName = "[Content_Types].xml"
	documentRelsName = "word/_rels/document.xml.rels"
	defaultCommentsName = "word/comments.xml"

	relTypeOfficeDocument = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	relTypeComments       = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/comments"

	contentTypeDocument = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"
	contentTypeComments = "application/vnd.openxmlformats-officedocument.wordprocessingml.comments+xml"
)

// Store is the PartStore: a read-write view over a .docx package that
// exposes the main document and comments parts as mutable XML trees and
// every other part as an opaque, round-tripped blob.
type Store struct {
	blobs   map[string][]byte // every zip entry except document/comments, keyed by zip name
	order   []string          // original zip entry order, for deterministic Save output

	documentName string
	documentDoc  *etree.Document

	commentsName string
	commentsDoc  *etree.Document // nil until EnsureComments is called or the part existed

	contentTypesDoc *etree.Document
	docRelsName     string
	docRelsDoc      *etree.Document
}

// Open reads a .docx package from path.
func Open(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opc: opening %q: %w", path, err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("opc: stat %q: %w", path, err)
	}
	return OpenReader(f, info.Size())
}

// OpenReader reads a .docx package from an io.ReaderAt of the given size.
func OpenReader(r io.ReaderAt, size int64) (*Store, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("opc: not a valid .docx container: %w", err)
	}

	s := &Store{blobs: make(map[string][]byte)}

	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("opc: reading part %q: %w", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("opc: reading part %q: %w", f.Name, err)
		}
		s.blobs[f.Name] = data
		s.order = append(s.order, f.Name)
	}

	ctBlob, ok := s.blobs[contentTypesName]
	if !ok {
		return nil, fmt.Errorf("opc: missing %s", contentTypesName)
	}
	s.contentTypesDoc, err = parseXML(ctBlob)
	if err != nil {
		return nil, fmt.Errorf("opc: parsing %s: %w", contentTypesName, err)
	}

	docName, err := s.resolveDocumentPartName()
	if err != nil {
		return nil, err
	}
	docBlob, ok := s.blobs[docName]
	if !ok {
		return nil, fmt.Errorf("opc: main document part %q absent", docName)
	}
	s.documentName = docName
	s.documentDoc, err = parseXML(docBlob)
	if err != nil {
		return nil, fmt.Errorf("opc: parsing main document part: %w", err)
	}
	delete(s.blobs, docName)

	s.docRelsName = relsNameFor(docName)
	if relsBlob, ok := s.blobs[s.docRelsName]; ok {
		s.docRelsDoc, err = parseXML(relsBlob)
		if err != nil {
			return nil, fmt.Errorf("opc: parsing %s: %w", s.docRelsName, err)
		}
	}

	if commentsName, ok := s.findCommentsPartName(); ok {
		if cBlob, ok := s.blobs[commentsName]; ok {
			s.commentsName = commentsName
			s.commentsDoc, err = parseXML(cBlob)
			if err != nil {
				return nil, fmt.Errorf("opc: parsing comments part %q: %w", commentsName, err)
			}
			delete(s.blobs, commentsName)
		}
	}

	return s, nil
}

// resolveDocumentPartName finds the main document part's zip name via the
// package-level relationship of type officeDocument in _rels/.rels,
// falling back to the conventional "word/document.xml" path.
func (s *Store) resolveDocumentPartName() (string, error) {
	pkgRels, ok := s.blobs["_rels/.rels"]
	if !ok {
		return "word/document.xml", nil
	}
	doc, err := parseXML(pkgRels)
	if err != nil {
		return "", fmt.Errorf("opc: parsing _rels/.rels: %w", err)
	}
	for _, rel := range doc.Root().ChildElements() {
		if rel.SelectAttrValue("Type", "") == relTypeOfficeDocument {
			target := rel.SelectAttrValue("Target", "")
			if target != "" {
				return normalizeTarget(target), nil
			}
		}
	}
	return "word/document.xml", nil
}

// findCommentsPartName looks for the comments relationship in the main
// document part's .rels file.
func (s *Store) findCommentsPartName() (string, bool) {
	if s.docRelsDoc == nil {
		return "", false
	}
	for _, rel := range s.docRelsDoc.Root().ChildElements() {
		if rel.SelectAttrValue("Type", "") == relTypeComments {
			target := rel.SelectAttrValue("Target", "")
			if target != "" {
				return joinPartPath("word/", target), true
			}
		}
	}
	return "", false
}

func normalizeTarget(target string) string {
	for len(target) > 0 && target[0] == '/' {
		target = target[1:]
	}
	return target
}

func joinPartPath(base, target string) string {
	if len(target) > 0 && target[0] == '/' {
		return normalizeTarget(target)
	}
	return base + target
}

func relsNameFor(partName string) string {
	dir, file := splitPath(partName)
	if dir == "" {
		return "_rels/" + file + ".rels"
	}
	return dir + "/_rels/" + file + ".rels"
}

func splitPath(p string) (dir, file string) {
	idx := -1
	for i := len(p) - 1; i >= 0; i-- {
		if p[i] == '/' {
			idx = i
			break
		}
	}
	if idx < 0 {
		return "", p
	}
	return p[:idx], p[idx+1:]
}

func parseXML(blob []byte) (*etree.Document, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.Permissive = true
	if err := doc.ReadFromBytes(blob); err != nil {
		return nil, err
	}
	return doc, nil
}

// DocumentRoot returns the root <w:document> element.
func (s *Store) DocumentRoot() *etree.Element {
	return s.documentDoc.Root()
}

// Body returns the <w:body> element of the main document part, or nil.
func (s *Store) Body() *etree.Element {
	root := s.DocumentRoot()
	if root == nil {
		return nil
	}
	for _, c := range root.ChildElements() {
		if c.Space == "w" && c.Tag == "body" {
			return c
		}
	}
	return nil
}

// HasComments reports whether the package already has a comments part.
func (s *Store) HasComments() bool {
	return s.commentsDoc != nil
}

// CommentsRoot returns the root <w:comments> element, creating the part
// (document, content-type override, and relationship) on first call if
// it did not already exist.
func (s *Store) CommentsRoot() *etree.Element {
	s.EnsureComments()
	return s.commentsDoc.Root()
}

// EnsureComments creates the comments part, its content-type override, and
// its relationship from the main document part, if they do not exist yet.
func (s *Store) EnsureComments() {
	if s.commentsDoc != nil {
		return
	}
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
	root := doc.CreateElement("w:comments")
	root.Space = "w"
	root.Tag = "comments"
	root.CreateAttr("xmlns:w", "http://schemas.openxmlformats.org/wordprocessingml/2006/main")

	s.commentsDoc = doc
	s.commentsName = defaultCommentsName

	s.addContentTypeOverride("/"+defaultCommentsName, contentTypeComments)
	s.addDocumentRelationship(relTypeComments, "comments.xml")
}

func (s *Store) addContentTypeOverride(partName, contentType string) {
	root := s.contentTypesDoc.Root()
	for _, c := range root.ChildElements() {
		if c.Tag == "Override" && c.SelectAttrValue("PartName", "") == partName {
			return
		}
	}
	ov := root.CreateElement("Override")
	ov.CreateAttr("PartName", partName)
	ov.CreateAttr("ContentType", contentType)
}

func (s *Store) addDocumentRelationship(relType, target string) {
	if s.docRelsDoc == nil {
		doc := etree.NewDocument()
		doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
		root := doc.CreateElement("Relationships")
		root.CreateAttr("xmlns", "http://schemas.openxmlformats.org/package/2006/relationships")
		s.docRelsDoc = doc
	}
	root := s.docRelsDoc.Root()
	maxID := 0
	for _, c := range root.ChildElements() {
		id := c.SelectAttrValue("Id", "")
		var n int
		if _, err := fmt.Sscanf(id, "rId%d", &n); err == nil && n > maxID {
			maxID = n
		}
	}
	rel := root.CreateElement("Relationship")
	rel.CreateAttr("Id", fmt.Sprintf("rId%d", maxID+1))
	rel.CreateAttr("Type", relType)
	rel.CreateAttr("Target", target)
}

// Save writes the package to path.
func (s *Store) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("opc: creating %q: %w", path, err)
	}
	defer f.Close()
	return s.SaveTo(f)
}

// SaveTo writes the package to w.
func (s *Store) SaveTo(w io.Writer) error {
	zw := zip.NewWriter(w)

	written := make(map[string]bool)
	writeEntry := func(name string, data []byte) error {
		fw, err := zw.Create(name)
		if err != nil {
			return err
		}
		_, err = fw.Write(data)
		written[name] = true
		return err
	}

	// Preserve original order for untouched blobs, substituting the
	// document/comments/content-types/rels parts with their current state.
	for _, name := range s.order {
		if written[name] {
			continue
		}
		switch name {
		case s.documentName:
			buf, err := serializeXML(s.documentDoc)
			if err != nil {
				return err
			}
			if err := writeEntry(name, buf); err != nil {
				return err
			}
		case contentTypesName:
			buf, err := serializeXML(s.contentTypesDoc)
			if err != nil {
				return err
			}
			if err := writeEntry(name, buf); err != nil {
				return err
			}
		case s.docRelsName:
			if s.docRelsDoc == nil {
				continue
			}
			buf, err := serializeXML(s.docRelsDoc)
			if err != nil {
				return err
			}
			if err := writeEntry(name, buf); err != nil {
				return err
			}
		default:
			if blob, ok := s.blobs[name]; ok {
				if err := writeEntry(name, blob); err != nil {
					return err
				}
			}
		}
	}

	// The comments part may be new (not in s.order) or pre-existing.
	if s.commentsDoc != nil && !written[s.commentsName] {
		buf, err := serializeXML(s.commentsDoc)
		if err != nil {
			return err
		}
		if err := writeEntry(s.commentsName, buf); err != nil {
			return err
		}
	}
	// The document rels file may be new.
	if s.docRelsDoc != nil && !written[s.docRelsName] {
		buf, err := serializeXML(s.docRelsDoc)
		if err != nil {
			return err
		}
		if err := writeEntry(s.docRelsName, buf); err != nil {
			return err
		}
	}

	return zw.Close()
}

func serializeXML(doc *etree.Document) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// PartNames returns the zip names of every blob part, sorted, for
// diagnostics.
func (s *Store) PartNames() []string {
	names := make([]string, 0, len(s.blobs))
	for n := range s.blobs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Blob returns the raw bytes of an untouched part by zip name (e.g.
// "docProps/core.xml", "word/media/image1.png"), for parts Extractor
// needs to read but PartStore does not structurally parse.
func (s *Store) Blob(name string) ([]byte, bool) {
	b, ok := s.blobs[name]
	return b, ok
}

// Relationship is one entry from word/_rels/document.xml.rels.
type Relationship struct {
	ID     string
	Type   string
	Target string
}

// DocumentRelationships returns every relationship of the main document
// part, with Target normalized to a "word/"-relative zip-entry path.
func (s *Store) DocumentRelationships() []Relationship {
	if s.docRelsDoc == nil {
		return nil
	}
	var rels []Relationship
	for _, rel := range s.docRelsDoc.Root().ChildElements() {
		target := rel.SelectAttrValue("Target", "")
		mode := rel.SelectAttrValue("TargetMode", "")
		resolved := target
		if mode != "External" {
			resolved = joinPartPath("word/", target)
		}
		rels = append(rels, Relationship{
			ID:     rel.SelectAttrValue("Id", ""),
			Type:   rel.SelectAttrValue("Type", ""),
			Target: resolved,
		})
	}
	return rels
}
