// Package imageset tracks the editable image set of one product form session:
// images already stored by the catalog, files staged locally for upload, and
// stored images the user removed and that must be deleted on submit.
package imageset

import (
	"log/slog"
	"net/url"
	"path"
	"strings"
)

// Kind tells where an entry's image lives.
type Kind int

const (
	// Existing images are stored by the catalog and referenced by URL.
	Existing Kind = iota + 1
	// New images are staged locally and not uploaded yet.
	New
)

func (k Kind) String() string {
	switch k {
	case Existing:
		return "existing"
	case New:
		return "new"
	default:
		return "unknown"
	}
}

// Entry is one row of the image set.
type Entry struct {
	Kind              Kind   `json:"kind"`
	PreviewURL        string `json:"preview_url"`
	File              *File  `json:"-"`
	RemoteName        string `json:"remote_name,omitempty"`
	MarkedForDeletion bool   `json:"marked_for_deletion"`
}

// Previewer issues and releases ephemeral preview handles.
type Previewer interface {
	Acquire(name string, data []byte) string
	Release(handle string) bool
}

// Snapshot is what a submit needs from the editor.
type Snapshot struct {
	Uploads   []File
	Deletions []string
}

// Editor owns the working image set of a single form session. It is not
// safe for concurrent use.
type Editor struct {
	previews Previewer
	visible  []Entry
	removed  []Entry
	hydrated bool
	touched  bool
	closed   bool
}

// NewEditor returns an empty editor, as used by the create flow.
func NewEditor(previews Previewer) *Editor {
	return &Editor{previews: previews}
}

// Hydrate populates the set with the product's stored images. It only takes
// effect once and only before any add or remove; otherwise it reports false.
func (e *Editor) Hydrate(refs []string) bool {
	if e.hydrated || e.touched || e.closed {
		slog.Warn("Ignoring late image hydration", "refs", len(refs))
		return false
	}
	e.hydrated = true

	e.visible = make([]Entry, 0, len(refs))
	for _, ref := range refs {
		e.visible = append(e.visible, Entry{
			Kind:       Existing,
			PreviewURL: ref,
			RemoteName: RemoteName(ref),
		})
	}
	return true
}

// AddFiles stages files for upload, in order. Files outside the accepted
// types or size are still added; see File.Advisory.
func (e *Editor) AddFiles(files ...File) int {
	if e.closed {
		return 0
	}
	e.touched = true

	for i := range files {
		f := files[i]
		if warning := f.Advisory(); warning != "" {
			slog.Warn("Staging image outside advisory limits", "warning", warning)
		}
		e.visible = append(e.visible, Entry{
			Kind:       New,
			PreviewURL: e.previews.Acquire(f.Name, f.Data),
			File:       &f,
		})
	}
	return len(files)
}

// RemoveAt drops the entry at index. Existing entries are queued for
// deletion; new ones are discarded and their preview released. An index out
// of range is ignored.
func (e *Editor) RemoveAt(index int) bool {
	if index < 0 || index >= len(e.visible) {
		return false
	}
	e.touched = true

	entry := e.visible[index]
	e.visible = append(e.visible[:index:index], e.visible[index+1:]...)

	switch entry.Kind {
	case Existing:
		entry.MarkedForDeletion = true
		e.removed = append(e.removed, entry)
	case New:
		if !e.closed {
			e.previews.Release(entry.PreviewURL)
		}
	}
	return true
}

// IndexOf returns the visible index of the existing image with the given
// remote name, or -1.
func (e *Editor) IndexOf(remoteName string) int {
	for i, entry := range e.visible {
		if entry.Kind == Existing && entry.RemoteName == remoteName {
			return i
		}
	}
	return -1
}

// Snapshot returns the files to upload and the remote names to delete.
// It does not modify the editor.
func (e *Editor) Snapshot() Snapshot {
	snap := Snapshot{
		Uploads:   []File{},
		Deletions: make([]string, 0, len(e.removed)),
	}
	for _, entry := range e.visible {
		if entry.Kind == New {
			snap.Uploads = append(snap.Uploads, *entry.File)
		}
	}
	for _, entry := range e.removed {
		snap.Deletions = append(snap.Deletions, entry.RemoteName)
	}
	return snap
}

// Entries returns a copy of the visible set.
func (e *Editor) Entries() []Entry {
	out := make([]Entry, len(e.visible))
	copy(out, e.visible)
	return out
}

// Removed returns the existing entries queued for deletion.
func (e *Editor) Removed() []Entry {
	out := make([]Entry, len(e.removed))
	copy(out, e.removed)
	return out
}

// Kept returns the remote names of existing images that survive.
func (e *Editor) Kept() []string {
	var kept []string
	for _, entry := range e.visible {
		if entry.Kind == Existing {
			kept = append(kept, entry.RemoteName)
		}
	}
	return kept
}

// Len is the size of the visible set.
func (e *Editor) Len() int {
	return len(e.visible)
}

// Close releases every outstanding preview. It is safe to call more than
// once; later calls do nothing.
func (e *Editor) Close() {
	if e.closed {
		return
	}
	e.closed = true

	for _, entry := range e.visible {
		if entry.Kind == New {
			e.previews.Release(entry.PreviewURL)
		}
	}
}

// RemoteName derives the server-side filename from a stored image URL. The
// last path segment is kept as it appears in the URL, percent escapes
// included, since that is the key the catalog deletes by.
func RemoteName(ref string) string {
	if u, err := url.Parse(ref); err == nil && u.Path != "" {
		return path.Base(u.EscapedPath())
	}
	ref = strings.TrimRight(ref, "/")
	if i := strings.LastIndex(ref, "/"); i >= 0 {
		return ref[i+1:]
	}
	return ref
}
