package request

import (
	"github.com/go-analyze/bulk"
	"github.com/google/uuid"
)

// KeyValueEntry is one editable row in a query/header/cookie list.
// ID is the only stable handle for updates and deletes; disabled entries are
// retained for display and persistence but excluded from request construction.
type KeyValueEntry struct {
	ID      string `json:"id" msgpack:"i"`
	Key     string `json:"key" msgpack:"k"`
	Value   string `json:"value" msgpack:"v"`
	Enabled bool   `json:"enabled" msgpack:"e"`
}

// NewEntry creates a blank enabled entry with a fresh ID.
func NewEntry() KeyValueEntry {
	return KeyValueEntry{ID: uuid.NewString(), Enabled: true}
}

func (e KeyValueEntry) blank() bool {
	return e.Key == "" && e.Value == ""
}

// KVList is an ordered entry list that always ends with a blank sentinel row.
// The list is never empty; typing into the terminal row appends a fresh blank.
type KVList []KeyValueEntry

// NewKVList returns a list holding only the blank sentinel.
func NewKVList() KVList {
	return KVList{NewEntry()}
}

// Normalize restores the sentinel invariant: at least one entry, and a blank
// terminal entry. Call after any direct mutation.
func (l *KVList) Normalize() {
	if len(*l) == 0 {
		*l = append(*l, NewEntry())
		return
	}
	if last := (*l)[len(*l)-1]; !last.blank() {
		*l = append(*l, NewEntry())
	}
}

// Update mutates the entry with the given ID and re-establishes the sentinel.
// Returns false when no entry has that ID.
func (l *KVList) Update(id string, mutate func(*KeyValueEntry)) bool {
	for i := range *l {
		if (*l)[i].ID == id {
			mutate(&(*l)[i])
			l.Normalize()
			return true
		}
	}
	return false
}

// Remove deletes the entry with the given ID. Deleting the last remaining
// entry leaves exactly one blank sentinel, never zero entries.
func (l *KVList) Remove(id string) bool {
	before := len(*l)
	*l = bulk.SliceFilterInPlace(func(e KeyValueEntry) bool {
		return e.ID != id
	}, *l)
	removed := len(*l) != before
	l.Normalize()
	return removed
}

// Active returns the enabled entries with a non-empty key, in list order.
func (l KVList) Active() []KeyValueEntry {
	return bulk.SliceFilter(func(e KeyValueEntry) bool {
		return e.Enabled && e.Key != ""
	}, l)
}

// RegenerateIDs assigns fresh IDs to every entry. Used on import so entries
// from a file never collide with live ones.
func (l KVList) RegenerateIDs() {
	for i := range l {
		l[i].ID = uuid.NewString()
	}
}

// FormFieldType distinguishes text fields from file attachments.
type FormFieldType string

const (
	FormFieldText FormFieldType = "text"
	FormFieldFile FormFieldType = "file"
)

// FileRef is an opaque handle to file bytes: metadata plus a path the bytes
// are read from at send time. Persisted state never embeds the content.
type FileRef struct {
	Name     string `json:"name" msgpack:"n"`
	MIMEType string `json:"type" msgpack:"m"`
	Size     int64  `json:"size" msgpack:"s"`
	Path     string `json:"path" msgpack:"p"`
}

// FormEntry is a KeyValueEntry extended for multipart form rows.
type FormEntry struct {
	ID      string        `json:"id" msgpack:"i"`
	Key     string        `json:"key" msgpack:"k"`
	Value   string        `json:"value" msgpack:"v"`
	Type    FormFieldType `json:"type" msgpack:"t"`
	File    *FileRef      `json:"file" msgpack:"f"`
	Enabled bool          `json:"enabled" msgpack:"e"`
}

// NewFormEntry creates a blank enabled text entry with a fresh ID.
func NewFormEntry() FormEntry {
	return FormEntry{ID: uuid.NewString(), Type: FormFieldText, Enabled: true}
}

func (e FormEntry) blank() bool {
	return e.Key == "" && e.Value == "" && e.File == nil
}

// FormList is the multipart analog of KVList with the same sentinel invariant.
type FormList []FormEntry

// NewFormList returns a list holding only the blank sentinel.
func NewFormList() FormList {
	return FormList{NewFormEntry()}
}

// Normalize restores the sentinel invariant.
func (l *FormList) Normalize() {
	if len(*l) == 0 {
		*l = append(*l, NewFormEntry())
		return
	}
	if last := (*l)[len(*l)-1]; !last.blank() {
		*l = append(*l, NewFormEntry())
	}
}

// Update mutates the entry with the given ID and re-establishes the sentinel.
func (l *FormList) Update(id string, mutate func(*FormEntry)) bool {
	for i := range *l {
		if (*l)[i].ID == id {
			mutate(&(*l)[i])
			l.Normalize()
			return true
		}
	}
	return false
}

// Remove deletes the entry with the given ID, preserving the sentinel.
func (l *FormList) Remove(id string) bool {
	before := len(*l)
	*l = bulk.SliceFilterInPlace(func(e FormEntry) bool {
		return e.ID != id
	}, *l)
	removed := len(*l) != before
	l.Normalize()
	return removed
}

// Active returns the enabled entries with a non-empty key, in list order.
func (l FormList) Active() []FormEntry {
	return bulk.SliceFilter(func(e FormEntry) bool {
		return e.Enabled && e.Key != ""
	}, l)
}

// RegenerateIDs assigns fresh IDs to every entry.
func (l FormList) RegenerateIDs() {
	for i := range l {
		l[i].ID = uuid.NewString()
	}
}
