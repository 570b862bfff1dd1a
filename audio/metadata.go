// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"mime"
	"path/filepath"
	"slices"
	"strings"
)

// Metadata is an ordered set of tags. Keys are kept verbatim.
type Metadata struct {
	keys   []string
	values map[string]string
}

// MetadataFromMap builds Metadata from m with keys in lexical order.
func MetadataFromMap(m map[string]string) *Metadata {
	md := &Metadata{}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		md.Set(k, m[k])
	}
	return md
}

// Set adds or replaces a tag. A replaced tag keeps its position.
func (m *Metadata) Set(key, value string) {
	if m.values == nil {
		m.values = make(map[string]string)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

func (m *Metadata) Get(key string) (string, bool) {
	if m == nil {
		return "", false
	}
	v, ok := m.values[key]
	return v, ok
}

// Lookup finds a tag ignoring key case.
func (m *Metadata) Lookup(key string) (string, bool) {
	if m == nil {
		return "", false
	}
	for _, k := range m.keys {
		if strings.EqualFold(k, key) {
			return m.values[k], true
		}
	}
	return "", false
}

func (m *Metadata) Keys() []string {
	if m == nil {
		return nil
	}
	return slices.Clone(m.keys)
}

func (m *Metadata) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Map returns a copy of the tags.
func (m *Metadata) Map() map[string]string {
	out := make(map[string]string, m.Len())
	if m == nil {
		return out
	}
	for _, k := range m.keys {
		out[k] = m.values[k]
	}
	return out
}

// Clone returns an independent copy.
func (m *Metadata) Clone() *Metadata {
	c := &Metadata{}
	if m == nil {
		return c
	}
	for _, k := range m.keys {
		c.Set(k, m.values[k])
	}
	return c
}

// Attachment is a binary blob embedded next to the audio, such as cover art.
type Attachment struct {
	Data []byte
	// Ext is the file extension without the dot ("png", "jpeg").
	Ext string
}

// MIMEType guesses the attachment MIME type from its extension.
func (a *Attachment) MIMEType() string {
	ext := strings.ToLower(strings.TrimPrefix(a.Ext, "."))
	switch ext {
	case "jpg", "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	}
	if t := mime.TypeByExtension("." + ext); t != "" {
		return t
	}
	return "application/octet-stream"
}

// ExtFromContentType maps an image Content-Type such as "image/png" to "png".
func ExtFromContentType(contentType string) string {
	ct := strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])
	_, sub, ok := strings.Cut(ct, "/")
	if !ok || sub == "" {
		return ""
	}
	return strings.ToLower(sub)
}

// ExtFromPath returns the lower-cased extension of path without the dot.
func ExtFromPath(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}
