package richtext

import (
	"encoding/json"
	"fmt"
)

// Entry is an entry as returned by an embed picker. Every level is optional.
type Entry struct {
	Sys    *EntrySys    `json:"sys,omitempty"`
	Fields *EntryFields `json:"fields,omitempty"`
}

type EntrySys struct {
	ID          *string  `json:"id,omitempty"`
	Type        *string  `json:"type,omitempty"`
	ContentType *SysLink `json:"contentType,omitempty"`
}

// SysLink is a {sys: {id}} reference.
type SysLink struct {
	Sys *SysID `json:"sys,omitempty"`
}

type SysID struct {
	ID *string `json:"id,omitempty"`
}

type EntryFields struct {
	Title *string `json:"title,omitempty"`
	Name  *string `json:"name,omitempty"`
}

// Asset is an asset as returned by an embed picker.
type Asset struct {
	Sys    *EntrySys    `json:"sys,omitempty"`
	Fields *AssetFields `json:"fields,omitempty"`
}

type AssetFields struct {
	Title *string    `json:"title,omitempty"`
	File  *AssetFile `json:"file,omitempty"`
}

type AssetFile struct {
	URL         *string `json:"url,omitempty"`
	FileName    *string `json:"fileName,omitempty"`
	ContentType *string `json:"contentType,omitempty"`
}

// EntryAttrs are the attributes of an embedded entry node. Nil means the
// source path was absent.
type EntryAttrs struct {
	EntryID     *string `json:"entryId"`
	ContentType *string `json:"contentType"`
	Title       *string `json:"title"`
}

// AssetAttrs are the attributes of an embedded asset node.
type AssetAttrs struct {
	AssetID  *string `json:"assetId"`
	Title    *string `json:"title"`
	URL      *string `json:"url"`
	MimeType *string `json:"mimeType"`
}

// EntryAttrsFromSource resolves node attributes from an entry. The title is
// the first non-empty of fields.title and fields.name, else sys.id as is.
func EntryAttrsFromSource(e *Entry) EntryAttrs {
	var attrs EntryAttrs
	if e == nil {
		return attrs
	}
	if e.Sys != nil {
		attrs.EntryID = e.Sys.ID
		if ct := e.Sys.ContentType; ct != nil && ct.Sys != nil {
			attrs.ContentType = ct.Sys.ID
		}
	}

	var title, name *string
	if e.Fields != nil {
		title, name = e.Fields.Title, e.Fields.Name
	}
	attrs.Title = firstNonEmpty(title, name, attrs.EntryID)
	return attrs
}

// AssetAttrsFromSource resolves node attributes from an asset. The title is
// fields.title when non-empty, else fields.file.fileName as is.
func AssetAttrsFromSource(a *Asset) AssetAttrs {
	var attrs AssetAttrs
	if a == nil {
		return attrs
	}
	if a.Sys != nil {
		attrs.AssetID = a.Sys.ID
	}

	var title, fileName *string
	if a.Fields != nil {
		title = a.Fields.Title
		if f := a.Fields.File; f != nil {
			fileName = f.FileName
			attrs.URL = f.URL
			attrs.MimeType = f.ContentType
		}
	}
	attrs.Title = firstNonEmpty(title, fileName)
	return attrs
}

// Map returns the attributes as editor node attrs, absent values as nil.
func (a EntryAttrs) Map() map[string]interface{} {
	return map[string]interface{}{
		"entryId":     ptrValue(a.EntryID),
		"contentType": ptrValue(a.ContentType),
		"title":       ptrValue(a.Title),
	}
}

// InlineMap returns the attributes carried by an inline entry node.
func (a EntryAttrs) InlineMap() map[string]interface{} {
	return map[string]interface{}{
		"entryId": ptrValue(a.EntryID),
		"title":   ptrValue(a.Title),
	}
}

func (a AssetAttrs) Map() map[string]interface{} {
	return map[string]interface{}{
		"assetId":  ptrValue(a.AssetID),
		"title":    ptrValue(a.Title),
		"url":      ptrValue(a.URL),
		"mimeType": ptrValue(a.MimeType),
	}
}

// DecodeEntry parses a picker result. A null, false or non-object value, or
// one without a sys object, means the embed was cancelled and yields nil.
func DecodeEntry(raw []byte) (*Entry, error) {
	m, err := decodePickerResult(raw)
	if err != nil || m == nil {
		return nil, err
	}
	return entryFromMap(m), nil
}

// DecodeAsset parses a picker result the same way DecodeEntry does.
func DecodeAsset(raw []byte) (*Asset, error) {
	m, err := decodePickerResult(raw)
	if err != nil || m == nil {
		return nil, err
	}
	return assetFromMap(m), nil
}

func decodePickerResult(raw []byte) (map[string]interface{}, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("failed to decode embed result: %w", err)
	}
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, nil
	}
	if _, ok := m["sys"].(map[string]interface{}); !ok {
		return nil, nil
	}
	return m, nil
}

// EntryBlockNode builds the editor node for a picked entry. It reports false
// when the entry has no id.
func (c *Converter) EntryBlockNode(e *Entry) (*TargetNode, bool) {
	attrs := EntryAttrsFromSource(e)
	if attrs.EntryID == nil || *attrs.EntryID == "" {
		return nil, false
	}
	if c.NativeEmbeds {
		return &TargetNode{Type: TypeEmbeddedEntry, Attrs: attrs.Map()}, true
	}
	return NewTargetNode(TypeParagraph, placeholder("Embedded Entry", *attrs.EntryID)), true
}

// AssetBlockNode builds the editor node for a picked asset.
func (c *Converter) AssetBlockNode(a *Asset) (*TargetNode, bool) {
	attrs := AssetAttrsFromSource(a)
	if attrs.AssetID == nil || *attrs.AssetID == "" {
		return nil, false
	}
	if c.NativeEmbeds {
		return &TargetNode{Type: TypeEmbeddedAsset, Attrs: attrs.Map()}, true
	}
	return NewTargetNode(TypeParagraph, placeholder("Embedded Asset", *attrs.AssetID)), true
}

// InlineEntryNode builds the inline editor node for a picked entry.
func (c *Converter) InlineEntryNode(e *Entry) (*TargetNode, bool) {
	attrs := EntryAttrsFromSource(e)
	if attrs.EntryID == nil || *attrs.EntryID == "" {
		return nil, false
	}
	if c.NativeEmbeds {
		return &TargetNode{Type: TypeInlineEntry, Attrs: attrs.InlineMap()}, true
	}
	return placeholder("Inline Entry", *attrs.EntryID), true
}

func EntryBlockNode(e *Entry) (*TargetNode, bool)  { return defaultConverter.EntryBlockNode(e) }
func AssetBlockNode(a *Asset) (*TargetNode, bool)  { return defaultConverter.AssetBlockNode(a) }
func InlineEntryNode(e *Entry) (*TargetNode, bool) { return defaultConverter.InlineEntryNode(e) }

func linkData(id, linkType string) map[string]interface{} {
	return map[string]interface{}{
		"target": map[string]interface{}{
			"sys": map[string]interface{}{
				"id":       id,
				"type":     "Link",
				"linkType": linkType,
			},
		},
	}
}

// linkTargetID reads data.target.sys.id, returning "" when absent.
func linkTargetID(data map[string]interface{}) string {
	s, _ := lookup(data, "target", "sys", "id").(string)
	return s
}

func entryFromLinkData(data map[string]interface{}) *Entry {
	target, _ := data["target"].(map[string]interface{})
	return entryFromMap(target)
}

func assetFromLinkData(data map[string]interface{}) *Asset {
	target, _ := data["target"].(map[string]interface{})
	return assetFromMap(target)
}

func entryFromMap(m map[string]interface{}) *Entry {
	if m == nil {
		return nil
	}
	e := &Entry{Sys: sysFromMap(m)}
	if fields, ok := m["fields"].(map[string]interface{}); ok {
		e.Fields = &EntryFields{
			Title: stringAt(fields, "title"),
			Name:  stringAt(fields, "name"),
		}
	}
	return e
}

func assetFromMap(m map[string]interface{}) *Asset {
	if m == nil {
		return nil
	}
	a := &Asset{Sys: sysFromMap(m)}
	if fields, ok := m["fields"].(map[string]interface{}); ok {
		a.Fields = &AssetFields{Title: stringAt(fields, "title")}
		if file, ok := fields["file"].(map[string]interface{}); ok {
			a.Fields.File = &AssetFile{
				URL:         stringAt(file, "url"),
				FileName:    stringAt(file, "fileName"),
				ContentType: stringAt(file, "contentType"),
			}
		}
	}
	return a
}

func sysFromMap(m map[string]interface{}) *EntrySys {
	sys, ok := m["sys"].(map[string]interface{})
	if !ok {
		return nil
	}
	out := &EntrySys{
		ID:   stringAt(sys, "id"),
		Type: stringAt(sys, "type"),
	}
	if id := stringAt(lookupMap(sys, "contentType", "sys"), "id"); id != nil {
		out.ContentType = &SysLink{Sys: &SysID{ID: id}}
	}
	return out
}

func lookup(m map[string]interface{}, keys ...string) interface{} {
	var cur interface{} = m
	for _, k := range keys {
		obj, ok := cur.(map[string]interface{})
		if !ok {
			return nil
		}
		cur = obj[k]
	}
	return cur
}

func lookupMap(m map[string]interface{}, keys ...string) map[string]interface{} {
	out, _ := lookup(m, keys...).(map[string]interface{})
	return out
}

func stringAt(m map[string]interface{}, key string) *string {
	if m == nil {
		return nil
	}
	s, ok := m[key].(string)
	if !ok {
		return nil
	}
	return &s
}

func firstNonEmpty(candidates ...*string) *string {
	for i, c := range candidates {
		if i == len(candidates)-1 {
			return c
		}
		if c != nil && *c != "" {
			return c
		}
	}
	return nil
}

func ptrValue(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}
