package policy

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"rich-text-bridge/pkg/richtext"
)

// Feature tags reported in DisabledFeatures.
const (
	FeatureBold      = "bold"
	FeatureItalic    = "italic"
	FeatureUnderline = "underline"
	FeatureLink      = "link"
	FeatureLists     = "lists"
	FeatureHeadings  = "headings"
	FeatureQuote     = "quote"
	FeatureTable     = "table"
	FeatureEmbed     = "embed"
)

var canonicalMarks = []string{richtext.MarkBold, richtext.MarkItalic, richtext.MarkUnderline}

// FieldConfiguration is the rich-text field metadata a policy is derived
// from. Only the first validation record is consulted; a null first record
// counts as no record.
type FieldConfiguration struct {
	Validations []*FieldValidation `json:"validations,omitempty" yaml:"validations,omitempty"`
	Settings    *FieldSettings    `json:"settings,omitempty" yaml:"settings,omitempty"`
}

type FieldValidation struct {
	EnabledMarks     []string `json:"enabledMarks,omitempty" yaml:"enabledMarks,omitempty"`
	EnabledNodeTypes []string `json:"enabledNodeTypes,omitempty" yaml:"enabledNodeTypes,omitempty"`
}

type FieldSettings struct {
	HelpText string `json:"helpText,omitempty" yaml:"helpText,omitempty"`
}

// Policy is the set of features an editor field permits.
type Policy struct {
	AvailableHeadings    []int    `json:"availableHeadings"`
	AvailableMarks       []string `json:"availableMarks"`
	DisabledFeatures     []string `json:"disabledFeatures"`
	AllowHyperlinks      bool     `json:"allowHyperlinks"`
	AllowEmbeddedEntries bool     `json:"allowEmbeddedEntries"`
	AllowEmbeddedAssets  bool     `json:"allowEmbeddedAssets"`
	AllowInlineEntries   bool     `json:"allowInlineEntries"`
	AllowTables          bool     `json:"allowTables"`
	AllowQuotes          bool     `json:"allowQuotes"`
	AllowLists           bool     `json:"allowLists"`
	// AllowCode is not an editor toolbar feature; it only decides whether
	// sanitizing keeps code marks.
	AllowCode bool `json:"allowCode"`
}

// Default returns the policy with every feature enabled.
func Default() Policy {
	return Policy{
		AvailableHeadings:    []int{1, 2, 3, 4, 5, 6},
		AvailableMarks:       []string{richtext.MarkBold, richtext.MarkItalic, richtext.MarkUnderline},
		DisabledFeatures:     []string{},
		AllowHyperlinks:      true,
		AllowEmbeddedEntries: true,
		AllowEmbeddedAssets:  true,
		AllowInlineEntries:   true,
		AllowTables:          true,
		AllowQuotes:          true,
		AllowLists:           true,
		AllowCode:            true,
	}
}

// Parse derives a policy from a field configuration. A nil configuration or
// one without a first validation record yields Default. The input is not
// modified.
func Parse(cfg *FieldConfiguration) Policy {
	if cfg == nil || len(cfg.Validations) == 0 || cfg.Validations[0] == nil {
		return Default()
	}

	v := cfg.Validations[0]
	marks := toSet(v.EnabledMarks)
	nodes := toSet(v.EnabledNodeTypes)

	p := Policy{
		AvailableHeadings:    []int{},
		AvailableMarks:       []string{},
		DisabledFeatures:     []string{},
		AllowHyperlinks:      nodes[richtext.NodeHyperlink],
		AllowEmbeddedEntries: nodes[richtext.NodeEmbeddedEntry],
		AllowEmbeddedAssets:  nodes[richtext.NodeEmbeddedAsset],
		AllowInlineEntries:   nodes[richtext.NodeInlineEntry],
		AllowTables:          nodes[richtext.NodeTable],
		AllowQuotes:          nodes[richtext.NodeQuote] || nodes["quote"],
		AllowLists:           nodes[richtext.NodeUnorderedList] || nodes[richtext.NodeOrderedList],
		AllowCode:            marks[richtext.MarkCode],
	}

	for _, m := range canonicalMarks {
		if marks[m] {
			p.AvailableMarks = append(p.AvailableMarks, m)
		} else {
			p.DisabledFeatures = append(p.DisabledFeatures, m)
		}
	}
	for level := 1; level <= 6; level++ {
		if nodes[richtext.HeadingNodeType(level)] {
			p.AvailableHeadings = append(p.AvailableHeadings, level)
		}
	}

	if !p.AllowHyperlinks {
		p.DisabledFeatures = append(p.DisabledFeatures, FeatureLink)
	}
	if !p.AllowLists {
		p.DisabledFeatures = append(p.DisabledFeatures, FeatureLists)
	}
	if len(p.AvailableHeadings) == 0 {
		p.DisabledFeatures = append(p.DisabledFeatures, FeatureHeadings)
	}
	if !p.AllowQuotes {
		p.DisabledFeatures = append(p.DisabledFeatures, FeatureQuote)
	}
	if !p.AllowTables {
		p.DisabledFeatures = append(p.DisabledFeatures, FeatureTable)
	}
	if !p.AllowEmbeddedEntries && !p.AllowEmbeddedAssets && !p.AllowInlineEntries {
		p.DisabledFeatures = append(p.DisabledFeatures, FeatureEmbed)
	}
	return p
}

// MockFieldConfig builds a single-validation configuration. Nil arguments
// fall back to bold and italic marks and a basic set of node kinds.
func MockFieldConfig(enabledMarks, enabledNodeTypes []string) *FieldConfiguration {
	if enabledMarks == nil {
		enabledMarks = []string{richtext.MarkBold, richtext.MarkItalic}
	}
	if enabledNodeTypes == nil {
		enabledNodeTypes = []string{
			richtext.NodeParagraph,
			richtext.NodeHeading1,
			richtext.NodeHeading2,
			richtext.NodeHeading3,
			richtext.NodeUnorderedList,
			richtext.NodeOrderedList,
			richtext.NodeHyperlink,
			richtext.NodeEmbeddedEntry,
		}
	}
	return &FieldConfiguration{
		Validations: []*FieldValidation{{
			EnabledMarks:     enabledMarks,
			EnabledNodeTypes: enabledNodeTypes,
		}},
	}
}

// Disables reports whether a feature tag is disabled.
func (p Policy) Disables(feature string) bool {
	for _, f := range p.DisabledFeatures {
		if f == feature {
			return true
		}
	}
	return false
}

// AllowedNodeTypes lists the source node kinds a document may contain under
// this policy, in the form richtext.Sanitize expects.
func (p Policy) AllowedNodeTypes() []string {
	out := []string{
		richtext.NodeDocument,
		richtext.NodeParagraph,
		richtext.NodeText,
		richtext.NodeHR,
	}
	for _, level := range p.AvailableHeadings {
		out = append(out, richtext.HeadingNodeType(level))
	}
	if p.AllowLists {
		out = append(out, richtext.NodeUnorderedList, richtext.NodeOrderedList, richtext.NodeListItem)
	}
	if p.AllowQuotes {
		out = append(out, richtext.NodeQuote)
	}
	if p.AllowTables {
		out = append(out,
			richtext.NodeTable,
			richtext.NodeTableRow,
			richtext.NodeTableCell,
			richtext.NodeTableHeaderCell,
		)
	}
	if p.AllowHyperlinks {
		out = append(out, richtext.NodeHyperlink)
	}
	if p.AllowEmbeddedEntries {
		out = append(out, richtext.NodeEmbeddedEntry)
	}
	if p.AllowEmbeddedAssets {
		out = append(out, richtext.NodeEmbeddedAsset)
	}
	if p.AllowInlineEntries {
		out = append(out, richtext.NodeInlineEntry)
	}
	return out
}

// AllowedMarks lists the marks a document may carry under this policy.
func (p Policy) AllowedMarks() []string {
	out := append([]string{}, p.AvailableMarks...)
	if p.AllowCode {
		out = append(out, richtext.MarkCode)
	}
	return out
}

// Sanitize restricts doc to what the policy allows.
func (p Policy) Sanitize(doc *richtext.SourceNode) *richtext.SourceNode {
	return richtext.Sanitize(doc, p.AllowedNodeTypes(), p.AllowedMarks())
}

// Fingerprint is a stable hash of the policy.
func (p Policy) Fingerprint() string {
	return fingerprint(p)
}

// Fingerprint is a stable hash of the configuration, used as a cache key.
// A nil configuration hashes like an empty one.
func (c *FieldConfiguration) Fingerprint() string {
	if c == nil {
		return fingerprint(FieldConfiguration{})
	}
	return fingerprint(c)
}

func fingerprint(v interface{}) string {
	raw, err := json.Marshal(v)
	if err != nil {
		raw = []byte(fmt.Sprintf("%#v", v))
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, it := range items {
		set[it] = true
	}
	return set
}
