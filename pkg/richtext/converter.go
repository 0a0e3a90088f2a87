package richtext

import (
	"errors"
	"fmt"
	"strconv"
)

const module = "richtext"

// DefaultMaxDepth bounds the nesting a Converter walks before giving up.
const DefaultMaxDepth = 128

var (
	ErrNilDocument      = errors.New("richtext: nil document")
	ErrMaxDepthExceeded = errors.New("richtext: maximum nesting depth exceeded")
	ErrInvalidDocument  = errors.New("richtext: invalid document")
)

// DepthError reports where a tree walk crossed the nesting limit.
type DepthError struct {
	Path  string
	Limit int
}

func (e *DepthError) Error() string {
	return fmt.Sprintf("richtext: nesting deeper than %d levels at %s", e.Limit, e.Path)
}

func (e *DepthError) Is(target error) bool { return target == ErrMaxDepthExceeded }

// Logger receives non-fatal diagnostics from the transforms.
type Logger interface {
	Debug(module, message string, details map[string]interface{})
	Warn(module, message string, details map[string]interface{})
}

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}

// Converter transforms documents between the source and target schemas.
// A Converter holds no per-call state and is safe for concurrent use.
type Converter struct {
	// MaxDepth is the deepest nesting accepted. Zero means DefaultMaxDepth,
	// a negative value disables the check.
	MaxDepth int
	// NativeEmbeds makes ToTarget emit embeddedEntry, embeddedAsset and
	// inlineEntry nodes instead of bracketed bold placeholder text.
	NativeEmbeds bool
	Logger       Logger
}

// Option configures a Converter.
type Option func(*Converter)

func WithMaxDepth(depth int) Option {
	return func(c *Converter) { c.MaxDepth = depth }
}

func WithNativeEmbeds(enabled bool) Option {
	return func(c *Converter) { c.NativeEmbeds = enabled }
}

func WithLogger(l Logger) Option {
	return func(c *Converter) { c.Logger = l }
}

// NewConverter builds a Converter with the given options applied.
func NewConverter(opts ...Option) *Converter {
	c := &Converter{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var defaultConverter = NewConverter()

// ToTarget converts a source document with the default converter.
func ToTarget(doc *SourceNode) (*TargetNode, error) {
	return defaultConverter.ToTarget(doc)
}

// ToSource converts an editor tree with the default converter.
func ToSource(node *TargetNode) (*SourceNode, error) {
	return defaultConverter.ToSource(node)
}

func (c *Converter) depthLimit() int {
	if c == nil || c.MaxDepth == 0 {
		return DefaultMaxDepth
	}
	return c.MaxDepth
}

func (c *Converter) logger() Logger {
	if c == nil || c.Logger == nil {
		return nopLogger{}
	}
	return c.Logger
}

func (c *Converter) checkDepth(path string, depth int) error {
	limit := c.depthLimit()
	if limit > 0 && depth > limit {
		if path == "" {
			path = "$"
		}
		return &DepthError{Path: path, Limit: limit}
	}
	return nil
}

func childPath(parent string, i int) string {
	if parent == "" {
		return "content[" + strconv.Itoa(i) + "]"
	}
	return parent + ".content[" + strconv.Itoa(i) + "]"
}

// CheckDepth reports a *DepthError when doc nests deeper than limit.
// A non-positive limit always succeeds.
func CheckDepth(doc *SourceNode, limit int) error {
	if limit <= 0 {
		return nil
	}
	var walk func(n *SourceNode, path string, depth int) error
	walk = func(n *SourceNode, path string, depth int) error {
		if n == nil {
			return nil
		}
		if depth > limit {
			if path == "" {
				path = "$"
			}
			return &DepthError{Path: path, Limit: limit}
		}
		for i, child := range n.Content {
			if err := walk(child, childPath(path, i), depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(doc, "", 0)
}
