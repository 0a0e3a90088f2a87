package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"rich-text-bridge/internal/dto"
	"rich-text-bridge/internal/pkg/logger"
	"rich-text-bridge/pkg/policy"
	"rich-text-bridge/pkg/richtext"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	EmbedKindEntry  = "entry"
	EmbedKindAsset  = "asset"
	EmbedKindInline = "inline"
)

type IConvertService interface {
	ToTarget(ctx context.Context, source json.RawMessage, nativeEmbeds bool) (*richtext.TargetNode, error)
	ToSource(ctx context.Context, target json.RawMessage, p *policy.Policy) (*richtext.SourceNode, error)
	Validate(ctx context.Context, raw json.RawMessage) bool
	Analyze(ctx context.Context, raw json.RawMessage) (*richtext.Stats, error)
	EmptyDocument() *richtext.SourceNode
	BuildEmbed(ctx context.Context, req *dto.BuildEmbedRequest) (*dto.BuildEmbedResponse, error)

	// Prepare parses a stored or submitted source document and restricts it
	// to the policy.
	Prepare(ctx context.Context, raw json.RawMessage, p policy.Policy) (*richtext.SourceNode, error)
	Forward(ctx context.Context, doc *richtext.SourceNode) (*richtext.TargetNode, error)
	Reverse(ctx context.Context, node *richtext.TargetNode, p *policy.Policy) (*richtext.SourceNode, error)
}

type convertService struct {
	maxDepth     int
	nativeEmbeds bool
	logger       logger.ILogger
	tracer       trace.Tracer
}

func NewConvertService(maxDepth int, nativeEmbeds bool, log logger.ILogger) IConvertService {
	return &convertService{
		maxDepth:     maxDepth,
		nativeEmbeds: nativeEmbeds,
		logger:       log,
		tracer:       otel.Tracer("richtext-bridge"),
	}
}

func (s *convertService) converter(nativeEmbeds bool) *richtext.Converter {
	return richtext.NewConverter(
		richtext.WithMaxDepth(s.maxDepth),
		richtext.WithNativeEmbeds(nativeEmbeds),
		richtext.WithLogger(s.logger),
	)
}

// guard runs fn inside a span and turns a panic into ErrConversionFailed.
func (s *convertService) guard(ctx context.Context, op string, fn func() error) (err error) {
	_, span := s.tracer.Start(ctx, "richtext."+op)
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("ConvertService", "Conversion panicked", map[string]interface{}{
				"operation": op,
				"panic":     fmt.Sprint(r),
			})
			err = ErrConversionFailed
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			var depthErr *richtext.DepthError
			if errors.As(err, &depthErr) {
				s.logger.Warn("ConvertService", "Document too deep", map[string]interface{}{
					"operation": op,
					"path":      depthErr.Path,
					"limit":     depthErr.Limit,
				})
			}
		}
	}()

	return fn()
}

func (s *convertService) depthLimit() int {
	if s.maxDepth == 0 {
		return richtext.DefaultMaxDepth
	}
	return s.maxDepth
}

func parseSource(raw json.RawMessage) (*richtext.SourceNode, error) {
	if !richtext.IsValidDocument([]byte(raw)) {
		return nil, richtext.ErrInvalidDocument
	}
	doc, err := richtext.ParseSource(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", richtext.ErrInvalidDocument, err)
	}
	return doc, nil
}

func parseTarget(raw json.RawMessage) (*richtext.TargetNode, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, richtext.ErrNilDocument
	}
	node, err := richtext.ParseTarget(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", richtext.ErrInvalidDocument, err)
	}
	if node.Type == "" {
		return nil, fmt.Errorf("%w: missing type", richtext.ErrInvalidDocument)
	}
	return node, nil
}

func (s *convertService) ToTarget(ctx context.Context, source json.RawMessage, nativeEmbeds bool) (*richtext.TargetNode, error) {
	var out *richtext.TargetNode
	err := s.guard(ctx, "to_target", func() error {
		doc, err := parseSource(source)
		if err != nil {
			return err
		}
		out, err = s.converter(nativeEmbeds).ToTarget(doc)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *convertService) ToSource(ctx context.Context, target json.RawMessage, p *policy.Policy) (*richtext.SourceNode, error) {
	node, err := parseTarget(target)
	if err != nil {
		return nil, err
	}
	return s.Reverse(ctx, node, p)
}

func (s *convertService) Forward(ctx context.Context, doc *richtext.SourceNode) (*richtext.TargetNode, error) {
	var out *richtext.TargetNode
	err := s.guard(ctx, "forward", func() error {
		var err error
		out, err = s.converter(s.nativeEmbeds).ToTarget(doc)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Reverse converts an editor tree and, when p is set, sanitises the result
// under it.
func (s *convertService) Reverse(ctx context.Context, node *richtext.TargetNode, p *policy.Policy) (*richtext.SourceNode, error) {
	var out *richtext.SourceNode
	err := s.guard(ctx, "reverse", func() error {
		doc, err := s.converter(s.nativeEmbeds).ToSource(node)
		if err != nil {
			return err
		}
		if p != nil {
			doc = p.Sanitize(doc)
		}
		out = doc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *convertService) Prepare(ctx context.Context, raw json.RawMessage, p policy.Policy) (*richtext.SourceNode, error) {
	var out *richtext.SourceNode
	err := s.guard(ctx, "prepare", func() error {
		doc, err := parseSource(raw)
		if err != nil {
			return err
		}
		if err := richtext.CheckDepth(doc, s.depthLimit()); err != nil {
			return err
		}
		out = p.Sanitize(doc)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *convertService) Validate(ctx context.Context, raw json.RawMessage) bool {
	_, span := s.tracer.Start(ctx, "richtext.validate")
	defer span.End()

	valid := richtext.IsValidDocument([]byte(raw))
	span.SetAttributes(attribute.Bool("richtext.valid", valid))
	return valid
}

func (s *convertService) Analyze(ctx context.Context, raw json.RawMessage) (*richtext.Stats, error) {
	var stats richtext.Stats
	err := s.guard(ctx, "analyze", func() error {
		doc, err := parseSource(raw)
		if err != nil {
			return err
		}
		if err := richtext.CheckDepth(doc, s.depthLimit()); err != nil {
			return err
		}
		stats = richtext.Analyze(doc)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *convertService) EmptyDocument() *richtext.SourceNode {
	return richtext.CreateEmptyDocument()
}

func (s *convertService) BuildEmbed(ctx context.Context, req *dto.BuildEmbedRequest) (*dto.BuildEmbedResponse, error) {
	res := &dto.BuildEmbedResponse{}
	err := s.guard(ctx, "build_embed", func() error {
		conv := s.converter(req.NativeEmbeds)

		var (
			node *richtext.TargetNode
			ok   bool
		)
		switch req.Kind {
		case EmbedKindEntry, EmbedKindInline:
			entry, err := richtext.DecodeEntry(req.Result)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrInvalidEmbed, err)
			}
			if req.Kind == EmbedKindEntry {
				node, ok = conv.EntryBlockNode(entry)
			} else {
				node, ok = conv.InlineEntryNode(entry)
			}
		case EmbedKindAsset:
			asset, err := richtext.DecodeAsset(req.Result)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrInvalidEmbed, err)
			}
			node, ok = conv.AssetBlockNode(asset)
		default:
			return ErrUnknownEmbedKind
		}

		if !ok {
			s.logger.Debug("ConvertService", "Embed picker returned nothing to insert", map[string]interface{}{"kind": req.Kind})
			return nil
		}
		res.Inserted = true
		res.Node = node
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
