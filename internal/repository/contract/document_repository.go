package contract

import (
	"context"

	"rich-text-bridge/internal/entity"
	"rich-text-bridge/internal/repository/specification"

	"github.com/google/uuid"
)

type DocumentRepository interface {
	Create(ctx context.Context, document *entity.Document) error
	Update(ctx context.Context, document *entity.Document) error
	// SaveAnalysis writes only the derived text columns.
	SaveAnalysis(ctx context.Context, id uuid.UUID, plainText string, wordCount int) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Document, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Document, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
