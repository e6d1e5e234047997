package rerank

import (
	"context"

	"rerankbench/internal/clientpool"
)

// RerankOperation returns a unit of work performing one rerank call and
// validating that the result set is non-empty.
func RerankOperation(query string, documents []string, topN int) func(context.Context, *clientpool.Handle) error {
	return func(ctx context.Context, h *clientpool.Handle) error {
		_, err := Rerank(ctx, h, query, documents, topN)
		return err
	}
}

// ScoreOperation returns a unit of work performing one score call and
// validating that the response aligns with the input documents.
func ScoreOperation(model, query string, documents []string) func(context.Context, *clientpool.Handle) error {
	return func(ctx context.Context, h *clientpool.Handle) error {
		_, err := Score(ctx, h, model, query, documents)
		return err
	}
}
