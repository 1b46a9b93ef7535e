package outbound

import "context"

type TextExtractorPort interface {
	Extract(ctx context.Context, documentPath string) (string, error)
}
