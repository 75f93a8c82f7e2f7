package integrations

import (
	"context"

	"github.com/kerbaras/novelshelf/pkg/data"
)

type Exporter interface {
	CreateEPub(ctx context.Context, novel *data.Novel, chapters []*data.Chapter) (string, error)
}
