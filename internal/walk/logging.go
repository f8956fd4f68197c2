package walk

import (
	"context"

	"github.com/desertwitch/execwalk/internal/logging"
	"github.com/desertwitch/execwalk/internal/schema"
)

func (prog *Service) walkLogger(ctx context.Context, c Context, path any) *logging.Logger {
	logElems := []any{}

	if path != nil {
		logElems = append(logElems, "path", path)
	}

	if c != nil {
		logElems = append(logElems, "entry", c.RelPath())

		if ctx.Value(schema.PosKey) != nil {
			logElems = append(logElems, "entry_position", ctx.Value(schema.PosKey))
		}

		logElems = append(logElems,
			"index", c.Index(),
			"dir", c.Entry().IsDir())
	}

	return prog.log.With(logElems...)
}
