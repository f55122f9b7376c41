package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/wolfer717/raven-go/internal/model"
)

// DumpTransport writes JSON-encoded events to a writer instead of the
// network. Useful for dry runs and local inspection.
type DumpTransport struct {
	enc *json.Encoder
}

// NewDump creates a DumpTransport writing to w, optionally pretty-printed.
func NewDump(w io.Writer, pretty bool) *DumpTransport {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return &DumpTransport{enc: enc}
}

// Send implements Transport.
func (t *DumpTransport) Send(_ context.Context, ev *model.Event) (model.Response, error) {
	if err := t.enc.Encode(ev); err != nil {
		return model.Response{Status: model.StatusFailed},
			fmt.Errorf("transport: dump: %w", err)
	}
	return model.Response{Status: model.StatusSuccess, EventID: ev.EventID}, nil
}
