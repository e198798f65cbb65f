package webtransport

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/txwerewolves/wwserver/internal/webapp"
)

// writeEvent frames one webapp.Event on the wire per spec.md §6: the
// JSON payload is split at '\n', each line prefixed "data: " and
// terminated "\r\n", with a blank "\r\n" line separating events. The
// event kind itself is carried as the SSE "event:" field so the browser
// client can use addEventListener per kind instead of switching on a
// wrapper field.
func writeEvent(w http.ResponseWriter, e webapp.Event) error {
	payload, err := json.Marshal(e.Data)
	if err != nil {
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "event: %s\r\n", e.Kind)
	for _, line := range strings.Split(string(payload), "\n") {
		fmt.Fprintf(&b, "data: %s\r\n", line)
	}
	b.WriteString("\r\n")

	_, err = io.WriteString(w, b.String())
	return err
}
