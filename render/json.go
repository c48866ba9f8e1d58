package render

import (
	"encoding/json"
	"fmt"
	"io"
)

// EncodeJSON writes items as an Alfred script filter JSON document.
func EncodeJSON(w io.Writer, items []Item) error {
	doc := struct {
		Items []Item `json:"items"`
	}{Items: items}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed encoding JSON items: %w", err)
	}
	return nil
}
