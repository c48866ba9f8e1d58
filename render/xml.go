package render

import (
	"encoding/xml"
	"fmt"
	"io"
)

type xmlItems struct {
	XMLName xml.Name `xml:"items"`
	Items   []Item   `xml:"item"`
}

// EncodeXML writes items as an Alfred script filter XML document.
func EncodeXML(w io.Writer, items []Item) error {
	if _, err := io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?>`); err != nil {
		return fmt.Errorf("failed writing XML header: %w", err)
	}
	if err := xml.NewEncoder(w).Encode(xmlItems{Items: items}); err != nil {
		return fmt.Errorf("failed encoding XML items: %w", err)
	}
	return nil
}
