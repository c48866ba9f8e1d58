// Package render turns matching process records into launcher result items,
// and encodes them in the formats supported by launchers and terminals.
package render

import (
	"fmt"
	"io"

	"go.hackfix.me/lhost/models"
)

// Placeholder item values, used when no records match.
const (
	NoResultsTitle    = "No running processes found."
	NoResultsSubtitle = "Try a different search query, or start a process on localhost."
	NoResultsArg      = "http://localhost"
)

// Item is a single launcher result.
type Item struct {
	Title    string `json:"title"    xml:"title"`
	Subtitle string `json:"subtitle" xml:"subtitle"`
	Arg      string `json:"arg"      xml:"arg"`
}

// NewItem returns the result item for a process record.
func NewItem(r models.ProcessRecord) Item {
	running := "localhost:" + r.Port
	return Item{
		Title:    running + " ~ " + r.Name,
		Subtitle: r.Directory + "  " + r.Command,
		Arg:      "http://" + running,
	}
}

// Items returns the result items for the given records. If there are no
// records, a single informational item is returned instead.
func Items(records []models.ProcessRecord) []Item {
	if len(records) == 0 {
		return []Item{{
			Title:    NoResultsTitle,
			Subtitle: NoResultsSubtitle,
			Arg:      NoResultsArg,
		}}
	}

	items := make([]Item, len(records))
	for i, r := range records {
		items[i] = NewItem(r)
	}

	return items
}

// Format is an output format.
type Format string

// All supported output formats.
const (
	FormatXML   Format = "xml"
	FormatJSON  Format = "json"
	FormatTable Format = "table"
)

// FormatFromString returns a valid Format for the given string, or an error
// if the value is invalid.
func FormatFromString(val string) (Format, error) {
	switch Format(val) {
	case FormatXML:
		return FormatXML, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatTable:
		return FormatTable, nil
	}
	return "", fmt.Errorf("unsupported output format '%s'", val)
}

// Encoder writes result items to w.
type Encoder func(w io.Writer, items []Item) error

// NewEncoder returns the encoder for the given format.
func NewEncoder(f Format) (Encoder, error) {
	switch f {
	case FormatXML:
		return EncodeXML, nil
	case FormatJSON:
		return EncodeJSON, nil
	case FormatTable:
		return EncodeTable, nil
	}
	return nil, fmt.Errorf("unsupported output format '%s'", f)
}
