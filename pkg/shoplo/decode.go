package shoplo

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// Response formats supported by the platform.
const (
	FormatJSON = "json"
	FormatXML  = "xml"
)

// isSupportedFormat reports whether format is one of the two platform
// response formats.
func isSupportedFormat(format string) bool {
	return format == FormatJSON || format == FormatXML
}

// decodeBody parses raw according to format. Empty bodies decode to nil for
// both formats (the platform returns nothing on some writes). JSON yields a
// generic value (map[string]any for objects), XML a navigable
// *etree.Document with CDATA sections folded into element text.
func decodeBody(format, raw string) (any, error) {
	switch format {
	case FormatJSON:
		body := strings.TrimSpace(raw)
		if body == "" {
			return nil, nil
		}
		var decoded any
		if err := json.Unmarshal([]byte(body), &decoded); err != nil {
			return nil, &ParseError{Format: FormatJSON, Err: err}
		}
		return decoded, nil
	case FormatXML:
		if strings.TrimSpace(raw) == "" {
			return nil, nil
		}
		doc := etree.NewDocument()
		if err := doc.ReadFromString(raw); err != nil {
			return nil, &ParseError{Format: FormatXML, Err: err}
		}
		return doc, nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownFormat, format)
	}
}
