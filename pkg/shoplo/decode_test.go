package shoplo

import (
	"errors"
	"testing"

	"github.com/beevik/etree"
)

func TestDecodeBodyJSONObject(t *testing.T) {
	got, err := decodeBody(FormatJSON, `{"id":1}`)
	if err != nil {
		t.Fatalf("decodeBody: %v", err)
	}
	m, ok := got.(map[string]any)
	if !ok || m["id"] != float64(1) {
		t.Fatalf("unexpected value %#v", got)
	}
}

func TestDecodeBodyJSONArray(t *testing.T) {
	got, err := decodeBody(FormatJSON, `[{"id":1},{"id":2}]`)
	if err != nil {
		t.Fatalf("decodeBody: %v", err)
	}
	list, ok := got.([]any)
	if !ok || len(list) != 2 {
		t.Fatalf("unexpected value %#v", got)
	}
}

func TestDecodeBodyEmptyReturnsNil(t *testing.T) {
	for _, format := range []string{FormatJSON, FormatXML} {
		got, err := decodeBody(format, " \n")
		if err != nil || got != nil {
			t.Fatalf("%s empty body: got %#v err %v", format, got, err)
		}
	}
}

func TestDecodeBodyMalformedJSON(t *testing.T) {
	_, err := decodeBody(FormatJSON, "{oops")
	var parseErr *ParseError
	if !errors.As(err, &parseErr) || parseErr.Format != FormatJSON {
		t.Fatalf("expected json ParseError, got %v", err)
	}
	if parseErr.Err == nil {
		t.Fatalf("expected wrapped cause")
	}
}

func TestDecodeBodyXMLTree(t *testing.T) {
	got, err := decodeBody(FormatXML, `<products><product><id>7</id></product></products>`)
	if err != nil {
		t.Fatalf("decodeBody: %v", err)
	}
	doc, ok := got.(*etree.Document)
	if !ok {
		t.Fatalf("expected document, got %T", got)
	}
	id := doc.FindElement("//product/id")
	if id == nil || id.Text() != "7" {
		t.Fatalf("unexpected document %#v", id)
	}
}

func TestDecodeBodyMalformedXML(t *testing.T) {
	_, err := decodeBody(FormatXML, "<open>")
	var parseErr *ParseError
	if !errors.As(err, &parseErr) || parseErr.Format != FormatXML {
		t.Fatalf("expected xml ParseError, got %v", err)
	}
}

func TestDecodeBodyUnknownFormat(t *testing.T) {
	_, err := decodeBody("yaml", "{}")
	if !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
}
