package shoplo

import "testing"

func TestEncodeFormDataFlatValues(t *testing.T) {
	got := encodeFormData(map[string]any{"name": "Acme", "active": true, "qty": 3})
	want := "data%5Bactive%5D=true&data%5Bname%5D=Acme&data%5Bqty%5D=3"
	if got != want {
		t.Fatalf("encodeFormData got %q, want %q", got, want)
	}
}

func TestEncodeFormDataNestedMapsAndSlices(t *testing.T) {
	got := encodeFormData(map[string]any{
		"config": map[string]any{"items_key": "products"},
		"tags":   []string{"sale", "new"},
	})
	want := "data%5Bconfig%5D%5Bitems_key%5D=products&data%5Btags%5D%5B0%5D=sale&data%5Btags%5D%5B1%5D=new"
	if got != want {
		t.Fatalf("encodeFormData got %q, want %q", got, want)
	}
}

func TestEncodeFormDataStringMapsAndAnySlices(t *testing.T) {
	got := encodeFormData(map[string]any{
		"attrs": map[string]string{"color": "red"},
		"ids":   []any{1, 2},
	})
	want := "data%5Battrs%5D%5Bcolor%5D=red&data%5Bids%5D%5B0%5D=1&data%5Bids%5D%5B1%5D=2"
	if got != want {
		t.Fatalf("encodeFormData got %q, want %q", got, want)
	}
}

func TestEncodeFormDataEscapesValues(t *testing.T) {
	got := encodeFormData(map[string]any{"name": "Acme & Sons"})
	want := "data%5Bname%5D=Acme+%26+Sons"
	if got != want {
		t.Fatalf("encodeFormData got %q, want %q", got, want)
	}
}

func TestEncodeFormDataSkipsNilValues(t *testing.T) {
	if got := encodeFormData(nil); got != "" {
		t.Fatalf("nil input got %q", got)
	}
	if got := encodeFormData(map[string]any{}); got != "" {
		t.Fatalf("empty map got %q", got)
	}
	if got := encodeFormData(map[string]any{"gone": nil}); got != "" {
		t.Fatalf("nil value got %q", got)
	}
}
