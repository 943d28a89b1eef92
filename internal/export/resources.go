package export

import (
	"crypto/sha1" //nolint:gosec // non-cryptographic change detection
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/shoplo-hq/shoplo-go/internal/domain"
	"github.com/shoplo-hq/shoplo-go/pkg/shops"
)

// extractResources pulls the item list out of a decoded collection payload and
// maps each entry onto a domain resource. Entries that are not objects are
// dropped.
func extractResources(payload any, keys shops.FieldKeys, collection string) ([]domain.Resource, error) {
	items, err := payloadItems(payload, keys.Items)
	if err != nil {
		return nil, err
	}

	resources := make([]domain.Resource, 0, len(items))
	for _, item := range items {
		data, ok := item.(map[string]any)
		if !ok {
			continue
		}
		resources = append(resources, buildResource(data, keys, collection))
	}
	return resources, nil
}

func payloadItems(payload any, itemsKey string) ([]any, error) {
	switch body := payload.(type) {
	case nil:
		return nil, nil
	case []any:
		return body, nil
	case map[string]any:
		raw, ok := body[itemsKey]
		if !ok {
			return nil, fmt.Errorf("payload has no %q field", itemsKey)
		}
		switch items := raw.(type) {
		case nil:
			return nil, nil
		case []any:
			return items, nil
		case map[string]any:
			return []any{items}, nil
		default:
			return nil, fmt.Errorf("payload field %q is not a list", itemsKey)
		}
	case *etree.Document:
		return xmlItems(body, itemsKey)
	default:
		return nil, fmt.Errorf("unsupported payload type %T", payload)
	}
}

func xmlItems(doc *etree.Document, itemsKey string) ([]any, error) {
	container := doc.FindElement("//" + itemsKey)
	if container == nil {
		return nil, fmt.Errorf("payload has no <%s> element", itemsKey)
	}

	children := container.ChildElements()
	items := make([]any, 0, len(children))
	for _, child := range children {
		if data, ok := elementValue(child).(map[string]any); ok {
			items = append(items, data)
		}
	}
	return items, nil
}

// elementValue converts an XML element into the same shape a decoded JSON
// payload has: leaf elements become strings, repeated tags become lists.
func elementValue(el *etree.Element) any {
	children := el.ChildElements()
	if len(children) == 0 {
		return strings.TrimSpace(el.Text())
	}

	out := make(map[string]any, len(children))
	for _, child := range children {
		value := elementValue(child)
		existing, ok := out[child.Tag]
		if !ok {
			out[child.Tag] = value
			continue
		}
		if list, isList := existing.([]any); isList {
			out[child.Tag] = append(list, value)
		} else {
			out[child.Tag] = []any{existing, value}
		}
	}
	return out
}

// buildResource maps one payload entry onto a resource. Entries without an id
// field fall back to the fingerprint as their identity.
func buildResource(data map[string]any, keys shops.FieldKeys, collection string) domain.Resource {
	sum := fingerprint(data)
	id := stringValue(data[keys.ID])
	if id == "" {
		id = sum
	}

	return domain.Resource{
		ID:          id,
		Collection:  collection,
		Title:       stringValue(data[keys.Title]),
		Summary:     stringValue(data[keys.Summary]),
		ImageURLs:   imageURLs(data[keys.Images]),
		Data:        data,
		Fingerprint: sum,
	}
}

// fingerprint hashes the canonical JSON encoding of the entry. encoding/json
// sorts map keys, so equal payloads always produce the same sum.
func fingerprint(data map[string]any) string {
	canonical, err := json.Marshal(data)
	if err != nil {
		canonical = []byte(fmt.Sprintf("%#v", data))
	}
	sum := sha1.Sum(canonical)
	return hex.EncodeToString(sum[:])
}

func stringValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", val))
	}
}

func imageURLs(raw any) []string {
	list, ok := raw.([]any)
	if !ok {
		if single := imageURL(raw); single != "" {
			return []string{single}
		}
		return nil
	}

	out := make([]string, 0, len(list))
	for _, entry := range list {
		if u := imageURL(entry); u != "" {
			out = append(out, u)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func imageURL(raw any) string {
	switch img := raw.(type) {
	case string:
		return strings.TrimSpace(img)
	case map[string]any:
		for _, key := range []string{"url", "src", "path"} {
			if u := stringValue(img[key]); u != "" {
				return u
			}
		}
	}
	return ""
}

// collectionField normalizes a configured collection path ("/products",
// "orders?page=2") to the payload field name the items live under.
func collectionField(collection string) string {
	name := collection
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	name = strings.Trim(name, "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return name
}
