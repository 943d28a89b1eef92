package shoplo

import (
	"fmt"
	"net/url"
	"strconv"
)

// dataFieldName is the single top-level form field the platform expects
// write payloads under.
const dataFieldName = "data"

// encodeFormData serializes data as the url-encoded form body the platform's
// write endpoints consume: every value keyed under a bracketed data[...]
// path, e.g. {"name":"Acme"} becomes data[name]=Acme. Nil or empty data
// yields an empty body. The output is deterministic (keys sorted by
// url.Values.Encode).
func encodeFormData(data map[string]any) string {
	if len(data) == 0 {
		return ""
	}

	values := url.Values{}
	addFormValue(values, dataFieldName, data)
	return values.Encode()
}

// addFormValue flattens value into values under key, appending bracket
// suffixes for nested maps and slices. Nil leaves are dropped.
func addFormValue(values url.Values, key string, value any) {
	switch v := value.(type) {
	case nil:
	case map[string]any:
		for k, item := range v {
			addFormValue(values, key+"["+k+"]", item)
		}
	case map[string]string:
		for k, item := range v {
			values.Set(key+"["+k+"]", item)
		}
	case []any:
		for i, item := range v {
			addFormValue(values, key+"["+strconv.Itoa(i)+"]", item)
		}
	case []string:
		for i, item := range v {
			values.Set(key+"["+strconv.Itoa(i)+"]", item)
		}
	case string:
		values.Set(key, v)
	default:
		values.Set(key, fmt.Sprintf("%v", v))
	}
}
