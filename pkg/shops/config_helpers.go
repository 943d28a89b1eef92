package shops

import "strings"

// ConfigString returns the trimmed string value for key from profile.Config or a fallback.
func ConfigString(p Profile, key, fallback string) string {
	if p.Config != nil {
		if raw, ok := p.Config[key]; ok {
			if val, ok := raw.(string); ok {
				if trimmed := strings.TrimSpace(val); trimmed != "" {
					return trimmed
				}
			}
		}
	}
	return fallback
}

const (
	ConfigItemsKey   = "items_key"
	ConfigIDKey      = "id_key"
	ConfigTitleKey   = "title_key"
	ConfigSummaryKey = "summary_key"
	ConfigImagesKey  = "images_key"
)

// FieldKeys names the payload fields the exporter reads from a collection response.
type FieldKeys struct {
	Items   string
	ID      string
	Title   string
	Summary string
	Images  string
}

// Keys resolves the payload field names for a collection from the shop config
// (falls back to the platform defaults, with the collection name as items key).
func Keys(p Profile, collection string) FieldKeys {
	return FieldKeys{
		Items:   ConfigString(p, ConfigItemsKey, collection),
		ID:      ConfigString(p, ConfigIDKey, "id"),
		Title:   ConfigString(p, ConfigTitleKey, "name"),
		Summary: ConfigString(p, ConfigSummaryKey, "description"),
		Images:  ConfigString(p, ConfigImagesKey, "images"),
	}
}
