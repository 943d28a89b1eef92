package publishers

import (
	"time"

	"github.com/shoplo-hq/shoplo-go/internal/domain"
)

// Event represents the payload published downstream.
type Event struct {
	ShopID      string          `json:"shop_id"`
	ShopName    string          `json:"shop_name"`
	Resource    domain.Resource `json:"resource"`
	CollectedAt time.Time       `json:"collected_at"`
}

// NewEvent constructs an Event for the given shop + resource.
func NewEvent(shopID, shopName string, res domain.Resource) Event {
	return Event{
		ShopID:      shopID,
		ShopName:    shopName,
		Resource:    res,
		CollectedAt: time.Now().UTC(),
	}
}
