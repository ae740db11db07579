package models

import "time"

// Event types
const (
	EventTypeOrderPlaced        = "ORDER_PLACED"
	EventTypeOrderStatusChanged = "ORDER_STATUS_CHANGED"
	EventTypeCatalogChanged     = "CATALOG_CHANGED"
)

// Catalog collections referenced by CatalogChanged events
const (
	CollectionProducts   = "products"
	CollectionCategories = "categories"
	CollectionOffers     = "offers"
)

// Catalog change actions
const (
	CatalogActionCreated = "created"
	CatalogActionUpdated = "updated"
	CatalogActionDeleted = "deleted"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderPlacedEvent published when a checkout is acknowledged
type OrderPlacedEvent struct {
	BaseEvent
	OrderID   string `json:"order_id"`
	UserID    string `json:"user_id"`
	Total     string `json:"total"`
	ItemCount int    `json:"item_count"`
}

// OrderStatusChangedEvent published when an admin moves an order status
type OrderStatusChangedEvent struct {
	BaseEvent
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

// CatalogChangedEvent published when an admin mutates the catalog; consumed
// by the catalog worker to trigger a full cache reload
type CatalogChangedEvent struct {
	BaseEvent
	Collection string `json:"collection"`
	DocID      string `json:"doc_id"`
	Action     string `json:"action"`
}
