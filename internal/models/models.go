package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Product represents a catalog product. The catalog cache holds a read-only
// copy; stock is authoritative only in the database.
type Product struct {
	ID          string          `db:"id" json:"id"`
	Name        string          `db:"name" json:"name"`
	Description string          `db:"description" json:"description"`
	Price       decimal.Decimal `db:"price" json:"price"`
	Discount    int             `db:"discount" json:"discount,omitempty"`
	FinalPrice  decimal.Decimal `db:"final_price" json:"finalPrice"`
	Stock       int             `db:"stock" json:"stock"`
	Images      pq.StringArray  `db:"images" json:"images"`
	Category    string          `db:"category" json:"category,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"createdAt"`
}

// EffectivePrice is the unit price a cart snapshot captures: the discounted
// price when a discount applies, the list price otherwise. FinalPrice is
// computed once at write time and never re-derived on read.
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.Discount > 0 {
		return p.FinalPrice
	}
	return p.Price
}

// PrimaryImage returns the first image, or empty when the product has none.
func (p *Product) PrimaryImage() string {
	if len(p.Images) > 0 {
		return p.Images[0]
	}
	return ""
}

// Category groups products; deletion is blocked while any product references it.
type Category struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Offer is a promotional banner shown on the storefront.
type Offer struct {
	ID          string    `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Discount    int       `db:"discount" json:"discount"`
	Image       string    `db:"image" json:"image,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// CartItem is one line of the cart. ID is a weak reference to a product;
// Price is the unit price captured at add time and is never re-synced if the
// catalog price later changes.
type CartItem struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Image    string          `json:"image,omitempty"`
	Quantity int             `json:"quantity"`
}

// CartItems is a cart snapshot, stored as a jsonb column on orders.
type CartItems []CartItem

// Value implements driver.Valuer.
func (c CartItems) Value() (driver.Value, error) {
	return json.Marshal(c)
}

// Scan implements sql.Scanner.
func (c *CartItems) Scan(src interface{}) error {
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("cart items: unsupported scan type %T", src)
	}
	return json.Unmarshal(b, c)
}

// ShippingInfo is the checkout shipping form. All fields are required
// non-empty; no further format validation is applied.
type ShippingInfo struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Address   string `json:"address"`
	City      string `json:"city"`
	ZipCode   string `json:"zipCode"`
}

// Complete reports whether every shipping field is filled in.
func (s ShippingInfo) Complete() bool {
	return s.FirstName != "" && s.LastName != "" && s.Address != "" &&
		s.City != "" && s.ZipCode != ""
}

// Value implements driver.Valuer.
func (s ShippingInfo) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Scan implements sql.Scanner.
func (s *ShippingInfo) Scan(src interface{}) error {
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("shipping info: unsupported scan type %T", src)
	}
	return json.Unmarshal(b, s)
}

// Order is a frozen snapshot of a checkout. Everything except Status is
// immutable after creation; Status may be changed by an admin, in any
// direction.
type Order struct {
	ID            string          `db:"id" json:"id"`
	UserID        string          `db:"user_id" json:"userId"`
	UserEmail     string          `db:"user_email" json:"userEmail"`
	Items         CartItems       `db:"items" json:"items"`
	Total         decimal.Decimal `db:"total" json:"total"`
	Shipping      ShippingInfo    `db:"shipping" json:"shippingInfo"`
	PaymentMethod string          `db:"payment_method" json:"paymentMethod"`
	Status        string          `db:"status" json:"status"`
	CreatedAt     time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updatedAt"`
}

// Order statuses
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
)

// ValidOrderStatus reports whether s is a known order status.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered:
		return true
	}
	return false
}

// Payment methods
const (
	PaymentMethodCard = "card"
	PaymentMethodUPI  = "upi"
	PaymentMethodCOD  = "cod"
)

// ValidPaymentMethod reports whether m is a known payment method.
func ValidPaymentMethod(m string) bool {
	switch m {
	case PaymentMethodCard, PaymentMethodUPI, PaymentMethodCOD:
		return true
	}
	return false
}

// User roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is a registered account. Role is a proper claim; admin access is
// never decided by email matching.
type User struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

// Reserved site setting keys. Anything else in the settings document is a
// per-element override written by the visual editor.
const (
	SettingBackgroundImage = "backgroundImage"
	SettingLogoText        = "logoText"
	SettingLogoIcon        = "logoIcon"
	SettingTopBarText      = "topBarText"
	SettingHeroTitle       = "heroTitle"
	SettingHeroSubtitle    = "heroSubtitle"
	SettingHeroButtonText  = "heroButtonText"
	SettingHeroImage       = "heroImage"
)

// SiteSettings is the single site customization document: typed reserved
// fields plus a freeform override map kept as a deliberate escape hatch for
// the visual editor.
type SiteSettings struct {
	BackgroundImage string            `json:"backgroundImage,omitempty"`
	LogoText        string            `json:"logoText,omitempty"`
	LogoIcon        string            `json:"logoIcon,omitempty"`
	TopBarText      string            `json:"topBarText,omitempty"`
	HeroTitle       string            `json:"heroTitle,omitempty"`
	HeroSubtitle    string            `json:"heroSubtitle,omitempty"`
	HeroButtonText  string            `json:"heroButtonText,omitempty"`
	HeroImage       string            `json:"heroImage,omitempty"`
	Overrides       map[string]string `json:"overrides,omitempty"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}
