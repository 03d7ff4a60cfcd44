package backend

import "time"

// Protocols the store sells. The backend calls this field server_type.
const (
	ProtocolV2Ray     = "v2ray"
	ProtocolWireGuard = "wireguard"
)

// Error kinds returned in the backend error envelope. Branching in the flows
// is string equality on these.
const (
	ErrKindInviteCodeRequired = "invite_code_required"
	ErrKindInvalidInviteCode  = "invalid_invite_code"
	ErrKindProvisioningFailed = "provisioning_failed"
)

// Payment methods accepted by POST /orders/.
const (
	PaymentMethodCard   = "card"
	PaymentMethodCrypto = "crypto"
)

type User struct {
	ID         int64   `json:"ID"`
	TelegramID int64   `json:"telegram_id"`
	Language   string  `json:"language"`
	Balance    float64 `json:"balance"`
	IsAdmin    bool    `json:"is_admin"`
}

type Plan struct {
	ID           int64   `json:"ID"`
	ServerType   string  `json:"server_type"`
	DurationDays int     `json:"duration_days"`
	DataLimitGB  float64 `json:"data_limit_gb"`
	PriceIRR     float64 `json:"price_irr"`
	PriceUSDT    float64 `json:"price_usdt"`
	IsActive     bool    `json:"is_active"`
}

type NewPlan struct {
	ServerType   string  `json:"server_type"`
	DurationDays int     `json:"duration_days"`
	DataLimitGB  float64 `json:"data_limit_gb"`
	PriceIRR     float64 `json:"price_irr"`
	PriceUSDT    float64 `json:"price_usdt"`
	IsActive     bool    `json:"is_active"`
}

// PlanPatch carries only the fields being changed; nil means untouched.
type PlanPatch struct {
	DurationDays *int     `json:"duration_days,omitempty"`
	DataLimitGB  *float64 `json:"data_limit_gb,omitempty"`
	PriceIRR     *float64 `json:"price_irr,omitempty"`
	PriceUSDT    *float64 `json:"price_usdt,omitempty"`
	IsActive     *bool    `json:"is_active,omitempty"`
}

type Endpoint struct {
	ID       int64  `json:"ID"`
	Name     string `json:"name"`
	Address  string `json:"address"`
	IsActive bool   `json:"is_active"`
}

type EndpointPatch struct {
	Name     *string `json:"name,omitempty"`
	Address  *string `json:"address,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

type CreateOrderRequest struct {
	TelegramID    int64   `json:"telegram_id"`
	PlanID        int64   `json:"plan_id"`
	EndpointID    int64   `json:"endpoint_id"`
	ConfigName    string  `json:"config_name"`
	PaymentMethod string  `json:"payment_method"`
	Amount        float64 `json:"amount"`
}

// OrderReceipt is the reply of POST /orders/. PayLink is only populated for
// crypto orders and may still be empty when the gateway is unreachable.
type OrderReceipt struct {
	ID      int64  `json:"ID"`
	PayLink string `json:"payLink"`
}

type ApproveResult struct {
	Message    string `json:"message"`
	OrderID    int64  `json:"order_id"`
	TelegramID int64  `json:"telegram_id"`
}

type Subscription struct {
	ID         int64     `json:"ID"`
	PlanID     int64     `json:"plan_id"`
	ServerType string    `json:"server_type"`
	ConfigLink string    `json:"config_link"`
	Status     string    `json:"status"`
	ExpiryDate time.Time `json:"expiry_date"`
}

type Settings struct {
	AdminCardNumber string `json:"admin_card_number"`
}
