package enum

// ── State machines (CHECK constrained in DB) ──

const (
	TicketStatusPreparing = "PREPARING"
	TicketStatusReady     = "READY"
	TicketStatusClosed    = "CLOSED"
)

const (
	OrderStatusPending    = "PENDING"
	OrderStatusInProgress = "IN_PROGRESS"
	OrderStatusCompleted  = "COMPLETED"
	OrderStatusCancelled  = "CANCELLED"
	OrderStatusDeleted    = "DELETED"
)

const (
	TableStatusAvailable    = "AVAILABLE"
	TableStatusOccupied     = "OCCUPIED"
	TableStatusReserved     = "RESERVED"
	TableStatusOutOfService = "OUT_OF_SERVICE"
)

// ── Actors and layout ──

const (
	UserRoleOwner   = "OWNER"
	UserRoleManager = "MANAGER"
	UserRoleCashier = "CASHIER"
	UserRoleKitchen = "KITCHEN"
)

const (
	CreatorChannelAdmin = "ADMIN"
	CreatorChannelPOS   = "POS"
	CreatorChannelKiosk = "SELF_ORDER_KIOSK"
)

const (
	TableTypeStandard = "STANDARD"
	TableTypeBooth    = "BOOTH"
	TableTypeHighTop  = "HIGH_TOP"
	TableTypeOutdoor  = "OUTDOOR"
)

// ── Configurable labels ──

const (
	PaymentMethodCash   = "CASH"
	PaymentMethodCard   = "CARD"
	PaymentMethodUPI    = "UPI"
	PaymentMethodWallet = "WALLET"
)

const (
	DiscountTypePercentage = "PERCENTAGE"
	DiscountTypeFixed      = "FIXED"
)
