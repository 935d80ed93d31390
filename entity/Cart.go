package entity

// Cart ไม่ได้เก็บใน DB (เก็บใน redis ต่อ user ต่อร้าน)
const CartVersion = 1

type CartItem struct {
	ItemID              uint   `json:"itemId"`
	Quantity            int    `json:"quantity"`
	SpecialInstructions string `json:"specialInstructions,omitempty"`
}

type Cart struct {
	Version         int        `json:"version"`
	TenantSlug      string     `json:"tenantSlug"`
	Items           []CartItem `json:"items"`
	DeliveryAddress *Address   `json:"deliveryAddress,omitempty"`
	OrderType       string     `json:"orderType"`

	// legacy (version 0): รายการ id แบบแบน
	BookIDs []uint `json:"bookIds,omitempty"`
}
