package shiprocket

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Courier is one delivery option from the serviceability endpoint.
type Courier struct {
	CourierCompanyID int     `json:"courier_company_id"`
	CourierName      string  `json:"courier_name"`
	Rate             float64 `json:"rate"`
	ETD              string  `json:"etd,omitempty"`
}

type serviceabilityResponse struct {
	Data struct {
		AvailableCourierCompanies []Courier `json:"available_courier_companies"`
	} `json:"data"`
}

type Serviceability struct {
	Couriers []Courier
}

// Serviceable reports whether at least one courier can make the delivery.
func (s Serviceability) Serviceable() bool {
	return len(s.Couriers) > 0
}

// OrderItem restates a storefront line item in the carrier's format.
type OrderItem struct {
	Name         string  `json:"name"`
	SKU          string  `json:"sku"`
	Units        int     `json:"units"`
	SellingPrice float64 `json:"selling_price"`
	Discount     string  `json:"discount"`
	Tax          string  `json:"tax"`
	HSN          string  `json:"hsn"`
}

// OrderRequest is the adhoc order-creation payload.
type OrderRequest struct {
	OrderID             string      `json:"order_id"`
	OrderDate           string      `json:"order_date"`
	PickupLocation      string      `json:"pickup_location"`
	BillingCustomerName string      `json:"billing_customer_name"`
	BillingLastName     string      `json:"billing_last_name"`
	BillingAddress      string      `json:"billing_address"`
	BillingCity         string      `json:"billing_city"`
	BillingPincode      string      `json:"billing_pincode"`
	BillingState        string      `json:"billing_state"`
	BillingCountry      string      `json:"billing_country"`
	BillingEmail        string      `json:"billing_email"`
	BillingPhone        string      `json:"billing_phone"`
	ShippingIsBilling   bool        `json:"shipping_is_billing"`
	OrderItems          []OrderItem `json:"order_items"`
	PaymentMethod       string      `json:"payment_method"`
	SubTotal            float64     `json:"sub_total"`
	Length              float64     `json:"length"`
	Breadth             float64     `json:"breadth"`
	Height              float64     `json:"height"`
	Weight              float64     `json:"weight"`
}

type OrderResponse struct {
	OrderID    int64  `json:"order_id"`
	ShipmentID int64  `json:"shipment_id"`
	Status     string `json:"status"`
}
