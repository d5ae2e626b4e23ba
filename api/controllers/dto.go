package controllers

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shopkartlabs/shopkart-backend/pkg/db/models"
	"github.com/shopkartlabs/shopkart-backend/pkg/pagination"
)

// mapPage rewraps a paged model result with response DTOs, keeping the
// pagination metadata intact.
func mapPage[T, U any](page pagination.Page[T], f func(T) U) pagination.Page[U] {
	content := make([]U, 0, len(page.Content))
	for _, item := range page.Content {
		content = append(content, f(item))
	}
	return pagination.Page[U]{
		Content:       content,
		Page:          page.Page,
		Size:          page.Size,
		TotalElements: page.TotalElements,
		TotalPages:    page.TotalPages,
		Last:          page.Last,
	}
}

type productResponse struct {
	ID              uuid.UUID       `json:"id"`
	SKU             string          `json:"sku"`
	Slug            string          `json:"slug"`
	Name            string          `json:"name"`
	Description     *string         `json:"description,omitempty"`
	Brand           *string         `json:"brand,omitempty"`
	Category        string          `json:"category"`
	Price           decimal.Decimal `json:"price"`
	MRP             decimal.Decimal `json:"mrp"`
	TaxPercent      decimal.Decimal `json:"taxPercent"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	ImageURL        *string         `json:"imageUrl,omitempty"`
	CODAvailable    bool            `json:"codAvailable"`
	Returnable      bool            `json:"returnable"`
	IsActive        bool            `json:"isActive"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

func newProductResponse(p models.Product) productResponse {
	return productResponse{
		ID:              p.ID,
		SKU:             p.SKU,
		Slug:            p.Slug,
		Name:            p.Name,
		Description:     p.Description,
		Brand:           p.Brand,
		Category:        p.Category,
		Price:           p.Price,
		MRP:             p.MRP,
		TaxPercent:      p.TaxPercent,
		DiscountPercent: p.DiscountPercent,
		ImageURL:        p.ImageURL,
		CODAvailable:    p.CODAvailable,
		Returnable:      p.Returnable,
		IsActive:        p.IsActive,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

type orderItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"productId"`
	ProductName string          `json:"productName"`
	SKU         string          `json:"sku"`
	Price       decimal.Decimal `json:"price"`
	TaxPercent  decimal.Decimal `json:"taxPercent"`
	Qty         int             `json:"qty"`
	LineTotal   decimal.Decimal `json:"lineTotal"`
}

type orderResponse struct {
	ID              uuid.UUID           `json:"id"`
	OrderNumber     string              `json:"orderNumber"`
	Status          string              `json:"status"`
	PaymentMethod   string              `json:"paymentMethod"`
	PaymentStatus   string              `json:"paymentStatus"`
	Subtotal        decimal.Decimal     `json:"subtotal"`
	Tax             decimal.Decimal     `json:"tax"`
	ShippingCharge  decimal.Decimal     `json:"shippingCharge"`
	Discount        decimal.Decimal     `json:"discount"`
	Total           decimal.Decimal     `json:"total"`
	DeliveryName    string              `json:"deliveryName"`
	DeliveryPhone   string              `json:"deliveryPhone"`
	DeliveryLine1   string              `json:"deliveryLine1"`
	DeliveryLine2   *string             `json:"deliveryLine2,omitempty"`
	DeliveryCity    string              `json:"deliveryCity"`
	DeliveryState   string              `json:"deliveryState"`
	DeliveryPincode string              `json:"deliveryPincode"`
	CancelReason    *string             `json:"cancelReason,omitempty"`
	CancelledAt     *time.Time          `json:"cancelledAt,omitempty"`
	ShippedAt       *time.Time          `json:"shippedAt,omitempty"`
	DeliveredAt     *time.Time          `json:"deliveredAt,omitempty"`
	Items           []orderItemResponse `json:"items"`
	CreatedAt       time.Time           `json:"createdAt"`
	UpdatedAt       time.Time           `json:"updatedAt"`
}

func newOrderResponse(o models.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, orderItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			SKU:         item.SKU,
			Price:       item.Price,
			TaxPercent:  item.TaxPercent,
			Qty:         item.Qty,
			LineTotal:   item.LineTotal,
		})
	}
	return orderResponse{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		Status:          string(o.Status),
		PaymentMethod:   string(o.PaymentMethod),
		PaymentStatus:   string(o.PaymentStatus),
		Subtotal:        o.Subtotal,
		Tax:             o.Tax,
		ShippingCharge:  o.ShippingCharge,
		Discount:        o.Discount,
		Total:           o.Total,
		DeliveryName:    o.DeliveryName,
		DeliveryPhone:   o.DeliveryPhone,
		DeliveryLine1:   o.DeliveryLine1,
		DeliveryLine2:   o.DeliveryLine2,
		DeliveryCity:    o.DeliveryCity,
		DeliveryState:   o.DeliveryState,
		DeliveryPincode: o.DeliveryPincode,
		CancelReason:    o.CancelReason,
		CancelledAt:     o.CancelledAt,
		ShippedAt:       o.ShippedAt,
		DeliveredAt:     o.DeliveredAt,
		Items:           items,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

type addressResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Line1     string    `json:"line1"`
	Line2     *string   `json:"line2,omitempty"`
	Landmark  *string   `json:"landmark,omitempty"`
	City      string    `json:"city"`
	State     string    `json:"state"`
	Pincode   string    `json:"pincode"`
	Country   string    `json:"country"`
	Type      string    `json:"type"`
	IsDefault bool      `json:"isDefault"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func newAddressResponse(a models.UserAddress) addressResponse {
	return addressResponse{
		ID:        a.ID,
		Name:      a.Name,
		Phone:     a.Phone,
		Line1:     a.Line1,
		Line2:     a.Line2,
		Landmark:  a.Landmark,
		City:      a.City,
		State:     a.State,
		Pincode:   a.Pincode,
		Country:   a.Country,
		Type:      string(a.Type),
		IsDefault: a.IsDefault,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

type locationResponse struct {
	ID                  uuid.UUID       `json:"id"`
	Name                string          `json:"name"`
	City                string          `json:"city"`
	State               string          `json:"state"`
	Pincode             string          `json:"pincode"`
	Lat                 *float64        `json:"lat,omitempty"`
	Lng                 *float64        `json:"lng,omitempty"`
	IsActive            bool            `json:"isActive"`
	DeliveryDays        int             `json:"deliveryDays"`
	CODAvailable        bool            `json:"codAvailable"`
	ExtraShippingCharge decimal.Decimal `json:"extraShippingCharge"`
	CreatedAt           time.Time       `json:"createdAt"`
	UpdatedAt           time.Time       `json:"updatedAt"`
}

func newLocationResponse(l models.Location) locationResponse {
	return locationResponse{
		ID:                  l.ID,
		Name:                l.Name,
		City:                l.City,
		State:               l.State,
		Pincode:             l.Pincode,
		Lat:                 l.Lat,
		Lng:                 l.Lng,
		IsActive:            l.IsActive,
		DeliveryDays:        l.DeliveryDays,
		CODAvailable:        l.CODAvailable,
		ExtraShippingCharge: l.ExtraShippingCharge,
		CreatedAt:           l.CreatedAt,
		UpdatedAt:           l.UpdatedAt,
	}
}

type inventoryResponse struct {
	ID          uuid.UUID `json:"id"`
	ProductID   uuid.UUID `json:"productId"`
	LocationID  uuid.UUID `json:"locationId"`
	Stock       int       `json:"stock"`
	ProductName string    `json:"productName,omitempty"`
	Location    string    `json:"location,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func newInventoryResponse(record models.ProductInventory) inventoryResponse {
	resp := inventoryResponse{
		ID:         record.ID,
		ProductID:  record.ProductID,
		LocationID: record.LocationID,
		Stock:      record.Stock,
		CreatedAt:  record.CreatedAt,
		UpdatedAt:  record.UpdatedAt,
	}
	if record.Product != nil {
		resp.ProductName = record.Product.Name
	}
	if record.Location != nil {
		resp.Location = record.Location.Name
	}
	return resp
}

type returnResponse struct {
	ID           uuid.UUID        `json:"id"`
	OrderID      uuid.UUID        `json:"orderId"`
	OrderItemID  uuid.UUID        `json:"orderItemId"`
	Qty          int              `json:"qty"`
	Reason       string           `json:"reason"`
	Comment      *string          `json:"comment,omitempty"`
	Status       string           `json:"status"`
	AdminComment *string          `json:"adminComment,omitempty"`
	RefundAmount *decimal.Decimal `json:"refundAmount,omitempty"`
	ResolvedAt   *time.Time       `json:"resolvedAt,omitempty"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
}

func newReturnResponse(ret models.OrderReturn) returnResponse {
	return returnResponse{
		ID:           ret.ID,
		OrderID:      ret.OrderID,
		OrderItemID:  ret.OrderItemID,
		Qty:          ret.Qty,
		Reason:       string(ret.Reason),
		Comment:      ret.Comment,
		Status:       string(ret.Status),
		AdminComment: ret.AdminComment,
		RefundAmount: ret.RefundAmount,
		ResolvedAt:   ret.ResolvedAt,
		CreatedAt:    ret.CreatedAt,
		UpdatedAt:    ret.UpdatedAt,
	}
}

type wishlistItemResponse struct {
	ID        uuid.UUID        `json:"id"`
	ProductID uuid.UUID        `json:"productId"`
	Product   *productResponse `json:"product,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
}

func newWishlistItemResponse(item models.WishlistItem) wishlistItemResponse {
	resp := wishlistItemResponse{
		ID:        item.ID,
		ProductID: item.ProductID,
		CreatedAt: item.CreatedAt,
	}
	if item.Product != nil {
		product := newProductResponse(*item.Product)
		resp.Product = &product
	}
	return resp
}

type paymentTransactionResponse struct {
	ID        uuid.UUID       `json:"id"`
	OrderID   uuid.UUID       `json:"orderId"`
	Amount    decimal.Decimal `json:"amount"`
	Status    string          `json:"status"`
	Provider  string          `json:"provider"`
	Reference *string         `json:"reference,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

func newPaymentTransactionResponse(txn models.PaymentTransaction) paymentTransactionResponse {
	return paymentTransactionResponse{
		ID:        txn.ID,
		OrderID:   txn.OrderID,
		Amount:    txn.Amount,
		Status:    string(txn.Status),
		Provider:  txn.Provider,
		Reference: txn.Reference,
		CreatedAt: txn.CreatedAt,
	}
}

type profileResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Phone     *string   `json:"phone,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func newProfileResponse(u models.User) profileResponse {
	return profileResponse{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     u.Phone,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
