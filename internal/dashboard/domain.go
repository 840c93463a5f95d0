// Package dashboard loads the series behind the portal's dashboard charts.
package dashboard

import (
	"context"
	"time"
)

// Dashboard window sizes.
const (
	RevenueMonths    = 12
	TopProductsLimit = 10
)

// MonthlyRevenue is the completed-order revenue of one calendar month.
type MonthlyRevenue struct {
	Month time.Time
	Total float64
}

// StatusCount is the number of orders in one status.
type StatusCount struct {
	Status string
	Count  int64
}

// ProductQuantity is the total quantity sold of one product.
type ProductQuantity struct {
	Name     string
	Quantity float64
}

// Repository reads dashboard aggregates.
type Repository interface {
	MonthlyRevenue(ctx context.Context, from, to time.Time) ([]MonthlyRevenue, error)
	StatusCounts(ctx context.Context) ([]StatusCount, error)
	TopProducts(ctx context.Context, limit int) ([]ProductQuantity, error)
}

var statusLabels = map[string]string{
	"draft":      "Nháp",
	"confirmed":  "Đã xác nhận",
	"processing": "Đang xử lý",
	"picking":    "Đang chuẩn bị hàng",
	"packed":     "Đã đóng gói",
	"shipped":    "Đã giao vận",
	"in_transit": "Đang vận chuyển",
	"delivered":  "Đã giao hàng",
	"completed":  "Hoàn thành",
	"cancelled":  "Đã hủy",
	"returned":   "Đã trả hàng",
}

// StatusLabel returns the display label of an order status code.
// Unknown codes are returned unchanged.
func StatusLabel(code string) string {
	if label, ok := statusLabels[code]; ok {
		return label
	}
	return code
}
