package service

import (
	"strings"

	"github.com/cellar-next/internal/logger"
	"github.com/cellar-next/internal/models"
	"github.com/cellar-next/internal/queue"
	"github.com/cellar-next/internal/repository"

	"github.com/shopspring/decimal"
)

// OrderService 订单查询与后台状态管理
type OrderService struct {
	orderRepo         repository.OrderRepository
	queue             OrderTaskQueue
	strictTransitions bool
}

// NewOrderService 创建订单服务
func NewOrderService(orderRepo repository.OrderRepository, queueClient OrderTaskQueue, strictTransitions bool) *OrderService {
	return &OrderService{
		orderRepo:         orderRepo,
		queue:             queueClient,
		strictTransitions: strictTransitions,
	}
}

// OrderDetail 订单详情及计算字段
type OrderDetail struct {
	*models.Order
	ItemsSubtotal models.Money `json:"items_subtotal"`
	TotalMinor    int64        `json:"total_minor"`
}

// GetByReference 按支付参考号查询订单
func (s *OrderService) GetByReference(reference string) (*OrderDetail, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, ErrPaymentReferenceRequired
	}
	order, err := s.orderRepo.GetByReference(reference)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return buildOrderDetail(order), nil
}

// ListAdmin 后台订单列表
func (s *OrderService) ListAdmin(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	if status := normalizeOrderStatus(filter.Status); status != "" {
		if !isValidOrderStatus(status) {
			return nil, 0, ErrOrderStatusInvalid
		}
		filter.Status = status
	}
	return s.orderRepo.ListAdmin(filter)
}

// GetAdmin 后台订单详情
func (s *OrderService) GetAdmin(id uint) (*OrderDetail, error) {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return buildOrderDetail(order), nil
}

// UpdateStatus 后台修改订单状态，支付状态不受影响
func (s *OrderService) UpdateStatus(id uint, status string) (*OrderDetail, error) {
	target := normalizeOrderStatus(status)
	if !isValidOrderStatus(target) {
		return nil, ErrOrderStatusInvalid
	}
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if !canTransitOrderStatus(order.OrderStatus, target, s.strictTransitions) {
		return nil, ErrOrderStatusTransition
	}
	if order.OrderStatus == target {
		return buildOrderDetail(order), nil
	}
	if err := s.orderRepo.UpdateStatus(id, target); err != nil {
		return nil, err
	}
	logger.Infow("order_status_updated", "order_id", id, "from", order.OrderStatus, "to", target)
	order.OrderStatus = target

	if s.queue != nil {
		if err := s.queue.EnqueueOrderStatusEmail(queue.OrderStatusEmailPayload{
			OrderID: id,
			Status:  target,
		}); err != nil {
			logger.Warnw("order_status_email_enqueue_failed", "order_id", id, "status", target, "error", err)
		}
	}
	return buildOrderDetail(order), nil
}

func buildOrderDetail(order *models.Order) *OrderDetail {
	sum := decimal.Zero
	for _, item := range order.Items {
		sum = sum.Add(item.LineTotal().Decimal)
	}
	return &OrderDetail{
		Order:         order,
		ItemsSubtotal: models.NewMoneyFromDecimal(sum),
		TotalMinor:    order.TotalAmount.MinorUnits(),
	}
}
