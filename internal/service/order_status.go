package service

import (
	"strings"

	"github.com/cellar-next/internal/constants"
)

// orderStatusFlow 严格模式下允许的前进路径
var orderStatusFlow = map[string][]string{
	constants.OrderStatusPending:    {constants.OrderStatusConfirmed, constants.OrderStatusCancelled},
	constants.OrderStatusConfirmed:  {constants.OrderStatusProcessing, constants.OrderStatusCancelled},
	constants.OrderStatusProcessing: {constants.OrderStatusShipped, constants.OrderStatusCancelled},
	constants.OrderStatusShipped:    {constants.OrderStatusDelivered, constants.OrderStatusCancelled},
}

func normalizeOrderStatus(status string) string {
	return strings.ToLower(strings.TrimSpace(status))
}

func isValidOrderStatus(status string) bool {
	for _, item := range constants.OrderStatuses {
		if item == status {
			return true
		}
	}
	return false
}

// canTransitOrderStatus 判断状态变更是否允许，非严格模式下任意合法状态可互相切换
func canTransitOrderStatus(from, to string, strict bool) bool {
	if !isValidOrderStatus(to) {
		return false
	}
	if !strict || from == to {
		return true
	}
	for _, next := range orderStatusFlow[from] {
		if next == to {
			return true
		}
	}
	return false
}
