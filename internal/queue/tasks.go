package queue

import (
	"encoding/json"
	"time"

	"github.com/cellar-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskOrderConfirmedEmail 下单成功邮件任务
	TaskOrderConfirmedEmail = constants.TaskOrderConfirmedEmail
	// TaskOrderStatusEmail 订单状态邮件通知任务
	TaskOrderStatusEmail = constants.TaskOrderStatusEmail
	// TaskOrderPersistenceFailed 支付成功但订单落库失败的补偿任务
	TaskOrderPersistenceFailed = constants.TaskOrderPersistenceFailed
)

// OrderConfirmedEmailPayload 下单成功邮件任务载荷
type OrderConfirmedEmailPayload struct {
	OrderID   uint   `json:"order_id"`
	Reference string `json:"reference"`
}

// OrderStatusEmailPayload 订单状态邮件任务载荷
type OrderStatusEmailPayload struct {
	OrderID uint   `json:"order_id"`
	Status  string `json:"status"`
}

// OrderPersistenceFailedPayload 订单补偿任务载荷，保存完整的支付快照
type OrderPersistenceFailedPayload struct {
	Reference      string          `json:"reference"`
	PaystackStatus string          `json:"paystack_status"`
	AmountMinor    int64           `json:"amount_minor"`
	PaidAt         *time.Time      `json:"paid_at,omitempty"`
	Snapshot       json.RawMessage `json:"snapshot"`
	Reason         string          `json:"reason"`
	Error          string          `json:"error,omitempty"`
}

// NewOrderConfirmedEmailTask 创建下单成功邮件任务
func NewOrderConfirmedEmailTask(payload OrderConfirmedEmailPayload) (*asynq.Task, error) {
	return newJSONTask(TaskOrderConfirmedEmail, payload)
}

// NewOrderStatusEmailTask 创建订单状态邮件任务
func NewOrderStatusEmailTask(payload OrderStatusEmailPayload) (*asynq.Task, error) {
	return newJSONTask(TaskOrderStatusEmail, payload)
}

// NewOrderPersistenceFailedTask 创建订单补偿任务
func NewOrderPersistenceFailedTask(payload OrderPersistenceFailedPayload) (*asynq.Task, error) {
	return newJSONTask(TaskOrderPersistenceFailed, payload)
}

func newJSONTask(taskType string, payload interface{}) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(taskType, body), nil
}
