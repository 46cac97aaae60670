package paystack

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cellar-next/internal/metrics"
)

const verifyRetryBackoff = 300 * time.Millisecond

// Gateway 绑定配置的 Paystack 网关
type Gateway struct {
	cfg Config
}

// NewGateway 创建网关
func NewGateway(cfg Config) *Gateway {
	cfg.normalize()
	return &Gateway{cfg: cfg}
}

// Configured 是否已配置密钥
func (g *Gateway) Configured() bool {
	return g != nil && strings.TrimSpace(g.cfg.SecretKey) != ""
}

// Initialize 初始化交易
func (g *Gateway) Initialize(ctx context.Context, input InitializeInput) (*InitializeResult, error) {
	start := time.Now()
	result, err := InitializeTransaction(ctx, &g.cfg, input)
	metrics.RecordPaystackRequest("initialize", outcomeLabel(err), time.Since(start).Seconds())
	return result, err
}

// Verify 校验交易，仅在传输层失败时有限重试
func (g *Gateway) Verify(ctx context.Context, reference string) (*Transaction, error) {
	var lastErr error
	for attempt := 0; attempt <= g.cfg.VerifyRetries; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(time.Duration(attempt) * verifyRetryBackoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
		}
		start := time.Now()
		tx, err := VerifyTransaction(ctx, &g.cfg, reference)
		metrics.RecordPaystackRequest("verify", outcomeLabel(err), time.Since(start).Seconds())
		if err == nil {
			return tx, nil
		}
		lastErr = err
		if !errors.Is(err, ErrRequestFailed) {
			return nil, err
		}
	}
	return nil, lastErr
}

// VerifySignature 校验 webhook 签名
func (g *Gateway) VerifySignature(body []byte, signature string) error {
	return VerifyWebhookSignature(g.cfg.SecretKey, body, signature)
}

func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrRequestFailed):
		return "request_failed"
	default:
		return "error"
	}
}
