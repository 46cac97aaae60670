package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/cellar-next/internal/models"
	"github.com/cellar-next/internal/payment/paystack"
	"github.com/cellar-next/internal/queue"

	"github.com/glebarez/sqlite"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

// setupServiceTestDB 初始化独立的内存数据库，单连接保证事务串行。
func setupServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:service_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := models.MigrateModels(db); err != nil {
		t.Fatalf("migrate models failed: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return db
}

func intPtr(v int) *int {
	return &v
}

func moneyPtr(naira int64) *models.Money {
	m := models.NewMoney(naira)
	return &m
}

func seedPromo(t *testing.T, db *gorm.DB, promo models.PromoCode) *models.PromoCode {
	t.Helper()
	if promo.ValidFrom.IsZero() {
		promo.ValidFrom = time.Now().Add(-time.Hour)
	}
	if err := db.Create(&promo).Error; err != nil {
		t.Fatalf("create promo failed: %v", err)
	}
	if !promo.IsActive {
		if err := db.Model(&models.PromoCode{}).Where("id = ?", promo.ID).Update("is_active", false).Error; err != nil {
			t.Fatalf("deactivate promo failed: %v", err)
		}
	}
	return &promo
}

func seedProduct(t *testing.T, db *gorm.DB, name, slug string, price int64, inStock bool) *models.Product {
	t.Helper()
	product := models.Product{
		Name:       name,
		Slug:       slug,
		Price:      models.NewMoney(price),
		Category:   "whisky",
		BottleSize: "70cl",
		InStock:    true,
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	if !inStock {
		if err := db.Model(&models.Product{}).Where("id = ?", product.ID).Update("in_stock", false).Error; err != nil {
			t.Fatalf("mark product out of stock failed: %v", err)
		}
		product.InStock = false
	}
	return &product
}

// fakeTaskQueue 记录投递的任务
type fakeTaskQueue struct {
	mu                sync.Mutex
	confirmed         []queue.OrderConfirmedEmailPayload
	statusEmails      []queue.OrderStatusEmailPayload
	persistenceFailed []queue.OrderPersistenceFailedPayload
}

func (q *fakeTaskQueue) EnqueueOrderConfirmedEmail(payload queue.OrderConfirmedEmailPayload, _ ...asynq.Option) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.confirmed = append(q.confirmed, payload)
	return nil
}

func (q *fakeTaskQueue) EnqueueOrderStatusEmail(payload queue.OrderStatusEmailPayload, _ ...asynq.Option) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.statusEmails = append(q.statusEmails, payload)
	return nil
}

func (q *fakeTaskQueue) EnqueueOrderPersistenceFailed(payload queue.OrderPersistenceFailedPayload) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.persistenceFailed = append(q.persistenceFailed, payload)
	return nil
}

func (q *fakeTaskQueue) counts() (int, int, int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.confirmed), len(q.statusEmails), len(q.persistenceFailed)
}

const fakeGatewaySecret = "sk_test_fake"

// fakeGateway 内存网关：初始化时保存快照，校验时原样返回
type fakeGateway struct {
	mu           sync.Mutex
	configured   bool
	initErr      error
	lastInit     paystack.InitializeInput
	transactions map[string]*paystack.Transaction
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{configured: true, transactions: map[string]*paystack.Transaction{}}
}

func (g *fakeGateway) Configured() bool {
	return g.configured
}

func (g *fakeGateway) Initialize(_ context.Context, input paystack.InitializeInput) (*paystack.InitializeResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.initErr != nil {
		return nil, g.initErr
	}
	g.lastInit = input
	metadata, err := json.Marshal(input.Metadata)
	if err != nil {
		return nil, err
	}
	g.transactions[input.Reference] = &paystack.Transaction{
		Reference:     input.Reference,
		Status:        "success",
		AmountMinor:   input.AmountMinor,
		Currency:      "NGN",
		CustomerEmail: input.Email,
		Metadata:      metadata,
	}
	return &paystack.InitializeResult{
		AuthorizationURL: "https://checkout.paystack.test/" + input.Reference,
		AccessCode:       "access_" + input.Reference,
		Reference:        input.Reference,
	}, nil
}

func (g *fakeGateway) Verify(_ context.Context, reference string) (*paystack.Transaction, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	tx, ok := g.transactions[reference]
	if !ok {
		return nil, fmt.Errorf("%w: transaction not found", paystack.ErrResponseInvalid)
	}
	copied := *tx
	return &copied, nil
}

func (g *fakeGateway) VerifySignature(body []byte, signature string) error {
	return paystack.VerifyWebhookSignature(fakeGatewaySecret, body, signature)
}

func (g *fakeGateway) setTransaction(tx *paystack.Transaction) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.transactions[tx.Reference] = tx
}
