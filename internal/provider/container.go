package provider

import (
	"time"

	"github.com/cellar-next/internal/authz"
	"github.com/cellar-next/internal/cache"
	"github.com/cellar-next/internal/config"
	"github.com/cellar-next/internal/logger"
	"github.com/cellar-next/internal/models"
	"github.com/cellar-next/internal/payment/paystack"
	"github.com/cellar-next/internal/queue"
	"github.com/cellar-next/internal/repository"
	"github.com/cellar-next/internal/service"
)

const defaultAdminCacheTTL = 30 * time.Second

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client
	Gateway     *paystack.Gateway

	// Repositories
	UserRepo        repository.UserRepository
	OrderRepo       repository.OrderRepository
	ProductRepo     repository.ProductRepository
	PromoCodeRepo   repository.PromoCodeRepository
	DeliveryFeeRepo repository.DeliveryFeeRepository
	ReviewRepo      repository.ReviewRepository
	DashboardRepo   repository.DashboardRepository

	// Services
	AuthzService             *authz.Service
	RoleStore                *authz.CachedRoleStore
	UserAuthService          *service.UserAuthService
	AdminUserService         *service.AdminUserService
	EmailService             *service.EmailService
	PromoCodeService         *service.PromoCodeService
	PromoCodeAdminService    *service.PromoCodeAdminService
	ProductService           *service.ProductService
	ReviewService            *service.ReviewService
	DeliveryFeeService       *service.DeliveryFeeService
	CheckoutService          *service.CheckoutService
	OrderConfirmationService *service.OrderConfirmationService
	PaymentService           *service.PaymentService
	OrderService             *service.OrderService
	DashboardService         *service.DashboardService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
		Gateway: paystack.NewGateway(paystack.Config{
			SecretKey:     cfg.Paystack.SecretKey,
			APIBaseURL:    cfg.Paystack.APIBaseURL,
			CallbackURL:   cfg.Paystack.CallbackURL,
			Timeout:       cfg.Paystack.Timeout(),
			VerifyRetries: cfg.Paystack.VerifyRetries,
		}),
	}
	if !c.Gateway.Configured() {
		logger.Warnw("provider_paystack_not_configured")
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.UserRepo = repository.NewUserRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.PromoCodeRepo = repository.NewPromoCodeRepository(db)
	c.DeliveryFeeRepo = repository.NewDeliveryFeeRepository(db)
	c.ReviewRepo = repository.NewReviewRepository(db)
	c.DashboardRepo = repository.NewDashboardRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}
	adminTTL := defaultAdminCacheTTL
	if c.Config.Admin.AdminCacheSeconds > 0 {
		adminTTL = time.Duration(c.Config.Admin.AdminCacheSeconds) * time.Second
	}
	c.RoleStore = authz.NewCachedRoleStore(c.AuthzService, adminTTL)

	// 队列关闭时 QueueClient 为 nil，服务层按无队列处理
	var taskQueue service.OrderTaskQueue
	if c.QueueClient != nil {
		taskQueue = c.QueueClient
	}

	c.EmailService = service.NewEmailService(&c.Config.Email, &c.Config.App)
	c.UserAuthService = service.NewUserAuthService(c.Config, c.UserRepo)
	c.AdminUserService = service.NewAdminUserService(c.UserRepo, c.RoleStore)
	c.PromoCodeService = service.NewPromoCodeService(c.PromoCodeRepo)
	c.PromoCodeAdminService = service.NewPromoCodeAdminService(c.PromoCodeRepo)
	c.ProductService = service.NewProductService(c.ProductRepo)
	c.ReviewService = service.NewReviewService(c.ReviewRepo, c.ProductRepo)
	c.DeliveryFeeService = service.NewDeliveryFeeService(c.DeliveryFeeRepo)
	c.CheckoutService = service.NewCheckoutService(c.Gateway, c.ProductRepo, c.DeliveryFeeRepo, c.PromoCodeService, c.Config.Paystack.CallbackURL)
	c.OrderConfirmationService = service.NewOrderConfirmationService(c.OrderRepo, c.PromoCodeRepo, taskQueue)
	c.PaymentService = service.NewPaymentService(c.Gateway, c.OrderConfirmationService)
	c.OrderService = service.NewOrderService(c.OrderRepo, taskQueue, c.Config.Order.StrictStatusTransitions)
	c.DashboardService = service.NewDashboardService(c.DashboardRepo)
}

// Close 释放外部连接
func (c *Container) Close() {
	if c == nil {
		return
	}
	if c.QueueClient != nil {
		if err := c.QueueClient.Close(); err != nil {
			logger.Warnw("provider_close_queue_client_failed", "error", err)
		}
	}
	if err := cache.Close(); err != nil {
		logger.Warnw("provider_close_redis_failed", "error", err)
	}
}
