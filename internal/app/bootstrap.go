package app

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/cellar-next/internal/config"
	"github.com/cellar-next/internal/logger"
	"github.com/cellar-next/internal/models"
	"github.com/cellar-next/internal/provider"
	"github.com/cellar-next/internal/router"
	"github.com/cellar-next/internal/worker"
)

// InitDatabase 连接数据库并迁移表结构
func InitDatabase(cfg *config.Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
		LogSQL:                 cfg.Database.LogSQL,
	}); err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	if err := models.AutoMigrate(); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	return nil
}

// ensureDefaultAdmin 创建默认管理员账号并授予 admin 角色
func ensureDefaultAdmin(cfg *config.Config, c *provider.Container) error {
	if cfg.Server.Mode == "release" && cfg.Admin.Password == "" {
		logger.Warnw("default_admin_skipped", "reason", "admin password not configured")
		return nil
	}
	user, err := models.InitDefaultAdmin(cfg.Admin.Email, cfg.Admin.Password)
	if err != nil {
		return err
	}
	return c.AuthzService.EnsureDefaultAdmin(context.Background(), user.ID)
}

// BuildRunner 按启动模式组装服务
func BuildRunner(cfg *config.Config, mode string) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	mode, err := ParseMode(mode)
	if err != nil {
		return nil, err
	}

	container := provider.NewContainer(cfg)
	if err := ensureDefaultAdmin(cfg, container); err != nil {
		logger.Warnw("default_admin_init_failed", "error", err)
	}

	var services []Service
	if mode == ModeAll || mode == ModeAPI {
		engine := router.SetupRouter(cfg, container)
		services = append(services, NewHTTPService(net.JoinHostPort(cfg.Server.Host, cfg.Server.Port), engine))
	}

	if mode == ModeAll || mode == ModeWorker {
		switch {
		case cfg.Queue.Enabled:
			workerService, err := worker.NewService(&cfg.Queue, worker.NewConsumer(container))
			if err != nil {
				container.Close()
				return nil, err
			}
			services = append(services, workerService)
		case mode == ModeWorker:
			container.Close()
			return nil, errors.New("worker mode requires queue.enabled")
		default:
			logger.Warnw("worker_disabled", "reason", "queue disabled, emails will not be sent")
		}
	}

	if len(services) == 0 {
		container.Close()
		return nil, errors.New("no services initialized (check mode and config)")
	}

	runner := NewRunner(services...)
	runner.OnShutdown(container.Close)
	return runner, nil
}

// Run 应用启动入口
func Run(opts Options) error {
	opts = normalizeOptions(opts)
	if opts.Config == nil {
		return errors.New("config is nil")
	}

	runner, err := BuildRunner(opts.Config, opts.Mode)
	if err != nil {
		return err
	}

	opts.Logger.Infow("app_start",
		"addr", net.JoinHostPort(opts.Config.Server.Host, opts.Config.Server.Port),
		"mode", opts.Mode,
		"paystack_configured", opts.Config.Paystack.SecretKey != "",
	)
	return RunWithOptions(runner, opts)
}
