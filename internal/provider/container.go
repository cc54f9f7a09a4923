package provider

import (
	"github.com/aurix-store/internal/cache"
	"github.com/aurix-store/internal/catalog"
	"github.com/aurix-store/internal/config"
	"github.com/aurix-store/internal/logger"
	"github.com/aurix-store/internal/models"
	"github.com/aurix-store/internal/offline"
	"github.com/aurix-store/internal/queue"
	"github.com/aurix-store/internal/remote"
	"github.com/aurix-store/internal/repository"
	"github.com/aurix-store/internal/service"
	"github.com/aurix-store/internal/session"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	ProductRepo repository.ProductRepository
	OrderRepo   repository.OrderRepository

	// 远端购物车协作方与离线设施
	Syncer         remote.CartSyncer
	OfflineStorage offline.Storage
	Monitor        *offline.Monitor
	Sessions       *session.Manager

	// Services
	CatalogService  *catalog.Service
	CartService     *service.CartService
	CheckoutService *service.CheckoutService
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
	}

	c.initRepositories()
	c.initOffline()
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.ProductRepo = repository.NewProductRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
}

func (c *Container) initOffline() {
	c.Syncer = remote.NewClient(&c.Config.Remote)

	// 离线槽位优先落 Redis，进程重启后未送达条目仍可重放
	if cache.Enabled() {
		c.OfflineStorage = offline.NewRedisStorage()
	} else {
		logger.Warnw("provider_offline_storage_memory_fallback")
		c.OfflineStorage = offline.NewMemoryStorage()
	}

	c.Sessions = session.NewManager(c.Syncer, c.OfflineStorage)
	c.Monitor = offline.NewMonitor(c.Syncer, c.Config.Remote.ProbeInterval())
}

func (c *Container) initServices() {
	c.CatalogService = catalog.NewService(c.ProductRepo, c.Config.Catalog.DefaultPageSize, c.Config.Catalog.MaxPageSize)
	c.CartService = service.NewCartService(c.Sessions, c.ProductRepo)
	c.CheckoutService = service.NewCheckoutService(c.Sessions, c.ProductRepo, c.OrderRepo)
}
