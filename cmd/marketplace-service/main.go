package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/YogeshJat8965/SwastikMotorsUjjain-sub001/internal/admin"
	"github.com/YogeshJat8965/SwastikMotorsUjjain-sub001/internal/booking"
	"github.com/YogeshJat8965/SwastikMotorsUjjain-sub001/internal/common/config"
	"github.com/YogeshJat8965/SwastikMotorsUjjain-sub001/internal/common/db"
	"github.com/YogeshJat8965/SwastikMotorsUjjain-sub001/internal/common/logger"
	"github.com/YogeshJat8965/SwastikMotorsUjjain-sub001/internal/common/middleware"
	"github.com/YogeshJat8965/SwastikMotorsUjjain-sub001/internal/common/server"
	"github.com/YogeshJat8965/SwastikMotorsUjjain-sub001/internal/common/tracing"
	"github.com/YogeshJat8965/SwastikMotorsUjjain-sub001/internal/listing"
	"github.com/YogeshJat8965/SwastikMotorsUjjain-sub001/internal/media"
	"github.com/YogeshJat8965/SwastikMotorsUjjain-sub001/internal/settings"
	"github.com/YogeshJat8965/SwastikMotorsUjjain-sub001/internal/soldvehicle"
	"github.com/YogeshJat8965/SwastikMotorsUjjain-sub001/internal/stats"
	"github.com/YogeshJat8965/SwastikMotorsUjjain-sub001/internal/submission"
	"github.com/gin-gonic/gin"
	_ "github.com/joho/godotenv/autoload"
)

var (
	configPath   = flag.String("config", "configs/marketplace-service.json", "配置文件路径")
	consulKVKey  = flag.String("consul-config-key", "", "从 Consul KV 读取配置（设置后优先于 -config）")
	consulKVHost = flag.String("consul-host", "localhost", "Consul 地址（仅 KV 配置模式）")
	consulKVPort = flag.Int("consul-port", 8500, "Consul 端口（仅 KV 配置模式）")
)

// rentalVehicleAdapter 把车辆侧查询适配成预订侧需要的最小视图。
type rentalVehicleAdapter struct {
	svc *listing.Service
}

func (a rentalVehicleAdapter) RentalVehicle(ctx context.Context, id string) (*booking.RentalVehicle, error) {
	v, err := a.svc.Get(ctx, id)
	if errors.Is(err, listing.ErrVehicleNotFound) {
		return nil, booking.ErrVehicleNotFound
	}
	if err != nil {
		return nil, err
	}
	return &booking.RentalVehicle{
		ID:              v.ID,
		RentPricePerDay: v.RentPricePerDay,
		Rentable:        v.RentableNow(),
	}, nil
}

// draftVehicleAdapter 把通过审核的卖车申请落成一条草稿车辆。
type draftVehicleAdapter struct {
	svc *listing.Service
}

func (a draftVehicleAdapter) CreateDraft(ctx context.Context, d submission.DraftVehicle) (string, error) {
	v, err := a.svc.CreateVehicle(ctx, listing.CreateInput{
		Category:      listing.Category(d.Category),
		Brand:         d.Brand,
		Model:         d.Model,
		Year:          d.Year,
		Kilometers:    d.Kilometers,
		FuelType:      d.FuelType,
		Transmission:  d.Transmission,
		City:          d.City,
		PurchasePrice: d.PurchasePrice,
		Images:        d.Images,
		Status:        listing.StatusDraft,
	})
	if err != nil {
		return "", err
	}
	return v.ID, nil
}

func main() {
	flag.Parse()

	// 加载配置（Consul KV 优先，缺省走本地 JSON 文件）
	var (
		cfg *config.Config
		err error
	)
	if *consulKVKey != "" {
		cfg, err = config.LoadConfigFromConsulKV(*consulKVHost, *consulKVPort, *consulKVKey)
	} else {
		cfg, err = config.LoadConfig(*configPath)
	}
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	// 初始化日志
	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output, cfg.Log.Path)
	if err != nil {
		panic(fmt.Sprintf("failed to init logger: %v", err))
	}

	// 初始化链路追踪
	tracer, closer, err := tracing.InitTracer(
		cfg.Server.Name,
		cfg.Jaeger.Endpoint,
		cfg.Jaeger.Sampler,
	)
	if err != nil {
		log.Warnf("failed to init tracer: %v", err)
	} else {
		defer closer.Close()
	}
	_ = tracer

	// 初始化数据库
	gdb, err := db.NewMySQL(
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Database,
		cfg.Database.MaxIdle,
		cfg.Database.MaxOpen,
	)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	if err := gdb.AutoMigrate(
		&listing.Vehicle{},
		&booking.Booking{},
		&submission.Submission{},
		&soldvehicle.SoldVehicle{},
		&settings.Settings{},
		&admin.Admin{},
	); err != nil {
		log.Fatalf("failed to migrate schema: %v", err)
	}

	// 组装各领域
	listingSvc := listing.NewService(listing.NewRepo(gdb))
	listingHandler := listing.NewHTTPHandler(listingSvc, log)

	bookingRepo := booking.NewRepo(gdb)
	bookingSvc := booking.NewService(bookingRepo, rentalVehicleAdapter{svc: listingSvc})
	bookingHandler := booking.NewHTTPHandler(bookingSvc, log)

	submissionSvc := submission.NewService(submission.NewRepo(gdb), draftVehicleAdapter{svc: listingSvc})
	submissionHandler := submission.NewHTTPHandler(submissionSvc, log)

	soldSvc := soldvehicle.NewService(soldvehicle.NewRepo(gdb))
	soldHandler := soldvehicle.NewHTTPHandler(soldSvc, log)

	statsSvc := stats.NewService(listing.NewRepo(gdb), bookingRepo)
	statsHandler := stats.NewHTTPHandler(statsSvc, log)

	settingsHandler := settings.NewHTTPHandler(settings.NewRepo(gdb), log)

	adminSvc := admin.NewService(admin.NewRepo(gdb), cfg.Auth)
	adminHandler := admin.NewHTTPHandler(adminSvc, log)
	if err := adminSvc.EnsureBootstrap(context.Background(), cfg.Auth.BootstrapUser, cfg.Auth.BootstrapPassword); err != nil {
		log.Fatalf("failed to bootstrap admin account: %v", err)
	}

	mediaHandler := media.NewHTTPHandler(media.NewClient(cfg.Media), log)

	// 公开侧限流
	limiter := middleware.NewTokenBucket(cfg.RateLimit.Capacity, cfg.RateLimit.RefillRate)

	err = server.RunHTTPServer(cfg, log, func(e *gin.Engine) error {
		public := e.Group("/api", server.RateLimitMiddleware(limiter))
		listingHandler.RegisterPublicRoutes(public)
		bookingHandler.RegisterPublicRoutes(public)
		submissionHandler.RegisterPublicRoutes(public)
		soldHandler.RegisterPublicRoutes(public)
		settingsHandler.RegisterPublicRoutes(public)
		adminHandler.RegisterPublicRoutes(public)

		adm := e.Group("/api/admin",
			server.JWTAuthMiddleware(cfg.Auth, log),
			server.RequireRoles(cfg.Auth, "admin"),
		)
		listingHandler.RegisterAdminRoutes(adm)
		bookingHandler.RegisterAdminRoutes(adm)
		submissionHandler.RegisterAdminRoutes(adm)
		soldHandler.RegisterAdminRoutes(adm)
		statsHandler.RegisterAdminRoutes(adm)
		settingsHandler.RegisterAdminRoutes(adm)
		adminHandler.RegisterAdminRoutes(adm)
		mediaHandler.RegisterAdminRoutes(adm)
		return nil
	})
	if err != nil {
		log.Fatalf("marketplace-service exited with error: %v", err)
	}
}
