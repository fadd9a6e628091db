package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"diamond_store/internal/bot"
	"diamond_store/internal/config"
	"diamond_store/internal/cryptopay"
	"diamond_store/internal/db"
	httpServer "diamond_store/internal/http"
	"diamond_store/internal/logger"
	"diamond_store/internal/service"
	"diamond_store/internal/session"

	"github.com/redis/go-redis/v9"
)

// Version устанавливается при сборке
var Version = "dev"

func main() {
	// Инициализация структурированного логгера
	jsonLogs := os.Getenv("LOG_FORMAT") == "json"
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logger.Init(logLevel, jsonLogs)
	log := logger.Get()

	cfg := config.Load()

	dbPool := db.Connect(cfg.DatabaseURL)
	defer dbPool.Close()

	if err := db.Migrate(context.Background(), dbPool); err != nil {
		logger.Fatal("миграция схемы не удалась", "error", err)
	}

	// Сессии заказов: Redis при наличии, иначе память процесса
	var sessions session.Store
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
		})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			logger.Fatal("redis недоступен", "addr", cfg.RedisAddr, "error", err)
		}
		sessions = session.NewRedisStore(rdb, cfg.SessionTTL)
		log.Info("сессии заказов в redis", "addr", cfg.RedisAddr)
	} else {
		sessions = session.NewMemoryStore(cfg.SessionTTL)
		log.Warn("REDIS_ADDR не задан, сессии заказов живут в памяти процесса")
	}

	promos := service.NewPromoService(dbPool, service.PromoConfig{
		MaxDiscountPercent: cfg.MaxDiscountPercent,
		MinPayableAmount:   cfg.MinPayableAmount,
		WelcomePercent:     cfg.WelcomePromoPercent,
		WelcomeTTL:         cfg.WelcomePromoTTL,
	})
	referrals := service.NewReferralService(dbPool, service.ReferralConfig{
		BonusPercent:    cfg.ReferrerBonusPercent,
		DiscountPercent: cfg.ReferredDiscountPercent,
		MaxBonus:        cfg.MaxReferralBonus,
		MinOrder:        cfg.ReferralMinOrder,
	})
	payments := service.NewPaymentService(dbPool, referrals)

	crypto := cryptopay.NewClient(cfg.CryptoPayToken, cfg.CryptoPayTestnet)
	if cfg.CryptoPayToken != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := crypto.GetMe(ctx); err != nil {
			log.Error("проверка токена Crypto Pay не прошла, крипто-оплата может не работать", "error", err)
		}
		cancel()
	} else {
		log.Warn("CRYPTOPAY_TOKEN не задан: крипто-оплата и webhook отключены")
	}

	storeBot, err := bot.NewStoreBot(cfg, dbPool, promos, referrals, payments, sessions, crypto)
	if err != nil {
		logger.Fatal("не удалось запустить бота", "error", err)
	}
	// Бот доставляет уведомления о подтверждённых оплатах
	payments.SetNotifier(storeBot)
	go storeBot.Start()
	log.Info("бот запущен", "admin_ids", cfg.AdminTgIDs)

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: httpServer.NewRouter(cfg, payments),
	}

	go func() {
		log.Info("server started", "port", cfg.AppPort, "version", Version)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	storeBot.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", "error", err)
	}

	log.Info("server exited")
}
