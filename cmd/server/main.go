package main

import (
	"context"

	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/mkurbatov/footballzone/internal/app"
	"github.com/mkurbatov/footballzone/internal/app/handlers"
	"github.com/mkurbatov/footballzone/internal/config"
	"github.com/mkurbatov/footballzone/internal/lib/logger"
	"github.com/mkurbatov/footballzone/internal/lib/logger/handlers/urllog"
	"github.com/mkurbatov/footballzone/internal/security/jwtmiddleware"
	"github.com/mkurbatov/footballzone/internal/service"
	"github.com/mkurbatov/footballzone/internal/storage"
	"github.com/pkg/errors"
)

func main() {
	// .env подхватывается при локальном запуске, в остальных окружениях его нет
	_ = godotenv.Load()

	// загрузка конфигурации
	cfg := config.MustLoad()

	// инициализация логгера, зависит от настройки окружения
	log := logger.SetupLogger(cfg.Env)
	log.Info("starting app", slog.String("env", cfg.Env))

	// загружаем объект приложения, конфигом и подключением к БД
	application, err := app.NewApp(log, cfg)
	if err != nil {
		log.Error("failed to initialize app", slog.Any("error", err))
		panic(errors.Wrap(err, "failed to initialize app"))
	}
	defer application.DB.Close()

	router := chi.NewRouter()
	// настройка middleware
	router.Use(middleware.RequestID)
	router.Use(urllog.CustomLoggerMiddleware(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	// реализация слоев по работе с БД по каждому направлению
	userRepo := storage.NewUserRepository(application.DB)
	productRepo := storage.NewProductRepository(application.DB)
	cartRepo := storage.NewCartRepository(application.DB)
	orderRepo := storage.NewOrderRepository(application.DB)

	authService := service.NewAuthService(application.Logger, userRepo, cfg.JWT.Secret, time.Duration(cfg.JWT.TokenTTL)*time.Hour)
	catalogService := service.NewCatalogService(application.Logger, productRepo)
	cartService := service.NewCartService(application.Logger, cartRepo)
	orderService := service.NewOrderService(application.Logger, application.DB, cartRepo, orderRepo)

	// открытые эндпоинты: аутентификация и каталог
	router.Post("/api/auth/register", handlers.RegisterHandler(application.Logger, authService))
	router.Post("/api/auth/login", handlers.LoginHandler(application.Logger, authService))
	router.Get("/api/products", handlers.ProductsHandler(application.Logger, catalogService))
	router.Get("/api/products/search", handlers.ProductSearchHandler(application.Logger, catalogService))
	router.Get("/api/products/category/{slug}", handlers.ProductsByCategoryHandler(application.Logger, catalogService))
	router.Get("/api/products/{id}", handlers.ProductHandler(application.Logger, catalogService))
	router.Get("/api/categories", handlers.CategoriesHandler(application.Logger, catalogService))

	router.Group(func(r chi.Router) {
		jwtMW := jwtmiddleware.NewJWTMiddleware(cfg.JWT.Secret)
		r.Use(jwtMW)
		// профиль текущего пользователя
		r.Get("/api/auth/me", handlers.MeHandler(application.Logger, authService))
		// корзина
		r.Get("/api/cart", handlers.CartHandler(application.Logger, cartService))
		r.Post("/api/cart/add", handlers.CartAddHandler(application.Logger, cartService))
		r.Put("/api/cart/update/{itemId}", handlers.CartUpdateHandler(application.Logger, cartService))
		r.Delete("/api/cart/remove/{itemId}", handlers.CartRemoveHandler(application.Logger, cartService))
		r.Delete("/api/cart/clear", handlers.CartClearHandler(application.Logger, cartService))
		// заказы
		r.Post("/api/orders", handlers.OrderCreateHandler(application.Logger, orderService))
		r.Get("/api/orders", handlers.OrdersHandler(application.Logger, orderService))
		r.Get("/api/orders/{orderId}", handlers.OrderDetailHandler(application.Logger, orderService))
	})

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("starting server", slog.String("address", cfg.HTTPServer.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.Any("error", err))
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	stopSign := <-stop
	log.Info("received shutdown signal", slog.String("signal", stopSign.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown failed", slog.Any("error", err))
	}
	log.Info("server gracefully stopped")
}
