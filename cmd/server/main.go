package main // Entry point package

import (
	"context" // schema bootstrap and event publishing contexts
	"log"     // Logging library
	"time"    // event timestamps

	"github.com/joho/godotenv"    // .env loading for local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/amirabdullahi/Dinemate/internal/booking"
	"github.com/amirabdullahi/Dinemate/internal/config"
	"github.com/amirabdullahi/Dinemate/internal/database"
	"github.com/amirabdullahi/Dinemate/internal/handler"
	"github.com/amirabdullahi/Dinemate/internal/mailer"
	"github.com/amirabdullahi/Dinemate/internal/middleware"
	"github.com/amirabdullahi/Dinemate/internal/model"
	"github.com/amirabdullahi/Dinemate/internal/mpesa"
	"github.com/amirabdullahi/Dinemate/internal/queue"
	"github.com/amirabdullahi/Dinemate/internal/recommend"
	"github.com/amirabdullahi/Dinemate/internal/repository"
	"github.com/amirabdullahi/Dinemate/internal/router"
	queue_publisher "github.com/amirabdullahi/Dinemate/internal/service"
)

func main() {
	_ = godotenv.Load() // optional .env for local development

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()
	if err := database.EnsureSchema(context.Background(), db); err != nil {
		log.Fatalf("database: %v", err)
	}

	// Redis backs the rate limiter and the browse cache; both degrade
	// to no-ops when it is unavailable.
	rdb := config.NewRedisClient()

	// Repositories
	users := repository.NewUserRepo(db)
	restaurants := repository.NewRestaurantRepo(db)
	reservations := repository.NewReservationRepo(db)
	payments := repository.NewPaymentRepo(db)
	menu := repository.NewMenuRepo(db)
	areas := repository.NewSittingAreaRepo(db)
	activities := repository.NewActivityRepo(db)
	recommendations := repository.NewRecommendationRepo(db)
	analytics := repository.NewAnalyticsRepo(db)
	tokens := repository.NewTokenRepo(db)

	// Payment gateway
	gateway := mpesa.New(mpesa.Config{
		ConsumerKey:    cfg.DarajaConsumerKey,
		ConsumerSecret: cfg.DarajaConsumerSecret,
		ShortCode:      cfg.DarajaShortCode,
		Passkey:        cfg.DarajaPasskey,
		CallbackURL:    cfg.DarajaCallbackURL,
	})

	// Booking flow
	bookingSvc := &booking.Service{
		Restaurants:  restaurants,
		Reservations: reservations,
		Payments:     payments,
		Users:        users,
		Activities:   activities,
		Gateway:      gateway,
		Amount:       uint32(cfg.DarajaAmount),
		Publish: func(ctx context.Context, res *model.Reservation, p *model.Payment) {
			rst, err := restaurants.GetByID(ctx, res.RestaurantID)
			name := ""
			if err == nil {
				name = rst.Name
			}
			_ = queue_publisher.PublishReservationPaid(ctx, queue.ReservationPaidEvent{
				ReservationID:    res.ID,
				UserID:           res.UserID,
				RestaurantID:     res.RestaurantID,
				RestaurantName:   name,
				ReservationDate:  res.Date,
				ReservationTime:  res.Time,
				PartySize:        res.PartySize,
				SittingArea:      res.SittingArea.Name,
				ConfirmationCode: res.ConfirmationCode,
				PaidAt:           time.Now().UTC().Format("2006-01-02 15:04:05"),
			})
		},
	}

	// Recommendations are optional; they need a Gemini API key.
	var recommender *recommend.Service
	if cfg.GeminiAPIKey != "" {
		recommender = &recommend.Service{
			Store:       recommendations,
			Restaurants: restaurants,
			Users:       users,
			Suggester:   recommend.NewGeminiClient(cfg.GeminiAPIKey),
		}
	}

	// Outbound mail is optional; approval decisions are still recorded
	// without it.
	var mail mailer.Mailer
	if cfg.SMTPHost != "" {
		mail = mailer.NewSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)
	}

	// Consumer writes reservation.paid events to logs/reservation.log.
	go func() {
		if err := queue.StartReservationConsumer(); err != nil {
			log.Printf("reservation consumer stopped: %v", err)
		}
	}()

	rateLimit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cacheCfg := config.LoadCacheConfig()
	browseCache := middleware.NewBrowseCache(cacheCfg, rdb)

	e := echo.New()
	router.RegisterRoutes(e)

	authH := handler.NewAuthHandler(cfg, users, tokens, activities, mail)
	router.RegisterAuth(e, authH, cfg.JWTSecret, rateLimit)

	customerH := handler.NewCustomerHandler(cfg, users, restaurants, menu, areas, reservations, payments, bookingSvc, recommender)
	router.RegisterCustomer(e, customerH, cfg.JWTSecret, browseCache)

	restaurantH := handler.NewRestaurantHandler(cfg, restaurants, reservations, menu, areas, analytics, activities, mail)
	restaurantH.InvalidateBrowse = middleware.NewBrowseInvalidator(cacheCfg, rdb)
	router.RegisterRestaurant(e, restaurantH, cfg.JWTSecret, rateLimit)

	adminH := handler.NewAdminHandler(cfg, users, restaurants, reservations, payments, analytics, activities, mail)
	router.RegisterAdmin(e, adminH, cfg.JWTSecret, rateLimit)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
