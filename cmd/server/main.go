package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/campusconnect/campus-reservation/internal/config"
	"github.com/campusconnect/campus-reservation/internal/database"
	"github.com/campusconnect/campus-reservation/internal/handler"
	"github.com/campusconnect/campus-reservation/internal/middleware"
	"github.com/campusconnect/campus-reservation/internal/queue"
	"github.com/campusconnect/campus-reservation/internal/repository"
	"github.com/campusconnect/campus-reservation/internal/router"
	"github.com/campusconnect/campus-reservation/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	venues := repository.NewVenueRepo(db)
	bookings := repository.NewBookingRepo(db)
	events := repository.NewEventRepo(db)
	registrations := repository.NewRegistrationRepo(db)
	rides := repository.NewRideRepo(db)

	publisher := queue.NewPublisher()
	clock := service.SystemClock

	bookingSvc := service.NewVenueBookingService(venues, bookings, clock, publisher)
	registrationSvc := service.NewEventRegistrationService(events, registrations, clock, publisher)
	rideSvc := service.NewRideShareService(rides, clock)

	// Rebuild the in-memory ledgers from the durable rows before taking
	// traffic: the interval index from live bookings, the seat pools and
	// waitlists from upcoming events, the seat counters from active rides.
	ctx := context.Background()
	if n, err := tokens.DeleteExpired(ctx, time.Now().UTC()); err != nil {
		log.Printf("token cleanup: %v", err)
	} else if n > 0 {
		log.Printf("token cleanup: dropped %d expired refresh tokens", n)
	}

	if err := bookingSvc.Restore(ctx); err != nil {
		log.Fatalf("restore bookings: %v", err)
	}
	if err := registrationSvc.Restore(ctx); err != nil {
		log.Fatalf("restore registrations: %v", err)
	}
	if err := rideSvc.Restore(ctx); err != nil {
		log.Fatalf("restore rides: %v", err)
	}

	go queue.StartDecisionConsumer()

	e := echo.New()

	// Distributed rate limiting; degrades to a pass-through when Redis is
	// unreachable.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable, rate limiting disabled")
	}
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	authHandler := handler.NewAuthHandler(cfg, users, tokens)
	venueHandler := handler.NewVenueHandler(venues)
	bookingHandler := handler.NewBookingHandler(bookingSvc, bookings)
	eventHandler := handler.NewEventHandler(registrationSvc, events, registrations)
	rideHandler := handler.NewRideHandler(rideSvc, rides)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler, cfg.JWTSecret)
	router.RegisterVenueBookings(e, venueHandler, bookingHandler, cfg.JWTSecret)
	router.RegisterEvents(e, eventHandler, cfg.JWTSecret)
	router.RegisterRides(e, rideHandler, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
