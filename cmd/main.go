package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/smtp"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/govalues/decimal"
	"github.com/govalues/money"
	"github.com/joho/godotenv"

	"github.com/adilkt/fleetbook/internal/fleet"
	"github.com/adilkt/fleetbook/internal/httpapi"
	"github.com/adilkt/fleetbook/internal/notify"
	"github.com/adilkt/fleetbook/internal/storage/memory"
	pgstore "github.com/adilkt/fleetbook/internal/storage/postgres"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Local .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	// Logger (slog to stdout). Level via LOG_LEVEL; format via LOG_FORMAT (json|text, default json)
	logger := buildLoggerFromEnv()
	slog.SetDefault(logger)

	notifier := buildNotifierFromEnv(logger)

	var store httpapi.Store
	var closeFn func()

	if dsn := strings.TrimSpace(os.Getenv("DATABASE_URL")); dsn != "" {
		pg, err := pgstore.Open(ctx, dsn)
		if err != nil {
			logger.Error("failed to connect to postgres", "err", err)
			os.Exit(1)
		}
		if err := pg.EnsureSchema(ctx); err != nil {
			logger.Error("failed to ensure schema", "err", err)
			os.Exit(1)
		}
		closeFn = func() { pg.Close() }
		store = pg
		logger.Info("storage backend: postgres")
	} else {
		mem := memory.New()
		if dev := strings.ToLower(strings.TrimSpace(os.Getenv("DEV_SEED"))); dev == "1" || dev == "true" || dev == "yes" {
			seedDev(mem, logger)
		}
		store = mem
		logger.Info("storage backend: memory")
	}

	addr := strings.TrimSpace(os.Getenv("HTTP_ADDR"))
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           httpapi.New(store, notifier, logger).Handler(),
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("fleetbook service listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctxShutdown); err != nil {
			logger.Error("server shutdown error", "err", err)
		}
	case err := <-errCh:
		logger.Error("server error", "err", err)
	}
	if closeFn != nil {
		closeFn()
	}
}

// buildLoggerFromEnv constructs the process logger from LOG_LEVEL and
// LOG_FORMAT (json|text, default json).
func buildLoggerFromEnv() *slog.Logger {
	level := parseLogLevel(os.Getenv("LOG_LEVEL"))
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.EqualFold(strings.TrimSpace(os.Getenv("LOG_FORMAT")), "text") {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// buildNotifierFromEnv wires the SMTP mailer when SMTP_ADDR is set and falls
// back to the no-op notifier otherwise.
func buildNotifierFromEnv(logger *slog.Logger) notify.Notifier {
	addr := strings.TrimSpace(os.Getenv("SMTP_ADDR"))
	if addr == "" {
		logger.Info("notifications disabled (SMTP_ADDR not set)")
		return notify.Nop{}
	}
	from := strings.TrimSpace(os.Getenv("SMTP_FROM"))
	if from == "" {
		from = "fleetbook@localhost"
	}
	var auth smtp.Auth
	if user := os.Getenv("SMTP_USER"); user != "" {
		host, _, err := net.SplitHostPort(addr)
		if err != nil {
			host = addr
		}
		auth = smtp.PlainAuth("", user, os.Getenv("SMTP_PASSWORD"), host)
	}
	logger.Info("notifications enabled", "smtp_addr", addr, "from", from)
	return notify.NewMailer(addr, from, auth, logger)
}

// seedDev loads a small fleet for local poking: two partners sharing one
// vehicle plus a month of records.
func seedDev(store *memory.Store, logger *slog.Logger) {
	p1 := fleet.Partner{ID: uuid.New(), Name: "Adil", Email: "adil@example.com", Active: true, CanManageVehicles: true, CanImportData: true}
	p2 := fleet.Partner{ID: uuid.New(), Name: "Shibu", Email: "shibu@example.com", Active: true}
	store.SeedPartner(p1)
	store.SeedPartner(p2)

	v := fleet.Vehicle{
		ID:                 uuid.New(),
		Name:               "Swift Dzire",
		RegistrationNumber: "KL-11-AB-1234",
		Color:              "White",
		PricePerDay:        mustAmount(1800_00),
		PartnerIDs:         []uuid.UUID{p1.ID, p2.ID},
		CreatedAt:          time.Now().UTC(),
	}
	store.SeedVehicle(v)

	now := time.Now().UTC()
	store.SeedRental(fleet.Rental{
		ID:                  uuid.New(),
		VehicleID:           v.ID,
		DateOut:             now.AddDate(0, 0, -10),
		CustomerName:        "Test Customer",
		Destination:         "Kochi",
		DaysOfRent:          mustDecimal("2"),
		RentPerDay:          mustAmount(1800_00),
		TotalAmountReceived: mustAmount(3600_00),
	})
	store.SeedExpense(fleet.Expense{
		ID:          uuid.New(),
		VehicleID:   v.ID,
		Date:        now.AddDate(0, 0, -5),
		Particulars: "Oil change",
		Place:       "Service center",
		Amount:      mustAmount(1200_00),
	})

	logger.Info("DEV seed (memory)", "vehicle_id", v.ID.String(), "partner_ids", []string{p1.ID.String(), p2.ID.String()})
	fmt.Println("==================== DEV SEED ====================")
	fmt.Printf("vehicle_id: %s\n", v.ID.String())
	fmt.Printf("partner_1_id: %s\n", p1.ID.String())
	fmt.Printf("partner_2_id: %s\n", p2.ID.String())
	fmt.Println("==================================================")
}

func mustAmount(minor int64) money.Amount {
	a, err := money.NewAmountFromMinorUnits(fleet.Currency, minor)
	if err != nil {
		panic(err)
	}
	return a
}

func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}
