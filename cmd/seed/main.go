package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/rl1809/smart-pos/internal/adapter/storage"
	"github.com/rl1809/smart-pos/internal/config"
	"github.com/rl1809/smart-pos/internal/core/domain"
	"github.com/rl1809/smart-pos/internal/core/service"
	"github.com/rl1809/smart-pos/internal/port"
)

type demoProduct struct {
	name     string
	barcode  string
	price    string
	quantity int
	weight   string
}

var demoProducts = []demoProduct{
	{"Ballpoint Pen", "4006381333931", "1.50", 120, ""},
	{"A5 Notebook", "9780201379624", "3.25", 40, "180g"},
	{"Stapler", "0012345678905", "12.90", 6, "350g"},
	{"Sticky Notes", "0725272730706", "2.10", 8, ""},
	{"Highlighter", "0036000291452", "0.95", 60, "15g"},
}

func main() {
	reset := flag.Bool("reset", false, "clear products, sales and users before seeding")
	stress := flag.Int("stress", 0, "concurrent single-unit sells to run against a fresh item after seeding")
	stock := flag.Int("stress-stock", 20, "initial stock of the stress item")
	flag.Parse()

	logger := config.NewLogger("info")
	cfg, err := config.Load(logger)
	if err != nil {
		logger.Fatalf("failed to load configuration: %v", err)
	}
	ctx := context.Background()

	store, closeStore, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("failed to open %s store: %v", cfg.StoreBackend, err)
	}
	defer closeStore()

	if *reset {
		for _, name := range []string{port.CollectionProducts, port.CollectionSales, port.CollectionUsers, port.CollectionCurrentUser} {
			if err := store.Delete(ctx, name); err != nil {
				logger.Fatalf("failed to clear %s: %v", name, err)
			}
		}
		logger.Info("cleared previous data")
	}

	ledger := service.NewLedger(store, logger)
	session := service.NewSessionManager(store, logger)

	if err := seed(ctx, ledger, session, logger); err != nil {
		logger.Fatalf("seeding failed: %v", err)
	}

	if *stress > 0 {
		runStress(ctx, ledger, *stress, *stock)
	}
}

func seed(ctx context.Context, ledger *service.Ledger, session *service.SessionManager, logger *logrus.Logger) error {
	for _, p := range demoProducts {
		if _, err := ledger.FindByBarcode(ctx, p.barcode); err == nil {
			logger.WithField("barcode", p.barcode).Info("product already stocked, skipping")
			continue
		}
		_, err := ledger.Create(ctx, domain.ProductDraft{
			Name:     p.name,
			Quantity: p.quantity,
			Price:    decimal.RequireFromString(p.price),
			Weight:   p.weight,
			Barcode:  p.barcode,
		})
		if err != nil {
			return err
		}
	}

	_, err := session.Register(ctx, "Demo Operator", "demo@smartpos.local", "demo")
	switch {
	case err == nil:
		logger.Info("registered demo@smartpos.local")
	case errors.Is(err, service.ErrDuplicateEmail):
		logger.Info("demo operator already registered")
	default:
		return err
	}
	// leave the terminal logged out
	return session.Logout(ctx)
}

// runStress fires concurrent sells at one item; exactly stock of them must win.
func runStress(ctx context.Context, ledger *service.Ledger, requests, stock int) {
	item, err := ledger.Create(ctx, domain.ProductDraft{
		Name:     "Stress Item",
		Quantity: stock,
		Price:    decimal.NewFromInt(1),
		Barcode:  fmt.Sprintf("stress-%d", time.Now().UnixNano()),
	})
	if err != nil {
		fmt.Printf("FAIL: could not create stress item: %v\n", err)
		return
	}

	var successCount atomic.Int32
	var failCount atomic.Int32
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < requests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := ledger.Sell(ctx, item.ID, 1); err == nil {
				successCount.Add(1)
			} else {
				failCount.Add(1)
			}
		}()
	}
	wg.Wait()
	elapsed := time.Since(start)

	success, fail := int(successCount.Load()), int(failCount.Load())
	wantSuccess := min(stock, requests)

	fmt.Println("========== SELL STRESS RESULTS ==========")
	fmt.Printf("Initial Stock:    %d\n", stock)
	fmt.Printf("Total Requests:   %d\n", requests)
	fmt.Printf("Successful:       %d\n", success)
	fmt.Printf("Failed:           %d\n", fail)
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("=========================================")

	if success == wantSuccess && fail == requests-wantSuccess {
		fmt.Printf("PASS: %d sells succeeded, %d rejected\n", success, fail)
	} else {
		fmt.Printf("FAIL: expected %d success/%d fail, got %d/%d\n", wantSuccess, requests-wantSuccess, success, fail)
	}

	final, err := ledger.Get(ctx, item.ID)
	if err != nil {
		fmt.Printf("FAIL: could not read stress item: %v\n", err)
		return
	}
	fmt.Printf("Final Stock:      %d\n", final.Quantity)
	if final.Quantity == stock-wantSuccess {
		fmt.Println("PASS: stock never went negative")
	} else {
		fmt.Printf("FAIL: expected stock %d, got %d\n", stock-wantSuccess, final.Quantity)
	}
}
