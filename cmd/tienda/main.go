package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/tiendaviva/tienda/config"
	"github.com/tiendaviva/tienda/internal/adminapi"
	"github.com/tiendaviva/tienda/internal/app"
	"github.com/tiendaviva/tienda/internal/checkout"
	"github.com/tiendaviva/tienda/internal/shopapi"
	"github.com/tiendaviva/tienda/internal/store"
	"github.com/tiendaviva/tienda/internal/webserver"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	h        = flag.Bool("h", false, "help usage")
	showVer  = flag.Bool("v", false, "show version")
	conffile = flag.String("c", "tienda.yml", "config file")
	initdb   = flag.Bool("initdb", false, "drop and recreate all tables, then exit")
)

var (
	BuildVersion string
	ReleaseDate  string
)

func printVersion() {
	fmt.Printf("tienda version: %s, release: %s\n", BuildVersion, ReleaseDate)
}

func main() {
	flag.Parse()
	if *h {
		flag.Usage()
		os.Exit(0)
	}
	if *showVer {
		printVersion()
		os.Exit(0)
	}

	appConfig := config.LoadConfig(*conffile)
	application := app.NewApplication(appConfig)
	application.Init(appConfig)
	defer application.Release()

	if *initdb {
		application.InitDb()
		zap.S().Info("database initialized")
		os.Exit(0)
	}

	productRepo := store.NewGormProductRepository(application.DB())
	processor := store.NewOrderStockProcessor(productRepo)
	if threshold := application.GetSettingsInt64Value(app.SettingsTypeStore, app.KeyLowStockThreshold); threshold > 0 {
		processor = processor.WithWarnThreshold(int(threshold))
	}

	checkoutSvc := checkout.NewService(
		checkout.NewGormOrderRepository(application.DB()),
		processor,
		application.Bus(),
	)
	notifier, err := checkout.NewOrderNotifier(appConfig)
	if err != nil {
		zap.S().Warnf("notifier disabled: %v", err)
	} else {
		checkoutSvc.WithNotifier(notifier)
		defer notifier.Release()
	}

	webserver.Init(application)
	adminapi.Init(application, checkoutSvc)
	shopapi.Init(application, checkoutSvc)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return webserver.Listen()
	})
	g.Go(func() error {
		application.StartBackgroundJobs(ctx)
		<-ctx.Done()
		webserver.Shutdown()
		return nil
	})

	if err := g.Wait(); err != nil {
		zap.S().Error(err)
	}
}
