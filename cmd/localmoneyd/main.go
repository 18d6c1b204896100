package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/desamtralized/LocalMoney-sub003/internal/config"
	"github.com/desamtralized/LocalMoney-sub003/internal/core/application"
	"github.com/desamtralized/LocalMoney-sub003/internal/core/ports"
	"github.com/desamtralized/LocalMoney-sub003/internal/infrastructure/offer"
	krakenoracle "github.com/desamtralized/LocalMoney-sub003/internal/infrastructure/oracle/kraken"
	staticoracle "github.com/desamtralized/LocalMoney-sub003/internal/infrastructure/oracle/static"
	"github.com/desamtralized/LocalMoney-sub003/internal/infrastructure/profile"
	"github.com/desamtralized/LocalMoney-sub003/internal/infrastructure/randsource"
	dbbadger "github.com/desamtralized/LocalMoney-sub003/internal/infrastructure/storage/db/badger"
	"github.com/desamtralized/LocalMoney-sub003/internal/infrastructure/storage/db/inmemory"
	"github.com/desamtralized/LocalMoney-sub003/internal/infrastructure/wallet"
	httpinterface "github.com/desamtralized/LocalMoney-sub003/internal/interfaces/http"
	"github.com/desamtralized/LocalMoney-sub003/pkg/stats"
)

var wellKnownTickers = map[string]string{
	"USD": "XBT/USD",
	"EUR": "XBT/EUR",
	"CAD": "XBT/CAD",
}

func main() {
	if err := config.InitConfig(); err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}
	log.SetLevel(log.Level(config.GetInt(config.LogLevelKey)))

	protocolCfg, err := config.ProtocolConfig()
	if err != nil {
		log.WithError(err).Fatal("invalid protocol configuration")
	}

	var repoManager ports.RepoManager
	switch config.GetString(config.DBTypeKey) {
	case config.DBBadger:
		dbDir := filepath.Join(config.GetDatadir(), config.DbLocation)
		repoManager, err = dbbadger.NewRepoManager(dbDir, nil, protocolCfg)
		if err != nil {
			log.WithError(err).Fatal("cannot open database")
		}
	default:
		repoManager = inmemory.NewRepoManager(protocolCfg)
	}
	defer repoManager.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var priceSource ports.PriceSource
	var oracleSvc *krakenoracle.Service
	if config.GetBool(config.OracleEnabledKey) {
		oracleSvc = krakenoracle.NewService(wellKnownTickers)
		priceSource = oracleSvc
	} else {
		priceSource = staticoracle.NewService(map[string]decimal.Decimal{
			"USD": decimal.NewFromInt(50000),
		})
	}

	walletSvc := wallet.NewService()
	offerRegistry := offer.NewRegistry()

	tradeSvc := application.NewTradeService(
		repoManager, offerRegistry, priceSource, profile.NewNotifier(),
		walletSvc, randsource.NewService(),
	)
	operatorSvc := application.NewOperatorService(repoManager, randsource.NewService())

	router := gin.New()
	router.Use(gin.Recovery())
	httpinterface.NewHandler(tradeSvc, operatorSvc).RegisterRoutes(router)

	addr := fmt.Sprintf(":%d", config.GetInt(config.HTTPPortKey))
	server := &http.Server{Addr: addr, Handler: router}

	statsInterval := time.Duration(config.GetInt(config.StatsIntervalKey)) * time.Second
	stats.EnableMemoryStatistics(ctx, statsInterval)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Infof("http interface is listening on %s", addr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	if oracleSvc != nil {
		group.Go(func() error {
			return oracleSvc.Start()
		})
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	select {
	case <-sigChan:
		log.Info("shutting down")
	case <-groupCtx.Done():
	}

	if oracleSvc != nil {
		oracleSvc.Stop()
	}
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("error while shutting down http interface")
	}
	cancel()

	if err := group.Wait(); err != nil {
		log.WithError(err).Error("daemon exited with error")
	}
	log.Info("exiting")
}
