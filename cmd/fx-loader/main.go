package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/kevin111234/economy-lab/internal/config"
	"github.com/kevin111234/economy-lab/internal/fred"
	"github.com/kevin111234/economy-lab/internal/fxindex"
	"github.com/kevin111234/economy-lab/internal/logger"
	"github.com/kevin111234/economy-lab/internal/tools"
)

const _loaderCfgFilePath = "./configs/loader.yaml"

// FRED series: KRW per USD daily rate and the broad dollar index.
const (
	_krwUSDSeries   = "DEXKOUS"
	_usdIndexSeries = "DTWEXBGS"
)

func main() {
	zapLogger, loggerSync := logger.Init(logger.Info)
	defer loggerSync()

	if err := godotenv.Load(); err != nil {
		zapLogger.Warnf("can't detect .env file")
	}

	start := flag.String("start", "", "range start, YYYY-MM-DD KST")
	end := flag.String("end", "", "range end, YYYY-MM-DD KST")
	flag.Parse()

	if *start == "" || *end == "" {
		log.Fatal("both -start and -end are required")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.LoadLoaderConfig(_loaderCfgFilePath)
	if err != nil {
		zapLogger.Warnf("%s: can't load config, using defaults", err)
		cfg = config.DefaultLoaderConfig()
	}

	observationsService, err := fred.NewObservationsService(cfg.FRED, zapLogger)
	if err != nil {
		zapLogger.Fatalf("%s: can't create observations service", err)
	}
	defer observationsService.Close()

	krwUSD, err := observationsService.LoadSeries(ctx, fred.SeriesQuery{
		SeriesID: _krwUSDSeries,
		Column:   "krw_per_usd",
		Start:    tools.TimeString(*start),
		End:      tools.TimeString(*end),
	})
	if err != nil {
		zapLogger.Fatalf("%s: can't load krw/usd series", err)
	}

	usdIndex, err := observationsService.LoadSeries(ctx, fred.SeriesQuery{
		SeriesID: _usdIndexSeries,
		Column:   "usd_index",
		Start:    tools.TimeString(*start),
		End:      tools.TimeString(*end),
	})
	if err != nil {
		zapLogger.Fatalf("%s: can't load usd index series", err)
	}

	wonIndex, err := fxindex.WonIndex(krwUSD, usdIndex)
	if err != nil {
		zapLogger.Fatalf("%s: can't derive won index", err)
	}

	bundle := fxindex.Merge(krwUSD, usdIndex, wonIndex)
	zapLogger.Infof("fx bundle ready columns=%v rows=%d", bundle.Columns, len(bundle.Rows))
	printTail(bundle, 5)
}

func printTail(b fxindex.Bundle, n int) {
	from := len(b.Rows) - n
	if from < 0 {
		from = 0
	}
	for _, row := range b.Rows[from:] {
		fmt.Printf("%s", row.Date.In(tools.KST).Format(time.DateOnly))
		for _, col := range b.Columns {
			if v := row.Values[col]; v != nil {
				fmt.Printf("  %s=%.4f", col, *v)
			} else {
				fmt.Printf("  %s=null", col)
			}
		}
		fmt.Println()
	}
}
