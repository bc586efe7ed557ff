package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/kevin111234/economy-lab/internal/binance"
	"github.com/kevin111234/economy-lab/internal/config"
	"github.com/kevin111234/economy-lab/internal/logger"
	"github.com/kevin111234/economy-lab/internal/model"
	"github.com/kevin111234/economy-lab/internal/tools"
)

const _loaderCfgFilePath = "./configs/loader.yaml"

func main() {
	zapLogger, loggerSync := logger.Init(logger.Info)
	defer loggerSync()

	if err := godotenv.Load(); err != nil {
		zapLogger.Warnf("can't detect .env file")
	}

	symbol := flag.String("symbol", "BTCUSDT", "trading pair symbol")
	interval := flag.String("interval", "5m", "candle interval token")
	market := flag.String("market", "spot", "spot or futures")
	start := flag.String("start", "", "range start, YYYY-MM-DD[ HH:MM] KST")
	end := flag.String("end", "", "range end, YYYY-MM-DD[ HH:MM] KST")
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

	candlesService := binance.NewCandlesService(cfg.Binance, zapLogger)
	defer candlesService.Close()

	table, err := candlesService.Load(ctx, binance.LoadQuery{
		Symbol:   *symbol,
		Interval: model.Interval(*interval),
		Start:    tools.TimeString(*start),
		End:      tools.TimeString(*end),
		Market:   binance.Market(*market),
	})
	if err != nil {
		zapLogger.Fatalf("%s: can't load candles", err)
	}

	zapLogger.Infof("loaded %d candles", table.Len())
	printTail(table, 5)
}

func printTail(t model.CandleTable, n int) {
	from := t.Len() - n
	if from < 0 {
		from = 0
	}
	for _, row := range t.Rows[from:] {
		fmt.Printf("%s  O=%.2f H=%.2f L=%.2f C=%.2f V=%.4f\n",
			row.OpenTime.Format("2006-01-02 15:04"), row.Open, row.High, row.Low, row.Close, row.Volume)
	}
}
