package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/AlexNa-Holdings/lptracker/cmn"
	"github.com/AlexNa-Holdings/lptracker/eth"
	"github.com/AlexNa-Holdings/lptracker/lp_v3"
	"github.com/AlexNa-Holdings/lptracker/price"
	"github.com/AlexNa-Holdings/lptracker/retry"
	"github.com/AlexNa-Holdings/lptracker/store"
	"github.com/AlexNa-Holdings/lptracker/tracker"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rs/zerolog/log"
)

const (
	MODE_SAMPLE = "sample"
	MODE_TRACK  = "track"
	MODE_ALL    = "all"
)

func usage() {
	fmt.Fprintf(os.Stderr, "%s %s\nusage: %s [%s|%s|%s]\n", cmn.AppName, cmn.VERSION,
		filepath.Base(os.Args[0]), MODE_SAMPLE, MODE_TRACK, MODE_ALL)
}

func main() {
	os.Exit(run())
}

func run() int {
	mode := MODE_ALL
	if len(os.Args) > 1 {
		mode = strings.ToLower(os.Args[1])
	}
	switch mode {
	case MODE_SAMPLE, MODE_TRACK, MODE_ALL:
	default:
		usage()
		return 2
	}

	c, err := cmn.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 2
	}

	if _, err := cmn.InitLog(c); err != nil {
		fmt.Fprintf(os.Stderr, "log: %v\n", err)
		return 2
	}

	log.Info().Msgf("%s %s, mode %s, data in %s", cmn.AppName, cmn.VERSION, mode, c.DataFolder)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	t, closeFn, err := build(ctx, c)
	if err != nil {
		log.Error().Err(err).Msg("startup failed")
		return 1
	}
	defer closeFn()

	failed := false

	if mode == MODE_SAMPLE || mode == MODE_ALL {
		if err := t.Sample(ctx); err != nil {
			failed = true
		}
	}

	if mode == MODE_TRACK || mode == MODE_ALL {
		if err := t.Track(ctx); err != nil {
			failed = true
		}
	}

	if failed {
		log.Warn().Msg("finished with errors, partial progress saved")
		return 1
	}

	log.Info().Msg("done")
	return 0
}

func build(ctx context.Context, c *cmn.SConfig) (*tracker.Tracker, func(), error) {
	chain := cmn.GetChain(c.ChainId)
	if chain == nil {
		return nil, nil, fmt.Errorf("unsupported chain %d", c.ChainId)
	}

	manager, err := c.ManagerAddress()
	if err != nil {
		return nil, nil, err
	}

	rpcCaller := retry.NewCaller(retry.PolicyFromConfig(c.Retry), eth.Classify)

	dial := retry.Do(ctx, rpcCaller, "dial", func(ctx context.Context) (*ethclient.Client, error) {
		dctx, cancel := context.WithTimeout(ctx, c.RequestTimeout)
		defer cancel()
		return eth.Dial(dctx, c.RPC_URL, c.ChainId)
	})
	if !dial.OK() {
		return nil, nil, dial.Err
	}
	client := dial.Value

	caller := eth.NewThrottled(client, c.RPCRate, c.RequestTimeout)

	httpClient := &http.Client{Timeout: c.RequestTimeout}
	feeders, err := price.FeedersFromConfig(c, chain, httpClient)
	if err != nil {
		client.Close()
		return nil, nil, err
	}
	priceCaller := retry.NewCaller(retry.PolicyFromConfig(c.Retry), nil)

	t := tracker.New(c,
		lp_v3.NewReader(caller, manager),
		eth.NewERC20Reader(caller),
		price.NewSource(priceCaller, feeders...),
		store.NewTickStore(c.Path(c.TicksFile), time.Duration(c.RetentionDays)*24*time.Hour),
		store.NewHistoryStore(c.Path(c.FeesFile)),
		rpcCaller,
	)

	return t, client.Close, nil
}
