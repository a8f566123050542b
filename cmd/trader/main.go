// Command trader runs the directional-change pipeline: a market-data
// processor, a strategy engine, and an execution engine, each on its own
// poll loop and connected by in-process lanes.
package main

import (
	"context"
	"flag"
	"net"
	"os"
	"time"

	"github.com/grafana/pyroscope-go"
	"github.com/yanun0323/logs"

	"dcengine/internal/bus"
	"dcengine/internal/codec"
	"dcengine/internal/execution"
	"dcengine/internal/marketdata"
	"dcengine/internal/ops"
	"dcengine/internal/strategy"
	"dcengine/internal/supervisor"
)

const laneCapacity = 4096

const defaultConfigPath = "config/system_config.json"

func main() {
	configReload := flag.Duration("config-reload-interval", 2*time.Second, "Config reload interval (0=disable)")
	listenAddr := flag.String("listen", "/tmp/dcengine-mdsim.sock", "Unix domain socket to accept tick connections on")
	profile := flag.Bool("profile", false, "Enable continuous profiling via pyroscope")
	profileServer := flag.String("profile-server", "http://localhost:4040", "Pyroscope server address")
	flag.Parse()

	configPath := defaultConfigPath
	if flag.NArg() > 0 {
		configPath = flag.Arg(0)
	}

	if *profile {
		profiler, err := pyroscope.Start(pyroscope.Config{
			ApplicationName: "dcengine.trader",
			ServerAddress:   *profileServer,
			ProfileTypes: []pyroscope.ProfileType{
				pyroscope.ProfileCPU,
				pyroscope.ProfileAllocObjects,
				pyroscope.ProfileAllocSpace,
				pyroscope.ProfileInuseObjects,
				pyroscope.ProfileInuseSpace,
			},
		})
		if err != nil {
			logs.Errorf("trader: pyroscope start failed: %v", err)
		} else {
			defer profiler.Stop()
		}
	}

	loaded, err := loadConfig(configPath)
	if err != nil {
		logs.Errorf("trader: config load failed: %v", err)
		os.Exit(1)
	}
	runtime := ops.NewRuntimeConfig(loaded)

	ctx := context.Background()
	if *configReload > 0 {
		go ops.Watch(ctx, configPath, *configReload, runtime)
	}

	tickLane := bus.NewLane(laneCapacity)
	dcLane := bus.NewLane(laneCapacity)
	orderLane := bus.NewLane(laneCapacity)
	tickLane.Connect()
	dcLane.Connect()
	orderLane.Connect()

	mdp := marketdata.New(tickLane, dcLane, loaded.Theta)
	se := strategy.New(dcLane, orderLane, loaded.StrategyConfig)
	ee := execution.New(orderLane, loaded.InitialCapital, loaded.SimulationMode)

	listener, err := listenTicks(*listenAddr, tickLane)
	if err != nil {
		logs.Errorf("trader: failed to listen on %s: %v", *listenAddr, err)
		os.Exit(1)
	}
	defer listener.Close()

	sup := supervisor.New(
		supervisor.Worker{Name: "market_data", MaxFragments: 10, Poll: mdp.PollOnce},
		supervisor.Worker{Name: "strategy", MaxFragments: 10, Poll: se.PollOnce},
		supervisor.Worker{Name: "execution", MaxFragments: 10, Poll: ee.PollOnce},
	)

	if err := sup.Run(ctx); err != nil {
		logs.Errorf("trader: supervisor exited with error: %v", err)
	}

	logPerformance(ee)
}

func loadConfig(path string) (ops.Loaded, error) {
	if path == "" {
		return ops.Default(), nil
	}
	return ops.Load(path)
}

// listenTicks accepts connections on a Unix domain socket and forwards each
// codec.TickSize-byte frame onto the given lane as received, without
// decoding it. Each connection is read on its own goroutine; a read error
// (including a frame cut short by the peer closing) or an unavailable lane
// ends that connection.
func listenTicks(addr string, lane *bus.Lane) (net.Listener, error) {
	os.Remove(addr)
	listener, err := net.Listen("unix", addr)
	if err != nil {
		return nil, err
	}

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			go serveTicks(conn, lane)
		}
	}()

	return listener, nil
}

func serveTicks(conn net.Conn, lane *bus.Lane) {
	defer conn.Close()
	buf := make([]byte, codec.TickSize)
	for {
		if _, err := readFull(conn, buf); err != nil {
			return
		}
		frame := make([]byte, codec.TickSize)
		copy(frame, buf)
		switch result := lane.Offer(frame); result {
		case bus.OfferOK:
		case bus.OfferBackPressured:
			logs.Debugf("trader: tick lane back pressured, dropping tick")
		case bus.OfferNotConnected, bus.OfferClosed:
			logs.Errorf("trader: tick lane unavailable (%s), stopping ingest", result)
			return
		}
	}
}

func readFull(conn net.Conn, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := conn.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func logPerformance(ee *execution.Engine) {
	metrics := ee.Accumulator().Metrics()
	logs.Infof("trader: final performance total_pnl=%f trades=%d win_rate=%f max_drawdown=%f sharpe=%f",
		metrics.TotalPnL, metrics.TotalTrades, metrics.WinRate, metrics.MaxDrawdown, metrics.SharpeRatio)
}
