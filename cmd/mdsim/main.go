// Command mdsim generates a synthetic random-walk tick stream and feeds it
// into a running trader process's market-data lane over a Unix domain
// socket, standing in for a real exchange feed during local testing.
package main

import (
	"flag"
	"math/rand"
	"net"
	"time"

	"github.com/yanun0323/logs"

	"dcengine/internal/codec"
	"dcengine/internal/schema"
)

// generator produces a synthetic tick stream via a bounded random walk.
type generator struct {
	symbol    schema.Symbol
	price     float64
	volStep   float64
	rng       *rand.Rand
}

func newGenerator(symbol string, startPrice, volStep float64, seed int64) *generator {
	return &generator{
		symbol:  schema.NewSymbol(symbol),
		price:   startPrice,
		volStep: volStep,
		rng:     rand.New(rand.NewSource(seed)),
	}
}

// Next produces the next tick in the walk, floored above zero.
func (g *generator) Next(now time.Time) schema.Tick {
	move := (g.rng.Float64()*2 - 1) * g.volStep
	g.price += g.price * move
	if g.price < 0.01 {
		g.price = 0.01
	}
	volume := 1.0 + g.rng.Float64()*99.0

	return schema.Tick{
		Timestamp: now.UnixNano(),
		Price:     g.price,
		Volume:    volume,
		Symbol:    g.symbol,
	}
}

func main() {
	addr := flag.String("addr", "/tmp/dcengine-mdsim.sock", "Unix domain socket address to dial")
	symbol := flag.String("symbol", "BTCUSD", "Instrument symbol to simulate")
	startPrice := flag.Float64("start-price", 100.0, "Starting price for the walk")
	volStep := flag.Float64("vol-step", 0.001, "Per-tick relative volatility step")
	interval := flag.Duration("interval", 10*time.Millisecond, "Delay between ticks")
	count := flag.Int("count", 0, "Number of ticks to emit (0 = unbounded)")
	seed := flag.Int64("seed", 0, "Random seed (0 = time-based)")
	flag.Parse()

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}

	conn, err := net.Dial("unix", *addr)
	if err != nil {
		logs.Errorf("mdsim: failed to dial %s: %v", *addr, err)
		return
	}
	defer conn.Close()

	g := newGenerator(*symbol, *startPrice, *volStep, *seed)

	emitted := 0
	for *count == 0 || emitted < *count {
		tick := g.Next(time.Now())
		buf := codec.EncodeTick(nil, tick)
		if _, err := conn.Write(buf); err != nil {
			logs.Errorf("mdsim: write failed: %v", err)
			return
		}
		emitted++
		if *interval > 0 {
			time.Sleep(*interval)
		}
	}

	logs.Infof("mdsim: emitted %d ticks for %s", emitted, *symbol)
}
