// Package ops loads and validates the pipeline's JSON configuration and
// watches it for changes on disk.
package ops

import (
	"encoding/json"
	"fmt"
	"os"

	"dcengine/internal/errors"
	"dcengine/internal/strategy"
)

// AeronConfig names a transport channel and stream, after the original
// Aeron-backed configuration surface these lanes stand in for.
type AeronConfig struct {
	Channel   string `json:"channel"`
	StreamID  int32  `json:"stream_id"`
	Directory string `json:"directory"`
	TimeoutMs int64  `json:"timeout_ms"`
}

// AeronFileConfig groups the three lane endpoints the pipeline wires up.
type AeronFileConfig struct {
	MarketData AeronConfig `json:"market_data"`
	Strategy   AeronConfig `json:"strategy"`
	Execution  AeronConfig `json:"execution"`
}

// DCStrategyConfig configures the directional-change detector.
type DCStrategyConfig struct {
	Theta                  float64 `json:"theta"`
	EnableTMVCalculation   bool    `json:"enable_tmv_calculation"`
	EnableTimeAdjustment   bool    `json:"enable_time_adjustment"`
}

// StrategySettingsConfig configures the strategy engine.
type StrategySettingsConfig struct {
	Name              string  `json:"name"`
	EnableHMM         bool    `json:"enable_hmm"`
	HMMStates         int     `json:"hmm_states"`
	HMMMaxIterations  int     `json:"hmm_max_iterations"`
	LeverageFactor    float64 `json:"leverage_factor"`
}

// ExecutionConfig configures the execution engine's fill behavior.
type ExecutionConfig struct {
	SimulationMode  bool    `json:"simulation_mode"`
	InitialCapital  float64 `json:"initial_capital"`
}

// PerformanceConfig controls optional reporting.
type PerformanceConfig struct {
	EnableLatencyTracking    bool   `json:"enable_latency_tracking"`
	EnablePerformanceMetrics bool   `json:"enable_performance_metrics"`
	OutputFile               string `json:"output_file"`
}

// FileConfig mirrors the on-disk JSON configuration layout.
type FileConfig struct {
	Aeron          AeronFileConfig         `json:"aeron"`
	DCStrategy     DCStrategyConfig        `json:"dc_strategy"`
	StrategySettings StrategySettingsConfig `json:"strategy_settings"`
	Execution      ExecutionConfig         `json:"execution"`
	Performance    PerformanceConfig       `json:"performance"`
}

// Loaded is the resolved, validated configuration ready for use.
type Loaded struct {
	Aeron            AeronFileConfig
	Theta            float64
	StrategyConfig   strategy.Config
	InitialCapital   float64
	SimulationMode   bool
	Performance      PerformanceConfig
}

const defaultInitialCapital = 100000.0

// Load reads and validates a JSON config file from path.
func Load(path string) (Loaded, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Loaded{}, errors.Wrap(err, "read config")
	}

	var cfg FileConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Loaded{}, errors.Wrap(err, "unmarshal config")
	}

	return resolve(cfg)
}

func resolve(cfg FileConfig) (Loaded, error) {
	if !cfg.DCStrategy.EnableTMVCalculation {
		return Loaded{}, fmt.Errorf("dc_strategy.enable_tmv_calculation must be true")
	}
	if !cfg.DCStrategy.EnableTimeAdjustment {
		return Loaded{}, fmt.Errorf("dc_strategy.enable_time_adjustment must be true")
	}
	if cfg.DCStrategy.Theta <= 0 {
		return Loaded{}, fmt.Errorf("dc_strategy.theta must be > 0")
	}

	leverage := cfg.StrategySettings.LeverageFactor
	if leverage <= 0 {
		leverage = 1.0
	}

	capital := cfg.Execution.InitialCapital
	if capital <= 0 {
		capital = defaultInitialCapital
	}

	return Loaded{
		Aeron: cfg.Aeron,
		Theta: cfg.DCStrategy.Theta,
		StrategyConfig: strategy.Config{
			LeverageFactor: leverage,
			EnableRegime:   cfg.StrategySettings.EnableHMM,
		},
		InitialCapital: capital,
		SimulationMode: cfg.Execution.SimulationMode,
		Performance:    cfg.Performance,
	}, nil
}

// Default returns the configuration the pipeline falls back to when no
// config file is provided.
func Default() Loaded {
	loaded, err := resolve(FileConfig{
		DCStrategy: DCStrategyConfig{
			Theta:                0.004,
			EnableTMVCalculation: true,
			EnableTimeAdjustment: true,
		},
		StrategySettings: StrategySettingsConfig{
			Name:           "directional_change",
			LeverageFactor: 1.0,
		},
		Execution: ExecutionConfig{
			SimulationMode: true,
			InitialCapital: defaultInitialCapital,
		},
	})
	if err != nil {
		// The defaults above are constructed to always validate; a failure
		// here means resolve's invariants changed without updating Default.
		panic(fmt.Sprintf("ops: default configuration failed to validate: %v", err))
	}
	return loaded
}
