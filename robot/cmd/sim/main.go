// Package main runs the robot headless against the simulated drivetrain.
package main

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.uber.org/zap/zapcore"
	"go.viam.com/utils"

	"go.viam.com/diffdrive/config"
	"go.viam.com/diffdrive/logging"
	"go.viam.com/diffdrive/robot"
)

var logger = logging.NewLogger("sim")

func main() {
	utils.ContextualMain(mainWithArgs, logger)
}

// Arguments for the command.
type Arguments struct {
	ConfigFile string `flag:"config,usage=robot config file; the stock Romi config when empty"`
	Auto       string `flag:"auto,usage=autonomous routine to run; the configured default when empty"`
	Duration   string `flag:"duration,default=15s,usage=longest time to run the autonomous period for"`
	Realtime   bool   `flag:"realtime,usage=pace ticks with the wall clock"`
	Plot       string `flag:"plot,usage=write the planned and driven paths to this PNG"`
	List       bool   `flag:"list,usage=log the routines and courses then exit"`
	Schema     string `flag:"schema,usage=write the config file JSON schema to this path then exit"`
}

func mainWithArgs(ctx context.Context, args []string, logger logging.Logger) error {
	var argsParsed Arguments
	if err := utils.ParseFlags(args, &argsParsed); err != nil {
		return err
	}
	duration, err := time.ParseDuration(argsParsed.Duration)
	if err != nil {
		return errors.Wrap(err, "invalid duration")
	}
	if argsParsed.Schema != "" {
		return writeSchema(argsParsed.Schema)
	}

	cfg := config.Default()
	if argsParsed.ConfigFile != "" {
		if cfg, err = config.Read(argsParsed.ConfigFile); err != nil {
			return err
		}
	}
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return errors.Wrap(err, "invalid log_level")
	}
	logger.SetLevel(level)
	logging.ReplaceGlobal(logger)

	var clk clock.Clock
	if argsParsed.Realtime {
		clk = clock.New()
	} else {
		clk = clock.NewMock()
	}
	sim, err := robot.NewSimulation(cfg, logger, clk)
	if err != nil {
		return err
	}
	if argsParsed.List {
		logger.Infow("autonomous routines", "options", sim.Chooser().Options(), "selected", sim.Chooser().Selected())
		logger.Info("courses\n" + cfg.CoursesString())
		return nil
	}
	if argsParsed.Auto != "" {
		if err := sim.SelectAutonomous(argsParsed.Auto); err != nil {
			return errors.Wrapf(err, "available routines are %v", sim.Chooser().Options())
		}
	}
	if err := sim.AutonomousInit(); err != nil {
		return err
	}
	var rec pathRecorder
	if err := run(ctx, sim, clk, cfg.TickPeriod, duration, &rec, logger); err != nil {
		return err
	}
	if rec.len() > 0 {
		mean, p95, maxDrift, err := rec.driftSummary()
		if err != nil {
			return err
		}
		logger.Infow("odometry drift", "mean", mean, "p95", p95, "max", maxDrift)
	}
	if argsParsed.Plot != "" {
		return rec.savePlot(argsParsed.Plot, sim.PlannedTrajectory())
	}
	return nil
}

func writeSchema(path string) error {
	raw, err := json.MarshalIndent(config.Schema(), "", "  ")
	if err != nil {
		return err
	}
	return errors.Wrapf(os.WriteFile(path, raw, 0o600), "failed to write schema to %q", path)
}

// run steps the simulation every period until the autonomous routine finishes or duration
// has passed on clk. A mock clock is advanced here so the run is as fast as the machine
// allows.
func run(
	ctx context.Context,
	sim *robot.Simulation,
	clk clock.Clock,
	period, duration time.Duration,
	rec *pathRecorder,
	logger logging.Logger,
) error {
	mock, simulated := clk.(*clock.Mock)
	var ticker *clock.Ticker
	if !simulated {
		ticker = clk.Ticker(period)
		defer ticker.Stop()
	}

	start := clk.Now()
	for ticks := 0; clk.Since(start) < duration; ticks++ {
		if simulated {
			if err := ctx.Err(); err != nil {
				return err
			}
		} else if !utils.SelectContextOrWaitChan(ctx, ticker.C) {
			return ctx.Err()
		}

		sim.Step(period)
		if simulated {
			mock.Add(period)
		}
		estimate, actual := sim.Drivetrain().Pose(), sim.Base.Pose()
		rec.record(actual, estimate)
		if ticks%50 == 0 {
			logger.Debugw("pose", "estimate", estimate.String(), "actual", actual.String())
		}
		if !sim.AutonomousRunning() {
			logger.Infow("autonomous finished", "after", clk.Since(start))
			break
		}
	}
	sim.TeleopInit()

	estimate := sim.Drivetrain().Pose()
	actual := sim.Base.Pose()
	logger.Infow("simulation done",
		"estimate", estimate.String(),
		"actual", actual.String(),
		"drift", estimate.Distance(actual),
		"simulated", sim.Base.Elapsed())
	return nil
}
