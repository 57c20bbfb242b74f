package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/fgeck/gowake/internal/config"
	"github.com/fgeck/gowake/internal/macaddr"
	"github.com/fgeck/gowake/internal/models"
	"github.com/fgeck/gowake/internal/services/runner"
	"github.com/fgeck/gowake/internal/services/transmit"
	"github.com/fgeck/gowake/internal/wakeupfile"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Wake flags.
var (
	wakeFile       string
	wakeHost       string
	wakePort       uint16
	wakeSourcePort uint16
	wakePasswd     macaddr.SecureOnFlag
	wakeIPv6       bool
	wakeWait       time.Duration
	wakeFailFast   bool
	wakeKeepGoing  bool
	wakeParallel   int
)

// newRunner builds the runner used by the wake command.
var newRunner = func(logger zerolog.Logger) runner.Service {
	return runner.New(logger)
}

var errNoTargets = errors.New("no targets: pass hardware addresses or --file")

var wakeCmd = &cobra.Command{
	Use:   "wake [HARDWARE-ADDRESS...]",
	Short: "Send magic packets to wake targets",
	Long: `Send a magic packet to each target given on the command line or listed in
a wakeup file. Command line targets are sent first. A failed target does
not stop the others unless --fail-fast is given; the command exits
non-zero if any target failed. A malformed wakeup file line aborts the run
before anything is sent unless --keep-going is given.

Packets go to 255.255.255.255 on port 9 unless --host, --port or the
wakeup file say otherwise. With --ipv6 the default destination is ff02::1
and DNS names resolve to IPv6 addresses.`,
	Example: `  gowake wake 26:ce:55:a5:c2:33
  gowake wake -H 192.168.1.255 --passwd aa:bb:cc:dd:ee:ff 26-ce-55-a5-c2-33
  gowake wake -f targets.txt --keep-going
  cat targets.txt | gowake wake -f -`,
	RunE: runWake,
}

func init() {
	flags := wakeCmd.Flags()
	flags.StringVarP(&wakeFile, "file", "f", "", "read targets from a wakeup file (- for stdin)")
	flags.StringVarP(&wakeHost, "host", "H", "", "destination IP address or DNS name (default 255.255.255.255, ff02::1 with --ipv6)")
	flags.Uint16VarP(&wakePort, "port", "p", transmit.DefaultPort, "destination UDP port")
	flags.Uint16Var(&wakeSourcePort, "source-port", 0, "local UDP port to send from (default ephemeral)")
	flags.Var(&wakePasswd, "passwd", "SecureOn password to append to every packet")
	flags.BoolVarP(&wakeIPv6, "ipv6", "6", false, "default to ff02::1 and prefer IPv6 when resolving DNS names")
	flags.DurationVarP(&wakeWait, "wait", "w", 0, "pause between packets")
	flags.BoolVar(&wakeFailFast, "fail-fast", false, "stop at the first target that cannot be woken")
	flags.BoolVar(&wakeKeepGoing, "keep-going", false, "skip malformed wakeup file lines instead of aborting")
	flags.IntVar(&wakeParallel, "parallel", 1, "maximum number of packets sent concurrently")
}

func runWake(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyWakeFlags(cmd.Flags(), cfg)

	if err := config.Validate(cfg); err != nil {
		log.Error().Err(err).Msg("invalid configuration")
		return err
	}

	reqs, err := argTargets(args)
	if err != nil {
		log.Error().Err(err).Msg("invalid target")
		return err
	}

	var parseErr error
	if wakeFile != "" {
		fileReqs, err := readTargets(wakeFile, cfg.ContinueOnParseError)
		if err != nil {
			if !cfg.ContinueOnParseError {
				log.Error().Err(err).Str("file", wakeFile).Msg("failed to read wakeup file")
				return err
			}
			log.Warn().Err(err).Str("file", wakeFile).Msg("skipping malformed lines")
			parseErr = err
		}
		reqs = append(reqs, fileReqs...)
	}

	if len(reqs) == 0 && parseErr == nil {
		return errNoTargets
	}

	ctx, cancel := signalContext()
	defer cancel()

	runnerSvc := newRunner(log.Logger)
	results, runErr := runnerSvc.Run(ctx, *cfg, reqs)
	if err := errors.Join(parseErr, runErr); err != nil {
		log.Error().Err(err).Msg("wake failed")
		return err
	}

	log.Info().Int("targets", len(results)).Msg("all targets woken")
	return nil
}

// applyWakeFlags overrides config values with the flags the user set.
func applyWakeFlags(flags *pflag.FlagSet, cfg *models.WakeConfig) {
	if flags.Changed("host") {
		cfg.Host = wakeHost
	}
	if flags.Changed("port") {
		cfg.Port = wakePort
	}
	if flags.Changed("source-port") {
		cfg.SourcePort = wakeSourcePort
	}
	if flags.Changed("passwd") {
		cfg.SecureOn = wakePasswd.Value
	}
	if flags.Changed("ipv6") {
		cfg.PreferIPv6 = wakeIPv6
	}
	if flags.Changed("wait") {
		cfg.Wait = wakeWait
	}
	if flags.Changed("fail-fast") {
		cfg.FailFast = wakeFailFast
	}
	if flags.Changed("keep-going") {
		cfg.ContinueOnParseError = wakeKeepGoing
	}
	if flags.Changed("parallel") {
		cfg.Parallel = wakeParallel
	}
}

// argTargets parses hardware addresses given as arguments.
func argTargets(args []string) ([]models.WakeRequest, error) {
	reqs := make([]models.WakeRequest, 0, len(args))
	for _, arg := range args {
		addr, err := macaddr.ParseHardwareAddr(arg)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, models.WakeRequest{HardwareAddr: addr})
	}
	return reqs, nil
}

func readTargets(path string, continueOnError bool) ([]models.WakeRequest, error) {
	rc, err := wakeupfile.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	reqs, err := wakeupfile.Read(rc, wakeupfile.Options{ContinueOnError: continueOnError})
	if err != nil {
		return reqs, fmt.Errorf("%s: %w", path, err)
	}
	return reqs, nil
}
