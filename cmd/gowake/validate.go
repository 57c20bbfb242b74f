package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/fgeck/gowake/internal/config"
	"github.com/fgeck/gowake/internal/models"
	"github.com/fgeck/gowake/internal/services/runner"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var validateFile string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and wakeup file",
	Long: `Validate the configuration and, with --file, every line of a wakeup file
without sending any packets. All malformed lines are reported.`,
	RunE: validateTargets,
}

func init() {
	validateCmd.Flags().StringVarP(&validateFile, "file", "f", "", "wakeup file to check (- for stdin)")
}

func validateTargets(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Validate configuration
	if err := config.Validate(cfg); err != nil {
		log.Error().Err(err).Msg("configuration validation failed")
		return err
	}

	out := cmd.OutOrStdout()
	printConfig(out, cfg)

	if validateFile == "" {
		return nil
	}

	reqs, err := readTargets(validateFile, true)

	var lineErrs []error
	if err != nil {
		var joined interface{ Unwrap() []error }
		if errors.As(err, &joined) {
			lineErrs = joined.Unwrap()
		} else {
			lineErrs = []error{err}
		}
	}
	printTargets(out, cfg, reqs, lineErrs)

	if err != nil {
		log.Error().Int("errors", len(lineErrs)).Str("file", validateFile).Msg("wakeup file is invalid")
		return errors.New("wakeup file is invalid")
	}
	return nil
}

func printConfig(w io.Writer, cfg *models.WakeConfig) {
	host := cfg.Host
	if host == "" {
		host = runner.DefaultHost(cfg.PreferIPv6)
	}

	fmt.Fprintln(w, "Configuration is valid!")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Defaults:")
	fmt.Fprintf(w, "  Host: %s\n", host)
	fmt.Fprintf(w, "  Port: %d\n", cfg.Port)
	if cfg.SourcePort != 0 {
		fmt.Fprintf(w, "  Source port: %d\n", cfg.SourcePort)
	}
	fmt.Fprintf(w, "  SecureOn: %v\n", cfg.SecureOn != nil)
	fmt.Fprintf(w, "  Prefer IPv6: %v\n", cfg.PreferIPv6)
	fmt.Fprintf(w, "  Wait: %s\n", cfg.Wait)
	fmt.Fprintf(w, "  Fail fast: %v\n", cfg.FailFast)
	fmt.Fprintf(w, "  Skip malformed lines: %v\n", cfg.ContinueOnParseError)
	fmt.Fprintf(w, "  Parallel: %d\n", cfg.Parallel)
}

func printTargets(w io.Writer, cfg *models.WakeConfig, reqs []models.WakeRequest, errs []error) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Targets:")
	for _, req := range reqs {
		host := req.Host
		if host == "" {
			host = "(default)"
		}
		port := req.Port
		if port == 0 {
			port = cfg.Port
		}
		fmt.Fprintf(w, "  line %d: %s host=%s port=%d secure-on=%v\n",
			req.Line, req.HardwareAddr, host, port, req.SecureOn != nil || cfg.SecureOn != nil)
	}

	if len(errs) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Errors:")
		for _, err := range errs {
			fmt.Fprintf(w, "  %v\n", err)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%d valid target(s), %d error(s)\n", len(reqs), len(errs))
}
