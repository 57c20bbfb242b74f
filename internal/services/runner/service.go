// Package runner orchestrates a wake run: it resolves each target, builds
// its magic packet and hands it to the transmitter.
package runner

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/fgeck/gowake/internal/macaddr"
	"github.com/fgeck/gowake/internal/models"
	"github.com/fgeck/gowake/internal/packet"
	"github.com/fgeck/gowake/internal/services/transmit"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// ErrNoAddress is returned when a host resolves to no usable address.
var ErrNoAddress = errors.New("no usable address")

// Service defines the interface for the wake runner.
type Service interface {
	Run(ctx context.Context, cfg models.WakeConfig, reqs []models.WakeRequest) ([]models.WakeResult, error)
}

// Resolver looks up the addresses of a host. *net.Resolver implements it.
type Resolver interface {
	LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error)
}

// Impl implements the runner Service interface.
type Impl struct {
	transmitSvc transmit.Service
	resolver    Resolver
	logger      zerolog.Logger
}

// New creates a new runner service.
func New(logger zerolog.Logger) *Impl {
	return &Impl{
		transmitSvc: transmit.New(),
		resolver:    net.DefaultResolver,
		logger:      logger,
	}
}

// NewWithServices creates a new runner service with custom services (for testing).
func NewWithServices(logger zerolog.Logger, transmitSvc transmit.Service, resolver Resolver) *Impl {
	return &Impl{
		transmitSvc: transmitSvc,
		resolver:    resolver,
		logger:      logger,
	}
}

// Run wakes every request and returns the results in request order. The
// returned error joins every per-target error. A failed target does not stop
// the others unless cfg.FailFast is set; then the run stops at the first
// failure and later targets get no result. Targets not reached because ctx
// was cancelled get a result carrying ctx's error.
func (s *Impl) Run(ctx context.Context, cfg models.WakeConfig, reqs []models.WakeRequest) ([]models.WakeResult, error) {
	startTime := time.Now()

	s.logger.Info().
		Int("targets", len(reqs)).
		Int("parallel", cfg.Parallel).
		Msg("starting wake run")

	var results []models.WakeResult
	if cfg.Parallel > 1 {
		results = s.runParallel(ctx, cfg, reqs)
	} else {
		results = s.runSequential(ctx, cfg, reqs)
	}

	var errs []error
	sent := 0
	for _, r := range results {
		if r.Error != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Request.HardwareAddr, r.Error))
			continue
		}
		if r.PacketSent {
			sent++
		}
	}

	s.logger.Info().
		Int("sent", sent).
		Int("failed", len(errs)).
		Dur("duration", time.Since(startTime)).
		Msg("wake run completed")

	return results, errors.Join(errs...)
}

func (s *Impl) runSequential(ctx context.Context, cfg models.WakeConfig, reqs []models.WakeRequest) []models.WakeResult {
	results := make([]models.WakeResult, 0, len(reqs))

	for i, req := range reqs {
		if i > 0 && cfg.Wait > 0 {
			if err := sleep(ctx, cfg.Wait); err != nil {
				results = append(results, models.WakeResult{Request: req, Error: err})
				break
			}
		}
		if err := ctx.Err(); err != nil {
			results = append(results, models.WakeResult{Request: req, Error: err})
			break
		}

		result := s.wake(ctx, cfg, req)
		results = append(results, result)
		if result.Error != nil && cfg.FailFast {
			break
		}
	}

	return results
}

func (s *Impl) runParallel(ctx context.Context, cfg models.WakeConfig, reqs []models.WakeRequest) []models.WakeResult {
	results := make([]models.WakeResult, len(reqs))
	attempted := make([]bool, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Parallel)

	for i, req := range reqs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			attempted[i] = true
			results[i] = s.wake(gctx, cfg, req)
			if results[i].Error != nil && cfg.FailFast {
				return results[i].Error
			}
			return nil
		})
	}
	_ = g.Wait()

	// Targets skipped because the caller cancelled the run get a result
	// carrying the cancellation. Targets skipped after a fail-fast stop
	// get none, as in sequential mode.
	cancelErr := ctx.Err()

	out := make([]models.WakeResult, 0, len(reqs))
	for i, r := range results {
		switch {
		case attempted[i]:
			out = append(out, r)
		case cancelErr != nil:
			out = append(out, models.WakeResult{Request: reqs[i], Error: cancelErr})
		}
	}
	return out
}

// wake sends one magic packet. It never returns an error directly; failures
// are recorded in the result.
func (s *Impl) wake(ctx context.Context, cfg models.WakeConfig, req models.WakeRequest) models.WakeResult {
	result := models.WakeResult{Request: req}
	host, port, secureOn := target(cfg, req)

	s.logger.Debug().
		Stringer("mac", req.HardwareAddr).
		Str("host", host).
		Uint16("port", port).
		Bool("secure_on", secureOn != nil).
		Int("line", req.Line).
		Msg("waking target")

	dst, err := s.resolve(ctx, host, port, cfg.PreferIPv6)
	if err != nil {
		result.Error = err
		s.logFailure(req, err)
		return result
	}
	result.Destination = dst

	payload := packet.Build(req.HardwareAddr, secureOn)
	if err := s.transmitSvc.Send(ctx, payload, dst, cfg.SourcePort); err != nil {
		result.Error = fmt.Errorf("send to %s: %w", dst, err)
		s.logFailure(req, result.Error)
		return result
	}
	result.PacketSent = true

	s.logger.Info().
		Stringer("mac", req.HardwareAddr).
		Stringer("destination", dst).
		Msg("magic packet sent")

	return result
}

func (s *Impl) logFailure(req models.WakeRequest, err error) {
	s.logger.Error().
		Err(err).
		Stringer("mac", req.HardwareAddr).
		Int("line", req.Line).
		Msg("failed to wake target")
}

// target merges a request with the run defaults. Request values win.
func target(cfg models.WakeConfig, req models.WakeRequest) (string, uint16, *macaddr.SecureOn) {
	host := req.Host
	if host == "" {
		host = cfg.Host
	}
	if host == "" {
		host = DefaultHost(cfg.PreferIPv6)
	}

	port := req.Port
	if port == 0 {
		port = cfg.Port
	}
	if port == 0 {
		port = transmit.DefaultPort
	}

	secureOn := req.SecureOn
	if secureOn == nil {
		secureOn = cfg.SecureOn
	}

	return host, port, secureOn
}

// DefaultHost returns the destination used when neither the request nor the
// configuration names one.
func DefaultHost(ipv6 bool) string {
	if ipv6 {
		return transmit.LinkLocalAllNodes.String()
	}
	return transmit.LimitedBroadcast.String()
}

// resolve turns host into a UDP destination. Literal addresses are used as
// given. For DNS names the first address is used, or with preferIPv6 the
// first IPv6 address.
func (s *Impl) resolve(ctx context.Context, host string, port uint16, preferIPv6 bool) (*net.UDPAddr, error) {
	if ip := net.ParseIP(host); ip != nil {
		return &net.UDPAddr{IP: ip, Port: int(port)}, nil
	}

	addrs, err := s.resolver.LookupIPAddr(ctx, host)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", host, err)
	}

	for _, addr := range addrs {
		if preferIPv6 && addr.IP.To4() != nil {
			continue
		}
		return &net.UDPAddr{IP: addr.IP, Port: int(port), Zone: addr.Zone}, nil
	}

	return nil, fmt.Errorf("resolve %s: %w", net.JoinHostPort(host, strconv.Itoa(int(port))), ErrNoAddress)
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
