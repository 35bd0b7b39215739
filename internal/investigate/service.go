// Package investigate coordinates one identifier investigation: cheap
// local checks run synchronously, expensive network and process checks
// fan out concurrently under one overall deadline, and partial results
// merge into a single immutable report. An investigation never returns
// an error past its boundary; it degrades.
package investigate

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	bberrors "github.com/blackeagle-id/blackeagle/internal/errors"
	"github.com/blackeagle-id/blackeagle/internal/metrics"
	"github.com/blackeagle-id/blackeagle/internal/models"
	"github.com/blackeagle-id/blackeagle/internal/probe"
)

const defaultOverallTimeout = 300 * time.Second

// DNSChecker answers whether a domain can receive mail.
type DNSChecker interface {
	HasMX(ctx context.Context, domain string) bool
}

// PresenceScanner runs the external presence-scanning tool.
type PresenceScanner interface {
	CheckEmail(ctx context.Context, email string) []models.PresenceResult
	CheckUsername(ctx context.Context, username string) []models.PresenceResult
}

// MessagingProber checks messaging-platform deep links.
type MessagingProber interface {
	CheckWhatsApp(ctx context.Context, e164 string) probe.Result
	CheckTelegram(ctx context.Context, e164 string) probe.Result
}

// ReputationLookup classifies email domains.
type ReputationLookup interface {
	IsDisposable(domain string) bool
	IsFreeProvider(domain string) bool
}

// PhoneParser normalizes and parses phone numbers.
type PhoneParser interface {
	Parse(raw string) (*models.NormalizedPhone, bool)
}

// Dependencies are the collaborators a Service is built from. All are
// required except Timeout.
type Dependencies struct {
	DNS        DNSChecker
	Scanner    PresenceScanner
	Prober     MessagingProber
	Reputation ReputationLookup
	Phones     PhoneParser

	// OverallTimeout bounds the concurrent fan-out of one investigation.
	OverallTimeout time.Duration
}

// Service runs investigations. It holds no per-investigation state;
// concurrent investigations are fully independent.
type Service struct {
	dns        DNSChecker
	scanner    PresenceScanner
	prober     MessagingProber
	reputation ReputationLookup
	phones     PhoneParser

	overallTimeout time.Duration
}

// New wires a Service from explicit dependencies.
func New(deps Dependencies) (*Service, error) {
	switch {
	case deps.DNS == nil:
		return nil, bberrors.New(bberrors.ErrorTypeConfiguration, "init_coordinator", "dns", bberrors.ErrInvalidInput)
	case deps.Scanner == nil:
		return nil, bberrors.New(bberrors.ErrorTypeConfiguration, "init_coordinator", "scanner", bberrors.ErrInvalidInput)
	case deps.Prober == nil:
		return nil, bberrors.New(bberrors.ErrorTypeConfiguration, "init_coordinator", "prober", bberrors.ErrInvalidInput)
	case deps.Reputation == nil:
		return nil, bberrors.New(bberrors.ErrorTypeConfiguration, "init_coordinator", "reputation", bberrors.ErrInvalidInput)
	case deps.Phones == nil:
		return nil, bberrors.New(bberrors.ErrorTypeConfiguration, "init_coordinator", "phones", bberrors.ErrInvalidInput)
	}

	timeout := deps.OverallTimeout
	if timeout <= 0 {
		timeout = defaultOverallTimeout
	}
	return &Service{
		dns:            deps.DNS,
		scanner:        deps.Scanner,
		prober:         deps.Prober,
		reputation:     deps.Reputation,
		phones:         deps.Phones,
		overallTimeout: timeout,
	}, nil
}

// Report is the union of the two report kinds; exactly one field is
// set, matching the target type investigated.
type Report struct {
	Email *models.EmailReport `json:"email,omitempty"`
	Phone *models.PhoneReport `json:"phone,omitempty"`
}

// Investigate dispatches on the target type.
func (s *Service) Investigate(ctx context.Context, target models.Target) Report {
	switch target.Type {
	case models.TargetPhone:
		return Report{Phone: s.InvestigatePhone(ctx, target.Value)}
	default:
		return Report{Email: s.InvestigateEmail(ctx, target.Value)}
	}
}

func newInvestigationID() string {
	return ulid.Make().String()
}

// branch runs one concurrent check, converting any panic into the
// branch's zero result so a failing branch never aborts its siblings.
func branch(g *errgroup.Group, name string, fn func()) {
	g.Go(func() error {
		defer func() {
			if r := recover(); r != nil {
				metrics.BranchFailures.WithLabelValues(name).Inc()
				log.Error().
					Interface("panic", r).
					Str("branch", name).
					Msg("Check branch failed; treating its result as empty")
			}
		}()
		fn()
		return nil
	})
}

// dedupe removes presence results sharing a profile URL. The first
// occurrence wins and discovery order is preserved.
func dedupe(results []models.PresenceResult) []models.PresenceResult {
	seen := make(map[string]struct{}, len(results))
	unique := make([]models.PresenceResult, 0, len(results))
	for _, r := range results {
		if _, ok := seen[r.URL]; ok {
			continue
		}
		seen[r.URL] = struct{}{}
		unique = append(unique, r)
	}
	return unique
}

func observe(targetType models.TargetType, outcome string, start time.Time) {
	metrics.InvestigationsTotal.WithLabelValues(string(targetType), outcome).Inc()
	metrics.InvestigationDuration.WithLabelValues(string(targetType)).Observe(time.Since(start).Seconds())
}
