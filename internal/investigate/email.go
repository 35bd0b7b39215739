package investigate

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/blackeagle-id/blackeagle/internal/logging"
	"github.com/blackeagle-id/blackeagle/internal/models"
	"github.com/blackeagle-id/blackeagle/internal/validate"
)

// InvestigateEmail produces the intelligence report for an email
// address. Structurally invalid input short-circuits with a
// negative-flags report before any network access. The MX check and the
// two scanner sub-queries (by full address and by local part) run
// concurrently; their failures degrade to false/empty.
func (s *Service) InvestigateEmail(ctx context.Context, email string) *models.EmailReport {
	start := time.Now()
	report := &models.EmailReport{
		ID:             newInvestigationID(),
		Email:          email,
		Breaches:       []models.BreachInfo{},
		SocialProfiles: []models.PresenceResult{},
	}
	ctx, _ = logging.WithInvestigationID(ctx, report.ID)
	logger := log.With().Str("investigation_id", report.ID).Str("email", email).Logger()

	parts, ok := validate.ValidateEmail(email)
	if !ok {
		logger.Info().Msg("Email failed format validation; skipping all network checks")
		report.CompletedAt = time.Now()
		observe(models.TargetEmail, "invalid", start)
		return report
	}
	report.FormatValid = true
	report.Disposable = s.reputation.IsDisposable(parts.Domain)
	report.FreeProvider = s.reputation.IsFreeProvider(parts.Domain)

	fanCtx, cancel := context.WithTimeout(ctx, s.overallTimeout)
	defer cancel()

	var (
		mxValid      bool
		emailHits    []models.PresenceResult
		usernameHits []models.PresenceResult
	)

	g, gctx := errgroup.WithContext(fanCtx)
	branch(g, "mx", func() {
		mxValid = s.dns.HasMX(gctx, parts.Domain)
	})
	branch(g, "scanner_email", func() {
		emailHits = s.scanner.CheckEmail(gctx, email)
	})
	branch(g, "scanner_username", func() {
		usernameHits = s.scanner.CheckUsername(gctx, parts.LocalPart)
	})
	g.Wait() //nolint:errcheck // branches never return errors

	report.MXValid = mxValid
	report.Valid = report.FormatValid && report.MXValid
	report.Deliverable = report.Valid && !report.Disposable

	// The by-email and by-username scans are pooled before dedup so a
	// profile found by both appears once, in discovery order.
	merged := dedupe(append(emailHits, usernameHits...))
	for i := range merged {
		merged[i].Username = parts.LocalPart
	}
	report.SocialProfiles = merged
	for _, profile := range merged {
		if profile.Exists {
			report.SocialCount++
		}
	}

	s.recoverGravatar(report, merged)

	report.CompletedAt = time.Now()
	outcome := "degraded"
	if report.Valid {
		outcome = "valid"
	}
	observe(models.TargetEmail, outcome, start)

	logger.Info().
		Bool("valid", report.Valid).
		Bool("deliverable", report.Deliverable).
		Int("social_count", report.SocialCount).
		Dur("elapsed", time.Since(start)).
		Msg("Email investigation complete")
	return report
}

// recoverGravatar populates the report's Gravatar fields from a scanner
// hit so downstream consumers keep working without a dedicated lookup.
func (s *Service) recoverGravatar(report *models.EmailReport, profiles []models.PresenceResult) {
	for _, profile := range profiles {
		if !profile.Exists || !strings.EqualFold(profile.Platform, "gravatar") {
			continue
		}
		sum := md5.Sum([]byte(strings.ToLower(report.Email)))
		report.GravatarURL = profile.URL
		report.Gravatar = &models.GravatarProfile{
			URL:        profile.URL,
			Hash:       hex.EncodeToString(sum[:]),
			ProfileURL: profile.URL,
		}
		return
	}
}
