package investigate

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/blackeagle-id/blackeagle/internal/logging"
	"github.com/blackeagle-id/blackeagle/internal/models"
	"github.com/blackeagle-id/blackeagle/internal/probe"
)

// InvestigatePhone produces the intelligence report for a phone number.
// An unparseable number yields a negative report without network
// access; messaging probes are gated on the number being valid and run
// concurrently, one platform per branch.
func (s *Service) InvestigatePhone(ctx context.Context, phone string) *models.PhoneReport {
	start := time.Now()
	report := &models.PhoneReport{
		ID:       newInvestigationID(),
		Phone:    phone,
		LineType: models.LineTypeUnknown,
	}
	ctx, _ = logging.WithInvestigationID(ctx, report.ID)
	logger := log.With().Str("investigation_id", report.ID).Str("phone", phone).Logger()

	number, ok := s.phones.Parse(phone)
	if !ok {
		logger.Info().Msg("Phone number unparseable; skipping all network checks")
		report.CompletedAt = time.Now()
		observe(models.TargetPhone, "invalid", start)
		return report
	}

	report.Formatted = number.E164
	report.International = number.International
	report.NationalNumber = number.NationalNumber
	report.CountryCode = number.CountryCode
	report.CountryName = number.CountryName
	report.Region = number.Region
	report.Timezone = number.Timezone
	report.Carrier = number.Carrier
	report.LineType = number.LineType
	report.Valid = number.Valid
	report.Possible = number.Possible

	if report.Valid {
		fanCtx, cancel := context.WithTimeout(ctx, s.overallTimeout)
		defer cancel()

		var whatsapp, telegram probe.Result
		g, gctx := errgroup.WithContext(fanCtx)
		branch(g, "whatsapp", func() {
			whatsapp = s.prober.CheckWhatsApp(gctx, number.E164)
		})
		branch(g, "telegram", func() {
			telegram = s.prober.CheckTelegram(gctx, number.E164)
		})
		g.Wait() //nolint:errcheck // branches never return errors

		report.WhatsApp = whatsapp.Exists
		report.Telegram = telegram.Exists

		// A Telegram profile is the more likely of the two to be
		// public, so its name and avatar take precedence.
		if telegram.DisplayName != "" && telegram.DisplayName != "Telegram" {
			report.Name = telegram.DisplayName
		}
		if telegram.AvatarURL != "" {
			report.ProfileImage = telegram.AvatarURL
		}
		if report.Name == "" && whatsapp.DisplayName != "" {
			report.Name = whatsapp.DisplayName
		}
	}

	report.CompletedAt = time.Now()
	outcome := "degraded"
	if report.Valid {
		outcome = "valid"
	}
	observe(models.TargetPhone, outcome, start)

	logger.Info().
		Bool("valid", report.Valid).
		Bool("whatsapp", report.WhatsApp).
		Bool("telegram", report.Telegram).
		Dur("elapsed", time.Since(start)).
		Msg("Phone investigation complete")
	return report
}
