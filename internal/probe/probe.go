// Package probe checks messaging-platform presence for a phone number
// by resolving each platform's public deep-link URL. A 200 response
// means "account likely exists"; any other status or failure means "no
// / unknown", never an error. Platforms are independent: one failing
// probe does not affect the others.
package probe

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/blackeagle-id/blackeagle/internal/metrics"
)

const (
	defaultTimeout = 3 * time.Second

	// Deep-link pages are small; anything larger is not worth scraping.
	maxBodyBytes = 1 << 20
)

// Result is the outcome of one platform probe.
type Result struct {
	Platform    string `json:"platform"`
	Exists      bool   `json:"exists"`
	DisplayName string `json:"display_name,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

// Options configures a Prober.
type Options struct {
	Timeout       time.Duration
	UserAgent     string
	WhatsAppHost  string // host, or a full base URL for tests
	TelegramHost  string
	RatePerSecond float64
	Burst         int
}

// Prober issues anonymous deep-link requests with a browser-like
// identification header.
type Prober struct {
	client       *http.Client
	userAgent    string
	whatsappBase string
	telegramBase string
	limiter      *rate.Limiter
}

// New builds a prober. Redirects are followed; DNS answers are served
// from the shared cached resolver to keep repeated probes cheap.
func New(opts Options) *Prober {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	limit := rate.Limit(opts.RatePerSecond)
	if opts.RatePerSecond <= 0 {
		limit = rate.Inf
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = 1
	}

	return &Prober{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext:     DialContextWithCache,
				MaxIdleConns:    10,
				MaxConnsPerHost: 4,
			},
		},
		userAgent:    opts.UserAgent,
		whatsappBase: baseURL(opts.WhatsAppHost),
		telegramBase: baseURL(opts.TelegramHost),
		limiter:      rate.NewLimiter(limit, burst),
	}
}

// CheckWhatsApp probes the wa.me deep link for an E.164 number. The
// public page carries no usable profile markup, so only existence is
// reported.
func (p *Prober) CheckWhatsApp(ctx context.Context, e164 string) Result {
	result := Result{Platform: "whatsapp"}
	status, _, err := p.get(ctx, p.whatsappBase+"/"+strings.TrimPrefix(e164, "+"))
	if err == nil && status == http.StatusOK {
		result.Exists = true
	}
	metrics.ProbeHits.WithLabelValues(result.Platform, strconv.FormatBool(result.Exists)).Inc()
	return result
}

// CheckTelegram probes the t.me deep link for an E.164 number and
// opportunistically scrapes a display name and avatar from the page.
func (p *Prober) CheckTelegram(ctx context.Context, e164 string) Result {
	result := Result{Platform: "telegram"}
	status, body, err := p.get(ctx, p.telegramBase+"/+"+strings.TrimPrefix(e164, "+"))
	if err == nil && status == http.StatusOK {
		result.Exists = true
		result.DisplayName = extractTelegramName(body)
		result.AvatarURL = extractTelegramAvatar(body)
	}
	metrics.ProbeHits.WithLabelValues(result.Platform, strconv.FormatBool(result.Exists)).Inc()
	return result
}

func (p *Prober) get(ctx context.Context, url string) (int, string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return 0, "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, "", err
	}
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		log.Debug().Err(err).Str("url", url).Msg("Probe request failed")
		return 0, "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return resp.StatusCode, "", err
	}
	return resp.StatusCode, string(body), nil
}

func baseURL(host string) string {
	if strings.Contains(host, "://") {
		return strings.TrimSuffix(host, "/")
	}
	return "https://" + host
}
