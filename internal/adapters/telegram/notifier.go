// Package telegram delivers signals and heartbeat reports through the
// Telegram Bot API.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
	"time"

	"smcSignalBot/internal/domain"
	"smcSignalBot/internal/ports"
	"smcSignalBot/internal/retry"
)

const defaultBaseURL = "https://api.telegram.org"

// Config holds the Telegram notifier settings.
type Config struct {
	BotToken string
	ChatID   string
	// BaseURL overrides the Bot API host, mainly for tests.
	BaseURL    string
	HTTPClient *http.Client
	Retry      retry.Policy
	Logger     ports.Logger
}

// Notifier implements ports.Notifier and ports.StatusNotifier.
type Notifier struct {
	token   string
	chatID  string
	baseURL string
	client  *http.Client
	retry   retry.Policy
	logger  ports.Logger
}

// New creates a Telegram notifier.
func New(cfg Config) (*Notifier, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for Telegram notifier")
	}
	if cfg.BotToken == "" || cfg.ChatID == "" {
		return nil, fmt.Errorf("%w: telegram bot token and chat id are required", ports.ErrConfigurationError)
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = retry.DefaultPolicy()
	}
	if err := cfg.Retry.Validate(); err != nil {
		return nil, err
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Notifier{
		token:   cfg.BotToken,
		chatID:  cfg.ChatID,
		baseURL: baseURL,
		client:  client,
		retry:   cfg.Retry,
		logger:  cfg.Logger,
	}, nil
}

// Name identifies the sink in logs.
func (n *Notifier) Name() string {
	return "telegram"
}

// Notify sends a formatted BUY alert. WAIT signals are ignored.
func (n *Notifier) Notify(ctx context.Context, sig *domain.Signal) error {
	if sig == nil || !sig.IsBuy() {
		return nil
	}
	return n.send(ctx, "Notify", FormatSignal(sig))
}

// NotifyStatus sends a heartbeat report.
func (n *Notifier) NotifyStatus(ctx context.Context, status domain.Status) error {
	return n.send(ctx, "NotifyStatus", FormatStatus(status))
}

type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

func (n *Notifier) send(ctx context.Context, op, text string) error {
	body, err := json.Marshal(sendMessageRequest{ChatID: n.chatID, Text: text, ParseMode: "HTML", DisableWebPagePreview: true})
	if err != nil {
		return fmt.Errorf("%s failed to marshal telegram payload: %w", op, err)
	}
	url := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.token)

	err = n.retry.DoNotify(ctx, func(ctx context.Context) error {
		return n.post(ctx, url, body)
	}, func(attempt int, err error, delay time.Duration) {
		n.logger.Warn(ctx, op+": telegram delivery failed, retrying...", map[string]interface{}{"attempt": attempt, "delay": delay.String(), "error": err.Error()})
	})
	if err != nil {
		return fmt.Errorf("%s failed: %w: %w", op, ports.ErrDeliveryFailed, err)
	}
	n.logger.Debug(ctx, op+": telegram message sent")
	return nil
}

func (n *Notifier) post(ctx context.Context, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return retry.Permanent(fmt.Errorf("failed to build telegram request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	var apiResp apiResponse
	_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&apiResp)
	desc := apiResp.Description
	if desc == "" {
		desc = http.StatusText(resp.StatusCode)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("telegram API returned status %d: %w: %s", resp.StatusCode, ports.ErrAuthenticationFailed, desc)
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("telegram API returned status %d: %w: %s", resp.StatusCode, ports.ErrRateLimited, desc)
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return fmt.Errorf("telegram API returned status %d: %w: %s", resp.StatusCode, ports.ErrInvalidRequest, desc)
	default:
		return fmt.Errorf("telegram API returned status %d: %s", resp.StatusCode, desc)
	}
}

func tierEmoji(t domain.Tier) string {
	switch t {
	case domain.TierExtreme:
		return "💀"
	case domain.TierHigh:
		return "⚡"
	default:
		return "🎯"
	}
}

// FormatSignal renders a BUY signal as a Telegram HTML message.
func FormatSignal(sig *domain.Signal) string {
	var sb strings.Builder
	symbolTag := strings.ReplaceAll(sig.Symbol, "/", "")

	fmt.Fprintf(&sb, "%s <b>#%s</b> | 🟢 BUY @ %.4f\n\n", tierEmoji(sig.Tier), html.EscapeString(symbolTag), sig.Entry)
	setup := "📊"
	if sig.Structure == domain.StructureBullishCHoCH {
		setup = "🔥"
	}
	fmt.Fprintf(&sb, "%s <b>Setup:</b> %s | %s %s\n", setup, strings.ReplaceAll(string(sig.Structure), "_", " "), html.EscapeString(sig.Profile), html.EscapeString(sig.Timeframe))

	pct := 0.0
	if sig.MaxScore > 0 {
		pct = sig.TotalScore / sig.MaxScore * 100
	}
	fmt.Fprintf(&sb, "📊 <b>Score:</b> %.0f/%.0f (%.1f%%)\n", sig.TotalScore, sig.MaxScore, pct)

	var hits []string
	for _, c := range sig.Breakdown.Components() {
		if sig.Breakdown[c].Points > 0 {
			hits = append(hits, fmt.Sprintf("%s %.0f", strings.ReplaceAll(string(c), "_", " "), sig.Breakdown[c].Points))
		}
	}
	if len(hits) > 0 {
		sb.WriteString(strings.Join(hits, " • "))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	for i, t := range sig.Targets {
		fmt.Fprintf(&sb, "🎯 <b>T%d:</b> %.4f (+%.1f%%)\n", i+1, t, (t/sig.Entry-1)*100)
	}
	if sig.StopLoss > 0 {
		risk := sig.Entry - sig.StopLoss
		rr := 0.0
		if risk > 0 && len(sig.Targets) > 0 {
			rr = (sig.Targets[0] - sig.Entry) / risk
		}
		fmt.Fprintf(&sb, "🛡️ <b>SL:</b> %.4f (-%.1f%%) | R:R %.1f:1\n", sig.StopLoss, (1-sig.StopLoss/sig.Entry)*100, rr)
	}
	fmt.Fprintf(&sb, "\n<i>%s confidence</i>", sig.Tier)
	return sb.String()
}

// FormatStatus renders a heartbeat report.
func FormatStatus(s domain.Status) string {
	var sb strings.Builder
	sb.WriteString("💓 <b>Scanner status</b>\n\n")
	fmt.Fprintf(&sb, "⏱ Uptime: %s\n", s.Uptime.Truncate(time.Second))
	fmt.Fprintf(&sb, "🔁 Cycles: %d\n", s.Cycles)
	fmt.Fprintf(&sb, "🔎 Instruments analyzed: %d\n", s.InstrumentsSeen)
	fmt.Fprintf(&sb, "📨 Signals: %d sent, %d deduplicated\n", s.SignalsEmitted, s.SignalsDeduped)
	if !s.LastCycleAt.IsZero() {
		fmt.Fprintf(&sb, "🕒 Last cycle: %s (%s)", s.LastCycleAt.UTC().Format(time.RFC3339), s.LastCycleElapsed.Truncate(time.Millisecond))
	}
	return sb.String()
}
