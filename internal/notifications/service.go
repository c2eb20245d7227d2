package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"vidscribe/internal/config"
)

const userAgent = "vidscribe/0.1.0"

// RunReport summarizes one scheduled channel run.
type RunReport struct {
	Channel   string
	Processed int
	Failed    int
	Matches   int
	// MatchedTitles lists videos with at least one keyword match.
	MatchedTitles []string
	Duration      time.Duration
}

// Service defines the notification surface used by the watch command.
type Service interface {
	NotifyRunCompleted(ctx context.Context, report RunReport) error
	NotifyError(ctx context.Context, err error, context string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Watch.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Watch.NtfyRequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

// NotifyRunCompleted stays quiet for runs that found nothing new.
func (n *ntfyService) NotifyRunCompleted(ctx context.Context, report RunReport) error {
	if report.Processed == 0 && report.Failed == 0 {
		return nil
	}
	channel := strings.TrimSpace(report.Channel)
	if channel == "" {
		channel = "channel"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d transcribed", channel, report.Processed)
	if report.Failed > 0 {
		fmt.Fprintf(&b, ", %d failed", report.Failed)
	}
	fmt.Fprintf(&b, " in %s", formatDuration(report.Duration))
	if report.Matches > 0 {
		fmt.Fprintf(&b, "\n%d keyword match(es)", report.Matches)
		for _, title := range report.MatchedTitles {
			if title = strings.TrimSpace(title); title != "" {
				b.WriteString("\n- ")
				b.WriteString(title)
			}
		}
	}

	data := payload{
		title:   "vidscribe - New Transcripts",
		message: b.String(),
		tags:    []string{"vidscribe", "watch", "completed"},
	}
	switch {
	case report.Matches > 0:
		data.title = "vidscribe - Keyword Matches"
		data.tags = []string{"vidscribe", "watch", "match"}
		data.priority = "high"
	case report.Failed > 0:
		data.title = "vidscribe - Run Complete (with errors)"
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "vidscribe - Error",
		message:  builder.String(),
		tags:     []string{"vidscribe", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "vidscribe - Test",
		message:  "Notification system test",
		tags:     []string{"vidscribe", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	if d <= 0 {
		return "0s"
	}
	return d.String()
}

type noopService struct{}

func (noopService) NotifyRunCompleted(context.Context, RunReport) error { return nil }
func (noopService) NotifyError(context.Context, error, string) error    { return nil }
func (noopService) TestNotification(context.Context) error              { return nil }
