package youtube

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"

	"vidscribe/internal/selection"
	"vidscribe/internal/services"
	"vidscribe/internal/services/ytdlp"
)

// pageSize is the API maximum for list calls.
const pageSize = 50

// api is the subset of the Data API the catalog needs.
type api interface {
	channel(ctx context.Context, ref channelRef) (*yt.Channel, error)
	playlistPage(ctx context.Context, playlistID, pageToken string) (*yt.PlaylistItemListResponse, error)
	videos(ctx context.Context, ids []string) ([]*yt.Video, error)
}

// Config captures Data API settings.
type Config struct {
	APIKey string
	// Limit caps the number of recent uploads inspected.
	Limit int
	// RequestsPerSecond paces API calls; zero uses 5.
	RequestsPerSecond float64
}

// Client lists channel uploads.
type Client struct {
	cfg     Config
	api     api
	limiter *rate.Limiter
}

// New creates a Data API client authenticated with an API key.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "catalog", "youtube api", "api key not configured (set YOUTUBE_API_KEY)", nil)
	}
	svc, err := yt.NewService(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "catalog", "youtube api", "create service", err)
	}
	return newClient(cfg, &serviceAPI{svc: svc}), nil
}

func newClient(cfg Config, backend api) *Client {
	if cfg.Limit <= 0 {
		cfg.Limit = ytdlp.DefaultPlaylistEnd
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		cfg:     cfg,
		api:     backend,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// ListChannel returns channel metadata and its most recent uploads, newest
// first as reported by the uploads playlist.
func (c *Client) ListChannel(ctx context.Context, ref string) (ytdlp.Channel, error) {
	parsed, err := parseChannelRef(ref)
	if err != nil {
		return ytdlp.Channel{}, services.Wrap(services.ErrValidation, "catalog", "youtube api", "", err)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return ytdlp.Channel{}, err
	}
	channel, err := c.api.channel(ctx, parsed)
	if err != nil {
		return ytdlp.Channel{}, services.Wrap(services.ErrExternalTool, "catalog", "youtube api", "channels.list", err)
	}
	if channel == nil || channel.ContentDetails == nil || channel.ContentDetails.RelatedPlaylists == nil {
		return ytdlp.Channel{}, services.Wrap(services.ErrNotFound, "catalog", "youtube api", "channel not found: "+ref, nil)
	}

	out := ytdlp.Channel{URL: ytdlp.NormalizeChannelURL(ref)}
	if channel.Snippet != nil {
		out.Title = channel.Snippet.Title
		out.Uploader = channel.Snippet.Title
		out.Description = channel.Snippet.Description
	}

	ids, err := c.uploadIDs(ctx, channel.ContentDetails.RelatedPlaylists.Uploads)
	if err != nil {
		return ytdlp.Channel{}, err
	}
	for start := 0; start < len(ids); start += pageSize {
		end := min(start+pageSize, len(ids))
		if err := c.limiter.Wait(ctx); err != nil {
			return ytdlp.Channel{}, err
		}
		videos, err := c.api.videos(ctx, ids[start:end])
		if err != nil {
			return ytdlp.Channel{}, services.Wrap(services.ErrExternalTool, "catalog", "youtube api", "videos.list", err)
		}
		for _, v := range videos {
			out.Entries = append(out.Entries, candidateFromVideo(v, out.Uploader))
		}
	}
	return out, nil
}

func (c *Client) uploadIDs(ctx context.Context, playlistID string) ([]string, error) {
	var ids []string
	token := ""
	for len(ids) < c.cfg.Limit {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		page, err := c.api.playlistPage(ctx, playlistID, token)
		if err != nil {
			return nil, services.Wrap(services.ErrExternalTool, "catalog", "youtube api", "playlistItems.list", err)
		}
		for _, item := range page.Items {
			if item.ContentDetails == nil || item.ContentDetails.VideoId == "" {
				continue
			}
			ids = append(ids, item.ContentDetails.VideoId)
			if len(ids) == c.cfg.Limit {
				break
			}
		}
		if page.NextPageToken == "" {
			break
		}
		token = page.NextPageToken
	}
	return ids, nil
}

func candidateFromVideo(v *yt.Video, uploader string) selection.Candidate {
	c := selection.Candidate{
		ID:       v.Id,
		URL:      ytdlp.VideoURL(v.Id),
		Uploader: uploader,
	}
	if v.Snippet != nil {
		c.Title = v.Snippet.Title
		if v.Snippet.ChannelTitle != "" {
			c.Uploader = v.Snippet.ChannelTitle
		}
		if published, err := time.Parse(time.RFC3339, v.Snippet.PublishedAt); err == nil {
			c.UploadDate = published.UTC().Format("20060102")
		}
		c.IsLive = v.Snippet.LiveBroadcastContent == "live"
	}
	if v.ContentDetails != nil {
		if seconds, ok := parseDuration(v.ContentDetails.Duration); ok {
			c.Duration = &seconds
		}
	}
	if d := v.LiveStreamingDetails; d != nil && d.ActualStartTime != "" && d.ActualEndTime != "" {
		c.WasLive = true
	}
	return c
}

type channelRef struct {
	id       string
	handle   string
	username string
}

// parseChannelRef accepts @handles, channel ids, bare names, and channel URLs.
func parseChannelRef(ref string) (channelRef, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return channelRef{}, fmt.Errorf("channel reference required")
	}
	if !strings.HasPrefix(ref, "http://") && !strings.HasPrefix(ref, "https://") {
		switch {
		case strings.HasPrefix(ref, "@"):
			return channelRef{handle: ref}, nil
		case strings.HasPrefix(ref, "UC") && len(ref) == 24:
			return channelRef{id: ref}, nil
		default:
			return channelRef{username: ref}, nil
		}
	}
	u, err := url.Parse(ref)
	if err != nil {
		return channelRef{}, fmt.Errorf("parse channel url: %w", err)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	switch {
	case len(parts) >= 1 && strings.HasPrefix(parts[0], "@"):
		return channelRef{handle: parts[0]}, nil
	case len(parts) >= 2 && parts[0] == "channel":
		return channelRef{id: parts[1]}, nil
	case len(parts) >= 2 && (parts[0] == "c" || parts[0] == "user"):
		return channelRef{username: parts[1]}, nil
	}
	return channelRef{}, fmt.Errorf("unrecognized channel url %q", ref)
}

type serviceAPI struct {
	svc *yt.Service
}

func (s *serviceAPI) channel(ctx context.Context, ref channelRef) (*yt.Channel, error) {
	call := s.svc.Channels.List([]string{"snippet", "contentDetails"}).Context(ctx)
	switch {
	case ref.id != "":
		call = call.Id(ref.id)
	case ref.handle != "":
		call = call.ForHandle(ref.handle)
	default:
		call = call.ForUsername(ref.username)
	}
	resp, err := call.Do()
	if err != nil {
		return nil, err
	}
	if len(resp.Items) == 0 {
		return nil, nil
	}
	return resp.Items[0], nil
}

func (s *serviceAPI) playlistPage(ctx context.Context, playlistID, pageToken string) (*yt.PlaylistItemListResponse, error) {
	call := s.svc.PlaylistItems.List([]string{"contentDetails"}).
		PlaylistId(playlistID).
		MaxResults(pageSize).
		Context(ctx)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}
	return call.Do()
}

func (s *serviceAPI) videos(ctx context.Context, ids []string) ([]*yt.Video, error) {
	resp, err := s.svc.Videos.List([]string{"snippet", "contentDetails", "liveStreamingDetails"}).
		Id(strings.Join(ids, ",")).
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	return resp.Items, nil
}
