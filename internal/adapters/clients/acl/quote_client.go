package acl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/jsamuelsen/quote-keeper/internal/adapters/clients"
	"github.com/jsamuelsen/quote-keeper/internal/domain"
	"github.com/jsamuelsen/quote-keeper/internal/platform/logging"
)

const (
	// RemoteCategory is assigned to every quote that comes from the remote.
	RemoteCategory = "Server"

	// pushUserID is the fixed owner sent with pushed quotes.
	pushUserID = 1
)

// QuoteClientConfig contains configuration for the quote client.
type QuoteClientConfig struct {
	// Client is the HTTP client. Its BaseURL points at the remote host.
	Client *clients.Client

	// Path is the collection path on the remote, e.g. "/posts".
	Path string

	// Logger is the structured logger.
	Logger *slog.Logger
}

// QuoteClient reads and writes the remote posts collection as quotes.
// It implements ports.RemoteQuoteSource and ports.HealthChecker.
type QuoteClient struct {
	BaseAdapter
	path   string
	logger *slog.Logger
}

// NewQuoteClient panics if Client is nil.
func NewQuoteClient(cfg QuoteClientConfig) *QuoteClient {
	if cfg.Client == nil {
		panic("QuoteClient: Client is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	path := cfg.Path
	if path == "" {
		path = "/posts"
	}

	return &QuoteClient{
		BaseAdapter: NewBaseAdapter(cfg.Client, cfg.Client.ServiceName()),
		path:        path,
		logger:      logger,
	}
}

// post is the remote DTO.
type post struct {
	ID     int    `json:"id"`
	UserID int    `json:"userId"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

// newPost is the body sent when pushing a local quote.
type newPost struct {
	Title   string `json:"title"`
	Body    string `json:"body"`
	UserID  int    `json:"userId"`
	LocalID string `json:"localId"`
}

// FetchQuotes returns at most limit remote quotes. A non-positive limit
// fetches whatever the remote returns. Posts that cannot be translated are
// skipped with a warning. Failures are returned as *domain.RemoteFetchError.
func (c *QuoteClient) FetchQuotes(ctx context.Context, limit int) ([]domain.Quote, error) {
	var query url.Values
	if limit > 0 {
		query = url.Values{"limit": {strconv.Itoa(limit)}}
	}

	c.logger.Log(ctx, logging.LevelTrace, "fetching remote quotes",
		slog.String("path", c.path),
		slog.Int("limit", limit))

	body, err := c.Get(ctx, c.path, query, "fetch quotes")
	if err != nil {
		return nil, domain.NewRemoteFetchError(err)
	}

	posts, err := DecodeResponse[[]post](body)
	if err != nil {
		return nil, domain.NewRemoteFetchError(
			domain.NewUnavailableError(c.ServiceName(), err.Error()))
	}

	page := *posts
	if limit > 0 && len(page) > limit {
		page = page[:limit]
	}

	quotes, err := TranslateSlice(page, translatePost)
	if err != nil {
		c.logger.WarnContext(ctx, "skipped untranslatable remote posts",
			slog.Int("skipped", len(page)-len(quotes)),
			slog.Any("error", err))
	}

	c.logger.DebugContext(ctx, "fetched remote quotes", slog.Int("count", len(quotes)))

	return quotes, nil
}

// PushQuote creates q on the remote. The response body is discarded.
// Failures are returned as *domain.RemotePushError.
func (c *QuoteClient) PushQuote(ctx context.Context, q domain.Quote) error {
	payload, err := json.Marshal(newPost{
		Title:   q.Text,
		Body:    q.Category,
		UserID:  pushUserID,
		LocalID: q.ID,
	})
	if err != nil {
		return domain.NewRemotePushError(q.ID, err)
	}

	body, err := c.Post(ctx, c.path, bytes.NewReader(payload), "push quote")
	if err != nil {
		return domain.NewRemotePushError(q.ID, err)
	}

	_, _ = io.Copy(io.Discard, body)
	_ = body.Close()

	c.logger.DebugContext(ctx, "pushed quote", slog.String("quote_id", q.ID))

	return nil
}

// Name implements ports.HealthChecker.
func (c *QuoteClient) Name() string {
	return c.ServiceName()
}

// Check implements ports.HealthChecker by fetching a single post.
func (c *QuoteClient) Check(ctx context.Context) error {
	if state := c.Client().CircuitState(); state == clients.StateOpen {
		return domain.NewUnavailableError(c.ServiceName(), "circuit breaker "+state.String())
	}

	body, err := c.Get(ctx, c.path, url.Values{"limit": {"1"}}, "health check")
	if err != nil {
		return err
	}

	_, _ = io.Copy(io.Discard, body)

	return body.Close()
}

func translatePost(p *post) (domain.Quote, error) {
	if err := ValidatePositive(p.ID, "id"); err != nil {
		return domain.Quote{}, err
	}

	text := strings.TrimSpace(p.Title)
	if err := ValidateRequired(text, "title"); err != nil {
		return domain.Quote{}, err
	}

	author := domain.UnknownAuthor
	if p.UserID > 0 {
		author = fmt.Sprintf("User %d", p.UserID)
	}

	return domain.Quote{
		ID:       domain.RemoteIDPrefix + strconv.Itoa(p.ID),
		Text:     text,
		Category: RemoteCategory,
		Author:   author,
	}, nil
}
