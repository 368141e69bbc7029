package logsink

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"wallet_connector/internal/app/port"
	"wallet_connector/internal/domain/entity"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type ingestRequest struct {
	Lines []entity.LogLine `json:"lines"`
}

// client posts log lines to an ingest endpoint.
type client struct {
	client   *fasthttp.Client
	baseURL  string
	apiKey   string
	hostname string
	timeout  time.Duration
	logger   *zap.Logger
}

// NewClient creates a log sink posting to {baseURL}/logs/ingest.
// It logs through zap directly so its own failures never re-enter the sink.
func NewClient(baseURL, apiKey, hostname string, timeout time.Duration, logger *zap.Logger) port.LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &client{
		client:   &fasthttp.Client{},
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiKey:   apiKey,
		hostname: hostname,
		timeout:  timeout,
		logger:   logger.Named("LogSink"),
	}
}

// Ship implements port.LogSink.
func (c *client) Ship(lines []entity.LogLine) error {
	if len(lines) == 0 {
		return nil
	}
	body, err := json.Marshal(ingestRequest{Lines: lines})
	if err != nil {
		return fmt.Errorf("failed to marshal log lines: %w", err)
	}

	requestURL := fmt.Sprintf("%s/logs/ingest?hostname=%s", c.baseURL, url.QueryEscape(c.hostname))

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json; charset=UTF-8")
	req.Header.Set("apiKey", c.apiKey)
	req.SetBody(body)

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	if err := c.client.DoTimeout(req, resp, c.timeout); err != nil {
		c.logger.Debug("Failed to execute log ingest request", zap.String("url", requestURL), zap.Error(err))
		return fmt.Errorf("failed to execute request to %s: %w", requestURL, err)
	}

	if code := resp.StatusCode(); code < fasthttp.StatusOK || code >= fasthttp.StatusMultipleChoices {
		c.logger.Debug("Log ingest request failed",
			zap.Int("statusCode", code),
			zap.ByteString("responseBody", resp.Body()),
		)
		return fmt.Errorf("log ingest request failed with status %d", code)
	}
	return nil
}
