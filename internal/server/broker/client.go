package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"path"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/premrelay/internal/logging"
)

const contentTypeOctetStream = "application/octet-stream"

// Client issues requests to the broker endpoint.
type Client struct {
	endpoint string
	userID   string
	apiKey   string
	client   *http.Client
	logger   logging.Logger
}

// NewClient builds a broker client. headerTimeout bounds the wait for the
// broker's response headers; the body stream itself is not time-bounded,
// large files legitimately take long to transfer.
func NewClient(endpoint, userID, apiKey string, headerTimeout time.Duration, logger logging.Logger) *Client {
	return &Client{
		endpoint: endpoint,
		userID:   userID,
		apiKey:   apiKey,
		client: &http.Client{
			Transport: &http.Transport{
				ResponseHeaderTimeout: headerTimeout,
			},
			// Redirects are a terminal outcome, never followed.
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		logger: logger.With("module", "broker"),
	}
}

// Fetch asks the broker to resolve link into a downloadable stream. The
// result is always one of the Outcome variants; network-level failures are
// reported as TransportFailure rather than an error return.
func (c *Client) Fetch(ctx context.Context, link string) Outcome {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return TransportFailure{Cause: fmt.Errorf("broker endpoint: %w", err)}
	}

	q := u.Query()
	q.Set("userid", c.userID)
	q.Set("apikey", c.apiKey)
	q.Set("link", link)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return TransportFailure{Cause: err}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error(ctx, "broker request failed", "error", err.Error())
		return TransportFailure{Cause: err}
	}

	switch {
	case resp.StatusCode == http.StatusOK && resp.Header.Get("Content-Type") == contentTypeOctetStream:
		return Stream{
			Body:          resp.Body,
			ContentLength: resp.ContentLength,
			Filename:      extractFilename(resp.Header.Get("Content-Disposition"), link),
		}

	case resp.StatusCode == http.StatusOK:
		defer resp.Body.Close()
		return c.decodeAPIError(ctx, resp)

	case resp.StatusCode == http.StatusFound:
		defer resp.Body.Close()
		location := resp.Header.Get("Location")
		c.logger.Info(ctx, "broker redirected", "location", location)
		return Redirected{Location: location}

	default:
		defer resp.Body.Close()
		return APIError{
			Code:    resp.StatusCode,
			Message: fmt.Sprintf("Broker returned status code %d", resp.StatusCode),
		}
	}
}

// decodeAPIError interprets a 200 response whose content type is not a file
// stream: the broker reports errors as JSON bodies with a numeric code.
func (c *Client) decodeAPIError(ctx context.Context, resp *http.Response) Outcome {
	var body struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		c.logger.Error(ctx, "failed to decode broker response", "error", err.Error())
		return APIError{Message: "Invalid response from the broker API"}
	}

	msg, ok := apiErrorMessages[body.Code]
	if !ok {
		msg = fmt.Sprintf("Unknown error (code %d)", body.Code)
	}

	return APIError{Code: body.Code, Message: msg}
}

// extractFilename derives the download's filename from the
// Content-Disposition header, preferring the RFC 2231 filename* parameter,
// falling back to the last path segment of the source link.
func extractFilename(disposition, link string) string {
	if disposition != "" {
		if _, params, err := mime.ParseMediaType(disposition); err == nil {
			if name := params["filename"]; name != "" {
				return fixLatin1(name)
			}
		}
	}

	if u, err := url.Parse(link); err == nil {
		if name := path.Base(u.Path); name != "." && name != "/" {
			return name
		}
	}

	return ""
}

// fixLatin1 repairs filenames whose UTF-8 bytes were mis-decoded as Latin-1.
// If every rune fits in a byte and the re-assembled bytes form multi-byte
// UTF-8, the re-decoded string is returned; otherwise s is kept as-is.
func fixLatin1(s string) string {
	b := make([]byte, 0, len(s))
	multibyte := false
	for _, r := range s {
		if r > 0xFF {
			return s
		}
		if r > 0x7F {
			multibyte = true
		}
		b = append(b, byte(r))
	}
	if multibyte && utf8.Valid(b) {
		return string(b)
	}
	return s
}
