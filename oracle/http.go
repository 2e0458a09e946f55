package oracle

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrNotCalibrated is returned by AskValidation when the HTTP oracle's
// padding-error signature has not yet been set by the calibrator. Probe does
// not need a signature and never returns it.
var ErrNotCalibrated = errors.New("oracle: HTTP oracle used before calibration")

// ProxyCredentials is the username/password pair for an upstream HTTP
// proxy, parsed from a single "<user>:<pass>" CLI flag value — mirroring
// original_source/src/config/proxy_credentials.rs.
type ProxyCredentials struct {
	Username string
	Password string
}

// HTTPConfig configures an HTTP oracle. It corresponds to the `web`
// subcommand's flags in spec §6.
type HTTPConfig struct {
	URLTemplate      string
	Method           string // inferred: GET if BodyTemplate == nil, else POST
	BodyTemplate     *string
	Headers          []Header
	Keyword          string
	Redirect         bool
	Insecure         bool
	UserAgent        string
	ProxyURL         string
	ProxyCredentials *ProxyCredentials
	Timeout          time.Duration
	ConsiderBody     bool
	ThreadDelay      time.Duration
}

// HTTP is the HTTP oracle: it issues exactly one request per AskValidation
// call, substituting the sentinel keyword for the (already encoded)
// ciphertext at every site KeywordLocation found during construction.
type HTTP struct {
	cfg      HTTPConfig
	loc      KeywordLocation
	client   *http.Client
	encode   func([]byte) string
	paddingErrorResponse *CalibrationResponse
}

// NewHTTP builds an HTTP oracle. It refuses to start if the sentinel
// keyword doesn't appear in at least one of {URL, body template, any header
// name, any header value} — per spec §4.4, there is otherwise nothing for
// the tool to substitute the ciphertext into.
func NewHTTP(cfg HTTPConfig, encode func([]byte) string) (*HTTP, error) {
	loc := LocateKeyword(cfg.Keyword, cfg.URLTemplate, cfg.BodyTemplate, cfg.Headers)
	if !loc.Found() {
		return nil, fmt.Errorf(
			"keyword %q not found in the URL, body, or any header — nowhere to substitute the ciphertext",
			cfg.Keyword,
		)
	}

	if cfg.Method == "" {
		if cfg.BodyTemplate != nil {
			cfg.Method = http.MethodPost
		} else {
			cfg.Method = http.MethodGet
		}
	}

	transport := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: cfg.Insecure}, //nolint:gosec // --insecure is opt-in
	}
	if cfg.ProxyURL != "" {
		proxyURL, err := url.Parse(cfg.ProxyURL)
		if err != nil {
			return nil, fmt.Errorf("parsing proxy URL %q: %w", cfg.ProxyURL, err)
		}
		if cfg.ProxyCredentials != nil {
			proxyURL.User = url.UserPassword(cfg.ProxyCredentials.Username, cfg.ProxyCredentials.Password)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	client := &http.Client{
		Transport: transport,
		Timeout:   cfg.Timeout,
	}
	if !cfg.Redirect {
		client.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	return &HTTP{cfg: cfg, loc: loc, client: client, encode: encode}, nil
}

// SetPaddingErrorResponse stores the signature the calibrator determined
// means "invalid padding". It must be called before the first
// AskValidation call.
func (h *HTTP) SetPaddingErrorResponse(r CalibrationResponse) {
	h.paddingErrorResponse = &r
}

// AskValidation implements Oracle.
func (h *HTTP) AskValidation(ctx context.Context, ciphertext []byte) (bool, error) {
	if h.paddingErrorResponse == nil {
		return false, ErrNotCalibrated
	}
	resp, err := h.Probe(ctx, ciphertext)
	if err != nil {
		return false, err
	}
	return resp != *h.paddingErrorResponse, nil
}

// Probe sends one request substituting ciphertext at every keyword site and
// returns the full CalibrationResponse, without consulting
// paddingErrorResponse. This is the "CalibrationWebOracle" variant spec
// §4.5 calls for: the calibrator needs the raw response, not a bool.
func (h *HTTP) Probe(ctx context.Context, ciphertext []byte) (CalibrationResponse, error) {
	encoded := h.encode(ciphertext)

	reqURL := h.cfg.URLTemplate
	if h.loc.InURL {
		reqURL = strings.ReplaceAll(reqURL, h.cfg.Keyword, encoded)
	}

	var bodyReader io.Reader
	if h.cfg.BodyTemplate != nil {
		body := *h.cfg.BodyTemplate
		if h.loc.InBody {
			body = strings.ReplaceAll(body, h.cfg.Keyword, encoded)
		}
		bodyReader = bytes.NewBufferString(body)
	}

	req, err := http.NewRequestWithContext(ctx, h.cfg.Method, reqURL, bodyReader)
	if err != nil {
		return CalibrationResponse{}, fmt.Errorf("building oracle request: %w", err)
	}

	headerNameSub := make(map[int]bool, len(h.loc.HeaderNames))
	for _, i := range h.loc.HeaderNames {
		headerNameSub[i] = true
	}
	headerValueSub := make(map[int]bool, len(h.loc.HeaderValues))
	for _, i := range h.loc.HeaderValues {
		headerValueSub[i] = true
	}
	for i, hdr := range h.cfg.Headers {
		name, value := hdr.Name, hdr.Value
		if headerNameSub[i] {
			name = strings.ReplaceAll(name, h.cfg.Keyword, encoded)
		}
		if headerValueSub[i] {
			value = strings.ReplaceAll(value, h.cfg.Keyword, encoded)
		}
		req.Header.Add(name, value)
	}
	if h.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", h.cfg.UserAgent)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return CalibrationResponse{}, fmt.Errorf("oracle request failed: %w", err)
	}
	defer resp.Body.Close()

	out := CalibrationResponse{Status: resp.StatusCode, ConsiderBody: h.cfg.ConsiderBody}
	if loc := resp.Header.Get("Location"); loc != "" {
		out.HasLocation = true
		out.Location = loc
	}
	if h.cfg.ConsiderBody {
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return CalibrationResponse{}, fmt.Errorf("reading oracle response body: %w", err)
		}
		out.Body = string(data)
		if resp.ContentLength >= 0 {
			out.HasContentLength = true
			out.ContentLength = resp.ContentLength
		}
	}

	return out, nil
}

// ThreadDelay implements Oracle.
func (h *HTTP) ThreadDelay() time.Duration {
	return h.cfg.ThreadDelay
}

// Location implements Oracle.
func (h *HTTP) Location() string {
	return h.cfg.URLTemplate
}
