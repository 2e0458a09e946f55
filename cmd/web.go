package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rook-sec/padoracle/cache"
	"github.com/rook-sec/padoracle/config"
	"github.com/rook-sec/padoracle/ctext"
	"github.com/rook-sec/padoracle/events"
	"github.com/rook-sec/padoracle/oracle"
	"github.com/rook-sec/padoracle/retryx"
)

type webFlags struct {
	data             string
	headers          []string
	redirect         bool
	insecure         bool
	keyword          string
	considerBody     bool
	userAgent        string
	proxy            string
	proxyCredentials string
	timeoutSeconds   int
}

func newWebCommand() *cobra.Command {
	var wf webFlags

	cmd := &cobra.Command{
		Use:   "web <url>",
		Short: "Attack an HTTP padding oracle",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return runWeb(c, args[0], wf)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&wf.data, "data", "", "request body template (presence implies POST)")
	fl.StringArrayVar(&wf.headers, "header", nil, "NAME:VALUE request header (repeatable)")
	fl.BoolVar(&wf.redirect, "redirect", false, "follow HTTP redirects instead of inspecting the first response")
	fl.BoolVar(&wf.insecure, "insecure", false, "skip TLS certificate verification")
	fl.StringVar(&wf.keyword, "keyword", config.DefaultKeyword, "sentinel substituted for the ciphertext")
	fl.BoolVar(&wf.considerBody, "consider-body", false, "include the response body when classifying padding validity")
	fl.StringVar(&wf.userAgent, "user-agent", "", "override the User-Agent header")
	fl.StringVar(&wf.proxy, "proxy", "", "upstream HTTP proxy URL")
	fl.StringVar(&wf.proxyCredentials, "proxy-credentials", "", "USER:PASS for --proxy")
	fl.IntVar(&wf.timeoutSeconds, "timeout", int(time.Duration(config.DefaultRequestTimeout)/time.Second), "per-request timeout in seconds")

	return cmd
}

func runWeb(c *cobra.Command, rawURL string, wf webFlags) error {
	g, err := buildGlobal(config.NewHTTPLocation(rawURL))
	if err != nil {
		return err
	}

	headers := make([]config.Header, 0, len(wf.headers))
	for _, h := range wf.headers {
		parsed, err := config.ParseHeader(h)
		if err != nil {
			return err
		}
		headers = append(headers, parsed)
	}

	var proxyCreds *config.ProxyCredentials
	if wf.proxyCredentials != "" {
		parsed, err := config.ParseProxyCredentials(wf.proxyCredentials)
		if err != nil {
			return err
		}
		proxyCreds = &parsed
	}

	web := config.NewWebOptions()
	web.Headers = headers
	web.Redirect = wf.redirect
	web.Insecure = wf.insecure
	web.Keyword = wf.keyword
	web.ConsiderBody = wf.considerBody
	web.UserAgent = wf.userAgent
	web.Proxy = wf.proxy
	web.ProxyCredentials = proxyCreds
	web.Timeout = config.RequestTimeout(time.Duration(wf.timeoutSeconds) * time.Second)
	if wf.data != "" {
		web.Data = wf.data
	}
	g.Web = &web

	oracleHeaders := make([]oracle.Header, len(headers))
	for i, h := range headers {
		oracleHeaders[i] = h.ToOracle()
	}
	var oracleProxyCreds *oracle.ProxyCredentials
	if proxyCreds != nil {
		converted := proxyCreds.ToOracle()
		oracleProxyCreds = &converted
	}
	var bodyTemplate *string
	if wf.data != "" {
		bodyTemplate = &wf.data
	}

	httpCfg := oracle.HTTPConfig{
		URLTemplate:      rawURL,
		BodyTemplate:     bodyTemplate,
		Headers:          oracleHeaders,
		Keyword:          web.Keyword,
		Redirect:         web.Redirect,
		Insecure:         web.Insecure,
		UserAgent:        web.UserAgent,
		ProxyURL:         web.Proxy,
		ProxyCredentials: oracleProxyCreds,
		Timeout:          time.Duration(web.Timeout),
		ConsiderBody:     web.ConsiderBody,
		ThreadDelay:      g.ThreadDelayDuration(),
	}

	ct, err := parseCiphertext(g)
	if err != nil {
		return fmt.Errorf("parsing ciphertext: %w", err)
	}

	urlEncode := ct.URLEncode
	encodeFn := func(b []byte) string {
		return ctext.EncodeBytes(b, ct.Encoding, urlEncode)
	}

	h, err := oracle.NewHTTP(httpCfg, encodeFn)
	if err != nil {
		return fmt.Errorf("building HTTP oracle: %w", err)
	}

	logger := newLogger(g.Verbosity)
	sink := events.NewLogrusSink(logger)

	ctx := c.Context()
	signature, err := oracle.Calibrate(ctx, h, g.BlockSize, retryx.DefaultBaseDelay, retryx.DefaultMaxAttempts, sink)
	if err != nil {
		return fmt.Errorf("calibrating: %w", err)
	}
	h.SetPaddingErrorResponse(signature)

	return runAttack(ctx, g, ct, h, cache.NewHTTPConfig(rawURL, signature), sink)
}
