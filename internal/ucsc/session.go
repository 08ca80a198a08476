// Package ucsc drives the UCSC Genome Browser's hgTracks CGI to render the
// current view of an existing browser session as a PDF or PNG.
//
// The browser keeps one reverse display toggle per session (hgsid). A Session
// mirrors that toggle locally and is the only thing allowed to change it, so a
// given hgsid must never be driven by more than one Session at a time.
package ucsc

import (
	"context"
	"fmt"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"ucsc-snapshots/internal/components/assert"
	"ucsc-snapshots/internal/components/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("ucsc-snapshots/internal/ucsc")

const (
	report_session_probe       = "session.probe"
	report_session_fetch_image = "session.fetch-image"
	report_session_toggle      = "session.toggle"
	report_session_throttle    = "session.throttle"
)

const (
	DefaultBaseUrl = "https://genome.ucsc.edu"
	// UCSC asks for no more than one request every 15 seconds.
	DefaultInterval = 15 * time.Second
	// MinimumInterval is the floor every interval is clamped to, it is what the
	// no-delay debug switch uses.
	MinimumInterval = time.Millisecond

	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

	tracksPath   = "/cgi-bin/hgTracks"
	cartDumpPath = "/cgi-bin/cartDump"
)

type Options struct {
	// Hgsid is the id of an already configured browser session.
	Hgsid string
	// ReverseDisplay flips the display for "-" strand regions.
	ReverseDisplay bool

	// defaults to DefaultBaseUrl
	BaseUrl string
	// defaults to DefaultInterval, clamped to at least MinimumInterval
	Interval time.Duration
	// zero means no timeout
	Timeout time.Duration
	// defaults to DefaultUserAgent
	UserAgent string
	// wraps the transport with browser-like TLS settings and headers
	BrowserTransport bool

	// defaults to telemetry.SlogAPI{}
	Telemetry telemetry.API
	// if set, receives a dump of every request/response
	MessageOutput telemetry.MessageOutput
	// overrides the default extractor of a format
	Extractors map[Format]Extractor
}

// Session is a single hgsid's browser session. It is not safe for concurrent use.
type Session struct {
	hgsid          string
	reverseDisplay bool
	tracksUrl      *url.URL

	http       *resty.Client
	throttle   *throttle
	extractors map[Format]Extractor
	tel        telemetry.API

	position Position
	flipped  bool
}

// New creates a session for opts.Hgsid and reads its current reverse display
// state from the server.
func New(ctx context.Context, opts Options) (*Session, error) {
	assert.NotEmptyStr(opts.Hgsid)

	tel := opts.Telemetry
	if tel == nil {
		tel = telemetry.SlogAPI{}
	}
	tel = telemetry.NewScopedAPI("ucsc_session", tel)

	baseUrl := strings.TrimSuffix(opts.BaseUrl, "/")
	if baseUrl == "" {
		baseUrl = DefaultBaseUrl
	}
	tracksUrl, err := url.Parse(baseUrl + tracksPath)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	interval := opts.Interval
	if interval == 0 {
		interval = DefaultInterval
	}
	if interval < MinimumInterval {
		interval = MinimumInterval
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	s := &Session{
		hgsid:          opts.Hgsid,
		reverseDisplay: opts.ReverseDisplay,
		tracksUrl:      tracksUrl,
		throttle:       newThrottle(interval),
		extractors: map[Format]Extractor{
			PDF: PDFExtractor{},
			PNG: PNGExtractor{},
		},
		tel: tel,
	}
	for format, extractor := range opts.Extractors {
		assert.NotNil(extractor)
		s.extractors[format] = extractor
	}

	httpClient := resty.New()
	httpClient.SetBaseURL(baseUrl)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	httpClient.SetCookieJar(jar)
	if opts.BrowserTransport {
		httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)
	}
	httpClient.SetHeader("user-agent", userAgent)
	httpClient.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(tracksUrl.Hostname()))
	if opts.Timeout > 0 {
		httpClient.SetTimeout(opts.Timeout)
	}

	httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		waited, err := s.throttle.wait(req.Context())
		if err != nil {
			return err
		}
		if waited > 0 {
			s.tel.ReportDebug(report_session_throttle, waited.String())
		}
		return nil
	})

	telemetry.InstrumentResty(httpClient, tel, opts.MessageOutput)
	s.http = httpClient

	err = s.probe(ctx)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) probe(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "Session.probe")
	defer span.End()

	probeError := func(reason string, err error) error {
		span.RecordError(err)
		span.SetStatus(codes.Error, reason)
		s.tel.ReportBroken(report_session_probe, fmt.Errorf("%s: %w", reason, err), s.hgsid)
		return &StateProbeError{Hgsid: s.hgsid, Reason: reason, Err: err}
	}

	res, err := s.http.R().
		SetContext(ctx).
		SetQueryParam("hgsid", s.hgsid).
		Get(cartDumpPath)
	err = checkResponse("GET", cartDumpPath, res, err)
	if err != nil {
		return probeError("fetch cart", err)
	}

	c, err := parseCart(res.Body())
	if err != nil {
		return probeError("parse cart", err)
	}
	flipped, err := c.revCmplDisp()
	if err != nil {
		return probeError("read reverse display", err)
	}

	s.flipped = flipped
	span.SetAttributes(
		attribute.String("db", c[cartDbVar]),
		attribute.Bool("flipped", flipped),
	)
	s.tel.ReportDebug(report_session_probe, s.hgsid, c[cartDbVar], flipped)
	return nil
}

// SetPosition sets the position the following fetches render, it does not
// make any requests.
func (s *Session) SetPosition(pos Position) {
	s.position = pos
}

func (s *Session) Position() Position {
	return s.position
}

// Flipped reports whether the server is currently showing the reverse display.
func (s *Session) Flipped() bool {
	return s.flipped
}

// FetchImage renders the current position in the given format and returns the
// artifact's bytes. The reverse display is toggled first if `strand` requires it.
func (s *Session) FetchImage(ctx context.Context, format Format, strand Strand) ([]byte, error) {
	if !format.Valid() {
		return nil, &UnsupportedFormatError{Format: string(format)}
	}
	if s.position == "" {
		return nil, ErrNoPosition
	}
	extractor := s.extractors[format]

	ctx, span := tracer.Start(ctx, "Session.FetchImage", trace.WithAttributes(
		attribute.String("format", string(format)),
		attribute.String("position", string(s.position)),
		attribute.String("strand", string(strand)),
	))
	defer span.End()

	fetchError := func(step string, err error) error {
		span.RecordError(err)
		span.SetStatus(codes.Error, step)
		s.tel.ReportBroken(
			report_session_fetch_image,
			fmt.Errorf("%s: %w", step, err),
			format,
			s.position,
		)
		return err
	}

	payload := map[string]string{
		"hgsid":    s.hgsid,
		"position": string(s.position),
	}
	for key, value := range format.cgiFlags() {
		payload[key] = value
	}
	toggle, next := nextToggle(strand, s.flipped, s.reverseDisplay)
	if toggle {
		payload[toggleRevCmplDispVar] = "1"
	}
	span.SetAttributes(attribute.Bool("toggle", toggle))

	res, err := s.http.R().
		SetContext(ctx).
		SetFormData(payload).
		Post(tracksPath)
	err = checkResponse("POST", tracksPath, res, err)
	if err != nil {
		return nil, fetchError("render", err)
	}
	if toggle {
		s.flipped = next
		s.tel.ReportDebug(report_session_toggle, s.position, strand, next)
	}

	ref, err := extractor.Extract(res.Body())
	if err != nil {
		return nil, fetchError("extract reference", err)
	}
	artifactUrl, err := s.resolve(ref)
	if err != nil {
		return nil, fetchError("resolve reference", err)
	}

	res, err = s.http.R().
		SetContext(ctx).
		Get(artifactUrl)
	err = checkResponse("GET", artifactUrl, res, err)
	if err != nil {
		return nil, fetchError("download", err)
	}

	return res.Body(), nil
}

func (s *Session) resolve(ref string) (string, error) {
	parsed, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	return s.tracksUrl.ResolveReference(parsed).String(), nil
}

func checkResponse(method, endpoint string, res *resty.Response, err error) error {
	if err != nil {
		return &RemoteRequestError{Method: method, Url: endpoint, Err: err}
	}
	if !res.IsSuccess() {
		return &RemoteRequestError{
			Method:     method,
			Url:        endpoint,
			StatusCode: res.StatusCode(),
		}
	}
	return nil
}
