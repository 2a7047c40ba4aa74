package openfda

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"medtracker/internal/platform/httpclient"
	"medtracker/internal/platform/logger"
	"medtracker/internal/platform/metrics"
	"medtracker/internal/ports/druginfo"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultBaseURL = "https://api.fda.gov"
	labelPath      = "/drug/label.json"

	breakerName = "openfda"
)

var (
	defaultWarnings = []string{"No warnings available"}
	defaultPurpose  = []string{"Not specified"}
)

type Config struct {
	BaseURL string
	Timeout time.Duration

	// BreakerEnabled activa el circuit breaker (5 fallas de red/5xx seguidas).
	BreakerEnabled bool

	Metrics *metrics.Metrics // opcional
	Logger  logger.Logger    // opcional
}

// Client consulta el endpoint drug/label de OpenFDA. Implementa druginfo.Lookup.
type Client struct {
	http    *httpclient.Client
	breaker *gobreaker.CircuitBreaker // nil => sin breaker
	metrics *metrics.Metrics
	log     logger.Logger
	tracer  trace.Tracer
}

var _ druginfo.Lookup = (*Client)(nil)

func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = DefaultBaseURL
	}
	hc, err := httpclient.New(httpclient.Config{BaseURL: base, Timeout: cfg.Timeout})
	if err != nil {
		return nil, err
	}

	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}

	c := &Client{
		http:    hc,
		metrics: cfg.Metrics,
		log:     log.With(map[string]any{"component": "openfda"}),
		tracer:  otel.Tracer("medtracker/openfda"),
	}

	if cfg.BreakerEnabled {
		c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        breakerName,
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			// Sólo red y 5xx cuentan como falla del upstream.
			IsSuccessful: func(err error) bool {
				if err == nil {
					return true
				}
				var he *httpclient.HTTPError
				if errors.As(err, &he) {
					return he.StatusCode < 500
				}
				return !errors.Is(err, httpclient.ErrTransport)
			},
			OnStateChange: c.onStateChange,
		})
		c.setBreakerGauge(gobreaker.StateClosed)
	}

	return c, nil
}

// GetDrugInfo busca el fármaco por nombre genérico y normaliza la primera ficha.
func (c *Client) GetDrugInfo(ctx context.Context, name string) (druginfo.Info, error) {
	ctx, span := c.tracer.Start(ctx, "openfda.GetDrugInfo",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("drug.name", name)),
	)
	defer span.End()

	info, err := c.lookup(ctx, name)
	c.observe(err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.log.Warn("drug info lookup failed", map[string]any{
			"drug_name": name,
			"kind":      druginfo.KindOf(err).String(),
			"err":       err,
		})
		return druginfo.Info{}, err
	}
	return info, nil
}

func (c *Client) lookup(ctx context.Context, name string) (druginfo.Info, error) {
	if strings.TrimSpace(name) == "" {
		return druginfo.Info{}, druginfo.InvalidArgument("drug_name is required")
	}

	var resp labelResponse
	status, err := c.fetch(ctx, name, &resp)
	if err != nil {
		return druginfo.Info{}, mapError(err)
	}
	if status != http.StatusOK {
		return druginfo.Info{}, druginfo.Upstream(fmt.Sprintf("OpenFDA API error: %d", status), nil)
	}
	if len(resp.Results) == 0 {
		return druginfo.Info{}, druginfo.Upstream("No results found for this medication.", nil)
	}

	return resp.Results[0].normalize(name), nil
}

func (c *Client) fetch(ctx context.Context, name string, out *labelResponse) (int, error) {
	call := func() (int, error) {
		return c.http.GetJSON(ctx, labelPath, url.Values{
			"search": {"openfda.generic_name:" + strings.ToLower(name)},
			"limit":  {"1"},
		}, out)
	}

	if c.breaker == nil {
		return call()
	}

	v, err := c.breaker.Execute(func() (interface{}, error) {
		return call()
	})
	status, _ := v.(int)
	return status, err
}

func mapError(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return druginfo.Upstream("OpenFDA API temporarily unavailable", err)
	}

	var he *httpclient.HTTPError
	if errors.As(err, &he) {
		return druginfo.Upstream(fmt.Sprintf("OpenFDA API error: %d", he.StatusCode), err)
	}
	if errors.Is(err, httpclient.ErrTransport) {
		return druginfo.Network("OpenFDA request failed", err)
	}
	// JSON inválido u otro error del cliente.
	return druginfo.Upstream("OpenFDA API error: invalid response", err)
}

func (c *Client) observe(err error) {
	if c.metrics == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = druginfo.KindOf(err).String()
	}
	c.metrics.DrugInfoLookups.WithLabelValues(outcome).Inc()
}

func (c *Client) onStateChange(name string, from, to gobreaker.State) {
	c.log.Warn("circuit breaker state change", map[string]any{
		"breaker": name,
		"from":    from.String(),
		"to":      to.String(),
	})
	c.setBreakerGauge(to)
}

func (c *Client) setBreakerGauge(st gobreaker.State) {
	if c.metrics == nil {
		return
	}
	var v float64
	switch st {
	case gobreaker.StateOpen:
		v = 1
	case gobreaker.StateHalfOpen:
		v = 2
	}
	c.metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(v)
}

// -------------------------
// Payload OpenFDA
// -------------------------

type labelResponse struct {
	Results []labelRecord `json:"results"`
}

// Los campos de la ficha no tienen forma fija (lista, string o ausentes),
// por eso se decodifican en crudo.
type labelRecord struct {
	OpenFDA  map[string]json.RawMessage `json:"openfda"`
	Warnings json.RawMessage            `json:"warnings"`
	Purpose  json.RawMessage            `json:"purpose"`
}

func (r labelRecord) normalize(inputName string) druginfo.Info {
	return druginfo.Info{
		Name:         firstString(r.OpenFDA["generic_name"], inputName),
		Manufacturer: firstString(r.OpenFDA["manufacturer_name"], "Unknown"),
		Warnings:     stringList(r.Warnings, defaultWarnings),
		Purpose:      stringList(r.Purpose, defaultPurpose),
	}
}

// firstString: lista no vacía => primer elemento; string => tal cual;
// cualquier otra cosa => fallback.
func firstString(raw json.RawMessage, fallback string) string {
	if isAbsent(raw) {
		return fallback
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		if len(list) > 0 {
			return list[0]
		}
		return fallback
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return fallback
}

func stringList(raw json.RawMessage, fallback []string) []string {
	if isAbsent(raw) {
		return append([]string(nil), fallback...)
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return []string{s}
	}
	return append([]string(nil), fallback...)
}

func isAbsent(raw json.RawMessage) bool {
	v := strings.TrimSpace(string(raw))
	return v == "" || v == "null"
}
