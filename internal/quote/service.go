package quote

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/parking-fee/internal/obs"
	"github.com/noah-isme/parking-fee/internal/tariff"
)

// Facilities is the read and reload surface of the facility registry.
type Facilities interface {
	Lookup(name string) (tariff.Rules, error)
	Names() []string
	Len() int
	Reload(ctx context.Context) (int, error)
	Source() string
	LoadedAt() time.Time
}

// ReloadLock serialises reloads across replicas.
type ReloadLock interface {
	WithLock(ctx context.Context, key string, ttl time.Duration, fn func(context.Context) error) error
}

const reloadLockKey = "facilities:reload"

// Service prices parking stays against the facility registry.
type Service struct {
	facilities Facilities
	reloadLock ReloadLock
	location   *time.Location
	layout     string
	now        func() time.Time
	logger     zerolog.Logger
	tracer     trace.Tracer
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Facilities Facilities
	// Location interprets timestamps and supplies "now"; defaults to UTC.
	Location *time.Location
	// Layout is the timestamp layout; defaults to tariff.DefaultLayout.
	Layout string
	// Now overrides the clock in tests.
	Now    func() time.Time
	Logger zerolog.Logger
	// ReloadLock is optional; nil reloads without coordination.
	ReloadLock ReloadLock
}

// Request names a facility and the raw stay boundaries. An empty Exit means now.
type Request struct {
	Facility string
	Entry    string
	Exit     string
}

// Quote is a priced stay.
type Quote struct {
	ID              uuid.UUID
	Facility        string
	Entry           time.Time
	Exit            time.Time
	Fee             decimal.Decimal
	DurationMinutes float64
	Breakdown       tariff.Breakdown
}

// ReloadResult summarises a registry reload.
type ReloadResult struct {
	Facilities int       `json:"facilities"`
	Source     string    `json:"source"`
	LoadedAt   time.Time `json:"loaded_at"`
}

// NewService constructs a Service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Facilities == nil {
		return nil, errors.New("quote: facilities registry is required")
	}
	svc := &Service{
		facilities: cfg.Facilities,
		reloadLock: cfg.ReloadLock,
		location:   cfg.Location,
		layout:     cfg.Layout,
		now:        cfg.Now,
		logger:     cfg.Logger,
		tracer:     obs.Tracer("parking-fee/quote"),
	}
	if svc.location == nil {
		svc.location = time.UTC
	}
	if strings.TrimSpace(svc.layout) == "" {
		svc.layout = tariff.DefaultLayout
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	return svc, nil
}

// Layout returns the timestamp layout accepted by Quote.
func (s *Service) Layout() string { return s.layout }

// Location returns the zone timestamps are interpreted in.
func (s *Service) Location() *time.Location { return s.location }

// Facilities returns the facility names in ascending order.
func (s *Service) Facilities() []string { return s.facilities.Names() }

// Now returns the current instant in the service zone, truncated to the
// minute so it round-trips through the timestamp layout.
func (s *Service) Now() time.Time {
	return s.now().In(s.location).Truncate(time.Minute)
}

// Quote prices req. Errors classify with tariff.KindOf.
func (s *Service) Quote(ctx context.Context, req Request) (q Quote, err error) {
	ctx, span := s.tracer.Start(ctx, "quote.Service.Quote", trace.WithAttributes(attribute.String("facility", req.Facility)))
	defer func() {
		kind := tariff.KindOf(err)
		result := "ok"
		if kind != tariff.KindNone {
			result = string(kind)
			span.RecordError(err)
			span.SetStatus(codes.Error, result)
		}
		span.SetAttributes(attribute.String("result", result))
		span.End()
		s.observe(ctx, req, q, kind, err)
	}()

	rules, err := s.facilities.Lookup(req.Facility)
	if err != nil {
		return Quote{}, err
	}
	entry, err := tariff.ParseTimestamp(req.Entry, s.layout, s.location)
	if err != nil {
		return Quote{}, err
	}
	exit := s.Now()
	if strings.TrimSpace(req.Exit) != "" {
		if exit, err = tariff.ParseTimestamp(req.Exit, s.layout, s.location); err != nil {
			return Quote{}, err
		}
	}
	res, err := tariff.Compute(entry, exit, rules)
	if err != nil {
		return Quote{}, err
	}
	return Quote{
		ID:              uuid.New(),
		Facility:        req.Facility,
		Entry:           entry,
		Exit:            exit,
		Fee:             res.Fee,
		DurationMinutes: res.DurationMinutes,
		Breakdown:       res.Breakdown,
	}, nil
}

func (s *Service) observe(ctx context.Context, req Request, q Quote, kind tariff.Kind, err error) {
	// Unknown names are client input; keep them out of metric labels.
	label := req.Facility
	if kind == tariff.KindUnknownFacility {
		label = "unknown"
	}
	if kind == tariff.KindNone {
		obs.ObserveQuote(label, "ok", q.Fee.InexactFloat64())
		s.logger.Debug().Ctx(ctx).
			Str("quote_id", q.ID.String()).
			Str("facility", q.Facility).
			Str("fee", q.Fee.StringFixed(2)).
			Float64("duration_minutes", q.DurationMinutes).
			Str("daily_mode", string(q.Breakdown.DailyMode)).
			Msg("quote computed")
		return
	}
	obs.ObserveQuote(label, string(kind), 0)
	evt := s.logger.Warn()
	if kind == tariff.KindInternal {
		evt = s.logger.Error()
	}
	evt.Ctx(ctx).Err(err).Str("facility", req.Facility).Str("kind", string(kind)).Msg("quote failed")
}

// ReloadFacilities refreshes the registry, recording the outcome. On failure
// the previous table stays active.
func (s *Service) ReloadFacilities(ctx context.Context) (ReloadResult, error) {
	var n int
	reload := func(ctx context.Context) (err error) {
		n, err = s.facilities.Reload(ctx)
		return err
	}
	var err error
	if s.reloadLock != nil {
		err = s.reloadLock.WithLock(ctx, reloadLockKey, 30*time.Second, reload)
	} else {
		err = reload(ctx)
	}
	if err != nil {
		obs.ObserveReload("error", s.facilities.Len())
		s.logger.Error().Err(err).Str("source", s.facilities.Source()).Int("active", s.facilities.Len()).Msg("facility reload failed")
		return ReloadResult{}, err
	}
	obs.ObserveReload("ok", n)
	if n == 0 {
		s.logger.Warn().Str("source", s.facilities.Source()).Msg("facility table is empty")
	} else {
		s.logger.Info().Str("source", s.facilities.Source()).Int("facilities", n).Msg("facilities loaded")
	}
	return ReloadResult{Facilities: n, Source: s.facilities.Source(), LoadedAt: s.facilities.LoadedAt()}, nil
}
