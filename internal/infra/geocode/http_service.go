// Package geocode resolves postal addresses through an external HTTP resolver.
package geocode

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"courier/config"
	"courier/internal/domain/entity"
	"courier/internal/domain/service"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const defaultResolveTimeout = 5 * time.Second

// noopGeocoder is used when no resolver endpoint is configured. It resolves
// nothing, so parcels simply carry no ETA.
type noopGeocoder struct {
	logger *slog.Logger
}

func (g *noopGeocoder) Resolve(_ context.Context, _ string) (*entity.Location, error) {
	g.logger.Debug("[NoopGeocode] Resolver not configured, skipping")

	return nil, nil
}

// httpGeocoder implements GeocodeService against a JSON resolver endpoint.
type httpGeocoder struct {
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
}

type resolveResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// GeocoderParams holds dependencies for the geocoder, injected by Fx
type GeocoderParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

// NewGeocodeService creates a GeocodeService based on configuration
func NewGeocodeService(params GeocoderParams) service.GeocodeService {
	cfg := params.Config.Geocode
	if cfg == nil || cfg.Endpoint == "" {
		params.Logger.Info("Geocode resolver not configured, ETA estimation disabled")

		return &noopGeocoder{logger: params.Logger}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultResolveTimeout
	}

	return &httpGeocoder{
		endpoint:   cfg.Endpoint,
		httpClient: &http.Client{Timeout: timeout},
		logger:     params.Logger,
	}
}

// Resolve returns the coordinates of a postal address.
func (g *httpGeocoder) Resolve(ctx context.Context, address string) (*entity.Location, error) {
	requestURL := g.endpoint + "?q=" + url.QueryEscape(address)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.Errorf("resolver returned non-success status: %d", resp.StatusCode)
	}

	var payload resolveResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, errors.Wrap(err, "failed to decode resolver response")
	}

	location := &entity.Location{
		Latitude:  payload.Latitude,
		Longitude: payload.Longitude,
	}
	if err := location.Validate(); err != nil {
		return nil, errors.Wrap(err, "resolver returned invalid coordinates")
	}

	return location, nil
}
