// Package geo maps addresses to coordinates via ip-api.com and computes
// great-circle distance from the observer. Lookups are cached twice: an
// in-memory TTL cache for the current run and the SQLite store across runs,
// because the remote API is rate limited and each miss costs a mandatory
// inter-request delay.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"pathprobe/internal/storage"
	"pathprobe/internal/storage/models"
	pkgerrors "pathprobe/pkg/errors"
)

const (
	apiURL  = "http://ip-api.com/json/"
	selfURL = "https://api.ipify.org"

	// requestInterval is the mandatory delay between remote lookups,
	// respecting ip-api.com's free-tier rate limit.
	requestInterval = 1500 * time.Millisecond

	// maxCacheAge bounds how stale a persisted location may be before it is
	// re-fetched.
	maxCacheAge = 30 * 24 * time.Hour
)

// Client performs geolocation lookups.
type Client struct {
	http  *http.Client
	store storage.Storage // nil disables the persistent cache
	mem   *gocache.Cache

	mu          sync.Mutex
	lastRequest time.Time
}

// Result pairs a location with the observer-relative distance.
type Result struct {
	models.Location
	DistanceKM float64
}

// NewClient creates a geolocation client. store may be nil.
func NewClient(store storage.Storage) *Client {
	return &Client{
		http:  &http.Client{Timeout: 10 * time.Second},
		store: store,
		mem:   gocache.New(10*time.Minute, 30*time.Minute),
	}
}

// apiResponse is the ip-api.com JSON shape.
type apiResponse struct {
	Status     string  `json:"status"`
	Message    string  `json:"message"`
	Country    string  `json:"country"`
	RegionName string  `json:"regionName"`
	City       string  `json:"city"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
}

// Observer returns the location of this machine's public IP.
func (c *Client) Observer(ctx context.Context) (*models.Location, error) {
	ip, err := c.publicIP(ctx)
	if err != nil {
		return nil, err
	}
	return c.Locate(ctx, ip)
}

// Locate resolves one address to a location, preferring the caches.
func (c *Client) Locate(ctx context.Context, address string) (*models.Location, error) {
	if loc, found := c.mem.Get(address); found {
		return loc.(*models.Location), nil
	}
	if c.store != nil {
		if loc, err := c.store.GetLocation(ctx, address); err == nil {
			if time.Since(loc.FetchedAt) < maxCacheAge {
				c.mem.Set(address, loc, gocache.DefaultExpiration)
				return loc, nil
			}
		}
	}

	loc, err := c.fetch(ctx, address)
	if err != nil {
		return nil, err
	}

	c.mem.Set(address, loc, gocache.DefaultExpiration)
	if c.store != nil {
		c.store.PutLocation(ctx, loc) // best-effort
	}
	return loc, nil
}

// LocateAll resolves a batch of addresses against one observer. Failed
// lookups are simply absent from the result map; geolocation is enrichment
// and must never block measurement output.
func (c *Client) LocateAll(ctx context.Context, addresses []string, observer *models.Location) map[string]Result {
	results := make(map[string]Result)
	for _, addr := range addresses {
		if _, done := results[addr]; done {
			continue
		}
		loc, err := c.Locate(ctx, addr)
		if err != nil {
			continue
		}
		results[addr] = Result{
			Location:   *loc,
			DistanceKM: Haversine(observer.Lat, observer.Lon, loc.Lat, loc.Lon),
		}
	}
	return results
}

// fetch performs one remote lookup, honoring the inter-request delay.
func (c *Client) fetch(ctx context.Context, address string) (*models.Location, error) {
	if err := c.throttle(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "GET", apiURL+address, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pkgerrors.ErrGeoLookupFailed, err)
	}
	defer resp.Body.Close()

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: %v", pkgerrors.ErrGeoLookupFailed, err)
	}
	if body.Status != "success" {
		return nil, fmt.Errorf("%w: %s", pkgerrors.ErrGeoLookupFailed, body.Message)
	}

	return &models.Location{
		Address:   address,
		Country:   body.Country,
		Region:    body.RegionName,
		City:      body.City,
		Lat:       body.Lat,
		Lon:       body.Lon,
		FetchedAt: time.Now(),
	}, nil
}

// throttle enforces the mandatory delay between remote requests.
func (c *Client) throttle(ctx context.Context) error {
	c.mu.Lock()
	wait := requestInterval - time.Since(c.lastRequest)
	c.lastRequest = time.Now().Add(wait)
	c.mu.Unlock()

	if wait <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
		return nil
	}
}

// publicIP asks ipify for this machine's public address.
func (c *Client) publicIP(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", selfURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", pkgerrors.ErrNoPublicIP, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64))
	if err != nil {
		return "", fmt.Errorf("%w: %v", pkgerrors.ErrNoPublicIP, err)
	}
	ip := strings.TrimSpace(string(body))
	if ip == "" {
		return "", pkgerrors.ErrNoPublicIP
	}
	return ip, nil
}

// Haversine returns the great-circle distance in kilometers between two
// coordinate pairs.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadiusKM = 6371.0

	rlat1, rlon1 := lat1*math.Pi/180, lon1*math.Pi/180
	rlat2, rlon2 := lat2*math.Pi/180, lon2*math.Pi/180

	dlat := rlat2 - rlat1
	dlon := rlon2 - rlon1

	h := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(rlat1)*math.Cos(rlat2)*math.Sin(dlon/2)*math.Sin(dlon/2)
	angle := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusKM * angle
}
