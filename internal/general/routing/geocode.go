package routing

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"trip-tracker/internal/domain/geo"
	"trip-tracker/internal/ports"
)

var (
	_ ports.Geocoder = (*Client)(nil)

	ErrNoAddress = errors.New("no address for location")
)

type geocodeResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		FormattedAddress string `json:"formatted_address"`
	} `json:"results"`
}

// ReverseGeocode returns the formatted address of the best result for c.
func (client *Client) ReverseGeocode(ctx context.Context, c geo.Coordinate) (string, error) {
	q := url.Values{}
	q.Set("latlng", strconv.FormatFloat(c.Latitude, 'f', 6, 64)+","+strconv.FormatFloat(c.Longitude, 'f', 6, 64))
	q.Set("key", client.cfg.APIKey)
	if client.cfg.Language != "" {
		q.Set("language", client.cfg.Language)
	}

	var resp geocodeResponse
	err := client.do(ctx, "reverse_geocode", request{
		method: http.MethodGet,
		url:    client.cfg.GeocodeURL + "?" + q.Encode(),
	}, &resp)
	if err != nil {
		return "", fmt.Errorf("reverse geocode: %w", err)
	}

	switch resp.Status {
	case "OK":
	case "ZERO_RESULTS":
		return "", ErrNoAddress
	default:
		return "", fmt.Errorf("reverse geocode: status %s: %s", resp.Status, resp.ErrorMessage)
	}
	if len(resp.Results) == 0 || resp.Results[0].FormattedAddress == "" {
		return "", ErrNoAddress
	}
	return resp.Results[0].FormattedAddress, nil
}
