package routing

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"trip-tracker/internal/domain/geo"
	"trip-tracker/internal/domain/trip"
	"trip-tracker/internal/ports"
)

var _ ports.PlaceSearcher = (*Client)(nil)

const placesFieldMask = "places.displayName,places.formattedAddress,places.location"

type searchTextRequest struct {
	TextQuery    string `json:"textQuery"`
	LanguageCode string `json:"languageCode,omitempty"`
	PageSize     int    `json:"pageSize"`
}

type searchTextResponse struct {
	Places []struct {
		DisplayName struct {
			Text string `json:"text"`
		} `json:"displayName"`
		FormattedAddress string `json:"formattedAddress"`
		Location         latLng `json:"location"`
	} `json:"places"`
}

// SearchPlace resolves keyword to its best match.
func (client *Client) SearchPlace(ctx context.Context, keyword string) (trip.PlaceDestination, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return trip.PlaceDestination{}, trip.ErrEmptyKeyword
	}

	var resp searchTextResponse
	err := client.do(ctx, "search_text", request{
		method:  http.MethodPost,
		url:     client.cfg.PlacesURL,
		headers: client.googHeaders(placesFieldMask),
		body:    searchTextRequest{TextQuery: keyword, LanguageCode: client.cfg.Language, PageSize: 1},
	}, &resp)
	if err != nil {
		return trip.PlaceDestination{}, fmt.Errorf("search %q: %w", keyword, err)
	}
	if len(resp.Places) == 0 {
		return trip.PlaceDestination{}, fmt.Errorf("search %q: %w", keyword, trip.ErrPlaceNotFound)
	}

	p := resp.Places[0]
	loc := geo.Coordinate{Latitude: p.Location.Latitude, Longitude: p.Location.Longitude}
	if err := loc.Validate(); err != nil {
		return trip.PlaceDestination{}, fmt.Errorf("search %q: %w", keyword, err)
	}
	name := p.DisplayName.Text
	if name == "" {
		name = keyword
	}
	return trip.PlaceDestination{
		Destination:      trip.Destination{Keyword: keyword},
		Location:         loc,
		DisplayName:      name,
		FormattedAddress: p.FormattedAddress,
	}, nil
}
