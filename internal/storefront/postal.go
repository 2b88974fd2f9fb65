package storefront

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"
)

const DefaultPostalURL = "https://api.zippopotam.us"

var (
	ErrInvalidPostalCode  = errors.New("postal code must be 5 digits")
	ErrPostalCodeNotFound = errors.New("postal code not found")
)

var postalCodePattern = regexp.MustCompile(`^\d{5}$`)

// Place is the city and state a postal code belongs to.
type Place struct {
	City  string
	State string
}

// PostalLookup resolves postal codes through a zippopotam-compatible API.
type PostalLookup struct {
	BaseURL string
	Country string
	HTTP    *http.Client
}

func NewPostalLookup() *PostalLookup {
	return &PostalLookup{
		BaseURL: DefaultPostalURL,
		Country: "es",
		HTTP:    &http.Client{Timeout: 5 * time.Second},
	}
}

func ValidPostalCode(code string) bool {
	return postalCodePattern.MatchString(code)
}

type zippopotamResponse struct {
	Places []struct {
		PlaceName string `json:"place name"`
		State     string `json:"state"`
	} `json:"places"`
}

// Lookup returns the first place registered for code.
func (l *PostalLookup) Lookup(ctx context.Context, code string) (*Place, error) {
	code = strings.TrimSpace(code)
	if !ValidPostalCode(code) {
		return nil, ErrInvalidPostalCode
	}

	url := fmt.Sprintf("%s/%s/%s", strings.TrimRight(l.BaseURL, "/"), l.Country, code)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := l.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("postal lookup %s: %w", code, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrPostalCodeNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("postal lookup %s: unexpected status %d", code, resp.StatusCode)
	}

	var body zippopotamResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("postal lookup %s: %w", code, err)
	}
	if len(body.Places) == 0 {
		return nil, ErrPostalCodeNotFound
	}
	return &Place{City: body.Places[0].PlaceName, State: body.Places[0].State}, nil
}
