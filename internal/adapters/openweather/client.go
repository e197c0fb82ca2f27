package openweather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	weatherport "github.com/starclock/starclock-api/internal/ports/out/weather"
)

const DefaultBaseURL = "https://api.openweathermap.org"

// Client is a weather.Provider backed by the OpenWeatherMap current weather API.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// New returns a client. A nil httpClient gets one with the given timeout.
func New(baseURL, apiKey string, httpClient *http.Client, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  httpClient,
	}
}

type currentResponse struct {
	Name string `json:"name"`
	Main *struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
}

func (c *Client) Current(ctx context.Context, at weatherport.Coordinates) (weatherport.Reading, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(at.Latitude, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(at.Longitude, 'f', -1, 64))
	q.Set("appid", c.apiKey)
	q.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/data/2.5/weather?"+q.Encode(), nil)
	if err != nil {
		return weatherport.Reading{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return weatherport.Reading{}, fmt.Errorf("%w: %v", weatherport.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))
		return weatherport.Reading{}, fmt.Errorf("%w: status %d", weatherport.ErrUnavailable, resp.StatusCode)
	}

	var body currentResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&body); err != nil {
		return weatherport.Reading{}, fmt.Errorf("%w: decode: %v", weatherport.ErrUnavailable, err)
	}
	if body.Main == nil || len(body.Weather) == 0 {
		return weatherport.Reading{}, fmt.Errorf("%w: incomplete response", weatherport.ErrUnavailable)
	}
	return weatherport.Reading{
		TemperatureC: body.Main.Temp,
		Description:  body.Weather[0].Description,
		IconCode:     body.Weather[0].Icon,
		LocationName: body.Name,
	}, nil
}
