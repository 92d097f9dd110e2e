package extractor

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsight-ai/finsight/internal/domain"
)

func newTestAVClient(srv *httptest.Server) *AlphaVantageClient {
	c := NewAlphaVantageClient("demo", "test test@example.com")
	c.baseURL = srv.URL
	return c
}

func TestAlphaVantageClient_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "EARNINGS", r.URL.Query().Get("function"))
		assert.Equal(t, "AMD", r.URL.Query().Get("symbol"))
		assert.Equal(t, "demo", r.URL.Query().Get("apikey"))
		fmt.Fprint(w, `{
			"symbol": "AMD",
			"quarterlyEarnings": [
				{
					"fiscalDateEnding": "2024-06-29",
					"reportedDate": "2024-07-30",
					"reportedEPS": "0.69",
					"estimatedEPS": "0.68",
					"surprise": "0.01",
					"surprisePercentage": "1.47"
				},
				{
					"fiscalDateEnding": "2024-03-30",
					"reportedDate": "2024-04-30",
					"reportedEPS": "0.62",
					"estimatedEPS": "0.61",
					"surprise": "0.01",
					"surprisePercentage": "1.64"
				}
			]
		}`)
	}))
	defer srv.Close()

	client := newTestAVClient(srv)
	company, _ := domain.LookupCompany("AMD")

	res, err := client.Fetch(context.Background(), company, domain.Period{Year: 2024, Quarter: 2})

	require.NoError(t, err)
	assert.Equal(t, domain.TranscriptSourceAlphaVantage, res.Source)
	assert.Contains(t, res.Content, "Advanced Micro Devices (AMD) 2024 Q2 Earnings Summary")
	assert.Contains(t, res.Content, "Reported EPS: 0.69")
	assert.Equal(t, "2024-07-30", res.CallDate.Format("2006-01-02"))
}

func TestAlphaVantageClient_Fetch_NoAPIKey(t *testing.T) {
	client := NewAlphaVantageClient("", "test test@example.com")
	company, _ := domain.LookupCompany("AMD")

	_, err := client.Fetch(context.Background(), company, domain.Period{Year: 2024, Quarter: 2})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "api key not configured")
}

func TestAlphaVantageClient_Fetch_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"Note": "Thank you for using Alpha Vantage! Our standard API rate limit is 25 requests per day."}`)
	}))
	defer srv.Close()

	client := newTestAVClient(srv)
	company, _ := domain.LookupCompany("AMD")

	_, err := client.Fetch(context.Background(), company, domain.Period{Year: 2024, Quarter: 2})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestAlphaVantageClient_Fetch_NoMatchingQuarter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"symbol": "AMD", "quarterlyEarnings": [{"fiscalDateEnding": "2021-06-26", "reportedDate": "2021-07-27", "reportedEPS": "0.63", "estimatedEPS": "0.54"}]}`)
	}))
	defer srv.Close()

	client := newTestAVClient(srv)
	company, _ := domain.LookupCompany("AMD")

	_, err := client.Fetch(context.Background(), company, domain.Period{Year: 2024, Quarter: 2})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no quarterly earnings")
}
