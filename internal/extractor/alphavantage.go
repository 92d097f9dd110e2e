package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/finsight-ai/finsight/internal/domain"
)

const alphaVantageBaseURL = "https://www.alphavantage.co/query"

// AlphaVantageClient serves quarterly earnings figures from the Alpha Vantage
// EARNINGS endpoint, rendered as a narrative summary when EDGAR has no
// matching filing.
type AlphaVantageClient struct {
	http    *httpClient
	apiKey  string
	baseURL string
}

func NewAlphaVantageClient(apiKey, userAgent string) *AlphaVantageClient {
	return &AlphaVantageClient{
		http:    newHTTPClient(userAgent),
		apiKey:  apiKey,
		baseURL: alphaVantageBaseURL,
	}
}

func (c *AlphaVantageClient) Name() domain.TranscriptSource {
	return domain.TranscriptSourceAlphaVantage
}

type avEarnings struct {
	Symbol            string `json:"symbol"`
	Note              string `json:"Note"`
	Information       string `json:"Information"`
	QuarterlyEarnings []struct {
		FiscalDateEnding   string `json:"fiscalDateEnding"`
		ReportedDate       string `json:"reportedDate"`
		ReportedEPS        string `json:"reportedEPS"`
		EstimatedEPS       string `json:"estimatedEPS"`
		Surprise           string `json:"surprise"`
		SurprisePercentage string `json:"surprisePercentage"`
	} `json:"quarterlyEarnings"`
}

func (c *AlphaVantageClient) Fetch(ctx context.Context, company domain.Company, period domain.Period) (*Result, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("alpha vantage api key not configured")
	}

	q := url.Values{}
	q.Set("function", "EARNINGS")
	q.Set("symbol", company.Ticker)
	q.Set("apikey", c.apiKey)

	body, err := c.http.get(ctx, c.baseURL+"?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch earnings: %w", err)
	}

	var earnings avEarnings
	if err := json.Unmarshal(body, &earnings); err != nil {
		return nil, fmt.Errorf("failed to parse earnings: %w", err)
	}
	if earnings.Note != "" {
		return nil, fmt.Errorf("rate limited: %s", earnings.Note)
	}
	if earnings.Information != "" {
		return nil, fmt.Errorf("api error: %s", earnings.Information)
	}

	start, end := period.DateRange()
	for _, qe := range earnings.QuarterlyEarnings {
		fiscalEnd, err := time.Parse("2006-01-02", qe.FiscalDateEnding)
		if err != nil {
			continue
		}
		if fiscalEnd.Before(start) || fiscalEnd.After(end) {
			continue
		}

		callDate := fiscalEnd
		if reported, err := time.Parse("2006-01-02", qe.ReportedDate); err == nil {
			callDate = reported
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "%s (%s) %s Earnings Summary\n\n", company.Name, company.Ticker, period)
		fmt.Fprintf(&sb, "Fiscal quarter ended %s, results reported %s.\n", qe.FiscalDateEnding, qe.ReportedDate)
		fmt.Fprintf(&sb, "Reported EPS: %s. Analyst estimate: %s.\n", qe.ReportedEPS, qe.EstimatedEPS)
		if qe.Surprise != "" {
			fmt.Fprintf(&sb, "Earnings surprise: %s (%s%%).\n", qe.Surprise, qe.SurprisePercentage)
		}
		fmt.Fprintf(&sb, "\nSector: %s.\n", company.Sector)

		return &Result{
			Company:  company,
			Period:   period,
			Source:   domain.TranscriptSourceAlphaVantage,
			Content:  sb.String(),
			CallDate: callDate,
		}, nil
	}

	return nil, fmt.Errorf("no quarterly earnings covering %s", period)
}
