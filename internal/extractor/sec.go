package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/finsight-ai/finsight/internal/domain"
)

const (
	secSubmissionsURL = "https://data.sec.gov/submissions/CIK%s.json"
	secArchivesURL    = "https://www.sec.gov/Archives/edgar/data/%s/%s/%s"
)

// SECClient pulls quarterly filings from EDGAR. Quarterly results come from
// 10-Q filings; Q4 is covered by the annual 10-K.
type SECClient struct {
	http           *httpClient
	submissionsURL string
	archivesURL    string
}

// NewSECClient creates an EDGAR client. userAgent must identify the caller
// per SEC fair-access policy ("Name contact@example.com").
func NewSECClient(userAgent string) *SECClient {
	return &SECClient{
		http:           newHTTPClient(userAgent),
		submissionsURL: secSubmissionsURL,
		archivesURL:    secArchivesURL,
	}
}

func (c *SECClient) Name() domain.TranscriptSource {
	return domain.TranscriptSourceSEC
}

type secSubmissions struct {
	Filings struct {
		Recent struct {
			AccessionNumber []string `json:"accessionNumber"`
			FilingDate      []string `json:"filingDate"`
			ReportDate      []string `json:"reportDate"`
			Form            []string `json:"form"`
			PrimaryDocument []string `json:"primaryDocument"`
		} `json:"recent"`
	} `json:"filings"`
}

// Fetch locates the filing whose report date falls inside the period and
// returns its primary document as plain text.
func (c *SECClient) Fetch(ctx context.Context, company domain.Company, period domain.Period) (*Result, error) {
	if company.CIK == "" {
		return nil, fmt.Errorf("no CIK on file for %s", company.Ticker)
	}

	body, err := c.http.get(ctx, fmt.Sprintf(c.submissionsURL, company.CIK))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch submissions: %w", err)
	}

	var subs secSubmissions
	if err := json.Unmarshal(body, &subs); err != nil {
		return nil, fmt.Errorf("failed to parse submissions: %w", err)
	}

	wantForm := "10-Q"
	if period.Quarter == 4 {
		wantForm = "10-K"
	}

	recent := subs.Filings.Recent
	start, end := period.DateRange()
	for i, form := range recent.Form {
		if form != wantForm || i >= len(recent.ReportDate) {
			continue
		}
		reportDate, err := time.Parse("2006-01-02", recent.ReportDate[i])
		if err != nil {
			continue
		}
		if reportDate.Before(start) || reportDate.After(end) {
			continue
		}

		content, err := c.fetchDocument(ctx, company.CIK, recent.AccessionNumber[i], recent.PrimaryDocument[i])
		if err != nil {
			return nil, err
		}
		return &Result{
			Company:  company,
			Period:   period,
			Source:   domain.TranscriptSourceSEC,
			Content:  content,
			CallDate: reportDate,
		}, nil
	}

	return nil, fmt.Errorf("no %s filing covering %s", wantForm, period)
}

func (c *SECClient) fetchDocument(ctx context.Context, cik, accession, primaryDoc string) (string, error) {
	url := fmt.Sprintf(c.archivesURL,
		strings.TrimLeft(cik, "0"),
		strings.ReplaceAll(accession, "-", ""),
		primaryDoc,
	)

	body, err := c.http.get(ctx, url)
	if err != nil {
		return "", fmt.Errorf("failed to fetch filing document: %w", err)
	}

	return extractFilingText(body)
}

// extractFilingText strips markup from an EDGAR HTML document and normalizes
// whitespace.
func extractFilingText(body []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to parse filing HTML: %w", err)
	}

	doc.Find("script, style, ix\\:header").Remove()

	text := doc.Find("body").Text()
	if strings.TrimSpace(text) == "" {
		text = doc.Text()
	}

	return strings.Join(strings.Fields(text), " "), nil
}
