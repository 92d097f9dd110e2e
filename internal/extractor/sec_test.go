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

const testFilingHTML = `<html>
<head><title>Form 10-Q</title><style>p { margin: 0 }</style></head>
<body>
<script>window.x = 1;</script>
<p>UNITED STATES SECURITIES AND EXCHANGE COMMISSION</p>
<p>Quarterly   report for the period ended June 30, 2024.</p>
<p>Revenue increased 22% driven by data center demand.</p>
</body>
</html>`

func newTestSECClient(srv *httptest.Server) *SECClient {
	c := NewSECClient("test test@example.com")
	c.submissionsURL = srv.URL + "/submissions/CIK%s.json"
	c.archivesURL = srv.URL + "/Archives/edgar/data/%s/%s/%s"
	return c
}

func TestSECClient_Fetch(t *testing.T) {
	submissions := `{
		"filings": {
			"recent": {
				"accessionNumber": ["0001045810-24-000100", "0001045810-24-000050"],
				"filingDate": ["2024-08-28", "2024-05-29"],
				"reportDate": ["2024-06-30", "2024-03-31"],
				"form": ["10-Q", "10-Q"],
				"primaryDocument": ["nvda-20240630.htm", "nvda-20240331.htm"]
			}
		}
	}`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		switch r.URL.Path {
		case "/submissions/CIK0001045810.json":
			fmt.Fprint(w, submissions)
		case "/Archives/edgar/data/1045810/000104581024000100/nvda-20240630.htm":
			fmt.Fprint(w, testFilingHTML)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client := newTestSECClient(srv)
	company, _ := domain.LookupCompany("NVDA")

	res, err := client.Fetch(context.Background(), company, domain.Period{Year: 2024, Quarter: 2})

	require.NoError(t, err)
	assert.Equal(t, domain.TranscriptSourceSEC, res.Source)
	assert.Contains(t, res.Content, "SECURITIES AND EXCHANGE COMMISSION")
	assert.Contains(t, res.Content, "Revenue increased 22% driven by data center demand.")
	assert.NotContains(t, res.Content, "window.x")
	assert.NotContains(t, res.Content, "margin: 0")
	assert.Equal(t, "2024-06-30", res.CallDate.Format("2006-01-02"))
}

func TestSECClient_Fetch_NoMatchingFiling(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"filings": {"recent": {"accessionNumber": [], "filingDate": [], "reportDate": [], "form": [], "primaryDocument": []}}}`)
	}))
	defer srv.Close()

	client := newTestSECClient(srv)
	company, _ := domain.LookupCompany("NVDA")

	_, err := client.Fetch(context.Background(), company, domain.Period{Year: 2024, Quarter: 2})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no 10-Q filing")
}

func TestSECClient_Fetch_AnnualFilingForQ4(t *testing.T) {
	submissions := `{
		"filings": {
			"recent": {
				"accessionNumber": ["0001045810-25-000012"],
				"filingDate": ["2025-02-26"],
				"reportDate": ["2024-12-29"],
				"form": ["10-K"],
				"primaryDocument": ["nvda-20241229.htm"]
			}
		}
	}`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/submissions/CIK0001045810.json":
			fmt.Fprint(w, submissions)
		case "/Archives/edgar/data/1045810/000104581025000012/nvda-20241229.htm":
			fmt.Fprint(w, testFilingHTML)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client := newTestSECClient(srv)
	company, _ := domain.LookupCompany("NVDA")

	res, err := client.Fetch(context.Background(), company, domain.Period{Year: 2024, Quarter: 4})

	require.NoError(t, err)
	assert.Equal(t, "2024-12-29", res.CallDate.Format("2006-01-02"))
}

func TestSECClient_Fetch_NoCIK(t *testing.T) {
	client := NewSECClient("test test@example.com")
	company, _ := domain.LookupCompany("QTUM")

	_, err := client.Fetch(context.Background(), company, domain.Period{Year: 2024, Quarter: 1})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no CIK")
}

func TestExtractFilingText(t *testing.T) {
	text, err := extractFilingText([]byte(testFilingHTML))

	require.NoError(t, err)
	assert.Contains(t, text, "Quarterly report for the period ended June 30, 2024.")
	assert.NotContains(t, text, "<p>")
	assert.NotContains(t, text, "  ")
}
