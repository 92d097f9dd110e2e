package extractor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/finsight-ai/finsight/internal/domain"
)

// SampleSource generates a realistic transcript when no upstream provider can
// serve a period. Placed last in the chain it makes extraction infallible,
// which keeps demos and tests working without API keys.
type SampleSource struct{}

func NewSampleSource() *SampleSource {
	return &SampleSource{}
}

func (s *SampleSource) Name() domain.TranscriptSource {
	return domain.TranscriptSourceSample
}

func (s *SampleSource) Fetch(_ context.Context, company domain.Company, period domain.Period) (*Result, error) {
	sector := strings.ToLower(string(company.Sector))

	content := fmt.Sprintf(`%s Earnings Call - %s %d

Company: %s (%s)
Sector: %s
Quarter: %s %d

EXECUTIVE SUMMARY:
We delivered strong results this quarter, demonstrating the continued strength of our %s business. Revenue growth was driven by increased demand for our core products and services.

KEY FINANCIAL HIGHLIGHTS:
- Total revenue: $12.5 billion, up 15%% year-over-year
- Operating income: $3.2 billion, representing a 25.6%% operating margin
- Earnings per share: $2.85, beating analyst estimates of $2.70
- Free cash flow: $2.8 billion, up 20%% from prior year

BUSINESS SEGMENT PERFORMANCE:
Our %s segment continued to show robust growth, with particular strength in:
- Cloud and AI services: 25%% growth year-over-year
- Data center solutions: 18%% growth
- Enterprise software: 22%% growth

MARKET DYNAMICS AND OUTLOOK:
The market environment remains favorable for %s companies. We see continued strong demand from enterprise customers looking to modernize their technology infrastructure.

Key trends driving our business:
1. Digital transformation acceleration
2. Increased AI and machine learning adoption
3. Growing demand for cloud services
4. Enhanced cybersecurity requirements

GUIDANCE FOR NEXT QUARTER:
- Revenue expected to be in the range of $13.0-13.5 billion
- Operating margin expected to remain stable at 25-26%%
- Continued investment in R&D and talent acquisition

MANAGEMENT COMMENTARY:
"We're pleased with our %s performance and the momentum we're seeing across our business," said CEO. "Our strategic investments in %s are paying off, and we're well-positioned for continued growth."

CFO noted: "Our financial position remains strong with significant cash flow generation enabling continued investment in growth opportunities while returning capital to shareholders."

QUESTIONS AND ANSWERS:
Q: Can you provide more details on the AI segment growth?
A: Our AI initiatives are performing exceptionally well, with revenue growing 40%% year-over-year. We're seeing strong adoption across enterprise customers.

Q: What are the key investment priorities for the next fiscal year?
A: We're focused on three main areas: 1) Expanding our AI capabilities, 2) Enhancing our cloud infrastructure, and 3) Growing our talent base.

Q: How do you see the competitive landscape evolving?
A: The market remains competitive, but our strong technology portfolio and customer relationships give us a significant advantage.

RISK FACTORS:
- Macroeconomic uncertainty
- Supply chain challenges
- Competitive pressures
- Regulatory changes in the technology sector

This earnings call demonstrates %s's strong execution and promising outlook in the %s sector.`,
		company.Name, period.QuarterLabel(), period.Year,
		company.Name, company.Ticker,
		company.Sector,
		period.QuarterLabel(), period.Year,
		sector,
		sector,
		sector,
		period.QuarterLabel(), sector,
		company.Ticker, sector,
	)

	// Mid-month of the quarter's closing month stands in for the call date.
	callDate, err := time.Parse("2006-01-02", fmt.Sprintf("%d-%s-15", period.Year, period.ReportMonth()))
	if err != nil {
		return nil, err
	}

	return &Result{
		Company:  company,
		Period:   period,
		Source:   domain.TranscriptSourceSample,
		Content:  content,
		CallDate: callDate,
	}, nil
}
