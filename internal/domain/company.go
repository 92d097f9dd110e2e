package domain

import (
	"sort"
	"strings"
)

// Sector classifies a tracked company.
type Sector string

const (
	SectorAIHardware      Sector = "AI Hardware"
	SectorAISoftware      Sector = "AI Software"
	SectorAIAutomotive    Sector = "AI/Automotive"
	SectorAICloud         Sector = "AI/Cloud"
	SectorAIDatabase      Sector = "AI/Database"
	SectorQuantum         Sector = "Quantum Computing"
	SectorQuantumSecurity Sector = "Quantum Security"
	SectorQuantumETF      Sector = "Quantum ETF"
	SectorQuantumMaterial Sector = "Quantum Materials"
)

// Company is a tracked public company. CIK is the SEC EDGAR identifier,
// zero-padded to ten digits; empty when no filing lookup is available.
type Company struct {
	Ticker string
	Name   string
	Sector Sector
	CIK    string
}

// companies is the fixed coverage universe: AI plus quantum-computing names.
var companies = map[string]Company{
	"NVDA":  {Ticker: "NVDA", Name: "NVIDIA Corporation", Sector: SectorAIHardware, CIK: "0001045810"},
	"MSFT":  {Ticker: "MSFT", Name: "Microsoft Corporation", Sector: SectorAISoftware, CIK: "0000789019"},
	"GOOGL": {Ticker: "GOOGL", Name: "Alphabet Inc.", Sector: SectorAISoftware, CIK: "0001652044"},
	"META":  {Ticker: "META", Name: "Meta Platforms Inc.", Sector: SectorAISoftware, CIK: "0001326801"},
	"TSLA":  {Ticker: "TSLA", Name: "Tesla Inc.", Sector: SectorAIAutomotive, CIK: "0001318605"},
	"AMZN":  {Ticker: "AMZN", Name: "Amazon.com Inc.", Sector: SectorAICloud, CIK: "0001018724"},
	"CRM":   {Ticker: "CRM", Name: "Salesforce Inc.", Sector: SectorAISoftware, CIK: "0001108524"},
	"ORCL":  {Ticker: "ORCL", Name: "Oracle Corporation", Sector: SectorAIDatabase, CIK: "0001341439"},
	"AMD":   {Ticker: "AMD", Name: "Advanced Micro Devices", Sector: SectorAIHardware, CIK: "0000002488"},
	"INTC":  {Ticker: "INTC", Name: "Intel Corporation", Sector: SectorAIHardware, CIK: "0000050863"},
	"IBM":   {Ticker: "IBM", Name: "International Business Machines", Sector: SectorQuantum, CIK: "0000051143"},
	"IONQ":  {Ticker: "IONQ", Name: "IonQ Inc.", Sector: SectorQuantum, CIK: "0001824920"},
	"RGTI":  {Ticker: "RGTI", Name: "Rigetti Computing Inc.", Sector: SectorQuantum, CIK: "0001838359"},
	"QBTS":  {Ticker: "QBTS", Name: "D-Wave Quantum Inc.", Sector: SectorQuantum, CIK: "0001907982"},
	"QUBT":  {Ticker: "QUBT", Name: "Quantum Computing Inc.", Sector: SectorQuantum, CIK: "0001758009"},
	"ARQQ":  {Ticker: "ARQQ", Name: "Arqit Quantum Inc.", Sector: SectorQuantumSecurity, CIK: "0001859690"},
	"QTUM":  {Ticker: "QTUM", Name: "Defiance Quantum ETF", Sector: SectorQuantumETF},
	"ATOM":  {Ticker: "ATOM", Name: "Atomera Incorporated", Sector: SectorQuantumMaterial, CIK: "0001420520"},
}

// LookupCompany returns the company for a ticker, case-insensitive.
func LookupCompany(ticker string) (Company, bool) {
	c, ok := companies[strings.ToUpper(strings.TrimSpace(ticker))]
	return c, ok
}

// IsValidTicker reports whether the ticker is in the coverage universe.
func IsValidTicker(ticker string) bool {
	_, ok := LookupCompany(ticker)
	return ok
}

// AllCompanies returns the coverage universe sorted by ticker.
func AllCompanies() []Company {
	out := make([]Company, 0, len(companies))
	for _, c := range companies {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ticker < out[j].Ticker })
	return out
}

// AllTickers returns the sorted ticker list.
func AllTickers() []string {
	all := AllCompanies()
	out := make([]string, len(all))
	for i, c := range all {
		out[i] = c.Ticker
	}
	return out
}
