package handlers

import (
	"net/http"

	"github.com/finsight-ai/finsight/internal/api"
	"github.com/finsight-ai/finsight/internal/domain"
)

type CompanyHandler struct{}

func NewCompanyHandler() *CompanyHandler {
	return &CompanyHandler{}
}

type CompanyResponse struct {
	Ticker string `json:"ticker"`
	Name   string `json:"name"`
	Sector string `json:"sector"`
	CIK    string `json:"cik,omitempty"`
}

// List handles GET /v1/companies
func (h *CompanyHandler) List(w http.ResponseWriter, r *http.Request) {
	companies := domain.AllCompanies()
	out := make([]CompanyResponse, len(companies))
	for i, c := range companies {
		out[i] = CompanyResponse{
			Ticker: c.Ticker,
			Name:   c.Name,
			Sector: string(c.Sector),
			CIK:    c.CIK,
		}
	}
	api.Success(w, http.StatusOK, out)
}
