package handler

import (
	"time"

	"github.com/rahmatrdn/go-query-insight/entity"
	"github.com/rahmatrdn/go-query-insight/internal/usecase"
)

type errorResponse struct {
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

type connectionResponse struct {
	Data *entity.CHConnection `json:"data"`
}

type connectionListResponse struct {
	Data []*entity.CHConnection `json:"data"`
}

type statusResponse struct {
	Status string `json:"status"`
}

type slowQueryResponse struct {
	Data        []*entity.SlowQueryReport `json:"data"`
	LastRefresh *time.Time                `json:"last_refresh"`
}

type analyzeRequest struct {
	Records []entity.RawQueryRecord `json:"records"`
	Top     int                     `json:"top"`
}

type analyzeResponse struct {
	Data *usecase.AnalysisResult `json:"data"`
}
