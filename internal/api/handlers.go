package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"newsradar/internal/domain"
	"newsradar/internal/usecase"
)

type searchRequest struct {
	Query string `json:"query"`
	Num   int    `json:"num"`
}

type semanticSearchRequest struct {
	Query              string   `json:"query"`
	Num                int      `json:"num"`
	MinSimilarity      *float64 `json:"min_similarity"`
	ChunkSize          int      `json:"chunk_size"`
	EarlyStopThreshold int      `json:"early_stop_threshold"`
	Strategy           string   `json:"strategy"`
}

type searchResponse struct {
	Query    string           `json:"query"`
	Count    int              `json:"count"`
	Articles []domain.Article `json:"articles"`
}

// scoredArticle flattens the article with its similarity score for the
// wire format.
type scoredArticle struct {
	domain.Article
	SimilarityScore float64 `json:"similarity_score"`
}

type semanticSearchResponse struct {
	Query   string          `json:"query"`
	Count   int             `json:"count"`
	Results []scoredArticle `json:"results"`
}

type healthResponse struct {
	Status         string `json:"status"`
	SemanticSearch bool   `json:"semantic_search"`
	Analysis       bool   `json:"analysis"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:         "ok",
		SemanticSearch: s.search.SemanticEnabled(),
		Analysis:       s.analysis != nil && s.analysis.Enabled(),
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	query, err := domain.ValidateQuery(req.Query)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	articles, err := s.search.SearchKeyword(r.Context(), query, req.Num)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	if articles == nil {
		articles = []domain.Article{}
	}
	writeJSON(w, http.StatusOK, searchResponse{Query: query, Count: len(articles), Articles: articles})
}

func (s *Server) handleSemanticSearch(w http.ResponseWriter, r *http.Request) {
	var req semanticSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	query, err := domain.ValidateQuery(req.Query)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	scored, err := s.search.SearchSemantic(r.Context(), usecase.SemanticRequest{
		Query:         query,
		Num:           req.Num,
		MinSimilarity: req.MinSimilarity,
		ChunkSize:     req.ChunkSize,
		EarlyStop:     req.EarlyStopThreshold,
		Strategy:      req.Strategy,
	})
	if err != nil {
		s.writeFailure(w, err)
		return
	}

	results := make([]scoredArticle, len(scored))
	for i, sa := range scored {
		results[i] = scoredArticle{Article: sa.Article, SimilarityScore: sa.Score}
	}
	writeJSON(w, http.StatusOK, semanticSearchResponse{Query: query, Count: len(results), Results: results})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	query, err := domain.ValidateQuery(req.Query)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if s.analysis == nil {
		writeError(w, http.StatusServiceUnavailable, usecase.ErrAnalysisUnavailable.Error())
		return
	}

	result, err := s.analysis.Analyze(r.Context(), query, req.Num)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// writeFailure maps usecase errors onto status codes: disabled
// subsystems are 503, everything else 500. Validation never reaches
// here; handlers check it before calling into the usecase.
func (s *Server) writeFailure(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, usecase.ErrSemanticUnavailable), errors.Is(err, usecase.ErrAnalysisUnavailable):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		s.log.WithError(err).Error("request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
