package server

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"isthatstilltrue/internal/core"
	"isthatstilltrue/internal/memories"
)

// GenerateFactsRequest is the body of POST /api/generate-facts.
type GenerateFactsRequest struct {
	Country        string `json:"country"`
	GraduationYear int    `json:"graduationYear"`
	Language       string `json:"language"`
}

// handleGenerateFacts handles POST /api/generate-facts
func (s *Server) handleGenerateFacts(w http.ResponseWriter, r *http.Request) {
	var req GenerateFactsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Country == "" || req.GraduationYear == 0 {
		s.respondError(w, http.StatusBadRequest, "country and graduationYear are required")
		return
	}
	if req.Language == "" {
		req.Language = "en"
	}
	if req.Language != "en" && req.Language != "de" {
		s.respondError(w, http.StatusBadRequest, "language must be \"en\" or \"de\"")
		return
	}

	result, err := s.generator.Generate(r.Context(), req.Country, req.GraduationYear, req.Language)
	if err != nil {
		s.log.Error("Fact generation failed", "error", err, "country", req.Country, "year", req.GraduationYear)
		s.respondError(w, http.StatusInternalServerError, "fact generation failed")
		return
	}

	s.respondJSON(w, http.StatusOK, result)
}

// CheckFactRequest is the body of POST /api/check-fact.
type CheckFactRequest struct {
	Statement string `json:"statement"`
}

// handleCheckFact handles POST /api/check-fact
func (s *Server) handleCheckFact(w http.ResponseWriter, r *http.Request) {
	var req CheckFactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Statement) == "" {
		s.respondError(w, http.StatusBadRequest, "statement is required")
		return
	}

	verdict, err := s.checker.Check(r.Context(), req.Statement)
	if err != nil {
		s.log.Error("Fact check failed", "error", err)
		s.respondError(w, http.StatusInternalServerError, "fact check failed")
		return
	}

	s.respondJSON(w, http.StatusOK, verdict)
}

// handleResearchSchoolMemories handles POST /api/research-school-memories
func (s *Server) handleResearchSchoolMemories(w http.ResponseWriter, r *http.Request) {
	var req memories.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.SchoolName == "" || req.City == "" || req.GraduationYear == 0 {
		s.respondError(w, http.StatusBadRequest, "schoolName, city, and graduationYear are required")
		return
	}

	result, err := s.researcher.Research(r.Context(), req)
	if err != nil {
		s.log.Error("School research failed", "error", err, "school", req.SchoolName)
		s.respondError(w, http.StatusInternalServerError, "school research failed")
		return
	}

	s.respondJSON(w, http.StatusOK, result)
}

// ReportFactRequest is the body of POST /api/report-fact.
type ReportFactRequest struct {
	FactHash       string `json:"factHash"`
	Country        string `json:"country"`
	GraduationYear int    `json:"graduationYear"`
	Reason         string `json:"reason"`
	Fingerprint    string `json:"fingerprint"`
}

// handleReportFact handles POST /api/report-fact. Reports are accepted
// asynchronously; duplicate reports from the same fingerprint are ignored.
func (s *Server) handleReportFact(w http.ResponseWriter, r *http.Request) {
	var req ReportFactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.FactHash == "" || req.Reason == "" {
		s.respondError(w, http.StatusBadRequest, "factHash and reason are required")
		return
	}
	if req.Fingerprint == "" {
		req.Fingerprint = anonymousFingerprint(r)
	}

	report := &core.FactReport{
		FactHash:       req.FactHash,
		Country:        req.Country,
		GraduationYear: req.GraduationYear,
		Reason:         req.Reason,
		Fingerprint:    req.Fingerprint,
	}
	if err := s.db.Reports().Create(r.Context(), report); err != nil {
		s.log.Error("Failed to store fact report", "error", err, "fact_hash", req.FactHash)
		s.respondError(w, http.StatusInternalServerError, "failed to store report")
		return
	}

	count, err := s.db.Reports().CountForFact(r.Context(), req.FactHash)
	if err != nil {
		s.log.Warn("Failed to count fact reports", "error", err.Error())
	}

	s.respondJSON(w, http.StatusAccepted, map[string]interface{}{
		"status":  "accepted",
		"reports": count,
	})
}

// anonymousFingerprint derives a stable, non-identifying fingerprint from
// the client address and user agent.
func anonymousFingerprint(r *http.Request) string {
	sum := sha256.Sum256([]byte(r.RemoteAddr + "|" + r.UserAgent()))
	return hex.EncodeToString(sum[:8])
}
