package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"podcast-studio/pkg/domain"
	"podcast-studio/pkg/extraction"
	"podcast-studio/pkg/review"
	"podcast-studio/pkg/translation"
)

type sessionResponse struct {
	SessionID string              `json:"session_id"`
	State     domain.SessionState `json:"state"`
}

type extractionView struct {
	*domain.ExtractionResult
	QualityDisplay string `json:"quality_display"`
	CostDisplay    string `json:"cost_display"`
}

func viewOf(res *domain.ExtractionResult) *extractionView {
	if res == nil {
		return nil
	}
	return &extractionView{
		ExtractionResult: res,
		QualityDisplay:   domain.FormatQualityPercent(res.QualityScore),
		CostDisplay:      domain.FormatCostUSD(res.CostUSD),
	}
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	session := s.sessions.Create()
	s.logger.Info("session created", "session_id", session.ID)
	writeJSON(w, http.StatusCreated, sessionResponse{SessionID: session.ID, State: session.State()})
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"session_id":   session.ID,
		"state":        session.State(),
		"extraction":   viewOf(session.Extraction()),
		"translations": session.Translations(),
		"episode_id":   session.EpisodeID(),
	})
}

func (s *Server) discardSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	if err := session.Discard(); err != nil {
		s.writeError(w, err)
		return
	}
	s.sessions.Remove(session.ID)
	s.logger.Info("session discarded", "session_id", session.ID)
	writeJSON(w, http.StatusOK, sessionResponse{SessionID: session.ID, State: session.State()})
}

type extractBody struct {
	SourceType        domain.SourceType        `json:"source_type"`
	SourceName        string                   `json:"source_name"`
	SourceContent     string                   `json:"source_content"`
	FileData          []byte                   `json:"file_data,omitempty"`
	TemplateID        string                   `json:"template_id,omitempty"`
	EpisodeID         string                   `json:"episode_id,omitempty"`
	AIProvider        domain.Provider          `json:"ai_provider"`
	ProcessingOptions domain.ProcessingOptions `json:"processing_options"`
	Multilingual      bool                     `json:"multilingual"`
	SelectedLanguages []string                 `json:"selected_languages,omitempty"`
}

func (s *Server) extract(w http.ResponseWriter, r *http.Request) {
	session, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	var body extractBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	if err := session.BeginExtraction(); err != nil {
		s.writeError(w, err)
		return
	}
	s.broadcastState(session)

	outcome, err := s.extractor.Extract(r.Context(), extraction.Request{
		SourceType:        body.SourceType,
		SourceName:        body.SourceName,
		SourceContent:     body.SourceContent,
		FileData:          body.FileData,
		TemplateID:        body.TemplateID,
		EpisodeID:         body.EpisodeID,
		Provider:          body.AIProvider,
		Options:           body.ProcessingOptions,
		Multilingual:      body.Multilingual,
		SelectedLanguages: body.SelectedLanguages,
		Progress: func(stage extraction.Stage) {
			s.broadcastProgress(session.ID, stage)
		},
	})
	if err != nil {
		session.FailExtraction()
		s.broadcastState(session)
		s.writeError(w, err)
		return
	}

	if body.EpisodeID != "" {
		session.SelectEpisode(body.EpisodeID)
	}
	if err := session.CompleteExtraction(outcome.Extraction, outcome.Translations); err != nil {
		s.writeError(w, err)
		return
	}
	s.broadcastState(session)

	resp := map[string]any{
		"session_id": session.ID,
		"state":      session.State(),
		"extraction": viewOf(outcome.Extraction),
	}
	if outcome.Translations != nil {
		resp["translations"] = outcome.Translations.Translations
		resp["translation_total_cost"] = outcome.Translations.TotalCost
	}
	writeJSON(w, http.StatusOK, resp)
}

type translateBody struct {
	TargetLanguages   []string                 `json:"target_languages"`
	AIProvider        domain.Provider          `json:"ai_provider"`
	ProcessingOptions domain.ProcessingOptions `json:"processing_options"`
}

func (s *Server) translate(w http.ResponseWriter, r *http.Request) {
	session, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	var body translateBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	extractionResult := session.Extraction()
	if extractionResult == nil {
		s.writeError(w, review.ErrNoExtraction)
		return
	}

	// Zero targets is a no-op: no network call, no state change.
	if len(body.TargetLanguages) == 0 {
		writeJSON(w, http.StatusOK, map[string]any{
			"session_id":   session.ID,
			"state":        session.State(),
			"translations": session.Translations(),
		})
		return
	}

	if err := session.BeginTranslation(); err != nil {
		s.writeError(w, err)
		return
	}
	s.broadcastState(session)

	result, err := s.translator.Translate(r.Context(), translation.Request{
		ExtractionID:    extractionResult.ExtractionID,
		TargetLanguages: body.TargetLanguages,
		SourceLanguage:  extractionResult.SourceLanguage,
		Provider:        body.AIProvider,
		Options:         body.ProcessingOptions,
	})
	if err != nil {
		session.FailTranslation()
		s.broadcastState(session)
		s.writeError(w, err)
		return
	}

	if err := session.CompleteTranslation(result); err != nil {
		s.writeError(w, err)
		return
	}
	s.broadcastState(session)

	writeJSON(w, http.StatusOK, map[string]any{
		"session_id":   session.ID,
		"state":        session.State(),
		"translations": result.Translations,
		"total_cost":   result.TotalCost,
		"completed":    result.Completed,
		"failed":       result.Failed,
	})
}

type editFieldBody struct {
	Value domain.FieldValue `json:"value"`
}

func (s *Server) editField(w http.ResponseWriter, r *http.Request) {
	session, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	var body editFieldBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	lang := chi.URLParam(r, "lang")
	field := chi.URLParam(r, "field")
	if err := session.EditField(lang, field, body.Value); err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"session_id":   session.ID,
		"translations": session.Translations(),
	})
}

func (s *Server) saveTranslation(w http.ResponseWriter, r *http.Request) {
	session, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	lang := chi.URLParam(r, "lang")
	if err := session.SaveTranslation(r.Context(), s.store, lang); err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"session_id":   session.ID,
		"language":     lang,
		"translations": session.Translations(),
	})
}

type applyBody struct {
	EpisodeID string `json:"episode_id,omitempty"`
}

func (s *Server) apply(w http.ResponseWriter, r *http.Request) {
	session, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	var body applyBody
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
			return
		}
	}
	if body.EpisodeID != "" {
		session.SelectEpisode(body.EpisodeID)
	}

	report, err := session.ApplyToEpisode(r.Context(), s.store)
	if err != nil && report == nil {
		s.writeError(w, err)
		return
	}
	s.broadcastState(session)

	status := http.StatusOK
	if report != nil && !report.Succeeded() {
		// Partial failure: the report names exactly which step failed.
		status = http.StatusMultiStatus
	}

	resp := map[string]any{
		"session_id": session.ID,
		"state":      session.State(),
		"report":     report,
	}
	if err != nil {
		resp["error"] = err.Error()
	}
	writeJSON(w, status, resp)
}

func (s *Server) listLanguages(w http.ResponseWriter, r *http.Request) {
	langs, err := s.store.ListLanguages(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"languages": langs})
}

func (s *Server) listEpisodes(w http.ResponseWriter, r *http.Request) {
	episodes, err := s.store.ListEpisodes(r.Context(), 50)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"episodes": episodes})
}

func (s *Server) listTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := s.store.ListTemplates(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"templates": templates})
}
