package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"dailynote.app/notes-api/internal/database"
	"dailynote.app/notes-api/internal/llm"
	"dailynote.app/notes-api/internal/models"
	"dailynote.app/notes-api/internal/utils"
)

type errorResponse struct {
	Error       string   `json:"error"`
	Detail      string   `json:"detail,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

var configSuggestions = []string{
	"Set OPENAI_API_KEY in the environment or create a .env file with OPENAI_API_KEY=sk-...",
	"For quick local testing without a key, set MOCK_TRANSLATION=1 in your environment (development only).",
	"If you intended to call GitHub-hosted models, set GITHUB_TOKEN and optionally BASE_URL.",
}

var timeoutSuggestions = []string{
	"The server could not reach the model endpoint. Common causes: local firewall, corporate proxy, ISP filtering, or IPv6 routing problems.",
	"Quick test: curl --ipv4 -v https://api.openai.com/v1/models -H \"Authorization: Bearer $OPENAI_API_KEY\"",
	"If your network requires a proxy, set HTTPS_PROXY/HTTP_PROXY for the server process.",
	"Try from another network (mobile hotspot or VPN) to confirm whether it is a network issue.",
}

func (s *Server) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) ListNotes(c echo.Context) error {
	notes, err := s.store.ListNotes(c.Request().Context())
	if err != nil {
		return s.storeError(c, err)
	}
	return c.JSON(http.StatusOK, toDTOs(notes))
}

func (s *Server) CreateNote(c echo.Context) error {
	raw := bindRaw(c)
	in, err := utils.DecodeCreateNote(raw)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	note, err := s.store.CreateNote(c.Request().Context(), in)
	if err != nil {
		return s.storeError(c, err)
	}
	s.log.Info("note created", "id", note.ID)
	return c.JSON(http.StatusCreated, note.ToDTO())
}

func (s *Server) GetNote(c echo.Context) error {
	id, err := parseNoteID(c)
	if err != nil {
		return c.JSON(http.StatusNotFound, errorResponse{Error: "note not found"})
	}
	note, err := s.store.GetNote(c.Request().Context(), id)
	if err != nil {
		return s.storeError(c, err)
	}
	return c.JSON(http.StatusOK, note.ToDTO())
}

func (s *Server) UpdateNote(c echo.Context) error {
	id, err := parseNoteID(c)
	if err != nil {
		return c.JSON(http.StatusNotFound, errorResponse{Error: "note not found"})
	}

	raw := bindRaw(c)
	in, err := utils.DecodeUpdateNote(id, raw)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	note, err := s.store.UpdateNote(c.Request().Context(), in)
	if err != nil {
		return s.storeError(c, err)
	}
	s.log.Info("note updated", "id", id)
	return c.JSON(http.StatusOK, note.ToDTO())
}

func (s *Server) DeleteNote(c echo.Context) error {
	id, err := parseNoteID(c)
	if err != nil {
		return c.JSON(http.StatusNotFound, errorResponse{Error: "note not found"})
	}
	if err := s.store.DeleteNote(c.Request().Context(), id); err != nil {
		return s.storeError(c, err)
	}
	s.log.Info("note deleted", "id", id)
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) SearchNotes(c echo.Context) error {
	query := c.QueryParam("q")
	notes, err := s.store.SearchNotes(c.Request().Context(), query)
	if err != nil {
		return s.storeError(c, err)
	}
	return c.JSON(http.StatusOK, toDTOs(notes))
}

func (s *Server) ReorderNotes(c echo.Context) error {
	raw := bindRaw(c)
	ids, err := utils.DecodeReorder(raw)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}
	if err := s.store.ReorderNotes(c.Request().Context(), ids); err != nil {
		return s.storeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// TranslateText translates arbitrary text supplied in the request body.
func (s *Server) TranslateText(c echo.Context) error {
	raw := bindRaw(c)
	content, contentOK := rawString(raw, "content")
	target, targetOK := rawString(raw, "target_lang")
	if !contentOK || !targetOK {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "content and target_lang are required"})
	}
	return s.translate(c, content, target)
}

// TranslateNote translates the stored content of one note.
func (s *Server) TranslateNote(c echo.Context) error {
	id, err := parseNoteID(c)
	if err != nil {
		return c.JSON(http.StatusNotFound, errorResponse{Error: "note not found"})
	}

	raw := bindRaw(c)
	target, ok := rawString(raw, "target_lang")
	if !ok {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "target_lang is required"})
	}

	note, err := s.store.GetNote(c.Request().Context(), id)
	if err != nil {
		return s.storeError(c, err)
	}
	return s.translate(c, note.Content, target)
}

// translate maps translation failures onto the error taxonomy: missing
// credentials 500, timeout/connect 504, anything else upstream 502, and an
// empty result is reported as a failure rather than success.
func (s *Server) translate(c echo.Context, text, targetLang string) error {
	translated, err := s.translator.Translate(c.Request().Context(), text, targetLang)
	if err != nil {
		switch {
		case errors.Is(err, llm.ErrNotConfigured):
			return c.JSON(http.StatusInternalServerError, errorResponse{
				Error:       "translation call failed: no API key configured",
				Detail:      err.Error(),
				Suggestions: configSuggestions,
			})
		case llm.IsTimeout(err):
			s.log.Error("translation timed out", "error", err)
			return c.JSON(http.StatusGatewayTimeout, errorResponse{
				Error:       "translation call failed: request timed out",
				Detail:      err.Error(),
				Suggestions: timeoutSuggestions,
			})
		default:
			s.log.Error("translation failed", "error", err)
			return c.JSON(http.StatusBadGateway, errorResponse{
				Error:  fmt.Sprintf("translation call failed: %v", err),
				Detail: err.Error(),
			})
		}
	}
	if translated == "" {
		return c.JSON(http.StatusBadGateway, errorResponse{Error: "No translation received from model"})
	}
	return c.JSON(http.StatusOK, map[string]string{"translated": translated})
}

func (s *Server) storeError(c echo.Context, err error) error {
	if errors.Is(err, database.ErrNoteNotFound) {
		return c.JSON(http.StatusNotFound, errorResponse{Error: "note not found"})
	}
	s.log.Error("store operation failed", "error", err)
	return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
}

// bindRaw decodes the body into raw JSON keys; malformed or absent bodies
// come back empty and fail the required-field checks downstream.
func bindRaw(c echo.Context) map[string]json.RawMessage {
	raw := map[string]json.RawMessage{}
	if err := json.NewDecoder(c.Request().Body).Decode(&raw); err != nil {
		return map[string]json.RawMessage{}
	}
	return raw
}

func rawString(raw map[string]json.RawMessage, key string) (string, bool) {
	b, present := raw[key]
	if !present {
		return "", false
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return "", false
	}
	return s, true
}

func parseNoteID(c echo.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}

func toDTOs(notes []models.Note) []models.NoteDTO {
	dtos := make([]models.NoteDTO, 0, len(notes))
	for i := range notes {
		dtos = append(dtos, notes[i].ToDTO())
	}
	return dtos
}
