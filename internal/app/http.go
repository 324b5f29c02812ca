package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"juridico/api/internal/auth"
	"juridico/api/internal/collection"
	"juridico/api/internal/export"
	"juridico/api/internal/search"
	"juridico/api/internal/store"
)

type HTTPServer struct {
	service    *Service
	corsOrigin string
}

func NewHTTPServer(service *Service, corsOrigin string) *HTTPServer {
	return &HTTPServer{service: service, corsOrigin: corsOrigin}
}

func (s *HTTPServer) Handler() http.Handler {
	return s.withMiddleware(http.HandlerFunc(s.handle))
}

func (s *HTTPServer) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		writeJSON(w, http.StatusNoContent, map[string]any{})
		return
	}

	if (r.Method == http.MethodGet || r.Method == http.MethodHead) && r.URL.Path == "/api/health" {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	if (r.Method == http.MethodGet || r.Method == http.MethodHead) && r.URL.Path == "/api/ready" {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		status := "ready"
		statusCode := http.StatusOK
		checks := map[string]any{
			"database": map[string]any{"status": "ok"},
		}

		if err := s.service.Ping(ctx); err != nil {
			status = "not_ready"
			statusCode = http.StatusServiceUnavailable
			checks["database"] = map[string]any{
				"status": "error",
				"error":  err.Error(),
			}
		}

		writeJSON(w, statusCode, map[string]any{
			"ok":     status == "ready",
			"status": status,
			"checks": checks,
		})
		return
	}

	// Everything below requires the frontend's service key.
	if strings.TrimSpace(r.Header.Get("X-API-Key")) != s.service.APIKey() {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/api/auth/login" {
		var body struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		session, err := s.service.Login(r.Context(), body.Email, body.Password)
		if err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"token":        session.Token,
			"refreshToken": session.RefreshToken,
			"profileId":    session.ProfileID,
			"displayName":  session.DisplayName,
			"email":        session.Email,
			"expiresAt":    session.ExpiresAt.Unix(),
		})
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/api/auth/refresh" {
		var body struct {
			RefreshToken string `json:"refreshToken"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		session, err := s.service.Refresh(r.Context(), body.RefreshToken)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Refresh token invalid", nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"token":        session.Token,
			"refreshToken": session.RefreshToken,
			"displayName":  session.DisplayName,
		})
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/api/auth/logout" {
		var body struct {
			RefreshToken string `json:"refreshToken"`
		}
		_ = decodeBody(r, &body)
		_ = s.service.Logout(r.Context(), body.RefreshToken)
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/api/session" {
		token := bearerToken(r)
		if token == "" {
			writeJSON(w, http.StatusOK, map[string]any{"authenticated": false})
			return
		}
		session, err := s.service.SessionFromToken(r.Context(), token)
		if err != nil {
			writeJSON(w, http.StatusOK, map[string]any{"authenticated": false})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"authenticated": true,
			"profileId":     session.ProfileID,
			"displayName":   session.DisplayName,
			"email":         session.Email,
		})
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/api/notifications" {
		writeJSON(w, http.StatusOK, map[string]any{"notifications": s.service.Notifications()})
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/api/storage/status" {
		writeJSON(w, http.StatusOK, s.service.StorageStatus())
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/api/storage/select-directory" {
		var body struct {
			Path string `json:"path"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		s.service.SelectDirectory(r.Context(), body.Path)
		writeJSON(w, http.StatusOK, s.service.StorageStatus())
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/api/storage/save" {
		if err := s.service.SaveAll(r.Context()); err != nil {
			writeError(w, http.StatusInternalServerError, "SAVE_FAILED", "Erro ao salvar os dados", nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/api/dashboard" {
		writeJSON(w, http.StatusOK, s.service.Dashboard())
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/api/search" {
		q := strings.TrimSpace(r.URL.Query().Get("q"))
		limit, ok := queryInt(w, r, "limit", 20)
		if !ok {
			return
		}
		offset, ok := queryInt(w, r, "offset", 0)
		if !ok {
			return
		}
		payload := s.service.Search(search.Query{
			Text:       q,
			FilterType: search.ResultType(strings.TrimSpace(r.URL.Query().Get("type"))),
			Limit:      limit,
			Offset:     offset,
		})
		writeJSON(w, http.StatusOK, payload)
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/api/reports/export" {
		var body struct {
			Report string `json:"report"`
			Format string `json:"format"`
			Month  string `json:"month"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		format := export.Format(body.Format)
		if format != export.FormatPDF && format != export.FormatHTML && format != "" {
			writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "format deve ser 'pdf' ou 'html'", nil)
			return
		}
		result, err := s.service.ExportReport(export.Request{
			Report: export.Report(body.Report),
			Format: format,
			Month:  body.Month,
		})
		if err != nil {
			if errors.Is(err, export.ErrUnknownReport) {
				writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "report deve ser 'financial' ou 'processes'", nil)
				return
			}
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return
		}
		w.Header().Set("Content-Disposition", "attachment; filename=\""+result.Filename+"\"")
		w.Header().Set("Content-Type", result.MimeType)
		w.Write(result.Data)
		return
	}

	if strings.HasPrefix(r.URL.Path, "/api/chat/") {
		s.handleChat(w, r)
		return
	}

	parts := splitPath(r.URL.Path)
	if len(parts) >= 2 && parts[0] == "api" {
		s.handleCollections(w, r, parts[1:])
		return
	}

	writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
}

// handleChat covers the realtime conversation bridge. These routes need a
// signed-in profile: the conversation pair is (session profile, contact).
func (s *HTTPServer) handleChat(w http.ResponseWriter, r *http.Request) {
	session, ok := s.requireSession(w, r)
	if !ok {
		return
	}

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/api/chat/contacts":
		contacts, err := s.service.Contacts(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "SERVER_ERROR", "Could not list contacts", nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"contacts": contacts})

	case r.Method == http.MethodPost && r.URL.Path == "/api/chat/open":
		var body struct {
			ContactID string `json:"contactId"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		history, err := s.service.OpenConversation(r.Context(), session, body.ContactID)
		if err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"messages": history})

	case r.Method == http.MethodGet && r.URL.Path == "/api/chat/messages":
		writeJSON(w, http.StatusOK, map[string]any{"messages": s.service.ConversationMessages()})

	case r.Method == http.MethodPost && r.URL.Path == "/api/chat/send":
		var body struct {
			Content string `json:"content"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		message, err := s.service.SendMessage(r.Context(), body.Content)
		if err != nil {
			status, code, message2, details := mapError(err)
			writeError(w, status, code, message2, details)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"message": message})

	default:
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
	}
}

// handleCollections routes the per-collection CRUD surface. parts holds the
// path segments after /api.
func (s *HTTPServer) handleCollections(w http.ResponseWriter, r *http.Request, parts []string) {
	name := parts[0]

	if len(parts) == 1 {
		switch {
		case name == "clients" && r.Method == http.MethodGet:
			writeJSON(w, http.StatusOK, map[string]any{"clients": s.service.ListClients()})
		case name == "clients" && r.Method == http.MethodPost:
			var body collection.Client
			s.create(w, r, &body, func() (any, error) { return s.service.CreateClient(r.Context(), body) })
		case name == "processes" && r.Method == http.MethodGet:
			writeJSON(w, http.StatusOK, map[string]any{"processes": s.service.ListProcesses()})
		case name == "processes" && r.Method == http.MethodPost:
			var body collection.Process
			s.create(w, r, &body, func() (any, error) { return s.service.CreateProcess(r.Context(), body) })
		case name == "lawyers" && r.Method == http.MethodGet:
			writeJSON(w, http.StatusOK, map[string]any{"lawyers": s.service.ListLawyers()})
		case name == "lawyers" && r.Method == http.MethodPost:
			var body collection.Lawyer
			s.create(w, r, &body, func() (any, error) { return s.service.CreateLawyer(r.Context(), body) })
		case name == "documents" && r.Method == http.MethodGet:
			writeJSON(w, http.StatusOK, map[string]any{"documents": s.service.ListDocuments()})
		case name == "documents" && r.Method == http.MethodPost:
			var body collection.DocumentItem
			s.create(w, r, &body, func() (any, error) { return s.service.CreateDocument(r.Context(), body) })
		case name == "events" && r.Method == http.MethodGet:
			writeJSON(w, http.StatusOK, map[string]any{"events": s.service.ListEvents()})
		case name == "events" && r.Method == http.MethodPost:
			var body collection.Event
			s.create(w, r, &body, func() (any, error) { return s.service.CreateEvent(r.Context(), body) })
		case name == "financials" && r.Method == http.MethodGet:
			month := strings.TrimSpace(r.URL.Query().Get("month"))
			writeJSON(w, http.StatusOK, map[string]any{"financials": s.service.ListFinancials(month)})
		case name == "financials" && r.Method == http.MethodPost:
			var body CreateFinancialInput
			s.create(w, r, &body, func() (any, error) {
				items, err := s.service.CreateFinancial(r.Context(), body)
				return map[string]any{"financials": items}, err
			})
		case name == "profile" && r.Method == http.MethodGet:
			writeJSON(w, http.StatusOK, s.service.GetUserProfile())
		case name == "profile" && r.Method == http.MethodPut:
			var body collection.Profile
			s.create(w, r, &body, func() (any, error) { return s.service.UpdateUserProfile(r.Context(), body) })
		case name == "portal-accesses" && r.Method == http.MethodGet:
			writeJSON(w, http.StatusOK, map[string]any{"accesses": s.service.ListPortalAccesses()})
		case name == "portal-accesses" && r.Method == http.MethodPost:
			var body struct {
				ClientID  int      `json:"clientId"`
				Processes []string `json:"processes"`
			}
			s.create(w, r, &body, func() (any, error) {
				return s.service.GeneratePortalAccess(r.Context(), body.ClientID, body.Processes)
			})
		default:
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
		}
		return
	}

	id, err := strconv.Atoi(parts[1])
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "id must be an integer", nil)
		return
	}

	if len(parts) == 3 && name == "financials" && parts[2] == "toggle-paid" && r.Method == http.MethodPost {
		item, err := s.service.TogglePaid(r.Context(), id)
		if err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return
		}
		writeJSON(w, http.StatusOK, item)
		return
	}

	if len(parts) != 2 {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
		return
	}

	switch {
	case name == "clients" && r.Method == http.MethodPut:
		var body collection.Client
		s.create(w, r, &body, func() (any, error) { return s.service.UpdateClient(r.Context(), id, body) })
	case name == "clients" && r.Method == http.MethodDelete:
		s.remove(w, func() error { return s.service.DeleteClient(r.Context(), id) })
	case name == "processes" && r.Method == http.MethodPut:
		var body collection.Process
		s.create(w, r, &body, func() (any, error) { return s.service.UpdateProcess(r.Context(), id, body) })
	case name == "processes" && r.Method == http.MethodDelete:
		s.remove(w, func() error { return s.service.DeleteProcess(r.Context(), id) })
	case name == "lawyers" && r.Method == http.MethodPut:
		var body collection.Lawyer
		s.create(w, r, &body, func() (any, error) { return s.service.UpdateLawyer(r.Context(), id, body) })
	case name == "lawyers" && r.Method == http.MethodDelete:
		s.remove(w, func() error { return s.service.DeleteLawyer(r.Context(), id) })
	case name == "documents" && r.Method == http.MethodDelete:
		s.remove(w, func() error { return s.service.DeleteDocument(r.Context(), id) })
	case name == "events" && r.Method == http.MethodPut:
		var body collection.Event
		s.create(w, r, &body, func() (any, error) { return s.service.UpdateEvent(r.Context(), id, body) })
	case name == "events" && r.Method == http.MethodDelete:
		s.remove(w, func() error { return s.service.DeleteEvent(r.Context(), id) })
	case name == "financials" && r.Method == http.MethodPut:
		var body CreateFinancialInput
		s.create(w, r, &body, func() (any, error) { return s.service.UpdateFinancial(r.Context(), id, body) })
	case name == "financials" && r.Method == http.MethodDelete:
		s.remove(w, func() error { return s.service.DeleteFinancial(r.Context(), id) })
	case name == "portal-accesses" && r.Method == http.MethodDelete:
		s.remove(w, func() error { return s.service.RevokePortalAccess(r.Context(), id) })
	default:
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
	}
}

// create decodes the body into target and runs op, writing the result or the
// mapped error.
func (s *HTTPServer) create(w http.ResponseWriter, r *http.Request, target any, op func() (any, error)) {
	if err := decodeBody(r, target); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
		return
	}
	payload, err := op()
	if err != nil {
		status, code, message, details := mapError(err)
		writeError(w, status, code, message, details)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *HTTPServer) remove(w http.ResponseWriter, op func() error) {
	if err := op(); err != nil {
		status, code, message, details := mapError(err)
		writeError(w, status, code, message, details)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *HTTPServer) requireSession(w http.ResponseWriter, r *http.Request) (Session, bool) {
	token := bearerToken(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
		return Session{}, false
	}
	session, err := s.service.SessionFromToken(r.Context(), token)
	if err != nil {
		if errors.Is(err, auth.ErrExpiredToken) || errors.Is(err, auth.ErrInvalidToken) {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
			return Session{}, false
		}
		writeError(w, http.StatusInternalServerError, "SERVER_ERROR", "Session lookup failed", nil)
		return Session{}, false
	}
	return session, true
}

func queryInt(w http.ResponseWriter, r *http.Request, name string, fallback int) (int, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return fallback, true
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", name+" must be an integer", nil)
		return 0, false
	}
	return parsed, true
}

func (s *HTTPServer) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = randomRequestID()
		}
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		started := time.Now()
		writer := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		setCORSHeaders(writer.Header(), s.corsOrigin)
		writer.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(writer, r)

		log.Printf(`{"request_id":"%s","method":"%s","path":"%s","status":%d,"duration_ms":%d}`,
			requestID,
			r.Method,
			r.URL.Path,
			writer.status,
			time.Since(started).Milliseconds(),
		)
	})
}

type requestIDKey struct{}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func randomRequestID() string {
	buf := make([]byte, 8)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

func setCORSHeaders(header http.Header, corsOrigin string) {
	header.Set("Access-Control-Allow-Origin", corsOrigin)
	header.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID, X-API-Key")
	header.Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
	header.Set("Cache-Control", "no-store")
	header.Set("Content-Type", "application/json")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string, details any) {
	response := map[string]any{
		"code":  code,
		"error": message,
	}
	if details != nil {
		response["details"] = details
	}
	writeJSON(w, status, response)
}

func decodeBody(r *http.Request, target any) error {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(target); err != nil {
		if errors.Is(err, http.ErrBodyReadAfterClose) {
			return nil
		}
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

func mapError(err error) (status int, code, message string, details any) {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Status, domainErr.Code, domainErr.Message, domainErr.Details
	}
	if errors.Is(err, store.ErrNotFound) {
		return http.StatusNotFound, "NOT_FOUND", "Not found", nil
	}
	if errors.Is(err, auth.ErrInvalidToken) || errors.Is(err, auth.ErrExpiredToken) {
		return http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil
	}
	return http.StatusInternalServerError, "SERVER_ERROR", "Server error", nil
}
