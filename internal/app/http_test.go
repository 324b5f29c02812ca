package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"juridico/api/internal/collection"
	"juridico/api/internal/notify"
)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	service, _ := newTestService(t)
	return NewHTTPServer(service, "*").Handler()
}

func doRequest(t *testing.T, handler http.Handler, method, path, body string, withKey bool) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if withKey {
		req.Header.Set("X-API-Key", "test-key")
	}
	return serve(handler, req)
}

func serve(handler http.Handler, req *http.Request) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)
	return recorder
}

func decodeMap(t *testing.T, recorder *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.NewDecoder(recorder.Body).Decode(&payload); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return payload
}

func TestHealthNeedsNoKey(t *testing.T) {
	handler := newTestHandler(t)

	recorder := doRequest(t, handler, http.MethodGet, "/api/health", "", false)
	if recorder.Code != http.StatusOK {
		t.Fatalf("health returned %d", recorder.Code)
	}

	recorder = doRequest(t, handler, http.MethodGet, "/api/ready", "", false)
	if recorder.Code != http.StatusOK {
		t.Fatalf("ready returned %d", recorder.Code)
	}
}

func TestAPIKeyGate(t *testing.T) {
	handler := newTestHandler(t)

	recorder := doRequest(t, handler, http.MethodGet, "/api/clients", "", false)
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("missing key must yield 401, got %d", recorder.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/clients", nil)
	req.Header.Set("X-API-Key", "wrong-key")
	recorder = serve(handler, req)
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("wrong key must yield 401, got %d", recorder.Code)
	}

	recorder = doRequest(t, handler, http.MethodGet, "/api/clients", "", true)
	if recorder.Code != http.StatusOK {
		t.Fatalf("valid key returned %d: %s", recorder.Code, recorder.Body.String())
	}
}

func TestOptionsPreflightBypassesKey(t *testing.T) {
	handler := newTestHandler(t)

	recorder := doRequest(t, handler, http.MethodOptions, "/api/clients", "", false)
	if recorder.Code != http.StatusNoContent {
		t.Fatalf("preflight returned %d", recorder.Code)
	}
	if recorder.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS origin header")
	}
}

func TestClientLifecycleOverHTTP(t *testing.T) {
	handler := newTestHandler(t)

	recorder := doRequest(t, handler, http.MethodPost, "/api/clients",
		`{"name":"Construtora Alfa","type":"company","email":"alfa@example.com"}`, true)
	if recorder.Code != http.StatusOK {
		t.Fatalf("create returned %d: %s", recorder.Code, recorder.Body.String())
	}
	var created collection.Client
	if err := json.NewDecoder(recorder.Body).Decode(&created); err != nil {
		t.Fatal(err)
	}
	if created.ID == 0 {
		t.Fatal("created client has no id")
	}
	if created.Status != "ativo" {
		t.Fatalf("status should default to ativo, got %q", created.Status)
	}

	recorder = doRequest(t, handler, http.MethodPut, "/api/clients/"+strconv.Itoa(created.ID),
		`{"name":"Construtora Alfa Ltda.","type":"company"}`, true)
	if recorder.Code != http.StatusOK {
		t.Fatalf("update returned %d: %s", recorder.Code, recorder.Body.String())
	}

	recorder = doRequest(t, handler, http.MethodDelete, "/api/clients/"+strconv.Itoa(created.ID), "", true)
	if recorder.Code != http.StatusOK {
		t.Fatalf("delete returned %d: %s", recorder.Code, recorder.Body.String())
	}

	recorder = doRequest(t, handler, http.MethodDelete, "/api/clients/"+strconv.Itoa(created.ID), "", true)
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("second delete must yield 404, got %d", recorder.Code)
	}
}

func TestCreateClientValidation(t *testing.T) {
	handler := newTestHandler(t)

	recorder := doRequest(t, handler, http.MethodPost, "/api/clients", `{"type":"company"}`, true)
	if recorder.Code != http.StatusUnprocessableEntity {
		t.Fatalf("nameless client must yield 422, got %d", recorder.Code)
	}
	payload := decodeMap(t, recorder)
	if payload["code"] != "VALIDATION_ERROR" {
		t.Errorf("unexpected error code %v", payload["code"])
	}
}

func TestTogglePaidRoute(t *testing.T) {
	handler := newTestHandler(t)

	recorder := doRequest(t, handler, http.MethodPost, "/api/financials",
		`{"type":"expense","description":"Taxa","value":80,"dueDate":"2026-03-25"}`, true)
	if recorder.Code != http.StatusOK {
		t.Fatalf("create returned %d: %s", recorder.Code, recorder.Body.String())
	}
	var created struct {
		Financials []FinancialView `json:"financials"`
	}
	if err := json.NewDecoder(recorder.Body).Decode(&created); err != nil {
		t.Fatal(err)
	}
	if len(created.Financials) != 1 {
		t.Fatalf("expected one entry, got %d", len(created.Financials))
	}

	path := "/api/financials/" + strconv.Itoa(created.Financials[0].ID) + "/toggle-paid"
	recorder = doRequest(t, handler, http.MethodPost, path, "", true)
	if recorder.Code != http.StatusOK {
		t.Fatalf("toggle returned %d: %s", recorder.Code, recorder.Body.String())
	}
	var toggled FinancialView
	if err := json.NewDecoder(recorder.Body).Decode(&toggled); err != nil {
		t.Fatal(err)
	}
	if toggled.Status != "paid" || toggled.PaymentDate == nil {
		t.Fatalf("expected paid entry with payment date, got %+v", toggled)
	}

	recorder = doRequest(t, handler, http.MethodPost, "/api/financials/9999/toggle-paid", "", true)
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("missing entry must yield 404, got %d", recorder.Code)
	}
}

func TestSearchEndpoint(t *testing.T) {
	handler := newTestHandler(t)

	recorder := doRequest(t, handler, http.MethodGet, "/api/search?q=mariana", "", true)
	if recorder.Code != http.StatusOK {
		t.Fatalf("search returned %d", recorder.Code)
	}
	payload := decodeMap(t, recorder)
	results, ok := payload["results"].([]any)
	if !ok || len(results) == 0 {
		t.Fatalf("expected results for mariana, got %v", payload)
	}

	recorder = doRequest(t, handler, http.MethodGet, "/api/search?q=x&limit=abc", "", true)
	if recorder.Code != http.StatusUnprocessableEntity {
		t.Fatalf("bad limit must yield 422, got %d", recorder.Code)
	}
}

func TestSelectDirectoryCancelOverHTTP(t *testing.T) {
	handler := newTestHandler(t)

	recorder := doRequest(t, handler, http.MethodPost, "/api/storage/select-directory", `{"path":""}`, true)
	if recorder.Code != http.StatusOK {
		t.Fatalf("cancel returned %d: %s", recorder.Code, recorder.Body.String())
	}
	var status StorageStatus
	if err := json.NewDecoder(recorder.Body).Decode(&status); err != nil {
		t.Fatal(err)
	}
	if status.UsingDirectory {
		t.Fatal("cancel must keep the local backend active")
	}

	recorder = doRequest(t, handler, http.MethodGet, "/api/notifications", "", true)
	payload := decodeMap(t, recorder)
	raw, _ := json.Marshal(payload["notifications"])
	var notifications []notify.Notification
	if err := json.Unmarshal(raw, &notifications); err != nil {
		t.Fatal(err)
	}
	var sawCancel bool
	for _, n := range notifications {
		if n.Level == notify.LevelInfo && strings.Contains(n.Message, "cancelada") {
			sawCancel = true
		}
	}
	if !sawCancel {
		t.Fatal("expected the cancel notification to be drained over HTTP")
	}

	// Notifications drain on read.
	recorder = doRequest(t, handler, http.MethodGet, "/api/notifications", "", true)
	payload = decodeMap(t, recorder)
	if list, ok := payload["notifications"].([]any); ok && len(list) != 0 {
		t.Fatal("second read must come back empty")
	}
}

func TestChatRoutesRequireSession(t *testing.T) {
	handler := newTestHandler(t)

	recorder := doRequest(t, handler, http.MethodGet, "/api/chat/contacts", "", true)
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("chat without bearer token must yield 401, got %d", recorder.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/chat/contacts", nil)
	req.Header.Set("X-API-Key", "test-key")
	req.Header.Set("Authorization", "Bearer not-a-token")
	recorder = serve(handler, req)
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("garbage bearer token must yield 401, got %d", recorder.Code)
	}
}

func TestLoginOverHTTP(t *testing.T) {
	handler := newTestHandler(t)

	recorder := doRequest(t, handler, http.MethodPost, "/api/auth/login",
		`{"email":"joao@vieira.adv.br","password":"correta"}`, true)
	if recorder.Code != http.StatusOK {
		t.Fatalf("login returned %d: %s", recorder.Code, recorder.Body.String())
	}
	payload := decodeMap(t, recorder)
	token, _ := payload["token"].(string)
	if token == "" {
		t.Fatal("login response missing token")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/session", nil)
	req.Header.Set("X-API-Key", "test-key")
	req.Header.Set("Authorization", "Bearer "+token)
	recorder = serve(handler, req)
	session := decodeMap(t, recorder)
	if session["authenticated"] != true {
		t.Fatalf("expected an authenticated session, got %v", session)
	}

	recorder = doRequest(t, handler, http.MethodPost, "/api/auth/login",
		`{"email":"joao@vieira.adv.br","password":"errada"}`, true)
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("bad password must yield 401, got %d", recorder.Code)
	}
}
