package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/mechshop/service-api/internal/core/domain"
	"github.com/mechshop/service-api/internal/core/service"
	"github.com/mechshop/service-api/internal/infrastructure/db/sqlstore"
)

const testSecret = "router-test-secret"

type testServer struct {
	e     *echo.Echo
	codec *service.JWTCodec
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db, err := sqlstore.Open(context.Background(), sqlstore.Config{Dialect: sqlstore.SQLite, DSN: ":memory:"})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repos := db.Repositories()
	log := zerolog.Nop()
	codec, err := service.NewJWTCodec(service.TokenConfig{Secret: testSecret})
	if err != nil {
		t.Fatalf("codec: %v", err)
	}
	verifier := service.NewBcryptVerifier(bcrypt.MinCost)
	principals := service.NewPrincipalStore(repos.Mechanics, repos.Customers)
	reg := prometheus.NewRegistry()

	e := NewRouter(RouterConfig{
		Services: Services{
			Auth:         service.NewAuthService(principals, verifier, codec, log),
			Mechanics:    service.NewMechanicService(repos.Mechanics, verifier, nil, log),
			Customers:    service.NewCustomerService(repos.Customers, repos.Tickets, verifier, nil, log),
			Tickets:      service.NewTicketService(repos.Tickets, repos.Customers, nil, log),
			Parts:        service.NewPartService(repos.Parts, log),
			Associations: service.NewAssociationManager(repos, nil, nil, log),
			Ranking:      service.NewRankingAggregator(repos.Mechanics, repos.Memberships, nil, log),
		},
		Guards: Guards{
			Mechanic: service.NewAccessGuard(codec, principals, domain.RoleMechanic),
			Customer: service.NewAccessGuard(codec, principals, domain.RoleCustomer),
		},
		Logger:     log,
		Registerer: reg,
		Gatherer:   reg,
	})
	return &testServer{e: e, codec: codec}
}

func (s *testServer) do(t *testing.T, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) token(t *testing.T, id int64, role domain.Role) string {
	t.Helper()
	tok, err := s.codec.Issue(id, role, time.Now())
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return tok
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
	}
	return v
}

func (s *testServer) registerMechanic(t *testing.T, email string) int64 {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/mechanics",
		fmt.Sprintf(`{"name":"Mech","email":%q,"phone":"555","salary":1000,"password":"seedpass"}`, email), "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register mechanic: %d %s", rec.Code, rec.Body.String())
	}
	return decode[domain.Mechanic](t, rec).ID
}

func TestRouter_Login(t *testing.T) {
	s := newTestServer(t)
	id := s.registerMechanic(t, "seed@example.com")

	rec := s.do(t, http.MethodPost, "/mechanics/login", `{"email":"seed@example.com","password":"seedpass"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", rec.Code, rec.Body.String())
	}
	resp := decode[map[string]any](t, rec)
	if resp["status"] != "success" || resp["id"] != float64(id) || resp["auth_token"] == "" {
		t.Fatalf("unexpected login response: %v", resp)
	}

	ident, err := s.codec.Validate(resp["auth_token"].(string), time.Now())
	if err != nil || ident.Role != domain.RoleMechanic || ident.Subject != fmt.Sprint(id) {
		t.Fatalf("token does not identify the mechanic: %+v err=%v", ident, err)
	}

	for _, body := range []string{
		`{"email":"seed@example.com","password":"wrong"}`,
		`{"email":"nobody@example.com","password":"seedpass"}`,
	} {
		rec := s.do(t, http.MethodPost, "/mechanics/login", body, "")
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 for %s, got %d", body, rec.Code)
		}
		if decode[errorResponse](t, rec).Error != "invalid credentials" {
			t.Fatalf("credential failures must be indistinguishable: %s", rec.Body.String())
		}
	}

	rec = s.do(t, http.MethodPost, "/mechanics/login", `{"email":"seed@example.com"}`, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing password, got %d", rec.Code)
	}

	// A mechanic's credentials do not log in as a customer.
	rec = s.do(t, http.MethodPost, "/customers/login", `{"email":"seed@example.com","password":"seedpass"}`, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 on customer login, got %d", rec.Code)
	}
}

func TestRouter_GuardStatuses(t *testing.T) {
	s := newTestServer(t)
	mech := s.registerMechanic(t, "a@example.com")

	expired, err := s.codec.Issue(mech, domain.RoleMechanic, time.Now().Add(-2*time.Hour))
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	cases := []struct {
		name   string
		header string
		code   int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"wrong scheme", "Token " + s.token(t, mech, domain.RoleMechanic), http.StatusUnauthorized},
		{"three parts", "Bearer a b", http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-jwt", http.StatusUnauthorized},
		{"expired", "Bearer " + expired, http.StatusUnauthorized},
		{"customer role", "Bearer " + s.token(t, mech, domain.RoleCustomer), http.StatusForbidden},
		{"unknown mechanic", "Bearer " + s.token(t, 999, domain.RoleMechanic), http.StatusNotFound},
		{"lowercase bearer", "bearer " + s.token(t, mech, domain.RoleMechanic), http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/mechanics/ranked", nil)
			if tc.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tc.header)
			}
			rec := httptest.NewRecorder()
			s.e.ServeHTTP(rec, req)
			if rec.Code != tc.code {
				t.Fatalf("expected %d, got %d %s", tc.code, rec.Code, rec.Body.String())
			}
			if tc.code != http.StatusOK && decode[errorResponse](t, rec).Error == "" {
				t.Fatalf("expected error envelope, got %s", rec.Body.String())
			}
		})
	}
}

func TestRouter_MechanicOwnership(t *testing.T) {
	s := newTestServer(t)
	m1 := s.registerMechanic(t, "one@example.com")
	m2 := s.registerMechanic(t, "two@example.com")
	tok1 := s.token(t, m1, domain.RoleMechanic)

	rec := s.do(t, http.MethodPut, fmt.Sprintf("/mechanics/%d", m2), `{"name":"Hijacked"}`, tok1)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d %s", rec.Code, rec.Body.String())
	}
	rec = s.do(t, http.MethodPut, fmt.Sprintf("/mechanics/%d", m2), `{}`, tok1)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for empty payload, got %d", rec.Code)
	}
	rec = s.do(t, http.MethodDelete, "/mechanics/404", "", tok1)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing target, got %d", rec.Code)
	}

	rec = s.do(t, http.MethodPut, fmt.Sprintf("/mechanics/%d", m1), `{"name":"Renamed"}`, tok1)
	if rec.Code != http.StatusOK || decode[domain.Mechanic](t, rec).Name != "Renamed" {
		t.Fatalf("self update failed: %d %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_TicketLifecycle(t *testing.T) {
	s := newTestServer(t)
	m1 := s.registerMechanic(t, "one@example.com")
	m2 := s.registerMechanic(t, "two@example.com")
	tok := s.token(t, m1, domain.RoleMechanic)

	rec := s.do(t, http.MethodPost, "/customers", `{"name":"Cus","email":"cus@example.com","password":"secret1"}`, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register customer: %d %s", rec.Code, rec.Body.String())
	}
	customerID := decode[domain.Customer](t, rec).ID

	rec = s.do(t, http.MethodPost, "/customers", `{"name":"Dup","email":"cus@example.com","password":"secret1"}`, "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate email, got %d", rec.Code)
	}

	rec = s.do(t, http.MethodPost, "/service_tickets",
		fmt.Sprintf(`{"vin":"1HGCM82633A004352","service_date":"2024-05-17","service_desc":"brakes","customer_id":%d}`, customerID), tok)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create ticket: %d %s", rec.Code, rec.Body.String())
	}
	ticketID := int64(decode[map[string]any](t, rec)["id"].(float64))

	rec = s.do(t, http.MethodPost, "/service_tickets",
		`{"vin":"V","service_date":"2024-05-17","customer_id":9999}`, tok)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown customer, got %d", rec.Code)
	}

	edit := fmt.Sprintf(`{"add_ids":[%d,777],"remove_ids":[]}`, m2)
	for i := 0; i < 2; i++ {
		rec = s.do(t, http.MethodPut, fmt.Sprintf("/service_tickets/%d/edit", ticketID), edit, tok)
		if rec.Code != http.StatusOK {
			t.Fatalf("edit mechanics: %d %s", rec.Code, rec.Body.String())
		}
	}
	ticket := decode[map[string]any](t, rec)
	if ids := ticket["mechanic_ids"].([]any); len(ids) != 2 || ids[0] != float64(m1) {
		t.Fatalf("expected creator first and no duplicates, got %v", ids)
	}

	rec = s.do(t, http.MethodGet, "/mechanics/ranked", "", tok)
	ranks := decode[[]domain.MechanicRank](t, rec)
	if len(ranks) != 2 || ranks[0].ID != m1 || ranks[0].TicketCount != 1 || ranks[1].TicketCount != 1 {
		t.Fatalf("unexpected ranking: %+v", ranks)
	}

	rec = s.do(t, http.MethodPut, "/service_tickets/4242/parts", `{"add_ids":[1]}`, tok)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown ticket, got %d", rec.Code)
	}

	rec = s.do(t, http.MethodGet, "/service_tickets?page=1&per_page=5", "", "")
	list := decode[map[string]any](t, rec)
	if meta := list["meta"].(map[string]any); meta["total"] != float64(1) || meta["per_page"] != float64(5) {
		t.Fatalf("unexpected meta: %v", meta)
	}

	custTok := s.token(t, customerID, domain.RoleCustomer)
	rec = s.do(t, http.MethodGet, "/customers/my-tickets", "", custTok)
	if rec.Code != http.StatusOK || len(decode[[]any](t, rec)) != 1 {
		t.Fatalf("my-tickets: %d %s", rec.Code, rec.Body.String())
	}
	rec = s.do(t, http.MethodDelete, "/customers", "", custTok)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), fmt.Sprintf("deleted customer %d", customerID)) {
		t.Fatalf("self delete: %d %s", rec.Code, rec.Body.String())
	}
	rec = s.do(t, http.MethodGet, fmt.Sprintf("/service_tickets/%d", ticketID), "", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected ticket removed with customer, got %d", rec.Code)
	}
}

func TestRouter_OpsEndpoints(t *testing.T) {
	s := newTestServer(t)

	if rec := s.do(t, http.MethodGet, "/health", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("health: %d", rec.Code)
	}
	s.do(t, http.MethodGet, "/mechanics", "", "")
	rec := s.do(t, http.MethodGet, "/metrics", "", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "http_requests_total") {
		t.Fatalf("metrics: %d", rec.Code)
	}
	if rec := s.do(t, http.MethodGet, "/nope", "", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown route, got %d", rec.Code)
	}
}
