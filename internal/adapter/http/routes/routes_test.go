package routes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"todoserver/internal/adapter/database/memory"
	"todoserver/internal/adapter/http/handler"
	"todoserver/internal/core/domain"
	"todoserver/internal/core/service"
	"todoserver/internal/core/telemetry"
	"todoserver/pkg/config"
)

type RoutesSuite struct {
	suite.Suite
	Registry *prometheus.Registry
	Metrics  *telemetry.AppMetrics
	Handler  http.Handler
}

func (s *RoutesSuite) SetupTest() {
	s.Handler = s.buildHandler(config.GetDefaultConfig())
}

func (s *RoutesSuite) buildHandler(cfg *config.AppConfig) http.Handler {
	cfg.GinMode = "test"

	probe := telemetry.NewNoOpProbe()
	s.Registry = prometheus.NewRegistry()
	s.Metrics = telemetry.NewAppMetrics(s.Registry)

	store := memory.NewTodoStore(probe, s.Metrics)
	todoHandler := handler.NewTodoHandler(service.NewTodoService(store, probe), nil)

	router := SetupRouterWithConfig(HandlersConfig{TodoHandler: todoHandler}, s.Metrics, config.NewNopLogger(), cfg)

	return NewHandler(router)
}

func TestRoutesSuite(t *testing.T) {
	RegisterTestingT(t)
	suite.Run(t, new(RoutesSuite))
}

func (s *RoutesSuite) perform(method, path, body string, headers ...map[string]string) *httptest.ResponseRecorder {
	var req *http.Request

	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}

	for _, h := range headers {
		for key, value := range h {
			req.Header.Set(key, value)
		}
	}

	rr := httptest.NewRecorder()
	s.Handler.ServeHTTP(rr, req)

	return rr
}

func (s *RoutesSuite) TestTodoLifecycle() {
	rr := s.perform("POST", "/todos", `{"title":"A","description":"B","completed":false}`)
	Expect(rr.Code).To(Equal(http.StatusCreated))

	var created domain.Todo
	Expect(json.Unmarshal(rr.Body.Bytes(), &created)).To(Succeed())
	Expect(created.ID).To(Equal(1))

	rr = s.perform("GET", "/todos", "")
	Expect(rr.Code).To(Equal(http.StatusOK))
	Expect(rr.Body.String()).To(MatchJSON(`[{"id":1,"title":"A","description":"B","completed":false}]`))

	rr = s.perform("GET", "/todos/1", "")
	Expect(rr.Code).To(Equal(http.StatusOK))
	Expect(rr.Body.String()).To(MatchJSON(`{"id":1,"title":"A","description":"B","completed":false}`))

	rr = s.perform("PUT", "/todos/1", `{"title":"A","description":"done"}`)
	Expect(rr.Code).To(Equal(http.StatusOK))
	Expect(rr.Body.String()).To(MatchJSON(`{"id":1,"title":"A","description":"done","completed":false}`))

	rr = s.perform("DELETE", "/todos/1", "")
	Expect(rr.Code).To(Equal(http.StatusOK))
	Expect(rr.Body.Len()).To(Equal(0))

	rr = s.perform("GET", "/todos/1", "")
	Expect(rr.Code).To(Equal(http.StatusNotFound))
	Expect(rr.Body.Len()).To(Equal(0))
}

func (s *RoutesSuite) TestIDsAreNeverReused() {
	s.perform("POST", "/todos", `{"title":"one"}`)
	s.perform("POST", "/todos", `{"title":"two"}`)
	s.perform("DELETE", "/todos/2", "")

	rr := s.perform("POST", "/todos", `{"title":"three"}`)

	var created domain.Todo
	Expect(json.Unmarshal(rr.Body.Bytes(), &created)).To(Succeed())
	Expect(created.ID).To(Equal(3))
}

func (s *RoutesSuite) TestUnknownRouteReturnsEmptyNotFound() {
	rr := s.perform("GET", "/nope", "")

	Expect(rr.Code).To(Equal(http.StatusNotFound))
	Expect(rr.Body.Len()).To(Equal(0))
	Expect(rr.Header().Get("Content-Type")).To(ContainSubstring("application/json"))
}

func (s *RoutesSuite) TestCORSAllowsAnyOrigin() {
	rr := s.perform("GET", "/todos", "", map[string]string{"Origin": "http://example.com"})

	Expect(rr.Code).To(Equal(http.StatusOK))
	Expect(rr.Header().Get("Access-Control-Allow-Origin")).To(Equal("*"))
}

func (s *RoutesSuite) TestCORSPreflight() {
	rr := s.perform("OPTIONS", "/todos/1", "", map[string]string{
		"Origin":                         "http://example.com",
		"Access-Control-Request-Method":  "PUT",
		"Access-Control-Request-Headers": "Content-Type",
	})

	Expect(rr.Code).To(BeNumerically("<", 300))
	Expect(rr.Header().Get("Access-Control-Allow-Origin")).To(Equal("*"))
	Expect(rr.Header().Get("Access-Control-Allow-Methods")).To(ContainSubstring("PUT"))
}

func (s *RoutesSuite) TestRequestsAreCounted() {
	s.perform("GET", "/todos", "")
	s.perform("GET", "/missing", "")

	count, err := testutil.GatherAndCount(s.Registry, "http_requests_total")

	Expect(err).To(BeNil())
	Expect(count).To(Equal(2))
}

func (s *RoutesSuite) TestRateLimit() {
	cfg := config.GetDefaultConfig()
	cfg.RateLimitEnabled = true
	cfg.RateLimit.Requests = 2

	s.Handler = s.buildHandler(cfg)

	Expect(s.perform("GET", "/todos", "").Code).To(Equal(http.StatusOK))

	rr := s.perform("GET", "/todos", "")
	Expect(rr.Code).To(Equal(http.StatusOK))
	Expect(rr.Header().Get("X-RateLimit-Remaining")).To(Equal("0"))

	rr = s.perform("GET", "/todos", "")
	Expect(rr.Code).To(Equal(http.StatusTooManyRequests))
	Expect(rr.Body.String()).To(ContainSubstring("RATE_LIMITED"))

	Expect(s.perform("POST", "/todos", `{"title":"other route"}`).Code).To(Equal(http.StatusCreated))
}
