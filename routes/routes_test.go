package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Henryno111/deposit-stx/database"
	"github.com/Henryno111/deposit-stx/ledger"
	"github.com/Henryno111/deposit-stx/models"
	"github.com/Henryno111/deposit-stx/services"
	"github.com/Henryno111/deposit-stx/utils"

	"github.com/google/uuid"
)

const (
	owner models.Principal = "SP-OWNER"
	alice models.Principal = "SP-ALICE"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	t       *testing.T
	handler http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	t.Setenv("JWT_SECRET", "routes-test-secret")

	db, err := database.OpenSQLite("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.Admin{}, &models.RevokedToken{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	prevDB, prevRedis := database.DB, utils.RedisClient
	database.DB, utils.RedisClient = db, nil
	t.Cleanup(func() { database.DB, utils.RedisClient = prevDB, prevRedis })

	if _, err := models.EnsureAdmin(db, "operator", "correct-horse"); err != nil {
		t.Fatalf("ensure admin: %v", err)
	}
	svc := services.New(ledger.NewMemoryStore(), owner)
	return &testServer{t: t, handler: Handler(InitRouter(svc))}
}

func (s *testServer) do(method, path, token string, body interface{}) (int, envelope) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			s.t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		s.t.Fatalf("%s %s: decode %q: %v", method, path, rec.Body.String(), err)
	}
	return rec.Code, env
}

func (s *testServer) adminToken() string {
	s.t.Helper()
	code, env := s.do(http.MethodPost, "/v1/admin/login", "", map[string]string{"username": "operator", "password": "correct-horse"})
	if code != http.StatusOK {
		s.t.Fatalf("admin login: %d %s", code, env.Message)
	}
	var data struct {
		Token     string `json:"token"`
		Principal string `json:"principal"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil || data.Token == "" {
		s.t.Fatalf("login data %s: %v", env.Data, err)
	}
	if data.Principal != string(owner) {
		s.t.Fatalf("admin principal = %s", data.Principal)
	}
	return data.Token
}

func userToken(t *testing.T, p models.Principal) string {
	t.Helper()
	tok, err := utils.GenerateAccessToken(string(p), utils.RoleUser, 0)
	if err != nil {
		t.Fatalf("user token: %v", err)
	}
	return tok
}

func TestDepositFlow(t *testing.T) {
	s := newTestServer(t)
	tok := userToken(t, alice)

	if code, _ := s.do(http.MethodPost, "/v1/deposits", "", map[string]uint64{"amount": 5_000_000}); code != http.StatusUnauthorized {
		t.Fatalf("anonymous deposit = %d", code)
	}
	code, env := s.do(http.MethodPost, "/v1/deposits", tok, map[string]uint64{"amount": 5_000_000})
	if code != http.StatusOK || !env.Success {
		t.Fatalf("deposit = %d %s", code, env.Message)
	}
	code, env = s.do(http.MethodPost, "/v1/deposits", tok, map[string]uint64{"amount": 10})
	if code != http.StatusBadRequest || env.Message != "invalid-amount" {
		t.Fatalf("below minimum = %d %s", code, env.Message)
	}
	code, env = s.do(http.MethodPost, "/v1/deposits/withdraw", tok, map[string]uint64{"amount": 6_000_000})
	if code != http.StatusConflict || env.Message != "insufficient-balance" {
		t.Fatalf("overdraw = %d %s", code, env.Message)
	}

	code, env = s.do(http.MethodGet, "/v1/pool", "", nil)
	if code != http.StatusOK {
		t.Fatalf("pool = %d", code)
	}
	var stats struct {
		TotalPool      uint64 `json:"total_pool"`
		TotalDisplay   string `json:"total_pool_display"`
		DepositorCount uint64 `json:"depositor_count"`
		Locked         bool   `json:"pool_locked"`
	}
	_ = json.Unmarshal(env.Data, &stats)
	if stats.TotalPool != 5_000_000 || stats.TotalDisplay != "5.000000" || stats.DepositorCount != 1 || stats.Locked {
		t.Fatalf("stats = %+v", stats)
	}

	code, env = s.do(http.MethodGet, "/v1/deposits/SP-ALICE", "", nil)
	var dep struct {
		Amount uint64 `json:"amount"`
		Active bool   `json:"active"`
	}
	_ = json.Unmarshal(env.Data, &dep)
	if code != http.StatusOK || dep.Amount != 5_000_000 || !dep.Active {
		t.Fatalf("get deposit = %d %+v", code, dep)
	}
}

func TestAdminRoutes_RequireAdminRole(t *testing.T) {
	s := newTestServer(t)

	body := map[string]interface{}{"title": "t", "description": "d", "reward_amount": 1}
	if code, _ := s.do(http.MethodPost, "/v1/admin/tasks", userToken(t, owner), body); code != http.StatusForbidden {
		t.Fatalf("user token on admin route = %d", code)
	}
	if code, _ := s.do(http.MethodPost, "/v1/admin/tasks", "", body); code != http.StatusUnauthorized {
		t.Fatalf("anonymous admin route = %d", code)
	}
	if code, _ := s.do(http.MethodPost, "/v1/admin/login", "", map[string]string{"username": "operator", "password": "wrong"}); code != http.StatusUnauthorized {
		t.Fatalf("bad password = %d", code)
	}

	// an admin session whose principal is not the owner is refused by the ledger
	mallory, err := utils.GenerateAccessToken("SP-MALLORY", utils.RoleAdmin, 1)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	code, env := s.do(http.MethodPost, "/v1/admin/tasks", mallory, body)
	if code != http.StatusForbidden || env.Message != "owner-only" {
		t.Fatalf("non-owner admin = %d %s", code, env.Message)
	}

	// admin sessions do not act as depositors
	if code, _ := s.do(http.MethodPost, "/v1/deposits", s.adminToken(), map[string]uint64{"amount": 5_000_000}); code != http.StatusForbidden {
		t.Fatalf("admin token on user route = %d", code)
	}
}

func TestTaskRewardFlow(t *testing.T) {
	s := newTestServer(t)
	admin := s.adminToken()
	tok := userToken(t, alice)

	code, env := s.do(http.MethodPost, "/v1/admin/tasks", admin, map[string]interface{}{
		"title": "Translate docs", "description": "Spanish", "reward_amount": 10_000_000,
	})
	if code != http.StatusCreated {
		t.Fatalf("create task = %d %s", code, env.Message)
	}

	if code, env := s.do(http.MethodGet, "/v1/tasks/7", "", nil); code != http.StatusNotFound || env.Message != "task-not-found" {
		t.Fatalf("unknown task = %d %s", code, env.Message)
	}
	if code, env := s.do(http.MethodPost, "/v1/tasks/0/submissions", tok, map[string]string{"submission_data": "https://example.com/es"}); code != http.StatusCreated {
		t.Fatalf("submit = %d %s", code, env.Message)
	}

	code, env = s.do(http.MethodGet, "/v1/rewards/fee?amount=10000000", "", nil)
	var fee struct {
		Fee       uint64 `json:"fee"`
		NetReward uint64 `json:"net_reward"`
	}
	_ = json.Unmarshal(env.Data, &fee)
	if code != http.StatusOK || fee.Fee != 500_000 || fee.NetReward != 9_500_000 {
		t.Fatalf("fee preview = %d %+v", code, fee)
	}
	fee = struct {
		Fee       uint64 `json:"fee"`
		NetReward uint64 `json:"net_reward"`
	}{}
	code, env = s.do(http.MethodGet, "/v1/rewards/fee?units=2.5", "", nil)
	_ = json.Unmarshal(env.Data, &fee)
	if code != http.StatusOK || fee.Fee != 125_000 || fee.NetReward != 2_375_000 {
		t.Fatalf("fee preview in units = %d %+v", code, fee)
	}
	if code, _ := s.do(http.MethodGet, "/v1/rewards/fee?units=0.0000001", "", nil); code != http.StatusBadRequest {
		t.Fatalf("sub-micro units = %d", code)
	}

	code, env = s.do(http.MethodPut, "/v1/admin/tasks/0/complete", admin, map[string]string{"submitter": string(alice)})
	if code != http.StatusOK {
		t.Fatalf("complete = %d %s", code, env.Message)
	}
	code, env = s.do(http.MethodPut, "/v1/admin/tasks/0/approve", admin, map[string]string{"submitter": string(alice)})
	if code != http.StatusConflict || env.Message != "task-not-active" {
		t.Fatalf("approve completed task = %d %s", code, env.Message)
	}
	code, env = s.do(http.MethodPost, "/v1/admin/rewards", admin, map[string]interface{}{
		"task_id": 0, "recipient": alice, "amount": 10_000_000,
	})
	if code != http.StatusConflict || env.Message != "already-claimed" {
		t.Fatalf("duplicate distribution = %d %s", code, env.Message)
	}

	code, env = s.do(http.MethodGet, "/v1/rewards/paid/SP-ALICE", "", nil)
	if code != http.StatusOK || !bytes.Contains(env.Data, []byte("9500000")) {
		t.Fatalf("paid = %d %s", code, env.Data)
	}
	if code, _ := s.do(http.MethodGet, "/v1/rewards/claims/0/SP-ALICE", "", nil); code != http.StatusOK {
		t.Fatalf("claim = %d", code)
	}
	if code, _ := s.do(http.MethodGet, "/v1/rewards/claims/1/SP-ALICE", "", nil); code != http.StatusNotFound {
		t.Fatalf("missing claim = %d", code)
	}

	if code, env := s.do(http.MethodPut, "/v1/admin/rewards/fee", admin, map[string]uint64{"percentage": 21}); code != http.StatusBadRequest || env.Message != "invalid-fee" {
		t.Fatalf("fee above max = %d %s", code, env.Message)
	}
	if code, _ := s.do(http.MethodGet, "/v1/admin/audit?limit=5", admin, nil); code != http.StatusOK {
		t.Fatalf("audit = %d", code)
	}
}

func TestPoolLock(t *testing.T) {
	s := newTestServer(t)
	admin := s.adminToken()
	tok := userToken(t, alice)

	if code, env := s.do(http.MethodPut, "/v1/admin/pool/lock", admin, map[string]bool{"locked": true}); code != http.StatusOK {
		t.Fatalf("lock = %d %s", code, env.Message)
	}
	code, env := s.do(http.MethodPost, "/v1/deposits", tok, map[string]uint64{"amount": 5_000_000})
	if code != http.StatusConflict || env.Message != "pool-locked" {
		t.Fatalf("deposit into locked pool = %d %s", code, env.Message)
	}
}

func TestMalformedPrincipalTokenRejected(t *testing.T) {
	s := newTestServer(t)
	for _, p := range []models.Principal{
		models.Principal("SP-" + strings.Repeat("A", 200)),
		"SP ALICE",
		"-SP-ALICE",
	} {
		code, _ := s.do(http.MethodPost, "/v1/deposits", userToken(t, p), map[string]uint64{"amount": 5_000_000})
		if code != http.StatusUnauthorized {
			t.Fatalf("principal %.20q: deposit = %d, want 401", p, code)
		}
	}
	code, env := s.do(http.MethodGet, "/v1/pool", "", nil)
	var stats struct {
		TotalPool uint64 `json:"total_pool"`
	}
	_ = json.Unmarshal(env.Data, &stats)
	if code != http.StatusOK || stats.TotalPool != 0 {
		t.Fatalf("pool after rejected deposits = %d %+v", code, stats)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	s := newTestServer(t)
	tok := userToken(t, alice)

	if code, env := s.do(http.MethodPost, "/v1/logout", tok, nil); code != http.StatusOK {
		t.Fatalf("logout = %d %s", code, env.Message)
	}
	if code, _ := s.do(http.MethodPost, "/v1/deposits", tok, map[string]uint64{"amount": 5_000_000}); code != http.StatusUnauthorized {
		t.Fatalf("revoked token = %d", code)
	}

	admin := s.adminToken()
	if code, _ := s.do(http.MethodPost, "/v1/admin/logout", admin, nil); code != http.StatusOK {
		t.Fatalf("admin logout = %d", code)
	}
	if code, _ := s.do(http.MethodGet, "/v1/admin/profile", admin, nil); code != http.StatusUnauthorized {
		t.Fatalf("revoked admin token = %d", code)
	}
}

func TestAdminDashboardAndDepositors(t *testing.T) {
	s := newTestServer(t)
	admin := s.adminToken()
	for _, p := range []models.Principal{"SP-ALICE", "SP-BOB", "SP-CAROL"} {
		if code, env := s.do(http.MethodPost, "/v1/deposits", userToken(t, p), map[string]uint64{"amount": 2_000_000}); code != http.StatusOK {
			t.Fatalf("deposit %s = %d %s", p, code, env.Message)
		}
	}
	if code, _ := s.do(http.MethodPost, "/v1/deposits/withdraw", userToken(t, "SP-BOB"), map[string]uint64{"amount": 2_000_000}); code != http.StatusOK {
		t.Fatalf("withdraw = %d", code)
	}

	code, env := s.do(http.MethodGet, "/v1/admin/deposits?status=active&limit=1&page=2", admin, nil)
	var page struct {
		Depositors []struct {
			Principal string `json:"principal"`
		} `json:"depositors"`
		Total int `json:"total"`
	}
	_ = json.Unmarshal(env.Data, &page)
	if code != http.StatusOK || page.Total != 2 || len(page.Depositors) != 1 || page.Depositors[0].Principal != "SP-CAROL" {
		t.Fatalf("depositors = %d %s", code, env.Data)
	}
	if code, _ := s.do(http.MethodGet, "/v1/admin/deposits?status=gone", admin, nil); code != http.StatusBadRequest {
		t.Fatalf("bad status filter = %d", code)
	}

	code, env = s.do(http.MethodGet, "/v1/admin/dashboard", admin, nil)
	var dash struct {
		TotalPool        uint64 `json:"total_pool"`
		ActiveDepositors uint64 `json:"active_depositors"`
		Consistent       bool   `json:"consistent"`
		Height           uint64 `json:"height"`
		LastEvents       []struct {
			Kind string `json:"kind"`
		} `json:"last_events"`
	}
	_ = json.Unmarshal(env.Data, &dash)
	if code != http.StatusOK || dash.TotalPool != 4_000_000 || dash.ActiveDepositors != 2 || !dash.Consistent || dash.Height != 4 || len(dash.LastEvents) != 4 {
		t.Fatalf("dashboard = %d %s", code, env.Data)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	if code, _ := s.do(http.MethodGet, "/v1/tasks/3", "", nil); code != http.StatusNotFound {
		t.Fatalf("unknown task = %d", code)
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`depositstx_http_requests_total{method="GET",route="/v1/tasks/{id:[0-9]+}",status="404"}`,
		`depositstx_ledger_rejections_total{kind="task-not-found"}`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("metrics output missing %s", want)
		}
	}
}
