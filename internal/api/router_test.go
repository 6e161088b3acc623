package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/99minutos/employee-management/internal/api/handler"
	"github.com/99minutos/employee-management/internal/api/middleware"
	"github.com/99minutos/employee-management/internal/core/domain"
	"github.com/99minutos/employee-management/internal/core/service"
	"github.com/99minutos/employee-management/internal/infrastructure/db/memory"
	redisstore "github.com/99minutos/employee-management/internal/infrastructure/db/redis"
	"github.com/99minutos/employee-management/pkg/password"
	"github.com/99minutos/employee-management/pkg/sessiontoken"
)

type testApp struct {
	e  *echo.Echo
	mr *miniredis.Miniredis
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	log := zerolog.Nop()
	roles := memory.NewRoleRepository()
	require.NoError(t, roles.Seed(context.Background(), domain.Roles...))

	employees := memory.NewEmployeeRepository()
	authService := service.NewAuthService(
		memory.NewUserRepository(),
		roles,
		redisstore.NewSessionStore(client),
		password.NewHasher(bcrypt.MinCost),
		30*time.Minute,
		log,
	)

	registry := prometheus.NewRegistry()
	e, err := NewRouter(Dependencies{
		Auth:      authService,
		Employees: service.NewEmployeeService(employees, log),
		Reports:   service.NewReportService(employees, nil, log),
		Signer:    sessiontoken.NewSigner("test-secret"),
		HealthChecks: map[string]handler.Check{
			"redis": func(ctx context.Context) error { return client.Ping(ctx).Err() },
		},
		Registerer: registry,
		Gatherer:   registry,
		Logger:     log,
	})
	require.NoError(t, err)

	return &testApp{e: e, mr: mr}
}

func (a *testApp) do(t *testing.T, method, path, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) register(t *testing.T, username, pass, role string) {
	t.Helper()
	body := `{"username":"` + username + `","password":"` + pass + `","role":"` + role + `"}`
	rec := a.do(t, http.MethodPost, "/auth/register", body, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func (a *testApp) login(t *testing.T, username, pass string) *http.Cookie {
	t.Helper()
	form := url.Values{"username": {username}, "password": {pass}}
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/home", rec.Header().Get(echo.HeaderLocation))
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookie {
			return c
		}
	}
	t.Fatalf("login for %s set no session cookie", username)
	return nil
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body handler.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Code
}

func seedEmployees(t *testing.T, a *testApp, admin *http.Cookie) {
	t.Helper()
	for _, body := range []string{
		`{"name":"Ann","email":"ann@corp.io","salary":50000,"department":"IT","jobTitle":"Developer"}`,
		`{"name":"Bob","email":"bob@corp.io","salary":60000,"department":"IT","jobTitle":"Lead"}`,
		`{"name":"Cid","email":"cid@corp.io","salary":40000,"department":"HR","jobTitle":"Recruiter"}`,
	} {
		rec := a.do(t, http.MethodPost, "/employees", body, admin)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}
}

func TestRouter_PublicRoutes(t *testing.T) {
	app := newTestApp(t)

	require.Equal(t, http.StatusOK, app.do(t, http.MethodGet, "/health", "", nil).Code)
	require.Equal(t, http.StatusOK, app.do(t, http.MethodGet, "/health/ready", "", nil).Code)
	require.Equal(t, http.StatusOK, app.do(t, http.MethodGet, "/metrics", "", nil).Code)

	rec := app.do(t, http.MethodGet, "/end", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Thank You!", rec.Body.String())

	rec = app.do(t, http.MethodGet, "/nope", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_ReadinessDegradedWhenRedisDown(t *testing.T) {
	app := newTestApp(t)
	app.mr.Close()

	rec := app.do(t, http.MethodGet, "/health/ready", "", nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRouter_Registration(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "alice", "pw", "Admin")

	rec := app.do(t, http.MethodPost, "/auth/register", `{"username":"alice","password":"x","role":"Admin"}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "USERNAME_TAKEN", errorCode(t, rec))

	rec = app.do(t, http.MethodPost, "/auth/register", `{"username":"bob","password":"x","role":"admin"}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "ROLE_NOT_FOUND", errorCode(t, rec))

	rec = app.do(t, http.MethodPost, "/auth/register", `{"username":"","password":"x","role":"Admin"}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "VALIDATION_ERROR", errorCode(t, rec))

	long := strings.Repeat("p", 80)
	rec = app.do(t, http.MethodPost, "/auth/register", `{"username":"carol","password":"`+long+`","role":"Admin"}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "VALIDATION_ERROR", errorCode(t, rec))
}

func TestRouter_LoginFailureRedirects(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "alice", "pw", "Admin")

	form := url.Values{"username": {"alice"}, "password": {"wrong"}}
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	app.e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/auth/login?error=true", rec.Header().Get(echo.HeaderLocation))
	require.Empty(t, rec.Result().Cookies())
}

func TestRouter_AccessMatrix(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "admin", "pw", "Admin")
	app.register(t, "manager", "pw", "Manager")
	app.register(t, "employee", "pw", "Employee")

	admin := app.login(t, "admin", "pw")
	seedEmployees(t, app, admin)

	cookies := map[string]*http.Cookie{
		"admin":    admin,
		"manager":  app.login(t, "manager", "pw"),
		"employee": app.login(t, "employee", "pw"),
	}

	tests := []struct {
		method string
		path   string
		want   map[string]int
	}{
		{http.MethodGet, "/employees", map[string]int{"admin": 200, "manager": 403, "employee": 403}},
		{http.MethodGet, "/employees/1", map[string]int{"admin": 200, "manager": 403, "employee": 403}},
		{http.MethodGet, "/employees/filter", map[string]int{"admin": 200, "manager": 403, "employee": 403}},
		{http.MethodGet, "/employees/report", map[string]int{"admin": 200, "manager": 403, "employee": 403}},
		{http.MethodGet, "/employees/report/department/export", map[string]int{"admin": 200, "manager": 403, "employee": 403}},
		{http.MethodGet, "/employees/report/job-title/export", map[string]int{"admin": 200, "manager": 403, "employee": 403}},
		{http.MethodPost, "/employees", map[string]int{"manager": 403, "employee": 403}},
		{http.MethodPut, "/employees/1", map[string]int{"manager": 403, "employee": 403}},
		{http.MethodDelete, "/employees/1", map[string]int{"manager": 403, "employee": 403}},
		{http.MethodGet, "/view", map[string]int{"admin": 403, "manager": 200, "employee": 403}},
		{http.MethodGet, "/view/1", map[string]int{"admin": 403, "manager": 200, "employee": 403}},
		{http.MethodGet, "/profile/1", map[string]int{"admin": 403, "manager": 403, "employee": 200}},
		{http.MethodGet, "/home", map[string]int{"admin": 200, "manager": 200, "employee": 200}},
		{http.MethodGet, "/auth/me", map[string]int{"admin": 200, "manager": 200, "employee": 200}},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := app.do(t, tt.method, tt.path, "", nil)
			require.Equal(t, http.StatusUnauthorized, rec.Code)
			require.Equal(t, "UNAUTHORIZED", errorCode(t, rec))

			for who, want := range tt.want {
				rec := app.do(t, tt.method, tt.path, "", cookies[who])
				require.Equal(t, want, rec.Code, "%s on %s %s", who, tt.method, tt.path)
				if want == http.StatusForbidden {
					require.Equal(t, "FORBIDDEN", errorCode(t, rec))
				}
			}
		})
	}

	// Denied mutations leave the records untouched.
	rec := app.do(t, http.MethodGet, "/employees", "", admin)
	require.Equal(t, http.StatusOK, rec.Code)
	var all []domain.Employee
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	require.Len(t, all, 3)
	require.Equal(t, "Ann", all[0].Name)
}

func TestRouter_SessionLifecycle(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "alice", "pw", "Manager")

	first := app.login(t, "alice", "pw")
	rec := app.do(t, http.MethodGet, "/home", "", first)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Welcome to the Home page!", rec.Body.String())

	rec = app.do(t, http.MethodGet, "/auth/me", "", first)
	require.Equal(t, http.StatusOK, rec.Code)
	var me domain.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	require.Equal(t, "alice", me.Username)
	require.Equal(t, domain.RoleManager, me.Role)

	// A second login supersedes the first session.
	second := app.login(t, "alice", "pw")
	rec = app.do(t, http.MethodGet, "/home", "", first)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "SESSION_EXPIRED", errorCode(t, rec))
	require.Equal(t, http.StatusOK, app.do(t, http.MethodGet, "/home", "", second).Code)

	// Bearer carries the same envelope as the cookie.
	req := httptest.NewRequest(http.MethodGet, "/home", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+second.Value)
	bearer := httptest.NewRecorder()
	app.e.ServeHTTP(bearer, req)
	require.Equal(t, http.StatusOK, bearer.Code)

	rec = app.do(t, http.MethodPost, "/auth/logout", "", second)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/end", rec.Header().Get(echo.HeaderLocation))

	rec = app.do(t, http.MethodGet, "/home", "", second)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "SESSION_EXPIRED", errorCode(t, rec))
}

func TestRouter_IdleSessionExpires(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "alice", "pw", "Employee")
	cookie := app.login(t, "alice", "pw")

	app.mr.FastForward(31 * time.Minute)

	rec := app.do(t, http.MethodGet, "/home", "", cookie)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "SESSION_EXPIRED", errorCode(t, rec))
}

func TestRouter_ForgedCookieRejected(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "alice", "pw", "Admin")
	_ = app.login(t, "alice", "pw")

	forged, err := sessiontoken.NewSigner("other-secret").Sign("tok", "alice", time.Now())
	require.NoError(t, err)

	rec := app.do(t, http.MethodGet, "/employees", "", &http.Cookie{Name: middleware.SessionCookie, Value: forged})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "UNAUTHORIZED", errorCode(t, rec))
}

func TestRouter_EmployeeDirectory(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "admin", "pw", "Admin")
	admin := app.login(t, "admin", "pw")
	seedEmployees(t, app, admin)

	rec := app.do(t, http.MethodGet, "/employees/filter?salary=55000", "", admin)
	require.Equal(t, http.StatusOK, rec.Code)
	var filtered []domain.Employee
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &filtered))
	require.Len(t, filtered, 1)
	require.Equal(t, int64(2), filtered[0].ID)

	for _, v := range []string{"NaN", "Inf", "-Inf"} {
		rec = app.do(t, http.MethodGet, "/employees/filter?salary="+v, "", admin)
		require.Equal(t, http.StatusBadRequest, rec.Code, "salary=%s", v)
		require.Equal(t, "VALIDATION_ERROR", errorCode(t, rec))
	}

	rec = app.do(t, http.MethodGet, "/employees/filter?department=IT&salary=", "", admin)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &filtered))
	require.Len(t, filtered, 2)

	rec = app.do(t, http.MethodPut, "/employees/3",
		`{"name":"Cid","email":"cid@corp.io","salary":45000,"department":"IT","jobTitle":"Developer"}`, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Employee details updated successfully!", rec.Body.String())

	rec = app.do(t, http.MethodGet, "/employees/report/department/export", "", admin)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "employee_count_by_department.csv")
	require.Equal(t, "Department,Employee Count\nIT,3\n", rec.Body.String())

	rec = app.do(t, http.MethodDelete, "/employees/3", "", admin)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Employee deleted successfully!", rec.Body.String())

	rec = app.do(t, http.MethodGet, "/employees/3", "", admin)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "EMPLOYEE_NOT_FOUND", errorCode(t, rec))

	rec = app.do(t, http.MethodGet, "/employees/abc", "", admin)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.do(t, http.MethodPost, "/employees", `{"name":"","salary":-1}`, admin)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "VALIDATION_ERROR", errorCode(t, rec))

	rec = app.do(t, http.MethodGet, "/employees/report/job-title/export", "", admin)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Job Title,Employee Count\nDeveloper,1\nLead,1\n", rec.Body.String())
}
