package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ensembleops/ensemble/internal/auth"
	"github.com/ensembleops/ensemble/internal/config"
	"github.com/ensembleops/ensemble/internal/db/models"
	"github.com/ensembleops/ensemble/internal/repository"
	"github.com/ensembleops/ensemble/internal/services/links"
	"github.com/ensembleops/ensemble/internal/services/scorecard"
	"github.com/ensembleops/ensemble/internal/services/teams"
	"github.com/ensembleops/ensemble/internal/services/turnover"
	"github.com/ensembleops/ensemble/internal/testutil"
	"github.com/ensembleops/ensemble/internal/validation"
)

type fixture struct {
	router   chi.Router
	sessions *auth.SessionStore
	teams    *repository.BunTeamRepository
	apps     *repository.BunApplicationRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)

	sessions, err := auth.NewSessionStore(config.SessionConfig{
		HashKey:    "0123456789abcdef0123456789abcdef",
		BlockKey:   "abcdef0123456789",
		TTL:        time.Hour,
		CookieName: "ensemble.session",
	}, repository.NewBunSessionRepository(db), false)
	require.NoError(t, err)

	validator, err := validation.NewValidator(validation.DefaultCacheSize)
	require.NoError(t, err)

	teamRepo := repository.NewBunTeamRepository(db)
	appRepo := repository.NewBunApplicationRepository(db)

	router := NewRouter(RouterOptions{
		Teams:     teams.NewService(teamRepo, appRepo, nil),
		Turnover:  turnover.NewService(repository.NewBunTurnoverRepository(db), appRepo, time.Hour, nil),
		Scorecard: scorecard.NewService(repository.NewBunScorecardRepository(db), appRepo, nil),
		Links:     links.NewService(repository.NewBunLinkRepository(db), nil),
		Sessions:  sessions,
		Validator: validator,
	})

	return &fixture{router: router, sessions: sessions, teams: teamRepo, apps: appRepo}
}

func (f *fixture) createTeam(t *testing.T, name string) *models.Team {
	t.Helper()
	team := &models.Team{TeamName: name, UserGroup: name + "-users", AdminGroup: name + "-admins"}
	require.NoError(t, f.teams.Create(context.Background(), team))
	return team
}

// do sends a request carrying a cookie issued for sess (when non-nil).
func (f *fixture) do(t *testing.T, sess *auth.Session, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if sess != nil {
		cookieRec := httptest.NewRecorder()
		require.NoError(t, f.sessions.Issue(context.Background(), cookieRec, sess))
		for _, c := range cookieRec.Result().Cookies() {
			req.AddCookie(c)
		}
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, nil, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestAPI_RequiresSession(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, nil, http.MethodGet, "/api/auth/whoami", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Unauthorized", decodeError(t, rec))
}

func TestAPI_ExpiredSessionIsUnauthenticated(t *testing.T) {
	f := newFixture(t)
	sess := testutil.Session(t, "alice@example.com")
	sess.ExpiresAt = time.Now().Add(-time.Minute).Unix()

	rec := f.do(t, sess, http.MethodGet, "/api/auth/whoami", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestWhoami(t *testing.T) {
	f := newFixture(t)
	sess := testutil.Session(t, "alice@example.com", testutil.Admin("t1"))

	rec := f.do(t, sess, http.MethodGet, "/api/auth/whoami", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got auth.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "alice@example.com", got.User.Email)
	assert.Equal(t, []auth.Permission{testutil.Admin("t1")}, got.Permissions)
}

func TestLogout_ClearsCookie(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, nil, http.MethodPost, "/auth/logout", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "ensemble.session", cookies[0].Name)
	assert.True(t, cookies[0].MaxAge < 0)
}

func TestWhoami_LargePermissionSet(t *testing.T) {
	f := newFixture(t)

	perms := make([]auth.Permission, 0, 100)
	for i := 0; i < 100; i++ {
		perms = append(perms, auth.Permission{TeamID: fmt.Sprintf("team-%03d", i), TeamName: fmt.Sprintf("Platform Team %d", i), Role: auth.RoleMember})
	}
	sess := testutil.Session(t, "wide@example.com", perms...)

	rec := f.do(t, sess, http.MethodGet, "/api/auth/whoami", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got auth.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Len(t, got.Permissions, 100)
}

func TestLogout_RevokesSession(t *testing.T) {
	f := newFixture(t)
	sess := testutil.Session(t, "alice@example.com")

	cookieRec := httptest.NewRecorder()
	require.NoError(t, f.sessions.Issue(context.Background(), cookieRec, sess))
	cookies := cookieRec.Result().Cookies()

	send := func(method, path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, nil)
		for _, c := range cookies {
			req.AddCookie(c)
		}
		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, req)
		return rec
	}

	require.Equal(t, http.StatusOK, send(http.MethodGet, "/api/auth/whoami").Code)
	require.Equal(t, http.StatusNoContent, send(http.MethodPost, "/auth/logout").Code)
	assert.Equal(t, http.StatusUnauthorized, send(http.MethodGet, "/api/auth/whoami").Code)
}

func TestSSORoutesDisabledWithoutRelyingParty(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, nil, http.MethodGet, "/auth/sso/login", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTeamRoutes_Guards(t *testing.T) {
	f := newFixture(t)
	team := f.createTeam(t, "payments")
	path := "/api/teams/" + team.ID

	admin := testutil.Session(t, "admin@example.com", testutil.Admin(team.ID))
	member := testutil.Session(t, "member@example.com", testutil.Member(team.ID))
	outsider := testutil.Session(t, "outsider@example.com")

	rec := f.do(t, member, http.MethodGet, path, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, outsider, http.MethodGet, path, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Forbidden: team membership required", decodeError(t, rec))

	update := `{"teamName":"payments-core","userGroup":"pay-users","adminGroup":"pay-admins"}`
	rec = f.do(t, member, http.MethodPut, path, update)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Forbidden: team admin required", decodeError(t, rec))

	rec = f.do(t, admin, http.MethodPut, path, update)
	require.Equal(t, http.StatusOK, rec.Code)
	var updated models.Team
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "payments-core", updated.TeamName)

	rec = f.do(t, admin, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCreateTeam_ValidatesBody(t *testing.T) {
	f := newFixture(t)
	sess := testutil.Session(t, "alice@example.com")

	rec := f.do(t, sess, http.MethodPost, "/api/teams", `{"teamName":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeError(t, rec), "invalid input")

	rec = f.do(t, sess, http.MethodPost, "/api/teams", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, sess, http.MethodPost, "/api/teams", `{"teamName":"ops","userGroup":"ops-u","adminGroup":"ops-a"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created models.Team
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "alice@example.com", created.CreatedBy)

	rec = f.do(t, sess, http.MethodPost, "/api/teams", `{"teamName":"ops","userGroup":"ops-u","adminGroup":"ops-a"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestListTeams_OnlyPermitted(t *testing.T) {
	f := newFixture(t)
	mine := f.createTeam(t, "mine")
	f.createTeam(t, "theirs")
	sess := testutil.Session(t, "alice@example.com", testutil.Member(mine.ID))

	rec := f.do(t, sess, http.MethodGet, "/api/teams", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var views []teams.TeamView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &views))
	require.Len(t, views, 1)
	assert.Equal(t, mine.ID, views[0].ID)
	assert.Equal(t, auth.RoleMember, views[0].Role)
}

func TestTurnoverRoutes_FinalizeCooldown(t *testing.T) {
	f := newFixture(t)
	team := f.createTeam(t, "sre")
	sess := testutil.Session(t, "member@example.com", testutil.Member(team.ID))
	base := "/api/teams/" + team.ID + "/turnovers"

	rec := f.do(t, sess, http.MethodPost, base+"/finalize", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = f.do(t, sess, http.MethodPost, base, `{"entryType":"FYI","title":"DB failover at 02:00"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var entry models.TurnoverEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entry))

	rec = f.do(t, sess, http.MethodPost, base+"/finalize", "")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(t, sess, http.MethodPut, base+"/"+entry.ID, `{"entryType":"FYI","title":"edited"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = f.do(t, sess, http.MethodPost, base, `{"entryType":"FYI","title":"second"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(t, sess, http.MethodPost, base+"/finalize", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	rec = f.do(t, sess, http.MethodGet, base+"?includeFinalized=true", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var all []models.TurnoverEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	assert.Len(t, all, 2)

	rec = f.do(t, sess, http.MethodGet, base+"/finalizations?limit=5", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, sess, http.MethodGet, base+"/finalizations?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScorecardRoutes(t *testing.T) {
	f := newFixture(t)
	team := f.createTeam(t, "web")
	app := &models.Application{TeamID: team.ID, Name: "storefront", Tier: 1}
	require.NoError(t, f.apps.Create(context.Background(), app))

	member := testutil.Session(t, "member@example.com", testutil.Member(team.ID))
	admin := testutil.Session(t, "admin@example.com", testutil.Admin(team.ID))
	base := "/api/teams/" + team.ID + "/scorecard"

	body := `{"applicationId":"` + app.ID + `","year":2026,"month":3,"availability":99.95,"volume":1200}`
	rec := f.do(t, member, http.MethodPut, base, body)
	require.Equal(t, http.StatusOK, rec.Code)
	var entry models.ScorecardEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entry))

	rec = f.do(t, member, http.MethodGet, base+"?year=2026", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var entries []models.ScorecardEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	assert.Len(t, entries, 1)

	rec = f.do(t, member, http.MethodDelete, base+"/"+entry.ID, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, admin, http.MethodDelete, base+"/"+entry.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestLinkRoutes(t *testing.T) {
	f := newFixture(t)
	team := f.createTeam(t, "platform")
	other := f.createTeam(t, "other")

	member := testutil.Session(t, "member@example.com", testutil.Member(team.ID))
	stranger := testutil.Session(t, "stranger@example.com", testutil.Admin(other.ID))

	rec := f.do(t, member, http.MethodPost, "/api/teams/"+team.ID+"/links",
		`{"title":"Runbooks","url":"https://wiki.example.com/runbooks","category":"docs"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var link models.Link
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &link))

	rec = f.do(t, stranger, http.MethodGet, "/api/links?q=runbook", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var found []models.Link
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &found))
	require.Len(t, found, 1)
	assert.Equal(t, link.ID, found[0].ID)

	// Another team's admin cannot reach the link through their own team.
	rec = f.do(t, stranger, http.MethodDelete, "/api/teams/"+other.ID+"/links/"+link.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, member, http.MethodPost, "/api/teams/"+team.ID+"/links", `{"title":"Bad","url":"ftp://x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
