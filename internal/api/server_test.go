package api

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/ashveldt/wartide/internal/battle"
	"github.com/ashveldt/wartide/internal/battle/service"
	"github.com/ashveldt/wartide/internal/battle/storage/sqlite"
	"github.com/ashveldt/wartide/internal/combat"
	"github.com/ashveldt/wartide/internal/grant"
	"github.com/ashveldt/wartide/internal/telemetry"
)

func newTestServer(t *testing.T, verifier *grant.Verifier) (*httptest.Server, *service.Service) {
	t.Helper()

	store, err := sqlite.Open(filepath.Join(t.TempDir(), "battles.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})

	svc := service.New(store, telemetry.NewEmitter(store))
	srv, err := New("127.0.0.1:0", svc, verifier)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts, svc
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func getJSON(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	return resp
}

func decodeInto(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func wantStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("status = %d, want %d", resp.StatusCode, want)
	}
}

func wantErrorCode(t *testing.T, resp *http.Response, status int, code string) {
	t.Helper()
	wantStatus(t, resp, status)
	var payload errorPayload
	decodeInto(t, resp, &payload)
	if payload.Error.Code != code {
		t.Fatalf("error code = %q, want %q", payload.Error.Code, code)
	}
	if payload.Error.Message == "" {
		t.Fatalf("expected a non-empty error message")
	}
}

func tankDuel() (combatantPayload, combatantPayload) {
	attacker := combatantPayload{
		Unit:       "tank",
		HP:         9.5,
		Officer:    "max",
		PowerState: "power",
		Terrain:    "city",
		Comtowers:  1,
	}
	defender := combatantPayload{
		Unit:    "tank",
		HP:      10,
		Officer: "kanbei",
		Terrain: "mountain",
	}
	return attacker, defender
}

func createBattle(t *testing.T, baseURL, name string) battlePayload {
	t.Helper()
	resp := postJSON(t, baseURL+"/v1/battles", createBattleRequest{Name: name})
	wantStatus(t, resp, http.StatusCreated)
	var created battlePayload
	decodeInto(t, resp, &created)
	if created.ID == "" {
		t.Fatalf("expected a battle id")
	}
	return created
}

func seedPtr(v uint64) *uint64 { return &v }

func TestHealthz(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	resp := getJSON(t, ts.URL+"/healthz")
	wantStatus(t, resp, http.StatusOK)

	var body map[string]string
	decodeInto(t, resp, &body)
	if body["status"] != "ok" {
		t.Fatalf("status = %q, want %q", body["status"], "ok")
	}
}

func TestRules(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	resp := getJSON(t, ts.URL+"/v1/rules")
	wantStatus(t, resp, http.StatusOK)

	var rules combat.Rules
	decodeInto(t, resp, &rules)
	if rules.Version != combat.RulesVersion {
		t.Fatalf("version = %q, want %q", rules.Version, combat.RulesVersion)
	}
	if rules.LuckModel != "single-roll" {
		t.Fatalf("luck model = %q, want %q", rules.LuckModel, "single-roll")
	}
}

func TestCreateAndGetBattle(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	created := createBattle(t, ts.URL, "Sea Breeze")
	if created.Name != "Sea Breeze" {
		t.Fatalf("name = %q, want %q", created.Name, "Sea Breeze")
	}
	if created.CreatedAt.IsZero() {
		t.Fatalf("expected created_at to be set")
	}

	resp := getJSON(t, ts.URL+"/v1/battles/"+created.ID)
	wantStatus(t, resp, http.StatusOK)
	var fetched battlePayload
	decodeInto(t, resp, &fetched)
	if fetched.ID != created.ID || fetched.Name != created.Name {
		t.Fatalf("fetched %+v, want %+v", fetched, created)
	}
}

func TestGetBattleMissing(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	resp := getJSON(t, ts.URL+"/v1/battles/no-such-battle")
	wantErrorCode(t, resp, http.StatusNotFound, "NOT_FOUND")
}

func TestCreateBattleValidation(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	resp := postJSON(t, ts.URL+"/v1/battles", createBattleRequest{Name: "   "})
	wantErrorCode(t, resp, http.StatusBadRequest, "BATTLE_NAME_EMPTY")

	malformed, err := http.Post(ts.URL+"/v1/battles", "application/json", bytes.NewReader([]byte("{not json")))
	if err != nil {
		t.Fatalf("POST malformed: %v", err)
	}
	wantErrorCode(t, malformed, http.StatusBadRequest, "REQUEST_MALFORMED")
}

func TestListBattles(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	first := createBattle(t, ts.URL, "battle-one")
	second := createBattle(t, ts.URL, "battle-two")

	resp := getJSON(t, ts.URL+"/v1/battles")
	wantStatus(t, resp, http.StatusOK)

	var body struct {
		Battles []battlePayload `json:"battles"`
	}
	decodeInto(t, resp, &body)
	if len(body.Battles) != 2 {
		t.Fatalf("got %d battles, want 2", len(body.Battles))
	}
	seen := map[string]bool{}
	for _, b := range body.Battles {
		seen[b.ID] = true
	}
	if !seen[first.ID] || !seen[second.ID] {
		t.Fatalf("listing missing created battles: %+v", body.Battles)
	}
}

func TestResolveEngagementEndToEnd(t *testing.T) {
	ts, _ := newTestServer(t, nil)
	created := createBattle(t, ts.URL, "journal-test")
	attacker, defender := tankDuel()

	resp := postJSON(t, ts.URL+"/v1/battles/"+created.ID+"/engagements", matchupRequest{
		Attacker: attacker,
		Defender: defender,
		Seed:     seedPtr(4242),
		Mode:     "replay",
	})
	wantStatus(t, resp, http.StatusCreated)

	var stored engagementPayload
	decodeInto(t, resp, &stored)
	if stored.Seq != 1 {
		t.Fatalf("seq = %d, want 1", stored.Seq)
	}
	if stored.Seed != 4242 || stored.SeedSource != "client" || stored.RollMode != "REPLAY" {
		t.Fatalf("provenance = %d/%s/%s, want 4242/client/REPLAY",
			stored.Seed, stored.SeedSource, stored.RollMode)
	}

	want, err := battle.Engage(4242, attacker.toDomain(), defender.toDomain())
	if err != nil {
		t.Fatalf("engage: %v", err)
	}
	if stored.Outcome.First.Report.Damage != want.First.Report.Damage {
		t.Fatalf("first damage = %d, want %d",
			stored.Outcome.First.Report.Damage, want.First.Report.Damage)
	}
	if (stored.Outcome.Counter == nil) != (want.Counter == nil) {
		t.Fatalf("counter presence = %v, want %v", stored.Outcome.Counter != nil, want.Counter != nil)
	}

	list := getJSON(t, ts.URL+"/v1/battles/"+created.ID+"/engagements")
	wantStatus(t, list, http.StatusOK)
	var page struct {
		Engagements []engagementPayload `json:"engagements"`
	}
	decodeInto(t, list, &page)
	if len(page.Engagements) != 1 || page.Engagements[0].ID != stored.ID {
		t.Fatalf("listing = %+v, want the stored engagement", page.Engagements)
	}

	verify := postJSON(t, ts.URL+"/v1/battles/"+created.ID+"/verify", nil)
	wantStatus(t, verify, http.StatusOK)
	var report verificationPayload
	decodeInto(t, verify, &report)
	if !report.Clean || report.Checked != 1 {
		t.Fatalf("verification = %+v, want clean with 1 checked", report)
	}
}

func TestResolveEngagementUnknownBattle(t *testing.T) {
	ts, _ := newTestServer(t, nil)
	attacker, defender := tankDuel()

	resp := postJSON(t, ts.URL+"/v1/battles/ghost/engagements", matchupRequest{
		Attacker: attacker,
		Defender: defender,
	})
	wantErrorCode(t, resp, http.StatusNotFound, "NOT_FOUND")
}

func TestResolveEngagementRejectsUnknownUnit(t *testing.T) {
	ts, _ := newTestServer(t, nil)
	created := createBattle(t, ts.URL, "bad-unit")
	attacker, defender := tankDuel()
	attacker.Unit = "zeppelin"

	resp := postJSON(t, ts.URL+"/v1/battles/"+created.ID+"/engagements", matchupRequest{
		Attacker: attacker,
		Defender: defender,
	})
	wantErrorCode(t, resp, http.StatusBadRequest, "UNIT_UNKNOWN")
}

func TestListEngagementsPaging(t *testing.T) {
	ts, _ := newTestServer(t, nil)
	created := createBattle(t, ts.URL, "paging")
	attacker, defender := tankDuel()

	for seed := uint64(1); seed <= 3; seed++ {
		resp := postJSON(t, ts.URL+"/v1/battles/"+created.ID+"/engagements", matchupRequest{
			Attacker: attacker,
			Defender: defender,
			Seed:     seedPtr(seed),
			Mode:     "replay",
		})
		wantStatus(t, resp, http.StatusCreated)
		resp.Body.Close()
	}

	limited := getJSON(t, ts.URL+"/v1/battles/"+created.ID+"/engagements?limit=2")
	wantStatus(t, limited, http.StatusOK)
	var page struct {
		Engagements []engagementPayload `json:"engagements"`
	}
	decodeInto(t, limited, &page)
	if len(page.Engagements) != 2 {
		t.Fatalf("got %d engagements, want 2", len(page.Engagements))
	}

	rest := getJSON(t, fmt.Sprintf("%s/v1/battles/%s/engagements?after_seq=%d",
		ts.URL, created.ID, page.Engagements[1].Seq))
	wantStatus(t, rest, http.StatusOK)
	var tail struct {
		Engagements []engagementPayload `json:"engagements"`
	}
	decodeInto(t, rest, &tail)
	if len(tail.Engagements) != 1 || tail.Engagements[0].Seed != 3 {
		t.Fatalf("tail = %+v, want the seed-3 engagement", tail.Engagements)
	}

	bad := getJSON(t, ts.URL+"/v1/battles/"+created.ID+"/engagements?after_seq=abc")
	wantErrorCode(t, bad, http.StatusBadRequest, "REQUEST_MALFORMED")
}

func TestDamageResolveSimulates(t *testing.T) {
	ts, _ := newTestServer(t, nil)
	attacker, defender := tankDuel()

	resp := postJSON(t, ts.URL+"/v1/damage/resolve", matchupRequest{
		Attacker: attacker,
		Defender: defender,
		Seed:     seedPtr(99),
	})
	wantStatus(t, resp, http.StatusOK)

	var sim simulationPayload
	decodeInto(t, resp, &sim)
	if sim.Seed != 99 || sim.SeedSource != "client" || sim.RollMode != "LIVE" {
		t.Fatalf("provenance = %d/%s/%s, want 99/client/LIVE", sim.Seed, sim.SeedSource, sim.RollMode)
	}

	want, err := battle.Engage(99, attacker.toDomain(), defender.toDomain())
	if err != nil {
		t.Fatalf("engage: %v", err)
	}
	if sim.Outcome.First.Report.Damage != want.First.Report.Damage {
		t.Fatalf("damage = %d, want %d", sim.Outcome.First.Report.Damage, want.First.Report.Damage)
	}

	battles := getJSON(t, ts.URL+"/v1/battles")
	wantStatus(t, battles, http.StatusOK)
	var body struct {
		Battles []battlePayload `json:"battles"`
	}
	decodeInto(t, battles, &body)
	if len(body.Battles) != 0 {
		t.Fatalf("simulation created battles: %+v", body.Battles)
	}
}

func TestDamageExplain(t *testing.T) {
	ts, _ := newTestServer(t, nil)
	attacker, defender := tankDuel()

	resp := postJSON(t, ts.URL+"/v1/damage/explain", matchupRequest{
		Attacker: attacker,
		Defender: defender,
		Seed:     seedPtr(31),
	})
	wantStatus(t, resp, http.StatusOK)

	var explanation explanationPayload
	decodeInto(t, resp, &explanation)
	if len(explanation.Steps) == 0 {
		t.Fatalf("expected narration steps")
	}

	want, err := battle.Engage(31, attacker.toDomain(), defender.toDomain())
	if err != nil {
		t.Fatalf("engage: %v", err)
	}
	if explanation.Report.Damage != want.First.Report.Damage {
		t.Fatalf("damage = %d, want %d", explanation.Report.Damage, want.First.Report.Damage)
	}
}

func TestDamageDistribution(t *testing.T) {
	ts, _ := newTestServer(t, nil)
	attacker, defender := tankDuel()

	resp := postJSON(t, ts.URL+"/v1/damage/distribution", matchupRequest{
		Attacker: attacker,
		Defender: defender,
	})
	wantStatus(t, resp, http.StatusOK)

	var dist distributionPayload
	decodeInto(t, resp, &dist)
	if len(dist.Outcomes) == 0 {
		t.Fatalf("expected outcomes")
	}
	total := 0.0
	for _, o := range dist.Outcomes {
		total += o.Probability
	}
	if diff := total - 1; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("probabilities sum to %v, want 1", total)
	}
	if float64(dist.Min) > dist.Mean || dist.Mean > float64(dist.Max) {
		t.Fatalf("mean %v outside [%d, %d]", dist.Mean, dist.Min, dist.Max)
	}
}

func TestEngagementsRequireGrant(t *testing.T) {
	public, private, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate keys: %v", err)
	}
	verifier, err := grant.NewVerifier("wartide-test", "battle-api", public, time.Now)
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}
	signer, err := grant.NewSigner("wartide-test", "battle-api", private, 5*time.Minute, time.Now)
	if err != nil {
		t.Fatalf("new signer: %v", err)
	}

	ts, _ := newTestServer(t, verifier)
	created := createBattle(t, ts.URL, "guarded")
	attacker, defender := tankDuel()
	body := matchupRequest{Attacker: attacker, Defender: defender, Seed: seedPtr(7), Mode: "replay"}

	missing := postJSON(t, ts.URL+"/v1/battles/"+created.ID+"/engagements", body)
	wantErrorCode(t, missing, http.StatusUnauthorized, "GRANT_INVALID")

	wrongBattle, err := signer.Issue("some-other-battle", "cmd-1")
	if err != nil {
		t.Fatalf("issue grant: %v", err)
	}
	resp := postWithBearer(t, ts.URL+"/v1/battles/"+created.ID+"/engagements", body, wrongBattle)
	wantErrorCode(t, resp, http.StatusForbidden, "GRANT_MISMATCH")

	token, err := signer.Issue(created.ID, "cmd-1")
	if err != nil {
		t.Fatalf("issue grant: %v", err)
	}
	granted := postWithBearer(t, ts.URL+"/v1/battles/"+created.ID+"/engagements", body, token)
	wantStatus(t, granted, http.StatusCreated)
	var stored engagementPayload
	decodeInto(t, granted, &stored)
	if stored.BattleID != created.ID {
		t.Fatalf("battle id = %q, want %q", stored.BattleID, created.ID)
	}

	// Reads stay open even when appends are guarded.
	list := getJSON(t, ts.URL+"/v1/battles/"+created.ID+"/engagements")
	wantStatus(t, list, http.StatusOK)
	list.Body.Close()
}

func postWithBearer(t *testing.T, url string, body any, token string) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"missing", "", ""},
		{"bearer", "Bearer token-1", "token-1"},
		{"lowercase scheme", "bearer token-2", "token-2"},
		{"wrong scheme", "Basic dXNlcg==", ""},
		{"bare scheme", "Bearer ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			if got := bearerToken(r); got != tt.want {
				t.Fatalf("bearerToken = %q, want %q", got, tt.want)
			}
		})
	}
}
