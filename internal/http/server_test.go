package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"fincoach/internal/advice"
	"fincoach/internal/core"
)

type fakeAdvisor struct {
	mu   sync.Mutex
	resp advice.Response
	last advice.Request
}

func (f *fakeAdvisor) Respond(ctx context.Context, req advice.Request) advice.Response {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.last = req
	return f.resp
}

type fakeExpenses struct {
	result core.FetchResult
	calls  int
	token  string
	year   int
}

func (f *fakeExpenses) FetchAnnual(ctx context.Context, token string, year int) core.FetchResult {
	f.calls++
	f.token = token
	f.year = year
	return f.result
}

func newTestServer(t *testing.T, advisor *fakeAdvisor, expenses *fakeExpenses) *Server {
	t.Helper()
	s := NewServer("127.0.0.1:0", advisor, expenses)
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })
	return s
}

// do runs a request against the server's mux, carrying cookies forward.
func do(s *Server, method, target string, body []byte, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func TestIndexSetsSessionCookieAndGreets(t *testing.T) {
	s := newTestServer(t, &fakeAdvisor{}, &fakeExpenses{})

	rec := do(s, http.MethodGet, "/", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(rec.Result().Cookies()) == 0 {
		t.Error("first visit must set a session cookie")
	}
	if !strings.Contains(rec.Body.String(), "financial assistant") {
		t.Error("greeting missing from page")
	}
}

func TestIndexUnknownPathIs404(t *testing.T) {
	s := newTestServer(t, &fakeAdvisor{}, &fakeExpenses{})
	rec := do(s, http.MethodGet, "/nope", nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestIndexURLTokenAutoConnects(t *testing.T) {
	s := newTestServer(t, &fakeAdvisor{}, &fakeExpenses{})

	rec := do(s, http.MethodGet, "/?token=tok123", nil, nil)
	if !strings.Contains(rec.Body.String(), "Welcome back") {
		t.Error("URL token must switch to the connected greeting")
	}
}

func TestChatRoundTrip(t *testing.T) {
	advisor := &fakeAdvisor{resp: advice.Response{
		Text:     "some advice",
		Persona:  core.PersonaStudent,
		Provider: "groq",
	}}
	s := newTestServer(t, advisor, &fakeExpenses{})

	body, _ := json.Marshal(chatRequest{Message: "how do I budget?"})
	rec := do(s, http.MethodPost, "/chat", body, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["content"] != "some advice" || resp["persona"] != "student" || resp["provider"] != "groq" {
		t.Errorf("response = %v", resp)
	}
	if advisor.last.Message != "how do I budget?" {
		t.Errorf("advisor got %q", advisor.last.Message)
	}
}

func TestChatAcceptsFormBody(t *testing.T) {
	advisor := &fakeAdvisor{resp: advice.Response{Text: "ok"}}
	s := newTestServer(t, advisor, &fakeExpenses{})

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader("message=hello+there"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if advisor.last.Message != "hello there" {
		t.Errorf("advisor got %q", advisor.last.Message)
	}
}

func TestChatEmptyMessageRejected(t *testing.T) {
	s := newTestServer(t, &fakeAdvisor{}, &fakeExpenses{})

	body, _ := json.Marshal(chatRequest{Message: "   "})
	rec := do(s, http.MethodPost, "/chat", body, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestChatCarriesSessionState(t *testing.T) {
	advisor := &fakeAdvisor{resp: advice.Response{Text: "ok"}}
	s := newTestServer(t, advisor, &fakeExpenses{})

	// Establish a session and connect a token via the URL handoff.
	first := do(s, http.MethodGet, "/?token=tok456", nil, nil)
	cookies := first.Result().Cookies()

	body, _ := json.Marshal(chatRequest{Message: "hi"})
	do(s, http.MethodPost, "/chat", body, cookies)

	if advisor.last.Token != "tok456" {
		t.Errorf("advisor token = %q, want the session token", advisor.last.Token)
	}
	if advisor.last.SessionID == "" {
		t.Error("advisor must see the session ID")
	}
}

func TestChatConcurrentTurnsShareOneSession(t *testing.T) {
	advisor := &fakeAdvisor{resp: advice.Response{Text: "ok"}}
	s := newTestServer(t, advisor, &fakeExpenses{})

	first := do(s, http.MethodGet, "/", nil, nil)
	cookies := first.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("no session cookie")
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			body, _ := json.Marshal(chatRequest{Message: "hi"})
			if rec := do(s, http.MethodPost, "/chat", body, cookies); rec.Code != http.StatusOK {
				t.Errorf("status = %d: %s", rec.Code, rec.Body.String())
			}
		}()
	}
	wg.Wait()

	sess, ok := s.sessions.Get(cookies[0].Value)
	if !ok {
		t.Fatal("session lost")
	}
	// Greeting plus a user/assistant pair per turn.
	if got := len(sess.Transcript()); got != 1+8*2 {
		t.Errorf("transcript length = %d, want %d", got, 1+8*2)
	}
}

func TestAnalyzeRequiresToken(t *testing.T) {
	s := newTestServer(t, &fakeAdvisor{}, &fakeExpenses{})

	rec := do(s, http.MethodPost, "/analyze", []byte("{}"), nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "authentication token") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestAnalyzeReturnsSummaryAndChart(t *testing.T) {
	expenses := &fakeExpenses{result: core.DataResult(core.Dataset{
		"0": {{Name: "groceries", Amount: 100}},
		"1": {{Name: "bus pass", Amount: 50}},
	})}
	s := newTestServer(t, &fakeAdvisor{}, expenses)

	first := do(s, http.MethodGet, "/?token=tok", nil, nil)
	cookies := first.Result().Cookies()

	rec := do(s, http.MethodPost, "/analyze", []byte("{}"), cookies)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Content string            `json:"content"`
		Chart   []core.MonthTotal `json:"chart"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.Contains(resp.Content, "expense analysis for") {
		t.Errorf("content = %q", resp.Content)
	}
	if !strings.Contains(resp.Content, "Total Expenses") {
		t.Error("summary missing from analysis message")
	}
	if len(resp.Chart) != 2 {
		t.Errorf("chart points = %d, want 2", len(resp.Chart))
	}
	if expenses.token != "tok" {
		t.Errorf("fetched with token %q", expenses.token)
	}
}

func TestChartFetchFailure(t *testing.T) {
	expenses := &fakeExpenses{result: core.ErrorResult("Failed to fetch data: 500")}
	s := newTestServer(t, &fakeAdvisor{}, expenses)

	first := do(s, http.MethodGet, "/?token=tok", nil, nil)
	cookies := first.Result().Cookies()

	rec := do(s, http.MethodGet, "/api/chart", nil, cookies)
	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
}

func TestChartRejectsPost(t *testing.T) {
	s := newTestServer(t, &fakeAdvisor{}, &fakeExpenses{})
	rec := do(s, http.MethodPost, "/api/chart", []byte("{}"), nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestSessionConfigUpdatesAndValidates(t *testing.T) {
	advisor := &fakeAdvisor{resp: advice.Response{Text: "ok"}}
	s := newTestServer(t, advisor, &fakeExpenses{})

	first := do(s, http.MethodGet, "/", nil, nil)
	cookies := first.Result().Cookies()

	year := 2024
	persona := "student"
	token := "tok789"
	body, _ := json.Marshal(sessionConfigRequest{Token: &token, Year: &year, Persona: &persona})
	rec := do(s, http.MethodPost, "/session/config", body, cookies)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	// The next chat turn must carry the configured state.
	chat, _ := json.Marshal(chatRequest{Message: "hi"})
	do(s, http.MethodPost, "/chat", chat, cookies)
	if advisor.last.Token != "tok789" || advisor.last.Year != 2024 || advisor.last.Persona != core.PersonaStudent {
		t.Errorf("chat request = %+v", advisor.last)
	}

	// Out-of-range year is rejected.
	bad := 1990
	body, _ = json.Marshal(sessionConfigRequest{Year: &bad})
	if rec := do(s, http.MethodPost, "/session/config", body, cookies); rec.Code != http.StatusBadRequest {
		t.Errorf("1990 accepted: status = %d", rec.Code)
	}

	// "auto" clears the pin.
	auto := "auto"
	body, _ = json.Marshal(sessionConfigRequest{Persona: &auto})
	do(s, http.MethodPost, "/session/config", body, cookies)
	do(s, http.MethodPost, "/chat", chat, cookies)
	if advisor.last.Persona != "" {
		t.Errorf("persona pin not cleared: %q", advisor.last.Persona)
	}
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t, &fakeAdvisor{}, &fakeExpenses{})
	for _, path := range []string{"/healthz", "/readyz"} {
		if rec := do(s, http.MethodGet, path, nil, nil); rec.Code != http.StatusOK {
			t.Errorf("%s status = %d", path, rec.Code)
		}
	}
}

func TestRateLimiterBlocksBursts(t *testing.T) {
	rl := newRateLimiter()
	defer rl.stop()

	for i := 0; i < 20; i++ {
		if !rl.allow("1.2.3.4") {
			t.Fatalf("request %d blocked below the ceiling", i+1)
		}
	}
	if rl.allow("1.2.3.4") {
		t.Error("request 21 within a minute must be blocked")
	}
	if !rl.allow("5.6.7.8") {
		t.Error("other clients must not be affected")
	}
}
