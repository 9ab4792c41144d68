package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"fincoach/internal/advice"
	"fincoach/internal/core"
)

// Opening messages for a fresh transcript. The connected variant is
// used when the expense tracker handed the auth token over in the URL.
const (
	connectedGreeting = "🎉 **Welcome back!** I've automatically connected to your expense data!\n\n💰 I'm your smart, helpful, and friendly financial assistant!\n\nI'm here to guide you step-by-step through:\n🎯 Expense tracking & budgeting (with YOUR data!)\n💰 Saving strategies & goal planning\n📊 Tax planning & optimization\n📈 Investment guidance\n🏦 Financial management tips\n\nSince you're logged in, I can provide **personalized advice** based on your actual spending patterns!\n\nTry asking me:\n• \"Analyze my spending patterns\"\n• \"How can I save 20% of my income?\"\n• \"Show me where I'm overspending\"\n\nI'll break everything down into clear steps and help you create actionable plans! 🚀"

	defaultGreeting = "Hello! 👋 I'm your smart, helpful, and friendly financial assistant! 💰\n\nI'm here to guide you step-by-step through:\n🎯 Expense tracking & budgeting\n💰 Saving strategies & goal planning\n📊 Tax planning & optimization\n📈 Investment guidance\n🏦 Financial management tips\n\nWhether you're a student or a working professional, I'll provide detailed, practical, and personalized advice just for you!\n\nTo get started, let me know:\n• Are you a student or a working professional?\n• What's your main financial goal or question today?\n\nI'll break everything down into clear steps and help you create actionable plans! 🚀"
)

// session resolves the browser's session from its cookie, creating a
// fresh one (and setting the cookie) when missing or expired.
func (s *Server) session(w http.ResponseWriter, r *http.Request) *Session {
	if c, err := r.Cookie(sessionCookie); err == nil {
		if sess, ok := s.sessions.Get(c.Value); ok {
			return sess
		}
	}

	sess := s.sessions.New()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sess
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed encoding JSON response", "error", err)
	}
}

func jsonError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// yearOptions lists the selectable analysis years, newest last.
func yearOptions() []int {
	current := time.Now().Year()
	years := make([]int, 0, 6)
	for y := current - 5; y <= current; y++ {
		years = append(years, y)
	}
	return years
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", "url", r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	sess := s.session(w, r)

	// Seamless handoff from the expense tracker: token in the URL.
	if token := strings.TrimSpace(r.URL.Query().Get("token")); token != "" {
		sess.Connect(token)
		slog.InfoContext(r.Context(), "Session auto-connected via URL token", "session_id", sess.ID)
	}

	sess.SeedGreeting(connectedGreeting, defaultGreeting)

	data := struct {
		Messages      []ChatMessage
		Years         []int
		SelectedYear  int
		Persona       string
		HasToken      bool
		AutoConnected bool
	}{
		Messages:      sess.Transcript(),
		Years:         yearOptions(),
		SelectedYear:  sess.Year(),
		Persona:       personaLabel(sess.Persona()),
		HasToken:      sess.Token() != "",
		AutoConnected: sess.AutoConnected(),
	}

	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Index template execution failed", "error", err, "template", "index.html")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// chatRequest is the POST /chat body.
type chatRequest struct {
	Message string `json:"message"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var message string
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			slog.ErrorContext(r.Context(), "Chat body decode error", "error", err)
			jsonError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		message = req.Message
	} else {
		if err := r.ParseForm(); err != nil {
			slog.ErrorContext(r.Context(), "Chat form parse error", "error", err)
			jsonError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		message = r.Form.Get("message")
	}
	message = strings.TrimSpace(message)
	if message == "" {
		jsonError(w, http.StatusBadRequest, "Message cannot be empty")
		return
	}

	sess := s.session(w, r)
	sess.Append(RoleUser, message)

	token, year, persona := sess.State()
	resp := s.advisor.Respond(r.Context(), advice.Request{
		SessionID: sess.ID,
		Message:   message,
		Token:     token,
		Year:      year,
		Persona:   persona,
	})
	sess.Append(RoleAssistant, resp.Text)

	writeJSON(w, http.StatusOK, map[string]string{
		"role":     RoleAssistant,
		"content":  resp.Text,
		"persona":  string(resp.Persona),
		"provider": resp.Provider,
	})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	sess := s.session(w, r)
	token, year, _ := sess.State()
	if token == "" {
		jsonError(w, http.StatusBadRequest, "Please enter your authentication token first!")
		return
	}

	result := s.expenses.FetchAnnual(r.Context(), token, year)
	analysis := core.Summarize(result)
	content := fmt.Sprintf("Here's your expense analysis for %d:\n\n%s", year, analysis)
	sess.Append(RoleAssistant, content)

	writeJSON(w, http.StatusOK, struct {
		Role    string            `json:"role"`
		Content string            `json:"content"`
		Chart   []core.MonthTotal `json:"chart"`
	}{
		Role:    RoleAssistant,
		Content: content,
		Chart:   core.ChartSeries(result),
	})
}

// handleChart serves the monthly totals series for the current
// session's token and year.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	sess := s.session(w, r)
	token, year, _ := sess.State()
	if token == "" {
		jsonError(w, http.StatusBadRequest, "Please enter your authentication token first!")
		return
	}

	result := s.expenses.FetchAnnual(r.Context(), token, year)
	if result.Failed() {
		jsonError(w, http.StatusBadGateway, result.Err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Chart []core.MonthTotal `json:"chart"`
	}{Chart: core.ChartSeries(result)})
}

// sessionConfigRequest is the POST /session/config body. Omitted
// fields leave the current value alone.
type sessionConfigRequest struct {
	Token   *string `json:"token"`
	Year    *int    `json:"year"`
	Persona *string `json:"persona"`
}

func (s *Server) handleSessionConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req sessionConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.ErrorContext(r.Context(), "Session config decode error", "error", err)
		jsonError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sess := s.session(w, r)

	if req.Token != nil {
		sess.SetToken(strings.TrimSpace(*req.Token))
	}
	if req.Year != nil {
		current := time.Now().Year()
		if *req.Year < current-5 || *req.Year > current {
			jsonError(w, http.StatusBadRequest, "Year out of range: "+strconv.Itoa(*req.Year))
			return
		}
		sess.SetYear(*req.Year)
	}
	if req.Persona != nil {
		switch v := strings.ToLower(strings.TrimSpace(*req.Persona)); v {
		case "", "auto", "auto-detect":
			sess.Pin("")
		default:
			persona, ok := core.ParsePersona(v)
			if !ok {
				jsonError(w, http.StatusBadRequest, "Unknown persona: "+v)
				return
			}
			sess.Pin(persona)
		}
	}

	writeJSON(w, http.StatusOK, struct {
		HasToken bool   `json:"has_token"`
		Year     int    `json:"year"`
		Persona  string `json:"persona"`
	}{HasToken: sess.Token() != "", Year: sess.Year(), Persona: personaLabel(sess.Persona())})
}

// personaLabel renders a pinned persona for the UI; the empty pin
// means auto-detection.
func personaLabel(p core.Persona) string {
	if p == "" {
		return "auto"
	}
	return string(p)
}
