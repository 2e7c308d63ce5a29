package internal

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/iksnae/ideasurge/testutil"
	"github.com/tidwall/gjson"
)

var testSettings = LLMSettings{Provider: "openai", BaseURL: "https://llm.example", ModelID: "gpt-test", APIKey: "sk-test"}

func TestStreamClient_OpenSearch(t *testing.T) {
	stream := testutil.NewFrameBuilder().Text("hi").String()
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/search" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		gotBody, _ = io.ReadAll(r.Body)
		_, _ = io.WriteString(w, stream)
	}))
	defer srv.Close()

	client := NewStreamClient(srv.URL+"/", testSettings, srv.Client())
	body, err := client.OpenSearch(context.Background(), "tools for florists")
	if err != nil {
		t.Fatalf("OpenSearch() error = %v", err)
	}
	defer body.Close()

	dec, err := ConsumeStream(context.Background(), body, nil)
	if err != nil {
		t.Fatalf("ConsumeStream() error = %v", err)
	}
	if dec.Text() != "hi" {
		t.Errorf("Text() = %q, want hi", dec.Text())
	}

	if q := gjson.GetBytes(gotBody, "query").String(); q != "tools for florists" {
		t.Errorf("query = %q", q)
	}
	if key := gjson.GetBytes(gotBody, "settings.apiKey").String(); key != "sk-test" {
		t.Errorf("settings.apiKey = %q", key)
	}
	if gjson.GetBytes(gotBody, "settings.exaApiKey").Exists() {
		t.Error("empty exaApiKey should be omitted")
	}
}

func TestStreamClient_OpenDeepDive(t *testing.T) {
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/idea-deepen" {
			t.Errorf("path = %s", r.URL.Path)
		}
		gotBody, _ = io.ReadAll(r.Body)
	}))
	defer srv.Close()

	idea := CreateTestIdea(1)
	client := NewStreamClient(srv.URL, testSettings, srv.Client())
	body, err := client.OpenDeepDive(context.Background(), idea, DeepDiveRequest{IdeaID: idea.ID, Mode: ModePreset, Focus: FocusRisks})
	if err != nil {
		t.Fatalf("OpenDeepDive() error = %v", err)
	}
	_ = body.Close()

	if got := gjson.GetBytes(gotBody, "idea.title").String(); got != idea.Title {
		t.Errorf("idea.title = %q", got)
	}
	if got := gjson.GetBytes(gotBody, "request.focus").String(); got != "risks" {
		t.Errorf("request.focus = %q", got)
	}
}

func TestStreamClient_Errors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
		wantMsg    string
	}{
		{name: "error message from body", status: http.StatusBadRequest, body: `{"error":"Model not supported"}`, wantStatus: 400, wantMsg: "Model not supported"},
		{name: "fallback message", status: http.StatusBadGateway, body: "<html>bad gateway</html>", wantStatus: 502, wantMsg: "Request failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := NewStreamClient(srv.URL, testSettings, srv.Client()).OpenSearch(context.Background(), "q")
			var terr *TransportError
			if !errors.As(err, &terr) {
				t.Fatalf("OpenSearch() error = %v, want *TransportError", err)
			}
			if terr.Status != tt.wantStatus || terr.Err.Error() != tt.wantMsg {
				t.Errorf("TransportError = %d %q, want %d %q", terr.Status, terr.Err, tt.wantStatus, tt.wantMsg)
			}
		})
	}
}

func TestStreamClient_Validation(t *testing.T) {
	client := NewStreamClient("http://127.0.0.1:0", LLMSettings{}, nil)

	if _, err := client.OpenSearch(context.Background(), "   "); err == nil {
		t.Error("OpenSearch() accepted an empty query")
	}
	_, err := client.OpenSearch(context.Background(), "q")
	if err == nil || !strings.Contains(err.Error(), "API key") {
		t.Errorf("OpenSearch() without key error = %v", err)
	}
	_, err = client.OpenDeepDive(context.Background(), CreateTestIdea(1), DeepDiveRequest{Mode: ModeCustom, Focus: FocusCustom})
	if err == nil || !strings.Contains(err.Error(), "prompt") {
		t.Errorf("OpenDeepDive() custom without prompt error = %v", err)
	}
}

func TestStreamClient_CancelledRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewStreamClient(srv.URL, testSettings, srv.Client()).OpenSearch(ctx, "q")
	if !IsAbort(err) {
		t.Errorf("OpenSearch() error = %v, want abort", err)
	}
}

func TestStreamClient_Chat(t *testing.T) {
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/idea-chat" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"reply":"<think>pricing first</think>\n  Start with a $9 plan.  "}`)
	}))
	defer srv.Close()

	idea := CreateTestIdea(1)
	dive := CreateTestDeepDive(idea.ID)
	now := mustTime(t, "2024-05-02T10:00:00Z")
	messages := []ChatMessage{
		NewChatMessage(ChatRoleUser, "How should I price it?", now),
	}

	reply, err := NewStreamClient(srv.URL, testSettings, srv.Client()).Chat(context.Background(), idea, &dive, messages)
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if reply != "Start with a $9 plan." {
		t.Errorf("Chat() reply = %q, want reasoning stripped and trimmed", reply)
	}

	tests := []struct {
		path string
		want string
	}{
		{"idea.title", idea.Title},
		{"deepDive.summary", dive.Summary},
		{"deepDive.sections.0.title", dive.Sections[0].Title},
		{"messages.0.role", "user"},
		{"messages.0.content", "How should I price it?"},
		{"settings.apiKey", "sk-test"},
	}
	for _, tt := range tests {
		if got := gjson.GetBytes(gotBody, tt.path).String(); got != tt.want {
			t.Errorf("%s = %q, want %q", tt.path, got, tt.want)
		}
	}
	if gjson.GetBytes(gotBody, "deepDive.sections.0.key").Exists() {
		t.Error("section keys should not be sent")
	}
	if gjson.GetBytes(gotBody, "messages.0.id").Exists() {
		t.Error("message ids should not be sent")
	}
}

func TestStreamClient_ChatWithoutDeepDive(t *testing.T) {
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		_, _ = io.WriteString(w, `{"reply":"ok"}`)
	}))
	defer srv.Close()

	messages := []ChatMessage{NewChatMessage(ChatRoleUser, "hi", mustTime(t, "2024-05-02T10:00:00Z"))}
	if _, err := NewStreamClient(srv.URL, testSettings, srv.Client()).Chat(context.Background(), CreateTestIdea(1), nil, messages); err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if dive := gjson.GetBytes(gotBody, "deepDive"); dive.Type != gjson.Null || !dive.Exists() {
		t.Errorf("deepDive = %s, want null", dive.Raw)
	}
}

func TestStreamClient_ChatErrors(t *testing.T) {
	messages := []ChatMessage{NewChatMessage(ChatRoleUser, "hi", mustTime(t, "2024-05-02T10:00:00Z"))}
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{name: "error from body", status: http.StatusBadRequest, body: `{"error":"Invalid chat payload."}`, wantMsg: "Invalid chat payload."},
		{name: "fallback message", status: http.StatusInternalServerError, body: "oops", wantMsg: "Brainstorm request failed"},
		{name: "empty reply", status: http.StatusOK, body: `{"reply":"<think>only thoughts</think>"}`, wantMsg: "brainstorm response was empty"},
		{name: "missing reply", status: http.StatusOK, body: `{}`, wantMsg: "brainstorm response was empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := NewStreamClient(srv.URL, testSettings, srv.Client()).Chat(context.Background(), CreateTestIdea(1), nil, messages)
			var terr *TransportError
			if !errors.As(err, &terr) {
				t.Fatalf("Chat() error = %v, want *TransportError", err)
			}
			if terr.Status != tt.status || terr.Err.Error() != tt.wantMsg {
				t.Errorf("TransportError = %d %q, want %d %q", terr.Status, terr.Err, tt.status, tt.wantMsg)
			}
		})
	}

	if _, err := NewStreamClient("http://127.0.0.1:0", testSettings, nil).Chat(context.Background(), CreateTestIdea(1), nil, nil); err == nil {
		t.Error("Chat() accepted an empty conversation")
	}
}
