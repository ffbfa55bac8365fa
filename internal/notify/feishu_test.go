package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type feishuStub struct {
	tokenCalls   int
	messageCalls int
	lastAuth     string
	lastBody     map[string]string
	tokenCode    int
	messageCode  int
}

func newFeishuStub(t *testing.T) (*feishuStub, *httptest.Server) {
	t.Helper()
	stub := &feishuStub{}
	mux := http.NewServeMux()
	mux.HandleFunc("/open-apis/auth/v3/tenant_access_token/internal", func(w http.ResponseWriter, r *http.Request) {
		stub.tokenCalls++
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"code":                stub.tokenCode,
			"msg":                 "ok",
			"tenant_access_token": "t-test-token",
			"expire":              7200,
		})
	})
	mux.HandleFunc("/open-apis/im/v1/messages", func(w http.ResponseWriter, r *http.Request) {
		stub.messageCalls++
		stub.lastAuth = r.Header.Get("Authorization")
		stub.lastBody = map[string]string{}
		_ = json.NewDecoder(r.Body).Decode(&stub.lastBody)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"code": stub.messageCode,
			"msg":  "ok",
		})
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return stub, server
}

func TestFeishuClient_Notify(t *testing.T) {
	stub, server := newFeishuStub(t)
	client := NewFeishuClient("cli_app", "secret", server.URL)

	if err := client.Notify(context.Background(), "ou_owner", "hello there"); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}

	if stub.lastAuth != "Bearer t-test-token" {
		t.Errorf("Authorization = %q, want bearer tenant token", stub.lastAuth)
	}
	if stub.lastBody["receive_id"] != "ou_owner" || stub.lastBody["msg_type"] != "text" {
		t.Errorf("message body = %v", stub.lastBody)
	}
	if !strings.Contains(stub.lastBody["content"], "hello there") {
		t.Errorf("content = %q, want the message text", stub.lastBody["content"])
	}
}

func TestFeishuClient_CachesTenantToken(t *testing.T) {
	stub, server := newFeishuStub(t)
	client := NewFeishuClient("cli_app", "secret", server.URL)

	for i := 0; i < 3; i++ {
		if err := client.Notify(context.Background(), "ou_owner", "hi"); err != nil {
			t.Fatalf("Notify() error = %v", err)
		}
	}
	if stub.tokenCalls != 1 {
		t.Errorf("token endpoint called %d times, want 1", stub.tokenCalls)
	}
	if stub.messageCalls != 3 {
		t.Errorf("message endpoint called %d times, want 3", stub.messageCalls)
	}
}

func TestFeishuClient_TokenError(t *testing.T) {
	stub, server := newFeishuStub(t)
	stub.tokenCode = 99991663
	client := NewFeishuClient("cli_app", "bad-secret", server.URL)

	err := client.Notify(context.Background(), "ou_owner", "hi")
	if err == nil {
		t.Fatal("Notify() error = nil, want token failure")
	}
	if !strings.Contains(err.Error(), "tenant access token") {
		t.Errorf("error = %v, want token failure detail", err)
	}
	if stub.messageCalls != 0 {
		t.Error("message endpoint called after token failure")
	}
}

func TestFeishuClient_SendError(t *testing.T) {
	stub, server := newFeishuStub(t)
	stub.messageCode = 230001
	client := NewFeishuClient("cli_app", "secret", server.URL)

	err := client.Notify(context.Background(), "ou_owner", "hi")
	if err == nil {
		t.Fatal("Notify() error = nil, want send failure")
	}
	if !strings.Contains(err.Error(), "failed to send message") {
		t.Errorf("error = %v, want send failure detail", err)
	}
}
