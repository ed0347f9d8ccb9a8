package errors

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sthembisoo/raygun-reporter/cmd/raygun/types"
)

func TestMessageCommand(t *testing.T) {
	var got types.Report
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	t.Setenv("RAYGUN_API_KEY", "secret")
	t.Setenv("RAYGUN_ENDPOINT", server.URL)

	cmd := NewCmdRaygunErrors()
	cmd.SetArgs([]string{"message", "disk nearly full", "--data", "region=us-east", "--tag", "smoke"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if got.Details.Error.Message != "disk nearly full" {
		t.Errorf("message = %q", got.Details.Error.Message)
	}
	if got.Details.UserCustomData["region"] != "us-east" {
		t.Errorf("userCustomData = %v", got.Details.UserCustomData)
	}
	if len(got.Details.Tags) != 1 || got.Details.Tags[0] != "smoke" {
		t.Errorf("tags = %v", got.Details.Tags)
	}
}

func TestExceptionCommandRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	t.Setenv("RAYGUN_API_KEY", "wrong")
	t.Setenv("RAYGUN_ENDPOINT", server.URL)

	cmd := NewCmdRaygunErrors()
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	cmd.SetArgs([]string{"exception", "order 42 not found"})
	if err := cmd.Execute(); err == nil {
		t.Fatal("Execute() error = nil, want delivery error")
	}
}
