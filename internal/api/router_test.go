package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/nikhilbhutani/linguagateway/internal/auth"
	"github.com/nikhilbhutani/linguagateway/internal/config"
	"github.com/nikhilbhutani/linguagateway/internal/document"
	"github.com/nikhilbhutani/linguagateway/internal/factory"
	"github.com/nikhilbhutani/linguagateway/internal/speech"
	"github.com/nikhilbhutani/linguagateway/internal/translation"
)

type stubDetector struct{}

func (stubDetector) Detect(ctx context.Context, text string) (translation.DetectionOutcome, error) {
	return translation.DetectionOutcome{DetectedLanguage: "en", Confidence: 0.99}, nil
}

type stubModel struct{}

func (stubModel) Generate(ctx context.Context, text string) (translation.Generation, error) {
	return translation.Generation{Text: "Hola"}, nil
}

type stubRepo struct{}

func (stubRepo) Load(ctx context.Context, pair translation.LanguagePair) (translation.Model, error) {
	return stubModel{}, nil
}

func newTestServer(t *testing.T, authCfg config.AuthConfig) *httptest.Server {
	t.Helper()

	router, err := translation.NewRouter(stubDetector{}, stubRepo{})
	if err != nil {
		t.Fatal(err)
	}
	tr := &factory.Translator{Handler: router, Router: router}
	stt := speech.NewCloudTranscriber(speech.CloudConfig{APIKey: "test"})

	rt := NewRouter(Deps{
		Config:      &config.Config{Auth: authCfg, Deployment: config.DeploymentConfig{Mode: config.ModeEdge}},
		Translator:  tr,
		Transcriber: stt,
		Documents:   document.NewService(router, nil),
	})
	t.Cleanup(rt.Close)

	srv := httptest.NewServer(rt.Setup())
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, url, body string, header map[string]string) *http.Response {
	t.Helper()
	req, _ := http.NewRequest(http.MethodPost, url, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	return resp
}

func TestRouter_Open(t *testing.T) {
	srv := newTestServer(t, config.AuthConfig{})

	resp := post(t, srv.URL+"/translate", `{"text":"Hello","target_language":"es"}`, nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
	if resp.Header.Get("Vary") != "Origin" {
		t.Errorf("expected CORS middleware to run, got Vary %q", resp.Header.Get("Vary"))
	}

	resp, err := http.Get(srv.URL + "/jobs/abc")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("job routes should be absent without a queue, got %d", resp.StatusCode)
	}
}

func TestRouter_Auth(t *testing.T) {
	srv := newTestServer(t, config.AuthConfig{JWTSecret: "s3cret", APIKeys: []string{"key-1"}})
	body := `{"text":"Hello","target_language":"es"}`

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("healthz should not need auth, got %d", resp.StatusCode)
	}

	if resp := post(t, srv.URL+"/translate", body, nil); resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 without credentials, got %d", resp.StatusCode)
	}
	if resp := post(t, srv.URL+"/translate", body, map[string]string{"X-API-Key": "key-1"}); resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 with API key, got %d", resp.StatusCode)
	}
	if resp := post(t, srv.URL+"/translate", body, map[string]string{"X-API-Key": "nope"}); resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 with bad API key, got %d", resp.StatusCode)
	}

	speechOnly, err := auth.IssueToken("s3cret", "user-1", []string{string(auth.PermSpeech)}, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	bearer := map[string]string{"Authorization": "Bearer " + speechOnly}
	if resp := post(t, srv.URL+"/translate", body, bearer); resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 for missing scope, got %d", resp.StatusCode)
	}

	full, _ := auth.IssueToken("s3cret", "user-1", []string{string(auth.PermTranslate)}, time.Hour)
	if resp := post(t, srv.URL+"/detect", "Hello there", map[string]string{"Authorization": "Bearer " + full}); resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 with translate scope, got %d", resp.StatusCode)
	}
}

func TestRouter_APIKeysWithoutJWT(t *testing.T) {
	srv := newTestServer(t, config.AuthConfig{APIKeys: []string{"key-1"}})
	if resp := post(t, srv.URL+"/detect", "Hello", nil); resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", resp.StatusCode)
	}
}
