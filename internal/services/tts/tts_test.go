package tts_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"verseline/internal/logging"
	"verseline/internal/services/tts"
)

type fakeProvider struct {
	name  string
	fail  bool
	calls int
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Synthesize(ctx context.Context, req tts.Request) error {
	f.calls++
	if f.fail {
		return errors.New("synthesis failed")
	}
	return os.WriteFile(req.OutputPath, []byte("audio"), 0o644)
}

func TestChainFallsThroughToNextProvider(t *testing.T) {
	first := &fakeProvider{name: "first", fail: true}
	second := &fakeProvider{name: "second"}
	chain := tts.NewChainFromProviders(logging.NewNop(), first, second)

	output := filepath.Join(t.TempDir(), "voice.mp3")
	provider, err := chain.Synthesize(context.Background(), tts.Request{
		Text:       "A poem read aloud.",
		OutputPath: output,
	})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if provider != "second" {
		t.Fatalf("provider = %q, want second", provider)
	}
	if first.calls != 1 || second.calls != 1 {
		t.Fatalf("call counts first=%d second=%d, want 1 and 1", first.calls, second.calls)
	}
	if _, err := os.Stat(output); err != nil {
		t.Fatalf("narration file missing: %v", err)
	}
}

func TestChainReportsTotalFailure(t *testing.T) {
	chain := tts.NewChainFromProviders(logging.NewNop(),
		&fakeProvider{name: "first", fail: true},
		&fakeProvider{name: "second", fail: true},
	)
	output := filepath.Join(t.TempDir(), "voice.mp3")
	if _, err := chain.Synthesize(context.Background(), tts.Request{Text: "words", OutputPath: output}); err == nil {
		t.Fatal("expected error when every provider fails")
	}
	if _, err := os.Stat(output); !os.IsNotExist(err) {
		t.Fatalf("failed synthesis left a file behind: %v", err)
	}
}

type emptyProvider struct{}

func (emptyProvider) Name() string { return "empty" }

func (emptyProvider) Synthesize(ctx context.Context, req tts.Request) error {
	return os.WriteFile(req.OutputPath, nil, 0o644)
}

func TestChainRejectsEmptyAudio(t *testing.T) {
	chain := tts.NewChainFromProviders(logging.NewNop(), emptyProvider{})
	output := filepath.Join(t.TempDir(), "voice.mp3")
	if _, err := chain.Synthesize(context.Background(), tts.Request{Text: "words", OutputPath: output}); err == nil {
		t.Fatal("expected error for zero-byte audio")
	}
}

func TestChainValidatesRequest(t *testing.T) {
	chain := tts.NewChainFromProviders(logging.NewNop(), &fakeProvider{name: "only"})
	if _, err := chain.Synthesize(context.Background(), tts.Request{OutputPath: "/tmp/x.mp3"}); err == nil {
		t.Fatal("expected error for missing text")
	}
	if _, err := chain.Synthesize(context.Background(), tts.Request{Text: "words"}); err == nil {
		t.Fatal("expected error for missing output path")
	}
}

func TestSpeechClientSynthesizes(t *testing.T) {
	var gotAuth, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/audio/speech" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		_, _ = w.Write([]byte("mp3-bytes"))
	}))
	defer server.Close()

	client := tts.NewSpeechClient(server.URL, "secret-key", "tts-1")
	output := filepath.Join(t.TempDir(), "voice.mp3")
	err := client.Synthesize(context.Background(), tts.Request{
		Text:       "The woods are lovely.",
		Voice:      "nova",
		Rate:       0.85,
		OutputPath: output,
	})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if gotAuth != "Bearer secret-key" {
		t.Fatalf("authorization header = %q", gotAuth)
	}
	for _, want := range []string{`"model":"tts-1"`, `"voice":"nova"`, `"speed":0.85`} {
		if !strings.Contains(gotBody, want) {
			t.Fatalf("request body missing %s: %s", want, gotBody)
		}
	}
	data, err := os.ReadFile(output)
	if err != nil || string(data) != "mp3-bytes" {
		t.Fatalf("output audio = %q, err %v", data, err)
	}
}

func TestSpeechClientSurfacesHTTPErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := tts.NewSpeechClient(server.URL, "secret-key", "")
	err := client.Synthesize(context.Background(), tts.Request{
		Text:       "words",
		OutputPath: filepath.Join(t.TempDir(), "voice.mp3"),
	})
	if err == nil || !strings.Contains(err.Error(), "429") {
		t.Fatalf("expected http 429 error, got %v", err)
	}
}

func TestEdgeTTSBuildsRateOffset(t *testing.T) {
	var gotArgs []string
	provider := tts.NewEdgeTTS("edge-tts")
	provider.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		gotArgs = args
		return nil
	})
	err := provider.Synthesize(context.Background(), tts.Request{
		Text:       "words",
		Voice:      "en-GB-SoniaNeural",
		Rate:       0.85,
		OutputPath: "/tmp/voice.mp3",
	})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	joined := strings.Join(gotArgs, " ")
	if !strings.Contains(joined, "--rate -15%") {
		t.Fatalf("rate offset missing: %q", joined)
	}
	if !strings.Contains(joined, "--voice en-GB-SoniaNeural") {
		t.Fatalf("voice missing: %q", joined)
	}
}

func TestEspeakScalesWordRate(t *testing.T) {
	var gotArgs []string
	provider := tts.NewEspeak("espeak-ng")
	provider.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		gotArgs = args
		return nil
	})
	err := provider.Synthesize(context.Background(), tts.Request{
		Text:       "words",
		Rate:       0.85,
		OutputPath: "/tmp/voice.wav",
	})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	joined := strings.Join(gotArgs, " ")
	if !strings.Contains(joined, "-s 149") {
		t.Fatalf("scaled word rate missing: %q", joined)
	}
}
