package processor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image/gif"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"codeberg.org/snonux/signspeak/internal/animation"
	"codeberg.org/snonux/signspeak/internal/batch"
	"codeberg.org/snonux/signspeak/internal/events"
	"codeberg.org/snonux/signspeak/internal/history"
	"codeberg.org/snonux/signspeak/internal/signs"
	"codeberg.org/snonux/signspeak/internal/speech"
	"codeberg.org/snonux/signspeak/internal/telemetry"
	"codeberg.org/snonux/signspeak/internal/testutil"
	"codeberg.org/snonux/signspeak/internal/vocabulary"
)

// spyResolver counts Resolve calls
type spyResolver struct {
	inner SignResolver
	calls int
}

func (s *spyResolver) Resolve(word string) (signs.Sequence, error) {
	s.calls++
	return s.inner.Resolve(word)
}

// spyAnimator counts AssembleFiles calls
type spyAnimator struct {
	inner Animator
	calls int
}

func (s *spyAnimator) AssembleFiles(ctx context.Context, paths []string) (*animation.Artifact, error) {
	s.calls++
	return s.inner.AssembleFiles(ctx, paths)
}

type fakeHistory struct {
	records []history.Record
	err     error
}

func (f *fakeHistory) Record(ctx context.Context, r history.Record) (int64, error) {
	f.records = append(f.records, r)
	return int64(len(f.records)), f.err
}

type fakeEvents struct {
	outcomes []events.Outcome
	err      error
}

func (f *fakeEvents) Publish(ctx context.Context, o events.Outcome) error {
	f.outcomes = append(f.outcomes, o)
	return f.err
}

type pipeline struct {
	processor   *Processor
	assetsDir   string
	mediaDir    string
	tempDir     string
	transcriber *testutil.MockTranscriber
	resolver    *spyResolver
	animator    *spyAnimator
	history     *fakeHistory
	events      *fakeEvents
}

// newPipeline wires real components around a mock microphone and
// transcription service
func newPipeline(t *testing.T, transcript string, transcribeErr error) *pipeline {
	t.Helper()

	root := t.TempDir()
	pl := &pipeline{
		assetsDir:   filepath.Join(root, "Final"),
		mediaDir:    filepath.Join(root, "media"),
		tempDir:     filepath.Join(root, "tmp"),
		transcriber: &testutil.MockTranscriber{Text: transcript, Err: transcribeErr},
		history:     &fakeHistory{},
		events:      &fakeEvents{},
	}
	if err := os.MkdirAll(pl.tempDir, 0755); err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	if err := os.MkdirAll(pl.assetsDir, 0755); err != nil {
		t.Fatalf("Failed to create assets dir: %v", err)
	}

	adapter := speech.NewAdapter(&testutil.MockRecorder{}, pl.transcriber, speech.Config{
		Duration: 100 * time.Millisecond,
		TempDir:  pl.tempDir,
	}, nil)

	pl.resolver = &spyResolver{inner: signs.NewLocator(signs.Config{BaseDir: pl.assetsDir})}
	pl.animator = &spyAnimator{inner: animation.NewAssembler(animation.Config{OutputDir: pl.mediaDir})}

	metrics, err := telemetry.NewMetrics("signspeak-test")
	if err != nil {
		t.Fatalf("NewMetrics failed: %v", err)
	}
	t.Cleanup(func() { metrics.Shutdown(context.Background()) })

	pl.processor = NewProcessor(Options{
		Listener:   adapter,
		Vocabulary: vocabulary.Default(),
		Signs:      pl.resolver,
		Animator:   pl.animator,
		Metrics:    metrics,
		History:    pl.history,
		Events:     pl.events,
	})
	return pl
}

func (pl *pipeline) gifCount(t *testing.T) int {
	t.Helper()
	return testutil.CountFiles(t, pl.mediaDir, ".gif")
}

func TestListenRecognizedWord(t *testing.T) {
	pl := newPipeline(t, " Hii ", nil)
	testutil.CreateSignFolder(t, pl.assetsDir, "hii", 3)

	resp := pl.processor.Listen(context.Background())

	if !resp.Success {
		t.Fatalf("Expected success, got error %q", resp.Error)
	}
	if resp.SpokenText != " Hii " {
		t.Errorf("SpokenText = %q, want %q", resp.SpokenText, " Hii ")
	}
	if resp.TranslatedText != "hii" {
		t.Errorf("TranslatedText = %q, want hii", resp.TranslatedText)
	}
	if resp.PredictedLabel != 8 || resp.PredictedSign != "hii" {
		t.Errorf("Prediction = %d/%q, want 8/hii", resp.PredictedLabel, resp.PredictedSign)
	}
	if !strings.HasPrefix(resp.GIFURL, "/media/sign_result_") || !strings.HasSuffix(resp.GIFURL, ".gif") {
		t.Errorf("Unexpected GIF URL %q", resp.GIFURL)
	}

	path := filepath.Join(pl.mediaDir, filepath.Base(resp.GIFURL))
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Artifact not readable: %v", err)
	}
	defer f.Close()

	anim, err := gif.DecodeAll(f)
	if err != nil {
		t.Fatalf("Artifact is not a valid GIF: %v", err)
	}
	if len(anim.Image) != 5 {
		t.Fatalf("Expected 5 frames, got %d", len(anim.Image))
	}
	if anim.LoopCount != 0 {
		t.Errorf("LoopCount = %d, want 0", anim.LoopCount)
	}
	for i, frame := range anim.Image {
		if b := frame.Bounds(); b.Dx() != 200 || b.Dy() != 200 {
			t.Errorf("Frame %d is %dx%d, want 200x200", i, b.Dx(), b.Dy())
		}
		if anim.Delay[i] != 50 {
			t.Errorf("Frame %d delay = %d, want 50", i, anim.Delay[i])
		}
	}
	// The last two frames repeat the third image
	for _, i := range []int{3, 4} {
		if !bytes.Equal(anim.Image[i].Pix, anim.Image[2].Pix) {
			t.Errorf("Frame %d should duplicate frame 2", i)
		}
	}
	if bytes.Equal(anim.Image[0].Pix, anim.Image[1].Pix) {
		t.Error("Distinct source images should give distinct frames")
	}

	testutil.AssertDirEmpty(t, pl.tempDir)
}

func TestListenFailures(t *testing.T) {
	tests := []struct {
		name          string
		transcript    string
		transcribeErr error
		folders       map[string]int
		wantError     string
		wantStage     string
		wantResolves  int
		wantAssembles int
	}{
		{
			name:         "word outside the vocabulary",
			transcript:   "banana",
			folders:      map[string]int{"banana": 3},
			wantError:    "word not recognized",
			wantStage:    StageValidate,
			wantResolves: 0,
		},
		{
			name:          "transcription service down",
			transcribeErr: errors.New("503 service unavailable"),
			wantError:     "transcription failed: service failure",
			wantStage:     StageCapture,
		},
		{
			name:       "nothing said",
			transcript: "   ",
			wantError:  "transcription failed: no speech",
			wantStage:  StageCapture,
		},
		{
			name:         "asset folder missing",
			transcript:   "Bye",
			wantError:    "insufficient sign assets",
			wantStage:    StageResolve,
			wantResolves: 1,
		},
		{
			name:         "asset folder without images",
			transcript:   "sad",
			folders:      map[string]int{"sad": 0},
			wantError:    "insufficient sign assets",
			wantStage:    StageResolve,
			wantResolves: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pl := newPipeline(t, tt.transcript, tt.transcribeErr)
			for word, n := range tt.folders {
				testutil.CreateSignFolder(t, pl.assetsDir, word, n)
			}

			resp := pl.processor.Listen(context.Background())

			if resp.Success {
				t.Fatal("Expected failure")
			}
			if resp.Error != tt.wantError {
				t.Errorf("Error = %q, want %q", resp.Error, tt.wantError)
			}
			if resp.Stage != tt.wantStage {
				t.Errorf("Stage = %q, want %q", resp.Stage, tt.wantStage)
			}
			if pl.resolver.calls != tt.wantResolves {
				t.Errorf("Resolve called %d times, want %d", pl.resolver.calls, tt.wantResolves)
			}
			if pl.animator.calls != tt.wantAssembles {
				t.Errorf("AssembleFiles called %d times, want %d", pl.animator.calls, tt.wantAssembles)
			}
			if n := pl.gifCount(t); n != 0 {
				t.Errorf("Expected no artifact, found %d", n)
			}
			testutil.AssertDirEmpty(t, pl.tempDir)
		})
	}
}

func TestListenAssemblyFailure(t *testing.T) {
	pl := newPipeline(t, "dance", nil)
	dir := testutil.CreateSignFolder(t, pl.assetsDir, "dance", 2)
	testutil.CreateTestFile(t, filepath.Join(dir, "frame_03.png"), []byte("not a png"))

	resp := pl.processor.Listen(context.Background())

	if resp.Success || resp.Error != "gif generation failed" {
		t.Fatalf("Expected gif generation failure, got %+v", resp)
	}
	if resp.Stage != StageAssemble {
		t.Errorf("Stage = %q, want %q", resp.Stage, StageAssemble)
	}
	testutil.AssertDirEmpty(t, pl.mediaDir)
}

func TestListenWithoutListener(t *testing.T) {
	p := NewProcessor(Options{Vocabulary: vocabulary.Default()})

	resp := p.Listen(context.Background())
	if resp.Success || resp.Error != "transcription failed: capture failure" {
		t.Errorf("Unexpected response %+v", resp)
	}
}

func TestRender(t *testing.T) {
	pl := newPipeline(t, "", nil)
	testutil.CreateSignFolder(t, pl.assetsDir, "solving problems", 7)

	resp := pl.processor.Render(context.Background(), "  Solving Problems\n")

	if !resp.Success {
		t.Fatalf("Expected success, got %q", resp.Error)
	}
	if resp.PredictedLabel != 19 || resp.PredictedSign != "solving problems" {
		t.Errorf("Prediction = %d/%q, want 19/solving problems", resp.PredictedLabel, resp.PredictedSign)
	}
	if pl.transcriber.Calls() != 0 {
		t.Error("Typed input must not reach the transcription service")
	}
	if n := pl.gifCount(t); n != 1 {
		t.Errorf("Expected 1 artifact, got %d", n)
	}
}

func TestRenderTwiceGivesDistinctArtifacts(t *testing.T) {
	pl := newPipeline(t, "", nil)
	testutil.CreateSignFolder(t, pl.assetsDir, "happy", 5)

	first := pl.processor.Render(context.Background(), "happy")
	second := pl.processor.Render(context.Background(), "happy")

	if !first.Success || !second.Success {
		t.Fatalf("Expected both renders to succeed: %q, %q", first.Error, second.Error)
	}
	if first.GIFURL == second.GIFURL {
		t.Errorf("Expected distinct artifacts, both are %s", first.GIFURL)
	}
	if n := pl.gifCount(t); n != 2 {
		t.Errorf("Expected 2 artifacts, got %d", n)
	}
}

func TestRenderTranslation(t *testing.T) {
	pl := newPipeline(t, "", nil)
	testutil.CreateSignFolder(t, pl.assetsDir, "hii", 1)

	translator := &testutil.MockTranslator{
		Translations: map[string]string{"hola": " Hii"},
		Errors:       map[string]error{"ciao": errors.New("quota exceeded")},
	}
	pl.processor.opts.Translator = translator

	resp := pl.processor.Render(context.Background(), "Hola")
	if !resp.Success {
		t.Fatalf("Expected success, got %q", resp.Error)
	}
	if resp.SpokenText != "Hola" || resp.TranslatedText != "hii" || resp.PredictedLabel != 8 {
		t.Errorf("Unexpected response %+v", resp)
	}

	// Words already in the vocabulary are not translated
	translator.Calls = nil
	if resp := pl.processor.Render(context.Background(), "hii"); !resp.Success {
		t.Fatalf("Expected success, got %q", resp.Error)
	}
	if len(translator.Calls) != 0 {
		t.Errorf("Expected no translation calls, got %v", translator.Calls)
	}

	// A failed translation falls back to the untranslated text
	resp = pl.processor.Render(context.Background(), "ciao")
	if resp.Success || resp.Error != "word not recognized" {
		t.Errorf("Expected word not recognized, got %+v", resp)
	}
}

func TestHooksReceiveOutcomes(t *testing.T) {
	pl := newPipeline(t, "", nil)
	testutil.CreateSignFolder(t, pl.assetsDir, "bye", 5)

	pl.processor.Render(context.Background(), "bye")
	pl.processor.Render(context.Background(), "banana")

	if len(pl.history.records) != 2 || len(pl.events.outcomes) != 2 {
		t.Fatalf("Expected 2 history records and 2 events, got %d and %d",
			len(pl.history.records), len(pl.events.outcomes))
	}

	ok := pl.history.records[0]
	if !ok.Success || ok.Sign != "bye" || ok.Label != 1 || ok.Stage != StageDone || ok.GIFURL == "" {
		t.Errorf("Unexpected success record %+v", ok)
	}

	failed := pl.events.outcomes[1]
	if failed.Success || failed.Stage != StageValidate || failed.Error != "word not recognized" || failed.SpokenText != "banana" {
		t.Errorf("Unexpected failure event %+v", failed)
	}
}

func TestHookFailuresDoNotChangeResponse(t *testing.T) {
	pl := newPipeline(t, "", nil)
	testutil.CreateSignFolder(t, pl.assetsDir, "sorry", 5)
	pl.history.err = errors.New("disk full")
	pl.events.err = errors.New("nats: connection closed")

	resp := pl.processor.Render(context.Background(), "sorry")
	if !resp.Success || resp.PredictedSign != "sorry" {
		t.Errorf("Hook errors changed the response: %+v", resp)
	}
}

func TestResponseJSON(t *testing.T) {
	success := Response{
		Success:        true,
		SpokenText:     " Hii ",
		TranslatedText: "hii",
		PredictedLabel: 0,
		PredictedSign:  "angry",
		GIFURL:         "/media/sign_result_x.gif",
		Stage:          StageDone,
	}
	data, err := json.Marshal(success)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var body map[string]any
	if err := json.Unmarshal(data, &body); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	for _, key := range []string{"success", "spoken_text", "translated_text", "predicted_label", "predicted_sign", "gif_url"} {
		if _, ok := body[key]; !ok {
			t.Errorf("Success body missing %q: %s", key, data)
		}
	}
	if _, ok := body["error"]; ok {
		t.Errorf("Success body must not carry an error: %s", data)
	}
	if _, ok := body["Stage"]; ok {
		t.Errorf("Stage must not be serialized: %s", data)
	}

	data, err = json.Marshal(failure(StageValidate, MsgWordNotRecognized))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `{"success":false,"error":"word not recognized"}` {
		t.Errorf("Failure body = %s", data)
	}
}

func TestProcessBatch(t *testing.T) {
	pl := newPipeline(t, "", nil)
	testutil.CreateSignFolder(t, pl.assetsDir, "bye", 5)
	testutil.CreateSignFolder(t, pl.assetsDir, "happy", 2)

	entries := batch.ParseBatch("Bye\nhappy = sad\nbanana\n")

	var out bytes.Buffer
	summary := pl.processor.ProcessBatch(context.Background(), entries, &out)

	want := BatchSummary{Total: 3, Rendered: 1, Failed: 1, Mismatched: 1}
	if summary != want {
		t.Errorf("Summary = %+v, want %+v", summary, want)
	}
	if !strings.Contains(out.String(), "Batch Rendering Summary") {
		t.Errorf("Missing summary in output:\n%s", out.String())
	}
	if n := pl.gifCount(t); n != 2 {
		t.Errorf("Expected 2 artifacts, got %d", n)
	}
}

func TestProcessBatchCancelled(t *testing.T) {
	pl := newPipeline(t, "", nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	summary := pl.processor.ProcessBatch(ctx, batch.ParseBatch("bye\nhii"), &out)

	if summary.Failed != 2 || summary.Rendered != 0 {
		t.Errorf("Unexpected summary %+v", summary)
	}
}
