package media

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"demoreel/internal/pkg/errors"
)

type call struct {
	name string
	args []string
}

// fakeRunner records invocations and delegates outcomes to injected funcs.
type fakeRunner struct {
	calls []call
	run   func(name string, args []string) (Result, error)
	start func(name string, args []string) (Process, error)
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	f.calls = append(f.calls, call{name, args})
	if f.run == nil {
		return Result{}, nil
	}
	return f.run(name, args)
}

func (f *fakeRunner) Start(ctx context.Context, name string, args ...string) (Process, error) {
	f.calls = append(f.calls, call{name, args})
	if f.start == nil {
		return &fakeProcess{}, nil
	}
	return f.start(name, args)
}

type fakeProcess struct {
	res    Result
	err    error
	killed bool
}

func (p *fakeProcess) Wait() (Result, error) { return p.res, p.err }
func (p *fakeProcess) Kill() error           { p.killed = true; return nil }

func mustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func argValue(args []string, flag string) string {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == flag {
			return args[i+1]
		}
	}
	return ""
}

func TestBase(t *testing.T) {
	tests := map[string]string{
		"output/demo-1.mp4": "output/demo-1",
		"/tmp/x.final.mp4":  "/tmp/x.final",
		"noext":             "noext",
	}
	for in, want := range tests {
		if got := Base(in); got != want {
			t.Errorf("Base(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestEdgeTTSSynthesize(t *testing.T) {
	dir := t.TempDir()
	narration := filepath.Join(dir, "narration.txt")
	mustWriteFile(t, narration, "hello there")
	tts := NewEdgeTTS("", "", nil)
	audio := tts.AudioPath(filepath.Join(dir, "demo"))
	if audio != filepath.Join(dir, "demo-audio.mp3") {
		t.Fatalf("AudioPath() = %q", audio)
	}

	runner := &fakeRunner{run: func(name string, args []string) (Result, error) {
		mustWriteFile(t, argValue(args, "--write-media"), "mp3")
		return Result{}, nil
	}}
	tts.Runner = runner

	if err := tts.Synthesize(context.Background(), narration, audio, ""); err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}

	want := []string{"--voice", DefaultVoice, "--file", narration, "--write-media", audio}
	if runner.calls[0].name != "edge-tts" || !reflect.DeepEqual(runner.calls[0].args, want) {
		t.Errorf("call = %+v", runner.calls[0])
	}

	if err := tts.Synthesize(context.Background(), narration, audio, "en-GB-RyanNeural"); err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if got := argValue(runner.calls[1].args, "--voice"); got != "en-GB-RyanNeural" {
		t.Errorf("voice override = %q", got)
	}
}

func TestEdgeTTSFailures(t *testing.T) {
	dir := t.TempDir()
	narration := filepath.Join(dir, "narration.txt")
	mustWriteFile(t, narration, "hello")
	audio := filepath.Join(dir, "demo-audio.mp3")

	tests := []struct {
		name      string
		narration string
		run       func(string, []string) (Result, error)
	}{
		{
			name:      "missing narration",
			narration: filepath.Join(dir, "missing.txt"),
		},
		{
			name:      "tool exits non-zero",
			narration: narration,
			run: func(string, []string) (Result, error) {
				return Result{ExitCode: 1, Stderr: "no internet"}, nil
			},
		},
		{
			name:      "tool writes nothing",
			narration: narration,
			run: func(string, []string) (Result, error) {
				return Result{}, nil
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tts := NewEdgeTTS("edge-tts", "", &fakeRunner{run: tt.run})
			err := tts.Synthesize(context.Background(), tt.narration, audio, "")
			if !errors.IsCode(err, errors.CodeSynthesis) {
				t.Fatalf("err = %v, want %s", err, errors.CodeSynthesis)
			}
		})
	}
}

func TestEdgeTTSCarriesCommandLog(t *testing.T) {
	dir := t.TempDir()
	narration := filepath.Join(dir, "n.txt")
	mustWriteFile(t, narration, "x")

	tts := NewEdgeTTS("edge-tts", "", &fakeRunner{run: func(string, []string) (Result, error) {
		return Result{ExitCode: 2, Stderr: "voice not found"}, nil
	}})
	err := tts.Synthesize(context.Background(), narration, filepath.Join(dir, "a.mp3"), "")

	fields := errors.GetFields(err)
	if fields["command"] != "edge-tts" || fields["exit_code"] != 2 || fields["stderr"] != "voice not found" {
		t.Errorf("fields = %v", fields)
	}
}

func TestVoiceCloneSynthesize(t *testing.T) {
	dir := t.TempDir()
	narration := filepath.Join(dir, "n.txt")
	sample := filepath.Join(dir, "voice-sample.wav")
	mustWriteFile(t, narration, "hi")
	mustWriteFile(t, sample, "wav")

	vc := &VoiceClone{Script: "voice-clone.py", Sample: sample}
	audio := vc.AudioPath(filepath.Join(dir, "demo"))
	if audio != filepath.Join(dir, "demo.wav") {
		t.Fatalf("AudioPath() = %q", audio)
	}

	runner := &fakeRunner{run: func(name string, args []string) (Result, error) {
		mustWriteFile(t, args[3], "wav")
		return Result{}, nil
	}}
	vc.Runner = runner

	if err := vc.Synthesize(context.Background(), narration, audio, ""); err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	want := []string{"voice-clone.py", narration, sample, audio, "en"}
	if runner.calls[0].name != "python3" || !reflect.DeepEqual(runner.calls[0].args, want) {
		t.Errorf("call = %+v", runner.calls[0])
	}
}

func TestVoiceCloneMissingSample(t *testing.T) {
	dir := t.TempDir()
	narration := filepath.Join(dir, "n.txt")
	mustWriteFile(t, narration, "hi")

	runner := &fakeRunner{}
	vc := &VoiceClone{Script: "voice-clone.py", Sample: filepath.Join(dir, "nope.wav"), Runner: runner}
	err := vc.Synthesize(context.Background(), narration, filepath.Join(dir, "a.wav"), "")
	if !errors.IsCode(err, errors.CodeSynthesis) {
		t.Fatalf("err = %v", err)
	}
	if len(runner.calls) != 0 {
		t.Errorf("script ran without a sample")
	}
}

func TestVoiceCloneSamplePath(t *testing.T) {
	tests := []struct {
		name    string
		vc      VoiceClone
		voice   string
		want    string
		wantErr bool
	}{
		{"default sample", VoiceClone{Sample: "/srv/voice-sample.wav"}, "", "/srv/voice-sample.wav", false},
		{"name next to default", VoiceClone{Sample: "/srv/voice-sample.wav"}, "ana.wav", "/srv/ana.wav", false},
		{"path without sample dir", VoiceClone{Sample: "s.wav"}, "/home/me/take2.wav", "/home/me/take2.wav", false},
		{"name in sample dir", VoiceClone{Sample: "s.wav", SampleDir: "/srv/voices"}, "ana.wav", "/srv/voices/ana.wav", false},
		{"absolute path in sample dir mode", VoiceClone{SampleDir: "/srv/voices"}, "/etc/passwd", "", true},
		{"parent escape in sample dir mode", VoiceClone{SampleDir: "/srv/voices"}, "../secret.wav", "", true},
		{"dot dot", VoiceClone{SampleDir: "/srv/voices"}, "..", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.vc.SamplePath(tt.voice)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SamplePath(%q) error = %v", tt.voice, err)
			}
			if got != tt.want {
				t.Errorf("SamplePath(%q) = %q, want %q", tt.voice, got, tt.want)
			}
		})
	}
}

func TestVoiceCloneRejectsPathVoice(t *testing.T) {
	dir := t.TempDir()
	narration := filepath.Join(dir, "n.txt")
	mustWriteFile(t, narration, "hi")

	runner := &fakeRunner{}
	vc := &VoiceClone{Script: "voice-clone.py", SampleDir: dir, Runner: runner}
	err := vc.Synthesize(context.Background(), narration, filepath.Join(dir, "a.wav"), narration)
	if !errors.IsCode(err, errors.CodeSynthesis) {
		t.Fatalf("err = %v", err)
	}
	if len(runner.calls) != 0 {
		t.Error("script ran with a path voice")
	}
}

func TestFFProbeDuration(t *testing.T) {
	tests := []struct {
		name     string
		res      Result
		err      error
		want     float64
		wantCode errors.Code
	}{
		{name: "plain", res: Result{Stdout: "57.240000\n"}, want: 57.24},
		{name: "multiple lines", res: Result{Stdout: "12.5\n12.4\n"}, want: 12.5},
		{name: "not available", res: Result{Stdout: "N/A\n"}, wantCode: errors.CodeProbe},
		{name: "zero", res: Result{Stdout: "0.000\n"}, wantCode: errors.CodeProbe},
		{name: "exit code", res: Result{ExitCode: 1, Stderr: "No such file"}, wantCode: errors.CodeProbe},
		{name: "spawn error", res: Result{ExitCode: -1}, err: os.ErrNotExist, wantCode: errors.CodeProbe},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{run: func(string, []string) (Result, error) { return tt.res, tt.err }}
			p := &FFProbe{Runner: runner}

			got, err := p.Duration(context.Background(), "a.mp3")
			if tt.wantCode != "" {
				if !errors.IsCode(err, tt.wantCode) {
					t.Fatalf("err = %v, want %s", err, tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatalf("Duration() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Duration() = %v, want %v", got, tt.want)
			}
			want := []string{"-v", "error", "-show_entries", "format=duration", "-of", "default=noprint_wrappers=1:nokey=1", "a.mp3"}
			if runner.calls[0].name != "ffprobe" || !reflect.DeepEqual(runner.calls[0].args, want) {
				t.Errorf("call = %+v", runner.calls[0])
			}
		})
	}
}

func TestCaptureSpecArgs(t *testing.T) {
	spec := CaptureSpec{Display: ":99", Width: 1920, Height: 1080, FrameRate: 30, Duration: 63 * time.Second}
	got := strings.Join(spec.Args("out/demo-video.mp4"), " ")
	want := "-video_size 1920x1080 -framerate 30 -f x11grab -i :99.0 -t 63 -c:v libx264 -preset fast -crf 22 out/demo-video.mp4 -y"
	if got != want {
		t.Errorf("Args() =\n%s\nwant\n%s", got, want)
	}
}

func TestRecorderExitCodes(t *testing.T) {
	spec := CaptureSpec{Display: ":99", Width: 1920, Height: 1080, FrameRate: 30, Duration: time.Minute}

	t.Run("clean exit", func(t *testing.T) {
		proc := &fakeProcess{}
		r := &FFmpegRecorder{Runner: &fakeRunner{start: func(string, []string) (Process, error) { return proc, nil }}}
		rec, err := r.Start(context.Background(), spec, "v.mp4")
		if err != nil {
			t.Fatalf("Start() error = %v", err)
		}
		if err := rec.Wait(); err != nil {
			t.Errorf("Wait() error = %v", err)
		}
	})

	t.Run("exit code 1", func(t *testing.T) {
		proc := &fakeProcess{res: Result{ExitCode: 1, Stderr: "cannot open display"}}
		r := &FFmpegRecorder{Runner: &fakeRunner{start: func(string, []string) (Process, error) { return proc, nil }}}
		rec, err := r.Start(context.Background(), spec, "v.mp4")
		if err != nil {
			t.Fatalf("Start() error = %v", err)
		}
		err = rec.Wait()
		if !errors.IsCode(err, errors.CodeCapture) {
			t.Fatalf("Wait() err = %v, want %s", err, errors.CodeCapture)
		}
		if errors.GetFields(err)["exit_code"] != 1 {
			t.Errorf("fields = %v", errors.GetFields(err))
		}
	})

	t.Run("spawn failure", func(t *testing.T) {
		r := &FFmpegRecorder{Runner: &fakeRunner{start: func(string, []string) (Process, error) { return nil, os.ErrNotExist }}}
		if _, err := r.Start(context.Background(), spec, "v.mp4"); !errors.IsCode(err, errors.CodeCapture) {
			t.Fatalf("Start() err = %v", err)
		}
	})

	t.Run("zero duration", func(t *testing.T) {
		r := &FFmpegRecorder{Runner: &fakeRunner{}}
		bad := spec
		bad.Duration = 0
		if _, err := r.Start(context.Background(), bad, "v.mp4"); !errors.IsCode(err, errors.CodeValidation) {
			t.Fatalf("Start() err = %v", err)
		}
	})
}

func TestMux(t *testing.T) {
	runner := &fakeRunner{}
	m := &FFmpegMuxer{Bin: "ffmpeg", Runner: runner}
	if err := m.Mux(context.Background(), "v.mp4", "a.mp3", "out.mp4"); err != nil {
		t.Fatalf("Mux() error = %v", err)
	}
	want := "-i v.mp4 -i a.mp3 -c:v copy -c:a aac -b:a 192k -shortest out.mp4 -y"
	if got := strings.Join(runner.calls[0].args, " "); got != want {
		t.Errorf("args = %s", got)
	}

	m.Runner = &fakeRunner{run: func(string, []string) (Result, error) { return Result{ExitCode: 1}, nil }}
	if err := m.Mux(context.Background(), "v.mp4", "a.mp3", "out.mp4"); !errors.IsCode(err, errors.CodeMux) {
		t.Errorf("err = %v, want %s", err, errors.CodeMux)
	}
}

func TestSampleConverter(t *testing.T) {
	tests := []struct {
		name      string
		duration  string
		wantCode  errors.Code
		wantCalls int
	}{
		{name: "accepted", duration: "12.0", wantCalls: 2},
		{name: "too short", duration: "3.2", wantCode: errors.CodeValidation, wantCalls: 1},
		{name: "too long", duration: "75", wantCode: errors.CodeValidation, wantCalls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{run: func(name string, args []string) (Result, error) {
				if name == "ffprobe" {
					return Result{Stdout: tt.duration}, nil
				}
				return Result{}, nil
			}}
			c := &SampleConverter{Probe: &FFProbe{Runner: runner}, Runner: runner}

			_, err := c.Convert(context.Background(), "in.ogg", "voice-sample.wav")
			if tt.wantCode != "" {
				if !errors.IsCode(err, tt.wantCode) {
					t.Fatalf("err = %v, want %s", err, tt.wantCode)
				}
			} else if err != nil {
				t.Fatalf("Convert() error = %v", err)
			}
			if len(runner.calls) != tt.wantCalls {
				t.Fatalf("calls = %d, want %d", len(runner.calls), tt.wantCalls)
			}
			if tt.wantCalls == 2 {
				want := "-i in.ogg -ar 22050 -ac 1 -y voice-sample.wav"
				if got := strings.Join(runner.calls[1].args, " "); got != want {
					t.Errorf("args = %s", got)
				}
			}
		})
	}
}
