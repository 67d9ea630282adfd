package media

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"demoreel/internal/pkg/errors"
)

// DefaultVoice is the edge-tts voice used when a job names none.
const DefaultVoice = "en-US-GuyNeural"

// Synthesizer turns a narration text file into an audio file.
type Synthesizer interface {
	// AudioPath names the audio temporary for an output base path.
	AudioPath(base string) string
	// Synthesize writes narration audio to audioPath. voice may be empty.
	Synthesize(ctx context.Context, narrationPath, audioPath, voice string) error
}

// Base strips the extension from an output path; temporaries are named from it.
func Base(outputPath string) string {
	return strings.TrimSuffix(outputPath, filepath.Ext(outputPath))
}

// EdgeTTS synthesizes with the edge-tts command line tool.
type EdgeTTS struct {
	Bin    string
	Voice  string
	Runner Runner
}

func NewEdgeTTS(bin, voice string, r Runner) *EdgeTTS {
	if bin == "" {
		bin = "edge-tts"
	}
	if voice == "" {
		voice = DefaultVoice
	}
	return &EdgeTTS{Bin: bin, Voice: voice, Runner: r}
}

func (e *EdgeTTS) AudioPath(base string) string {
	return base + "-audio.mp3"
}

func (e *EdgeTTS) Synthesize(ctx context.Context, narrationPath, audioPath, voice string) error {
	const op = "media.EdgeTTS.Synthesize"

	if err := checkNarration(narrationPath, op); err != nil {
		return err
	}
	if voice == "" {
		voice = e.Voice
	}

	args := []string{"--voice", voice, "--file", narrationPath, "--write-media", audioPath}
	if _, err := run(ctx, e.Runner, errors.CodeSynthesis, op, "speech synthesis failed", e.Bin, args...); err != nil {
		return err
	}
	return checkAudio(audioPath, op)
}

// VoiceClone synthesizes with a local voice cloning script fed a reference
// sample of the narrator.
type VoiceClone struct {
	Python string
	Script string
	Sample string
	// SampleDir holds named samples. When set, a voice must be a bare file
	// name inside it; when empty, names resolve next to Sample and paths are
	// used as given.
	SampleDir string
	Language  string
	Runner    Runner
}

func (v *VoiceClone) AudioPath(base string) string {
	return base + ".wav"
}

// SamplePath resolves the sample a voice selects; an empty voice is Sample.
func (v *VoiceClone) SamplePath(voice string) (string, error) {
	switch {
	case voice == "":
		return v.Sample, nil
	case IsVoiceName(voice):
		dir := v.SampleDir
		if dir == "" {
			dir = filepath.Dir(v.Sample)
		}
		return filepath.Join(dir, voice), nil
	case v.SampleDir == "":
		return voice, nil
	default:
		return "", errors.ValidationField("voice", "must be a sample name, not a path")
	}
}

// IsVoiceName reports whether voice is a bare name with no path elements.
func IsVoiceName(voice string) bool {
	return voice != "" && voice != "." && voice != ".." &&
		!strings.ContainsAny(voice, `/\`) && filepath.Base(voice) == voice
}

// Synthesize runs the clone script with the sample voice selects.
func (v *VoiceClone) Synthesize(ctx context.Context, narrationPath, audioPath, voice string) error {
	const op = "media.VoiceClone.Synthesize"

	if err := checkNarration(narrationPath, op); err != nil {
		return err
	}
	sample, err := v.SamplePath(voice)
	if err != nil {
		return errors.WrapWithCode(err, errors.CodeSynthesis, op, "voice sample rejected")
	}
	if _, err := os.Stat(sample); err != nil {
		return errors.WrapWithCode(err, errors.CodeSynthesis, op, "voice sample not readable").
			WithField("sample", sample)
	}

	python := v.Python
	if python == "" {
		python = "python3"
	}
	lang := v.Language
	if lang == "" {
		lang = "en"
	}

	args := []string{v.Script, narrationPath, sample, audioPath, lang}
	if _, err := run(ctx, v.Runner, errors.CodeSynthesis, op, "voice cloning failed", python, args...); err != nil {
		return err
	}
	return checkAudio(audioPath, op)
}

func checkNarration(path, op string) error {
	info, err := os.Stat(path)
	if err != nil {
		return errors.WrapWithCode(err, errors.CodeSynthesis, op, "narration not readable").
			WithField("narration", path)
	}
	if info.IsDir() || info.Size() == 0 {
		return errors.New(errors.CodeSynthesis, "narration is empty").
			WithField("narration", path)
	}
	return nil
}

func checkAudio(path, op string) error {
	info, err := os.Stat(path)
	if err != nil {
		return errors.WrapWithCode(err, errors.CodeSynthesis, op, "synthesizer produced no audio").
			WithField("audio", path)
	}
	if info.Size() == 0 {
		return errors.New(errors.CodeSynthesis, "synthesizer produced an empty file").
			WithField("audio", path)
	}
	return nil
}
