// Package media wraps the external tools a job shells out to: speech
// synthesis, ffprobe, the x11grab screen recorder and the final ffmpeg mux.
// Every invocation goes through a Runner so tests can script tool behavior.
package media

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"
	"sync"

	"demoreel/internal/pkg/errors"
)

// Result is the captured outcome of one process.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner executes external commands.
type Runner interface {
	// Run executes a command to completion.
	Run(ctx context.Context, name string, args ...string) (Result, error)
	// Start spawns a command without waiting for it.
	Start(ctx context.Context, name string, args ...string) (Process, error)
}

// Process is a spawned command. Wait may be called more than once and
// returns the same outcome; Kill reaps the child before returning.
type Process interface {
	Wait() (Result, error)
	Kill() error
}

// ExecRunner runs commands through os/exec.
type ExecRunner struct{}

// Run executes one command and captures stdout, stderr and the exit code.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	p, err := ExecRunner{}.Start(ctx, name, args...)
	if err != nil {
		return Result{ExitCode: -1}, err
	}
	return p.Wait()
}

// Start spawns one command with its output buffered for Wait.
func (ExecRunner) Start(ctx context.Context, name string, args ...string) (Process, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	p := &execProcess{cmd: cmd}
	cmd.Stdout = &p.stdout
	cmd.Stderr = &p.stderr
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return p, nil
}

type execProcess struct {
	cmd    *exec.Cmd
	stdout bytes.Buffer
	stderr bytes.Buffer

	once sync.Once
	res  Result
	err  error
}

func (p *execProcess) Wait() (Result, error) {
	p.once.Do(func() {
		err := p.cmd.Wait()
		p.res = Result{Stdout: p.stdout.String(), Stderr: p.stderr.String()}
		if err != nil {
			p.res.ExitCode = -1
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				p.res.ExitCode = exitErr.ExitCode()
			}
			p.err = err
		}
	})
	return p.res, p.err
}

// Kill signals the child and waits for it so no zombie or pipe is left.
// The "signal: killed" exit is expected and not reported.
func (p *execProcess) Kill() error {
	if p.cmd.Process == nil {
		return nil
	}
	err := p.cmd.Process.Kill()
	_, _ = p.Wait()
	if errors.Is(err, os.ErrProcessDone) {
		return nil
	}
	return err
}

// CommandLog records one external command invocation.
type CommandLog struct {
	Command  string   `json:"command"`
	Args     []string `json:"args"`
	ExitCode int      `json:"exitCode"`
	Stderr   string   `json:"stderr"`
}

const stderrTail = 2000

func newCommandLog(name string, args []string, res Result) CommandLog {
	stderr := strings.TrimSpace(res.Stderr)
	if len(stderr) > stderrTail {
		stderr = stderr[len(stderr)-stderrTail:]
	}
	return CommandLog{
		Command:  name,
		Args:     append([]string(nil), args...),
		ExitCode: res.ExitCode,
		Stderr:   stderr,
	}
}

// commandError builds a coded error carrying the command log as fields.
func commandError(err error, code errors.Code, op, msg string, log CommandLog) *errors.Error {
	if err == nil {
		err = errors.Newf(code, "%s exited with code %d", log.Command, log.ExitCode)
	}
	return errors.WrapWithCode(err, code, op, msg).WithFields(map[string]any{
		"command":   log.Command,
		"args":      strings.Join(log.Args, " "),
		"exit_code": log.ExitCode,
		"stderr":    log.Stderr,
	})
}

// run executes a command and turns a failure or non-zero exit into a coded error.
func run(ctx context.Context, r Runner, code errors.Code, op, msg, name string, args ...string) (Result, error) {
	res, err := r.Run(ctx, name, args...)
	if err != nil || res.ExitCode != 0 {
		return res, commandError(err, code, op, msg, newCommandLog(name, args, res))
	}
	return res, nil
}
