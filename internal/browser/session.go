// Package browser is the session driver: one Chrome page, controlled over CDP
// with rod, that loads a repository and walks it for the recorder.
package browser

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"

	"demoreel/internal/pkg/errors"
	"demoreel/internal/pkg/logger"
)

// Options configures the browser window the recorder films.
type Options struct {
	// Bin is the Chrome executable; empty lets rod locate or download one.
	Bin     string
	Display string
	Width   int
	Height  int
	// Headless is only useful for debugging; a headless window is not on the
	// X display and records as a blank screen.
	Headless bool
	Stealth  bool

	NavigateTimeout time.Duration
	// ReturnSettle is waited after going back to the root page before the
	// output link is looked up.
	ReturnSettle time.Duration

	Code LinkRule
	Data LinkRule
}

// DefaultOptions matches the 1920x1080 capture on display :99.
func DefaultOptions() Options {
	return Options{
		Display:         ":99",
		Width:           1920,
		Height:          1080,
		Stealth:         true,
		NavigateTimeout: 30 * time.Second,
		ReturnSettle:    2 * time.Second,
		Code:            CodeFiles,
		Data:            DataFiles,
	}
}

// clickTimeout caps the wait for an anchor to become clickable; a covered
// anchor is opened by URL instead.
const clickTimeout = 5 * time.Second

// stepTimeout bounds one navigation or link follow.
func (o Options) stepTimeout() time.Duration {
	if o.NavigateTimeout > 0 {
		return o.NavigateTimeout
	}
	return 30 * time.Second
}

// stealthScript hides the webdriver flag from page scripts.
const stealthScript = `Object.defineProperty(navigator, 'webdriver', { get: () => false });`

// launchFlags are the Chrome switches set on every launch.
func launchFlags(o Options) map[flags.Flag][]string {
	f := map[flags.Flag][]string{
		"no-sandbox":             nil,
		"disable-setuid-sandbox": nil,
		"disable-dev-shm-usage":  nil,
		"disable-gpu":            nil,
		"disable-infobars":       nil,
		"disable-extensions":     nil,
		"window-size":            {strconv.Itoa(o.Width) + "," + strconv.Itoa(o.Height)},
		"window-position":        {"0,0"},
	}
	if o.Display != "" {
		f["display"] = []string{o.Display}
	}
	if o.Stealth {
		f["disable-blink-features"] = []string{"AutomationControlled"}
	}
	return f
}

// chromeProcess is the launched Chrome and its temporary profile directory.
// *launcher.Launcher satisfies it.
type chromeProcess interface {
	Kill()
	Cleanup()
}

type browserConn interface {
	Close() error
}

// Session is one browser with one page.
type Session struct {
	opts    Options
	log     *logger.Logger
	proc    chromeProcess
	browser browserConn
	page    *rod.Page
	root    string
}

// Launch starts Chrome and opens a blank page sized to the capture.
func Launch(ctx context.Context, opts Options, log *logger.Logger) (*Session, error) {
	const op = "browser.Launch"
	if log == nil {
		log = logger.Discard()
	}
	log = log.WithComponent("browser")

	l := launcher.New().Headless(opts.Headless)
	if opts.Bin != "" {
		l = l.Bin(opts.Bin)
	}
	if opts.Display != "" {
		l = l.Env(append(os.Environ(), "DISPLAY="+opts.Display)...)
	}
	for name, vals := range launchFlags(opts) {
		l = l.Set(name, vals...)
	}
	if opts.Stealth {
		l = l.Delete("enable-automation")
	}

	controlURL, err := l.Context(ctx).Launch()
	if err != nil {
		l.Kill()
		_ = os.RemoveAll(l.Get(flags.UserDataDir))
		return nil, errors.WrapWithCode(err, errors.CodeBrowser, op, "launch chrome")
	}
	s := &Session{opts: opts, log: log, proc: l}

	b := rod.New().ControlURL(controlURL).Context(ctx)
	if err := b.Connect(); err != nil {
		_ = s.Close()
		return nil, errors.WrapWithCode(err, errors.CodeBrowser, op, "connect to chrome")
	}
	s.browser = b

	page, err := b.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = s.Close()
		return nil, errors.WrapWithCode(err, errors.CodeBrowser, op, "open page")
	}

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             opts.Width,
		Height:            opts.Height,
		DeviceScaleFactor: 1,
	}); err != nil {
		_ = s.Close()
		return nil, errors.WrapWithCode(err, errors.CodeBrowser, op, "set viewport")
	}

	if opts.Stealth {
		if _, err := page.EvalOnNewDocument(stealthScript); err != nil {
			_ = s.Close()
			return nil, errors.WrapWithCode(err, errors.CodeBrowser, op, "install stealth script")
		}
	}
	s.page = page

	log.Info("browser launched",
		"display", opts.Display,
		"viewport", fmt.Sprintf("%dx%d", opts.Width, opts.Height),
		"headless", opts.Headless,
	)
	return s, nil
}

// Open loads the repository root and remembers it for ShowOutput.
func (s *Session) Open(ctx context.Context, url string) error {
	if err := s.navigate(ctx, url); err != nil {
		return errors.WrapWithCode(err, errors.CodeBrowser, "browser.Open", "load repository").
			WithField("url", url)
	}
	s.root = url
	s.log.Info("repository loaded", "url", url)
	return nil
}

// ShowCode follows a source file link from the current page.
func (s *Session) ShowCode(ctx context.Context) error {
	return s.follow(ctx, s.opts.Code)
}

// ShowOutput goes back to the repository root and follows a data file link.
func (s *Session) ShowOutput(ctx context.Context) error {
	if s.root == "" {
		return errors.New(errors.CodeNavigation, "session has no root page")
	}
	if err := s.navigate(ctx, s.root); err != nil {
		return errors.WrapWithCode(err, errors.CodeNavigation, "browser.ShowOutput", "return to root")
	}
	if err := sleep(ctx, s.opts.ReturnSettle); err != nil {
		return err
	}
	return s.follow(ctx, s.opts.Data)
}

// Scroll moves the window by offset pixels. A zero duration jumps; otherwise
// the move is animated in-page and Scroll returns when it completes.
func (s *Session) Scroll(ctx context.Context, offset int, duration time.Duration, eased bool) error {
	page := s.page.Context(ctx)
	var err error
	if duration <= 0 {
		_, err = page.Eval(`(dy) => window.scrollBy(0, dy)`, offset)
	} else {
		_, err = page.Eval(animateScroll, offset, duration.Milliseconds(), eased)
	}
	if err != nil {
		return errors.WrapWithCode(err, errors.CodeBrowser, "browser.Scroll", "scroll page").
			WithField("offset", offset)
	}
	return nil
}

// animateScroll runs a requestAnimationFrame scroll using quadratic
// ease-in-out when eased is set.
const animateScroll = `(dist, dur, eased) => new Promise((resolve) => {
	const start = window.scrollY;
	const t0 = performance.now();
	const ease = (p) => p < 0.5 ? 2 * p * p : 1 - Math.pow(-2 * p + 2, 2) / 2;
	function step(now) {
		const p = Math.min((now - t0) / dur, 1);
		window.scrollTo(0, start + dist * (eased ? ease(p) : p));
		if (p < 1) {
			requestAnimationFrame(step);
		} else {
			resolve();
		}
	}
	requestAnimationFrame(step);
})`

// Close shuts the browser down and removes its profile directory. Chrome is
// killed when it cannot be closed over CDP. Close is safe to call twice.
func (s *Session) Close() error {
	var err error
	closed := false
	if s.browser != nil {
		err = s.browser.Close()
		closed = err == nil
		s.browser = nil
	}
	if s.proc != nil {
		if !closed {
			s.proc.Kill()
		}
		s.proc.Cleanup()
		s.proc = nil
	}
	if err != nil {
		return errors.WrapWithCode(err, errors.CodeBrowser, "browser.Close", "close chrome")
	}
	if closed {
		s.log.Info("browser closed")
	}
	return nil
}

func (s *Session) navigate(ctx context.Context, url string) error {
	page := s.page.Context(ctx).Timeout(s.opts.stepTimeout())
	defer page.CancelTimeout()

	if err := page.Navigate(url); err != nil {
		return err
	}
	return page.WaitLoad()
}

// follow clicks the anchor rule selects. A click that cannot land within
// clickTimeout falls back to navigating to the resolved href. The whole step
// is bounded by stepTimeout so a stuck page ends as a soft failure.
func (s *Session) follow(ctx context.Context, rule LinkRule) error {
	const op = "browser.follow"
	ctx, cancel := context.WithTimeout(ctx, s.opts.stepTimeout())
	defer cancel()
	page := s.page.Context(ctx)

	anchors, err := page.Elements("a[href]")
	if err != nil {
		return errors.WrapWithCode(err, errors.CodeNavigation, op, "list anchors")
	}

	hrefs := make([]string, len(anchors))
	for i, a := range anchors {
		if href, err := a.Attribute("href"); err == nil && href != nil {
			hrefs[i] = *href
		}
	}

	i, ok := PickLink(hrefs, rule)
	if !ok {
		return NoLink(rule).WithField("anchors", len(hrefs))
	}
	target := anchors[i]
	log := s.log.With("rule", rule.Name, "href", hrefs[i])

	if err := click(ctx, target); err != nil {
		log.Debug("click failed, navigating", "error", err.Error())
		resolved, perr := target.Property("href")
		if perr != nil {
			return errors.WrapWithCode(perr, errors.CodeNavigation, op, "resolve href")
		}
		if err := s.navigate(ctx, resolved.String()); err != nil {
			return errors.WrapWithCode(err, errors.CodeNavigation, op, "open link")
		}
	}
	log.Info("link followed")
	return nil
}

func click(ctx context.Context, el *rod.Element) error {
	ctx, cancel := context.WithTimeout(ctx, clickTimeout)
	defer cancel()
	return el.Context(ctx).Click(proto.InputMouseButtonLeft, 1)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
