package detector

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/waldirborbajr/appstorecheck/catalog"
	"github.com/waldirborbajr/appstorecheck/history"
	"github.com/waldirborbajr/appstorecheck/logger"
	"github.com/waldirborbajr/appstorecheck/version"
)

const DefaultTimeout = 10 * time.Second

// Fetcher looks up the catalog entry of an application. *catalog.Client implements it.
type Fetcher interface {
	Fetch(ctx context.Context, appID string) (catalog.Record, error)
}

// Presenter shows the update prompt. It must call at most one of onConfirm and onDismiss.
type Presenter interface {
	PresentUpdatePrompt(version, releaseDate, releaseNotes string, onConfirm, onDismiss func())
}

// Opener opens a store link
type Opener interface {
	Open(url string) error
}

// Recorder keeps an audit trail of checks. *history.Store implements it.
type Recorder interface {
	Record(ctx context.Context, e history.Entry) error
}

// Identity describes the running application
type Identity struct {
	Version  string
	BundleID string
}

// Request is a single check
type Request struct {
	AppID         string
	Delay         time.Duration
	LocalVersion  string
	LocalBundleID string
}

// ReleaseInfo describes the newer release found in the catalog
type ReleaseInfo struct {
	Version      string `json:"version"`
	ReleaseDate  string `json:"releaseDate"`
	ReleaseNotes string `json:"releaseNotes"`
}

// Outcome is the result of a successful check. Info is set only when HasNewer is true.
type Outcome struct {
	HasNewer bool         `json:"hasNewer"`
	Info     *ReleaseInfo `json:"info,omitempty"`
}

// Detector runs version checks against the catalog and keeps the last verdict.
// A Detector is safe for concurrent use; overlapping checks are not coordinated
// and the last one to finish wins.
type Detector struct {
	fetcher   Fetcher
	local     Identity
	presenter Presenter
	opener    Opener
	recorder  Recorder
	timeout   time.Duration
	region    string

	mu            sync.Mutex
	appID         string
	hasNewVersion bool
	alertAllowed  bool
}

// Option configures a Detector
type Option func(*Detector)

func WithPresenter(p Presenter) Option {
	return func(d *Detector) { d.presenter = p }
}

func WithOpener(o Opener) Option {
	return func(d *Detector) { d.opener = o }
}

func WithRecorder(r Recorder) Option {
	return func(d *Detector) { d.recorder = r }
}

// WithTimeout bounds the catalog lookup of each check
func WithTimeout(timeout time.Duration) Option {
	return func(d *Detector) {
		if timeout > 0 {
			d.timeout = timeout
		}
	}
}

// WithStoreRegion sets the region of the store link opened on confirm
func WithStoreRegion(region string) Option {
	return func(d *Detector) { d.region = region }
}

// WithAlertAllowed sets the initial prompt policy
func WithAlertAllowed(allowed bool) Option {
	return func(d *Detector) { d.alertAllowed = allowed }
}

// New returns a Detector for the application described by local
func New(fetcher Fetcher, local Identity, opts ...Option) *Detector {
	d := &Detector{
		fetcher:      fetcher,
		local:        local,
		timeout:      DefaultTimeout,
		alertAllowed: true,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// AppID returns the identifier of the most recent check
func (d *Detector) AppID() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.appID
}

// HasNewVersion reports whether a check has found a newer release.
// Once set it stays true; a later "up to date" result does not clear it.
func (d *Detector) HasNewVersion() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.hasNewVersion
}

func (d *Detector) AlertAllowed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.alertAllowed
}

func (d *Detector) SetAlertAllowed(allowed bool) {
	d.mu.Lock()
	d.alertAllowed = allowed
	d.mu.Unlock()
}

// Request builds a check for appID using the detector's own identity
func (d *Detector) Request(appID string, delay time.Duration) Request {
	return Request{
		AppID:         appID,
		Delay:         delay,
		LocalVersion:  d.local.Version,
		LocalBundleID: d.local.BundleID,
	}
}

// Check runs one check and, when a newer release is found and alerts are
// allowed, shows the update prompt before returning.
//
// The error is a *Failure, or ctx.Err() if ctx ends during the delay.
func (d *Detector) Check(ctx context.Context, req Request) (Outcome, error) {
	out, err := d.run(ctx, req)
	if err == nil {
		d.notify(req.AppID, out)
	}
	return out, err
}

// OnDetect checks appID in the background with the detector's identity.
// callback, if not nil, is called exactly once, before any prompt is shown.
func (d *Detector) OnDetect(ctx context.Context, appID string, delay time.Duration, callback func(Outcome, error)) {
	req := d.Request(appID, delay)
	go func() {
		out, err := d.run(ctx, req)
		if callback != nil {
			callback(out, err)
		}
		if err == nil {
			d.notify(req.AppID, out)
		}
	}()
}

// OnDetectFunc is OnDetect with separate success and failure handlers.
// Cancellation during the delay is reported to onFailure as a Failure of kind Cancelled.
func (d *Detector) OnDetectFunc(ctx context.Context, appID string, delay time.Duration, onSuccess func(Outcome), onFailure func(*Failure)) {
	d.OnDetect(ctx, appID, delay, func(out Outcome, err error) {
		if err == nil {
			if onSuccess != nil {
				onSuccess(out)
			}
			return
		}
		if onFailure == nil {
			return
		}
		var f *Failure
		if !errors.As(err, &f) {
			f = &Failure{Kind: Cancelled, Message: err.Error(), Err: err}
		}
		onFailure(f)
	})
}

func (d *Detector) run(ctx context.Context, req Request) (Outcome, error) {
	log := logger.GetLogger().With().Str("app_id", req.AppID).Logger()

	d.mu.Lock()
	d.appID = req.AppID
	d.mu.Unlock()

	if req.Delay > 0 {
		log.Debug().Dur("delay", req.Delay).Msg("Delaying version check")
		timer := time.NewTimer(req.Delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return Outcome{}, ctx.Err()
		case <-timer.C:
		}
	}

	fetchCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	rec, err := d.fetcher.Fetch(fetchCtx, req.AppID)
	if err != nil {
		f := classify(err)
		log.Warn().Err(err).Str("kind", string(f.Kind)).Msg("Catalog lookup failed")
		d.record(ctx, req, rec, Outcome{}, f)
		return Outcome{}, f
	}

	log.Debug().
		Str("local_bundle_id", req.LocalBundleID).
		Str("remote_bundle_id", rec.BundleID).
		Str("local_version", req.LocalVersion).
		Str("remote_version", rec.Version).
		Msg("Catalog entry retrieved")

	if req.LocalBundleID != rec.BundleID {
		f := &Failure{Kind: BundleMismatch, Message: "bundle identifier mismatch"}
		log.Warn().Str("local_bundle_id", req.LocalBundleID).Str("remote_bundle_id", rec.BundleID).Msg("Catalog entry belongs to another application")
		d.record(ctx, req, rec, Outcome{}, f)
		return Outcome{}, f
	}

	ord := version.Compare(req.LocalVersion, rec.Version)
	if ord != version.Less {
		log.Debug().Str("local_is", ord.String()).Msg("No newer version found")
		out := Outcome{}
		d.record(ctx, req, rec, out, nil)
		return out, nil
	}

	out := Outcome{
		HasNewer: true,
		Info: &ReleaseInfo{
			Version:      rec.Version,
			ReleaseDate:  rec.ReleaseDate(),
			ReleaseNotes: rec.ReleaseNotes,
		},
	}

	d.mu.Lock()
	d.hasNewVersion = true
	d.mu.Unlock()

	log.Info().
		Str("current", req.LocalVersion).
		Str("remote", rec.Version).
		Str("release_date", out.Info.ReleaseDate).
		Msg("Newer version available")

	d.record(ctx, req, rec, out, nil)
	return out, nil
}

func (d *Detector) notify(appID string, out Outcome) {
	if !out.HasNewer || out.Info == nil || d.presenter == nil || !d.AlertAllowed() {
		return
	}
	log := logger.GetLogger()

	onConfirm := func() {
		link := catalog.WebStoreURL(appID, d.region)
		if d.opener == nil {
			log.Debug().Str("url", link).Msg("No opener configured")
			return
		}
		if err := d.opener.Open(link); err != nil {
			log.Error().Err(err).Str("url", link).Msg("Error opening store link")
		}
	}
	onDismiss := func() {
		log.Debug().Str("app_id", appID).Msg("Update prompt dismissed")
	}

	d.presenter.PresentUpdatePrompt(out.Info.Version, out.Info.ReleaseDate, out.Info.ReleaseNotes, onConfirm, onDismiss)
}

func (d *Detector) record(ctx context.Context, req Request, rec catalog.Record, out Outcome, f *Failure) {
	if d.recorder == nil {
		return
	}
	e := history.Entry{
		AppID:         req.AppID,
		LocalVersion:  req.LocalVersion,
		RemoteVersion: rec.Version,
		HasNewer:      out.HasNewer,
		CheckedAt:     time.Now(),
	}
	if f != nil {
		e.FailureKind = string(f.Kind)
		e.Message = f.Message
	}
	// Recorded even if ctx is already done.
	if err := d.recorder.Record(context.WithoutCancel(ctx), e); err != nil {
		log := logger.GetLogger()
		log.Warn().Err(err).Msg("Error recording check history")
	}
}
