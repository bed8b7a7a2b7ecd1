// Package possync keeps a bounded window of joystick samples and mirrors the
// latest position into a remote store on a schedule.
package possync

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/xtding233/joystick-backend/internal/history"
	"github.com/xtding233/joystick-backend/internal/store"
)

// ErrThrottled is returned by Persist when the previous upload attempt was
// less than MinUploadSpacing ago. Nothing is sent in that case.
var ErrThrottled = errors.New("possync: upload throttled")

const (
	DefaultCaptureInterval  = 10 * time.Millisecond
	DefaultUploadInterval   = 50 * time.Millisecond
	DefaultMinUploadSpacing = 50 * time.Millisecond
	DefaultRequestTimeout   = 2 * time.Second
)

type Options struct {
	HistorySize int // local and remote bound; 0 = history.DefaultSize

	CaptureInterval  time.Duration // period of local sample capture
	UploadInterval   time.Duration // period of remote upload attempts
	MinUploadSpacing time.Duration // guard between two uploads; < 0 disables it
	RequestTimeout   time.Duration // per background store call

	// Realtime reloads history whenever the store reports a change.
	Realtime bool

	ClientID string
	Notifier Notifier
	Clock    func() time.Time
}

func (o Options) withDefaults() Options {
	if o.HistorySize <= 0 {
		o.HistorySize = history.DefaultSize
	}
	if o.CaptureInterval <= 0 {
		o.CaptureInterval = DefaultCaptureInterval
	}
	if o.UploadInterval <= 0 {
		o.UploadInterval = DefaultUploadInterval
	}
	if o.MinUploadSpacing < 0 {
		o.MinUploadSpacing = 0
	} else if o.MinUploadSpacing == 0 {
		o.MinUploadSpacing = DefaultMinUploadSpacing
	}
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = DefaultRequestTimeout
	}
	if o.ClientID == "" {
		o.ClientID = uuid.NewString()
	}
	if o.Notifier == nil {
		o.Notifier = LogNotifier{}
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
	return o
}

// Sync owns the local history and the upload schedule. The store handle is
// owned by the caller, who closes it after Run returns.
type Sync struct {
	store store.Store
	opts  Options

	mu         sync.Mutex
	hist       *history.Buffer
	x, y       int
	lastUpload time.Time

	connected atomic.Bool
	inflight  sync.WaitGroup
}

func New(st store.Store, opts Options) *Sync {
	opts = opts.withDefaults()
	return &Sync{
		store: st,
		opts:  opts,
		hist:  history.New(opts.HistorySize),
	}
}

func (s *Sync) Options() Options { return s.opts }

func (s *Sync) ClientID() string { return s.opts.ClientID }

// Connected reports whether the last store round trip succeeded.
func (s *Sync) Connected() bool { return s.connected.Load() }

// SetPosition is the tracker callback: it makes (x, y) current and records it.
func (s *Sync) SetPosition(x, y int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.x, s.y = x, y
	s.hist.Append(history.Entry{X: x, Y: y})
}

// Append records a sample locally. It never fails.
func (s *Sync) Append(x, y int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hist.Append(history.Entry{X: x, Y: y})
}

func (s *Sync) Current() (x, y int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.x, s.y
}

// History returns the window oldest first.
func (s *Sync) History() []history.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hist.Entries()
}

func (s *Sync) Stats() history.Stats {
	return history.Summarize(s.History())
}

// LoadHistory seeds local history with the newest stored samples. On
// failure the user is told and local history is left as it was.
func (s *Sync) LoadHistory(ctx context.Context) error {
	n, err := s.reload(ctx)
	if err != nil {
		s.opts.Notifier.Notify(Notice{
			Level:   LevelError,
			Title:   "Connection Error",
			Message: "Could not connect to database",
		})
		return err
	}
	s.opts.Notifier.Notify(Notice{
		Level:   LevelInfo,
		Title:   "Connected",
		Message: fmt.Sprintf("Loaded %d positions from database", n),
	})
	return nil
}

func (s *Sync) reload(ctx context.Context) (int, error) {
	recs, err := s.store.Recent(ctx, s.opts.HistorySize)
	if err != nil {
		s.markFailure(err)
		log.Printf("possync: fetch history: %v", err)
		return 0, fmt.Errorf("load history: %w", err)
	}

	// the store returns newest first
	entries := make([]history.Entry, len(recs))
	for i, r := range recs {
		entries[len(recs)-1-i] = history.Entry{X: r.X, Y: r.Y, CreatedAt: r.CreatedAt}
	}
	s.mu.Lock()
	s.hist.Replace(entries)
	s.mu.Unlock()

	s.connected.Store(true)
	return len(entries), nil
}

// Persist uploads one sample and trims the store to HistorySize records.
// Store failures are logged and returned; local history is unaffected.
func (s *Sync) Persist(ctx context.Context, x, y int) error {
	now := s.opts.Clock()
	s.mu.Lock()
	if !s.lastUpload.IsZero() && now.Sub(s.lastUpload) < s.opts.MinUploadSpacing {
		s.mu.Unlock()
		return ErrThrottled
	}
	s.lastUpload = now
	s.mu.Unlock()

	rec, err := s.store.Insert(ctx, x, y, s.opts.ClientID)
	if err != nil {
		s.markFailure(err)
		log.Printf("possync: save position (%d, %d): %v", x, y, err)
		return fmt.Errorf("persist: %w", err)
	}
	s.connected.Store(true)

	if _, err := store.Retain(ctx, s.store, rec, s.opts.HistorySize); err != nil {
		log.Printf("possync: trim store below id %d: %v", rec.ID, err)
		return fmt.Errorf("retain: %w", err)
	}
	return nil
}

func (s *Sync) markFailure(err error) {
	if errors.Is(err, store.ErrUnavailable) {
		s.connected.Store(false)
	}
}

// Run drives the capture and upload schedules until ctx is done. Both
// tickers are stopped on return; uploads already in flight are left to
// finish (see Wait).
func (s *Sync) Run(ctx context.Context) error {
	capture := time.NewTicker(s.opts.CaptureInterval)
	defer capture.Stop()
	upload := time.NewTicker(s.opts.UploadInterval)
	defer upload.Stop()

	changes := s.watch(ctx)
	var reloads chan struct{}
	if changes != nil {
		reloads = s.startReloader(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-capture.C:
			x, y := s.Current()
			s.Append(x, y)
		case <-upload.C:
			x, y := s.Current()
			s.persistAsync(x, y)
		case _, ok := <-changes:
			if !ok {
				log.Println("possync: change feed closed")
				changes = nil
				continue
			}
			// a burst of changes collapses into one pending reload
			select {
			case reloads <- struct{}{}:
			default:
			}
		}
	}
}

// startReloader runs history reloads off the capture loop, one at a time.
// It exits when ctx is done and is covered by Wait.
func (s *Sync) startReloader(ctx context.Context) chan struct{} {
	reloads := make(chan struct{}, 1)
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case <-reloads:
				rctx, cancel := context.WithTimeout(ctx, s.opts.RequestTimeout)
				_, _ = s.reload(rctx)
				cancel()
			}
		}
	}()
	return reloads
}

func (s *Sync) watch(ctx context.Context) <-chan store.Change {
	if !s.opts.Realtime {
		return nil
	}
	w, ok := s.store.(store.Watcher)
	if !ok {
		log.Println("possync: store has no change feed, realtime disabled")
		return nil
	}
	ch, err := w.Watch(ctx)
	if err != nil {
		log.Printf("possync: subscribe to changes: %v", err)
		return nil
	}
	return ch
}

func (s *Sync) persistAsync(x, y int) {
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.opts.RequestTimeout)
		defer cancel()
		// failures are already logged by Persist
		_ = s.Persist(ctx, x, y)
	}()
}

// Wait blocks until background uploads and reloads started by Run have
// completed.
func (s *Sync) Wait() {
	s.inflight.Wait()
}
