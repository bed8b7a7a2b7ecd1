// Command joystick is the client: a virtual joystick driven by the terminal
// mouse or the desktop pointer, mirrored into a position store.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/xtding233/joystick-backend/internal/config"
	"github.com/xtding233/joystick-backend/internal/desktop"
	"github.com/xtding233/joystick-backend/internal/joystick"
	"github.com/xtding233/joystick-backend/internal/possync"
	"github.com/xtding233/joystick-backend/internal/rpc"
	"github.com/xtding233/joystick-backend/internal/terminal"
)

const frameInterval = 33 * time.Millisecond

func main() {
	os.Exit(run())
}

// run returns the exit code so deferred cleanup runs before the process ends.
func run() int {
	var (
		cfgDir   = flag.String("config", "config", "config base directory")
		profile  = flag.String("profile", "", "config profile name")
		addr     = flag.String("addr", "", "position store address (overrides store.address)")
		source   = flag.String("source", "terminal", "input source: terminal|desktop")
		realtime = flag.Bool("realtime", false, "reload history on every store change (overrides sync.realtime)")
		logPath  = flag.String("log", "joystick.log", "log file in terminal mode")
	)
	flag.Parse()

	var o config.Overrides
	if *addr != "" {
		o.StoreAddr = addr
	}
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "realtime" {
			o.Realtime = realtime
		}
	})

	raw, err := config.NewLoader(*cfgDir).LoadMerged(*profile)
	if err != nil {
		log.Print(err)
		return 1
	}
	params, err := config.Resolve(raw, o)
	if err != nil {
		log.Print(err)
		return 1
	}

	if *source == "terminal" {
		// the screen owns stdout; keep the log out of it
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			log.Printf("open log: %v", err)
			return 1
		}
		defer f.Close()
		log.SetOutput(f)
	}

	client, err := rpc.NewClient(params.StoreAddr)
	if err != nil {
		log.Printf("store client: %v", err)
		return 1
	}
	defer client.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch *source {
	case "terminal":
		err = runTerminal(ctx, client, params)
	case "desktop":
		err = runDesktop(ctx, client, params)
	default:
		err = fmt.Errorf("unknown source %q", *source)
	}
	if err != nil {
		log.Print(err)
		return 1
	}
	return 0
}

func syncOptions(p config.Params, n possync.Notifier) possync.Options {
	return possync.Options{
		HistorySize:      p.HistorySize,
		CaptureInterval:  p.CaptureInterval,
		UploadInterval:   p.UploadInterval,
		MinUploadSpacing: p.MinUploadSpacing,
		RequestTimeout:   p.RequestTimeout,
		Realtime:         p.Realtime,
		Notifier:         n,
	}
}

// start loads history and runs the schedules in the background. The returned
// func cancels them and waits for in-flight uploads.
func start(ctx context.Context, sy *possync.Sync, timeout time.Duration) func() {
	lctx, cancel := context.WithTimeout(ctx, timeout)
	// a failed load is shown to the user; the joystick keeps working offline
	_ = sy.LoadHistory(lctx)
	cancel()

	runCtx, stopRun := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := sy.Run(runCtx); err != nil {
			log.Printf("sync: %v", err)
		}
	}()
	return func() {
		stopRun()
		<-done
		sy.Wait()
	}
}

func runTerminal(ctx context.Context, client *rpc.Client, p config.Params) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()
	screen.EnableMouse(tcell.MouseMotionEvents)
	screen.HideCursor()

	var sy *possync.Sync
	tracker := joystick.NewTracker(func(x, y int) {
		if sy != nil {
			sy.SetPosition(x, y)
		}
	})
	view := terminal.NewView(screen, tracker, nil, p.ControlRadius)
	view.Layout()
	sy = possync.New(client, syncOptions(p, view))
	view.SetSource(sy)
	log.Printf("joystick %s started, store=%s", sy.ClientID(), p.StoreAddr)

	view.Draw()
	shutdown := start(ctx, sy, p.RequestTimeout)
	defer shutdown()

	input := terminal.NewMouseInput(tracker)
	events := make(chan tcell.Event, 100)
	quit := make(chan struct{})
	defer close(quit)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-quit:
				return
			}
		}
	}()

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q' {
					return nil
				}
			case *tcell.EventMouse:
				input.Handle(ev)
			case *tcell.EventResize:
				screen.Sync()
				view.Layout()
			}
		case <-ticker.C:
			view.Draw()
		}
	}
}

func runDesktop(ctx context.Context, client *rpc.Client, p config.Params) error {
	var sy *possync.Sync
	tracker := joystick.NewTracker(func(x, y int) {
		if sy != nil {
			sy.SetPosition(x, y)
		}
	})
	sy = possync.New(client, syncOptions(p, possync.LogNotifier{}))
	log.Printf("joystick %s started (desktop), store=%s", sy.ClientID(), p.StoreAddr)

	shutdown := start(ctx, sy, p.RequestTimeout)
	defer shutdown()

	return desktop.Listen(ctx, tracker)
}
