// Package ui is the optional system-tray menu of the Framecraft agent.
package ui

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/getlantern/systray"

	"github.com/framecraft/framecraft/internal/project"
)

type Tray struct {
	svc    *project.Service
	runner *project.Runner
	logger *slog.Logger

	statusItem  *systray.MenuItem
	projectItem *systray.MenuItem
	scenesItem  *systray.MenuItem
	undoItem    *systray.MenuItem
	pauseItem   *systray.MenuItem

	mu          sync.Mutex
	unsubscribe func()

	onQuit func()
}

type TrayConfig struct {
	Service *project.Service
	Runner  *project.Runner
	Logger  *slog.Logger
	OnQuit  func()
}

func NewTray(cfg TrayConfig) *Tray {
	return &Tray{
		svc:    cfg.Service,
		runner: cfg.Runner,
		logger: cfg.Logger,
		onQuit: cfg.OnQuit,
	}
}

func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

func (t *Tray) onReady() {
	systray.SetIcon(iconBytes)
	systray.SetTitle("Framecraft")
	systray.SetTooltip("Framecraft Agent")

	t.statusItem = systray.AddMenuItem("Status: Idle", "Current agent status")
	t.statusItem.Disable()

	t.projectItem = systray.AddMenuItem("Project: -", "Active project")
	t.projectItem.Disable()

	t.scenesItem = systray.AddMenuItem(scenesLabel(0, 0, 30), "Scenes in the project")
	t.scenesItem.Disable()

	systray.AddSeparator()

	t.undoItem = systray.AddMenuItem("Undo", "Undo the last project change")
	t.pauseItem = systray.AddMenuItem("Pause Rendering", "Pause the render queue")

	systray.AddSeparator()

	quitItem := systray.AddMenuItem("Quit", "Quit Framecraft Agent")

	if t.svc != nil {
		t.unsubscribe = t.svc.OnChange(func(project.ChangeEvent) { t.refresh() })
	}
	t.refresh()

	go func() {
		for {
			select {
			case <-t.undoItem.ClickedCh:
				t.handleUndo()
			case <-t.pauseItem.ClickedCh:
				t.togglePause()
			case <-quitItem.ClickedCh:
				t.logger.Info("quit requested from tray")
				if t.onQuit != nil {
					t.onQuit()
				}
				systray.Quit()
				return
			}
		}
	}()

	t.logger.Info("system tray ready")
}

func (t *Tray) onExit() {
	if t.unsubscribe != nil {
		t.unsubscribe()
	}
	t.logger.Info("system tray exiting")
}

// refresh reloads the project summary into the menu. Change listeners run
// synchronously after a commit, so the store is read on its own goroutine.
func (t *Tray) refresh() {
	if t.svc == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		st, err := t.svc.GetProject(ctx)
		if err != nil {
			t.logger.Warn("tray refresh failed", "error", err)
			return
		}

		t.mu.Lock()
		t.projectItem.SetTitle("Project: " + st.Project.Name)
		t.scenesItem.SetTitle(scenesLabel(len(st.Scenes), st.TotalDurationInFrames(), st.Project.FPS))
		if t.svc.CanUndo() {
			t.undoItem.Enable()
		} else {
			t.undoItem.Disable()
		}
		t.mu.Unlock()

		if t.runner != nil {
			t.UpdateStatus(runnerStatus(t.runner.GetActiveJobCount(ctx)))
		}
	}()
}

func (t *Tray) handleUndo() {
	if t.svc == nil {
		return
	}
	if err := t.svc.Undo(context.Background()); err != nil {
		t.logger.Warn("undo from tray failed", "error", err)
	}
}

func (t *Tray) togglePause() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.runner == nil {
		return
	}

	if t.runner.IsPaused() {
		t.runner.Resume()
		t.pauseItem.SetTitle("Pause Rendering")
		t.statusItem.SetTitle("Status: Idle")
	} else {
		t.runner.Pause()
		t.pauseItem.SetTitle("Resume Rendering")
		t.statusItem.SetTitle("Status: Paused")
	}
}

func (t *Tray) UpdateStatus(status string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.runner != nil && t.runner.IsPaused() {
		return
	}
	t.statusItem.SetTitle("Status: " + status)
}

func (t *Tray) Quit() {
	systray.Quit()
}

func runnerStatus(activeJobs int) string {
	if activeJobs > 0 {
		return "Rendering"
	}
	return "Idle"
}

// scenesLabel renders e.g. "Scenes: 3 (0:08)".
func scenesLabel(count, frames, fps int) string {
	if fps <= 0 {
		fps = project.DefaultFPS
	}
	secs := frames / fps
	return fmt.Sprintf("Scenes: %d (%d:%02d)", count, secs/60, secs%60)
}
