package project

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/framecraft/framecraft/internal/codegen"
	"github.com/framecraft/framecraft/internal/generate"
	"github.com/framecraft/framecraft/internal/scene"
)

const (
	activeProjectKey    = "active_project_id"
	DefaultCodeCacheTTL = 10 * time.Minute
)

// SceneInput is the partial scene accepted by AddScene. Zero values take the
// store defaults.
type SceneInput struct {
	Name             string `json:"name,omitempty"`
	Prompt           string `json:"prompt,omitempty"`
	DurationInFrames int    `json:"durationInFrames,omitempty"`
	BackgroundColor  string `json:"backgroundColor,omitempty"`
	// Elements is an untrusted element array, validated before storing.
	Elements any `json:"elements,omitempty"`
}

// ScenePatch lists the fields UpdateScene changes. Nil fields are left alone.
type ScenePatch struct {
	Name             *string `json:"name,omitempty"`
	Prompt           *string `json:"prompt,omitempty"`
	DurationInFrames *int    `json:"durationInFrames,omitempty"`
	BackgroundColor  *string `json:"backgroundColor,omitempty"`
	Elements         any     `json:"elements,omitempty"`
}

// ProjectPatch lists the project settings UpdateProject changes.
type ProjectPatch struct {
	Name   *string `json:"name,omitempty"`
	FPS    *int    `json:"fps,omitempty"`
	Width  *int    `json:"width,omitempty"`
	Height *int    `json:"height,omitempty"`
}

// Ticket identifies one generation attempt. Only the most recent ticket for a
// scene may apply or fail it.
type Ticket struct {
	SceneID string `json:"scene_id"`
	Seq     uint64 `json:"seq"`
}

// SceneGenerator produces a validated, compiled scene from a prompt.
type SceneGenerator interface {
	Generate(ctx context.Context, prompt string, pc generate.ProjectContext) (*generate.Result, error)
}

// Service is the scene store. All mutations go through it; each one is
// persisted before change listeners run.
type Service struct {
	repo      Repository
	validator *scene.Validator
	logger    *slog.Logger
	codeCache *cache.Cache

	mu        sync.Mutex
	projectID string
	undo      []*State
	redo      []*State
	tickets   map[string]uint64
	ticketSeq uint64

	listenersMu  sync.RWMutex
	listeners    map[int]func(ChangeEvent)
	nextListener int
}

func NewService(repo Repository, logger *slog.Logger, codeCacheTTL time.Duration) *Service {
	if codeCacheTTL <= 0 {
		codeCacheTTL = DefaultCodeCacheTTL
	}
	return &Service{
		repo:      repo,
		validator: scene.NewValidator(),
		logger:    logger,
		codeCache: cache.New(codeCacheTTL, 2*codeCacheTTL),
		tickets:   make(map[string]uint64),
		listeners: make(map[int]func(ChangeEvent)),
	}
}

// OnChange registers fn to run after every committed mutation and returns a
// function that unregisters it. Listeners run on the mutating goroutine,
// after the store lock is released.
func (s *Service) OnChange(fn func(ChangeEvent)) func() {
	s.listenersMu.Lock()
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = fn
	s.listenersMu.Unlock()

	return func() {
		s.listenersMu.Lock()
		delete(s.listeners, id)
		s.listenersMu.Unlock()
	}
}

func (s *Service) emit(ev ChangeEvent) {
	s.listenersMu.RLock()
	fns := make([]func(ChangeEvent), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.listenersMu.RUnlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// current loads the active project, creating a default one on first use.
// Callers hold s.mu.
func (s *Service) current(ctx context.Context) (*State, error) {
	if s.projectID == "" {
		id, err := s.repo.GetConfig(ctx, activeProjectKey)
		if err != nil {
			return nil, fmt.Errorf("read active project: %w", err)
		}
		s.projectID = id
	}

	if s.projectID != "" {
		st, err := s.repo.LoadState(ctx, s.projectID)
		if err != nil {
			return nil, fmt.Errorf("load project: %w", err)
		}
		if st != nil {
			return st, nil
		}
	}

	return s.createProject(ctx)
}

func (s *Service) createProject(ctx context.Context) (*State, error) {
	now := time.Now()
	p := &Project{
		ID:        NewID(),
		Name:      DefaultProjectName,
		FPS:       DefaultFPS,
		Width:     scene.DefaultCanvasWidth,
		Height:    scene.DefaultCanvasHeight,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateProject(ctx, p); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	if err := s.repo.SetConfig(ctx, activeProjectKey, p.ID); err != nil {
		return nil, fmt.Errorf("record active project: %w", err)
	}
	s.projectID = p.ID

	if s.logger != nil {
		s.logger.Info("project created", "project_id", p.ID)
	}
	return &State{Project: *p, Scenes: []*Scene{}}, nil
}

// mutate applies fn to a copy of the current state, persists the result and
// records the previous state for undo. fn returns the id of the scene it
// touched, if any.
func (s *Service) mutate(ctx context.Context, op string, fn func(st *State) (string, error)) error {
	s.mu.Lock()
	cur, err := s.current(ctx)
	if err != nil {
		s.mu.Unlock()
		return err
	}

	next := cur.clone()
	sceneID, err := fn(next)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	next.Project.UpdatedAt = time.Now()

	if err := s.repo.SaveState(ctx, next); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("save project: %w", err)
	}
	s.pushUndo(cur)
	projectID := next.Project.ID
	s.mu.Unlock()

	if s.logger != nil {
		s.logger.Debug("project changed", "op", op, "project_id", projectID, "scene_id", sceneID)
	}
	s.emit(ChangeEvent{Op: op, ProjectID: projectID, SceneID: sceneID})
	return nil
}

func (s *Service) pushUndo(st *State) {
	s.undo = pushBounded(s.undo, st)
	s.redo = nil
}

func pushBounded(stack []*State, st *State) []*State {
	stack = append(stack, st)
	if len(stack) > MaxUndo {
		stack = stack[len(stack)-MaxUndo:]
	}
	return stack
}

// GetProject returns the active project with its scenes.
func (s *Service) GetProject(ctx context.Context) (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current(ctx)
}

func (s *Service) SetProjectName(ctx context.Context, name string) error {
	return s.UpdateProject(ctx, ProjectPatch{Name: &name})
}

// UpdateProject changes project settings. FPS must be 30 or 60.
func (s *Service) UpdateProject(ctx context.Context, patch ProjectPatch) error {
	if patch.FPS != nil && *patch.FPS != 30 && *patch.FPS != 60 {
		return ErrInvalidFPS
	}
	if patch.Width != nil && *patch.Width <= 0 || patch.Height != nil && *patch.Height <= 0 {
		return ErrInvalidSize
	}
	return s.mutate(ctx, "project_updated", func(st *State) (string, error) {
		if patch.Name != nil {
			st.Project.Name = *patch.Name
		}
		if patch.FPS != nil {
			st.Project.FPS = *patch.FPS
		}
		if patch.Width != nil {
			st.Project.Width = *patch.Width
		}
		if patch.Height != nil {
			st.Project.Height = *patch.Height
		}
		return "", nil
	})
}

func (s *Service) ListScenes(ctx context.Context) ([]*Scene, error) {
	st, err := s.GetProject(ctx)
	if err != nil {
		return nil, err
	}
	return st.Scenes, nil
}

func (s *Service) GetScene(ctx context.Context, id string) (*Scene, error) {
	st, err := s.GetProject(ctx)
	if err != nil {
		return nil, err
	}
	i := st.index(id)
	if i < 0 {
		return nil, ErrSceneNotFound
	}
	return st.Scenes[i], nil
}

// SelectedScene returns the selected scene, or nil when nothing is selected.
func (s *Service) SelectedScene(ctx context.Context) (*Scene, error) {
	st, err := s.GetProject(ctx)
	if err != nil {
		return nil, err
	}
	if i := st.index(st.Project.SelectedSceneID); i >= 0 {
		return st.Scenes[i], nil
	}
	return nil, nil
}

// AddScene appends a scene built from in and selects it.
func (s *Service) AddScene(ctx context.Context, in SceneInput) (*Scene, error) {
	var added *Scene
	err := s.mutate(ctx, "scene_added", func(st *State) (string, error) {
		now := time.Now()
		sc := &Scene{
			ID:               NewID(),
			Name:             in.Name,
			Prompt:           in.Prompt,
			DurationInFrames: in.DurationInFrames,
			BackgroundColor:  in.BackgroundColor,
			Elements:         []scene.Element{},
			Status:           StatusIdle,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if sc.Name == "" {
			sc.Name = fmt.Sprintf("Scene %d", len(st.Scenes)+1)
		}
		if sc.DurationInFrames == 0 {
			sc.DurationInFrames = DefaultSceneDuration
		}
		if sc.BackgroundColor == "" {
			sc.BackgroundColor = DefaultBackgroundColor
		}
		if err := checkDuration(sc.DurationInFrames); err != nil {
			return "", err
		}
		if in.Elements != nil {
			els, err := s.validator.ValidateElements(in.Elements, sc.DurationInFrames)
			if err != nil {
				return "", err
			}
			sc.Elements = els
		}
		if err := refreshCode(sc); err != nil {
			return "", err
		}

		st.Scenes = append(st.Scenes, sc)
		st.Project.SelectedSceneID = sc.ID
		added = sc
		return sc.ID, nil
	})
	if err != nil {
		return nil, err
	}
	return added, nil
}

// RemoveScene deletes a scene. When it was selected, the scene that takes its
// place in the list (or the new last scene) becomes selected.
func (s *Service) RemoveScene(ctx context.Context, id string) error {
	return s.mutate(ctx, "scene_removed", func(st *State) (string, error) {
		i := st.index(id)
		if i < 0 {
			return "", ErrSceneNotFound
		}
		st.Scenes = append(st.Scenes[:i], st.Scenes[i+1:]...)
		if st.Project.SelectedSceneID == id {
			st.Project.SelectedSceneID = ""
			if len(st.Scenes) > 0 {
				st.Project.SelectedSceneID = st.Scenes[min(i, len(st.Scenes)-1)].ID
			}
		}
		s.dropTicket(id)
		return id, nil
	})
}

// RemoveScenes deletes every listed scene. Unknown ids are ignored. When the
// selected scene is removed, the first remaining scene becomes selected.
func (s *Service) RemoveScenes(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	return s.mutate(ctx, "scenes_removed", func(st *State) (string, error) {
		kept := st.Scenes[:0]
		for _, sc := range st.Scenes {
			if drop[sc.ID] {
				s.dropTicket(sc.ID)
				continue
			}
			kept = append(kept, sc)
		}
		st.Scenes = kept
		if drop[st.Project.SelectedSceneID] {
			st.Project.SelectedSceneID = ""
			if len(kept) > 0 {
				st.Project.SelectedSceneID = kept[0].ID
			}
		}
		return "", nil
	})
}

// SelectScene changes the selection. An empty id clears it. Selection is not
// an undoable edit.
func (s *Service) SelectScene(ctx context.Context, id string) error {
	s.mu.Lock()
	st, err := s.current(ctx)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if id != "" && st.index(id) < 0 {
		s.mu.Unlock()
		return ErrSceneNotFound
	}
	st.Project.SelectedSceneID = id
	if err := s.repo.SaveState(ctx, st); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("save selection: %w", err)
	}
	projectID := st.Project.ID
	s.mu.Unlock()

	s.emit(ChangeEvent{Op: "scene_selected", ProjectID: projectID, SceneID: id})
	return nil
}

// UpdateScene applies patch. Patched elements are validated against the
// resulting duration; a duration change alone re-validates the existing
// elements.
func (s *Service) UpdateScene(ctx context.Context, id string, patch ScenePatch) (*Scene, error) {
	var updated *Scene
	err := s.mutate(ctx, "scene_updated", func(st *State) (string, error) {
		i := st.index(id)
		if i < 0 {
			return "", ErrSceneNotFound
		}
		sc := st.Scenes[i]

		if patch.Name != nil {
			sc.Name = *patch.Name
		}
		if patch.Prompt != nil {
			sc.Prompt = *patch.Prompt
		}
		if patch.BackgroundColor != nil {
			sc.BackgroundColor = *patch.BackgroundColor
		}
		if patch.DurationInFrames != nil {
			if err := checkDuration(*patch.DurationInFrames); err != nil {
				return "", err
			}
			sc.DurationInFrames = *patch.DurationInFrames
		}

		rawElements := patch.Elements
		if rawElements == nil && patch.DurationInFrames != nil {
			raw, err := elementsToRaw(sc.Elements)
			if err != nil {
				return "", err
			}
			rawElements = raw
		}
		if rawElements != nil {
			els, err := s.validator.ValidateElements(rawElements, sc.DurationInFrames)
			if err != nil {
				return "", err
			}
			sc.Elements = els
		}

		if err := refreshCode(sc); err != nil {
			return "", err
		}
		sc.UpdatedAt = time.Now()
		updated = sc
		return id, nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ReorderScenes moves the scene at from to index to.
func (s *Service) ReorderScenes(ctx context.Context, from, to int) error {
	return s.mutate(ctx, "scenes_reordered", func(st *State) (string, error) {
		n := len(st.Scenes)
		if from < 0 || from >= n || to < 0 || to >= n {
			return "", ErrInvalidIndex
		}
		moved := st.Scenes[from]
		st.Scenes = append(st.Scenes[:from], st.Scenes[from+1:]...)
		st.Scenes = append(st.Scenes[:to], append([]*Scene{moved}, st.Scenes[to:]...)...)
		return moved.ID, nil
	})
}

// ResizeScene sets a scene's duration by dragging one of its edges. Dragging
// the right edge trims the tail: elements starting at or after the new end
// are dropped and the rest are clamped. Dragging the left edge trims the
// head: elements shift by the change, and those pushed before frame 0 lose
// the overshoot or are dropped entirely.
func (s *Service) ResizeScene(ctx context.Context, id string, duration int, edge Edge) (*Scene, error) {
	if edge != EdgeLeft && edge != EdgeRight {
		return nil, ErrInvalidEdge
	}
	duration = min(max(duration, MinSceneDuration), scene.MaxSceneDuration)

	var resized *Scene
	err := s.mutate(ctx, "scene_resized", func(st *State) (string, error) {
		i := st.index(id)
		if i < 0 {
			return "", ErrSceneNotFound
		}
		sc := st.Scenes[i]
		sc.Elements = resizeElements(sc.Elements, sc.DurationInFrames, duration, edge)
		sc.DurationInFrames = duration
		if err := refreshCode(sc); err != nil {
			return "", err
		}
		sc.UpdatedAt = time.Now()
		resized = sc
		return id, nil
	})
	if err != nil {
		return nil, err
	}
	return resized, nil
}

func resizeElements(els []scene.Element, oldDuration, newDuration int, edge Edge) []scene.Element {
	out := make([]scene.Element, 0, len(els))
	if edge == EdgeRight {
		for _, el := range els {
			if el.StartFrame >= newDuration {
				continue
			}
			if el.EndFrame() > newDuration {
				el.DurationInFrames = newDuration - el.StartFrame
			}
			out = append(out, el)
		}
		return out
	}

	delta := oldDuration - newDuration
	for _, el := range els {
		el.StartFrame -= delta
		if el.StartFrame < 0 {
			el.DurationInFrames += el.StartFrame
			el.StartFrame = 0
		}
		if el.DurationInFrames > 0 {
			out = append(out, el)
		}
	}
	return out
}

// BeginGeneration marks a scene as generating and returns the ticket that a
// later ApplyGenerated or FailGeneration must present. Starting a new
// generation invalidates any earlier ticket for the same scene.
func (s *Service) BeginGeneration(ctx context.Context, id string) (Ticket, error) {
	s.mu.Lock()
	st, err := s.current(ctx)
	if err != nil {
		s.mu.Unlock()
		return Ticket{}, err
	}
	if st.index(id) < 0 {
		s.mu.Unlock()
		return Ticket{}, ErrSceneNotFound
	}
	if err := s.repo.UpdateSceneStatus(ctx, id, StatusGenerating, ""); err != nil {
		s.mu.Unlock()
		return Ticket{}, fmt.Errorf("mark scene generating: %w", err)
	}
	s.ticketSeq++
	t := Ticket{SceneID: id, Seq: s.ticketSeq}
	s.tickets[id] = t.Seq
	projectID := st.Project.ID
	s.mu.Unlock()

	s.emit(ChangeEvent{Op: "generation_started", ProjectID: projectID, SceneID: id})
	return t, nil
}

// checkTicket reports whether t is the live ticket for its scene. Callers
// hold s.mu.
func (s *Service) checkTicket(t Ticket) error {
	if seq, ok := s.tickets[t.SceneID]; !ok || seq != t.Seq {
		return ErrStaleGeneration
	}
	return nil
}

func (s *Service) dropTicket(sceneID string) {
	delete(s.tickets, sceneID)
}

// ApplyGenerated stores a generated scene on the ticket's scene. When code is
// empty it is compiled from generated.
func (s *Service) ApplyGenerated(ctx context.Context, t Ticket, generated *scene.Scene, prompt, code string) (*Scene, error) {
	if generated == nil {
		return nil, errors.New("generated scene is nil")
	}
	var applied *Scene
	err := s.mutate(ctx, "generation_applied", func(st *State) (string, error) {
		if err := s.checkTicket(t); err != nil {
			return "", err
		}
		i := st.index(t.SceneID)
		if i < 0 {
			s.dropTicket(t.SceneID)
			return "", ErrSceneNotFound
		}
		sc := st.Scenes[i]
		sc.Name = generated.Name
		sc.DurationInFrames = generated.DurationInFrames
		sc.BackgroundColor = generated.BackgroundColor
		sc.Elements = append([]scene.Element{}, generated.Elements...)
		sc.Prompt = prompt
		sc.Status = StatusReady
		sc.Error = ""
		sc.GeneratedCode = code
		if code == "" {
			if err := refreshCode(sc); err != nil {
				return "", err
			}
		}
		sc.UpdatedAt = time.Now()
		s.dropTicket(t.SceneID)
		applied = sc
		return sc.ID, nil
	})
	if err != nil {
		return nil, err
	}
	return applied, nil
}

// FailGeneration records a failed generation. Elements and code are kept.
func (s *Service) FailGeneration(ctx context.Context, t Ticket, msg string) error {
	s.mu.Lock()
	if err := s.checkTicket(t); err != nil {
		s.mu.Unlock()
		return err
	}
	s.dropTicket(t.SceneID)
	if err := s.repo.UpdateSceneStatus(ctx, t.SceneID, StatusError, msg); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("mark scene failed: %w", err)
	}
	projectID := s.projectID
	s.mu.Unlock()

	s.emit(ChangeEvent{Op: "generation_failed", ProjectID: projectID, SceneID: t.SceneID})
	return nil
}

// Generate runs gen for one scene under a ticket, storing either the result
// or the failure.
func (s *Service) Generate(ctx context.Context, id, prompt string, gen SceneGenerator) (*Scene, error) {
	st, err := s.GetProject(ctx)
	if err != nil {
		return nil, err
	}
	i := st.index(id)
	if i < 0 {
		return nil, ErrSceneNotFound
	}
	pc := generate.ProjectContext{
		SceneCount: i + 1,
		FPS:        st.Project.FPS,
		Width:      st.Project.Width,
		Height:     st.Project.Height,
	}

	t, err := s.BeginGeneration(ctx, id)
	if err != nil {
		return nil, err
	}

	res, err := gen.Generate(ctx, prompt, pc)
	if err != nil {
		if ferr := s.FailGeneration(context.WithoutCancel(ctx), t, err.Error()); ferr != nil && s.logger != nil {
			s.logger.Warn("failed to record generation failure", "scene_id", id, "error", ferr)
		}
		return nil, err
	}
	return s.ApplyGenerated(ctx, t, res.Scene, prompt, res.Code)
}

func (s *Service) TotalDurationInFrames(ctx context.Context) (int, error) {
	st, err := s.GetProject(ctx)
	if err != nil {
		return 0, err
	}
	return st.TotalDurationInFrames(), nil
}

// CompileScene returns the component source for a scene, served from cache
// while the scene content is unchanged.
func (s *Service) CompileScene(ctx context.Context, id string) (string, error) {
	sc, err := s.GetScene(ctx, id)
	if err != nil {
		return "", err
	}
	def := sc.Definition()

	key, err := contentKey(sc.ID, def)
	if err != nil {
		return "", err
	}
	if code, ok := s.codeCache.Get(key); ok {
		return code.(string), nil
	}

	code, err := codegen.Compile(def)
	if err != nil {
		return "", err
	}
	s.codeCache.Set(key, code, cache.DefaultExpiration)
	return code, nil
}

func contentKey(id string, def *scene.Scene) (string, error) {
	data, err := json.Marshal(def)
	if err != nil {
		return "", fmt.Errorf("hash scene %s: %w", id, err)
	}
	sum := sha256.Sum256(data)
	return id + ":" + hex.EncodeToString(sum[:16]), nil
}

// Undo restores the state before the last undoable edit.
func (s *Service) Undo(ctx context.Context) error {
	return s.travel(ctx, "undo")
}

// Redo re-applies the last undone edit.
func (s *Service) Redo(ctx context.Context) error {
	return s.travel(ctx, "redo")
}

func (s *Service) travel(ctx context.Context, op string) error {
	s.mu.Lock()
	from, to := &s.undo, &s.redo
	empty := ErrNothingToUndo
	if op == "redo" {
		from, to = &s.redo, &s.undo
		empty = ErrNothingToRedo
	}
	if len(*from) == 0 {
		s.mu.Unlock()
		return empty
	}

	cur, err := s.current(ctx)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	target := (*from)[len(*from)-1]
	if err := s.repo.SaveState(ctx, target); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("restore project: %w", err)
	}
	*from = (*from)[:len(*from)-1]
	*to = pushBounded(*to, cur)
	projectID := target.Project.ID
	s.mu.Unlock()

	s.emit(ChangeEvent{Op: op, ProjectID: projectID})
	return nil
}

// CanUndo and CanRedo report the stack depths.
func (s *Service) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.undo) > 0
}

func (s *Service) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.redo) > 0
}

// Reset replaces the active project with a fresh empty one and clears
// history. The previous project and its render jobs are deleted.
func (s *Service) Reset(ctx context.Context) error {
	s.mu.Lock()
	old := s.projectID
	if old == "" {
		id, err := s.repo.GetConfig(ctx, activeProjectKey)
		if err != nil {
			s.mu.Unlock()
			return err
		}
		old = id
	}

	st, err := s.createProject(ctx)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if old != "" {
		if err := s.repo.DeleteProject(ctx, old); err != nil {
			s.mu.Unlock()
			return fmt.Errorf("delete project: %w", err)
		}
	}
	s.undo, s.redo = nil, nil
	s.tickets = make(map[string]uint64)
	s.codeCache.Flush()
	s.mu.Unlock()

	s.emit(ChangeEvent{Op: "reset", ProjectID: st.Project.ID})
	return nil
}

// EnqueueRender queues a render job for the active project.
func (s *Service) EnqueueRender(ctx context.Context) (*Job, error) {
	st, err := s.GetProject(ctx)
	if err != nil {
		return nil, err
	}
	if len(st.Scenes) == 0 {
		return nil, ErrEmptyProject
	}

	now := time.Now()
	job := &Job{
		ID:        NewID(),
		Type:      JobTypeRender,
		Status:    JobStatusPending,
		ProjectID: st.Project.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateJob(ctx, job); err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.Info("render job queued", "job_id", job.ID, "project_id", st.Project.ID, "scenes", len(st.Scenes))
	}
	return job, nil
}

func (s *Service) GetJob(ctx context.Context, id string) (*Job, error) {
	job, err := s.repo.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, ErrJobNotFound
	}
	return job, nil
}

func (s *Service) ListJobs(ctx context.Context, limit int) ([]*Job, error) {
	return s.repo.ListJobs(ctx, limit)
}

func checkDuration(d int) error {
	if d < scene.MinSceneDuration || d > scene.MaxSceneDuration {
		lo, hi := float64(scene.MinSceneDuration), float64(scene.MaxSceneDuration)
		return scene.ValidationErrors{&scene.FieldOutOfRangeError{
			Path: "durationInFrames", Value: float64(d), Min: &lo, Max: &hi,
		}}
	}
	return nil
}

// refreshCode recompiles a scene's stored source. Scenes without elements
// carry no code.
func refreshCode(sc *Scene) error {
	if len(sc.Elements) == 0 {
		sc.GeneratedCode = ""
		return nil
	}
	code, err := codegen.Compile(sc.Definition())
	if err != nil {
		return err
	}
	sc.GeneratedCode = code
	return nil
}

func elementsToRaw(els []scene.Element) (any, error) {
	if len(els) == 0 {
		return []any{}, nil
	}
	data, err := json.Marshal(els)
	if err != nil {
		return nil, err
	}
	return scene.DecodeRaw(data)
}
