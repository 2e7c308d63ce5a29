package cmd

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/iksnae/ideasurge/internal"
)

// app bundles the collaborators a command needs to move ideas through
// their lifecycle
type app struct {
	store     *internal.FileSessionStore
	repo      internal.IdeaRepository
	tasks     *internal.Dispatcher
	lifecycle *internal.Lifecycle
}

// openApp opens the session store and the idea repository. When
// requireRepo is false an unreachable repository only disables persistence:
// every write is logged as a failed background task.
func openApp(ctx context.Context, requireRepo bool) (*app, error) {
	store := internal.NewFileSessionStore(cfg.StoreDir)
	repo, err := internal.OpenRepository(ctx, cfg.Database)
	if err != nil {
		if requireRepo {
			return nil, fmt.Errorf("failed to open idea repository: %w", err)
		}
		internal.LogWarn("Idea repository unavailable, picks and recycling will not be saved: %v", err)
		repo = unavailableRepository{err: err}
	}

	tasks := internal.NewDispatcher(cfg.Persistence.MaxInFlight, cfg.Persistence.Timeout)
	return &app{
		store: store,
		repo:  repo,
		tasks: tasks,
		lifecycle: internal.NewLifecycle(store, repo, tasks,
			internal.WithRecycleOnPick(cfg.Lifecycle.RecycleOnPick)),
	}, nil
}

// Close flushes pending persistence tasks and closes the repository
func (a *app) Close() {
	a.tasks.Wait()
	if err := a.repo.Close(); err != nil {
		internal.LogWarn("Failed to close idea repository: %v", err)
	}
}

// unavailableRepository fails every call with the error that prevented the
// real repository from opening
type unavailableRepository struct {
	err error
}

func (u unavailableRepository) FindByFingerprint(context.Context, string) (*internal.IdeaRecord, error) {
	return nil, u.err
}

func (u unavailableRepository) UpsertByFingerprint(context.Context, *internal.IdeaRecord) (bool, error) {
	return false, u.err
}

func (u unavailableRepository) GetByID(context.Context, string) (*internal.IdeaRecord, error) {
	return nil, u.err
}

func (u unavailableRepository) ListByStatus(context.Context, internal.IdeaStatus) ([]*internal.IdeaRecord, error) {
	return nil, u.err
}

func (u unavailableRepository) Ping(context.Context) error { return u.err }

func (u unavailableRepository) Close() error { return nil }

// streamClient builds a backend client from the loaded configuration
func streamClient() *internal.StreamClient {
	return internal.NewStreamClient(cfg.LLM.Endpoint, cfg.LLM.Settings(), &http.Client{})
}

// openReplay opens a captured frame stream; "-" reads stdin
func openReplay(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, &internal.StorageError{Path: path, Op: "read", Err: err}
	}
	return f, nil
}

// resolveIdea finds an idea of the current batch by id or by its 1-based
// position in the batch
func resolveIdea(store internal.SessionStore, ref string) (internal.Idea, error) {
	ref = strings.TrimSpace(ref)
	if idea, ok := store.IdeaByID(ref); ok {
		return idea, nil
	}
	if n, err := strconv.Atoi(ref); err == nil {
		ideas := store.Ideas()
		if n >= 1 && n <= len(ideas) {
			return ideas[n-1], nil
		}
	}
	return internal.Idea{}, fmt.Errorf("%w: %s (use 'ideasurge show' to list the current batch)", internal.ErrIdeaNotFound, ref)
}
