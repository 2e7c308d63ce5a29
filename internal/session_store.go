package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

const (
	sessionStoreVersion = 1
	sessionStoreFile    = "idea_store.json"
	sessionIndexFile    = "index.yaml"
)

// IdeaStoreState is the session-scoped idea state. Ideas holds the current
// batch, DeepDives accumulates newest-first per idea id, Picked lists the
// ids of the batch picked in this session and Chats holds each idea's
// brainstorm conversation, oldest first.
type IdeaStoreState struct {
	Version   int                         `json:"version" yaml:"version"`
	Ideas     []Idea                      `json:"ideas" yaml:"ideas"`
	DeepDives map[string][]DeepDiveResult `json:"deepDives" yaml:"deep_dives"`
	Picked    []string                    `json:"picked" yaml:"picked"`
	Chats     map[string][]ChatMessage    `json:"chats" yaml:"chats"`
}

func newIdeaStoreState() *IdeaStoreState {
	return &IdeaStoreState{
		Version:   sessionStoreVersion,
		Ideas:     []Idea{},
		DeepDives: map[string][]DeepDiveResult{},
		Picked:    []string{},
		Chats:     map[string][]ChatMessage{},
	}
}

// SessionStore is the read/write access to session idea state handed to
// whatever needs it
type SessionStore interface {
	Load() (*IdeaStoreState, error)
	SaveIdeas(ideas []Idea) error
	Ideas() []Idea
	IdeaByID(id string) (Idea, bool)
	MarkPicked(id string) error
	IsPicked(id string) bool
	PickedIDs() []string
	AddDeepDive(result DeepDiveResult) error
	DeepDivesByIdeaID(id string) []DeepDiveResult
	AddChatMessage(ideaID string, msg ChatMessage) error
	ChatByIdeaID(id string) []ChatMessage
	Clear() error
}

// SessionIndexEntry summarises one idea of the batch in the YAML index
type SessionIndexEntry struct {
	ID        string `yaml:"id"`
	Title     string `yaml:"title"`
	Picked    bool   `yaml:"picked"`
	DeepDives int    `yaml:"deep_dives"`
	Messages  int    `yaml:"messages,omitempty"`
}

// SessionIndex is the human-readable summary written next to the store
type SessionIndex struct {
	Version   int                 `yaml:"version"`
	UpdatedAt time.Time           `yaml:"updated_at"`
	Ideas     []SessionIndexEntry `yaml:"ideas"`
}

// FileSessionStore keeps IdeaStoreState in a JSON file in dir
type FileSessionStore struct {
	dir   string
	mu    sync.Mutex
	state *IdeaStoreState
}

// NewFileSessionStore creates a store rooted at dir. Nothing is read until
// first use.
func NewFileSessionStore(dir string) *FileSessionStore {
	return &FileSessionStore{dir: dir}
}

// Dir returns the store directory
func (s *FileSessionStore) Dir() string {
	return s.dir
}

// StatePath returns the path of the JSON state file
func (s *FileSessionStore) StatePath() string {
	return filepath.Join(s.dir, sessionStoreFile)
}

// IndexPath returns the path of the YAML index
func (s *FileSessionStore) IndexPath() string {
	return filepath.Join(s.dir, sessionIndexFile)
}

// EnsureDir ensures the store directory exists
func (s *FileSessionStore) EnsureDir() error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return &StorageError{Path: s.dir, Op: "mkdir", Err: err}
	}
	return nil
}

// Load reads the state from disk, discarding entries that fail validation.
// A missing, unreadable or foreign-version file yields an empty state.
func (s *FileSessionStore) Load() (*IdeaStoreState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.reload(); err != nil {
		return nil, err
	}
	return s.snapshot(), nil
}

func (s *FileSessionStore) reload() error {
	data, err := os.ReadFile(s.StatePath())
	if errors.Is(err, os.ErrNotExist) {
		s.state = newIdeaStoreState()
		return nil
	}
	if err != nil {
		return &StorageError{Path: s.StatePath(), Op: "read", Err: err}
	}
	s.state = sanitizeState(data)
	return nil
}

func (s *FileSessionStore) ensureLoaded() error {
	if s.state != nil {
		return nil
	}
	return s.reload()
}

// sanitizeState validates raw state JSON entry by entry
func sanitizeState(data []byte) *IdeaStoreState {
	state := newIdeaStoreState()
	if !gjson.ValidBytes(data) {
		LogWarn("Session store is not valid JSON, starting empty")
		return state
	}
	root := gjson.ParseBytes(data)
	if v := root.Get("version"); v.Int() != sessionStoreVersion {
		LogWarn("Session store version %s is not supported, starting empty", v.Raw)
		return state
	}

	known := make(map[string]bool)
	for _, raw := range root.Get("ideas").Array() {
		idea, err := ValidateIdea(raw)
		if err != nil {
			LogDebug("Dropping stored idea: %v", err)
			continue
		}
		state.Ideas = append(state.Ideas, idea)
		known[idea.ID] = true
	}

	root.Get("deepDives").ForEach(func(key, list gjson.Result) bool {
		for _, raw := range list.Array() {
			result, err := ValidateDeepDive(raw)
			if err != nil {
				LogDebug("Dropping stored deep dive for %s: %v", key.String(), err)
				continue
			}
			state.DeepDives[key.String()] = append(state.DeepDives[key.String()], result)
		}
		return true
	})

	root.Get("chats").ForEach(func(key, list gjson.Result) bool {
		for _, raw := range list.Array() {
			msg, err := ValidateChatMessage(raw)
			if err != nil {
				LogDebug("Dropping stored chat message for %s: %v", key.String(), err)
				continue
			}
			state.Chats[key.String()] = append(state.Chats[key.String()], msg)
		}
		return true
	})

	for _, id := range root.Get("picked").Array() {
		if known[id.String()] {
			state.Picked = append(state.Picked, id.String())
		}
	}
	return state
}

// snapshot returns a deep copy of the state; callers hold s.mu
func (s *FileSessionStore) snapshot() *IdeaStoreState {
	out := newIdeaStoreState()
	out.Ideas = append(out.Ideas, s.state.Ideas...)
	out.Picked = append(out.Picked, s.state.Picked...)
	for id, list := range s.state.DeepDives {
		out.DeepDives[id] = append([]DeepDiveResult(nil), list...)
	}
	for id, list := range s.state.Chats {
		out.Chats[id] = append([]ChatMessage(nil), list...)
	}
	return out
}

// save writes the state and the index; callers hold s.mu
func (s *FileSessionStore) save() error {
	if err := s.EnsureDir(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session store: %w", err)
	}
	if err := writeFileAtomic(s.StatePath(), data); err != nil {
		return err
	}

	index := SessionIndex{Version: s.state.Version, UpdatedAt: time.Now().UTC()}
	for _, idea := range s.state.Ideas {
		index.Ideas = append(index.Ideas, SessionIndexEntry{
			ID:        idea.ID,
			Title:     idea.Title,
			Picked:    containsString(s.state.Picked, idea.ID),
			DeepDives: len(s.state.DeepDives[idea.ID]),
			Messages:  len(s.state.Chats[idea.ID]),
		})
	}
	indexData, err := yaml.Marshal(index)
	if err != nil {
		return fmt.Errorf("failed to marshal index: %w", err)
	}
	return writeFileAtomic(s.IndexPath(), indexData)
}

// SaveIdeas replaces the current batch and clears the picked set. Deep dives
// are kept.
func (s *FileSessionStore) SaveIdeas(ideas []Idea) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(); err != nil {
		return err
	}
	s.state.Ideas = append([]Idea{}, ideas...)
	s.state.Picked = []string{}
	return s.save()
}

// Ideas returns the current batch
func (s *FileSessionStore) Ideas() []Idea {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(); err != nil {
		LogWarn("Failed to load session store: %v", err)
		return []Idea{}
	}
	return append([]Idea{}, s.state.Ideas...)
}

// IdeaByID looks up an idea of the current batch
func (s *FileSessionStore) IdeaByID(id string) (Idea, bool) {
	for _, idea := range s.Ideas() {
		if idea.ID == id {
			return idea, true
		}
	}
	return Idea{}, false
}

// MarkPicked records id as picked in this session
func (s *FileSessionStore) MarkPicked(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(); err != nil {
		return err
	}
	found := false
	for _, idea := range s.state.Ideas {
		if idea.ID == id {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrIdeaNotFound, id)
	}
	if containsString(s.state.Picked, id) {
		return nil
	}
	s.state.Picked = append(s.state.Picked, id)
	return s.save()
}

// IsPicked reports whether id was picked in this session
func (s *FileSessionStore) IsPicked(id string) bool {
	return containsString(s.PickedIDs(), id)
}

// PickedIDs returns the picked ids of the current batch
func (s *FileSessionStore) PickedIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(); err != nil {
		LogWarn("Failed to load session store: %v", err)
		return []string{}
	}
	return append([]string{}, s.state.Picked...)
}

// AddDeepDive prepends result to its idea's deep dives
func (s *FileSessionStore) AddDeepDive(result DeepDiveResult) error {
	if !result.IsValid() {
		return fmt.Errorf("refusing to store invalid deep dive for %s", result.IdeaID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(); err != nil {
		return err
	}
	existing := s.state.DeepDives[result.IdeaID]
	s.state.DeepDives[result.IdeaID] = append([]DeepDiveResult{result}, existing...)
	return s.save()
}

// DeepDivesByIdeaID returns the deep dives of id, newest first
func (s *FileSessionStore) DeepDivesByIdeaID(id string) []DeepDiveResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(); err != nil {
		LogWarn("Failed to load session store: %v", err)
		return []DeepDiveResult{}
	}
	return append([]DeepDiveResult{}, s.state.DeepDives[id]...)
}

// AddChatMessage appends msg to the brainstorm conversation of ideaID.
// Conversations outlive the batch so a recycled idea keeps its history.
func (s *FileSessionStore) AddChatMessage(ideaID string, msg ChatMessage) error {
	if strings.TrimSpace(ideaID) == "" {
		return fmt.Errorf("chat message needs an idea id")
	}
	if strings.TrimSpace(msg.Content) == "" {
		return fmt.Errorf("refusing to store empty chat message for %s", ideaID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(); err != nil {
		return err
	}
	s.state.Chats[ideaID] = append(s.state.Chats[ideaID], msg)
	return s.save()
}

// ChatByIdeaID returns the brainstorm conversation of id, oldest first
func (s *FileSessionStore) ChatByIdeaID(id string) []ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(); err != nil {
		LogWarn("Failed to load session store: %v", err)
		return []ChatMessage{}
	}
	return append([]ChatMessage{}, s.state.Chats[id]...)
}

// Clear removes the store files and resets the state
func (s *FileSessionStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, path := range []string{s.StatePath(), s.IndexPath()} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return &StorageError{Path: path, Op: "remove", Err: err}
		}
	}
	s.state = newIdeaStoreState()
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return &StorageError{Path: path, Op: "write", Err: err}
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return &StorageError{Path: path, Op: "write", Err: err}
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return &StorageError{Path: path, Op: "write", Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return &StorageError{Path: path, Op: "rename", Err: err}
	}
	return nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
