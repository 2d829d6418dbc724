package clipfile

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/quasilyte/gdata/v2"

	"skelanim/internal/motion"
)

const motionsObject = "motions"

// Store persists motions under the gdata object "motions", one property per
// clip. A Store without a manager keeps clips in memory only.
type Store struct {
	manager *gdata.Manager
	memory  map[string][]byte
}

// NewStore wraps manager. A nil manager gives a memory-only store.
func NewStore(manager *gdata.Manager) *Store {
	return &Store{manager: manager, memory: make(map[string][]byte)}
}

// OpenStore opens the gdata location for appName. When storage is
// unavailable it logs and falls back to a memory-only store.
func OpenStore(appName string) *Store {
	manager, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		log.Printf("[ClipStore] Warning: persistent storage unavailable: %v (memory only)", err)
		return NewStore(nil)
	}
	return NewStore(manager)
}

// Persistent reports whether clips reach disk.
func (s *Store) Persistent() bool {
	return s.manager != nil
}

// propKey maps a motion name onto a file-safe property key.
func propKey(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, name)
}

func (s *Store) Save(m *motion.Motion) error {
	data, err := Marshal(m)
	if err != nil {
		return err
	}
	key := propKey(m.Name)
	s.memory[key] = data

	if s.manager == nil {
		return nil
	}
	if err := s.manager.SaveObjectProp(motionsObject, key, data); err != nil {
		return fmt.Errorf("clipfile: save %s: %w", m.Name, err)
	}
	log.Printf("[ClipStore] Saved motion %q (%d keyframes)", m.Name, len(m.KeyFrames))
	return nil
}

// Load returns the stored motion called name, or motion.ErrMotionNotFound.
func (s *Store) Load(name string) (motion.Motion, error) {
	key := propKey(name)
	data, ok := s.memory[key]
	if !ok && s.manager != nil && s.manager.ObjectPropExists(motionsObject, key) {
		loaded, err := s.manager.LoadObjectProp(motionsObject, key)
		if err != nil {
			return motion.Motion{}, fmt.Errorf("clipfile: load %s: %w", name, err)
		}
		data, ok = loaded, true
		s.memory[key] = data
	}
	if !ok {
		return motion.Motion{}, fmt.Errorf("clipfile: load %s: %w", name, motion.ErrMotionNotFound)
	}
	return Unmarshal(data)
}

func (s *Store) Exists(name string) bool {
	key := propKey(name)
	if _, ok := s.memory[key]; ok {
		return true
	}
	return s.manager != nil && s.manager.ObjectPropExists(motionsObject, key)
}

func (s *Store) Delete(name string) error {
	key := propKey(name)
	delete(s.memory, key)
	if s.manager == nil || !s.manager.ObjectPropExists(motionsObject, key) {
		return nil
	}
	if err := s.manager.DeleteObjectProp(motionsObject, key); err != nil {
		return fmt.Errorf("clipfile: delete %s: %w", name, err)
	}
	return nil
}

// SaveHolder saves every motion in h.
func (s *Store) SaveHolder(h *motion.Holder) error {
	for i := 0; i < h.Len(); i++ {
		if err := s.Save(h.At(i)); err != nil {
			return err
		}
	}
	return nil
}

// LoadInto appends the named motions to h. Missing names are skipped and
// reported in the returned slice.
func (s *Store) LoadInto(h *motion.Holder, names ...string) ([]string, error) {
	var missing []string
	for _, name := range names {
		m, err := s.Load(name)
		if errors.Is(err, motion.ErrMotionNotFound) {
			missing = append(missing, name)
			continue
		}
		if err != nil {
			return missing, err
		}
		h.Append(m)
	}
	return missing, nil
}
