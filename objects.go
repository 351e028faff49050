package arplace

import (
	"errors"

	gesturepose "github.com/biotinker/arplace/gesture_pose"
)

var (
	// ErrObjectNotFound is returned when an object is not in the manager.
	ErrObjectNotFound = errors.New("object not found")
	// ErrNoObjectSelected is returned when an operation needs a selected object.
	ErrNoObjectSelected = errors.New("no object selected")
)

// ObjectManager tracks the loaded virtual objects and which one gestures apply to.
type ObjectManager struct {
	objects  []gesturepose.ObjectHandle
	selected gesturepose.ObjectHandle
	onRemove func(gesturepose.ObjectHandle)
}

// NewObjectManager creates an empty manager. onRemove, when set, is called for
// every object that leaves the manager so it can be detached from the scene.
func NewObjectManager(onRemove func(gesturepose.ObjectHandle)) *ObjectManager {
	return &ObjectManager{onRemove: onRemove}
}

// Add registers obj. Adding an object twice is a no-op.
func (m *ObjectManager) Add(obj gesturepose.ObjectHandle) {
	if m.index(obj) >= 0 {
		return
	}
	m.objects = append(m.objects, obj)
}

// Select makes obj the target of gestures.
func (m *ObjectManager) Select(obj gesturepose.ObjectHandle) error {
	if m.index(obj) < 0 {
		return ErrObjectNotFound
	}
	m.selected = obj
	return nil
}

// Selected returns the selected object.
func (m *ObjectManager) Selected() (gesturepose.ObjectHandle, bool) {
	return m.selected, m.selected != nil
}

// IsPlaced reports whether an object is selected and therefore in the scene.
func (m *ObjectManager) IsPlaced() bool {
	return m.selected != nil
}

// All returns the managed objects in insertion order.
func (m *ObjectManager) All() []gesturepose.ObjectHandle {
	out := make([]gesturepose.ObjectHandle, len(m.objects))
	copy(out, m.objects)
	return out
}

// Remove drops obj. Removing the selected object clears the selection.
func (m *ObjectManager) Remove(obj gesturepose.ObjectHandle) error {
	i := m.index(obj)
	if i < 0 {
		return ErrObjectNotFound
	}
	m.objects = append(m.objects[:i], m.objects[i+1:]...)
	if m.selected == obj {
		m.selected = nil
	}
	m.release(obj)
	return nil
}

// RemoveSelected drops the selected object.
func (m *ObjectManager) RemoveSelected() error {
	if m.selected == nil {
		return ErrNoObjectSelected
	}
	return m.Remove(m.selected)
}

// Reset drops every object and the selection.
func (m *ObjectManager) Reset() {
	for _, obj := range m.objects {
		m.release(obj)
	}
	m.objects = nil
	m.selected = nil
}

func (m *ObjectManager) release(obj gesturepose.ObjectHandle) {
	if m.onRemove != nil {
		m.onRemove(obj)
	}
}

func (m *ObjectManager) index(obj gesturepose.ObjectHandle) int {
	for i, o := range m.objects {
		if o == obj {
			return i
		}
	}
	return -1
}
