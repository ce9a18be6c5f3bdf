package ui

// PopupCloser is a function that closes a popup and returns true if it was open
type PopupCloser func(*Model) bool

// PopupStack manages a stack of popup closers for proper layered popup handling.
// When Esc is pressed, the topmost popup is closed first.
type PopupStack struct {
	closers []PopupCloser
	names   []string
}

func NewPopupStack() *PopupStack {
	return &PopupStack{}
}

// Push adds a closer to the stack
func (s *PopupStack) Push(name string, closer PopupCloser) {
	s.closers = append(s.closers, closer)
	s.names = append(s.names, name)
}

// Pop removes and returns the topmost closer, returns nil if empty
func (s *PopupStack) Pop() PopupCloser {
	if len(s.closers) == 0 {
		return nil
	}
	closer := s.closers[len(s.closers)-1]
	s.closers = s.closers[:len(s.closers)-1]
	s.names = s.names[:len(s.names)-1]
	return closer
}

// Remove drops the named popup wherever it sits, without calling its closer
func (s *PopupStack) Remove(name string) {
	for i := len(s.names) - 1; i >= 0; i-- {
		if s.names[i] == name {
			s.closers = append(s.closers[:i], s.closers[i+1:]...)
			s.names = append(s.names[:i], s.names[i+1:]...)
			return
		}
	}
}

// CloseTop closes the topmost popup and removes it from the stack.
// Returns true if a popup was closed, false if stack was empty.
func (s *PopupStack) CloseTop(m *Model) bool {
	closer := s.Pop()
	if closer == nil {
		return false
	}
	return closer(m)
}

func (s *PopupStack) IsEmpty() bool { return len(s.closers) == 0 }

func (s *PopupStack) Len() int { return len(s.closers) }

// TopName returns the name of the topmost popup
func (s *PopupStack) TopName() string {
	if len(s.names) == 0 {
		return ""
	}
	return s.names[len(s.names)-1]
}
