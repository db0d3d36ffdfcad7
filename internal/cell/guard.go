package cell

// Ref is a shared read-only guard. Release it when the borrowing scope
// ends, typically with defer.
type Ref[T any] struct {
	cell *Cell[T]
	id   GuardID
}

// Get reads the payload through a live shared guard.
func (r *Ref[T]) Get() (T, error) {
	var zero T
	if err := r.cell.guardLive(r.id); err != nil {
		return zero, err
	}
	return r.cell.val, nil
}

// Release expires the guard. A second release is a fault.
func (r *Ref[T]) Release() error {
	return r.cell.release(r.id)
}

// RefMut is the exclusive read-write guard.
type RefMut[T any] struct {
	cell *Cell[T]
	id   GuardID
}

// Get reads the payload through a live exclusive guard.
func (m *RefMut[T]) Get() (T, error) {
	var zero T
	if err := m.cell.guardLive(m.id); err != nil {
		return zero, err
	}
	return m.cell.val, nil
}

// Set replaces the payload through a live exclusive guard.
func (m *RefMut[T]) Set(value T) error {
	if err := m.cell.guardLive(m.id); err != nil {
		return err
	}
	m.cell.val = value
	return nil
}

// Update applies f to the payload in place.
func (m *RefMut[T]) Update(f func(T) T) error {
	if err := m.cell.guardLive(m.id); err != nil {
		return err
	}
	m.cell.val = f(m.cell.val)
	return nil
}

// Release expires the guard. A second release is a fault.
func (m *RefMut[T]) Release() error {
	return m.cell.release(m.id)
}
