// Package livereload tells browsers (and other listeners) that the output
// tree changed. The dev server injects a small client script into every HTML
// page it serves; the script reloads the page when a notification arrives.
package livereload

// Notifier is signalled once per completed reconciliation.
type Notifier interface {
	Notify()
}

// NotifierFunc adapts a plain function to Notifier.
type NotifierFunc func()

// Notify calls f.
func (f NotifierFunc) Notify() { f() }

// Nop discards notifications.
type Nop struct{}

// Notify does nothing.
func (Nop) Notify() {}

// Multi fans a notification out to every non-nil notifier, in order.
func Multi(notifiers ...Notifier) Notifier {
	out := make(multi, 0, len(notifiers))
	for _, n := range notifiers {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}

type multi []Notifier

func (m multi) Notify() {
	for _, n := range m {
		n.Notify()
	}
}
