package output

import "io"

type flusher interface {
	Flush() error
}

// plainFlusher matches writers like http.ResponseWriter that flush without
// reporting an error.
type plainFlusher interface {
	Flush()
}

// flushIfPossible pushes buffered NDJSON lines out so a reader sees each
// event as soon as it is written.
func flushIfPossible(w io.Writer) error {
	switch f := w.(type) {
	case flusher:
		return f.Flush()
	case plainFlusher:
		f.Flush()
	}
	return nil
}
