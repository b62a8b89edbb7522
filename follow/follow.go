// Package follow provides a tail -F style line source for spawk.
//
// A [Follower] produces all the lines in a file and then monitors for
// changes, producing new lines appended to the end. If the file does
// not exist yet, it waits for its creation. If the file is truncated,
// removed and recreated, or replaced by a new filesystem mount, it is
// closed and reopened from the beginning.
//
//	f := follow.New("/var/log/syslog")
//	defer f.Close()
//	e := spawk.NewLines(f)
package follow

import (
	"bytes"
	"io"
	"os"
	"sync"
	"time"
)

const readBlockSize = 4096

// Option configures a Follower.
type Option func(*Follower)

// WithInterval sets the delay between polls of the file (default 1s).
func WithInterval(d time.Duration) Option {
	return func(f *Follower) {
		if d > 0 {
			f.interval = d
		}
	}
}

// Follower reads a file and follows appended data. It implements the
// spawk LineReader contract: ReadLine blocks until a complete line is
// available and returns io.EOF only after Close.
//
// ReadLine must be called from a single goroutine; Close may be called
// from any goroutine to stop a blocked ReadLine within one poll interval.
type Follower struct {
	name     string
	interval time.Duration

	file *os.File
	info os.FileInfo
	size int64

	block []byte
	buf   []byte
	lines []string

	done      chan struct{}
	closeOnce sync.Once
}

// New creates a follower for the named file. The file does not need to
// exist yet.
func New(name string, opts ...Option) *Follower {
	f := &Follower{
		name:     name,
		interval: time.Second,
		block:    make([]byte, readBlockSize),
		done:     make(chan struct{}),
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Close stops the follower. A blocked ReadLine drains any complete
// lines already read and then returns io.EOF. Close is idempotent.
func (f *Follower) Close() error {
	f.closeOnce.Do(func() { close(f.done) })
	return nil
}

// ReadLine returns the next complete line, including its trailing
// newline. It blocks across poll intervals until data arrives and
// returns io.EOF after Close.
func (f *Follower) ReadLine() (string, error) {
	for {
		if len(f.lines) > 0 {
			line := f.lines[0]
			f.lines = f.lines[1:]
			return line, nil
		}
		select {
		case <-f.done:
			f.closeFile()
			return "", io.EOF
		default:
		}
		if err := f.poll(); err != nil {
			return "", err
		}
	}
}

// poll performs one open/read/stat cycle, queueing any complete lines.
func (f *Follower) poll() error {
	if f.file == nil {
		file, err := os.Open(f.name)
		if err != nil {
			if os.IsNotExist(err) {
				return f.sleep()
			}
			return err
		}
		info, err := file.Stat()
		if err != nil {
			file.Close()
			return err
		}
		f.file, f.info, f.size = file, info, info.Size()
	}

	n, err := f.file.Read(f.block)
	if n > 0 {
		f.buf = append(f.buf, f.block[:n]...)
		f.queueLines()
		return nil
	}
	if err != nil && err != io.EOF {
		return err
	}

	// Nothing more to read: decide between waiting and reopening.
	info, err := os.Stat(f.name)
	if err != nil {
		if os.IsNotExist(err) {
			f.closeFile()
			return nil
		}
		return err
	}
	if !os.SameFile(f.info, info) || info.Size() < f.size {
		// Rotated, recreated, or truncated: start over.
		f.closeFile()
		return nil
	}
	f.size = info.Size()
	return f.sleep()
}

func (f *Follower) closeFile() {
	if f.file != nil {
		f.file.Close()
		f.file = nil
	}
	// A reopened file is read from the start; partial data from the
	// old file would splice into unrelated content.
	f.buf = f.buf[:0]
}

func (f *Follower) sleep() error {
	select {
	case <-f.done:
	case <-time.After(f.interval):
	}
	return nil
}

func (f *Follower) queueLines() {
	for {
		i := bytes.IndexByte(f.buf, '\n')
		if i < 0 {
			return
		}
		f.lines = append(f.lines, string(f.buf[:i+1]))
		f.buf = f.buf[i+1:]
	}
}
