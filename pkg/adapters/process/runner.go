package process

import (
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"strconv"
	"sync"
	"time"
)

// EnvListenFD names the variable telling a launched server which file
// descriptor holds its listening socket.
const EnvListenFD = "RADIOLAB_LISTEN_FD"

// listenFD is the descriptor of the first ExtraFiles entry.
const listenFD = 3

// DefaultOutputLimit bounds the captured server output.
const DefaultOutputLimit = 64 << 10

// stopGracePeriod is how long Close waits after the interrupt.
const stopGracePeriod = 5 * time.Second

// child is a launched server process.
type child struct {
	cmd    *exec.Cmd
	output *tailBuffer
	done   chan struct{}
	err    error
}

// start launches cmd with ln passed as an inherited descriptor.
// The caller keeps ownership of ln and may close it once start returns.
func start(cmd *exec.Cmd, ln net.Listener, outputLimit int) (*child, error) {
	tcp, ok := ln.(*net.TCPListener)
	if !ok {
		return nil, fmt.Errorf("cannot pass %T to a child process", ln)
	}
	f, err := tcp.File()
	if err != nil {
		return nil, fmt.Errorf("duplicate listener: %w", err)
	}
	defer f.Close()

	out := newTailBuffer(outputLimit)
	cmd.Stdout = out
	cmd.Stderr = out
	cmd.ExtraFiles = []*os.File{f}
	cmd.Env = append(cmd.Env, EnvListenFD+"="+strconv.Itoa(listenFD))

	if err := cmd.Start(); err != nil {
		return nil, err
	}

	c := &child{cmd: cmd, output: out, done: make(chan struct{})}
	go func() {
		c.err = cmd.Wait()
		close(c.done)
	}()
	return c, nil
}

func (c *child) exited() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// exitError describes why the process is gone. Only valid after done is closed.
func (c *child) exitError() error {
	if c.err != nil {
		return c.err
	}
	return errors.New("process exited")
}

// stop interrupts the process and kills it if it outlives grace.
func (c *child) stop(grace time.Duration) {
	if c.exited() {
		return
	}
	if err := c.cmd.Process.Signal(os.Interrupt); err != nil {
		// Interrupt is not deliverable on every platform.
		c.cmd.Process.Kill()
	}
	select {
	case <-c.done:
		return
	case <-time.After(grace):
	}
	c.cmd.Process.Kill()
	<-c.done
}

// InheritedListener returns the listener passed by a supervisor, if any.
func InheritedListener() (net.Listener, bool, error) {
	v := os.Getenv(EnvListenFD)
	if v == "" {
		return nil, false, nil
	}
	fd, err := strconv.Atoi(v)
	if err != nil || fd < listenFD {
		return nil, false, fmt.Errorf("invalid %s %q", EnvListenFD, v)
	}
	f := os.NewFile(uintptr(fd), "radiolab-listener")
	if f == nil {
		return nil, false, fmt.Errorf("invalid %s %q", EnvListenFD, v)
	}
	defer f.Close()

	ln, err := net.FileListener(f)
	if err != nil {
		return nil, false, fmt.Errorf("inherited listener: %w", err)
	}
	return ln, true, nil
}

// Listen returns the inherited listener when supervised, otherwise binds addr.
func Listen(addr string) (net.Listener, error) {
	ln, ok, err := InheritedListener()
	if err != nil {
		return nil, err
	}
	if ok {
		return ln, nil
	}
	return net.Listen("tcp", addr)
}

// tailBuffer keeps the last limit bytes written to it.
type tailBuffer struct {
	mu    sync.Mutex
	limit int
	buf   []byte
}

func newTailBuffer(limit int) *tailBuffer {
	if limit <= 0 {
		limit = DefaultOutputLimit
	}
	return &tailBuffer{limit: limit}
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf = append(b.buf, p...)
	if over := len(b.buf) - b.limit; over > 0 {
		b.buf = append(b.buf[:0], b.buf[over:]...)
	}
	return len(p), nil
}

func (b *tailBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(b.buf)
}
