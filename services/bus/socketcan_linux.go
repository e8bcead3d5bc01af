//go:build linux

package bus

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"

	"golang.org/x/sys/unix"

	"can-datalogger/models"
	"can-datalogger/utils"
)

// SocketCANPort taps a real bus through a raw SocketCAN socket. The
// socket is non-blocking: DrainReceived reads until the kernel queue is
// empty, and a poll goroutine stands in for the controller's interrupt
// line by raising the receive notification whenever the fd is readable.
type SocketCANPort struct {
	fd     int
	dev    string
	mu     sync.Mutex
	notify func()
}

const canFrameSize = 16

const (
	canEffFlag = 0x80000000
	canEffMask = 0x1FFFFFFF
	canStdMask = 0x7FF
)

// OpenSocketCAN binds a raw CAN socket to the named interface (e.g.
// "can0") in non-blocking mode.
func OpenSocketCAN(dev string) (*SocketCANPort, error) {
	fd, err := unix.Socket(unix.AF_CAN, unix.SOCK_RAW|unix.SOCK_NONBLOCK, unix.CAN_RAW)
	if err != nil {
		return nil, fmt.Errorf("bus: socket: %w", err)
	}
	ifr, err := unix.NewIfreq(dev)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("bus: interface %s: %w", dev, err)
	}
	if err := unix.IoctlIfreq(fd, unix.SIOCGIFINDEX, ifr); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("bus: interface %s: %w", dev, err)
	}
	addr := &unix.SockaddrCAN{Ifindex: int(ifr.Uint32())}
	if err := unix.Bind(fd, addr); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("bus: bind %s: %w", dev, err)
	}
	utils.L().Info("socketcan port open    (dev=%s)", dev)
	return &SocketCANPort{fd: fd, dev: dev}, nil
}

func (p *SocketCANPort) OnReceive(fn func()) {
	p.mu.Lock()
	p.notify = fn
	p.mu.Unlock()
}

// Start launches the readability watcher that substitutes for the
// hardware interrupt line.
func (p *SocketCANPort) Start(ctx context.Context) {
	go func() {
		fds := []unix.PollFd{{Fd: int32(p.fd), Events: unix.POLLIN}}
		for ctx.Err() == nil {
			fds[0].Revents = 0
			n, err := unix.Poll(fds, 100)
			if err != nil || n == 0 {
				continue
			}
			if fds[0].Revents&unix.POLLIN != 0 {
				p.mu.Lock()
				fn := p.notify
				p.mu.Unlock()
				if fn != nil {
					fn()
				}
			}
		}
	}()
}

func (p *SocketCANPort) Transmit(f models.Frame) error {
	buf := marshalFrame(f)
	if _, err := unix.Write(p.fd, buf); err != nil {
		if err == unix.EAGAIN || err == unix.ENOBUFS {
			return ErrControllerBusy
		}
		return fmt.Errorf("%w: %v", ErrControllerFault, err)
	}
	return nil
}

func (p *SocketCANPort) DrainReceived() []models.Frame {
	var out []models.Frame
	buf := make([]byte, canFrameSize)
	for {
		n, err := unix.Read(p.fd, buf)
		if err != nil || n < canFrameSize {
			return out
		}
		out = append(out, unmarshalFrame(buf))
	}
}

func (p *SocketCANPort) Close() error {
	return unix.Close(p.fd)
}

// marshalFrame encodes the Linux can_frame layout: little-endian can_id
// with flags, dlc, padding, then 8 data bytes.
func marshalFrame(f models.Frame) []byte {
	id := f.ID
	if id > canStdMask {
		id |= canEffFlag
	}
	buf := make([]byte, canFrameSize)
	binary.LittleEndian.PutUint32(buf[0:4], id)
	buf[4] = f.Len
	copy(buf[8:16], f.Data[:])
	return buf
}

func unmarshalFrame(buf []byte) models.Frame {
	id := binary.LittleEndian.Uint32(buf[0:4])
	var f models.Frame
	if id&canEffFlag != 0 {
		f.ID = id & canEffMask
	} else {
		f.ID = id & canStdMask
	}
	f.Len = buf[4]
	if f.Len > models.MaxFrameData {
		f.Len = models.MaxFrameData
	}
	copy(f.Data[:], buf[8:16])
	return f
}
