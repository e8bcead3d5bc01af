//go:build !linux

package bus

import (
	"context"
	"fmt"

	"can-datalogger/models"
)

// SocketCANPort is only available on Linux; other platforms run against
// the simulated controller.
type SocketCANPort struct{}

func OpenSocketCAN(dev string) (*SocketCANPort, error) {
	return nil, fmt.Errorf("bus: socketcan device %s not supported on this platform", dev)
}

func (p *SocketCANPort) OnReceive(fn func())           {}
func (p *SocketCANPort) Start(ctx context.Context)     {}
func (p *SocketCANPort) Transmit(f models.Frame) error { return ErrControllerFault }
func (p *SocketCANPort) DrainReceived() []models.Frame { return nil }
func (p *SocketCANPort) Close() error                  { return nil }
