// Package bus defines the contract between the acquisition core and the
// CAN controller, plus the concrete ports the instrument ships with.
package bus

import (
	"errors"

	"can-datalogger/models"
)

// Controller error taxonomy. A failed transmit is transient: the frame
// is simply not recorded and the next scheduled attempt proceeds.
var (
	ErrControllerBusy  = errors.New("bus: controller busy")
	ErrControllerFault = errors.New("bus: controller fault")
)

// Port is a thin synchronous facade over the controller.
//
// Transmit attempts one send and must not block longer than the
// controller's own timeout. DrainReceived returns every frame currently
// buffered by the controller, in arrival order; it is non-blocking,
// restartable, and an empty result is a normal outcome, not an error.
type Port interface {
	Transmit(f models.Frame) error
	DrainReceived() []models.Frame
	Close() error
}

// Notifier is implemented by ports that can raise a receive
// notification (the interrupt line of the hardware controller). The
// callback runs at notification priority: it may only set a flag.
type Notifier interface {
	OnReceive(fn func())
}
