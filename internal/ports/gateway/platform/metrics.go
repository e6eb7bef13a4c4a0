package port_platform

import "time"

type TransferMetrics interface {
	ObserveTransfer(status string, kind string, elapsed time.Duration)
}
