package models

// Direction marks a bus trace record as transmitted or received.
type Direction string

const (
	DirTX Direction = "TX"
	DirRX Direction = "RX"
)

// BusRecord is one line of the CAN trace stream: a frame observed on
// the bus, stamped with the instrument's millisecond clock. Append-only;
// never mutated after capture.
type BusRecord struct {
	TimestampMs int64
	Dir         Direction
	Frame       Frame
}

func (BusRecord) CSVHeader() []string {
	return []string{"timestamp_ms", "type", "id", "length", "data_hex"}
}

func (r *BusRecord) CSVRow() []string {
	return []string{
		itoa64(r.TimestampMs),
		string(r.Dir),
		r.Frame.IDString(),
		itoa(int(r.Frame.Len)),
		r.Frame.DataHex(),
	}
}
