package datapoint

import (
	"fmt"
	"strconv"

	"github.com/muurk/heatlink/internal/protocol"
)

// Spec describes one datapoint on one device: which info number to
// request and how to present the reading.
type Spec struct {
	InfoNumber int
	Name       string
	Unit       string
	// Divisor scales the raw integer-ish reading into engineering
	// units (e.g. 10 for decidegrees). Zero means 1.
	Divisor float64
}

// Update is the decoded value-update record handed to the consumer,
// one per forwarded telegram.
type Update struct {
	BusAddress string
	InfoNumber int
	Name       string
	Unit       string
	Value      float64
	Raw        string
}

// UnknownDatapointError indicates a telegram for an info number that no
// configured datapoint covers on that device.
type UnknownDatapointError struct {
	BusAddress string
	InfoNumber int
}

func (e *UnknownDatapointError) Error() string {
	return fmt.Sprintf("no datapoint configured for info number %d on bus address %q",
		e.InfoNumber, e.BusAddress)
}

// Table holds the datapoint specs for every configured device, keyed by
// bus address. Read-only after construction.
type Table struct {
	specs map[string][]Spec
	index map[string]map[int]Spec
}

// NewTable builds a lookup table from per-bus-address spec lists.
// Duplicate info numbers within one device keep the last entry.
func NewTable(specs map[string][]Spec) *Table {
	t := &Table{
		specs: make(map[string][]Spec, len(specs)),
		index: make(map[string]map[int]Spec, len(specs)),
	}
	for addr, list := range specs {
		t.specs[addr] = append([]Spec(nil), list...)
		byInfo := make(map[int]Spec, len(list))
		for _, spec := range list {
			byInfo[spec.InfoNumber] = spec
		}
		t.index[addr] = byInfo
	}
	return t
}

// TelegramIDs returns the info numbers to request for a device, in
// configuration order. Empty when the bus address is unknown.
func (t *Table) TelegramIDs(busAddress string) []int {
	list := t.specs[busAddress]
	ids := make([]int, len(list))
	for i, spec := range list {
		ids[i] = spec.InfoNumber
	}
	return ids
}

// Map converts a raw telegram reading into an Update. Returns
// UnknownDatapointError when the info number is not configured for the
// device, and a parse error when the raw value is not numeric.
func (t *Table) Map(busAddress string, telegram protocol.Telegram) (Update, error) {
	spec, ok := t.index[busAddress][telegram.InfoNumber]
	if !ok {
		return Update{}, &UnknownDatapointError{BusAddress: busAddress, InfoNumber: telegram.InfoNumber}
	}

	value, err := strconv.ParseFloat(telegram.Value, 64)
	if err != nil {
		return Update{}, fmt.Errorf("unparseable reading %q for info number %d: %w",
			telegram.Value, telegram.InfoNumber, err)
	}
	if spec.Divisor != 0 {
		value /= spec.Divisor
	}

	return Update{
		BusAddress: busAddress,
		InfoNumber: telegram.InfoNumber,
		Name:       spec.Name,
		Unit:       spec.Unit,
		Value:      value,
		Raw:        telegram.Value,
	}, nil
}
