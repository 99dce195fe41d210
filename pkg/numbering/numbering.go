// Package numbering allocates human-facing document numbers.
package numbering

import (
	"strconv"
	"strings"

	"github.com/sony/sonyflake"
)

const (
	invoicePrefix   = "INV-"
	workOrderPrefix = "WO-"
)

// Allocator mints collision-resistant invoice numbers. Sonyflake IDs embed
// time and machine bits, so two processes drafting invoices for the same
// tenant can never collide the way a timestamp suffix would.
type Allocator struct {
	idWorker *sonyflake.Sonyflake
}

func NewAllocator() *Allocator {
	return &Allocator{
		idWorker: sonyflake.NewSonyflake(sonyflake.Settings{}),
	}
}

// NextInvoiceNumber returns the next invoice number, INV- followed by the
// base36 sonyflake ID. Numbers from one process are strictly increasing.
func (a *Allocator) NextInvoiceNumber() (string, error) {
	id, err := a.idWorker.NextID()
	if err != nil {
		return "", err
	}

	return invoicePrefix + strings.ToUpper(strconv.FormatUint(id, 36)), nil
}

// NextWorkOrderNumber returns the next work order number, WO- followed by
// the base36 sonyflake ID.
func (a *Allocator) NextWorkOrderNumber() (string, error) {
	id, err := a.idWorker.NextID()
	if err != nil {
		return "", err
	}

	return workOrderPrefix + strings.ToUpper(strconv.FormatUint(id, 36)), nil
}
