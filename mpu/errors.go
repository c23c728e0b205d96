package mpu

import "errors"

var (
	ErrFlash              = errors.New("flash window is not a legal protection region")
	ErrHeap               = errors.New("no hardware-legal memory block fits the request")
	ErrOutOfMemory        = errors.New("break adjustment crosses the kernel boundary")
	ErrAddressOutOfBounds = errors.New("address outside process-owned memory")
	ErrNoFreeSlot         = errors.New("no unused protection region slot")
	ErrOverlap            = errors.New("region overlaps an enabled protection region")
	ErrRegionReserved     = errors.New("slot reserved for flash or RAM region")
	ErrRegionNotFound     = errors.New("no enabled region in slot")
)
