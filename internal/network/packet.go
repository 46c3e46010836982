package network

import "maritime-simulator/internal/flow"

type Packet struct {
	ID           int64
	Flow         flow.ID
	Src          string
	Size         int
	CreationTime float64
}

func NewPacket(id int64, f flow.ID, src string, size int, time float64) Packet {
	return Packet{
		ID:           id,
		Flow:         f,
		Src:          src,
		Size:         size,
		CreationTime: time,
	}
}
