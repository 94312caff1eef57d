package ntpcli

import (
	"encoding/binary"
)

// PacketSize is the length of an NTP packet without extension fields.
const PacketSize = 48

const (
	nanoPerSec = 1e9

	// request version
	Version = 4
)

const (
	ModeReserved uint8 = iota
	ModeSymmetricActive
	ModeSymmetricPassive
	ModeClient
	ModeServer
	ModeBroadcast
	ModeControlMessage
	ModeReservedPrivate
)

const (
	NoLeap uint8 = iota
	LeapIns
	LeapDel
	NotSync
)

const (
	LiVnModePos = iota
	StratumPos
	PollPos
	ClockPrecisionPos
)

const (
	RootDelayPos = iota*4 + 4
	RootDispersionPos
	ReferIDPos
)

const (
	ReferenceTimeStamp = iota*8 + 16
	OriginTimeStamp
	ReceiveTimeStamp
	TransmitTimeStamp
)

func SetLi(m []byte, li uint8) {
	m[0] = (m[0] & 0x3f) | (li&0x03)<<6
}

func GetLi(m []byte) uint8 {
	return (m[0] >> 6) & 0x03
}

func SetVersion(m []byte, v uint8) {
	m[0] = (m[0] & 0xc7) | (v&0x07)<<3
}

func GetVersion(m []byte) uint8 {
	return (m[0] >> 3) & 0x07
}

func SetMode(m []byte, mode uint8) {
	m[0] = (m[0] & 0xf8) | mode&0x07
}

func GetMode(m []byte) uint8 {
	return m[0] &^ 0xf8
}

func SetUint64(m []byte, index int, value uint64) {
	binary.BigEndian.PutUint64(m[index:], value)
}

func SetUint8(m []byte, index int, value uint8) {
	m[index] = value
}

func SetInt8(m []byte, index int, value int8) {
	// two's complement
	m[index] = byte(value)
}

func SetUint32(m []byte, index int, value uint32) {
	binary.BigEndian.PutUint32(m[index:], value)
}
