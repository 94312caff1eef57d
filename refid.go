package ntpcli

import (
	"bytes"
	"net"
)

// ReferenceText renders a reference ID. A stratum 1 server carries a
// clock source tag such as "GPS", which ends at the first NUL; any other
// stratum carries the IPv4 address of the upstream server.
func ReferenceText(stratum uint8, id [4]byte) string {
	if stratum == 1 {
		tag := id[:]
		if i := bytes.IndexByte(tag, 0); i >= 0 {
			tag = tag[:i]
		}
		return string(tag)
	}
	return net.IPv4(id[0], id[1], id[2], id[3]).String()
}
