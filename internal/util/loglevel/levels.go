// Package loglevel names the glog verbosity levels used across sshkex.
package loglevel

import "github.com/golang/glog"

const (
	// connection accepted / dialed, handshake outcome
	LvHandshake glog.Level = 1
	LvConnect   glog.Level = 1

	// every packet sent or received by the transport
	LvMessage glog.Level = 2

	// kex state transitions
	LvState glog.Level = 3

	// group selection details
	LvGroups glog.Level = 4
)
