// Package message defines the entities exchanged on the slow-control network.
//
// Every entity implements serial.Serializable. Field order on the wire is the
// order documented on each type; WriteObject and ReadObject of one type must
// be changed together, since nothing on the wire describes the layout.
package message
