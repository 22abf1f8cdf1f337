// Package publish forwards decoded gateway readings to their consumer.
//
// The session workflow hands every forwarded telegram to a ForwardFunc;
// this package provides the two implementations the bridge ships with:
// an MQTT publisher for normal operation and a log-only forwarder for
// dry runs. The protocol core knows nothing about either — it only sees
// the forward contract.
package publish
