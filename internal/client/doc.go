// Package client manages the TLS connection to the heating gateway.
//
// The gateway listens on port 9092 and requires mutual TLS with a
// client certificate, TLS 1.2, and legacy RSA cipher suites; NewTLSConfig
// builds a matching configuration. Dial opens the connection, Send
// writes encoded request frames, and Run drives the two per-connection
// receive loops (fill and drain) described in the session package.
//
// The package deliberately implements no retry or reconnect policy: a
// connection runs straight through once, and the caller decides whether
// to dial again after Run returns.
package client
