// ABOUTME: Calibration bridge wire protocol package
// ABOUTME: Defines protocol messages and WebSocket client
// Package protocol implements the calibration bridge wire protocol.
//
// Every message is a JSON object with a "type" and a "payload". The server
// greets each client with session/hello and session/state, then answers
// threshold/* and extract/request messages. Threshold changes are broadcast
// to every connected client as session/state.
//
// Example:
//
//	client := protocol.NewClient(protocol.Config{ServerAddr: "localhost:8937"})
//	err := client.Connect()
//	err = client.SetThreshold(-30)
package protocol
