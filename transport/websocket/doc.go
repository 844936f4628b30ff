// Package websocket pushes maze game state to browser and bot clients.
//
// A single Hub tracks connections per session ID. Clients connect to
// /ws?session=<id> and only listen: every state change made through the
// REST API is broadcast as a Message with event "state_update", or
// "game_over" once the destination has been reached. Custom events can be
// queued with BroadcastEvent. Browser origins can be restricted with
// SetAllowedOrigins; without it every origin may connect.
//
//	hub := websocket.NewHub()
//	go hub.Run()
//	defer hub.Stop()
//
//	hub.BroadcastToSession(sessionID, state)
package websocket
