// Package session keeps maze game sessions in memory and, optionally, in a
// persistent store.
//
// Manager is safe for concurrent use. Sessions are keyed by a short ID
// (four hex characters when generated, or any caller-supplied ID matching
// [A-Za-z0-9_-]{1,64}) and looked up case-insensitively. A session missing
// from memory is loaded lazily from the configured SessionPersistence.
//
// Two stores are provided:
//
//   - FilePersistence writes one indented JSON file per session.
//   - PebblePersistence keeps the same JSON, zstd-compressed, in a pebble
//     key-value store under "session/<id>".
//
// Each record embeds the game configuration it was created with, so a
// session keeps its rules even if the config file is edited later.
//
//	store, err := session.NewFilePersistence("sessions", configManager)
//	if err != nil {
//		log.Fatal(err)
//	}
//	manager := session.NewManagerWithPersistence(store)
//	if err := manager.LoadPersistedSessions(); err != nil {
//		log.Fatal(err)
//	}
//	sess, err := manager.Create("", configManager.GetDefault())
package session
