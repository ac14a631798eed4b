// Package session keeps the live games of the radius server in memory.
//
// A service.Session pairs a map snapshot with the scenario it was built from,
// a move counter and access timestamps. Snapshots are immutable: a move
// builds a new board.Map and Update swaps it in, so a caller holding an old
// session copy keeps a consistent view.
//
// Generated ids are 4 hex characters drawn from crypto/rand. Lookups are
// case-insensitive. Create rejects ids containing spaces or URL
// delimiters.
//
//	manager := session.NewManager()
//	sess, err := manager.Create("", "skirmish", m)
//	...
//	sess, err = manager.Update(sess.ID, next)
//
// Sessions are lost on restart. CleanupExpiredSessions drops the ones idle
// for longer than a given age; the serve command runs it hourly.
package session
