// Package autosave coordinates background saving of a session form.
//
// An Editor opens a Session per editing session. The UI feeds every edit to
// Session.OnFormChange; edits that differ from the loaded snapshot and have a
// title and a resource URL arm a single debounce timer. When the user stops
// typing for the configured delay, the Executor saves the latest form as a
// draft. Auto-save never publishes and never shows errors: failures are logged
// and the next edit starts a new cycle. An expired login is the exception and
// moves the session to StateUnauthenticated.
//
// Session.Submit is the manual path. It cancels the pending timer first, then
// publishes or saves the draft immediately and reports failures to the user.
//
// Signals for the UI (loading, auto-save progress, notifications) are
// published on an events.Hub.
//
// Known gaps, kept on purpose:
//
//   - An edit that is no longer eligible (e.g. the title was cleared) does not
//     cancel a timer armed by an earlier eligible edit; that save still fires
//     with the earlier form.
//   - Submit does not wait for an auto-save request that is already in flight,
//     so the two writes may complete in either order.
package autosave
