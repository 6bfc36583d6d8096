// Package preflight provides readiness checks for the binaries, credentials,
// and filesystem paths ytscribe depends on.
//
// These checks run in two contexts:
//   - "ytscribe run" calls RunAll before it starts polling. Any failure aborts
//     startup so the bot never accepts a link it cannot process.
//   - "ytscribe status" uses the individual check functions (CheckTelegram,
//     CheckDirectoryAccess) to display service health.
package preflight
