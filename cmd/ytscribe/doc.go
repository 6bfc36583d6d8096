// Package main hosts the ytscribe CLI entrypoint and command graph.
//
// "ytscribe run" starts the Telegram bot. The remaining commands are local
// utilities: a one-shot transcription against the console, dependency status,
// request history, configuration scaffolding, and a notification test. The
// package only wires internal packages together; behaviour lives under
// internal/.
package main
