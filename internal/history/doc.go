// Package history keeps a SQLite log of pipeline outcomes so past
// requests can be reviewed with the history command.
package history
