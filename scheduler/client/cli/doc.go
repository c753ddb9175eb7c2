/*
Package cli is the nodesched command line. Rounds run in process against the
ledger store named by --config, or against a remote api server when --addr is
set. Errors carry the process exit code (common/errors).
*/
package cli
