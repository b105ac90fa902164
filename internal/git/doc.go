// Package git wraps the external git binary for the branch and worktree
// operations grove needs.
//
// All operations are performed via os/exec calls to git rather than a
// Go Git library, because worktree registry semantics (add, remove,
// prune, porcelain listing) require full Git CLI compatibility.
//
// Every call is synchronous and blocking; exit codes and captured
// stderr are surfaced verbatim in the returned error.
package git
