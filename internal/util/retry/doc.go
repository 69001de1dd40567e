// Package retry provides exponential backoff retry logic for transient failures.
//
// [WithExponentialBackoff] retries an operation until it succeeds, the
// attempts are exhausted, the context is cancelled or the operation returns
// an error marked with [Fatal]. It is used by the status poller; the
// lifecycle driver itself never retries.
package retry
