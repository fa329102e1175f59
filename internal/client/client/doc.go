// Package client is the HTTP side of the fleamarket client.
//
// # Overview
//
// Every backend call goes through one Dispatcher:
//  1. Outgoing stage: the request gets a fresh X-Request-Id and, when the
//     CredentialSource yields one, an "Authorization: Bearer" header.
//  2. Incoming stage: the body is decoded as an Envelope {code, message,
//     data}. Code 200 returns data unmodified; every other outcome becomes
//     a *Failure.
//  3. Observers registered by the composition root see each Failure, in
//     order, before Send returns. Session teardown on 401 and user
//     notifications are observers, not part of this package.
//
// API wraps the auth and user endpoints on top of a Sender.
//
// # Error Handling
//
// Failures never get retried. Match them with errors.Is against
// ErrUnauthorized (code 401) and ErrUnavailable (transport), or use
// AsFailure to read Kind, Code and Message.
package client
