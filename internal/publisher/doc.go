// Package publisher uploads payloads to the permanent-storage gateway.
//
// Client.Publish wraps a Transport and keeps resending the identical ticket
// while the gateway answers success=false, because the storage layer rejects
// uploads transiently without a distinguishing reason. Attempts are unlimited
// by default; WithMaxAttempts and WithRetryBackoff bound and pace the loop,
// and context cancellation always stops it. Transport failures (the request
// failed, or the reply could not be read or decoded) are returned immediately.
//
// HTTPTransport implements the gateway's multipart form contract: the file
// payload, the caller's identity token, the application API id, and the tag
// list as a JSON array of {name, value} objects.
package publisher
