// Package delivery provides out-of-band channels for sending plaintext
// one-time codes: SMS through Twilio, email through SMTP, and a no-op channel
// for tests and decoupled deployments.
//
// Every channel satisfies the goOTP DeliveryChannel interface structurally;
// this package does not import goOTP.
//
// # What this package must NOT do
//
//   - Retain a code after Deliver returns.
//   - Log message bodies.
package delivery
