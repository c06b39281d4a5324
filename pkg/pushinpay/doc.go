// Package pushinpay is a small client for the PushinPay PIX gateway.
//
// Client implements subscription.Provider: it opens a PIX cash-in charge
// and returns the copy-and-paste code, the QR image payload when the gateway
// sends one, and the gateway transaction id.
//
// The gateway calls back with form-encoded id and status fields;
// ParseNotification also accepts the same keys as a JSON object. Sign and Verify implement an
// HMAC-SHA256 scheme over "timestamp.payload" carried in the
// X-Webhook-Signature and X-Webhook-Timestamp headers. Enforcement is opt-in
// through Config.VerifyWebhooks.
package pushinpay
