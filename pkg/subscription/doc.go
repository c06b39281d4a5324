// Package subscription decides whether a user may use the app and moves a
// user's subscription through its payment lifecycle.
//
// Each user owns at most one Subscription row. A row starts either as a free
// trial (StartTrial) or as a pending payment (Service.Initiate). The payment
// provider later reports the charge outcome through a webhook, which
// Service.HandleWebhook maps onto the row:
//
//	pending --paid-------------> active   (expires_at = now + plan period, trial cleared)
//	active  --paid-------------> active   (window re-extended)
//	pending, active --expired|canceled--> inactive (transaction id cleared)
//
// Any other provider status is logged and acknowledged without a change.
//
// Access is derived on read with Evaluate, a pure function of the row and
// the current time. Nothing in this package runs in the background; clients
// that wait for activation use Service.AwaitActive, which polls until the
// row becomes active or the context ends.
package subscription
