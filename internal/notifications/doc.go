// Package notifications renders release batches and delivers them.
//
// Messages are rendered once from embedded HTML templates; the plain-text
// part is derived from that HTML as Markdown. Delivery goes through the
// Resend email API or an ntfy topic, selected by notifications.transport,
// and the "none" transport reports success without sending anything.
// Callers depend only on the Service interface.
package notifications
