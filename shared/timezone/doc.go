// Package timezone provides time helpers for the application.
//
// Wall-clock timestamps (audit metadata) follow the application timezone:
//
//	now := timezone.Now()
//	formatted := timezone.Format(now, time.RFC3339)
//
// Reservation dates are calendar days. They carry no clock and are kept at UTC
// midnight so that a stay of [2024-01-10, 2024-01-15) compares the same way
// regardless of the server timezone:
//
//	start, err := timezone.ParseDate("2024-01-10")
//	timezone.FormatDate(start) // "2024-01-10"
//
// The application timezone is configured via the APP_TIMEZONE environment variable
// and is initialized when the package is imported.
package timezone
