// Package application provides application initialization and dependency wiring.
// It encapsulates the creation of session storage, the calculator, metrics,
// handlers, routers and the HTTP server, along with the janitor that expires
// idle sessions, keeping the main package focused on CLI parsing and
// orchestration.
package application
