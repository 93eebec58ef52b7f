// Package hosting runs the bus inside an fx application.
//
// AddBusHosting registers the default services the bus host depends on.
// FXModule builds the service container from fx-provided collaborators and
// from RegisterFuncs contributed with Register, then starts and stops the
// bus.ServiceHost with the application.
package hosting
