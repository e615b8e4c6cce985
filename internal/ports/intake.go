package ports

// Intake is a long-running listener that feeds leads to the vetting service
type Intake interface {
	// Start begins accepting requests in the background
	Start() error

	// Stop shuts the listener down
	Stop() error
}
