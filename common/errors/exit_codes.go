package errors

type ExitCode int

const (
	// GenericFailureExitCode covers anything without a more specific code.
	GenericFailureExitCode ExitCode = 1

	// The round was rejected before any placement.
	InvalidInputExitCode ExitCode = 2

	// The knapsack table would exceed the configured bound, or costs were not
	// whole numbers.
	InfeasibleExitCode ExitCode = 3

	// The historical ledger could not be loaded or committed.
	LedgerStoreExitCode ExitCode = 4
)
