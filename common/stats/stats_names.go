package stats

/*
This file defines the metrics recorded by the round coordinator and the API.
Per node instruments are suffixed with "_<node name>".
*/

const (
	/*
		the number of scheduling rounds run to completion
	*/
	SchedRoundsRunCounter = "roundsRun"

	/*
		the number of tasks placed, summed over rounds
	*/
	SchedTasksPlacedCounter = "tasksPlaced"

	/*
		the number of tasks left unscheduled, summed over rounds
	*/
	SchedTasksUnscheduledCounter = "tasksUnscheduled"

	/*
		the number of rounds rejected before placement because of invalid input
	*/
	SchedInvalidInputCounter = "invalidInput"

	/*
		the number of rounds whose knapsack table would exceed the configured bound
	*/
	SchedInfeasibleCounter = "infeasible"

	/*
		time spent computing one round, including the ledger load and commit
	*/
	SchedRoundLatency_ms = "roundLatency_ms"

	/*
		the number of times the historical ledger could not be loaded or committed
	*/
	LedgerStoreErrCounter = "ledgerStoreErr"

	/*
		usage added to a node by the last round, rounded down
	*/
	NodeUsageGauge = "nodeUsage"

	/*
		percentage of a node's capacity (or uptime) used by the last round
	*/
	NodeUtilizationPctGauge = "nodeUtilizationPct"

	/*
		the accumulated historical usage of a node after the last round
	*/
	NodeLedgerGauge = "nodeLedger"

	/*
		the number of requests the API turned away because of the round rate limit
	*/
	APIRateLimitedCounter = "rateLimited"

	/*
		the number of requests served by the API, by route
	*/
	APIRequestsCounter = "requests"
)
